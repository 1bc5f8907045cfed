package scrape

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var ErrNoInitialData = errors.New("page has no embedded data")

const (
	initialDataVar           = "ytInitialData"
	initialPlayerResponseVar = "ytInitialPlayerResponse"
)

// extractVar finds the inline script assigning the named variable and decodes the JSON object assigned to it.
func extractVar(doc *goquery.Document, name string) (map[string]any, error) {
	var found []byte
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		idx := strings.Index(text, name+" = ")
		if idx < 0 {
			idx = strings.Index(text, name+"=")
			if idx < 0 {
				return true
			}
		}
		rest := strings.TrimLeft(text[idx+len(name):], " =")
		found = extractJSON([]byte(rest))
		return found == nil
	})
	if found == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoInitialData, name)
	}
	var data map[string]any
	if err := json.Unmarshal(found, &data); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return data, nil
}

func parseDocument(r io.Reader, name string) (map[string]any, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return extractVar(doc, name)
}

// extractJSON returns the complete JSON object at the start of b, tracking brace depth outside of strings.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	escaped := false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}

// walk calls visit for every object found under key in the tree, in document order for arrays and key order for
// objects. Matched objects are not searched any further.
func walk(node any, key string, visit func(map[string]any)) {
	switch n := node.(type) {
	case map[string]any:
		if v, ok := n[key].(map[string]any); ok {
			visit(v)
		}
		keys := make([]string, 0, len(n))
		for k := range n {
			if k != key {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			walk(n[k], key, visit)
		}
	case []any:
		for _, v := range n {
			walk(v, key, visit)
		}
	}
}

// find returns the first object under key, if any.
func find(node any, key string) map[string]any {
	var found map[string]any
	walk(node, key, func(m map[string]any) {
		if found == nil {
			found = m
		}
	})
	return found
}

// get follows a path of object keys and array indices.
func get(node any, path ...any) any {
	for _, p := range path {
		switch k := p.(type) {
		case string:
			m, ok := node.(map[string]any)
			if !ok {
				return nil
			}
			node = m[k]
		case int:
			a, ok := node.([]any)
			if !ok || k >= len(a) {
				return nil
			}
			node = a[k]
		}
	}
	return node
}

func str(node any, path ...any) string {
	s, _ := get(node, path...).(string)
	return s
}

// text flattens the two shapes text comes in: {"simpleText": "..."} and {"runs": [{"text": "..."}, ...]}.
func text(node any) string {
	if s := str(node, "simpleText"); s != "" {
		return s
	}
	if s := str(node, "content"); s != "" {
		return s
	}
	runs, _ := get(node, "runs").([]any)
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(str(r, "text"))
	}
	return b.String()
}

// count pulls the first number out of text like "1,234 videos".
func count(s string) (int, bool) {
	digits := strings.Builder{}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case r == ',' || r == '.':
			if digits.Len() == 0 {
				continue
			}
		default:
			if digits.Len() > 0 {
				n, err := strconv.Atoi(digits.String())
				return n, err == nil
			}
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(digits.String())
	return n, err == nil
}
