package video_resolver

import (
	"regexp"
	"strconv"
	"strings"
)

var durationPattern = regexp.MustCompile(`^P(?:(\d+)W)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

var durationUnits = []int{604800, 86400, 3600, 60, 1}

// ParseDuration converts an ISO-8601 style duration ("PT1H2M10S", "P1DT5M", ...) into whole seconds. Missing
// components count as zero, and anything unparseable is zero.
func ParseDuration(s string) int {
	m := durationPattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if m == nil {
		return 0
	}
	total := 0
	for i, unit := range durationUnits {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0
		}
		total += n * unit
	}
	return total
}

// FormatDuration renders seconds in the "PT#H#M#S" form, omitting zero components ("PT0S" for zero).
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return "PT0S"
	}
	h, m, s := seconds/3600, seconds%3600/60, seconds%60
	b := strings.Builder{}
	b.WriteString("PT")
	if h > 0 {
		b.WriteString(strconv.Itoa(h) + "H")
	}
	if m > 0 {
		b.WriteString(strconv.Itoa(m) + "M")
	}
	if s > 0 {
		b.WriteString(strconv.Itoa(s) + "S")
	}
	return b.String()
}

// ParseClock converts a clock-style duration ("1:02:10", "4:05", "59") into seconds, or 0 if unparseable.
func ParseClock(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	total := 0
	for _, part := range strings.Split(s, ":") {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	return total
}
