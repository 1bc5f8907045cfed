package video_resolver

import (
	"testing"

	assert_ "github.com/stretchr/testify/assert"
)

func TestParseDuration(t *testing.T) {
	assert := assert_.New(t)
	cases := map[string]int{
		"PT1H2M10S":    3730,
		"PT5M":         300,
		"PT45S":        45,
		"PT5M03S":      303,
		"P1DT1S":       86401,
		"P2W":          1209600,
		"P1W1DT1H1M1S": 604800 + 86400 + 3600 + 60 + 1,
		"pt1m":         60,
		"":             0,
		"PT":           0,
		"garbage":      0,
		"1:02:10":      0,
	}
	for input, expected := range cases {
		assert.Equal(expected, ParseDuration(input), "ParseDuration(%q)", input)
	}
}

func TestFormatDuration(t *testing.T) {
	assert := assert_.New(t)
	assert.Equal("PT1H2M10S", FormatDuration(3730))
	assert.Equal("PT5M", FormatDuration(300))
	assert.Equal("PT45S", FormatDuration(45))
	assert.Equal("PT1H", FormatDuration(3600))
	assert.Equal("PT0S", FormatDuration(0))
	assert.Equal("PT0S", FormatDuration(-5))
	assert.Equal("PT26H", FormatDuration(93600))
}

func TestDurationRoundTrip(t *testing.T) {
	assert := assert_.New(t)
	for _, s := range []string{"PT1H2M10S", "PT5M", "PT45S", "PT0S", "PT10H59M59S"} {
		assert.Equal(s, FormatDuration(ParseDuration(s)))
	}
	// Non-canonical inputs are stable after one normalization
	for _, s := range []string{"PT5M03S", "P1DT1S", "", "nonsense"} {
		once := FormatDuration(ParseDuration(s))
		assert.Equal(once, FormatDuration(ParseDuration(once)))
	}
}

func TestParseClock(t *testing.T) {
	assert := assert_.New(t)
	assert.Equal(3730, ParseClock("1:02:10"))
	assert.Equal(245, ParseClock("4:05"))
	assert.Equal(59, ParseClock("59"))
	assert.Equal(0, ParseClock(""))
	assert.Equal(0, ParseClock("LIVE"))
	assert.Equal(0, ParseClock("1:-2"))
}
