package ini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBasic(t *testing.T) {
	s := Defaults()
	n := Parse([]byte(`
[timing]
debounce_ms = 45
poll_rate_ms = 20

[chord]
repeat = yes
repeat_delay_ms = 300
`), &s)

	assert.Equal(t, 4, n)
	assert.Equal(t, uint16(45), s.DebounceMs)
	assert.Equal(t, uint16(20), s.PollRateMs)
	assert.True(t, s.ChordRepeat)
	assert.Equal(t, uint16(300), s.RepeatDelayMs)
}

func TestParseClampsToMax(t *testing.T) {
	s := Defaults()
	n := Parse([]byte("[timing]\ndebounce_ms = 99999\n"), &s)

	assert.Equal(t, 1, n)
	assert.Equal(t, uint16(1000), s.DebounceMs)
}

func TestParseIgnoresCommentsAndGarbage(t *testing.T) {
	s := Defaults()
	n := Parse([]byte(`
# comment
; also a comment
not a key value line
[led]
brightness = 200
unknown_key = 7
[nosuchsection]
brightness = 1
`), &s)

	assert.Equal(t, 1, n)
	assert.Equal(t, uint8(200), s.LEDBrightness)
}

func TestParseBoolForms(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want bool
	}{
		{"true", true}, {"yes", true}, {"1", true}, {"on", true},
		{"false", false}, {"no", false}, {"0", false}, {"off", false},
	} {
		s := Defaults()
		n := Parse([]byte("[led]\nfeedback = "+tc.in+"\n"), &s)
		require.Equal(t, 1, n, "value %q", tc.in)
		assert.Equal(t, tc.want, s.LEDFeedback, "value %q", tc.in)
	}

	s := Defaults()
	assert.Zero(t, Parse([]byte("[led]\nfeedback = maybe\n"), &s))
}

func TestGenerateDefaultRoundTrips(t *testing.T) {
	// Parsing the generated file back must reproduce the defaults.
	s := Settings{}
	n := Parse(GenerateDefault(), &s)

	assert.Greater(t, n, 5)
	assert.Equal(t, Defaults(), s)
}
