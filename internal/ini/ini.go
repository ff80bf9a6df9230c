// Package ini reads and writes the device's CONFIG.INI. The format is the
// one the configurator tools already produce: [section] headers, key=value
// pairs, # or ; comments. Unknown sections and keys are ignored so newer
// tools can talk to older firmware.
package ini

import (
	"strconv"
	"strings"
)

// Settings is the runtime configuration, editable through CONFIG.INI.
type Settings struct {
	// [timing]
	DebounceMs uint16
	PollRateMs uint16

	// [trill]
	TrillThreshold uint16
	TrillPrescaler uint16

	// [chord]
	ChordTimeoutMs uint16
	ChordRepeat    bool
	RepeatDelayMs  uint16
	RepeatRateMs   uint16

	// [led]
	LEDBrightness uint8
	LEDFeedback   bool

	// [debug]
	DebugRTT bool
}

// Defaults returns the factory settings.
func Defaults() Settings {
	return Settings{
		DebounceMs:     30,
		PollRateMs:     15,
		TrillThreshold: 300,
		TrillPrescaler: 1,
		ChordTimeoutMs: 0,
		ChordRepeat:    false,
		RepeatDelayMs:  500,
		RepeatRateMs:   50,
		LEDBrightness:  128,
		LEDFeedback:    true,
		DebugRTT:       false,
	}
}

// Parse applies key=value pairs from INI text onto s and returns the
// number of settings it recognized and applied. Malformed lines and
// unknown keys are skipped, never fatal.
func Parse(data []byte, s *Settings) int {
	applied := 0
	section := ""

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line[0] == '#' || line[0] == ';' {
			continue
		}

		if line[0] == '[' {
			end := strings.IndexByte(line, ']')
			if end < 0 {
				end = len(line)
			}
			section = strings.TrimSpace(line[1:end])
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if apply(s, section, key, value) {
			applied++
		}
	}

	return applied
}

func apply(s *Settings, section, key, value string) bool {
	switch section {
	case "timing":
		switch key {
		case "debounce_ms":
			return setUint16(&s.DebounceMs, value, 1000)
		case "poll_rate_ms":
			return setUint16(&s.PollRateMs, value, 1000)
		}

	case "trill":
		switch key {
		case "threshold":
			return setUint16(&s.TrillThreshold, value, 1000)
		case "prescaler":
			return setUint16(&s.TrillPrescaler, value, 4)
		}

	case "chord":
		switch key {
		case "timeout_ms":
			return setUint16(&s.ChordTimeoutMs, value, 10000)
		case "repeat":
			return setBool(&s.ChordRepeat, value)
		case "repeat_delay_ms":
			return setUint16(&s.RepeatDelayMs, value, 5000)
		case "repeat_rate_ms":
			return setUint16(&s.RepeatRateMs, value, 1000)
		}

	case "led":
		switch key {
		case "brightness":
			var v uint16
			if setUint16(&v, value, 255) {
				s.LEDBrightness = uint8(v)
				return true
			}
		case "feedback":
			return setBool(&s.LEDFeedback, value)
		}

	case "debug":
		if key == "rtt" {
			return setBool(&s.DebugRTT, value)
		}
	}

	return false
}

// setUint16 parses an unsigned decimal, clamping to max like the firmware
// does rather than rejecting.
func setUint16(dst *uint16, value string, max uint64) bool {
	v, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return false
	}
	if v > max {
		v = max
	}
	*dst = uint16(v)
	return true
}

func setBool(dst *bool, value string) bool {
	switch value {
	case "true", "yes", "1", "on":
		*dst = true
		return true
	case "false", "no", "0", "off":
		*dst = false
		return true
	}
	return false
}

// GenerateDefault renders the commented CONFIG.INI the device writes to a
// fresh mass-storage volume.
func GenerateDefault() []byte {
	return []byte(`# nChorder Configuration
# Edit this file to customize settings.
# Changes take effect after USB reconnect.

[timing]
# Button debounce delay in milliseconds
debounce_ms = 30

# Sensor polling rate in milliseconds
poll_rate_ms = 15

[chord]
# Chord timeout in ms (0 = disabled, wait forever)
timeout_ms = 0

# Enable key repeat when chord is held
repeat = false

# Initial delay before repeat starts (ms)
repeat_delay_ms = 500

# Interval between repeats (ms)
repeat_rate_ms = 50

[led]
# LED brightness 0-255
brightness = 128

# Flash LED on chord input
feedback = true

[debug]
# Enable RTT debug output
rtt = false

# --- Hardware-specific settings below ---

[trill]
# Touch detection threshold (higher = less sensitive)
threshold = 300

# Scan prescaler 0-4 (lower = faster, more power)
prescaler = 1
`)
}
