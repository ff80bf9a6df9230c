package nchorder

import (
	"github.com/nchorder/nchorder/internal/chord"
)

// Emitter delivers decoded chord actions to whatever output backend
// is attached. The recognition loop never talks to a device directly.
type Emitter interface {
	KeyPress(modifiers, keycode uint8) error
	ConsumerPress(usage uint16) error
	MouseClick(buttons uint8) error
	Close() error
}

// nullEmitter drops everything. Used when no output backend is
// available so the recognition loop can still run and be observed
// through logs and metrics.
type nullEmitter struct{}

func (nullEmitter) KeyPress(modifiers, keycode uint8) error { return nil }
func (nullEmitter) ConsumerPress(usage uint16) error        { return nil }
func (nullEmitter) MouseClick(buttons uint8) error          { return nil }
func (nullEmitter) Close() error                            { return nil }

// dispatchChord resolves a completed chord against the mapping tables
// and forwards the result to the emitter. Table priority is keyboard,
// mouse, consumer, then multi-character macros. Returns false when no
// table maps the chord.
func dispatchChord(tables *chord.Tables, emitter Emitter, c chord.Chord) bool {
	if km, ok := tables.LookupKey(c); ok {
		metricChordsCompleted.Inc()
		if err := emitter.KeyPress(km.Modifiers, km.Keycode); err != nil {
			hidLogger.Warn().Err(err).Uint16("chord", uint16(c)).Msg("key press failed")
		}
		return true
	}
	if mm, ok := tables.LookupMouse(c); ok {
		metricChordsCompleted.Inc()
		if err := emitter.MouseClick(mm.Buttons); err != nil {
			hidLogger.Warn().Err(err).Uint16("chord", uint16(c)).Msg("mouse click failed")
		}
		return true
	}
	if usage, ok := tables.LookupConsumer(c); ok {
		metricChordsCompleted.Inc()
		if err := emitter.ConsumerPress(usage); err != nil {
			hidLogger.Warn().Err(err).Uint16("chord", uint16(c)).Msg("consumer press failed")
		}
		return true
	}
	if keys, ok := tables.LookupMultiChar(c); ok {
		metricChordsCompleted.Inc()
		metricMacrosReplayed.Inc()
		for _, k := range keys {
			if err := emitter.KeyPress(k.Modifiers, k.Keycode); err != nil {
				hidLogger.Warn().Err(err).Uint16("chord", uint16(c)).Msg("macro key failed")
				return true
			}
		}
		return true
	}
	metricChordsUnmapped.Inc()
	hidLogger.Debug().Uint16("chord", uint16(c)).Msg("chord has no mapping")
	return false
}
