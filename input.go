package nchorder

import (
	"context"
	"time"

	"github.com/nchorder/nchorder/internal/chord"
	"github.com/nchorder/nchorder/internal/ini"
)

// ButtonSource produces raw button samples. Implementations read GPIO
// matrices, serial touch streams, or test fixtures.
type ButtonSource interface {
	// Sample returns the currently pressed buttons as a bitmask.
	Sample() (chord.Chord, error)
}

// debouncer commits a raw sample only after it has held the same value
// for the configured interval. A bouncing contact restarts the clock.
type debouncer struct {
	interval  uint32
	raw       chord.Chord
	rawSince  uint32
	committed chord.Chord
}

func newDebouncer(intervalMs uint32) *debouncer {
	return &debouncer{interval: intervalMs}
}

// feed takes a raw sample at time now (milliseconds) and returns the
// debounced button state.
func (d *debouncer) feed(raw chord.Chord, now uint32) chord.Chord {
	if raw != d.raw {
		d.raw = raw
		d.rawSince = now
	}
	if now-d.rawSince >= d.interval {
		d.committed = raw
	}
	return d.committed
}

// inputLoop holds the recognition loop's tunable pieces so a settings
// reload can adjust them while the loop runs.
type inputLoop struct {
	ticker *time.Ticker
	deb    *debouncer
	pollMs uint16
}

func newInputLoop(s ini.Settings) *inputLoop {
	l := &inputLoop{
		deb:    newDebouncer(uint32(s.DebounceMs)),
		pollMs: normalizePollRate(s.PollRateMs),
	}
	l.ticker = time.NewTicker(time.Duration(l.pollMs) * time.Millisecond)
	return l
}

// applySettings adjusts the ticker period and debounce interval in place.
// The chord context is untouched: a reload mid-chord must not drop a
// press cycle.
func (l *inputLoop) applySettings(s ini.Settings) {
	l.deb.interval = uint32(s.DebounceMs)
	if poll := normalizePollRate(s.PollRateMs); poll != l.pollMs {
		l.pollMs = poll
		l.ticker.Reset(time.Duration(poll) * time.Millisecond)
	}
	inputLogger.Info().
		Uint16("poll_ms", l.pollMs).
		Uint16("debounce_ms", s.DebounceMs).
		Msg("input loop settings applied")
}

// normalizePollRate keeps a config value of 0 from stalling the ticker.
func normalizePollRate(ms uint16) uint16 {
	if ms == 0 {
		return 1
	}
	return ms
}

// runInputLoop is the single recognition loop: sample, debounce, feed
// the chord state machine, dispatch on completion. It owns the chord
// context; nothing else mutates it. Settings arriving on updates take
// effect on the running loop.
func runInputLoop(ctx context.Context, source ButtonSource, tables *chord.Tables, emitter Emitter, updates <-chan ini.Settings) {
	settings := CurrentSettings()
	l := newInputLoop(settings)
	defer l.ticker.Stop()

	cc := chord.NewContext()
	start := time.Now()

	inputLogger.Info().
		Uint16("poll_ms", l.pollMs).
		Uint16("debounce_ms", settings.DebounceMs).
		Msg("input loop started")

	for {
		select {
		case <-ctx.Done():
			inputLogger.Info().Msg("input loop stopped")
			return
		case s := <-updates:
			l.applySettings(s)
		case <-l.ticker.C:
			raw, err := source.Sample()
			if err != nil {
				inputLogger.Warn().Err(err).Msg("button sample failed")
				continue
			}
			metricSamplesPolled.Inc()
			now := uint32(time.Since(start).Milliseconds())
			buttons := l.deb.feed(raw, now)
			if cc.Update(buttons, now) {
				completed := cc.Completed()
				inputLogger.Debug().Uint16("chord", uint16(completed)).Msg("chord completed")
				dispatchChord(tables, emitter, completed)
			}
		}
	}
}
