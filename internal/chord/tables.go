package chord

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// Table capacities. Layout files exceeding these capacities load with the
// overflow entries dropped and counted, never rejected outright.
const (
	MaxKeyMappings      = 256
	MaxMouseMappings    = 32
	MaxConsumerMappings = 32
	MaxMultiCharChords  = 64
	MaxMultiCharKeys    = 512 // total keys across all macros
)

// KeyMapping binds a chord to a single keystroke.
type KeyMapping struct {
	Chord        Chord
	Modifiers    uint8  // HID modifier bits (Ctrl, Shift, Alt, GUI)
	Keycode      uint8  // HID keycode, 0 for none
	ConsumerCode uint16 // reserved, 0 in keyboard entries
}

// MouseMapping binds a chord to a discrete mouse action. DX/DY/Wheel are
// carried for layout compatibility and are currently always zero.
type MouseMapping struct {
	Chord   Chord
	DX, DY  int8
	Buttons uint8 // bit 0 left, bit 1 right, bit 2 middle
	Wheel   int8
}

// ConsumerMapping binds a chord to a 16-bit HID consumer usage
// (media keys, volume, brightness).
type ConsumerMapping struct {
	Chord Chord
	Usage uint16
}

// MultiCharKey is one keystroke of a macro sequence.
type MultiCharKey struct {
	Modifiers uint8
	Keycode   uint8
}

// multiCharMapping binds a chord to a run of keys in the shared arena.
// During pass 1 of a layout load, keysOff temporarily holds the string
// table index; pass 2 resolves it to an arena offset.
type multiCharMapping struct {
	chord   Chord
	keysOff uint16
	keysN   uint16
}

// Tables holds the active chord bindings: four fixed-capacity tables, the
// multichar key arena, and the skipped-entry diagnostics. All tables are
// replaced together by a layout load; lookups are plain linear scans over
// small tables, first match wins.
//
// Tables is written by layout loads and read by the dispatch path, which
// run on different goroutines in the daemon. The loader builds a complete
// replacement off to the side and takes the write lock only for the swap,
// so lookups block for a few assignments, never for a parse.
type Tables struct {
	mu sync.RWMutex

	keys      []KeyMapping
	mouse     []MouseMapping
	consumer  []ConsumerMapping
	multiChar []multiCharMapping
	arena     []MultiCharKey

	// Skipped-entry tallies from the last load. Non-zero values mean the
	// layout uses features this firmware does not implement.
	systemSkipped    uint16
	multiCharSkipped uint16
	unknownSkipped   uint16

	log *zerolog.Logger
}

var defaultTablesLogger = zerolog.New(os.Stdout).With().Str("subsystem", "chord").Logger()

// NewTables returns empty tables. Call LoadDefaults for the built-in
// boot layout, or LoadBinary with a layout file.
func NewTables(logger *zerolog.Logger) *Tables {
	if logger == nil {
		l := defaultTablesLogger
		logger = &l
	}
	return &Tables{
		keys:      make([]KeyMapping, 0, MaxKeyMappings),
		mouse:     make([]MouseMapping, 0, MaxMouseMappings),
		consumer:  make([]ConsumerMapping, 0, MaxConsumerMappings),
		multiChar: make([]multiCharMapping, 0, MaxMultiCharChords),
		arena:     make([]MultiCharKey, 0, MaxMultiCharKeys),
		log:       logger,
	}
}

// LookupKey returns the keyboard mapping for an exact chord match.
func (t *Tables) LookupKey(c Chord) (KeyMapping, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i := range t.keys {
		if t.keys[i].Chord == c {
			return t.keys[i], true
		}
	}
	return KeyMapping{}, false
}

// LookupMouse returns the mouse mapping for an exact chord match.
func (t *Tables) LookupMouse(c Chord) (MouseMapping, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i := range t.mouse {
		if t.mouse[i].Chord == c {
			return t.mouse[i], true
		}
	}
	return MouseMapping{}, false
}

// LookupConsumer returns the consumer usage code for an exact chord match.
func (t *Tables) LookupConsumer(c Chord) (uint16, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i := range t.consumer {
		if t.consumer[i].Chord == c {
			return t.consumer[i].Usage, true
		}
	}
	return 0, false
}

// LookupMultiChar returns the macro key sequence for an exact chord match.
// The returned slice aliases the shared arena and is valid until the next
// layout load; callers replay it, they do not keep it.
func (t *Tables) LookupMultiChar(c Chord) ([]MultiCharKey, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i := range t.multiChar {
		if t.multiChar[i].chord == c {
			off, n := int(t.multiChar[i].keysOff), int(t.multiChar[i].keysN)
			if n > 0 && off+n <= len(t.arena) {
				return t.arena[off : off+n], true
			}
			return nil, false
		}
	}
	return nil, false
}

// KeyCount returns the number of loaded keyboard mappings.
func (t *Tables) KeyCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.keys)
}

// MouseCount returns the number of loaded mouse mappings.
func (t *Tables) MouseCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.mouse)
}

// ConsumerCount returns the number of loaded consumer mappings.
func (t *Tables) ConsumerCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.consumer)
}

// MultiCharCount returns the number of loaded multichar macros.
func (t *Tables) MultiCharCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.multiChar)
}

// SkippedCount returns the total number of layout entries dropped during
// the last load. Non-zero means the layout uses unsupported features.
func (t *Tables) SkippedCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return int(t.systemSkipped) + int(t.multiCharSkipped) + int(t.unknownSkipped)
}

// SkippedDetails breaks the skipped total down by cause: system-function
// chords, multichar chords over table capacity, and unknown event types.
func (t *Tables) SkippedDetails() (system, multiChar, unknown int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return int(t.systemSkipped), int(t.multiCharSkipped), int(t.unknownSkipped)
}
