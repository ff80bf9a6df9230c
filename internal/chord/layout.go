package chord

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Layout file geometry. All multi-byte integers little-endian.
//
//	0x00        reserved header bytes
//	0x08  u16   chord record count
//	0x0A  u16   string-location table offset (0 = no string table)
//	0x60..0x7F  index table region, not consumed here
//	0x80        chord records, 8 bytes each:
//	            u32 bitmask (low 16 bits = chord), u16 modifier, u16 keycode
const (
	layoutHeaderSize   = 128
	layoutRecordSize   = 8
	layoutCountOffset  = 0x08
	layoutStringOffset = 0x0A
	layoutRecordsStart = 0x80
)

// Event types, low byte of the modifier field.
const (
	eventMouse     = 0x01
	eventKeyboard  = 0x02
	eventConsumer  = 0x03
	eventSystem    = 0x07
	eventMultiChar = 0xFF
)

// Mouse function codes, high byte of the modifier field when the event
// type is mouse. Only the click functions map to button bits today.
const (
	mouseFnToggle     = 0x01
	mouseFnLeftClick  = 0x02
	mouseFnScrollTog  = 0x04
	mouseFnSpeedDec   = 0x05
	mouseFnSpeedCycle = 0x06
	mouseFnMiddle     = 0x0A
	mouseFnSpeedInc   = 0x0B
	mouseFnRightClick = 0x0C
)

// Macro string length limits: a string is a u16 byte length followed by
// (modifier, keycode) pairs, so a valid length is even, covers at least
// one pair, and stays under 256 pairs.
const (
	minStringLen = 4
	maxStringLen = 512
)

// Structural layout errors. Any of these rejects the whole load and
// leaves the previously active tables untouched.
var (
	ErrLayoutTooShort     = errors.New("layout shorter than fixed header")
	ErrBadChordCount      = errors.New("chord count zero or over capacity")
	ErrLayoutTruncated    = errors.New("layout shorter than chord records require")
	ErrStringTableOverlap = errors.New("string table overlaps chord records")
)

// LoadBinary parses an untrusted layout buffer and, on success, replaces
// every table in one swap. Header-level violations return an error with
// no mutation. Per-entry problems (unsupported event types, capacity
// overflow, malformed macro strings) degrade that entry and are tallied
// in the skipped counters; they never fail the load.
//
// The buffer is fully copied into the tables; the caller may reuse it.
func (t *Tables) LoadBinary(data []byte) error {
	if len(data) < layoutHeaderSize {
		return fmt.Errorf("%w: %d bytes", ErrLayoutTooShort, len(data))
	}

	chordCount := int(binary.LittleEndian.Uint16(data[layoutCountOffset:]))
	stringTableOff := int(binary.LittleEndian.Uint16(data[layoutStringOffset:]))

	if chordCount == 0 || chordCount > MaxKeyMappings {
		return fmt.Errorf("%w: %d", ErrBadChordCount, chordCount)
	}

	recordsEnd := layoutRecordsStart + chordCount*layoutRecordSize
	if len(data) < recordsEnd {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrLayoutTruncated, recordsEnd, len(data))
	}

	// A string table inside the chord record region would make every
	// string offset read chord data as pointers.
	if stringTableOff != 0 && stringTableOff < recordsEnd {
		return fmt.Errorf("%w: offset 0x%04X, records end 0x%04X", ErrStringTableOverlap, stringTableOff, recordsEnd)
	}

	// Header validated. Parse into staging tables so a half-parsed layout
	// is never observable through the receiver.
	next := Tables{
		keys:      make([]KeyMapping, 0, MaxKeyMappings),
		mouse:     make([]MouseMapping, 0, MaxMouseMappings),
		consumer:  make([]ConsumerMapping, 0, MaxConsumerMappings),
		multiChar: make([]multiCharMapping, 0, MaxMultiCharChords),
		arena:     make([]MultiCharKey, 0, MaxMultiCharKeys),
		log:       t.log,
	}

	for i := 0; i < chordCount; i++ {
		rec := data[layoutRecordsStart+i*layoutRecordSize:]
		bitmask := binary.LittleEndian.Uint32(rec[0:4])
		modifier := binary.LittleEndian.Uint16(rec[4:6])
		keycode := binary.LittleEndian.Uint16(rec[6:8])

		c := Chord(bitmask & 0xFFFF)
		eventType := uint8(modifier & 0xFF)
		modFlags := uint8(modifier >> 8)

		switch eventType {
		case eventKeyboard:
			if len(next.keys) < MaxKeyMappings {
				next.keys = append(next.keys, KeyMapping{
					Chord:     c,
					Modifiers: hidModifiers(modFlags),
					Keycode:   uint8(keycode & 0xFF),
				})
			}

		case eventMouse:
			if len(next.mouse) < MaxMouseMappings {
				next.mouse = append(next.mouse, MouseMapping{
					Chord:   c,
					Buttons: mouseButtons(modFlags),
				})
			}

		case eventConsumer:
			if len(next.consumer) < MaxConsumerMappings {
				next.consumer = append(next.consumer, ConsumerMapping{
					Chord: c,
					Usage: keycode,
				})
				t.log.Debug().
					Uint16("chord", uint16(c)).
					Uint16("usage", keycode).
					Msg("Consumer chord")
			}

		case eventSystem:
			// Config switching, toggles, sleep/wake: not implemented.
			next.systemSkipped++

		case eventMultiChar:
			if len(next.multiChar) < MaxMultiCharChords {
				// keycode is a string table index; pass 2 resolves it
				// into an arena offset.
				next.multiChar = append(next.multiChar, multiCharMapping{
					chord:   c,
					keysOff: keycode,
				})
			} else {
				next.multiCharSkipped++
			}

		default:
			next.unknownSkipped++
		}
	}

	if len(next.multiChar) > 0 && stringTableOff > 0 && stringTableOff < len(data) {
		next.resolveStrings(data, stringTableOff)
	}

	t.log.Debug().
		Int("keys", len(next.keys)).
		Int("mouse", len(next.mouse)).
		Int("consumer", len(next.consumer)).
		Int("multichar", len(next.multiChar)).
		Int("skipped", next.SkippedCount()).
		Msg("Layout loaded")

	t.mu.Lock()
	t.keys = next.keys
	t.mouse = next.mouse
	t.consumer = next.consumer
	t.multiChar = next.multiChar
	t.arena = next.arena
	t.systemSkipped = next.systemSkipped
	t.multiCharSkipped = next.multiCharSkipped
	t.unknownSkipped = next.unknownSkipped
	t.mu.Unlock()
	return nil
}

// resolveStrings is pass 2: turn the string-table indices stashed in the
// multichar placeholders into copied key sequences in the arena.
//
// The location table holds one u32 absolute offset per string, and its
// size is only discoverable from the maximum index the chord records
// actually reference. A location table that overflows the buffer abandons
// every macro; everything after that degrades per entry, so one bad macro
// cannot take the rest of the layout down.
func (t *Tables) resolveStrings(data []byte, tableOff int) {
	maxIndex := 0
	for i := range t.multiChar {
		idx := int(t.multiChar[i].keysOff)
		if idx < 256 && idx > maxIndex {
			maxIndex = idx
		}
	}

	locTableSize := (maxIndex + 1) * 4
	if tableOff+locTableSize > len(data) {
		t.log.Warn().
			Int("offset", tableOff).
			Int("size", locTableSize).
			Msg("String location table truncated, dropping all macros")
		t.multiChar = t.multiChar[:0]
		return
	}
	locTable := data[tableOff : tableOff+locTableSize]

	for i := range t.multiChar {
		m := &t.multiChar[i]
		strIndex := int(m.keysOff)
		m.keysOff, m.keysN = 0, 0

		if strIndex > maxIndex {
			t.log.Warn().Int("index", strIndex).Msg("String index out of range")
			continue
		}

		locOff := strIndex * 4
		if locOff+4 > len(locTable) {
			continue
		}
		strOff := binary.LittleEndian.Uint32(locTable[locOff:])

		// The offset must leave room for the length field and cannot sit
		// inside the first two header bytes.
		if strOff < 2 || uint64(strOff)+2 > uint64(len(data)) {
			t.log.Warn().Uint32("offset", strOff).Msg("String offset out of range")
			continue
		}

		strLen := int(binary.LittleEndian.Uint16(data[strOff:]))
		if strLen&1 != 0 || strLen < minStringLen || strLen > maxStringLen {
			t.log.Warn().Int("length", strLen).Msg("Bad macro string length")
			continue
		}

		numKeys := strLen/2 - 1 // the length field counts itself
		if int(strOff)+2+numKeys*2 > len(data) {
			t.log.Warn().Uint32("offset", strOff).Int("keys", numKeys).Msg("Macro string truncated")
			continue
		}

		start := len(t.arena)
		stored := 0
		for k := 0; k < numKeys; k++ {
			if len(t.arena) >= MaxMultiCharKeys {
				t.log.Warn().Msg("Multichar key arena full, truncating macro")
				break
			}
			keyOff := int(strOff) + 2 + k*2
			mod, key := data[keyOff], data[keyOff+1]
			if mod == 0 && key == 0 {
				// No-op filler pair.
				continue
			}
			t.arena = append(t.arena, MultiCharKey{
				Modifiers: hidModifiers(mod),
				Keycode:   key,
			})
			stored++
		}

		m.keysOff = uint16(start)
		m.keysN = uint16(stored)
	}
}

// mouseButtons maps a layout mouse function code to a button bitmask.
// Non-click functions (speed and mode toggles) carry no buttons.
func mouseButtons(fn uint8) uint8 {
	switch fn {
	case mouseFnLeftClick:
		return 0x01
	case mouseFnRightClick:
		return 0x02
	case mouseFnMiddle:
		return 0x04
	default:
		return 0
	}
}
