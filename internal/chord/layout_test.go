package chord

import (
	"encoding/binary"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type layoutRecord struct {
	bitmask  uint32
	modifier uint16
	keycode  uint16
}

// buildLayout assembles a minimal valid layout buffer: 128-byte header,
// the given records at 0x80, and any string-table bytes appended after.
func buildLayout(records []layoutRecord, stringTableOff uint16, tail []byte) []byte {
	buf := make([]byte, layoutHeaderSize, layoutHeaderSize+len(records)*layoutRecordSize+len(tail))
	binary.LittleEndian.PutUint16(buf[layoutCountOffset:], uint16(len(records)))
	binary.LittleEndian.PutUint16(buf[layoutStringOffset:], stringTableOff)
	for _, r := range records {
		var rec [layoutRecordSize]byte
		binary.LittleEndian.PutUint32(rec[0:], r.bitmask)
		binary.LittleEndian.PutUint16(rec[4:], r.modifier)
		binary.LittleEndian.PutUint16(rec[6:], r.keycode)
		buf = append(buf, rec[:]...)
	}
	return append(buf, tail...)
}

func TestLoadBinarySingleKeyboardRecord(t *testing.T) {
	tb := NewTables(nil)

	data := buildLayout([]layoutRecord{
		{bitmask: 0x0005, modifier: 0x0002, keycode: 0x0004},
	}, 0, nil)
	require.Len(t, data, 136)
	require.NoError(t, tb.LoadBinary(data))

	require.Equal(t, 1, tb.KeyCount())
	km, ok := tb.LookupKey(0x0005)
	require.True(t, ok)
	assert.Equal(t, KeyMapping{Chord: 0x0005, Modifiers: 0, Keycode: 0x04, ConsumerCode: 0}, km)
}

func TestLoadBinaryRejectsShortBuffer(t *testing.T) {
	tb := NewTables(nil)
	tb.LoadDefaults()
	before := tb.KeyCount()

	err := tb.LoadBinary(make([]byte, layoutHeaderSize-1))
	require.ErrorIs(t, err, ErrLayoutTooShort)
	assert.Equal(t, before, tb.KeyCount(), "rejected load must not touch tables")
}

func TestLoadBinaryRejectsBadChordCount(t *testing.T) {
	tb := NewTables(nil)
	tb.LoadDefaults()
	before := tb.KeyCount()

	zero := make([]byte, layoutHeaderSize)
	require.ErrorIs(t, tb.LoadBinary(zero), ErrBadChordCount)

	over := make([]byte, layoutHeaderSize)
	binary.LittleEndian.PutUint16(over[layoutCountOffset:], MaxKeyMappings+1)
	require.ErrorIs(t, tb.LoadBinary(over), ErrBadChordCount)

	assert.Equal(t, before, tb.KeyCount())
}

func TestLoadBinaryRejectsTruncatedRecords(t *testing.T) {
	tb := NewTables(nil)

	data := buildLayout([]layoutRecord{{bitmask: 1, modifier: 0x0002, keycode: 4}}, 0, nil)
	require.ErrorIs(t, tb.LoadBinary(data[:len(data)-1]), ErrLayoutTruncated)
}

func TestLoadBinaryRejectsStringTableOverlap(t *testing.T) {
	tb := NewTables(nil)

	// Offset 0x80 points straight into the (single) chord record.
	data := buildLayout([]layoutRecord{{bitmask: 1, modifier: 0x0002, keycode: 4}}, layoutRecordsStart, nil)
	require.ErrorIs(t, tb.LoadBinary(data), ErrStringTableOverlap)
}

func TestLoadBinaryDispatchPerEventType(t *testing.T) {
	tb := NewTables(nil)

	records := []layoutRecord{
		{bitmask: 0x0001, modifier: 0x0002, keycode: uint16(KeyA)}, // keyboard
		{bitmask: 0x0002, modifier: 0x0201, keycode: 0},            // mouse, left click fn
		{bitmask: 0x0003, modifier: 0x0003, keycode: 0x00E9},       // consumer, volume up
		{bitmask: 0x0004, modifier: 0x0007, keycode: 0},            // system, unsupported
		{bitmask: 0x0005, modifier: 0x00FF, keycode: 0},            // multichar, string 0
		{bitmask: 0x0006, modifier: 0x0042, keycode: 0},            // unknown type
	}
	stringOff := uint16(layoutHeaderSize + len(records)*layoutRecordSize)
	// Location table: one u32 pointing just past itself, then the string:
	// u16 len=4, one (mod,key) pair.
	tail := make([]byte, 4+2+2)
	binary.LittleEndian.PutUint32(tail[0:], uint32(stringOff)+4)
	binary.LittleEndian.PutUint16(tail[4:], 4)
	tail[6], tail[7] = 0x00, KeyB

	require.NoError(t, tb.LoadBinary(buildLayout(records, stringOff, tail)))

	assert.Equal(t, 1, tb.KeyCount())
	assert.Equal(t, 1, tb.MouseCount())
	assert.Equal(t, 1, tb.ConsumerCount())
	assert.Equal(t, 1, tb.MultiCharCount())

	system, multi, unknown := tb.SkippedDetails()
	assert.Equal(t, 1, system)
	assert.Equal(t, 0, multi)
	assert.Equal(t, 1, unknown)
	assert.Equal(t, 2, tb.SkippedCount())

	mm, ok := tb.LookupMouse(0x0002)
	require.True(t, ok)
	assert.Equal(t, uint8(0x01), mm.Buttons)
	assert.Zero(t, mm.DX)
	assert.Zero(t, mm.DY)
	assert.Zero(t, mm.Wheel)

	usage, ok := tb.LookupConsumer(0x0003)
	require.True(t, ok)
	assert.Equal(t, uint16(0x00E9), usage)
}

func TestLoadBinaryMultiCharRoundTrip(t *testing.T) {
	tb := NewTables(nil)

	records := []layoutRecord{
		{bitmask: 0x0009, modifier: 0x00FF, keycode: 0}, // string index 0
	}
	stringOff := uint16(layoutHeaderSize + len(records)*layoutRecordSize) // 136

	// Location table (4 bytes) then the string: u16 len=6 and two pairs
	// (mod 0x01, key 0x04) (mod 0x00, key 0x05).
	tail := make([]byte, 4+2+4)
	binary.LittleEndian.PutUint32(tail[0:], uint32(stringOff)+4)
	binary.LittleEndian.PutUint16(tail[4:], 6)
	tail[6], tail[7] = 0x01, 0x04
	tail[8], tail[9] = 0x00, 0x05

	require.NoError(t, tb.LoadBinary(buildLayout(records, stringOff, tail)))

	keys, ok := tb.LookupMultiChar(0x0009)
	require.True(t, ok)
	require.Len(t, keys, 2)
	// Layout flag 0x01 is Shift, which lands on HID bit 1.
	assert.Equal(t, MultiCharKey{Modifiers: 0x02, Keycode: 0x04}, keys[0])
	assert.Equal(t, MultiCharKey{Modifiers: 0x00, Keycode: 0x05}, keys[1])
}

func TestLoadBinaryMultiCharSkipsFillerPairs(t *testing.T) {
	tb := NewTables(nil)

	records := []layoutRecord{{bitmask: 0x0011, modifier: 0x00FF, keycode: 0}}
	stringOff := uint16(layoutHeaderSize + len(records)*layoutRecordSize)

	// Three pairs, middle one is (0,0) filler.
	tail := make([]byte, 4+2+6)
	binary.LittleEndian.PutUint32(tail[0:], uint32(stringOff)+4)
	binary.LittleEndian.PutUint16(tail[4:], 8)
	tail[6], tail[7] = 0x00, KeyA
	tail[8], tail[9] = 0x00, 0x00
	tail[10], tail[11] = 0x00, KeyB

	require.NoError(t, tb.LoadBinary(buildLayout(records, stringOff, tail)))

	keys, ok := tb.LookupMultiChar(0x0011)
	require.True(t, ok)
	require.Len(t, keys, 2)
	assert.Equal(t, KeyA, keys[0].Keycode)
	assert.Equal(t, KeyB, keys[1].Keycode)
}

func TestLoadBinaryTruncatedStringDegradesOneEntry(t *testing.T) {
	tb := NewTables(nil)

	records := []layoutRecord{
		{bitmask: 0x0021, modifier: 0x00FF, keycode: 0}, // string 0: good
		{bitmask: 0x0022, modifier: 0x00FF, keycode: 1}, // string 1: truncated
	}
	stringOff := uint16(layoutHeaderSize + len(records)*layoutRecordSize)

	// Two location entries, then string 0 (len=4, one pair), then string 1
	// whose claimed length runs past the end of the buffer.
	tail := make([]byte, 8+2+2+2)
	binary.LittleEndian.PutUint32(tail[0:], uint32(stringOff)+8)
	binary.LittleEndian.PutUint32(tail[4:], uint32(stringOff)+12)
	binary.LittleEndian.PutUint16(tail[8:], 4)
	tail[10], tail[11] = 0x00, KeyC
	binary.LittleEndian.PutUint16(tail[12:], 64) // 31 pairs, nowhere near present

	require.NoError(t, tb.LoadBinary(buildLayout(records, stringOff, tail)))
	assert.Equal(t, 2, tb.MultiCharCount())

	keys, ok := tb.LookupMultiChar(0x0021)
	require.True(t, ok)
	require.Len(t, keys, 1)
	assert.Equal(t, KeyC, keys[0].Keycode)

	_, ok = tb.LookupMultiChar(0x0022)
	assert.False(t, ok, "truncated macro must degrade to empty")
}

func TestLoadBinaryLocationTableOverflowDropsAllMacros(t *testing.T) {
	tb := NewTables(nil)

	// The referenced index forces a location table larger than the bytes
	// remaining in the buffer, which abandons every macro.
	records := []layoutRecord{
		{bitmask: 0x0031, modifier: 0x00FF, keycode: 10},
		{bitmask: 0x0001, modifier: 0x0002, keycode: uint16(KeyA)},
	}
	stringOff := uint16(layoutHeaderSize + len(records)*layoutRecordSize)

	require.NoError(t, tb.LoadBinary(buildLayout(records, stringOff, []byte{0, 0, 0, 0})))

	assert.Equal(t, 0, tb.MultiCharCount())
	assert.Equal(t, 1, tb.KeyCount(), "keyboard entries are unaffected")
}

func TestLoadBinaryOddStringLengthRejected(t *testing.T) {
	tb := NewTables(nil)

	records := []layoutRecord{{bitmask: 0x0041, modifier: 0x00FF, keycode: 0}}
	stringOff := uint16(layoutHeaderSize + len(records)*layoutRecordSize)

	tail := make([]byte, 4+2+4)
	binary.LittleEndian.PutUint32(tail[0:], uint32(stringOff)+4)
	binary.LittleEndian.PutUint16(tail[4:], 5) // odd
	require.NoError(t, tb.LoadBinary(buildLayout(records, stringOff, tail)))

	_, ok := tb.LookupMultiChar(0x0041)
	assert.False(t, ok)
}

func TestLoadBinaryModifierTranslation(t *testing.T) {
	tb := NewTables(nil)

	// Layout flags: bit0 Shift, bit1 Ctrl, bit2 Alt, bit5 GUI. HID wants
	// Ctrl on bit0 and Shift on bit1.
	records := []layoutRecord{
		{bitmask: 0x0101, modifier: 0x0102, keycode: uint16(KeyA)}, // Shift
		{bitmask: 0x0102, modifier: 0x0202, keycode: uint16(KeyB)}, // Ctrl
		{bitmask: 0x0103, modifier: 0x0402, keycode: uint16(KeyC)}, // Alt
		{bitmask: 0x0104, modifier: 0x2002, keycode: uint16(KeyD)}, // GUI
	}
	require.NoError(t, tb.LoadBinary(buildLayout(records, 0, nil)))

	for _, tc := range []struct {
		chord Chord
		mods  uint8
	}{
		{0x0101, ModLeftShift},
		{0x0102, ModLeftCtrl},
		{0x0103, ModLeftAlt},
		{0x0104, ModLeftGUI},
	} {
		km, ok := tb.LookupKey(tc.chord)
		require.True(t, ok)
		assert.Equal(t, tc.mods, km.Modifiers, "chord 0x%04X", uint16(tc.chord))
	}
}

func TestLoadBinaryReplacesPreviousLayout(t *testing.T) {
	tb := NewTables(nil)
	tb.LoadDefaults()

	data := buildLayout([]layoutRecord{
		{bitmask: 0x0777, modifier: 0x0002, keycode: uint16(KeyZ)},
	}, 0, nil)
	require.NoError(t, tb.LoadBinary(data))

	assert.Equal(t, 1, tb.KeyCount())
	_, ok := tb.LookupKey(BtnF1M)
	assert.False(t, ok, "default mappings must be gone after a load")
}

func TestLookupMissingChordIsNotAnError(t *testing.T) {
	tb := NewTables(nil)
	tb.LoadDefaults()

	_, ok := tb.LookupKey(0x7FFF)
	assert.False(t, ok)
	_, ok = tb.LookupMouse(0x7FFF)
	assert.False(t, ok)
	_, ok = tb.LookupConsumer(0x7FFF)
	assert.False(t, ok)
	_, ok = tb.LookupMultiChar(0x7FFF)
	assert.False(t, ok)
}

func TestLoadDefaults(t *testing.T) {
	tb := NewTables(nil)
	tb.LoadDefaults()

	require.Equal(t, len(defaultKeyMappings), tb.KeyCount())
	km, ok := tb.LookupKey(BtnF1M)
	require.True(t, ok)
	assert.Equal(t, KeyE, km.Keycode)

	km, ok = tb.LookupKey(BtnT1 | BtnF1M)
	require.True(t, ok)
	assert.Equal(t, ModLeftShift, km.Modifiers)
	assert.Equal(t, KeyE, km.Keycode)
}

// Layout loads happen on the control-channel and web goroutines while the
// input loop keeps firing lookups; a lookup must only ever see a fully
// swapped table. Run with -race.
func TestLoadBinaryConcurrentWithLookups(t *testing.T) {
	tb := NewTables(nil)

	layoutA := buildLayout([]layoutRecord{
		{bitmask: 0x0005, modifier: 0x0002, keycode: 0x0004},
	}, 0, nil)
	layoutB := buildLayout([]layoutRecord{
		{bitmask: 0x0005, modifier: 0x0002, keycode: 0x0005},
	}, 0, nil)
	require.NoError(t, tb.LoadBinary(layoutA))

	done := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				if km, ok := tb.LookupKey(0x0005); ok {
					if km.Keycode != 0x04 && km.Keycode != 0x05 {
						t.Errorf("lookup saw torn mapping: keycode %#02x", km.Keycode)
						return
					}
				}
				tb.KeyCount()
				tb.SkippedCount()
			}
		}()
	}

	for i := 0; i < 200; i++ {
		data := layoutA
		if i%2 == 1 {
			data = layoutB
		}
		require.NoError(t, tb.LoadBinary(data))
	}
	close(done)
	wg.Wait()
}
