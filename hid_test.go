package nchorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nchorder/nchorder/internal/chord"
)

type recordedKey struct {
	modifiers uint8
	keycode   uint8
}

type fakeEmitter struct {
	keys     []recordedKey
	consumer []uint16
	mouse    []uint8
}

func (f *fakeEmitter) KeyPress(modifiers, keycode uint8) error {
	f.keys = append(f.keys, recordedKey{modifiers, keycode})
	return nil
}

func (f *fakeEmitter) ConsumerPress(usage uint16) error {
	f.consumer = append(f.consumer, usage)
	return nil
}

func (f *fakeEmitter) MouseClick(buttons uint8) error {
	f.mouse = append(f.mouse, buttons)
	return nil
}

func (f *fakeEmitter) Close() error { return nil }

func defaultTables(t *testing.T) *chord.Tables {
	t.Helper()
	tables := chord.NewTables(nil)
	tables.LoadDefaults()
	return tables
}

func TestDispatchChordKey(t *testing.T) {
	tables := defaultTables(t)
	emitter := &fakeEmitter{}

	require.True(t, dispatchChord(tables, emitter, chord.BtnF1M))
	require.Len(t, emitter.keys, 1)
	assert.Equal(t, uint8(chord.KeyE), emitter.keys[0].keycode)
	assert.Zero(t, emitter.keys[0].modifiers)
}

func TestDispatchChordModified(t *testing.T) {
	tables := defaultTables(t)
	emitter := &fakeEmitter{}

	require.True(t, dispatchChord(tables, emitter, chord.BtnT1|chord.BtnF1M))
	require.Len(t, emitter.keys, 1)
	assert.Equal(t, uint8(chord.KeyE), emitter.keys[0].keycode)
	assert.Equal(t, uint8(chord.ModLeftShift), emitter.keys[0].modifiers)
}

func TestDispatchChordUnmapped(t *testing.T) {
	tables := defaultTables(t)
	emitter := &fakeEmitter{}

	assert.False(t, dispatchChord(tables, emitter, chord.BtnT4|chord.BtnT3))
	assert.Empty(t, emitter.keys)
	assert.Empty(t, emitter.consumer)
	assert.Empty(t, emitter.mouse)
}

func TestDispatchChordNullEmitterSilent(t *testing.T) {
	tables := defaultTables(t)
	assert.True(t, dispatchChord(tables, nullEmitter{}, chord.BtnF1M))
}
