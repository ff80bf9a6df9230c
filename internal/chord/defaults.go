package chord

// defaultKeyMappings is the built-in boot layout, following the common
// TabSpace letter placement so the device types before any layout file has
// been loaded. Single-finger chords cover the most frequent letters.
var defaultKeyMappings = []KeyMapping{
	{Chord: BtnF1M, Keycode: KeyE},
	{Chord: BtnF2M, Keycode: KeyT},
	{Chord: BtnF1L, Keycode: KeyA},
	{Chord: BtnF1R, Keycode: KeyO},
	{Chord: BtnF2L, Keycode: KeyI},
	{Chord: BtnF2R, Keycode: KeyN},
	{Chord: BtnF3L, Keycode: KeyS},
	{Chord: BtnF3M, Keycode: KeyR},
	{Chord: BtnF3R, Keycode: KeyH},
	{Chord: BtnF4L, Keycode: KeyL},
	{Chord: BtnF4M, Keycode: KeyD},
	{Chord: BtnF4R, Keycode: KeyC},

	// Thumb + finger
	{Chord: BtnT1 | BtnF1M, Modifiers: ModLeftShift, Keycode: KeyE},

	// Space and common controls
	{Chord: BtnF2L | BtnF2M, Keycode: KeySpace},
	{Chord: BtnF3L | BtnF3M | BtnF3R, Keycode: KeyEnter},
	{Chord: BtnF4L | BtnF4M | BtnF4R, Keycode: KeyBackspace},
}

// LoadDefaults replaces all tables with the built-in layout. Called once
// at boot before any stored layout is restored, and again when the
// operator resets the device.
func (t *Tables) LoadDefaults() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.keys = append(t.keys[:0], defaultKeyMappings...)
	t.mouse = t.mouse[:0]
	t.consumer = t.consumer[:0]
	t.multiChar = t.multiChar[:0]
	t.arena = t.arena[:0]
	t.systemSkipped = 0
	t.multiCharSkipped = 0
	t.unknownSkipped = 0

	t.log.Debug().Int("keys", len(t.keys)).Msg("Built-in layout loaded")
}
