// Package chord implements the chord recognition state machine and the
// binary layout tables it feeds. A chord is a combination of buttons held
// together; it is recognized on full release and looked up in the active
// mapping tables to produce a keyboard, mouse, consumer-control or macro
// action.
package chord

// Chord is a 16-bit button bitmask: bit i set means button i is pressed.
// Zero means no buttons pressed.
type Chord uint16

// Button bit positions. Naming: T1-T4 thumb buttons, F1-F4 finger rows,
// L/M/R columns. The assignment is fixed by the hardware and must not
// change, layout files depend on it.
const (
	BtnT1 Chord = 1 << iota // Thumb 1 - Num
	BtnF1L
	BtnF1M
	BtnF1R
	BtnT2 // Thumb 2 - Alt
	BtnF2L
	BtnF2M
	BtnF2R
	BtnT3 // Thumb 3 - Ctrl/Enter
	BtnF3L
	BtnF3M
	BtnF3R
	BtnT4 // Thumb 4 - Shift/Space
	BtnF4L
	BtnF4M
	BtnF4R
)

// AnyThumb masks the four thumb buttons, AnyFinger the twelve finger
// buttons.
const (
	AnyThumb  = BtnT1 | BtnT2 | BtnT3 | BtnT4
	AnyFinger = ^AnyThumb & 0xFFFF
)

// State is the recognizer state.
type State uint8

const (
	StateIdle     State = iota // no buttons pressed
	StateBuilding              // buttons being pressed
	StateHeld                  // chord held, waiting for release
	StateReleasing             // buttons being released
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBuilding:
		return "building"
	case StateHeld:
		return "held"
	case StateReleasing:
		return "releasing"
	}
	return "unknown"
}

// Context holds the mutable state of the recognizer. One instance per
// device, created once and fed every debounced button sample.
type Context struct {
	state   State
	current Chord // latest raw sample
	max     Chord // union of every sample since the press began

	// Tick timestamps of the first press and the last release. Kept for
	// timeout and repeat policies, not consulted by the transitions.
	pressTime   uint32
	releaseTime uint32

	fired bool
}

// NewContext returns a recognizer in the idle state.
func NewContext() *Context {
	return &Context{}
}

// Reset returns the recognizer to idle and clears all accumulated state.
func (c *Context) Reset() {
	*c = Context{}
}

// State reports the current recognizer state.
func (c *Context) State() State { return c.state }

// Current returns the latest raw button sample.
func (c *Context) Current() Chord { return c.current }

// Update feeds one debounced button sample and advances the state machine.
// It returns true exactly when a chord has just completed, that is on the
// sample where every button has been released after a press cycle. The
// completed value is then available from Completed until the next press
// begins.
//
// A chord is the union of every button seen down at any point during the
// press cycle, not the set held at the instant of release. Rolling fingers
// on and off mid-chord never loses bits, and the chord fires exactly once.
func (c *Context) Update(buttons Chord, now uint32) bool {
	switch c.state {
	case StateIdle:
		if buttons != 0 {
			// First button down, start building.
			c.state = StateBuilding
			c.current = buttons
			c.max = buttons
			c.fired = false
			c.pressTime = now
		}

	case StateBuilding:
		if buttons == 0 {
			// Everything released, the chord fires.
			c.state = StateIdle
			c.releaseTime = now
			c.fired = true
			return true
		}
		if buttons != c.current {
			// Fingers added or removed mid-chord. The union only grows.
			c.current = buttons
			c.max |= buttons
		}
		// Stable non-zero samples could move to StateHeld for hold/repeat
		// semantics; the recognizer currently only tracks the union.

	case StateHeld:
		if buttons == 0 {
			c.state = StateIdle
			c.releaseTime = now
			c.fired = true
			return true
		}
		if buttons != c.current {
			c.current = buttons
		}

	case StateReleasing:
		if buttons == 0 {
			c.state = StateIdle
			c.releaseTime = now
			c.fired = true
			return true
		}
	}

	return false
}

// Completed returns the chord that just fired: the accumulated union of
// the finished press cycle. Only meaningful immediately after Update
// returned true; the value survives until the next press starts a new
// cycle.
func (c *Context) Completed() Chord {
	return c.max
}
