package chord

// HID keyboard usage codes for the built-in layout. Standard usage table
// values (A=0x04 .. Z=0x1D).
const (
	KeyA uint8 = 0x04 + iota
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
)

const (
	KeyEnter     uint8 = 0x28
	KeyEscape    uint8 = 0x29
	KeyBackspace uint8 = 0x2A
	KeyTab       uint8 = 0x2B
	KeySpace     uint8 = 0x2C
)

// HID modifier bits as they appear in keyboard reports.
const (
	ModLeftCtrl  uint8 = 0x01
	ModLeftShift uint8 = 0x02
	ModLeftAlt   uint8 = 0x04
	ModLeftGUI   uint8 = 0x08
)

// hidModifiers translates a layout-file modifier flag byte into HID
// modifier bits. The layout format and HID disagree on which bit is Shift
// and which is Ctrl, hence the swap.
func hidModifiers(cfgMod uint8) uint8 {
	var m uint8
	if cfgMod&0x01 != 0 {
		m |= ModLeftShift
	}
	if cfgMod&0x02 != 0 {
		m |= ModLeftCtrl
	}
	if cfgMod&0x04 != 0 {
		m |= ModLeftAlt
	}
	if cfgMod&0x20 != 0 {
		m |= ModLeftGUI
	}
	return m
}
