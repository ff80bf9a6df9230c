//go:build linux

package uinput

// Linux input key codes used by the maps below.
const (
	keyEsc        = 1
	key1          = 2
	key2          = 3
	key3          = 4
	key4          = 5
	key5          = 6
	key6          = 7
	key7          = 8
	key8          = 9
	key9          = 10
	key0          = 11
	keyMinus      = 12
	keyEqual      = 13
	keyBackspace  = 14
	keyTab        = 15
	keyQ          = 16
	keyW          = 17
	keyE          = 18
	keyR          = 19
	keyT          = 20
	keyY          = 21
	keyU          = 22
	keyI          = 23
	keyO          = 24
	keyP          = 25
	keyLeftBrace  = 26
	keyRightBrace = 27
	keyEnter      = 28
	keyLeftCtrl   = 29
	keyA          = 30
	keyS          = 31
	keyD          = 32
	keyF          = 33
	keyG          = 34
	keyH          = 35
	keyJ          = 36
	keyK          = 37
	keyL          = 38
	keySemicolon  = 39
	keyApostrophe = 40
	keyGrave      = 41
	keyLeftShift  = 42
	keyBackslash  = 43
	keyZ          = 44
	keyX          = 45
	keyC          = 46
	keyV          = 47
	keyB          = 48
	keyN          = 49
	keyM          = 50
	keyComma      = 51
	keyDot        = 52
	keySlash      = 53
	keyLeftAlt    = 56
	keySpace      = 57
	keyCapsLock   = 58
	keyF1         = 59
	keyF10        = 68
	keyUp         = 103
	keyLeft       = 105
	keyRight      = 106
	keyDown       = 108
	keyLeftMeta   = 125

	keyMute       = 113
	keyVolumeDown = 114
	keyVolumeUp   = 115
	keyNextSong   = 163
	keyPlayPause  = 164
	keyPrevSong   = 165
	keyStopCD     = 166
	keyBrightDown = 224
	keyBrightUp   = 225

	btnLeft   = 0x110
	btnRight  = 0x111
	btnMiddle = 0x112
)

// hidToLinux maps HID keyboard usages (usage page 0x07) to Linux key
// codes. Not exhaustive; unmapped usages are dropped at emission time.
var hidToLinux = map[uint8]int{
	// A-Z (HID 0x04..0x1D)
	0x04: keyA, 0x05: keyB, 0x06: keyC, 0x07: keyD, 0x08: keyE, 0x09: keyF,
	0x0A: keyG, 0x0B: keyH, 0x0C: keyI, 0x0D: keyJ, 0x0E: keyK, 0x0F: keyL,
	0x10: keyM, 0x11: keyN, 0x12: keyO, 0x13: keyP, 0x14: keyQ, 0x15: keyR,
	0x16: keyS, 0x17: keyT, 0x18: keyU, 0x19: keyV, 0x1A: keyW, 0x1B: keyX,
	0x1C: keyY, 0x1D: keyZ,
	// 1-0 (HID 0x1E..0x27)
	0x1E: key1, 0x1F: key2, 0x20: key3, 0x21: key4, 0x22: key5,
	0x23: key6, 0x24: key7, 0x25: key8, 0x26: key9, 0x27: key0,
	// Controls
	0x28: keyEnter,
	0x29: keyEsc,
	0x2A: keyBackspace,
	0x2B: keyTab,
	0x2C: keySpace,
	0x2D: keyMinus,
	0x2E: keyEqual,
	0x2F: keyLeftBrace,
	0x30: keyRightBrace,
	0x31: keyBackslash,
	0x33: keySemicolon,
	0x34: keyApostrophe,
	0x35: keyGrave,
	0x36: keyComma,
	0x37: keyDot,
	0x38: keySlash,
	0x39: keyCapsLock,
	// Arrows
	0x4F: keyRight,
	0x50: keyLeft,
	0x51: keyDown,
	0x52: keyUp,
}

// modifierToLinux: index is the HID modifier bit (0 Ctrl, 1 Shift,
// 2 Alt, 3 GUI), value the Linux key for the left-hand variant.
var modifierToLinux = [4]int{keyLeftCtrl, keyLeftShift, keyLeftAlt, keyLeftMeta}

// consumerToLinux maps HID consumer usages (usage page 0x0C) to Linux
// keys for the media functions layouts actually bind.
var consumerToLinux = map[uint16]int{
	0x00B5: keyNextSong,
	0x00B6: keyPrevSong,
	0x00B7: keyStopCD,
	0x00CD: keyPlayPause,
	0x00E2: keyMute,
	0x00E9: keyVolumeUp,
	0x00EA: keyVolumeDown,
	0x006F: keyBrightUp,
	0x0070: keyBrightDown,
}

// mouseButtonToLinux: index is the mapping button bit (0 left, 1 right,
// 2 middle).
var mouseButtonToLinux = [3]int{btnLeft, btnRight, btnMiddle}
