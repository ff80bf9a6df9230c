// Package confproto implements the serial control-channel protocol the
// configurator app speaks: single-byte commands with small binary
// payloads, ACK/NAK responses, and a chunked transfer for layout upload.
// The package is transport-agnostic; the daemon binds Handler to a serial
// port and chordctl drives Client over the same wire format.
package confproto

import "encoding/binary"

// Protocol version reported by GetVersion.
const (
	VersionMajor = 1
	VersionMinor = 0
)

// Command codes.
const (
	CmdGetVersion   = 0x01
	CmdGetTouches   = 0x02
	CmdGetConfig    = 0x03
	CmdSetConfig    = 0x04
	CmdGetChords    = 0x05
	CmdSetChords    = 0x06
	CmdSaveFlash    = 0x07
	CmdLoadFlash    = 0x08
	CmdResetDefault = 0x09
	CmdStreamStart  = 0x10
	CmdStreamStop   = 0x11

	// Chunked layout upload.
	CmdUploadStart  = 0x12 // payload: u16 total size
	CmdUploadData   = 0x13 // payload: raw chunk
	CmdUploadCommit = 0x14 // parses and activates the layout
	CmdUploadAbort  = 0x15 // cancels an in-progress upload
)

// Response codes.
const (
	RspAck = 0x06
	RspNak = 0x15
)

// Settings IDs for SetConfig.
const (
	CfgThresholdPress    = 0x01
	CfgThresholdRelease  = 0x02
	CfgDebounceMs        = 0x03
	CfgPollRateMs        = 0x04
	CfgMouseSpeed        = 0x05
	CfgMouseAccel        = 0x06
	CfgVolumeSensitivity = 0x07
)

// MaxUploadSize is the layout upload ceiling.
const MaxUploadSize = 4096

// StreamSync is the marker byte opening every touch stream frame.
const StreamSync = 0xAA

// TouchFrameSize is the wire size of one touch stream frame: sync byte,
// three u16 thumb fields, three bars of five 4-byte touches, and the
// 32-bit button mask.
const TouchFrameSize = 1 + 6 + 3*5*4 + 4

// Version identifies the protocol and hardware revision.
type Version struct {
	Major uint8
	Minor uint8
	HWRev uint8
}

// DeviceConfig mirrors the device's tunable runtime parameters as they
// travel on the wire: seven u16 values plus four reserved slots, all
// little-endian.
type DeviceConfig struct {
	ThresholdPress    uint16
	ThresholdRelease  uint16
	DebounceMs        uint16
	PollRateMs        uint16
	MouseSpeed        uint16
	MouseAccel        uint16
	VolumeSensitivity uint16
}

// DeviceConfigSize is the wire size of DeviceConfig.
const DeviceConfigSize = 22

// DefaultDeviceConfig returns the factory values.
func DefaultDeviceConfig() DeviceConfig {
	return DeviceConfig{
		ThresholdPress:    500,
		ThresholdRelease:  250,
		DebounceMs:        30,
		PollRateMs:        15,
		MouseSpeed:        10,
		MouseAccel:        3,
		VolumeSensitivity: 5,
	}
}

// Marshal renders the config in wire order.
func (c DeviceConfig) Marshal() []byte {
	buf := make([]byte, DeviceConfigSize)
	binary.LittleEndian.PutUint16(buf[0:], c.ThresholdPress)
	binary.LittleEndian.PutUint16(buf[2:], c.ThresholdRelease)
	binary.LittleEndian.PutUint16(buf[4:], c.DebounceMs)
	binary.LittleEndian.PutUint16(buf[6:], c.PollRateMs)
	binary.LittleEndian.PutUint16(buf[8:], c.MouseSpeed)
	binary.LittleEndian.PutUint16(buf[10:], c.MouseAccel)
	binary.LittleEndian.PutUint16(buf[12:], c.VolumeSensitivity)
	return buf
}

// UnmarshalDeviceConfig parses a wire-order config buffer.
func UnmarshalDeviceConfig(buf []byte) (DeviceConfig, bool) {
	if len(buf) < DeviceConfigSize {
		return DeviceConfig{}, false
	}
	return DeviceConfig{
		ThresholdPress:    binary.LittleEndian.Uint16(buf[0:]),
		ThresholdRelease:  binary.LittleEndian.Uint16(buf[2:]),
		DebounceMs:        binary.LittleEndian.Uint16(buf[4:]),
		PollRateMs:        binary.LittleEndian.Uint16(buf[6:]),
		MouseSpeed:        binary.LittleEndian.Uint16(buf[8:]),
		MouseAccel:        binary.LittleEndian.Uint16(buf[10:]),
		VolumeSensitivity: binary.LittleEndian.Uint16(buf[12:]),
	}, true
}

// Apply validates and sets one parameter by ID, returning false when the
// ID is unknown or the value is out of its allowed range.
func (c *DeviceConfig) Apply(id uint8, value uint16) bool {
	switch id {
	case CfgThresholdPress:
		if value >= 100 && value <= 1000 {
			c.ThresholdPress = value
			return true
		}
	case CfgThresholdRelease:
		if value >= 50 && value <= 500 {
			c.ThresholdRelease = value
			return true
		}
	case CfgDebounceMs:
		if value >= 10 && value <= 100 {
			c.DebounceMs = value
			return true
		}
	case CfgPollRateMs:
		if value >= 5 && value <= 50 {
			c.PollRateMs = value
			return true
		}
	case CfgMouseSpeed:
		if value >= 1 && value <= 20 {
			c.MouseSpeed = value
			return true
		}
	case CfgMouseAccel:
		if value <= 10 {
			c.MouseAccel = value
			return true
		}
	case CfgVolumeSensitivity:
		if value >= 1 && value <= 10 {
			c.VolumeSensitivity = value
			return true
		}
	}
	return false
}
