package confproto

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// DefaultChunkSize keeps each upload frame inside the device's 64-byte
// receive buffer together with the command byte.
const DefaultChunkSize = 60

var (
	ErrNakResponse = errors.New("device answered NAK")
	ErrUploadSize  = errors.New("layout size out of range")
)

// Client drives the protocol from the host side over any byte stream
// where one Write is delivered as one frame (a serial port in practice).
type Client struct {
	rw io.ReadWriter
}

// NewClient wraps an open transport.
func NewClient(rw io.ReadWriter) *Client {
	return &Client{rw: rw}
}

// roundTrip sends one command frame and reads a response of up to want
// bytes. Responses are single frames; short reads mean the device sent a
// shorter (error) reply.
func (c *Client) roundTrip(cmd byte, payload []byte, want int) ([]byte, error) {
	frame := append([]byte{cmd}, payload...)
	if _, err := c.rw.Write(frame); err != nil {
		return nil, fmt.Errorf("send command 0x%02X: %w", cmd, err)
	}

	buf := make([]byte, want)
	n, err := c.rw.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("read response to 0x%02X: %w", cmd, err)
	}
	return buf[:n], nil
}

// expectAck runs a command that answers ACK or NAK.
func (c *Client) expectAck(cmd byte, payload []byte) error {
	rsp, err := c.roundTrip(cmd, payload, 1)
	if err != nil {
		return err
	}
	if len(rsp) < 1 || rsp[0] != RspAck {
		return fmt.Errorf("command 0x%02X: %w", cmd, ErrNakResponse)
	}
	return nil
}

// GetVersion queries protocol and hardware revision.
func (c *Client) GetVersion() (Version, error) {
	rsp, err := c.roundTrip(CmdGetVersion, nil, 3)
	if err != nil {
		return Version{}, err
	}
	if len(rsp) < 3 {
		return Version{}, fmt.Errorf("short version response: %d bytes", len(rsp))
	}
	return Version{Major: rsp[0], Minor: rsp[1], HWRev: rsp[2]}, nil
}

// GetConfig reads the device tunables.
func (c *Client) GetConfig() (DeviceConfig, error) {
	rsp, err := c.roundTrip(CmdGetConfig, nil, DeviceConfigSize)
	if err != nil {
		return DeviceConfig{}, err
	}
	cfg, ok := UnmarshalDeviceConfig(rsp)
	if !ok {
		return DeviceConfig{}, fmt.Errorf("short config response: %d bytes", len(rsp))
	}
	return cfg, nil
}

// SetConfig writes one tunable by ID.
func (c *Client) SetConfig(id uint8, value uint16) error {
	payload := make([]byte, 3)
	payload[0] = id
	binary.LittleEndian.PutUint16(payload[1:], value)
	return c.expectAck(CmdSetConfig, payload)
}

// SaveToFlash persists the active layout on the device.
func (c *Client) SaveToFlash() error { return c.expectAck(CmdSaveFlash, nil) }

// LoadFromFlash re-activates the persisted layout.
func (c *Client) LoadFromFlash() error { return c.expectAck(CmdLoadFlash, nil) }

// ResetDefaults restores factory tunables.
func (c *Client) ResetDefaults() error { return c.expectAck(CmdResetDefault, nil) }

// AbortUpload cancels any in-progress transfer.
func (c *Client) AbortUpload() error { return c.expectAck(CmdUploadAbort, nil) }

// UploadLayout transfers a layout blob with the chunked protocol and
// commits it. On any chunk failure the session is aborted so the device
// does not sit on a half transfer. Optionally persists after commit.
func (c *Client) UploadLayout(data []byte, persist bool) error {
	if len(data) == 0 || len(data) > MaxUploadSize {
		return fmt.Errorf("%w: %d bytes", ErrUploadSize, len(data))
	}

	start := make([]byte, 2)
	binary.LittleEndian.PutUint16(start, uint16(len(data)))
	if err := c.expectAck(CmdUploadStart, start); err != nil {
		return fmt.Errorf("upload start: %w", err)
	}

	for off := 0; off < len(data); off += DefaultChunkSize {
		end := off + DefaultChunkSize
		if end > len(data) {
			end = len(data)
		}
		if err := c.expectAck(CmdUploadData, data[off:end]); err != nil {
			_ = c.AbortUpload()
			return fmt.Errorf("upload chunk at %d: %w", off, err)
		}
	}

	if err := c.expectAck(CmdUploadCommit, nil); err != nil {
		return fmt.Errorf("upload commit: %w", err)
	}

	if persist {
		if err := c.SaveToFlash(); err != nil {
			return fmt.Errorf("persist layout: %w", err)
		}
	}
	return nil
}
