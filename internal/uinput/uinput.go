//go:build linux

// Package uinput injects chord actions into the host through
// /dev/uinput: a virtual keyboard-and-mouse that the HID dispatch layer
// drives when the firmware runs as a user-space daemon instead of on the
// device itself.
package uinput

import (
	"encoding/binary"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// uinput ioctls and event codes.
const (
	uiDevCreate  = 0x5501
	uiDevDestroy = 0x5502
	uiSetEvBit   = 0x40045564
	uiSetKeyBit  = 0x40045565

	evSyn = 0x00
	evKey = 0x01

	synReport = 0
)

// keyTapDelay separates press and release events of one keystroke so fast
// macro replay is not coalesced by the input stack.
const keyTapDelay = 2 * time.Millisecond

type inputEvent struct {
	Time  syscall.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

// Device is a registered virtual input device.
type Device struct {
	fd  *os.File
	log zerolog.Logger
}

// New opens /dev/uinput and registers a virtual device covering the
// keyboard keys, modifiers, consumer controls and mouse buttons that
// chord actions can produce.
func New(logger zerolog.Logger) (*Device, error) {
	f, err := os.OpenFile("/dev/uinput", os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open /dev/uinput: %w (is the uinput module loaded?)", err)
	}

	d := &Device{
		fd:  f,
		log: logger.With().Str("subsystem", "uinput").Logger(),
	}

	if err := d.ioctl(uiSetEvBit, evKey); err != nil {
		f.Close()
		return nil, fmt.Errorf("enable EV_KEY: %w", err)
	}
	for _, code := range hidToLinux {
		_ = d.ioctl(uiSetKeyBit, uint64(code))
	}
	for _, code := range modifierToLinux {
		_ = d.ioctl(uiSetKeyBit, uint64(code))
	}
	for _, code := range consumerToLinux {
		_ = d.ioctl(uiSetKeyBit, uint64(code))
	}
	for _, code := range mouseButtonToLinux {
		_ = d.ioctl(uiSetKeyBit, uint64(code))
	}

	if err := d.ioctl(uiDevCreate, 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("create uinput device: %w", err)
	}

	d.log.Info().Msg("Virtual input device registered")
	return d, nil
}

// Close destroys the virtual device.
func (d *Device) Close() error {
	if d.fd == nil {
		return nil
	}
	_ = d.ioctl(uiDevDestroy, 0)
	err := d.fd.Close()
	d.fd = nil
	return err
}

func (d *Device) ioctl(request uintptr, arg uint64) error {
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, d.fd.Fd(), request, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

func (d *Device) writeEvent(typ, code uint16, val int32) error {
	ev := inputEvent{Type: typ, Code: code, Value: val}
	return binary.Write(d.fd, binary.LittleEndian, &ev)
}

func (d *Device) sync() error {
	return d.writeEvent(evSyn, synReport, 0)
}

// setModifiers presses or releases the Linux keys for a HID modifier
// bitmask (bit 0 Ctrl, bit 1 Shift, bit 2 Alt, bit 3 GUI).
func (d *Device) setModifiers(modifiers uint8, pressed int32) {
	for bit, code := range modifierToLinux {
		if modifiers&(1<<bit) != 0 {
			_ = d.writeEvent(evKey, uint16(code), pressed)
		}
	}
}

// KeyPress taps one keystroke: modifiers down, key down, key up,
// modifiers up. Keycodes outside the map are dropped with a debug note,
// never an error, so an exotic layout degrades instead of wedging replay.
func (d *Device) KeyPress(modifiers, keycode uint8) error {
	code, ok := hidToLinux[keycode]
	if !ok && keycode != 0 {
		d.log.Debug().Uint8("keycode", keycode).Msg("No Linux mapping for HID keycode")
		return nil
	}

	d.setModifiers(modifiers, 1)
	if keycode != 0 {
		_ = d.writeEvent(evKey, uint16(code), 1)
	}
	if err := d.sync(); err != nil {
		return err
	}
	time.Sleep(keyTapDelay)

	if keycode != 0 {
		_ = d.writeEvent(evKey, uint16(code), 0)
	}
	d.setModifiers(modifiers, 0)
	return d.sync()
}

// ConsumerPress taps a consumer-control usage (media keys, volume).
func (d *Device) ConsumerPress(usage uint16) error {
	code, ok := consumerToLinux[usage]
	if !ok {
		d.log.Debug().Uint16("usage", usage).Msg("No Linux mapping for consumer usage")
		return nil
	}

	_ = d.writeEvent(evKey, uint16(code), 1)
	if err := d.sync(); err != nil {
		return err
	}
	time.Sleep(keyTapDelay)

	_ = d.writeEvent(evKey, uint16(code), 0)
	return d.sync()
}

// MouseClick taps the mouse buttons in a button bitmask (bit 0 left,
// bit 1 right, bit 2 middle).
func (d *Device) MouseClick(buttons uint8) error {
	for bit, code := range mouseButtonToLinux {
		if buttons&(1<<bit) != 0 {
			_ = d.writeEvent(evKey, uint16(code), 1)
		}
	}
	if err := d.sync(); err != nil {
		return err
	}
	time.Sleep(keyTapDelay)

	for bit, code := range mouseButtonToLinux {
		if buttons&(1<<bit) != 0 {
			_ = d.writeEvent(evKey, uint16(code), 0)
		}
	}
	return d.sync()
}
