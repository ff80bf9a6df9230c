package nchorder

import (
	"context"
	"io"

	"go.bug.st/serial"

	"github.com/nchorder/nchorder/internal/confproto"
)

const defaultSerialPath = "/dev/ttyGS0"

var port serial.Port

var defaultMode = &serial.Mode{
	BaudRate: 115200,
	DataBits: 8,
	Parity:   serial.NoParity,
	StopBits: serial.OneStopBit,
}

func initSerialPort(path string) bool {
	_ = reopenSerialPort(path)
	if port == nil {
		serialLogger.Warn().Msg("Serial port unavailable, disabling control channel")
		return false
	}
	return true
}

func reopenSerialPort(path string) error {
	if port != nil {
		port.Close()
	}
	var err error
	port, err = serial.Open(path, defaultMode)
	if err != nil {
		serialLogger.Error().
			Err(err).
			Str("path", path).
			Interface("mode", defaultMode).
			Msg("Error opening serial port")
		port = nil
	}
	return err
}

// runControlChannel reads command frames from the CDC port and feeds
// them to the protocol handler. Each USB transfer arrives as one Read,
// so a frame never spans reads.
func runControlChannel(ctx context.Context, handler *confproto.Handler) {
	scopedLogger := serialLogger.With().Str("service", "control_channel").Logger()

	buf := make([]byte, 64)
	for {
		if ctx.Err() != nil {
			return
		}
		n, err := port.Read(buf)
		if err != nil {
			if err != io.EOF {
				scopedLogger.Warn().Err(err).Msg("Error reading from serial port")
			}
			return
		}
		if n == 0 {
			continue
		}
		resp := handler.Process(buf[:n])
		if len(resp) == 0 {
			continue
		}
		if _, err := port.Write(resp); err != nil {
			scopedLogger.Warn().Err(err).Msg("Failed to write response")
			return
		}
	}
}
