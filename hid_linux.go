//go:build linux

package nchorder

import (
	"github.com/nchorder/nchorder/internal/uinput"
)

// newEmitter attaches the uinput backend. When the uinput device node
// is unavailable (no permissions, module not loaded) the service runs
// with the null emitter instead of failing to start.
func newEmitter() Emitter {
	dev, err := uinput.New(hidLogger)
	if err != nil {
		hidLogger.Warn().Err(err).Msg("uinput unavailable, output disabled")
		return nullEmitter{}
	}
	hidLogger.Info().Msg("uinput output attached")
	return dev
}
