//go:build !linux

package nchorder

func newEmitter() Emitter {
	hidLogger.Warn().Msg("no output backend on this platform, output disabled")
	return nullEmitter{}
}
