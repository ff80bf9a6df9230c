package nchorder

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

var rootLogger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
	With().Timestamp().Logger()

var (
	chordLogger   = scopedLogger("chord")
	inputLogger   = scopedLogger("input")
	hidLogger     = scopedLogger("hid")
	serialLogger  = scopedLogger("serial")
	storageLogger = scopedLogger("storage")
	webLogger     = scopedLogger("web")
	watcherLogger = scopedLogger("watcher")
)

func scopedLogger(subsystem string) zerolog.Logger {
	return rootLogger.With().Str("subsystem", subsystem).Logger()
}

// setLogLevel applies a level name from the environment or flags.
// Unknown names fall back to info.
func setLogLevel(level string) {
	switch strings.ToLower(level) {
	case "trace":
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
