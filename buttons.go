package nchorder

import (
	"bufio"
	"encoding/binary"
	"io"
	"sync/atomic"

	"go.bug.st/serial"

	"github.com/nchorder/nchorder/internal/chord"
	"github.com/nchorder/nchorder/internal/confproto"
)

// nullButtonSource reports nothing pressed. Used when no hardware
// stream is attached so the service can still serve the web surface.
type nullButtonSource struct{}

func (nullButtonSource) Sample() (chord.Chord, error) { return 0, nil }

// streamButtonSource consumes the sensor board's framed touch stream
// and exposes the latest button mask. A background goroutine keeps the
// mask current; Sample never blocks on the wire.
type streamButtonSource struct {
	r    io.Reader
	last atomic.Uint32
}

func newStreamButtonSource(r io.Reader) *streamButtonSource {
	s := &streamButtonSource{r: r}
	go s.run()
	return s
}

func (s *streamButtonSource) Sample() (chord.Chord, error) {
	return chord.Chord(s.last.Load()), nil
}

// run reads frames forever, resynchronizing on the sync byte when the
// stream starts mid-frame or drops bytes.
func (s *streamButtonSource) run() {
	scopedLogger := inputLogger.With().Str("service", "touch_stream").Logger()

	reader := bufio.NewReader(s.r)
	frame := make([]byte, confproto.TouchFrameSize)
	for {
		sync, err := reader.ReadByte()
		if err != nil {
			if err != io.EOF {
				scopedLogger.Warn().Err(err).Msg("Error reading from touch stream")
			}
			return
		}
		if sync != confproto.StreamSync {
			continue
		}
		frame[0] = sync
		if _, err := io.ReadFull(reader, frame[1:]); err != nil {
			scopedLogger.Warn().Err(err).Msg("Short touch frame")
			return
		}
		// The button mask is the trailing u32; only the low sixteen
		// bits carry buttons.
		mask := binary.LittleEndian.Uint32(frame[len(frame)-4:])
		s.last.Store(mask & 0xFFFF)
	}
}

// initButtonSource opens the touch stream port, falling back to the
// null source when the sensor board is not attached.
func initButtonSource(path string) ButtonSource {
	if path == "" {
		inputLogger.Info().Msg("No touch stream configured, buttons disabled")
		return nullButtonSource{}
	}
	streamPort, err := serial.Open(path, defaultMode)
	if err != nil {
		inputLogger.Warn().Err(err).Str("path", path).
			Msg("Touch stream unavailable, buttons disabled")
		return nullButtonSource{}
	}
	inputLogger.Info().Str("path", path).Msg("Touch stream attached")
	return newStreamButtonSource(streamPort)
}
