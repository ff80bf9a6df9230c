package confproto

import (
	"encoding/binary"

	"github.com/rs/zerolog"
)

// LayoutSink is what the handler drives when a layout transfer completes.
// Commit parses and activates an uploaded blob; Save persists the active
// blob; Restore re-activates the persisted one.
type LayoutSink interface {
	CommitLayout(data []byte) error
	SaveLayout(data []byte) error
	RestoreLayout() error
}

// Handler processes one command frame at a time and produces the response
// frame. It owns the upload session state and the wire copy of the
// device's tunables.
type Handler struct {
	log  zerolog.Logger
	sink LayoutSink

	cfg   DeviceConfig
	hwRev uint8

	streaming  bool
	streamRate uint8

	uploadActive bool
	uploadTotal  int
	uploadBuf    []byte

	// Last successfully committed blob, the payload SAVE_FLASH persists.
	committed []byte
}

// NewHandler returns a handler with factory config values.
func NewHandler(sink LayoutSink, hwRev uint8, logger zerolog.Logger) *Handler {
	return &Handler{
		log:        logger.With().Str("subsystem", "confproto").Logger(),
		sink:       sink,
		cfg:        DefaultDeviceConfig(),
		hwRev:      hwRev,
		streamRate: 60,
	}
}

// Config returns the current tunable values.
func (h *Handler) Config() DeviceConfig { return h.cfg }

// Streaming reports whether touch streaming is enabled and at what rate.
func (h *Handler) Streaming() (bool, uint8) { return h.streaming, h.streamRate }

func ack() []byte { return []byte{RspAck} }
func nak() []byte { return []byte{RspNak} }

// Process handles one received command frame and returns the response to
// send. Unknown commands and malformed payloads answer NAK; nothing here
// can fail the caller.
func (h *Handler) Process(frame []byte) []byte {
	if len(frame) < 1 {
		return nak()
	}
	cmd, payload := frame[0], frame[1:]

	switch cmd {
	case CmdGetVersion:
		return []byte{VersionMajor, VersionMinor, h.hwRev}

	case CmdGetConfig:
		return h.cfg.Marshal()

	case CmdSetConfig:
		if len(payload) < 3 {
			return nak()
		}
		id := payload[0]
		value := binary.LittleEndian.Uint16(payload[1:])
		if !h.cfg.Apply(id, value) {
			h.log.Warn().Uint8("id", id).Uint16("value", value).Msg("Rejected config value")
			return nak()
		}
		return ack()

	case CmdGetTouches:
		// One empty frame; live data is filled in by the streaming path.
		frame := make([]byte, TouchFrameSize)
		frame[0] = StreamSync
		return frame

	case CmdStreamStart:
		if len(payload) >= 1 {
			h.streamRate = clampRate(payload[0])
		}
		h.streaming = true
		h.log.Info().Uint8("rate_hz", h.streamRate).Msg("Stream started")
		return ack()

	case CmdStreamStop:
		h.streaming = false
		h.log.Info().Msg("Stream stopped")
		return ack()

	case CmdGetChords, CmdSetChords:
		// Chord readback and in-place edits are not implemented; the
		// chunked upload path replaces the whole layout instead.
		return nak()

	case CmdUploadStart:
		return h.uploadStart(payload)

	case CmdUploadData:
		return h.uploadData(payload)

	case CmdUploadCommit:
		return h.uploadCommit()

	case CmdUploadAbort:
		h.resetUpload()
		return ack()

	case CmdSaveFlash:
		if len(h.committed) == 0 {
			return nak()
		}
		if err := h.sink.SaveLayout(h.committed); err != nil {
			h.log.Error().Err(err).Msg("Layout save failed")
			return nak()
		}
		return ack()

	case CmdLoadFlash:
		if err := h.sink.RestoreLayout(); err != nil {
			h.log.Warn().Err(err).Msg("Layout restore failed")
			return nak()
		}
		return ack()

	case CmdResetDefault:
		h.cfg = DefaultDeviceConfig()
		return ack()

	default:
		h.log.Warn().Uint8("cmd", cmd).Msg("Unknown command")
		return nak()
	}
}

func (h *Handler) uploadStart(payload []byte) []byte {
	if len(payload) < 2 {
		return nak()
	}
	total := int(binary.LittleEndian.Uint16(payload))
	if total == 0 || total > MaxUploadSize {
		h.log.Warn().Int("size", total).Msg("Upload size out of range")
		return nak()
	}
	h.uploadActive = true
	h.uploadTotal = total
	h.uploadBuf = make([]byte, 0, total)
	return ack()
}

func (h *Handler) uploadData(chunk []byte) []byte {
	if !h.uploadActive || len(chunk) == 0 {
		return nak()
	}
	if len(h.uploadBuf)+len(chunk) > h.uploadTotal {
		// More data than announced: drop the session.
		h.log.Warn().
			Int("announced", h.uploadTotal).
			Int("received", len(h.uploadBuf)+len(chunk)).
			Msg("Upload overrun, aborting")
		h.resetUpload()
		return nak()
	}
	h.uploadBuf = append(h.uploadBuf, chunk...)
	return ack()
}

func (h *Handler) uploadCommit() []byte {
	if !h.uploadActive || len(h.uploadBuf) != h.uploadTotal {
		h.resetUpload()
		return nak()
	}
	data := h.uploadBuf
	h.resetUpload()

	if err := h.sink.CommitLayout(data); err != nil {
		h.log.Warn().Err(err).Msg("Uploaded layout rejected")
		return nak()
	}
	h.committed = data
	h.log.Info().Int("size", len(data)).Msg("Layout activated")
	return ack()
}

func (h *Handler) resetUpload() {
	h.uploadActive = false
	h.uploadTotal = 0
	h.uploadBuf = nil
}

func clampRate(rate uint8) uint8 {
	if rate < 1 {
		return 1
	}
	if rate > 100 {
		return 100
	}
	return rate
}
