package confproto

import (
	"net"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serveHandler pumps command frames from one end of a pipe into a Handler,
// the way the daemon's serial loop does. net.Pipe delivers each Write as
// one Read, which matches the one-frame-per-transfer wire behavior.
func serveHandler(t *testing.T, h *Handler, conn net.Conn) {
	t.Helper()
	go func() {
		buf := make([]byte, 64)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				return
			}
			if _, err := conn.Write(h.Process(buf[:n])); err != nil {
				return
			}
		}
	}()
}

func newClientPair(t *testing.T, sink LayoutSink) (*Client, *Handler) {
	t.Helper()
	device, host := net.Pipe()
	t.Cleanup(func() {
		device.Close()
		host.Close()
	})

	h := NewHandler(sink, 2, zerolog.Nop())
	serveHandler(t, h, device)
	return NewClient(host), h
}

func TestClientGetVersion(t *testing.T) {
	c, _ := newClientPair(t, &fakeSink{})

	v, err := c.GetVersion()
	require.NoError(t, err)
	assert.Equal(t, Version{Major: VersionMajor, Minor: VersionMinor, HWRev: 2}, v)
}

func TestClientConfig(t *testing.T) {
	c, h := newClientPair(t, &fakeSink{})

	require.NoError(t, c.SetConfig(CfgMouseSpeed, 15))
	assert.Equal(t, uint16(15), h.Config().MouseSpeed)

	cfg, err := c.GetConfig()
	require.NoError(t, err)
	assert.Equal(t, uint16(15), cfg.MouseSpeed)

	err = c.SetConfig(CfgMouseSpeed, 999)
	assert.ErrorIs(t, err, ErrNakResponse)
}

func TestClientUploadLayout(t *testing.T) {
	sink := &fakeSink{}
	c, _ := newClientPair(t, sink)

	// Larger than one chunk so the transfer is actually split.
	data := make([]byte, DefaultChunkSize*2+7)
	for i := range data {
		data[i] = byte(i)
	}

	require.NoError(t, c.UploadLayout(data, true))
	require.Len(t, sink.committed, 1)
	assert.Equal(t, data, sink.committed[0])
	require.Len(t, sink.saved, 1)
	assert.Equal(t, data, sink.saved[0])
}

func TestClientUploadSizeChecksLocally(t *testing.T) {
	c, _ := newClientPair(t, &fakeSink{})

	assert.ErrorIs(t, c.UploadLayout(nil, false), ErrUploadSize)
	assert.ErrorIs(t, c.UploadLayout(make([]byte, MaxUploadSize+1), false), ErrUploadSize)
}

func TestClientUploadCommitRejection(t *testing.T) {
	sink := &fakeSink{commitErr: assert.AnError}
	c, _ := newClientPair(t, sink)

	err := c.UploadLayout([]byte{1, 2, 3}, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNakResponse)
	assert.Empty(t, sink.saved)
}
