// Package flashstore persists the active layout blob the way the
// firmware's flash data storage does: one record with a small header in
// front of the raw bytes, validated on read so a torn write falls back to
// the built-in layout instead of activating garbage.
package flashstore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// MaxRecordSize caps the stored blob, matching the upload ceiling.
const MaxRecordSize = 4096

// Record header: magic, payload size, CRC32 of the payload.
const (
	recordMagic      = 0x4E434852 // "NCHR"
	recordHeaderSize = 12
)

var (
	ErrNoRecord       = errors.New("no stored record")
	ErrRecordCorrupt  = errors.New("stored record corrupt")
	ErrRecordTooLarge = errors.New("record exceeds size limit")
)

// Store reads and writes a single record file.
type Store struct {
	path string
	log  zerolog.Logger
}

// New returns a store backed by the given file path.
func New(path string, logger zerolog.Logger) *Store {
	return &Store{path: path, log: logger.With().Str("subsystem", "flashstore").Logger()}
}

// Save writes data as the new record. The write goes through a temp file
// and rename so a crash mid-write leaves the previous record intact.
func (s *Store) Save(data []byte) error {
	if len(data) == 0 || len(data) > MaxRecordSize {
		return fmt.Errorf("%w: %d bytes", ErrRecordTooLarge, len(data))
	}

	buf := make([]byte, recordHeaderSize+len(data))
	binary.LittleEndian.PutUint32(buf[0:], recordMagic)
	binary.LittleEndian.PutUint32(buf[4:], uint32(len(data)))
	binary.LittleEndian.PutUint32(buf[8:], crc32.ChecksumIEEE(data))
	copy(buf[recordHeaderSize:], data)

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".layout-*")
	if err != nil {
		return fmt.Errorf("create temp record: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write record: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close record: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("activate record: %w", err)
	}

	s.log.Info().Int("size", len(data)).Str("path", s.path).Msg("Record saved")
	return nil
}

// Load returns the stored record payload. ErrNoRecord means nothing has
// been saved yet; ErrRecordCorrupt means the file exists but fails
// validation.
func (s *Store) Load() ([]byte, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}

	if len(raw) < recordHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrRecordCorrupt, len(raw))
	}
	if binary.LittleEndian.Uint32(raw[0:]) != recordMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrRecordCorrupt)
	}
	size := int(binary.LittleEndian.Uint32(raw[4:]))
	if size == 0 || size > MaxRecordSize || recordHeaderSize+size > len(raw) {
		return nil, fmt.Errorf("%w: bad size %d", ErrRecordCorrupt, size)
	}

	data := raw[recordHeaderSize : recordHeaderSize+size]
	if crc32.ChecksumIEEE(data) != binary.LittleEndian.Uint32(raw[8:]) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrRecordCorrupt)
	}
	return data, nil
}

// Clear removes the stored record. Clearing a store with no record is not
// an error.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear record: %w", err)
	}
	return nil
}
