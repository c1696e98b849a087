package record

import (
	"crypto/rand"
	"encoding/binary"
	"strconv"
	"time"
)

// =============================================================================
// IDENTIFIER GENERATOR
// =============================================================================

// NewID returns a fresh opaque key: the current millisecond timestamp in
// base 36 followed by 64 random bits in base 36. The time prefix keeps keys
// roughly sortable by creation; the random suffix makes collisions within a
// single store vanishingly unlikely at this application's volume.
func NewID() ID {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand never fails on supported platforms; fall back to the
		// clock so NewID stays infallible.
		binary.BigEndian.PutUint64(b[:], uint64(time.Now().UnixNano()))
	}
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	return ID(ts + strconv.FormatUint(binary.BigEndian.Uint64(b[:]), 36))
}
