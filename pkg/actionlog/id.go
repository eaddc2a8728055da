package actionlog

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID returns a new 16-hex-character action id. It is not time-ordered:
// callers who need a sortable key (e.g. object-storage export filenames)
// should use a ULID instead, see cmd/logexporter.
//
// A dependency-free generator is used deliberately here: 8 random bytes
// hex-encoded needs nothing beyond crypto/rand, and this is the one corner
// of the package with no natural home for a pack dependency (see DESIGN.md).
func NewID() string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("actionlog: failed to read random bytes: " + err.Error())
	}
	return hex.EncodeToString(buf[:])
}
