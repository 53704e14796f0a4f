package app

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// flightKey identifies one exact submission: only requests carrying the same
// session, form and payload bytes share an in-flight backend call.
func flightKey(session, form string, parts ...[]byte) string {
	h := sha256.New()
	var n [8]byte
	for _, p := range parts {
		// length prefix keeps ("ab","c") and ("a","bc") apart
		binary.BigEndian.PutUint64(n[:], uint64(len(p)))
		h.Write(n[:])
		h.Write(p)
	}
	return session + "|" + form + "|" + hex.EncodeToString(h.Sum(nil))
}
