// file: fingerprint/fingerprint.go

// Package fingerprint maps raw bearer tokens to fixed-length digests that can
// be stored and indexed in place of the token itself.
package fingerprint

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Length is the size, in characters, of every fingerprint produced by Blake2b.
const Length = blake2b.Size256 * 2

// Fingerprinter turns a raw token into its storable digest.
// Implementations must be deterministic and must not fail.
type Fingerprinter interface {
	Fingerprint(raw string) string
}

// Blake2b fingerprints tokens with unsalted BLAKE2b-256, hex encoded.
// Tokens are expected to carry enough entropy on their own.
type Blake2b struct{}

// Fingerprint implements Fingerprinter.
func (Blake2b) Fingerprint(raw string) string {
	sum := blake2b.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Default is the engine used when no other Fingerprinter is supplied.
var Default Fingerprinter = Blake2b{}

// Token fingerprints raw with the default engine.
func Token(raw string) string {
	return Default.Fingerprint(raw)
}

// Short returns a log-safe prefix of a fingerprint.
func Short(fp string) string {
	if len(fp) <= 12 {
		return fp
	}
	return fp[:12]
}
