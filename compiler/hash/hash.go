package hash

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/chazu/trellis/wire"
)

// HashTemplate computes the SHA-256 content hash of a template.
//
// The hash is computed over a deterministic serialization of the template
// body. The template ID, module name and the names of local symbols do not
// contribute: two templates that differ only in those produce the same
// hash. Argument (@) and block (&) names are part of a layout's interface
// and do contribute.
func HashTemplate(t *wire.Template) [32]byte {
	return sha256.Sum256(Serialize(t))
}

// Hex returns the hash of t as a lowercase hex string.
func Hex(t *wire.Template) string {
	sum := HashTemplate(t)
	return hex.EncodeToString(sum[:])
}
