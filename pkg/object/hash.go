package object

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// HashBytes hashes raw bytes to a lowercase hex Hash. Used for content that
// carries no object envelope, such as pack stream checksums.
func HashBytes(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// HashObject computes an object's content id: SHA-256 over the same
// "type len\0content" envelope the loose store writes to disk, so an id can
// be recomputed from any tier's bytes for integrity checks.
func HashObject(objType ObjectType, data []byte) Hash {
	h := sha256.New()
	fmt.Fprintf(h, "%s %d\x00", objType, len(data))
	h.Write(data)
	return Hash(hex.EncodeToString(h.Sum(nil)))
}
