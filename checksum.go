// Checksum algorithm implementations for the persisted name mapping
// snapshot and the paged storage checksums. Three algorithms are
// supported, selectable via Config.ChecksumAlgorithm.
package paperindex

import (
	"fmt"
	"hash/fnv"

	"github.com/zeebo/xxh3"
	"golang.org/x/crypto/blake2b"
)

// sum64 computes a 64-bit checksum of data using the given algorithm.
func sum64(data []byte, alg int) uint64 {
	switch alg {
	case AlgXXHash3:
		return xxh3.Hash(data)
	case AlgFNV1a:
		h := fnv.New64a()
		h.Write(data)
		return h.Sum64()
	case AlgBlake2b:
		h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
		h.Write(data)
		var v uint64
		for _, b := range h.Sum(nil) {
			v = v<<8 | uint64(b)
		}
		return v
	default:
		return 0
	}
}

// sum computes a 64-bit checksum of data using the given algorithm,
// returned as a 16 hex character string suitable for embedding in a
// snapshot envelope.
func sum(data []byte, alg int) string {
	if alg != AlgXXHash3 && alg != AlgFNV1a && alg != AlgBlake2b {
		return ""
	}
	return fmt.Sprintf("%016x", sum64(data, alg))
}
