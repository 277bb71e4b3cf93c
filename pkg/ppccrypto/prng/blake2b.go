package prng

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"

	"github.com/wedpr-ppc/ppc-core/pkg/ppcerr"
)

// blake2bBufferCapacity matches a single BLAKE2b-512 digest.
const blake2bBufferCapacity = 64

type blake2bSource struct {
	key []byte
}

func newBlake2bSource(seed []byte) (*blake2bSource, error) {
	if len(seed) == 0 {
		return nil, ppcerr.New(ppcerr.KindInvalidConfig, "blake2b prng requires a non-empty seed")
	}
	return &blake2bSource{key: seed}, nil
}

func (s *blake2bSource) blockSize() int { return blake2bBufferCapacity }

// block hashes the little-endian block index keyed by the seed.
func (s *blake2bSource) block(index uint64) []byte {
	h, err := blake2b.New512(s.key)
	if err != nil {
		panic(err)
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], index)
	h.Write(buf[:])
	return h.Sum(nil)
}
