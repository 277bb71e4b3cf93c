package hash

import (
	"golang.org/x/crypto/blake2b"

	"github.com/wedpr-ppc/ppc-core/pkg/ppcerr"
)

// blake2bAlgo implements the variable-output-length, optionally-keyed
// BLAKE2b mode, matching utils.Generichash (a direct port of libsodium's
// crypto_generichash).
type blake2bAlgo struct {
	outLen int
	key    []byte
}

// NewBLAKE2b builds a BLAKE2b Algorithm with the given output length
// (16..64 bytes) and an optional key (nil for unkeyed mode).
func NewBLAKE2b(outLen int, key []byte) (Algorithm, error) {
	if outLen < 16 || outLen > 64 {
		return nil, ppcerr.New(ppcerr.KindUnsupportedHashType, "blake2b output length must be 16..64 bytes")
	}
	return &blake2bAlgo{outLen: outLen, key: key}, nil
}

func (b *blake2bAlgo) Type() Type { return BLAKE2b }
func (b *blake2bAlgo) Len() int   { return b.outLen }

func (b *blake2bAlgo) Hash(data []byte) []byte {
	h, err := blake2b.New(b.outLen, b.key)
	if err != nil {
		panic(err)
	}
	h.Write(data)
	return h.Sum(nil)
}

func (b *blake2bAlgo) Init() State {
	h, err := blake2b.New(b.outLen, b.key)
	if err != nil {
		panic(err)
	}
	return &stdState{h: h}
}
