package prng

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"

	"github.com/wedpr-ppc/ppc-core/pkg/ppcerr"
)

// aesCTRBufferCapacity matches utils.AESCTRencrypt/AESECBencrypt's
// buffer-at-a-time style: one cipher block's worth of output per call to
// the underlying primitive, batched into 1024-byte buffers.
const aesCTRBufferCapacity = 1024

type aesCTRSource struct {
	block cipher.Block
}

func newAESCTRSource(seed []byte) (*aesCTRSource, error) {
	key := deriveKey(seed, 16)
	blk, err := aes.NewCipher(key)
	if err != nil {
		return nil, ppcerr.Wrap(ppcerr.KindInternal, err)
	}
	return &aesCTRSource{block: blk}, nil
}

func (s *aesCTRSource) blockSize() int { return aesCTRBufferCapacity }

// block encrypts a single zero-padded buffer (the little-endian block
// index in its first 8 bytes, zeros elsewhere) under AES-128-CBC with a
// zero IV in one CryptBlocks call, letting CBC's own IV-chaining across
// the buffer's blocks supply the per-block entropy.
func (s *aesCTRSource) block(index uint64) []byte {
	iv := make([]byte, aes.BlockSize)
	mode := cipher.NewCBCEncrypter(s.block, iv)

	plain := make([]byte, aesCTRBufferCapacity)
	binary.LittleEndian.PutUint64(plain[:8], index)

	out := make([]byte, aesCTRBufferCapacity)
	mode.CryptBlocks(out, plain)
	return out
}

func deriveKey(seed []byte, size int) []byte {
	key := make([]byte, size)
	copy(key, seed)
	return key
}
