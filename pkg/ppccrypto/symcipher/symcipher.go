// Package symcipher implements component C4: a uniform CBC-mode symmetric
// cipher interface over AES-128/192/256 and SM4, following the same style
// of exposing one encrypt/decrypt pair per mode
// (utils.AESGCMencrypt/decrypt, utils.AESCTRencrypt/decrypt,
// utils.AESECBencrypt) but narrowed to the single mode this engine needs:
// CBC.
package symcipher

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/wedpr-ppc/ppc-core/pkg/ppcerr"
)

// Type identifies the block cipher algorithm.
type Type int

const (
	AES128 Type = iota
	AES192
	AES256
	SM4
)

// Cipher exposes CBC-mode encrypt/decrypt over a keyed block cipher.
type Cipher interface {
	Type() Type
	BlockSize() int
	Encrypt(key, iv, plaintext []byte) ([]byte, error)
	Decrypt(key, iv, ciphertext []byte) ([]byte, error)
}

// New resolves a Type into its Cipher.
func New(t Type) (Cipher, error) {
	switch t {
	case AES128, AES192, AES256:
		return aesCBC{typ: t}, nil
	case SM4:
		return sm4CBC{}, nil
	default:
		return nil, ppcerr.New(ppcerr.KindInvalidConfig, "unsupported symmetric cipher type")
	}
}

func keySize(t Type) int {
	switch t {
	case AES128:
		return 16
	case AES192:
		return 24
	case AES256:
		return 32
	default:
		return 0
	}
}

type aesCBC struct{ typ Type }

func (a aesCBC) Type() Type     { return a.typ }
func (a aesCBC) BlockSize() int { return aes.BlockSize }

func (a aesCBC) Encrypt(key, iv, plaintext []byte) ([]byte, error) {
	if len(key) != keySize(a.typ) {
		return nil, ppcerr.New(ppcerr.KindInvalidConfig, "wrong AES key size")
	}
	if len(plaintext)%aes.BlockSize != 0 {
		return nil, ppcerr.New(ppcerr.KindDataFormatError, "plaintext is not block-aligned")
	}
	blk, err := aes.NewCipher(key)
	if err != nil {
		return nil, ppcerr.Wrap(ppcerr.KindInternal, err)
	}
	out := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(blk, iv).CryptBlocks(out, plaintext)
	return out, nil
}

func (a aesCBC) Decrypt(key, iv, ciphertext []byte) ([]byte, error) {
	if len(key) != keySize(a.typ) {
		return nil, ppcerr.New(ppcerr.KindInvalidConfig, "wrong AES key size")
	}
	if len(ciphertext)%aes.BlockSize != 0 {
		return nil, ppcerr.New(ppcerr.KindDataFormatError, "ciphertext is not block-aligned")
	}
	blk, err := aes.NewCipher(key)
	if err != nil {
		return nil, ppcerr.Wrap(ppcerr.KindInternal, err)
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(blk, iv).CryptBlocks(out, ciphertext)
	return out, nil
}
