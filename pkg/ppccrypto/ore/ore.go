// Package ore implements component C5: FastOre, a deterministic,
// order-revealing, 2-bytes-per-plaintext-byte construction, ported
// field-for-field from original_source's FastOre.cpp.
package ore

import (
	"bytes"
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/wedpr-ppc/ppc-core/pkg/ppccrypto/symcipher"
	"github.com/wedpr-ppc/ppc-core/pkg/ppcerr"
)

// int64Bias shifts a signed 64-bit domain into the non-negative range so
// that big-endian byte comparison matches numeric order, the same bias the
// original's encrypt4Integer/decrypt4Integer apply.
const int64Bias = math.MaxInt64 / 2

// Engine is a FastOre instance bound to one symmetric cipher and key.
type Engine struct {
	cipher symcipher.Cipher
	key    []byte
}

// New builds an ORE engine using the given block cipher and key; the
// cipher's block size is also the mask-derivation chunk size.
func New(cipher symcipher.Cipher, key []byte) *Engine {
	return &Engine{cipher: cipher, key: key}
}

// EncryptString applies the FastOre byte-wise masking scheme. For byte i, a
// 2-byte pseudorandom mask (t0,t1) is derived from enc(key, ciphertext[0..i)),
// with the state for i=0 being enc(key, 0...0). Then s = t1 + plaintext[i];
// the emitted pair is (t0 + carry, s mod 256) where carry = s div 256.
func (e *Engine) EncryptString(plaintext []byte) ([]byte, error) {
	blockSize := e.cipher.BlockSize()
	iv := make([]byte, blockSize)

	state := make([]byte, blockSize) // enc(key, 0...0) seed chain input
	out := make([]byte, 0, len(plaintext)*2)

	for i := 0; i < len(plaintext); i++ {
		mask, err := e.cipher.Encrypt(e.key, iv, padToBlock(state, blockSize))
		if err != nil {
			return nil, ppcerr.Wrap(ppcerr.KindInternal, err)
		}
		t0, t1 := mask[0], mask[1]

		s := int(t1) + int(plaintext[i])
		carry := s / 256
		emittedLow := byte(s % 256)
		emittedHigh := t0 + byte(carry)

		out = append(out, emittedHigh, emittedLow)

		// chain: the next mask derives from the ciphertext prefix emitted
		// so far, i.e. the state fed into enc() grows by the bytes just
		// produced.
		state = append(state, emittedHigh, emittedLow)
	}
	return out, nil
}

// DecryptString inverts EncryptString.
func (e *Engine) DecryptString(ciphertext []byte) ([]byte, error) {
	if len(ciphertext)%2 != 0 {
		return nil, ppcerr.New(ppcerr.KindOreCipherTooShort, "ORE ciphertext must have even length")
	}
	blockSize := e.cipher.BlockSize()
	iv := make([]byte, blockSize)

	state := make([]byte, blockSize)
	n := len(ciphertext) / 2
	out := make([]byte, n)

	for i := 0; i < n; i++ {
		mask, err := e.cipher.Encrypt(e.key, iv, padToBlock(state, blockSize))
		if err != nil {
			return nil, ppcerr.Wrap(ppcerr.KindInternal, err)
		}
		t0, t1 := mask[0], mask[1]

		emittedHigh := ciphertext[i*2]
		emittedLow := ciphertext[i*2+1]

		carry := int(emittedHigh) - int(t0)
		if carry < 0 {
			carry += 256
		}
		s := carry*256 + int(emittedLow)
		p := s - int(t1)
		p = ((p % 256) + 256) % 256
		out[i] = byte(p)

		state = append(state, emittedHigh, emittedLow)
	}
	return out, nil
}

// Compare reports the sign of plaintext(a) - plaintext(b) given their ORE
// ciphertexts, without decrypting: lexicographic memcmp of the byte
// strings.
func Compare(a, b []byte) int {
	return bytes.Compare(a, b)
}

// maxOreMagnitude is the largest |plaintext| EncryptInt64 accepts; spec §7's
// OreOutOfRange fires at |plaintext| >= 2^61.
const maxOreMagnitude = 1 << 61

// EncryptInt64 bias-shifts x into the non-negative domain, serializes it
// big-endian, and applies EncryptString.
func (e *Engine) EncryptInt64(x int64) ([]byte, error) {
	if x >= maxOreMagnitude || x <= -maxOreMagnitude {
		return nil, ppcerr.New(ppcerr.KindOreOutOfRange, "ORE plaintext magnitude must be < 2^61")
	}

	shifted := uint64(x) + uint64(int64Bias)
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], shifted)
	return e.EncryptString(buf[:])
}

// DecryptInt64 inverts EncryptInt64.
func (e *Engine) DecryptInt64(ciphertext []byte) (int64, error) {
	plain, err := e.DecryptString(ciphertext)
	if err != nil {
		return 0, err
	}
	if len(plain) != 8 {
		return 0, ppcerr.New(ppcerr.KindDataFormatError, "decrypted integer ORE plaintext must be 8 bytes")
	}
	shifted := binary.BigEndian.Uint64(plain)
	return int64(shifted - uint64(int64Bias)), nil
}

// EncryptFloat64 splits x into {integer part, decimal-digit string}: the
// integer part is encrypted as EncryptInt64; the decimal digits (after the
// point, as a literal string) are encrypted as EncryptString. The
// concatenation preserves numeric order because the lexicographic order of
// the pieces matches numeric order after the integer-part bias shift.
func (e *Engine) EncryptFloat64(x float64) ([]byte, error) {
	intPart := int64(math.Floor(x))
	fracDigits := floatFracDigits(x, intPart)

	intCt, err := e.EncryptInt64(intPart)
	if err != nil {
		return nil, err
	}
	fracCt, err := e.EncryptString([]byte(fracDigits))
	if err != nil {
		return nil, err
	}

	var lenPrefix [4]byte
	binary.BigEndian.PutUint32(lenPrefix[:], uint32(len(intCt)))

	out := make([]byte, 0, 4+len(intCt)+len(fracCt))
	out = append(out, lenPrefix[:]...)
	out = append(out, intCt...)
	out = append(out, fracCt...)
	return out, nil
}

// DecryptFloat64 inverts EncryptFloat64.
func (e *Engine) DecryptFloat64(ciphertext []byte) (float64, error) {
	if len(ciphertext) < 4 {
		return 0, ppcerr.New(ppcerr.KindOreCipherTooShort, "float ORE ciphertext too short")
	}
	intLen := binary.BigEndian.Uint32(ciphertext[:4])
	rest := ciphertext[4:]
	if uint32(len(rest)) < intLen {
		return 0, ppcerr.New(ppcerr.KindOreCipherTooShort, "float ORE ciphertext truncated")
	}
	intPart, err := e.DecryptInt64(rest[:intLen])
	if err != nil {
		return 0, err
	}
	fracBytes, err := e.DecryptString(rest[intLen:])
	if err != nil {
		return 0, err
	}

	fracStr := string(fracBytes)
	if fracStr == "" {
		return float64(intPart), nil
	}
	frac, err := strconv.ParseFloat("0."+fracStr, 64)
	if err != nil {
		return 0, ppcerr.Wrap(ppcerr.KindDataFormatError, err)
	}
	return float64(intPart) + frac, nil
}

func floatFracDigits(x float64, intPart int64) string {
	frac := x - float64(intPart)
	if frac < 0 {
		frac = -frac
	}
	s := strconv.FormatFloat(frac, 'f', -1, 64)
	idx := strings.IndexByte(s, '.')
	if idx < 0 {
		return ""
	}
	return s[idx+1:]
}

func padToBlock(data []byte, blockSize int) []byte {
	if len(data) <= blockSize {
		out := make([]byte, blockSize)
		copy(out, data)
		return out
	}
	// use only the most recent blockSize bytes of chained state, matching
	// the original's rolling-window chain input.
	return append([]byte{}, data[len(data)-blockSize:]...)
}
