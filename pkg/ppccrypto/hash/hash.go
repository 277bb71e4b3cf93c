// Package hash implements the hash primitives of component C1: SHA-256,
// SHA-512, SM3, MD5, BLAKE2b, and the non-cryptographic BitMix-Murmur hash.
//
// Each algorithm is selected by a Type tag passed to New (or MustNew), which
// returns an implementation of the Algorithm interface.
package hash

import "github.com/wedpr-ppc/ppc-core/pkg/ppcerr"

// Type enumerates the supported hash algorithms.
type Type int

const (
	SHA256 Type = iota
	SHA512
	SM3
	MD5
	BLAKE2b
)

func (t Type) String() string {
	switch t {
	case SHA256:
		return "SHA256"
	case SHA512:
		return "SHA512"
	case SM3:
		return "SM3"
	case MD5:
		return "MD5"
	case BLAKE2b:
		return "BLAKE2b"
	default:
		return "unknown"
	}
}

// State is the opaque, incrementally-updatable hash state returned by Init.
type State interface {
	Update(data []byte)
	Final() []byte
}

// Algorithm is implemented once per Type.
type Algorithm interface {
	Type() Type
	// Len is the declared output length in bytes. For BLAKE2b this is the
	// default (64); use NewBLAKE2b for a variable-length instance.
	Len() int
	Hash(data []byte) []byte
	Init() State
}

// New resolves a Type into its Algorithm, failing with
// ppcerr.KindUnsupportedHashType for an unregistered tag.
func New(t Type) (Algorithm, error) {
	switch t {
	case SHA256:
		return newSHA256(), nil
	case SHA512:
		return newSHA512(), nil
	case SM3:
		return newSM3(), nil
	case MD5:
		return newMD5(), nil
	case BLAKE2b:
		return NewBLAKE2b(64, nil)
	default:
		return nil, ppcerr.New(ppcerr.KindUnsupportedHashType, t.String())
	}
}

// MustNew panics if t is unregistered; used only for package-level constants
// built from a fixed, known-good Type.
func MustNew(t Type) Algorithm {
	a, err := New(t)
	if err != nil {
		panic(err)
	}
	return a
}
