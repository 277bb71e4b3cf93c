// Package group abstracts the elliptic-curve operations shared by OPRF,
// Simplest OT, and ECDH-PSI (component C2) across five curve backends:
// Ed25519 and X25519 (via bwesterb/go-ristretto), secp256k1 (via
// decred/dcrd/dcrec/secp256k1/v4), P-256 (stdlib crypto/elliptic), and SM2
// (GB/T 32918 parameters laid over crypto/elliptic.CurveParams).
package group

import "github.com/wedpr-ppc/ppc-core/pkg/ppcerr"

// CurveType identifies a supported curve backend.
type CurveType int

const (
	Ed25519 CurveType = iota
	X25519
	Secp256k1
	P256
	SM2
)

func (c CurveType) String() string {
	switch c {
	case Ed25519:
		return "Ed25519"
	case X25519:
		return "X25519"
	case Secp256k1:
		return "Secp256k1"
	case P256:
		return "P256"
	case SM2:
		return "SM2"
	default:
		return "unknown"
	}
}

// Scalar is an opaque element of the curve's scalar field.
type Scalar interface {
	Bytes() []byte
	Equal(other Scalar) bool
}

// Point is an opaque element of the curve's group.
type Point interface {
	Bytes() []byte
	Equal(other Point) bool
}

// Engine is implemented once per CurveType and performs every EC primitive
// the protocol layer needs. Ed25519 and X25519 engines reject the scalar
// arithmetic methods with ppcerr.KindUnsupportedCurveType, mirroring the
// original library's refusal to expose raw scalar ops for those curves.
type Engine interface {
	Type() CurveType

	// GenerateRandomScalar draws a uniformly random nonzero scalar.
	GenerateRandomScalar() (Scalar, error)

	// HashToCurve maps an arbitrary byte string onto a group element via
	// try-and-increment.
	HashToCurve(data []byte) (Point, error)

	// HashToScalar maps an arbitrary byte string onto a scalar. Unsupported
	// on Ed25519/X25519.
	HashToScalar(data []byte) (Scalar, error)

	// MulGenerator computes scalar * basepoint.
	MulGenerator(s Scalar) (Point, error)

	// ScalarMul computes scalar * point.
	ScalarMul(s Scalar, p Point) (Point, error)

	// ScalarInvert computes the multiplicative inverse of s mod the group
	// order.
	ScalarInvert(s Scalar) (Scalar, error)

	// ScalarAdd/ScalarSub/ScalarMulScalar operate purely in the scalar
	// field. Unsupported on Ed25519/X25519.
	ScalarAdd(a, b Scalar) (Scalar, error)
	ScalarSub(a, b Scalar) (Scalar, error)
	ScalarMulScalar(a, b Scalar) (Scalar, error)

	// EcAdd/EcSub operate on two group elements.
	EcAdd(a, b Point) (Point, error)
	EcSub(a, b Point) (Point, error)

	// IsValidPoint reports whether b decodes to a point on the curve.
	IsValidPoint(b []byte) bool

	// PointFromBytes/ScalarFromBytes decode a wire representation.
	PointFromBytes(b []byte) (Point, error)
	ScalarFromBytes(b []byte) (Scalar, error)
}

// New resolves a CurveType into its Engine.
func New(t CurveType) (Engine, error) {
	switch t {
	case Ed25519:
		return newEd25519Engine(), nil
	case X25519:
		return newX25519Engine(), nil
	case Secp256k1:
		return newSecp256k1Engine(), nil
	case P256:
		return newP256Engine(), nil
	case SM2:
		return newSM2Engine(), nil
	default:
		return nil, ppcerr.New(ppcerr.KindUnsupportedCurveType, t.String())
	}
}

var errUnsupportedScalarOp = func(curve CurveType) error {
	return ppcerr.New(ppcerr.KindUnsupportedCurveType, curve.String()+" does not expose raw scalar-field arithmetic")
}
