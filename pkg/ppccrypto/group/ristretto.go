package group

import (
	"crypto/rand"

	ristretto "github.com/bwesterb/go-ristretto"

	"github.com/wedpr-ppc/ppc-core/pkg/ppcerr"
)

// Ed25519 and X25519 are both backed by the ristretto255 prime-order group
// rather than raw Edwards/Montgomery points, built on bwesterb/go-ristretto:
// it removes the cofactor-8 small-subgroup pitfalls a PSI/OPRF protocol
// would otherwise have to guard against by hand.

type ristrettoScalar struct{ s ristretto.Scalar }

func (s ristrettoScalar) Bytes() []byte { return s.s.Bytes() }
func (s ristrettoScalar) Equal(other Scalar) bool {
	o, ok := other.(ristrettoScalar)
	if !ok {
		return false
	}
	return s.s.Equals(&o.s)
}

type ristrettoPoint struct{ p ristretto.Point }

func (p ristrettoPoint) Bytes() []byte { return p.p.Bytes() }
func (p ristrettoPoint) Equal(other Point) bool {
	o, ok := other.(ristrettoPoint)
	if !ok {
		return false
	}
	return p.p.Equals(&o.p)
}

type ristrettoEngine struct {
	curve CurveType
}

func newEd25519Engine() Engine { return &ristrettoEngine{curve: Ed25519} }
func newX25519Engine() Engine  { return &ristrettoEngine{curve: X25519} }

func (e *ristrettoEngine) Type() CurveType { return e.curve }

func (e *ristrettoEngine) GenerateRandomScalar() (Scalar, error) {
	var buf [64]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return nil, ppcerr.Wrap(ppcerr.KindInternal, err)
	}
	var s ristretto.Scalar
	s.SetReduced(&buf)
	return ristrettoScalar{s: s}, nil
}

func (e *ristrettoEngine) HashToCurve(data []byte) (Point, error) {
	var p ristretto.Point
	p.DeriveDalek(data)
	return ristrettoPoint{p: p}, nil
}

func (e *ristrettoEngine) HashToScalar(data []byte) (Scalar, error) {
	return nil, errUnsupportedScalarOp(e.curve)
}

func (e *ristrettoEngine) MulGenerator(s Scalar) (Point, error) {
	rs, ok := s.(ristrettoScalar)
	if !ok {
		return nil, ppcerr.New(ppcerr.KindInvalidConfig, "scalar from a foreign curve")
	}
	var p ristretto.Point
	p.ScalarMultBase(&rs.s)
	return ristrettoPoint{p: p}, nil
}

func (e *ristrettoEngine) ScalarMul(s Scalar, pt Point) (Point, error) {
	rs, ok1 := s.(ristrettoScalar)
	rp, ok2 := pt.(ristrettoPoint)
	if !ok1 || !ok2 {
		return nil, ppcerr.New(ppcerr.KindInvalidConfig, "operand from a foreign curve")
	}
	var out ristretto.Point
	out.ScalarMult(&rp.p, &rs.s)
	return ristrettoPoint{p: out}, nil
}

func (e *ristrettoEngine) ScalarInvert(s Scalar) (Scalar, error) {
	return nil, errUnsupportedScalarOp(e.curve)
}

func (e *ristrettoEngine) ScalarAdd(a, b Scalar) (Scalar, error) {
	return nil, errUnsupportedScalarOp(e.curve)
}

func (e *ristrettoEngine) ScalarSub(a, b Scalar) (Scalar, error) {
	return nil, errUnsupportedScalarOp(e.curve)
}

func (e *ristrettoEngine) ScalarMulScalar(a, b Scalar) (Scalar, error) {
	return nil, errUnsupportedScalarOp(e.curve)
}

func (e *ristrettoEngine) EcAdd(a, b Point) (Point, error) {
	ra, ok1 := a.(ristrettoPoint)
	rb, ok2 := b.(ristrettoPoint)
	if !ok1 || !ok2 {
		return nil, ppcerr.New(ppcerr.KindInvalidConfig, "operand from a foreign curve")
	}
	var out ristretto.Point
	out.Add(&ra.p, &rb.p)
	return ristrettoPoint{p: out}, nil
}

func (e *ristrettoEngine) EcSub(a, b Point) (Point, error) {
	ra, ok1 := a.(ristrettoPoint)
	rb, ok2 := b.(ristrettoPoint)
	if !ok1 || !ok2 {
		return nil, ppcerr.New(ppcerr.KindInvalidConfig, "operand from a foreign curve")
	}
	var out ristretto.Point
	out.Sub(&ra.p, &rb.p)
	return ristrettoPoint{p: out}, nil
}

func (e *ristrettoEngine) IsValidPoint(b []byte) bool {
	var p ristretto.Point
	_, ok := p.SetBytes(b)
	return ok
}

func (e *ristrettoEngine) PointFromBytes(b []byte) (Point, error) {
	var p ristretto.Point
	if _, ok := p.SetBytes(b); !ok {
		return nil, ppcerr.New(ppcerr.KindDataFormatError, "invalid ristretto point encoding")
	}
	return ristrettoPoint{p: p}, nil
}

func (e *ristrettoEngine) ScalarFromBytes(b []byte) (Scalar, error) {
	var s ristretto.Scalar
	if _, ok := s.SetBytes(b); !ok {
		return nil, ppcerr.New(ppcerr.KindDataFormatError, "invalid scalar encoding")
	}
	return ristrettoScalar{s: s}, nil
}
