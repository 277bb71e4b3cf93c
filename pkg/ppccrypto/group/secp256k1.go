package group

import (
	"crypto/rand"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/wedpr-ppc/ppc-core/pkg/ppcerr"
)

type secp256k1Scalar struct{ s secp256k1.ModNScalar }

func (s secp256k1Scalar) Bytes() []byte {
	b := s.s.Bytes()
	return b[:]
}

func (s secp256k1Scalar) Equal(other Scalar) bool {
	o, ok := other.(secp256k1Scalar)
	if !ok {
		return false
	}
	return s.s.Equals(&o.s)
}

type secp256k1Point struct{ p secp256k1.JacobianPoint }

func (p secp256k1Point) Bytes() []byte {
	affine := p.p
	affine.ToAffine()
	pk := secp256k1.NewPublicKey(&affine.X, &affine.Y)
	return pk.SerializeCompressed()
}

func (p secp256k1Point) Equal(other Point) bool {
	o, ok := other.(secp256k1Point)
	if !ok {
		return false
	}
	a, b := p.p, o.p
	a.ToAffine()
	b.ToAffine()
	return a.X.Equals(&b.X) && a.Y.Equals(&b.Y)
}

type secp256k1Engine struct{}

func newSecp256k1Engine() Engine { return &secp256k1Engine{} }

func (e *secp256k1Engine) Type() CurveType { return Secp256k1 }

func (e *secp256k1Engine) GenerateRandomScalar() (Scalar, error) {
	for {
		var buf [32]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return nil, ppcerr.Wrap(ppcerr.KindInternal, err)
		}
		var s secp256k1.ModNScalar
		overflow := s.SetBytes(&buf)
		if overflow == 0 && !s.IsZero() {
			return secp256k1Scalar{s: s}, nil
		}
	}
}

func (e *secp256k1Engine) HashToCurve(data []byte) (Point, error) {
	counter := byte(0)
	for {
		candidate := append(append([]byte{}, data...), counter)
		sum := sha256Sum(candidate)
		pk, err := secp256k1.ParsePubKey(append([]byte{0x02}, sum...))
		if err == nil {
			var jp secp256k1.JacobianPoint
			pk.AsJacobian(&jp)
			return secp256k1Point{p: jp}, nil
		}
		counter++
		if counter == 0 {
			return nil, ppcerr.New(ppcerr.KindHashToCurveFailure, "exhausted try-and-increment counter")
		}
	}
}

func (e *secp256k1Engine) HashToScalar(data []byte) (Scalar, error) {
	sum := sha256Sum(data)
	var s secp256k1.ModNScalar
	s.SetByteSlice(sum)
	return secp256k1Scalar{s: s}, nil
}

func (e *secp256k1Engine) MulGenerator(s Scalar) (Point, error) {
	ss, ok := s.(secp256k1Scalar)
	if !ok {
		return nil, ppcerr.New(ppcerr.KindInvalidConfig, "scalar from a foreign curve")
	}
	var result secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(&ss.s, &result)
	return secp256k1Point{p: result}, nil
}

func (e *secp256k1Engine) ScalarMul(s Scalar, pt Point) (Point, error) {
	ss, ok1 := s.(secp256k1Scalar)
	sp, ok2 := pt.(secp256k1Point)
	if !ok1 || !ok2 {
		return nil, ppcerr.New(ppcerr.KindInvalidConfig, "operand from a foreign curve")
	}
	var result secp256k1.JacobianPoint
	secp256k1.ScalarMultNonConst(&ss.s, &sp.p, &result)
	return secp256k1Point{p: result}, nil
}

func (e *secp256k1Engine) ScalarInvert(s Scalar) (Scalar, error) {
	ss, ok := s.(secp256k1Scalar)
	if !ok {
		return nil, ppcerr.New(ppcerr.KindInvalidConfig, "scalar from a foreign curve")
	}
	inv := ss.s
	inv.InverseNonConst()
	return secp256k1Scalar{s: inv}, nil
}

func (e *secp256k1Engine) ScalarAdd(a, b Scalar) (Scalar, error) {
	sa, ok1 := a.(secp256k1Scalar)
	sb, ok2 := b.(secp256k1Scalar)
	if !ok1 || !ok2 {
		return nil, ppcerr.New(ppcerr.KindInvalidConfig, "operand from a foreign curve")
	}
	var out secp256k1.ModNScalar
	out.Add2(&sa.s, &sb.s)
	return secp256k1Scalar{s: out}, nil
}

func (e *secp256k1Engine) ScalarSub(a, b Scalar) (Scalar, error) {
	sa, ok1 := a.(secp256k1Scalar)
	sb, ok2 := b.(secp256k1Scalar)
	if !ok1 || !ok2 {
		return nil, ppcerr.New(ppcerr.KindInvalidConfig, "operand from a foreign curve")
	}
	neg := sb.s
	neg.Negate()
	var out secp256k1.ModNScalar
	out.Add2(&sa.s, &neg)
	return secp256k1Scalar{s: out}, nil
}

func (e *secp256k1Engine) ScalarMulScalar(a, b Scalar) (Scalar, error) {
	sa, ok1 := a.(secp256k1Scalar)
	sb, ok2 := b.(secp256k1Scalar)
	if !ok1 || !ok2 {
		return nil, ppcerr.New(ppcerr.KindInvalidConfig, "operand from a foreign curve")
	}
	var out secp256k1.ModNScalar
	out.Mul2(&sa.s, &sb.s)
	return secp256k1Scalar{s: out}, nil
}

func (e *secp256k1Engine) EcAdd(a, b Point) (Point, error) {
	pa, ok1 := a.(secp256k1Point)
	pb, ok2 := b.(secp256k1Point)
	if !ok1 || !ok2 {
		return nil, ppcerr.New(ppcerr.KindInvalidConfig, "operand from a foreign curve")
	}
	var out secp256k1.JacobianPoint
	secp256k1.AddNonConst(&pa.p, &pb.p, &out)
	return secp256k1Point{p: out}, nil
}

func (e *secp256k1Engine) EcSub(a, b Point) (Point, error) {
	pb, ok := b.(secp256k1Point)
	if !ok {
		return nil, ppcerr.New(ppcerr.KindInvalidConfig, "operand from a foreign curve")
	}
	neg := pb.p
	neg.ToAffine()
	neg.Y.Negate(1)
	neg.Y.Normalize()
	return e.EcAdd(a, secp256k1Point{p: neg})
}

func (e *secp256k1Engine) IsValidPoint(b []byte) bool {
	_, err := secp256k1.ParsePubKey(b)
	return err == nil
}

func (e *secp256k1Engine) PointFromBytes(b []byte) (Point, error) {
	pk, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, ppcerr.Wrap(ppcerr.KindDataFormatError, err)
	}
	var jp secp256k1.JacobianPoint
	pk.AsJacobian(&jp)
	return secp256k1Point{p: jp}, nil
}

func (e *secp256k1Engine) ScalarFromBytes(b []byte) (Scalar, error) {
	var s secp256k1.ModNScalar
	overflow := s.SetByteSlice(b)
	if overflow {
		return nil, ppcerr.New(ppcerr.KindDataFormatError, "scalar overflows group order")
	}
	return secp256k1Scalar{s: s}, nil
}
