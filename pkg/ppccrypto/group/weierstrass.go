package group

import (
	"crypto/elliptic"
	"crypto/rand"
	"math/big"

	"github.com/wedpr-ppc/ppc-core/pkg/ppcerr"
)

// weierstrassEngine implements Engine over any short-Weierstrass curve
// exposed through the stdlib elliptic.Curve interface: P-256 natively, and
// SM2 via hand-entered GB/T 32918-2016 domain parameters laid over
// elliptic.CurveParams, since no SM2 curve implementation exists anywhere
// in the retrieved corpus.
type weierstrassEngine struct {
	curve    CurveType
	ec       elliptic.Curve
	byteSize int
}

func newP256Engine() Engine {
	c := elliptic.P256()
	return &weierstrassEngine{curve: P256, ec: c, byteSize: (c.Params().BitSize + 7) / 8}
}

func newSM2Engine() Engine {
	c := sm2Curve()
	return &weierstrassEngine{curve: SM2, ec: c, byteSize: (c.Params().BitSize + 7) / 8}
}

type wScalar struct {
	v     *big.Int
	curve CurveType
}

func (s wScalar) Bytes() []byte { return s.v.Bytes() }
func (s wScalar) Equal(other Scalar) bool {
	o, ok := other.(wScalar)
	if !ok {
		return false
	}
	return s.v.Cmp(o.v) == 0
}

type wPoint struct {
	x, y  *big.Int
	curve CurveType
}

func (p wPoint) Bytes() []byte {
	eng := mustEngine(p.curve)
	return elliptic.MarshalCompressed(eng.(*weierstrassEngine).ec, p.x, p.y)
}

func (p wPoint) Equal(other Point) bool {
	o, ok := other.(wPoint)
	if !ok {
		return false
	}
	return p.x.Cmp(o.x) == 0 && p.y.Cmp(o.y) == 0
}

func mustEngine(c CurveType) Engine {
	e, err := New(c)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *weierstrassEngine) Type() CurveType { return e.curve }

func (e *weierstrassEngine) GenerateRandomScalar() (Scalar, error) {
	n := e.ec.Params().N
	for {
		k, err := rand.Int(rand.Reader, n)
		if err != nil {
			return nil, ppcerr.Wrap(ppcerr.KindInternal, err)
		}
		if k.Sign() != 0 {
			return wScalar{v: k, curve: e.curve}, nil
		}
	}
}

func (e *weierstrassEngine) HashToCurve(data []byte) (Point, error) {
	// SM2 always applies an extra hash pass before try-and-increment, to
	// match the reference implementation.
	if e.curve == SM2 {
		data = sha256Sum(data)
	}

	p := e.ec.Params().P
	for counter := byte(0); ; counter++ {
		sum := sha256Sum(append(append([]byte{}, data...), counter))
		x := new(big.Int).SetBytes(sum)
		x.Mod(x, p)
		if y, ok := liftX(e.ec, x); ok {
			return wPoint{x: x, y: y, curve: e.curve}, nil
		}
		if counter == 255 {
			return nil, ppcerr.New(ppcerr.KindHashToCurveFailure, "exhausted try-and-increment counter")
		}
	}
}

// liftX recovers a y coordinate for a candidate x on a short-Weierstrass
// curve y^2 = x^3 - 3x + b, returning ok=false when x is not on the curve.
func liftX(ec elliptic.Curve, x *big.Int) (*big.Int, bool) {
	params := ec.Params()
	p := params.P
	// y^2 = x^3 - 3x + b (mod p)
	x3 := new(big.Int).Exp(x, big.NewInt(3), p)
	threeX := new(big.Int).Mul(x, big.NewInt(3))
	rhs := new(big.Int).Sub(x3, threeX)
	rhs.Add(rhs, params.B)
	rhs.Mod(rhs, p)

	y := new(big.Int).ModSqrt(rhs, p)
	if y == nil {
		return nil, false
	}
	return y, true
}

func (e *weierstrassEngine) HashToScalar(data []byte) (Scalar, error) {
	sum := sha256Sum(data)
	k := new(big.Int).SetBytes(sum)
	k.Mod(k, e.ec.Params().N)
	return wScalar{v: k, curve: e.curve}, nil
}

func (e *weierstrassEngine) MulGenerator(s Scalar) (Point, error) {
	ws, ok := s.(wScalar)
	if !ok {
		return nil, ppcerr.New(ppcerr.KindInvalidConfig, "scalar from a foreign curve")
	}
	x, y := e.ec.ScalarBaseMult(ws.v.Bytes())
	return wPoint{x: x, y: y, curve: e.curve}, nil
}

func (e *weierstrassEngine) ScalarMul(s Scalar, pt Point) (Point, error) {
	ws, ok1 := s.(wScalar)
	wp, ok2 := pt.(wPoint)
	if !ok1 || !ok2 {
		return nil, ppcerr.New(ppcerr.KindInvalidConfig, "operand from a foreign curve")
	}
	x, y := e.ec.ScalarMult(wp.x, wp.y, ws.v.Bytes())
	return wPoint{x: x, y: y, curve: e.curve}, nil
}

func (e *weierstrassEngine) ScalarInvert(s Scalar) (Scalar, error) {
	ws, ok := s.(wScalar)
	if !ok {
		return nil, ppcerr.New(ppcerr.KindInvalidConfig, "scalar from a foreign curve")
	}
	inv := new(big.Int).ModInverse(ws.v, e.ec.Params().N)
	if inv == nil {
		return nil, ppcerr.New(ppcerr.KindScalarInvertFailure, "scalar has no inverse")
	}
	return wScalar{v: inv, curve: e.curve}, nil
}

func (e *weierstrassEngine) ScalarAdd(a, b Scalar) (Scalar, error) {
	wa, ok1 := a.(wScalar)
	wb, ok2 := b.(wScalar)
	if !ok1 || !ok2 {
		return nil, ppcerr.New(ppcerr.KindInvalidConfig, "operand from a foreign curve")
	}
	sum := new(big.Int).Add(wa.v, wb.v)
	sum.Mod(sum, e.ec.Params().N)
	return wScalar{v: sum, curve: e.curve}, nil
}

func (e *weierstrassEngine) ScalarSub(a, b Scalar) (Scalar, error) {
	wa, ok1 := a.(wScalar)
	wb, ok2 := b.(wScalar)
	if !ok1 || !ok2 {
		return nil, ppcerr.New(ppcerr.KindInvalidConfig, "operand from a foreign curve")
	}
	diff := new(big.Int).Sub(wa.v, wb.v)
	diff.Mod(diff, e.ec.Params().N)
	return wScalar{v: diff, curve: e.curve}, nil
}

func (e *weierstrassEngine) ScalarMulScalar(a, b Scalar) (Scalar, error) {
	wa, ok1 := a.(wScalar)
	wb, ok2 := b.(wScalar)
	if !ok1 || !ok2 {
		return nil, ppcerr.New(ppcerr.KindInvalidConfig, "operand from a foreign curve")
	}
	prod := new(big.Int).Mul(wa.v, wb.v)
	prod.Mod(prod, e.ec.Params().N)
	return wScalar{v: prod, curve: e.curve}, nil
}

func (e *weierstrassEngine) EcAdd(a, b Point) (Point, error) {
	pa, ok1 := a.(wPoint)
	pb, ok2 := b.(wPoint)
	if !ok1 || !ok2 {
		return nil, ppcerr.New(ppcerr.KindInvalidConfig, "operand from a foreign curve")
	}
	x, y := e.ec.Add(pa.x, pa.y, pb.x, pb.y)
	return wPoint{x: x, y: y, curve: e.curve}, nil
}

func (e *weierstrassEngine) EcSub(a, b Point) (Point, error) {
	pb, ok := b.(wPoint)
	if !ok {
		return nil, ppcerr.New(ppcerr.KindInvalidConfig, "operand from a foreign curve")
	}
	negY := new(big.Int).Sub(e.ec.Params().P, pb.y)
	return e.EcAdd(a, wPoint{x: pb.x, y: negY, curve: e.curve})
}

func (e *weierstrassEngine) IsValidPoint(b []byte) bool {
	x, y := elliptic.UnmarshalCompressed(e.ec, b)
	return x != nil && y != nil
}

func (e *weierstrassEngine) PointFromBytes(b []byte) (Point, error) {
	x, y := elliptic.UnmarshalCompressed(e.ec, b)
	if x == nil {
		return nil, ppcerr.New(ppcerr.KindDataFormatError, "invalid point encoding")
	}
	return wPoint{x: x, y: y, curve: e.curve}, nil
}

func (e *weierstrassEngine) ScalarFromBytes(b []byte) (Scalar, error) {
	k := new(big.Int).SetBytes(b)
	if k.Cmp(e.ec.Params().N) >= 0 {
		return nil, ppcerr.New(ppcerr.KindDataFormatError, "scalar overflows group order")
	}
	return wScalar{v: k, curve: e.curve}, nil
}
