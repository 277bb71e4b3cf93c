package group

import (
	"crypto/elliptic"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScalarMulGeneratorAgreesWithDoubleScalarMul(t *testing.T) {
	for _, ct := range []CurveType{Ed25519, Secp256k1, P256, SM2} {
		eng, err := New(ct)
		require.NoError(t, err)

		a, err := eng.GenerateRandomScalar()
		require.NoError(t, err)
		b, err := eng.GenerateRandomScalar()
		require.NoError(t, err)

		// (a*G)*b == (b*G)*a, the DH-style commutativity every OPRF and
		// ECDH-PSI protocol step relies on.
		aG, err := eng.MulGenerator(a)
		require.NoError(t, err)
		bG, err := eng.MulGenerator(b)
		require.NoError(t, err)

		abG, err := eng.ScalarMul(b, aG)
		require.NoError(t, err)
		baG, err := eng.ScalarMul(a, bG)
		require.NoError(t, err)

		require.True(t, abG.Equal(baG), "%s: scalar mult must commute", ct)
	}
}

func TestUnsupportedCurve(t *testing.T) {
	_, err := New(CurveType(99))
	require.Error(t, err)
}

func TestEd25519RejectsScalarField(t *testing.T) {
	eng, err := New(Ed25519)
	require.NoError(t, err)

	_, err = eng.ScalarInvert(nil)
	require.Error(t, err)
	_, err = eng.HashToScalar([]byte("x"))
	require.Error(t, err)
}

func TestHashToCurveSM2AppliesExtraHashPass(t *testing.T) {
	sm2Eng, err := New(SM2)
	require.NoError(t, err)
	sm2, ok := sm2Eng.(*weierstrassEngine)
	require.True(t, ok)

	input := []byte("hash-to-curve divergence check")

	actual, err := sm2.HashToCurve(input)
	require.NoError(t, err)

	// Without the SM2-only extra hash pass, try-and-increment would start
	// from sha256Sum(input) directly, the same as P256's computation.
	singleHashed, ok := naiveHashToCurve(sm2.ec, input)
	require.True(t, ok)

	require.NotEqual(t, singleHashed.Bytes(), actual.Bytes(),
		"SM2 HashToCurve must diverge from a single-hash (non-SM2) computation")
}

// naiveHashToCurve replicates HashToCurve's try-and-increment loop without
// the SM2-only extra hash pass, as a baseline for TestHashToCurveSM2AppliesExtraHashPass.
func naiveHashToCurve(ec elliptic.Curve, data []byte) (wPoint, bool) {
	p := ec.Params().P
	for counter := byte(0); ; counter++ {
		sum := sha256Sum(append(append([]byte{}, data...), counter))
		x := new(big.Int).SetBytes(sum)
		x.Mod(x, p)
		if y, ok := liftX(ec, x); ok {
			return wPoint{x: x, y: y, curve: SM2}, true
		}
		if counter == 255 {
			return wPoint{}, false
		}
	}
}

func TestPointRoundTrip(t *testing.T) {
	for _, ct := range []CurveType{Secp256k1, P256, SM2} {
		eng, err := New(ct)
		require.NoError(t, err)

		s, err := eng.GenerateRandomScalar()
		require.NoError(t, err)
		p, err := eng.MulGenerator(s)
		require.NoError(t, err)

		decoded, err := eng.PointFromBytes(p.Bytes())
		require.NoError(t, err)
		require.True(t, p.Equal(decoded), "%s: point must round-trip through its wire encoding", ct)
	}
}
