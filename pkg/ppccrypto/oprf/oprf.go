// Package oprf implements component C6: the EC-DH OPRF (JKK14) and the
// RA2018 variant, both generalized from
// original_source/cpp/ppc-crypto/src/oprf/EcdhOprf.cpp. Batch operations
// use golang.org/x/sync/errgroup in place of the original's
// tbb::parallel_for.
package oprf

import (
	"golang.org/x/sync/errgroup"

	"github.com/wedpr-ppc/ppc-core/pkg/ppccrypto/group"
	"github.com/wedpr-ppc/ppc-core/pkg/ppccrypto/hash"
	"github.com/wedpr-ppc/ppc-core/pkg/ppcerr"
)

// EcdhOprf implements the JKK14 EC-DH OPRF over a single group.Engine.
type EcdhOprf struct {
	eng        group.Engine
	h1         hash.Algorithm // maps item bytes into the group via HashToCurve
	h2         hash.Algorithm // maps (item||point) into the output digest
	outputSize int
}

// New builds an EcdhOprf bound to the given curve engine and output hash,
// truncating H2's digest to outputSize bytes.
func New(eng group.Engine, h2 hash.Algorithm, outputSize int) (*EcdhOprf, error) {
	if outputSize <= 0 || outputSize > h2.Len() {
		return nil, ppcerr.New(ppcerr.KindInvalidConfig, "oprf outputSize must be in (0, h2.Len()]")
	}
	return &EcdhOprf{eng: eng, h2: h2, outputSize: outputSize}, nil
}

// Blind computes B = H1(x)^r for client input x and blinder r.
func (o *EcdhOprf) Blind(x []byte, r group.Scalar) (group.Point, error) {
	hx, err := o.eng.HashToCurve(x)
	if err != nil {
		return nil, err
	}
	return o.eng.ScalarMul(r, hx)
}

// Evaluate computes E = B^k for server key k.
func (o *EcdhOprf) Evaluate(b group.Point, k group.Scalar) (group.Point, error) {
	return o.eng.ScalarMul(k, b)
}

// Finalize computes H2(x || E^{1/r}) truncated to outputSize bytes.
func (o *EcdhOprf) Finalize(x []byte, e group.Point, r group.Scalar) ([]byte, error) {
	rInv, err := o.eng.ScalarInvert(r)
	if err != nil {
		return nil, err
	}
	unblinded, err := o.eng.ScalarMul(rInv, e)
	if err != nil {
		return nil, err
	}
	return o.digest(x, unblinded), nil
}

// FullEvaluate computes H2(x || H1(x)^k) truncated, used when one party
// holds both x and k.
func (o *EcdhOprf) FullEvaluate(x []byte, k group.Scalar) ([]byte, error) {
	hx, err := o.eng.HashToCurve(x)
	if err != nil {
		return nil, err
	}
	p, err := o.eng.ScalarMul(k, hx)
	if err != nil {
		return nil, err
	}
	return o.digest(x, p), nil
}

func (o *EcdhOprf) digest(x []byte, p group.Point) []byte {
	buf := append(append([]byte{}, x...), p.Bytes()...)
	full := o.h2.Hash(buf)
	return full[:o.outputSize]
}

// BatchBlind/BatchEvaluate/BatchFinalize/BatchFullEvaluate run the
// corresponding single-item operation over a slice, fanning out across the
// shared errgroup the way the original batches with tbb::parallel_for.

func (o *EcdhOprf) BatchBlind(xs [][]byte, rs []group.Scalar) ([]group.Point, error) {
	if len(xs) != len(rs) {
		return nil, ppcerr.New(ppcerr.KindInvalidTaskParam, "xs and rs length mismatch")
	}
	out := make([]group.Point, len(xs))
	var g errgroup.Group
	for i := range xs {
		i := i
		g.Go(func() error {
			p, err := o.Blind(xs[i], rs[i])
			if err != nil {
				return err
			}
			out[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (o *EcdhOprf) BatchEvaluate(bs []group.Point, k group.Scalar) ([]group.Point, error) {
	out := make([]group.Point, len(bs))
	var g errgroup.Group
	for i := range bs {
		i := i
		g.Go(func() error {
			e, err := o.Evaluate(bs[i], k)
			if err != nil {
				return err
			}
			out[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (o *EcdhOprf) BatchFinalize(xs [][]byte, es []group.Point, rs []group.Scalar) ([][]byte, error) {
	if len(xs) != len(es) || len(xs) != len(rs) {
		return nil, ppcerr.New(ppcerr.KindInvalidTaskParam, "batch length mismatch")
	}
	out := make([][]byte, len(xs))
	var g errgroup.Group
	for i := range xs {
		i := i
		g.Go(func() error {
			d, err := o.Finalize(xs[i], es[i], rs[i])
			if err != nil {
				return err
			}
			out[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (o *EcdhOprf) BatchFullEvaluate(xs [][]byte, k group.Scalar) ([][]byte, error) {
	out := make([][]byte, len(xs))
	var g errgroup.Group
	for i := range xs {
		i := i
		g.Go(func() error {
			d, err := o.FullEvaluate(xs[i], k)
			if err != nil {
				return err
			}
			out[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
