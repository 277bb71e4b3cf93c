package oprf

import (
	"github.com/wedpr-ppc/ppc-core/pkg/ppccrypto/group"
	"github.com/wedpr-ppc/ppc-core/pkg/ppccrypto/hash"
)

// Ra2018Oprf is the RA2018 OPRF variant: same blind/evaluate/finalize
// structure as EcdhOprf, but the sender holds a persistent scalar alpha
// (set once at construction) instead of taking k per call, and the output
// is meant to be stored in a cuckoo filter (package ppccuckoo) rather than
// a plain hash set.
type Ra2018Oprf struct {
	inner *EcdhOprf
	alpha group.Scalar
}

// NewRa2018 binds a persistent sender scalar alpha.
func NewRa2018(eng group.Engine, h2 hash.Algorithm, outputSize int, alpha group.Scalar) (*Ra2018Oprf, error) {
	inner, err := New(eng, h2, outputSize)
	if err != nil {
		return nil, err
	}
	return &Ra2018Oprf{inner: inner, alpha: alpha}, nil
}

// Blind computes H1(y)^beta for the client's per-call blinder beta.
func (r *Ra2018Oprf) Blind(y []byte, beta group.Scalar) (group.Point, error) {
	return r.inner.Blind(y, beta)
}

// Evaluate applies the sender's persistent alpha.
func (r *Ra2018Oprf) Evaluate(b group.Point) (group.Point, error) {
	return r.inner.Evaluate(b, r.alpha)
}

// Finalize unblinds by 1/beta.
func (r *Ra2018Oprf) Finalize(y []byte, e group.Point, beta group.Scalar) ([]byte, error) {
	return r.inner.Finalize(y, e, beta)
}

// FullEvaluate computes the sender-side output directly, used to seed the
// cuckoo filter with H1(y)^alpha digests.
func (r *Ra2018Oprf) FullEvaluate(y []byte) ([]byte, error) {
	return r.inner.FullEvaluate(y, r.alpha)
}
