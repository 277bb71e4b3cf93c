// Package simplest implements component C7: the Chou–Orlandi Simplest OT
// construction, over the ppccrypto/group.Engine abstraction so it runs on
// whichever curve the session negotiated. Batch operations fan out via
// errgroup.
package simplest

import (
	"encoding/binary"

	"golang.org/x/sync/errgroup"

	"github.com/wedpr-ppc/ppc-core/pkg/ppccrypto/group"
	"github.com/wedpr-ppc/ppc-core/pkg/ppccrypto/hash"
)

// Sender holds the random scalar a and its public point A = aG for the
// lifetime of one batch of N OTs.
type Sender struct {
	eng group.Engine
	h   hash.Algorithm
	a   group.Scalar
	A   group.Point
}

// NewSender picks a fresh scalar a and computes A = aG.
func NewSender(eng group.Engine, h hash.Algorithm) (*Sender, error) {
	a, err := eng.GenerateRandomScalar()
	if err != nil {
		return nil, err
	}
	A, err := eng.MulGenerator(a)
	if err != nil {
		return nil, err
	}
	return &Sender{eng: eng, h: h, a: a, A: A}, nil
}

// SenderGeneratePointA returns the sender's public point A, to be sent to
// the receiver before the Bs arrive.
func (s *Sender) SenderGeneratePointA() group.Point { return s.A }

// FinishSender derives both keys for each of the N received points,
// keyed by index i: k_i0 = H(a*B_i || i), k_i1 = H(a*B_i - a*A || i).
func (s *Sender) FinishSender(bs []group.Point) (k0, k1 [][]byte, err error) {
	n := len(bs)
	k0 = make([][]byte, n)
	k1 = make([][]byte, n)
	aA, err := s.eng.ScalarMul(s.a, s.A)
	if err != nil {
		return nil, nil, err
	}
	g := new(errgroup.Group)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			aB, err := s.eng.ScalarMul(s.a, bs[i])
			if err != nil {
				return err
			}
			aBMinusA, err := s.eng.EcSub(aB, aA)
			if err != nil {
				return err
			}
			k0[i] = keyHash(s.h, aB, i)
			k1[i] = keyHash(s.h, aBMinusA, i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return k0, k1, nil
}

// Receiver holds the choice bits and the per-index blinders b_i.
type Receiver struct {
	eng     group.Engine
	h       hash.Algorithm
	choices []bool
	bs      []group.Scalar
	A       group.Point
}

// NewReceiver takes the sender's point A and the receiver's choice bits.
func NewReceiver(eng group.Engine, h hash.Algorithm, a group.Point, choices []bool) *Receiver {
	return &Receiver{eng: eng, h: h, A: a, choices: choices}
}

// ReceiverGeneratePointsB picks a fresh blinder b_i per choice bit and
// returns B_i = b_i*G if c_i = 0, else A + b_i*G.
func (r *Receiver) ReceiverGeneratePointsB() ([]group.Point, error) {
	n := len(r.choices)
	out := make([]group.Point, n)
	r.bs = make([]group.Scalar, n)

	g := new(errgroup.Group)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			b, err := r.eng.GenerateRandomScalar()
			if err != nil {
				return err
			}
			r.bs[i] = b
			bG, err := r.eng.MulGenerator(b)
			if err != nil {
				return err
			}
			if !r.choices[i] {
				out[i] = bG
				return nil
			}
			sum, err := r.eng.EcAdd(r.A, bG)
			if err != nil {
				return err
			}
			out[i] = sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// FinishReceiver derives k_i = H(b_i*A || i) for every index, which equals
// k_{i,c_i} on the sender's side.
func (r *Receiver) FinishReceiver() ([][]byte, error) {
	n := len(r.choices)
	out := make([][]byte, n)
	g := new(errgroup.Group)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			bA, err := r.eng.ScalarMul(r.bs[i], r.A)
			if err != nil {
				return err
			}
			out[i] = keyHash(r.h, bA, i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func keyHash(h hash.Algorithm, p group.Point, index int) []byte {
	var idx [8]byte
	binary.LittleEndian.PutUint64(idx[:], uint64(index))
	buf := append(append([]byte{}, p.Bytes()...), idx[:]...)
	return h.Hash(buf)
}
