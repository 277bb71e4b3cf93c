// Package prng implements component C3: a deterministic, seekable pseudo
// random generator with two interchangeable backends (AES-CTR and keyed
// BLAKE2b), both block-oriented so that generate(n) can split into a
// leftover-copy, parallel whole-block, and partial-refill phase.
package prng

import (
	"encoding/binary"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/wedpr-ppc/ppc-core/pkg/ppcerr"
)

// Type selects the PRNG backend.
type Type int

const (
	AESCTR Type = iota
	BLAKE2bPRNG
)

// blockSource produces one deterministic block for a given block index.
type blockSource interface {
	blockSize() int
	block(index uint64) []byte
}

// PRNG is a seekable, block-oriented deterministic byte stream.
type PRNG struct {
	mu           sync.Mutex
	src          blockSource
	nextIndex    uint64
	buf          []byte // leftover bytes from the current block, already consumed up to bufOff
	bufOff       int
	totalOutputs uint64
}

// New builds a PRNG of the given Type, seeded with the given key material.
func New(t Type, seed []byte) (*PRNG, error) {
	var src blockSource
	switch t {
	case AESCTR:
		s, err := newAESCTRSource(seed)
		if err != nil {
			return nil, err
		}
		src = s
	case BLAKE2bPRNG:
		s, err := newBlake2bSource(seed)
		if err != nil {
			return nil, err
		}
		src = s
	default:
		return nil, ppcerr.New(ppcerr.KindInvalidConfig, "unknown prng type")
	}
	return &PRNG{src: src}, nil
}

// TotalOutputs reports the number of bytes emitted over the life of this
// PRNG, a monotonically increasing counter.
func (p *PRNG) TotalOutputs() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalOutputs
}

// Generate returns n freshly produced bytes.
func (p *PRNG) Generate(n int) ([]byte, error) {
	dst := make([]byte, n)
	if err := p.GenerateInto(dst, n); err != nil {
		return nil, err
	}
	return dst, nil
}

// GenerateUint64 draws a single uint64 from the stream.
func (p *PRNG) GenerateUint64() (uint64, error) {
	b, err := p.Generate(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// GenerateInto fills dst[:n] with freshly produced bytes: leftover bytes
// from the current partially-consumed block are copied first, then whole
// blocks in the middle are produced concurrently, then any trailing
// partial block refills the internal buffer.
func (p *PRNG) GenerateInto(dst []byte, n int) error {
	if n > len(dst) {
		return ppcerr.New(ppcerr.KindInvalidConfig, "dst shorter than requested length")
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	written := 0

	// Phase 1: drain the leftover buffer.
	if p.bufOff < len(p.buf) {
		k := copy(dst[:n], p.buf[p.bufOff:])
		p.bufOff += k
		written += k
	}
	if written == n {
		p.totalOutputs += uint64(n)
		return nil
	}

	remaining := n - written
	blockSize := p.src.blockSize()
	wholeBlocks := remaining / blockSize
	tailLen := remaining % blockSize

	if wholeBlocks > 0 {
		startIndex := p.nextIndex
		out := make([][]byte, wholeBlocks)
		g := new(errgroup.Group)
		for i := 0; i < wholeBlocks; i++ {
			i := i
			g.Go(func() error {
				out[i] = p.src.block(startIndex + uint64(i))
				return nil
			})
		}
		_ = g.Wait()
		for i := 0; i < wholeBlocks; i++ {
			copy(dst[written+i*blockSize:], out[i])
		}
		written += wholeBlocks * blockSize
		p.nextIndex = startIndex + uint64(wholeBlocks)
	}

	if tailLen > 0 {
		block := p.src.block(p.nextIndex)
		p.nextIndex++
		copy(dst[written:n], block[:tailLen])
		p.buf = block
		p.bufOff = tailLen
		written += tailLen
	}

	p.totalOutputs += uint64(written)
	return nil
}
