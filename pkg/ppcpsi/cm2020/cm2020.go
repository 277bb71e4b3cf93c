// Package cm2020 implements component C10: the sparse-OKVS + OT-extension
// PSI protocol of Chase-Miao 2020, per spec.md §4.10. This is the hardest
// subsystem; the numerical constants below are the fixed, cross-party
// values resolving open question (c) (see DESIGN.md).
package cm2020

import (
	"context"

	"github.com/wedpr-ppc/ppc-core/pkg/ppccrypto/hash"
	"github.com/wedpr-ppc/ppc-core/pkg/ppccrypto/prng"
	"github.com/wedpr-ppc/ppc-core/pkg/ppcerr"
	"github.com/wedpr-ppc/ppc-core/pkg/ppcsync/workerpool"
)

// Fixed numerical constants, recorded as authoritative in DESIGN.md. The
// HANDSHAKE carries only the receiver's Handshake fields; the sender adopts
// them as sent and performs no geometry comparison, so a differing geometry
// is not detected or rejected.
const (
	DefaultHandleWidthPower = 20
	MinHandleWidth          = 1
	MinBucketSize           = 512 // bits
	EncodeRate              = 1.27
	MaxSendBufferLength     = 4096 // bytes per wire chunk
	ResultLenByte           = 8    // PSI hash truncation length
)

// Handshake is the receiver-chosen geometry both sides must agree on.
type Handshake struct {
	N               int // bucket count
	Seed            [16]byte
	LowBandwidth    bool
	SyncResultsBack bool
}

// BucketSizeBytes derives the per-column bucket size from the largest
// input set size, per §4.10's bucketSizeBytes formula.
func BucketSizeBytes(maxInputSize int) int {
	byEncodeRate := int((float64(maxInputSize)*EncodeRate + 7) / 8)
	minBytes := MinBucketSize / 8
	if byEncodeRate > minBytes {
		return byEncodeRate
	}
	return minBytes
}

// LocationSeeds hashes an item into eight 32-bit location seeds L0..L7.
func LocationSeeds(item []byte, seed [16]byte) [8]uint32 {
	var out [8]uint32
	for j := 0; j < 8; j++ {
		combined := append(append([]byte{}, seed[:]...), item...)
		out[j] = hash.Hash32(combined, uint32(j))
	}
	return out
}

// ColumnPosition computes the bit position inside column j that item v's
// OPRF bit comes from: ((L[j%4]*j)+L[4+j%4]) mod m, m = bucketSizeBytes*8.
func ColumnPosition(loc [8]uint32, j int, bucketSizeBytes int) int {
	m := uint64(bucketSizeBytes) * 8
	l1 := uint64(loc[j%4])
	l2 := uint64(loc[4+j%4])
	pos := (l1*uint64(j) + l2) % m
	return int(pos)
}

// getBit/setBit/clearBit treat a byte slice as a little-endian bit vector.
func getBit(buf []byte, pos int) bool {
	return buf[pos/8]&(1<<uint(pos%8)) != 0
}

func clearBit(buf []byte, pos int) {
	buf[pos/8] &^= 1 << uint(pos%8)
}

// expandColumn derives a bucketSizeBytes-long pseudorandom column from an
// OT-derived key and a tweak (0 or 1), via the AES-CTR PRNG (C3). The
// tweak leads the seed so it falls inside the PRNG's 16-byte AES key.
func expandColumn(key []byte, tweak byte, bucketSizeBytes int) ([]byte, error) {
	seed := append([]byte{tweak}, key...)
	p, err := prng.New(prng.AESCTR, seed)
	if err != nil {
		return nil, err
	}
	return p.Generate(bucketSizeBytes)
}

func xorInto(dst, src []byte) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}

// ReceiverColumns holds the receiver's per-column A (its own PRNG stream)
// and Delta (item-cleared mask), and the M message it sends out.
type ReceiverColumns struct {
	A     [][]byte
	Delta [][]byte
	M     [][]byte
}

// BuildReceiverColumns runs the "Matrix construction" step of §4.10 for
// the receiver, who (as the base-OT sender) holds both per-column keys
// keys0[j]/keys1[j]: expands AES-PRNG(keys0[j],0) into A[j], clears bits
// at each local item's location, and masks with AES-PRNG(keys1[j],1) to
// produce M[j].
func BuildReceiverColumns(keys0, keys1 [][]byte, items [][]byte, seed [16]byte, bucketSizeBytes int) (*ReceiverColumns, error) {
	n := len(keys0)
	out := &ReceiverColumns{A: make([][]byte, n), Delta: make([][]byte, n), M: make([][]byte, n)}

	locs := make([][8]uint32, len(items))
	for i, v := range items {
		locs[i] = LocationSeeds(v, seed)
	}

	pool := workerpool.New(0)
	err := pool.ForEachIndex(context.Background(), n, func(j int) error {
		a, err := expandColumn(keys0[j], 0, bucketSizeBytes)
		if err != nil {
			return err
		}
		mask1, err := expandColumn(keys1[j], 1, bucketSizeBytes)
		if err != nil {
			return err
		}
		delta := make([]byte, bucketSizeBytes)
		for i := range delta {
			delta[i] = 0xff
		}
		for _, loc := range locs {
			pos := ColumnPosition(loc, j, bucketSizeBytes)
			clearBit(delta, pos)
		}
		m := make([]byte, bucketSizeBytes)
		copy(m, a)
		xorInto(m, delta)
		xorInto(m, mask1)

		out.A[j] = a
		out.Delta[j] = delta
		out.M[j] = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// BuildSenderColumns runs the sender's half of "Matrix construction":
// given its random choice bits c and the single OT key per column,
// expands AES-PRNG(key_j, c[j]) into C[j], which equals A[j] ⊕ (the
// receiver's M[j] masking) depending on c[j].
func BuildSenderColumns(keys [][]byte, choiceBits []bool, receiverM [][]byte, bucketSizeBytes int) ([][]byte, error) {
	n := len(keys)
	if len(choiceBits) != n || len(receiverM) != n {
		return nil, ppcerr.New(ppcerr.KindInvalidTaskParam, "column count mismatch")
	}
	c := make([][]byte, n)
	pool := workerpool.New(0)
	err := pool.ForEachIndex(context.Background(), n, func(j int) error {
		var tweak byte
		if choiceBits[j] {
			tweak = 1
		}
		base, err := expandColumn(keys[j], tweak, bucketSizeBytes)
		if err != nil {
			return err
		}
		col := make([]byte, bucketSizeBytes)
		copy(col, base)
		if choiceBits[j] {
			// C[j] = A[j] xor Delta[j]: recover via the receiver's
			// M[j], which equals A[j] xor Delta[j] xor mask1, so
			// xor M[j] with the tweak=1 expansion removes mask1.
			xorInto(col, receiverM[j])
		}
		c[j] = col
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// OprfOutputBits extracts bit j of item v's OPRF output from bit
// loc(v,j) of the local column matrix (C on the sender, A on the
// receiver), for every column.
func OprfOutputBits(item []byte, seed [16]byte, columns [][]byte, bucketSizeBytes int) []byte {
	loc := LocationSeeds(item, seed)
	n := len(columns)
	out := make([]byte, (n+7)/8)
	for j := 0; j < n; j++ {
		pos := ColumnPosition(loc, j, bucketSizeBytes)
		if getBit(columns[j], pos) {
			out[j/8] |= 1 << uint(j%8)
		}
	}
	return out
}

// HashOutput truncates h.Hash(oprfBits) to ResultLenByte bytes for the
// PSI-finish wire format.
func HashOutput(h hash.Algorithm, oprfBits []byte) []byte {
	full := h.Hash(oprfBits)
	if len(full) < ResultLenByte {
		return full
	}
	return full[:ResultLenByte]
}

// HandleWidth returns the column-group size used to bound peak memory
// under ~2^26 bytes regardless of input size, per the "Batching" rule.
func HandleWidth(n int, bucketSizeBytes int) int {
	const peakMemoryBudget = 1 << 26
	width := peakMemoryBudget / bucketSizeBytes
	if width < MinHandleWidth {
		width = MinHandleWidth
	}
	if width > n {
		width = n
	}
	return width
}
