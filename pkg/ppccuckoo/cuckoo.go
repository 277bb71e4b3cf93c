// Package ppccuckoo implements the cuckoo-filter storage helper for the
// RA2018 OPRF (supplement recovered from original_source, dropped by the
// distillation): a fixed-capacity approximate-membership structure keyed
// by BitMix-Murmur (ppccrypto/hash) tags rather than a plain hash set.
package ppccuckoo

import (
	"github.com/wedpr-ppc/ppc-core/pkg/ppccrypto/hash"
	"github.com/wedpr-ppc/ppc-core/pkg/ppcerr"
)

const (
	bucketSize   = 4
	maxKicks     = 500
	fingerprintSeed uint32 = 0x5bd1e995
)

// Filter is a fixed-size cuckoo filter over 16-bit fingerprints.
type Filter struct {
	buckets    [][bucketSize]uint16
	numBuckets uint32
	count      int
}

// New builds a Filter sized for approximately capacity entries.
func New(capacity int) *Filter {
	numBuckets := uint32(1)
	for int(numBuckets)*bucketSize < capacity {
		numBuckets <<= 1
	}
	return &Filter{
		buckets:    make([][bucketSize]uint16, numBuckets),
		numBuckets: numBuckets,
	}
}

func (f *Filter) fingerprint(item []byte) uint16 {
	fp := uint16(hash.Hash32(item, fingerprintSeed) & 0xffff)
	if fp == 0 {
		fp = 1
	}
	return fp
}

func (f *Filter) indexOf(item []byte) uint32 {
	return hash.Hash32(item, 0x9747b28c) % f.numBuckets
}

func (f *Filter) altIndex(i uint32, fp uint16) uint32 {
	var buf [2]byte
	buf[0] = byte(fp)
	buf[1] = byte(fp >> 8)
	h := hash.Hash32(buf[:], 0xc6a4a793)
	return (i ^ h) % f.numBuckets
}

// Insert adds item, evicting and relocating an existing fingerprint up to
// maxKicks times if both candidate buckets are full. Returns false if the
// filter is full and no placement could be found.
func (f *Filter) Insert(item []byte) bool {
	fp := f.fingerprint(item)
	i1 := f.indexOf(item)
	i2 := f.altIndex(i1, fp)

	if f.insertInto(i1, fp) || f.insertInto(i2, fp) {
		f.count++
		return true
	}

	i := i1
	for n := 0; n < maxKicks; n++ {
		slot := n % bucketSize
		fp, f.buckets[i][slot] = f.buckets[i][slot], fp
		i = f.altIndex(i, fp)
		if f.insertInto(i, fp) {
			f.count++
			return true
		}
	}
	return false
}

func (f *Filter) insertInto(i uint32, fp uint16) bool {
	b := &f.buckets[i]
	for s := 0; s < bucketSize; s++ {
		if b[s] == 0 {
			b[s] = fp
			return true
		}
	}
	return false
}

// Lookup reports whether item is (probably) present.
func (f *Filter) Lookup(item []byte) bool {
	fp := f.fingerprint(item)
	i1 := f.indexOf(item)
	i2 := f.altIndex(i1, fp)
	return f.bucketHas(i1, fp) || f.bucketHas(i2, fp)
}

func (f *Filter) bucketHas(i uint32, fp uint16) bool {
	b := &f.buckets[i]
	for s := 0; s < bucketSize; s++ {
		if b[s] == fp {
			return true
		}
	}
	return false
}

// Delete removes one occurrence of item, returning an error if it was not
// present.
func (f *Filter) Delete(item []byte) error {
	fp := f.fingerprint(item)
	i1 := f.indexOf(item)
	i2 := f.altIndex(i1, fp)

	if f.deleteFrom(i1, fp) || f.deleteFrom(i2, fp) {
		f.count--
		return nil
	}
	return ppcerr.New(ppcerr.KindRemoveMissing, "item not present in cuckoo filter")
}

func (f *Filter) deleteFrom(i uint32, fp uint16) bool {
	b := &f.buckets[i]
	for s := 0; s < bucketSize; s++ {
		if b[s] == fp {
			b[s] = 0
			return true
		}
	}
	return false
}

// LoadFactor returns the fraction of slots currently occupied.
func (f *Filter) LoadFactor() float64 {
	total := int(f.numBuckets) * bucketSize
	if total == 0 {
		return 0
	}
	return float64(f.count) / float64(total)
}
