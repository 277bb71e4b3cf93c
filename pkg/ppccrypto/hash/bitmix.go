package hash

import "encoding/binary"

// BitMix-Murmur has no Go package in the retrieved corpus either, so like
// SM3 it is hand-ported, here from
// original_source/cpp/ppc-crypto-core/src/hash/BitMixMurmurHash.h. It does
// not implement Algorithm: its signature is hash64(data, seed) rather than
// the fixed-output Hash(data) shape used by the rest of this package, since
// it serves as a cuckoo-filter tag generator (see ppccuckoo), the CM2020
// OKVS matrix indexing, and the hash64 term of the 1-of-n base OT (see
// ppcot/baseot), not as a general-purpose digest.

const (
	murmur32C1 uint32 = 0xcc9e2d51
	murmur32C2 uint32 = 0x1b873593
	murmur64C1 uint64 = 0xff51afd7ed558ccd
	murmur64C2 uint64 = 0xc4ceb9fe1a85ec53
)

func murmurFmix32(h uint32) uint32 {
	h ^= h >> 16
	h *= 0x85ebca6b
	h ^= h >> 13
	h *= 0xc2b2ae35
	h ^= h >> 16
	return h
}

func murmurFmix64(k uint64) uint64 {
	k ^= k >> 33
	k *= murmur64C1
	k ^= k >> 33
	k *= murmur64C2
	k ^= k >> 33
	return k
}

// Hash32 computes the 32-bit MurmurHash3 variant of data with the given
// seed, followed by the bit-mixing finalizer.
func Hash32(data []byte, seed uint32) uint32 {
	h := seed
	n := len(data)
	nblocks := n / 4

	for i := 0; i < nblocks; i++ {
		k := binary.LittleEndian.Uint32(data[i*4:])
		k *= murmur32C1
		k = (k << 15) | (k >> 17)
		k *= murmur32C2

		h ^= k
		h = (h << 13) | (h >> 19)
		h = h*5 + 0xe6546b64
	}

	tail := data[nblocks*4:]
	var k1 uint32
	switch len(tail) {
	case 3:
		k1 ^= uint32(tail[2]) << 16
		fallthrough
	case 2:
		k1 ^= uint32(tail[1]) << 8
		fallthrough
	case 1:
		k1 ^= uint32(tail[0])
		k1 *= murmur32C1
		k1 = (k1 << 15) | (k1 >> 17)
		k1 *= murmur32C2
		h ^= k1
	}

	h ^= uint32(n)
	return murmurFmix32(h)
}

// Hash64 computes a 64-bit bit-mixed Murmur variant of data with the given
// seed. It folds the input through the same 32-bit core twice (once at the
// given seed, once at seed^0x9e3779b9) and combines the two halves with the
// 64-bit finalizer, matching the bit-mix-murmur construction used for
// cuckoo-filter tags.
func Hash64(data []byte, seed uint32) uint64 {
	lo := Hash32(data, seed)
	hi := Hash32(data, seed^0x9e3779b9)
	combined := uint64(hi)<<32 | uint64(lo)
	return murmurFmix64(combined)
}

// Hash64Uint64 is the integer-keyed overload used when indexing by a
// fixed-width value (e.g. an OKVS bucket index) rather than a byte slice.
func Hash64Uint64(v uint64, seed uint32) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return Hash64(buf[:], seed)
}
