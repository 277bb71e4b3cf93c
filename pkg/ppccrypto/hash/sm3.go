package hash

import "encoding/binary"

// SM3 has no Go implementation anywhere in the retrieved corpus, so it is
// hand-ported directly from the GB/T 32905-2016 definition, the same way
// utils.Encrypt/utils.randomOracle hand-port the BHKR13 free-XOR routine
// instead of reaching for a library.

const sm3BlockSize = 64

var sm3IV = [8]uint32{
	0x7380166f, 0x4914b2b9, 0x172442d7, 0xda8a0600,
	0xa96f30bc, 0x163138aa, 0xe38dee4d, 0xb0fb0e4e,
}

func sm3ff(j int, x, y, z uint32) uint32 {
	if j < 16 {
		return x ^ y ^ z
	}
	return (x & y) | (x & z) | (y & z)
}

func sm3gg(j int, x, y, z uint32) uint32 {
	if j < 16 {
		return x ^ y ^ z
	}
	return (x & y) | (^x & z)
}

func rotl32(x uint32, n uint) uint32 { return (x << n) | (x >> (32 - n)) }

func sm3t(j int) uint32 {
	if j < 16 {
		return 0x79cc4519
	}
	return 0x7a879d8a
}

// sm3Compress processes one 64-byte block, updating the 8-word state in
// place.
func sm3Compress(state *[8]uint32, block []byte) {
	var w [68]uint32
	var w1 [64]uint32
	for i := 0; i < 16; i++ {
		w[i] = binary.BigEndian.Uint32(block[i*4:])
	}
	for j := 16; j < 68; j++ {
		x := w[j-16] ^ w[j-9] ^ rotl32(w[j-3], 15)
		x = x ^ rotl32(x, 15) ^ rotl32(x, 23)
		w[j] = x ^ rotl32(w[j-13], 7) ^ w[j-6]
	}
	for j := 0; j < 64; j++ {
		w1[j] = w[j] ^ w[j+4]
	}

	a, b, c, d := state[0], state[1], state[2], state[3]
	e, f, g, h := state[4], state[5], state[6], state[7]

	for j := 0; j < 64; j++ {
		ss1 := rotl32(rotl32(a, 12)+e+rotl32(sm3t(j), uint(j%32)), 7)
		ss2 := ss1 ^ rotl32(a, 12)
		tt1 := sm3ff(j, a, b, c) + d + ss2 + w1[j]
		tt2 := sm3gg(j, e, f, g) + h + ss1 + w[j]
		d = c
		c = rotl32(b, 9)
		b = a
		a = tt1
		h = g
		g = rotl32(f, 19)
		f = e
		e = tt2 ^ rotl32(tt2, 9) ^ rotl32(tt2, 17)
	}

	state[0] ^= a
	state[1] ^= b
	state[2] ^= c
	state[3] ^= d
	state[4] ^= e
	state[5] ^= f
	state[6] ^= g
	state[7] ^= h
}

func sm3Pad(msgLen int) []byte {
	bitLen := uint64(msgLen) * 8
	padLen := sm3BlockSize - (msgLen+9)%sm3BlockSize
	if padLen == sm3BlockSize {
		padLen = 0
	}
	buf := make([]byte, 1+padLen+8)
	buf[0] = 0x80
	binary.BigEndian.PutUint64(buf[1+padLen:], bitLen)
	return buf
}

type sm3State struct {
	state   [8]uint32
	buf     []byte
	written int
}

func (s *sm3State) Update(data []byte) {
	s.buf = append(s.buf, data...)
	s.written += len(data)
	for len(s.buf) >= sm3BlockSize {
		sm3Compress(&s.state, s.buf[:sm3BlockSize])
		s.buf = s.buf[sm3BlockSize:]
	}
}

func (s *sm3State) Final() []byte {
	pad := sm3Pad(s.written)
	tail := append(append([]byte{}, s.buf...), pad...)
	state := s.state
	for len(tail) >= sm3BlockSize {
		sm3Compress(&state, tail[:sm3BlockSize])
		tail = tail[sm3BlockSize:]
	}
	out := make([]byte, 32)
	for i, w := range state {
		binary.BigEndian.PutUint32(out[i*4:], w)
	}
	return out
}

type sm3Algo struct{}

func newSM3() Algorithm { return sm3Algo{} }

func (sm3Algo) Type() Type { return SM3 }
func (sm3Algo) Len() int   { return 32 }

func (sm3Algo) Hash(data []byte) []byte {
	st := &sm3State{state: sm3IV}
	st.Update(data)
	return st.Final()
}

func (sm3Algo) Init() State {
	return &sm3State{state: sm3IV}
}
