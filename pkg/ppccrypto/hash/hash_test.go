package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeterminism(t *testing.T) {
	for _, typ := range []Type{SHA256, SHA512, SM3, MD5, BLAKE2b} {
		algo, err := New(typ)
		require.NoError(t, err)

		msg := []byte("the quick brown fox jumps over the lazy dog")
		a := algo.Hash(msg)
		b := algo.Hash(msg)
		require.Equal(t, a, b, "%s must be deterministic", typ)
		require.Len(t, a, algo.Len())
	}
}

func TestIncrementalMatchesOneShot(t *testing.T) {
	for _, typ := range []Type{SHA256, SM3, BLAKE2b} {
		algo, err := New(typ)
		require.NoError(t, err)

		msg := []byte("incremental update across several chunks of data")
		st := algo.Init()
		st.Update(msg[:10])
		st.Update(msg[10:])

		require.Equal(t, algo.Hash(msg), st.Final(), "%s incremental must match one-shot", typ)
	}
}

func TestSM3EmptyInput(t *testing.T) {
	algo := MustNew(SM3)
	// GB/T 32905 test vector for the empty message.
	want := "1ab21d8355cfa17f8e61194831e81a8f22bec8c728fefb747ed035eb5082aa2b"
	got := algo.Hash(nil)
	require.Equal(t, want, hexString(got))
}

func TestSM3Abc(t *testing.T) {
	algo := MustNew(SM3)
	want := "66c7f0f462eeedd9d1f2d46bdc10e4e24167c4875cf2f7a2297da02b8f4ba8e0"
	got := algo.Hash([]byte("abc"))
	require.Equal(t, want, hexString(got))
}

func TestUnsupportedType(t *testing.T) {
	_, err := New(Type(99))
	require.Error(t, err)
}

func TestBLAKE2bVariableLength(t *testing.T) {
	algo, err := NewBLAKE2b(32, nil)
	require.NoError(t, err)
	require.Len(t, algo.Hash([]byte("x")), 32)

	_, err = NewBLAKE2b(8, nil)
	require.Error(t, err)
}

func TestBLAKE2bKeyed(t *testing.T) {
	key := []byte("a secret key of arbitrary length")
	a, err := NewBLAKE2b(32, key)
	require.NoError(t, err)
	b, err := NewBLAKE2b(32, nil)
	require.NoError(t, err)

	require.NotEqual(t, a.Hash([]byte("msg")), b.Hash([]byte("msg")))
}

func TestHash32Determinism(t *testing.T) {
	a := Hash32([]byte("cuckoo filter tag"), 42)
	b := Hash32([]byte("cuckoo filter tag"), 42)
	require.Equal(t, a, b)

	c := Hash32([]byte("cuckoo filter tag"), 43)
	require.NotEqual(t, a, c)
}

func TestHash64VariesWithSeed(t *testing.T) {
	a := Hash64([]byte("bucket index key"), 1)
	b := Hash64([]byte("bucket index key"), 2)
	require.NotEqual(t, a, b)
}

func TestHash64Uint64Deterministic(t *testing.T) {
	a := Hash64Uint64(1234, 7)
	b := Hash64Uint64(1234, 7)
	require.Equal(t, a, b)
}

func hexString(b []byte) string {
	const digits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = digits[c>>4]
		out[i*2+1] = digits[c&0xf]
	}
	return string(out)
}
