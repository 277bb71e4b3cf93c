package cm2020

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wedpr-ppc/ppc-core/pkg/ppccrypto/group"
	"github.com/wedpr-ppc/ppc-core/pkg/ppccrypto/hash"
)

func TestBucketSizeBytesRespectsMinimum(t *testing.T) {
	require.Equal(t, MinBucketSize/8, BucketSizeBytes(1))
	require.Greater(t, BucketSizeBytes(100000), MinBucketSize/8)
}

func TestColumnPositionWithinBounds(t *testing.T) {
	seed := [16]byte{1, 2, 3}
	loc := LocationSeeds([]byte("item"), seed)
	bucketSizeBytes := 64
	for j := 0; j < 32; j++ {
		pos := ColumnPosition(loc, j, bucketSizeBytes)
		require.GreaterOrEqual(t, pos, 0)
		require.Less(t, pos, bucketSizeBytes*8)
	}
}

func TestLocationSeedsDeterministic(t *testing.T) {
	seed := [16]byte{9, 9, 9}
	a := LocationSeeds([]byte("x"), seed)
	b := LocationSeeds([]byte("x"), seed)
	require.Equal(t, a, b)

	c := LocationSeeds([]byte("y"), seed)
	require.NotEqual(t, a, c)
}

func TestHandleWidthBoundedByInputSize(t *testing.T) {
	require.LessOrEqual(t, HandleWidth(4, 64), 4)
	require.GreaterOrEqual(t, HandleWidth(4, 64), MinHandleWidth)
	require.Equal(t, MinHandleWidth, HandleWidth(1, 1<<30))
}

func TestRunLoopbackFindsExactIntersection(t *testing.T) {
	eng, err := group.New(group.Secp256k1)
	require.NoError(t, err)
	h := hash.MustNew(hash.SHA256)

	senderItems := [][]byte{[]byte("alice"), []byte("bob"), []byte("carol")}
	receiverItems := [][]byte{[]byte("bob"), []byte("dave"), []byte("carol"), []byte("erin")}

	hs := Handshake{N: 128, Seed: [16]byte{7, 7, 7, 7}}

	intersection, err := RunLoopback(eng, h, hs, senderItems, receiverItems)
	require.NoError(t, err)

	got := make(map[string]bool, len(intersection))
	for _, v := range intersection {
		got[string(v)] = true
	}
	require.True(t, got["bob"])
	require.True(t, got["carol"])
	require.False(t, got["alice"])
	require.Len(t, intersection, 2)
}

func TestRunLoopbackEmptyIntersection(t *testing.T) {
	eng, err := group.New(group.Secp256k1)
	require.NoError(t, err)
	h := hash.MustNew(hash.SHA256)

	senderItems := [][]byte{[]byte("one"), []byte("two")}
	receiverItems := [][]byte{[]byte("three"), []byte("four")}

	hs := Handshake{N: 128, Seed: [16]byte{3, 1, 4, 1, 5}}

	intersection, err := RunLoopback(eng, h, hs, senderItems, receiverItems)
	require.NoError(t, err)
	require.Empty(t, intersection)
}
