package ppccuckoo

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInsertLookupDelete(t *testing.T) {
	f := New(1000)
	items := make([][]byte, 500)
	for i := range items {
		items[i] = []byte(fmt.Sprintf("item-%d", i))
		require.True(t, f.Insert(items[i]))
	}
	for _, item := range items {
		require.True(t, f.Lookup(item))
	}

	require.NoError(t, f.Delete(items[0]))
	require.False(t, f.Lookup(items[0]))

	err := f.Delete(items[0])
	require.Error(t, err)
}

func TestLoadFactorIncreasesWithInserts(t *testing.T) {
	f := New(100)
	before := f.LoadFactor()
	for i := 0; i < 50; i++ {
		f.Insert([]byte(fmt.Sprintf("x-%d", i)))
	}
	require.Greater(t, f.LoadFactor(), before)
}
