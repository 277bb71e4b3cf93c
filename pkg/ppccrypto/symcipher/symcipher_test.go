package symcipher

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		typ     Type
		keyLen  int
	}{
		{AES128, 16},
		{AES192, 24},
		{AES256, 32},
		{SM4, 16},
	}

	for _, tc := range cases {
		c, err := New(tc.typ)
		require.NoError(t, err)

		key := make([]byte, tc.keyLen)
		for i := range key {
			key[i] = byte(i)
		}
		iv := make([]byte, c.BlockSize())
		plaintext := make([]byte, c.BlockSize()*3)
		for i := range plaintext {
			plaintext[i] = byte(i * 7)
		}

		ct, err := c.Encrypt(key, iv, plaintext)
		require.NoError(t, err)
		require.NotEqual(t, plaintext, ct)

		pt, err := c.Decrypt(key, iv, ct)
		require.NoError(t, err)
		require.Equal(t, plaintext, pt)
	}
}

func TestSM4KnownAnswer(t *testing.T) {
	// GB/T 32907-2016 Appendix A.1 single-block test vector.
	key := []byte{
		0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xef,
		0xfe, 0xdc, 0xba, 0x98, 0x76, 0x54, 0x32, 0x10,
	}
	plaintext := append([]byte{}, key...)
	want := []byte{
		0x68, 0x1e, 0xdf, 0x34, 0xd2, 0x06, 0x96, 0x5e,
		0x86, 0xb3, 0xe9, 0x4f, 0x53, 0x6e, 0x42, 0x46,
	}

	c, err := New(SM4)
	require.NoError(t, err)
	iv := make([]byte, 16)
	ct, err := c.Encrypt(key, iv, plaintext)
	require.NoError(t, err)
	require.Equal(t, want, ct)
}

func TestWrongKeySizeRejected(t *testing.T) {
	c, err := New(AES128)
	require.NoError(t, err)
	_, err = c.Encrypt(make([]byte, 10), make([]byte, 16), make([]byte, 16))
	require.Error(t, err)
}
