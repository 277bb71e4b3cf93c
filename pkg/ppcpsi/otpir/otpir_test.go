package otpir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wedpr-ppc/ppc-core/pkg/ppccrypto/group"
	"github.com/wedpr-ppc/ppc-core/pkg/ppccrypto/hash"
	"github.com/wedpr-ppc/ppc-core/pkg/ppccrypto/symcipher"
	"github.com/wedpr-ppc/ppc-core/pkg/ppcwire"
)

type loopbackSender struct {
	peer *StateMachine
}

func (l *loopbackSender) Send(peerID string, f ppcwire.Frame) error {
	l.peer.HandleMessage(f)
	return nil
}

func TestScanCandidatesSplitsOnFirstComma(t *testing.T) {
	data := "id1,alice,30\nid2,bob,41\n\nid3,carol,22\n"
	out, err := ScanCandidates(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, out, 3)
	require.Equal(t, "id1", string(out[0].ID))
	require.Equal(t, "id1,alice,30", string(out[0].Record))
}

func TestFoundLookup(t *testing.T) {
	eng, err := group.New(group.Secp256k1)
	require.NoError(t, err)
	h := hash.MustNew(hash.SHA256)
	cipher, err := symcipher.New(symcipher.AES128)
	require.NoError(t, err)

	data := "alice,30\nbob,41\ncarol,22\n"
	candidates, err := ScanCandidates(strings.NewReader(data))
	require.NoError(t, err)

	var clientRecord []byte
	var clientFound bool

	clientSender := &loopbackSender{}
	serverSender := &loopbackSender{}

	client, err := NewClient("t1", "server", eng, h, cipher, clientSender,
		func(string, error) {}, func(rec []byte, found bool) { clientRecord, clientFound = rec, found },
		[]byte("bob"), 4)
	require.NoError(t, err)
	server := NewServer("t1", "client", eng, h, cipher, serverSender, func(string, error) {}, candidates)

	clientSender.peer = server
	serverSender.peer = client

	require.NoError(t, client.Start())

	require.True(t, client.Finished())
	require.True(t, server.Finished())
	require.True(t, clientFound)
	require.Equal(t, "bob,41", string(clientRecord))
}

func TestNotFoundLookup(t *testing.T) {
	eng, err := group.New(group.Secp256k1)
	require.NoError(t, err)
	h := hash.MustNew(hash.SHA256)
	cipher, err := symcipher.New(symcipher.AES128)
	require.NoError(t, err)

	data := "alice,30\nbob,41\n"
	candidates, err := ScanCandidates(strings.NewReader(data))
	require.NoError(t, err)

	var clientFound bool

	clientSender := &loopbackSender{}
	serverSender := &loopbackSender{}

	client, err := NewClient("t1", "server", eng, h, cipher, clientSender,
		func(string, error) {}, func(rec []byte, found bool) { clientFound = found },
		[]byte("zed"), 4)
	require.NoError(t, err)
	server := NewServer("t1", "client", eng, h, cipher, serverSender, func(string, error) {}, candidates)

	clientSender.peer = server
	serverSender.peer = client

	require.NoError(t, client.Start())

	require.True(t, client.Finished())
	require.False(t, clientFound)
}
