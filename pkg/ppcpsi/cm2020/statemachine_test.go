package cm2020

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wedpr-ppc/ppc-core/pkg/ppccrypto/group"
	"github.com/wedpr-ppc/ppc-core/pkg/ppccrypto/hash"
	"github.com/wedpr-ppc/ppc-core/pkg/ppcwire"
)

type loopbackSender struct {
	peer *StateMachine
}

func (l *loopbackSender) Send(peerID string, f ppcwire.Frame) error {
	l.peer.HandleMessage(f)
	return nil
}

func TestStateMachineIntersectionMatchesCommonElements(t *testing.T) {
	eng, err := group.New(group.Secp256k1)
	require.NoError(t, err)
	h := hash.MustNew(hash.SHA256)

	clientItems := [][]byte{[]byte("alice"), []byte("bob"), []byte("carol")}
	serverItems := [][]byte{[]byte("bob"), []byte("dave"), []byte("carol")}

	hs := Handshake{N: 128, Seed: [16]byte{1, 2, 3, 4}, SyncResultsBack: true}

	var clientResult, serverResult [][]byte

	clientSender := &loopbackSender{}
	serverSender := &loopbackSender{}

	client, err := NewClient("t1", "server", eng, h, clientSender,
		func(string, error) {}, func(r [][]byte) { clientResult = r }, clientItems, hs)
	require.NoError(t, err)
	server := NewServer("t1", "client", eng, h, serverSender,
		func(string, error) {}, func(r [][]byte) { serverResult = r }, serverItems)

	clientSender.peer = server
	serverSender.peer = client

	require.NoError(t, client.Start())

	require.True(t, client.Finished())
	require.True(t, server.Finished())

	require.ElementsMatch(t, []string{"bob", "carol"}, toStrings(clientResult))
	require.ElementsMatch(t, []string{"bob", "carol"}, toStrings(serverResult))
}

func toStrings(b [][]byte) []string {
	out := make([]string, len(b))
	for i, v := range b {
		out[i] = string(v)
	}
	return out
}
