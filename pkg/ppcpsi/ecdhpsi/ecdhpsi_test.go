package ecdhpsi

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wedpr-ppc/ppc-core/pkg/ppccrypto/group"
	"github.com/wedpr-ppc/ppc-core/pkg/ppccrypto/hash"
	"github.com/wedpr-ppc/ppc-core/pkg/ppcwire"
)

// loopbackSender wires a client and server StateMachine directly together,
// delivering every Send call as a synchronous HandleMessage call on the
// peer, standing in for the dispatcher + transport in this package test.
type loopbackSender struct {
	peer *StateMachine
}

func (l *loopbackSender) Send(peerID string, f ppcwire.Frame) error {
	l.peer.HandleMessage(f)
	return nil
}

func TestIntersectionMatchesCommonElements(t *testing.T) {
	eng, err := group.New(group.Secp256k1)
	require.NoError(t, err)
	h := hash.MustNew(hash.SHA256)

	clientSet := [][]byte{[]byte("alice"), []byte("bob"), []byte("carol")}
	serverSet := [][]byte{[]byte("bob"), []byte("dave"), []byte("carol")}

	var clientResult, serverResult [][]byte

	clientSender := &loopbackSender{}
	serverSender := &loopbackSender{}

	client, err := New("t1", RoleClient, "server", eng, h, clientSender,
		func(string, error) {}, func(r [][]byte) { clientResult = r }, clientSet)
	require.NoError(t, err)
	server, err := New("t1", RoleServer, "client", eng, h, serverSender,
		func(string, error) {}, func(r [][]byte) { serverResult = r }, serverSet)
	require.NoError(t, err)

	clientSender.peer = server
	serverSender.peer = client

	require.NoError(t, client.Start())

	require.True(t, client.Finished())
	require.NotNil(t, clientResult)
	_ = serverResult

	require.ElementsMatch(t, []string{"bob", "carol"}, toStrings(clientResult))
}

func toStrings(b [][]byte) []string {
	out := make([]string, len(b))
	for i, v := range b {
		out[i] = string(v)
	}
	return out
}
