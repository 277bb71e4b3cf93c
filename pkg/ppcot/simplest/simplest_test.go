package simplest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wedpr-ppc/ppc-core/pkg/ppccrypto/group"
	"github.com/wedpr-ppc/ppc-core/pkg/ppccrypto/hash"
)

func TestReceiverKeysMatchChosenSenderKeys(t *testing.T) {
	eng, err := group.New(group.Secp256k1)
	require.NoError(t, err)
	h := hash.MustNew(hash.SHA256)

	choices := []bool{false, true, false, true, true}

	sender, err := NewSender(eng, h)
	require.NoError(t, err)

	receiver := NewReceiver(eng, h, sender.SenderGeneratePointA(), choices)
	bs, err := receiver.ReceiverGeneratePointsB()
	require.NoError(t, err)

	k0, k1, err := sender.FinishSender(bs)
	require.NoError(t, err)

	receiverKeys, err := receiver.FinishReceiver()
	require.NoError(t, err)

	for i, c := range choices {
		if c {
			require.Equal(t, k1[i], receiverKeys[i], "index %d", i)
		} else {
			require.Equal(t, k0[i], receiverKeys[i], "index %d", i)
		}
	}
}
