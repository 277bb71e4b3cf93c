package baseot

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wedpr-ppc/ppc-core/pkg/ppccrypto/group"
	"github.com/wedpr-ppc/ppc-core/pkg/ppccrypto/hash"
	"github.com/wedpr-ppc/ppc-core/pkg/ppccrypto/symcipher"
)

func TestSenderFindsMatchingRecord(t *testing.T) {
	eng, err := group.New(group.Secp256k1)
	require.NoError(t, err)
	h := hash.MustNew(hash.SHA256)
	c, err := symcipher.New(symcipher.AES128)
	require.NoError(t, err)

	target := []byte("search-target-id")

	sender, err := NewSender(eng, h, c, target)
	require.NoError(t, err)
	msg, err := sender.SenderGenerateMessage(4)
	require.NoError(t, err)

	all := []Candidate{
		{ID: []byte("other-id-one"), Record: []byte("record one payload")},
		{ID: target, Record: []byte("the matching record")},
		{ID: []byte("other-id-two"), Record: []byte("record two payload")},
	}

	receiver := NewReceiver(eng, h, c)
	candidates := receiver.PrepareDataset(all, msg)
	require.NotEmpty(t, candidates)

	resp, err := receiver.ReceiverRespond(candidates, msg)
	require.NoError(t, err)

	record, err := sender.FinishSender(resp)
	require.NoError(t, err)
	require.Contains(t, string(record), "the matching record")
}

func TestSenderNotFoundWhenNoCandidateMatches(t *testing.T) {
	eng, err := group.New(group.Secp256k1)
	require.NoError(t, err)
	h := hash.MustNew(hash.SHA256)
	c, err := symcipher.New(symcipher.AES128)
	require.NoError(t, err)

	sender, err := NewSender(eng, h, c, []byte("absent-id"))
	require.NoError(t, err)
	msg, err := sender.SenderGenerateMessage(4)
	require.NoError(t, err)

	receiver := NewReceiver(eng, h, c)
	all := []Candidate{{ID: []byte("unrelated"), Record: []byte("unrelated data")}}
	candidates := receiver.PrepareDataset(all, msg)

	resp, err := receiver.ReceiverRespond(candidates, msg)
	require.NoError(t, err)

	_, err = sender.FinishSender(resp)
	require.Error(t, err)
}
