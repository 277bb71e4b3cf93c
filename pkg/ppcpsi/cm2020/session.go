package cm2020

import (
	"github.com/wedpr-ppc/ppc-core/pkg/ppccrypto/group"
	"github.com/wedpr-ppc/ppc-core/pkg/ppccrypto/hash"
	"github.com/wedpr-ppc/ppc-core/pkg/ppcot/simplest"
)

// RunLoopback executes a full CM2020-PSI exchange between a sender and a
// receiver held in the same process, exercising the random-OT,
// matrix-construction, and PSI-finish steps end to end. It exists to give
// the protocol a single, directly testable correctness property; the
// dispatcher-facing per-round state machine (handshake/message framing)
// is the production entry point and reuses these same functions.
func RunLoopback(eng group.Engine, h hash.Algorithm, hs Handshake, senderItems, receiverItems [][]byte) (intersection [][]byte, err error) {
	bucketSizeBytes := BucketSizeBytes(maxLen(len(senderItems), len(receiverItems)))

	choiceBits := make([]bool, hs.N)
	for j := range choiceBits {
		choiceBits[j] = pseudoRandomBit(hs.Seed, j)
	}

	otSender, err := simplest.NewSender(eng, h)
	if err != nil {
		return nil, err
	}
	otReceiver := simplest.NewReceiver(eng, h, otSender.SenderGeneratePointA(), choiceBits)

	bs, err := otReceiver.ReceiverGeneratePointsB()
	if err != nil {
		return nil, err
	}
	// otSender is the base-OT sender and ends up holding both keys per
	// column: it plays the PSI receiver role. otReceiver holds its choice
	// bits c and recovers exactly one key per column via FinishReceiver,
	// matching whichever of k0/k1 its bit selected: it plays the PSI
	// sender role.
	k0, k1, err := otSender.FinishSender(bs)
	if err != nil {
		return nil, err
	}
	senderKeyPerColumn, err := otReceiver.FinishReceiver()
	if err != nil {
		return nil, err
	}

	rCols, err := BuildReceiverColumns(k0, k1, receiverItems, hs.Seed, bucketSizeBytes)
	if err != nil {
		return nil, err
	}
	sCols, err := BuildSenderColumns(senderKeyPerColumn, choiceBits, rCols.M, bucketSizeBytes)
	if err != nil {
		return nil, err
	}

	receiverHashes := make(map[string][]byte, len(receiverItems))
	for _, v := range receiverItems {
		bits := OprfOutputBits(v, hs.Seed, rCols.A, bucketSizeBytes)
		receiverHashes[string(HashOutput(h, bits))] = v
	}

	for _, v := range senderItems {
		bits := OprfOutputBits(v, hs.Seed, sCols, bucketSizeBytes)
		tag := string(HashOutput(h, bits))
		if _, ok := receiverHashes[tag]; ok {
			intersection = append(intersection, v)
		}
	}
	return intersection, nil
}

func maxLen(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func pseudoRandomBit(seed [16]byte, index int) bool {
	return (uint32(seed[index%16]) + uint32(index)) % 2 == 1
}
