package otpir

import (
	"encoding/binary"

	"github.com/wedpr-ppc/ppc-core/pkg/ppccrypto/group"
	"github.com/wedpr-ppc/ppc-core/pkg/ppcerr"
	"github.com/wedpr-ppc/ppc-core/pkg/ppcot/baseot"
)

// encodeSenderMessage lays out {X, Y, Z, Prefix} as four blobs, each with
// appendBlob's 4-byte length prefix.
func encodeSenderMessage(msg *baseot.SenderMessage) []byte {
	var out []byte
	out = appendBlob(out, msg.X.Bytes())
	out = appendBlob(out, msg.Y.Bytes())
	out = appendBlob(out, msg.Z.Bytes())
	out = appendBlob(out, msg.Prefix)
	return out
}

func decodeSenderMessage(eng group.Engine, data []byte) (*baseot.SenderMessage, error) {
	xb, data, err := readBlob(data)
	if err != nil {
		return nil, err
	}
	yb, data, err := readBlob(data)
	if err != nil {
		return nil, err
	}
	zb, data, err := readBlob(data)
	if err != nil {
		return nil, err
	}
	prefix, _, err := readBlob(data)
	if err != nil {
		return nil, err
	}
	x, err := eng.PointFromBytes(xb)
	if err != nil {
		return nil, err
	}
	y, err := eng.PointFromBytes(yb)
	if err != nil {
		return nil, err
	}
	z, err := eng.PointFromBytes(zb)
	if err != nil {
		return nil, err
	}
	return &baseot.SenderMessage{X: x, Y: y, Z: z, Prefix: prefix}, nil
}

// encodeReceiverMessage lays out a count-prefixed list of envelopes, each
// {W, WrappedKey, EncryptedRec} as three length-prefixed blobs.
func encodeReceiverMessage(resp *baseot.ReceiverMessage) ([]byte, error) {
	var out []byte
	var count [4]byte
	binary.BigEndian.PutUint32(count[:], uint32(len(resp.Envelopes)))
	out = append(out, count[:]...)
	for _, env := range resp.Envelopes {
		out = appendBlob(out, env.W.Bytes())
		out = appendBlob(out, env.WrappedKey)
		out = appendBlob(out, env.EncryptedRec)
	}
	return out, nil
}

func decodeReceiverMessage(eng group.Engine, data []byte) (*baseot.ReceiverMessage, error) {
	if len(data) < 4 {
		return nil, ppcerr.New(ppcerr.KindDataFormatError, "truncated envelope count")
	}
	count := binary.BigEndian.Uint32(data[:4])
	data = data[4:]

	envelopes := make([]baseot.CandidateEnvelope, 0, count)
	for i := uint32(0); i < count; i++ {
		var wb, wrapped, enc []byte
		var err error
		wb, data, err = readBlob(data)
		if err != nil {
			return nil, err
		}
		wrapped, data, err = readBlob(data)
		if err != nil {
			return nil, err
		}
		enc, data, err = readBlob(data)
		if err != nil {
			return nil, err
		}
		w, err := eng.PointFromBytes(wb)
		if err != nil {
			return nil, err
		}
		envelopes = append(envelopes, baseot.CandidateEnvelope{W: w, WrappedKey: wrapped, EncryptedRec: enc})
	}
	return &baseot.ReceiverMessage{Envelopes: envelopes}, nil
}

// appendBlob/readBlob are a uint32-big-endian-length-prefixed byte-slice
// codec, used for envelope fields that may exceed 255 bytes (unlike the
// single-byte point-length encoding elsewhere, ciphertext blobs here are
// unbounded).
func appendBlob(dst []byte, b []byte) []byte {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(b)))
	dst = append(dst, lenBuf[:]...)
	return append(dst, b...)
}

func readBlob(data []byte) (blob, rest []byte, err error) {
	if len(data) < 4 {
		return nil, nil, ppcerr.New(ppcerr.KindDataFormatError, "truncated blob length")
	}
	n := binary.BigEndian.Uint32(data[:4])
	data = data[4:]
	if uint32(len(data)) < n {
		return nil, nil, ppcerr.New(ppcerr.KindDataFormatError, "truncated blob")
	}
	return data[:n], data[n:], nil
}
