// Package ppcwire implements component C13: the tagged envelope framing
// shared by every protocol state machine. Size-prefixed integers are
// network-byte-order (big-endian) for 16- and 32-bit widths; the 64-bit
// payload length is encoded little-endian, per §4.13.
package ppcwire

import (
	"encoding/binary"
	"io"

	"github.com/google/uuid"

	"github.com/wedpr-ppc/ppc-core/pkg/ppcerr"
)

// AlgorithmID identifies the protocol family a Frame belongs to.
type AlgorithmID uint16

const (
	AlgorithmEcdhPSI AlgorithmID = iota + 1
	AlgorithmCM2020PSI
	AlgorithmOTPIR
)

// MessageType identifies the protocol round within an AlgorithmID.
type MessageType uint16

// Frame is the wire envelope: taskID, algorithmID, messageType, sequence,
// payload, and an optional correlation id.
type Frame struct {
	TaskID        string
	AlgorithmID   AlgorithmID
	MessageType   MessageType
	Seq           uint32
	CorrelationID uuid.UUID
	HasCorrelation bool
	Payload       []byte
}

// NewFrame builds a Frame without a correlation id.
func NewFrame(taskID string, algo AlgorithmID, msgType MessageType, seq uint32, payload []byte) Frame {
	return Frame{TaskID: taskID, AlgorithmID: algo, MessageType: msgType, Seq: seq, Payload: payload}
}

// WithCorrelation attaches a fresh request/response correlation id.
func (f Frame) WithCorrelation() Frame {
	f.CorrelationID = uuid.New()
	f.HasCorrelation = true
	return f
}

// Encode writes the length-delimited wire record to w.
func (f Frame) Encode(w io.Writer) error {
	taskIDBytes := []byte(f.TaskID)
	if len(taskIDBytes) > 0xffff {
		return ppcerr.New(ppcerr.KindDataFormatError, "taskID exceeds 65535 bytes")
	}

	var header [2 + 2 + 2 + 4 + 1]byte
	binary.BigEndian.PutUint16(header[0:2], uint16(len(taskIDBytes)))
	binary.BigEndian.PutUint16(header[2:4], uint16(f.AlgorithmID))
	binary.BigEndian.PutUint16(header[4:6], uint16(f.MessageType))
	binary.BigEndian.PutUint32(header[6:10], f.Seq)
	if f.HasCorrelation {
		header[10] = 1
	}

	if _, err := w.Write(header[:]); err != nil {
		return ppcerr.Wrap(ppcerr.KindSendFailure, err)
	}
	if _, err := w.Write(taskIDBytes); err != nil {
		return ppcerr.Wrap(ppcerr.KindSendFailure, err)
	}
	if f.HasCorrelation {
		corr, _ := f.CorrelationID.MarshalBinary()
		if _, err := w.Write(corr); err != nil {
			return ppcerr.Wrap(ppcerr.KindSendFailure, err)
		}
	}

	var payloadLen [8]byte
	binary.LittleEndian.PutUint64(payloadLen[:], uint64(len(f.Payload)))
	if _, err := w.Write(payloadLen[:]); err != nil {
		return ppcerr.Wrap(ppcerr.KindSendFailure, err)
	}
	if _, err := w.Write(f.Payload); err != nil {
		return ppcerr.Wrap(ppcerr.KindSendFailure, err)
	}
	return nil
}

// Decode reads one length-delimited wire record from r.
func Decode(r io.Reader) (Frame, error) {
	var header [2 + 2 + 2 + 4 + 1]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return Frame{}, ppcerr.Wrap(ppcerr.KindDataFormatError, err)
	}

	taskIDLen := binary.BigEndian.Uint16(header[0:2])
	algo := AlgorithmID(binary.BigEndian.Uint16(header[2:4]))
	msgType := MessageType(binary.BigEndian.Uint16(header[4:6]))
	seq := binary.BigEndian.Uint32(header[6:10])
	hasCorrelation := header[10] == 1

	taskID := make([]byte, taskIDLen)
	if _, err := io.ReadFull(r, taskID); err != nil {
		return Frame{}, ppcerr.Wrap(ppcerr.KindDataFormatError, err)
	}

	f := Frame{TaskID: string(taskID), AlgorithmID: algo, MessageType: msgType, Seq: seq}

	if hasCorrelation {
		var corr [16]byte
		if _, err := io.ReadFull(r, corr[:]); err != nil {
			return Frame{}, ppcerr.Wrap(ppcerr.KindDataFormatError, err)
		}
		id, err := uuid.FromBytes(corr[:])
		if err != nil {
			return Frame{}, ppcerr.Wrap(ppcerr.KindDataFormatError, err)
		}
		f.CorrelationID = id
		f.HasCorrelation = true
	}

	var payloadLen [8]byte
	if _, err := io.ReadFull(r, payloadLen[:]); err != nil {
		return Frame{}, ppcerr.Wrap(ppcerr.KindDataFormatError, err)
	}
	n := binary.LittleEndian.Uint64(payloadLen[:])
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Frame{}, ppcerr.Wrap(ppcerr.KindDataFormatError, err)
	}
	f.Payload = payload

	return f, nil
}
