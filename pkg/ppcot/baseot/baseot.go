// Package baseot implements component C8: the 1-of-n base OT used by
// OT-PIR, a direct generalization of
// original_source/cpp/wedpr-computing/ppc-pir/src/BaseOT.h. SenderMessage
// and ReceiverMessage mirror the original struct fields; the method names
// below are the Go spellings of senderGenerateCipher/
// receiverGenerateMessage/finishSender/prepareDataset.
package baseot

import (
	"encoding/binary"

	"github.com/wedpr-ppc/ppc-core/pkg/ppccrypto/group"
	"github.com/wedpr-ppc/ppc-core/pkg/ppccrypto/hash"
	"github.com/wedpr-ppc/ppc-core/pkg/ppccrypto/symcipher"
	"github.com/wedpr-ppc/ppc-core/pkg/ppcerr"
)

// SenderMessage is the querier's HELLO_RECEIVER payload.
type SenderMessage struct {
	X      group.Point
	Y      group.Point
	Z      group.Point
	Prefix []byte
}

// Candidate is one (id, record) pair already screened by the receiver's
// prefix match.
type Candidate struct {
	ID     []byte
	Record []byte
}

// CandidateEnvelope is one entry of the receiver's RESULTS payload.
type CandidateEnvelope struct {
	W            group.Point
	WrappedKey   []byte // E(K_j) under key_j, by XOR
	EncryptedRec []byte // E(record_j) under K_j
}

// ReceiverMessage is the full RESULTS payload: one envelope per candidate.
type ReceiverMessage struct {
	Envelopes []CandidateEnvelope
}

// Sender is the querier: holds search item s and obfuscation order o.
type Sender struct {
	eng   group.Engine
	h     hash.Algorithm
	cipher symcipher.Cipher
	a, b  group.Scalar
	s     []byte
}

// NewSender picks fresh scalars a, b for search item s.
func NewSender(eng group.Engine, h hash.Algorithm, cipher symcipher.Cipher, s []byte) (*Sender, error) {
	a, err := eng.GenerateRandomScalar()
	if err != nil {
		return nil, err
	}
	b, err := eng.GenerateRandomScalar()
	if err != nil {
		return nil, err
	}
	return &Sender{eng: eng, h: h, cipher: cipher, a: a, b: b, s: s}, nil
}

// SenderGenerateMessage computes X = aG, Y = bG, Z = (ab - hash64(s))G, and
// packs the prefix P = H(s)[0:o].
func (sn *Sender) SenderGenerateMessage(prefixLen int) (*SenderMessage, error) {
	X, err := sn.eng.MulGenerator(sn.a)
	if err != nil {
		return nil, err
	}
	Y, err := sn.eng.MulGenerator(sn.b)
	if err != nil {
		return nil, err
	}

	ab, err := sn.eng.ScalarMulScalar(sn.a, sn.b)
	if err != nil {
		return nil, err
	}
	hs, err := sn.eng.HashToScalar(hash64Bytes(sn.s))
	if err != nil {
		return nil, err
	}
	exponent, err := sn.eng.ScalarSub(ab, hs)
	if err != nil {
		return nil, err
	}
	Z, err := sn.eng.MulGenerator(exponent)
	if err != nil {
		return nil, err
	}

	digest := sn.h.Hash(sn.s)
	if prefixLen > len(digest) {
		prefixLen = len(digest)
	}
	return &SenderMessage{X: X, Y: Y, Z: Z, Prefix: digest[:prefixLen]}, nil
}

// FinishSender recovers key_j = b*W_j for each candidate envelope,
// decrypts the wrapped key under key_j, and then attempts to decrypt the
// record under that key. It returns the first record that decrypts
// successfully, or an error if no candidate matched.
func (sn *Sender) FinishSender(resp *ReceiverMessage) ([]byte, error) {
	for _, env := range resp.Envelopes {
		keyPoint, err := sn.eng.ScalarMul(sn.b, env.W)
		if err != nil {
			continue
		}
		keyMaterial := sn.h.Hash(keyPoint.Bytes())[:recordKeyLen(sn.cipher)]

		recordKey := xorBytes(env.WrappedKey, keyMaterial)
		iv := make([]byte, sn.cipher.BlockSize())
		padded, err := sn.cipher.Decrypt(recordKey, iv, env.EncryptedRec)
		if err != nil {
			continue
		}
		record, err := unpadRecord(padded, sn.cipher.BlockSize())
		if err != nil {
			continue
		}
		return record, nil
	}
	return nil, ppcerr.New(ppcerr.KindDataFormatError, "no candidate matched; item not found")
}

// Receiver is the data holder: given the prefix-matched candidate set,
// runs the receiver half of the protocol.
type Receiver struct {
	eng    group.Engine
	h      hash.Algorithm
	cipher symcipher.Cipher
}

// NewReceiver binds the receiver to a curve engine, hash, and cipher.
func NewReceiver(eng group.Engine, h hash.Algorithm, cipher symcipher.Cipher) *Receiver {
	return &Receiver{eng: eng, h: h, cipher: cipher}
}

// PrepareDataset filters a full record set down to those whose hashed id
// H(id) begins with msg.Prefix, matching the sender's prefix-checked memcmp.
func (r *Receiver) PrepareDataset(all []Candidate, msg *SenderMessage) []Candidate {
	out := make([]Candidate, 0)
	for _, c := range all {
		digest := hashID(r.h, c.ID)
		if len(digest) < len(msg.Prefix) {
			continue
		}
		if string(digest[:len(msg.Prefix)]) == string(msg.Prefix) {
			out = append(out, c)
		}
	}
	return out
}

// ReceiverRespond builds one envelope per candidate: picks fresh r_j, s_j;
// W_j = s_j*X + r_j*G; key_j = s_j*(Z + hash64(id_j)*G) + r_j*Y; encrypts
// record_j under a fresh AES key K_j, and wraps K_j under key_j by XOR.
func (r *Receiver) ReceiverRespond(candidates []Candidate, msg *SenderMessage) (*ReceiverMessage, error) {
	envelopes := make([]CandidateEnvelope, 0, len(candidates))
	for _, c := range candidates {
		rj, err := r.eng.GenerateRandomScalar()
		if err != nil {
			return nil, err
		}
		sj, err := r.eng.GenerateRandomScalar()
		if err != nil {
			return nil, err
		}

		sX, err := r.eng.ScalarMul(sj, msg.X)
		if err != nil {
			return nil, err
		}
		rG, err := r.eng.MulGenerator(rj)
		if err != nil {
			return nil, err
		}
		W, err := r.eng.EcAdd(sX, rG)
		if err != nil {
			return nil, err
		}

		hid, err := r.eng.HashToScalar(hash64Bytes(c.ID))
		if err != nil {
			return nil, err
		}
		hidG, err := r.eng.MulGenerator(hid)
		if err != nil {
			return nil, err
		}
		zPlusHid, err := r.eng.EcAdd(msg.Z, hidG)
		if err != nil {
			return nil, err
		}
		term1, err := r.eng.ScalarMul(sj, zPlusHid)
		if err != nil {
			return nil, err
		}
		rY, err := r.eng.ScalarMul(rj, msg.Y)
		if err != nil {
			return nil, err
		}
		keyPoint, err := r.eng.EcAdd(term1, rY)
		if err != nil {
			return nil, err
		}
		keyMaterial := r.h.Hash(keyPoint.Bytes())[:recordKeyLen(r.cipher)]

		recordKey := make([]byte, recordKeyLen(r.cipher))
		if _, err := randRead(recordKey); err != nil {
			return nil, ppcerr.Wrap(ppcerr.KindInternal, err)
		}

		iv := make([]byte, r.cipher.BlockSize())
		encRecord, err := r.cipher.Encrypt(recordKey, iv, padRecord(c.Record, r.cipher.BlockSize()))
		if err != nil {
			return nil, err
		}

		envelopes = append(envelopes, CandidateEnvelope{
			W:            W,
			WrappedKey:   xorBytes(recordKey, keyMaterial),
			EncryptedRec: encRecord,
		})
	}
	return &ReceiverMessage{Envelopes: envelopes}, nil
}

func recordKeyLen(c symcipher.Cipher) int {
	switch c.Type() {
	case symcipher.AES192:
		return 24
	case symcipher.AES256:
		return 32
	default:
		return 16
	}
}

func hash64Bytes(data []byte) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], hash.Hash64(data, 0))
	return buf[:]
}

func hashID(h hash.Algorithm, id []byte) []byte {
	return h.Hash(id)
}

func xorBytes(a, b []byte) []byte {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = a[i] ^ b[i]
	}
	return out
}

// padRecord applies PKCS#7 padding so FinishSender can recover the exact
// original record length after CBC decryption; unlike a zero-pad scheme,
// the pad length is always recoverable from the trailing byte itself.
func padRecord(record []byte, blockSize int) []byte {
	pad := blockSize - len(record)%blockSize
	out := make([]byte, len(record)+pad)
	copy(out, record)
	for i := len(record); i < len(out); i++ {
		out[i] = byte(pad)
	}
	return out
}

func unpadRecord(padded []byte, blockSize int) ([]byte, error) {
	if len(padded) == 0 || len(padded)%blockSize != 0 {
		return nil, ppcerr.New(ppcerr.KindDataFormatError, "invalid padded record length")
	}
	pad := int(padded[len(padded)-1])
	if pad <= 0 || pad > blockSize || pad > len(padded) {
		return nil, ppcerr.New(ppcerr.KindDataFormatError, "invalid padding")
	}
	for _, b := range padded[len(padded)-pad:] {
		if int(b) != pad {
			return nil, ppcerr.New(ppcerr.KindDataFormatError, "invalid padding")
		}
	}
	return padded[:len(padded)-pad], nil
}

var randRead = func(b []byte) (int, error) {
	return cryptoRandRead(b)
}
