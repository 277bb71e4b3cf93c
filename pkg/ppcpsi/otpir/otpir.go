// Package otpir implements component C11: the prefix-filtered 1-of-n
// OT-based PIR state machine of §4.11, built on the base-OT primitive of
// C8 (ppcot/baseot). Generalizes the per-round HTTP handler style of
// session.go's Step1..Step4 methods into dispatcher-driven message
// handling, the same way ecdhpsi does for C9.
package otpir

import (
	"github.com/wedpr-ppc/ppc-core/pkg/ppccrypto/group"
	"github.com/wedpr-ppc/ppc-core/pkg/ppccrypto/hash"
	"github.com/wedpr-ppc/ppc-core/pkg/ppccrypto/symcipher"
	"github.com/wedpr-ppc/ppc-core/pkg/ppcerr"
	"github.com/wedpr-ppc/ppc-core/pkg/ppcot/baseot"
	"github.com/wedpr-ppc/ppc-core/pkg/ppcwire"
)

// Message types for the AlgorithmOTPIR family.
const (
	MsgHelloReceiver ppcwire.MessageType = iota + 1 // querier -> data holder
	MsgResults                                       // data holder -> querier
	MsgErrorNotify
)

// Role mirrors ppctask.Role but kept local, same rationale as ecdhpsi.
type Role int

const (
	RoleClient Role = iota // querier / base-OT sender
	RoleServer              // data holder / base-OT receiver
)

// Sender abstracts the dispatcher's outbound Transport.
type Sender interface {
	Send(peerID string, f ppcwire.Frame) error
}

// OnSelfError mirrors ecdhpsi's per-task error callback.
type OnSelfError func(taskID string, err error)

// OnResult delivers the querier's outcome: found=false means no candidate
// matched the search id, matching §4.8's "not found" contract.
type OnResult func(record []byte, found bool)

// StateMachine drives one OT-PIR task to completion.
type StateMachine struct {
	taskID string
	role   Role
	peerID string

	eng    group.Engine
	h      hash.Algorithm
	cipher symcipher.Cipher

	sender   Sender
	onError  OnSelfError
	onResult OnResult

	// Client-only.
	searchID     []byte
	prefixLength int
	otSender     *baseot.Sender

	// Server-only.
	dataset    []baseot.Candidate
	otReceiver *baseot.Receiver

	finished bool
}

// NewClient constructs the querier side: searchID is the item being
// looked up, prefixLength is the obfuscation order o from §4.8.
func NewClient(taskID, peerID string, eng group.Engine, h hash.Algorithm, cipher symcipher.Cipher,
	sender Sender, onError OnSelfError, onResult OnResult, searchID []byte, prefixLength int) (*StateMachine, error) {
	otSender, err := baseot.NewSender(eng, h, cipher, searchID)
	if err != nil {
		return nil, err
	}
	return &StateMachine{
		taskID: taskID, role: RoleClient, peerID: peerID,
		eng: eng, h: h, cipher: cipher,
		sender: sender, onError: onError, onResult: onResult,
		searchID: searchID, prefixLength: prefixLength, otSender: otSender,
	}, nil
}

// NewServer constructs the data holder side: dataset is the already
// line-scanned candidate set (see ScanCandidates) for the task's input
// resource.
func NewServer(taskID, peerID string, eng group.Engine, h hash.Algorithm, cipher symcipher.Cipher,
	sender Sender, onError OnSelfError, dataset []baseot.Candidate) *StateMachine {
	return &StateMachine{
		taskID: taskID, role: RoleServer, peerID: peerID,
		eng: eng, h: h, cipher: cipher,
		sender: sender, onError: onError,
		dataset: dataset, otReceiver: baseot.NewReceiver(eng, h, cipher),
	}
}

// Start sends HELLO_RECEIVER for the client; the server waits passively.
func (s *StateMachine) Start() error {
	if s.role != RoleClient {
		return nil
	}
	msg, err := s.otSender.SenderGenerateMessage(s.prefixLength)
	if err != nil {
		return err
	}
	payload := encodeSenderMessage(msg)
	return s.sender.Send(s.peerID, ppcwire.NewFrame(s.taskID, ppcwire.AlgorithmOTPIR, MsgHelloReceiver, 0, payload))
}

// HandleMessage dispatches an inbound frame by its MessageType.
func (s *StateMachine) HandleMessage(f ppcwire.Frame) {
	var err error
	switch f.MessageType {
	case MsgHelloReceiver:
		err = s.onHelloReceiver(f)
	case MsgResults:
		err = s.onResults(f)
	case MsgErrorNotify:
		s.fail(ppcerr.New(ppcerr.KindPeerNotified, "peer reported an error"))
		return
	}
	if err != nil {
		s.fail(err)
	}
}

func (s *StateMachine) fail(err error) {
	s.finished = true
	if s.sender != nil {
		_ = s.sender.Send(s.peerID, ppcwire.NewFrame(s.taskID, ppcwire.AlgorithmOTPIR, MsgErrorNotify, 0, nil))
	}
	if s.onError != nil {
		s.onError(s.taskID, err)
	}
}

// onHelloReceiver (server side): filters the prescanned dataset down to
// prefix matches, builds the envelope response, and sends RESULTS back.
func (s *StateMachine) onHelloReceiver(f ppcwire.Frame) error {
	if s.role != RoleServer {
		return nil
	}
	msg, err := decodeSenderMessage(s.eng, f.Payload)
	if err != nil {
		return err
	}
	candidates := s.otReceiver.PrepareDataset(s.dataset, msg)
	resp, err := s.otReceiver.ReceiverRespond(candidates, msg)
	if err != nil {
		return err
	}
	payload, err := encodeReceiverMessage(resp)
	if err != nil {
		return err
	}
	s.finished = true
	return s.sender.Send(s.peerID, ppcwire.NewFrame(s.taskID, ppcwire.AlgorithmOTPIR, MsgResults, 0, payload))
}

// onResults (client side): decrypts the one matching envelope, if any.
func (s *StateMachine) onResults(f ppcwire.Frame) error {
	if s.role != RoleClient {
		return nil
	}
	resp, err := decodeReceiverMessage(s.eng, f.Payload)
	if err != nil {
		return err
	}
	s.finished = true
	record, err := s.otSender.FinishSender(resp)
	if err != nil {
		if s.onResult != nil {
			s.onResult(nil, false)
		}
		return nil
	}
	if s.onResult != nil {
		s.onResult(record, true)
	}
	return nil
}

// Finished reports whether the state machine reached a terminal state.
func (s *StateMachine) Finished() bool { return s.finished }

// Cleanup releases any held resources; OT-PIR holds none beyond GC-owned
// Go values.
func (s *StateMachine) Cleanup() {}
