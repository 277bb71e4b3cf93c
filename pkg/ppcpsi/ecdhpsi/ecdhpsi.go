// Package ecdhpsi implements component C9: ECDH-PSI, generalized from
// session.go's per-step HTTP methods (session.Step1..Step4: one small,
// named method per protocol round, each taking and returning a byte
// payload) but driven by the dispatcher's message queue instead of HTTP
// polling.
package ecdhpsi

import (
	"github.com/wedpr-ppc/ppc-core/pkg/ppccrypto/group"
	"github.com/wedpr-ppc/ppc-core/pkg/ppccrypto/hash"
	"github.com/wedpr-ppc/ppc-core/pkg/ppcerr"
	"github.com/wedpr-ppc/ppc-core/pkg/ppcwire"
)

// Message types for the AlgorithmEcdhPSI family, one per protocol round
// named in §4.9.
const (
	MsgHandshake     ppcwire.MessageType = iota + 1 // round 1
	MsgBlindedX                                      // round 2: client -> server, batches of H(X)^xk
	MsgEvaluatedX                                     // round 3: server -> client, (X')^yk
	MsgBlindedY                                       // round 4: server -> client, H(Y)^yk
	MsgErrorNotify
)

// Phase is the sender/receiver's progress through the round sequence.
type Phase int

const (
	PhaseHandshake Phase = iota
	PhaseExchangeX
	PhaseExchangeY
	PhaseDone
	PhaseFailed
)

// Role mirrors ppctask.Role but is declared locally so that this
// protocol-internal type does not make the package depend on ppctask.
type Role int

const (
	RoleClient Role = iota
	RoleServer
)

// Sender abstracts the outbound side of the dispatcher's Transport so this
// package stays decoupled from ppcexternal.
type Sender interface {
	Send(peerID string, f ppcwire.Frame) error
}

// OnSelfError is invoked on any unrecoverable failure; state machines
// converge every error path to this callback per §7.
type OnSelfError func(taskID string, err error)

// StateMachine drives one ECDH-PSI task to completion.
type StateMachine struct {
	taskID   string
	role     Role
	peerID   string
	eng      group.Engine
	h        hash.Algorithm
	selfKey  group.Scalar
	sender   Sender
	onError  OnSelfError
	onResult func(intersection [][]byte)

	ownSet  [][]byte
	peerSetSize int

	phase        Phase
	localX      []group.Point // H(X)^selfKey (client) staged batches
	peerXPrime  []group.Point
	peerYHashed []group.Point
	finished    bool
}

// New constructs an ECDH-PSI StateMachine bound to a peer and curve
// engine. ownSet is the local party's input set (already loaded from the
// resource loader).
func New(taskID string, role Role, peerID string, eng group.Engine, h hash.Algorithm,
	sender Sender, onError OnSelfError, onResult func([][]byte), ownSet [][]byte) (*StateMachine, error) {
	key, err := eng.GenerateRandomScalar()
	if err != nil {
		return nil, err
	}
	return &StateMachine{
		taskID: taskID, role: role, peerID: peerID, eng: eng, h: h,
		selfKey: key, sender: sender, onError: onError, onResult: onResult,
		ownSet: ownSet, phase: PhaseHandshake,
	}, nil
}

// Start sends the HANDSHAKE round.
func (s *StateMachine) Start() error {
	if s.role == RoleClient {
		return s.sender.Send(s.peerID, ppcwire.NewFrame(s.taskID, ppcwire.AlgorithmEcdhPSI, MsgHandshake, 0, nil))
	}
	return nil
}

// HandleMessage dispatches an inbound frame by its MessageType.
func (s *StateMachine) HandleMessage(f ppcwire.Frame) {
	var err error
	switch f.MessageType {
	case MsgHandshake:
		err = s.onHandshake(f)
	case MsgBlindedX:
		err = s.onBlindedX(f)
	case MsgEvaluatedX:
		err = s.onEvaluatedX(f)
	case MsgBlindedY:
		err = s.onBlindedY(f)
	case MsgErrorNotify:
		s.fail(ppcerr.New(ppcerr.KindPeerNotified, "peer reported an error"))
		return
	}
	if err != nil {
		s.fail(err)
	}
}

func (s *StateMachine) fail(err error) {
	s.phase = PhaseFailed
	s.finished = true
	if s.sender != nil {
		_ = s.sender.Send(s.peerID, ppcwire.NewFrame(s.taskID, ppcwire.AlgorithmEcdhPSI, MsgErrorNotify, 0, nil))
	}
	if s.onError != nil {
		s.onError(s.taskID, err)
	}
}

// onHandshake: the server accepts and echoes its own handshake; the
// client, on receiving that echo, starts round 2.
func (s *StateMachine) onHandshake(f ppcwire.Frame) error {
	if s.role == RoleServer {
		s.phase = PhaseExchangeX
		return s.sender.Send(s.peerID, ppcwire.NewFrame(s.taskID, ppcwire.AlgorithmEcdhPSI, MsgHandshake, 0, nil))
	}
	return s.StartClientExchange()
}

// onBlindedX (server side): receives batches of H(X)^xk from the client,
// applies the server key, streams back.
func (s *StateMachine) onBlindedX(f ppcwire.Frame) error {
	if s.role != RoleServer {
		return nil
	}
	points, err := decodePoints(s.eng, f.Payload)
	if err != nil {
		return err
	}
	evaluated := make([]group.Point, len(points))
	for i, p := range points {
		e, err := s.eng.ScalarMul(s.selfKey, p)
		if err != nil {
			return err
		}
		evaluated[i] = e
	}
	payload, err := encodePoints(evaluated)
	if err != nil {
		return err
	}
	if err := s.sender.Send(s.peerID, ppcwire.NewFrame(s.taskID, ppcwire.AlgorithmEcdhPSI, MsgEvaluatedX, f.Seq, payload)); err != nil {
		return err
	}

	// Server now sends its own H(Y)^yk batch.
	localY, err := s.blindOwnSet()
	if err != nil {
		return err
	}
	yPayload, err := encodePoints(localY)
	if err != nil {
		return err
	}
	s.phase = PhaseExchangeY
	return s.sender.Send(s.peerID, ppcwire.NewFrame(s.taskID, ppcwire.AlgorithmEcdhPSI, MsgBlindedY, 0, yPayload))
}

// onEvaluatedX (client side): receives (X')^yk = X''.
func (s *StateMachine) onEvaluatedX(f ppcwire.Frame) error {
	if s.role != RoleClient {
		return nil
	}
	points, err := decodePoints(s.eng, f.Payload)
	if err != nil {
		return err
	}
	s.peerXPrime = points
	return s.maybeFinish()
}

// onBlindedY (client side): receives H(Y)^yk, raises to xk, then
// intersects.
func (s *StateMachine) onBlindedY(f ppcwire.Frame) error {
	if s.role != RoleClient {
		return nil
	}
	points, err := decodePoints(s.eng, f.Payload)
	if err != nil {
		return err
	}
	out := make([]group.Point, len(points))
	for i, p := range points {
		e, err := s.eng.ScalarMul(s.selfKey, p)
		if err != nil {
			return err
		}
		out[i] = e
	}
	s.peerYHashed = out
	return s.maybeFinish()
}

func (s *StateMachine) maybeFinish() error {
	if s.peerXPrime == nil || s.peerYHashed == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(s.peerYHashed))
	for _, p := range s.peerYHashed {
		seen[string(p.Bytes())] = struct{}{}
	}
	var intersection [][]byte
	for i, p := range s.peerXPrime {
		if _, ok := seen[string(p.Bytes())]; ok && i < len(s.ownSet) {
			intersection = append(intersection, s.ownSet[i])
		}
	}
	s.phase = PhaseDone
	s.finished = true
	if s.onResult != nil {
		s.onResult(intersection)
	}
	return nil
}

// blindOwnSet computes H(item)^selfKey for every item in ownSet, the
// shared routine behind both the client's round-2 and the server's
// round-4 outbound batch.
func (s *StateMachine) blindOwnSet() ([]group.Point, error) {
	out := make([]group.Point, len(s.ownSet))
	for i, item := range s.ownSet {
		hx, err := s.eng.HashToCurve(item)
		if err != nil {
			return nil, err
		}
		p, err := s.eng.ScalarMul(s.selfKey, hx)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// StartClientExchange is called once the client's handshake has been
// acknowledged, sending round 2 (H(X)^xk).
func (s *StateMachine) StartClientExchange() error {
	blinded, err := s.blindOwnSet()
	if err != nil {
		return err
	}
	payload, err := encodePoints(blinded)
	if err != nil {
		return err
	}
	s.phase = PhaseExchangeX
	return s.sender.Send(s.peerID, ppcwire.NewFrame(s.taskID, ppcwire.AlgorithmEcdhPSI, MsgBlindedX, 0, payload))
}

// Finished reports whether the state machine has reached a terminal
// state.
func (s *StateMachine) Finished() bool { return s.finished }

// Cleanup releases any held resources; ECDH-PSI holds none beyond Go
// values already owned by the GC.
func (s *StateMachine) Cleanup() {}

func encodePoints(points []group.Point) ([]byte, error) {
	var out []byte
	for _, p := range points {
		b := p.Bytes()
		out = append(out, byte(len(b)))
		out = append(out, b...)
	}
	return out, nil
}

func decodePoints(eng group.Engine, data []byte) ([]group.Point, error) {
	var out []group.Point
	for len(data) > 0 {
		n := int(data[0])
		data = data[1:]
		if n > len(data) {
			return nil, ppcerr.New(ppcerr.KindDataFormatError, "truncated point list")
		}
		p, err := eng.PointFromBytes(data[:n])
		if err != nil {
			return nil, err
		}
		out = append(out, p)
		data = data[n:]
	}
	return out, nil
}
