// Package ppctask defines component C19: the task/session data model
// shared by the dispatcher and every protocol state machine. A Task is
// immutable after construction; its mutable progress lives in the owning
// state machine, not here.
package ppctask

import "github.com/wedpr-ppc/ppc-core/pkg/ppcwire"

// Type distinguishes the high-level operation a Task performs.
type Type int

const (
	TypePSI Type = iota
	TypePIR
)

func (t Type) String() string {
	switch t {
	case TypePSI:
		return "PSI"
	case TypePIR:
		return "PIR"
	default:
		return "unknown"
	}
}

// Role is the party's position within the protocol.
type Role int

const (
	RoleClient Role = iota
	RoleServer
)

// ResourceDescriptor names an input/output dataset, opaque to the
// dispatcher and interpreted by ppcexternal.ResourceLoader.
type ResourceDescriptor struct {
	ResourceID string
	Path       string
}

// Task is the immutable description of one running protocol instance.
type Task struct {
	ID          string
	Type        Type
	AlgorithmID ppcwire.AlgorithmID
	Role        Role
	SelfAgency  string
	PeerAgency  string
	Input       ResourceDescriptor
	Output      ResourceDescriptor
	Params      map[string]any
}

// State is the lifecycle phase of a running Task, reported by the owning
// state machine.
type State int

const (
	StatePending State = iota
	StateRunning
	StateFinished
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "Pending"
	case StateRunning:
		return "Running"
	case StateFinished:
		return "Finished"
	case StateFailed:
		return "Failed"
	default:
		return "unknown"
	}
}
