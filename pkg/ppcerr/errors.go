// Package ppcerr defines the typed error kinds shared by every protocol
// state machine and cryptographic primitive in the PPC core.
package ppcerr

import (
	"errors"
	"fmt"
)

// Kind identifies the category of a core error, per the taxonomy in §7.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidConfig
	KindInvalidTaskParam
	KindUndefinedTaskRole
	KindUndefinedCommand
	KindUnsupportedCurveType
	KindUnsupportedHashType
	KindDataFormatError
	KindHashToCurveFailure
	KindScalarInvertFailure
	KindEcMultiplyFailure
	KindX25519BatchFailure
	KindOreOutOfRange
	KindOreCipherTooShort
	KindOverwrite
	KindRemoveMissing
	KindSendFailure
	KindPeerNotified
	KindTimeout
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindInvalidConfig:
		return "InvalidConfig"
	case KindInvalidTaskParam:
		return "InvalidTaskParam"
	case KindUndefinedTaskRole:
		return "UndefinedTaskRole"
	case KindUndefinedCommand:
		return "UndefinedCommand"
	case KindUnsupportedCurveType:
		return "UnsupportedCurveType"
	case KindUnsupportedHashType:
		return "UnsupportedHashType"
	case KindDataFormatError:
		return "DataFormatError"
	case KindHashToCurveFailure:
		return "HashToCurveFailure"
	case KindScalarInvertFailure:
		return "ScalarInvertFailure"
	case KindEcMultiplyFailure:
		return "EcMultiplyFailure"
	case KindX25519BatchFailure:
		return "X25519BatchFailure"
	case KindOreOutOfRange:
		return "OreOutOfRange"
	case KindOreCipherTooShort:
		return "OreCipherTooShort"
	case KindOverwrite:
		return "Overwrite"
	case KindRemoveMissing:
		return "RemoveMissing"
	case KindSendFailure:
		return "SendFailure"
	case KindPeerNotified:
		return "PeerNotified"
	case KindTimeout:
		return "Timeout"
	case KindInternal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// Error is the error type returned across every core component boundary. It
// never carries an HTTP status or transport detail; those belong to the
// collaborators listed in §6.
type Error struct {
	Kind   Kind
	TaskID string
	Err    error
}

func (e *Error) Error() string {
	if e.TaskID != "" {
		return fmt.Sprintf("%s [task %s]: %v", e.Kind, e.TaskID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind wrapping msg.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Err: errors.New(msg)}
}

// Wrap builds an Error of the given kind wrapping an existing error.
func Wrap(kind Kind, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// WithTask attaches a task id to an existing Error, returning a copy.
func (e *Error) WithTask(taskID string) *Error {
	cp := *e
	cp.TaskID = taskID
	return &cp
}

// KindOf extracts the Kind of err if it is (or wraps) a *Error, else
// KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
