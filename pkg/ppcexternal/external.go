// Package ppcexternal defines the external-interfaces layer (§6): the
// collaborator interfaces the dispatcher and protocol state machines depend
// on but do not implement — transport, agency discovery, resource IO, and
// configuration. This package only declares the contracts; the only
// implementations in this module are cmd/ppcnoded's loopback Transport and
// ppcconfig.Config.
package ppcexternal

import (
	"context"
	"time"

	"github.com/wedpr-ppc/ppc-core/pkg/ppctask"
	"github.com/wedpr-ppc/ppc-core/pkg/ppcwire"
)

// Transport sends and receives framed messages with remote peers.
type Transport interface {
	Send(ctx context.Context, peerID string, msg ppcwire.Frame) error
	AsyncSend(peerID string, msg ppcwire.Frame, timeout time.Duration,
		onError func(error), onResponse func(ppcwire.Frame)) error
	RegisterMessageHandler(taskType ppctask.Type, algorithmID ppcwire.AlgorithmID,
		handler func(ppcwire.Frame)) error
	NotifyTaskInfo(taskID string) error
	EraseTaskInfo(taskID string)
}

// AgencyDirectory resolves the set of known peer agency ids.
type AgencyDirectory interface {
	AsyncGetAgencyList(callback func(err error, ids []string))
}

// Schema describes the column layout of a row-oriented resource.
type Schema struct {
	Columns []string
}

// RowReader streams rows from an input resource.
type RowReader interface {
	Next() (row []string, ok bool, err error)
	Close() error
}

// RowWriter appends rows to an output resource.
type RowWriter interface {
	WriteRow(row []string) error
	Close() error
}

// ResourceLoader binds task resource descriptors to concrete readers and
// writers.
type ResourceLoader interface {
	LoadReader(taskID string, desc ppctask.ResourceDescriptor, schema Schema) (RowReader, error)
	LoadWriter(taskID string, desc ppctask.ResourceDescriptor, allowExisting bool) (RowWriter, error)
}

// Config exposes the subset of ppcconfig.Config the dispatcher and state
// machines need, without binding them to the concrete struct.
type Config interface {
	ThreadPoolSize() int
	TaskExpireTime() time.Duration
	WaitingPeerFinishGrace() time.Duration
}
