// Command ppcnoded is the PPC node's entry point: it wires the task
// dispatcher (C12) to the three protocol state machines (C9/C10/C11)
// behind a loopback-only in-memory Transport and an http.ServeMux, the
// same request-routing idiom notary.go used for its own session/command
// handlers. Real inter-agency transport, RPC task injection, and resource
// loading are external collaborators out of scope for this core (§1);
// this command exists to demonstrate the wiring, not to replace them.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/klauspost/cpuid/v2"

	"github.com/wedpr-ppc/ppc-core/pkg/dispatcher"
	"github.com/wedpr-ppc/ppc-core/pkg/ppcconfig"
	"github.com/wedpr-ppc/ppc-core/pkg/ppccrypto/group"
	"github.com/wedpr-ppc/ppc-core/pkg/ppccrypto/hash"
	"github.com/wedpr-ppc/ppc-core/pkg/ppccrypto/symcipher"
	"github.com/wedpr-ppc/ppc-core/pkg/ppclog"
	"github.com/wedpr-ppc/ppc-core/pkg/ppcpsi/cm2020"
	"github.com/wedpr-ppc/ppc-core/pkg/ppcpsi/ecdhpsi"
	"github.com/wedpr-ppc/ppc-core/pkg/ppcpsi/otpir"
	"github.com/wedpr-ppc/ppc-core/pkg/ppcsync/retrytimer"
	"github.com/wedpr-ppc/ppc-core/pkg/ppctask"
	"github.com/wedpr-ppc/ppc-core/pkg/ppcwire"
)

// taskSweepInterval is how often the node logs its live task count, the
// loopback stand-in for a periodic peer-keepalive/task-expiry sweep.
const taskSweepInterval = 30 * time.Second

var log = ppclog.For("ppcnoded")

// loopbackTransport is the in-process stand-in for the out-of-scope
// inter-agency transport: Send looks up the handler registered for the
// frame's algorithm and invokes it synchronously, the same way a single
// notary process dispatches every HTTP method to itself.
type loopbackTransport struct {
	mu       sync.Mutex
	handlers map[ppcwire.AlgorithmID]func(ppcwire.Frame)
}

func newLoopbackTransport() *loopbackTransport {
	return &loopbackTransport{handlers: make(map[ppcwire.AlgorithmID]func(ppcwire.Frame))}
}

func (t *loopbackTransport) Send(ctx context.Context, peerID string, msg ppcwire.Frame) error {
	t.mu.Lock()
	h, ok := t.handlers[msg.AlgorithmID]
	t.mu.Unlock()
	if !ok {
		return nil
	}
	h(msg)
	return nil
}

func (t *loopbackTransport) AsyncSend(peerID string, msg ppcwire.Frame, timeout time.Duration,
	onError func(error), onResponse func(ppcwire.Frame)) error {
	return t.Send(context.Background(), peerID, msg)
}

func (t *loopbackTransport) RegisterMessageHandler(taskType ppctask.Type, algorithmID ppcwire.AlgorithmID,
	handler func(ppcwire.Frame)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers[algorithmID] = handler
	return nil
}

func (t *loopbackTransport) NotifyTaskInfo(taskID string) error { return nil }
func (t *loopbackTransport) EraseTaskInfo(taskID string)        {}

// transportSender adapts loopbackTransport to the per-protocol Sender
// interfaces (ecdhpsi.Sender, cm2020.Sender, otpir.Sender all share this
// shape: Send(peerID string, f ppcwire.Frame) error).
type transportSender struct {
	transport *loopbackTransport
}

func (s transportSender) Send(peerID string, f ppcwire.Frame) error {
	return s.transport.Send(context.Background(), peerID, f)
}

func main() {
	addr := flag.String("addr", "127.0.0.1:10110", "HTTP listen address")
	flag.Parse()

	log.Infof("cpu: %s, aes-ni: %v", cpuid.CPU.BrandName, cpuid.CPU.Supports(cpuid.AESNI))

	cfg := ppcconfig.Default()
	transport := newLoopbackTransport()
	disp := dispatcher.New(cfg.ThreadPoolSize(), cfg.WaitingPeerFinishGrace(), cfg.TaskExpireTime())

	transport.RegisterMessageHandler(ppctask.TypePSI, ppcwire.AlgorithmEcdhPSI, func(f ppcwire.Frame) {
		_ = disp.RouteMessage(f)
	})
	transport.RegisterMessageHandler(ppctask.TypePSI, ppcwire.AlgorithmCM2020PSI, func(f ppcwire.Frame) {
		_ = disp.RouteMessage(f)
	})
	transport.RegisterMessageHandler(ppctask.TypePIR, ppcwire.AlgorithmOTPIR, func(f ppcwire.Frame) {
		_ = disp.RouteMessage(f)
	})

	disp.RegisterBuilder(ppctask.TypePSI, ppcwire.AlgorithmEcdhPSI, ecdhpsiBuilder(transport))
	disp.RegisterBuilder(ppctask.TypePSI, ppcwire.AlgorithmCM2020PSI, cm2020Builder(transport))
	disp.RegisterBuilder(ppctask.TypePIR, ppcwire.AlgorithmOTPIR, otpirBuilder(transport))

	mux := http.NewServeMux()
	mux.HandleFunc("/asyncRunTask", asyncRunTaskHandler(disp))
	mux.HandleFunc("/onReceiveMessage", onReceiveMessageHandler(disp))
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.HandleFunc("/stop", func(w http.ResponseWriter, r *http.Request) {
		disp.Shutdown()
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{
		Addr:         *addr,
		Handler:      mux,
		ReadTimeout:  1 * time.Minute,
		WriteTimeout: 5 * time.Minute,
	}

	sweep := retrytimer.New(taskSweepInterval, func() {
		log.Infof("%d tasks in flight", disp.Size())
	})
	sweep.Start()

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Infof("listening on %s", *addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("server error: %v", err)
		}
	}()

	<-c
	log.Infof("shutting down")
	sweep.Stop()
	disp.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("shutdown error: %v", err)
	}
}

// taskRequest is the minimal JSON shape /asyncRunTask accepts; Params
// carries everything protocol-specific (own item set, search id, curve
// and hash choice) since the real RPC front-end and resource loader are
// out of scope (§1) and this is a loopback demonstration harness.
type taskRequest struct {
	TaskID      string         `json:"taskId"`
	Type        string         `json:"type"`
	AlgorithmID int            `json:"algorithmId"`
	Role        string         `json:"role"`
	PeerAgency  string         `json:"peerAgency"`
	Params      map[string]any `json:"params"`
}

func asyncRunTaskHandler(disp *dispatcher.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var req taskRequest
		if err := json.Unmarshal(body, &req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		task := ppctask.Task{
			ID:          req.TaskID,
			Type:        taskType(req.Type),
			AlgorithmID: ppcwire.AlgorithmID(req.AlgorithmID),
			Role:        taskRole(req.Role),
			PeerAgency:  req.PeerAgency,
			Params:      req.Params,
		}
		if err := disp.AddTask(task); err != nil {
			w.WriteHeader(http.StatusConflict)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func onReceiveMessageHandler(disp *dispatcher.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := ppcwire.Decode(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if err := disp.RouteMessage(f); err != nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func taskType(s string) ppctask.Type {
	if s == "PIR" {
		return ppctask.TypePIR
	}
	return ppctask.TypePSI
}

func taskRole(s string) ppctask.Role {
	if s == "server" {
		return ppctask.RoleServer
	}
	return ppctask.RoleClient
}

func paramItems(task ppctask.Task, key string) [][]byte {
	raw, ok := task.Params[key].([]any)
	if !ok {
		return nil
	}
	out := make([][]byte, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, []byte(s))
		}
	}
	return out
}

func defaultCipher() (symcipher.Cipher, error) {
	return symcipher.New(symcipher.AES128)
}

func resolveEngine(task ppctask.Task) (group.Engine, error) {
	curve := group.Secp256k1
	if s, ok := task.Params["curve"].(string); ok && s == "p256" {
		curve = group.P256
	}
	return group.New(curve)
}

func ecdhpsiBuilder(transport *loopbackTransport) dispatcher.Builder {
	return func(t ppctask.Task) (dispatcher.StateMachine, error) {
		eng, err := resolveEngine(t)
		if err != nil {
			return nil, err
		}
		h := hash.MustNew(hash.SHA256)
		role := ecdhpsi.RoleClient
		if t.Role == ppctask.RoleServer {
			role = ecdhpsi.RoleServer
		}
		items := paramItems(t, "items")
		return ecdhpsi.New(t.ID, role, t.PeerAgency, eng, h, transportSender{transport},
			func(taskID string, err error) { log.Errorf("ecdh-psi task %s failed: %v", taskID, err) },
			func(intersection [][]byte) { log.Infof("ecdh-psi task %s intersection size %d", t.ID, len(intersection)) },
			items)
	}
}

func cm2020Builder(transport *loopbackTransport) dispatcher.Builder {
	return func(t ppctask.Task) (dispatcher.StateMachine, error) {
		eng, err := resolveEngine(t)
		if err != nil {
			return nil, err
		}
		h := hash.MustNew(hash.SHA256)
		items := paramItems(t, "items")
		onError := func(taskID string, err error) { log.Errorf("cm2020-psi task %s failed: %v", taskID, err) }
		onResult := func(intersection [][]byte) { log.Infof("cm2020-psi task %s intersection size %d", t.ID, len(intersection)) }
		if t.Role == ppctask.RoleServer {
			return cm2020.NewServer(t.ID, t.PeerAgency, eng, h, transportSender{transport}, onError, onResult, items), nil
		}
		hs := cm2020.Handshake{N: 512, SyncResultsBack: true}
		return cm2020.NewClient(t.ID, t.PeerAgency, eng, h, transportSender{transport}, onError, onResult, items, hs)
	}
}

func otpirBuilder(transport *loopbackTransport) dispatcher.Builder {
	return func(t ppctask.Task) (dispatcher.StateMachine, error) {
		eng, err := resolveEngine(t)
		if err != nil {
			return nil, err
		}
		h := hash.MustNew(hash.SHA256)
		cipher, err := defaultCipher()
		if err != nil {
			return nil, err
		}
		onError := func(taskID string, err error) { log.Errorf("ot-pir task %s failed: %v", taskID, err) }
		if t.Role == ppctask.RoleServer {
			path, _ := t.Params["path"].(string)
			f, err := os.Open(path)
			if err != nil {
				return nil, err
			}
			defer f.Close()
			candidates, err := otpir.ScanCandidates(f)
			if err != nil {
				return nil, err
			}
			return otpir.NewServer(t.ID, t.PeerAgency, eng, h, cipher, transportSender{transport}, onError, candidates), nil
		}
		searchID, _ := t.Params["searchId"].(string)
		prefixLen := 4
		if v, ok := t.Params["prefixLength"].(float64); ok {
			prefixLen = int(v)
		}
		onResult := func(record []byte, found bool) {
			log.Infof("ot-pir task %s found=%v record=%q", t.ID, found, string(record))
		}
		return otpir.NewClient(t.ID, t.PeerAgency, eng, h, cipher, transportSender{transport}, onError, onResult,
			[]byte(searchID), prefixLen)
	}
}
