// Package bridge controls a long-lived worker process over newline-delimited
// JSON frames carried on the worker's standard input and output streams.
//
// The bridge starts the worker lazily on the first Send, correlates
// concurrently in-flight requests to out-of-order responses by id, routes the
// worker's non-protocol output to a diagnostic sink, and rejects every
// pending request exactly once when the worker exits. All state is scoped to
// one Bridge instance, so multiple independent bridges can coexist in a host
// process.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// State is the lifecycle state of the worker process owned by a Bridge.
type State string

const (
	StateNotStarted State = "not_started"
	StateStarting   State = "starting"
	StateRunning    State = "running"
	StateExited     State = "exited"
	StateStopped    State = "stopped"
)

// workerProc is the handle to a spawned worker.
type workerProc struct {
	stdin io.WriteCloser
	kill  func() error
}

// Bridge is the single entry point for talking to the worker.
type Bridge struct {
	logger *zap.SugaredLogger

	workerPath string
	extraEnv   []string
	diagnostic func(line string)
	exitHook   func(err error)

	// start spawns the worker. Tests swap this out for an in-process fake.
	start func() (*workerProc, error)

	dec    *lineDecoder
	errDec *lineDecoder
	reg    *registry

	// writeMu serializes stdin writes so concurrent requests never
	// interleave at the byte level.
	writeMu sync.Mutex

	mu        sync.Mutex
	state     State
	startedCh chan struct{}
	startErr  error
	exitErr   error
	worker    *workerProc
}

type Option func(b *Bridge)

// WithLogger replaces the bridge's logger.
func WithLogger(l *zap.Logger) Option {
	return func(b *Bridge) {
		b.logger = l.Named("bridge").Sugar()
	}
}

// WithLogLevel raises the minimum level of the bridge's logger.
func WithLogLevel(l zapcore.Level) Option {
	return func(b *Bridge) {
		b.logger = b.logger.WithOptions(zap.IncreaseLevel(l))
	}
}

// WithWorkerPath sets an explicit worker executable path, which takes
// precedence over every other candidate location.
func WithWorkerPath(path string) Option {
	return func(b *Bridge) {
		b.workerPath = path
	}
}

// WithEnv appends environment variables (KEY=VALUE) to the worker's
// environment. The host's full environment is always forwarded.
func WithEnv(env ...string) Option {
	return func(b *Bridge) {
		b.extraEnv = append(b.extraEnv, env...)
	}
}

// WithDiagnosticSink routes the worker's non-protocol output lines to f
// instead of the bridge's logger.
func WithDiagnosticSink(f func(line string)) Option {
	return func(b *Bridge) {
		b.diagnostic = f
	}
}

// WithExitHandler registers f to be called once when the worker process
// terminates, after every pending request has been rejected.
func WithExitHandler(f func(err error)) Option {
	return func(b *Bridge) {
		b.exitHook = f
	}
}

// New constructs a Bridge. The worker process is not started until the first
// Send or an explicit Start.
func New(opts ...Option) (*Bridge, error) {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	b := &Bridge{
		logger: logger.Named("bridge").Sugar(),
		state:  StateNotStarted,
		reg:    newRegistry(),
	}
	b.start = b.execStart
	b.dec = &lineDecoder{
		classify:     true,
		onResponse:   b.handleResponse,
		onDiagnostic: b.handleDiagnostic,
		onError:      b.handleTransportError,
	}
	b.errDec = &lineDecoder{
		onDiagnostic: b.handleDiagnostic,
	}
	for _, o := range opts {
		o(b)
	}
	b.logger = b.logger.With("BridgeID", uuid.NewString())
	return b, nil
}

// State returns the current lifecycle state.
func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Inflight returns the number of requests awaiting a response.
func (b *Bridge) Inflight() int {
	return b.reg.inflight()
}

// Start launches the worker process if it is not already running. It is
// idempotent, and concurrent callers racing the first launch spawn exactly
// one process. After the worker has exited or the bridge has been stopped,
// Start fails; the bridge never restarts a worker.
func (b *Bridge) Start(ctx context.Context) error {
	for {
		b.mu.Lock()
		switch b.state {
		case StateRunning:
			b.mu.Unlock()
			return nil
		case StateStopped:
			b.mu.Unlock()
			return ErrStopped
		case StateExited:
			err := b.exitErr
			b.mu.Unlock()
			return err
		case StateStarting:
			ch := b.startedCh
			b.mu.Unlock()
			select {
			case <-ch:
			case <-ctx.Done():
				return ctx.Err()
			}
			b.mu.Lock()
			err := b.startErr
			state := b.state
			b.mu.Unlock()
			if state == StateRunning {
				return nil
			}
			if err != nil {
				return err
			}
			// the launch was preempted by Stop or an immediate exit;
			// re-evaluate from the new state
		case StateNotStarted:
			b.state = StateStarting
			b.startErr = nil
			ch := make(chan struct{})
			b.startedCh = ch
			b.mu.Unlock()

			w, err := b.start()

			b.mu.Lock()
			if err != nil {
				b.state = StateNotStarted
				b.startErr = err
				close(ch)
				b.mu.Unlock()
				return err
			}
			b.worker = w
			preempted := b.state != StateStarting
			if !preempted {
				b.state = StateRunning
			}
			close(ch)
			b.mu.Unlock()
			if preempted {
				// Stop won the race; don't leave the fresh process behind.
				w.stdin.Close()
				_ = w.kill()
				return ErrStopped
			}
			return nil
		}
	}
}

// Send dispatches one request to the worker and blocks until the matching
// response arrives, the worker terminates, or ctx is done. The worker is
// started on first use. params of nil is sent as an empty object.
//
// A response carrying a result resolves the call; a response carrying an
// error rejects it with a *RemoteError. If the worker exits first the call is
// rejected with a *ProcessExitError.
func (b *Bridge) Send(ctx context.Context, method string, params any) (json.RawMessage, error) {
	if err := b.Start(ctx); err != nil {
		return nil, err
	}
	call, err := b.reg.register()
	if err != nil {
		return nil, err
	}

	if params == nil {
		params = struct{}{}
	}
	line, err := json.Marshal(request{
		ProtocolVersion: ProtocolVersion,
		Method:          method,
		Params:          params,
		ID:              call.id,
	})
	if err != nil {
		b.reg.remove(call.id)
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	line = append(line, '\n')

	b.mu.Lock()
	w := b.worker
	b.mu.Unlock()
	if w == nil {
		b.reg.remove(call.id)
		return nil, ErrStopped
	}

	b.logger.Debugw("sending request", "Method", method, "ID", call.id)
	b.writeMu.Lock()
	_, werr := w.stdin.Write(line)
	b.writeMu.Unlock()
	if werr != nil {
		b.reg.remove(call.id)
		return nil, fmt.Errorf("writing request: %w", werr)
	}

	select {
	case res := <-call.ch:
		return res.result, res.err
	case <-ctx.Done():
		b.reg.remove(call.id)
		return nil, ctx.Err()
	}
}

// Stop terminates the worker process and rejects any requests still pending.
// Subsequent Sends fail with ErrStopped.
func (b *Bridge) Stop() error {
	for {
		b.mu.Lock()
		switch b.state {
		case StateNotStarted, StateExited:
			b.state = StateStopped
			b.mu.Unlock()
			return nil
		case StateStopped:
			b.mu.Unlock()
			return nil
		case StateStarting:
			ch := b.startedCh
			b.mu.Unlock()
			<-ch
		case StateRunning:
			b.state = StateStopped
			w := b.worker
			b.mu.Unlock()
			b.logger.Debug("stopping worker")
			w.stdin.Close()
			_ = w.kill()
			return nil
		}
	}
}

// execStart locates and spawns the worker executable, wiring its stdout
// through the frame decoder and its stderr through the diagnostic path, and
// watches for its exit.
func (b *Bridge) execStart() (*workerProc, error) {
	path, err := b.locateWorker()
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(path)
	// Forward the full host environment so credentials and configuration
	// reach the worker without being re-specified.
	cmd.Env = append(os.Environ(), b.extraEnv...)
	cmd.Stdout = b.dec
	cmd.Stderr = b.errDec

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &LaunchError{Candidates: []string{path}, Err: err}
	}
	if err := cmd.Start(); err != nil {
		return nil, &LaunchError{Candidates: []string{path}, Err: err}
	}
	b.logger.Debugw("worker started", "Path", path, "PID", cmd.Process.Pid)

	go func() {
		err := cmd.Wait()
		exitCode := 0
		if err != nil {
			if exitErr, ok := err.(*exec.ExitError); ok {
				exitCode = exitErr.ExitCode()
			} else {
				b.logger.Debugf("unexpected wait error: %s", err)
				exitCode = -1
			}
		}
		b.handleExit(exitCode)
	}()

	return &workerProc{
		stdin: stdin,
		kill:  func() error { return cmd.Process.Kill() },
	}, nil
}

// handleExit records the worker's terminal state and rejects every pending
// request with a ProcessExitError, exactly once per request. By the time it
// runs the worker's streams have been read to completion, so it first flushes
// any retained partial line through the decoders.
func (b *Bridge) handleExit(exitCode int) {
	b.dec.flush()
	b.errDec.flush()

	exitErr := &ProcessExitError{ExitCode: exitCode}
	b.mu.Lock()
	if b.state != StateStopped {
		b.state = StateExited
	}
	if b.exitErr == nil {
		b.exitErr = exitErr
	}
	b.mu.Unlock()

	b.logger.Debugw("worker exited", "ExitCode", exitCode, "Pending", b.reg.inflight())
	b.reg.failAll(exitErr)
	if b.exitHook != nil {
		b.exitHook(exitErr)
	}
}

func (b *Bridge) handleResponse(resp response) {
	if resp.Error != nil {
		remote := &RemoteError{
			Code:    resp.Error.Code,
			Message: resp.Error.Message,
			Data:    resp.Error.Data,
		}
		if !b.reg.reject(resp.ID, remote) {
			b.logger.Debugf("dropping response: %s", &ProtocolError{ID: resp.ID})
		}
		return
	}
	if !b.reg.resolve(resp.ID, resp.Result) {
		b.logger.Debugf("dropping response: %s", &ProtocolError{ID: resp.ID})
	}
}

func (b *Bridge) handleDiagnostic(line string) {
	if b.diagnostic != nil {
		b.diagnostic(line)
		return
	}
	b.logger.Infof("worker: %s", line)
}

func (b *Bridge) handleTransportError(terr *TransportError) {
	b.logger.Warnw("dropping unparseable protocol line", "Line", terr.Line, "Error", terr.Err)
}
