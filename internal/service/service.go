// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package service runs one supervised child process.
//
// A Service wraps a single OS process with an ordered lifecycle status,
// graceful-then-forced shutdown, and status-change notifications. The
// launcher package composes two of these (node and wallet) and only depends
// on the Handle interface, so tests can substitute fakes.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/tombee/launchpad/internal/log"
)

var (
	// ErrAlreadyStarted is returned when Start is called more than once.
	ErrAlreadyStarted = errors.New("service already started")
)

// StartInfo describes a successfully started service.
type StartInfo struct {
	// PID is the operating system process identifier.
	PID int

	// Port is the service's advertised API port, when it has one.
	Port int
}

// Handle is the contract the launcher consumes from a managed service.
type Handle interface {
	// Name identifies the service in logs and exit reports.
	Name() string

	// Start spawns the process. It may be called at most once.
	Start(ctx context.Context) (StartInfo, error)

	// Stop requests shutdown: graceful first, forced once the timeout
	// elapses. A zero timeout kills immediately. Stop is idempotent and
	// returns the service's terminal outcome.
	Stop(ctx context.Context, timeout time.Duration) (ExitStatus, error)

	// Status returns the current lifecycle status.
	Status() Status

	// OnStatusChanged registers a callback invoked on every status
	// transition. Callbacks must be registered before Start.
	OnStatusChanged(fn func(Status))
}

// CommandSpec describes how to invoke one managed service.
type CommandSpec struct {
	// Name identifies the service in logs and exit reports.
	Name string

	// Binary is the executable, resolved via PATH when not absolute.
	Binary string

	// Args are the command-line arguments.
	Args []string

	// Env is the child environment. Nil inherits the parent environment.
	Env []string

	// Dir is the working directory. Empty inherits the parent's.
	Dir string

	// LogFile receives stdout and stderr. Empty discards output.
	LogFile string

	// APIPort is the port the service will listen on, when known up front.
	// Reported through StartInfo so the launcher can probe for readiness.
	APIPort int
}

// Service is the process-backed Handle implementation.
type Service struct {
	spec   CommandSpec
	logger *slog.Logger

	mu        sync.Mutex
	status    Status
	observers []func(Status)
	cmd       *exec.Cmd
	exit      ExitStatus

	done      chan struct{}
	closeDone sync.Once
}

var _ Handle = (*Service)(nil)

// New creates a managed service from the given command spec. The process is
// not started until Start is called.
func New(spec CommandSpec, logger *slog.Logger) *Service {
	return &Service{
		spec:   spec,
		logger: log.WithService(logger, spec.Name),
		done:   make(chan struct{}),
	}
}

// Name identifies the service in logs and exit reports.
func (s *Service) Name() string {
	return s.spec.Name
}

// Status returns the current lifecycle status.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// OnStatusChanged registers a callback invoked on every status transition.
func (s *Service) OnStatusChanged(fn func(Status)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// ExitStatus returns the terminal outcome recorded so far. Before the process
// has ended it reports ExitUnknown.
func (s *Service) ExitStatus() ExitStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exit
}

// Start spawns the process and begins watching it.
func (s *Service) Start(ctx context.Context) (StartInfo, error) {
	s.mu.Lock()
	if s.status != StatusNotStarted {
		status := s.status
		s.mu.Unlock()
		return StartInfo{}, fmt.Errorf("%w: %s is %s", ErrAlreadyStarted, s.spec.Name, status)
	}
	s.status = StatusStarting
	obs := slices.Clone(s.observers)
	s.mu.Unlock()
	notify(obs, StatusStarting)

	if err := ctx.Err(); err != nil {
		s.fail(err)
		return StartInfo{}, fmt.Errorf("failed to start %s: %w", s.spec.Name, err)
	}

	sink, err := s.openSink()
	if err != nil {
		s.fail(err)
		return StartInfo{}, fmt.Errorf("failed to start %s: %w", s.spec.Name, err)
	}

	cmd := exec.Command(s.spec.Binary, s.spec.Args...)
	cmd.Env = s.spec.Env
	cmd.Dir = s.spec.Dir
	cmd.Stdout = sink
	cmd.Stderr = sink
	cmd.Stdin = nil
	setSysProcAttr(cmd)

	if err := cmd.Start(); err != nil {
		closeSink(sink)
		s.fail(err)
		return StartInfo{}, fmt.Errorf("failed to start %s: %w", s.spec.Name, err)
	}

	s.mu.Lock()
	s.cmd = cmd
	s.mu.Unlock()

	go s.watch(cmd, sink)

	s.transition(StatusStarted)
	s.logger.Info("service started",
		log.Int(log.PIDKey, cmd.Process.Pid),
		log.String("binary", s.spec.Binary))

	// A concurrent zero-timeout Stop may have raced the spawn; make sure the
	// process does not outlive the requested shutdown.
	if s.Status() > StatusStarted {
		_ = cmd.Process.Kill()
	}

	return StartInfo{PID: cmd.Process.Pid, Port: s.spec.APIPort}, nil
}

// Stop requests shutdown of the process. Graceful (SIGTERM) first, then
// forced (SIGKILL) once the timeout elapses. A zero timeout skips straight to
// the forced path. Safe to call concurrently and repeatedly.
func (s *Service) Stop(ctx context.Context, timeout time.Duration) (ExitStatus, error) {
	s.mu.Lock()
	switch s.status {
	case StatusNotStarted:
		s.status = StatusStopped
		s.exit = ExitStatus{Kind: ExitUnknown}
		obs := slices.Clone(s.observers)
		s.mu.Unlock()
		s.closeDone.Do(func() { close(s.done) })
		notify(obs, StatusStopped)
		return ExitStatus{Kind: ExitUnknown}, nil

	case StatusStopped:
		exit := s.exit
		s.mu.Unlock()
		return exit, nil

	case StatusStopping:
		// Another caller is already shutting the process down; just wait.
		s.mu.Unlock()
		return s.awaitExit(ctx)
	}

	cmd := s.cmd
	s.status = StatusStopping
	obs := slices.Clone(s.observers)
	s.mu.Unlock()
	notify(obs, StatusStopping)

	if cmd == nil || cmd.Process == nil {
		// Start is still in flight; its spawn guard or failure path will
		// settle the exit status.
		return s.awaitExit(ctx)
	}

	if timeout > 0 {
		s.logger.Debug("requesting graceful shutdown",
			log.Int(log.PIDKey, cmd.Process.Pid),
			log.String("timeout", timeout.String()))
		if err := terminate(cmd.Process); err != nil {
			s.logger.Debug("graceful termination request failed", log.Error(err))
		}

		timer := time.NewTimer(timeout)
		defer timer.Stop()

		select {
		case <-s.done:
			return s.ExitStatus(), nil
		case <-ctx.Done():
			return ExitStatus{Kind: ExitUnknown}, ctx.Err()
		case <-timer.C:
			s.logger.Info("graceful shutdown timed out, killing process",
				log.Int(log.PIDKey, cmd.Process.Pid))
		}
	}

	if err := cmd.Process.Kill(); err != nil {
		s.logger.Debug("kill failed", log.Error(err))
	}
	return s.awaitExit(ctx)
}

// awaitExit blocks until the watcher records the terminal outcome.
func (s *Service) awaitExit(ctx context.Context) (ExitStatus, error) {
	select {
	case <-s.done:
		return s.ExitStatus(), nil
	case <-ctx.Done():
		return ExitStatus{Kind: ExitUnknown}, ctx.Err()
	}
}

// watch waits for the process to end and records its outcome.
func (s *Service) watch(cmd *exec.Cmd, sink io.Writer) {
	err := cmd.Wait()
	closeSink(sink)

	exit := exitStatusFromError(err)

	s.mu.Lock()
	s.exit = exit
	s.mu.Unlock()
	s.closeDone.Do(func() { close(s.done) })

	s.logger.Info("service ended", log.String("outcome", exit.String()))
	s.transition(StatusStopped)
}

// fail records a launch failure and settles the service as stopped.
func (s *Service) fail(err error) {
	s.mu.Lock()
	s.exit = ExitStatus{Kind: FailedToLaunch, Err: err}
	s.mu.Unlock()
	s.closeDone.Do(func() { close(s.done) })

	s.logger.Error("service failed to launch", log.Error(err))
	s.transition(StatusStopped)
}

// transition advances the status. Statuses only move forward; a stale
// transition (e.g. Started arriving after the watcher already recorded
// Stopped) is dropped.
func (s *Service) transition(to Status) {
	s.mu.Lock()
	if s.status >= to {
		s.mu.Unlock()
		return
	}
	s.status = to
	obs := slices.Clone(s.observers)
	s.mu.Unlock()
	notify(obs, to)
}

func notify(observers []func(Status), status Status) {
	for _, fn := range observers {
		fn(status)
	}
}

// openSink opens the configured log file for output redirection, creating
// parent directories as needed. Without a log file, output is discarded.
func (s *Service) openSink() (io.Writer, error) {
	if s.spec.LogFile == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(s.spec.LogFile), 0700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(s.spec.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

func closeSink(sink io.Writer) {
	if c, ok := sink.(io.Closer); ok {
		_ = c.Close()
	}
}

// exitStatusFromError translates the error from cmd.Wait into an ExitStatus.
func exitStatusFromError(err error) ExitStatus {
	if err == nil {
		return ExitStatus{Kind: Exited, Code: 0}
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if sig, ok := terminationSignal(exitErr); ok {
			return ExitStatus{Kind: Signalled, Signal: sig}
		}
		return ExitStatus{Kind: Exited, Code: exitErr.ExitCode()}
	}
	return ExitStatus{Kind: ExitUnknown, Err: err}
}
