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

// Package launcher supervises the blockchain node and the wallet backend
// that depends on it.
//
// Startup is dependency ordered: the node starts first, and the wallet is
// only started once the node's start has resolved. A readiness poller probes
// the wallet's API port until it accepts a connection, at which point the
// ready event fires with the connection descriptor. If either service stops,
// for any reason, the launcher stops both and fires the exit event exactly
// once, no matter how many shutdown triggers (self-exit, explicit Stop, OS
// signal) race each other.
package launcher

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/tombee/launchpad/internal/config"
	"github.com/tombee/launchpad/internal/log"
	"github.com/tombee/launchpad/internal/service"
)

const (
	nodeServiceName   = "node"
	walletServiceName = "wallet"

	// DefaultStopTimeout is the graceful shutdown window used when shutdown
	// is triggered internally (self-exit of a service).
	DefaultStopTimeout = 60 * time.Second
)

// Launcher owns the two managed services and coordinates their lifecycle.
type Launcher struct {
	node   service.Handle
	wallet service.Handle

	walletHost  string
	stopTimeout time.Duration
	logger      *slog.Logger

	events   *Events
	backend  *WalletBackend
	bridge   *SignalBridge
	stopping atomic.Bool
}

// New builds a launcher from configuration. Both services are created but
// not started. When the wallet port is unset, a free port is allocated here
// so the command line and the readiness probe agree on it.
func New(cfg *config.Config, logger *slog.Logger) (*Launcher, error) {
	walletPort := cfg.Wallet.Port
	if walletPort == 0 {
		port, err := freePort(cfg.Wallet.Host)
		if err != nil {
			return nil, fmt.Errorf("failed to allocate wallet port: %w", err)
		}
		walletPort = port
	}

	node := service.New(nodeSpec(cfg), logger)
	wallet := service.New(walletSpec(cfg, walletPort), logger)

	return newLauncher(node, wallet, options{
		walletHost:     cfg.Wallet.Host,
		stopTimeout:    cfg.StopTimeout,
		installSignals: cfg.InstallSignalHandlers,
	}, logger), nil
}

// options carries the knobs newLauncher needs beyond the two handles.
type options struct {
	walletHost     string
	stopTimeout    time.Duration
	installSignals bool
}

// newLauncher wires handles, observers, events and the signal bridge. Split
// from New so tests can inject fake handles.
func newLauncher(node, wallet service.Handle, opts options, logger *slog.Logger) *Launcher {
	if opts.stopTimeout <= 0 {
		opts.stopTimeout = DefaultStopTimeout
	}
	if opts.walletHost == "" {
		opts.walletHost = "127.0.0.1"
	}

	l := &Launcher{
		node:        node,
		wallet:      wallet,
		walletHost:  opts.walletHost,
		stopTimeout: opts.stopTimeout,
		logger: log.WithComponent(logger, "launcher").
			With(log.String(log.LauncherIDKey, uuid.NewString())),
		events: NewEvents(),
	}
	l.backend = &WalletBackend{events: l.events}

	node.OnStatusChanged(l.stopOnExit(node))
	wallet.OnStatusChanged(l.stopOnExit(wallet))

	if opts.installSignals {
		l.bridge = NewSignalBridge(l.handleSignal, logger)
		l.bridge.Install()
	}

	return l
}

// Wallet returns the public facade over the supervised wallet backend.
func (l *Launcher) Wallet() *WalletBackend {
	return l.backend
}

// Start brings up the node, then the wallet, and waits for the wallet API to
// accept its first connection. It returns the API connection descriptor on
// readiness, a BackendExitedError if the backend ends first, or the node's
// start error if the node never comes up (in which case the wallet is never
// started).
func (l *Launcher) Start(ctx context.Context) (APIConnection, error) {
	// Subscribe before anything can emit, so neither event can be lost to a
	// race between startup and an early exit.
	readyCh := make(chan APIConnection, 1)
	exitCh := make(chan ExitStatus, 1)
	l.events.OnReady(func(info APIConnection) {
		select {
		case readyCh <- info:
		default:
		}
	})
	l.events.OnExit(func(status ExitStatus) {
		select {
		case exitCh <- status:
		default:
		}
	})

	l.logger.Info("starting node")
	if _, err := l.node.Start(ctx); err != nil {
		return APIConnection{}, fmt.Errorf("node failed to start: %w", err)
	}

	// The poller starts before the wallet: its ticks no-op until the port is
	// known, and its predicate halts it if either service winds down first.
	poller := NewReadinessPoller(l.walletHost, l.pollerShouldStop, func(port int) {
		l.events.EmitReady(APIConnection{Host: l.walletHost, Port: port})
	}, l.logger)
	go poller.Run(ctx)

	if l.node.Status() > service.StatusStarted {
		// The node ended between resolving its start and here; the wallet
		// must not be started.
		l.logger.Error("node stopped before wallet startup")
		return APIConnection{}, l.awaitExit(ctx, exitCh)
	}

	l.logger.Info("starting wallet")
	walletInfo, err := l.wallet.Start(ctx)
	if err != nil {
		return APIConnection{}, fmt.Errorf("wallet failed to start: %w", err)
	}
	poller.SetPort(walletInfo.Port)

	select {
	case info := <-readyCh:
		l.logger.Info("wallet API ready",
			log.String("host", info.Host), log.Int(log.PortKey, info.Port))
		return info, nil
	case status := <-exitCh:
		return APIConnection{}, &BackendExitedError{Status: status}
	case <-ctx.Done():
		return APIConnection{}, ctx.Err()
	}
}

// Stop shuts both services down concurrently, each with the given graceful
// timeout, waits for both outcomes, and fires the exit event if it has not
// fired yet. Safe to call concurrently and repeatedly; every call returns
// the same combined status once both services have settled.
func (l *Launcher) Stop(ctx context.Context, timeout time.Duration) (ExitStatus, error) {
	l.stopping.Store(true)
	l.logger.Debug("stopping services", log.String("timeout", timeout.String()))

	type result struct {
		exit service.ExitStatus
		err  error
	}
	nodeCh := make(chan result, 1)
	walletCh := make(chan result, 1)

	go func() {
		exit, err := l.node.Stop(ctx, timeout)
		nodeCh <- result{exit, err}
	}()
	go func() {
		exit, err := l.wallet.Stop(ctx, timeout)
		walletCh <- result{exit, err}
	}()

	nodeRes := <-nodeCh
	walletRes := <-walletCh

	combined := ExitStatus{Node: nodeRes.exit, Wallet: walletRes.exit}
	if l.events.EmitExit(combined) {
		l.logger.Info("backend exited", log.String("status", ExitStatusMessage(combined)))
	}

	if l.bridge != nil {
		l.bridge.Uninstall()
	}

	return combined, multierr.Append(nodeRes.err, walletRes.err)
}

// pollerShouldStop halts readiness polling once either service has
// progressed past started, so a shutdown during startup does not leave the
// poller probing forever.
func (l *Launcher) pollerShouldStop() bool {
	return l.node.Status() > service.StatusStarted ||
		l.wallet.Status() > service.StatusStarted
}

// stopOnExit is the per-service status observer: when a service reaches
// stopped on its own, the whole launcher winds down. A stop that is already
// in progress (explicit Stop, signal) is not re-triggered by the transitions
// it causes.
func (l *Launcher) stopOnExit(h service.Handle) func(service.Status) {
	return func(status service.Status) {
		if status != service.StatusStopped || l.stopping.Load() || l.events.HasExited() {
			return
		}
		l.logger.Info("service stopped, shutting down the other",
			log.String(log.ServiceKey, h.Name()))
		go func() {
			if _, err := l.Stop(context.Background(), l.stopTimeout); err != nil {
				l.logger.Error("shutdown after service exit failed", log.Error(err))
			}
		}()
	}
}

// handleSignal is the signal bridge callback: a zero-timeout stop of both
// services. Errors are logged, never propagated; there is nowhere for a
// signal handler to return them.
func (l *Launcher) handleSignal(sig os.Signal) {
	if _, err := l.Stop(context.Background(), 0); err != nil {
		l.logger.Error("shutdown after signal failed",
			log.String(log.SignalKey, sig.String()), log.Error(err))
	}
}

// awaitExit blocks until the exit event's payload arrives and wraps it.
func (l *Launcher) awaitExit(ctx context.Context, exitCh <-chan ExitStatus) error {
	select {
	case status := <-exitCh:
		return &BackendExitedError{Status: status}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// nodeSpec builds the node's command line from configuration.
func nodeSpec(cfg *config.Config) service.CommandSpec {
	args := []string{"run", "--network", cfg.Network,
		"--database-path", filepath.Join(cfg.StateDir, "chain")}
	if cfg.Node.ConfigPath != "" {
		args = append(args, "--config", cfg.Node.ConfigPath)
	}
	args = append(args, cfg.Node.ExtraArgs...)

	return service.CommandSpec{
		Name:    nodeServiceName,
		Binary:  cfg.Node.Binary,
		Args:    args,
		LogFile: cfg.Node.LogFile,
	}
}

// walletSpec builds the wallet's command line from configuration. port is
// the resolved API port (configured or freshly allocated).
func walletSpec(cfg *config.Config, port int) service.CommandSpec {
	args := []string{"serve",
		"--host", cfg.Wallet.Host,
		"--port", strconv.Itoa(port),
		"--database", filepath.Join(cfg.StateDir, "wallet")}
	args = append(args, cfg.Wallet.ExtraArgs...)

	return service.CommandSpec{
		Name:    walletServiceName,
		Binary:  cfg.Wallet.Binary,
		Args:    args,
		LogFile: cfg.Wallet.LogFile,
		APIPort: port,
	}
}

// freePort asks the kernel for an unused TCP port on host.
func freePort(host string) (int, error) {
	ln, err := net.Listen("tcp", net.JoinHostPort(host, "0"))
	if err != nil {
		return 0, err
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port, nil
}
