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

package launcher

import (
	"log/slog"
	"os"
	"os/signal"
	"sync"

	"github.com/tombee/launchpad/internal/log"
)

// SignalBridge relays termination-requesting process signals to a shutdown
// callback. Install and Uninstall are idempotent state transitions, so every
// shutdown path can call Uninstall without coordinating with the others.
type SignalBridge struct {
	onSignal func(os.Signal)
	logger   *slog.Logger

	mu        sync.Mutex
	installed bool
	ch        chan os.Signal
}

// NewSignalBridge creates a bridge that invokes onSignal for each received
// termination signal. onSignal must not panic; it runs on the bridge's
// relay goroutine.
func NewSignalBridge(onSignal func(os.Signal), logger *slog.Logger) *SignalBridge {
	return &SignalBridge{
		onSignal: onSignal,
		logger:   log.WithComponent(logger, "signals"),
	}
}

// Install registers the handlers. A no-op when already installed.
func (b *SignalBridge) Install() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.installed {
		return
	}
	b.installed = true
	b.ch = make(chan os.Signal, 1)
	signal.Notify(b.ch, terminationSignals()...)

	go b.relay(b.ch)
}

// Uninstall deregisters the handlers. A no-op after the first call.
func (b *SignalBridge) Uninstall() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.installed {
		return
	}
	b.installed = false
	signal.Stop(b.ch)
	// Safe after signal.Stop: the signal package no longer sends to ch.
	close(b.ch)
	b.ch = nil
}

func (b *SignalBridge) relay(ch chan os.Signal) {
	for sig := range ch {
		b.logger.Info("received signal", log.String(log.SignalKey, sig.String()))
		b.onSignal(sig)
	}
}
