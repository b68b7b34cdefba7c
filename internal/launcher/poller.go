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
	"context"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/tombee/launchpad/internal/log"
)

// readinessInterval is the fixed delay between connection attempts.
const readinessInterval = 250 * time.Millisecond

// ReadinessPoller probes a TCP endpoint at a fixed interval until it accepts
// a connection or the stop predicate becomes true.
//
// The port may become known only after Run has begun; ticks no-op until
// SetPort is called. Each attempt is bounded by the poll interval, so a hung
// connect is abandoned before the next attempt starts. Failed attempts are
// logged at debug and retried; they never end polling on their own.
type ReadinessPoller struct {
	host       string
	interval   time.Duration
	shouldStop func() bool
	onReady    func(port int)
	logger     *slog.Logger

	mu   sync.Mutex
	port int
}

// NewReadinessPoller creates a poller for host. shouldStop is evaluated on
// every tick; when it reports true, polling halts silently. onReady is
// invoked at most once, on the first successful connection.
func NewReadinessPoller(host string, shouldStop func() bool, onReady func(port int), logger *slog.Logger) *ReadinessPoller {
	return &ReadinessPoller{
		host:       host,
		interval:   readinessInterval,
		shouldStop: shouldStop,
		onReady:    onReady,
		logger:     log.WithComponent(logger, "readiness"),
	}
}

// SetPort supplies the port to probe. Safe to call after Run has started.
func (p *ReadinessPoller) SetPort(port int) {
	p.mu.Lock()
	p.port = port
	p.mu.Unlock()
}

// Port returns the configured port, zero when not yet known.
func (p *ReadinessPoller) Port() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.port
}

// Run polls until success, the stop predicate, or context cancellation.
// It blocks; callers run it in a goroutine.
func (p *ReadinessPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if p.shouldStop() {
			p.logger.Debug("polling halted by stop predicate")
			return
		}

		port := p.Port()
		if port == 0 {
			continue
		}

		if p.probe(ctx, port) {
			p.logger.Debug("endpoint accepted connection", log.Int(log.PortKey, port))
			p.onReady(port)
			return
		}
	}
}

// probe makes one connection attempt, bounded by the poll interval.
func (p *ReadinessPoller) probe(ctx context.Context, port int) bool {
	dialCtx, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()

	var dialer net.Dialer
	conn, err := dialer.DialContext(dialCtx, "tcp", net.JoinHostPort(p.host, strconv.Itoa(port)))
	if err != nil {
		p.logger.Debug("endpoint not ready", log.Int(log.PortKey, port), log.Error(err))
		return false
	}
	_ = conn.Close()
	return true
}
