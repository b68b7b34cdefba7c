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
	"slices"
	"sync"
)

// Events is the launcher's publish/subscribe surface for its two terminal
// events: ready (the wallet API accepted its first connection) and exit (both
// services have ended).
//
// Emission is at-most-once per event. Multiple producers race to emit exit
// (self-exit of either service, explicit Stop, a signal); the first writer
// wins and every other producer observes the flag already set. Handlers that
// subscribe after an event has fired are invoked immediately with the
// recorded payload, so a subscription can never miss an emission.
type Events struct {
	mu sync.Mutex

	readyFired bool
	readyInfo  APIConnection
	onReady    []func(APIConnection)

	exitFired  bool
	exitStatus ExitStatus
	onExit     []func(ExitStatus)
}

// NewEvents creates an empty event surface.
func NewEvents() *Events {
	return &Events{}
}

// OnReady registers a handler for the ready event.
func (e *Events) OnReady(fn func(APIConnection)) {
	e.mu.Lock()
	if e.readyFired {
		info := e.readyInfo
		e.mu.Unlock()
		fn(info)
		return
	}
	e.onReady = append(e.onReady, fn)
	e.mu.Unlock()
}

// OnExit registers a handler for the exit event.
func (e *Events) OnExit(fn func(ExitStatus)) {
	e.mu.Lock()
	if e.exitFired {
		status := e.exitStatus
		e.mu.Unlock()
		fn(status)
		return
	}
	e.onExit = append(e.onExit, fn)
	e.mu.Unlock()
}

// EmitReady fires the ready event. It is a no-op if ready has already fired
// or if the backend has already exited. Reports whether this call fired the
// event.
func (e *Events) EmitReady(info APIConnection) bool {
	e.mu.Lock()
	if e.readyFired || e.exitFired {
		e.mu.Unlock()
		return false
	}
	e.readyFired = true
	e.readyInfo = info
	handlers := slices.Clone(e.onReady)
	e.mu.Unlock()

	for _, fn := range handlers {
		fn(info)
	}
	return true
}

// EmitExit fires the exit event. First writer wins; every later call is a
// no-op. Reports whether this call fired the event.
func (e *Events) EmitExit(status ExitStatus) bool {
	e.mu.Lock()
	if e.exitFired {
		e.mu.Unlock()
		return false
	}
	e.exitFired = true
	e.exitStatus = status
	handlers := slices.Clone(e.onExit)
	e.mu.Unlock()

	for _, fn := range handlers {
		fn(status)
	}
	return true
}

// Ready reports whether the ready event has fired, and with what payload.
func (e *Events) Ready() (APIConnection, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.readyInfo, e.readyFired
}

// HasExited reports whether the exit event has fired.
func (e *Events) HasExited() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exitFired
}
