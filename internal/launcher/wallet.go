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

import "errors"

// ErrNotReady is returned from WalletBackend.API before the wallet's
// endpoint has been observed accepting connections.
var ErrNotReady = errors.New("wallet API is not ready yet")

// APIConnection describes how to reach the wallet backend API.
type APIConnection struct {
	Host string
	Port int
}

// WalletBackend is the public facade over the supervised wallet service. The
// connection descriptor only becomes valid once the ready event has fired;
// callers gate on OnReady before calling API.
type WalletBackend struct {
	events *Events
}

// API returns the wallet API connection descriptor, or ErrNotReady when the
// endpoint has not yet accepted a connection.
func (w *WalletBackend) API() (APIConnection, error) {
	info, ok := w.events.Ready()
	if !ok {
		return APIConnection{}, ErrNotReady
	}
	return info, nil
}

// OnReady registers a handler invoked once the wallet API first accepts a
// connection. Handlers registered after the fact are invoked immediately.
func (w *WalletBackend) OnReady(fn func(APIConnection)) {
	w.events.OnReady(fn)
}

// OnExit registers a handler invoked once when the backend has exited.
// Handlers registered after the fact are invoked immediately.
func (w *WalletBackend) OnExit(fn func(ExitStatus)) {
	w.events.OnExit(fn)
}
