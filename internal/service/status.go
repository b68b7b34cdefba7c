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

package service

// Status tracks a managed service through its lifecycle phases.
//
// The values are totally ordered: a service only ever moves to a higher
// status, and numeric comparison is meaningful. `s > StatusStarted` reads as
// "the service has progressed past running", i.e. it is stopping or stopped.
type Status int

const (
	// StatusNotStarted means Start has not been called.
	StatusNotStarted Status = iota
	// StatusStarting means Start has been called but the process is not yet up.
	StatusStarting
	// StatusStarted means the process is running.
	StatusStarted
	// StatusStopping means Stop has been called and the process is winding down.
	StatusStopping
	// StatusStopped means the process has ended, by request or on its own.
	StatusStopped
)

// String returns the human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusNotStarted:
		return "not-started"
	case StatusStarting:
		return "starting"
	case StatusStarted:
		return "started"
	case StatusStopping:
		return "stopping"
	case StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
