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

import "fmt"

// ExitKind discriminates the terminal outcome of a managed service.
type ExitKind int

const (
	// ExitUnknown means the process outcome could not be determined, or the
	// service was never started.
	ExitUnknown ExitKind = iota
	// Exited means the process ended on its own with an exit code.
	Exited
	// Signalled means the process was ended by an OS signal.
	Signalled
	// FailedToLaunch means the process could not be started at all.
	FailedToLaunch
)

// ExitStatus is the terminal outcome of one managed service. It is produced
// exactly once, when the process ends (or fails to start), and never changes
// afterwards.
type ExitStatus struct {
	Kind ExitKind

	// Code is the process exit code. Valid only when Kind == Exited.
	Code int

	// Signal names the terminating signal. Valid only when Kind == Signalled.
	Signal string

	// Err is the launch error. Valid only when Kind == FailedToLaunch.
	Err error
}

// String renders the outcome as one human-readable clause, total over all
// variants.
func (e ExitStatus) String() string {
	switch e.Kind {
	case Exited:
		return fmt.Sprintf("exited with status %d", e.Code)
	case Signalled:
		if e.Signal == "" {
			return "killed by signal"
		}
		return fmt.Sprintf("killed by signal %s", e.Signal)
	case FailedToLaunch:
		if e.Err == nil {
			return "failed to launch"
		}
		return fmt.Sprintf("failed to launch: %v", e.Err)
	default:
		return "exit status unknown"
	}
}
