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

//go:build unix

package service

import (
	"os"
	"os/exec"
	"syscall"
)

// setSysProcAttr puts the child in its own process group so that terminal
// signals (^C) reach the launcher only; the launcher decides how shutdown
// propagates to the children.
func setSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}

// terminate asks the process to shut down gracefully.
func terminate(proc *os.Process) error {
	return proc.Signal(syscall.SIGTERM)
}

// terminationSignal reports the signal that ended the process, if any.
func terminationSignal(exitErr *exec.ExitError) (string, bool) {
	ws, ok := exitErr.Sys().(syscall.WaitStatus)
	if !ok || !ws.Signaled() {
		return "", false
	}
	return ws.Signal().String(), true
}
