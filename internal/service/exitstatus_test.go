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

import (
	"errors"
	"testing"
)

func TestExitStatusString(t *testing.T) {
	tests := []struct {
		name   string
		status ExitStatus
		want   string
	}{
		{"clean exit", ExitStatus{Kind: Exited, Code: 0}, "exited with status 0"},
		{"nonzero exit", ExitStatus{Kind: Exited, Code: 137}, "exited with status 137"},
		{"signalled", ExitStatus{Kind: Signalled, Signal: "terminated"}, "killed by signal terminated"},
		{"signalled without name", ExitStatus{Kind: Signalled}, "killed by signal"},
		{"failed to launch", ExitStatus{Kind: FailedToLaunch, Err: errors.New("no such file")}, "failed to launch: no such file"},
		{"failed to launch without error", ExitStatus{Kind: FailedToLaunch}, "failed to launch"},
		{"unknown", ExitStatus{}, "exit status unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
