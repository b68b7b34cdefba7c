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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tombee/launchpad/internal/service"
)

func TestExitStatusMessage(t *testing.T) {
	tests := []struct {
		name   string
		status ExitStatus
		want   string
	}{
		{
			name: "both clean",
			status: ExitStatus{
				Node:   service.ExitStatus{Kind: service.Exited, Code: 0},
				Wallet: service.ExitStatus{Kind: service.Exited, Code: 0},
			},
			want: "node exited with status 0\nwallet exited with status 0",
		},
		{
			name: "node signalled, wallet failed",
			status: ExitStatus{
				Node:   service.ExitStatus{Kind: service.Signalled, Signal: "terminated"},
				Wallet: service.ExitStatus{Kind: service.FailedToLaunch, Err: errors.New("port in use")},
			},
			want: "node killed by signal terminated\nwallet failed to launch: port in use",
		},
		{
			name: "both unknown",
			status: ExitStatus{},
			want: "node exit status unknown\nwallet exit status unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitStatusMessage(tt.status))
			// Deterministic: same input, same output.
			assert.Equal(t, ExitStatusMessage(tt.status), ExitStatusMessage(tt.status))
		})
	}
}

func TestBackendExitedError(t *testing.T) {
	err := &BackendExitedError{Status: ExitStatus{
		Node:   service.ExitStatus{Kind: service.Exited, Code: 1},
		Wallet: service.ExitStatus{Kind: service.Exited, Code: 0},
	}}

	assert.Contains(t, err.Error(), "wallet backend exited")
	assert.Contains(t, err.Error(), "node exited with status 1")
	assert.Contains(t, err.Error(), "wallet exited with status 0")
}
