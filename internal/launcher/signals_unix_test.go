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

package launcher

import (
	"context"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/launchpad/internal/service"
)

func TestSignalBridge_RelayAndIdempotentTeardown(t *testing.T) {
	var received atomic.Int32
	bridge := NewSignalBridge(func(os.Signal) { received.Add(1) }, testLogger())

	bridge.Install()
	bridge.Install() // no-op

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGHUP))

	deadline := time.Now().Add(5 * time.Second)
	for received.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, int32(1), received.Load(), "signal not relayed")

	// Teardown from multiple shutdown paths must be safe.
	bridge.Uninstall()
	bridge.Uninstall()
}

func TestSignalBridge_UninstallBeforeInstall(t *testing.T) {
	bridge := NewSignalBridge(func(os.Signal) {}, testLogger())
	bridge.Uninstall() // must be a no-op, not a panic
}

func TestLauncher_SignalTriggersZeroTimeoutStop(t *testing.T) {
	port, closeLn := listenPort(t)
	defer closeLn()

	node := newFakeHandle("node")
	wallet := newFakeHandle("wallet")
	wallet.startInfo = service.StartInfo{Port: port}

	l := newLauncher(node, wallet, options{installSignals: true}, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := l.Start(ctx)
	require.NoError(t, err)

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGHUP))

	status := awaitBackendExit(t, l)
	assert.NotNil(t, status)

	nodeTimeout, ok := node.firstStopTimeout()
	require.True(t, ok, "node stop not invoked after signal")
	assert.Equal(t, time.Duration(0), nodeTimeout, "signal path must stop with zero timeout")

	walletTimeout, ok := wallet.firstStopTimeout()
	require.True(t, ok, "wallet stop not invoked after signal")
	assert.Equal(t, time.Duration(0), walletTimeout)

	// Handlers are deregistered by the stop path; a later explicit stop must
	// not panic on double-deregistration and returns the same outcome.
	combined, err := l.Stop(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, status, combined)
}
