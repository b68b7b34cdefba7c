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

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tombee/launchpad/internal/config"
	"github.com/tombee/launchpad/internal/launcher"
	"github.com/tombee/launchpad/internal/log"
	"github.com/tombee/launchpad/internal/service"
)

func newRunCommand() *cobra.Command {
	var (
		configPath string
		stateDir   string
		network    string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start and supervise the node and wallet backend",
		Long: `Start the blockchain node, then the wallet backend, and supervise both
until they exit.

The wallet backend is only started once the node is up. The command logs the
wallet API address as soon as the endpoint accepts connections, then blocks
until both processes have ended. SIGINT, SIGTERM and SIGHUP shut both
processes down.`,
		Example: `  # Example 1: Run with a config file
  launchpad run --config /etc/launchpad/launchpad.yaml

  # Example 2: Override the state directory and network
  launchpad run --config launchpad.yaml --state-dir /tmp/launchpad --network testnet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if stateDir != "" {
				cfg.StateDir = stateDir
			}
			if network != "" {
				cfg.Network = network
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			return runLaunchpad(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "launchpad.yaml", "Path to launchpad config file")
	cmd.Flags().StringVar(&stateDir, "state-dir", "", "Override the configured state directory")
	cmd.Flags().StringVar(&network, "network", "", "Override the configured network")

	return cmd
}

func runLaunchpad(cmd *cobra.Command, cfg *config.Config) error {
	logger := log.New(log.FromEnv())

	l, err := launcher.New(cfg, logger)
	if err != nil {
		return err
	}

	// Subscribe before Start so an early exit cannot be missed.
	exitCh := make(chan launcher.ExitStatus, 1)
	l.Wallet().OnExit(func(status launcher.ExitStatus) {
		select {
		case exitCh <- status:
		default:
		}
	})

	api, err := l.Start(cmd.Context())
	if err != nil {
		var exited *launcher.BackendExitedError
		if errors.As(err, &exited) {
			fmt.Fprintln(cmd.ErrOrStderr(), launcher.ExitStatusMessage(exited.Status))
			return err
		}
		// Startup failed some other way; make sure nothing lingers.
		_, _ = l.Stop(context.Background(), 0)
		return err
	}

	logger.Info("wallet API available",
		log.String("host", api.Host), log.Int(log.PortKey, api.Port))

	status := <-exitCh
	fmt.Fprintln(cmd.OutOrStdout(), launcher.ExitStatusMessage(status))

	if status.Node.Kind == service.Exited && status.Node.Code == 0 {
		return nil
	}
	return fmt.Errorf("node %s", status.Node)
}
