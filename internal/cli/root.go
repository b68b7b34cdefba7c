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

// Package cli assembles the launchpad command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// Version information (injected from main via SetVersion).
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// SetVersion sets the version information (called from main).
func SetVersion(v, c, b string) {
	version = v
	commit = c
	buildDate = b
}

// NewRootCommand creates the root Cobra command for launchpad.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "launchpad",
		Short: "Launchpad - node and wallet backend supervisor",
		Long: `Launchpad starts a blockchain node and the wallet backend that depends
on it, in that order, and supervises both. It waits for the wallet API to
accept connections, reports where to reach it, and shuts both processes down
together - gracefully first, forcefully after a timeout - on request, on a
signal, or when either process exits on its own.`,
		SilenceUsage:  true, // Don't show usage on errors
		SilenceErrors: true, // We handle errors ourselves for proper exit codes
	}

	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}
