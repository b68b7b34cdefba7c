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
	"fmt"

	"github.com/tombee/launchpad/internal/service"
)

// ExitStatus pairs the terminal outcomes of both managed services.
type ExitStatus struct {
	Node   service.ExitStatus
	Wallet service.ExitStatus
}

// ExitStatusMessage renders the combined outcome as one line per service,
// node before wallet. Pure and total over all variants; used for logs and
// error messages.
func ExitStatusMessage(status ExitStatus) string {
	return fmt.Sprintf("%s %s\n%s %s",
		nodeServiceName, status.Node,
		walletServiceName, status.Wallet)
}

// BackendExitedError is returned from Start when the backend ends before the
// wallet API ever became ready, and carries the combined outcome.
type BackendExitedError struct {
	Status ExitStatus
}

func (e *BackendExitedError) Error() string {
	return "wallet backend exited: " + ExitStatusMessage(e.Status)
}
