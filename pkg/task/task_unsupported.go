// Copyright The OpenTelemetry Authors
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

//go:build !darwin

package task

import "github.com/pkg/errors"

// attach on a non-Darwin host always fails: task_for_pid and the Mach
// thread-state traps this package wraps only exist on macOS. The package
// still builds and its Fake is still usable for tests on any host.
func attach(pid int) (Handle, error) {
	return nil, wrapAttach(errors.Errorf("pid %d: task control requires macOS", pid))
}
