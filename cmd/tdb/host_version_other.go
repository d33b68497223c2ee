//go:build !darwin

package main

import "errors"

// hostKernelVersion has no non-Darwin implementation: tdb's task control
// is Mach-only (see pkg/task/task_unsupported.go), so the version gate
// simply reports that there is nothing to parse on this host.
func hostKernelVersion() (string, error) {
	return "", errors.New("host kernel version gate only implemented on darwin")
}
