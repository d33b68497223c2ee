//go:build darwin

package main

import "golang.org/x/sys/unix"

// hostKernelVersion reads the Darwin kernel release string (e.g.
// "23.1.0") via uname(2), the same string go-version's ABI gate parses
// in the teacher's analyze.go.
func hostKernelVersion() (string, error) {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return "", err
	}
	return cstr(u.Release[:]), nil
}

func cstr(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
