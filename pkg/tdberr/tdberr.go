// Package tdberr defines the sentinel error kinds shared across tdb's
// components, so callers can classify a failure with errors.Is instead of
// string matching.
package tdberr

import "errors"

var (
	// ErrAttachFailed means the kernel refused to grant a task reference
	// for a PID (permissions, entitlements, or a nonexistent process).
	// Fatal to the tracing session.
	ErrAttachFailed = errors.New("tdb: attach failed")

	// ErrUnmapped means a memory read returned short or was refused by
	// the kernel. Recoverable per-step.
	ErrUnmapped = errors.New("tdb: memory unmapped")

	// ErrBadInstruction means the disassembler could not decode the
	// bytes at the program counter. Treated identically to ErrUnmapped
	// by the tracer's retry policy.
	ErrBadInstruction = errors.New("tdb: bad instruction")

	// ErrCorrupt means a trace file failed to deserialize. Fatal to the
	// viewer and stats paths.
	ErrCorrupt = errors.New("tdb: corrupt trace file")

	// ErrIO wraps a save/load filesystem failure. Fatal at session end.
	ErrIO = errors.New("tdb: i/o error")
)
