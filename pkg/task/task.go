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

// Package task abstracts the macOS Mach task/thread primitives the tracer
// needs: attach, suspend/resume, memory reads, and register snapshots. The
// shape of a register file differs by architecture, so RegState is a small
// capability interface rather than a single struct — the call-site only
// ever needs pc(), sp(), and named-register lookup, never the full layout.
package task

import (
	"github.com/pkg/errors"

	"github.com/ArchishmanSengupta/tiny-binary-debugger/pkg/tdberr"
)

// Arch identifies the instruction-set architecture of a traced task.
type Arch int

const (
	ArchUnknown Arch = iota
	ArchX86_64
	ArchAArch64
)

func (a Arch) String() string {
	switch a {
	case ArchX86_64:
		return "x86_64"
	case ArchAArch64:
		return "aarch64"
	default:
		return "unknown"
	}
}

// Thread is an opaque handle to one thread within an attached task. On
// Darwin this is a mach_port_t; the fake implementation uses it as a plain
// index.
type Thread uint32

// RegState is the read-only view of one thread's register file the tracer
// consumes. Concrete types (X86Regs, ARM64Regs) carry the full
// architectural layout; RegState exposes only what step() needs.
type RegState interface {
	Arch() Arch
	PC() uint64
	SP() uint64
	// GPR looks up a general-purpose register by its disassembler-visible
	// name (e.g. "rax", "x0", "sp"). Used only by the operand-directed
	// memory probe (see tracer.resolveOperandAddress).
	GPR(name string) (uint64, bool)
	// JSON renders the fixed key schema for this architecture, in the
	// order required by the on-disk/wire format.
	JSON() (string, error)
}

// Handle is a live attachment to a target process's Mach task.
type Handle interface {
	PID() int
	Suspend() error
	Resume() error
	ReadMemory(addr uint64, length int) ([]byte, error)
	ListThreads() ([]Thread, error)
	ReadRegs(t Thread) (RegState, error)
}

// Attach acquires a task reference for pid. On macOS this wraps
// task_for_pid; on every other host it fails with ErrAttachFailed, keeping
// this package buildable (and its Fake usable) everywhere.
func Attach(pid int) (Handle, error) {
	return attach(pid)
}

func wrapAttach(cause error) error {
	return errors.Wrapf(tdberr.ErrAttachFailed, "pid attach: %v", cause)
}

func wrapUnmapped(op string, cause error) error {
	return errors.Wrapf(tdberr.ErrUnmapped, "%s: %v", op, cause)
}
