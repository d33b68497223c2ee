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

//go:build darwin

package task

/*
#cgo LDFLAGS: -framework Foundation
#include <mach/mach.h>
#include <mach/mach_vm.h>
#include <stdlib.h>

static kern_return_t tdb_task_for_pid(pid_t pid, task_t *task) {
	return task_for_pid(mach_task_self(), pid, task);
}

static kern_return_t tdb_task_suspend(task_t task) {
	return task_suspend(task);
}

static kern_return_t tdb_task_resume(task_t task) {
	return task_resume(task);
}

static kern_return_t tdb_task_threads(task_t task, thread_act_t **threads, mach_msg_type_number_t *count) {
	return task_threads(task, threads, count);
}

static kern_return_t tdb_read_memory(task_t task, mach_vm_address_t addr, mach_vm_size_t size, void *out, mach_vm_size_t *out_size) {
	return mach_vm_read_overwrite(task, addr, size, (mach_vm_address_t)out, out_size);
}

#define TDB_X86_THREAD_STATE64 4
#define TDB_ARM_THREAD_STATE64 6

static kern_return_t tdb_thread_state(thread_act_t thread, int flavor, void *state, mach_msg_type_number_t count) {
	return thread_get_state(thread, flavor, (thread_state_t)state, &count);
}
*/
import "C"

import (
	"runtime"
	"unsafe"

	"github.com/pkg/errors"
)

// darwinHandle attaches to a target process via its Mach task port. This
// is the ptrace-less primitive the spec calls for: task_for_pid grants
// read/suspend/resume rights over the whole task without ever setting a
// trap flag or installing a debug register.
type darwinHandle struct {
	pid  int
	task C.task_t
}

func attach(pid int) (Handle, error) {
	var t C.task_t
	kr := C.tdb_task_for_pid(C.pid_t(pid), &t)
	if kr != C.KERN_SUCCESS {
		return nil, wrapAttach(errors.Errorf("task_for_pid kr=%d", int(kr)))
	}
	return &darwinHandle{pid: pid, task: t}, nil
}

func (h *darwinHandle) PID() int { return h.pid }

func (h *darwinHandle) Suspend() error {
	if kr := C.tdb_task_suspend(h.task); kr != C.KERN_SUCCESS {
		return errors.Errorf("task_suspend kr=%d", int(kr))
	}
	return nil
}

func (h *darwinHandle) Resume() error {
	if kr := C.tdb_task_resume(h.task); kr != C.KERN_SUCCESS {
		return errors.Errorf("task_resume kr=%d", int(kr))
	}
	return nil
}

func (h *darwinHandle) ReadMemory(addr uint64, length int) ([]byte, error) {
	buf := make([]byte, length)
	var outSize C.mach_vm_size_t
	kr := C.tdb_read_memory(
		h.task,
		C.mach_vm_address_t(addr),
		C.mach_vm_size_t(length),
		unsafe.Pointer(&buf[0]),
		&outSize,
	)
	if kr != C.KERN_SUCCESS {
		return nil, wrapUnmapped("read_memory", errors.Errorf("mach_vm_read_overwrite kr=%d", int(kr)))
	}
	return buf[:int(outSize)], nil
}

func (h *darwinHandle) ListThreads() ([]Thread, error) {
	var list *C.thread_act_t
	var count C.mach_msg_type_number_t
	kr := C.tdb_task_threads(h.task, &list, &count)
	if kr != C.KERN_SUCCESS {
		return nil, errors.Errorf("task_threads kr=%d", int(kr))
	}
	n := int(count)
	out := make([]Thread, n)
	slice := unsafe.Slice(list, n)
	for i := 0; i < n; i++ {
		out[i] = Thread(slice[i])
	}
	return out, nil
}

func (h *darwinHandle) ReadRegs(t Thread) (RegState, error) {
	switch runtime.GOARCH {
	case "arm64":
		var raw [34]uint64 // 29 x regs + fp + lr + sp + pc + (cpsr+pad packed as one word)
		kr := C.tdb_thread_state(
			C.thread_act_t(t),
			C.TDB_ARM_THREAD_STATE64,
			unsafe.Pointer(&raw[0]),
			C.mach_msg_type_number_t(len(raw)*2),
		)
		if kr != C.KERN_SUCCESS {
			return nil, errors.Errorf("thread_get_state kr=%d", int(kr))
		}
		regs := &ARM64Regs{}
		copy(regs.X[:], raw[0:29])
		regs.Fp = raw[29]
		regs.Lr = raw[30]
		regs.Sp = raw[31]
		regs.Pc = raw[32]
		regs.Cpsr = uint32(raw[33])
		return regs, nil
	default: // amd64
		var raw [21]uint64
		kr := C.tdb_thread_state(
			C.thread_act_t(t),
			C.TDB_X86_THREAD_STATE64,
			unsafe.Pointer(&raw[0]),
			C.mach_msg_type_number_t(len(raw)*2),
		)
		if kr != C.KERN_SUCCESS {
			return nil, errors.Errorf("thread_get_state kr=%d", int(kr))
		}
		return &X86Regs{
			Rax: raw[0], Rbx: raw[1], Rcx: raw[2], Rdx: raw[3],
			Rdi: raw[4], Rsi: raw[5], Rbp: raw[6], Rsp: raw[7],
			R8: raw[8], R9: raw[9], R10: raw[10], R11: raw[11],
			R12: raw[12], R13: raw[13], R14: raw[14], R15: raw[15],
			Rip: raw[16], Rflags: raw[17],
		}, nil
	}
}
