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

package task

import "encoding/json"

// X86Regs is the full x86-64 general-purpose register file, captured via
// thread_get_state(..., X86_THREAD_STATE64, ...).
type X86Regs struct {
	Rax, Rbx, Rcx, Rdx uint64
	Rdi, Rsi, Rbp, Rsp uint64
	R8, R9, R10, R11   uint64
	R12, R13, R14, R15 uint64
	Rip, Rflags        uint64
}

func (r *X86Regs) Arch() Arch { return ArchX86_64 }
func (r *X86Regs) PC() uint64 { return r.Rip }
func (r *X86Regs) SP() uint64 { return r.Rsp }

func (r *X86Regs) GPR(name string) (uint64, bool) {
	switch name {
	case "rax":
		return r.Rax, true
	case "rbx":
		return r.Rbx, true
	case "rcx":
		return r.Rcx, true
	case "rdx":
		return r.Rdx, true
	case "rdi":
		return r.Rdi, true
	case "rsi":
		return r.Rsi, true
	case "rbp":
		return r.Rbp, true
	case "rsp":
		return r.Rsp, true
	case "rip":
		return r.Rip, true
	default:
		return 0, false
	}
}

// x86JSON mirrors X86Regs but with the json tags that fix the on-disk key
// order from spec: rax rbx rcx rdx rdi rsi rbp rsp r8 r9 r10 r11 r12 r13
// r14 r15 rip rflags. Go's encoding/json preserves struct field order on
// Marshal, so no custom encoder is needed to pin the schema.
type x86JSON struct {
	Rax    uint64 `json:"rax"`
	Rbx    uint64 `json:"rbx"`
	Rcx    uint64 `json:"rcx"`
	Rdx    uint64 `json:"rdx"`
	Rdi    uint64 `json:"rdi"`
	Rsi    uint64 `json:"rsi"`
	Rbp    uint64 `json:"rbp"`
	Rsp    uint64 `json:"rsp"`
	R8     uint64 `json:"r8"`
	R9     uint64 `json:"r9"`
	R10    uint64 `json:"r10"`
	R11    uint64 `json:"r11"`
	R12    uint64 `json:"r12"`
	R13    uint64 `json:"r13"`
	R14    uint64 `json:"r14"`
	R15    uint64 `json:"r15"`
	Rip    uint64 `json:"rip"`
	Rflags uint64 `json:"rflags"`
}

func (r *X86Regs) JSON() (string, error) {
	b, err := json.Marshal(x86JSON{
		Rax: r.Rax, Rbx: r.Rbx, Rcx: r.Rcx, Rdx: r.Rdx,
		Rdi: r.Rdi, Rsi: r.Rsi, Rbp: r.Rbp, Rsp: r.Rsp,
		R8: r.R8, R9: r.R9, R10: r.R10, R11: r.R11,
		R12: r.R12, R13: r.R13, R14: r.R14, R15: r.R15,
		Rip: r.Rip, Rflags: r.Rflags,
	})
	return string(b), err
}

// ARM64Regs is the full AArch64 general-purpose register file, captured
// via thread_get_state(..., ARM_THREAD_STATE64, ...). X holds x0..x28; fp
// and lr are the conventional names for x29/x30.
type ARM64Regs struct {
	X    [29]uint64
	Fp   uint64
	Lr   uint64
	Sp   uint64
	Pc   uint64
	Cpsr uint32
}

func (r *ARM64Regs) Arch() Arch { return ArchAArch64 }
func (r *ARM64Regs) PC() uint64 { return r.Pc }
func (r *ARM64Regs) SP() uint64 { return r.Sp }

func (r *ARM64Regs) GPR(name string) (uint64, bool) {
	switch name {
	case "x0":
		return r.X[0], true
	case "x1":
		return r.X[1], true
	case "sp":
		return r.Sp, true
	case "fp":
		return r.Fp, true
	case "lr":
		return r.Lr, true
	case "pc":
		return r.Pc, true
	default:
		if len(name) > 1 && name[0] == 'x' {
			if idx := parseXIndex(name[1:]); idx >= 0 && idx < len(r.X) {
				return r.X[idx], true
			}
		}
		return 0, false
	}
}

func parseXIndex(s string) int {
	n := 0
	if len(s) == 0 {
		return -1
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return -1
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// arm64JSON fixes the key order: x0..x28, fp, lr, sp, pc, cpsr. cpsr is
// widened to 64 bits in the JSON representation per spec even though the
// architectural register is 32 bits.
type arm64JSON struct {
	X0   uint64 `json:"x0"`
	X1   uint64 `json:"x1"`
	X2   uint64 `json:"x2"`
	X3   uint64 `json:"x3"`
	X4   uint64 `json:"x4"`
	X5   uint64 `json:"x5"`
	X6   uint64 `json:"x6"`
	X7   uint64 `json:"x7"`
	X8   uint64 `json:"x8"`
	X9   uint64 `json:"x9"`
	X10  uint64 `json:"x10"`
	X11  uint64 `json:"x11"`
	X12  uint64 `json:"x12"`
	X13  uint64 `json:"x13"`
	X14  uint64 `json:"x14"`
	X15  uint64 `json:"x15"`
	X16  uint64 `json:"x16"`
	X17  uint64 `json:"x17"`
	X18  uint64 `json:"x18"`
	X19  uint64 `json:"x19"`
	X20  uint64 `json:"x20"`
	X21  uint64 `json:"x21"`
	X22  uint64 `json:"x22"`
	X23  uint64 `json:"x23"`
	X24  uint64 `json:"x24"`
	X25  uint64 `json:"x25"`
	X26  uint64 `json:"x26"`
	X27  uint64 `json:"x27"`
	X28  uint64 `json:"x28"`
	Fp   uint64 `json:"fp"`
	Lr   uint64 `json:"lr"`
	Sp   uint64 `json:"sp"`
	Pc   uint64 `json:"pc"`
	Cpsr uint64 `json:"cpsr"`
}

func (r *ARM64Regs) JSON() (string, error) {
	j := arm64JSON{
		X0: r.X[0], X1: r.X[1], X2: r.X[2], X3: r.X[3], X4: r.X[4],
		X5: r.X[5], X6: r.X[6], X7: r.X[7], X8: r.X[8], X9: r.X[9],
		X10: r.X[10], X11: r.X[11], X12: r.X[12], X13: r.X[13], X14: r.X[14],
		X15: r.X[15], X16: r.X[16], X17: r.X[17], X18: r.X[18], X19: r.X[19],
		X20: r.X[20], X21: r.X[21], X22: r.X[22], X23: r.X[23], X24: r.X[24],
		X25: r.X[25], X26: r.X[26], X27: r.X[27], X28: r.X[28],
		Fp: r.Fp, Lr: r.Lr, Sp: r.Sp, Pc: r.Pc, Cpsr: uint64(r.Cpsr),
	}
	b, err := json.Marshal(j)
	return string(b), err
}
