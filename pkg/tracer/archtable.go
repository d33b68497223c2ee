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

package tracer

import (
	"strings"

	"github.com/ArchishmanSengupta/tiny-binary-debugger/pkg/task"
)

// These tables are data, not code: per spec §9's design note, the
// CALL/RET mnemonic sets and the operand-to-register resolver are kept as
// per-architecture tables rather than a chain of arch-specific branches.

var callMnemonics = map[task.Arch]map[string]bool{
	task.ArchX86_64:  {"call": true},
	task.ArchAArch64: {"bl": true, "blr": true},
}

var retMnemonics = map[task.Arch]map[string]bool{
	task.ArchX86_64:  {"ret": true, "retq": true},
	task.ArchAArch64: {"ret": true},
}

// memMnemonicStems are the lowercase substrings that mark a mnemonic as
// memory-touching for the purposes of the stack-window detector (spec
// §4.3.3a). Checked with strings.Contains against the full mnemonic.
var memMnemonicStems = []string{"str", "st", "push", "pop"}

// storeMnemonicStems are the stems that trigger the operand-directed byte
// probe (spec §4.3.3b) — a strict subset of memMnemonicStems plus "mov".
var storeMnemonicStems = []string{"str", "st", "mov"}

// operandProbe is one entry of the per-architecture pattern table used to
// resolve a single-byte memory target from an operand string: if Pattern
// appears in the operand text, Reg names the register whose value is the
// target address.
type operandProbe struct {
	Pattern string
	Reg     string
}

var operandProbeTable = map[task.Arch][]operandProbe{
	task.ArchAArch64: {
		{Pattern: "[x0]", Reg: "x0"},
		{Pattern: "[x1]", Reg: "x1"},
		{Pattern: "[sp", Reg: "sp"},
	},
	task.ArchX86_64: {
		{Pattern: "[rax]", Reg: "rax"},
		{Pattern: "[rbx]", Reg: "rbx"},
		{Pattern: "[rsp", Reg: "rsp"},
	},
}

func containsAny(s string, stems []string) bool {
	for _, stem := range stems {
		if strings.Contains(s, stem) {
			return true
		}
	}
	return false
}
