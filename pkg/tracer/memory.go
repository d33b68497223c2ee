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
	"github.com/ArchishmanSengupta/tiny-binary-debugger/pkg/store"
	"github.com/ArchishmanSengupta/tiny-binary-debugger/pkg/task"
)

const stackWindowSize = 256
const stackWindowHalf = 128

// detectStackWindow implements spec §4.3.3(a). It fires when sp moved
// since the last sample or the mnemonic looks like a stack op, reads a
// 256-byte window based at sp-128 (saturating at 0), diffs it against
// whatever was last cached at that exact base, and caches the new window
// regardless of whether a prior one existed.
func (e *Engine) detectStackWindow(sp uint64, spChanged bool, mnemonic string) []store.MemChange {
	if !spChanged && !containsAny(mnemonic, memMnemonicStems) {
		return nil
	}

	base := saturatingSub(sp, stackWindowHalf)
	newData, err := e.task.ReadMemory(base, stackWindowSize)
	if err != nil {
		return nil
	}

	var changes []store.MemChange
	if oldData, ok := e.memoryCache[base]; ok {
		n := len(newData)
		if len(oldData) < n {
			n = len(oldData)
		}
		for i := 0; i < n; i++ {
			if newData[i] != oldData[i] {
				changes = append(changes, store.MemChange{
					Addr:   base + uint64(i),
					OldVal: oldData[i],
					NewVal: newData[i],
				})
			}
		}
	}
	e.memoryCache[base] = newData
	return changes
}

// detectOperandProbe implements spec §4.3.3(b): for store/mov-like
// mnemonics, try to resolve a single-byte target address from the
// operand text and compare it against whatever 256-byte window (if any)
// already covers it.
func (e *Engine) detectOperandProbe(regs task.RegState, mnemonic, operands string) *store.MemChange {
	if !containsAny(mnemonic, storeMnemonicStems) {
		return nil
	}

	addr, ok := e.resolveOperandAddress(regs, operands)
	if !ok {
		return nil
	}

	newVal, err := e.task.ReadMemory(addr, 1)
	if err != nil || len(newVal) == 0 {
		return nil
	}

	base := addr &^ 0xFF
	oldData, ok := e.memoryCache[base]
	if !ok {
		return nil
	}
	offset := int(addr & 0xFF)
	if offset >= len(oldData) {
		return nil
	}
	if oldData[offset] == newVal[0] {
		return nil
	}
	return &store.MemChange{Addr: addr, OldVal: oldData[offset], NewVal: newVal[0]}
}

// resolveOperandAddress pattern-matches operands against the
// architecture's operand probe table; this is the documented-incomplete
// heuristic from spec §9 — complex addressing modes are silently skipped.
func (e *Engine) resolveOperandAddress(regs task.RegState, operands string) (uint64, bool) {
	for _, p := range operandProbeTable[e.arch] {
		if containsAny(operands, []string{p.Pattern}) {
			if v, ok := regs.GPR(p.Reg); ok {
				return v, true
			}
		}
	}
	return 0, false
}

func saturatingSub(a, b uint64) uint64 {
	if a < b {
		return 0
	}
	return a - b
}
