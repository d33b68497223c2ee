// Package stats computes the aggregate summary of a completed trace:
// totals, the hottest instruction mnemonics, the single most-executed
// address, and call/ret/jump counts. It is a pure read pass over a
// *store.Store — no tracer or task dependency.
package stats

import (
	"sort"
	"strings"

	"github.com/ArchishmanSengupta/tiny-binary-debugger/pkg/store"
)

// MnemonicCount pairs a decoded mnemonic with how many samples executed it.
type MnemonicCount struct {
	Mnemonic string `json:"mnemonic"`
	Count    uint64 `json:"count"`
}

// AddressCount pairs an address with how many samples landed on it. Only
// ever populated as a singular MostExecuted value, not a top-N list — the
// original stats pass never exposes a per-address table.
type AddressCount struct {
	Addr  uint64 `json:"addr"`
	Count uint64 `json:"count"`
}

// Summary is the full stats-pass output (spec §4.x stats pass), shaped to
// match the reference TraceStats: total_steps, unique_addresses,
// instruction_counts (per mnemonic, top 20), most_executed_address,
// call_count, ret_count, jump_count.
type Summary struct {
	TotalSteps        uint64           `json:"total_steps"`
	UniqueAddresses   uint64           `json:"unique_addresses"`
	InstructionCounts []MnemonicCount  `json:"instruction_counts"`
	MostExecuted      AddressCount     `json:"most_executed_address"`
	CallCount         uint64           `json:"call_count"`
	RetCount          uint64           `json:"ret_count"`
	JumpCount         uint64           `json:"jump_count"`
}

// topN bounds instruction_counts to the 20 hottest mnemonics, matching the
// reference stats pass's instruction_counts.truncate(20).
const topN = 20

// Compute walks every entry in s and produces the summary described in
// spec's stats-pass section. It is safe to call on a store still being
// written to, though the result reflects only entries present at the
// time of the call.
func Compute(s *store.Store) Summary {
	entries := s.GetAll()

	addrCounts := make(map[uint64]uint64)
	insnCounts := make(map[string]uint64)
	var callCount, retCount, jumpCount uint64

	for _, e := range entries {
		addrCounts[e.PC]++

		mnemonic, _ := firstWord(e.InsnText)
		insnCounts[mnemonic]++

		// Classification mirrors the reference match arms exactly,
		// quirks included: only "bl" (not "blr") lands in the call
		// arm, so "blr" falls through to the jump arm below.
		switch {
		case mnemonic == "call" || mnemonic == "bl":
			callCount++
		case mnemonic == "ret" || mnemonic == "retq":
			retCount++
		case strings.HasPrefix(mnemonic, "j") || strings.HasPrefix(mnemonic, "b"):
			jumpCount++
		}
	}

	var most AddressCount
	for addr, c := range addrCounts {
		if c > most.Count || (c == most.Count && addr < most.Addr) {
			most = AddressCount{Addr: addr, Count: c}
		}
	}

	instructionCounts := make([]MnemonicCount, 0, len(insnCounts))
	for mnemonic, c := range insnCounts {
		instructionCounts = append(instructionCounts, MnemonicCount{Mnemonic: mnemonic, Count: c})
	}
	sort.Slice(instructionCounts, func(i, j int) bool {
		if instructionCounts[i].Count != instructionCounts[j].Count {
			return instructionCounts[i].Count > instructionCounts[j].Count
		}
		return instructionCounts[i].Mnemonic < instructionCounts[j].Mnemonic
	})
	if len(instructionCounts) > topN {
		instructionCounts = instructionCounts[:topN]
	}

	return Summary{
		TotalSteps:        uint64(len(entries)),
		UniqueAddresses:   uint64(len(addrCounts)),
		InstructionCounts: instructionCounts,
		MostExecuted:      most,
		CallCount:         callCount,
		RetCount:          retCount,
		JumpCount:         jumpCount,
	}
}

// firstWord recovers the bare mnemonic out of insn_text, which may carry
// a " ; CALL [depth:N]" annotation appended by the tracer.
func firstWord(insnText string) (string, string) {
	s := strings.TrimSpace(insnText)
	if idx := strings.IndexByte(s, ';'); idx >= 0 {
		s = strings.TrimSpace(s[:idx])
	}
	idx := strings.IndexByte(s, ' ')
	if idx < 0 {
		return s, ""
	}
	return s[:idx], s[idx+1:]
}
