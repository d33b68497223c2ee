// Package disasm implements C2: a pure, stateless decode(bytes, address,
// arch) -> {mnemonic, operands, length} function. It holds no I/O and no
// mutable state; the tracer always hands it a 16-byte window and records
// the returned Bytes, which Decode cuts to the decoded Length.
package disasm

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/arch/arm64/arm64asm"
	"golang.org/x/arch/x86/x86asm"

	"github.com/ArchishmanSengupta/tiny-binary-debugger/pkg/task"
	"github.com/ArchishmanSengupta/tiny-binary-debugger/pkg/tdberr"
)

// Instruction is the decode result for one instruction at a given address.
type Instruction struct {
	Mnemonic string // lowercase, e.g. "mov", "call", "bl"
	Operands string // lowercase, comma-separated operand text
	Bytes    []byte // the raw encoded bytes, length == Length
	Length   int
}

// Text renders "<mnemonic> <operands>", the insn_text prefix the tracer
// appends CALL/RETURN annotations to.
func (i Instruction) Text() string {
	if i.Operands == "" {
		return i.Mnemonic
	}
	return i.Mnemonic + " " + i.Operands
}

// Decode disassembles the instruction at addr out of code, which the
// tracer always sizes at 16 bytes (enough for the 15-byte maximum x86-64
// instruction length; AArch64 instructions are always exactly 4).
func Decode(code []byte, addr uint64, arch task.Arch) (Instruction, error) {
	switch arch {
	case task.ArchX86_64:
		return decodeX86(code, addr)
	case task.ArchAArch64:
		return decodeARM64(code, addr)
	default:
		return Instruction{}, errors.Wrapf(tdberr.ErrBadInstruction, "unsupported arch %v", arch)
	}
}

func decodeX86(code []byte, addr uint64) (Instruction, error) {
	inst, err := x86asm.Decode(code, 64)
	if err != nil {
		return Instruction{}, errors.Wrapf(tdberr.ErrBadInstruction, "x86 decode at %#x: %v", addr, err)
	}
	mnemonic, operands := splitText(strings.ToLower(inst.String()))
	return Instruction{
		Mnemonic: mnemonic,
		Operands: operands,
		Bytes:    append([]byte(nil), code[:inst.Len]...),
		Length:   inst.Len,
	}, nil
}

// arm64InstLen is the fixed AArch64 instruction width; arm64asm.Decode
// never reports a variable length since every A64 encoding is 4 bytes.
const arm64InstLen = 4

func decodeARM64(code []byte, addr uint64) (Instruction, error) {
	if len(code) < arm64InstLen {
		return Instruction{}, errors.Wrapf(tdberr.ErrBadInstruction, "arm64 decode at %#x: short buffer", addr)
	}
	inst, err := arm64asm.Decode(code[:arm64InstLen])
	if err != nil {
		return Instruction{}, errors.Wrapf(tdberr.ErrBadInstruction, "arm64 decode at %#x: %v", addr, err)
	}
	mnemonic, operands := splitText(strings.ToLower(inst.String()))
	return Instruction{
		Mnemonic: mnemonic,
		Operands: operands,
		Bytes:    append([]byte(nil), code[:arm64InstLen]...),
		Length:   arm64InstLen,
	}, nil
}

func splitText(s string) (mnemonic, operands string) {
	s = strings.TrimSpace(s)
	idx := strings.IndexByte(s, ' ')
	if idx < 0 {
		return s, ""
	}
	return s[:idx], strings.TrimSpace(s[idx+1:])
}
