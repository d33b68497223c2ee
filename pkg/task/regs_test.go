package task_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArchishmanSengupta/tiny-binary-debugger/pkg/task"
)

func TestX86RegsJSONKeyOrder(t *testing.T) {
	r := &task.X86Regs{Rax: 1, Rsp: 2, Rip: 3}
	j, err := r.JSON()
	require.NoError(t, err)
	assert.Regexp(t, `^\{"rax":1,"rbx":0,"rcx":0,"rdx":0,"rdi":0,"rsi":0,"rbp":0,"rsp":2,"r8":0,"r9":0,"r10":0,"r11":0,"r12":0,"r13":0,"r14":0,"r15":0,"rip":3,"rflags":0\}$`, j)
}

func TestX86RegsAccessors(t *testing.T) {
	r := &task.X86Regs{Rip: 0x400000, Rsp: 0x7fff0000}
	assert.Equal(t, task.ArchX86_64, r.Arch())
	assert.EqualValues(t, 0x400000, r.PC())
	assert.EqualValues(t, 0x7fff0000, r.SP())

	v, ok := r.GPR("rax")
	assert.True(t, ok)
	assert.EqualValues(t, 0, v)

	_, ok = r.GPR("x0")
	assert.False(t, ok)
}

func TestARM64RegsJSONKeyOrder(t *testing.T) {
	r := &task.ARM64Regs{Sp: 5, Pc: 6, Cpsr: 7}
	r.X[0] = 9
	j, err := r.JSON()
	require.NoError(t, err)
	assert.Contains(t, j, `"x0":9`)
	assert.Contains(t, j, `"sp":5`)
	assert.Contains(t, j, `"pc":6`)
	assert.Contains(t, j, `"cpsr":7`)
	assert.Regexp(t, `^\{"x0":9,"x1":0,.*,"x28":0,"fp":0,"lr":0,"sp":5,"pc":6,"cpsr":7\}$`, j)
}

func TestARM64RegsAccessors(t *testing.T) {
	r := &task.ARM64Regs{Pc: 0x1000, Sp: 0x2000}
	r.X[3] = 42
	assert.Equal(t, task.ArchAArch64, r.Arch())
	assert.EqualValues(t, 0x1000, r.PC())
	assert.EqualValues(t, 0x2000, r.SP())

	v, ok := r.GPR("x3")
	assert.True(t, ok)
	assert.EqualValues(t, 42, v)

	v, ok = r.GPR("sp")
	assert.True(t, ok)
	assert.EqualValues(t, 0x2000, v)

	_, ok = r.GPR("x99")
	assert.False(t, ok)

	_, ok = r.GPR("notareg")
	assert.False(t, ok)
}

func TestArchString(t *testing.T) {
	assert.Equal(t, "x86_64", task.ArchX86_64.String())
	assert.Equal(t, "aarch64", task.ArchAArch64.String())
	assert.Equal(t, "unknown", task.ArchUnknown.String())
}
