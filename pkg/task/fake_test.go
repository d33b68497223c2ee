package task_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArchishmanSengupta/tiny-binary-debugger/pkg/task"
)

func TestFakeReadRegsConsumesInOrder(t *testing.T) {
	r0 := &task.X86Regs{Rip: 0x100}
	r1 := &task.X86Regs{Rip: 0x104}
	f := task.NewFake(42, r0, r1)

	threads, err := f.ListThreads()
	require.NoError(t, err)
	require.Len(t, threads, 1)

	got0, err := f.ReadRegs(threads[0])
	require.NoError(t, err)
	assert.Equal(t, r0, got0)

	got1, err := f.ReadRegs(threads[0])
	require.NoError(t, err)
	assert.Equal(t, r1, got1)

	_, err = f.ReadRegs(threads[0])
	assert.Error(t, err, "exhausted state sequence should error")
}

func TestFakeMemoryReadWrite(t *testing.T) {
	f := task.NewFake(1)
	f.SetMemory(0x1000, []byte{1, 2, 3})

	got, err := f.ReadMemory(0x1000, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)

	got, err = f.ReadMemory(0x2000, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0}, got, "unwritten addresses read as zero")
}

func TestFakeFailReadMemory(t *testing.T) {
	f := task.NewFake(1)
	f.FailReadMemory = true
	_, err := f.ReadMemory(0, 1)
	assert.Error(t, err)
}

func TestFakeSuspendResumeCounters(t *testing.T) {
	f := task.NewFake(1)
	require.NoError(t, f.Suspend())
	require.NoError(t, f.Suspend())
	require.NoError(t, f.Resume())
	assert.Equal(t, 2, f.SuspendCount)
	assert.Equal(t, 1, f.ResumeCount)
}
