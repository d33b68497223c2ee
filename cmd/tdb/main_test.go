package main

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArchishmanSengupta/tiny-binary-debugger/pkg/store"
	"github.com/ArchishmanSengupta/tiny-binary-debugger/pkg/task"
	"github.com/ArchishmanSengupta/tiny-binary-debugger/pkg/tracer"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(nowhere{}, nil))
}

type nowhere struct{}

func (nowhere) Write(p []byte) (int, error) { return len(p), nil }

func TestTraceAndSaveFatalErrorPropagatesNonNil(t *testing.T) {
	// No programmed register states: every Step fails immediately, so
	// Run aborts with the "too many consecutive errors" error (spec.md
	// §8 E6). traceAndSave must still save and must still return that
	// error non-nil, so main's os.Exit(1) path actually fires.
	f := task.NewFake(1)
	dbPath := filepath.Join(t.TempDir(), "trace.tdb")
	eng := tracer.New(f, dbPath, task.ArchX86_64, discardLogger())

	err := traceAndSave(eng, 2, discardLogger(), func() bool { return false })
	require.Error(t, err, "a fatal trace loop must surface a non-nil error so the CLI exits non-zero")
	assert.EqualValues(t, 0, eng.StepCount(), "no step ever succeeded")
}

func TestTraceAndSaveFatalErrorStillSavesPartialStore(t *testing.T) {
	f := task.NewFake(1)
	dbPath := filepath.Join(t.TempDir(), "trace.tdb")
	eng := tracer.New(f, dbPath, task.ArchX86_64, discardLogger())

	err := traceAndSave(eng, 2, discardLogger(), func() bool { return false })
	require.Error(t, err)

	loaded, loadErr := store.Load(dbPath)
	require.NoError(t, loadErr)
	assert.EqualValues(t, 0, loaded.Count(), "E6: store has 0 entries and is still saved")
}

func TestTraceAndSaveCleanStopReturnsNil(t *testing.T) {
	regs := &task.X86Regs{Rip: 0x1000, Rsp: 0x7000}
	f := task.NewFake(1, regs)
	f.SetMemory(0x1000, []byte{0x90})
	dbPath := filepath.Join(t.TempDir(), "trace.tdb")
	eng := tracer.New(f, dbPath, task.ArchX86_64, discardLogger())

	calls := 0
	err := traceAndSave(eng, 2, discardLogger(), func() bool {
		calls++
		return calls > 1
	})
	require.NoError(t, err)
}

func TestParseArchDefaultsAndRejectsUnknown(t *testing.T) {
	assert.Equal(t, task.ArchX86_64, parseArch("x86_64"))
	assert.Equal(t, task.ArchX86_64, parseArch("amd64"))
	assert.Equal(t, task.ArchAArch64, parseArch("aarch64"))
	assert.Equal(t, task.ArchAArch64, parseArch("arm64"))
	assert.Equal(t, task.ArchUnknown, parseArch("mips"))
}
