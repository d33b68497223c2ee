package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArchishmanSengupta/tiny-binary-debugger/pkg/store"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trace.tdb")

	s := store.New(path)
	s.Insert(store.Entry{
		Step:      0,
		PC:        0x1000,
		InsnBytes: []byte{0x90},
		InsnText:  "nop",
		Regs:      `{"rip":4096}`,
		MemChanges: []store.MemChange{
			{Addr: 0x2000, OldVal: 1, NewVal: 2},
		},
	})
	s.Insert(store.Entry{Step: 1, PC: 0x1001, InsnText: "ret"})

	require.NoError(t, s.Save())

	loaded, err := store.Load(path)
	require.NoError(t, err)
	assert.EqualValues(t, 2, loaded.Count())

	e0, ok := loaded.Get(0)
	require.True(t, ok)
	assert.Equal(t, "nop", e0.InsnText)
	assert.Equal(t, []byte{0x90}, e0.InsnBytes)
	assert.Equal(t, `{"rip":4096}`, e0.Regs)
	require.Len(t, e0.MemChanges, 1)
	assert.Equal(t, store.MemChange{Addr: 0x2000, OldVal: 1, NewVal: 2}, e0.MemChanges[0])

	e1, ok := loaded.Get(1)
	require.True(t, ok)
	assert.Equal(t, "ret", e1.InsnText)
}

func TestSaveLeavesNoTmpFileBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trace.tdb")

	s := store.New(path)
	s.Insert(store.Entry{Step: 0})
	require.NoError(t, s.Save())

	_, err := os.Lstat(path + ".tmp")
	assert.Error(t, err, "tmp file should have been renamed away")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := store.Load(filepath.Join(t.TempDir(), "missing.tdb"))
	assert.Error(t, err)
}
