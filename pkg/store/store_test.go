package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArchishmanSengupta/tiny-binary-debugger/pkg/store"
)

func TestInsertGet(t *testing.T) {
	s := store.New("unused.tdb")
	e := store.Entry{Step: 3, PC: 0x1000, InsnText: "nop"}
	s.Insert(e)

	got, ok := s.Get(3)
	require.True(t, ok)
	assert.Equal(t, e, got)

	_, ok = s.Get(4)
	assert.False(t, ok)
}

func TestGetRangeOrdered(t *testing.T) {
	s := store.New("unused.tdb")
	for _, step := range []uint64{5, 1, 3, 2, 4} {
		s.Insert(store.Entry{Step: step, PC: step * 0x10})
	}

	got := s.GetRange(2, 4)
	require.Len(t, got, 3)
	assert.Equal(t, []uint64{2, 3, 4}, []uint64{got[0].Step, got[1].Step, got[2].Step})
}

func TestGetAllOrderedAndCount(t *testing.T) {
	s := store.New("unused.tdb")
	s.Insert(store.Entry{Step: 2})
	s.Insert(store.Entry{Step: 0})
	s.Insert(store.Entry{Step: 1})

	assert.EqualValues(t, 3, s.Count())
	all := s.GetAll()
	require.Len(t, all, 3)
	assert.Equal(t, []uint64{0, 1, 2}, []uint64{all[0].Step, all[1].Step, all[2].Step})
}

func TestInsertOverwritesSameStep(t *testing.T) {
	s := store.New("unused.tdb")
	s.Insert(store.Entry{Step: 0, PC: 1})
	s.Insert(store.Entry{Step: 0, PC: 2})

	assert.EqualValues(t, 1, s.Count())
	got, ok := s.Get(0)
	require.True(t, ok)
	assert.EqualValues(t, 2, got.PC)
}
