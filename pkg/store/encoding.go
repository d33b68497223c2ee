package store

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/ArchishmanSengupta/tiny-binary-debugger/pkg/tdberr"
)

// Save serializes every entry to the bound path in step order, using the
// little-endian framing fixed by spec §6. It writes to a sibling .tmp file
// and renames into place so a crash mid-write never corrupts a prior
// trace (the save-atomicity redesign flag from spec §9).
func (s *Store) Save() error {
	entries := s.GetAll()

	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return errors.Wrapf(tdberr.ErrIO, "create %s: %v", tmp, err)
	}

	w := bufio.NewWriter(f)
	if err := writeAll(w, entries); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return errors.Wrapf(tdberr.ErrIO, "write %s: %v", tmp, err)
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return errors.Wrapf(tdberr.ErrIO, "flush %s: %v", tmp, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrapf(tdberr.ErrIO, "close %s: %v", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrapf(tdberr.ErrIO, "rename %s to %s: %v", tmp, s.path, err)
	}
	return nil
}

// Load deserializes a store previously written by Save.
func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(tdberr.ErrIO, "open %s: %v", path, err)
	}
	defer f.Close()

	entries, err := readAll(bufio.NewReader(f))
	if err != nil {
		return nil, errors.Wrapf(tdberr.ErrCorrupt, "decode %s: %v", path, err)
	}

	s := New(path)
	for _, e := range entries {
		s.entries[e.Step] = e
	}
	return s, nil
}

func writeAll(w io.Writer, entries []Entry) error {
	if err := binary.Write(w, binary.LittleEndian, uint64(len(entries))); err != nil {
		return err
	}
	for _, e := range entries {
		if err := writeEntry(w, e); err != nil {
			return err
		}
	}
	return nil
}

func writeEntry(w io.Writer, e Entry) error {
	for _, v := range []uint64{e.Step, e.PC} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	if err := writeBytes(w, e.InsnBytes); err != nil {
		return err
	}
	if err := writeString(w, e.InsnText); err != nil {
		return err
	}
	if err := writeString(w, e.Regs); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(len(e.MemChanges))); err != nil {
		return err
	}
	for _, mc := range e.MemChanges {
		if err := binary.Write(w, binary.LittleEndian, mc.Addr); err != nil {
			return err
		}
		if _, err := w.Write([]byte{mc.OldVal, mc.NewVal}); err != nil {
			return err
		}
	}
	return nil
}

func writeBytes(w io.Writer, b []byte) error {
	if err := binary.Write(w, binary.LittleEndian, uint64(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func writeString(w io.Writer, s string) error {
	return writeBytes(w, []byte(s))
}

func readAll(r io.Reader) ([]Entry, error) {
	var count uint64
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, count)
	for i := uint64(0); i < count; i++ {
		e, err := readEntry(r)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func readEntry(r io.Reader) (Entry, error) {
	var e Entry
	if err := binary.Read(r, binary.LittleEndian, &e.Step); err != nil {
		return Entry{}, err
	}
	if err := binary.Read(r, binary.LittleEndian, &e.PC); err != nil {
		return Entry{}, err
	}
	b, err := readBytes(r)
	if err != nil {
		return Entry{}, err
	}
	e.InsnBytes = b

	s, err := readBytes(r)
	if err != nil {
		return Entry{}, err
	}
	e.InsnText = string(s)

	s, err = readBytes(r)
	if err != nil {
		return Entry{}, err
	}
	e.Regs = string(s)

	var n uint64
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return Entry{}, err
	}
	e.MemChanges = make([]MemChange, n)
	for i := uint64(0); i < n; i++ {
		var addr uint64
		if err := binary.Read(r, binary.LittleEndian, &addr); err != nil {
			return Entry{}, err
		}
		var vals [2]byte
		if _, err := io.ReadFull(r, vals[:]); err != nil {
			return Entry{}, err
		}
		e.MemChanges[i] = MemChange{Addr: addr, OldVal: vals[0], NewVal: vals[1]}
	}
	return e, nil
}

func readBytes(r io.Reader) ([]byte, error) {
	var n uint64
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
	}
	return buf, nil
}
