package tracer

import (
	"testing"

	"github.com/ArchishmanSengupta/tiny-binary-debugger/pkg/task"
)

func TestContainsAny(t *testing.T) {
	cases := []struct {
		s     string
		stems []string
		want  bool
	}{
		{"push rbp", memMnemonicStems, true},
		{"mov rax, rbx", storeMnemonicStems, true},
		{"nop", memMnemonicStems, false},
		{"str x0, [sp]", memMnemonicStems, true},
	}
	for _, c := range cases {
		if got := containsAny(c.s, c.stems); got != c.want {
			t.Errorf("containsAny(%q, %v) = %v, want %v", c.s, c.stems, got, c.want)
		}
	}
}

func TestCallRetMnemonicTables(t *testing.T) {
	if !callMnemonics[task.ArchX86_64]["call"] {
		t.Fatal("expected x86_64 call table to include \"call\"")
	}
	if !retMnemonics[task.ArchAArch64]["ret"] {
		t.Fatal("expected aarch64 ret table to include \"ret\"")
	}
	if !callMnemonics[task.ArchAArch64]["bl"] {
		t.Fatal("expected aarch64 call table to include \"bl\"")
	}
}
