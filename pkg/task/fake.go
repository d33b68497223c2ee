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

package task

import (
	"sync"

	"github.com/ArchishmanSengupta/tiny-binary-debugger/pkg/tdberr"
)

// Fake is an in-memory Handle used by the tracer and CLI tests. Each call
// to ReadRegs advances to the next programmed RegState; memory is a sparse
// byte map callers mutate directly between steps to simulate the target
// writing to its own address space.
type Fake struct {
	mu sync.Mutex

	pid     int
	states  []RegState // one per step, consumed in order by ReadRegs
	cursor  int
	mem     map[uint64]byte
	threads []Thread

	SuspendCount int
	ResumeCount  int

	// FailReadMemory, when true, makes every ReadMemory call fail with
	// ErrUnmapped — used to drive the "consecutive failures" scenarios.
	FailReadMemory bool
}

// NewFake builds a Fake task with a single thread (id 0) and the given
// sequence of register snapshots, one consumed per ReadRegs call.
func NewFake(pid int, states ...RegState) *Fake {
	return &Fake{
		pid:     pid,
		states:  states,
		mem:     make(map[uint64]byte),
		threads: []Thread{0},
	}
}

func (f *Fake) PID() int { return f.pid }

func (f *Fake) Suspend() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SuspendCount++
	return nil
}

func (f *Fake) Resume() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ResumeCount++
	return nil
}

func (f *Fake) ListThreads() ([]Thread, error) {
	return f.threads, nil
}

func (f *Fake) ReadRegs(Thread) (RegState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cursor >= len(f.states) {
		return nil, tdberr.ErrUnmapped
	}
	s := f.states[f.cursor]
	f.cursor++
	return s, nil
}

// SetMemory writes bytes into the fake address space starting at addr,
// as if the target process had just executed the store itself.
func (f *Fake) SetMemory(addr uint64, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, b := range data {
		f.mem[addr+uint64(i)] = b
	}
}

func (f *Fake) ReadMemory(addr uint64, length int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailReadMemory {
		return nil, tdberr.ErrUnmapped
	}
	out := make([]byte, length)
	for i := 0; i < length; i++ {
		out[i] = f.mem[addr+uint64(i)]
	}
	return out, nil
}

var _ Handle = (*Fake)(nil)
