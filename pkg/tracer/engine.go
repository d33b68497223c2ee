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

// Package tracer implements C3, the tracer engine: the single-step loop
// that drives task control and the disassembler, detects memory
// mutations, and records each sample into a trace store. This is the
// hard core of tdb — everything else is a collaborator around it.
package tracer

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/ArchishmanSengupta/tiny-binary-debugger/pkg/disasm"
	"github.com/ArchishmanSengupta/tiny-binary-debugger/pkg/store"
	"github.com/ArchishmanSengupta/tiny-binary-debugger/pkg/task"
	"github.com/ArchishmanSengupta/tiny-binary-debugger/pkg/tdberr"
)

// stepYield is the brief sleep after resume that lets the OS actually
// reschedule the target before the next suspend (spec §4.3.2 step 11).
// This is not a trap-flag single-step: the target runs free for an
// unspecified number of instructions in this window, which is why the
// resulting trace is a sampled stream, not an exhaustive one (spec §4.3.2).
const stepYield = 100 * time.Microsecond

// Engine owns the tracer state described in spec §3: step_count,
// call_depth, last_sp, and the unbounded memory_cache.
type Engine struct {
	task   task.Handle
	db     *store.Store
	arch   task.Arch
	logger *slog.Logger

	stepCount   uint64
	callDepth   uint64
	lastSP      uint64
	memoryCache map[uint64][]byte
}

// New attaches no further than wrapping an already-attached task.Handle;
// callers acquire the handle via task.Attach (spec §4.3.1 step 1) before
// constructing the engine, so a failed attach never reaches here.
func New(h task.Handle, dbPath string, arch task.Arch, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		task:        h,
		db:          store.New(dbPath),
		arch:        arch,
		logger:      logger,
		memoryCache: make(map[uint64][]byte),
	}
}

// DB returns the trace store entries are being recorded into.
func (e *Engine) DB() *store.Store { return e.db }

// StepCount returns the next step number that will be emitted.
func (e *Engine) StepCount() uint64 { return e.stepCount }

// CallDepth returns the current call-depth counter.
func (e *Engine) CallDepth() uint64 { return e.callDepth }

// Step performs one iteration of the loop in spec §4.3.2: suspend, sample,
// disassemble, classify, detect mutations, record, advance, resume. On
// any failure the task is guaranteed resumed and step_count is not
// advanced (spec §4.3.4's release invariant).
func (e *Engine) Step() (store.Entry, error) {
	if err := e.task.Suspend(); err != nil {
		return store.Entry{}, errors.Wrap(err, "suspend")
	}

	entry, stepErr := e.recordOneStep()

	if resumeErr := e.task.Resume(); resumeErr != nil {
		if stepErr == nil {
			stepErr = errors.Wrap(resumeErr, "resume")
		} else {
			e.logger.Error("resume failed after step error", "step_err", stepErr, "resume_err", resumeErr)
		}
	}

	if stepErr != nil {
		return store.Entry{}, stepErr
	}

	time.Sleep(stepYield)
	return entry, nil
}

// recordOneStep does everything between suspend and resume. It never
// touches the task's suspend/resume state itself.
func (e *Engine) recordOneStep() (store.Entry, error) {
	threads, err := e.task.ListThreads()
	if err != nil {
		return store.Entry{}, errors.Wrap(err, "list threads")
	}
	if len(threads) == 0 {
		return store.Entry{}, errors.New("no threads")
	}

	// Design decision (spec §4.3.2 step 2): follow the primary thread
	// only. Multi-thread targets produce a sparse view.
	regs, err := e.task.ReadRegs(threads[0])
	if err != nil {
		return store.Entry{}, errors.Wrap(err, "read regs")
	}
	pc, sp := regs.PC(), regs.SP()

	// First-step bootstrap (spec §4.3.2 step 4): adopt sp with no deltas.
	// This mutation happens unconditionally before any fallible decode,
	// matching the reference tracer's ordering — a failed decode on the
	// very first sample still leaves last_sp initialized.
	spChanged := sp != e.lastSP
	if e.lastSP == 0 {
		e.lastSP = sp
		spChanged = false
	}

	code, err := e.task.ReadMemory(pc, 16)
	if err != nil {
		return store.Entry{}, errors.Wrap(err, "fetch instruction")
	}

	inst, err := disasm.Decode(code, pc, e.arch)
	if err != nil {
		return store.Entry{}, errors.Wrap(err, "decode")
	}

	annotation := e.classify(inst.Mnemonic)

	var changes []store.MemChange
	changes = append(changes, e.detectStackWindow(sp, spChanged, inst.Mnemonic)...)
	if mc := e.detectOperandProbe(regs, inst.Mnemonic, inst.Operands); mc != nil {
		changes = append(changes, *mc)
	}

	regsJSON, err := regs.JSON()
	if err != nil {
		return store.Entry{}, errors.Wrap(err, "encode regs")
	}

	insnText := inst.Text()
	if annotation != "" {
		insnText = fmt.Sprintf("%s ; %s", insnText, annotation)
	}

	entry := store.Entry{
		Step:       e.stepCount,
		PC:         pc,
		InsnBytes:  inst.Bytes,
		InsnText:   insnText,
		Regs:       regsJSON,
		MemChanges: changes,
	}

	e.db.Insert(entry)
	e.stepCount++
	e.lastSP = sp

	return entry, nil
}

// classify updates call_depth for CALL/RET-class mnemonics and returns
// the annotation text to append to insn_text, or "" for everything else.
func (e *Engine) classify(mnemonic string) string {
	if callMnemonics[e.arch][mnemonic] {
		e.callDepth++
		return fmt.Sprintf("CALL [depth:%d]", e.callDepth)
	}
	if retMnemonics[e.arch][mnemonic] {
		if e.callDepth > 0 {
			e.callDepth--
		}
		return fmt.Sprintf("RETURN [depth:%d]", e.callDepth)
	}
	return ""
}

// Run drives Step in a loop until shouldStop reports true or more than
// maxConsecutiveErrors failures happen back to back (spec §7). It returns
// nil when shouldStop ends the loop, and an error wrapping ErrUnmapped
// when the consecutive-error limit is exceeded.
func (e *Engine) Run(maxConsecutiveErrors int, shouldStop func() bool) error {
	errCount := 0
	for {
		if shouldStop != nil && shouldStop() {
			return nil
		}
		if _, err := e.Step(); err != nil {
			errCount++
			e.logger.Debug("step failed", "consecutive_errors", errCount, "err", err)
			if errCount > maxConsecutiveErrors {
				return errors.Wrapf(tdberr.ErrUnmapped, "too many consecutive errors (%d): %v", errCount, err)
			}
			time.Sleep(10 * time.Millisecond)
			continue
		}
		errCount = 0
	}
}
