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

// Command tdb is a macOS single-step tracer: attach to or launch a
// process, step it instruction by instruction over Mach task primitives,
// record a trace, and serve it back over a small read-only HTTP API.
//
// Subcommands: run, trace, view, stats — dispatched on os.Args[1] with
// the stdlib flag package, the same flag.Parse()+switch idiom the
// teacher's own CLI uses rather than a third-party command framework.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/hashicorp/go-version"

	"github.com/ArchishmanSengupta/tiny-binary-debugger/internal/config"
	"github.com/ArchishmanSengupta/tiny-binary-debugger/pkg/httpapi"
	"github.com/ArchishmanSengupta/tiny-binary-debugger/pkg/launcher"
	"github.com/ArchishmanSengupta/tiny-binary-debugger/pkg/stats"
	"github.com/ArchishmanSengupta/tiny-binary-debugger/pkg/store"
	"github.com/ArchishmanSengupta/tiny-binary-debugger/pkg/task"
	"github.com/ArchishmanSengupta/tiny-binary-debugger/pkg/tracer"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	logger := slog.Default()

	var err error
	switch os.Args[1] {
	case "run":
		err = cmdRun(ctx, logger, os.Args[2:])
	case "trace":
		err = cmdTrace(ctx, logger, os.Args[2:])
	case "view":
		err = cmdView(ctx, logger, os.Args[2:])
	case "stats":
		err = cmdStats(logger, os.Args[2:])
	case "version":
		cmdVersion(logger)
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		logger.Error("command failed", "command", os.Args[1], "err", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: tdb <run|trace|view|stats|version> [flags]")
}

func parseArch(s string) task.Arch {
	switch s {
	case "x86_64", "amd64":
		return task.ArchX86_64
	case "aarch64", "arm64":
		return task.ArchAArch64
	case "":
		if runtime.GOARCH == "arm64" {
			return task.ArchAArch64
		}
		return task.ArchX86_64
	default:
		return task.ArchUnknown
	}
}

// cmdRun launches a program pre-stopped, traces it to completion, and
// saves the resulting store — the common end-to-end path (spec E1-E3).
func cmdRun(ctx context.Context, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	dbPath := fs.String("out", "trace.tdb", "path to write the trace store")
	archFlag := fs.String("arch", "", "target architecture (x86_64, aarch64; default: host)")
	cfgPath := fs.String("config", "tdb.yaml", "path to optional config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("run: missing program argument")
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}

	arch := parseArch(*archFlag)
	if arch == task.ArchUnknown {
		return fmt.Errorf("run: unrecognized -arch %q", *archFlag)
	}

	l, err := launcher.Launch(fs.Arg(0), fs.Args()[1:])
	if err != nil {
		return err
	}

	h, err := task.Attach(l.PID())
	if err != nil {
		return err
	}

	if err := l.Resume(); err != nil {
		return err
	}

	eng := tracer.New(h, *dbPath, arch, logger)
	return traceAndSave(eng, cfg.MaxConsecutiveErrors, logger, func() bool {
		select {
		case <-ctx.Done():
			return true
		default:
			return !l.IsRunning()
		}
	})
}

// cmdTrace attaches to an already-running pid instead of launching one.
func cmdTrace(ctx context.Context, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("trace", flag.ExitOnError)
	pid := fs.Int("pid", 0, "pid of the process to attach to")
	dbPath := fs.String("out", "trace.tdb", "path to write the trace store")
	archFlag := fs.String("arch", "", "target architecture (x86_64, aarch64; default: host)")
	cfgPath := fs.String("config", "tdb.yaml", "path to optional config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *pid <= 0 {
		return fmt.Errorf("trace: -pid is required")
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}

	arch := parseArch(*archFlag)
	if arch == task.ArchUnknown {
		return fmt.Errorf("trace: unrecognized -arch %q", *archFlag)
	}

	h, err := task.Attach(*pid)
	if err != nil {
		return err
	}

	eng := tracer.New(h, *dbPath, arch, logger)
	return traceAndSave(eng, cfg.MaxConsecutiveErrors, logger, func() bool {
		select {
		case <-ctx.Done():
			return true
		default:
			return false
		}
	})
}

// traceAndSave drives eng to completion (or to a fatal consecutive-error
// abort) and always saves whatever was recorded before returning, so a
// fatal trace loop still leaves a partial store on disk (spec.md §8,
// scenario E6: "store has 0 entries and is still saved"). The save
// happens unconditionally; a non-nil runErr always propagates past it so
// main exits non-zero on the fatal path, per spec.md §7.
func traceAndSave(eng *tracer.Engine, maxConsecutiveErrors int, logger *slog.Logger, shouldStop func() bool) error {
	runErr := eng.Run(maxConsecutiveErrors, shouldStop)
	if runErr != nil {
		logger.Error("trace loop aborted", "err", runErr)
	}

	logger.Info("trace complete", "steps", eng.StepCount())
	if saveErr := eng.DB().Save(); saveErr != nil {
		return saveErr
	}
	return runErr
}

// cmdView loads a saved trace and serves the read-only HTTP viewer API.
func cmdView(ctx context.Context, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	dbPath := fs.String("in", "trace.tdb", "path to the trace store to serve")
	cfgPath := fs.String("config", "tdb.yaml", "path to optional config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}

	db, err := store.Load(*dbPath)
	if err != nil {
		return err
	}

	srv := httpapi.New(db, cfg.WebDir, logger)
	httpSrv := &http.Server{Addr: cfg.ListenAddr, Handler: srv}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving trace viewer", "addr", cfg.ListenAddr, "entries", db.Count())
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// cmdStats loads a saved trace and prints the aggregate summary as JSON.
func cmdStats(logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	dbPath := fs.String("in", "trace.tdb", "path to the trace store to summarize")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := store.Load(*dbPath)
	if err != nil {
		return err
	}

	summary := stats.Compute(db)
	logger.Info("trace summary",
		"total_steps", summary.TotalSteps,
		"unique_addresses", summary.UniqueAddresses,
		"call_count", summary.CallCount,
		"ret_count", summary.RetCount,
		"jump_count", summary.JumpCount,
	)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

// cmdVersion mirrors the teacher's Go-ABI version gate: it parses the
// host kernel version string and logs a warning, not a fatal error, when
// it can't be parsed, since the gate is informational here rather than
// a hard compatibility requirement.
func cmdVersion(logger *slog.Logger) {
	fmt.Println("tdb (tiny-binary-debugger)")

	uname, err := hostKernelVersion()
	if err != nil {
		logger.Warn("could not determine host kernel version", "err", err)
		return
	}
	if _, err := version.NewVersion(uname); err != nil {
		logger.Warn("host kernel version string is unparseable", "uname", uname, "err", err)
		return
	}
	logger.Info("host kernel version parsed", "uname", uname)
}
