// Package shell runs external toolkit commands and reports their exit status
// and combined output.
package shell

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"sctutils/internal/config"
	"sctutils/internal/console"
	"sctutils/internal/logging"
)

// Result is the outcome of a finished command.
type Result struct {
	Status int
	Output string // stdout and stderr, trailing newlines trimmed
}

// Recorder persists command invocations.
type Recorder interface {
	RecordCommand(command string, status int, output string, started time.Time, duration time.Duration) error
}

// Runner executes commands through a shell with FSLOUTPUTTYPE set.
type Runner struct {
	Shell      string
	OutputType string
	Dir        string
	Printer    *console.Printer
	Log        *slog.Logger
	Recorder   Recorder
}

// New builds a runner from the FSL section of the configuration.
func New(cfg config.FSL, printer *console.Printer, log *slog.Logger) *Runner {
	return &Runner{
		Shell:      cfg.Shell,
		OutputType: cfg.OutputType,
		Printer:    printer,
		Log:        log,
	}
}

// Run executes command through the shell. A non-zero exit returns a
// *CommandError alongside the result.
func (r *Runner) Run(ctx context.Context, command string) (Result, error) {
	r.Printer.Print(">> "+command, console.Normal)

	res, err := r.Status(ctx, command)
	if err != nil {
		return res, err
	}
	if res.Status != 0 {
		r.Printer.Always("\nERROR!!! \n"+res.Output+"\n", console.Error)
		return res, &CommandError{Command: command, Status: res.Status, Output: res.Output}
	}
	return res, nil
}

// Status executes command and returns its exit status without treating a
// non-zero status as an error. Only a failure to start is an error.
func (r *Runner) Status(ctx context.Context, command string) (Result, error) {
	sh := r.Shell
	if sh == "" {
		sh = "/bin/sh"
	}
	cmd := exec.CommandContext(ctx, sh, "-c", command)
	return r.execute(cmd, command)
}

// Exec runs name with args directly, without a shell. A missing binary is
// reported as a *DependencyError.
func (r *Runner) Exec(ctx context.Context, name string, args ...string) (Result, error) {
	line := strings.TrimSpace(name + " " + strings.Join(args, " "))
	if _, err := exec.LookPath(name); err != nil {
		return Result{Status: -1}, &DependencyError{Name: name, Probe: line, Err: err}
	}

	cmd := exec.CommandContext(ctx, name, args...)
	res, err := r.execute(cmd, line)
	if err != nil {
		return res, err
	}
	if res.Status != 0 {
		return res, &CommandError{Command: line, Status: res.Status, Output: res.Output}
	}
	return res, nil
}

// CheckInstalled runs probe and reports name as missing if it fails.
func (r *Runner) CheckInstalled(ctx context.Context, probe, name string) error {
	res, err := r.Status(ctx, probe)
	if err == nil && res.Status == 0 {
		logging.LogToolStatus(r.Log, name, true, "", probe, nil)
		return nil
	}
	if err == nil {
		err = &CommandError{Command: probe, Status: res.Status, Output: res.Output}
	}
	logging.LogToolStatus(r.Log, name, false, "", "", err)
	r.Printer.Always("\nERROR: "+name+" is not installed.\n", console.Error)
	return &DependencyError{Name: name, Probe: probe, Err: err}
}

func (r *Runner) execute(cmd *exec.Cmd, line string) (Result, error) {
	cmd.Env = r.environ()
	if r.Dir != "" {
		cmd.Dir = r.Dir
	}

	started := time.Now()
	out, err := cmd.CombinedOutput()
	elapsed := time.Since(started)

	res := Result{Output: strings.TrimRight(string(out), "\n")}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr) && exitErr.Exited():
		res.Status = exitErr.ExitCode()
	default:
		res.Status = -1
		r.record(line, res, started, elapsed)
		return res, &CommandError{Command: line, Status: -1, Output: res.Output, Err: err}
	}

	logging.LogCommand(r.Log, line, res.Status, elapsed)
	r.record(line, res, started, elapsed)
	return res, nil
}

func (r *Runner) record(line string, res Result, started time.Time, elapsed time.Duration) {
	if r.Recorder == nil {
		return
	}
	if err := r.Recorder.RecordCommand(line, res.Status, res.Output, started, elapsed); err != nil && r.Log != nil {
		r.Log.Warn("failed to record command", "command", line, "error", err)
	}
}

func (r *Runner) environ() []string {
	env := os.Environ()
	if r.OutputType != "" {
		env = append(env, "FSLOUTPUTTYPE="+r.OutputType)
	}
	return env
}
