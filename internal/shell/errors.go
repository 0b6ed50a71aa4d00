package shell

import (
	"errors"
	"fmt"
)

var (
	// ErrCommandFailed reports an external command that exited non-zero or could not start.
	ErrCommandFailed = errors.New("command failed")
	// ErrDependencyMissing reports a required program that is not installed.
	ErrDependencyMissing = errors.New("dependency missing")
)

// CommandError carries the exit status and combined output of a failed command.
type CommandError struct {
	Command string
	Status  int
	Output  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: exit status %d: %v", e.Command, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: exit status %d", e.Command, e.Status)
}

func (e *CommandError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrCommandFailed, e.Err}
	}
	return []error{ErrCommandFailed}
}

// DependencyError names the software a probe found missing.
type DependencyError struct {
	Name  string
	Probe string
	Err   error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s is not installed (probe %q): %v", e.Name, e.Probe, e.Err)
}

func (e *DependencyError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrDependencyMissing, e.Err}
	}
	return []error{ErrDependencyMissing}
}
