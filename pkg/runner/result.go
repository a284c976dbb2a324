package runner

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

var (
	ErrCommandFailed = errors.New("command failed")
	ErrConnect       = errors.New("connection failed")
	ErrCopy          = errors.New("copy failed")
)

// Result is the outcome of one command.
type Result struct {
	Args     []string
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
}

// Success returns true if the command exited with code 0.
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// CombinedOutput returns stdout followed by stderr.
func (r *Result) CombinedOutput() []byte {
	out := make([]byte, 0, len(r.Stdout)+len(r.Stderr))
	out = append(out, r.Stdout...)
	out = append(out, r.Stderr...)
	return out
}

// ExitError reports a command that ran but exited non-zero.
type ExitError struct {
	Result *Result
	Target string // remote address, empty for local commands
}

func (e *ExitError) Error() string {
	where := ""
	if e.Target != "" {
		where = " on " + e.Target
	}
	msg := fmt.Sprintf("%s%s exited with code %d", strings.Join(e.Result.Args, " "), where, e.Result.ExitCode)
	if stderr := strings.TrimSpace(string(e.Result.Stderr)); stderr != "" {
		msg += "\nstderr: " + stderr
	}
	return msg
}

// Is makes every ExitError match ErrCommandFailed.
func (e *ExitError) Is(target error) bool {
	return target == ErrCommandFailed
}

// Output returns the captured output of the failed command.
func (e *ExitError) Output() []byte {
	return e.Result.CombinedOutput()
}

func checkExit(res *Result, target string) (*Result, error) {
	if res.Success() {
		return res, nil
	}
	return res, &ExitError{Result: res, Target: target}
}

// IsNotFound reports whether err indicates a missing executable.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, exec.ErrNotFound) {
		return true
	}
	var pathErr *os.PathError
	return errors.As(err, &pathErr) && errors.Is(pathErr.Err, os.ErrNotExist)
}
