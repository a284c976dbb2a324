// Package runner executes external commands for build steps: local subprocesses,
// commands over a remote shell session, and file copies. Every failure is
// returned to the caller; nothing is retried.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"runtime"
	"time"
)

// Kind selects how Dispatch runs its arguments.
type Kind int

const (
	KindLocal Kind = iota
	KindRemote
	KindCopy
)

func (k Kind) String() string {
	switch k {
	case KindLocal:
		return "local"
	case KindRemote:
		return "remote"
	case KindCopy:
		return "copy"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Options apply to a single invocation.
type Options struct {
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env is the subprocess environment; nil inherits the process environment.
	Env []string
}

// Runner dispatches commands. Output is captured and also echoed to
// Stdout/Stderr when those are set.
type Runner struct {
	Transport Transport
	Stdout    io.Writer
	Stderr    io.Writer
}

// New creates a Runner. A nil transport rejects remote operations.
func New(transport Transport) *Runner {
	return &Runner{Transport: transport}
}

// Run starts a local subprocess. args are flattened; the first is the program.
// A non-zero exit returns the result together with an *ExitError.
func (r *Runner) Run(ctx context.Context, opts Options, args ...any) (*Result, error) {
	argv := Flatten(args...)
	if len(argv) == 0 {
		return nil, fmt.Errorf("%w: empty command", ErrCommandFailed)
	}
	slog.Debug("running command", "args", argv, "dir", opts.Dir)

	start := time.Now()
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...) //nolint:gosec // running build commands is the point
	cmd.Dir = opts.Dir
	cmd.Env = opts.Env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = r.tee(&stdout, r.Stdout)
	cmd.Stderr = r.tee(&stderr, r.Stderr)

	err := cmd.Run()
	res := &Result{
		Args:     argv,
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) || ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrCommandFailed, argv[0], err)
		}
		res.ExitCode = exitErr.ExitCode()
	}
	return checkExit(res, "")
}

// Shell runs a single command line through the platform shell.
func (r *Runner) Shell(ctx context.Context, opts Options, cmdline string) (*Result, error) {
	if runtime.GOOS == "windows" {
		return r.Run(ctx, opts, "cmd", "/C", cmdline)
	}
	return r.Run(ctx, opts, "sh", "-c", cmdline)
}

// Session connects to target (user@host), calls fn with the open session and
// always disconnects afterwards, whether fn succeeds or not.
func (r *Runner) Session(ctx context.Context, target string, fn func(*Session) error) (err error) {
	addr := ParseTarget(target)
	if !addr.Remote() {
		return fmt.Errorf("%w: %q is not a remote target", ErrConnect, target)
	}
	conn, err := r.connect(ctx, addr)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing connection to %s: %w", addr.Login(), closeErr)
		}
	}()

	return fn(&Session{conn: conn, addr: addr, runner: r})
}

func (r *Runner) connect(ctx context.Context, addr Address) (Conn, error) {
	if r.Transport == nil {
		return nil, fmt.Errorf("%w: no transport configured for %s", ErrConnect, addr.Login())
	}
	conn, err := r.Transport.Connect(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConnect, addr.Login(), err)
	}
	return conn, nil
}

// Dispatch runs args according to kind. For KindRemote the first argument is
// the target and the rest is the command; for KindCopy the flattened arguments
// must be exactly source and destination.
func (r *Runner) Dispatch(ctx context.Context, kind Kind, opts Options, args ...any) (*Result, error) {
	switch kind {
	case KindLocal:
		return r.Run(ctx, opts, args...)
	case KindRemote:
		argv := Flatten(args...)
		if len(argv) < 2 {
			return nil, fmt.Errorf("%w: remote dispatch needs a target and a command", ErrCommandFailed)
		}
		var res *Result
		err := r.Session(ctx, argv[0], func(s *Session) error {
			var runErr error
			res, runErr = s.Run(ctx, argv[1:])
			return runErr
		})
		return res, err
	case KindCopy:
		argv := Flatten(args...)
		if len(argv) != 2 {
			return nil, fmt.Errorf("%w: copy needs a source and a destination, got %d arguments", ErrCopy, len(argv))
		}
		start := time.Now()
		if err := r.Copy(ctx, opts, argv[0], argv[1]); err != nil {
			return nil, err
		}
		return &Result{Args: argv, Duration: time.Since(start)}, nil
	default:
		return nil, fmt.Errorf("unknown process kind %v", kind)
	}
}

func (r *Runner) tee(buf *bytes.Buffer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}
	return io.MultiWriter(buf, w)
}

// Session is an authenticated connection shared by several commands.
type Session struct {
	conn   Conn
	addr   Address
	runner *Runner
}

// Target returns the user@host this session is connected to.
func (s *Session) Target() string {
	return s.addr.Login()
}

// Run executes the flattened args as one remote command.
func (s *Session) Run(ctx context.Context, args ...any) (*Result, error) {
	argv := Flatten(args...)
	if len(argv) == 0 {
		return nil, fmt.Errorf("%w: empty command", ErrCommandFailed)
	}
	cmdline := ShellJoin(argv)
	slog.Debug("running remote command", "target", s.Target(), "command", cmdline)

	res, err := s.conn.Run(ctx, cmdline)
	if err != nil {
		return nil, fmt.Errorf("%w: %s on %s: %w", ErrCommandFailed, argv[0], s.Target(), err)
	}
	res.Args = argv
	s.runner.echo(res)
	return checkExit(res, s.Target())
}

func (r *Runner) echo(res *Result) {
	if r.Stdout != nil && len(res.Stdout) > 0 {
		_, _ = r.Stdout.Write(res.Stdout)
	}
	if r.Stderr != nil && len(res.Stderr) > 0 {
		_, _ = r.Stderr.Write(res.Stderr)
	}
}
