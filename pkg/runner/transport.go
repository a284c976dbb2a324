package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// Conn is an open connection to a remote host.
type Conn interface {
	// Run executes a shell command line on the host.
	Run(ctx context.Context, cmd string) (*Result, error)
	// Upload copies a local file to remotePath.
	Upload(ctx context.Context, localPath, remotePath string) error
	// Download copies remotePath to a local file.
	Download(ctx context.Context, remotePath, localPath string) error
	Close() error
}

// Transport opens connections to remote hosts.
type Transport interface {
	Connect(ctx context.Context, addr Address) (Conn, error)
}

// LocalTransport runs "remote" commands on this machine through sh.
// Used for tests and single-machine setups.
type LocalTransport struct{}

// Connect returns a local connection.
func (LocalTransport) Connect(context.Context, Address) (Conn, error) {
	return localConn{}, nil
}

type localConn struct{}

func (localConn) Run(ctx context.Context, cmdStr string) (*Result, error) {
	start := time.Now()
	cmd := exec.CommandContext(ctx, "sh", "-c", cmdStr)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := &Result{
		Args:     []string{cmdStr},
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, err
		}
		res.ExitCode = exitErr.ExitCode()
	}
	return res, nil
}

func (localConn) Upload(_ context.Context, localPath, remotePath string) error {
	return copyFile(localPath, remotePath)
}

func (localConn) Download(_ context.Context, remotePath, localPath string) error {
	return copyFile(remotePath, localPath)
}

func (localConn) Close() error { return nil }

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", src)
	}
	if dstInfo, err := os.Stat(dst); err == nil && os.SameFile(info, dstInfo) {
		return fmt.Errorf("%s and %s are the same file", src, dst)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("creating directory for %s: %w", dst, err)
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	_, copyErr := io.Copy(out, in)
	if closeErr := out.Close(); closeErr != nil && copyErr == nil {
		return fmt.Errorf("closing %s: %w", dst, closeErr)
	}
	if copyErr != nil {
		return fmt.Errorf("writing %s: %w", dst, copyErr)
	}
	return nil
}
