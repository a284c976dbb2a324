package runner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestRunner_RunSuccess(t *testing.T) {
	t.Parallel()
	requireShell(t)

	var echoed bytes.Buffer
	r := New(nil)
	r.Stdout = &echoed

	res, err := r.Run(context.Background(), Options{}, "sh", []string{"-c", "echo out; echo err >&2"})
	require.NoError(t, err)
	assert.True(t, res.Success())
	assert.Equal(t, []string{"sh", "-c", "echo out; echo err >&2"}, res.Args)
	assert.Equal(t, "out\n", string(res.Stdout))
	assert.Equal(t, "err\n", string(res.Stderr))
	assert.Equal(t, "out\n", echoed.String())
}

func TestRunner_RunUsesDirAndEnv(t *testing.T) {
	t.Parallel()
	requireShell(t)

	dir := t.TempDir()
	res, err := New(nil).Run(context.Background(), Options{Dir: dir, Env: []string{"GREETING=hi"}}, "sh", "-c", `echo "$GREETING $(pwd)"`)
	require.NoError(t, err)
	assert.Contains(t, string(res.Stdout), "hi ")
	assert.Contains(t, string(res.Stdout), dir)
}

func TestRunner_RunNonZeroExit(t *testing.T) {
	t.Parallel()
	requireShell(t)

	res, err := New(nil).Run(context.Background(), Options{}, "sh", "-c", "echo bad >&2; exit 2")
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 2, res.ExitCode)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.ErrorIs(t, err, ErrCommandFailed)
	assert.Contains(t, err.Error(), "exited with code 2")
	assert.Contains(t, err.Error(), "stderr: bad")
	assert.Equal(t, "bad\n", string(exitErr.Output()))
}

func TestRunner_RunMissingProgram(t *testing.T) {
	t.Parallel()

	_, err := New(nil).Run(context.Background(), Options{}, "definitely-not-a-real-program-xyz")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCommandFailed)
	assert.True(t, IsNotFound(err))
}

func TestRunner_RunEmpty(t *testing.T) {
	t.Parallel()

	_, err := New(nil).Run(context.Background(), Options{}, []string{}, "")
	assert.ErrorIs(t, err, ErrCommandFailed)
}

func TestRunner_Shell(t *testing.T) {
	t.Parallel()
	requireShell(t)

	res, err := New(nil).Shell(context.Background(), Options{Env: []string{"A=1", "B=2"}}, "echo $A$B")
	require.NoError(t, err)
	assert.Equal(t, "12\n", string(res.Stdout))
}

type fakeConn struct {
	commands []string
	exitCode int
	closed   int
}

func (c *fakeConn) Run(_ context.Context, cmd string) (*Result, error) {
	c.commands = append(c.commands, cmd)
	return &Result{ExitCode: c.exitCode, Stderr: []byte("remote said no")}, nil
}
func (c *fakeConn) Upload(context.Context, string, string) error   { return nil }
func (c *fakeConn) Download(context.Context, string, string) error { return nil }
func (c *fakeConn) Close() error {
	c.closed++
	return nil
}

type fakeTransport struct {
	conn    *fakeConn
	dialed  []Address
	failErr error
}

func (f *fakeTransport) Connect(_ context.Context, addr Address) (Conn, error) {
	f.dialed = append(f.dialed, addr)
	if f.failErr != nil {
		return nil, f.failErr
	}
	return f.conn, nil
}

func TestRunner_SessionRunsCommandsAndCloses(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{conn: &fakeConn{}}
	r := New(ft)

	err := r.Session(context.Background(), "releases@www.example.org", func(s *Session) error {
		assert.Equal(t, "releases@www.example.org", s.Target())
		if _, err := s.Run(context.Background(), "ls", "/home/releases"); err != nil {
			return err
		}
		_, err := s.Run(context.Background(), []string{"tar", "xzf", "my file.tar.gz"})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ls /home/releases", "tar xzf 'my file.tar.gz'"}, ft.conn.commands)
	assert.Equal(t, 1, ft.conn.closed)
	require.Len(t, ft.dialed, 1)
	assert.Equal(t, "releases", ft.dialed[0].User)
}

func TestRunner_SessionClosesOnFailure(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{conn: &fakeConn{exitCode: 1}}
	r := New(ft)

	err := r.Session(context.Background(), "releases@host", func(s *Session) error {
		if _, err := s.Run(context.Background(), "false"); err != nil {
			return err
		}
		_, err := s.Run(context.Background(), "unreachable")
		return err
	})
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, "releases@host", exitErr.Target)
	assert.Contains(t, err.Error(), "false on releases@host exited with code 1")
	assert.Equal(t, []string{"false"}, ft.conn.commands)
	assert.Equal(t, 1, ft.conn.closed)
}

func TestRunner_SessionConnectErrors(t *testing.T) {
	t.Parallel()

	err := New(nil).Session(context.Background(), "u@h", func(*Session) error { return nil })
	assert.ErrorIs(t, err, ErrConnect)
	assert.Contains(t, err.Error(), "no transport configured")

	ft := &fakeTransport{failErr: errors.New("connection refused")}
	called := false
	err = New(ft).Session(context.Background(), "u@h", func(*Session) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrConnect)
	assert.False(t, called)

	err = New(ft).Session(context.Background(), "/local/path", func(*Session) error { return nil })
	assert.ErrorIs(t, err, ErrConnect)
}

func TestRunner_Dispatch(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{conn: &fakeConn{}}
	r := New(ft)

	res, err := r.Dispatch(context.Background(), KindRemote, Options{}, "u@h", []string{"uname", "-a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"uname", "-a"}, res.Args)
	assert.Equal(t, []string{"uname -a"}, ft.conn.commands)

	_, err = r.Dispatch(context.Background(), KindRemote, Options{}, "u@h")
	assert.ErrorIs(t, err, ErrCommandFailed)

	_, err = r.Dispatch(context.Background(), KindCopy, Options{}, "only-one")
	assert.ErrorIs(t, err, ErrCopy)

	_, err = r.Dispatch(context.Background(), Kind(42), Options{})
	assert.ErrorContains(t, err, "unknown process kind Kind(42)")
}

func TestRunner_DispatchLocal(t *testing.T) {
	t.Parallel()
	requireShell(t)

	res, err := New(nil).Dispatch(context.Background(), KindLocal, Options{}, "sh", []string{"-c", "echo local"})
	require.NoError(t, err)
	assert.Equal(t, "local\n", string(res.Stdout))
}

func TestLocalTransport_RunsThroughShell(t *testing.T) {
	t.Parallel()
	requireShell(t)

	err := New(LocalTransport{}).Session(context.Background(), "me@localhost", func(s *Session) error {
		res, err := s.Run(context.Background(), "echo", "one two")
		if err != nil {
			return err
		}
		assert.Equal(t, "one two\n", string(res.Stdout))
		return nil
	})
	require.NoError(t, err)
}
