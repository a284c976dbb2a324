package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// SSHTransport connects to hosts over SSH.
type SSHTransport struct {
	// Timeout bounds dialing and the handshake.
	Timeout time.Duration
	// Port is used for every host.
	Port int
	// DefaultUser is used when an address carries no user.
	DefaultUser string
	// IdentityFiles are private keys tried in order.
	IdentityFiles []string
	// KnownHostsFile verifies host keys when it exists.
	KnownHostsFile string
	// InsecureIgnoreHostKey skips host key verification when no known_hosts file exists.
	InsecureIgnoreHostKey bool
}

// NewSSHTransport creates an SSH transport with the usual defaults.
func NewSSHTransport() *SSHTransport {
	homeDir, _ := os.UserHomeDir()
	return &SSHTransport{
		Timeout:     30 * time.Second,
		Port:        22,
		DefaultUser: os.Getenv("USER"),
		IdentityFiles: []string{
			filepath.Join(homeDir, ".ssh", "id_ed25519"),
			filepath.Join(homeDir, ".ssh", "id_rsa"),
		},
		KnownHostsFile: filepath.Join(homeDir, ".ssh", "known_hosts"),
	}
}

// Connect dials addr and authenticates.
func (t *SSHTransport) Connect(ctx context.Context, addr Address) (Conn, error) {
	auth, agentConn := t.authMethods()
	if len(auth) == 0 {
		return nil, fmt.Errorf("no SSH authentication methods available")
	}
	closeAgent := func() {
		if agentConn != nil {
			_ = agentConn.Close()
		}
	}

	hostKeys, err := t.hostKeyCallback()
	if err != nil {
		closeAgent()
		return nil, err
	}

	user := addr.User
	if user == "" {
		user = t.DefaultUser
	}
	config := &ssh.ClientConfig{
		User:            user,
		Auth:            auth,
		HostKeyCallback: hostKeys,
		Timeout:         t.Timeout,
	}

	port := t.Port
	if port == 0 {
		port = 22
	}
	hostport := net.JoinHostPort(addr.Host, strconv.Itoa(port))

	dialer := &net.Dialer{Timeout: t.Timeout}
	netConn, err := dialer.DialContext(ctx, "tcp", hostport)
	if err != nil {
		closeAgent()
		return nil, fmt.Errorf("dialing %s: %w", hostport, err)
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(netConn, hostport, config)
	if err != nil {
		_ = netConn.Close()
		closeAgent()
		return nil, fmt.Errorf("SSH handshake with %s: %w", hostport, err)
	}

	slog.Debug("ssh connected", "host", hostport, "user", user)
	return &sshConnection{client: ssh.NewClient(sshConn, chans, reqs), agentConn: agentConn}, nil
}

func (t *SSHTransport) authMethods() ([]ssh.AuthMethod, net.Conn) {
	var methods []ssh.AuthMethod
	for _, p := range t.IdentityFiles {
		signer, err := loadPrivateKey(p)
		if err != nil {
			continue
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}

	socket := os.Getenv("SSH_AUTH_SOCK")
	if socket == "" {
		return methods, nil
	}
	conn, err := net.Dial("unix", socket)
	if err != nil {
		slog.Debug("ssh agent unavailable", "socket", socket, "error", err)
		return methods, nil
	}
	methods = append(methods, ssh.PublicKeysCallback(agent.NewClient(conn).Signers))
	return methods, conn
}

func (t *SSHTransport) hostKeyCallback() (ssh.HostKeyCallback, error) {
	if t.KnownHostsFile != "" {
		if _, err := os.Stat(t.KnownHostsFile); err == nil {
			cb, err := knownhosts.New(t.KnownHostsFile)
			if err != nil {
				return nil, fmt.Errorf("loading %s: %w", t.KnownHostsFile, err)
			}
			return cb, nil
		}
	}
	if t.InsecureIgnoreHostKey {
		return ssh.InsecureIgnoreHostKey(), nil //nolint:gosec // explicitly requested
	}
	return nil, fmt.Errorf("no known_hosts file at %q and host key checking is enabled", t.KnownHostsFile)
}

func loadPrivateKey(p string) (ssh.Signer, error) {
	if strings.HasPrefix(p, "~/") {
		homeDir, _ := os.UserHomeDir()
		p = filepath.Join(homeDir, p[2:])
	}
	key, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	return ssh.ParsePrivateKey(key)
}

type sshConnection struct {
	client    *ssh.Client
	agentConn net.Conn
}

func (c *sshConnection) Run(ctx context.Context, cmd string) (*Result, error) {
	return c.runWithInput(ctx, cmd, nil)
}

func (c *sshConnection) runWithInput(ctx context.Context, cmd string, stdin io.Reader) (*Result, error) {
	session, err := c.client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	defer func() { _ = session.Close() }()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr
	if stdin != nil {
		session.Stdin = stdin
	}

	done := make(chan error, 1)
	start := time.Now()
	go func() {
		done <- session.Run(cmd)
	}()

	select {
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGTERM)
		return nil, ctx.Err()
	case err := <-done:
		res := &Result{
			Args:     []string{cmd},
			Stdout:   stdout.Bytes(),
			Stderr:   stderr.Bytes(),
			Duration: time.Since(start),
		}
		if err != nil {
			var exitErr *ssh.ExitError
			if !errors.As(err, &exitErr) {
				return nil, err
			}
			res.ExitCode = exitErr.ExitStatus()
		}
		return res, nil
	}
}

func (c *sshConnection) Upload(ctx context.Context, localPath, remotePath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", localPath, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", localPath, err)
	}

	dir := ShellJoin([]string{path.Dir(remotePath)})
	target := ShellJoin([]string{remotePath})
	cmd := fmt.Sprintf("mkdir -p %s && cat > %s && chmod %o %s", dir, target, info.Mode().Perm(), target)
	res, err := c.runWithInput(ctx, cmd, f)
	if err != nil {
		return err
	}
	if !res.Success() {
		return fmt.Errorf("upload to %s: %s", remotePath, strings.TrimSpace(string(res.Stderr)))
	}
	return nil
}

func (c *sshConnection) Download(ctx context.Context, remotePath, localPath string) error {
	res, err := c.Run(ctx, "cat "+ShellJoin([]string{remotePath}))
	if err != nil {
		return err
	}
	if !res.Success() {
		return fmt.Errorf("download of %s: %s", remotePath, strings.TrimSpace(string(res.Stderr)))
	}
	if err := os.MkdirAll(filepath.Dir(localPath), 0o750); err != nil {
		return fmt.Errorf("creating directory for %s: %w", localPath, err)
	}
	if err := os.WriteFile(localPath, res.Stdout, 0o644); err != nil { //nolint:gosec // build artifacts are world readable
		return fmt.Errorf("writing %s: %w", localPath, err)
	}
	return nil
}

func (c *sshConnection) Close() error {
	err := c.client.Close()
	if c.agentConn != nil {
		_ = c.agentConn.Close()
	}
	return err
}
