package steps

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/systemstart/buildsteps/pkg/build"
	"github.com/systemstart/buildsteps/pkg/runner"
)

// writeTestFile writes content to a file in dir, failing the test on error.
func writeTestFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func readTestFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

// newTestContext returns a context inheriting the process environment with
// a runner that treats every remote target as the local machine.
func newTestContext(options map[string]string) *build.Context {
	bc := build.NewContext(build.EnvFromEnviron(os.Environ()), build.NewOptions(options))
	bc.Runner = runner.New(runner.LocalTransport{})
	return bc
}

type fakeResolver struct {
	names []string
	subs  map[string]string
	args  []string
	err   error
}

func (f *fakeResolver) Args(names []string, subs map[string]string) ([]string, error) {
	f.names = names
	f.subs = subs
	return f.args, f.err
}
