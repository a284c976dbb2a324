package processing

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/systemstart/buildsteps/pkg/api"
	"github.com/systemstart/buildsteps/pkg/build"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

// loadEngine writes recipe to a temp dir and builds an engine from it.
func loadEngine(t *testing.T, recipe string, extra map[string]string) *Engine {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, api.DefaultRecipeFilename), recipe)
	for name, content := range extra {
		writeFile(t, filepath.Join(dir, name), content)
	}
	r, err := api.LoadRecipe(filepath.Join(dir, api.DefaultRecipeFilename))
	if err != nil {
		t.Fatalf("loading recipe: %v", err)
	}
	e, err := NewEngine(r)
	if err != nil {
		t.Fatalf("creating engine: %v", err)
	}
	return e
}

// newContext parses args against the engine's options.
func newContext(t *testing.T, e *Engine, args ...string) *build.Context {
	t.Helper()
	set, err := e.Options()
	if err != nil {
		t.Fatal(err)
	}
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := set.Bind(fs); err != nil {
		t.Fatal(err)
	}
	if err := fs.Parse(args); err != nil {
		t.Fatal(err)
	}
	return build.NewContext(build.EnvFromEnviron(os.Environ()), set.Values())
}

type eventLog struct {
	events []string
}

func (l *eventLog) StepStarted(s build.Step) { l.events = append(l.events, "start:"+s.Name) }
func (l *eventLog) StepSkipped(s build.Step, r build.SkipReason) {
	l.events = append(l.events, "skip:"+s.Name+":"+string(r))
}
func (l *eventLog) StepFinished(s build.Step, err error) {
	if err != nil {
		l.events = append(l.events, "fail:"+s.Name)
		return
	}
	l.events = append(l.events, "done:"+s.Name)
}
