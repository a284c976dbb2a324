package processing

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/systemstart/buildsteps/pkg/build"
)

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	bc := build.NewContext(build.NewEnv(), build.NewOptions(nil))
	obs := NewLogObserver(logger, bc)

	windows := build.Step{Name: "setup_windows", Conditions: []build.Condition{{"OH_PLATFORM": "Windows-x86"}}}
	obs.StepSkipped(windows, build.SkipCondition)
	obs.StepSkipped(build.Step{Name: "publish", Optional: true}, build.SkipDisabled)

	step := build.Step{Name: "build"}
	obs.StepStarted(step)
	obs.StepFinished(step, errors.New("exit status 2"))

	out := buf.String()
	for _, want := range []string{
		"run=" + bc.RunID,
		`msg="condition references unset variables" run=` + bc.RunID + " step=setup_windows missing=[OH_PLATFORM]",
		"step=publish reason=disabled",
		`msg="running step"`,
		`msg="step failed"`,
		`error="exit status 2"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected log to contain %q, got:\n%s", want, out)
		}
	}
}
