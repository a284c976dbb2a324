package processing

import (
	"log/slog"
	"time"

	"github.com/systemstart/buildsteps/pkg/build"
)

// LogObserver logs step lifecycle events.
type LogObserver struct {
	log     *slog.Logger
	bc      *build.Context
	started map[string]time.Time
}

// NewLogObserver returns an observer logging to log with the run ID attached.
func NewLogObserver(log *slog.Logger, bc *build.Context) *LogObserver {
	return &LogObserver{
		log:     log.With("run", bc.RunID),
		bc:      bc,
		started: make(map[string]time.Time),
	}
}

func (o *LogObserver) StepStarted(step build.Step) {
	o.started[step.Name] = time.Now()
	o.log.Info("running step", "step", step.Name)
}

func (o *LogObserver) StepSkipped(step build.Step, reason build.SkipReason) {
	if reason == build.SkipCondition {
		if missing := build.MissingKeys(step.Conditions, o.bc.Env.Snapshot()); len(missing) > 0 {
			o.log.Debug("condition references unset variables", "step", step.Name, "missing", missing)
		}
	}
	o.log.Info("skipping step", "step", step.Name, "reason", string(reason))
}

func (o *LogObserver) StepFinished(step build.Step, err error) {
	elapsed := time.Since(o.started[step.Name])
	delete(o.started, step.Name)
	if err != nil {
		o.log.Error("step failed", "step", step.Name, "duration", elapsed, "error", err)
		return
	}
	o.log.Info("step finished", "step", step.Name, "duration", elapsed)
}
