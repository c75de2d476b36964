package scheduler

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/zinoono/evemarket/internal/task"
)

// Scheduler holds a cron expression and the tasks it fans out to.
type Scheduler struct {
	name   string
	spec   string
	tasks  []*task.RegionTask
	cron   *cron.Cron
	logger *slog.Logger
}

// New creates a Scheduler. The spec is a six-field cron expression with a
// leading seconds field, e.g. "0 */30 * * * *".
func New(name, spec string, tasks []*task.RegionTask, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	parser := cron.NewParser(
		cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
	)
	return &Scheduler{
		name:   name,
		spec:   spec,
		tasks:  tasks,
		cron:   cron.New(cron.WithParser(parser)),
		logger: logger,
	}
}

// Start registers the cron entry and begins the timer loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.fire); err != nil {
		return fmt.Errorf("parse cron %q: %w", s.spec, err)
	}
	s.cron.Start()

	s.logger.Info("scheduler started",
		"scheduler", s.name,
		"cron", s.spec,
		"tasks", len(s.tasks),
	)
	return nil
}

// fire triggers every registered task. Triggers are fire-and-forget; a task
// already running drops the trigger itself.
func (s *Scheduler) fire() {
	s.logger.Debug("scheduler tick", "scheduler", s.name)
	for _, t := range s.tasks {
		go t.Trigger()
	}
}

// Stop cancels the timer loop. In-flight task runs are unaffected; they are
// independent units stopped via their own Stop.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("scheduler stopped", "scheduler", s.name)
}
