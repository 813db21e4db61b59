package tasks

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrAlreadyRunning is returned when a task is triggered while a run for the
// same task is still in flight. Overlapping runs for the same key are not
// race-free, so they are serialized here rather than in the engine.
var ErrAlreadyRunning = fmt.Errorf("task already running")

// RunFunc is the unit of work a task executes.
type RunFunc func() error

// RunInfo describes the most recent run of a task.
type RunInfo struct {
	ID         string     `json:"id"`
	Task       string     `json:"task"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Error      string     `json:"error,omitempty"`
}

type task struct {
	name    string
	run     RunFunc
	running bool
	lastRun *RunInfo
}

// Registry holds named tasks with injected run functions. It is constructed
// once per process and passed by reference; there is no package-level state.
type Registry struct {
	mu    sync.Mutex
	tasks map[string]*task
	log   zerolog.Logger
}

// NewRegistry creates a new task registry
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		tasks: make(map[string]*task),
		log:   log.With().Str("component", "task_registry").Logger(),
	}
}

// Register adds a task. Registering an existing name replaces its run
// function.
func (r *Registry) Register(name string, run RunFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[name] = &task{name: name, run: run}
}

// Run executes a task synchronously. It returns ErrAlreadyRunning when a run
// for the same task is in flight, and the task's own error otherwise.
func (r *Registry) Run(name string) error {
	r.mu.Lock()
	t, ok := r.tasks[name]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("unknown task %q", name)
	}
	if t.running {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAlreadyRunning, name)
	}

	info := &RunInfo{
		ID:        uuid.New().String(),
		Task:      name,
		StartedAt: time.Now(),
	}
	t.running = true
	t.lastRun = info
	run := t.run
	r.mu.Unlock()

	r.log.Info().Str("task", name).Str("run_id", info.ID).Msg("Task started")
	err := run()

	r.mu.Lock()
	finished := time.Now()
	info.FinishedAt = &finished
	if err != nil {
		info.Error = err.Error()
	}
	t.running = false
	r.mu.Unlock()

	if err != nil {
		r.log.Error().Err(err).Str("task", name).Str("run_id", info.ID).Msg("Task failed")
		return err
	}

	r.log.Info().Str("task", name).Str("run_id", info.ID).Msg("Task completed")
	return nil
}

// Names returns all registered task names, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.tasks))
	for name := range r.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns the last run info per task, keyed by task name. Tasks that
// never ran are absent.
func (r *Registry) Snapshot() map[string]RunInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]RunInfo, len(r.tasks))
	for name, t := range r.tasks {
		if t.lastRun != nil {
			out[name] = *t.lastRun
		}
	}
	return out
}

// IsAlreadyRunning reports whether err is an overlapping-run rejection.
func IsAlreadyRunning(err error) bool {
	return errors.Is(err, ErrAlreadyRunning)
}

// IsRunning reports whether a task run is currently in flight.
func (r *Registry) IsRunning(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[name]
	return ok && t.running
}
