package creative

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"scaler/internal/domain"
)

// RunState is the lifecycle phase of a batch run.
type RunState string

const (
	RunRunning   RunState = "running"
	RunCompleted RunState = "completed"
	RunCancelled RunState = "cancelled"
)

// RunSnapshot is a point-in-time copy of a batch run's progress. Callers get
// copies; the registry's internal state is never shared.
type RunSnapshot struct {
	ID         string
	State      RunState
	Prompt     string
	Total      int
	Completed  int
	Failed     int
	Outcomes   []CreativeOutcome
	StartedAt  time.Time
	FinishedAt time.Time
}

type run struct {
	mu       sync.Mutex
	snapshot RunSnapshot
	cancel   context.CancelFunc
}

// Registry tracks in-flight and recently finished batch runs in memory so
// handlers can answer progress queries while a batch executes on a background
// goroutine. Runs do not survive a restart.
type Registry struct {
	mu         sync.Mutex
	runs       map[string]*run
	composer   *Composer
	logger     zerolog.Logger
	onComplete func(snap RunSnapshot)
}

// RegistryOptions configures a Registry. OnComplete, when set, fires once per
// run after it reaches a terminal state.
type RegistryOptions struct {
	Composer   *Composer
	Logger     zerolog.Logger
	OnComplete func(snap RunSnapshot)
}

func NewRegistry(opts RegistryOptions) *Registry {
	return &Registry{
		runs:       make(map[string]*run),
		composer:   opts.Composer,
		logger:     opts.Logger,
		onComplete: opts.OnComplete,
	}
}

// Start launches a batch generation run on a background goroutine and returns
// its ID immediately. The run detaches from the caller's request context; it
// stops only on completion or an explicit Cancel.
func (r *Registry) Start(batch CreativeBatch, concurrency int) string {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())

	active := &run{
		snapshot: RunSnapshot{
			ID:        id,
			State:     RunRunning,
			Prompt:    batch.Prompt,
			Total:     len(batch.Variants),
			Outcomes:  make([]CreativeOutcome, len(batch.Variants)),
			StartedAt: time.Now(),
		},
		cancel: cancel,
	}

	r.mu.Lock()
	r.runs[id] = active
	r.mu.Unlock()

	go func() {
		defer cancel()

		outcomes := r.composer.GenerateBatch(ctx, batch, BatchOptions{
			Concurrency: concurrency,
			OnResult: func(index int, outcome CreativeOutcome) {
				active.mu.Lock()
				active.snapshot.Outcomes[index] = outcome
				active.snapshot.Completed++
				if outcome.Failed() {
					active.snapshot.Failed++
				}
				active.mu.Unlock()
			},
		})

		active.mu.Lock()
		active.snapshot.Outcomes = outcomes
		if ctx.Err() != nil && active.snapshot.Completed < active.snapshot.Total {
			active.snapshot.State = RunCancelled
		} else {
			active.snapshot.State = RunCompleted
		}
		active.snapshot.FinishedAt = time.Now()
		snap := cloneSnapshot(active.snapshot)
		active.mu.Unlock()

		r.logger.Info().
			Str("run_id", id).
			Str("state", string(snap.State)).
			Int("total", snap.Total).
			Int("failed", snap.Failed).
			Dur("elapsed", snap.FinishedAt.Sub(snap.StartedAt)).
			Msg("batch run finished")

		if r.onComplete != nil {
			r.onComplete(snap)
		}
	}()

	return id
}

// Snapshot returns a copy of the run's current progress.
func (r *Registry) Snapshot(id string) (RunSnapshot, error) {
	r.mu.Lock()
	active, ok := r.runs[id]
	r.mu.Unlock()
	if !ok {
		return RunSnapshot{}, domain.ErrRunNotFound
	}

	active.mu.Lock()
	defer active.mu.Unlock()
	return cloneSnapshot(active.snapshot), nil
}

// Cancel stops a running batch. Items already in flight settle normally; no
// new chunk starts. Cancelling a finished run is a no-op.
func (r *Registry) Cancel(id string) error {
	r.mu.Lock()
	active, ok := r.runs[id]
	r.mu.Unlock()
	if !ok {
		return domain.ErrRunNotFound
	}

	active.cancel()
	return nil
}

// List returns snapshots of all known runs, most recent first.
func (r *Registry) List() []RunSnapshot {
	r.mu.Lock()
	all := make([]*run, 0, len(r.runs))
	for _, active := range r.runs {
		all = append(all, active)
	}
	r.mu.Unlock()

	snaps := make([]RunSnapshot, 0, len(all))
	for _, active := range all {
		active.mu.Lock()
		snaps = append(snaps, cloneSnapshot(active.snapshot))
		active.mu.Unlock()
	}
	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].StartedAt.After(snaps[j].StartedAt)
	})
	return snaps
}

func cloneSnapshot(s RunSnapshot) RunSnapshot {
	out := s
	out.Outcomes = make([]CreativeOutcome, len(s.Outcomes))
	copy(out.Outcomes, s.Outcomes)
	return out
}
