// Package syncer drives per-entity repositories through paginated downloads
// in dependency order, checkpoints a durable cursor after every applied
// page, and recovers individual bad records by re-fetching them by id.
package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dmitrijs2005/routesales/internal/api"
	"github.com/dmitrijs2005/routesales/internal/failure"
	"github.com/dmitrijs2005/routesales/internal/logging"
	"github.com/dmitrijs2005/routesales/internal/repo"
)

// Syncer is the repository surface the orchestrator drives. Every
// *repo.Repository[T] satisfies it.
type Syncer interface {
	Name() string
	SyncFromAPI(ctx context.Context, p repo.SyncParams) (*api.Envelope, error)
	ApplyBatch(ctx context.Context, env *api.Envelope) (applied int, maxUpdate string, failed []int64, err error)
	RetryRecord(ctx context.Context, id int64) error
	ClearAll(ctx context.Context) error
}

// Report summarizes one entity's sync run.
type Report struct {
	Entity  string
	Pages   int
	Applied int
	Retried []int64 // ids recovered through single-record retry
	Skipped []int64 // ids that failed even after retry
	Err     error   // terminal error, nil when the entity completed
}

// Options tune the orchestrator.
type Options struct {
	UserType  string
	UserID    int64
	PageLimit int

	// RetryBase is the first backoff delay for network failures;
	// RetryAttempts caps how many times one page download is retried.
	RetryBase     time.Duration
	RetryAttempts uint64
}

func (o *Options) withDefaults() {
	if o.PageLimit <= 0 {
		o.PageLimit = 100
	}
	if o.RetryBase <= 0 {
		o.RetryBase = 500 * time.Millisecond
	}
	if o.RetryAttempts == 0 {
		o.RetryAttempts = 3
	}
}

// Orchestrator runs registered syncers in registration order. Sync for any
// single entity is serialized by a per-entity mutex: the repositories do
// not guard against overlapping page application themselves.
type Orchestrator struct {
	states  *StateStore
	syncers []Syncer
	locks   map[string]*sync.Mutex
	opts    Options
	log     logging.Logger
}

// New builds an orchestrator. Register syncers in dependency order: parents
// first so read-time joins resolve as soon as each entity lands.
func New(states *StateStore, log logging.Logger, opts Options) *Orchestrator {
	opts.withDefaults()
	return &Orchestrator{
		states: states,
		locks:  make(map[string]*sync.Mutex),
		opts:   opts,
		log:    log,
	}
}

// Register appends syncers to the run order.
func (o *Orchestrator) Register(syncers ...Syncer) {
	for _, s := range syncers {
		o.syncers = append(o.syncers, s)
		o.locks[s.Name()] = &sync.Mutex{}
	}
}

// SyncAll runs every registered entity in order and returns one report per
// entity. A failed entity does not stop the ones after it, except for
// database failures, which abort the run (the store itself is in doubt).
func (o *Orchestrator) SyncAll(ctx context.Context) []Report {
	reports := make([]Report, 0, len(o.syncers))
	for _, s := range o.syncers {
		rep := o.syncOne(ctx, s, false)
		reports = append(reports, rep)
		if rep.Err != nil && failure.KindOf(rep.Err) == failure.KindDatabase {
			break
		}
	}
	return reports
}

// SyncEntity runs a single entity by name.
func (o *Orchestrator) SyncEntity(ctx context.Context, name string) Report {
	for _, s := range o.syncers {
		if s.Name() == name {
			return o.syncOne(ctx, s, false)
		}
	}
	return Report{Entity: name, Err: failure.Unknownf("no syncer registered for %q", name)}
}

// FullResync clears every entity and its cursor, then downloads everything
// from scratch.
func (o *Orchestrator) FullResync(ctx context.Context) []Report {
	reports := make([]Report, 0, len(o.syncers))
	for _, s := range o.syncers {
		rep := o.syncOne(ctx, s, true)
		reports = append(reports, rep)
		if rep.Err != nil && failure.KindOf(rep.Err) == failure.KindDatabase {
			break
		}
	}
	return reports
}

func (o *Orchestrator) syncOne(ctx context.Context, s Syncer, fresh bool) Report {
	rep := Report{Entity: s.Name()}
	log := o.log.With("entity", s.Name())

	mu := o.locks[s.Name()]
	mu.Lock()
	defer mu.Unlock()

	if fresh {
		if err := s.ClearAll(ctx); err != nil {
			rep.Err = err
			return rep
		}
		if err := o.states.Reset(ctx, s.Name()); err != nil {
			rep.Err = err
			return rep
		}
	}

	st, err := o.states.Get(ctx, s.Name(), o.opts.PageLimit)
	if err != nil {
		rep.Err = err
		return rep
	}

	// The watermark for the next run is collected across pages and only
	// promoted once the final page has been applied, so part numbering
	// stays consistent with the watermark the run started from.
	runMax := st.UpdateDate

	for {
		env, err := o.downloadPage(ctx, s, st)
		if err != nil {
			rep.Err = err
			log.Error(ctx, "page download failed", "part", st.PartNo, "error", err)
			return rep
		}

		pageSize := len(env.Items())

		applied, maxUpdate, failed, err := s.ApplyBatch(ctx, env)
		if err != nil {
			rep.Err = err
			log.Error(ctx, "page apply failed", "part", st.PartNo, "error", err)
			return rep
		}
		rep.Pages++
		rep.Applied += applied
		if maxUpdate > runMax {
			runMax = maxUpdate
		}

		for _, id := range failed {
			if err := s.RetryRecord(ctx, id); err != nil {
				log.Warn(ctx, "record skipped after retry", "id", id, "error", err)
				rep.Skipped = append(rep.Skipped, id)
				continue
			}
			rep.Retried = append(rep.Retried, id)
			rep.Applied++
		}

		done := pageSize < st.PageLimit
		if done {
			st.PartNo = 1
			st.UpdateDate = runMax
		} else {
			st.PartNo++
		}
		if err := o.states.Put(ctx, st); err != nil {
			rep.Err = err
			return rep
		}
		if done {
			log.Info(ctx, "sync complete", "pages", rep.Pages, "applied", rep.Applied,
				"skipped", len(rep.Skipped))
			return rep
		}
		log.Debug(ctx, "page applied", "part", st.PartNo-1, "records", applied)
	}
}

// downloadPage fetches one batch page, retrying transport failures with
// exponential backoff. Server rejections and decode problems are not
// retried here.
func (o *Orchestrator) downloadPage(ctx context.Context, s Syncer, st State) (*api.Envelope, error) {
	b := retry.WithMaxRetries(o.opts.RetryAttempts, retry.NewExponential(o.opts.RetryBase))

	var env *api.Envelope
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		e, err := s.SyncFromAPI(ctx, repo.Batch(
			st.PartNo, st.PageLimit, o.opts.UserType, o.opts.UserID, st.UpdateDate))
		if err != nil {
			if failure.IsRetryable(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		env = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return env, nil
}
