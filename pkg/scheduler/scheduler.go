// Package scheduler drives a validated dataset through a set of predictor
// adapters. Every (record, predictor) pair gets its own status cell; the
// engine bounds the number of in-flight submissions per predictor, polls
// job-based predictors until they resolve or run out of attempts, and
// consolidates the cells into the final result table.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/loschmidt/BenchStab/pkg/dataset"
	"github.com/loschmidt/BenchStab/pkg/predictor"
	"github.com/loschmidt/BenchStab/pkg/status"
)

const (
	// DefaultBatchSize submits every eligible record at once.
	DefaultBatchSize = -1
	// DefaultMaxRetries bounds the poll attempts per job.
	DefaultMaxRetries = 100
	// DefaultWaitInterval is the pause between polls of one job.
	DefaultWaitInterval = 60 * time.Second
)

// Tuning overrides the engine defaults for a single predictor.
type Tuning struct {
	BatchSize    *int
	MaxRetries   *int
	WaitInterval *time.Duration
}

// Options configure one engine run.
type Options struct {
	// BatchSize caps concurrent in-flight submissions per predictor.
	// A negative value removes the cap.
	BatchSize    int
	MaxRetries   int
	WaitInterval time.Duration

	// Credentials are looked up by predictor name, ignoring case, for
	// adapters that require a login.
	Credentials map[string]predictor.Credentials

	// PerPredictor overrides, keyed by predictor name, ignoring case.
	PerPredictor map[string]Tuning

	// Snapshot, when set, receives an intermediate result table every
	// SnapshotInterval while the run is in flight.
	Snapshot         func(*dataset.ResultTable)
	SnapshotInterval time.Duration
}

type tuning struct {
	batchSize    int
	maxRetries   int
	waitInterval time.Duration
}

// Engine executes one dataset against a fixed predictor slice.
type Engine struct {
	predictors []predictor.Predictor
	opts       Options
	log        *zap.SugaredLogger

	ds    *dataset.Dataset
	cells map[string][]*status.Cell
}

// New builds an engine. Zero option values fall back to the defaults; a
// nil logger disables logging.
func New(predictors []predictor.Predictor, opts Options, log *zap.SugaredLogger) *Engine {
	if opts.BatchSize == 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.WaitInterval <= 0 {
		opts.WaitInterval = DefaultWaitInterval
	}
	if opts.SnapshotInterval <= 0 {
		opts.SnapshotInterval = opts.WaitInterval
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Engine{predictors: predictors, opts: opts, log: log}
}

// tuningFor resolves the per-predictor overrides, matching names
// case-insensitively like the registry does.
func (e *Engine) tuningFor(name string) tuning {
	t := tuning{
		batchSize:    e.opts.BatchSize,
		maxRetries:   e.opts.MaxRetries,
		waitInterval: e.opts.WaitInterval,
	}
	if o, ok := lookupByName(e.opts.PerPredictor, name); ok {
		if o.BatchSize != nil {
			t.batchSize = *o.BatchSize
		}
		if o.MaxRetries != nil {
			t.maxRetries = *o.MaxRetries
		}
		if o.WaitInterval != nil {
			t.waitInterval = *o.WaitInterval
		}
	}
	return t
}

// lookupByName resolves a predictor-keyed map entry the way the registry
// resolves names: an exact match first, then a case-insensitive one.
func lookupByName[V any](m map[string]V, name string) (V, bool) {
	if v, ok := m[name]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	var zero V
	return zero, false
}

// Run executes the dataset on every predictor and returns the consolidated
// table. Cancelling the context stops all submission and polling; records
// whose fate is undecided at that point are reported in their last
// blocking status.
func (e *Engine) Run(ctx context.Context, ds *dataset.Dataset) (*dataset.ResultTable, error) {
	if len(ds.Records) == 0 {
		return nil, fmt.Errorf("dataset has no records to predict")
	}
	if len(e.predictors) == 0 {
		return nil, fmt.Errorf("no predictors selected")
	}

	e.ds = ds
	e.cells = make(map[string][]*status.Cell, len(e.predictors))
	for _, p := range e.predictors {
		cells := make([]*status.Cell, len(ds.Records))
		for i := range cells {
			cells[i] = status.NewCell()
		}
		e.cells[p.Name()] = cells
	}

	if e.opts.Snapshot != nil {
		c := cron.New()
		spec := fmt.Sprintf("@every %s", e.opts.SnapshotInterval)
		if _, err := c.AddFunc(spec, func() { e.opts.Snapshot(e.Table()) }); err != nil {
			return nil, fmt.Errorf("failed to schedule result snapshots: %w", err)
		}
		c.Start()
		defer c.Stop()
	}

	var wg sync.WaitGroup
	for _, p := range e.predictors {
		wg.Add(1)
		go func(p predictor.Predictor) {
			defer wg.Done()
			e.runPredictor(ctx, p)
		}(p)
	}
	wg.Wait()

	return e.Table(), nil
}

// Table consolidates the current cell states into a result table, ordered
// by predictor and then by record input order. It is safe to call while
// the run is still in flight.
func (e *Engine) Table() *dataset.ResultTable {
	table := &dataset.ResultTable{}
	for _, p := range e.predictors {
		cells := e.cells[p.Name()]
		for i, rec := range e.ds.Records {
			snap := cells[i].Snapshot()
			table.Rows = append(table.Rows, dataset.ResultRow{
				Identifier:     rec.Identifier.Raw,
				Mutation:       rec.Mutation.String(),
				Chain:          rec.Chain,
				DDG:            snap.DDG,
				Status:         string(snap.Status),
				StatusMessage:  snap.Message,
				Predictor:      p.Name(),
				InputType:      string(p.InputType()),
				URL:            snap.URL,
				ElapsedSeconds: snap.Elapsed.Seconds(),
			})
		}
	}
	return table
}

// runPredictor handles one predictor end to end: availability probe,
// one-time authentication, then the bounded worker pool.
func (e *Engine) runPredictor(ctx context.Context, p predictor.Predictor) {
	name := p.Name()
	cells := e.cells[name]
	log := e.log.With("predictor", name)

	if pinger, ok := p.(predictor.Pinger); ok {
		if err := pinger.Ping(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warnw("predictor is not available", "error", err)
			e.terminateAll(ctx, cells, status.NotAvailable, err.Error())
			return
		}
	}

	if auth, ok := p.(predictor.Authenticator); ok {
		creds, _ := lookupByName(e.opts.Credentials, name)
		if err := auth.Authenticate(ctx, creds); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warnw("authentication failed", "error", err)
			e.terminateAll(ctx, cells, status.AuthFailed, err.Error())
			return
		}
	}

	// Collect the record indexes this predictor can actually take; the
	// rest fail immediately with an explanatory message.
	var eligible []int
	for i, rec := range e.ds.Records {
		if predictor.Accepts(p.InputType(), rec) {
			eligible = append(eligible, i)
		} else {
			e.terminate(ctx, cells[i], status.Failed,
				fmt.Sprintf("record is not usable as %s input", p.InputType()))
		}
	}
	if len(eligible) == 0 {
		log.Infow("no eligible records")
		return
	}

	t := e.tuningFor(name)
	workers := t.batchSize
	if workers <= 0 || workers > len(eligible) {
		workers = len(eligible)
	}
	log.Infow("starting batch", "records", len(eligible), "workers", workers)

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				e.runJob(ctx, p, t, &predictor.Job{
					RunID:       e.ds.RunID,
					RecordIndex: idx,
					Record:      e.ds.Records[idx],
				}, cells[idx])
			}
		}()
	}
	for _, idx := range eligible {
		select {
		case jobs <- idx:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		}
	}
	close(jobs)
	wg.Wait()
}

// runJob drives one record through submission and, for job-based
// predictors, the poll loop. The cell is written only by this goroutine,
// and never after the context is cancelled.
func (e *Engine) runJob(ctx context.Context, p predictor.Predictor, t tuning, job *predictor.Job, cell *status.Cell) {
	if ctx.Err() != nil {
		return
	}
	if err := cell.Begin(); err != nil {
		return
	}

	submitter, ok := p.(predictor.Submitter)
	if !ok {
		e.terminate(ctx, cell, status.OtherFailure, "predictor cannot submit jobs")
		return
	}
	sub, err := submitter.Submit(ctx, job)
	if err != nil {
		e.fail(ctx, cell, err)
		return
	}
	if sub == nil {
		e.terminate(ctx, cell, status.OtherFailure, "predictor returned neither a submission nor an error")
		return
	}

	if sub.Result != nil {
		e.resolve(ctx, cell, sub.Result)
		return
	}

	poller, ok := p.(predictor.Poller)
	if !ok {
		e.terminate(ctx, cell, status.OtherFailure, "predictor returned a pending job but cannot poll")
		return
	}
	cell.SetURL(sub.PollURL)
	e.terminate(ctx, cell, status.Waiting, "")

	for {
		attempt := cell.RecordAttempt()
		res, err := poller.Poll(ctx, sub)
		switch {
		case err == nil:
			e.resolve(ctx, cell, res)
			return
		case errors.Is(err, predictor.ErrStillRunning):
			if attempt >= t.maxRetries {
				e.terminate(ctx, cell, status.TimedOut,
					fmt.Sprintf("no result after %d poll attempts", attempt))
				return
			}
			// ErrProcessing moves the cell to the active phase; plain
			// ErrStillRunning keeps it queued.
			phase := status.Waiting
			if errors.Is(err, predictor.ErrProcessing) {
				phase = status.Processing
			}
			e.terminate(ctx, cell, phase, "")
		default:
			e.fail(ctx, cell, err)
			return
		}

		select {
		case <-time.After(t.waitInterval):
		case <-ctx.Done():
			return
		}
	}
}

func (e *Engine) resolve(ctx context.Context, cell *status.Cell, res *predictor.Result) {
	if ctx.Err() != nil {
		return
	}
	if err := cell.Resolve(res.DDG, res.URL, res.Message); err != nil {
		e.log.Warnw("dropping late result for terminal record", "error", err)
	}
}

// fail maps an adapter error onto the matching terminal status.
func (e *Engine) fail(ctx context.Context, cell *status.Cell, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return
	}

	var (
		transport *predictor.TransportError
		parse     *predictor.ResponseParseError
		jobErr    *predictor.JobError
	)
	switch {
	case errors.As(err, &transport):
		e.terminate(ctx, cell, status.ConnectionFailed, err.Error())
	case errors.As(err, &parse):
		e.terminate(ctx, cell, status.ParseFailed, err.Error())
	case errors.As(err, &jobErr):
		e.terminate(ctx, cell, status.Failed, err.Error())
	default:
		e.terminate(ctx, cell, status.OtherFailure, err.Error())
	}
}

func (e *Engine) terminate(ctx context.Context, cell *status.Cell, to status.Status, message string) {
	if ctx.Err() != nil {
		return
	}
	if err := cell.Transition(to, message); err != nil {
		e.log.Warnw("rejected status transition", "error", err)
	}
}

func (e *Engine) terminateAll(ctx context.Context, cells []*status.Cell, to status.Status, message string) {
	for _, cell := range cells {
		e.terminate(ctx, cell, to, message)
	}
}
