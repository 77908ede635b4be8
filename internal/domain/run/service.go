package run

import (
	"context"
	"errors"
	"io/fs"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/gil906/Python-solver-stepbystep/internal/infrastructure/monitoring"
	"github.com/gil906/Python-solver-stepbystep/internal/logging"
	"github.com/gil906/Python-solver-stepbystep/internal/shared/hash"
	"github.com/gil906/Python-solver-stepbystep/internal/shared/id"
	"github.com/gil906/Python-solver-stepbystep/internal/trace"
	"github.com/gil906/Python-solver-stepbystep/internal/trace/recorder"
)

// ErrNotFound reports an unknown run ID.
var ErrNotFound = errors.New("run not found")

// Executor runs one program and reports its trace. The error means the
// program never ran at all (pool saturated, worker failed to spawn); a
// program that ran and failed is still a nil-error Result.
type Executor interface {
	Execute(ctx context.Context, code string) (trace.Result, error)
	ExecuteStream(ctx context.Context, code string, sink recorder.Sink) (trace.Result, error)
}

// Service executes programs, retains finished runs, and replays them.
type Service struct {
	exec    Executor
	store   *Store
	hist    *history
	group   singleflight.Group
	logger  *logging.Logger
	metrics *monitoring.Metrics

	mu        sync.RWMutex
	retain    int               // max summaries kept, 0 keeps everything
	byHash    map[string]string // code hash -> run id, cacheable outcomes only
	summaries []Summary         // oldest first

	records sync.Map // run id -> *Record, demand-loaded
}

// NewService builds a Service over exec and store, rebuilding the
// in-memory index from whatever the store already holds.
func NewService(exec Executor, store *Store, logger *logging.Logger) *Service {
	s := &Service{
		exec:   exec,
		store:  store,
		hist:   newHistory(),
		logger: logger,
		byHash: make(map[string]string),
	}
	s.loadIndex()
	return s
}

// WithMetrics attaches the metrics collector.
func (s *Service) WithMetrics(m *monitoring.Metrics) *Service {
	s.metrics = m
	return s
}

// WithRetention caps how many finished runs stay retrievable. The
// oldest runs are evicted as new ones land, including any the store
// held from previous processes. n <= 0 keeps everything.
func (s *Service) WithRetention(n int) *Service {
	s.mu.Lock()
	s.retain = n
	evicted := s.evictLocked()
	s.mu.Unlock()

	s.dropEvicted(evicted)
	return s
}

func (s *Service) loadIndex() {
	ids, err := s.store.IDs()
	if err != nil {
		s.logger.Warn("run index scan failed", zap.Error(err))
		return
	}

	for _, runID := range ids {
		rec, err := s.store.Load(runID)
		if err != nil {
			s.logger.Warn("skipping unreadable run", zap.String("run_id", runID), zap.Error(err))
			continue
		}
		s.index(rec)
	}

	if len(ids) > 0 {
		s.logger.Info("run index rebuilt", zap.Int("runs", len(s.summaries)))
	}
}

// index registers a persisted record in the in-memory views.
func (s *Service) index(rec *Record) {
	s.mu.Lock()
	s.summaries = append(s.summaries, rec.Summarize())
	if cacheable(rec.Outcome) {
		s.byHash[rec.CodeHash] = rec.ID
	}
	evicted := s.evictLocked()
	s.mu.Unlock()

	s.dropEvicted(evicted)
}

// evictLocked trims summaries past the retention cap, cleans the hash
// index, and returns the trimmed entries for cleanup outside the lock.
// Caller holds s.mu.
func (s *Service) evictLocked() []Summary {
	if s.retain <= 0 || len(s.summaries) <= s.retain {
		return nil
	}

	n := len(s.summaries) - s.retain
	evicted := make([]Summary, n)
	copy(evicted, s.summaries[:n])
	s.summaries = append(s.summaries[:0:0], s.summaries[n:]...)

	for _, old := range evicted {
		if s.byHash[old.CodeHash] == old.ID {
			delete(s.byHash, old.CodeHash)
		}
	}
	return evicted
}

// dropEvicted removes evicted runs from the record cache and the store.
func (s *Service) dropEvicted(evicted []Summary) {
	for _, old := range evicted {
		s.records.Delete(old.ID)
		if err := s.store.Delete(old.ID); err != nil {
			s.logger.Warn("evicted run not removed from store",
				zap.String("run_id", old.ID), zap.Error(err))
			continue
		}
		s.logger.Debug("run evicted", zap.String("run_id", old.ID))
	}
}

// Execute runs code, reusing the recorded result when byte-identical
// source was already traced. The returned bool reports such reuse,
// whether from the store or from sharing a concurrent execution.
func (s *Service) Execute(ctx context.Context, code string) (*Record, bool, error) {
	key := hash.Code(code)

	if rec, ok := s.lookupHash(key); ok {
		s.hist.hit()
		if s.metrics != nil {
			s.metrics.IncCacheHits()
		}
		return rec, true, nil
	}

	v, err, shared := s.group.Do(key, func() (interface{}, error) {
		return s.runOnce(ctx, code, key, nil)
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*Record), shared, nil
}

// ExecuteStream runs code with a live step sink. A cache hit replays the
// stored steps through the sink instead of re-executing. Streams never
// share an execution: each caller wants its own step flow.
func (s *Service) ExecuteStream(ctx context.Context, code string, sink recorder.Sink) (*Record, bool, error) {
	key := hash.Code(code)

	if rec, ok := s.lookupHash(key); ok {
		s.hist.hit()
		if s.metrics != nil {
			s.metrics.IncCacheHits()
		}
		if sink != nil {
			for i := range rec.Result.Trace {
				if err := sink.Step(rec.Result.Trace[i]); err != nil {
					break
				}
			}
		}
		return rec, true, nil
	}

	rec, err := s.runOnce(ctx, code, key, sink)
	return rec, false, err
}

func (s *Service) runOnce(ctx context.Context, code, key string, sink recorder.Sink) (*Record, error) {
	if s.metrics != nil {
		s.metrics.IncRunsActive()
		defer s.metrics.DecRunsActive()
	}

	start := time.Now()
	res, err := s.exec.ExecuteStream(ctx, code, sink)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	rec := &Record{
		ID:         string(id.NewRunID()),
		CodeHash:   key,
		Code:       code,
		Outcome:    classify(&res),
		Steps:      len(res.Trace),
		DurationMs: float64(elapsed.Microseconds()) / 1000.0,
		CreatedAt:  time.Now().UTC(),
		Result:     res,
	}

	// An abandoned run has an interrupted, caller-less result. Hand it
	// back but keep nothing.
	if ctx.Err() != nil {
		return rec, nil
	}

	s.hist.observe(rec)
	if s.metrics != nil {
		s.metrics.RecordRun(string(rec.Outcome), elapsed, rec.Steps)
	}

	if err := s.store.Save(rec); err != nil {
		s.logger.Warn("run not persisted", zap.String("run_id", rec.ID), zap.Error(err))
	} else {
		s.records.Store(rec.ID, rec)
		s.index(rec)
	}

	s.logger.Info("run finished",
		zap.String("run_id", rec.ID),
		zap.String("code_hash", hash.Short(key)),
		zap.String("outcome", string(rec.Outcome)),
		zap.Int("steps", rec.Steps),
		zap.Duration("duration", elapsed),
	)
	return rec, nil
}

func (s *Service) lookupHash(key string) (*Record, bool) {
	s.mu.RLock()
	runID, ok := s.byHash[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	rec, err := s.Get(runID)
	if err != nil {
		return nil, false
	}
	return rec, true
}

// Get returns one run by ID.
func (s *Service) Get(runID string) (*Record, error) {
	if v, ok := s.records.Load(runID); ok {
		return v.(*Record), nil
	}

	rec, err := s.store.Load(runID)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.records.Store(runID, rec)
	return rec, nil
}

// List returns run summaries, newest first. limit <= 0 means all.
func (s *Service) List(limit int) []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.summaries)
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]Summary, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.summaries[i])
	}
	return out
}

// Delete removes a run from the store and every in-memory view.
func (s *Service) Delete(runID string) error {
	if err := s.store.Delete(runID); err != nil {
		return err
	}
	s.records.Delete(runID)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.summaries {
		if s.summaries[i].ID == runID {
			s.summaries = append(s.summaries[:i], s.summaries[i+1:]...)
			break
		}
	}
	for key, id := range s.byHash {
		if id == runID {
			delete(s.byHash, key)
			break
		}
	}
	return nil
}

// Stats reports aggregate run history.
func (s *Service) Stats() Stats {
	return s.hist.snapshot()
}
