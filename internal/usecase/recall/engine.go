package recall

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchd/internal/domain/recall"
	"github.com/kailas-cloud/searchd/internal/domain/search/request"
	"github.com/kailas-cloud/searchd/internal/metrics"
)

// Orchestrator defaults.
const (
	DefaultPoolSize    = 3
	DefaultPathTimeout = 800 * time.Millisecond
)

// Config tunes the recall orchestrator.
type Config struct {
	PoolSize    int
	PathTimeout time.Duration
}

// Engine dispatches the enabled recall paths to a bounded worker pool and concatenates their output.
type Engine struct {
	pool    *ants.Pool
	sources []Source
	timeout time.Duration
	logger  *zap.Logger
}

// NewEngine creates the orchestrator. Sources run and concatenate in keyword, vector, hot order.
func NewEngine(cfg Config, logger *zap.Logger, sources ...Source) (*Engine, error) {
	size := cfg.PoolSize
	if size < 1 {
		size = DefaultPoolSize
	}
	timeout := cfg.PathTimeout
	if timeout <= 0 {
		timeout = DefaultPathTimeout
	}

	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, fmt.Errorf("create recall pool: %w", err)
	}

	ordered := make([]Source, len(sources))
	copy(ordered, sources)
	sort.SliceStable(ordered, func(i, j int) bool {
		return pathRank(ordered[i].Path()) < pathRank(ordered[j].Path())
	})

	return &Engine{pool: pool, sources: ordered, timeout: timeout, logger: logger}, nil
}

func pathRank(p recall.Source) int {
	for i, path := range recall.Paths {
		if path == p {
			return i
		}
	}
	return len(recall.Paths)
}

// Release stops the worker pool. The engine must not be used afterwards.
func (e *Engine) Release() {
	e.pool.Release()
}

// Recall runs every enabled path concurrently and returns their results concatenated.
// A path that fails, panics or times out contributes nothing; Recall itself never fails.
//
// The pool is shared by all requests, so a path may queue behind other requests' work.
// Its deadline starts before it is queued: time spent waiting for a worker counts
// against PathTimeout, and a path whose deadline passes in the queue never runs.
func (e *Engine) Recall(ctx context.Context, index string, req *request.Request) []recall.Result {
	if ctx.Err() != nil {
		return nil
	}

	var enabled []Source
	for _, src := range e.sources {
		if src.Enabled(req) {
			enabled = append(enabled, src)
		}
	}
	if len(enabled) == 0 {
		return nil
	}

	runs := make([]*pathRun, len(enabled))
	for i, src := range enabled {
		pctx, cancel := context.WithTimeout(ctx, e.timeout)
		runs[i] = &pathRun{ctx: pctx, cancel: cancel, src: src, done: make(chan []recall.Result, 1)}
		go e.dispatch(runs[i], index, req)
	}
	defer func() {
		for _, run := range runs {
			run.cancel()
		}
	}()

	perPath := make([][]recall.Result, len(runs))
	total := 0
	for i, run := range runs {
		rs, ok := run.wait()
		if !ok && !run.started.Load() {
			e.expired(run.src.Path(), index, run.ctx.Err())
		}
		perPath[i] = rs
		total += len(rs)
	}

	out := make([]recall.Result, 0, total)
	for _, rs := range perPath {
		out = append(out, rs...)
	}
	return out
}

// pathRun is one path of one Recall call. done is buffered so the worker never blocks
// on a caller that has already given up.
type pathRun struct {
	ctx     context.Context
	cancel  context.CancelFunc
	src     Source
	done    chan []recall.Result
	started atomic.Bool
}

// wait returns the path's results, or false once its deadline passes first.
// Results that are already delivered win over an expired deadline.
func (r *pathRun) wait() ([]recall.Result, bool) {
	select {
	case rs := <-r.done:
		return rs, true
	case <-r.ctx.Done():
		select {
		case rs := <-r.done:
			return rs, true
		default:
			return nil, false
		}
	}
}

// dispatch queues the run on the pool. Submit blocks while every worker is busy.
func (e *Engine) dispatch(run *pathRun, index string, req *request.Request) {
	err := e.pool.Submit(func() {
		var rs []recall.Result
		defer func() { run.done <- rs }()
		defer e.recoverPath(run.src.Path(), index)

		if run.ctx.Err() != nil {
			return
		}
		run.started.Store(true)
		rs = run.src.Recall(run.ctx, index, req)
	})
	if err != nil {
		run.done <- nil
		metrics.RecallPathFailuresTotal.WithLabelValues(string(run.src.Path()), metrics.ReasonRejected).Inc()
		e.logger.Warn("Recall path rejected by pool",
			zap.String("path", string(run.src.Path())),
			zap.String("index", index),
			zap.Error(err),
		)
	}
}

// expired records a path whose deadline passed before a worker picked it up.
// Caller cancellation is not a path failure and is not counted.
func (e *Engine) expired(path recall.Source, index string, err error) {
	if !errors.Is(err, context.DeadlineExceeded) {
		return
	}
	metrics.RecallPathFailuresTotal.WithLabelValues(string(path), metrics.ReasonTimeout).Inc()
	e.logger.Warn("Recall path timed out waiting for a worker",
		zap.String("path", string(path)),
		zap.String("index", index),
	)
}

func (e *Engine) recoverPath(path recall.Source, index string) {
	if r := recover(); r != nil {
		metrics.RecallPathFailuresTotal.WithLabelValues(string(path), metrics.ReasonPanic).Inc()
		e.logger.Error("Recall path panicked",
			zap.String("path", string(path)),
			zap.String("index", index),
			zap.Any("panic", r),
			zap.ByteString("stack", debug.Stack()),
		)
	}
}
