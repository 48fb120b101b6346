// Package executor runs planned batches against the translation engine,
// sequentially or on a bounded worker pool, and folds failures into
// layered per-unit outcomes. A unit is never dropped: translations
// always align one-to-one with a batch's units, with the original text
// substituted when translation fails.
package executor

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/valpere/nllbd/internal/engine"
	"github.com/valpere/nllbd/internal/planner"
	"github.com/valpere/nllbd/internal/profile"
)

// maxPoolWidth caps the worker pool regardless of parallelism.
const maxPoolWidth = 4

// UnitResult is the layered outcome for one unit: either a real
// translation or the untranslated original, tagged so callers can tell
// a fully failed request from a partially degraded one.
type UnitResult struct {
	Text     string
	Degraded bool
}

// BatchOutcome holds the results for one batch, aligned one-to-one with
// the batch's units.
type BatchOutcome struct {
	BatchIndex int
	Units      []planner.Unit
	Results    []UnitResult
}

// Executor dispatches batches to the engine. The worker pool is sized
// once at construction and reused across requests.
type Executor struct {
	pool *semaphore.Weighted
	log  *zap.Logger
}

// PoolWidth returns the worker-pool bound for a profile: half the
// available parallelism, capped at four.
func PoolWidth(prof profile.Profile) int64 {
	width := int64(prof.Parallelism / 2)
	if width > maxPoolWidth {
		width = maxPoolWidth
	}
	if width < 1 {
		width = 1
	}
	return width
}

// New creates an executor whose pool is sized for prof.
func New(prof profile.Profile, log *zap.Logger) *Executor {
	return &Executor{
		pool: semaphore.NewWeighted(PoolWidth(prof)),
		log:  log,
	}
}

// Execute runs every batch and returns outcomes in batch-index order,
// never omitting a batch. On constrained backends with more than one
// batch and at least four-way parallelism, batches run concurrently on
// the pool; otherwise they run sequentially in index order. Each worker
// writes only its own pre-allocated outcome slot, so completion order
// cannot corrupt the result layout. onBatch, when non-nil, is invoked
// once per batch as it completes, serialized, in completion order.
func (e *Executor) Execute(ctx context.Context, eng engine.Engine, batches []planner.Batch,
	srcTag string, targetID int64, prof profile.Profile, onBatch func(BatchOutcome)) []BatchOutcome {

	outcomes := make([]BatchOutcome, len(batches))
	total := len(batches)

	concurrent := prof.Class == profile.Constrained && total > 1 && prof.Parallelism >= 4

	var emitMu sync.Mutex
	emit := func(o BatchOutcome) {
		if onBatch == nil {
			return
		}
		emitMu.Lock()
		defer emitMu.Unlock()
		onBatch(o)
	}

	if !concurrent {
		for i, b := range batches {
			outcomes[i] = e.translateBatch(ctx, eng, b, srcTag, targetID)
			if total > 1 {
				e.log.Info("translated batch",
					zap.Int("batch", i+1), zap.Int("total", total),
					zap.Int("units", len(b.Units)))
			}
			emit(outcomes[i])
		}
		return outcomes
	}

	var wg sync.WaitGroup
	for i, b := range batches {
		wg.Add(1)
		go func(i int, b planner.Batch) {
			defer wg.Done()
			if err := e.pool.Acquire(ctx, 1); err != nil {
				// Context gone; still honor cardinality with degraded units.
				outcomes[i] = degradedOutcome(b)
				emit(outcomes[i])
				return
			}
			defer e.pool.Release(1)

			outcomes[i] = e.translateBatch(ctx, eng, b, srcTag, targetID)
			e.log.Info("translated batch",
				zap.Int("batch", i+1), zap.Int("total", total),
				zap.Int("units", len(b.Units)))
			emit(outcomes[i])
		}(i, b)
	}
	wg.Wait()

	return outcomes
}

// translateBatch translates one batch whole; on failure it retries each
// unit in isolation, and a unit that still fails (or decodes to
// whitespace) degrades to its original text.
func (e *Executor) translateBatch(ctx context.Context, eng engine.Engine, b planner.Batch,
	srcTag string, targetID int64) BatchOutcome {

	texts := make([]string, len(b.Units))
	for i, u := range b.Units {
		texts[i] = u.Text
	}

	translations, err := translate(ctx, eng, texts, srcTag, targetID, b.Decode)
	if err != nil || len(translations) != len(texts) {
		e.log.Warn("batch translation failed, retrying units individually",
			zap.Int("batch", b.Index), zap.Error(err))
		return e.retryUnits(ctx, eng, b, srcTag, targetID)
	}

	out := BatchOutcome{BatchIndex: b.Index, Units: b.Units, Results: make([]UnitResult, len(b.Units))}
	for i, tr := range translations {
		tr = strings.TrimSpace(tr)
		if tr == "" {
			e.log.Warn("engine returned empty translation, keeping original",
				zap.Int("batch", b.Index), zap.Int("unit", b.Units[i].Index))
			out.Results[i] = UnitResult{Text: b.Units[i].Text, Degraded: true}
			continue
		}
		out.Results[i] = UnitResult{Text: tr}
	}
	return out
}

// retryUnits translates each unit of a failed batch on its own, with a
// decode tier re-derived per unit. Every attempt is isolated; failures
// degrade to the original text.
func (e *Executor) retryUnits(ctx context.Context, eng engine.Engine, b planner.Batch,
	srcTag string, targetID int64) BatchOutcome {

	out := BatchOutcome{BatchIndex: b.Index, Units: b.Units, Results: make([]UnitResult, len(b.Units))}
	for i, u := range b.Units {
		cfg := b.Decode
		cfg.MaxLength = planner.MaxLengthFor(len(u.Text))

		translations, err := translate(ctx, eng, []string{u.Text}, srcTag, targetID, cfg)
		if err != nil || len(translations) == 0 || strings.TrimSpace(translations[0]) == "" {
			if err != nil {
				e.log.Warn("unit translation failed, keeping original",
					zap.Int("unit", u.Index), zap.Error(err))
			} else {
				e.log.Warn("unit translation empty, keeping original", zap.Int("unit", u.Index))
			}
			out.Results[i] = UnitResult{Text: u.Text, Degraded: true}
			continue
		}
		out.Results[i] = UnitResult{Text: strings.TrimSpace(translations[0])}
	}
	return out
}

// translate runs the encode, generate, decode round trip for one call
// to the engine.
func translate(ctx context.Context, eng engine.Engine, texts []string,
	srcTag string, targetID int64, cfg planner.DecodeConfig) ([]string, error) {

	batch, err := eng.Encode(ctx, texts, srcTag, cfg.MaxLength)
	if err != nil {
		return nil, err
	}
	seqs, err := eng.Generate(ctx, batch, targetID, cfg)
	if err != nil {
		return nil, err
	}
	return eng.Decode(ctx, seqs)
}

// degradedOutcome marks every unit of a batch as untranslated.
func degradedOutcome(b planner.Batch) BatchOutcome {
	out := BatchOutcome{BatchIndex: b.Index, Units: b.Units, Results: make([]UnitResult, len(b.Units))}
	for i, u := range b.Units {
		out.Results[i] = UnitResult{Text: u.Text, Degraded: true}
	}
	return out
}
