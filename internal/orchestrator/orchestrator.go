// Package orchestrator wires the translation pipeline together per
// request: normalize, segment, plan, execute, assemble. It owns the
// single cached engine handle and the reusable batch worker pool; every
// other stage is a pure transformation over its inputs.
package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/valpere/nllbd/internal/assembler"
	"github.com/valpere/nllbd/internal/detector"
	"github.com/valpere/nllbd/internal/engine"
	"github.com/valpere/nllbd/internal/executor"
	"github.com/valpere/nllbd/internal/normalizer"
	"github.com/valpere/nllbd/internal/planner"
	"github.com/valpere/nllbd/internal/profile"
	"github.com/valpere/nllbd/internal/protocol"
	"github.com/valpere/nllbd/internal/segmenter"
)

// LoadFunc produces the engine handle. It runs at most once; the first
// caller blocks until it returns and every later request reuses the
// cached handle.
type LoadFunc func(ctx context.Context) (engine.Engine, error)

type Orchestrator struct {
	load LoadFunc
	prof profile.Profile
	exec *executor.Executor
	log  *zap.Logger

	engOnce sync.Once
	eng     engine.Engine
	engErr  error

	detOnce sync.Once
	det     *detector.Detector
}

func New(load LoadFunc, prof profile.Profile, log *zap.Logger) *Orchestrator {
	return &Orchestrator{
		load: load,
		prof: prof,
		exec: executor.New(prof, log),
		log:  log,
	}
}

// Warm forces the engine load. Serving cannot proceed past a load
// failure; callers treat the returned error as fatal.
func (o *Orchestrator) Warm(ctx context.Context) error {
	_, err := o.engine(ctx)
	return err
}

func (o *Orchestrator) engine(ctx context.Context) (engine.Engine, error) {
	o.engOnce.Do(func() {
		o.eng, o.engErr = o.load(ctx)
	})
	if o.engErr != nil {
		return nil, fmt.Errorf("engine load failed: %w", o.engErr)
	}
	return o.eng, nil
}

// Handle serves one aggregate-mode request.
func (o *Orchestrator) Handle(ctx context.Context, req protocol.Request) protocol.Response {
	if req.Text == "" {
		return protocol.ErrorResponse("Missing or empty 'text' field")
	}

	eng, err := o.engine(ctx)
	if err != nil {
		return protocol.ErrorResponse(fmt.Sprintf("Translation failed: %v", err))
	}

	outcomes, _, errResp := o.run(ctx, eng, req, nil)
	if errResp != "" {
		return protocol.ErrorResponse(errResp)
	}
	return assembler.Aggregate(outcomes)
}

// HandleStream serves one streaming-mode request, invoking emit for
// every wire line. Chunk events are emitted as their batch completes,
// which under concurrent execution may be out of original index order;
// each chunk carries its own index. The completion event always carries
// the index-ordered join.
func (o *Orchestrator) HandleStream(ctx context.Context, req protocol.Request, emit func(protocol.Event)) {
	if req.Text == "" {
		emit(protocol.ErrorEvent("Missing or empty 'text' field"))
		return
	}

	eng, err := o.engine(ctx)
	if err != nil {
		emit(protocol.ErrorEvent(fmt.Sprintf("Translation failed: %v", err)))
		return
	}

	outcomes, total, errResp := o.run(ctx, eng, req, func(out executor.BatchOutcome, total int) {
		for _, ev := range assembler.ChunkEvents(out, total) {
			emit(ev)
		}
	})
	if errResp != "" {
		emit(protocol.ErrorEvent(errResp))
		return
	}
	if assembler.AllDegraded(outcomes) {
		emit(protocol.ErrorEvent("All translation sentences failed"))
		return
	}
	emit(protocol.CompleteEvent(total, assembler.Join(outcomes)))
}

// run executes the shared pipeline. It returns the batch outcomes, the
// unit count, and a request-level error reason ("" when the pipeline
// ran). onBatch, when non-nil, observes each batch outcome as it
// completes together with the total unit count.
func (o *Orchestrator) run(ctx context.Context, eng engine.Engine, req protocol.Request,
	onBatch func(executor.BatchOutcome, int)) ([]executor.BatchOutcome, int, string) {

	text := normalizer.Normalize(req.Text)
	units := segmenter.Segment(text)
	if len(units) == 0 {
		return nil, 0, "No sentences found in input text"
	}
	total := len(units)

	requested := 0
	if req.BatchSize != nil {
		requested = *req.BatchSize
	}
	batches := planner.Plan(units, requested, o.prof)

	srcTag := o.resolveSource(req.SourceLang, text)
	targetID := engine.ResolveTarget(eng, req.TargetLang, o.log)

	var cb func(executor.BatchOutcome)
	if onBatch != nil {
		cb = func(out executor.BatchOutcome) { onBatch(out, total) }
	}

	outcomes := o.exec.Execute(ctx, eng, batches, srcTag, targetID, o.prof, cb)
	return outcomes, total, ""
}

// resolveSource maps "auto" to a detected FLORES-200 tag. The detector
// is built lazily because its models are expensive and most requests
// carry an explicit source tag.
func (o *Orchestrator) resolveSource(srcLang, text string) string {
	if srcLang != "auto" {
		return srcLang
	}
	o.detOnce.Do(func() { o.det = detector.New() })
	if tag, ok := o.det.DetectTag(text); ok {
		o.log.Info("detected source language", zap.String("tag", tag))
		return tag
	}
	o.log.Warn("source language detection failed, using default",
		zap.String("default", protocol.DefaultSourceLang))
	return protocol.DefaultSourceLang
}
