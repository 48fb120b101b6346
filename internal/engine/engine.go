// Package engine defines the Translation Engine contract: the opaque
// collaborator holding the seq2seq model and its tokenizer. The worker
// never sees model internals, only tokenized batches and generated
// token sequences.
package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/valpere/nllbd/internal/planner"
)

// FallbackTargetID is the vocabulary id used when neither the requested
// target tag nor the default tag resolves. It is the NLLB-200 id of a
// common language tag.
const FallbackTargetID = 256068

// DefaultTargetTag is tried when the requested target tag is absent
// from the vocabulary.
const DefaultTargetTag = "eng_Latn"

// TokenBatch is a tokenized, padded batch ready for generation.
type TokenBatch struct {
	InputIDs      [][]int64 `json:"input_ids"`
	AttentionMask [][]int64 `json:"attention_mask"`
}

// Engine is the inference collaborator. Generate is the only call that
// blocks for a meaningful time; all methods must be safe for concurrent
// use because batches may run on a worker pool.
type Engine interface {
	// Encode tokenizes texts with padding and truncation to maxLength.
	// srcTag selects the source-language prefix token.
	Encode(ctx context.Context, texts []string, srcTag string, maxLength int) (*TokenBatch, error)

	// Generate runs constrained generation with the target-language tag
	// forced as the first output token.
	Generate(ctx context.Context, batch *TokenBatch, targetID int64, cfg planner.DecodeConfig) ([][]int64, error)

	// Decode turns generated token sequences back into texts, one per
	// input sequence.
	Decode(ctx context.Context, seqs [][]int64) ([]string, error)

	// VocabularyID looks up the id of a language tag.
	VocabularyID(tag string) (int64, bool)
}

// ResolveTarget maps a target language tag to a vocabulary id, falling
// back first to the default tag and then to a fixed id. Both fallbacks
// are warning-worthy but never fatal.
func ResolveTarget(eng Engine, tag string, log *zap.Logger) int64 {
	if id, ok := eng.VocabularyID(tag); ok {
		return id
	}
	if id, ok := eng.VocabularyID(DefaultTargetTag); ok {
		log.Warn("target language tag not in vocabulary, using default",
			zap.String("tag", tag), zap.String("default", DefaultTargetTag))
		return id
	}
	log.Warn("target language tag unresolvable, using fixed fallback id",
		zap.String("tag", tag), zap.Int64("id", FallbackTargetID))
	return FallbackTargetID
}
