package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/valpere/nllbd/internal/planner"
)

// Runner is an Engine backed by a local model-runner sidecar: a small
// HTTP server that holds the NLLB model and tokenizer in memory and
// exposes tokenize/generate/decode endpoints. The sidecar owns model
// loading, file layout and device placement; the worker treats it as
// opaque.
type Runner struct {
	baseURL string
	client  *http.Client

	mu    sync.RWMutex
	vocab map[string]int64
}

// Health describes the sidecar's self-reported state.
type Health struct {
	Status string `json:"status"`
	Device string `json:"device"`
	Model  string `json:"model"`
}

// NewRunner creates a client for the sidecar at baseURL. Generation on
// large CPU batches is slow, so the HTTP timeout is generous.
func NewRunner(baseURL string) *Runner {
	if baseURL == "" {
		baseURL = "http://localhost:8571"
	}
	return &Runner{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 300 * time.Second},
		vocab:   make(map[string]int64),
	}
}

// Ping checks the sidecar and returns its reported health. A failure
// here means the engine cannot serve any request.
func (r *Runner) Ping(ctx context.Context) (*Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("model runner not available: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model runner returned status %d", resp.StatusCode)
	}
	var h Health
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return nil, fmt.Errorf("failed to decode health response: %w", err)
	}
	return &h, nil
}

func (r *Runner) Encode(ctx context.Context, texts []string, srcTag string, maxLength int) (*TokenBatch, error) {
	payload := map[string]any{
		"texts":      texts,
		"src_lang":   srcTag,
		"max_length": maxLength,
		"padding":    true,
		"truncation": true,
	}
	var batch TokenBatch
	if err := r.post(ctx, "/encode", payload, &batch); err != nil {
		return nil, err
	}
	if len(batch.InputIDs) != len(texts) {
		return nil, fmt.Errorf("encode returned %d sequences for %d texts", len(batch.InputIDs), len(texts))
	}
	return &batch, nil
}

func (r *Runner) Generate(ctx context.Context, batch *TokenBatch, targetID int64, cfg planner.DecodeConfig) ([][]int64, error) {
	payload := map[string]any{
		"input_ids":           batch.InputIDs,
		"attention_mask":      batch.AttentionMask,
		"forced_bos_token_id": targetID,
		"max_length":          cfg.MaxLength,
		"num_beams":           cfg.NumBeams,
		"repetition_penalty":  cfg.RepetitionPenalty,
		"length_penalty":      cfg.LengthPenalty,
		"do_sample":           false,
		"early_stopping":      true,
	}
	var out struct {
		Sequences [][]int64 `json:"sequences"`
	}
	if err := r.post(ctx, "/generate", payload, &out); err != nil {
		return nil, err
	}
	return out.Sequences, nil
}

func (r *Runner) Decode(ctx context.Context, seqs [][]int64) ([]string, error) {
	payload := map[string]any{
		"sequences":           seqs,
		"skip_special_tokens": true,
	}
	var out struct {
		Texts []string `json:"texts"`
	}
	if err := r.post(ctx, "/decode", payload, &out); err != nil {
		return nil, err
	}
	if len(out.Texts) != len(seqs) {
		return nil, fmt.Errorf("decode returned %d texts for %d sequences", len(out.Texts), len(seqs))
	}
	return out.Texts, nil
}

// VocabularyID resolves a tag through the sidecar's vocabulary,
// memoizing hits. Lookup misses are not cached so a later model swap in
// the sidecar cannot pin a stale negative.
func (r *Runner) VocabularyID(tag string) (int64, bool) {
	r.mu.RLock()
	id, ok := r.vocab[tag]
	r.mu.RUnlock()
	if ok {
		return id, true
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		r.baseURL+"/vocab?tag="+url.QueryEscape(tag), nil)
	if err != nil {
		return 0, false
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return 0, false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, false
	}
	var out struct {
		ID    int64 `json:"id"`
		Found bool  `json:"found"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || !out.Found {
		return 0, false
	}

	r.mu.Lock()
	r.vocab[tag] = out.ID
	r.mu.Unlock()
	return out.ID, true
}

func (r *Runner) post(ctx context.Context, path string, payload any, out any) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model runner returned status %d for %s", resp.StatusCode, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
