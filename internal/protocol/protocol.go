// Package protocol defines the line-delimited JSON wire types exchanged
// over the worker's stdin/stdout channel. One JSON object per line in
// both directions; streaming requests produce several lines.
package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Default language tags applied when a request omits them. Tags are
// FLORES-200 codes as understood by the NLLB vocabulary.
const (
	DefaultSourceLang = "eng_Latn"
	DefaultTargetLang = "hin_Deva"
)

// Stream event types.
const (
	EventChunk    = "chunk"
	EventComplete = "complete"
	EventError    = "error"
)

// Request is one translation request line.
type Request struct {
	Text       string `json:"text"`
	SourceLang string `json:"src_lang"`
	TargetLang string `json:"tgt_lang"`
	Stream     bool   `json:"stream"`
	BatchSize  *int   `json:"batch_size"`
}

// Response is the single aggregate-mode answer line.
type Response struct {
	Success    bool   `json:"success"`
	Translated string `json:"translated,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Event is one streaming-mode answer line. Index is set on chunk events
// only; chunk arrival order is not guaranteed under concurrent batch
// execution, which is why every chunk carries its own index. A pointer
// keeps index 0 on the wire while omitting the field from completion
// and error events.
type Event struct {
	Success    bool   `json:"success"`
	Type       string `json:"type"`
	Index      *int   `json:"index,omitempty"`
	Total      int    `json:"total,omitempty"`
	Translated string `json:"translated,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ChunkEvent builds one per-unit streaming line.
func ChunkEvent(index, total int, translated string) Event {
	idx := index
	return Event{Success: true, Type: EventChunk, Index: &idx, Total: total, Translated: translated}
}

// CompleteEvent builds the final streaming line with the full joined
// translation in original unit order.
func CompleteEvent(total int, translated string) Event {
	return Event{Success: true, Type: EventComplete, Total: total, Translated: translated}
}

// ParseRequest decodes one request line and applies field defaults.
// A JSON error is reported as "Invalid JSON: <detail>" so it can be sent
// back verbatim on the wire.
func ParseRequest(line []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return Request{}, fmt.Errorf("Invalid JSON: %v", err)
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.SourceLang == "" {
		req.SourceLang = DefaultSourceLang
	}
	if req.TargetLang == "" {
		req.TargetLang = DefaultTargetLang
	}
	return req, nil
}

// ErrorResponse builds an aggregate failure line.
func ErrorResponse(reason string) Response {
	return Response{Success: false, Error: reason}
}

// ErrorEvent builds a streaming failure line.
func ErrorEvent(reason string) Event {
	return Event{Success: false, Type: EventError, Error: reason}
}
