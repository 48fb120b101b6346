// Package assembler combines ordered batch outcomes into the final
// aggregate translation or the streamed event sequence. Outcomes arrive
// indexed, so the joined result is in original unit order regardless of
// the order batches finished in.
package assembler

import (
	"strings"

	"github.com/valpere/nllbd/internal/executor"
	"github.com/valpere/nllbd/internal/protocol"
)

// Join concatenates all unit translations in global index order with a
// single space.
func Join(outcomes []executor.BatchOutcome) string {
	var parts []string
	for _, o := range outcomes {
		for _, r := range o.Results {
			parts = append(parts, r.Text)
		}
	}
	return strings.Join(parts, " ")
}

// AllDegraded reports whether every unit across all batches fell back
// to its original text, i.e. the result holds no true translation.
func AllDegraded(outcomes []executor.BatchOutcome) bool {
	for _, o := range outcomes {
		for _, r := range o.Results {
			if !r.Degraded {
				return false
			}
		}
	}
	return true
}

// Aggregate folds outcomes into the single aggregate-mode response.
func Aggregate(outcomes []executor.BatchOutcome) protocol.Response {
	if len(outcomes) == 0 {
		return protocol.ErrorResponse("No sentences found in input text")
	}
	if AllDegraded(outcomes) {
		return protocol.ErrorResponse("All translation sentences failed")
	}
	return protocol.Response{Success: true, Translated: Join(outcomes)}
}

// ChunkEvents expands one batch outcome into its per-unit chunk events,
// carrying each unit's global index.
func ChunkEvents(o executor.BatchOutcome, total int) []protocol.Event {
	events := make([]protocol.Event, 0, len(o.Results))
	for i, r := range o.Results {
		events = append(events, protocol.ChunkEvent(o.Units[i].Index, total, r.Text))
	}
	return events
}
