// Package server runs the worker's request loop: line-delimited JSON
// requests in, line-delimited JSON responses out. The loop lives for
// the process lifetime and handles one request at a time end-to-end.
package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/valpere/nllbd/internal/orchestrator"
	"github.com/valpere/nllbd/internal/protocol"
)

// maxLineBytes bounds a single request line. Inputs are whole documents,
// so the default bufio limit is far too small.
const maxLineBytes = 16 << 20

type Server struct {
	orch *orchestrator.Orchestrator
	log  *zap.Logger

	mu  sync.Mutex
	out io.Writer
}

func New(orch *orchestrator.Orchestrator, out io.Writer, log *zap.Logger) *Server {
	return &Server{orch: orch, out: out, log: log}
}

// Run reads requests from in until EOF. Malformed lines answer a
// protocol error and the loop continues; only a read failure or EOF
// ends it.
func (s *Server) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64<<10), maxLineBytes)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		s.serveLine(ctx, line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("request channel read failed: %w", err)
	}
	return nil
}

func (s *Server) serveLine(ctx context.Context, line []byte) {
	id := uuid.NewString()
	log := s.log.With(zap.String("request_id", id))

	req, err := protocol.ParseRequest(line)
	if err != nil {
		log.Warn("rejected request line", zap.Error(err))
		s.write(protocol.ErrorResponse(err.Error()))
		return
	}

	log.Info("handling request",
		zap.String("src", req.SourceLang), zap.String("tgt", req.TargetLang),
		zap.Bool("stream", req.Stream), zap.Int("text_bytes", len(req.Text)))

	if req.Stream {
		s.orch.HandleStream(ctx, req, func(ev protocol.Event) { s.write(ev) })
		return
	}
	s.write(s.orch.Handle(ctx, req))
}

// write marshals one response line. Output is serialized so concurrent
// emitters can never interleave partial lines.
func (s *Server) write(v any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		s.log.Error("failed to marshal response", zap.Error(err))
		return
	}
	data = append(data, '\n')
	if _, err := s.out.Write(data); err != nil {
		s.log.Error("failed to write response", zap.Error(err))
	}
}
