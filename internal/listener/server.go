package listener

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kaidence/cc-statusline/internal/util"
)

// DefaultPort is the conventional OTLP/HTTP port.
const DefaultPort = 4318

// maxPayloadBytes caps a single OTLP POST.
const maxPayloadBytes = 8 << 20

// Server exposes the OTLP ingestion endpoint.
type Server struct {
	aggregator *Aggregator
	addr       string
	httpServer *http.Server
}

// NewServer creates a listener bound to addr, publishing snapshots
// through the aggregator.
func NewServer(addr string, aggregator *Aggregator) *Server {
	if addr == "" {
		addr = fmt.Sprintf("localhost:%d", DefaultPort)
	}
	return &Server{aggregator: aggregator, addr: addr}
}

// Handler returns the HTTP handler. Every POST is acknowledged with
// 200 {"status":"ok"} no matter what; the exporter must never be made
// to retry or back off because of our parsing.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			body, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
			if err == nil {
				s.aggregator.Ingest(body)
			} else {
				util.LogWarnf("failed to read OTLP payload: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	return mux
}

// ListenAndServe runs the server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	util.LogInfof("token metrics listener on %s", s.addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}
