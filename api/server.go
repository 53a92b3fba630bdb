package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/reddygtvs/Archived-News-RAG/evaluation"
	"github.com/reddygtvs/Archived-News-RAG/rag"
	"github.com/reddygtvs/Archived-News-RAG/retrieval"
)

// Pipeline is the query-serving surface the server needs. The concrete
// implementation is constructed once at startup, after all stores have
// loaded; the server never builds pipeline state per request.
type Pipeline interface {
	GenerateStandard(ctx context.Context, query string) (string, time.Duration)
	GenerateRAG(ctx context.Context, query string) rag.RAGResult
	GenerateCombined(ctx context.Context, query string) rag.CombinedResult
	EvaluateResponses(ctx context.Context, query, standard, ragAnswer string) (evaluation.Outcome, time.Duration)
}

// Server exposes the HTTP API over a loaded pipeline.
type Server struct {
	pipeline Pipeline
	logger   *log.Logger
	handler  http.Handler
}

type errorResponse struct {
	Error string `json:"error"`
}

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	StandardResponse  string              `json:"standard_response"`
	RAGResponse       string              `json:"rag_response"`
	RetrievedChunks   []retrieval.Summary `json:"retrieved_chunks"`
	RetrievalSeconds  float64             `json:"retrieval_duration_seconds"`
	GenerationSeconds float64             `json:"generation_duration_seconds"`
	ContextChars      int                 `json:"total_context_chars"`
}

type evaluateRequest struct {
	Query            string `json:"query"`
	StandardResponse string `json:"standard_response"`
	RAGResponse      string `json:"rag_response"`
}

type evaluateResponse struct {
	Evaluation evaluation.Outcome `json:"evaluation"`
	Seconds    float64            `json:"evaluation_duration_seconds"`
}

func New(pipeline Pipeline, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{pipeline: pipeline, logger: logger}
	s.handler = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/query", s.handleQuery)
	mux.HandleFunc("/api/combined", s.handleCombined)
	mux.HandleFunc("/api/evaluate", s.handleEvaluate)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, http.MethodGet)
		return
	}

	if s.pipeline == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "Error: pipeline not initialized"})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	query, ok := s.readQuery(w, r)
	if !ok {
		return
	}

	ctx := r.Context()

	standard, _ := s.pipeline.GenerateStandard(ctx, query)
	result := s.pipeline.GenerateRAG(ctx, query)

	s.writeJSON(w, http.StatusOK, queryResponse{
		StandardResponse:  standard,
		RAGResponse:       result.Answer,
		RetrievedChunks:   summariesOrEmpty(result.Sources),
		RetrievalSeconds:  result.RetrievalDuration.Seconds(),
		GenerationSeconds: result.GenerationDuration.Seconds(),
		ContextChars:      result.ContextChars,
	})
}

func (s *Server) handleCombined(w http.ResponseWriter, r *http.Request) {
	query, ok := s.readQuery(w, r)
	if !ok {
		return
	}

	result := s.pipeline.GenerateCombined(r.Context(), query)

	s.writeJSON(w, http.StatusOK, queryResponse{
		StandardResponse:  result.Standard,
		RAGResponse:       result.RAG,
		RetrievedChunks:   summariesOrEmpty(result.Sources),
		RetrievalSeconds:  result.RetrievalDuration.Seconds(),
		GenerationSeconds: result.GenerationDuration.Seconds(),
		ContextChars:      result.ContextChars,
	})
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, http.MethodPost)
		return
	}

	var req evaluateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("query is required"))
		return
	}

	outcome, duration := s.pipeline.EvaluateResponses(r.Context(), req.Query, req.StandardResponse, req.RAGResponse)

	s.writeJSON(w, http.StatusOK, evaluateResponse{
		Evaluation: outcome,
		Seconds:    duration.Seconds(),
	})
}

func (s *Server) readQuery(w http.ResponseWriter, r *http.Request) (string, bool) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, http.MethodPost)
		return "", false
	}

	var req queryRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return "", false
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("query cannot be empty"))
		return "", false
	}

	s.logger.Printf("received query %q", query)
	return query, true
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	s.writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed, use %s", allowed))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Printf("encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Printf("api error (%d): %v", status, err)
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}

	if dec.More() {
		return fmt.Errorf("request body must contain a single JSON object")
	}

	return nil
}

func summariesOrEmpty(summaries []retrieval.Summary) []retrieval.Summary {
	if summaries == nil {
		return []retrieval.Summary{}
	}
	return summaries
}
