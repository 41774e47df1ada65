package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/custodia-labs/lexcore/internal/core/domain"
	"github.com/custodia-labs/lexcore/internal/core/ports/driving"
)

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse represents a simple status response
type StatusResponse struct {
	Status string `json:"status"`
}

// Health endpoints

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	if s.redisClient != nil {
		if err := s.redisClient.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "redis unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ready"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Auth endpoints

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req domain.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.authService.ExchangeAPIKey(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
		} else {
			writeError(w, http.StatusInternalServerError, "token exchange failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Contract endpoints

func (s *Server) handleProcessContract(w http.ResponseWriter, r *http.Request) {
	var req driving.ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.processService.ProcessDocument(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// SegmentRequest carries contract text for a segmentation preview
type SegmentRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleSegmentPreview(w http.ResponseWriter, r *http.Request) {
	var req SegmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	clauses, err := s.contractService.Segment(r.Context(), req.Text)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"clauses": clauses})
}

func (s *Server) handleListContracts(w http.ResponseWriter, r *http.Request) {
	filter := domain.DocumentFilter{
		Status: domain.DocumentStatus(r.URL.Query().Get("status")),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	docs, err := s.contractService.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (s *Server) handleGetContract(w http.ResponseWriter, r *http.Request) {
	doc, err := s.contractService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleGetClauses(w http.ResponseWriter, r *http.Request) {
	result, err := s.contractService.GetWithClauses(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetFindings(w http.ResponseWriter, r *http.Request) {
	kind := domain.AnalysisKind(r.URL.Query().Get("kind"))

	findings, err := s.contractService.GetFindings(r.Context(), r.PathValue("id"), kind)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"findings": findings})
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	kind := domain.AnalysisKind(r.PathValue("kind"))

	result, err := s.contractService.GetAnalysis(r.Context(), r.PathValue("id"), kind)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDeleteContract(w http.ResponseWriter, r *http.Request) {
	if err := s.contractService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{Status: "deleted"})
}

// AnalyzeRequest configures an asynchronous re-analysis
type AnalyzeRequest struct {
	Supersede bool `json:"supersede"`
}

func (s *Server) handleAnalyzeContract(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	task, err := s.contractService.EnqueueReanalysis(r.Context(), r.PathValue("id"), req.Supersede)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, task)
}

// Task endpoints

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.contractService.GetTask(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// Helpers

// writeDomainError maps domain errors to HTTP status codes
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrAnalysisInProgress):
		writeError(w, http.StatusConflict, "analysis already in progress")
	case errors.Is(err, domain.ErrDuplicateClause):
		writeError(w, http.StatusConflict, "duplicate clause")
	case errors.Is(err, domain.ErrUpstreamService):
		writeError(w, http.StatusBadGateway, "analysis provider unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
