package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/kfreiman/piigate/internal/messaging"
	"github.com/kfreiman/piigate/internal/pii"
	"github.com/kfreiman/piigate/internal/search"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

var errEmptyBody = errors.New("empty body")

type errorResponse struct {
	Error   string       `json:"error"`
	Code    string       `json:"code"`
	Verdict *pii.Verdict `json:"verdict,omitempty"`
}

type textRequest struct {
	Text string `json:"text"`
}

type scanRequest struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}

type sendRequest struct {
	SenderID   string `json:"sender_id"`
	SenderName string `json:"sender_name"`
	SenderType string `json:"sender_type"`
	Content    string `json:"content"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(out); err != nil {
		// Truncated JSON is io.ErrUnexpectedEOF, not io.EOF
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}

// respondServiceError maps message service errors to HTTP statuses
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if verdict, blocked := messaging.IsBlocked(err); blocked {
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:   verdict.Message,
			Code:    "message_blocked",
			Verdict: &verdict,
		})
		return
	}
	switch {
	case messaging.IsValidation(err):
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case messaging.IsNotFound(err):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, messaging.ErrSearchDisabled):
		respondError(w, http.StatusNotImplemented, "search_disabled", err.Error())
	case errors.Is(err, search.ErrEmptyQuery):
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		s.logger.ErrorContext(r.Context(), "request failed",
			"error", err,
			"path", r.URL.Path,
		)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, s.service.Check(req.Text))
}

func (s *Server) handleRedact(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"redacted": s.service.Redact(req.Text)})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.Source == "" {
		req.Source = "request"
	}
	respondJSON(w, http.StatusOK, s.scanner.ScanText(r.Context(), req.Source, req.Text))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	msgs, err := s.service.Search(r.Context(), query, limit)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

func (s *Server) handleListThreads(w http.ResponseWriter, r *http.Request) {
	threads, err := s.service.ListThreads(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"threads": threads})
}

func (s *Server) handleCreateThread(w http.ResponseWriter, r *http.Request) {
	var req messaging.Thread
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	// Activity fields are owned by the service
	req.LastMessage = ""
	req.UnreadCount = 0

	thread, err := s.service.CreateThread(r.Context(), req)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, thread)
}

func (s *Server) handleGetThread(w http.ResponseWriter, r *http.Request) {
	thread, err := s.service.GetThread(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, thread)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	redact := true
	if raw := r.URL.Query().Get("redact"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_redact", "redact must be true or false")
			return
		}
		redact = v
	}

	msgs, err := s.service.History(r.Context(), chi.URLParam(r, "id"), messaging.HistoryOptions{Redact: redact})
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	msg, err := s.service.Send(r.Context(), messaging.SendRequest{
		ThreadID:   chi.URLParam(r, "id"),
		SenderID:   req.SenderID,
		SenderName: req.SenderName,
		SenderType: messaging.SenderType(req.SenderType),
		Content:    req.Content,
	})
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, msg)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	thread, err := s.service.MarkThreadAsRead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, thread)
}
