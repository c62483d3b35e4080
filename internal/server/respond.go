package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/n0roo/widget-kit/internal/apperr"
)

// errorBody is the wire form of non-validation errors
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// validationBody is the wire form of validation errors
type validationBody struct {
	Error      string             `json:"error"`
	Status     int                `json:"status"`
	Violations []apperr.Violation `json:"violations"`
}

// JSON response helper
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("response encode failed", "error", err)
	}
}

// writeError renders err; anything that is not an apperr.Error becomes a 500
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := apperr.As(err)
	if !ok {
		e = apperr.Internal(err)
	}
	s.writeAPIError(w, r, e)
}

func (s *Server) writeAPIError(w http.ResponseWriter, r *http.Request, e *apperr.Error) {
	ctx := r.Context()
	status := e.Status()

	switch {
	case e.Kind == apperr.KindInternal:
		s.log.ErrorContext(ctx, "request failed",
			"request_id", RequestID(ctx), "path", r.URL.Path, "error", e.Err)
	default:
		s.log.DebugContext(ctx, "request rejected",
			"request_id", RequestID(ctx), "status", status, "error", e.Error())
	}

	if e.Kind == apperr.KindUnauthorized {
		w.Header().Set("WWW-Authenticate",
			fmt.Sprintf(`Bearer realm="%s", charset="UTF-8"`, s.cfg.Auth.Realm))
	}

	if e.Kind == apperr.KindValidation {
		violations := e.Violations
		if violations == nil {
			violations = []apperr.Violation{}
		}
		s.jsonResponse(w, status, validationBody{
			Error:      e.Kind.Code(),
			Status:     status,
			Violations: violations,
		})
		return
	}

	s.jsonResponse(w, status, errorBody{
		Error:   e.Kind.Code(),
		Message: e.Message,
		Status:  status,
	})
}

// decodeJSON reads a size-limited JSON body into dst
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	limit := s.cfg.Server.MaxBodyBytes
	if limit <= 0 {
		limit = 1 << 20
	}
	body := http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.InvalidRequest("Request body exceeds %d bytes", limit)
		}
		return apperr.InvalidRequest("Malformed JSON request body")
	}
	return nil
}
