package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/n0roo/widget-kit/internal/apperr"
	"github.com/n0roo/widget-kit/internal/auth"
	"github.com/n0roo/widget-kit/internal/widget"
)

// principal returns the caller set by requireAuth
func principal(r *http.Request) *auth.Principal {
	p, _ := auth.FromContext(r.Context())
	if p == nil {
		return &auth.Principal{}
	}
	return p
}

// widgetID reads and checks the {widgetId} path value
func widgetID(r *http.Request) (string, error) {
	id := r.PathValue("widgetId")
	if !widget.ValidID(id) {
		return "", apperr.Validation([]apperr.Violation{{
			Field:        "widgetId",
			Message:      "Invalid ULID format",
			InvalidValue: apperr.ValueOf(id),
		}})
	}
	return id, nil
}

// handleCreateWidget handles POST /api/widgets
func (s *Server) handleCreateWidget(w http.ResponseWriter, r *http.Request) {
	var req widget.CreateRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	resp, err := s.service.Create(r.Context(), principal(r).UserID, &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/widgets/"+resp.ID)
	s.jsonResponse(w, http.StatusCreated, resp)
}

// handleGetWidget handles GET /api/widgets/{widgetId}
func (s *Server) handleGetWidget(w http.ResponseWriter, r *http.Request) {
	id, err := widgetID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp, err := s.service.Get(r.Context(), principal(r).UserID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

// handleUpdateWidget handles PUT /api/widgets/{widgetId}
func (s *Server) handleUpdateWidget(w http.ResponseWriter, r *http.Request) {
	id, err := widgetID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req widget.UpdateRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	resp, err := s.service.Update(r.Context(), principal(r).UserID, id, &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

// handleDeleteWidget handles DELETE /api/widgets/{widgetId}
func (s *Server) handleDeleteWidget(w http.ResponseWriter, r *http.Request) {
	id, err := widgetID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.service.Delete(r.Context(), principal(r).UserID, id); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleListWidgets handles GET /api/widgets
func (s *Server) handleListWidgets(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseListQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp, err := s.service.List(r.Context(), principal(r).UserID, q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) parseListQuery(r *http.Request) (widget.ListQuery, error) {
	params := r.URL.Query()
	q := widget.ListQuery{
		Page:      0,
		Size:      s.cfg.API.DefaultPageSize,
		Sort:      widget.SortCreatedAt,
		Direction: widget.ParseDirection(params.Get("direction")),
		Search:    strings.TrimSpace(params.Get("search")),
	}

	if v := params.Get("category"); v != "" {
		c, err := widget.ParseCategory(v)
		if err != nil {
			return q, apperr.InvalidRequest("Invalid category: %s. Valid values are: %s", v, widget.CategoryNames())
		}
		q.Category = &c
	}

	if v := params.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			return q, apperr.InvalidRequest("Invalid value for parameter 'page': %s", v)
		}
		q.Page = page
	}

	if v := params.Get("size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return q, apperr.InvalidRequest("Invalid value for parameter 'size': %s", v)
		}
		if size < 1 {
			return q, apperr.Validation([]apperr.Violation{{
				Field:        "size",
				Message:      "Size must be at least 1",
				InvalidValue: apperr.ValueOf(v),
			}})
		}
		q.Size = size
	}

	if v := params.Get("sort"); v != "" {
		q.Sort = v
	}

	return q, nil
}

// handleWidgetEvents streams the caller's widget events
func (s *Server) handleWidgetEvents(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		s.writeAPIError(w, r, apperr.NotFound("Event stream is disabled"))
		return
	}

	// 스트림은 WriteTimeout 적용 제외
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	s.hub.Serve(w, r, principal(r).UserID)
}
