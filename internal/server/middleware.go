package server

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/n0roo/widget-kit/internal/apperr"
	"github.com/n0roo/widget-kit/internal/auth"
)

const (
	headerRequestID = "X-Request-ID"
	maxLoggedBody   = 4 << 10
)

type requestIDKey struct{}

// RequestID returns the id assigned to the request
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(headerRequestID))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sr := &statusRecorder{ResponseWriter: w}
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.log.ErrorContext(r.Context(), "panic recovered",
					"request_id", RequestID(r.Context()),
					"panic", rec,
					"committed", sr.status != 0,
					"stack", string(debug.Stack()))
				// 헤더가 이미 나갔으면 응답을 끊는다
				if sr.status != 0 {
					panic(http.ErrAbortHandler)
				}
				s.writeAPIError(w, r, apperr.Internal(nil))
			}
		}()
		next.ServeHTTP(sr, r)
	})
}

// statusRecorder captures the status and size of a response
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// Flush keeps SSE streaming working through the recorder
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		reqID := RequestID(ctx)

		attrs := []any{
			"request_id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
		}
		if r.URL.RawQuery != "" {
			attrs = append(attrs, "query", redactQuery(r))
		}
		if s.cfg.Logging.RequestBodies && r.Body != nil && r.ContentLength != 0 {
			// 본문은 핸들러가 다시 읽을 수 있도록 복원
			limit := s.cfg.Server.MaxBodyBytes
			if limit <= 0 {
				limit = 1 << 20
			}
			body, _ := io.ReadAll(io.LimitReader(r.Body, limit+1))
			r.Body.Close()
			r.Body = io.NopCloser(bytes.NewReader(body))
			if len(body) > maxLoggedBody {
				body = body[:maxLoggedBody]
			}
			attrs = append(attrs, "body", string(body))
		}
		s.log.InfoContext(ctx, "http.request", attrs...)

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		}
		s.log.Log(ctx, level, "http.response",
			"request_id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", rec.bytes,
			"duration_ms", time.Since(start).Milliseconds())
	})
}

// redactQuery hides access_token values
func redactQuery(r *http.Request) string {
	q := r.URL.Query()
	if q.Has("access_token") {
		q.Set("access_token", "xxxxx")
		return q.Encode()
	}
	return r.URL.RawQuery
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	allowAll := false
	allowed := make(map[string]bool)
	for _, o := range s.cfg.Server.CORSOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case allowAll:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && allowed[origin]:
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, X-Request-ID")
		w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
		w.Header().Set("Access-Control-Max-Age", "86400")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requireAuth validates the bearer token and stores the principal
func (s *Server) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := auth.BearerToken(r.Header.Get("Authorization"))
		if !ok && r.URL.Path == "/api/widgets/events" {
			// EventSource는 헤더를 설정할 수 없음
			token = r.URL.Query().Get("access_token")
			ok = token != ""
		}
		if !ok {
			s.writeAPIError(w, r, apperr.Unauthorized(nil))
			return
		}

		p, err := s.validator.Validate(token)
		if err != nil {
			s.log.DebugContext(r.Context(), "token rejected",
				"request_id", RequestID(r.Context()), "error", err)
			s.writeAPIError(w, r, apperr.Unauthorized(err))
			return
		}

		next(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
	})
}
