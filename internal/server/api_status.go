package server

import (
	"net/http"
	"time"
)

// StatusResponse is the body of GET /api/status
type StatusResponse struct {
	Status        string    `json:"status"`
	Version       string    `json:"version"`
	Database      string    `json:"database"`
	SchemaVersion int       `json:"schema_version"`
	SSEClients    int       `json:"sse_clients"`
	Uptime        string    `json:"uptime"`
	Timestamp     time.Time `json:"timestamp"`
}

// handleStatus returns overall status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Status:    "ok",
		Version:   s.version,
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
	}

	if s.database != nil {
		resp.Database = string(s.database.Type())
		version, err := s.database.GetVersion()
		if err != nil {
			s.log.WarnContext(r.Context(), "schema version lookup failed", "error", err)
			resp.Status = "degraded"
		}
		resp.SchemaVersion = version
	}
	if s.hub != nil {
		resp.SSEClients = s.hub.ClientCount()
	}

	s.jsonResponse(w, http.StatusOK, resp)
}
