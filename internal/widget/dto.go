package widget

import (
	"strings"
	"time"
)

// Sort fields accepted by List
const (
	SortCreatedAt   = "createdAt"
	SortUpdatedAt   = "updatedAt"
	SortDescription = "description"
	SortCategory    = "category"
	SortLevel       = "level"
)

// SortFields lists the allowed sort fields in display order
var SortFields = []string{SortCreatedAt, SortUpdatedAt, SortDescription, SortCategory, SortLevel}

// Direction is the sort order
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// ParseDirection returns Asc for "asc" in any case and Desc otherwise
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Asc)) {
		return Asc
	}
	return Desc
}

// CreateRequest is the body of POST /api/widgets.
// Category is kept as a string so an unknown value becomes a violation.
type CreateRequest struct {
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Level       *int    `json:"level"`
}

// UpdateRequest is the body of PUT /api/widgets/{id}.
// Nil fields are left unchanged.
type UpdateRequest struct {
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Level       *int    `json:"level"`
	Version     *int64  `json:"version"`
}

// Response is the wire representation of a widget
type Response struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Description string    `json:"description"`
	Category    Category  `json:"category"`
	Level       int       `json:"level"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Version     int64     `json:"version"`
}

// ToResponse converts a widget
func ToResponse(w *Widget) Response {
	return Response{
		ID:          w.ID,
		UserID:      w.UserID,
		Description: w.Description,
		Category:    w.Category,
		Level:       w.Level,
		CreatedAt:   w.CreatedAt.UTC(),
		UpdatedAt:   w.UpdatedAt.UTC(),
		Version:     w.Version,
	}
}

// PagedResponse is one page of widgets
type PagedResponse struct {
	Content       []Response `json:"content"`
	TotalElements int64      `json:"totalElements"`
	TotalPages    int        `json:"totalPages"`
	PageNumber    int        `json:"pageNumber"`
	PageSize      int        `json:"pageSize"`
	HasNext       bool       `json:"hasNext"`
	HasPrevious   bool       `json:"hasPrevious"`
}

// NewPagedResponse fills in the paging math
func NewPagedResponse(content []Response, total int64, page, size int) PagedResponse {
	if content == nil {
		content = []Response{}
	}
	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}
	return PagedResponse{
		Content:       content,
		TotalElements: total,
		TotalPages:    totalPages,
		PageNumber:    page,
		PageSize:      size,
		HasNext:       page < totalPages-1,
		HasPrevious:   page > 0,
	}
}

// ListQuery selects a page of a user's widgets
type ListQuery struct {
	Category  *Category
	Search    string
	Page      int
	Size      int
	Sort      string
	Direction Direction
}

// Filter narrows a listing
type Filter struct {
	Category *Category
	Search   string
}

// Page is a resolved page request
type Page struct {
	Offset    int
	Limit     int
	Sort      string
	Direction Direction
}
