package widget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/n0roo/widget-kit/internal/apperr"
	"github.com/n0roo/widget-kit/internal/events"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

const (
	msgNotFound      = "Widget not found"
	msgInvalidUserID = "Invalid user ID format"
)

// Publisher receives widget change notifications
type Publisher interface {
	PublishWidget(eventType events.EventType, userID, widgetID string, data interface{})
}

// Options configures a Service. Zero values pick defaults.
type Options struct {
	Logger          *slog.Logger
	Publisher       Publisher
	Now             func() time.Time
	DefaultPageSize int
	MaxPageSize     int
}

// Service implements widget use cases for a single owner
type Service struct {
	repo            Repository
	log             *slog.Logger
	pub             Publisher
	now             func() time.Time
	defaultPageSize int
	maxPageSize     int
}

// NewService creates a new widget service
func NewService(repo Repository, opts Options) *Service {
	s := &Service{
		repo:            repo,
		log:             opts.Logger,
		pub:             opts.Publisher,
		now:             opts.Now,
		defaultPageSize: opts.DefaultPageSize,
		maxPageSize:     opts.MaxPageSize,
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.maxPageSize <= 0 {
		s.maxPageSize = MaxPageSize
	}
	if s.defaultPageSize <= 0 {
		s.defaultPageSize = DefaultPageSize
	}
	if s.defaultPageSize > s.maxPageSize {
		s.defaultPageSize = s.maxPageSize
	}
	return s
}

// Create validates req and stores a new widget for userID
func (s *Service) Create(ctx context.Context, userID string, req *CreateRequest) (*Response, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "widget.create", "user_id", uid)

	if v := ValidateCreate(req); len(v) > 0 {
		return nil, apperr.Validation(v)
	}
	category, _ := ParseCategory(*req.Category)

	now := s.timestamp()
	w := &Widget{
		ID:          NewID(),
		UserID:      uid,
		Description: *req.Description,
		Category:    category,
		Level:       *req.Level,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     0,
	}

	if err := s.repo.Insert(ctx, w); err != nil {
		return nil, apperr.Internal(err)
	}

	s.log.InfoContext(ctx, "widget.create succeeded", "user_id", uid, "widget_id", w.ID)
	resp := ToResponse(w)
	s.publish(events.WidgetCreated, w, resp)
	return &resp, nil
}

// Get returns a widget owned by userID
func (s *Service) Get(ctx context.Context, userID, id string) (*Response, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "widget.get", "user_id", uid, "widget_id", id)

	w, err := s.find(ctx, id, uid)
	if err != nil {
		return nil, err
	}

	resp := ToResponse(w)
	return &resp, nil
}

// Update applies the non-nil fields of req after checking the version
func (s *Service) Update(ctx context.Context, userID, id string, req *UpdateRequest) (*Response, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "widget.update", "user_id", uid, "widget_id", id)

	if v := ValidateUpdate(req); len(v) > 0 {
		return nil, apperr.Validation(v)
	}

	w, err := s.find(ctx, id, uid)
	if err != nil {
		return nil, err
	}

	if w.Version != *req.Version {
		s.log.DebugContext(ctx, "version mismatch",
			"widget_id", id, "expected", *req.Version, "actual", w.Version)
		return nil, apperr.OptimisticLock()
	}

	if req.Description != nil {
		w.Description = *req.Description
	}
	if req.Category != nil {
		w.Category, _ = ParseCategory(*req.Category)
	}
	if req.Level != nil {
		w.Level = *req.Level
	}
	w.UpdatedAt = s.timestamp()

	ok, err := s.repo.Update(ctx, w, *req.Version)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !ok {
		// 조회 이후 다른 요청이 먼저 수정 또는 삭제함
		if _, err := s.find(ctx, id, uid); err != nil {
			return nil, err
		}
		return nil, apperr.OptimisticLock()
	}

	s.log.InfoContext(ctx, "widget.update succeeded", "user_id", uid, "widget_id", id, "version", w.Version)
	resp := ToResponse(w)
	s.publish(events.WidgetUpdated, w, resp)
	return &resp, nil
}

// List returns one page of the user's widgets
func (s *Service) List(ctx context.Context, userID string, q ListQuery) (*PagedResponse, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}

	if q.Sort == "" {
		q.Sort = SortCreatedAt
	}
	if _, ok := sortColumns[q.Sort]; !ok {
		return nil, apperr.InvalidRequest("Invalid sort field: %s. Allowed fields are: %s",
			q.Sort, strings.Join(SortFields, ", "))
	}
	if q.Page < 0 {
		return nil, apperr.Validation([]apperr.Violation{
			violation("page", "Page must be at least 0", apperr.ValueOf(fmt.Sprint(q.Page))),
		})
	}
	if q.Size <= 0 {
		q.Size = s.defaultPageSize
	}
	if q.Size > s.maxPageSize {
		q.Size = s.maxPageSize
	}
	if q.Direction == "" {
		q.Direction = Desc
	}

	s.log.InfoContext(ctx, "widget.list", "user_id", uid,
		"page", q.Page, "size", q.Size, "sort", q.Sort, "direction", q.Direction)

	widgets, total, err := s.repo.List(ctx, uid,
		Filter{Category: q.Category, Search: q.Search},
		Page{Offset: pageOffset(q.Page, q.Size), Limit: q.Size, Sort: q.Sort, Direction: q.Direction})
	if err != nil {
		return nil, apperr.Internal(err)
	}

	content := make([]Response, 0, len(widgets))
	for i := range widgets {
		content = append(content, ToResponse(&widgets[i]))
	}

	page := NewPagedResponse(content, total, q.Page, q.Size)
	s.log.DebugContext(ctx, "widget.list succeeded", "user_id", uid, "returned", len(content), "total", total)
	return &page, nil
}

// pageOffset returns page*size, saturating at math.MaxInt instead of
// wrapping negative. Such an offset is past every row, so the page is empty.
func pageOffset(page, size int) int {
	if size > 0 && page > math.MaxInt/size {
		return math.MaxInt
	}
	return page * size
}

// Delete removes a widget owned by userID
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	uid, err := parseUserID(userID)
	if err != nil {
		return err
	}
	s.log.InfoContext(ctx, "widget.delete", "user_id", uid, "widget_id", id)

	ok, err := s.repo.Delete(ctx, id, uid)
	if err != nil {
		return apperr.Internal(err)
	}
	if !ok {
		return apperr.NotFound(msgNotFound)
	}

	s.log.InfoContext(ctx, "widget.delete succeeded", "user_id", uid, "widget_id", id)
	if s.pub != nil {
		s.pub.PublishWidget(events.WidgetDeleted, uid, id, map[string]string{"id": id})
	}
	return nil
}

func (s *Service) find(ctx context.Context, id, userID string) (*Widget, error) {
	w, err := s.repo.FindByIDAndUser(ctx, id, userID)
	if errors.Is(err, ErrNotFound) {
		s.log.DebugContext(ctx, "widget not found", "user_id", userID, "widget_id", id)
		return nil, apperr.NotFound(msgNotFound)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return w, nil
}

func (s *Service) publish(eventType events.EventType, w *Widget, resp Response) {
	if s.pub == nil {
		return
	}
	s.pub.PublishWidget(eventType, w.UserID, w.ID, resp)
}

// timestamp returns now at millisecond precision, matching storage
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func parseUserID(userID string) (string, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return "", apperr.InvalidRequest(msgInvalidUserID)
	}
	return id.String(), nil
}
