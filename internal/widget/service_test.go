package widget

import (
	"context"
	"math"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n0roo/widget-kit/internal/apperr"
	"github.com/n0roo/widget-kit/internal/db"
	"github.com/n0roo/widget-kit/internal/events"
	"github.com/n0roo/widget-kit/internal/logging"
)

type recordedEvent struct {
	Type     events.EventType
	UserID   string
	WidgetID string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) PublishWidget(eventType events.EventType, userID, widgetID string, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{eventType, userID, widgetID})
}

func setupService(t *testing.T) (*Service, *recordingPublisher, *SQLRepository) {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "widgets.db"))
	require.NoError(t, err, "DB 열기 실패")
	t.Cleanup(func() { database.Close() })

	repo := NewSQLRepository(database)
	pub := &recordingPublisher{}
	svc := NewService(repo, Options{Logger: logging.Discard(), Publisher: pub})
	return svc, pub, repo
}

func createWidget(t *testing.T, svc *Service, userID, description string, level int) *Response {
	t.Helper()
	resp, err := svc.Create(context.Background(), userID, &CreateRequest{
		Description: strPtr(description),
		Category:    strPtr("BASIC"),
		Level:       intPtr(level),
	})
	require.NoError(t, err)
	return resp
}

func requireKind(t *testing.T, err error, kind apperr.Kind) *apperr.Error {
	t.Helper()
	e, ok := apperr.As(err)
	require.True(t, ok, "apperr.Error가 아님: %v", err)
	require.Equal(t, kind, e.Kind, e.Error())
	return e
}

func TestCreateAndGet(t *testing.T) {
	svc, pub, _ := setupService(t)
	ctx := context.Background()
	user := uuid.NewString()

	created := createWidget(t, svc, user, "Test widget", 5)
	assert.True(t, ValidID(created.ID))
	assert.Equal(t, user, created.UserID)
	assert.Equal(t, CategoryBasic, created.Category)
	assert.Equal(t, int64(0), created.Version)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	got, err := svc.Get(ctx, user, created.ID)
	require.NoError(t, err)
	assert.Equal(t, *created, *got)

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.WidgetCreated, pub.events[0].Type)
	assert.Equal(t, user, pub.events[0].UserID)
}

func TestCreateRejectsBadUserID(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.Create(context.Background(), "not-a-uuid", &CreateRequest{
		Description: strPtr("Test widget"), Category: strPtr("BASIC"), Level: intPtr(1),
	})
	e := requireKind(t, err, apperr.KindInvalidRequest)
	assert.Equal(t, "Invalid user ID format", e.Message)
}

func TestCreateValidation(t *testing.T) {
	svc, pub, _ := setupService(t)

	_, err := svc.Create(context.Background(), uuid.NewString(), &CreateRequest{
		Description: strPtr(""), Category: strPtr("BASIC"), Level: intPtr(0),
	})
	e := requireKind(t, err, apperr.KindValidation)
	assert.Len(t, e.Violations, 3)
	assert.Empty(t, pub.events)
}

func TestOwnershipIsolation(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()
	alice, bob := uuid.NewString(), uuid.NewString()

	w := createWidget(t, svc, alice, "Alice widget", 1)
	createWidget(t, svc, bob, "Bob widget", 2)

	_, err := svc.Get(ctx, bob, w.ID)
	requireKind(t, err, apperr.KindNotFound)

	_, err = svc.Update(ctx, bob, w.ID, &UpdateRequest{Level: intPtr(9), Version: i64Ptr(0)})
	requireKind(t, err, apperr.KindNotFound)

	err = svc.Delete(ctx, bob, w.ID)
	requireKind(t, err, apperr.KindNotFound)

	page, err := svc.List(ctx, alice, ListQuery{})
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, w.ID, page.Content[0].ID)
}

func TestUpdateVersioning(t *testing.T) {
	svc, pub, _ := setupService(t)
	ctx := context.Background()
	user := uuid.NewString()

	w := createWidget(t, svc, user, "Original", 1)

	updated, err := svc.Update(ctx, user, w.ID, &UpdateRequest{
		Description: strPtr("Changed"), Category: strPtr("premium"), Version: i64Ptr(0),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.Version)
	assert.Equal(t, "Changed", updated.Description)
	assert.Equal(t, CategoryPremium, updated.Category)
	assert.Equal(t, 1, updated.Level)
	assert.Equal(t, w.CreatedAt, updated.CreatedAt)

	// 이전 버전으로 수정 시도
	_, err = svc.Update(ctx, user, w.ID, &UpdateRequest{Level: intPtr(2), Version: i64Ptr(0)})
	e := requireKind(t, err, apperr.KindOptimisticLock)
	assert.Equal(t, "Resource has been modified by another user", e.Message)

	got, err := svc.Get(ctx, user, w.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Version)
	assert.Equal(t, 1, got.Level)

	assert.Equal(t, events.WidgetUpdated, pub.events[len(pub.events)-1].Type)
}

func TestUpdateLosesRace(t *testing.T) {
	svc, _, repo := setupService(t)
	ctx := context.Background()
	user := uuid.NewString()

	w := createWidget(t, svc, user, "Original", 1)

	// 다른 요청이 먼저 수정
	stored, err := repo.FindByIDAndUser(ctx, w.ID, user)
	require.NoError(t, err)
	ok, err := repo.Update(ctx, stored, 0)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.Update(ctx, stored, 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDelete(t *testing.T) {
	svc, pub, _ := setupService(t)
	ctx := context.Background()
	user := uuid.NewString()

	w := createWidget(t, svc, user, "To delete", 1)
	require.NoError(t, svc.Delete(ctx, user, w.ID))

	_, err := svc.Get(ctx, user, w.ID)
	requireKind(t, err, apperr.KindNotFound)

	err = svc.Delete(ctx, user, w.ID)
	requireKind(t, err, apperr.KindNotFound)

	assert.Equal(t, events.WidgetDeleted, pub.events[len(pub.events)-1].Type)
}

func TestListPaging(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()
	user := uuid.NewString()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	for i := 1; i <= 5; i++ {
		createWidget(t, svc, user, "Widget number "+string(rune('0'+i)), i)
	}

	page, err := svc.List(ctx, user, ListQuery{Page: 2, Size: 2})
	require.NoError(t, err)
	assert.Len(t, page.Content, 1)
	assert.Equal(t, int64(5), page.TotalElements)
	assert.Equal(t, 3, page.TotalPages)
	assert.False(t, page.HasNext)
	assert.True(t, page.HasPrevious)
	// 기본 정렬: createdAt DESC
	assert.Equal(t, 1, page.Content[0].Level)

	page, err = svc.List(ctx, user, ListQuery{Sort: SortLevel, Direction: Asc, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, []int{page.Content[0].Level, page.Content[1].Level})
	assert.True(t, page.HasNext)

	page, err = svc.List(ctx, user, ListQuery{Size: 500})
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, page.PageSize)
}

func TestListFilters(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()
	user := uuid.NewString()

	createWidget(t, svc, user, "Blue gadget", 1)
	createWidget(t, svc, user, "Red 100% gizmo", 2)
	_, err := svc.Create(ctx, user, &CreateRequest{
		Description: strPtr("Blue premium"), Category: strPtr("PREMIUM"), Level: intPtr(3),
	})
	require.NoError(t, err)

	premium := CategoryPremium
	page, err := svc.List(ctx, user, ListQuery{Category: &premium})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalElements)

	page, err = svc.List(ctx, user, ListQuery{Search: "BLUE"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalElements)

	page, err = svc.List(ctx, user, ListQuery{Search: "100%"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalElements)

	// 비ASCII 대소문자도 구분하지 않음
	createWidget(t, svc, user, "ÉCLAIR widget", 4)
	for _, term := range []string{"ÉCLAIR", "éclair", "Éclair"} {
		page, err = svc.List(ctx, user, ListQuery{Search: term})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.TotalElements, "search %q", term)
	}
}

func TestListHugePageIsEmpty(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()
	user := uuid.NewString()

	for i := 1; i <= 3; i++ {
		createWidget(t, svc, user, "Widget number "+string(rune('0'+i)), i)
	}

	huge := math.MaxInt/20 + 1
	page, err := svc.List(ctx, user, ListQuery{Page: huge, Size: 20})
	require.NoError(t, err)
	assert.Empty(t, page.Content)
	assert.Equal(t, int64(3), page.TotalElements)
	assert.Equal(t, huge, page.PageNumber)
	assert.False(t, page.HasNext)

	assert.Equal(t, math.MaxInt, pageOffset(math.MaxInt, 2))
	assert.Equal(t, 40, pageOffset(2, 20))
}

func TestListRejectsBadInput(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()
	user := uuid.NewString()

	_, err := svc.List(ctx, user, ListQuery{Sort: "password"})
	e := requireKind(t, err, apperr.KindInvalidRequest)
	assert.Equal(t, "Invalid sort field: password. Allowed fields are: createdAt, updatedAt, description, category, level", e.Message)

	_, err = svc.List(ctx, user, ListQuery{Page: -1})
	requireKind(t, err, apperr.KindValidation)
}
