package widget

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/n0roo/widget-kit/internal/db"
)

// ErrNotFound is returned by repositories for a missing or foreign widget
var ErrNotFound = errors.New("widget not found")

// Repository persists widgets scoped to their owner
type Repository interface {
	Insert(ctx context.Context, w *Widget) error
	FindByIDAndUser(ctx context.Context, id, userID string) (*Widget, error)
	// Update writes w if the stored version equals expectedVersion and
	// bumps the version. It reports false when no row matched.
	Update(ctx context.Context, w *Widget, expectedVersion int64) (bool, error)
	Delete(ctx context.Context, id, userID string) (bool, error)
	List(ctx context.Context, userID string, filter Filter, page Page) ([]Widget, int64, error)
}

// SQLRepository implements Repository on any db.Database
type SQLRepository struct {
	db db.Database
}

// NewSQLRepository creates a repository backed by database
func NewSQLRepository(database db.Database) *SQLRepository {
	return &SQLRepository{db: database}
}

var _ Repository = (*SQLRepository)(nil)

var sortColumns = map[string]string{
	SortCreatedAt:   "created_at",
	SortUpdatedAt:   "updated_at",
	SortDescription: "description",
	SortCategory:    "category",
	SortLevel:       "level",
}

const selectColumns = `id, user_id, description, category, level, created_at, updated_at, version`

// Insert stores a new widget
func (r *SQLRepository) Insert(ctx context.Context, w *Widget) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO widgets (`+selectColumns+`, description_lc)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), w.ID, w.UserID, w.Description, string(w.Category), w.Level,
		w.CreatedAt.UnixMilli(), w.UpdatedAt.UnixMilli(), w.Version, db.FoldDescription(w.Description))
	if err != nil {
		return fmt.Errorf("위젯 저장 실패: %w", err)
	}
	return nil
}

// FindByIDAndUser loads a widget owned by userID
func (r *SQLRepository) FindByIDAndUser(ctx context.Context, id, userID string) (*Widget, error) {
	row := r.db.QueryRowContext(ctx, r.db.Rebind(`
		SELECT `+selectColumns+` FROM widgets WHERE id = ? AND user_id = ?
	`), id, userID)

	w, err := scanWidget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("위젯 조회 실패: %w", err)
	}
	return w, nil
}

// Update performs the version-checked update; on success w.Version is bumped
func (r *SQLRepository) Update(ctx context.Context, w *Widget, expectedVersion int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE widgets
		SET description = ?, description_lc = ?, category = ?, level = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND user_id = ? AND version = ?
	`), w.Description, db.FoldDescription(w.Description), string(w.Category), w.Level, w.UpdatedAt.UnixMilli(),
		w.ID, w.UserID, expectedVersion)
	if err != nil {
		return false, fmt.Errorf("위젯 수정 실패: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("위젯 수정 결과 확인 실패: %w", err)
	}
	if rows == 0 {
		return false, nil
	}

	w.Version = expectedVersion + 1
	return true, nil
}

// Delete removes a widget owned by userID
func (r *SQLRepository) Delete(ctx context.Context, id, userID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM widgets WHERE id = ? AND user_id = ?`), id, userID)
	if err != nil {
		return false, fmt.Errorf("위젯 삭제 실패: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("위젯 삭제 결과 확인 실패: %w", err)
	}
	return rows > 0, nil
}

// List returns one page of a user's widgets and the total match count
func (r *SQLRepository) List(ctx context.Context, userID string, filter Filter, page Page) ([]Widget, int64, error) {
	column, ok := sortColumns[page.Sort]
	if !ok {
		return nil, 0, fmt.Errorf("정렬 필드 오류: %s", page.Sort)
	}
	dir := "DESC"
	if page.Direction == Asc {
		dir = "ASC"
	}

	where := []string{"user_id = ?"}
	args := []interface{}{userID}
	if filter.Category != nil {
		where = append(where, "category = ?")
		args = append(args, string(*filter.Category))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		where = append(where, "description_lc LIKE ? ESCAPE '!'")
		args = append(args, "%"+escapeLike(db.FoldDescription(s))+"%")
	}
	whereSQL := strings.Join(where, " AND ")

	var total int64
	if err := r.db.QueryRowContext(ctx, r.db.Rebind(`SELECT COUNT(*) FROM widgets WHERE `+whereSQL), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("위젯 개수 조회 실패: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM widgets WHERE %s ORDER BY %s %s, id %s LIMIT ? OFFSET ?`,
		selectColumns, whereSQL, column, dir, dir)
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), append(args, page.Limit, page.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("위젯 목록 조회 실패: %w", err)
	}
	defer rows.Close()

	var widgets []Widget
	for rows.Next() {
		w, err := scanWidget(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("위젯 읽기 실패: %w", err)
		}
		widgets = append(widgets, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return widgets, total, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanWidget(s rowScanner) (*Widget, error) {
	var w Widget
	var category string
	var createdAt, updatedAt int64
	if err := s.Scan(&w.ID, &w.UserID, &w.Description, &category, &w.Level, &createdAt, &updatedAt, &w.Version); err != nil {
		return nil, err
	}
	w.Category = Category(category)
	w.CreatedAt = time.UnixMilli(createdAt).UTC()
	w.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return &w, nil
}

// escapeLike escapes LIKE wildcards using '!' as the escape character
func escapeLike(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return r.Replace(s)
}
