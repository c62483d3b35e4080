package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
)

// Postgres wraps a PostgreSQL sql.DB
type Postgres struct {
	*sql.DB
	dsn string
}

// OpenPostgres connects to PostgreSQL and applies the schema
func OpenPostgres(dsn string) (*Postgres, error) {
	if dsn == "" {
		return nil, errors.New("PostgreSQL DSN이 비어 있습니다")
	}

	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("PostgreSQL 열기 실패: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("PostgreSQL 연결 실패: %w", err)
	}

	p := &Postgres{DB: sqlDB, dsn: dsn}
	if err := p.Init(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("스키마 초기화 실패: %w", err)
	}

	return p, nil
}

// Init initializes the PostgreSQL schema
func (p *Postgres) Init() error {
	return initSchema(context.Background(), p)
}

// Path returns the DSN with the password masked
func (p *Postgres) Path() string {
	return RedactDSN(p.dsn)
}

// Type returns TypePostgres
func (p *Postgres) Type() DBType {
	return TypePostgres
}

// Rebind converts ? placeholders to $1, $2, ...
func (p *Postgres) Rebind(query string) string {
	return rebindDollar(query)
}

// GetVersion returns current schema version
func (p *Postgres) GetVersion() (int, error) {
	version, err := getVersion(p)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	// 최초 실행 시 metadata 테이블 없음
	if err != nil && strings.Contains(err.Error(), "does not exist") {
		return 0, nil
	}
	return version, err
}

// rebindDollar replaces ? outside of quoted literals
func rebindDollar(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	inQuote := false
	for _, r := range query {
		switch {
		case r == '\'':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

var kvPassword = regexp.MustCompile(`(?i)(password\s*=\s*)('[^']*'|\S+)`)

// RedactDSN masks the password of a URL or key=value DSN
func RedactDSN(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" && u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), "xxxxx")
		}
		return u.String()
	}
	return kvPassword.ReplaceAllString(dsn, "${1}xxxxx")
}
