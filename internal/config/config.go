package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DB types
const (
	DBTypeSQLite   = "sqlite"
	DBTypeDuckDB   = "duckdb"
	DBTypePostgres = "postgres"
)

// Duration is a time.Duration that reads and writes as "10s" in YAML
type Duration time.Duration

// UnmarshalYAML accepts duration strings and plain nanosecond integers
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if n, err := strconv.ParseInt(node.Value, 10, 64); err == nil {
		*d = Duration(n)
		return nil
	}
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("잘못된 duration: %s", node.Value)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML writes the duration as a string
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the standard library value
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config represents widgetd.yaml
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
	API      APIConfig      `yaml:"api"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port         int      `yaml:"port"`
	ReadTimeout  Duration `yaml:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout"`
	CORSOrigins  []string `yaml:"cors_origins"`
	MaxBodyBytes int64    `yaml:"max_body_bytes"`
}

// DatabaseConfig selects and locates the store
type DatabaseConfig struct {
	Type string `yaml:"type"`           // sqlite | duckdb | postgres
	Path string `yaml:"path,omitempty"` // sqlite, duckdb
	DSN  string `yaml:"dsn,omitempty"`  // postgres
}

// AuthConfig holds JWT settings of the identity provider
type AuthConfig struct {
	Issuer         string `yaml:"issuer"`
	Secret         string `yaml:"secret,omitempty"` // base64
	Realm          string `yaml:"realm"`
	TokenCacheSize int    `yaml:"token_cache_size"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level         string `yaml:"level"`
	Format        string `yaml:"format"`
	RequestBodies bool   `yaml:"request_bodies"`
}

// APIConfig holds paging limits
type APIConfig struct {
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
}

// Default returns a config with every default applied
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  Duration(10 * time.Second),
			WriteTimeout: Duration(30 * time.Second), // SSE 고려
			CORSOrigins:  []string{"*"},
			MaxBodyBytes: 1 << 20,
		},
		Database: DatabaseConfig{
			Type: DBTypeSQLite,
			Path: DefaultDBPath(),
		},
		Auth: AuthConfig{
			Issuer:         "supabase",
			Realm:          "Widget API",
			TokenCacheSize: 1024,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		API: APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
	}
}

// Load reads .env, the YAML file at path (optional when empty) and
// environment overrides, in that order of precedence from lowest to highest.
func Load(path string) (*Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv("WIDGETD_CONFIG")
	}
	explicit := path != ""
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("설정 파일 파싱 실패: %w", err)
		}
	case os.IsNotExist(err) && !explicit:
		// 설정 파일 없음 - 기본값 사용
	default:
		return nil, fmt.Errorf("설정 파일 읽기 실패: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDotEnv loads a dotenv file when present. Existing variables win.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf(".env 로드 실패: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("WIDGETD_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("WIDGETD_PORT 파싱 실패: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("WIDGETD_DB_TYPE"); v != "" {
		c.Database.Type = strings.ToLower(v)
	}
	if v := os.Getenv("WIDGETD_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("WIDGETD_DB_DSN"); v != "" {
		c.Database.DSN = v
	} else if v := os.Getenv("DATABASE_URL"); v != "" && c.Database.DSN == "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("SUPABASE_JWT_SECRET"); v != "" {
		c.Auth.Secret = v
	}
	if v := os.Getenv("SUPABASE_JWT_ISSUER"); v != "" {
		c.Auth.Issuer = v
	}
	if v := os.Getenv("SUPABASE_JWT_REALM"); v != "" {
		c.Auth.Realm = v
	}
	if v := os.Getenv("WIDGETD_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("WIDGETD_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	return nil
}

// Validate returns every configuration problem found
func (c *Config) Validate() []error {
	var out []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		out = append(out, fmt.Errorf("server.port: %d not in [1, 65535]", c.Server.Port))
	}

	switch c.Database.Type {
	case DBTypeSQLite, DBTypeDuckDB:
		if c.Database.Path == "" {
			out = append(out, fmt.Errorf("database.path: required for %s", c.Database.Type))
		}
	case DBTypePostgres:
		if c.Database.DSN == "" {
			out = append(out, errors.New("database.dsn: required for postgres"))
		}
	default:
		out = append(out, fmt.Errorf("database.type: unknown type %q", c.Database.Type))
	}

	if c.API.MaxPageSize < 1 {
		out = append(out, fmt.Errorf("api.max_page_size: must be >= 1, got %d", c.API.MaxPageSize))
	}
	if c.API.DefaultPageSize < 1 || c.API.DefaultPageSize > c.API.MaxPageSize {
		out = append(out, fmt.Errorf("api.default_page_size: %d not in [1, %d]", c.API.DefaultPageSize, c.API.MaxPageSize))
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		out = append(out, fmt.Errorf("logging.level: unknown level %q", c.Logging.Level))
	}

	return out
}

// ValidateForServe adds the checks only the HTTP server needs
func (c *Config) ValidateForServe() []error {
	out := c.Validate()
	if strings.TrimSpace(c.Auth.Secret) == "" {
		out = append(out, errors.New("auth.secret: required (set SUPABASE_JWT_SECRET)"))
	}
	return out
}

// Save writes the config as YAML
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("디렉토리 생성 실패: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("설정 직렬화 실패: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("설정 파일 저장 실패: %w", err)
	}

	return nil
}
