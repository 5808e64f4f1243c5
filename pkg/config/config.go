package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// DevelopmentOrigin is used when API_ORIGIN is not configured.
const DevelopmentOrigin = "https://helminthoid-clumsily-xuan.ngrok-free.dev"

// Session backends.
const (
	SessionBackendNone     = "none"
	SessionBackendMemory   = "memory"
	SessionBackendFile     = "file"
	SessionBackendRedis    = "redis"
	SessionBackendPostgres = "postgres"
)

type Config struct {
	Env string

	API       APIConfig
	PageSizes PageSizeConfig
	Session   SessionConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	Gateway   GatewayConfig
}

// APIConfig describes how to reach the attendance backend.
type APIConfig struct {
	Origin              string
	Prefix              string
	TunnelHeader        string
	TunnelHeaderValue   string
	Timeout             time.Duration
	ClearTokenOnUnauthz bool
}

// BaseURL joins origin and prefix.
func (c APIConfig) BaseURL() string {
	return strings.TrimRight(c.Origin, "/") + c.Prefix
}

// PageSizeConfig holds the per-endpoint default page sizes. They are
// independent on purpose; each facade reads only its own value.
type PageSizeConfig struct {
	Teachers          int
	Groups            int
	Students          int
	StudentAttendance int
	TeacherHistory    int
	OwnAttendance     int
}

// SessionConfig selects where the bearer token is persisted.
type SessionConfig struct {
	Backend       string
	FilePath      string
	EncryptionKey string
	KeyPrefix     string
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type LogConfig struct {
	Level  string
	Format string
	File   string
}

// GatewayConfig configures the dashboard gateway binary.
type GatewayConfig struct {
	Port           int
	AllowedOrigins []string
}

func Load() (*Config, error) {
	v, err := LoadViper()
	if err != nil {
		return nil, err
	}
	return FromViper(v), nil
}

// LoadViper reads the environment and an optional .env file into a viper
// instance without building a Config, so callers can bind flags first.
func LoadViper() (*viper.Viper, error) {
	_ = godotenv.Load()

	v := NewViper()
	v.SetConfigFile(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return v, nil
}

// FromViper builds a Config from an already populated viper instance. The CLI
// uses it after binding its flags.
func FromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")

	origin := strings.TrimSpace(v.GetString("API_ORIGIN"))
	if origin == "" {
		origin = DevelopmentOrigin
	}
	cfg.API = APIConfig{
		Origin:              origin,
		Prefix:              v.GetString("API_PREFIX"),
		TunnelHeader:        v.GetString("API_TUNNEL_HEADER"),
		TunnelHeaderValue:   v.GetString("API_TUNNEL_HEADER_VALUE"),
		Timeout:             parseDuration(v.GetString("API_TIMEOUT"), 0),
		ClearTokenOnUnauthz: v.GetBool("API_CLEAR_TOKEN_ON_401"),
	}

	cfg.PageSizes = PageSizeConfig{
		Teachers:          v.GetInt("PAGE_SIZE_TEACHERS"),
		Groups:            v.GetInt("PAGE_SIZE_GROUPS"),
		Students:          v.GetInt("PAGE_SIZE_STUDENTS"),
		StudentAttendance: v.GetInt("PAGE_SIZE_STUDENT_ATTENDANCE"),
		TeacherHistory:    v.GetInt("PAGE_SIZE_TEACHER_HISTORY"),
		OwnAttendance:     v.GetInt("PAGE_SIZE_OWN_ATTENDANCE"),
	}

	cfg.Session = SessionConfig{
		Backend:       strings.ToLower(v.GetString("SESSION_BACKEND")),
		FilePath:      v.GetString("SESSION_FILE"),
		EncryptionKey: v.GetString("SESSION_ENCRYPTION_KEY"),
		KeyPrefix:     v.GetString("SESSION_KEY_PREFIX"),
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
		File:   v.GetString("LOG_FILE"),
	}

	cfg.Gateway = GatewayConfig{
		Port:           v.GetInt("GATEWAY_PORT"),
		AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS")),
	}

	return cfg
}

// NewViper returns a viper instance with environment binding and defaults,
// without reading any file.
func NewViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("API_ORIGIN", "")
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("API_TUNNEL_HEADER", "ngrok-skip-browser-warning")
	v.SetDefault("API_TUNNEL_HEADER_VALUE", "true")
	v.SetDefault("API_TIMEOUT", "")
	v.SetDefault("API_CLEAR_TOKEN_ON_401", true)

	v.SetDefault("PAGE_SIZE_TEACHERS", 20)
	v.SetDefault("PAGE_SIZE_GROUPS", 20)
	v.SetDefault("PAGE_SIZE_STUDENTS", 15)
	v.SetDefault("PAGE_SIZE_STUDENT_ATTENDANCE", 30)
	v.SetDefault("PAGE_SIZE_TEACHER_HISTORY", 20)
	v.SetDefault("PAGE_SIZE_OWN_ATTENDANCE", 30)

	v.SetDefault("SESSION_BACKEND", SessionBackendFile)
	v.SetDefault("SESSION_FILE", defaultSessionFile())
	v.SetDefault("SESSION_ENCRYPTION_KEY", "")
	v.SetDefault("SESSION_KEY_PREFIX", "attendance-client:")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "attendance_client")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 4)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_FILE", "")

	v.SetDefault("GATEWAY_PORT", 8090)
	v.SetDefault("ALLOWED_ORIGINS", "")
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ".attendance-session.json"
	}
	return filepath.Join(dir, "attendance-client", "session.json")
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
