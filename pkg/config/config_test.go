package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViperDefaults(t *testing.T) {
	t.Setenv("API_ORIGIN", "")
	cfg := FromViper(NewViper())

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, DevelopmentOrigin+"/api/v1", cfg.API.BaseURL())
	assert.Equal(t, "ngrok-skip-browser-warning", cfg.API.TunnelHeader)
	assert.Zero(t, cfg.API.Timeout)
	assert.Equal(t, 20, cfg.PageSizes.Teachers)
	assert.Equal(t, 20, cfg.PageSizes.Groups)
	assert.Equal(t, 15, cfg.PageSizes.Students)
	assert.Equal(t, 30, cfg.PageSizes.StudentAttendance)
	assert.Equal(t, SessionBackendFile, cfg.Session.Backend)
	assert.NotEmpty(t, cfg.Session.FilePath)
}

func TestFromViperEnvironmentOverrides(t *testing.T) {
	t.Setenv("API_ORIGIN", "https://attendance.example.com/")
	t.Setenv("API_TIMEOUT", "15s")
	t.Setenv("PAGE_SIZE_STUDENTS", "50")
	t.Setenv("SESSION_BACKEND", "REDIS")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, ,https://b.example.com")

	cfg := FromViper(NewViper())

	assert.Equal(t, "https://attendance.example.com/api/v1", cfg.API.BaseURL())
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.Equal(t, 50, cfg.PageSizes.Students)
	assert.Equal(t, SessionBackendRedis, cfg.Session.Backend)
	require.Len(t, cfg.Gateway.AllowedOrigins, 2)
	assert.Equal(t, "https://b.example.com", cfg.Gateway.AllowedOrigins[1])
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, 2*time.Second, parseDuration("2s", time.Minute))
}

func TestLoadViperFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("API_ORIGIN", "https://env.example.com")
	t.Setenv("SESSION_BACKEND", "memory")

	v, err := LoadViper()
	require.NoError(t, err)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("api-origin", "", "")
	fs.String("session-backend", "", "")
	require.NoError(t, fs.Parse([]string{"--api-origin", "https://flag.example.com"}))
	require.NoError(t, v.BindPFlag("API_ORIGIN", fs.Lookup("api-origin")))
	require.NoError(t, v.BindPFlag("SESSION_BACKEND", fs.Lookup("session-backend")))

	cfg := FromViper(v)
	assert.Equal(t, "https://flag.example.com/api/v1", cfg.API.BaseURL())
	assert.Equal(t, SessionBackendMemory, cfg.Session.Backend, "unset flag must not shadow the environment")
}
