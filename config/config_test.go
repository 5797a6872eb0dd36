package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "DATABASE_URL", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
		"DB_SSLMODE", "DB_TIMEZONE", "JWT_SECRET", "JWT_TTL", "CORS_ORIGINS", "GIN_MODE",
		"LOG_LEVEL", "RATE_FORMS_PER_MIN", "RATE_FORMS_BURST", "RATE_ANSWERS_PER_MIN", "RATE_ANSWERS_BURST",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadSettingsDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")

	s, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, "8080", s.Port)
	assert.Equal(t, 24*time.Hour, s.JWTTTL)
	assert.Equal(t, 10, s.FormsPerMin)
	assert.Equal(t, 60, s.AnswersPerMin)
	assert.Equal(t, []string{"http://localhost:5173"}, s.CORSOrigins)
}

func TestLoadSettingsFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9000")
	t.Setenv("JWT_TTL", "90m")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("RATE_ANSWERS_BURST", "3")
	t.Setenv("LOG_LEVEL", "debug")

	s, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, "9000", s.Port)
	assert.Equal(t, 90*time.Minute, s.JWTTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, s.CORSOrigins)
	assert.Equal(t, 3, s.AnswersBurst)
	assert.Equal(t, "debug", s.LogLevel)
}

func TestLoadSettingsErrors(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret":    {},
		"bad ttl":           {"JWT_SECRET": "x", "JWT_TTL": "forever"},
		"bad rate":          {"JWT_SECRET": "x", "RATE_FORMS_PER_MIN": "many"},
		"non-positive rate": {"JWT_SECRET": "x", "RATE_ANSWERS_PER_MIN": "0"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := LoadSettings()
			assert.Error(t, err)
		})
	}
}

func TestDSN(t *testing.T) {
	s := DefaultSettings()
	s.DBUser, s.DBPassword, s.DBName = "forms", "pw", "forms_dev"
	assert.Equal(t,
		"host=localhost user=forms password=pw dbname=forms_dev port=5432 sslmode=disable TimeZone=UTC",
		s.DSN())

	s.DatabaseURL = "postgres://u:p@db:5432/forms"
	assert.Equal(t, "postgres://u:p@db:5432/forms", s.DSN())
}

func TestInitLogger(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	InitLogger("warn", "release")
	assert.False(t, Log.Core().Enabled(-1))
	assert.True(t, Log.Core().Enabled(1))

	InitLogger("not-a-level", "debug")
	assert.True(t, Log.Core().Enabled(0))
	SyncLogger()
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	assert.Error(t, LoadEnv(), "missing .env is reported to the caller")

	const key = "FORM_BUILDER_LOADENV_CHECK"
	t.Cleanup(func() { _ = os.Unsetenv(key) })
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(key+"=loaded\n"), 0o600))

	require.NoError(t, LoadEnv())
	assert.Equal(t, "loaded", os.Getenv(key))
}

func TestGormConfigUsesUTC(t *testing.T) {
	cfg := GormConfig()
	assert.True(t, cfg.TranslateError)
	assert.Equal(t, time.UTC, cfg.NowFunc().Location())
}
