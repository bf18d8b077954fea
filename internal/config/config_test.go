package config

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_KEY", "secret")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")

	cfg, err := Load(quietLogger())
	require.NoError(t, err)

	assert.Equal(t, "product-api", cfg.AppName)
	assert.Equal(t, "3000", cfg.AppPort)
	assert.Equal(t, "productdb", cfg.MongoDBName)
	assert.Equal(t, "products", cfg.MongoCollection)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.TraceStdout)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("API_KEY", "secret")
	t.Setenv("MONGO_URI", "mongodb://db:27017")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("MONGO_COLLECTION", "catalog")
	t.Setenv("TRACE_STDOUT", "true")
	t.Setenv("SHUTDOWN_TIMEOUT_MS", "2500")
	t.Setenv("ENV", "production")

	cfg, err := Load(quietLogger())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "catalog", cfg.MongoCollection)
	assert.True(t, cfg.TraceStdout)
	assert.Equal(t, 2500*time.Millisecond, cfg.ShutdownTimeout)
	assert.True(t, cfg.IsProduction())
}

func TestLoadInvalidShutdownTimeoutFallsBack(t *testing.T) {
	t.Setenv("API_KEY", "secret")
	t.Setenv("MONGO_URI", "mongodb://db:27017")
	t.Setenv("SHUTDOWN_TIMEOUT_MS", "soon")

	cfg, err := Load(quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("API_KEY", "")
	t.Setenv("MONGO_URI", "")

	cfg, err := Load(quietLogger())
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, ErrMissingEnv)
	assert.Contains(t, err.Error(), "API_KEY")
	assert.Contains(t, err.Error(), "MONGO_URI")
}

func TestLoadNeverLogsSecrets(t *testing.T) {
	t.Setenv("API_KEY", "top-secret-key")
	t.Setenv("MONGO_URI", "mongodb://user:pw@db:27017")

	var buf bytes.Buffer
	_, err := Load(slog.New(slog.NewJSONHandler(&buf, nil)))
	require.NoError(t, err)

	assert.NotContains(t, buf.String(), "top-secret-key")
	assert.NotContains(t, buf.String(), "user:pw")
	assert.Contains(t, buf.String(), "data.app_port")
}

func TestStructAttrs(t *testing.T) {
	attrs := StructAttrs("data", struct {
		AppPort string
		Retries int
		Debug   bool
		Named   string `json:"renamed,omitempty"`
	}{"3000", 3, true, "x"})

	keys := make([]string, 0, len(attrs))
	for _, a := range attrs {
		keys = append(keys, a.Key)
	}
	assert.Equal(t, []string{"data.app_port", "data.retries", "data.debug", "data.renamed"}, keys)
}
