package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "http://localhost:5000/api", cfg.APIURL)
	assert.NotEmpty(t, cfg.DataDir)
	assert.Zero(t, cfg.RequestTimeout)
	assert.Zero(t, cfg.RequestsPerSecond)
	assert.Equal(t, 1, cfg.Burst)
	assert.Equal(t, 3, cfg.HealthRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.HealthRetryDelay)
	assert.GreaterOrEqual(t, cfg.Workers, 1)
	assert.NoError(t, cfg.Validate())
}

func TestDefaultDataDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", "songfinder"), DefaultDataDir())
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig(
		WithAPIURL("https://songs.example.com/api"),
		WithDataDir("/var/lib/songfinder"),
		WithRequestTimeout(30*time.Second),
		WithRateLimit(2.5, 4),
		WithHealthRetries(5, time.Second),
		WithWorkers(8),
	)

	assert.Equal(t, "https://songs.example.com/api", cfg.APIURL)
	assert.Equal(t, "/var/lib/songfinder", cfg.DataDir)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 2.5, cfg.RequestsPerSecond)
	assert.Equal(t, 4, cfg.Burst)
	assert.Equal(t, 5, cfg.HealthRetries)
	assert.Equal(t, time.Second, cfg.HealthRetryDelay)
	assert.Equal(t, 8, cfg.Workers)
}

func TestNormalize(t *testing.T) {
	cfg := NewConfig(
		WithAPIURL("  http://localhost:5000/api//  "),
		WithDataDir(" /data/songfinder/ "),
		WithRateLimit(1, 0),
	)
	cfg.Normalize()

	assert.Equal(t, "http://localhost:5000/api", cfg.APIURL)
	assert.Equal(t, "/data/songfinder", cfg.DataDir)
	assert.Equal(t, 1, cfg.Burst)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    []ConfigOption
		wantErr bool
	}{
		{"defaults", nil, false},
		{"empty url", []ConfigOption{WithAPIURL("")}, true},
		{"no scheme", []ConfigOption{WithAPIURL("localhost:5000")}, true},
		{"bad scheme", []ConfigOption{WithAPIURL("ftp://example.com")}, true},
		{"no host", []ConfigOption{WithAPIURL("http://")}, true},
		{"empty data dir", []ConfigOption{WithDataDir("  ")}, true},
		{"negative timeout", []ConfigOption{WithRequestTimeout(-time.Second)}, true},
		{"negative rate", []ConfigOption{WithRateLimit(-1, 1)}, true},
		{"no health checks", []ConfigOption{WithHealthRetries(0, time.Second)}, true},
		{"negative health delay", []ConfigOption{WithHealthRetries(1, -time.Second)}, true},
		{"no workers", []ConfigOption{WithWorkers(0)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewConfig(tt.opts...).Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "songfinder.yaml")
	content := `api_url: http://search.local:8080/api/
request_timeout: 15s
requests_per_second: 3
health_retry_delay: 250ms
workers: 6
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "http://search.local:8080/api/", cfg.APIURL)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 3.0, cfg.RequestsPerSecond)
	assert.Equal(t, 250*time.Millisecond, cfg.HealthRetryDelay)
	assert.Equal(t, 6, cfg.Workers)
	assert.Equal(t, 3, cfg.HealthRetries, "unset fields keep their defaults")

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://search.local:8080/api", cfg.APIURL)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: [many]\n"), 0644))
	_, err = LoadFile(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvAPIURL, "http://env.local/api")
	t.Setenv(EnvDataDir, "/env/data")
	t.Setenv(EnvRPS, "0.5")
	t.Setenv(EnvWorkers, " 3 ")

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, "http://env.local/api", cfg.APIURL)
	assert.Equal(t, "/env/data", cfg.DataDir)
	assert.Equal(t, 0.5, cfg.RequestsPerSecond)
	assert.Equal(t, 3, cfg.Workers)
}

func TestApplyEnv_Invalid(t *testing.T) {
	t.Setenv(EnvWorkers, "lots")
	assert.Error(t, DefaultConfig().ApplyEnv())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("SONGFINDER_API_URL=http://dotenv.local/api\n"), 0644))

	// Variables already present win over the file.
	t.Setenv(EnvWorkers, "2")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "second.env"), []byte("SONGFINDER_WORKERS=9\n"), 0644))

	t.Setenv(EnvAPIURL, "")
	require.NoError(t, os.Unsetenv(EnvAPIURL))

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "second.env"), filepath.Join(dir, "missing.env")))
	t.Cleanup(func() { os.Unsetenv(EnvAPIURL) })

	assert.Equal(t, "http://dotenv.local/api", os.Getenv(EnvAPIURL))
	assert.Equal(t, "2", os.Getenv(EnvWorkers))
}
