package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	type want struct {
		apiURL       string
		home         string
		logFile      string
		pollInterval time.Duration
		pollAttempts int
		redisURL     string
	}

	tests := []struct {
		name string
		env  map[string]string
		want want
	}{
		{
			name: "defaults",
			env:  map[string]string{"CCC_HOME": "/tmp/ccc-test"},
			want: want{
				apiURL:       "http://localhost:8001",
				home:         "/tmp/ccc-test",
				logFile:      "/tmp/ccc-test/ccc.log",
				pollInterval: 2 * time.Second,
				pollAttempts: 5,
			},
		},
		{
			name: "env overrides",
			env: map[string]string{
				"CCC_HOME":          "/tmp/ccc-test",
				"CCC_API_URL":       "https://api.example.com/",
				"CCC_LOG_FILE":      "/var/log/ccc.log",
				"CCC_POLL_INTERVAL": "500ms",
				"CCC_POLL_ATTEMPTS": "3",
				"CCC_REDIS_URL":     "redis://localhost:6379/2",
			},
			want: want{
				apiURL:       "https://api.example.com",
				home:         "/tmp/ccc-test",
				logFile:      "/var/log/ccc.log",
				pollInterval: 500 * time.Millisecond,
				pollAttempts: 3,
				redisURL:     "redis://localhost:6379/2",
			},
		},
		{
			name: "guardrails",
			env: map[string]string{
				"CCC_HOME":          "/tmp/ccc-test",
				"CCC_POLL_INTERVAL": "0s",
				"CCC_POLL_ATTEMPTS": "0",
			},
			want: want{
				apiURL:       "http://localhost:8001",
				home:         "/tmp/ccc-test",
				logFile:      "/tmp/ccc-test/ccc.log",
				pollInterval: 2 * time.Second,
				pollAttempts: 5,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			require.NoError(t, err)

			assert.Equal(t, tt.want.apiURL, cfg.APIURL)
			assert.Equal(t, tt.want.home, cfg.Home)
			assert.Equal(t, tt.want.logFile, cfg.Log.File)
			assert.Equal(t, tt.want.pollInterval, cfg.Poll.Interval)
			assert.Equal(t, tt.want.pollAttempts, cfg.Poll.Attempts)
			assert.Equal(t, tt.want.redisURL, cfg.Redis.URL)
			assert.Equal(t, TokenKey, cfg.Redis.Key)
			assert.Equal(t, filepath.Join(tt.want.home, TokenKey), cfg.TokenPath())
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("CCC_API_URL=https://dotenv.example.com\nCCC_PORTAL_URL=https://portal.example.com/\n"), 0o600))

	t.Setenv("CCC_HOME", dir)
	// godotenv never overrides variables that are already set, so make sure
	// these two start unset and are cleaned up after the test.
	unsetForTest(t, "CCC_API_URL")
	unsetForTest(t, "CCC_RETURN_URL")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://dotenv.example.com", cfg.APIURL)
	assert.Equal(t, "https://portal.example.com", cfg.PortalURL)
}

func TestLoad_InvalidAPIURL(t *testing.T) {
	t.Setenv("CCC_HOME", t.TempDir())
	t.Setenv("CCC_API_URL", "localhost:8001")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CCC_API_URL")
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("CCC_HOME", t.TempDir())
	t.Setenv("CCC_POLL_INTERVAL", "soon")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}

func unsetForTest(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}
