package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"teamcollab/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable ReadConfig looks at.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG", "ADDR", "PORT", "DB_STR", "MIGRATE_PATH", "IN_MEMORY", "JWT_SECRET", "JWT_TTL",
		"ALLOWED_ORIGINS", "LOG_LEVEL", "LOG_FILE", "LOG_PRETTY",
		"DB_USER", "DB_PASSWORD", "DB_NAME", "DB_HOST", "DB_PORT",
	} {
		t.Setenv(key, "")
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := ReadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, "0.0.0.0:8080", cfg.ListenAddr())
}

func TestReadConfigLayering(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
		args []string
		want func(t *testing.T, cfg *Config)
	}{
		{
			name: "json file",
			file: `{"port": 9000, "jwtSecret": "from-file", "jwtTTL": "2h", "allowedOrigins": ["http://a.test"], "logPretty": false}`,
			want: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9000, cfg.Port)
				assert.Equal(t, "from-file", cfg.JWTSecret)
				assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
				assert.Equal(t, []string{"http://a.test"}, cfg.AllowedOrigins)
				assert.False(t, cfg.LogPretty)
			},
		},
		{
			name: "env beats file",
			file: `{"port": 9000, "jwtSecret": "from-file"}`,
			env:  map[string]string{"PORT": "9100", "JWT_SECRET": "from-env", "IN_MEMORY": "true"},
			want: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9100, cfg.Port)
				assert.Equal(t, "from-env", cfg.JWTSecret)
				assert.True(t, cfg.InMemory)
			},
		},
		{
			name: "flags beat env",
			env:  map[string]string{"PORT": "9100", "ALLOWED_ORIGINS": "http://a.test, http://b.test"},
			args: []string{"-port", "9200", "-jwtttl", "30m"},
			want: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9200, cfg.Port)
				assert.Equal(t, 30*time.Minute, cfg.JWTTTL)
				assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
			},
		},
		{
			name: "unset flags keep env values",
			env:  map[string]string{"ADDR": "127.0.0.1"},
			args: []string{"-loglevel", "debug"},
			want: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "127.0.0.1", cfg.Addr)
				assert.Equal(t, "debug", cfg.LogLevel)
			},
		},
		{
			name: "invalid env port is ignored",
			env:  map[string]string{"PORT": "http"},
			want: func(t *testing.T, cfg *Config) {
				assert.Equal(t, defaultPort, cfg.Port)
			},
		},
		{
			name: "db parts compose a dsn",
			env: map[string]string{
				"DB_USER": "u", "DB_PASSWORD": "p", "DB_NAME": "n", "DB_HOST": "h", "DB_PORT": "5433",
			},
			want: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "postgresql://u:p@h:5433/n?sslmode=disable", cfg.DBStr)
			},
		},
		{
			name: "dbdsn takes precedence over dbstr",
			args: []string{"-dbstr", "postgres://a", "-dbdsn", "postgres://b"},
			want: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "postgres://b", cfg.DBStr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			args := tt.args
			if tt.file != "" {
				args = append([]string{"-c", writeConfigFile(t, tt.file)}, args...)
			}

			cfg, err := ReadConfig(args)
			require.NoError(t, err)
			tt.want(t, cfg)
		})
	}
}

func TestReadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		args []string
		want error
	}{
		{name: "missing file", args: []string{"-c", "/nonexistent/config.json"}, want: errors.ErrConfigFileReadFailed},
		{name: "broken json", file: `{"port": `, want: errors.ErrConfigParseFailed},
		{name: "bad ttl in file", file: `{"jwtTTL": "forever"}`, want: errors.ErrConfigInvalidFormat},
		{name: "port out of range", args: []string{"-port", "70000"}, want: errors.ErrConfigInvalidFormat},
		{name: "non positive ttl", args: []string{"-jwtttl", "0s"}, want: errors.ErrConfigInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			args := tt.args
			if tt.file != "" {
				args = []string{"-c", writeConfigFile(t, tt.file)}
			}
			_, err := ReadConfig(args)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReadConfigFromEnvPath(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG", writeConfigFile(t, `{"migratePath": "db/migrations"}`))

	cfg, err := ReadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "db/migrations", cfg.MigratePath)
}

func TestReadConfigUnknownFlag(t *testing.T) {
	clearEnv(t)
	_, err := ReadConfig([]string{"-nope"})
	assert.Error(t, err)
}
