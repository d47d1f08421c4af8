package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "3001", cfg.WebServerPort)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 20, cfg.RateLimitRPS)
	assert.Empty(t, cfg.RedisAddr())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins())
}

func TestLoadConfig_FromEnvFile(t *testing.T) {
	dir := t.TempDir()
	content := "APP_ENV=production\nDB_DRIVER=memory\nREDIS_HOST=cache\nREDIS_PORT=6380\nCACHE_TTL=30s\nCORS_ORIGINS=http://a.test, http://b.test\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))

	cfg, err := LoadConfig(dir)

	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "memory", cfg.DBDriver)
	assert.Equal(t, "cache:6380", cfg.RedisAddr())
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins())
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("WEB_SERVER_PORT=8080\n"), 0o600))
	t.Setenv("WEB_SERVER_PORT", "9090")

	cfg, err := LoadConfig(dir)

	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.WebServerPort)
}

func TestConf_PostgresDSN(t *testing.T) {
	cfg := &Conf{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "n"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", cfg.PostgresDSN())
}
