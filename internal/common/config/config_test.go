package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigResolvesEnv(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "s3cret")

	dir := t.TempDir()
	path := filepath.Join(dir, "apiserver.yaml")
	data := `
port: 8080
database:
  type: postgres
  host: ${TEST_DB_HOST:localhost}
  port: 5432
  user: app
  password: ${TEST_DB_PASSWORD}
  dbname: storecrew
  sslmode: disable
jwt:
  secret_key: 0123456789abcdef0123456789abcdef
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "s3cret", cfg.Database.Password)

	// defaults
	assert.Equal(t, 24*time.Hour, cfg.JWT.Duration)
	assert.Equal(t, "memory", cfg.Notifier.Type)
	assert.Equal(t, "whisper-1", cfg.Transcribe.Model)
	assert.Equal(t, "uploads", cfg.Storage.Bucket)
	assert.Equal(t, time.Hour, cfg.Retention.Interval)
}

func TestGetDSN(t *testing.T) {
	pg := DatabaseConfig{Type: "postgres", Host: "db", Port: 5432, User: "u", Password: "p", DBName: "x", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/x?sslmode=disable", pg.GetDSN())

	my := DatabaseConfig{Type: "mysql", Host: "db", Port: 3306, User: "u", Password: "p", DBName: "x"}
	assert.Contains(t, my.GetDSN(), "tcp(db:3306)/x")

	lite := DatabaseConfig{Type: "sqlite", DBName: ":memory:"}
	assert.Equal(t, ":memory:", lite.GetDSN())

	other := DatabaseConfig{Type: "bogus"}
	assert.Equal(t, "", other.GetDSN())
}
