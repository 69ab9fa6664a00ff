package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_FileDefaultsAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlBody := `
server:
  port: "9090"
  env: production
mongo:
  database: bell_test
storage:
  driver: s3
  s3_bucket: proofs
limits:
  reports_per_hour: 5
`
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("MONGO_DB", "bell_override")

	cfg := Load()

	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, "production", cfg.AppEnv)
	require.Equal(t, "bell_override", cfg.MongoDB)
	require.Equal(t, "s3", cfg.StorageDriver)
	require.Equal(t, "proofs", cfg.S3Bucket)
	require.Equal(t, 5, cfg.ReportRateLimit)
	require.Equal(t, 3, cfg.VerificationRateLimit)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	cfg := Load()

	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "cloudinary", cfg.StorageDriver)
	require.Equal(t, 24, cfg.JWTExpireHours)
}
