package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Data.Source)
	assert.Equal(t, "zomato.csv", cfg.Data.Canonical)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "duplicate", cfg.Join.Policy)
	assert.Equal(t, 5, cfg.Cluster.K)
	assert.Equal(t, uint64(42), cfg.Cluster.Seed)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data:
  source: minio
  bucket: datasets
  endpoint: localhost:9000
  canonical: zomato.csv.zst
cluster:
  k: 8
  degenerate: fail
server:
  addr: ":9090"
  read_timeout: 3s
`), 0o600))

	t.Setenv("DINECLUSTER_CLUSTER__SEED", "7")
	t.Setenv("DINECLUSTER_SERVER__ADDR", ":7070")
	t.Setenv("DINECLUSTER_SERVER__CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DINECLUSTER_JOIN__POLICY", "strict")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "minio", cfg.Data.Source)
	assert.Equal(t, "datasets", cfg.Data.Bucket)
	assert.Equal(t, "zomato.csv.zst", cfg.Data.Canonical)
	assert.Equal(t, "clustering.csv", cfg.Data.Features)
	assert.Equal(t, 8, cfg.Cluster.K)
	assert.Equal(t, uint64(7), cfg.Cluster.Seed)
	assert.Equal(t, "fail", cfg.Cluster.Degenerate)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "strict", cfg.Join.Policy)
}

func TestLoad_PathFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("query:\n  top_n: 10\n"), 0o600))
	t.Setenv(PathEnvVar, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Query.TopN)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"k zero", func(c *Config) { c.Cluster.K = 0 }},
		{"bad source", func(c *Config) { c.Data.Source = "ftp" }},
		{"s3 without bucket", func(c *Config) { c.Data.Source = "s3" }},
		{"minio without endpoint", func(c *Config) { c.Data.Source = "minio"; c.Data.Bucket = "b" }},
		{"bad policy", func(c *Config) { c.Join.Policy = "first" }},
		{"bad degenerate", func(c *Config) { c.Cluster.Degenerate = "drop" }},
		{"max below default", func(c *Config) { c.Query.MaxTopN = 1 }},
		{"no timeout", func(c *Config) { c.Server.ReadTimeout = 0 }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"missing features", func(c *Config) { c.Data.Features = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}

	require.NoError(t, Default().Validate())
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "server.read_timeout", envKey("DINECLUSTER_SERVER__READ_TIMEOUT"))
	assert.Equal(t, "cluster.k", envKey("DINECLUSTER_CLUSTER__K"))
	assert.Equal(t, "", envKey(PathEnvVar))
}

func TestDataConfig_Resources(t *testing.T) {
	rc := DataConfig{IOLimitBytes: 10, MemoryLimitBytes: 20}.Resources()
	assert.Equal(t, int64(10), rc.IOLimitBytesPerSec)
	assert.Equal(t, int64(20), rc.MemoryLimitBytes)
}
