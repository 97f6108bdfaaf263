package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jmgilman/go/storage/core"
	"github.com/jmgilman/go/storage/errors"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)

	assert.Equal(t, AdapterMemory, cfg.Adapter)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestParse_ExpandsEnvironment(t *testing.T) {
	t.Setenv("STORAGE_TEST_SECRET", "s3cr3t")
	t.Setenv("STORAGE_TEST_BUCKET", "media")

	cfg, err := Parse([]byte(`
adapter: minio
prefix: tenant
minio:
  endpoint: localhost:9000
  bucket: ${STORAGE_TEST_BUCKET}
  access_key: admin
  secret_key: ${STORAGE_TEST_SECRET}
  use_ssl: true
  max_concurrency: 4
`))
	require.NoError(t, err)

	assert.Equal(t, "media", cfg.MinIO.Bucket)
	assert.Equal(t, "s3cr3t", cfg.MinIO.SecretKey)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, 4, cfg.MinIO.MaxConcurrency)
	assert.Equal(t, "tenant", cfg.Prefix)
}

func TestParse_S3(t *testing.T) {
	cfg, err := Parse([]byte(`
adapter: s3
logging:
  level: debug
  format: console
metrics:
  enabled: true
s3:
  endpoint: http://localhost:9000
  region: eu-west-1
  use_path_style: true
  bucket: assets
  page_size: 250
  acl: true
`))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000", cfg.S3.Endpoint)
	assert.Equal(t, "eu-west-1", cfg.S3.Region)
	assert.True(t, cfg.S3.UsePathStyle)
	assert.Equal(t, "assets", cfg.S3.Bucket)
	assert.Equal(t, int32(250), cfg.S3.PageSize)
	assert.True(t, cfg.S3.ACL)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "unknown key", yaml: "adapter: memory\nbukket: x\n"},
		{name: "malformed", yaml: "adapter: [memory\n"},
		{name: "unknown adapter", yaml: "adapter: ftp\n"},
		{name: "local without root", yaml: "adapter: local\n"},
		{name: "minio without bucket", yaml: "adapter: minio\nminio:\n  endpoint: localhost:9000\n"},
		{name: "minio without endpoint", yaml: "adapter: minio\nminio:\n  bucket: b\n"},
		{name: "s3 without bucket", yaml: "adapter: s3\n"},
		{name: "empty adapter", yaml: "adapter: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "storage.yaml")
	require.NoError(t, os.WriteFile(path, []byte("adapter: local\nlocal:\n  root: "+dir+"\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, AdapterLocal, cfg.Adapter)
	assert.Equal(t, dir, cfg.Local.Root)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
}

func TestOpen_Memory(t *testing.T) {
	ctx := context.Background()
	cfg := Default()
	cfg.Prefix = "tenant"

	a, logger, err := Open(ctx, cfg, WithLogger(zap.NewNop()))
	require.NoError(t, err)
	require.NotNil(t, logger)

	assert.Equal(t, core.KindMemory, a.Kind())
	assert.Equal(t, "tenant/", a.PathPrefix())

	_, err = a.Write(ctx, "a.txt", []byte("x"), core.Options{})
	require.NoError(t, err)
	assert.True(t, a.Has(ctx, "a.txt"))
}

func TestOpen_Local(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	cfg := Default()
	cfg.Adapter = AdapterLocal
	cfg.Local.Root = root
	cfg.Prefix = "site"

	a, _, err := Open(ctx, cfg, WithLogger(zap.NewNop()))
	require.NoError(t, err)
	assert.Equal(t, core.KindLocal, a.Kind())

	_, err = a.Write(ctx, "index.html", []byte("<html>"), core.Options{})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(root, "site", "index.html"))
	assert.NoError(t, err)
}

func TestOpen_Remote(t *testing.T) {
	ctx := context.Background()

	minioCfg := Default()
	minioCfg.Adapter = AdapterMinIO
	minioCfg.Prefix = "fallback"
	minioCfg.MinIO.Endpoint = "localhost:9000"
	minioCfg.MinIO.Bucket = "media"
	minioCfg.MinIO.AccessKey = "admin"
	minioCfg.MinIO.SecretKey = "secret"
	minioCfg.MinIO.Prefix = "own"

	a, _, err := Open(ctx, minioCfg, WithLogger(zap.NewNop()))
	require.NoError(t, err)
	assert.Equal(t, core.KindRemote, a.Kind())
	assert.Equal(t, "own/", a.PathPrefix())

	s3Cfg := Default()
	s3Cfg.Adapter = AdapterS3
	s3Cfg.Prefix = "uploads"
	s3Cfg.S3.Bucket = "assets"
	s3Cfg.S3.Endpoint = "http://localhost:9000"
	s3Cfg.S3.AccessKey = "admin"
	s3Cfg.S3.SecretKey = "secret"
	s3Cfg.S3.UsePathStyle = true

	a, _, err = Open(ctx, s3Cfg, WithLogger(zap.NewNop()))
	require.NoError(t, err)
	assert.Equal(t, core.KindRemote, a.Kind())
	assert.Equal(t, "uploads/", a.PathPrefix())

	s3Cfg.S3.Prefix = "bucket-own"
	a, _, err = Open(ctx, s3Cfg, WithLogger(zap.NewNop()))
	require.NoError(t, err)
	assert.Equal(t, "bucket-own/", a.PathPrefix())
}

func TestOpen_InvalidConfig(t *testing.T) {
	_, _, err := Open(context.Background(), Config{Adapter: "ftp"})
	assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))

	cfg := Default()
	cfg.Adapter = AdapterMinIO
	cfg.MinIO.Endpoint = "localhost:9000"
	cfg.MinIO.Bucket = "media"
	_, _, err = Open(context.Background(), cfg, WithLogger(zap.NewNop()))
	assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err), "missing credentials")
}

func TestOpen_Metrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()

	cfg := Default()
	cfg.Metrics.Enabled = true

	a, _, err := Open(ctx, cfg, WithLogger(zap.NewNop()), WithRegisterer(reg))
	require.NoError(t, err)

	_, err = a.Write(ctx, "counted.txt", []byte("x"), core.Options{})
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "storage_operations_total" {
			found = true
			require.NotEmpty(t, f.GetMetric())
		}
	}
	assert.True(t, found, "storage_operations_total not registered")
}

func TestOpen_MetricsDefaultRegistryTwice(t *testing.T) {
	ctx := context.Background()
	cfg := Default()
	cfg.Metrics.Enabled = true

	for i := 0; i < 2; i++ {
		var (
			a   core.Adapter
			err error
		)
		require.NotPanics(t, func() {
			a, _, err = Open(ctx, cfg, WithLogger(zap.NewNop()))
		}, "open %d", i+1)
		require.NoError(t, err)

		_, err = a.Write(ctx, "twice.txt", []byte("x"), core.Options{})
		require.NoError(t, err)
	}
}

func TestOpen_LogsAdapter(t *testing.T) {
	obs, logs := observer.New(zapcore.InfoLevel)

	_, logger, err := Open(context.Background(), Default(), WithLogger(zap.New(obs)))
	require.NoError(t, err)
	require.NotNil(t, logger)

	entries := logs.FilterMessage("storage adapter opened").All()
	require.Len(t, entries, 1)
	assert.Equal(t, AdapterMemory, entries[0].ContextMap()["adapter"])
}
