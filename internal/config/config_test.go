package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"loanlocator/internal/auth"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "loanlocator.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Server.Addr != ":8080" || cfg.Server.ShutdownTimeout != 15*time.Second {
		t.Fatalf("unexpected server defaults %+v", cfg.Server)
	}
	if cfg.Storage.Driver != "sqlite" || cfg.Storage.SQLitePath != "loanlocator.db" {
		t.Fatalf("unexpected storage defaults %+v", cfg.Storage)
	}
	if cfg.Auth.PasswordHash != auth.DefaultPasswordHash || cfg.Auth.SessionTTL != 8*time.Hour {
		t.Fatalf("unexpected auth defaults %+v", cfg.Auth)
	}
	if cfg.BlobEnabled() {
		t.Fatalf("archive should be disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: "127.0.0.1:9000"
  read_timeout: 5s
storage:
  driver: memory
  seed_loans: data/loans.json
blob:
  driver: fs
logging:
  level: debug
  format: console
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || cfg.Server.ReadTimeout != 5*time.Second {
		t.Fatalf("unexpected server %+v", cfg.Server)
	}
	if cfg.Storage.Driver != "memory" || cfg.Storage.SeedLoans != "data/loans.json" {
		t.Fatalf("unexpected storage %+v", cfg.Storage)
	}
	if !cfg.BlobEnabled() || cfg.Blob.FSRoot != "./archives" {
		t.Fatalf("expected fs archive with default root, got %+v", cfg.Blob)
	}
	if opts := cfg.StorageOptions(); opts.Driver != "memory" {
		t.Fatalf("unexpected storage options %+v", opts)
	}
	if opts := cfg.BlobOptions(); opts.Driver != "fs" || opts.FSRoot != "./archives" {
		t.Fatalf("unexpected blob options %+v", opts)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LOANLOCATOR_STORAGE_DRIVER", "postgres")
	t.Setenv("LOANLOCATOR_POSTGRES_DSN", "postgres://db/loans")
	t.Setenv("LOANLOCATOR_SESSION_TTL", "30m")
	t.Setenv("LOANLOCATOR_BLOB_DRIVER", "s3")
	t.Setenv("LOANLOCATOR_BLOB_S3_BUCKET", "exports")
	t.Setenv("LOANLOCATOR_BLOB_S3_PATH_STYLE", "true")
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Storage.Driver != "postgres" || cfg.Storage.PostgresDSN != "postgres://db/loans" {
		t.Fatalf("env not applied: %+v", cfg.Storage)
	}
	if cfg.Auth.SessionTTL != 30*time.Minute {
		t.Fatalf("expected 30m ttl, got %s", cfg.Auth.SessionTTL)
	}
	if cfg.Blob.S3.Bucket != "exports" || !cfg.Blob.S3.PathStyle {
		t.Fatalf("unexpected s3 config %+v", cfg.Blob.S3)
	}
}

func TestInvalidConfig(t *testing.T) {
	cases := []struct {
		name string
		body string
		env  map[string]string
		want string
	}{
		{name: "storage driver", body: "storage:\n  driver: redis\n", want: "unknown storage driver"},
		{name: "blob driver", body: "blob:\n  driver: gcs\n", want: "unknown blob driver"},
		{name: "s3 bucket", body: "blob:\n  driver: s3\n", want: "bucket is required"},
		{name: "log format", body: "logging:\n  format: xml\n", want: "unknown logging format"},
		{name: "yaml", body: "server: [", want: "failed to parse"},
		{name: "env duration", env: map[string]string{"LOANLOCATOR_SESSION_TTL": "soon"}, want: "LOANLOCATOR_SESSION_TTL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig(writeConfig(t, tc.body))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected read error")
	}
}
