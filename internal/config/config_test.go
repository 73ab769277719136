package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
postgres_host: db.internal
postgres_port: 5433
postgres_database: audits
base_export_path: /srv/exports
archive_path: /srv/exports_archive
archive_processed_files: false
db_credential_name: Audits_ETL
logging:
  development: false
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.PostgresHost != "db.internal" || cfg.PostgresPort != 5433 {
		t.Fatalf("expected postgres overrides to apply, got %+v", cfg)
	}
	if cfg.PostgresDatabase != "audits" {
		t.Fatalf("expected database audits, got %q", cfg.PostgresDatabase)
	}
	if cfg.BaseExportPath != "/srv/exports" {
		t.Fatalf("expected export path override, got %q", cfg.BaseExportPath)
	}
	if cfg.ArchiveProcessedFiles {
		t.Fatal("expected archiving to be disabled")
	}
	if cfg.DBCredentialName != "Audits_ETL" {
		t.Fatalf("expected credential name override, got %q", cfg.DBCredentialName)
	}
	if cfg.Logging.Development {
		t.Fatal("expected production logging")
	}
}

func TestLoadDerivesArchivePath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
base_export_path: /data/seo/exports
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := filepath.Join("/data/seo", "exports_archive")
	if cfg.ArchivePath != want {
		t.Fatalf("expected derived archive path %q, got %q", want, cfg.ArchivePath)
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		PostgresHost:     "localhost",
		PostgresPort:     5432,
		PostgresDatabase: "seo_audits",
		BaseExportPath:   "/srv/exports",
		ArchivePath:      "/srv/exports_archive",
	}

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "missing host",
			cfg: func() Config {
				c := base
				c.PostgresHost = ""
				return c
			}(),
			want: "postgres_host",
		},
		{
			name: "invalid port",
			cfg: func() Config {
				c := base
				c.PostgresPort = 0
				return c
			}(),
			want: "postgres_port",
		},
		{
			name: "missing database",
			cfg: func() Config {
				c := base
				c.PostgresDatabase = ""
				return c
			}(),
			want: "postgres_database",
		},
		{
			name: "missing export path",
			cfg: func() Config {
				c := base
				c.BaseExportPath = ""
				return c
			}(),
			want: "base_export_path",
		},
		{
			name: "archiving without archive path",
			cfg: func() Config {
				c := base
				c.ArchiveProcessedFiles = true
				c.ArchivePath = ""
				return c
			}(),
			want: "archive_path",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
