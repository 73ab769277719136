// Package config loads and validates ETL configuration via Viper.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config captures all pipeline configuration knobs loaded via Viper.
// Keys are flat to match the shape of the legacy config files the
// export tooling already writes.
type Config struct {
	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port"`
	PostgresDatabase string `mapstructure:"postgres_database"`

	BaseExportPath        string `mapstructure:"base_export_path"`
	ArchivePath           string `mapstructure:"archive_path"`
	ArchiveProcessedFiles bool   `mapstructure:"archive_processed_files"`

	DBCredentialName string `mapstructure:"db_credential_name"`

	Logging LoggingConfig `mapstructure:"logging"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SEOETL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.ArchivePath == "" && cfg.BaseExportPath != "" {
		cfg.ArchivePath = defaultArchivePath(cfg.BaseExportPath)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_database", "seo_audits")
	v.SetDefault("archive_processed_files", true)
	v.SetDefault("db_credential_name", "Postgres_ETL_User")
	v.SetDefault("logging.development", true)
}

// defaultArchivePath mirrors the export tree as a sibling directory, so
// exports/2024_01_15/example.com lands in exports_archive/2024_01_15/example.com.
func defaultArchivePath(base string) string {
	return filepath.Join(filepath.Dir(filepath.Clean(base)), "exports_archive")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.PostgresHost == "" {
		return fmt.Errorf("postgres_host must be set")
	}
	if c.PostgresPort <= 0 || c.PostgresPort > 65535 {
		return fmt.Errorf("postgres_port must be in 1..65535")
	}
	if c.PostgresDatabase == "" {
		return fmt.Errorf("postgres_database must be set")
	}
	if c.BaseExportPath == "" {
		return fmt.Errorf("base_export_path must be set")
	}
	if c.ArchiveProcessedFiles && c.ArchivePath == "" {
		return fmt.Errorf("archive_path must be set when archive_processed_files is enabled")
	}
	return nil
}
