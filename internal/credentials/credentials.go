// Package credentials resolves database connection parameters from the
// environment. User and password never live in the config file; they come
// from environment variables, optionally seeded from a .env file.
package credentials

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Credentials holds everything needed to open a Postgres connection.
type Credentials struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// Resolver looks up database credentials.
type Resolver interface {
	Resolve(host string, port int, database, credentialName string) (Credentials, error)
}

// EnvResolver reads POSTGRES_USER / POSTGRES_PASSWORD, falling back to
// <CREDENTIAL_NAME>_USER / <CREDENTIAL_NAME>_PASSWORD for installs that
// keep several credential sets side by side. An EnvFile, when set, is
// loaded first without overriding variables already present.
type EnvResolver struct {
	EnvFile string
}

// Resolve returns connection parameters or an error when no user/password
// pair can be found. Unresolved credentials are a fatal precondition for
// the pipeline, so callers abort before any database work.
func (r EnvResolver) Resolve(host string, port int, database, credentialName string) (Credentials, error) {
	if r.EnvFile != "" {
		if err := godotenv.Load(r.EnvFile); err != nil && !os.IsNotExist(err) {
			return Credentials{}, fmt.Errorf("load env file %s: %w", r.EnvFile, err)
		}
	} else if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Credentials{}, fmt.Errorf("load .env: %w", err)
	}

	user := os.Getenv("POSTGRES_USER")
	password := os.Getenv("POSTGRES_PASSWORD")

	if (user == "" || password == "") && credentialName != "" {
		prefix := envPrefix(credentialName)
		if user == "" {
			user = os.Getenv(prefix + "_USER")
		}
		if password == "" {
			password = os.Getenv(prefix + "_PASSWORD")
		}
	}

	if user == "" || password == "" {
		return Credentials{}, fmt.Errorf(
			"database credentials not found: set POSTGRES_USER and POSTGRES_PASSWORD (or %s_USER / %s_PASSWORD)",
			envPrefix(credentialName), envPrefix(credentialName))
	}

	return Credentials{
		Host:     host,
		Port:     port,
		Database: database,
		User:     user,
		Password: password,
	}, nil
}

// envPrefix turns a credential name like "Postgres_ETL_User" into the
// environment variable prefix "POSTGRES_ETL_USER".
func envPrefix(name string) string {
	if name == "" {
		return "POSTGRES"
	}
	upper := strings.ToUpper(name)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, upper)
}

// DSN renders the credentials as a pgx connection URL with proper escaping.
func (c Credentials) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.Database,
	}
	return u.String()
}
