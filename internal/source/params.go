// Package source connects to an arbitrary legacy PostgreSQL endpoint
// and introspects its schema and data for migration.
package source

import (
	"fmt"
	"net/url"
	"strings"
)

// ConnectionParams describes a legacy database endpoint, either as a
// full connection string or as discrete fields.
type ConnectionParams struct {
	ConnString string

	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// BaseDSN returns the connection string, building one from discrete
// fields when no full string was supplied.
func (p ConnectionParams) BaseDSN() string {
	if p.ConnString != "" {
		return p.ConnString
	}
	port := p.Port
	if port == 0 {
		port = 5432
	}
	sslmode := p.SSLMode
	if sslmode == "" {
		sslmode = "prefer"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(p.User), url.QueryEscape(p.Password), p.Host, port, p.Database, sslmode)
}

// withSSLMode returns dsn with its sslmode forced to mode. Both URL-style
// and keyword/value connection strings are handled.
func withSSLMode(dsn, mode string) string {
	if strings.Contains(dsn, "://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return dsn
		}
		q := u.Query()
		q.Set("sslmode", mode)
		u.RawQuery = q.Encode()
		return u.String()
	}

	// keyword/value form: drop any existing sslmode token, then append
	fields := strings.Fields(dsn)
	kept := fields[:0]
	for _, f := range fields {
		if !strings.HasPrefix(f, "sslmode=") {
			kept = append(kept, f)
		}
	}
	return strings.Join(append(kept, "sslmode="+mode), " ")
}

// MaskDSN masks credentials between :// and @ so connection strings can
// be logged. The username is kept for diagnosis, the password never is.
func MaskDSN(dsn string) string {
	start := strings.Index(dsn, "://")
	if start < 0 {
		return maskKeywordDSN(dsn)
	}
	at := strings.LastIndex(dsn, "@")
	if at < start {
		return dsn
	}
	creds := dsn[start+3 : at]
	if colon := strings.Index(creds, ":"); colon >= 0 {
		creds = creds[:colon] + ":***"
	} else if creds != "" {
		creds += ":***"
	}
	return dsn[:start+3] + creds + dsn[at:]
}

func maskKeywordDSN(dsn string) string {
	fields := strings.Fields(dsn)
	for i, f := range fields {
		if strings.HasPrefix(f, "password=") {
			fields[i] = "password=***"
		}
	}
	return strings.Join(fields, " ")
}
