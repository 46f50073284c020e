package source

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/pcrm/legacy-migrate/internal/logging"
)

// connStrategy is one entry in the ordered list of connection attempts,
// from least to most restrictive SSL enforcement.
type connStrategy struct {
	name    string
	sslmode string
}

// Strategies are tried in order; the first successful connection wins.
// "require" does not validate the server certificate, which is the
// terminal fallback for legacy hosts with self-signed certs.
var connStrategies = []connStrategy{
	{"non-ssl", "disable"},
	{"ssl-preferred", "prefer"},
	{"ssl-enforced", "require"},
}

// Client is a connection to a legacy PostgreSQL database. Only one
// query is ever in flight at a time, so the pool is kept tiny.
type Client struct {
	db        *sql.DB
	maskedDSN string
	strategy  string
}

// strategiesFor returns the attempt list for the given parameters. An
// explicit sslmode pins the connection to that single mode; otherwise
// the full ladder is tried in order.
func strategiesFor(params ConnectionParams) []connStrategy {
	if params.SSLMode != "" {
		return []connStrategy{{"forced:" + params.SSLMode, params.SSLMode}}
	}
	return connStrategies
}

// Connect tries each connection strategy in order and adopts the first
// that succeeds. It fails only when every strategy fails, reporting each
// strategy's error. An explicit params.SSLMode skips the ladder and is
// the only mode tried. DSNs are masked before any logging.
func Connect(ctx context.Context, params ConnectionParams, maxConns int) (*Client, error) {
	if maxConns <= 0 {
		maxConns = 2
	}
	base := params.BaseDSN()

	var failures []string
	for _, strat := range strategiesFor(params) {
		dsn := withSSLMode(base, strat.sslmode)

		db, err := sql.Open("postgres", dsn)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", strat.name, err))
			continue
		}
		db.SetMaxOpenConns(maxConns)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(30 * time.Minute)

		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err != nil {
			db.Close()
			failures = append(failures, fmt.Sprintf("%s: %v", strat.name, err))
			continue
		}

		logging.Debug("connected to legacy database via %s strategy: %s", strat.name, MaskDSN(dsn))
		return &Client{db: db, maskedDSN: MaskDSN(dsn), strategy: strat.name}, nil
	}

	return nil, fmt.Errorf("all connection strategies failed: %s", strings.Join(failures, "; "))
}

// Close closes the connection pool.
func (c *Client) Close() error {
	return c.db.Close()
}

// MaskedDSN returns the adopted connection string with credentials masked.
func (c *Client) MaskedDSN() string {
	return c.maskedDSN
}

// Strategy returns the name of the connection strategy that succeeded.
func (c *Client) Strategy() string {
	return c.strategy
}
