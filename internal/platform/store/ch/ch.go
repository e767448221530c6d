// Package ch provides a clickhouse client over the native protocol
package ch

import (
	"context"
	"errors"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// Config configures clickhouse client
type Config struct {
	URL string

	// Role tags client info, e.g. "sweep" or "api"
	Role string
}

// Rows is the minimal result set iteration for ch
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
	Columns() []string
}

// CH wraps a clickhouse native connection
// the conn dials lazily; the first query or ping touches the network
type CH struct {
	Conn driver.Conn
}

// Open parses the DSN and builds a connection
func Open(_ context.Context, cfg Config) (*CH, error) {
	opts, err := clickhouse.ParseDSN(cfg.URL)
	if err != nil {
		return nil, err
	}
	opts.ClientInfo = BuildClientInfo(cfg.Role, "")
	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, err
	}
	return &CH{Conn: conn}, nil
}

// Insert appends rows to table via a prepared batch
// rows must all match the table column order
func (c *CH) Insert(ctx context.Context, table string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	if c == nil || c.Conn == nil {
		return errors.New("ch: nil connection")
	}
	batch, err := c.Conn.PrepareBatch(ctx, "INSERT INTO "+table)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if err := batch.Append(r...); err != nil {
			return err
		}
	}
	return batch.Send()
}

// Query runs a query and returns ch.Rows
func (c *CH) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	if c == nil || c.Conn == nil {
		return nil, errors.New("ch: nil connection")
	}
	return c.Conn.Query(ctx, sql, args...)
}

// Ping verifies connectivity
func (c *CH) Ping(ctx context.Context) error {
	if c == nil || c.Conn == nil {
		return errors.New("ch: nil connection")
	}
	return c.Conn.Ping(ctx)
}

// Close closes the connection pool
func (c *CH) Close() error {
	if c == nil || c.Conn == nil {
		return nil
	}
	return c.Conn.Close()
}
