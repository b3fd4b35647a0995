package clickhouse

import (
	"context"
	"fmt"
	"time"

	clickhouse_go "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/flexprice/flexprice/internal/config"
	"github.com/flexprice/flexprice/internal/logger"
)

// ClickHouseStore is the event-store connection: raw usage events and
// their processed/aggregated counterparts live here, never in Postgres.
type ClickHouseStore struct {
	conn   driver.Conn
	config *config.Configuration
	logger *logger.Logger
}

func NewClickHouseStore(config *config.Configuration, logger *logger.Logger) (*ClickHouseStore, error) {
	options := config.ClickHouse.GetClientOptions()
	conn, err := clickhouse_go.Open(options)
	if err != nil {
		return nil, fmt.Errorf("init clickhouse client: %w", err)
	}

	return &ClickHouseStore{
		conn:   conn,
		config: config,
		logger: logger,
	}, nil
}

func (s *ClickHouseStore) GetConn() driver.Conn {
	return s.conn
}

func (s *ClickHouseStore) Close() error {
	return s.conn.Close()
}

func (s *ClickHouseStore) Query(ctx context.Context, query string, args ...interface{}) (driver.Rows, error) {
	start := time.Now()
	rows, err := s.conn.Query(ctx, query, args...)
	s.logger.Debugw("clickhouse query", "query", query, "duration_ms", time.Since(start).Milliseconds(), "error", err)
	return rows, err
}

func (s *ClickHouseStore) QueryRow(ctx context.Context, query string, args ...interface{}) driver.Row {
	start := time.Now()
	row := s.conn.QueryRow(ctx, query, args...)
	s.logger.Debugw("clickhouse query_row", "query", query, "duration_ms", time.Since(start).Milliseconds())
	return row
}

func (s *ClickHouseStore) Exec(ctx context.Context, query string, args ...interface{}) error {
	start := time.Now()
	err := s.conn.Exec(ctx, query, args...)
	s.logger.Debugw("clickhouse exec", "query", query, "duration_ms", time.Since(start).Milliseconds(), "error", err)
	return err
}
