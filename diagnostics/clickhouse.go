package diagnostics

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// ClickHouseOptions locates a ClickHouse server.
type ClickHouseOptions struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
}

type clickhouseBackend struct {
	conn clickhouse.Conn
}

// NewClickHouseRecorder creates a Recorder writing into a ClickHouse server
// over the native protocol.
func NewClickHouseRecorder(
	o ClickHouseOptions,
	opts ...RecorderOption,
) (*Recorder, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", o.Host, o.Port)},
		Auth: clickhouse.Auth{
			Database: o.Database,
			Username: o.Username,
			Password: o.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:      time.Second * 30,
		MaxOpenConns:     5,
		MaxIdleConns:     5,
		ConnMaxLifetime:  time.Hour,
		ConnOpenStrategy: clickhouse.ConnOpenInOrder,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	r, err := newRecorder(&clickhouseBackend{conn: conn}, opts...)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return r, nil
}

func (b *clickhouseBackend) createTable(ctx context.Context) error {
	err := b.conn.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			Session String,
			Seq Int64,
			Time Int64,
			Kind LowCardinality(String),
			Type String,
			Property String,
			Message String
		) ENGINE = MergeTree()
		ORDER BY (Session, Seq)
	`, TableName))
	if err != nil {
		return fmt.Errorf("failed to create table %s: %w", TableName, err)
	}

	return nil
}

func (b *clickhouseBackend) insert(ctx context.Context, entries []Entry) error {
	batch, err := b.conn.PrepareBatch(ctx, "INSERT INTO "+TableName)
	if err != nil {
		return fmt.Errorf("failed to prepare batch for %s: %w", TableName, err)
	}

	for _, e := range entries {
		err = batch.Append(
			e.Session, e.Seq, e.Time, e.Kind, e.Type, e.Property, e.Message)
		if err != nil {
			return fmt.Errorf("failed to append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	return nil
}

func (b *clickhouseBackend) close() error {
	if err := b.conn.Close(); err != nil {
		return fmt.Errorf("failed to close ClickHouse connection: %w", err)
	}

	return nil
}
