package reviewqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rodeoai/ingest/internal/models"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresQueue persists review entries so they survive gateway restarts.
// The zero-based public id is derived from an identity column, keeping
// listing order identical to the in-memory backend.
type PostgresQueue struct {
	pool *pgxpool.Pool
}

func NewPostgresQueue(ctx context.Context, connString string) (*PostgresQueue, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	config.MaxConns = 10

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresQueue{pool: pool}, nil
}

func (q *PostgresQueue) Add(ctx context.Context, filename, reason, contentHash string, assessment models.Assessment) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	payload, err := json.Marshal(assessment)
	if err != nil {
		return 0, fmt.Errorf("marshal assessment: %w", err)
	}

	query, args, err := psql.
		Insert("review_entries").
		Columns("filename", "content_hash", "reason", "assessment", "created_at").
		Values(filename, contentHash, reason, payload, time.Now().UTC()).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}

	var id int64
	if err := q.pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert review entry: %w", err)
	}

	// The identity column starts at 1; the public id is zero-based.
	return int(id - 1), nil
}

func (q *PostgresQueue) List(ctx context.Context) ([]models.ReviewEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query, args, err := psql.
		Select("id", "filename", "content_hash", "reason", "assessment", "created_at").
		From("review_entries").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := q.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list review entries: %w", err)
	}
	defer rows.Close()

	var entries []models.ReviewEntry
	for rows.Next() {
		var (
			id      int64
			entry   models.ReviewEntry
			payload []byte
		)
		if err := rows.Scan(&id, &entry.Filename, &entry.ContentHash, &entry.Reason, &payload, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review entry: %w", err)
		}
		if err := json.Unmarshal(payload, &entry.Assessment); err != nil {
			return nil, fmt.Errorf("unmarshal assessment: %w", err)
		}
		entry.ID = int(id - 1)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (q *PostgresQueue) Len(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query, args, err := psql.Select("COUNT(*)").From("review_entries").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var count int
	if err := q.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count review entries: %w", err)
	}
	return count, nil
}

func (q *PostgresQueue) Close() error {
	q.pool.Close()
	return nil
}
