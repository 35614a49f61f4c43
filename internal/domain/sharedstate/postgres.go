package sharedstate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

const stateTable = "shared_state"

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const createStateTable = `CREATE TABLE IF NOT EXISTS shared_state (
	key        TEXT PRIMARY KEY,
	data       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresRepository keeps one row per document key.
type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type stateRow struct {
	Key  string `db:"key"`
	Data []byte `db:"data"`
}

func (r *PostgresRepository) Ensure(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createStateTable); err != nil {
		return fmt.Errorf("create %s: %w", stateTable, err)
	}
	for _, key := range Keys() {
		query, args, err := psql.Insert(stateTable).
			Columns("key", "data").
			Values(key, string(Default(key))).
			Suffix("ON CONFLICT (key) DO NOTHING").
			ToSql()
		if err != nil {
			return fmt.Errorf("build seed query: %w", err)
		}
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("seed %s: %w", key, err)
		}
	}
	return nil
}

func (r *PostgresRepository) Load(ctx context.Context) (Document, error) {
	query, args, err := psql.Select("key", "data").From(stateTable).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}
	var rows []stateRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	doc := make(Document, len(rows))
	for _, row := range rows {
		doc[row.Key] = json.RawMessage(row.Data)
	}
	return doc, nil
}

func (r *PostgresRepository) Save(ctx context.Context, key string, value json.RawMessage) error {
	query, args, err := psql.Insert(stateTable).
		Columns("key", "data", "updated_at").
		Values(key, string(value), squirrel.Expr("NOW()")).
		Suffix("ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
