package storage

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ferdiebergado/hbnb/internal/model"
	"github.com/ferdiebergado/hbnb/internal/platform/db"
)

// PostgresBackend stores every object as a jsonb row of the objects table.
type PostgresBackend struct {
	db    *sql.DB
	txMgr db.TxManager
}

var _ Backend = &PostgresBackend{}

func NewPostgresBackend(conn *sql.DB, txMgr db.TxManager) *PostgresBackend {
	return &PostgresBackend{db: conn, txMgr: txMgr}
}

const (
	QueryObjectsCreateTable = `
CREATE TABLE IF NOT EXISTS objects (
    key        TEXT PRIMARY KEY,
    class      TEXT NOT NULL,
    id         TEXT NOT NULL,
    data       JSONB NOT NULL,
    updated_at TIMESTAMPTZ
)
`
	QueryObjectsAddUpdatedAt = "ALTER TABLE objects ADD COLUMN IF NOT EXISTS updated_at TIMESTAMPTZ"
)

// Migrate creates the objects table if it does not exist and adds columns
// missing from tables created by earlier versions.
func (b *PostgresBackend) Migrate(ctx context.Context) error {
	if _, err := b.db.ExecContext(ctx, QueryObjectsCreateTable); err != nil {
		return fmt.Errorf("create objects table: %w", err)
	}
	if _, err := b.db.ExecContext(ctx, QueryObjectsAddUpdatedAt); err != nil {
		return fmt.Errorf("add objects.updated_at: %w", err)
	}
	return nil
}

const (
	QueryObjectsDeleteAll = "DELETE FROM objects"
	QueryObjectsInsert    = `
INSERT INTO objects (key, class, id, data, updated_at)
VALUES ($1, $2, $3, $4::jsonb, $5)
`
)

// Write replaces the table content with objects in a single transaction.
func (b *PostgresBackend) Write(ctx context.Context, objects Objects) error {
	return b.txMgr.RunInTx(ctx, func(txCtx context.Context) error {
		exec := b.executor(txCtx)

		if _, err := exec.ExecContext(txCtx, QueryObjectsDeleteAll); err != nil {
			return fmt.Errorf("%w: clear objects: %v", ErrWriteFailed, err)
		}

		for key, fields := range objects {
			row, err := newObjectRow(key, fields)
			if err != nil {
				return err
			}

			if _, err := exec.ExecContext(txCtx, QueryObjectsInsert,
				row.key, row.class, row.id, row.data, row.updatedAt); err != nil {
				return fmt.Errorf("%w: insert %s: %v", ErrWriteFailed, key, err)
			}
		}
		return nil
	})
}

// objectRow holds the column values of one objects row.
type objectRow struct {
	key       string
	class     string
	id        string
	data      string
	updatedAt time.Time
}

func newObjectRow(key string, fields map[string]any) (objectRow, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return objectRow{}, fmt.Errorf("%w: marshal %s: %v", ErrWriteFailed, key, err)
	}

	raw, _ := fields[model.KeyUpdatedAt].(string)
	updatedAt, err := model.ParseTime(raw)
	if err != nil {
		return objectRow{}, fmt.Errorf("%w: %s: %v", ErrWriteFailed, key, err)
	}

	row := objectRow{
		key:       key,
		data:      string(data),
		updatedAt: updatedAt,
	}
	row.class, _ = fields[model.KeyClass].(string)
	row.id, _ = fields[model.KeyID].(string)
	return row, nil
}

const QueryObjectsList = "SELECT key, data FROM objects"

func (b *PostgresBackend) Read(ctx context.Context) (Objects, error) {
	rows, err := b.executor(ctx).QueryContext(ctx, QueryObjectsList)
	if err != nil {
		return nil, fmt.Errorf("%w: list objects: %v", ErrReadFailed, err)
	}
	defer rows.Close()

	objects := make(Objects)
	for rows.Next() {
		var (
			key  string
			data []byte
		)
		if err := rows.Scan(&key, &data); err != nil {
			return nil, fmt.Errorf("%w: scan row: %v", ErrReadFailed, err)
		}

		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()

		var fields map[string]any
		if err := dec.Decode(&fields); err != nil {
			return nil, fmt.Errorf("%w: decode %s: %v", ErrReadFailed, key, err)
		}
		objects[key] = fields
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate over object rows: %v", ErrReadFailed, err)
	}

	return objects, nil
}

func (b *PostgresBackend) executor(ctx context.Context) db.Executor {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return b.db
}
