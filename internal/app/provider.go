package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ferdiebergado/hbnb/internal/config"
	"github.com/ferdiebergado/hbnb/internal/platform/db"
	"github.com/ferdiebergado/hbnb/internal/storage"
)

var ErrUnknownDriver = errors.New("app: unknown storage driver")

// Provider holds the storage dependencies selected by the config.
type Provider struct {
	DB      *sql.DB
	Backend storage.Backend
	Storage *storage.Engine
}

func NewProvider(ctx context.Context, opts *config.Options) (*Provider, error) {
	if opts == nil || opts.Storage == nil {
		return nil, errors.New("storage options should not be nil")
	}

	p := &Provider{}

	switch opts.Storage.Driver {
	case config.DriverFile:
		p.Backend = storage.NewFileBackend(opts.Storage.File)
		slog.Info("Using file storage.", "file", opts.Storage.File)
	case config.DriverPostgres:
		conn, err := db.Connect(ctx, opts.DB)
		if err != nil {
			return nil, err
		}

		backend := storage.NewPostgresBackend(conn, db.NewSQLTxManager(conn))
		if err := backend.Migrate(ctx); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("migrate objects table: %w", err)
		}

		p.DB = conn
		p.Backend = backend
		slog.Info("Using postgres storage.")
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Storage.Driver)
	}

	p.Storage = storage.New(p.Backend)
	return p, nil
}

func (p *Provider) Close() error {
	if p.DB == nil {
		return nil
	}
	return p.DB.Close()
}
