package store

import (
	"context"
	"fmt"

	"netmobcli/internal/config"
	apperrors "netmobcli/internal/errors"
	"netmobcli/internal/files"
	"netmobcli/internal/spatial"
)

// Store is a correspondence store that can also enumerate its regions.
type Store interface {
	spatial.Store
	LoadAll(ctx context.Context) ([]*spatial.Correspondence, error)
	Close() error
}

var (
	_ Store = (*CSVStore)(nil)
	_ Store = (*SQLStore)(nil)
)

// Close is a no-op; the file is only open while reading.
func (s *CSVStore) Close() error {
	return nil
}

// Open builds the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig, paths *config.Paths, manager *files.Manager) (Store, error) {
	switch cfg.Driver {
	case "", "csv":
		return NewCSVStore(paths.MatchingFile, manager), nil
	case "sqlite3", "postgres":
		return OpenSQL(ctx, cfg.Driver, cfg.DSN)
	}
	return nil, apperrors.NewConfigError(fmt.Sprintf("unknown store driver %q", cfg.Driver), nil)
}
