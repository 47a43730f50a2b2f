package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	apperrors "netmobcli/internal/errors"
	"netmobcli/internal/spatial"
)

const schema = `
CREATE TABLE IF NOT EXISTS correspondence (
	city TEXT NOT NULL,
	tile BIGINT NOT NULL,
	iris TEXT NOT NULL,
	PRIMARY KEY (city, tile)
)`

// SQLStore keeps correspondences in the correspondence table.
type SQLStore struct {
	db *sqlx.DB
}

// OpenSQL connects to the database and creates the table if needed.
// driver is "sqlite3" or "postgres".
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to connect to %s", driver), err)
	}
	if driver == "sqlite3" {
		// one connection keeps ":memory:" databases shared and serializes writers
		db.SetMaxOpenConns(1)
	}
	s := &SQLStore{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return apperrors.NewStorageError("failed to create correspondence table", err)
	}
	return nil
}

// Load returns the correspondence of a region.
func (s *SQLStore) Load(ctx context.Context, region string) (*spatial.Correspondence, error) {
	var pairs []spatial.Pair
	query := s.db.Rebind(`SELECT tile, iris FROM correspondence WHERE city = ? ORDER BY tile`)
	if err := s.db.SelectContext(ctx, &pairs, query, region); err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to query correspondence for %s", region), err)
	}
	if len(pairs) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("correspondence for %s", region))
	}
	return spatial.NewCorrespondence(region, pairs)
}

// LoadAll returns every stored region sorted by name.
func (s *SQLStore) LoadAll(ctx context.Context) ([]*spatial.Correspondence, error) {
	var regions []string
	if err := s.db.SelectContext(ctx, &regions, `SELECT DISTINCT city FROM correspondence ORDER BY city`); err != nil {
		return nil, apperrors.NewStorageError("failed to list regions", err)
	}
	out := make([]*spatial.Correspondence, 0, len(regions))
	for _, r := range regions {
		c, err := s.Load(ctx, r)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Save replaces the rows of c's region in one transaction.
func (s *SQLStore) Save(ctx context.Context, c *spatial.Correspondence) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.NewStorageError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM correspondence WHERE city = ?`), c.Region); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to clear correspondence for %s", c.Region), err)
	}

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(`INSERT INTO correspondence (city, tile, iris) VALUES (?, ?, ?)`))
	if err != nil {
		return apperrors.NewStorageError("failed to prepare insert", err)
	}
	defer stmt.Close()

	for _, p := range c.Pairs() {
		if _, err := stmt.ExecContext(ctx, c.Region, p.Tile, p.Zone); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("failed to insert tile %d of %s", p.Tile, c.Region), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewStorageError("failed to commit correspondence", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
