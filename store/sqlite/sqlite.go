// Package sqlite implements the scrycache store on a single SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	sclog "github.com/unkn0wn-root/scrycache/log"
	"github.com/unkn0wn-root/scrycache/store"
)

// schemaVersion is stamped into PRAGMA user_version. Any other value found
// at open time marks an incompatible on-disk layout.
const schemaVersion = 1

// metadataRowID pins the metadata table to a single row.
const metadataRowID = 1

type Options struct {
	Logger sclog.Logger // nil disables logging
}

// Store persists scrycache records in SQLite via modernc.org/sqlite.
type Store struct {
	db  *sql.DB
	log sclog.Logger
}

var _ store.Store = (*Store)(nil)

// Open opens (or creates) the store file at path and validates its schema.
// An incompatible layout is recovered destructively: all tables are dropped
// and recreated. That loses cached data only, never a source of truth.
func Open(path string, opts Options) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite: store path is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = sclog.Nop{}
	}

	// modernc.org/sqlite applies pragmas via _pragma=name(value) query
	// parameters, once per connection in the pool.
	dsn := filepath.Clean(path) +
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping %s: %w", path, err)
	}

	s := &Store{db: db, log: logger}
	if err := s.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

const createTablesSQL = `
CREATE TABLE IF NOT EXISTS cards (
	id      TEXT PRIMARY KEY,
	name    TEXT NOT NULL,
	mtgo_id INTEGER,
	payload BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cards_name ON cards(name);
CREATE INDEX IF NOT EXISTS idx_cards_mtgo_id ON cards(mtgo_id);

CREATE TABLE IF NOT EXISTS metadata (
	id             INTEGER PRIMARY KEY CHECK (id = 1),
	last_refresh   INTEGER NOT NULL,
	schema_version TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS url_cache (
	url        TEXT PRIMARY KEY,
	fetched_at INTEGER NOT NULL,
	payload    BLOB NOT NULL
);`

// ensureSchema verifies the on-disk layout and recovers destructively when
// it does not match. A fresh file (user_version 0, no tables) is initialized
// in place; anything else that fails validation is dropped and recreated.
func (s *Store) ensureSchema(ctx context.Context) error {
	var current int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("sqlite: read user_version: %w", err)
	}

	if current == schemaVersion || current == 0 {
		if err := s.createTables(ctx); err == nil {
			if err := s.probe(ctx); err == nil {
				if current == 0 {
					return s.stampVersion(ctx)
				}
				return nil
			}
		}
	}

	s.log.Warn("incompatible on-disk schema; dropping all tables to recover",
		sclog.Fields{"found_version": current, "want_version": schemaVersion})
	return s.recreate(ctx)
}

func (s *Store) createTables(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTablesSQL); err != nil {
		return fmt.Errorf("sqlite: create tables: %w", err)
	}
	return nil
}

// probe runs a no-op select against each table so column mismatches from an
// older layout surface as errors instead of corrupting later operations.
func (s *Store) probe(ctx context.Context) error {
	for _, q := range []string{
		`SELECT id, name, mtgo_id, payload FROM cards LIMIT 0`,
		`SELECT id, last_refresh, schema_version FROM metadata LIMIT 0`,
		`SELECT url, fetched_at, payload FROM url_cache LIMIT 0`,
	} {
		rows, err := s.db.QueryContext(ctx, q)
		if err != nil {
			return err
		}
		_ = rows.Close()
	}
	return nil
}

func (s *Store) recreate(ctx context.Context) error {
	drop := `
DROP TABLE IF EXISTS cards;
DROP TABLE IF EXISTS metadata;
DROP TABLE IF EXISTS url_cache;`
	if _, err := s.db.ExecContext(ctx, drop); err != nil {
		return fmt.Errorf("sqlite: drop tables: %w", err)
	}
	if err := s.createTables(ctx); err != nil {
		return err
	}
	return s.stampVersion(ctx)
}

func (s *Store) stampVersion(ctx context.Context) error {
	// PRAGMA does not support placeholders.
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("sqlite: set user_version: %w", err)
	}
	return nil
}

// withTx runs fn inside one transaction, committing on success and rolling
// back entirely on failure.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

func (s *Store) GetCard(ctx context.Context, id string) (store.CardRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return store.CardRecord{}, false, err
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, mtgo_id, payload FROM cards WHERE id = ?`, id)
	rec, err := scanCard(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return store.CardRecord{}, false, nil
	}
	if err != nil {
		return store.CardRecord{}, false, fmt.Errorf("sqlite: get card: %w", err)
	}
	return rec, true, nil
}

func (s *Store) FindCardsByName(ctx context.Context, name string) ([]store.CardRecord, error) {
	return s.findCards(ctx,
		`SELECT id, name, mtgo_id, payload FROM cards WHERE name = ?`, name)
}

func (s *Store) FindCardsByMTGOID(ctx context.Context, id int64) ([]store.CardRecord, error) {
	return s.findCards(ctx,
		`SELECT id, name, mtgo_id, payload FROM cards WHERE mtgo_id = ?`, id)
}

func (s *Store) findCards(ctx context.Context, query string, arg any) ([]store.CardRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("sqlite: find cards: %w", err)
	}
	defer rows.Close()

	var out []store.CardRecord
	for rows.Next() {
		rec, err := scanCard(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: find cards: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: find cards: %w", err)
	}
	return out, nil
}

func scanCard(scan func(dest ...any) error) (store.CardRecord, error) {
	var rec store.CardRecord
	var mtgo sql.NullInt64
	if err := scan(&rec.ID, &rec.Name, &mtgo, &rec.Payload); err != nil {
		return store.CardRecord{}, err
	}
	if mtgo.Valid {
		v := mtgo.Int64
		rec.MTGOID = &v
	}
	return rec, nil
}

func (s *Store) InsertCard(ctx context.Context, rec store.CardRecord) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cards (id, name, mtgo_id, payload) VALUES (?, ?, ?, ?)`,
			rec.ID, rec.Name, nullableMTGO(rec.MTGOID), rec.Payload); err != nil {
			return fmt.Errorf("sqlite: insert card %s: %w", rec.ID, err)
		}
		return nil
	})
}

func (s *Store) ClearCards(ctx context.Context) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM cards`); err != nil {
			return fmt.Errorf("sqlite: clear cards: %w", err)
		}
		return nil
	})
}

func (s *Store) ReplaceAllCards(ctx context.Context, refreshedAt int64, next func() (store.CardRecord, error)) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM cards`); err != nil {
			return fmt.Errorf("sqlite: clear cards: %w", err)
		}
		ins, err := tx.PrepareContext(ctx,
			`INSERT INTO cards (id, name, mtgo_id, payload) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("sqlite: prepare insert: %w", err)
		}
		defer ins.Close()

		for {
			rec, err := next()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return err
			}
			if _, err := ins.ExecContext(ctx,
				rec.ID, rec.Name, nullableMTGO(rec.MTGOID), rec.Payload); err != nil {
				return fmt.Errorf("sqlite: insert card %s: %w", rec.ID, err)
			}
		}

		if _, err := tx.ExecContext(ctx, `
INSERT INTO metadata (id, last_refresh, schema_version) VALUES (?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	last_refresh = excluded.last_refresh,
	schema_version = excluded.schema_version`,
			metadataRowID, refreshedAt, strconv.Itoa(schemaVersion)); err != nil {
			return fmt.Errorf("sqlite: update metadata: %w", err)
		}
		return nil
	})
}

func (s *Store) Metadata(ctx context.Context) (store.Metadata, error) {
	var meta store.Metadata
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT last_refresh, schema_version FROM metadata WHERE id = ?`, metadataRowID)
		err := row.Scan(&meta.LastRefresh, &meta.SchemaVersion)
		if errors.Is(err, sql.ErrNoRows) {
			meta = store.Metadata{LastRefresh: 0, SchemaVersion: strconv.Itoa(schemaVersion)}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO metadata (id, last_refresh, schema_version) VALUES (?, ?, ?)`,
				metadataRowID, meta.LastRefresh, meta.SchemaVersion); err != nil {
				return fmt.Errorf("sqlite: create metadata: %w", err)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("sqlite: get metadata: %w", err)
		}
		return nil
	})
	return meta, err
}

func (s *Store) SetLastRefresh(ctx context.Context, ts int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO metadata (id, last_refresh, schema_version) VALUES (?, ?, ?)
ON CONFLICT(id) DO UPDATE SET last_refresh = excluded.last_refresh`,
			metadataRowID, ts, strconv.Itoa(schemaVersion)); err != nil {
			return fmt.Errorf("sqlite: set last refresh: %w", err)
		}
		return nil
	})
}

func (s *Store) GetURLEntry(ctx context.Context, url string) (store.URLEntry, bool, error) {
	if err := ctx.Err(); err != nil {
		return store.URLEntry{}, false, err
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT url, fetched_at, payload FROM url_cache WHERE url = ?`, url)
	var e store.URLEntry
	err := row.Scan(&e.URL, &e.FetchedAt, &e.Payload)
	if errors.Is(err, sql.ErrNoRows) {
		return store.URLEntry{}, false, nil
	}
	if err != nil {
		return store.URLEntry{}, false, fmt.Errorf("sqlite: get url entry: %w", err)
	}
	return e, true, nil
}

func (s *Store) PutURLEntry(ctx context.Context, entry store.URLEntry) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO url_cache (url, fetched_at, payload) VALUES (?, ?, ?)
ON CONFLICT(url) DO UPDATE SET
	fetched_at = excluded.fetched_at,
	payload = excluded.payload`,
			entry.URL, entry.FetchedAt, entry.Payload); err != nil {
			return fmt.Errorf("sqlite: put url entry: %w", err)
		}
		return nil
	})
}

func nullableMTGO(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
