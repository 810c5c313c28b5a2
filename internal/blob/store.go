package blob

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	_ "modernc.org/sqlite"
)

// Object is one stored media payload.
type Object struct {
	MIME  string
	Bytes []byte
}

// Store is a durable id→Object store backed by a single SQLite table.
// The connection is opened lazily on first use and shared for the life
// of the Store; sync.Once keeps schema init from racing when the first
// callers arrive concurrently.
type Store struct {
	dsn string
	log *slog.Logger

	once sync.Once
	db   *sql.DB
	err  error
}

func NewStore(dsn string, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{dsn: dsn, log: log}
}

func (s *Store) conn() (*sql.DB, error) {
	s.once.Do(func() {
		db, err := sql.Open("sqlite", s.dsn)
		if err != nil {
			s.err = fmt.Errorf("open db: %w", err)
			return
		}
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			s.err = fmt.Errorf("set WAL mode: %w", err)
			return
		}
		if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS media (
			id INTEGER PRIMARY KEY,
			mime TEXT NOT NULL,
			bytes BLOB NOT NULL
		)`); err != nil {
			db.Close()
			s.err = fmt.Errorf("create media table: %w", err)
			return
		}
		s.db = db
	})
	return s.db, s.err
}

// Put upserts the object stored under id.
func (s *Store) Put(ctx context.Context, id int64, obj Object) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx,
		"INSERT OR REPLACE INTO media (id, mime, bytes) VALUES (?, ?, ?)",
		id, obj.MIME, obj.Bytes); err != nil {
		return fmt.Errorf("put media %d: %w", id, err)
	}
	return nil
}

// Get returns the object stored under id, or (nil, nil) if there is none.
func (s *Store) Get(ctx context.Context, id int64) (*Object, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	var obj Object
	err = db.QueryRowContext(ctx,
		"SELECT mime, bytes FROM media WHERE id = ?", id).Scan(&obj.MIME, &obj.Bytes)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get media %d: %w", id, err)
	}
	return &obj, nil
}

// Delete removes the object stored under id. Deleting an id that was
// never stored succeeds.
func (s *Store) Delete(ctx context.Context, id int64) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM media WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete media %d: %w", id, err)
	}
	return nil
}

// Clear removes every stored object.
func (s *Store) Clear(ctx context.Context) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM media"); err != nil {
		return fmt.Errorf("clear media: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
