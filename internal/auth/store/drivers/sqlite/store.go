package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/aussiebroadwan/webtemplate/internal/auth/store"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db  *sql.DB
	dsn string
}

// NewStore opens dsn. ":memory:" is pinned to a single connection so every
// query sees the same database.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", withPragmas(dsn))
	if err != nil {
		return nil, err
	}
	if dsn == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, dsn: dsn}, nil
}

// withPragmas enables foreign keys and a busy timeout on every connection the
// pool opens.
func withPragmas(dsn string) string {
	const pragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if dsn == ":memory:" {
		return "file::memory:?" + pragmas
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + pragmas
	}
	return "file:" + strings.TrimPrefix(dsn, "file:") + "?" + pragmas
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	// Ensure rollback is called if we panic or return early with error
	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Users() store.Users { return &usersRepo{db: s.db} }
func (s *Store) Posts() store.Posts { return &postsRepo{db: s.db} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func mapUnique(err error) error {
	if isConstraint(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE, "UNIQUE") ||
		isConstraint(err, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, "PRIMARY KEY") {
		return store.ErrAlreadyExists
	}
	return err
}

// mapForeignKey reports a missing parent row as ErrNotFound.
func mapForeignKey(err error) error {
	if isConstraint(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, "FOREIGN KEY") {
		return store.ErrNotFound
	}
	return err
}

// isConstraint matches the extended result code, falling back to the primary
// code plus message when extended codes are off.
func isConstraint(err error, extended int, label string) bool {
	var serr *msqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	if serr.Code() == extended {
		return true
	}
	return serr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(serr.Error(), label)
}

// mustAffect turns a zero-row update or delete into ErrNotFound.
func mustAffect(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func mapNullStringPtr(ns sql.NullString) *string {
	if ns.Valid {
		val := ns.String
		return &val
	}
	return nil
}

var _ store.Store = (*Store)(nil)
