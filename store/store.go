// Package store is the PostgreSQL access layer for the storefront entities.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write would violate a uniqueness or
	// reference constraint.
	ErrConflict = errors.New("conflict")
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation, pqForeignKeyViolation:
			detail := pqErr.Detail
			if detail == "" {
				detail = pqErr.Message
			}
			return fmt.Errorf("%w: %s", ErrConflict, detail)
		}
	}

	return err
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	err = fn(tx)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// lockRow takes a row lock on the given id, returning ErrNotFound when the
// row is gone.
func lockRow(ctx context.Context, tx *sqlx.Tx, table string, id int64) error {
	var locked int64
	err := tx.GetContext(ctx, &locked,
		`select id from `+table+` where id = $1 for update`, id)
	return translate(err)
}

func affectedOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var ok bool
	err := s.db.GetContext(ctx, &ok, `select exists(`+query+`)`, args...)
	if err != nil {
		return false, err
	}
	return ok, nil
}
