package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hpungsan/rolo/internal/errors"
)

// Get returns the value stored under key. ok is false when the key has never
// been written, which callers treat as the first-run state rather than an error.
func Get(ctx context.Context, db *sql.DB, key string) (string, bool, error) {
	var value string
	err := db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.NewStorageUnavailable(err)
	}
	return value, true, nil
}

// Set replaces the value stored under key in a single statement.
func Set(ctx context.Context, db *sql.DB, key, value string) error {
	query := `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := db.ExecContext(ctx, query, key, value, time.Now().Unix()); err != nil {
		return errors.NewStorageUnavailable(err)
	}
	log.Debug().Str("key", key).Int("bytes", len(value)).Msg("kv set")
	return nil
}

// Modify reads key, passes it to fn and stores fn's result inside one
// BEGIN IMMEDIATE transaction. The write lock is taken up front so another
// connection cannot commit between the read and the write; busy_timeout
// makes concurrent writers wait rather than fail. Nothing is written when fn
// returns write=false or an error; fn's error is returned as-is.
func Modify(ctx context.Context, db *sql.DB, key string, fn func(value string, ok bool) (string, bool, error)) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return errors.NewStorageUnavailable(err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return errors.NewStorageUnavailable(err)
	}
	committed := false
	defer func() {
		if !committed {
			// Fresh context so cancellation cannot leave the connection mid-transaction.
			_, _ = conn.ExecContext(context.Background(), "ROLLBACK")
		}
	}()

	var value string
	ok := true
	err = conn.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		ok = false
	} else if err != nil {
		return errors.NewStorageUnavailable(err)
	}

	next, write, err := fn(value, ok)
	if err != nil || !write {
		return err
	}

	query := `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := conn.ExecContext(ctx, query, key, next, time.Now().Unix()); err != nil {
		return errors.NewStorageUnavailable(err)
	}
	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return errors.NewStorageUnavailable(err)
	}
	committed = true
	log.Debug().Str("key", key).Int("bytes", len(next)).Msg("kv modify")
	return nil
}

// KV adapts a database handle to the store's key-value backend.
type KV struct {
	DB *sql.DB
}

// Get implements store.Backend.
func (k KV) Get(ctx context.Context, key string) (string, bool, error) {
	return Get(ctx, k.DB, key)
}

// Set implements store.Backend.
func (k KV) Set(ctx context.Context, key, value string) error {
	return Set(ctx, k.DB, key, value)
}

// Modify implements store.Backend.
func (k KV) Modify(ctx context.Context, key string, fn func(value string, ok bool) (string, bool, error)) error {
	return Modify(ctx, k.DB, key, fn)
}
