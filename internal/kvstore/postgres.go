package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// PostgresStore keeps blobs in a Postgres table, for deployments that already
// run a database server.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.pool.QueryRow(ctx, "SELECT value FROM blobs WHERE key = $1", key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		err = fmt.Errorf("could not read blob %q: %w", key, err)
		log.Error(err)
		return "", false, err
	}
	return value, true, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value string) error {
	query := "INSERT INTO blobs (key, value) VALUES ($1, $2) ON CONFLICT (key) DO UPDATE SET value = excluded.value"
	if _, err := s.pool.Exec(ctx, query, key, value); err != nil {
		err = fmt.Errorf("could not write blob %q: %w", key, err)
		log.Error(err)
		return err
	}
	return nil
}

func (s *PostgresStore) Remove(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, "DELETE FROM blobs WHERE key = $1", key); err != nil {
		err = fmt.Errorf("could not remove blob %q: %w", key, err)
		log.Error(err)
		return err
	}
	return nil
}

func (s *PostgresStore) Clear(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "DELETE FROM blobs"); err != nil {
		err = fmt.Errorf("could not clear blobs: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (s *PostgresStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, "SELECT key FROM blobs")
	if err != nil {
		err = fmt.Errorf("could not list blob keys: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			err = fmt.Errorf("could not scan blob key: %w", err)
			log.Error(err)
			return nil, err
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		err = fmt.Errorf("error iterating over blob keys: %w", err)
		log.Error(err)
		return nil, err
	}
	return keys, nil
}
