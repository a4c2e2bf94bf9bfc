package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureTenant returns the id of the tenant called name, creating it when
// missing. An empty name is a no-op.
func EnsureTenant(ctx context.Context, pool *pgxpool.Pool, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id::text FROM tenants WHERE name = $1", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}

	err = pool.QueryRow(ctx, "INSERT INTO tenants (name) VALUES ($1) RETURNING id::text", name).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}
