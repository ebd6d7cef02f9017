package clients

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	dErrors "openid-gateway/pkg/domain-errors"
)

// PostgresStore reads client registrations from PostgreSQL.
//
// Schema:
//
//	CREATE TABLE oidc_clients (
//	    client_id        TEXT PRIMARY KEY,
//	    name             TEXT NOT NULL,
//	    secret_hash      TEXT NOT NULL DEFAULT '',
//	    redirect_uris    TEXT[] NOT NULL DEFAULT '{}',
//	    requires_consent BOOLEAN NOT NULL DEFAULT TRUE,
//	    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) ClientName(ctx context.Context, clientID string) (string, error) {
	var name string
	err := s.pool.QueryRow(ctx,
		`SELECT name FROM oidc_clients WHERE client_id = $1`, clientID,
	).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", dErrors.Wrap(dErrors.CodeUnavailable, "query client name", err)
	}
	return name, nil
}

func (s *PostgresStore) RequiresConsent(ctx context.Context, clientID string) (bool, error) {
	var requires bool
	err := s.pool.QueryRow(ctx,
		`SELECT requires_consent FROM oidc_clients WHERE client_id = $1`, clientID,
	).Scan(&requires)
	if errors.Is(err, pgx.ErrNoRows) {
		// Unknown clients never reach the consent check; the flow 404s on the
		// empty name first.
		return false, nil
	}
	if err != nil {
		return false, dErrors.Wrap(dErrors.CodeUnavailable, "query client consent requirement", err)
	}
	return requires, nil
}
