package repo

import (
	"context"
	"time"

	"supplysync/internal/modkit/repokit"
	"supplysync/internal/services/scheduler/domain"

	"github.com/google/uuid"
)

// Leases claims per key rows in scheduler_leases, for deployments that share
// Postgres but have no redis. An expired lease can be taken over
type Leases struct{ q repokit.Queryer }

// NewLeases binds lease storage to q
func NewLeases(q repokit.Queryer) *Leases { return &Leases{q: q} }

// Acquire claims key for ttl. It returns domain.ErrLocked while another holder's
// lease is live. The release func only deletes a lease this call still owns
func (l *Leases) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	token := uuid.New().String()
	rows, err := l.q.Query(ctx, `
		INSERT INTO scheduler_leases (key, token, expires_at)
		VALUES ($1, $2, now() + make_interval(secs => $3))
		ON CONFLICT (key) DO UPDATE SET
			token      = EXCLUDED.token,
			expires_at = EXCLUDED.expires_at
		WHERE scheduler_leases.expires_at < now()
		RETURNING true`,
		key, token, ttl.Seconds(),
	)
	if err != nil {
		return nil, err
	}
	claimed := rows.Next()
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if !claimed {
		return nil, domain.ErrLocked
	}
	return func(ctx context.Context) error {
		_, err := l.q.Exec(ctx, `DELETE FROM scheduler_leases WHERE key = $1 AND token = $2`, key, token)
		return err
	}, nil
}
