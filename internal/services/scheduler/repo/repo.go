// Package repo provides refresh schedule storage
package repo

import (
	"context"
	"time"

	"supplysync/internal/core/cadence"
	"supplysync/internal/modkit/repokit"
	"supplysync/internal/platform/store"
	"supplysync/internal/services/scheduler/domain"

	"github.com/google/uuid"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the schedule repository
type Storage interface {
	Put(ctx context.Context, s domain.Schedule) error
	// Due returns enabled schedules whose next run is unset or not after now
	Due(ctx context.Context, now time.Time) ([]domain.Schedule, error)
	List(ctx context.Context, supplierID int64) ([]domain.Schedule, error)
	// Advance records a finished trigger; a nil next disables the schedule
	Advance(ctx context.Context, id uuid.UUID, next *time.Time, ranAt time.Time, status string) error
}

const columns = `id::text, supplier_id, template_id, profile, enabled, freq, at, next_run_at, last_run_at, last_status`

// Put implements Storage
func (s *pg) Put(ctx context.Context, sc domain.Schedule) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO refresh_schedules (id, supplier_id, template_id, profile, enabled, freq, at, next_run_at)
		VALUES ($1, $2, $3::bigint, $4, $5, $6, $7, $8::timestamptz)
		ON CONFLICT (id) DO UPDATE SET
			supplier_id = EXCLUDED.supplier_id,
			template_id = EXCLUDED.template_id,
			profile     = EXCLUDED.profile,
			enabled     = EXCLUDED.enabled,
			freq        = EXCLUDED.freq,
			at          = EXCLUDED.at,
			next_run_at = EXCLUDED.next_run_at`,
		sc.ID.String(), sc.SupplierID, sc.TemplateID, sc.Profile, sc.Enabled, string(sc.Freq), sc.At, sc.NextRunAt,
	)
	return err
}

// Due implements Storage
func (s *pg) Due(ctx context.Context, now time.Time) ([]domain.Schedule, error) {
	return store.Many(ctx, s.q, scanSchedule, `
		SELECT `+columns+` FROM refresh_schedules
		WHERE enabled AND (next_run_at IS NULL OR next_run_at <= $1)
		ORDER BY supplier_id, next_run_at NULLS FIRST, id`, now)
}

// List implements Storage
func (s *pg) List(ctx context.Context, supplierID int64) ([]domain.Schedule, error) {
	return store.Many(ctx, s.q, scanSchedule,
		`SELECT `+columns+` FROM refresh_schedules WHERE supplier_id = $1 ORDER BY id`, supplierID)
}

// Advance implements Storage
func (s *pg) Advance(ctx context.Context, id uuid.UUID, next *time.Time, ranAt time.Time, status string) error {
	return store.ExecOne(ctx, s.q, `
		UPDATE refresh_schedules SET
			next_run_at = $2::timestamptz,
			enabled     = enabled AND $2::timestamptz IS NOT NULL,
			last_run_at = $3,
			last_status = $4
		WHERE id = $1`,
		id.String(), next, ranAt, status,
	)
}

func scanSchedule(row store.Row) (domain.Schedule, error) {
	var (
		sc   domain.Schedule
		id   string
		freq string
	)
	if err := row.Scan(&id, &sc.SupplierID, &sc.TemplateID, &sc.Profile, &sc.Enabled, &freq, &sc.At,
		&sc.NextRunAt, &sc.LastRunAt, &sc.LastStatus); err != nil {
		return sc, err
	}
	sc.Freq = cadence.Freq(freq)
	var err error
	sc.ID, err = uuid.Parse(id)
	return sc, err
}
