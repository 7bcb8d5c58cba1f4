// Package service runs due price refresh schedules
package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"supplysync/internal/core/cadence"
	perr "supplysync/internal/platform/errors"
	"supplysync/internal/platform/logger"
	"supplysync/internal/platform/metrics"
	ptime "supplysync/internal/platform/time"
	refreshdom "supplysync/internal/services/refresh/domain"
	"supplysync/internal/services/scheduler/domain"
	"supplysync/internal/services/scheduler/repo"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
)

// Locker serializes refreshes of one supplier across processes
type Locker interface {
	// Acquire returns domain.ErrLocked when key is held elsewhere
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}

// RedisLocker implements Locker with redislock
type RedisLocker struct{ Client *redislock.Client }

// Acquire implements Locker
func (l RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	lk, err := l.Client.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, domain.ErrLocked
	}
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "obtain lock %s", key)
	}
	return lk.Release, nil
}

// NopLocker always grants the lock, for single process deployments
type NopLocker struct{}

// Acquire implements Locker
func (NopLocker) Acquire(context.Context, string, time.Duration) (func(context.Context) error, error) {
	return func(context.Context) error { return nil }, nil
}

// Config tunes the scheduler
type Config struct {
	LockTTL time.Duration
}

// Service implements domain.SchedulerPort
type Service struct {
	st      repo.Storage
	job     refreshdom.JobPort
	locker  Locker
	metrics *metrics.Metrics
	cfg     Config
	now     func() time.Time
}

// New constructs the scheduler. A nil locker means no cross process locking
func New(st repo.Storage, job refreshdom.JobPort, locker Locker, m *metrics.Metrics, cfg Config) *Service {
	if locker == nil {
		locker = NopLocker{}
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Minute
	}
	return &Service{st: st, job: job, locker: locker, metrics: m, cfg: cfg, now: time.Now}
}

func lockKey(supplierID int64) string {
	return "supplysync:scheduler:supplier:" + strconv.FormatInt(supplierID, 10)
}

// Tick runs one refresh per distinct supplier with a due schedule, then moves
// the supplier's due schedules to their next occurrence after now. Schedules
// that were not due keep their slot. A failed refresh advances the due
// schedules too. Suppliers whose lock is held elsewhere are skipped and stay due
func (s *Service) Tick(ctx context.Context, now time.Time) (domain.TickResult, error) {
	res := domain.TickResult{Triggered: []int64{}, Updated: []uuid.UUID{}}
	now = now.UTC()
	log := logger.C(ctx)

	due, err := s.st.Due(ctx, now)
	if err != nil {
		return res, err
	}
	var suppliers []int64
	bySupplier := map[int64][]domain.Schedule{}
	for _, sc := range due {
		if _, ok := bySupplier[sc.SupplierID]; !ok {
			suppliers = append(suppliers, sc.SupplierID)
		}
		bySupplier[sc.SupplierID] = append(bySupplier[sc.SupplierID], sc)
	}

	for _, supplierID := range suppliers {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		release, err := s.locker.Acquire(ctx, lockKey(supplierID), s.cfg.LockTTL)
		if err != nil {
			if errors.Is(err, domain.ErrLocked) {
				log.Info().Int64("supplier_id", supplierID).Msg("supplier refresh locked elsewhere, skipped")
			} else {
				log.Warn().Err(err).Int64("supplier_id", supplierID).Msg("supplier lock unavailable, skipped")
			}
			s.metrics.SchedulerTrigger("locked")
			res.Locked = append(res.Locked, supplierID)
			continue
		}

		ids, err := s.trigger(ctx, supplierID, bySupplier[supplierID], now)
		if rerr := release(context.WithoutCancel(ctx)); rerr != nil {
			log.Warn().Err(rerr).Int64("supplier_id", supplierID).Msg("supplier lock release failed")
		}
		res.Triggered = append(res.Triggered, supplierID)
		res.Updated = append(res.Updated, ids...)
		if err != nil {
			return res, err
		}
	}
	log.Info().Int("triggered", len(res.Triggered)).Int("updated", len(res.Updated)).Int("locked", len(res.Locked)).Msg("scheduler tick")
	return res, nil
}

// trigger runs the supplier's refresh and advances the given due schedules.
// Only storage errors are returned; a refresh failure is recorded on the schedules
func (s *Service) trigger(ctx context.Context, supplierID int64, scheds []domain.Schedule, now time.Time) ([]uuid.UUID, error) {
	log := logger.C(ctx).With().Int64("supplier_id", supplierID).Logger()

	runID, runErr := s.job.Run(ctx, supplierID)
	status := domain.StatusSuccess
	if runErr != nil {
		status = domain.StatusFailed
		s.metrics.SchedulerTrigger("failed")
	} else {
		s.metrics.SchedulerTrigger("ok")
	}

	var updated []uuid.UUID
	for _, sc := range scheds {
		if runErr != nil {
			log.Warn().Err(runErr).Str("schedule_id", sc.ID.String()).Str("run_id", runID.String()).Msg("schedule refresh failed")
		}
		next, err := cadence.Next(sc.Freq, sc.At, now)
		if err != nil {
			log.Error().Err(err).Str("schedule_id", sc.ID.String()).Msg("schedule cadence invalid, left unchanged")
			continue
		}
		if err := s.st.Advance(ctx, sc.ID, next, now, status); err != nil {
			return updated, err
		}
		updated = append(updated, sc.ID)
	}
	return updated, nil
}

// PutSchedule validates and stores a schedule. A missing next run is computed from now
func (s *Service) PutSchedule(ctx context.Context, sc domain.Schedule) (domain.Schedule, error) {
	if sc.SupplierID <= 0 {
		return sc, perr.InvalidArgf("supplier id must be positive")
	}
	freq, err := cadence.ParseFreq(string(sc.Freq))
	if err != nil {
		return sc, err
	}
	sc.Freq = freq
	if _, _, err := cadence.ParseAt(sc.At); err != nil {
		return sc, err
	}
	if sc.Profile == "" {
		sc.Profile = domain.ProfilePriceAvail
	}
	if sc.Profile != domain.ProfilePriceAvail {
		return sc, perr.InvalidArgf("unknown schedule profile %q", sc.Profile)
	}
	if sc.ID == uuid.Nil {
		sc.ID = uuid.New()
	}
	if sc.NextRunAt == nil && sc.Enabled {
		if sc.NextRunAt, err = cadence.Next(sc.Freq, sc.At, s.now()); err != nil {
			return sc, err
		}
		if sc.NextRunAt == nil {
			// a one-off schedule whose time already passed today fires on the next tick
			sc.NextRunAt = ptime.Ptr(s.now().UTC())
		}
	}
	if err := s.st.Put(ctx, sc); err != nil {
		return sc, err
	}
	return sc, nil
}

// ListSchedules returns every schedule of a supplier
func (s *Service) ListSchedules(ctx context.Context, supplierID int64) ([]domain.Schedule, error) {
	return s.st.List(ctx, supplierID)
}
