// Package service adapts import, run and diff ports to the http DTOs
package service

import (
	"context"

	"supplysync/internal/platform/logger"
	"supplysync/internal/services/api/imports/domain"
	diffdom "supplysync/internal/services/diff/domain"
	impdom "supplysync/internal/services/imports/domain"

	"github.com/google/uuid"
)

// Service is the imports api contract
type Service interface {
	StartRun(ctx context.Context, in domain.StartRunInput) (domain.RunOutput, error)
	GetRun(ctx context.Context, runID uuid.UUID) (diffdom.Run, error)
	ListDiffs(ctx context.Context, runID uuid.UUID, actionable bool) (domain.DiffList, error)
	Resolve(ctx context.Context, diffID uuid.UUID, in domain.ResolveInput) (diffdom.Diff, error)
	SkipSuccessful(ctx context.Context, runID uuid.UUID) (domain.SkipOutput, error)
}

type svc struct {
	runner impdom.RunnerPort
	engine diffdom.EnginePort
	runs   diffdom.RunPort
}

// New constructs the service
func New(runner impdom.RunnerPort, engine diffdom.EnginePort, runs diffdom.RunPort) Service {
	return &svc{runner: runner, engine: engine, runs: runs}
}

// StartRun runs the import to completion. Once a run is recorded its outcome
// is reported through the run itself, so a failed crawl is not an http error
func (s *svc) StartRun(ctx context.Context, in domain.StartRunInput) (domain.RunOutput, error) {
	id, err := s.runner.StartRun(ctx, in.SupplierID, impdom.Options{
		ManualURLs:     in.ManualURLs,
		IncludeSeeds:   in.IncludeSeeds,
		SkipSuccessful: in.SkipSuccessful,
		TemplateKey:    in.TemplateKey,
		Notes:          in.Notes,
	})
	if id == uuid.Nil {
		return domain.RunOutput{}, err
	}
	if err != nil {
		logger.C(ctx).Warn().Err(err).Str("run_id", id.String()).Msg("import run failed")
	}
	run, gerr := s.runs.GetRun(ctx, id)
	if gerr != nil {
		return domain.RunOutput{}, gerr
	}
	return domain.RunOutput{RunID: id, Run: run}, nil
}

func (s *svc) GetRun(ctx context.Context, runID uuid.UUID) (diffdom.Run, error) {
	return s.runs.GetRun(ctx, runID)
}

func (s *svc) ListDiffs(ctx context.Context, runID uuid.UUID, actionable bool) (domain.DiffList, error) {
	diffs, err := s.engine.ListDiffs(ctx, runID, actionable)
	if err != nil {
		return domain.DiffList{}, err
	}
	if diffs == nil {
		diffs = []diffdom.Diff{}
	}
	return domain.DiffList{RunID: runID, Actionable: actionable, Diffs: diffs}, nil
}

func (s *svc) Resolve(ctx context.Context, diffID uuid.UUID, in domain.ResolveInput) (diffdom.Diff, error) {
	return s.engine.Resolve(ctx, diffID, in.Resolution, in.Edits)
}

// SkipSuccessful marks unresolved rows of the run that match the approved state
func (s *svc) SkipSuccessful(ctx context.Context, runID uuid.UUID) (domain.SkipOutput, error) {
	run, err := s.runs.GetRun(ctx, runID)
	if err != nil {
		return domain.SkipOutput{}, err
	}
	n, err := s.engine.MarkSkipSuccessful(ctx, run.SupplierID, runID)
	if err != nil {
		return domain.SkipOutput{}, err
	}
	return domain.SkipOutput{RunID: runID, Marked: n}, nil
}
