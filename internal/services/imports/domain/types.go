// Package domain defines import run options and the import port
package domain

import (
	"context"

	"github.com/google/uuid"
)

// Options steer one full import run
type Options struct {
	// ManualURLs are registered as manual sources and always crawled
	ManualURLs []string `json:"manualUrls,omitempty"`
	// IncludeSeeds adds the template seeds and every active source of the supplier
	IncludeSeeds   bool   `json:"includeSeeds"`
	SkipSuccessful bool   `json:"skipSuccessful"`
	TemplateKey    *int64 `json:"templateKey,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

// RunnerPort starts import runs
type RunnerPort interface {
	StartRun(ctx context.Context, supplierID int64, o Options) (uuid.UUID, error)
}
