package schedule

import (
	"context"

	dombatch "github.com/kailas-cloud/searchinto/internal/domain/batch"
	domexport "github.com/kailas-cloud/searchinto/internal/domain/export"
)

// Runner executes one export job.
type Runner interface {
	Run(ctx context.Context, job domexport.Job) (*dombatch.Summary, error)
}
