package ports

import (
	"context"

	"github.com/haiminh-dev/visadossier/internal/core/domain"
)

// CacheStore persists pipeline state, step-done markers and step artifacts.
// Implementations must make SaveState/SaveArtifact atomic per key: a crash
// mid-write may lose the value but never leaves a torn one behind.
type CacheStore interface {
	LoadState(ctx context.Context) (domain.PipelineState, bool, error)
	SaveState(ctx context.Context, state domain.PipelineState) error

	StepDone(ctx context.Context, step domain.Step) (bool, error)
	MarkStepDone(ctx context.Context, step domain.Step) error
	ClearStep(ctx context.Context, step domain.Step) error

	SaveArtifact(ctx context.Context, step domain.Step, data []byte) error
	LoadArtifact(ctx context.Context, step domain.Step) ([]byte, bool, error)

	SaveBlob(ctx context.Context, name string, data []byte) error
	LoadBlob(ctx context.Context, name string) ([]byte, bool, error)
	DeleteBlob(ctx context.Context, name string) error
}

// TextExtractor turns one source document into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// ModelClient generates completions. GenerateJSON instructs the model to
// reply with a single JSON value; callers still must not trust the reply to
// parse.
type ModelClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// JobQueue publishes/consumes asynchronous pipeline run requests.
type JobQueue interface {
	PublishPipelineRun(ctx context.Context, job domain.PipelineJob) error
	SubscribePipelineRun(ctx context.Context, handler func(context.Context, domain.PipelineJob) error) error
}

// BookingRenderer produces a printable booking dossier for a proposed
// selection.
type BookingRenderer interface {
	RenderBookingDossier(trip domain.TripInfo, selection domain.BookingSelection) ([]byte, error)
}
