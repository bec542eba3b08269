package ports

import (
	"context"

	"github.com/haiminh-dev/visadossier/internal/core/domain"
)

// PipelineRunner is the inbound contract for step execution and full runs.
type PipelineRunner interface {
	RunStep(ctx context.Context, step domain.Step, force bool) (domain.PipelineState, error)
	RunAll(ctx context.Context, force bool) (domain.PipelineState, error)
	SetWriterContext(ctx context.Context, text string) error
}

// FileAbsorber is the inbound contract for incremental single-file absorption.
type FileAbsorber interface {
	AddFile(ctx context.Context, path string) (domain.PipelineState, error)
}

// PipelineReader is the inbound read model for state and step artifacts.
type PipelineReader interface {
	State(ctx context.Context) (domain.PipelineState, error)
	StepStatus(ctx context.Context) (map[domain.Step]bool, error)
	Artifact(ctx context.Context, step domain.Step) ([]byte, error)
}

// ItineraryPlanner builds a day-by-day plan from the extracted trip purpose.
// The optional context summary, saved from user form data, replaces the
// pipeline summary profile when present.
type ItineraryPlanner interface {
	BuildItinerary(ctx context.Context, force bool) (string, error)
	LatestItinerary(ctx context.Context) (string, error)
	SaveItineraryContext(ctx context.Context, fields map[string]string) (string, error)
	ItineraryContext(ctx context.Context) (string, error)
}

// BookingService gathers trip info and proposes provisional bookings.
// LatestBookings reads the cache only and never calls the model.
type BookingService interface {
	TripInfo(ctx context.Context, force bool) (domain.TripInfo, error)
	UpdateTripInfo(ctx context.Context, trip domain.TripInfo) (domain.TripInfo, error)
	ProposeBookings(ctx context.Context, force bool) (domain.BookingSelection, error)
	LatestBookings(ctx context.Context) (domain.BookingSelection, error)
}
