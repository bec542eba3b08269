package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/haiminh-dev/visadossier/internal/core/domain"
	"github.com/haiminh-dev/visadossier/internal/core/ports"
)

// PipelineUseCase orchestrates the five-step dossier pipeline over a cache
// store. Steps are idempotent: a completed step is skipped unless forced,
// and forcing a step invalidates everything after it.
type PipelineUseCase struct {
	cache     ports.CacheStore
	extractor ports.TextExtractor
	model     ports.ModelClient
	inputDir  string
	workers   int
	logger    *slog.Logger
}

func NewPipelineUseCase(
	cache ports.CacheStore,
	extractor ports.TextExtractor,
	model ports.ModelClient,
	inputDir string,
	workers int,
	logger *slog.Logger,
) *PipelineUseCase {
	if workers <= 0 {
		workers = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PipelineUseCase{
		cache:     cache,
		extractor: extractor,
		model:     model,
		inputDir:  inputDir,
		workers:   workers,
		logger:    logger,
	}
}

func (uc *PipelineUseCase) RunStep(ctx context.Context, step domain.Step, force bool) (domain.PipelineState, error) {
	if _, ok := domain.StepIndex(step); !ok {
		return domain.PipelineState{}, domain.WrapError(domain.ErrUnknownStep, "run step", fmt.Errorf("step %q", step))
	}

	state, _, err := uc.cache.LoadState(ctx)
	if err != nil {
		return domain.PipelineState{}, fmt.Errorf("load pipeline state: %w", err)
	}

	// force is the documented way out of a missing-prerequisite refusal:
	// a forced run executes regardless of upstream markers.
	if !force {
		if missing, err := uc.firstMissingPrerequisite(ctx, step); err != nil {
			return state, err
		} else if missing != "" {
			return state, &domain.PrerequisiteError{Missing: missing}
		}
	}

	done, err := uc.cache.StepDone(ctx, step)
	if err != nil {
		return state, fmt.Errorf("check step marker: %w", err)
	}
	if done && !force {
		uc.logger.Debug("step cached, skipping", "step", step)
		return state, nil
	}

	// The step is about to recompute, so its own result and every
	// downstream result are stale. Clearing markers first means a crash
	// mid-step leaves the pipeline resumable, never wrongly marked done.
	if err := uc.invalidateFrom(ctx, step); err != nil {
		return state, err
	}

	next, artifact, err := uc.execute(ctx, step, state)
	if err != nil {
		return state, err
	}

	if err := uc.cache.SaveState(ctx, next); err != nil {
		return state, fmt.Errorf("save pipeline state: %w", err)
	}
	if err := uc.cache.SaveArtifact(ctx, step, artifact); err != nil {
		return next, fmt.Errorf("save step artifact: %w", err)
	}
	if err := uc.cache.MarkStepDone(ctx, step); err != nil {
		return next, fmt.Errorf("mark step done: %w", err)
	}

	uc.logger.Info("step completed", "step", step, "forced", force)
	return next, nil
}

func (uc *PipelineUseCase) RunAll(ctx context.Context, force bool) (domain.PipelineState, error) {
	var state domain.PipelineState
	for _, step := range domain.Steps() {
		// Forcing the first step already invalidates the rest; the later
		// forced calls are redundant but harmless, so keep the call uniform.
		next, err := uc.RunStep(ctx, step, force)
		if err != nil {
			return state, err
		}
		state = next
	}
	return state, nil
}

// SetWriterContext stores extra user guidance picked up by the next letter
// generation. An unchanged value is not rewritten.
func (uc *PipelineUseCase) SetWriterContext(ctx context.Context, text string) error {
	state, _, err := uc.cache.LoadState(ctx)
	if err != nil {
		return fmt.Errorf("load pipeline state: %w", err)
	}
	if state.WriterContext == text {
		return nil
	}
	state.WriterContext = text
	if err := uc.cache.SaveState(ctx, state); err != nil {
		return fmt.Errorf("save pipeline state: %w", err)
	}
	return nil
}

func (uc *PipelineUseCase) State(ctx context.Context) (domain.PipelineState, error) {
	state, _, err := uc.cache.LoadState(ctx)
	if err != nil {
		return domain.PipelineState{}, fmt.Errorf("load pipeline state: %w", err)
	}
	return state, nil
}

func (uc *PipelineUseCase) StepStatus(ctx context.Context) (map[domain.Step]bool, error) {
	status := make(map[domain.Step]bool, len(domain.Steps()))
	for _, step := range domain.Steps() {
		done, err := uc.cache.StepDone(ctx, step)
		if err != nil {
			return nil, fmt.Errorf("check step marker: %w", err)
		}
		status[step] = done
	}
	return status, nil
}

func (uc *PipelineUseCase) Artifact(ctx context.Context, step domain.Step) ([]byte, error) {
	if _, ok := domain.StepIndex(step); !ok {
		return nil, domain.WrapError(domain.ErrUnknownStep, "read artifact", fmt.Errorf("step %q", step))
	}
	data, found, err := uc.cache.LoadArtifact(ctx, step)
	if err != nil {
		return nil, fmt.Errorf("load step artifact: %w", err)
	}
	if !found {
		return nil, domain.WrapError(domain.ErrFileNotFound, "read artifact", fmt.Errorf("no artifact for step %q", step))
	}
	return data, nil
}

func (uc *PipelineUseCase) firstMissingPrerequisite(ctx context.Context, step domain.Step) (domain.Step, error) {
	for _, pre := range domain.Upstream(step) {
		done, err := uc.cache.StepDone(ctx, pre)
		if err != nil {
			return "", fmt.Errorf("check prerequisite marker: %w", err)
		}
		if !done {
			return pre, nil
		}
	}
	return "", nil
}

func (uc *PipelineUseCase) invalidateFrom(ctx context.Context, step domain.Step) error {
	if err := uc.cache.ClearStep(ctx, step); err != nil {
		return fmt.Errorf("clear step %s: %w", step, err)
	}
	for _, ds := range domain.Downstream(step) {
		if err := uc.cache.ClearStep(ctx, ds); err != nil {
			return fmt.Errorf("clear downstream step %s: %w", ds, err)
		}
	}
	return nil
}

func (uc *PipelineUseCase) execute(ctx context.Context, step domain.Step, state domain.PipelineState) (domain.PipelineState, []byte, error) {
	switch step {
	case domain.StepIngest:
		return uc.runIngest(ctx, state)
	case domain.StepExtract:
		return uc.runExtract(ctx, state)
	case domain.StepSummary:
		return uc.runSummary(ctx, state)
	case domain.StepRisk:
		return uc.runRisk(ctx, state)
	case domain.StepWriter:
		return uc.runWriter(ctx, state)
	default:
		return state, nil, domain.WrapError(domain.ErrUnknownStep, "execute step", fmt.Errorf("step %q", step))
	}
}

func marshalArtifact(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}
	return data, nil
}
