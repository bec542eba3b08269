package usecase

import (
	"context"
	"fmt"

	"github.com/haiminh-dev/visadossier/internal/core/domain"
)

// AddFile absorbs a single document into the pipeline without re-reading the
// rest of the input directory. The file list stays sorted by path, a file
// already absorbed is replaced in place, and every step after ingest re-runs
// unconditionally: even a byte-identical re-add makes downstream results
// unverified. The returned state carries the regenerated letter.
func (uc *PipelineUseCase) AddFile(ctx context.Context, path string) (domain.PipelineState, error) {
	absPath, err := uc.resolveInputPath(path)
	if err != nil {
		return domain.PipelineState{}, err
	}

	state, _, err := uc.cache.LoadState(ctx)
	if err != nil {
		return domain.PipelineState{}, fmt.Errorf("load pipeline state: %w", err)
	}

	file, err := uc.absorb(ctx, absPath)
	if err != nil {
		return state, err
	}

	next := state.Clone()
	next.Files = upsertFile(next.Files, file)

	for _, ds := range domain.Downstream(domain.StepIngest) {
		if err := uc.cache.ClearStep(ctx, ds); err != nil {
			return state, fmt.Errorf("clear downstream step %s: %w", ds, err)
		}
	}

	if err := uc.cache.SaveState(ctx, next); err != nil {
		return state, fmt.Errorf("save pipeline state: %w", err)
	}
	artifact, err := marshalArtifact(next.Files)
	if err != nil {
		return state, err
	}
	if err := uc.cache.SaveArtifact(ctx, domain.StepIngest, artifact); err != nil {
		return next, fmt.Errorf("save step artifact: %w", err)
	}
	if err := uc.cache.MarkStepDone(ctx, domain.StepIngest); err != nil {
		return next, fmt.Errorf("mark step done: %w", err)
	}
	uc.logger.Info("file absorbed", "path", file.Path, "domain", file.Domain)

	for _, ds := range domain.Downstream(domain.StepIngest) {
		next, err = uc.RunStep(ctx, ds, false)
		if err != nil {
			return next, fmt.Errorf("rerun step %s after absorb: %w", ds, err)
		}
	}
	return next, nil
}

// upsertFile replaces the entry with the same path or inserts keeping the
// slice sorted by path.
func upsertFile(files []domain.InputFile, file domain.InputFile) []domain.InputFile {
	for i, existing := range files {
		if existing.Path == file.Path {
			files[i] = file
			return files
		}
	}
	pos := len(files)
	for i, existing := range files {
		if file.Path < existing.Path {
			pos = i
			break
		}
	}
	files = append(files, domain.InputFile{})
	copy(files[pos+1:], files[pos:])
	files[pos] = file
	return files
}
