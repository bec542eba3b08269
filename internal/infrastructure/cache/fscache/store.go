package fscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/haiminh-dev/visadossier/internal/core/domain"
)

// Store keeps pipeline state, step markers and artifacts as files under one
// cache directory. Every write goes through a temp file and rename in the
// same directory, so a crash mid-write leaves either the old file or the new
// one, never a torn file.
type Store struct {
	dir        string
	letterPath string
}

// New creates the cache directory if needed. letterPath, when non-empty, is
// where the writer artifact is additionally published as the deliverable
// letter file.
func New(dir, letterPath string) (*Store, error) {
	if dir == "" {
		dir = filepath.Join("output", ".cache")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Store{dir: dir, letterPath: letterPath}, nil
}

const stateFile = "state.json"

var artifactFiles = map[domain.Step]string{
	domain.StepIngest:  "ingest.json",
	domain.StepExtract: "extracted.json",
	domain.StepSummary: "summary_profile.txt",
	domain.StepRisk:    "risk_points.json",
	domain.StepWriter:  "letter.txt",
}

func (s *Store) LoadState(_ context.Context) (domain.PipelineState, bool, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, stateFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.PipelineState{}, false, nil
		}
		return domain.PipelineState{}, false, fmt.Errorf("read state file: %w", err)
	}
	var state domain.PipelineState
	if err := json.Unmarshal(data, &state); err != nil {
		return domain.PipelineState{}, false, fmt.Errorf("decode state file: %w", err)
	}
	return state, true, nil
}

func (s *Store) SaveState(_ context.Context, state domain.PipelineState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	return s.writeAtomic(stateFile, data)
}

func (s *Store) StepDone(_ context.Context, step domain.Step) (bool, error) {
	_, err := os.Stat(filepath.Join(s.dir, markerFile(step)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat step marker: %w", err)
	}
	return true, nil
}

func (s *Store) MarkStepDone(_ context.Context, step domain.Step) error {
	marker := struct {
		CompletedAt string `json:"completed_at"`
	}{CompletedAt: time.Now().UTC().Format(time.RFC3339)}
	data, err := json.Marshal(marker)
	if err != nil {
		return fmt.Errorf("encode step marker: %w", err)
	}
	return s.writeAtomic(markerFile(step), data)
}

func (s *Store) ClearStep(_ context.Context, step domain.Step) error {
	if err := removeIfExists(filepath.Join(s.dir, markerFile(step))); err != nil {
		return err
	}
	if name, ok := artifactFiles[step]; ok {
		if err := removeIfExists(filepath.Join(s.dir, name)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) SaveArtifact(_ context.Context, step domain.Step, data []byte) error {
	name, ok := artifactFiles[step]
	if !ok {
		return fmt.Errorf("no artifact file for step %q", step)
	}
	if err := s.writeAtomic(name, data); err != nil {
		return err
	}
	if step == domain.StepWriter && s.letterPath != "" {
		if err := os.MkdirAll(filepath.Dir(s.letterPath), 0o755); err != nil {
			return fmt.Errorf("create letter dir: %w", err)
		}
		if err := os.WriteFile(s.letterPath, data, 0o644); err != nil {
			return fmt.Errorf("publish letter: %w", err)
		}
	}
	return nil
}

func (s *Store) LoadArtifact(_ context.Context, step domain.Step) ([]byte, bool, error) {
	name, ok := artifactFiles[step]
	if !ok {
		return nil, false, fmt.Errorf("no artifact file for step %q", step)
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read artifact: %w", err)
	}
	return data, true, nil
}

func (s *Store) SaveBlob(_ context.Context, name string, data []byte) error {
	if err := validateBlobName(name); err != nil {
		return err
	}
	return s.writeAtomic(name, data)
}

func (s *Store) LoadBlob(_ context.Context, name string) ([]byte, bool, error) {
	if err := validateBlobName(name); err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read blob: %w", err)
	}
	return data, true, nil
}

func (s *Store) DeleteBlob(_ context.Context, name string) error {
	if err := validateBlobName(name); err != nil {
		return err
	}
	return removeIfExists(filepath.Join(s.dir, name))
}

func (s *Store) writeAtomic(name string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

func markerFile(step domain.Step) string {
	return "step_" + string(step) + ".json"
}

func validateBlobName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid blob name %q", name)
	}
	return nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", filepath.Base(path), err)
	}
	return nil
}
