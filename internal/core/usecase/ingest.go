package usecase

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/haiminh-dev/visadossier/internal/core/domain"
)

// runIngest walks the input directory, extracts text from every regular file
// concurrently and rebuilds the absorbed file list from scratch. The result
// is sorted by path so repeated runs over the same directory are
// byte-identical.
func (uc *PipelineUseCase) runIngest(ctx context.Context, state domain.PipelineState) (domain.PipelineState, []byte, error) {
	paths, err := uc.listInputFiles()
	if err != nil {
		return state, nil, err
	}

	files := make([]domain.InputFile, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.workers)
	for i, path := range paths {
		g.Go(func() error {
			file, err := uc.absorb(gctx, path)
			if err != nil {
				return err
			}
			files[i] = file
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return state, nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	next := state.Clone()
	next.Files = files

	artifact, err := marshalArtifact(files)
	if err != nil {
		return state, nil, err
	}
	return next, artifact, nil
}

// absorb turns one source file into an InputFile with extracted text and a
// filename-derived domain.
func (uc *PipelineUseCase) absorb(ctx context.Context, absPath string) (domain.InputFile, error) {
	text, err := uc.extractor.Extract(ctx, absPath)
	if err != nil {
		return domain.InputFile{}, fmt.Errorf("extract text from %s: %w", filepath.Base(absPath), err)
	}

	rel, err := filepath.Rel(uc.inputDir, absPath)
	if err != nil {
		rel = filepath.Base(absPath)
	}
	name := filepath.Base(absPath)
	return domain.InputFile{
		Path:     filepath.ToSlash(rel),
		FileName: name,
		Domain:   domain.DetectDomain(name),
		Content:  text,
	}, nil
}

func (uc *PipelineUseCase) listInputFiles() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(uc.inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != uc.inputDir {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.WrapError(domain.ErrInvalidInput, "scan input dir", err)
		}
		return nil, fmt.Errorf("scan input dir: %w", err)
	}
	return paths, nil
}

// resolveInputPath joins a user-supplied relative path with the input root
// and rejects anything escaping it.
func (uc *PipelineUseCase) resolveInputPath(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "resolve input path", errors.New("empty path"))
	}
	joined := filepath.Join(uc.inputDir, filepath.FromSlash(name))
	rel, err := filepath.Rel(uc.inputDir, joined)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", domain.WrapError(domain.ErrInvalidInput, "resolve input path", fmt.Errorf("path %q escapes input dir", name))
	}
	info, err := os.Stat(joined)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", domain.WrapError(domain.ErrFileNotFound, "resolve input path", fmt.Errorf("file %q", name))
		}
		return "", fmt.Errorf("stat input file: %w", err)
	}
	if info.IsDir() {
		return "", domain.WrapError(domain.ErrInvalidInput, "resolve input path", fmt.Errorf("%q is a directory", name))
	}
	return joined, nil
}
