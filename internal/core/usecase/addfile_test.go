package usecase

import (
	"context"
	"testing"

	"github.com/haiminh-dev/visadossier/internal/core/domain"
)

func TestAddFileAbsorbsWithoutFullRescan(t *testing.T) {
	cache := newFakeCache()
	uc, dir, extractor := newTestPipeline(t, cache, &fakeModel{})
	writeInputFile(t, dir, "HO SO CA NHAN.txt")
	writeInputFile(t, dir, "TAI CHINH.txt")

	ctx := context.Background()
	if _, err := uc.RunStep(ctx, domain.StepIngest, false); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	before := extractor.calls

	writeInputFile(t, dir, "LICH SU DU LICH.txt")
	state, err := uc.AddFile(ctx, "LICH SU DU LICH.txt")
	if err != nil {
		t.Fatalf("add file: %v", err)
	}

	if extractor.calls != before+1 {
		t.Fatalf("extractor called %d times, want %d (single file only)", extractor.calls, before+1)
	}
	if len(state.Files) != 3 {
		t.Fatalf("file count = %d, want 3", len(state.Files))
	}
	for i := 1; i < len(state.Files); i++ {
		if state.Files[i-1].Path >= state.Files[i].Path {
			t.Fatalf("files not sorted after add: %q before %q", state.Files[i-1].Path, state.Files[i].Path)
		}
	}
}

func TestAddFileReplacesExistingRecordInPlace(t *testing.T) {
	cache := newFakeCache()
	uc, dir, _ := newTestPipeline(t, cache, &fakeModel{})
	writeInputFile(t, dir, "CONG VIEC.txt")
	writeInputFile(t, dir, "TAI CHINH.txt")

	ctx := context.Background()
	if _, err := uc.RunStep(ctx, domain.StepIngest, false); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	state, err := uc.AddFile(ctx, "CONG VIEC.txt")
	if err != nil {
		t.Fatalf("re-add file: %v", err)
	}
	if len(state.Files) != 2 {
		t.Fatalf("re-adding duplicated the record: %d files", len(state.Files))
	}
	if state.Files[0].Path != "CONG VIEC.txt" {
		t.Fatalf("replaced record moved: first file is %q", state.Files[0].Path)
	}
}

func TestAddFileRerunsDownstreamUnconditionally(t *testing.T) {
	cache := newFakeCache()
	model := &fakeModel{}
	uc, dir, _ := newTestPipeline(t, cache, model)
	writeInputFile(t, dir, "CONG VIEC.txt")

	ctx := context.Background()
	if _, err := uc.RunAll(ctx, false); err != nil {
		t.Fatalf("run all: %v", err)
	}
	jsonBefore, textBefore := model.calls()

	state, err := uc.AddFile(ctx, "CONG VIEC.txt")
	if err != nil {
		t.Fatalf("add file: %v", err)
	}

	jsonAfter, textAfter := model.calls()
	if jsonAfter == jsonBefore && textAfter == textBefore {
		t.Fatal("downstream steps served stale caches after absorb: zero model calls")
	}
	for _, step := range domain.Steps() {
		if !cache.markers[step] {
			t.Fatalf("step %s not done after absorb rerun", step)
		}
	}
	if state.Letter == "" {
		t.Fatal("absorb returned no regenerated letter")
	}
}

func TestAddFileRejectsTraversal(t *testing.T) {
	uc, _, _ := newTestPipeline(t, newFakeCache(), &fakeModel{})

	_, err := uc.AddFile(context.Background(), "../outside.txt")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput for traversal, got %v", err)
	}
}

func TestAddFileMissingFile(t *testing.T) {
	uc, _, _ := newTestPipeline(t, newFakeCache(), &fakeModel{})

	_, err := uc.AddFile(context.Background(), "does-not-exist.txt")
	if !domain.IsKind(err, domain.ErrFileNotFound) {
		t.Fatalf("want ErrFileNotFound, got %v", err)
	}
}
