package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hylla/kanboard/internal/domain"
)

func TestExportSnapshotIncludesExpectedData(t *testing.T) {
	repo := newFakeRepo()
	repo.state = seededState()
	store := newTestStore(repo)
	if _, err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	snap, err := store.ExportSnapshot(context.Background())
	if err != nil {
		t.Fatalf("ExportSnapshot() error = %v", err)
	}
	if snap.Version != SnapshotVersion {
		t.Fatalf("unexpected version %q", snap.Version)
	}
	if !snap.ExportedAt.Equal(time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected exported_at %s", snap.ExportedAt)
	}
	if snap.Active != "Platform Launch" || len(snap.Boards) != 2 {
		t.Fatalf("unexpected snapshot %#v", snap)
	}
	first := snap.Boards[0].Columns[0].Tasks[0]
	if first.ID != "t1" || len(first.Subtasks) != 2 || !first.Subtasks[1].IsCompleted {
		t.Fatalf("unexpected first task %#v", first)
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if decoded["version"] != SnapshotVersion {
		t.Fatalf("expected version field in JSON, got %v", decoded["version"])
	}
}

func TestImportSnapshotMergesByName(t *testing.T) {
	repo := newFakeRepo()
	repo.state = seededState()
	store := newTestStore(repo)
	if _, err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	snap := Snapshot{
		Version: SnapshotVersion,
		Active:  "Roadmap",
		Boards: []SnapshotBoard{
			{Name: "Marketing Plan", Columns: []SnapshotColumn{{Name: "Ideas", Tasks: []SnapshotTask{{Title: "Blog post", Status: "whatever"}}}}},
			{Name: "Roadmap"},
		},
	}
	if err := store.ImportSnapshot(context.Background(), snap); err != nil {
		t.Fatalf("ImportSnapshot() error = %v", err)
	}
	state := store.State()
	if got := state.BoardNames(); len(got) != 3 || got[1] != "Marketing Plan" || got[2] != "Roadmap" {
		t.Fatalf("unexpected board names %v", got)
	}
	if state.Active != "Roadmap" {
		t.Fatalf("expected imported active board, got %q", state.Active)
	}
	marketing, _ := state.Board("Marketing Plan")
	task := marketing.Columns[0].Tasks[0]
	if task.Status != "Ideas" || task.ID == "" || marketing.Columns[0].ID == "" {
		t.Fatalf("expected imported task retagged with generated ids, got column %#v", marketing.Columns[0])
	}
	if repo.state.BoardIndex("Roadmap") < 0 {
		t.Fatal("expected imported state persisted")
	}
}

func TestImportSnapshotRekeysIDsOwnedByOtherBoards(t *testing.T) {
	repo := newFakeRepo()
	repo.state = seededState()
	store := newTestStore(repo)
	ctx := context.Background()
	if _, err := store.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	snap, err := store.ExportSnapshot(ctx)
	if err != nil {
		t.Fatalf("ExportSnapshot() error = %v", err)
	}

	renamed := launchBoard()
	renamed.Name = "Launch v2"
	if _, err := store.Dispatch(ctx, EditBoardAndSave{Board: renamed, Original: "Platform Launch"}); err != nil {
		t.Fatalf("Dispatch(rename) error = %v", err)
	}
	if err := store.ImportSnapshot(ctx, snap); err != nil {
		t.Fatalf("ImportSnapshot() error = %v", err)
	}

	state := store.State()
	if err := domain.CheckUniqueIDs(state.Boards); err != nil {
		t.Fatalf("expected unique ids after import, got %v", err)
	}
	kept, _ := state.Board("Launch v2")
	restored, ok := state.Board("Platform Launch")
	if !ok {
		t.Fatalf("expected imported board appended, got %v", state.BoardNames())
	}
	if kept.Columns[0].ID != "c-todo" || kept.Columns[0].Tasks[0].ID != "t1" {
		t.Fatalf("expected existing board ids untouched, got %#v", kept.Columns[0])
	}
	if restored.Columns[0].ID == "c-todo" || restored.Columns[0].Tasks[0].ID == "t1" {
		t.Fatalf("expected imported ids rekeyed, got %#v", restored.Columns[0])
	}
	if restored.Columns[0].Tasks[0].Title != "Build UI for onboarding flow" {
		t.Fatalf("expected imported content kept, got %#v", restored.Columns[0].Tasks[0])
	}
}

func TestImportSnapshotKeepsIDsWhenReplacingSameBoard(t *testing.T) {
	repo := newFakeRepo()
	repo.state = seededState()
	store := newTestStore(repo)
	ctx := context.Background()
	if _, err := store.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	snap, err := store.ExportSnapshot(ctx)
	if err != nil {
		t.Fatalf("ExportSnapshot() error = %v", err)
	}
	if err := store.ImportSnapshot(ctx, snap); err != nil {
		t.Fatalf("ImportSnapshot() error = %v", err)
	}
	board, _ := store.State().Board("Platform Launch")
	if board.Columns[0].ID != "c-todo" || board.Columns[0].Tasks[0].ID != "t1" {
		t.Fatalf("expected ids kept on same-name replace, got %#v", board.Columns[0])
	}
}

func TestSnapshotValidate(t *testing.T) {
	cases := []Snapshot{
		{Version: "other"},
		{Boards: []SnapshotBoard{{Name: " "}}},
		{Boards: []SnapshotBoard{{Name: "a"}, {Name: "a"}}},
		{Boards: []SnapshotBoard{{Name: "a", Columns: []SnapshotColumn{{Name: ""}}}}},
		{Boards: []SnapshotBoard{{Name: "a", Columns: []SnapshotColumn{{Name: "c", Tasks: []SnapshotTask{{Title: ""}}}}}}},
	}
	for i, snap := range cases {
		if err := snap.Validate(); !errors.Is(err, ErrInvalidSnapshot) {
			t.Fatalf("case %d: expected ErrInvalidSnapshot, got %v", i, err)
		}
	}
}

func TestSnapshotDomainConversion(t *testing.T) {
	board := launchBoard()
	back := SnapshotBoardFromDomain(board).ToDomain()
	if back.Name != board.Name || len(back.Columns) != len(board.Columns) {
		t.Fatalf("unexpected converted board %#v", back)
	}
	if back.Columns[0].Tasks[0].Subtasks[1] != (domain.Subtask{Title: "Welcome page", IsCompleted: true}) {
		t.Fatalf("unexpected subtask %#v", back.Columns[0].Tasks[0].Subtasks[1])
	}
}
