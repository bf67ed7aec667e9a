package history

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	// one in-memory db per test so inserts don't leak across tests
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	st, err := NewStore(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return st
}

func chatRecord(prompt, response string) *Record {
	return &Record{
		CreatedAt:   time.Now(),
		RequestType: TypeChat,
		Prompt:      prompt,
		Status:      StatusSuccess,
		DurationMs:  12,
		Chat:        &ChatPayload{Response: response},
	}
}

func fileRecord(path string) *Record {
	return &Record{
		CreatedAt:   time.Now(),
		RequestType: TypeFile,
		Prompt:      "Analyze file: report.pdf",
		Status:      StatusSuccess,
		DurationMs:  80,
		File: &FilePayload{
			ResultJSON:     `{"summary":"ok"}`,
			CommandName:    "extract-v1",
			FileName:       "report.pdf",
			FileMime:       "application/pdf",
			FileSize:       1024,
			FilePath:       path,
			ExternalFileID: "file-abc",
		},
	}
}

func TestInsertAndList_RoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	first := chatRecord("hello", "hi there")
	if err := st.Insert(ctx, first); err != nil {
		t.Fatalf("insert chat: %v", err)
	}
	if first.ID == 0 {
		t.Fatal("insert did not assign an id")
	}

	second := fileRecord("/tmp/does-not-matter.pdf")
	if err := st.Insert(ctx, second); err != nil {
		t.Fatalf("insert file: %v", err)
	}
	if second.ID <= first.ID {
		t.Fatalf("ids not increasing: %d then %d", first.ID, second.ID)
	}

	items, err := st.List(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 records, got %d", len(items))
	}
	// newest first
	if items[0].ID != second.ID || items[1].ID != first.ID {
		t.Fatalf("wrong order: got ids %d, %d", items[0].ID, items[1].ID)
	}

	got := items[0]
	if got.RequestType != TypeFile || got.File == nil || got.Chat != nil {
		t.Fatalf("file record lost its variant: %+v", got)
	}
	if got.File.FileName != "report.pdf" || got.File.CommandName != "extract-v1" {
		t.Errorf("file payload mangled: %+v", got.File)
	}
	if got.File.FileSize != 1024 || got.File.ExternalFileID != "file-abc" {
		t.Errorf("file payload mangled: %+v", got.File)
	}
	if got.File.ResultJSON != `{"summary":"ok"}` {
		t.Errorf("resultJson = %q", got.File.ResultJSON)
	}

	got = items[1]
	if got.RequestType != TypeChat || got.Chat == nil || got.File != nil {
		t.Fatalf("chat record lost its variant: %+v", got)
	}
	if got.Chat.Response != "hi there" || got.Prompt != "hello" {
		t.Errorf("chat payload mangled: %+v", got.Chat)
	}
}

func TestInsert_KeepsErrorRecords(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	rec := chatRecord("boom", "")
	rec.Status = StatusError
	rec.Error = "completion failed: upstream down"
	if err := st.Insert(ctx, rec); err != nil {
		t.Fatalf("insert: %v", err)
	}

	items, err := st.List(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if items[0].Status != StatusError || items[0].Error != "completion failed: upstream down" {
		t.Fatalf("error record mangled: status=%q error=%q", items[0].Status, items[0].Error)
	}
	if items[0].Chat == nil || items[0].Chat.Response != "" {
		t.Fatalf("failed chat should carry an empty response, got %+v", items[0].Chat)
	}
}

func TestList_ClampsLimit(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < MaxLimit+5; i++ {
		if err := st.Insert(ctx, chatRecord(fmt.Sprintf("p%d", i), "r")); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	items, err := st.List(ctx, 5000)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != MaxLimit {
		t.Fatalf("limit 5000 returned %d records, want %d", len(items), MaxLimit)
	}

	items, err = st.List(ctx, 0)
	if err != nil {
		t.Fatalf("list default: %v", err)
	}
	if len(items) != DefaultLimit {
		t.Fatalf("limit 0 returned %d records, want %d", len(items), DefaultLimit)
	}

	items, err = st.List(ctx, 3)
	if err != nil {
		t.Fatalf("list 3: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("limit 3 returned %d records", len(items))
	}
	if items[0].ID < items[1].ID || items[1].ID < items[2].ID {
		t.Fatalf("not newest-first: %d, %d, %d", items[0].ID, items[1].ID, items[2].ID)
	}
}

func TestDeleteOne_RemovesRowAndArtifact(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "upload.pdf")
	if err := os.WriteFile(path, []byte("%PDF"), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}

	rec := fileRecord(path)
	if err := st.Insert(ctx, rec); err != nil {
		t.Fatalf("insert: %v", err)
	}

	deleted, err := st.DeleteOne(ctx, rec.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !deleted {
		t.Fatal("expected deleted=true")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("artifact still on disk: %v", err)
	}

	items, err := st.List(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, it := range items {
		if it.ID == rec.ID {
			t.Fatalf("record %d still listed after delete", rec.ID)
		}
	}

	// second delete reports nothing removed
	deleted, err = st.DeleteOne(ctx, rec.ID)
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if deleted {
		t.Fatal("expected deleted=false for a missing id")
	}
}

func TestDeleteOne_MissingArtifactIsNotFatal(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	rec := fileRecord(filepath.Join(t.TempDir(), "already-gone.pdf"))
	if err := st.Insert(ctx, rec); err != nil {
		t.Fatalf("insert: %v", err)
	}

	deleted, err := st.DeleteOne(ctx, rec.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !deleted {
		t.Fatal("row delete must proceed when the artifact is already gone")
	}
}

func TestDeleteAll_RemovesRowsAndArtifacts(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	dir := t.TempDir()

	var paths []string
	for i := 0; i < 2; i++ {
		p := filepath.Join(dir, fmt.Sprintf("doc%d.pdf", i))
		if err := os.WriteFile(p, []byte("%PDF"), 0o644); err != nil {
			t.Fatalf("write artifact: %v", err)
		}
		paths = append(paths, p)
		if err := st.Insert(ctx, fileRecord(p)); err != nil {
			t.Fatalf("insert file %d: %v", i, err)
		}
	}
	if err := st.Insert(ctx, chatRecord("hi", "yo")); err != nil {
		t.Fatalf("insert chat: %v", err)
	}

	if err := st.DeleteAll(ctx); err != nil {
		t.Fatalf("delete all: %v", err)
	}

	items, err := st.List(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty history, got %d records", len(items))
	}
	for _, p := range paths {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Fatalf("artifact %s still on disk", p)
		}
	}
}
