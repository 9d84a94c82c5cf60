package local

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resume-tailor/internal/shared/storage/object"
	"resume-tailor/internal/shared/util"
)

func TestPutOpenDelete(t *testing.T) {
	base := t.TempDir()
	store := New(base)
	ctx := context.Background()

	key, size, err := store.Put(ctx, "session-1", "resume_data_analyst.docx", "", strings.NewReader("docx-bytes"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if size != int64(len("docx-bytes")) {
		t.Fatalf("size=%d", size)
	}
	if !strings.HasPrefix(key, util.SessionPrefix("session-1")+"/") || !strings.HasSuffix(key, "_resume_data_analyst.docx") {
		t.Fatalf("unexpected key %q", key)
	}

	rc, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "docx-bytes" {
		t.Fatalf("content=%q", data)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Open(ctx, key); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("second Delete should be a no-op: %v", err)
	}
	if _, err := os.Stat(filepath.Join(base, util.SessionPrefix("session-1"))); !os.IsNotExist(err) {
		t.Fatalf("expected empty session dir to be removed, got %v", err)
	}
}

func TestPutLeavesNoTempFiles(t *testing.T) {
	base := t.TempDir()
	store := New(base)
	if _, _, err := store.Put(context.Background(), "s", "cv.pdf", "", strings.NewReader("%PDF-")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	entries, err := os.ReadDir(filepath.Join(base, util.SessionPrefix("s")))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || strings.HasPrefix(entries[0].Name(), ".put-") {
		t.Fatalf("unexpected entries %v", entries)
	}
}

func TestRejectsTraversal(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.Open(context.Background(), "../etc/passwd"); err == nil {
		t.Fatalf("expected traversal rejection")
	}
	if _, _, err := store.Put(context.Background(), "s", "../x.docx", "", strings.NewReader("")); !errors.Is(err, util.ErrInvalidFileName) {
		t.Fatalf("expected invalid file name, got %v", err)
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := New(t.TempDir()).Put(ctx, "s", "cv.pdf", "", strings.NewReader("x")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
