package local

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
)

func TestSaveAndOpenRoundTrip(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	key, size, _, err := store.Save(ctx, "iv-1", "resume.pdf", strings.NewReader("%PDF-1.4 fake"))
	if err != nil {
		t.Fatal(err)
	}
	if size != int64(len("%PDF-1.4 fake")) {
		t.Errorf("size = %d", size)
	}
	if !strings.HasPrefix(key, "iv-1/") {
		t.Errorf("key should be namespaced by interview, got %q", key)
	}

	rc, err := store.Open(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "%PDF-1.4 fake" {
		t.Errorf("data = %q", data)
	}
}

func TestSaveWithKeyOverwrites(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	if _, err := store.SaveWithKey(ctx, "iv-1/report.pdf", "application/pdf", strings.NewReader("first")); err != nil {
		t.Fatal(err)
	}
	if _, err := store.SaveWithKey(ctx, "iv-1/report.pdf", "application/pdf", strings.NewReader("second")); err != nil {
		t.Fatal(err)
	}

	rc, err := store.Open(ctx, "iv-1/report.pdf")
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if !bytes.Equal(data, []byte("second")) {
		t.Errorf("data = %q", data)
	}
}

func TestPathTraversalRejected(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	if _, _, _, err := store.Save(ctx, "iv-1", "../escape.txt", strings.NewReader("x")); err == nil {
		t.Error("traversal in file name should be rejected")
	}
	if _, err := store.SaveWithKey(ctx, "../escape.txt", "", strings.NewReader("x")); err == nil {
		t.Error("traversal in storage key should be rejected")
	}
	if _, err := store.Open(ctx, "../../etc/passwd"); err == nil {
		t.Error("traversal in open should be rejected")
	}
}
