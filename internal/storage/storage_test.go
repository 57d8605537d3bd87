package storage

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	part.Write(content)
	writer.Close()

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("failed to parse multipart form: %v", err)
	}
	return req.MultipartForm.File["file"][0]
}

func TestSaveWritesFileAndReportsURL(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, "/static/uploads")

	saved, err := store.Save(fileHeader(t, "pose.jpg", []byte("image-bytes")))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if !strings.HasPrefix(saved.URL, "/static/uploads/") {
		t.Fatalf("unexpected url %q", saved.URL)
	}
	if !strings.HasSuffix(saved.Filename, ".jpg") {
		t.Fatalf("expected original extension kept, got %q", saved.Filename)
	}
	data, err := os.ReadFile(saved.Path)
	if err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	if string(data) != "image-bytes" {
		t.Fatalf("stored bytes differ: %q", data)
	}
}

func TestSaveGeneratesUniqueNames(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "/static/uploads")

	first, err := store.Save(fileHeader(t, "pose.jpg", []byte("a")))
	if err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	second, err := store.Save(fileHeader(t, "pose.jpg", []byte("b")))
	if err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	if first.Filename == second.Filename {
		t.Fatalf("expected distinct names for same upload filename, got %q", first.Filename)
	}
}

func TestRemoveURLDeletesStoredFile(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, "/static/uploads")

	saved, err := store.Save(fileHeader(t, "pose.png", []byte("x")))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if err := store.RemoveURL(saved.URL); err != nil {
		t.Fatalf("remove by url failed: %v", err)
	}
	if _, err := os.Stat(saved.Path); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, stat err: %v", err)
	}
}

func TestRemoveToleratesMissingFile(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "/static/uploads")

	if err := store.Remove(filepath.Join(t.TempDir(), "nope.jpg")); err != nil {
		t.Fatalf("missing file must not be an error: %v", err)
	}
	if err := store.Remove(""); err != nil {
		t.Fatalf("empty path must be a no-op: %v", err)
	}
	if err := store.RemoveURL("/static/uploads/"); err != nil {
		t.Fatalf("bare prefix must be a no-op: %v", err)
	}
}
