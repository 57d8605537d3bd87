package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// LocalStore persists uploaded image bytes on the local filesystem and
// serves them under a fixed URL prefix.
type LocalStore struct {
	dir     string
	urlPath string
}

// SavedFile describes a stored upload.
type SavedFile struct {
	URL      string
	Path     string
	Filename string
}

// NewLocalStore creates a LocalStore rooted at dir.
func NewLocalStore(dir, urlPath string) *LocalStore {
	return &LocalStore{dir: dir, urlPath: urlPath}
}

// Save writes the uploaded file under a date-prefixed unique name.
func (s *LocalStore) Save(file *multipart.FileHeader) (*SavedFile, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	ext := filepath.Ext(file.Filename)
	name := fmt.Sprintf("%s-%s%s", time.Now().Format("20060102"), uuid.New().String(), ext)
	path := filepath.Join(s.dir, name)

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return nil, err
	}

	return &SavedFile{
		URL:      fmt.Sprintf("%s/%s", s.urlPath, name),
		Path:     path,
		Filename: name,
	}, nil
}

// RemoveURL deletes the stored file a public URL points at.
func (s *LocalStore) RemoveURL(url string) error {
	name := path.Base(url)
	if name == "." || name == "/" || name == "" {
		return nil
	}
	return s.Remove(filepath.Join(s.dir, name))
}

// Remove deletes a stored file. Used to compensate when the metadata write
// that should follow a byte-store write does not commit.
func (s *LocalStore) Remove(path string) error {
	if path == "" {
		return nil
	}
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
