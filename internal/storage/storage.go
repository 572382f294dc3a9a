// Package storage keeps uploaded images (payment receipts and artwork) on
// local disk under uuid file names.
package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/01moynul/mintverse-golang/internal/apperror"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxUploadBytes caps a single image.
const MaxUploadBytes = 5 << 20

var allowed = map[string][]string{
	".png":  {"image/png"},
	".jpg":  {"image/jpeg"},
	".jpeg": {"image/jpeg"},
	".webp": {"image/webp"},
}

var (
	ErrExtension = fmt.Errorf("%w: only png, jpg, jpeg and webp images are accepted", apperror.ErrValidation)
	ErrContent   = fmt.Errorf("%w: file content does not match its extension", apperror.ErrValidation)
	ErrTooLarge  = fmt.Errorf("%w: file exceeds 5 MiB", apperror.ErrValidation)
)

type FileStore struct {
	Dir     string
	BaseURL string
}

func NewFileStore(dir, baseURL string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &FileStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Save checks the upload and writes it under a fresh name. It returns the
// stored file name, which is what the database keeps.
func (s *FileStore) Save(fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if _, ok := allowed[ext]; !ok {
		return "", ErrExtension
	}
	if fh.Size > MaxUploadBytes {
		return "", ErrTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	return s.write(src, ext)
}

func (s *FileStore) write(src io.ReadSeeker, ext string) (string, error) {
	mt, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("sniff upload: %w", err)
	}
	if !matches(mt, allowed[ext]) {
		return "", ErrContent
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	name := uuid.NewString() + ext
	dst, err := os.OpenFile(filepath.Join(s.Dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(dst, io.LimitReader(src, MaxUploadBytes+1)); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return name, nil
}

func matches(mt *mimetype.MIME, want []string) bool {
	for _, w := range want {
		if mt.Is(w) {
			return true
		}
	}
	return false
}

// URL is the public address of a stored file.
func (s *FileStore) URL(name string) string {
	return s.BaseURL + "/uploads/" + name
}

// Remove deletes a stored file; a file that is already gone is not an error.
func (s *FileStore) Remove(name string) error {
	err := os.Remove(filepath.Join(s.Dir, filepath.Base(name)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
