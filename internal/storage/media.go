// Package storage keeps uploaded media on the local filesystem and converts
// images for the web.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	VideoDir = "videos"
	ImageDir = "images"
)

var (
	ErrUnsupportedVideo = errors.New("unsupported video format")
	ErrFileTooLarge     = errors.New("file too large")
	ErrEmptyFile        = errors.New("no file uploaded")
	ErrInvalidPath      = errors.New("invalid media path")
)

var allowedVideoExt = map[string]struct{}{
	"mp4":  {},
	"mov":  {},
	"avi":  {},
	"webm": {},
	"3gp":  {},
}

// MediaStore writes uploads beneath a root directory. Paths it returns are
// relative to the root and use forward slashes, e.g. "videos/<uuid>.mp4".
type MediaStore struct {
	root          string
	maxVideoBytes int64
	maxImageBytes int64
}

// NewMediaStore creates root if needed.
func NewMediaStore(root string, maxVideoBytes, maxImageBytes int64) (*MediaStore, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &MediaStore{root: root, maxVideoBytes: maxVideoBytes, maxImageBytes: maxImageBytes}, nil
}

// Root returns the directory served at /uploads.
func (s *MediaStore) Root() string {
	return s.root
}

// MaxVideoBytes returns the per-file video limit.
func (s *MediaStore) MaxVideoBytes() int64 {
	return s.maxVideoBytes
}

// VideoExtension returns the lowercased extension of name without the dot,
// or an error when it is not on the allow-list.
func VideoExtension(name string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if _, ok := allowedVideoExt[ext]; !ok {
		return "", ErrUnsupportedVideo
	}
	return ext, nil
}

// SaveVideo stores data under videos/ with a fresh name keeping the
// original extension.
func (s *MediaStore) SaveVideo(name string, data []byte) (string, error) {
	ext, err := VideoExtension(name)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", ErrEmptyFile
	}
	if s.maxVideoBytes > 0 && int64(len(data)) > s.maxVideoBytes {
		return "", ErrFileTooLarge
	}
	return s.write(VideoDir, ext, data)
}

// SaveImage stores already-encoded webp bytes under images/.
func (s *MediaStore) SaveImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyFile
	}
	return s.write(ImageDir, "webp", data)
}

// CheckImageSize rejects raw uploads above the configured image limit.
func (s *MediaStore) CheckImageSize(n int) error {
	if n == 0 {
		return ErrEmptyFile
	}
	if s.maxImageBytes > 0 && int64(n) > s.maxImageBytes {
		return ErrFileTooLarge
	}
	return nil
}

func (s *MediaStore) write(dir, ext string, data []byte) (string, error) {
	rel := dir + "/" + uuid.NewString() + "." + ext
	abs := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o750); err != nil {
		return "", err
	}
	if err := os.WriteFile(abs, data, 0o600); err != nil {
		return "", err
	}
	return rel, nil
}

// Remove deletes a file previously returned by SaveVideo or SaveImage.
// A missing file is not an error.
func (s *MediaStore) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	abs, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Exists reports whether rel is present on disk.
func (s *MediaStore) Exists(rel string) bool {
	abs, err := s.resolve(rel)
	if err != nil {
		return false
	}
	_, err = os.Stat(abs)
	return err == nil
}

// resolve maps rel to an absolute path, refusing anything outside root.
func (s *MediaStore) resolve(rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.root, clean), nil
}
