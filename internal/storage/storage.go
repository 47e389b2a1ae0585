package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/config"
)

// Upload categories, routed to per-category subdirectories
const (
	KindProduct = "products"
	KindDesign  = "designs"
	KindBill    = "bills"
	KindReturn  = "returns"
	KindProfile = "profiles"
	KindMisc    = "misc"
)

var allowedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var allowedMimePrefixes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
}

// ImageStore saves uploaded images to per-category directories on disk.
// Only image files pass the extension and MIME allowlist, and files over
// the configured cap are rejected before any bytes are written.
type ImageStore struct {
	baseDir    string
	publicPath string
	maxSize    int64
}

// NewImageStore creates the store and its category directories
func NewImageStore(cfg config.UploadConfig) (*ImageStore, error) {
	store := &ImageStore{
		baseDir:    cfg.Dir,
		publicPath: cfg.PublicPath,
		maxSize:    cfg.MaxSizeMB * 1024 * 1024,
	}

	for _, kind := range []string{KindProduct, KindDesign, KindBill, KindReturn, KindProfile, KindMisc} {
		if err := os.MkdirAll(filepath.Join(cfg.Dir, kind), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create upload directory: %w", err)
		}
	}
	return store, nil
}

// BaseDir returns the on-disk upload root, for static serving
func (s *ImageStore) BaseDir() string {
	return s.baseDir
}

// Save validates and writes one uploaded file, returning its public URL path.
func (s *ImageStore) Save(header *multipart.FileHeader, kind string) (string, error) {
	if header.Size > s.maxSize {
		return "", fmt.Errorf("file %s exceeds the %d byte limit", header.Filename, s.maxSize)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("only image files are allowed")
	}
	if !allowedMime(header.Header.Get("Content-Type")) {
		return "", fmt.Errorf("only image files are allowed")
	}

	switch kind {
	case KindProduct, KindDesign, KindBill, KindReturn, KindProfile:
	default:
		kind = KindMisc
	}

	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	filename := uuid.New().String() + ext
	destPath := filepath.Join(s.baseDir, kind, filename)

	dest, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, io.LimitReader(src, s.maxSize)); err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	return path.Join(s.publicPath, kind, filename), nil
}

// SaveAll saves a slice of uploads of the same kind, returning public URL
// paths. The first failure aborts; files already written stay on disk.
func (s *ImageStore) SaveAll(headers []*multipart.FileHeader, kind string) ([]string, error) {
	urls := make([]string, 0, len(headers))
	for _, header := range headers {
		url, err := s.Save(header, kind)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func allowedMime(contentType string) bool {
	for _, prefix := range allowedMimePrefixes {
		if strings.HasPrefix(contentType, prefix) {
			return true
		}
	}
	return false
}
