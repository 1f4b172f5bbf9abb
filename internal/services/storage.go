package services

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type StorageService interface {
	SaveUpload(id uuid.UUID, originalName string, data []byte) (*StoredFile, error)
	GetFilePath(filename string) string
	DeleteFile(filename string) error
	EnsureUploadDir() error
}

type StoredFile struct {
	Filename string
	Path     string
	Size     int64
}

type storageService struct {
	uploadPath string
}

func NewStorageService(uploadPath string) StorageService {
	return &storageService{
		uploadPath: uploadPath,
	}
}

func (s *storageService) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

// SaveUpload writes data under the request id. The client name only contributes its extension,
// so unsupported files are still staged and rejected later by the extractor.
func (s *storageService) SaveUpload(id uuid.UUID, originalName string, data []byte) (*StoredFile, error) {
	filename := id.String() + sanitizeExtension(originalName)
	filePath := filepath.Join(s.uploadPath, filename)

	dst, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := dst.Write(data); err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	return &StoredFile{
		Filename: filename,
		Path:     filePath,
		Size:     int64(len(data)),
	}, nil
}

func (s *storageService) GetFilePath(filename string) string {
	return filepath.Join(s.uploadPath, filepath.Base(filename))
}

// DeleteFile treats an already missing file as deleted.
func (s *storageService) DeleteFile(filename string) error {
	filePath := s.GetFilePath(filename)
	if err := os.Remove(filePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func sanitizeExtension(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(strings.ReplaceAll(name, `\`, "/"))))
	if len(ext) <= 1 || len(ext) > 16 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
