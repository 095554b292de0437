package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nazrin/tadikahub/internal/pkg/apperrors"
	"github.com/nazrin/tadikahub/internal/pkg/logger"
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// SanitizeFilename strips everything outside [a-zA-Z0-9._-] from an uploaded
// original name so it is safe to use on disk. Path separators and traversal
// sequences are replaced along with everything else.
func SanitizeFilename(name string) string {
	name = filepath.Base(name)
	sanitized := unsafeNameChars.ReplaceAllString(name, "_")
	sanitized = strings.Trim(sanitized, "._")
	if sanitized == "" {
		return "file"
	}
	return sanitized
}

// LocalStorage saves registration documents on the local filesystem, one
// subdirectory per application.
type LocalStorage struct {
	basePath string
	maxSize  int64
}

// NewLocalStorage creates a LocalStorage rooted at basePath. maxSize caps
// individual file sizes in bytes.
func NewLocalStorage(basePath string, maxSize int64) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Document storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		maxSize:  maxSize,
	}, nil
}

// MaxSize returns the per-file size cap in bytes.
func (ls *LocalStorage) MaxSize() int64 {
	return ls.maxSize
}

// StoredFile describes one saved document file.
type StoredFile struct {
	StoredName   string
	RelativePath string
	Size         int64
	MimeType     string
}

// SaveDocument writes one uploaded document under the application's
// subdirectory. The stored name is the document id joined with the sanitized
// original name, which keeps names collision free across uploads.
func (ls *LocalStorage) SaveDocument(fileHeader *multipart.FileHeader, applicationID, documentID string) (*StoredFile, error) {
	if fileHeader == nil {
		return nil, fmt.Errorf("no file provided")
	}
	if ls.maxSize > 0 && fileHeader.Size > ls.maxSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, cap is %d",
			apperrors.ErrFileTooLarge, fileHeader.Filename, fileHeader.Size, ls.maxSize)
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	appDir := filepath.Join(ls.basePath, applicationID)
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		logger.Error().Err(err).Str("path", appDir).Msg("Failed to create application directory")
		return nil, fmt.Errorf("failed to create application directory: %w", err)
	}

	storedName := documentID + "_" + SanitizeFilename(fileHeader.Filename)
	relativePath := filepath.Join(applicationID, storedName)
	dstPath := filepath.Join(appDir, storedName)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, file)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return nil, fmt.Errorf("failed to save file content: %w", err)
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	logger.Info().
		Str("filename", fileHeader.Filename).
		Str("storedName", storedName).
		Int64("size", written).
		Msg("Document saved")

	return &StoredFile{
		StoredName:   storedName,
		RelativePath: relativePath,
		Size:         written,
		MimeType:     mimeType,
	}, nil
}

// RemoveApplicationFiles deletes the application's upload directory and
// everything under it. Used to unwind a failed submission; removing a
// directory that was never created is not an error.
func (ls *LocalStorage) RemoveApplicationFiles(applicationID string) error {
	if applicationID == "" {
		return nil
	}
	return os.RemoveAll(filepath.Join(ls.basePath, applicationID))
}

// FullPath maps a stored relative path back to the absolute on-disk path.
// Existence of the file is not re-checked here.
func (ls *LocalStorage) FullPath(relativePath string) string {
	if relativePath == "" {
		return ""
	}
	return filepath.Join(ls.basePath, relativePath)
}
