package printing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/lotiva/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// archiveKeyPattern limits keys to contract archive keys such as 7b1f9a52-3c6e-4d8a-9f0b-2a1c5e6d7f80-r2
var archiveKeyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,127}$`)

// FileSystemStorageConfig contains configuration for file system storage
type FileSystemStorageConfig struct {
	// BasePath is the root directory for PDF storage
	// Default: /data/contracts
	BasePath string
	// RetentionDays is how long to keep PDFs (0 = forever)
	RetentionDays int
	// Logger for operations
	Logger *zap.Logger
}

// FileSystemStorage archives rendered contract PDFs on the local file system.
// Files are laid out as {base}/{key}.pdf.
type FileSystemStorage struct {
	config *FileSystemStorageConfig
	logger *zap.Logger
}

// NewFileSystemStorage creates a new file system based PDF storage
func NewFileSystemStorage(config *FileSystemStorageConfig) (*FileSystemStorage, error) {
	if config == nil {
		config = &FileSystemStorageConfig{}
	}
	if config.BasePath == "" {
		config.BasePath = "/data/contracts"
	}

	if err := os.MkdirAll(config.BasePath, 0o755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed,
			fmt.Sprintf("failed to create storage directory: %s", config.BasePath), err)
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &FileSystemStorage{
		config: config,
		logger: logger,
	}, nil
}

// Store writes data under key, replacing any previous file
func (s *FileSystemStorage) Store(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return NewRenderError(ErrCodeStorageFailed, "operation cancelled", err)
	}
	path, err := s.pathFor(key)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return NewRenderError(ErrCodeStorageFailed, "PDF data is empty", nil)
	}

	// Write to a temp file first so readers never see a partial PDF
	tmp, err := os.CreateTemp(s.config.BasePath, ".upload-*")
	if err != nil {
		return NewRenderError(ErrCodeStorageFailed, "failed to create temp file", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return NewRenderError(ErrCodeStorageFailed, "failed to write PDF file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return NewRenderError(ErrCodeStorageFailed, "failed to write PDF file", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return NewRenderError(ErrCodeStorageFailed, "failed to move PDF file into place", err)
	}

	s.logger.Info("PDF stored",
		zap.String("path", path),
		zap.Int("size", len(data)))
	return nil
}

// Load reads the PDF stored under key.
// Returns an error matching shared.ErrNotFound when nothing is stored.
func (s *FileSystemStorage) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "operation cancelled", err)
	}
	path, err := s.pathFor(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, shared.ErrNotFound.WithCause(err)
		}
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to read PDF file", err)
	}
	return data, nil
}

// Delete removes the PDF stored under key. Missing files are not an error.
func (s *FileSystemStorage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return NewRenderError(ErrCodeStorageFailed, "operation cancelled", err)
	}
	path, err := s.pathFor(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return NewRenderError(ErrCodeStorageFailed, "failed to delete PDF file", err)
	}

	s.logger.Info("PDF deleted", zap.String("key", key))
	return nil
}

// CleanupOlderThan removes files older than the specified duration
func (s *FileSystemStorage) CleanupOlderThan(ctx context.Context, age time.Duration) (int, error) {
	cutoff := time.Now().Add(-age)
	deletedCount := 0

	entries, err := os.ReadDir(s.config.BasePath)
	if err != nil {
		return 0, NewRenderError(ErrCodeStorageFailed, "failed to list storage directory", err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			break
		}
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".pdf" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.config.BasePath, entry.Name())); err == nil {
				deletedCount++
				s.logger.Debug("deleted old PDF", zap.String("file", entry.Name()))
			}
		}
	}

	s.logger.Info("cleanup completed",
		zap.Int("deleted", deletedCount),
		zap.Duration("age", age))

	return deletedCount, nil
}

// RetentionPeriod returns the configured retention, zero when files are kept forever
func (s *FileSystemStorage) RetentionPeriod() time.Duration {
	return time.Duration(s.config.RetentionDays) * 24 * time.Hour
}

// pathFor maps key to a file under BasePath.
// Keys with separators or dots are rejected, so the result never escapes BasePath.
func (s *FileSystemStorage) pathFor(key string) (string, error) {
	if !archiveKeyPattern.MatchString(key) {
		s.logger.Warn("blocked invalid archive key", zap.String("key", key))
		return "", NewRenderError(ErrCodeStorageFailed, "invalid archive key", nil)
	}
	return filepath.Join(s.config.BasePath, key+".pdf"), nil
}
