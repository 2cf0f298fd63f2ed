// Package images serves core image files from the local filesystem.
package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strconv"

	"github.com/biogames/biogames-api/internal/domain"
	"github.com/biogames/biogames-api/internal/platform/logger"
)

// ErrImageNotFound is returned when no file for a core exists under the base path.
var ErrImageNotFound = errors.New("image not found")

// DefaultContentType is used when the file extension is not recognised.
const DefaultContentType = "image/png"

// Image is an open image stream. The caller must close Body.
type Image struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

// FileSource resolves cores to files below a base directory. A core's
// file name is reduced to its base name, so stored paths can never reach
// outside the base directory. The file is looked up directly under the
// base path, then in the subdirectory named after the core's score, then
// in the remaining score subdirectories 0-3.
type FileSource struct {
	basePath string
	logger   *slog.Logger
}

// NewFileSource creates a FileSource rooted at basePath.
func NewFileSource(basePath string, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{
		basePath: basePath,
		logger:   logger.With(slog.String("component", "image_source")),
	}
}

// Open returns the image for core.
func (s *FileSource) Open(ctx context.Context, core *domain.Core) (*Image, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	name := filepath.Base(core.FileName)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return nil, fmt.Errorf("%w: core %d has no file name", ErrImageNotFound, core.ID)
	}

	for _, path := range s.candidates(name, core.Score) {
		f, err := os.Open(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to open image %s: %w", name, err)
		}

		info, err := f.Stat()
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to stat image %s: %w", name, err)
		}
		if info.IsDir() {
			_ = f.Close()
			continue
		}

		return &Image{
			Body:        f,
			Size:        info.Size(),
			ContentType: contentType(name),
		}, nil
	}

	log.Warn("image file missing",
		slog.Int64("core_id", core.ID),
		slog.String("file_name", name))
	return nil, fmt.Errorf("%w: %s", ErrImageNotFound, name)
}

func (s *FileSource) candidates(name string, score int) []string {
	paths := []string{filepath.Join(s.basePath, name)}
	if domain.ValidGuess(score) {
		paths = append(paths, filepath.Join(s.basePath, strconv.Itoa(score), name))
	}
	for dir := 0; dir <= 3; dir++ {
		if dir == score {
			continue
		}
		paths = append(paths, filepath.Join(s.basePath, strconv.Itoa(dir), name))
	}
	return paths
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return DefaultContentType
}
