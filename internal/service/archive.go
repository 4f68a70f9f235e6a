package service

import (
	"archive/zip"
	"context"
	"fmt"
	"io"

	"github.com/bodhium/workflow/internal/logger"
	"github.com/bodhium/workflow/internal/storage"
)

// ArchiveService streams zip downloads of raw result artifacts.
type ArchiveService struct {
	storage storage.ObjectStorage
	logger  *logger.Logger
}

// NewArchiveService creates a new archive service.
func NewArchiveService(objectStorage storage.ObjectStorage, log *logger.Logger) *ArchiveService {
	return &ArchiveService{
		storage: objectStorage,
		logger:  log,
	}
}

// WriteArchive zips every result object under the job (and optionally
// product) prefix into w. Failure isolation matches aggregation: a listing
// failure aborts, a single object's fetch failure is logged and skipped.
// Returns the number of objects written.
func (s *ArchiveService) WriteArchive(ctx context.Context, jobID, productID string, w io.Writer) (int, error) {
	prefix := jobID + "/"
	if productID != "" {
		prefix += productID + "/"
	}

	objects, err := s.storage.List(ctx, prefix)
	if err != nil {
		return 0, fmt.Errorf("failed to list result objects: %w", err)
	}

	zw := zip.NewWriter(w)
	written := 0
	for _, obj := range objects {
		if err := s.addEntry(ctx, zw, obj); err != nil {
			logger.CtxWarn(ctx, "Skipping archive entry %s: %v", obj.Key, err)
			continue
		}
		written++
	}

	if err := zw.Close(); err != nil {
		return written, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return written, nil
}

func (s *ArchiveService) addEntry(ctx context.Context, zw *zip.Writer, obj storage.ObjectInfo) error {
	body, err := s.storage.Download(ctx, obj.Key)
	if err != nil {
		return err
	}
	defer body.Close()

	header := &zip.FileHeader{
		Name:     obj.Key,
		Method:   zip.Deflate,
		Modified: obj.LastModified,
	}
	entry, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(entry, body)
	return err
}
