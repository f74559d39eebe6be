package server

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"quill/internal/blobstore"
	"quill/internal/media"
	"quill/internal/models"
	"quill/internal/store"
)

const (
	defaultMediaGCBatchSize = 500
	defaultMediaGCMinAge    = time.Hour
)

// MediaService owns uploaded files: validation, storage, post-commit purge
// and the orphan sweep.
type MediaService struct {
	store  store.MediaStore
	blobs  blobstore.BlobStore
	logger *slog.Logger
	now    func() time.Time

	maxBytes    int64
	formats     []string
	gcBatchSize int
	gcMinAge    time.Duration
}

// MediaGCResult reports one GC run result.
type MediaGCResult struct {
	CandidateCount int
	DeletedCount   int
	FailedCount    int
	ReclaimedBytes int64
	DryRun         bool
}

// UploadResult describes one accepted upload.
type UploadResult struct {
	Media  models.Media
	Width  int
	Height int
}

func NewMediaService(mediaStore store.MediaStore, blobs blobstore.BlobStore, logger *slog.Logger) *MediaService {
	if logger == nil {
		logger = slog.Default()
	}
	svc := &MediaService{store: mediaStore, blobs: blobs, logger: logger, now: func() time.Time { return time.Now().UTC() }}
	svc.ConfigurePolicy(media.DefaultMaxBytes, nil, defaultMediaGCBatchSize, defaultMediaGCMinAge)
	return svc
}

// ConfigurePolicy overrides upload limits and GC behavior.
func (m *MediaService) ConfigurePolicy(maxBytes int64, formats []string, gcBatchSize int, gcMinAge time.Duration) {
	if m == nil {
		return
	}
	if maxBytes <= 0 {
		maxBytes = media.DefaultMaxBytes
	}
	if len(formats) == 0 {
		formats = media.DefaultFormats
	}
	if gcBatchSize <= 0 {
		gcBatchSize = defaultMediaGCBatchSize
	}
	if gcMinAge < 0 {
		gcMinAge = 0
	}
	m.maxBytes = maxBytes
	m.formats = append([]string(nil), formats...)
	m.gcBatchSize = gcBatchSize
	m.gcMinAge = gcMinAge
}

// Upload validates an image, stores it under a fresh key and records it unowned.
func (m *MediaService) Upload(ctx context.Context, kind models.MediaKind, filename string, content io.Reader, actor string) (UploadResult, error) {
	if m == nil || m.store == nil || m.blobs == nil {
		return UploadResult{}, notImplemented(fmt.Errorf("media storage is not configured"))
	}
	if _, err := models.ParseMediaKind(string(kind)); err != nil {
		return UploadResult{}, badRequest(err)
	}

	data, err := io.ReadAll(io.LimitReader(content, m.maxBytes+1))
	if err != nil {
		return UploadResult{}, badRequest(fmt.Errorf("read upload: %w", err))
	}
	info, err := media.ValidateImage(data, m.maxBytes, m.formats)
	if err != nil {
		return UploadResult{}, imageError(err)
	}

	key, err := media.UploadKey(kind, filename, info.Format)
	if err != nil {
		return UploadResult{}, badRequest(err)
	}
	put, err := m.blobs.Put(ctx, key, bytes.NewReader(data))
	if err != nil {
		return UploadResult{}, makeAPIError(http.StatusInternalServerError, "internal", ErrCodeStorageFailure, fmt.Errorf("store file: %w", err))
	}

	row := models.Media{
		Key:        put.Key,
		Kind:       kind,
		Filename:   filename,
		MediaType:  info.MediaType,
		SizeBytes:  put.SizeBytes,
		SHA256:     put.SHA256,
		UploadedBy: actor,
		CreatedAt:  m.now(),
	}
	if err := m.store.CreateMedia(ctx, &row); err != nil {
		if delErr := m.blobs.Delete(ctx, put.Key); delErr != nil {
			m.logger.Warn("remove file after failed media insert", "key", put.Key, "error", delErr)
		}
		return UploadResult{}, mapStoreError(err, storeFailure(err))
	}

	return UploadResult{Media: row, Width: info.Width, Height: info.Height}, nil
}

// Purge deletes released files after their owning change committed. The row
// goes first so a key claimed in between keeps its file. Failures are logged
// and left for the GC sweep.
func (m *MediaService) Purge(ctx context.Context, keys []string) []string {
	purged := []string{}
	if m == nil || m.store == nil || m.blobs == nil {
		return purged
	}
	for _, key := range keys {
		deleted, err := m.store.DeleteUnownedMedia(ctx, key)
		if err != nil {
			m.logger.Warn("remove released media row", "key", key, "error", err)
			continue
		}
		if !deleted {
			m.logger.Warn("released media was claimed again, keeping file", "key", key)
			continue
		}
		if err := m.blobs.Delete(ctx, key); err != nil {
			m.logger.Error("purge released file", "key", key, "error", err)
			continue
		}
		purged = append(purged, key)
	}
	return purged
}

// Open returns the stored bytes of one media key.
func (m *MediaService) Open(ctx context.Context, key string) (io.ReadCloser, *models.Media, error) {
	if m == nil || m.store == nil || m.blobs == nil {
		return nil, nil, notImplemented(fmt.Errorf("media storage is not configured"))
	}
	row, err := m.store.GetMedia(ctx, key)
	if err != nil {
		return nil, nil, storeFailure(err)
	}
	if row == nil {
		return nil, nil, notFoundCode(fmt.Errorf("media not found"), ErrCodeMediaNotFound)
	}
	reader, err := m.blobs.Open(ctx, row.Key)
	if err != nil {
		return nil, nil, notFoundCode(fmt.Errorf("media content not found"), ErrCodeMediaNotFound)
	}
	return reader, row, nil
}

// GC sweeps unowned files older than the minimum age and optionally deletes them.
func (m *MediaService) GC(ctx context.Context, batchSize int, apply bool) (MediaGCResult, error) {
	result := MediaGCResult{DryRun: !apply}
	if m == nil || m.store == nil || m.blobs == nil {
		return result, notImplemented(fmt.Errorf("media storage is not configured"))
	}
	if batchSize <= 0 {
		batchSize = m.gcBatchSize
	}
	cutoff := m.now().Add(-m.gcMinAge)

	if !apply {
		candidates, err := m.store.ListUnownedMedia(ctx, cutoff, 0)
		if err != nil {
			return result, storeFailure(err)
		}
		result.CandidateCount = len(candidates)
		for _, candidate := range candidates {
			result.ReclaimedBytes += candidate.SizeBytes
		}
		return result, nil
	}

	failed := map[string]struct{}{}
	for {
		candidates, err := m.store.ListUnownedMedia(ctx, cutoff, batchSize+len(failed))
		if err != nil {
			return result, storeFailure(err)
		}

		progressed := false
		for _, candidate := range candidates {
			if _, seen := failed[candidate.Key]; seen {
				continue
			}
			progressed = true
			result.CandidateCount++
			deleted, err := m.store.DeleteUnownedMedia(ctx, candidate.Key)
			if err != nil {
				m.logger.Warn("gc delete media row", "key", candidate.Key, "error", err)
				failed[candidate.Key] = struct{}{}
				result.FailedCount++
				continue
			}
			if !deleted {
				// claimed during the sweep
				failed[candidate.Key] = struct{}{}
				result.CandidateCount--
				continue
			}
			if err := m.blobs.Delete(ctx, candidate.Key); err != nil {
				m.logger.Error("gc delete file", "key", candidate.Key, "error", err)
				result.FailedCount++
				continue
			}
			result.DeletedCount++
			result.ReclaimedBytes += candidate.SizeBytes
		}
		if !progressed {
			return result, nil
		}
	}
}
