package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alfredoptarigan/cv-screener/internal/models"
)

func stageUpload(t *testing.T, storage StorageService, repo *memoryUploadRepo, age time.Duration) *models.Upload {
	t.Helper()
	id := uuid.New()
	stored, err := storage.SaveUpload(id, "cv.txt", []byte("Competenze: Go"))
	require.NoError(t, err)

	upload := &models.Upload{
		ID:               id,
		OriginalFilename: "cv.txt",
		StoredFilename:   stored.Filename,
		FilePath:         stored.Path,
		Size:             stored.Size,
		CreatedAt:        time.Now().Add(-age),
	}
	require.NoError(t, repo.Create(upload))
	return upload
}

func TestRetentionWorker_PurgesExpiredUploads(t *testing.T) {
	storage := NewStorageService(t.TempDir())
	repo := newMemoryUploadRepo()
	expired := stageUpload(t, storage, repo, 48*time.Hour)
	fresh := stageUpload(t, storage, repo, time.Minute)

	worker := NewRetentionWorker(repo, storage, RetentionConfig{
		Retention:    24 * time.Hour,
		PollInterval: 10 * time.Millisecond,
		Concurrency:  2,
	}, zap.NewNop())
	worker.Start(context.Background())
	defer worker.Stop()

	assert.Eventually(t, func() bool { return repo.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.NoFileExists(t, expired.FilePath)
	assert.FileExists(t, fresh.FilePath)

	_, err := repo.FindByID(fresh.ID)
	assert.NoError(t, err)
}

func TestRetentionWorker_Disabled(t *testing.T) {
	storage := NewStorageService(t.TempDir())
	repo := newMemoryUploadRepo()
	upload := stageUpload(t, storage, repo, 365*24*time.Hour)

	worker := NewRetentionWorker(repo, storage, RetentionConfig{PollInterval: time.Millisecond}, zap.NewNop())
	worker.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	worker.Stop()

	assert.Equal(t, 1, repo.count())
	assert.FileExists(t, upload.FilePath)
}

func TestRetentionWorker_PurgeIsIdempotent(t *testing.T) {
	storage := NewStorageService(t.TempDir())
	repo := newMemoryUploadRepo()
	upload := stageUpload(t, storage, repo, time.Hour)

	w := NewRetentionWorker(repo, storage, RetentionConfig{Retention: time.Minute}, zap.NewNop()).(*retentionWorker)

	require.NoError(t, w.purge(upload.ID))
	require.NoError(t, w.purge(upload.ID))
	assert.Zero(t, repo.count())
}

func TestRetentionWorker_SweepRespectsBatchSize(t *testing.T) {
	storage := NewStorageService(t.TempDir())
	repo := newMemoryUploadRepo()
	for i := 0; i < 3; i++ {
		stageUpload(t, storage, repo, time.Hour)
	}

	w := NewRetentionWorker(repo, storage, RetentionConfig{Retention: time.Minute, BatchSize: 2}, zap.NewNop()).(*retentionWorker)

	assert.Equal(t, 2, w.sweep(time.Now()))
	assert.Len(t, w.jobQueue, 2)
}
