package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/cv-screener/internal/repositories"
)

// RetentionWorker deletes staged uploads once they are older than the retention period.
type RetentionWorker interface {
	Start(ctx context.Context)
	Stop()
}

type RetentionConfig struct {
	Retention    time.Duration
	PollInterval time.Duration
	Concurrency  int
	BatchSize    int
}

type retentionWorker struct {
	uploadRepo repositories.UploadRepository
	storage    StorageService
	cfg        RetentionConfig
	jobQueue   chan uuid.UUID
	wg         sync.WaitGroup
	stopChan   chan struct{}
	stopOnce   sync.Once
	logger     *zap.Logger
}

func NewRetentionWorker(
	uploadRepo repositories.UploadRepository,
	storage StorageService,
	cfg RetentionConfig,
	logger *zap.Logger,
) RetentionWorker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Minute
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}

	return &retentionWorker{
		uploadRepo: uploadRepo,
		storage:    storage,
		cfg:        cfg,
		jobQueue:   make(chan uuid.UUID, 100),
		stopChan:   make(chan struct{}),
		logger:     logger,
	}
}

// Start implements RetentionWorker. A zero retention keeps uploads forever.
func (w *retentionWorker) Start(ctx context.Context) {
	if w.cfg.Retention <= 0 {
		w.logger.Info("Upload retention disabled, staged files are kept")
		return
	}

	w.logger.Info("🚀 Starting upload retention worker",
		zap.Int("concurrency", w.cfg.Concurrency),
		zap.Duration("retention", w.cfg.Retention),
	)

	for i := 0; i < w.cfg.Concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollExpiredUploads(ctx)
}

// Stop implements RetentionWorker.
func (w *retentionWorker) Stop() {
	w.stopOnce.Do(func() {
		w.logger.Info("🛑 Stopping retention worker...")
		close(w.stopChan)
	})
	w.wg.Wait()
}

// enqueue hands an expired upload to the purge workers.
func (w *retentionWorker) enqueue(id uuid.UUID) {
	select {
	case w.jobQueue <- id:
	case <-w.stopChan:
		w.logger.Debug("worker stopped, upload not enqueued", zap.Stringer("upload_id", id))
	}
}

func (w *retentionWorker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case id := <-w.jobQueue:
			if err := w.purge(id); err != nil {
				w.logger.Warn("⚠️ Failed to purge upload",
					zap.Int("worker", workerID),
					zap.Stringer("upload_id", id),
					zap.Error(err),
				)
			}
		}
	}
}

func (w *retentionWorker) pollExpiredUploads(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(time.Now())
		}
	}
}

// sweep enqueues the uploads created before now minus the retention period.
func (w *retentionWorker) sweep(now time.Time) int {
	expired, err := w.uploadRepo.FindExpired(now.Add(-w.cfg.Retention), w.cfg.BatchSize)
	if err != nil {
		w.logger.Warn("⚠️ Failed to fetch expired uploads", zap.Error(err))
		return 0
	}

	if len(expired) > 0 {
		w.logger.Info("📋 Found expired uploads", zap.Int("count", len(expired)))
	}

	for _, upload := range expired {
		w.enqueue(upload.ID)
	}
	return len(expired)
}

// purge removes the staged file, then its record. Already purged uploads are ignored.
func (w *retentionWorker) purge(id uuid.UUID) error {
	upload, err := w.uploadRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		return err
	}

	if err := w.storage.DeleteFile(upload.StoredFilename); err != nil {
		return err
	}

	if err := w.uploadRepo.Delete(id); err != nil {
		return err
	}

	w.logger.Debug("🗑️ Upload purged", zap.Stringer("upload_id", id))
	return nil
}
