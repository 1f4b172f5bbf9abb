package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/cv-screener/internal/models"
)

var ErrNotFound = errors.New("record not found")

type UploadRepository interface {
	Create(upload *models.Upload) error
	FindByID(id uuid.UUID) (*models.Upload, error)
	FindExpired(before time.Time, limit int) ([]models.Upload, error)
	Delete(id uuid.UUID) error
}

type uploadRepository struct {
	db *gorm.DB
}

func NewUploadRepository(db *gorm.DB) UploadRepository {
	return &uploadRepository{db: db}
}

// Create implements UploadRepository.
func (r *uploadRepository) Create(upload *models.Upload) error {
	if err := r.db.Create(upload).Error; err != nil {
		return fmt.Errorf("failed to create upload: %w", err)
	}

	return nil
}

// FindByID implements UploadRepository.
func (r *uploadRepository) FindByID(id uuid.UUID) (*models.Upload, error) {
	var upload models.Upload
	if err := r.db.Where("id = ?", id).First(&upload).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("upload %s: %w", id, ErrNotFound)
		}

		return nil, fmt.Errorf("failed to find upload: %w", err)
	}

	return &upload, nil
}

// FindExpired implements UploadRepository.
func (r *uploadRepository) FindExpired(before time.Time, limit int) ([]models.Upload, error) {
	var uploads []models.Upload
	err := r.db.
		Where("created_at < ?", before).
		Order("created_at ASC").
		Limit(limit).
		Find(&uploads).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find expired uploads: %w", err)
	}

	return uploads, nil
}

// Delete implements UploadRepository.
func (r *uploadRepository) Delete(id uuid.UUID) error {
	if err := r.db.Where("id = ?", id).Delete(&models.Upload{}).Error; err != nil {
		return fmt.Errorf("failed to delete upload: %w", err)
	}

	return nil
}
