package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/cv-screener/internal/models"
)

type ScreeningRepository interface {
	Create(screening *models.Screening) error
	FindByID(id uuid.UUID) (*models.Screening, error)
	UpdateStatus(id uuid.UUID, status models.ScreeningStatus) error
	UpdateResult(id uuid.UUID, result *ScreeningUpdateData) error
	UpdateError(id uuid.UUID, errorMsg string) error
}

type ScreeningUpdateData struct {
	RoleMatched    *string
	Similarity     *float64
	Fallback       *bool
	ParseTime      *float64
	RetrievalTime  *float64
	GenerationTime *float64
	TotalTime      *float64
}

type screeningRepository struct {
	db *gorm.DB
}

func NewScreeningRepository(db *gorm.DB) ScreeningRepository {
	return &screeningRepository{db: db}
}

func (r *screeningRepository) Create(screening *models.Screening) error {
	if err := r.db.Create(screening).Error; err != nil {
		return fmt.Errorf("failed to create screening: %w", err)
	}
	return nil
}

func (r *screeningRepository) FindByID(id uuid.UUID) (*models.Screening, error) {
	var screening models.Screening
	if err := r.db.Where("id = ?", id).First(&screening).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("screening %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find screening: %w", err)
	}
	return &screening, nil
}

func (r *screeningRepository) UpdateStatus(id uuid.UUID, status models.ScreeningStatus) error {
	return r.update(id, map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	})
}

func (r *screeningRepository) UpdateResult(id uuid.UUID, data *ScreeningUpdateData) error {
	updates := map[string]interface{}{
		"status":     models.StatusCompleted,
		"updated_at": time.Now(),
	}

	if data.RoleMatched != nil {
		updates["role_matched"] = *data.RoleMatched
	}
	if data.Similarity != nil {
		updates["similarity"] = *data.Similarity
	}
	if data.Fallback != nil {
		updates["fallback"] = *data.Fallback
	}
	if data.ParseTime != nil {
		updates["parse_time"] = *data.ParseTime
	}
	if data.RetrievalTime != nil {
		updates["retrieval_time"] = *data.RetrievalTime
	}
	if data.GenerationTime != nil {
		updates["generation_time"] = *data.GenerationTime
	}
	if data.TotalTime != nil {
		updates["total_time"] = *data.TotalTime
	}

	return r.update(id, updates)
}

func (r *screeningRepository) UpdateError(id uuid.UUID, errorMsg string) error {
	return r.update(id, map[string]interface{}{
		"status":        models.StatusFailed,
		"error_message": errorMsg,
		"updated_at":    time.Now(),
	})
}

func (r *screeningRepository) update(id uuid.UUID, updates map[string]interface{}) error {
	result := r.db.Model(&models.Screening{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update screening: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("screening %s: %w", id, ErrNotFound)
	}

	return nil
}
