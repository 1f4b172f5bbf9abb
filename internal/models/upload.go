package models

import (
	"time"

	"github.com/google/uuid"
)

// Upload is a résumé file staged on disk. Its ID is the screening ID that produced it.
type Upload struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	OriginalFilename string    `gorm:"type:text" json:"original_filename"`
	StoredFilename   string    `gorm:"type:text" json:"stored_filename"`
	FilePath         string    `gorm:"type:text" json:"file_path"`
	Size             int64     `json:"size"`
	CreatedAt        time.Time `gorm:"type:timestamp;default:now();index" json:"created_at"`
}

func (Upload) TableName() string {
	return "uploads"
}
