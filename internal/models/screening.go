package models

import (
	"time"

	"github.com/google/uuid"
)

type ScreeningStatus string

const (
	StatusReceived               ScreeningStatus = "received"
	StatusFileSaved              ScreeningStatus = "file_saved"
	StatusParsed                 ScreeningStatus = "parsed"
	StatusRoleRetrieved          ScreeningStatus = "role_retrieved"
	StatusJobDescriptionResolved ScreeningStatus = "job_description_resolved"
	StatusFeedbackGenerated      ScreeningStatus = "feedback_generated"
	StatusCompleted              ScreeningStatus = "completed"
	StatusFailed                 ScreeningStatus = "failed"
)

// Screening tracks one request through the pipeline. Feedback text is not stored.
type Screening struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	RequestedRole  string          `gorm:"type:text" json:"requested_role"`
	Status         ScreeningStatus `gorm:"not null;default:'received'" json:"status"`
	RoleMatched    *string         `gorm:"type:text" json:"role_matched,omitempty"`
	Similarity     *float64        `json:"similarity,omitempty"`
	Fallback       bool            `gorm:"not null;default:false" json:"fallback"`
	ParseTime      *float64        `json:"parse_time,omitempty"`
	RetrievalTime  *float64        `json:"retrieval_time,omitempty"`
	GenerationTime *float64        `json:"generation_time,omitempty"`
	TotalTime      *float64        `json:"total_time,omitempty"`
	ErrorMessage   *string         `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt      time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Screening) TableName() string {
	return "screenings"
}
