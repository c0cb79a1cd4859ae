package placement

import (
	"time"

	"github.com/google/uuid"
)

type invitationModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;index"`
	JobID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Status    string    `gorm:"type:text;not null"`
	Message   string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (invitationModel) TableName() string { return "invitations" }

func (i invitationModel) toAPI() Invitation {
	return Invitation{
		ID:        i.ID,
		CompanyID: i.CompanyID,
		StudentID: i.StudentID,
		JobID:     i.JobID,
		Status:    i.Status,
		Message:   i.Message,
		CreatedAt: i.CreatedAt,
	}
}
