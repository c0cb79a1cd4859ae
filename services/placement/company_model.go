package placement

import (
	"time"

	"github.com/google/uuid"
)

type companyModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name           string    `gorm:"type:text;not null"`
	InterviewQuota int       `gorm:"not null;default:0"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (companyModel) TableName() string { return "companies" }

// roomName derives the single interview room a company owns for the whole
// placement window.
func (c companyModel) roomName() string {
	if c.Name == "" {
		return "Room " + c.ID.String()[:8]
	}
	return "Room " + c.Name
}
