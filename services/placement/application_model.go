package placement

import (
	"time"

	"github.com/google/uuid"
)

type applicationModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	JobID     uuid.UUID `gorm:"type:uuid;not null;index"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;index"`
	Status    string    `gorm:"type:text;not null;index"`
	Source    string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (applicationModel) TableName() string { return "applications" }

func (a applicationModel) toAPI() Application {
	return Application{
		ID:        a.ID,
		JobID:     a.JobID,
		StudentID: a.StudentID,
		Status:    a.Status,
		Source:    a.Source,
		CreatedAt: a.CreatedAt,
	}
}
