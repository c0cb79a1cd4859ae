package placement

import (
	"time"

	"github.com/google/uuid"
)

// Unique partial indexes keep the booking invariant even if a code path ever
// bypasses the lease: one company slot and one student slot per timestamp,
// cancelled rows excluded so their slots can be rebooked.
type interviewModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CompanyID     uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:uniq_interviews_company_slot,where:status <> 'CANCELLED'"`
	StudentID     uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:uniq_interviews_student_slot,where:status <> 'CANCELLED'"`
	ApplicationID *uuid.UUID `gorm:"type:uuid"`
	Title         string     `gorm:"type:text"`
	DateTime      time.Time  `gorm:"not null;index;uniqueIndex:uniq_interviews_company_slot;uniqueIndex:uniq_interviews_student_slot"`
	Room          string     `gorm:"type:text"`
	Status        string     `gorm:"type:text;not null"`
	Source        string     `gorm:"type:text;not null"`
	CreatedAt     time.Time  `gorm:"autoCreateTime"`
}

func (interviewModel) TableName() string { return "interviews" }

func (i interviewModel) toAPI() Interview {
	return Interview{
		ID:            i.ID,
		CompanyID:     i.CompanyID,
		StudentID:     i.StudentID,
		ApplicationID: i.ApplicationID,
		Title:         i.Title,
		DateTime:      i.DateTime,
		Room:          i.Room,
		Status:        i.Status,
		Source:        i.Source,
	}
}
