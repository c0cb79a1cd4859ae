package placement

import (
	"time"

	"github.com/google/uuid"
)

type tokenEntryModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;index"`
	Amount    int       `gorm:"not null"`
	Kind      string    `gorm:"type:text;not null"`
	Reason    string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (tokenEntryModel) TableName() string { return "token_entries" }

func (t tokenEntryModel) toAPI() TokenEntry {
	return TokenEntry{
		ID:        t.ID,
		StudentID: t.StudentID,
		Amount:    t.Amount,
		Kind:      t.Kind,
		Reason:    t.Reason,
		CreatedAt: t.CreatedAt,
	}
}
