package placement

import (
	"time"

	"github.com/google/uuid"
)

type studentModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	FullName        string    `gorm:"type:text;not null"`
	TokensRemaining int       `gorm:"not null;default:0"`
	TokensEngaged   int       `gorm:"not null;default:0"`
	TokensConsumed  int       `gorm:"not null;default:0"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

func (studentModel) TableName() string { return "students" }

func (s studentModel) balances() Balances {
	return Balances{
		Remaining: s.TokensRemaining,
		Engaged:   s.TokensEngaged,
		Consumed:  s.TokensConsumed,
	}
}
