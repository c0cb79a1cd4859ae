package placement

import (
	"time"

	"github.com/google/uuid"
)

type notificationModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Type      string     `gorm:"type:text;not null"`
	Title     string     `gorm:"type:text;not null"`
	Message   string     `gorm:"type:text"`
	RelatedID *uuid.UUID `gorm:"type:uuid"`
	Read      bool       `gorm:"not null;default:false"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
}

func (notificationModel) TableName() string { return "notifications" }
