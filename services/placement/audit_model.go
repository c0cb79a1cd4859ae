package placement

import (
	"time"

	"gorm.io/datatypes"
)

type auditModel struct {
	ID      int64             `gorm:"primaryKey;autoIncrement"`
	Actor   string            `gorm:"type:text;not null"`
	Action  string            `gorm:"type:text;not null"`
	Obj     string            `gorm:"type:text"`
	Details datatypes.JSONMap
	At      time.Time `gorm:"autoCreateTime"`
}

func (auditModel) TableName() string { return "audit" }
