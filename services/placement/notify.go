package placement

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification titles by type; message bodies come from the render templates.
var notificationTitles = map[string]string{
	"application": "Application update",
	"interview":   "Interview scheduled",
	"invitation":  "Interview invitation",
	"closure":     "Offer closed",
}

// notify renders the named template and appends a notification row inside the
// caller's transaction, so a rolled-back operation never leaves a stray
// notification behind.
func (e *Engine) notify(tx *gorm.DB, userID uuid.UUID, typ, template string, data any, relatedID *uuid.UUID) error {
	message, err := e.render.Render(template, data)
	if err != nil {
		return err
	}

	title, ok := notificationTitles[typ]
	if !ok {
		title = "Placement update"
	}

	row := notificationModel{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		RelatedID: relatedID,
	}
	return tx.Create(&row).Error
}

// audit appends a system log row for the acting user.
func (e *Engine) audit(tx *gorm.DB, actor uuid.UUID, action, obj string, details map[string]any) error {
	row := auditModel{
		Actor:   actor.String(),
		Action:  action,
		Obj:     obj,
		Details: datatypes.JSONMap(details),
	}
	return tx.Create(&row).Error
}
