package placement

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GrantTokens credits a student's remaining pool through the ledger. Used by
// seeding and by administrative adjustments.
func (e *Engine) GrantTokens(ctx context.Context, studentID uuid.UUID, amount int, reason string) error {
	release := e.locks.Acquire(lockStudent(studentID))
	defer release()

	return e.orm(ctx).Transaction(func(tx *gorm.DB) error {
		return ledgerGrant(tx, studentID, amount, reason)
	})
}

// StudentBalances returns the cached token buckets for a student.
func (e *Engine) StudentBalances(ctx context.Context, studentID uuid.UUID) (Balances, error) {
	var st studentModel
	if err := e.orm(ctx).First(&st, "id = ?", studentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Balances{}, ErrNotFound
		}
		return Balances{}, err
	}
	return st.balances(), nil
}

// TokenHistory returns a student's ledger, newest first.
func (e *Engine) TokenHistory(ctx context.Context, studentID uuid.UUID) ([]TokenEntry, error) {
	var rows []tokenEntryModel
	err := e.orm(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]TokenEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toAPI())
	}
	return entries, nil
}
