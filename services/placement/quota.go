package placement

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Quota counters are recomputed from the authoritative tables inside the lock
// scope rather than cached, so a stored counter can never drift from the
// interview calendar.

func acceptedInterviewCount(tx *gorm.DB, companyID uuid.UUID) (int64, error) {
	var n int64
	err := tx.Model(&interviewModel{}).
		Where("company_id = ? AND status IN ?", companyID, []string{StatusAccepted, StatusCompleted}).
		Count(&n).Error
	return n, err
}

func applicationCount(tx *gorm.DB, jobID uuid.UUID) (int64, error) {
	var n int64
	err := tx.Model(&applicationModel{}).Where("job_id = ?", jobID).Count(&n).Error
	return n, err
}

func acceptedApplicationCount(tx *gorm.DB, jobID uuid.UUID) (int64, error) {
	var n int64
	err := tx.Model(&applicationModel{}).
		Where("job_id = ? AND status = ?", jobID, StatusAccepted).
		Count(&n).Error
	return n, err
}

func pendingInvitationCount(tx *gorm.DB, jobID uuid.UUID) (int64, error) {
	var n int64
	err := tx.Model(&invitationModel{}).
		Where("job_id = ? AND status = ?", jobID, StatusPending).
		Count(&n).Error
	return n, err
}

type closedApplication struct {
	ApplicationID uuid.UUID
	StudentID     uuid.UUID
	JobTitle      string
}

// closeCompanyOffers bulk-rejects every remaining pending application for any
// job of the company, refunding one token to each applicant and notifying
// them. It runs inside the transaction of the acceptance that exhausted the
// quota, so the cascade commits atomically with its trigger.
func (e *Engine) closeCompanyOffers(tx *gorm.DB, companyID uuid.UUID) ([]closedApplication, error) {
	var rows []struct {
		ID        uuid.UUID
		StudentID uuid.UUID
		Title     string
	}
	err := tx.Model(&applicationModel{}).
		Select("applications.id, applications.student_id, jobs.title").
		Joins("JOIN jobs ON jobs.id = applications.job_id").
		Where("jobs.company_id = ? AND applications.status = ?", companyID, StatusPending).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	closed := make([]closedApplication, 0, len(rows))
	for _, row := range rows {
		err := tx.Model(&applicationModel{}).
			Where("id = ?", row.ID).
			Update("status", StatusRejectedQuota).Error
		if err != nil {
			return nil, err
		}

		if err := ledgerRefund(tx, row.StudentID, "Offer closed, quota reached: "+row.Title); err != nil {
			return nil, err
		}

		appID := row.ID
		err = e.notify(tx, row.StudentID, "closure", "quota_reached.tmpl",
			map[string]any{"JobTitle": row.Title}, &appID)
		if err != nil {
			return nil, err
		}

		closed = append(closed, closedApplication{
			ApplicationID: row.ID,
			StudentID:     row.StudentID,
			JobTitle:      row.Title,
		})
	}

	return closed, nil
}
