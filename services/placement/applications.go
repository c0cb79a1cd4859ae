package placement

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Apply creates a PENDING application for the student, consuming one token.
// Gate order matches the capacity rules: token available, job active, job
// application quota, then duplicate application/invitation.
func (e *Engine) Apply(ctx context.Context, studentID, jobID uuid.UUID) (ApplyResult, error) {
	release := e.locks.Acquire(lockStudent(studentID), lockJob(jobID))
	defer release()

	var result ApplyResult
	var companyID uuid.UUID

	err := e.orm(ctx).Transaction(func(tx *gorm.DB) error {
		student, err := lockStudentRow(tx, studentID)
		if err != nil {
			return err
		}
		if student.TokensRemaining <= 0 {
			return ErrInsufficientTokens
		}

		var job jobModel
		if err := tx.First(&job, "id = ?", jobID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !job.IsActive {
			return ErrJobInactive
		}
		companyID = job.CompanyID

		applied, err := applicationCount(tx, jobID)
		if err != nil {
			return err
		}
		if applied >= int64(job.Quota) {
			return ErrJobQuotaFull
		}

		if err := ensureNoDuplicate(tx, jobID, studentID); err != nil {
			return err
		}

		remaining, err := ledgerConsume(tx, studentID, "Application: "+job.Title)
		if err != nil {
			return err
		}

		app := applicationModel{
			ID:        uuid.New(),
			JobID:     jobID,
			StudentID: studentID,
			Status:    StatusPending,
			Source:    SourceApplication,
		}
		if err := tx.Create(&app).Error; err != nil {
			return err
		}

		err = e.notify(tx, job.CompanyID, "application", "application_received.tmpl",
			map[string]any{"StudentName": student.FullName, "JobTitle": job.Title}, &app.ID)
		if err != nil {
			return err
		}
		err = e.audit(tx, studentID, "job.apply", app.ID.String(),
			map[string]any{"job_id": jobID.String()})
		if err != nil {
			return err
		}

		result = ApplyResult{ApplicationID: app.ID, Status: StatusPending, TokensRemaining: remaining}
		return nil
	})
	if err != nil {
		return ApplyResult{}, err
	}

	metricApplications.Inc()
	e.publishJSON(ctx, applicationCreatedTopic, map[string]any{
		"application_id": result.ApplicationID,
		"job_id":         jobID,
		"company_id":     companyID,
		"student_id":     studentID,
	})

	return result, nil
}

func ensureNoDuplicate(tx *gorm.DB, jobID, studentID uuid.UUID) error {
	var n int64
	err := tx.Model(&applicationModel{}).
		Where("job_id = ? AND student_id = ?", jobID, studentID).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrAlreadyApplied
	}

	err = tx.Model(&invitationModel{}).
		Where("job_id = ? AND student_id = ?", jobID, studentID).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrAlreadyInvited
	}
	return nil
}

// Decide applies a company's ruling on a pending application. Acceptance
// recomputes the company quota under the company and student leases, books
// the earliest free slot, settles the student's engaged token, and, when the
// acceptance exhausts the quota, cascades a bulk rejection of every other
// pending applicant in the same transaction.
func (e *Engine) Decide(ctx context.Context, applicationID, companyID uuid.UUID, decision Decision) error {
	switch decision {
	case DecisionAccepted, DecisionRejected, DecisionCancelled:
	default:
		return fmt.Errorf("unknown decision %q", decision)
	}

	// The student lease key is only known once the application row is read,
	// so peek first and re-check state under the lock.
	var peek applicationModel
	if err := e.orm(ctx).First(&peek, "id = ?", applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	release := e.locks.Acquire(lockCompany(companyID), lockStudent(peek.StudentID))
	defer release()

	var (
		scheduled *interviewModel
		closed    []closedApplication
		studentID uuid.UUID
	)

	err := e.orm(ctx).Transaction(func(tx *gorm.DB) error {
		var app applicationModel
		if err := lockForUpdate(tx).First(&app, "id = ?", applicationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var job jobModel
		if err := tx.First(&job, "id = ?", app.JobID).Error; err != nil {
			return err
		}
		if job.CompanyID != companyID {
			return ErrUnauthorized
		}
		if app.Status != StatusPending {
			return ErrAlreadyProcessed
		}
		studentID = app.StudentID

		var company companyModel
		if err := tx.First(&company, "id = ?", companyID).Error; err != nil {
			return err
		}

		if decision != DecisionAccepted {
			if err := ledgerRelease(tx, app.StudentID, "Application "+string(decision)+": "+job.Title); err != nil {
				return err
			}
			if err := tx.Model(&app).Update("status", string(decision)).Error; err != nil {
				return err
			}
			if decision == DecisionRejected {
				err := e.notify(tx, app.StudentID, "application", "application_rejected.tmpl",
					map[string]any{"CompanyName": company.Name, "JobTitle": job.Title}, &app.ID)
				if err != nil {
					return err
				}
			}
			return e.audit(tx, companyID, "application.decide", app.ID.String(),
				map[string]any{"decision": string(decision)})
		}

		accepted, err := acceptedInterviewCount(tx, companyID)
		if err != nil {
			return err
		}
		if accepted >= int64(company.InterviewQuota) {
			return ErrQuotaExceeded
		}

		// Hold the student row lock across the calendar read; a concurrent
		// acceptance at another company must block here rather than read a
		// stale busy set and pick the same slot.
		if _, err := lockStudentRow(tx, app.StudentID); err != nil {
			return err
		}

		slot, room, err := e.findSlot(tx, company, app.StudentID)
		if err != nil {
			return err
		}

		appID := app.ID
		iv := interviewModel{
			ID:            uuid.New(),
			CompanyID:     companyID,
			StudentID:     app.StudentID,
			ApplicationID: &appID,
			Title:         "Interview: " + job.Title,
			DateTime:      slot,
			Room:          room,
			Status:        StatusAccepted,
			Source:        SourceApplication,
		}
		if err := tx.Create(&iv).Error; err != nil {
			return err
		}

		if err := ledgerSettle(tx, app.StudentID, "Interview accepted: "+job.Title); err != nil {
			return err
		}
		if err := tx.Model(&app).Update("status", StatusAccepted).Error; err != nil {
			return err
		}

		// Reaching the quota closes every other pending application for this
		// company, atomically with the acceptance that triggered it.
		if accepted+1 >= int64(company.InterviewQuota) {
			closed, err = e.closeCompanyOffers(tx, companyID)
			if err != nil {
				return err
			}
		}

		err = e.notify(tx, app.StudentID, "application", "application_accepted.tmpl",
			map[string]any{"CompanyName": company.Name, "JobTitle": job.Title}, &appID)
		if err != nil {
			return err
		}
		err = e.notify(tx, app.StudentID, "interview", "interview_scheduled.tmpl",
			map[string]any{"CompanyName": company.Name, "DateTime": slot, "Room": room}, &iv.ID)
		if err != nil {
			return err
		}
		err = e.audit(tx, companyID, "application.decide", app.ID.String(),
			map[string]any{"decision": string(decision), "interview_id": iv.ID.String()})
		if err != nil {
			return err
		}

		scheduled = &iv
		return nil
	})
	if err != nil {
		return err
	}

	metricDecisions.WithLabelValues(string(decision)).Inc()
	e.publishJSON(ctx, applicationDecidedTopic, map[string]any{
		"application_id": applicationID,
		"company_id":     companyID,
		"student_id":     studentID,
		"decision":       string(decision),
	})
	if scheduled != nil {
		metricInterviews.Inc()
		e.publishJSON(ctx, interviewScheduledTopic, map[string]any{
			"interview_id": scheduled.ID,
			"company_id":   companyID,
			"student_id":   scheduled.StudentID,
			"date_time":    scheduled.DateTime,
			"room":         scheduled.Room,
		})
	}
	for _, c := range closed {
		metricQuotaClosures.Inc()
		e.publishJSON(ctx, applicationDecidedTopic, map[string]any{
			"application_id": c.ApplicationID,
			"company_id":     companyID,
			"student_id":     c.StudentID,
			"decision":       StatusRejectedQuota,
		})
	}

	return nil
}

// Withdraw deletes the student's application. A still-pending application
// refunds its token; decided applications leave the ledger untouched.
func (e *Engine) Withdraw(ctx context.Context, applicationID, studentID uuid.UUID) error {
	release := e.locks.Acquire(lockStudent(studentID))
	defer release()

	err := e.orm(ctx).Transaction(func(tx *gorm.DB) error {
		var app applicationModel
		err := lockForUpdate(tx).
			First(&app, "id = ? AND student_id = ?", applicationID, studentID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var job jobModel
		if err := tx.First(&job, "id = ?", app.JobID).Error; err != nil {
			return err
		}

		if err := tx.Delete(&applicationModel{}, "id = ?", app.ID).Error; err != nil {
			return err
		}

		if app.Status == StatusPending {
			if err := ledgerRefund(tx, studentID, "Application withdrawn: "+job.Title); err != nil {
				return err
			}

			var student studentModel
			if err := tx.First(&student, "id = ?", studentID).Error; err != nil {
				return err
			}
			err = e.notify(tx, job.CompanyID, "application", "application_withdrawn.tmpl",
				map[string]any{"StudentName": student.FullName, "JobTitle": job.Title}, &app.ID)
			if err != nil {
				return err
			}
		}

		return e.audit(tx, studentID, "application.withdraw", app.ID.String(),
			map[string]any{"job_id": app.JobID.String(), "was_pending": app.Status == StatusPending})
	})
	if err != nil {
		return err
	}

	e.publishJSON(ctx, applicationWithdrawnTopic, map[string]any{
		"application_id": applicationID,
		"student_id":     studentID,
	})
	return nil
}
