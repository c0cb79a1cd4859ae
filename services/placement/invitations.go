package placement

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invite creates a PENDING invitation from a company to a student. The
// invitation path consumes no token and is gated only by the soft cap: the
// job's pending invitations plus its accepted applications must stay below
// quota plus the invitation headroom.
func (e *Engine) Invite(ctx context.Context, companyID, studentID, jobID uuid.UUID) (Invitation, error) {
	release := e.locks.Acquire(lockCompany(companyID), lockJob(jobID))
	defer release()

	var created invitationModel

	err := e.orm(ctx).Transaction(func(tx *gorm.DB) error {
		var job jobModel
		err := tx.First(&job, "id = ? AND company_id = ?", jobID, companyID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !job.IsActive {
			return ErrJobInactive
		}

		var student studentModel
		if err := tx.First(&student, "id = ?", studentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := ensureNoDuplicate(tx, jobID, studentID); err != nil {
			return err
		}

		pending, err := pendingInvitationCount(tx, jobID)
		if err != nil {
			return err
		}
		accepted, err := acceptedApplicationCount(tx, jobID)
		if err != nil {
			return err
		}
		if pending+accepted >= int64(job.Quota+inviteHeadroom) {
			return ErrInviteQuotaFull
		}

		created = invitationModel{
			ID:        uuid.New(),
			CompanyID: companyID,
			StudentID: studentID,
			JobID:     jobID,
			Status:    StatusPending,
			Message:   "We would like to meet you.",
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		var company companyModel
		if err := tx.First(&company, "id = ?", companyID).Error; err != nil {
			return err
		}
		err = e.notify(tx, studentID, "invitation", "invitation_received.tmpl",
			map[string]any{"CompanyName": company.Name, "JobTitle": job.Title}, &created.ID)
		if err != nil {
			return err
		}

		return e.audit(tx, companyID, "invitation.create", created.ID.String(),
			map[string]any{"student_id": studentID.String(), "job_id": jobID.String()})
	})
	if err != nil {
		return Invitation{}, err
	}

	e.publishJSON(ctx, invitationCreatedTopic, map[string]any{
		"invitation_id": created.ID,
		"company_id":    companyID,
		"student_id":    studentID,
		"job_id":        jobID,
	})
	return created.toAPI(), nil
}

// AcceptInvitation turns a pending invitation into an already-accepted
// application with a booked interview. The hard job quota is not re-checked
// here: the invitation path is bounded only by the soft cap enforced at
// invite time.
func (e *Engine) AcceptInvitation(ctx context.Context, invitationID, studentID uuid.UUID) error {
	// The company lease key is only known once the invitation row is read, so
	// peek first and re-check state under the lock.
	var peek invitationModel
	err := e.orm(ctx).First(&peek, "id = ? AND student_id = ?", invitationID, studentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	release := e.locks.Acquire(lockCompany(peek.CompanyID), lockStudent(studentID))
	defer release()

	var scheduled interviewModel

	err = e.orm(ctx).Transaction(func(tx *gorm.DB) error {
		var inv invitationModel
		err := lockForUpdate(tx).
			First(&inv, "id = ? AND student_id = ?", invitationID, studentID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if inv.Status != StatusPending {
			return ErrAlreadyProcessed
		}

		var job jobModel
		if err := tx.First(&job, "id = ?", inv.JobID).Error; err != nil {
			return err
		}
		var company companyModel
		if err := tx.First(&company, "id = ?", inv.CompanyID).Error; err != nil {
			return err
		}

		app := applicationModel{
			ID:        uuid.New(),
			JobID:     inv.JobID,
			StudentID: studentID,
			Status:    StatusAccepted,
			Source:    SourceInvitation,
		}
		if err := tx.Create(&app).Error; err != nil {
			return err
		}

		// Hold the student row lock across the calendar read, as Decide does.
		if _, err := lockStudentRow(tx, studentID); err != nil {
			return err
		}

		slot, room, err := e.findSlot(tx, company, studentID)
		if err != nil {
			return err
		}

		appID := app.ID
		scheduled = interviewModel{
			ID:            uuid.New(),
			CompanyID:     inv.CompanyID,
			StudentID:     studentID,
			ApplicationID: &appID,
			Title:         "Interview: " + job.Title,
			DateTime:      slot,
			Room:          room,
			Status:        StatusAccepted,
			Source:        SourceInvitation,
		}
		if err := tx.Create(&scheduled).Error; err != nil {
			return err
		}

		if err := tx.Model(&inv).Update("status", StatusAccepted).Error; err != nil {
			return err
		}

		var student studentModel
		if err := tx.First(&student, "id = ?", studentID).Error; err != nil {
			return err
		}
		err = e.notify(tx, inv.CompanyID, "invitation", "invitation_accepted.tmpl",
			map[string]any{
				"StudentName": student.FullName,
				"JobTitle":    job.Title,
				"DateTime":    slot,
				"Room":        room,
			}, &scheduled.ID)
		if err != nil {
			return err
		}

		return e.audit(tx, studentID, "invitation.accept", inv.ID.String(),
			map[string]any{"interview_id": scheduled.ID.String()})
	})
	if err != nil {
		return err
	}

	metricInterviews.Inc()
	e.publishJSON(ctx, invitationDecidedTopic, map[string]any{
		"invitation_id": invitationID,
		"student_id":    studentID,
		"status":        StatusAccepted,
	})
	e.publishJSON(ctx, interviewScheduledTopic, map[string]any{
		"interview_id": scheduled.ID,
		"company_id":   scheduled.CompanyID,
		"student_id":   studentID,
		"date_time":    scheduled.DateTime,
		"room":         scheduled.Room,
	})
	return nil
}

// RejectInvitation marks a pending invitation rejected. No ledger effect.
func (e *Engine) RejectInvitation(ctx context.Context, invitationID, studentID uuid.UUID) error {
	err := e.orm(ctx).Transaction(func(tx *gorm.DB) error {
		var inv invitationModel
		err := lockForUpdate(tx).
			First(&inv, "id = ? AND student_id = ?", invitationID, studentID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if inv.Status != StatusPending {
			return ErrAlreadyProcessed
		}

		if err := tx.Model(&inv).Update("status", StatusRejected).Error; err != nil {
			return err
		}

		var job jobModel
		if err := tx.First(&job, "id = ?", inv.JobID).Error; err != nil {
			return err
		}
		var student studentModel
		if err := tx.First(&student, "id = ?", studentID).Error; err != nil {
			return err
		}
		err = e.notify(tx, inv.CompanyID, "invitation", "invitation_rejected.tmpl",
			map[string]any{"StudentName": student.FullName, "JobTitle": job.Title}, &inv.ID)
		if err != nil {
			return err
		}

		return e.audit(tx, studentID, "invitation.reject", inv.ID.String(), nil)
	})
	if err != nil {
		return err
	}

	e.publishJSON(ctx, invitationDecidedTopic, map[string]any{
		"invitation_id": invitationID,
		"student_id":    studentID,
		"status":        StatusRejected,
	})
	return nil
}
