package placement

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"placementd/pkg/db"
)

// Read-side queries for the request layer. List endpoints go through the ORM;
// the joined report queries use the pgx pool directly.

// StudentApplications returns a student's applications, newest first.
func (e *Engine) StudentApplications(ctx context.Context, studentID uuid.UUID) ([]Application, error) {
	var rows []applicationModel
	err := e.orm(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	apps := make([]Application, 0, len(rows))
	for _, row := range rows {
		apps = append(apps, row.toAPI())
	}
	return apps, nil
}

// StudentInvitations returns the invitations addressed to a student.
func (e *Engine) StudentInvitations(ctx context.Context, studentID uuid.UUID) ([]Invitation, error) {
	var rows []invitationModel
	err := e.orm(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	invs := make([]Invitation, 0, len(rows))
	for _, row := range rows {
		invs = append(invs, row.toAPI())
	}
	return invs, nil
}

// StudentInterviews returns a student's non-cancelled interviews in calendar order.
func (e *Engine) StudentInterviews(ctx context.Context, studentID uuid.UUID) ([]Interview, error) {
	var rows []interviewModel
	err := e.orm(ctx).
		Where("student_id = ? AND status <> ?", studentID, StatusCancelled).
		Order("date_time ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	ivs := make([]Interview, 0, len(rows))
	for _, row := range rows {
		ivs = append(ivs, row.toAPI())
	}
	return ivs, nil
}

// ScheduleEntry is one row of a company's interview agenda.
type ScheduleEntry struct {
	InterviewID uuid.UUID `db:"interview_id" json:"interview_id"`
	StudentName string    `db:"student_name" json:"student_name"`
	DateTime    time.Time `db:"date_time" json:"date_time"`
	Room        string    `db:"room" json:"room"`
	Status      string    `db:"status" json:"status"`
	Source      string    `db:"source" json:"source"`
}

// CompanySchedule returns a company's agenda for the placement window,
// ordered by slot time. Requires the pgx pool.
func (e *Engine) CompanySchedule(ctx context.Context, companyID uuid.UUID) ([]ScheduleEntry, error) {
	if e.store.DB == nil {
		return nil, errors.New("company schedule requires a postgres pool")
	}

	var entries []ScheduleEntry
	err := db.Select(ctx, e.store.DB, &entries, `
		SELECT i.id AS interview_id, s.full_name AS student_name,
		       i.date_time, i.room, i.status, i.source
		FROM interviews i
		JOIN students s ON s.id = i.student_id
		WHERE i.company_id = $1 AND i.status <> $2
		ORDER BY i.date_time ASC`,
		companyID, StatusCancelled)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// CompanyUsage summarises a company's quota consumption.
type CompanyUsage struct {
	CompanyID      uuid.UUID `db:"company_id" json:"company_id"`
	InterviewQuota int       `db:"interview_quota" json:"interview_quota"`
	Booked         int       `db:"booked" json:"booked"`
	PendingApps    int       `db:"pending_apps" json:"pending_apps"`
}

// CompanyQuotaUsage reports booked interviews against the company's quota.
// Requires the pgx pool.
func (e *Engine) CompanyQuotaUsage(ctx context.Context, companyID uuid.UUID) (CompanyUsage, error) {
	if e.store.DB == nil {
		return CompanyUsage{}, errors.New("quota usage requires a postgres pool")
	}

	var usage CompanyUsage
	err := db.Get(ctx, e.store.DB, &usage, `
		SELECT c.id AS company_id, c.interview_quota,
		       (SELECT COUNT(*) FROM interviews i
		        WHERE i.company_id = c.id AND i.status IN ($2, $3)) AS booked,
		       (SELECT COUNT(*) FROM applications a
		        JOIN jobs j ON j.id = a.job_id
		        WHERE j.company_id = c.id AND a.status = $4) AS pending_apps
		FROM companies c
		WHERE c.id = $1`,
		companyID, StatusAccepted, StatusCompleted, StatusPending)
	if err != nil {
		return CompanyUsage{}, err
	}
	return usage, nil
}
