package placement

import (
	"time"

	"github.com/google/uuid"
)

// Application and interview statuses. Transitions are forward-only: a PENDING
// application moves to exactly one terminal status, or is deleted by
// withdrawal.
const (
	StatusPending       = "PENDING"
	StatusAccepted      = "ACCEPTED"
	StatusRejected      = "REJECTED"
	StatusRejectedQuota = "REJECTED_QUOTA"
	StatusCancelled     = "CANCELLED"
	StatusCompleted     = "COMPLETED"
)

// Entry paths into the interview pipeline.
const (
	SourceApplication = "APPLICATION"
	SourceInvitation  = "INVITATION"
)

// Decision is a company's ruling on a pending application.
type Decision string

const (
	DecisionAccepted  Decision = StatusAccepted
	DecisionRejected  Decision = StatusRejected
	DecisionCancelled Decision = StatusCancelled
)

// Application is a student's entry for a job.
type Application struct {
	ID        uuid.UUID `json:"id"`
	JobID     uuid.UUID `json:"job_id"`
	StudentID uuid.UUID `json:"student_id"`
	Status    string    `json:"status"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// Interview is a booked slot; it exists only for accepted applications and
// accepted invitations.
type Interview struct {
	ID            uuid.UUID  `json:"id"`
	CompanyID     uuid.UUID  `json:"company_id"`
	StudentID     uuid.UUID  `json:"student_id"`
	ApplicationID *uuid.UUID `json:"application_id,omitempty"`
	Title         string     `json:"title"`
	DateTime      time.Time  `json:"date_time"`
	Room          string     `json:"room"`
	Status        string     `json:"status"`
	Source        string     `json:"source"`
}

// Invitation is a company-initiated entry into the pipeline.
type Invitation struct {
	ID        uuid.UUID `json:"id"`
	CompanyID uuid.UUID `json:"company_id"`
	StudentID uuid.UUID `json:"student_id"`
	JobID     uuid.UUID `json:"job_id"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenEntry is one immutable row of a student's token ledger.
type TokenEntry struct {
	ID        uuid.UUID `json:"id"`
	StudentID uuid.UUID `json:"student_id"`
	Amount    int       `json:"amount"`
	Kind      string    `json:"kind"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// Balances are a student's cached token buckets.
type Balances struct {
	Remaining int `json:"remaining"`
	Engaged   int `json:"engaged"`
	Consumed  int `json:"consumed"`
}

// ApplyResult is returned to the request layer after a successful application.
type ApplyResult struct {
	ApplicationID   uuid.UUID `json:"application_id"`
	Status          string    `json:"status"`
	TokensRemaining int       `json:"tokens_remaining"`
}
