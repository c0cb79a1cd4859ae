package placement

import "errors"

// Validation failures are detected before any lock is taken and leave no
// side effects. Capacity failures are detected inside the lock scope and roll
// back the whole transaction.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("resource belongs to another account")
	ErrInsufficientTokens = errors.New("no application tokens remaining")
	ErrJobInactive        = errors.New("job is no longer active")
	ErrJobQuotaFull       = errors.New("job has reached its application quota")
	ErrAlreadyApplied     = errors.New("student already applied to this job")
	ErrAlreadyInvited     = errors.New("student already invited to this job")
	ErrQuotaExceeded      = errors.New("company interview quota reached")
	ErrNoSlotAvailable    = errors.New("no interview slot available in the placement window")
	ErrInviteQuotaFull    = errors.New("job has reached its invitation cap")
	ErrAlreadyProcessed   = errors.New("already processed")
)
