package placement

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ledger entry kinds. The signed amount on an entry is the delta applied to
// the student's remaining pool; moves between buckets carry amount 0 and are
// distinguished by kind, so all three buckets replay exactly from the ledger.
const (
	KindConsume = "CONSUME" // remaining -1, engaged +1 (apply)
	KindSettle  = "SETTLE"  // engaged -1, consumed +1 (acceptance)
	KindRelease = "RELEASE" // engaged -1 (rejection/cancellation; token destroyed)
	KindRefund  = "REFUND"  // remaining +1, engaged -1 (withdrawal, quota closure)
	KindGrant   = "GRANT"   // remaining +n (allocation)
)

// DeriveBalances replays a student's ledger into token buckets. The cached
// columns on the student row must always equal the replayed result.
func DeriveBalances(entries []TokenEntry) Balances {
	var b Balances
	for _, e := range entries {
		switch e.Kind {
		case KindConsume:
			b.Remaining--
			b.Engaged++
		case KindSettle:
			b.Engaged--
			b.Consumed++
		case KindRelease:
			b.Engaged--
		case KindRefund:
			b.Remaining += e.Amount
			b.Engaged -= e.Amount
		case KindGrant:
			b.Remaining += e.Amount
		}
	}
	return b
}

// Every ledger mutation below runs inside the caller's transaction, locks the
// student row, applies the bucket delta, and appends the immutable entry. A
// failure anywhere is fatal to the enclosing transaction so the cached
// balance and the ledger can never diverge.

func ledgerConsume(tx *gorm.DB, studentID uuid.UUID, reason string) (remaining int, err error) {
	st, err := lockStudentRow(tx, studentID)
	if err != nil {
		return 0, err
	}
	if st.TokensRemaining <= 0 {
		return 0, ErrInsufficientTokens
	}
	delta := bucketDelta{remaining: -1, engaged: +1}
	if err := applyEntry(tx, st, delta, -1, KindConsume, reason); err != nil {
		return 0, err
	}
	return st.TokensRemaining - 1, nil
}

func ledgerSettle(tx *gorm.DB, studentID uuid.UUID, reason string) error {
	st, err := lockStudentRow(tx, studentID)
	if err != nil {
		return err
	}
	if st.TokensEngaged <= 0 {
		return fmt.Errorf("ledger: student %s has no engaged token to settle", studentID)
	}
	return applyEntry(tx, st, bucketDelta{engaged: -1, consumed: +1}, 0, KindSettle, reason)
}

func ledgerRelease(tx *gorm.DB, studentID uuid.UUID, reason string) error {
	st, err := lockStudentRow(tx, studentID)
	if err != nil {
		return err
	}
	if st.TokensEngaged <= 0 {
		return fmt.Errorf("ledger: student %s has no engaged token to release", studentID)
	}
	return applyEntry(tx, st, bucketDelta{engaged: -1}, 0, KindRelease, reason)
}

func ledgerRefund(tx *gorm.DB, studentID uuid.UUID, reason string) error {
	st, err := lockStudentRow(tx, studentID)
	if err != nil {
		return err
	}
	if st.TokensEngaged <= 0 {
		return fmt.Errorf("ledger: student %s has no engaged token to refund", studentID)
	}
	return applyEntry(tx, st, bucketDelta{remaining: +1, engaged: -1}, 1, KindRefund, reason)
}

func ledgerGrant(tx *gorm.DB, studentID uuid.UUID, amount int, reason string) error {
	if amount <= 0 {
		return errors.New("ledger: grant amount must be positive")
	}
	st, err := lockStudentRow(tx, studentID)
	if err != nil {
		return err
	}
	return applyEntry(tx, st, bucketDelta{remaining: amount}, amount, KindGrant, reason)
}

type bucketDelta struct {
	remaining int
	engaged   int
	consumed  int
}

func lockStudentRow(tx *gorm.DB, studentID uuid.UUID) (studentModel, error) {
	var st studentModel
	if err := lockForUpdate(tx).First(&st, "id = ?", studentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return studentModel{}, ErrNotFound
		}
		return studentModel{}, err
	}
	return st, nil
}

func applyEntry(tx *gorm.DB, st studentModel, d bucketDelta, amount int, kind, reason string) error {
	updates := map[string]any{
		"tokens_remaining": st.TokensRemaining + d.remaining,
		"tokens_engaged":   st.TokensEngaged + d.engaged,
		"tokens_consumed":  st.TokensConsumed + d.consumed,
	}
	if err := tx.Model(&studentModel{}).Where("id = ?", st.ID).Updates(updates).Error; err != nil {
		return err
	}

	entry := tokenEntryModel{
		ID:        uuid.New(),
		StudentID: st.ID,
		Amount:    amount,
		Kind:      kind,
		Reason:    reason,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return err
	}

	metricTokenEntries.WithLabelValues(kind).Inc()
	return nil
}
