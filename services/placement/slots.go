package placement

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Window is the placement calendar: a fixed list of interview days, each
// offering the same run of fixed-length slots starting at the day's opening
// time. Every company owns one room for the whole window, so slot contention
// is purely per company and per student.
type Window struct {
	Days        []time.Time
	SlotLength  time.Duration
	SlotsPerDay int
}

// DefaultWindow is the 2026 placement week: five days, 08:00 to 12:00, in
// 20-minute slots.
func DefaultWindow() Window {
	days := make([]time.Time, 0, 5)
	for d := 15; d <= 19; d++ {
		days = append(days, time.Date(2026, time.February, d, 8, 0, 0, 0, time.UTC))
	}
	return Window{Days: days, SlotLength: 20 * time.Minute, SlotsPerDay: 12}
}

// Validate checks that the window describes at least one bookable slot.
func (w Window) Validate() error {
	if len(w.Days) == 0 {
		return fmt.Errorf("window has no days")
	}
	if w.SlotLength <= 0 {
		return fmt.Errorf("slot length must be positive, got %s", w.SlotLength)
	}
	if w.SlotsPerDay <= 0 {
		return fmt.Errorf("slots per day must be positive, got %d", w.SlotsPerDay)
	}
	for i := 1; i < len(w.Days); i++ {
		if !w.Days[i].After(w.Days[i-1]) {
			return fmt.Errorf("window days must be strictly increasing")
		}
	}
	return nil
}

// Bounds returns the half-open [start, end) range covering every slot.
func (w Window) Bounds() (time.Time, time.Time) {
	if len(w.Days) == 0 {
		return time.Time{}, time.Time{}
	}
	start := w.Days[0]
	end := w.Days[len(w.Days)-1].Add(time.Duration(w.SlotsPerDay) * w.SlotLength)
	return start, end
}

// Capacity is the number of slots one company can book across the window.
func (w Window) Capacity() int {
	return len(w.Days) * w.SlotsPerDay
}

// findSlot returns the earliest slot in the window that is free for both the
// company and the student. The walk is deterministic: days in calendar order,
// slot indices in order, first free timestamp wins. It performs no locking of
// its own; the caller must already hold the quota lock for the company so a
// concurrent search cannot pick the same slot before this transaction's
// interview row becomes visible.
func (e *Engine) findSlot(tx *gorm.DB, company companyModel, studentID uuid.UUID) (time.Time, string, error) {
	start, end := e.window.Bounds()

	busy := func(column string, id uuid.UUID) (map[int64]struct{}, error) {
		var times []time.Time
		err := tx.Model(&interviewModel{}).
			Where(column+" = ? AND status <> ? AND date_time >= ? AND date_time < ?",
				id, StatusCancelled, start, end).
			Pluck("date_time", &times).Error
		if err != nil {
			return nil, err
		}
		set := make(map[int64]struct{}, len(times))
		for _, t := range times {
			set[t.UTC().Unix()] = struct{}{}
		}
		return set, nil
	}

	companyBusy, err := busy("company_id", company.ID)
	if err != nil {
		return time.Time{}, "", err
	}
	studentBusy, err := busy("student_id", studentID)
	if err != nil {
		return time.Time{}, "", err
	}

	for _, day := range e.window.Days {
		for i := 0; i < e.window.SlotsPerDay; i++ {
			slot := day.Add(time.Duration(i) * e.window.SlotLength)
			key := slot.UTC().Unix()
			if _, taken := companyBusy[key]; taken {
				continue
			}
			if _, taken := studentBusy[key]; taken {
				continue
			}
			return slot, company.roomName(), nil
		}
	}

	return time.Time{}, "", ErrNoSlotAvailable
}
