package placement

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// keyedLocks serializes check-then-act sequences on a contended aggregate
// (a company's quota and calendar, or a student's token row and its side of
// the interview calendar). On postgres the
// same sections also take row locks; the in-process mutex makes the engine
// correct on stores without FOR UPDATE support.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[string]*sync.Mutex)}
}

// Acquire locks every key in sorted order and returns a release function.
// Sorting keeps lock order stable across callers so two operations touching
// the same pair of aggregates cannot deadlock.
func (k *keyedLocks) Acquire(keys ...string) func() {
	sorted := make([]string, len(keys))
	copy(sorted, keys)
	sort.Strings(sorted)

	held := make([]*sync.Mutex, 0, len(sorted))
	for _, key := range sorted {
		k.mu.Lock()
		m, ok := k.locks[key]
		if !ok {
			m = &sync.Mutex{}
			k.locks[key] = m
		}
		k.mu.Unlock()

		m.Lock()
		held = append(held, m)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

func lockCompany(id uuid.UUID) string { return "company:" + id.String() }
func lockStudent(id uuid.UUID) string { return "student:" + id.String() }
func lockJob(id uuid.UUID) string     { return "job:" + id.String() }
