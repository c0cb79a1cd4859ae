package placement

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"placementd/pkg/render"
)

// testWindow is a small calendar: two days of three slots each.
func testWindow() Window {
	return Window{
		Days: []time.Time{
			time.Date(2026, time.February, 16, 8, 0, 0, 0, time.UTC),
			time.Date(2026, time.February, 17, 8, 0, 0, 0, time.UTC),
		},
		SlotLength:  20 * time.Minute,
		SlotsPerDay: 3,
	}
}

func newTestEngine(t *testing.T, w Window) *Engine {
	t.Helper()

	path := filepath.Join(t.TempDir(), "placement.db")
	orm, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := orm.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := AutoMigrate(orm); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	renderer, err := render.New()
	if err != nil {
		t.Fatalf("init templates: %v", err)
	}

	engine, err := New(&Store{ORM: orm}, renderer, Config{Window: w})
	if err != nil {
		t.Fatalf("init engine: %v", err)
	}
	return engine
}

func mkCompany(t *testing.T, e *Engine, name string, quota int) companyModel {
	t.Helper()
	c := companyModel{ID: uuid.New(), Name: name, InterviewQuota: quota}
	if err := e.store.ORM.Create(&c).Error; err != nil {
		t.Fatalf("create company: %v", err)
	}
	return c
}

func mkJob(t *testing.T, e *Engine, companyID uuid.UUID, title string, quota int) jobModel {
	t.Helper()
	j := jobModel{ID: uuid.New(), CompanyID: companyID, Title: title, Quota: quota, IsActive: true}
	if err := e.store.ORM.Create(&j).Error; err != nil {
		t.Fatalf("create job: %v", err)
	}
	return j
}

func mkStudent(t *testing.T, e *Engine, name string, tokens int) studentModel {
	t.Helper()
	s := studentModel{ID: uuid.New(), FullName: name}
	if err := e.store.ORM.Create(&s).Error; err != nil {
		t.Fatalf("create student: %v", err)
	}
	if tokens > 0 {
		if err := e.GrantTokens(context.Background(), s.ID, tokens, "Initial allocation"); err != nil {
			t.Fatalf("grant tokens: %v", err)
		}
		s.TokensRemaining = tokens
	}
	return s
}

func getBalances(t *testing.T, e *Engine, studentID uuid.UUID) Balances {
	t.Helper()
	b, err := e.StudentBalances(context.Background(), studentID)
	if err != nil {
		t.Fatalf("balances: %v", err)
	}
	return b
}

// replayedBalances recomputes the buckets from the ledger so tests can assert
// the cached columns never drift.
func replayedBalances(t *testing.T, e *Engine, studentID uuid.UUID) Balances {
	t.Helper()
	history, err := e.TokenHistory(context.Background(), studentID)
	if err != nil {
		t.Fatalf("token history: %v", err)
	}
	// History is newest first; replay order does not matter for the buckets.
	return DeriveBalances(history)
}

func assertLedgerConsistent(t *testing.T, e *Engine, studentID uuid.UUID) {
	t.Helper()
	cached := getBalances(t, e, studentID)
	replayed := replayedBalances(t, e, studentID)
	if cached != replayed {
		t.Fatalf("cached balances %+v diverged from ledger replay %+v", cached, replayed)
	}
}

func TestNewDefaults(t *testing.T) {
	e := newTestEngine(t, Window{})
	if got, want := e.Window().Capacity(), DefaultWindow().Capacity(); got != want {
		t.Fatalf("default window capacity = %d, want %d", got, want)
	}
}

func TestNewRejectsInvalidWindow(t *testing.T) {
	renderer, err := render.New()
	if err != nil {
		t.Fatalf("init templates: %v", err)
	}
	bad := Window{Days: []time.Time{time.Now()}, SlotLength: -time.Minute, SlotsPerDay: 3}
	if _, err := New(&Store{ORM: &gorm.DB{}}, renderer, Config{Window: bad}); err == nil {
		t.Fatal("expected error for negative slot length")
	}
}
