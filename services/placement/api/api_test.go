package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"placementd/pkg/render"
	"placementd/services/placement"
)

type fixture struct {
	handler   http.Handler
	orm       *gorm.DB
	companyID uuid.UUID
	jobID     uuid.UUID
	studentID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	path := filepath.Join(t.TempDir(), "api.db")
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

	if err := placement.AutoMigrate(orm); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	renderer, err := render.New()
	if err != nil {
		t.Fatalf("init templates: %v", err)
	}

	window := placement.Window{
		Days:        []time.Time{time.Date(2026, time.February, 16, 8, 0, 0, 0, time.UTC)},
		SlotLength:  20 * time.Minute,
		SlotsPerDay: 6,
	}
	engine, err := placement.New(&placement.Store{ORM: orm}, renderer, placement.Config{Window: window})
	if err != nil {
		t.Fatalf("init engine: %v", err)
	}

	server, err := New(engine)
	if err != nil {
		t.Fatalf("init api: %v", err)
	}
	handler, err := server.Routes()
	if err != nil {
		t.Fatalf("build routes: %v", err)
	}

	f := &fixture{
		handler:   handler,
		orm:       orm,
		companyID: uuid.New(),
		jobID:     uuid.New(),
		studentID: uuid.New(),
	}

	exec := func(sql string, args ...any) {
		if err := orm.Exec(sql, args...).Error; err != nil {
			t.Fatalf("fixture insert: %v", err)
		}
	}
	exec(`INSERT INTO companies (id, name, interview_quota) VALUES (?, ?, ?)`,
		f.companyID, "Acme", 5)
	exec(`INSERT INTO jobs (id, company_id, title, quota, is_active) VALUES (?, ?, ?, ?, ?)`,
		f.jobID, f.companyID, "Data Intern", 5, true)
	exec(`INSERT INTO students (id, full_name, tokens_remaining) VALUES (?, ?, ?)`,
		f.studentID, "Alice Martin", 5)
	exec(`INSERT INTO token_entries (id, student_id, amount, kind, reason) VALUES (?, ?, ?, ?, ?)`,
		uuid.New(), f.studentID, 5, "GRANT", "Initial allocation")

	return f
}

func (f *fixture) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dest); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestApplyEndpoint(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/applications", map[string]any{
		"student_id": f.studentID,
		"job_id":     f.jobID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var result placement.ApplyResult
	decodeBody(t, rec, &result)
	if result.Status != placement.StatusPending {
		t.Fatalf("status = %s, want %s", result.Status, placement.StatusPending)
	}
	if result.TokensRemaining != 4 {
		t.Fatalf("tokens remaining = %d, want 4", result.TokensRemaining)
	}

	t.Run("duplicate", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/v1/applications", map[string]any{
			"student_id": f.studentID,
			"job_id":     f.jobID,
		})
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
		}
	})

	t.Run("unknown job", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/v1/applications", map[string]any{
			"student_id": f.studentID,
			"job_id":     uuid.New(),
		})
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/v1/applications", map[string]any{
			"student_id": f.studentID,
		})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("unknown body field", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/v1/applications", map[string]any{
			"student_id": f.studentID,
			"job_id":     f.jobID,
			"extra":      true,
		})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})
}

func TestDecideEndpoint(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/applications", map[string]any{
		"student_id": f.studentID,
		"job_id":     f.jobID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("apply status = %d: %s", rec.Code, rec.Body.String())
	}
	var result placement.ApplyResult
	decodeBody(t, rec, &result)

	target := "/v1/applications/" + result.ApplicationID.String() + "/decision"

	t.Run("invalid decision", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, target, map[string]any{
			"company_id": f.companyID,
			"decision":   "MAYBE",
		})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("wrong company", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, target, map[string]any{
			"company_id": uuid.New(),
			"decision":   "accepted",
		})
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("accept", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, target, map[string]any{
			"company_id": f.companyID,
			"decision":   "accepted",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
		}
	})

	t.Run("decide twice", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, target, map[string]any{
			"company_id": f.companyID,
			"decision":   "rejected",
		})
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
		}
	})

	t.Run("bad uuid in path", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/v1/applications/not-a-uuid/decision", map[string]any{
			"company_id": f.companyID,
			"decision":   "accepted",
		})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})
}

func TestInvitationEndpoints(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/invitations", map[string]any{
		"company_id": f.companyID,
		"student_id": f.studentID,
		"job_id":     f.jobID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("invite status = %d: %s", rec.Code, rec.Body.String())
	}

	var created struct {
		Invitation placement.Invitation `json:"invitation"`
	}
	decodeBody(t, rec, &created)
	if created.Invitation.Status != placement.StatusPending {
		t.Fatalf("status = %s, want %s", created.Invitation.Status, placement.StatusPending)
	}

	accept := "/v1/invitations/" + created.Invitation.ID.String() + "/accept"

	rec = f.do(t, http.MethodPost, accept, map[string]any{"student_id": f.studentID})
	if rec.Code != http.StatusOK {
		t.Fatalf("accept status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodPost, accept, map[string]any{"student_id": f.studentID})
	if rec.Code != http.StatusConflict {
		t.Fatalf("second accept status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestStudentReportEndpoints(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/applications", map[string]any{
		"student_id": f.studentID,
		"job_id":     f.jobID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("apply status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodGet, "/v1/students/"+f.studentID.String()+"/applications", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("applications status = %d: %s", rec.Code, rec.Body.String())
	}
	var apps struct {
		Applications []placement.Application `json:"applications"`
	}
	decodeBody(t, rec, &apps)
	if len(apps.Applications) != 1 {
		t.Fatalf("got %d applications, want 1", len(apps.Applications))
	}

	rec = f.do(t, http.MethodGet, "/v1/students/"+f.studentID.String()+"/tokens", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("tokens status = %d: %s", rec.Code, rec.Body.String())
	}
	var tokens struct {
		Balances placement.Balances     `json:"balances"`
		History  []placement.TokenEntry `json:"history"`
	}
	decodeBody(t, rec, &tokens)
	if tokens.Balances.Remaining != 4 || tokens.Balances.Engaged != 1 {
		t.Fatalf("balances = %+v, want remaining 4 engaged 1", tokens.Balances)
	}
	if len(tokens.History) != 2 {
		t.Fatalf("got %d ledger entries, want 2", len(tokens.History))
	}

	t.Run("bad uuid", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/v1/students/nope/tokens", nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("unknown student balances", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/v1/students/"+uuid.New().String()+"/tokens", nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})
}
