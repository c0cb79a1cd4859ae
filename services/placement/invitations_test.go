package placement

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestInvite(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, testWindow())

	company := mkCompany(t, e, "Acme", 5)
	job := mkJob(t, e, company.ID, "Data Intern", 5)
	student := mkStudent(t, e, "Alice", 5)

	inv, err := e.Invite(ctx, company.ID, student.ID, job.ID)
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if inv.Status != StatusPending {
		t.Fatalf("status = %s, want %s", inv.Status, StatusPending)
	}
	if inv.Message == "" {
		t.Fatal("invitation has no message")
	}

	// Inviting is free for the student.
	if b := getBalances(t, e, student.ID); b.Remaining != 5 {
		t.Fatalf("remaining = %d, want 5", b.Remaining)
	}

	var n notificationModel
	err = e.store.ORM.First(&n, "user_id = ? AND type = ?", student.ID, "invitation").Error
	if err != nil {
		t.Fatalf("load notification: %v", err)
	}

	t.Run("duplicate invitation", func(t *testing.T) {
		if _, err := e.Invite(ctx, company.ID, student.ID, job.ID); !errors.Is(err, ErrAlreadyInvited) {
			t.Fatalf("error = %v, want ErrAlreadyInvited", err)
		}
	})

	t.Run("job of another company", func(t *testing.T) {
		rival := mkCompany(t, e, "Rival", 5)
		if _, err := e.Invite(ctx, rival.ID, student.ID, job.ID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("unknown student", func(t *testing.T) {
		if _, err := e.Invite(ctx, company.ID, uuid.New(), job.ID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("inactive job", func(t *testing.T) {
		closed := mkJob(t, e, company.ID, "Closed Role", 5)
		if err := e.store.ORM.Model(&closed).Update("is_active", false).Error; err != nil {
			t.Fatalf("deactivate: %v", err)
		}
		other := mkStudent(t, e, "Bob", 5)
		if _, err := e.Invite(ctx, company.ID, other.ID, closed.ID); !errors.Is(err, ErrJobInactive) {
			t.Fatalf("error = %v, want ErrJobInactive", err)
		}
	})

	t.Run("student who already applied", func(t *testing.T) {
		applicant := mkStudent(t, e, "Cara", 5)
		if _, err := e.Apply(ctx, applicant.ID, job.ID); err != nil {
			t.Fatalf("apply: %v", err)
		}
		if _, err := e.Invite(ctx, company.ID, applicant.ID, job.ID); !errors.Is(err, ErrAlreadyApplied) {
			t.Fatalf("error = %v, want ErrAlreadyApplied", err)
		}
	})
}

func TestInviteSoftCap(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, testWindow())

	company := mkCompany(t, e, "Acme", 30)
	job := mkJob(t, e, company.ID, "Data Intern", 1)

	// With job quota 1 the cap is quota plus headroom pending invitations.
	for i := 0; i < 1+inviteHeadroom; i++ {
		student := mkStudent(t, e, "Student", 0)
		if _, err := e.Invite(ctx, company.ID, student.ID, job.ID); err != nil {
			t.Fatalf("invite %d: %v", i, err)
		}
	}

	extra := mkStudent(t, e, "Extra", 0)
	if _, err := e.Invite(ctx, company.ID, extra.ID, job.ID); !errors.Is(err, ErrInviteQuotaFull) {
		t.Fatalf("error = %v, want ErrInviteQuotaFull", err)
	}
}

func TestAcceptInvitation(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, testWindow())

	company := mkCompany(t, e, "Acme", 5)
	job := mkJob(t, e, company.ID, "Data Intern", 5)
	student := mkStudent(t, e, "Alice", 5)

	inv, err := e.Invite(ctx, company.ID, student.ID, job.ID)
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if err := e.AcceptInvitation(ctx, inv.ID, student.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	// The invitation path creates an application born accepted.
	apps, err := e.StudentApplications(ctx, student.ID)
	if err != nil {
		t.Fatalf("applications: %v", err)
	}
	if len(apps) != 1 {
		t.Fatalf("got %d applications, want 1", len(apps))
	}
	if apps[0].Status != StatusAccepted || apps[0].Source != SourceInvitation {
		t.Fatalf("application = %+v, want accepted with invitation source", apps[0])
	}

	ivs, err := e.StudentInterviews(ctx, student.ID)
	if err != nil {
		t.Fatalf("interviews: %v", err)
	}
	if len(ivs) != 1 {
		t.Fatalf("got %d interviews, want 1", len(ivs))
	}
	if !ivs[0].DateTime.Equal(e.window.Days[0]) {
		t.Fatalf("slot = %s, want %s", ivs[0].DateTime, e.window.Days[0])
	}
	if ivs[0].Source != SourceInvitation {
		t.Fatalf("interview source = %s, want %s", ivs[0].Source, SourceInvitation)
	}

	// No token moves on the invitation path.
	if b := getBalances(t, e, student.ID); (b != Balances{Remaining: 5}) {
		t.Fatalf("balances = %+v, want remaining 5 untouched", b)
	}
	assertLedgerConsistent(t, e, student.ID)

	t.Run("second accept", func(t *testing.T) {
		if err := e.AcceptInvitation(ctx, inv.ID, student.ID); !errors.Is(err, ErrAlreadyProcessed) {
			t.Fatalf("error = %v, want ErrAlreadyProcessed", err)
		}
	})

	t.Run("wrong student", func(t *testing.T) {
		if err := e.AcceptInvitation(ctx, inv.ID, uuid.New()); !errors.Is(err, ErrNotFound) {
			t.Fatalf("error = %v, want ErrNotFound", err)
		}
	})
}

func TestAcceptInvitationBypassesCompanyQuota(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, testWindow())

	company := mkCompany(t, e, "Acme", 1)
	job := mkJob(t, e, company.ID, "Data Intern", 5)

	// An invitation issued before the quota fills survives the cascade and can
	// still be accepted afterwards: the soft cap binds at invite time only.
	invited := mkStudent(t, e, "Invited", 0)
	inv, err := e.Invite(ctx, company.ID, invited.ID, job.ID)
	if err != nil {
		t.Fatalf("invite: %v", err)
	}

	applicant := mkStudent(t, e, "Applicant", 5)
	res, err := e.Apply(ctx, applicant.ID, job.ID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := e.Decide(ctx, res.ApplicationID, company.ID, DecisionAccepted); err != nil {
		t.Fatalf("accept application: %v", err)
	}

	if err := e.AcceptInvitation(ctx, inv.ID, invited.ID); err != nil {
		t.Fatalf("accept invitation after quota filled: %v", err)
	}

	var booked int64
	err = e.store.ORM.Model(&interviewModel{}).
		Where("company_id = ? AND status = ?", company.ID, StatusAccepted).
		Count(&booked).Error
	if err != nil {
		t.Fatalf("count interviews: %v", err)
	}
	if booked != 2 {
		t.Fatalf("booked = %d, want 2", booked)
	}
}

func TestRejectInvitation(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, testWindow())

	company := mkCompany(t, e, "Acme", 5)
	job := mkJob(t, e, company.ID, "Data Intern", 5)
	student := mkStudent(t, e, "Alice", 5)

	inv, err := e.Invite(ctx, company.ID, student.ID, job.ID)
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if err := e.RejectInvitation(ctx, inv.ID, student.ID); err != nil {
		t.Fatalf("reject: %v", err)
	}

	var row invitationModel
	if err := e.store.ORM.First(&row, "id = ?", inv.ID).Error; err != nil {
		t.Fatalf("load invitation: %v", err)
	}
	if row.Status != StatusRejected {
		t.Fatalf("status = %s, want %s", row.Status, StatusRejected)
	}

	if err := e.RejectInvitation(ctx, inv.ID, student.ID); !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("second reject error = %v, want ErrAlreadyProcessed", err)
	}
	if err := e.AcceptInvitation(ctx, inv.ID, student.ID); !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("accept after reject error = %v, want ErrAlreadyProcessed", err)
	}

	// No application and no interview came out of the rejected invitation.
	apps, err := e.StudentApplications(ctx, student.ID)
	if err != nil {
		t.Fatalf("applications: %v", err)
	}
	if len(apps) != 0 {
		t.Fatalf("got %d applications, want 0", len(apps))
	}
}
