package scheduler_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/acfjba/platformdigital-sub000/core"
	"github.com/acfjba/platformdigital-sub000/core/emailconfig"
	"github.com/acfjba/platformdigital-sub000/core/library"
	"github.com/acfjba/platformdigital-sub000/core/license"
	"github.com/acfjba/platformdigital-sub000/core/user"
	emailsvc "github.com/acfjba/platformdigital-sub000/services/email"
	"github.com/acfjba/platformdigital-sub000/services/scheduler"
	testutil "github.com/acfjba/platformdigital-sub000/tests"
)

var now = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

func setExpiry(t *testing.T, env *testutil.Env, lic license.License, expiresAt time.Time) {
	t.Helper()
	lic.ExpiresAt = expiresAt
	if _, err := env.Repos.Licenses.UpdateLicense(context.Background(), lic); err != nil {
		t.Fatalf("setExpiry() failed: %v", err)
	}
}

func TestNew(t *testing.T) {
	env := testutil.NewEnv(t)
	jobs := env.Svcs.Jobs(env.Mailer, env.Conf, core.NopLogger{})

	s, err := scheduler.New(env.Conf, jobs, core.NopLogger{})
	if assert.NoError(t, err) {
		assert.Equal(t, 2, s.Entries())
		s.Start()
		assert.NoError(t, s.Stop(context.Background()))
	}

	env.Conf.Scheduler.OverdueSpec = "every monday"
	_, err = scheduler.New(env.Conf, jobs, core.NopLogger{})
	assert.Error(t, err)
}

func TestJobs_ExpireLicenses(t *testing.T) {
	testutil.FreezeTime(t, now)
	env := testutil.NewEnv(t)
	jobs := env.Svcs.Jobs(env.Mailer, env.Conf, core.NopLogger{})
	ctx := context.Background()

	fine := testutil.CreateSchool(t, env, "Fine School", "FINE", "office@fine.test")
	testutil.IssueLicense(t, env, fine.ID, license.PlanBasic, 0, 12)

	lapsed := testutil.CreateSchool(t, env, "Lapsed School", "LAPSED", "office@lapsed.test")
	setExpiry(t, env, testutil.IssueLicense(t, env, lapsed.ID, license.PlanBasic, 0, 1), now.Add(-time.Hour))

	soon := testutil.CreateSchool(t, env, "Soon School", "SOON", "office@soon.test")
	setExpiry(t, env, testutil.IssueLicense(t, env, soon.ID, license.PlanStandard, 0, 1), now.Add(5*24*time.Hour))

	// no email: skipped
	quiet := testutil.CreateSchool(t, env, "Quiet School", "QUIET", "")
	setExpiry(t, env, testutil.IssueLicense(t, env, quiet.ID, license.PlanBasic, 0, 1), now.Add(2*24*time.Hour))

	run, err := jobs.ExpireLicenses(ctx)
	if assert.NoError(t, err) {
		if assert.Len(t, run.Expired, 1) {
			assert.Equal(t, lapsed.ID, run.Expired[0].SchoolID)
		}
		assert.Equal(t, 1, run.Notified)
	}

	lic, err := env.Svcs.Licenses.Get(ctx, lapsed.ID)
	if assert.NoError(t, err) {
		assert.Equal(t, license.StatusExpired, lic.Status)
	}

	sent := emailsvc.GetSentMessages()
	if assert.Len(t, sent, 1) {
		msg := sent[0]
		assert.Equal(t, "office@soon.test", msg.To[0].Address)
		assert.Contains(t, msg.TextContent, "5 day(s) left")
		assert.Contains(t, msg.TextContent, "standard")
		assert.Nil(t, msg.From) // platform sender
	}

	// second run: nothing left to expire
	run, err = jobs.ExpireLicenses(ctx)
	if assert.NoError(t, err) {
		assert.Empty(t, run.Expired)
	}
}

func TestJobs_SendOverdueDigests(t *testing.T) {
	testutil.FreezeTime(t, now)
	env := testutil.NewEnv(t)
	jobs := env.Svcs.Jobs(env.Mailer, env.Conf, core.NopLogger{})
	ctx := context.Background()
	librarian := user.User{ID: "librarian", Role: user.RoleLibrarian}

	lend := func(schoolID string) {
		std := testutil.CreateStudent(t, env, schoolID, "A001", "Amani Otieno", "Form 1")
		book := testutil.CreateBook(t, env, schoolID, "Things Fall Apart", 2)
		_, err := env.Svcs.Library.Issue(ctx, schoolID, librarian, library.NewLoan{
			BookID:       book.ID,
			BorrowerID:   std.ID,
			BorrowerType: library.BorrowerStudent,
		})
		if err != nil {
			t.Fatalf("issue() failed: %v", err)
		}
	}

	enabled := testutil.CreateSchool(t, env, "Enabled School", "ENABLED", "office@enabled.test")
	lend(enabled.ID)
	_, err := env.Svcs.EmailConfig.Upsert(ctx, enabled.ID, "admin", emailconfig.Input{
		FromName:    "Enabled School",
		FromAddress: "library@enabled.test",
		ReplyTo:     "librarian@enabled.test",
		Enabled:     true,
	})
	assert.NoError(t, err)

	disabled := testutil.CreateSchool(t, env, "Disabled School", "DISABLED", "office@disabled.test")
	lend(disabled.ID)

	// nothing overdue yet
	sent, err := jobs.SendOverdueDigests(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 0, sent)

	testutil.FreezeTime(t, now.Add(library.DefaultLoanPeriod+24*time.Hour))
	sent, err = jobs.SendOverdueDigests(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, sent)

	msgs := emailsvc.GetSentMessages()
	if assert.Len(t, msgs, 1) {
		msg := msgs[0]
		assert.Equal(t, "office@enabled.test", msg.To[0].Address)
		if assert.NotNil(t, msg.From) {
			assert.Equal(t, "library@enabled.test", msg.From.Address)
		}
		if assert.NotNil(t, msg.ReplyTo) {
			assert.Equal(t, "librarian@enabled.test", msg.ReplyTo.Address)
		}
		assert.Contains(t, msg.TextContent, "Things Fall Apart")
		assert.Contains(t, msg.TextContent, "Amani Otieno")
	}
}
