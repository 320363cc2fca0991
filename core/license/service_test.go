package license_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/acfjba/platformdigital-sub000/core"
	"github.com/acfjba/platformdigital-sub000/core/license"
	testutil "github.com/acfjba/platformdigital-sub000/tests"
)

func TestLicense_IsUsable(t *testing.T) {
	now := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		lic  license.License
		want bool
		days int
	}{
		{name: "active", lic: license.License{Status: license.StatusActive, ExpiresAt: now.AddDate(0, 0, 10)}, want: true, days: 10},
		{name: "suspended", lic: license.License{Status: license.StatusSuspended, ExpiresAt: now.AddDate(0, 0, 10)}, want: false, days: 10},
		{name: "lapsed", lic: license.License{Status: license.StatusActive, ExpiresAt: now}, want: false, days: 0},
		{name: "expired", lic: license.License{Status: license.StatusExpired, ExpiresAt: now.AddDate(0, 0, -1)}, want: false, days: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.lic.IsUsable(now))
			assert.Equal(t, tt.days, tt.lic.DaysLeft(now))
		})
	}
}

func TestService_lifecycle(t *testing.T) {
	env := testutil.NewEnv(t)
	svc := env.Svcs.Licenses
	ctx := context.Background()
	sch := testutil.CreateSchool(t, env, "Lic School", "lic", "lic@school.test")

	assert.Equal(t, license.ErrInactive, svc.CheckUsable(ctx, sch.ID))

	_, err := svc.Issue(ctx, "unknown", license.NewLicense{Plan: license.PlanBasic, Months: 12})
	assert.True(t, core.IsNotFound(err))

	lic, err := svc.Issue(ctx, sch.ID, license.NewLicense{Plan: license.PlanStandard, Months: 12})
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, license.DefaultSeats(license.PlanStandard), lic.Seats)
	assert.NoError(t, svc.CheckUsable(ctx, sch.ID))

	_, err = svc.Issue(ctx, sch.ID, license.NewLicense{Plan: license.PlanBasic, Months: 1})
	assert.Equal(t, license.ErrExists, err)

	_, err = svc.Reactivate(ctx, sch.ID)
	assert.Equal(t, license.ErrNotSuspended, err)

	_, err = svc.Suspend(ctx, sch.ID)
	assert.NoError(t, err)
	assert.Equal(t, license.ErrInactive, svc.CheckUsable(ctx, sch.ID))

	_, err = svc.Suspend(ctx, sch.ID)
	assert.Equal(t, license.ErrNotActive, err)

	_, err = svc.Reactivate(ctx, sch.ID)
	assert.NoError(t, err)

	renewed, err := svc.Renew(ctx, sch.ID, 6)
	if assert.NoError(t, err) {
		assert.Equal(t, lic.ExpiresAt.AddDate(0, 6, 0).Unix(), renewed.ExpiresAt.Unix())
	}
}

func TestService_expiry(t *testing.T) {
	env := testutil.NewEnv(t)
	svc := env.Svcs.Licenses
	ctx := context.Background()
	short := testutil.CreateSchool(t, env, "Short", "sht", "sht@school.test")
	long := testutil.CreateSchool(t, env, "Long", "lng", "lng@school.test")
	testutil.IssueLicense(t, env, short.ID, license.PlanBasic, 0, 1)
	testutil.IssueLicense(t, env, long.ID, license.PlanBasic, 0, 3)

	now := time.Now().UTC().AddDate(0, 2, 0)
	expiring, err := svc.ExpiringWithin(ctx, now, 45*24*time.Hour)
	if assert.NoError(t, err) && assert.Len(t, expiring, 1) {
		assert.Equal(t, long.ID, expiring[0].SchoolID)
	}

	expired, err := svc.ExpireDue(ctx, now)
	if assert.NoError(t, err) && assert.Len(t, expired, 1) {
		assert.Equal(t, short.ID, expired[0].SchoolID)
		assert.Equal(t, license.StatusExpired, expired[0].Status)
	}

	testutil.FreezeTime(t, now)
	_, err = svc.Reactivate(ctx, short.ID)
	assert.Equal(t, license.ErrExpired, err)

	// renewing a lapsed license counts from now
	renewed, err := svc.Renew(ctx, short.ID, 1)
	if assert.NoError(t, err) {
		assert.Equal(t, license.StatusActive, renewed.Status)
		assert.Equal(t, now.AddDate(0, 1, 0).Unix(), renewed.ExpiresAt.Unix())
	}
}

func TestService_CheckSeat(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	sch := testutil.CreateSchool(t, env, "Seat School", "st", "st@school.test")

	assert.True(t, core.IsValidation(env.Svcs.Licenses.CheckSeat(ctx, sch.ID, 0)))

	testutil.IssueLicense(t, env, sch.ID, license.PlanBasic, 2, 12)
	assert.NoError(t, env.Svcs.Licenses.CheckSeat(ctx, sch.ID, 1))
	assert.True(t, core.IsValidation(env.Svcs.Licenses.CheckSeat(ctx, sch.ID, 2)))
}
