package tests

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/acfjba/platformdigital-sub000/core/license"
	"github.com/acfjba/platformdigital-sub000/core/school"
	testutil "github.com/acfjba/platformdigital-sub000/tests"
)

func Test_schoolApi_platform(t *testing.T) {
	app := setup(t)
	tn := app.newTenant(t, "plat")

	t.Run("create: system admin required", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/v1/schools", &tn.admin, school.NewSchool{Name: "Nope", Code: "nope"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	var created school.School
	t.Run("create", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/v1/schools", &tn.sysAdmin, school.NewSchool{Name: "  Hill  Side ", Code: "hill"})
		assert.Equal(t, http.StatusCreated, rec.Code)
		unmarshal(t, rec, &created)
		assert.Equal(t, "Hill Side", created.Name)
		assert.True(t, created.IsActive)
	})

	t.Run("create: duplicate code", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/v1/schools", &tn.sysAdmin, school.NewSchool{Name: "Other", Code: "hill"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "code")
	})

	t.Run("query", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/v1/schools?search=hill", &tn.sysAdmin, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		var resp page[school.School]
		unmarshal(t, rec, &resp)
		if assert.Equal(t, 1, resp.Count) {
			assert.Equal(t, created.ID, resp.Results[0].ID)
		}
	})

	t.Run("license lifecycle", func(t *testing.T) {
		base := "/v1/schools/" + created.ID + "/license"

		rec := app.do(t, http.MethodGet, base, &tn.sysAdmin, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = app.do(t, http.MethodPost, base, &tn.sysAdmin, license.NewLicense{Plan: license.PlanStandard, Months: 6})
		assert.Equal(t, http.StatusCreated, rec.Code)
		var lic license.License
		unmarshal(t, rec, &lic)
		assert.Equal(t, 100, lic.Seats, "plan default")
		assert.Equal(t, license.StatusActive, lic.Status)

		rec = app.do(t, http.MethodPost, base+"/suspend", &tn.sysAdmin, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		unmarshal(t, rec, &lic)
		assert.Equal(t, license.StatusSuspended, lic.Status)

		rec = app.do(t, http.MethodPost, base+"/suspend", &tn.sysAdmin, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)

		rec = app.do(t, http.MethodPost, base+"/reactivate", &tn.sysAdmin, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		unmarshal(t, rec, &lic)
		assert.Equal(t, license.StatusActive, lic.Status)

		rec = app.do(t, http.MethodGet, "/v1/licenses?status=active", &tn.sysAdmin, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		var resp page[license.License]
		unmarshal(t, rec, &resp)
		assert.Equal(t, 2, resp.Count)
	})

	t.Run("license: system admin required", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/v1/schools/"+tn.school.ID+"/license/renew", &tn.admin, license.Renewal{Months: 12})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func Test_tenantMiddleware(t *testing.T) {
	app := setup(t)
	tn := app.newTenant(t, "ten")
	other := app.newTenant(t, "oth")

	tests := []httpTest{
		{name: "own school", path: "/v1/schools/" + tn.school.ID, token: app.getToken(t, tn.teacher)},
		{name: "other school is hidden", path: "/v1/schools/" + other.school.ID, token: app.getToken(t, tn.admin), wantCode: http.StatusNotFound},
		{name: "other school data is hidden", path: "/v1/schools/" + other.school.ID + "/staff", token: app.getToken(t, tn.admin), wantCode: http.StatusNotFound},
		{name: "system admin sees every school", path: "/v1/schools/" + other.school.ID + "/staff", token: app.getToken(t, tn.sysAdmin)},
		{name: "unknown school", path: "/v1/schools/lol/staff", token: app.getToken(t, tn.sysAdmin), wantCode: http.StatusNotFound},
		{name: "auth required", path: "/v1/schools/" + tn.school.ID + "/staff", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
	}
	for i := range tests {
		tests[i].method = http.MethodGet
	}
	runHTTPTests(t, app, tests)

	t.Run("inactive school", func(t *testing.T) {
		inactive := false
		if _, err := app.Svcs.Schools.Update(context.Background(), tn.school, school.UpdateSchool{IsActive: &inactive}); err != nil {
			t.Fatalf("Update(): %v", err)
		}
		rec := app.do(t, http.MethodGet, "/v1/schools/"+tn.school.ID, &tn.admin, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = app.do(t, http.MethodGet, "/v1/schools/"+tn.school.ID, &tn.sysAdmin, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func Test_licenseMiddleware(t *testing.T) {
	app := setup(t)
	tn := app.newTenant(t, "gate")
	ctx := context.Background()
	base := "/v1/schools/" + tn.school.ID

	rec := app.do(t, http.MethodGet, base+"/staff", &tn.admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	if _, err := app.Svcs.Licenses.Suspend(ctx, tn.school.ID); err != nil {
		t.Fatalf("Suspend(): %v", err)
	}

	t.Run("suspended license blocks school data", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, base+"/staff", &tn.admin, nil)
		assert.Equal(t, http.StatusPaymentRequired, rec.Code)
		assert.JSONEq(t, `{"error": "school license is not active"}`, rec.Body.String())
	})

	t.Run("school detail, license and dashboard stay reachable", func(t *testing.T) {
		for _, path := range []string{base, base + "/license", base + "/dashboard"} {
			rec := app.do(t, http.MethodGet, path, &tn.admin, nil)
			assert.Equal(t, http.StatusOK, rec.Code, path)
		}
	})

	t.Run("system admins bypass the gate", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, base+"/staff", &tn.sysAdmin, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("expired license blocks school data", func(t *testing.T) {
		if _, err := app.Svcs.Licenses.Reactivate(ctx, tn.school.ID); err != nil {
			t.Fatalf("Reactivate(): %v", err)
		}
		testutil.FreezeTime(t, time.Now().AddDate(2, 0, 0))
		rec := app.do(t, http.MethodGet, base+"/students", &tn.teacher, nil)
		assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	})
}

func Test_rolesMiddleware(t *testing.T) {
	app := setup(t)
	tn := app.newTenant(t, "rol")
	base := "/v1/schools/" + tn.school.ID

	tests := []httpTest{
		{name: "librarian cannot add staff", method: http.MethodPost, path: base + "/staff", token: app.getToken(t, tn.librarian), body: []byte(`{}`), wantCode: http.StatusForbidden},
		{name: "teacher cannot add books", method: http.MethodPost, path: base + "/library/books", token: app.getToken(t, tn.teacher), body: []byte(`{}`), wantCode: http.StatusForbidden},
		{name: "librarian cannot mark attendance", method: http.MethodPost, path: base + "/attendance", token: app.getToken(t, tn.librarian), body: []byte(`{}`), wantCode: http.StatusForbidden},
		{name: "head teacher cannot import", method: http.MethodPost, path: base + "/import/staff", token: app.getToken(t, tn.headTeacher), body: []byte(`{}`), wantCode: http.StatusForbidden},
		{name: "teacher cannot see email config", method: http.MethodGet, path: base + "/email-config", token: app.getToken(t, tn.teacher), wantCode: http.StatusForbidden},
		{name: "librarian cannot see incidents", method: http.MethodGet, path: base + "/incidents", token: app.getToken(t, tn.librarian), wantCode: http.StatusForbidden},
		{name: "platform dashboard", method: http.MethodGet, path: "/v1/dashboard", token: app.getToken(t, tn.admin), wantCode: http.StatusForbidden},
		{name: "teacher reads staff", method: http.MethodGet, path: base + "/staff", token: app.getToken(t, tn.teacher)},
		{name: "librarian reads students", method: http.MethodGet, path: base + "/students", token: app.getToken(t, tn.librarian)},
	}
	runHTTPTests(t, app, tests)
}
