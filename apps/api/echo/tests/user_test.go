package tests

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"

	echoapi "github.com/acfjba/platformdigital-sub000/apps/api/echo"
	"github.com/acfjba/platformdigital-sub000/core/user"
	testutil "github.com/acfjba/platformdigital-sub000/tests"
)

func Test_userApi_login(t *testing.T) {
	app := setup(t)
	tn := app.newTenant(t, "lgn")
	naughty := testutil.CreateUser(t, app.Repos.Users, tn.school.ID, "N Dog", "ndog", "ndog@test.cd", "Pwd@1234", user.RoleTeacher, false)

	reqMsg := "this field is required"
	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, echoapi.LoginRequest{Username: reqMsg, Password: reqMsg}),
		},
		{
			name: "unknown user", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, echoapi.LoginRequest{Username: "lol", Password: "Pwd@1234"}),
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, echoapi.LoginRequest{Username: tn.teacher.Username, Password: "lol"}),
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "inactive user", wantCode: http.StatusForbidden,
			body:     marchallObj(t, echoapi.LoginRequest{Username: naughty.Email, Password: "Pwd@1234"}),
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/v1/users/login"
	}
	runHTTPTests(t, app, tests)

	t.Run("valid credentials", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/v1/users/login", nil, echoapi.LoginRequest{Username: tn.teacher.Username, Password: "Pwd@1234"})
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp echoapi.LoginResponse
		unmarshal(t, rec, &resp)
		assert.NotEmpty(t, resp.Token)

		claims, err := echoapi.NewLocalVerifier(app.Conf).Verify(context.Background(), resp.Token)
		if assert.NoError(t, err) {
			assert.Equal(t, tn.teacher.ID, claims.Subject)
			assert.Equal(t, tn.school.ID, claims.SchoolID)
			assert.Equal(t, user.RoleTeacher, claims.Role)
		}

		usr, err := app.Svcs.Users.GetByID(context.Background(), tn.teacher.ID)
		if assert.NoError(t, err) {
			assert.False(t, usr.LastLogin.IsZero(), "last login is set")
		}
	})
}

func Test_userApi_refreshToken(t *testing.T) {
	app := setup(t)
	tn := app.newTenant(t, "rfr")
	naughty := testutil.CreateUser(t, app.Repos.Users, tn.school.ID, "N Dog", "ndog", "", "Pwd@1234", user.RoleTeacher, false)

	now := time.Now()
	unrefreshable := echoapi.GetUserClaims(app.Conf, tn.teacher, now.Add(-2*app.Conf.JWTRefreshExpirationDelta).Unix())
	unrefreshableToken, err := echoapi.GenerateToken(app.Conf, unrefreshable)
	if err != nil {
		t.Fatalf("GenerateToken(): %v", err)
	}

	forged := echoapi.GetUserClaims(app.Conf, tn.teacher)
	forgedToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, forged).SignedString([]byte("not the secret"))
	if err != nil {
		t.Fatalf("SignedString(): %v", err)
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Forged token", token: forgedToken, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "invalid or expired jwt"})},
		{name: "Inactive user not allowed", token: app.getToken(t, naughty), wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"})},
		{name: "Refresh period expired", token: unrefreshableToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "refresh has expired"})},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/v1/users/token-refresh"
	}
	runHTTPTests(t, app, tests)

	t.Run("Token refreshed", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/v1/users/token-refresh", &tn.teacher, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		var resp echoapi.LoginResponse
		unmarshal(t, rec, &resp)
		assert.NotEmpty(t, resp.Token) // cannot guess the new token
	})
}

func Test_userApi_me(t *testing.T) {
	app := setup(t)
	tn := app.newTenant(t, "me")

	rec := app.do(t, http.MethodGet, "/v1/users/me", &tn.librarian, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var usr user.User
	unmarshal(t, rec, &usr)
	assert.Equal(t, tn.librarian.ID, usr.ID)
	assert.Equal(t, user.RoleLibrarian, usr.Role)
	assert.NotContains(t, rec.Body.String(), "password")
}

func Test_userApi_platformUsers(t *testing.T) {
	app := setup(t)
	tn := app.newTenant(t, "plt")

	t.Run("system admin required", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/v1/users", &tn.admin, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("query by school", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/v1/users?school_id="+tn.school.ID+"&role="+user.RoleTeacher, &tn.sysAdmin, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		var resp page[user.User]
		unmarshal(t, rec, &resp)
		if assert.Equal(t, 1, resp.Count) {
			assert.Equal(t, tn.teacher.ID, resp.Results[0].ID)
		}
	})

	t.Run("create system admin", func(t *testing.T) {
		body := user.NewUser{Name: "Ops", Username: "ops", Role: user.RoleTeacher, Password: "Pwd@1234", PasswordConfirm: "Pwd@1234"}
		rec := app.do(t, http.MethodPost, "/v1/users", &tn.sysAdmin, body)
		assert.Equal(t, http.StatusCreated, rec.Code)
		var usr user.User
		unmarshal(t, rec, &usr)
		assert.Equal(t, user.RoleSystemAdmin, usr.Role, "role is forced")
		assert.Empty(t, usr.SchoolID)
	})
}

func Test_userApi_schoolUsers(t *testing.T) {
	app := setup(t)
	tn := app.newTenant(t, "usr")
	other := app.newTenant(t, "oth")
	base := "/v1/schools/" + tn.school.ID + "/users"

	newUser := func(uname, role string) user.NewUser {
		return user.NewUser{Name: "New " + uname, Username: uname, Role: role, Password: "Pwd@1234", PasswordConfirm: "Pwd@1234"}
	}

	t.Run("create: primary admin required", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, base, &tn.headTeacher, newUser("nope", user.RoleTeacher))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("create: no system admins", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, base, &tn.admin, newUser("nope", user.RoleSystemAdmin))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"role": "school users cannot be system admins"}`, rec.Body.String())
	})

	t.Run("create: ok", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, base, &tn.admin, newUser("newbie", user.RoleTeacher))
		assert.Equal(t, http.StatusCreated, rec.Code)
		var usr user.User
		unmarshal(t, rec, &usr)
		assert.Equal(t, tn.school.ID, usr.SchoolID)
		assert.True(t, usr.IsActive)
	})

	t.Run("create: duplicate username", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, base, &tn.admin, newUser("newbie", user.RoleTeacher))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "username")
	})

	t.Run("query: managers only", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, base, &tn.teacher, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = app.do(t, http.MethodGet, base+"?role="+user.RoleLibrarian, &tn.headTeacher, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		var resp page[user.User]
		unmarshal(t, rec, &resp)
		if assert.Equal(t, 1, resp.Count) {
			assert.Equal(t, tn.librarian.ID, resp.Results[0].ID)
		}
	})

	t.Run("retrieve: self or admin", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, base+"/"+tn.teacher.ID, &tn.teacher, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = app.do(t, http.MethodGet, base+"/"+tn.librarian.ID, &tn.teacher, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = app.do(t, http.MethodGet, base+"/"+tn.librarian.ID, &tn.admin, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("retrieve: users of other schools are hidden", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, base+"/"+other.teacher.ID, &tn.admin, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("update: non admins cannot change their role", func(t *testing.T) {
		rec := app.do(t, http.MethodPut, base+"/"+tn.teacher.ID, &tn.teacher, map[string]string{"name": "T", "role": user.RolePrimaryAdmin})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("update: own name", func(t *testing.T) {
		rec := app.do(t, http.MethodPut, base+"/"+tn.teacher.ID, &tn.teacher, map[string]string{"name": "Renamed"})
		assert.Equal(t, http.StatusOK, rec.Code)
		var usr user.User
		unmarshal(t, rec, &usr)
		assert.Equal(t, "Renamed", usr.Name)
		assert.Equal(t, user.RoleTeacher, usr.Role)
	})

	t.Run("destroy: not self", func(t *testing.T) {
		rec := app.do(t, http.MethodDelete, base+"/"+tn.admin.ID, &tn.admin, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("destroy multiple: only this school", func(t *testing.T) {
		path := base + "?id=" + tn.librarian.ID + "&id=" + other.librarian.ID
		rec := app.do(t, http.MethodDelete, path, &tn.admin, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"deleted": 1}`, rec.Body.String())

		_, err := app.Svcs.Users.GetByID(context.Background(), other.librarian.ID)
		assert.NoError(t, err)
	})
}

func Test_userApi_seats(t *testing.T) {
	app := setup(t)
	sch := testutil.CreateSchool(t, app.Env, "Tiny School", "tiny", "tiny@school.test")
	testutil.IssueLicense(t, app.Env, sch.ID, "basic", 1, 12)
	admin := testutil.CreateUser(t, app.Repos.Users, sch.ID, "Admin", "tinyadmin", "", "Pwd@1234", user.RolePrimaryAdmin, true)

	body := user.NewUser{Name: "Extra", Username: "extra", Role: user.RoleTeacher, Password: "Pwd@1234", PasswordConfirm: "Pwd@1234"}
	rec := app.do(t, http.MethodPost, "/v1/schools/"+sch.ID+"/users", &admin, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"role": "all license seats are taken"}`, rec.Body.String())
}
