package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	echoapi "github.com/acfjba/platformdigital-sub000/apps/api/echo"
	"github.com/acfjba/platformdigital-sub000/core"
	"github.com/acfjba/platformdigital-sub000/core/license"
	"github.com/acfjba/platformdigital-sub000/core/school"
	"github.com/acfjba/platformdigital-sub000/core/user"
	testutil "github.com/acfjba/platformdigital-sub000/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	*testutil.Env
	srv echoapi.Server
}

func setup(t *testing.T) *testApp {
	t.Helper()
	env := testutil.NewEnv(t)
	return &testApp{
		Env: env,
		srv: echoapi.NewServer(echoapi.ServerDeps{
			Conf:       env.Conf,
			Logger:     core.NopLogger{},
			Svcs:       env.Svcs,
			Validate:   env.Validate,
			Translator: env.Translator,
		}),
	}
}

// tenant is a licensed school with one user per role.
type tenant struct {
	school      school.School
	license     license.License
	sysAdmin    user.User
	admin       user.User
	headTeacher user.User
	teacher     user.User
	librarian   user.User
}

func (app *testApp) newTenant(t *testing.T, code string) tenant {
	t.Helper()
	sch := testutil.CreateSchool(t, app.Env, "School "+code, code, code+"@school.test")
	tn := tenant{
		school:      sch,
		license:     testutil.IssueLicense(t, app.Env, sch.ID, license.PlanBasic, 0, 12),
		admin:       testutil.CreateUser(t, app.Repos.Users, sch.ID, "Primary Admin", code+"admin", "", "Pwd@1234", user.RolePrimaryAdmin, true),
		headTeacher: testutil.CreateUser(t, app.Repos.Users, sch.ID, "Head Teacher", code+"head", "", "Pwd@1234", user.RoleHeadTeacher, true),
		teacher:     testutil.CreateUser(t, app.Repos.Users, sch.ID, "Teacher", code+"teacher", "", "Pwd@1234", user.RoleTeacher, true),
		librarian:   testutil.CreateUser(t, app.Repos.Users, sch.ID, "Librarian", code+"librarian", "", "Pwd@1234", user.RoleLibrarian, true),
	}
	tn.sysAdmin = testutil.CreateUser(t, app.Repos.Users, "", "Root", code+"root", "", "Pwd@1234", user.RoleSystemAdmin, true)
	return tn
}

func (app *testApp) serve(req *http.Request, rec *httptest.ResponseRecorder) {
	app.srv.ServeHTTP(rec, req)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

type page[T any] struct {
	Count   int `json:"count"`
	Results []T `json:"results"`
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func (app *testApp) getToken(t *testing.T, usr user.User) string {
	t.Helper()
	claims := echoapi.GetUserClaims(app.Conf, usr)
	token, err := echoapi.GenerateToken(app.Conf, claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

// do sends a JSON request as usr (anonymous when usr is nil).
func (app *testApp) do(t *testing.T, method, path string, usr *user.User, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var data []byte
	if body != nil {
		data = marchallObj(t, body)
	}
	var token string
	if usr != nil {
		token = app.getToken(t, *usr)
	}
	req, rec := newAuthRequest(method, path, token, data)
	app.serve(req, rec)
	return rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, obj interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), obj); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v; body %s", err, rec.Body.String())
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, tt.wantCode, rec.Code, "code; body %s", rec.Body.String())
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app *testApp, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.serve(req, rec)
			checkCodeAndData(t, tt, rec)
		})
	}
}
