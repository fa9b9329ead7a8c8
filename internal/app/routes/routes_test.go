package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/profrate/internal/app/controllers"
	"github.com/yigit/profrate/internal/app/models/dto"
	"github.com/yigit/profrate/internal/app/repositories/memory"
	"github.com/yigit/profrate/internal/app/routes"
	"github.com/yigit/profrate/internal/app/services"
	"github.com/yigit/profrate/internal/bootstrap"
	"github.com/yigit/profrate/internal/config"
	"github.com/yigit/profrate/internal/middleware"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Session.Secret = "session-secret"
	cfg.Session.CookieName = "profrate_session"
	cfg.Session.MaxAge = "1h"
	cfg.JWT.Secret = "jwt-secret"
	cfg.JWT.Issuer = "profrate-test"
	cfg.Auth.BcryptCost = bcrypt.MinCost
	return cfg
}

type testApp struct {
	router *gin.Engine
	deps   *bootstrap.Dependencies
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	deps := bootstrap.BuildDependencies(testConfig(), memory.NewStore(), zerolog.Nop())
	router := routes.NewEngine()
	routes.SetupRouter(router, deps.AuthController, deps.RatingController, deps.CatalogController, deps.AuthMiddleware)

	ctx := context.Background()
	for _, p := range []services.ProfessorInput{{ID: "AL1", Name: "Ada Lovelace"}, {ID: "AT1", Name: "Alan Turing"}} {
		_, err := deps.Services.Professors.Create(ctx, p)
		require.NoError(t, err)
	}
	_, err := deps.Services.Modules.CreateInstance(ctx, services.ModuleInstanceInput{
		Name: "Programming", Code: "CS101", Year: 2020, Semester: 1,
	}, []string{"AL1", "AT1"})
	require.NoError(t, err)
	_, err = deps.Services.Modules.CreateInstance(ctx, services.ModuleInstanceInput{
		Name: "Algorithms", Code: "CS201", Year: 2021, Semester: 2,
	}, []string{"AT1"})
	require.NoError(t, err)

	return &testApp{router: router, deps: deps}
}

// client keeps the cookies handed out by the server between requests
type client struct {
	app     *testApp
	cookies map[string]*http.Cookie
	bearer  string
}

func (a *testApp) client() *client {
	return &client{app: a, cookies: map[string]*http.Cookie{}}
}

func (c *client) do(t *testing.T, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}

	rec := httptest.NewRecorder()
	c.app.router.ServeHTTP(rec, req)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.MaxAge < 0 {
			delete(c.cookies, cookie.Name)
			continue
		}
		c.cookies[cookie.Name] = cookie
	}
	return rec
}

func credentials(username, password string) map[string]string {
	return map[string]string{"username": username, "password": password}
}

// loggedIn registers and logs in a fresh account
func (a *testApp) loggedIn(t *testing.T, username string) *client {
	t.Helper()
	c := a.client()
	rec := c.do(t, http.MethodPost, "/api/register/", credentials(username, "secret-pw"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = c.do(t, http.MethodPost, "/api/login/", credentials(username, "secret-pw"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return c
}

func assertAPIError(t *testing.T, rec *httptest.ResponseRecorder, status int, code, message string) {
	t.Helper()
	assert.Equal(t, status, rec.Code)
	assert.Equal(t, code, rec.Header().Get(middleware.ErrorCodeHeader))
	assert.Equal(t, message, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
}

func TestRateAndAverageFlow(t *testing.T) {
	app := newTestApp(t)
	c := app.client()

	rec := c.do(t, http.MethodPost, "/api/register/", credentials("alice", "secret-pw"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "registration successful: welcome, alice", rec.Body.String())

	rec = c.do(t, http.MethodPost, "/api/login/", credentials("alice", "secret-pw"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "login successful: welcome, alice", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(controllers.SessionTokenHeader))
	assert.Contains(t, c.cookies, "profrate_session")

	rec = c.do(t, http.MethodGet, "/api/view/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var professors dto.ProfessorListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &professors))
	assert.Equal(t, []string{"Ada Lovelace", "Alan Turing"}, professors.Names)
	assert.Equal(t, []string{dto.NoRatingsLabel, dto.NoRatingsLabel}, professors.Ratings)

	rate := map[string]interface{}{
		"professor_id": "AL1", "module_code": "CS101", "year": "2020", "semester": 1, "rating": "4",
	}
	rec = c.do(t, http.MethodPost, "/api/rate/", rate)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "professor successfully rated", rec.Body.String())

	rec = c.do(t, http.MethodPost, "/api/rate/", rate)
	assertAPIError(t, rec, http.StatusConflict, "duplicate_rating", "you have already rated this professor for this module")

	rec = c.do(t, http.MethodGet, "/api/average/?module_code=CS101&professor_id=AL1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "average of Ada Lovelace (AL1) in module Programming (CS101) is: ****", rec.Body.String())

	rec = c.do(t, http.MethodGet, "/api/average/", map[string]string{"module_code": "CS101", "professor_id": "AL1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "average of Ada Lovelace (AL1) in module Programming (CS101) is: ****", rec.Body.String())

	rec = c.do(t, http.MethodGet, "/api/view/", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &professors))
	assert.Equal(t, []string{"****", dto.NoRatingsLabel}, professors.Ratings)

	rec = c.do(t, http.MethodPost, "/api/logout/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "successfully logged out", rec.Body.String())
	assert.NotContains(t, c.cookies, "profrate_session")

	rec = c.do(t, http.MethodGet, "/api/list/", nil)
	assertAPIError(t, rec, http.StatusUnauthorized, "not_authenticated", "login is required to use this function")
}

func TestListModules(t *testing.T) {
	app := newTestApp(t)
	c := app.loggedIn(t, "bob")

	rec := c.do(t, http.MethodGet, "/api/list/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.ModuleListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2", resp.NumItems)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, dto.ModuleItem{
		ModuleName:    "Programming",
		ModuleCode:    "CS101",
		Year:          "2020",
		Semester:      "1",
		NumProfessors: "2",
		Professors:    []string{"Ada Lovelace", "Alan Turing"},
		ProfessorsID:  []string{"AL1", "AT1"},
	}, resp.Items[0])
}

func TestProtectedRoutesRequireLogin(t *testing.T) {
	app := newTestApp(t)
	c := app.client()

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/logout/"},
		{http.MethodGet, "/api/list/"},
		{http.MethodGet, "/api/view/"},
		{http.MethodGet, "/api/average/"},
		{http.MethodPost, "/api/rate/"},
	} {
		t.Run(tc.path, func(t *testing.T) {
			rec := c.do(t, tc.method, tc.path, nil)
			assertAPIError(t, rec, http.StatusUnauthorized, "not_authenticated", "login is required to use this function")
		})
	}
}

func TestWrongMethodComesBeforeLoginCheck(t *testing.T) {
	app := newTestApp(t)
	c := app.client()

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/login/"},
		{http.MethodGet, "/api/register/"},
		{http.MethodGet, "/api/logout/"},
		{http.MethodPost, "/api/list/"},
		{http.MethodDelete, "/api/view/"},
		{http.MethodPost, "/api/average/"},
		{http.MethodGet, "/api/rate/"},
	} {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := c.do(t, tc.method, tc.path, nil)
			assertAPIError(t, rec, http.StatusMethodNotAllowed, "bad_method", "invalid request method.")
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	app := newTestApp(t)
	rec := app.client().do(t, http.MethodGet, "/api/nothing/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "no such endpoint", rec.Body.String())
}

func TestPing(t *testing.T) {
	app := newTestApp(t)
	rec := app.client().do(t, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"pong","status":"success"}`, rec.Body.String())
}

func TestRegisterRules(t *testing.T) {
	app := newTestApp(t)

	c := app.loggedIn(t, "carol")
	rec := c.do(t, http.MethodPost, "/api/register/", credentials("dave", "pw"))
	assertAPIError(t, rec, http.StatusBadRequest, "already_authenticated", "cannot register a new user while logged in")

	anon := app.client()
	rec = anon.do(t, http.MethodPost, "/api/register/", credentials("carol", "other"))
	assertAPIError(t, rec, http.StatusConflict, "duplicate_username", "registration failed: username exists")

	rec = anon.do(t, http.MethodPost, "/api/register/", `{"username":"erin"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "password")

	rec = anon.do(t, http.MethodPost, "/api/register/", `{"username":"erin","password":"x","admin":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, `unknown field "admin"`, rec.Body.String())
}

func TestLoginFailures(t *testing.T) {
	app := newTestApp(t)
	app.loggedIn(t, "frank")
	c := app.client()

	rec := c.do(t, http.MethodPost, "/api/login/", credentials("frank", "wrong"))
	assertAPIError(t, rec, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")

	rec = c.do(t, http.MethodPost, "/api/login/", credentials("nobody", "secret-pw"))
	assertAPIError(t, rec, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")

	require.NoError(t, app.deps.Services.Auth.SetActive(context.Background(), "frank", false))
	rec = c.do(t, http.MethodPost, "/api/login/", credentials("frank", "secret-pw"))
	assertAPIError(t, rec, http.StatusUnauthorized, "inactive_account", "inactive account")
	assert.Empty(t, c.cookies)
}

func TestBearerTokenSession(t *testing.T) {
	app := newTestApp(t)
	c := app.client()

	rec := c.do(t, http.MethodPost, "/api/register/", credentials("grace", "secret-pw"))
	require.Equal(t, http.StatusOK, rec.Code)
	rec = c.do(t, http.MethodPost, "/api/login/", credentials("grace", "secret-pw"))
	require.Equal(t, http.StatusOK, rec.Code)

	api := app.client()
	api.bearer = rec.Header().Get(controllers.SessionTokenHeader)

	rec = api.do(t, http.MethodGet, "/api/list/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/logout/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// both credentials shared the session, so both are gone
	rec = api.do(t, http.MethodGet, "/api/list/", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = c.do(t, http.MethodGet, "/api/list/", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRateRejections(t *testing.T) {
	app := newTestApp(t)
	c := app.loggedIn(t, "heidi")

	rate := func(professor, code string, year, semester, rating interface{}) map[string]interface{} {
		return map[string]interface{}{
			"professor_id": professor, "module_code": code, "year": year, "semester": semester, "rating": rating,
		}
	}

	tests := []struct {
		name    string
		body    interface{}
		status  int
		code    string
		message string
	}{
		{"not numeric", rate("AL1", "CS101", 2020, 1, "four"), http.StatusBadRequest, "rating_not_numeric", "provided rating is not a number"},
		{"fraction", rate("AL1", "CS101", 2020, 1, 3.5), http.StatusBadRequest, "rating_not_numeric", "provided rating is not a number"},
		{"too high", rate("AL1", "CS101", 2020, 1, 6), http.StatusBadRequest, "rating_range", "rating has to be an integer between 1 and 5"},
		{"zero", rate("AL1", "CS101", 2020, 1, "0"), http.StatusBadRequest, "rating_range", "rating has to be an integer between 1 and 5"},
		{"unknown module", rate("AL1", "CS999", 2020, 1, 3), http.StatusNotFound, "module_not_found", "such module does not exist"},
		{"wrong year", rate("AL1", "CS101", 2021, 1, 3), http.StatusNotFound, "module_not_found", "such module does not exist"},
		{"unknown professor", rate("ZZ9", "CS101", 2020, 1, 3), http.StatusNotFound, "professor_not_found", "such professor does not exist"},
		{"not teaching", rate("AL1", "CS201", 2021, 2, 3), http.StatusUnprocessableEntity, "professor_not_teaching", "such professor does not teach this module"},
		{"huge rating", rate("AL1", "CS101", 2020, 1, "99999999999999999999"), http.StatusBadRequest, "rating_range", "rating has to be an integer between 1 and 5"},
		{"long professor id", rate("ABCDEFGHI", "CS101", 2020, 1, "5"), http.StatusNotFound, "professor_not_found", "such professor does not exist"},
		{"long module code", rate("AL1", "ABCDEFGHIJKLMNOPQRS", 2020, 1, "5"), http.StatusNotFound, "module_not_found", "such module does not exist"},
		{"rating checked before long id", rate("ABCDEFGHI", "CS101", 2020, 1, "x"), http.StatusBadRequest, "rating_not_numeric", "provided rating is not a number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := c.do(t, http.MethodPost, "/api/rate/", tt.body)
			assertAPIError(t, rec, tt.status, tt.code, tt.message)
		})
	}
}

func TestAverageRejections(t *testing.T) {
	app := newTestApp(t)
	c := app.loggedIn(t, "ivan")

	rec := c.do(t, http.MethodGet, "/api/average/?module_code=CS999&professor_id=AL1", nil)
	assertAPIError(t, rec, http.StatusNotFound, "module_not_found", "such module does not exist")

	rec = c.do(t, http.MethodGet, "/api/average/?module_code=CS201&professor_id=AL1", nil)
	assertAPIError(t, rec, http.StatusUnprocessableEntity, "professor_not_teaching_code",
		"such professor does not teach any modules with code CS201")

	rec = c.do(t, http.MethodGet, "/api/average/?module_code=CS201&professor_id=AT1", nil)
	assertAPIError(t, rec, http.StatusNotFound, "no_ratings",
		"such professor does not have any ratings for modules with code CS201")

	rec = c.do(t, http.MethodGet, "/api/average/?module_code=CS101&professor_id=ABCDEFGHI", nil)
	assertAPIError(t, rec, http.StatusNotFound, "professor_not_found", "such professor does not exist")

	rec = c.do(t, http.MethodGet, "/api/average/?module_code=ABCDEFGHIJKLMNOPQRS&professor_id=AL1", nil)
	assertAPIError(t, rec, http.StatusNotFound, "module_not_found", "such module does not exist")

	rec = c.do(t, http.MethodGet, "/api/average/?module_code=CS201", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "professor_id")
}

func TestDeactivatedAccountLosesSession(t *testing.T) {
	app := newTestApp(t)
	c := app.loggedIn(t, "mallory")

	rec := c.do(t, http.MethodGet, "/api/list/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, app.deps.Services.Auth.SetActive(context.Background(), "mallory", false))

	rec = c.do(t, http.MethodPost, "/api/rate/", map[string]interface{}{
		"professor_id": "AL1", "module_code": "CS101", "year": 2020, "semester": 1, "rating": 5,
	})
	assertAPIError(t, rec, http.StatusUnauthorized, "not_authenticated", "login is required to use this function")

	rec = c.do(t, http.MethodGet, "/api/list/", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.loggedIn(t, "trent").do(t, http.MethodGet, "/api/view/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var professors dto.ProfessorListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &professors))
	assert.Equal(t, []string{dto.NoRatingsLabel, dto.NoRatingsLabel}, professors.Ratings)
}
