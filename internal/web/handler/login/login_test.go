package login

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/playops/playops-admin/internal/auth"
	"github.com/playops/playops-admin/internal/config"
	"github.com/playops/playops-admin/internal/db/models"
	"github.com/playops/playops-admin/internal/perm"
	"github.com/playops/playops-admin/internal/storagetest"
	websess "github.com/playops/playops-admin/internal/web/session"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to open sqlite in-memory db")

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
	))

	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		DevMode: false,
		Webserver: config.Webserver{
			URL:     "http://localhost",
			Port:    3000,
			Session: config.Session{ExpiryTime: time.Minute},
		},
	}
}

func newTestAuthService(t *testing.T, db *gorm.DB) (*auth.Service, *storagetest.Storage) {
	t.Helper()

	st := storagetest.New()

	return auth.NewService(db, websess.New(st), nil, time.Minute), st
}

func seedAdmin(t *testing.T, db *gorm.DB, email, password string) *models.User {
	t.Helper()

	user := models.User{
		Active:   true,
		Email:    email,
		Username: email,
		Password: models.HashPassword(password),
		Type:     models.AccountTypeAdmin,
	}
	require.NoError(t, db.Create(&user).Error)

	return &user
}

func performLogin(t *testing.T, app *fiber.App, body string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, Path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err, "app.Test failed")

	return resp
}

func TestPost_Success_SetsCookie(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	authSvc, _ := newTestAuthService(t, db)
	app := fiber.New()

	var s Service
	require.NoError(t, s.Init(app, cfg, authSvc))

	seedAdmin(t, db, "bob@example.com", "s3cr3t-pass")

	resp := performLogin(t, app, `{"email":"bob@example.com","password":"s3cr3t-pass"}`)

	defer func() {
		_ = resp.Body.Close()
	}()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	setCookie := resp.Header.Get("Set-Cookie")
	assert.Contains(t, setCookie, websess.CookieName+"=")
	assert.Contains(t, strings.ToLower(setCookie), "httponly")
	assert.Contains(t, strings.ToLower(setCookie), "secure")

	var body struct {
		User        models.User       `json:"user"`
		Permissions []perm.Permission `json:"permissions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "bob@example.com", body.User.Email)
}

func TestPost_DevModeDisablesSecure(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	cfg.DevMode = true
	authSvc, _ := newTestAuthService(t, db)
	app := fiber.New()

	var s Service
	require.NoError(t, s.Init(app, cfg, authSvc))

	seedAdmin(t, db, "carol@example.com", "s3cr3t-pass")

	resp := performLogin(t, app, `{"email":"carol@example.com","password":"s3cr3t-pass"}`)

	defer func() {
		_ = resp.Body.Close()
	}()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, strings.ToLower(resp.Header.Get("Set-Cookie")), "secure")
}

func TestPost_FreshSessionIDPerLogin(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	authSvc, _ := newTestAuthService(t, db)
	app := fiber.New()

	var s Service
	require.NoError(t, s.Init(app, cfg, authSvc))

	seedAdmin(t, db, "bob@example.com", "s3cr3t-pass")

	first := performLogin(t, app, `{"email":"bob@example.com","password":"s3cr3t-pass"}`)
	second := performLogin(t, app, `{"email":"bob@example.com","password":"s3cr3t-pass"}`)

	defer func() {
		_ = first.Body.Close()
		_ = second.Body.Close()
	}()

	sidOf := func(resp *http.Response) string {
		for _, part := range strings.Split(resp.Header.Get("Set-Cookie"), ";") {
			part = strings.TrimSpace(part)
			if strings.HasPrefix(part, websess.CookieName+"=") {
				return strings.TrimPrefix(part, websess.CookieName+"=")
			}
		}

		return ""
	}

	a, b := sidOf(first), sidOf(second)
	require.NotEmpty(t, a)
	require.NotEmpty(t, b)
	assert.NotEqual(t, a, b, "each login must mint a fresh session id")
}

func TestPost_FailuresShareOneMessage(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	authSvc, _ := newTestAuthService(t, db)
	app := fiber.New()

	var s Service
	require.NoError(t, s.Init(app, cfg, authSvc))

	seedAdmin(t, db, "bob@example.com", "s3cr3t-pass")

	cases := []struct {
		name string
		body string
	}{
		{"unknown email", `{"email":"nobody@example.com","password":"whatever"}`},
		{"wrong password", `{"email":"bob@example.com","password":"wrong"}`},
		{"invalid email format", `{"email":"not-an-email","password":"whatever"}`},
		{"missing password", `{"email":"bob@example.com"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := performLogin(t, app, tc.body)

			defer func() {
				_ = resp.Body.Close()
			}()

			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

			// no session cookie on failure
			assert.NotContains(t, resp.Header.Get("Set-Cookie"), websess.CookieName+"=")

			raw, _ := io.ReadAll(resp.Body)
			assert.Contains(t, string(raw), auth.ErrInvalidCredentials.Error())
		})
	}
}

func TestPost_MalformedBody(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	authSvc, _ := newTestAuthService(t, db)
	app := fiber.New()

	var s Service
	require.NoError(t, s.Init(app, cfg, authSvc))

	resp := performLogin(t, app, "{")

	defer func() {
		_ = resp.Body.Close()
	}()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestInit_NilArgs(t *testing.T) {
	var s Service

	assert.Error(t, s.Init(nil, nil, nil))
}
