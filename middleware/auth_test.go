package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vishwajeetguru/smart-truck-manager/Config"
	"github.com/vishwajeetguru/smart-truck-manager/Models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*fiber.App, *Authenticator, Models.Profile) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&Models.Profile{}))

	profile := Models.Profile{Email: "owner@example.com", Role: Models.RoleUser}
	require.NoError(t, db.Create(&profile).Error)

	auth := NewAuthenticator(db, Config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour})
	app := fiber.New()
	app.Get("/me", auth.Verify(), func(c *fiber.Ctx) error {
		p, ok := CurrentProfile(c)
		if !ok {
			return c.SendStatus(http.StatusInternalServerError)
		}
		return c.SendString(p.ID)
	})
	return app, auth, profile
}

func get(t *testing.T, app *fiber.App, mutate func(*http.Request)) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	mutate(req)
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestVerifyBearerToken(t *testing.T) {
	app, auth, profile := setup(t)
	token, expires, err := auth.IssueToken(profile.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	resp := get(t, app, func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) })
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestVerifyCookieToken(t *testing.T) {
	app, auth, profile := setup(t)
	token, _, err := auth.IssueToken(profile.ID)
	require.NoError(t, err)

	resp := get(t, app, func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "jwt", Value: token}) })
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestVerifyRejects(t *testing.T) {
	app, auth, profile := setup(t)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    profile.ID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer: profile.ID,
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	unknown, _, err := auth.IssueToken("no-such-profile")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"malformed", "abc.def"},
		{"expired", expired},
		{"wrong secret", foreign},
		{"unknown profile", unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := get(t, app, func(r *http.Request) {
				if tt.token != "" {
					r.Header.Set("Authorization", "Bearer "+tt.token)
				}
			})
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestVerifyBlockedProfile(t *testing.T) {
	app, auth, profile := setup(t)
	require.NoError(t, auth.DB.Model(&profile).Update("is_blocked", true).Error)
	token, _, err := auth.IssueToken(profile.ID)
	require.NoError(t, err)

	resp := get(t, app, func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) })
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
