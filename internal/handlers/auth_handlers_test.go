package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daru-pasal/liquor_shop/internal/models"
	"github.com/daru-pasal/liquor_shop/internal/mykafka"
)

func newAuthHandler(t *testing.T) *AuthHandler {
	t.Helper()
	return &AuthHandler{
		DB:            initTestDB(t),
		JWTSecret:     []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		Producer:      &mykafka.Producer{},
	}
}

func TestRegister(t *testing.T) {
	h := newAuthHandler(t)

	payload := map[string]string{"username": "test_user", "password": "password"}
	rec, c := doJSON(t, http.MethodPost, "/api/v1/auth/register", payload)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var user models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "test_user", user.Username)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotZero(t, user.ID)

	var stored models.User
	require.NoError(t, h.DB.First(&stored, user.ID).Error)
	assert.NotEqual(t, "password", stored.PasswordHash)

	// Same username again.
	_, c = doJSON(t, http.MethodPost, "/api/v1/auth/register", payload)
	err := h.Register(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Code)
}

func TestRegister_MissingFields(t *testing.T) {
	h := newAuthHandler(t)

	_, c := doJSON(t, http.MethodPost, "/api/v1/auth/register", map[string]string{"username": "x"})
	err := h.Register(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestLogin(t *testing.T) {
	h := newAuthHandler(t)

	payload := map[string]string{"username": "test_user", "password": "password"}
	_, c := doJSON(t, http.MethodPost, "/api/v1/auth/register", payload)
	require.NoError(t, h.Register(c))

	rec, c := doJSON(t, http.MethodPost, "/api/v1/auth/login", payload)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		IsAdmin      bool   `json:"is_admin"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.False(t, resp.IsAdmin)

	cookies := rec.Result().Cookies()
	names := make(map[string]bool, len(cookies))
	for _, ck := range cookies {
		names[ck.Name] = true
	}
	assert.True(t, names["accessToken"])
	assert.True(t, names["refreshToken"])

	var stored models.RefreshToken
	require.NoError(t, h.DB.Where("token = ?", resp.RefreshToken).First(&stored).Error)
	assert.False(t, stored.Revoked)
}

func TestLogin_WrongPassword(t *testing.T) {
	h := newAuthHandler(t)

	_, c := doJSON(t, http.MethodPost, "/api/v1/auth/register", map[string]string{"username": "test_user", "password": "password"})
	require.NoError(t, h.Register(c))

	_, c = doJSON(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "test_user", "password": "wrong"})
	err := h.Login(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestLogout_RevokesRefreshToken(t *testing.T) {
	h := newAuthHandler(t)

	payload := map[string]string{"username": "test_user", "password": "password"}
	_, c := doJSON(t, http.MethodPost, "/api/v1/auth/register", payload)
	require.NoError(t, h.Register(c))

	rec, c := doJSON(t, http.MethodPost, "/api/v1/auth/login", payload)
	require.NoError(t, h.Login(c))

	var resp struct {
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	rec, c = doJSON(t, http.MethodPost, "/api/v1/auth/logout", nil)
	c.Request().AddCookie(&http.Cookie{Name: "refreshToken", Value: resp.RefreshToken})
	require.NoError(t, h.Logout(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var stored models.RefreshToken
	require.NoError(t, h.DB.Where("token = ?", resp.RefreshToken).First(&stored).Error)
	assert.True(t, stored.Revoked)
}
