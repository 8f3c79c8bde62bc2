package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/daru-pasal/liquor_shop/internal/hash"
	"github.com/daru-pasal/liquor_shop/internal/logging"
	"github.com/daru-pasal/liquor_shop/internal/middleware/auth"
	"github.com/daru-pasal/liquor_shop/internal/models"
	"github.com/daru-pasal/liquor_shop/internal/mykafka"
)

type AuthHandler struct {
	DB            *gorm.DB
	JWTSecret     []byte
	RefreshSecret []byte
	Producer      *mykafka.Producer
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "user_events", key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish failed", "error", err)
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req credentials
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
	}

	var existing models.User
	err := h.DB.Where("username = ?", req.Username).First(&existing).Error
	if err == nil {
		return echo.NewHTTPError(http.StatusConflict, "user already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logging.FromContext(c.Request().Context()).Error("register lookup failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to register")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to register")
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: pwHash,
		Role:         models.RoleUser,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		logging.FromContext(c.Request().Context()).Error("register create failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to register")
	}

	h.publish(c, fmt.Sprint(user.ID), map[string]any{
		"type":     "user_registered",
		"user_id":  user.ID,
		"username": user.Username,
	})

	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req credentials
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var user models.User
	if err := h.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
	}

	accessToken, err := auth.SignAccessToken(user.ID, user.Role, h.JWTSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create access token")
	}
	refreshToken, err := auth.SignRefreshToken(user.ID, user.Role, h.RefreshSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create refresh token")
	}
	if err := auth.SaveRefreshToken(h.DB, refreshToken, user.ID); err != nil {
		logging.FromContext(c.Request().Context()).Error("save refresh token failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create refresh token")
	}

	c.SetCookie(auth.CreateCookie(auth.AccessCookieName, accessToken, "/", time.Now().Add(auth.AccessTokenTTL)))
	c.SetCookie(auth.CreateCookie(auth.RefreshCookieName, refreshToken, "/", time.Now().Add(auth.RefreshTokenTTL)))

	h.publish(c, fmt.Sprint(user.ID), map[string]any{
		"type":     "user_logged_in",
		"user_id":  user.ID,
		"username": user.Username,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"is_admin":      user.Role.IsAdmin(),
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	refreshCookie, err := c.Cookie(auth.RefreshCookieName)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing refresh cookie")
	}

	if err := auth.RevokeRefreshToken(h.DB, refreshCookie.Value); err != nil {
		logging.FromContext(c.Request().Context()).Error("revoke refresh token failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to log out")
	}

	expired := time.Now().Add(-1 * time.Hour)
	c.SetCookie(auth.CreateCookie(auth.AccessCookieName, "", "/", expired))
	c.SetCookie(auth.CreateCookie(auth.RefreshCookieName, "", "/", expired))

	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}
