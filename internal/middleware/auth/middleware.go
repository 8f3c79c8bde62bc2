package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/daru-pasal/liquor_shop/internal/models"
)

const (
	ctxUserID = "userID"
	ctxRole   = "role"
)

type TokenService struct {
	DB            *gorm.DB
	JWTSecret     []byte
	RefreshSecret []byte
}

// RequireLogin admits requests with a valid access cookie, transparently
// rotating an expired one through the refresh cookie.
func (t *TokenService) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := t.authenticate(c); err != nil {
			return err
		}
		return next(c)
	}
}

// AdminOnly is RequireLogin plus the role capability check.
func (t *TokenService) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := t.authenticate(c); err != nil {
			return err
		}
		if !CurrentRole(c).IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return next(c)
	}
}

// OptionalAuth populates the identity when a valid cookie is present and
// lets the request through anonymously otherwise. Guest checkout depends
// on this: order creation never requires a login.
func (t *TokenService) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		_ = t.authenticate(c)
		return next(c)
	}
}

func (t *TokenService) authenticate(c echo.Context) error {
	if cookie, err := c.Cookie(AccessCookieName); err == nil && cookie.Value != "" {
		claims, err := parseHMAC(cookie.Value, t.JWTSecret)
		if err == nil {
			return setUserContext(c, claims)
		}
		if !errors.Is(err, jwt.ErrTokenExpired) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}
	}

	// Access token missing or expired: rotate via the refresh cookie.
	rfCookie, err := c.Cookie(RefreshCookieName)
	if err != nil || rfCookie.Value == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing auth cookie")
	}

	newAccess, newRefresh, claims, err := t.rotate(rfCookie.Value)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	c.SetCookie(CreateCookie(AccessCookieName, newAccess, "/", time.Now().Add(AccessTokenTTL)))
	c.SetCookie(CreateCookie(RefreshCookieName, newRefresh, "/", time.Now().Add(RefreshTokenTTL)))

	return setUserContext(c, claims)
}

// rotate revokes the presented refresh token and issues a fresh pair.
func (t *TokenService) rotate(raw string) (string, string, jwt.MapClaims, error) {
	claims, err := ValidateRefresh(raw, t.RefreshSecret, t.DB)
	if err != nil {
		return "", "", nil, err
	}

	sub, ok := claims["sub"].(float64)
	if !ok {
		return "", "", nil, errors.New("invalid subject claim")
	}
	roleStr, ok := claims["role"].(string)
	if !ok {
		return "", "", nil, errors.New("invalid role claim")
	}
	userID := uint(sub)
	role := models.Role(roleStr)
	if !role.Valid() {
		return "", "", nil, errors.New("unknown role")
	}

	newAccess, err := SignAccessToken(userID, role, t.JWTSecret)
	if err != nil {
		return "", "", nil, err
	}
	newRefresh, err := SignRefreshToken(userID, role, t.RefreshSecret)
	if err != nil {
		return "", "", nil, err
	}

	// Revoke and replace together: a failure between the two writes must
	// not leave the user without a valid refresh token.
	if err := t.DB.Transaction(func(tx *gorm.DB) error {
		if err := RevokeRefreshToken(tx, raw); err != nil {
			return err
		}
		return SaveRefreshToken(tx, newRefresh, userID)
	}); err != nil {
		return "", "", nil, err
	}

	return newAccess, newRefresh, claims, nil
}

func setUserContext(c echo.Context, claims jwt.MapClaims) error {
	sub, ok := claims["sub"].(float64)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid subject claim")
	}
	roleStr, ok := claims["role"].(string)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid role claim")
	}
	role := models.Role(roleStr)
	if !role.Valid() {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown role")
	}

	c.Set(ctxUserID, uint(sub))
	c.Set(ctxRole, role)
	return nil
}

// CurrentUserID returns the authenticated user id, or false for anonymous
// requests.
func CurrentUserID(c echo.Context) (uint, bool) {
	id, ok := c.Get(ctxUserID).(uint)
	return id, ok
}

func CurrentRole(c echo.Context) models.Role {
	if role, ok := c.Get(ctxRole).(models.Role); ok {
		return role
	}
	return models.RoleUser
}
