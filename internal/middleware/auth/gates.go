package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireAuth admits any request carrying a valid session.
func (t *TokenService) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := t.CheckCookie(c); err != nil {
			return err
		}
		return next(c)
	}
}

// RequireAdmin admits admin sessions only.
func (t *TokenService) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		role, err := t.CheckCookie(c)
		if err != nil {
			return err
		}
		if role != "admin" {
			return echo.NewHTTPError(http.StatusForbidden, "not enough rights")
		}
		return next(c)
	}
}

// RequireSellerOrAdmin admits sessions with the seller or admin role.
func (t *TokenService) RequireSellerOrAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		role, err := t.CheckCookie(c)
		if err != nil {
			return err
		}
		if role != "seller" && role != "admin" {
			return echo.NewHTTPError(http.StatusForbidden, "not enough rights")
		}
		return next(c)
	}
}
