package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mcanepa/tienda/internal/hash"
	"github.com/mcanepa/tienda/internal/logging"
	auth "github.com/mcanepa/tienda/internal/middleware/auth"
	"github.com/mcanepa/tienda/internal/models"
	"github.com/mcanepa/tienda/internal/mykafka"
)

type AuthHandler struct {
	DB            *gorm.DB
	JWTSecret     []byte
	RefreshSecret []byte
	Producer      *mykafka.Producer
}

func (h *AuthHandler) publishUserEvent(c echo.Context, userID uint, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "user_events", fmt.Sprint(userID), event); err != nil {
		logging.FromContext(c.Request().Context()).Warn("kafka publish failed", "error", err)
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
	}

	var existing models.User
	result := h.DB.Where("username = ?", req.Username).First(&existing)
	if result.Error == nil {
		return echo.NewHTTPError(http.StatusConflict, "user already exists")
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot check user")
	}

	passwordHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot hash password")
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: passwordHash,
		Role:         "user",
	}
	if err := h.DB.Create(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create user")
	}

	h.publishUserEvent(c, user.ID, map[string]any{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.Username,
	})

	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var user models.User
	if err := h.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
	}

	accessToken, err := auth.SignAccessToken(user.ID, user.Username, user.Role, h.JWTSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create access token")
	}
	refreshToken, err := auth.SignRefreshToken(user.ID, user.Username, user.Role, h.RefreshSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create refresh token")
	}
	if err := auth.SaveRefreshToken(h.DB, refreshToken, user.ID, user.Role); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not save refresh token")
	}

	c.SetCookie(auth.CreateCookie("accessToken", accessToken, "/", time.Now().Add(auth.AccessTTL)))
	c.SetCookie(auth.CreateCookie("refreshToken", refreshToken, "/", time.Now().Add(auth.RefreshTTL)))

	h.publishUserEvent(c, user.ID, map[string]any{
		"type":     "user_logged_in",
		"userID":   user.ID,
		"username": user.Username,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"is_admin":      user.Role == "admin",
		"is_seller":     user.Role == "seller",
	})
}

func (h *AuthHandler) LogOut(c echo.Context) error {
	refreshCookie, err := c.Cookie("refreshToken")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "not logged in")
	}

	result := h.DB.Model(&models.RefreshToken{}).
		Where("token = ?", refreshCookie.Value).
		Update("revoked", true)
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot revoke token")
	}

	expired := time.Now().Add(-1 * time.Hour)
	c.SetCookie(auth.CreateCookie("accessToken", "", "/", expired))
	c.SetCookie(auth.CreateCookie("refreshToken", "", "/", expired))

	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// SeedUsers creates the default admin and seller accounts the demo catalog
// seeder depends on. Existing usernames are left untouched.
func (h *AuthHandler) SeedUsers(c echo.Context) error {
	defaults := []struct {
		Username string
		Password string
		Role     string
		Seller   string
	}{
		{Username: "admin", Password: "admin123", Role: "admin"},
		{Username: "seller", Password: "seller123", Role: "seller", Seller: "Demo Shop"},
	}

	created := make([]models.User, 0, len(defaults))
	for _, d := range defaults {
		var existing models.User
		err := h.DB.Where("username = ?", d.Username).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot check user")
		}

		passwordHash, err := hash.HashPassword(d.Password)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot hash password")
		}
		user := models.User{
			Username:     d.Username,
			PasswordHash: passwordHash,
			Role:         d.Role,
		}
		if d.Seller != "" {
			user.SellerName = d.Seller
			user.SellerLogo = "/images/logo1.png"
		}
		if err := h.DB.Create(&user).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot create user")
		}
		created = append(created, user)
	}

	return c.JSON(http.StatusOK, echo.Map{"createdUsers": created})
}
