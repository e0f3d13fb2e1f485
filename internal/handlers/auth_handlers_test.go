package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mcanepa/tienda/internal/models"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	payload := map[string]string{"username": "test_user", "password": "password"}
	rec, c := env.doJSONRequest(http.MethodPost, "/api/register", payload)

	require.NoError(t, env.A.Register(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var user models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	require.Equal(t, "test_user", user.Username)
	require.Equal(t, "user", user.Role)
	require.NotEmpty(t, user.ID)

	var stored models.User
	require.NoError(t, env.DB.Where("username = ?", "test_user").First(&stored).Error)
	require.NotEqual(t, "password", stored.PasswordHash)

	_, c = env.doJSONRequest(http.MethodPost, "/api/register", payload)
	he := httpError(t, env.A.Register(c))
	require.Equal(t, http.StatusConflict, he.Code)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("test_user", "user")

	rec, c := env.doJSONRequest(http.MethodPost, "/api/login", map[string]string{
		"username": "test_user",
		"password": "password",
	})
	require.NoError(t, env.A.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		IsAdmin      bool   `json:"is_admin"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	require.False(t, resp.IsAdmin)

	var stored models.RefreshToken
	require.NoError(t, env.DB.Where("token = ?", resp.RefreshToken).First(&stored).Error)
	require.False(t, stored.Revoked)
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("test_user", "user")

	_, c := env.doJSONRequest(http.MethodPost, "/api/login", map[string]string{
		"username": "test_user",
		"password": "wrong",
	})
	he := httpError(t, env.A.Login(c))
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestSeedUsersCreatesAdminAndSeller(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/users/seed", nil)
	require.NoError(t, env.A.SeedUsers(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var admin, seller models.User
	require.NoError(t, env.DB.Where("role = ?", "admin").First(&admin).Error)
	require.NoError(t, env.DB.Where("role = ?", "seller").First(&seller).Error)
	require.Equal(t, "Demo Shop", seller.SellerName)

	// running again does not duplicate accounts
	rec, c = env.doJSONRequest(http.MethodGet, "/api/users/seed", nil)
	require.NoError(t, env.A.SeedUsers(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, env.DB.Model(&models.User{}).Count(&count).Error)
	require.Equal(t, int64(2), count)
}
