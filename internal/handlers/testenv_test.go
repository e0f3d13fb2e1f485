package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mcanepa/tienda/internal/hash"
	"github.com/mcanepa/tienda/internal/models"
	"github.com/mcanepa/tienda/internal/mykafka"
)

type testEnv struct {
	T             *testing.T
	E             *echo.Echo
	DB            *gorm.DB
	P             *ProductHandler
	A             *AuthHandler
	S             *ShippingHandler
	JWTSecret     []byte
	RefreshSecret []byte
}

type testValidator struct {
	validate *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Review{},
		&models.RefreshToken{},
		&models.ShippingAddress{},
		&models.MapAddress{},
	); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	db := initTestDB(t)
	jwtSecret := []byte("test_jwt_secret")
	refreshSecret := []byte("test_refresh_secret")

	e := echo.New()
	e.Validator = &testValidator{validate: validator.New()}

	// zero producer and nil ES client: events and indexing become no-ops
	prod := &mykafka.Producer{}

	return &testEnv{
		T:             t,
		E:             e,
		DB:            db,
		P:             &ProductHandler{DB: db, Producer: prod, Index: "products"},
		A:             &AuthHandler{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret, Producer: prod},
		S:             &ShippingHandler{DB: db},
		JWTSecret:     jwtSecret,
		RefreshSecret: refreshSecret,
	}
}

func (env *testEnv) doJSONRequest(method, path string, body interface{}, cookies ...*http.Cookie) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func (env *testEnv) createUser(username, role string) models.User {
	passwordHash, err := hash.HashPassword("password")
	require.NoError(env.T, err)

	user := models.User{Username: username, PasswordHash: passwordHash, Role: role}
	if role == "seller" {
		user.SellerName = username + " shop"
	}
	require.NoError(env.T, env.DB.Create(&user).Error)
	return user
}

func (env *testEnv) asUser(c echo.Context, user models.User) {
	c.Set("userID", user.ID)
	c.Set("role", user.Role)
	c.Set("username", user.Username)
}

func httpError(t *testing.T, err error) *echo.HTTPError {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError, got %v", err)
	return he
}
