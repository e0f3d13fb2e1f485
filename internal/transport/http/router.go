package httpserver

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mcanepa/tienda/internal/handlers"
	auth "github.com/mcanepa/tienda/internal/middleware/auth"
)

type Deps struct {
	DB              *gorm.DB
	ProductHandler  *handlers.ProductHandler
	AuthHandler     *handlers.AuthHandler
	ShippingHandler *handlers.ShippingHandler
	SearchHandler   *handlers.SearchHandler
	Tokens          *auth.TokenService
}

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func Register(e *echo.Echo, d *Deps) {
	e.Validator = NewValidator()

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	api := e.Group("/api")

	api.POST("/register", d.AuthHandler.Register)
	api.POST("/login", d.AuthHandler.Login)
	api.POST("/logout", d.AuthHandler.LogOut)
	api.GET("/users/seed", d.AuthHandler.SeedUsers)
	api.GET("/search", d.SearchHandler.Search)

	products := api.Group("/products")

	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/categories", d.ProductHandler.GetCategories)
	products.GET("/seed", d.ProductHandler.SeedProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.POST("", d.ProductHandler.CreateProduct, d.Tokens.RequireSellerOrAdmin)
	products.PUT("/:id", d.ProductHandler.UpdateProduct, d.Tokens.RequireSellerOrAdmin)
	products.DELETE("/:id", d.ProductHandler.DeleteProduct, d.Tokens.RequireAdmin)
	products.POST("/:id/reviews", d.ProductHandler.CreateReview, d.Tokens.RequireAuth)

	cart := api.Group("/cart", d.Tokens.RequireAuth)

	cart.GET("/shipping-address", d.ShippingHandler.GetShippingAddress)
	cart.PUT("/shipping-address", d.ShippingHandler.SubmitShippingAddress)
	cart.POST("/shipping-address/draft", d.ShippingHandler.SaveDraft)
	cart.PUT("/map-address", d.ShippingHandler.SetMapAddress)
}
