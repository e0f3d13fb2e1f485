package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mcanepa/tienda/internal/catalog"
	"github.com/mcanepa/tienda/internal/es"
	"github.com/mcanepa/tienda/internal/logging"
	"github.com/mcanepa/tienda/internal/models"
	"github.com/mcanepa/tienda/internal/mykafka"
	"github.com/mcanepa/tienda/internal/seed"
	"github.com/mcanepa/tienda/internal/util"
)

// ErrAlreadyReviewed rejects a second review under the same name.
var ErrAlreadyReviewed = errors.New("you already submitted a review")

type ProductHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	ES       *elasticsearch.Client
	Index    string
}

type sellerInfo struct {
	ID         uint    `json:"id"`
	Name       string  `json:"name"`
	Logo       string  `json:"logo,omitempty"`
	Rating     float64 `json:"rating"`
	NumReviews int     `json:"numReviews"`
}

type productResponse struct {
	models.Product
	Seller sellerInfo `json:"seller"`
}

// The listing carries only the seller's display identity; rating and
// review count ship with the single-product view.
type listSellerInfo struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
}

type productListItem struct {
	models.Product
	Seller listSellerInfo `json:"seller"`
}

func toProductListItem(p models.Product) productListItem {
	return productListItem{
		Product: p,
		Seller: listSellerInfo{
			ID:   p.Seller.ID,
			Name: p.Seller.SellerName,
			Logo: p.Seller.SellerLogo,
		},
	}
}

func toProductResponse(p models.Product) productResponse {
	return productResponse{
		Product: p,
		Seller: sellerInfo{
			ID:         p.Seller.ID,
			Name:       p.Seller.SellerName,
			Logo:       p.Seller.SellerLogo,
			Rating:     p.Seller.SellerRating,
			NumReviews: p.Seller.SellerNumReviews,
		},
	}
}

func parseFloatDefault(s string, def float64) float64 {
	if s == "" {
		return def
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	return def
}

func userIDFrom(c echo.Context) (uint, error) {
	id, ok := c.Get("userID").(uint)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "not logged in")
	}
	return id, nil
}

func usernameFrom(c echo.Context) (string, error) {
	name, ok := c.Get("username").(string)
	if !ok || name == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "not logged in")
	}
	return name, nil
}

func (h *ProductHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "product_events", key, event); err != nil {
		logging.FromContext(c.Request().Context()).Warn("kafka publish failed", "error", err)
	}
}

func (h *ProductHandler) reindex(c echo.Context, p models.Product) {
	if h.ES == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := es.IndexProduct(ctx, h.ES, h.Index, p); err != nil {
		logging.FromContext(c.Request().Context()).Warn("es index failed", "error", err)
	}
}

func (h *ProductHandler) dropFromIndex(c echo.Context, id uint) {
	if h.ES == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := es.DeleteProduct(ctx, h.ES, h.Index, id); err != nil {
		logging.FromContext(c.Request().Context()).Warn("es delete failed", "error", err)
	}
}

// GetProducts lists one catalog page filtered and sorted by the query
// parameters.
func (h *ProductHandler) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()

	params := catalog.ListParams{
		Page:     util.ParseIntDefault(c.QueryParam("pageNumber"), 1),
		Name:     c.QueryParam("name"),
		Category: c.QueryParam("category"),
		Seller:   uint(util.ParseIntDefault(c.QueryParam("seller"), 0)),
		Min:      parseFloatDefault(c.QueryParam("min"), 0),
		Max:      parseFloatDefault(c.QueryParam("max"), 0),
		Rating:   parseFloatDefault(c.QueryParam("rating"), 0),
		Order:    c.QueryParam("order"),
	}
	if params.Page < 1 {
		params.Page = 1
	}

	items, pages, err := catalog.List(ctx, h.DB, params)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list products")
	}

	products := make([]productListItem, len(items))
	for i, p := range items {
		products[i] = toProductListItem(p)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"products": products,
		"page":     params.Page,
		"pages":    pages,
	})
}

func (h *ProductHandler) GetCategories(c echo.Context) error {
	categories, err := catalog.Categories(c.Request().Context(), h.DB)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list categories")
	}
	return c.JSON(http.StatusOK, categories)
}

// SeedProducts bulk-inserts the demo catalog, assigning every product to
// the first existing seller user.
func (h *ProductHandler) SeedProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.seed")

	var seller models.User
	if err := h.DB.WithContext(ctx).Where("role = ?", "seller").First(&seller).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("seed_failed", "reason", "no seller user")
			return echo.NewHTTPError(http.StatusInternalServerError, "seller not found, first run /api/users/seed")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot look up seller")
	}

	products := seed.Products()
	for i := range products {
		products[i].SellerID = seller.ID
	}

	if err := h.DB.WithContext(ctx).Create(&products).Error; err != nil {
		l.Error("seed_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot insert demo products")
	}

	for _, p := range products {
		h.reindex(c, p)
	}

	l.Info("seed_done", "count", len(products))
	return c.JSON(http.StatusOK, echo.Map{"createdProducts": products})
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var product models.Product
	err = h.DB.WithContext(c.Request().Context()).
		Preload("Seller").
		Preload("Reviews").
		First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get product")
	}

	return c.JSON(http.StatusOK, toProductResponse(product))
}

// CreateProduct inserts a placeholder owned by the caller. The request body
// is ignored on purpose: sellers create a draft and then edit it.
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	userID, err := userIDFrom(c)
	if err != nil {
		return err
	}

	product := models.Product{
		Name:         fmt.Sprintf("Product %d", time.Now().UnixMilli()),
		SellerID:     userID,
		Image:        "/images/p1.jpg",
		Price:        0,
		Category:     "Category",
		Brand:        "Brand",
		CountInStock: 0,
		Rating:       0,
		NumReviews:   0,
		Description:  "Description",
	}

	if err := h.DB.WithContext(c.Request().Context()).Create(&product).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create product")
	}

	h.publish(c, fmt.Sprint(product.ID), map[string]any{
		"type":      "product_created",
		"productID": product.ID,
		"sellerID":  userID,
	})
	h.reindex(c, product)

	return c.JSON(http.StatusOK, echo.Map{
		"message": "product created",
		"product": product,
	})
}

// UpdateProduct overwrites every mutable field from the request body.
// There is no partial update: the edit form always submits the full record.
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Name         string  `json:"name"`
		Price        float64 `json:"price"`
		Image        string  `json:"image"`
		Category     string  `json:"category"`
		Brand        string  `json:"brand"`
		CountInStock uint    `json:"countInStock"`
		Description  string  `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	var product models.Product
	if err := h.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get product")
	}

	product.Name = req.Name
	product.Price = req.Price
	product.Image = req.Image
	product.Category = req.Category
	product.Brand = req.Brand
	product.CountInStock = req.CountInStock
	product.Description = req.Description

	if err := h.DB.WithContext(ctx).Save(&product).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update product")
	}

	h.publish(c, fmt.Sprint(product.ID), map[string]any{
		"type":      "product_updated",
		"productID": product.ID,
	})
	h.reindex(c, product)

	return c.JSON(http.StatusOK, echo.Map{
		"message": "product updated",
		"product": product,
	})
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	ctx := c.Request().Context()
	var product models.Product
	if err := h.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get product")
	}

	if err := h.DB.WithContext(ctx).Delete(&product).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete product")
	}

	h.publish(c, fmt.Sprint(product.ID), map[string]any{
		"type":      "product_deleted",
		"productID": product.ID,
	})
	h.dropFromIndex(c, product.ID)

	return c.JSON(http.StatusOK, echo.Map{
		"message": "product deleted",
		"product": product,
	})
}

// CreateReview appends a review and recomputes the derived rating fields.
// The whole append runs in one transaction so concurrent reviewers cannot
// clobber each other's recomputation.
func (h *ProductHandler) CreateReview(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	name, err := usernameFrom(c)
	if err != nil {
		return err
	}

	var req struct {
		Rating  float64 `json:"rating"`
		Comment string  `json:"comment"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_review")

	var review models.Review
	txErr := h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, id).Error; err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&models.Review{}).
			Where("product_id = ? AND name = ?", product.ID, name).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyReviewed
		}

		review = models.Review{
			ProductID: product.ID,
			Name:      name,
			Rating:    req.Rating,
			Comment:   req.Comment,
		}
		if err := tx.Create(&review).Error; err != nil {
			return err
		}

		var agg struct {
			Avg float64 `gorm:"column:avg"`
			Cnt int64   `gorm:"column:cnt"`
		}
		if err := tx.Model(&models.Review{}).
			Where("product_id = ?", product.ID).
			Select("AVG(rating) AS avg, COUNT(*) AS cnt").
			Scan(&agg).Error; err != nil {
			return err
		}

		return tx.Model(&models.Product{}).
			Where("id = ?", product.ID).
			Updates(map[string]interface{}{"rating": agg.Avg, "num_reviews": agg.Cnt}).Error
	})

	switch {
	case errors.Is(txErr, gorm.ErrRecordNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	case errors.Is(txErr, ErrAlreadyReviewed):
		return echo.NewHTTPError(http.StatusBadRequest, ErrAlreadyReviewed.Error())
	case txErr != nil:
		l.Error("create_review_failed", "error", txErr)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create review")
	}

	h.publish(c, fmt.Sprint(id), map[string]any{
		"type":      "review_created",
		"productID": id,
		"name":      name,
		"rating":    req.Rating,
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "review created",
		"review":  review,
	})
}
