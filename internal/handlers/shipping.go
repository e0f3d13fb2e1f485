package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mcanepa/tienda/internal/models"
)

// ShippingHandler keeps the per-user checkout session state behind the
// shipping form: the address being entered, and the location picked on the
// map screen.
type ShippingHandler struct {
	DB *gorm.DB
}

type shippingFields struct {
	FullName   string   `json:"fullName"`
	Address    string   `json:"address"`
	City       string   `json:"city"`
	PostalCode string   `json:"postalCode"`
	Country    string   `json:"country"`
	Lat        *float64 `json:"lat"`
	Lng        *float64 `json:"lng"`
}

type shippingSubmitRequest struct {
	FullName          string   `json:"fullName"   validate:"required"`
	Address           string   `json:"address"    validate:"required"`
	City              string   `json:"city"       validate:"required"`
	PostalCode        string   `json:"postalCode" validate:"required"`
	Country           string   `json:"country"    validate:"required"`
	Lat               *float64 `json:"lat"`
	Lng               *float64 `json:"lng"`
	ConfirmNoLocation bool     `json:"confirmNoLocation"`
}

func (h *ShippingHandler) loadAddress(c echo.Context, userID uint) (*models.ShippingAddress, error) {
	var addr models.ShippingAddress
	err := h.DB.WithContext(c.Request().Context()).Where("user_id = ?", userID).First(&addr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

func (h *ShippingHandler) loadMapAddress(c echo.Context, userID uint) (*models.MapAddress, error) {
	var m models.MapAddress
	err := h.DB.WithContext(c.Request().Context()).Where("user_id = ?", userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetShippingAddress returns the stored form state so the screen can
// pre-populate its fields.
func (h *ShippingHandler) GetShippingAddress(c echo.Context) error {
	userID, err := userIDFrom(c)
	if err != nil {
		return err
	}

	addr, err := h.loadAddress(c, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load shipping address")
	}
	mapAddr, err := h.loadMapAddress(c, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load map address")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"shippingAddress": addr,
		"mapAddress":      mapAddr,
	})
}

// SaveDraft persists whatever is currently entered so the fields survive
// the round-trip to the map screen. Nothing is validated here.
func (h *ShippingHandler) SaveDraft(c echo.Context) error {
	userID, err := userIDFrom(c)
	if err != nil {
		return err
	}

	var req shippingFields
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	addr, err := h.loadAddress(c, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load shipping address")
	}
	if addr == nil {
		addr = &models.ShippingAddress{UserID: userID}
	}

	addr.FullName = req.FullName
	addr.Address = req.Address
	addr.City = req.City
	addr.PostalCode = req.PostalCode
	addr.Country = req.Country
	if req.Lat != nil {
		addr.Lat = req.Lat
	}
	if req.Lng != nil {
		addr.Lng = req.Lng
	}

	if err := h.DB.WithContext(c.Request().Context()).Save(addr).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot save shipping address")
	}

	return c.JSON(http.StatusOK, echo.Map{"shippingAddress": addr})
}

// SetMapAddress stores the location picked on the map. It wins over any
// manually supplied coordinates on the next submit.
func (h *ShippingHandler) SetMapAddress(c echo.Context) error {
	userID, err := userIDFrom(c)
	if err != nil {
		return err
	}

	var req struct {
		Lat *float64 `json:"lat"`
		Lng *float64 `json:"lng"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Lat == nil || req.Lng == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "lat and lng are required")
	}

	mapAddr, err := h.loadMapAddress(c, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load map address")
	}
	if mapAddr == nil {
		mapAddr = &models.MapAddress{UserID: userID}
	}
	mapAddr.Lat = *req.Lat
	mapAddr.Lng = *req.Lng

	if err := h.DB.WithContext(c.Request().Context()).Save(mapAddr).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot save map address")
	}

	return c.JSON(http.StatusOK, echo.Map{"mapAddress": mapAddr})
}

// SubmitShippingAddress finalizes the form. Map-picked coordinates take
// precedence over the ones in the body. Without any coordinates the caller
// must confirm proceeding, otherwise nothing is stored and a confirm
// signal comes back.
func (h *ShippingHandler) SubmitShippingAddress(c echo.Context) error {
	userID, err := userIDFrom(c)
	if err != nil {
		return err
	}

	var req shippingSubmitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	mapAddr, err := h.loadMapAddress(c, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load map address")
	}

	lat, lng := req.Lat, req.Lng
	if mapAddr != nil {
		lat, lng = &mapAddr.Lat, &mapAddr.Lng
	}

	if (lat == nil || lng == nil) && !req.ConfirmNoLocation {
		return c.JSON(http.StatusConflict, echo.Map{
			"message":         "no location selected on the map",
			"confirmRequired": true,
		})
	}

	addr, err := h.loadAddress(c, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load shipping address")
	}
	if addr == nil {
		addr = &models.ShippingAddress{UserID: userID}
	}

	addr.FullName = req.FullName
	addr.Address = req.Address
	addr.City = req.City
	addr.PostalCode = req.PostalCode
	addr.Country = req.Country
	addr.Lat = lat
	addr.Lng = lng

	if err := h.DB.WithContext(c.Request().Context()).Save(addr).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot save shipping address")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":         "shipping address saved",
		"shippingAddress": addr,
	})
}
