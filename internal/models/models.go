package models

import (
	"time"
)

type Product struct {
	ID           uint     `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name         string   `gorm:"not null"                  json:"name"`
	Image        string   `json:"image"`
	Category     string   `gorm:"index"                     json:"category"`
	Brand        string   `json:"brand"`
	Price        float64  `gorm:"not null"                  json:"price"`
	CountInStock uint     `json:"countInStock"`
	Rating       float64  `json:"rating"`
	NumReviews   int      `json:"numReviews"`
	Description  string   `json:"description"`
	SellerID     uint     `gorm:"index;not null"            json:"sellerId"`
	Seller       User     `gorm:"foreignKey:SellerID"       json:"-"`
	Reviews      []Review `gorm:"foreignKey:ProductID"      json:"reviews,omitempty"`
}

// Review is immutable once written. One review per reviewer name per product.
type Review struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"                  json:"id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_product_reviewer" json:"productId"`
	Name      string    `gorm:"not null;uniqueIndex:idx_product_reviewer" json:"name"`
	Rating    float64   `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

type User struct {
	ID               uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Username         string  `gorm:"unique;not null"          json:"username"`
	PasswordHash     string  `gorm:"not null"                 json:"-"`
	Role             string  `gorm:"not null;default:user"    json:"role"`
	SellerName       string  `json:"sellerName,omitempty"`
	SellerLogo       string  `json:"sellerLogo,omitempty"`
	SellerRating     float64 `json:"sellerRating,omitempty"`
	SellerNumReviews int     `json:"sellerNumReviews,omitempty"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"          json:"id"`
	Token     string `gorm:"unique;not null"     json:"token"`
	UserID    uint   `gorm:"index;not null"      json:"user_id"`
	Role      string `gorm:"not null"            json:"role"`
	ExpiresAt int64  `gorm:"not null"            json:"expires_at"`
	Revoked   bool   `gorm:"default:false"       json:"revoked"`
}

// ShippingAddress is the per-user checkout session state behind the
// shipping form. Lat/Lng stay nil until a location is chosen or the user
// confirms proceeding without one.
type ShippingAddress struct {
	ID         uint     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint     `gorm:"uniqueIndex;not null"     json:"userId"`
	FullName   string   `json:"fullName"`
	Address    string   `json:"address"`
	City       string   `json:"city"`
	PostalCode string   `json:"postalCode"`
	Country    string   `json:"country"`
	Lat        *float64 `json:"lat,omitempty"`
	Lng        *float64 `json:"lng,omitempty"`
}

// MapAddress holds the location picked on the map screen. When present it
// takes precedence over coordinates submitted with the form.
type MapAddress struct {
	ID     uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID uint    `gorm:"uniqueIndex;not null"     json:"userId"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
}
