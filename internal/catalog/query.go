// Package catalog translates listing query parameters into gorm filter
// predicates and a sort directive.
package catalog

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/mcanepa/tienda/internal/models"
)

// PageSize is the fixed number of products per listing page.
const PageSize = 3

type ListParams struct {
	Page     int
	Name     string
	Category string
	Seller   uint
	Min      float64
	Max      float64
	Rating   float64
	Order    string
}

// apply builds the AND-combination of whichever filters are present.
// Absent filters impose no constraint. The price filter only applies when
// both bounds are non-zero; a min-only or max-only query is ignored, which
// mirrors how the storefront price buckets are defined ("Any" is 0..0).
func (p ListParams) apply(q *gorm.DB) *gorm.DB {
	if p.Name != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(p.Name)+"%")
	}
	if p.Category != "" {
		q = q.Where("category = ?", p.Category)
	}
	if p.Seller != 0 {
		q = q.Where("seller_id = ?", p.Seller)
	}
	if p.Min != 0 && p.Max != 0 {
		q = q.Where("price >= ? AND price <= ?", p.Min, p.Max)
	}
	if p.Rating != 0 {
		q = q.Where("rating >= ?", p.Rating)
	}
	return q
}

// sortExpr maps the order keyword onto a sort directive. The default sorts
// by descending id, which gives most-recently-created products first.
func (p ListParams) sortExpr() string {
	switch p.Order {
	case "lowest":
		return "price ASC"
	case "highest":
		return "price DESC"
	case "toprated":
		return "rating DESC"
	default:
		return "id DESC"
	}
}

// List returns one page of matching products together with the total page
// count from a separate count query.
func List(ctx context.Context, db *gorm.DB, p ListParams) ([]models.Product, int64, error) {
	if p.Page < 1 {
		p.Page = 1
	}

	var total int64
	if err := p.apply(db.WithContext(ctx).Model(&models.Product{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := make([]models.Product, 0, PageSize)
	err := p.apply(db.WithContext(ctx).Model(&models.Product{})).
		Preload("Seller").
		Order(p.sortExpr()).
		Offset((p.Page - 1) * PageSize).
		Limit(PageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}

	pages := (total + PageSize - 1) / PageSize
	return items, pages, nil
}

// Categories returns the distinct category values across all products.
func Categories(ctx context.Context, db *gorm.DB) ([]string, error) {
	var categories []string
	err := db.WithContext(ctx).
		Model(&models.Product{}).
		Distinct().
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}
