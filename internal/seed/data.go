// Package seed holds the fixed demo catalog used by the seeding endpoint.
package seed

import "github.com/mcanepa/tienda/internal/models"

// Products returns a fresh copy of the demo catalog so callers can assign
// ownership without mutating shared state.
func Products() []models.Product {
	return []models.Product{
		{
			Name:         "Nike Slim Shirt",
			Image:        "/images/p1.jpg",
			Category:     "Shirts",
			Brand:        "Nike",
			Price:        120,
			CountInStock: 10,
			Rating:       4.5,
			NumReviews:   10,
			Description:  "High quality shirt",
		},
		{
			Name:         "Adidas Fit Shirt",
			Image:        "/images/p2.jpg",
			Category:     "Shirts",
			Brand:        "Adidas",
			Price:        100,
			CountInStock: 20,
			Rating:       4.0,
			NumReviews:   10,
			Description:  "High quality product",
		},
		{
			Name:         "Lacoste Free Shirt",
			Image:        "/images/p3.jpg",
			Category:     "Shirts",
			Brand:        "Lacoste",
			Price:        220,
			CountInStock: 0,
			Rating:       4.8,
			NumReviews:   17,
			Description:  "High quality product",
		},
		{
			Name:         "Nike Slim Pant",
			Image:        "/images/p4.jpg",
			Category:     "Pants",
			Brand:        "Nike",
			Price:        78,
			CountInStock: 15,
			Rating:       4.5,
			NumReviews:   14,
			Description:  "High quality product",
		},
		{
			Name:         "Puma Slim Pant",
			Image:        "/images/p5.jpg",
			Category:     "Pants",
			Brand:        "Puma",
			Price:        65,
			CountInStock: 5,
			Rating:       4.5,
			NumReviews:   10,
			Description:  "High quality product",
		},
		{
			Name:         "Adidas Fit Pant",
			Image:        "/images/p6.jpg",
			Category:     "Pants",
			Brand:        "Adidas",
			Price:        139,
			CountInStock: 12,
			Rating:       4.5,
			NumReviews:   15,
			Description:  "High quality product",
		},
	}
}
