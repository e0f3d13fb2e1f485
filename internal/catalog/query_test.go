package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mcanepa/tienda/internal/models"
)

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Product{}, &models.Review{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func createSeller(t *testing.T, db *gorm.DB, username string) models.User {
	seller := models.User{Username: username, PasswordHash: "x", Role: "seller", SellerName: username}
	require.NoError(t, db.Create(&seller).Error)
	return seller
}

func TestPriceFilterRequiresBothBounds(t *testing.T) {
	db := initTestDB(t)
	seller := createSeller(t, db, "shop")

	for _, price := range []float64{5, 50, 200} {
		p := models.Product{Name: fmt.Sprintf("p%v", price), Price: price, SellerID: seller.ID}
		require.NoError(t, db.Create(&p).Error)
	}

	// min without max applies no price constraint
	items, pages, err := List(context.Background(), db, ListParams{Min: 10, Max: 0})
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, int64(1), pages)

	items, _, err = List(context.Background(), db, ListParams{Min: 10, Max: 100})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, float64(50), items[0].Price)
}

func TestSortOrders(t *testing.T) {
	db := initTestDB(t)
	seller := createSeller(t, db, "shop")

	prices := []float64{30, 10, 20}
	ratings := []float64{2, 5, 3}
	for i := range prices {
		p := models.Product{
			Name:     fmt.Sprintf("product %d", i),
			Price:    prices[i],
			Rating:   ratings[i],
			SellerID: seller.ID,
		}
		require.NoError(t, db.Create(&p).Error)
	}

	items, _, err := List(context.Background(), db, ListParams{Order: "lowest"})
	require.NoError(t, err)
	for i := 1; i < len(items); i++ {
		require.LessOrEqual(t, items[i-1].Price, items[i].Price)
	}

	items, _, err = List(context.Background(), db, ListParams{Order: "highest"})
	require.NoError(t, err)
	for i := 1; i < len(items); i++ {
		require.GreaterOrEqual(t, items[i-1].Price, items[i].Price)
	}

	items, _, err = List(context.Background(), db, ListParams{Order: "toprated"})
	require.NoError(t, err)
	for i := 1; i < len(items); i++ {
		require.GreaterOrEqual(t, items[i-1].Rating, items[i].Rating)
	}

	// default: newest first, ids descend
	items, _, err = List(context.Background(), db, ListParams{})
	require.NoError(t, err)
	for i := 1; i < len(items); i++ {
		require.Greater(t, items[i-1].ID, items[i].ID)
	}
}

func TestPagination(t *testing.T) {
	db := initTestDB(t)
	seller := createSeller(t, db, "shop")

	for i := 1; i <= 7; i++ {
		p := models.Product{Name: fmt.Sprintf("product %d", i), Price: 1, SellerID: seller.ID}
		require.NoError(t, db.Create(&p).Error)
	}

	items, pages, err := List(context.Background(), db, ListParams{Page: 2})
	require.NoError(t, err)
	require.Equal(t, int64(3), pages)
	require.Len(t, items, 3)

	// default order is id DESC, so page 2 of ids 7..1 is 4, 3, 2
	require.Equal(t, uint(4), items[0].ID)
	require.Equal(t, uint(3), items[1].ID)
	require.Equal(t, uint(2), items[2].ID)

	items, _, err = List(context.Background(), db, ListParams{Page: 3})
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestNameFilterCaseInsensitiveSubstring(t *testing.T) {
	db := initTestDB(t)
	seller := createSeller(t, db, "shop")

	for _, name := range []string{"Nike Slim Shirt", "Adidas Fit Pant", "Nike Slim Pant"} {
		p := models.Product{Name: name, Price: 1, SellerID: seller.ID}
		require.NoError(t, db.Create(&p).Error)
	}

	items, _, err := List(context.Background(), db, ListParams{Name: "NIKE"})
	require.NoError(t, err)
	require.Len(t, items, 2)

	items, _, err = List(context.Background(), db, ListParams{Name: "slim pant"})
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestCategorySellerAndRatingFilters(t *testing.T) {
	db := initTestDB(t)
	s1 := createSeller(t, db, "shop1")
	s2 := createSeller(t, db, "shop2")

	products := []models.Product{
		{Name: "a", Category: "Shirts", Rating: 4.5, Price: 1, SellerID: s1.ID},
		{Name: "b", Category: "Pants", Rating: 3.0, Price: 1, SellerID: s1.ID},
		{Name: "c", Category: "Shirts", Rating: 2.0, Price: 1, SellerID: s2.ID},
	}
	for i := range products {
		require.NoError(t, db.Create(&products[i]).Error)
	}

	items, _, err := List(context.Background(), db, ListParams{Category: "Shirts"})
	require.NoError(t, err)
	require.Len(t, items, 2)

	items, _, err = List(context.Background(), db, ListParams{Seller: s2.ID})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "c", items[0].Name)

	items, _, err = List(context.Background(), db, ListParams{Rating: 3})
	require.NoError(t, err)
	require.Len(t, items, 2)

	items, _, err = List(context.Background(), db, ListParams{Category: "Shirts", Seller: s1.ID, Rating: 4})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "a", items[0].Name)
}

func TestCategories(t *testing.T) {
	db := initTestDB(t)
	seller := createSeller(t, db, "shop")

	for _, cat := range []string{"Shirts", "Pants", "Shirts"} {
		p := models.Product{Name: cat, Category: cat, Price: 1, SellerID: seller.ID}
		require.NoError(t, db.Create(&p).Error)
	}

	categories, err := Categories(context.Background(), db)
	require.NoError(t, err)
	require.Equal(t, []string{"Pants", "Shirts"}, categories)
}
