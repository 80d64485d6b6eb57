package repository

import (
	"testing"

	"github.com/jchoi/storefront-backend/internal/app/model"
	"github.com/jchoi/storefront-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupProductRepo(t *testing.T) (*gorm.DB, ProductRepository) {
	t.Helper()

	database, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(database) })

	return database, NewProductRepository(database)
}

func seedProduct(t *testing.T, repo ProductRepository, title string, price float64, stock int, category string) *model.Product {
	t.Helper()

	product := &model.Product{
		Title:    title,
		Price:    price,
		Stock:    stock,
		Category: category,
	}
	require.NoError(t, repo.Create(product))
	return product
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		name      string
		column    string
		direction string
		wantSort  ProductSort
		wantDir   SortDirection
		wantErr   bool
	}{
		{name: "defaults", column: "", direction: "", wantSort: ProductSortID, wantDir: SortAsc},
		{name: "price descending", column: "price", direction: "desc", wantSort: ProductSortPrice, wantDir: SortDesc},
		{name: "uppercase direction", column: "rating", direction: "DESC", wantSort: ProductSortRating, wantDir: SortDesc},
		{name: "unknown column", column: "password_hash", direction: "asc", wantErr: true},
		{name: "injection attempt", column: "price; DROP TABLE products", direction: "asc", wantErr: true},
		{name: "unknown direction", column: "price", direction: "sideways", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sortBy, dir, err := ParseSort(tt.column, tt.direction)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSort)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSort, sortBy)
			assert.Equal(t, tt.wantDir, dir)
		})
	}
}

func TestProductRepository_FindWithFilter(t *testing.T) {
	_, repo := setupProductRepo(t)

	seedProduct(t, repo, "Walnut Desk", 450.00, 3, "furniture")
	seedProduct(t, repo, "Desk Lamp", 35.00, 10, "lighting")
	seedProduct(t, repo, "Floor Lamp", 80.00, 5, "lighting")

	t.Run("filter by category", func(t *testing.T) {
		products, err := repo.FindWithFilter(ProductFilter{Category: "lighting"})
		require.NoError(t, err)
		assert.Len(t, products, 2)
	})

	t.Run("price range", func(t *testing.T) {
		min, max := 30.0, 100.0
		products, err := repo.FindWithFilter(ProductFilter{PriceMin: &min, PriceMax: &max})
		require.NoError(t, err)
		assert.Len(t, products, 2)
	})

	t.Run("search matches title", func(t *testing.T) {
		products, err := repo.FindWithFilter(ProductFilter{Search: "Desk"})
		require.NoError(t, err)
		assert.Len(t, products, 2)
	})

	t.Run("sort by price descending", func(t *testing.T) {
		products, err := repo.FindWithFilter(ProductFilter{
			SortBy:    ProductSortPrice,
			Direction: SortDesc,
		})
		require.NoError(t, err)
		require.Len(t, products, 3)
		assert.Equal(t, "Walnut Desk", products[0].Title)
		assert.Equal(t, "Desk Lamp", products[2].Title)
	})

	t.Run("pagination", func(t *testing.T) {
		page1, err := repo.FindWithFilter(ProductFilter{Limit: 2, Page: 1})
		require.NoError(t, err)
		assert.Len(t, page1, 2)

		page2, err := repo.FindWithFilter(ProductFilter{Limit: 2, Page: 2})
		require.NoError(t, err)
		assert.Len(t, page2, 1)
	})
}

func TestProductRepository_UpdateFields(t *testing.T) {
	_, repo := setupProductRepo(t)
	product := seedProduct(t, repo, "Walnut Desk", 450.00, 3, "furniture")

	newPrice := 399.00
	newStock := 7
	err := repo.UpdateFields(product.ID, ProductPatch{Price: &newPrice, Stock: &newStock})
	require.NoError(t, err)

	updated, err := repo.FindByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 399.00, updated.Price)
	assert.Equal(t, 7, updated.Stock)
	assert.Equal(t, "Walnut Desk", updated.Title)

	t.Run("missing product", func(t *testing.T) {
		err := repo.UpdateFields(9999, ProductPatch{Price: &newPrice})
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("empty patch is a no-op", func(t *testing.T) {
		assert.NoError(t, repo.UpdateFields(product.ID, ProductPatch{}))
	})
}

func TestProductRepository_Delete(t *testing.T) {
	_, repo := setupProductRepo(t)
	product := seedProduct(t, repo, "Desk Lamp", 35.00, 10, "lighting")

	require.NoError(t, repo.Delete(product.ID))

	_, err := repo.FindByID(product.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	assert.ErrorIs(t, repo.Delete(product.ID), gorm.ErrRecordNotFound)
}

func TestProductRepository_DecrementStock(t *testing.T) {
	_, repo := setupProductRepo(t)
	product := seedProduct(t, repo, "Floor Lamp", 80.00, 5, "lighting")

	t.Run("sufficient stock", func(t *testing.T) {
		require.NoError(t, repo.DecrementStock(product.ID, 3))

		updated, err := repo.FindByID(product.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, updated.Stock)
	})

	t.Run("insufficient stock leaves row untouched", func(t *testing.T) {
		err := repo.DecrementStock(product.ID, 3)
		assert.ErrorIs(t, err, ErrInsufficientStock)

		updated, err := repo.FindByID(product.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, updated.Stock)
	})

	t.Run("exact remaining stock drains to zero", func(t *testing.T) {
		require.NoError(t, repo.DecrementStock(product.ID, 2))

		updated, err := repo.FindByID(product.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, updated.Stock)
	})

	t.Run("missing product", func(t *testing.T) {
		err := repo.DecrementStock(9999, 1)
		assert.ErrorIs(t, err, ErrInsufficientStock)
	})
}
