package service

import (
	"testing"

	"github.com/jchoi/storefront-backend/internal/app/model"
	"github.com/jchoi/storefront-backend/internal/app/repository"
	"github.com/jchoi/storefront-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupProductService(t *testing.T) (*gorm.DB, ProductService) {
	t.Helper()

	database, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(database) })

	return database, NewProductService(repository.NewProductRepository(database))
}

func TestProductService_CreateAndGet(t *testing.T) {
	_, svc := setupProductService(t)

	product := &model.Product{
		Title:    "Walnut Desk",
		Price:    450.00,
		Stock:    3,
		Category: "furniture",
		Images:   model.StringList{"desk-front.jpg", "desk-side.jpg"},
	}
	require.NoError(t, svc.CreateProduct(product))
	require.NotZero(t, product.ID)

	found, err := svc.GetProductByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Walnut Desk", found.Title)
	assert.Len(t, found.Images, 2)

	_, err = svc.GetProductByID(9999)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_UpdateProduct(t *testing.T) {
	_, svc := setupProductService(t)

	product := &model.Product{Title: "Desk Lamp", Price: 35.00, Stock: 10, Category: "lighting"}
	require.NoError(t, svc.CreateProduct(product))

	price := 29.00
	updated, err := svc.UpdateProduct(product.ID, repository.ProductPatch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 29.00, updated.Price)
	assert.Equal(t, 10, updated.Stock)

	t.Run("empty patch is rejected", func(t *testing.T) {
		_, err := svc.UpdateProduct(product.ID, repository.ProductPatch{})
		assert.ErrorIs(t, err, ErrEmptyUpdate)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := svc.UpdateProduct(9999, repository.ProductPatch{Price: &price})
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestProductService_DeleteProduct(t *testing.T) {
	_, svc := setupProductService(t)

	product := &model.Product{Title: "Desk Lamp", Price: 35.00, Stock: 10, Category: "lighting"}
	require.NoError(t, svc.CreateProduct(product))

	require.NoError(t, svc.DeleteProduct(product.ID))

	_, err := svc.GetProductByID(product.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)

	assert.ErrorIs(t, svc.DeleteProduct(product.ID), ErrProductNotFound)
}
