package repository

import (
	"errors"
	"fmt"

	"github.com/jchoi/storefront-backend/internal/app/model"
	"github.com/jchoi/storefront-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrInsufficientStock is returned by DecrementStock when the product is
// missing or its stock is lower than the requested amount.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrInvalidSort is returned when a sort parameter is not in the allow-list
var ErrInvalidSort = errors.New("invalid sort parameter")

type ProductSort string

const (
	ProductSortID        ProductSort = "id"
	ProductSortTitle     ProductSort = "title"
	ProductSortPrice     ProductSort = "price"
	ProductSortRating    ProductSort = "rating"
	ProductSortStock     ProductSort = "stock"
	ProductSortCreatedAt ProductSort = "created_at"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// sortColumns is the allow-list of sortable columns. Caller-supplied
// sort input is resolved through this map and never interpolated raw.
var sortColumns = map[ProductSort]string{
	ProductSortID:        "id",
	ProductSortTitle:     "title",
	ProductSortPrice:     "price",
	ProductSortRating:    "rating",
	ProductSortStock:     "stock",
	ProductSortCreatedAt: "created_at",
}

// ParseSort validates caller-supplied sort parameters against the
// allow-list. Empty input falls back to id ascending.
func ParseSort(column, direction string) (ProductSort, SortDirection, error) {
	sortBy := ProductSortID
	if column != "" {
		if _, ok := sortColumns[ProductSort(column)]; !ok {
			return "", "", fmt.Errorf("%w: column %q", ErrInvalidSort, column)
		}
		sortBy = ProductSort(column)
	}

	dir := SortAsc
	switch direction {
	case "", "asc", "ASC":
	case "desc", "DESC":
		dir = SortDesc
	default:
		return "", "", fmt.Errorf("%w: direction %q", ErrInvalidSort, direction)
	}

	return sortBy, dir, nil
}

// ProductFilter narrows and orders catalog listings
type ProductFilter struct {
	Category  string
	PriceMin  *float64
	PriceMax  *float64
	Search    string
	SortBy    ProductSort
	Direction SortDirection
	Page      int
	Limit     int
}

// ProductPatch carries the optional fields of a catalog update. The
// store builds the UPDATE deterministically from whichever fields are
// set; there is no stringly-typed clause assembly.
type ProductPatch struct {
	Title       *string
	Description *string
	Images      *model.StringList
	Price       *float64
	Stock       *int
	Category    *string
	Rating      *float64
	Variants    *string
}

// IsEmpty reports whether the patch carries no fields
func (p ProductPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Images == nil &&
		p.Price == nil && p.Stock == nil && p.Category == nil &&
		p.Rating == nil && p.Variants == nil
}

func (p ProductPatch) updates() map[string]interface{} {
	updates := map[string]interface{}{}
	if p.Title != nil {
		updates["title"] = *p.Title
	}
	if p.Description != nil {
		updates["description"] = *p.Description
	}
	if p.Images != nil {
		updates["images"] = *p.Images
	}
	if p.Price != nil {
		updates["price"] = *p.Price
	}
	if p.Stock != nil {
		updates["stock"] = *p.Stock
	}
	if p.Category != nil {
		updates["category"] = *p.Category
	}
	if p.Rating != nil {
		updates["rating"] = *p.Rating
	}
	if p.Variants != nil {
		updates["variants"] = *p.Variants
	}
	return updates
}

type ProductRepository interface {
	Create(product *model.Product) error
	FindByID(id uint) (*model.Product, error)
	FindByIDForUpdate(id uint) (*model.Product, error)
	FindWithFilter(filter ProductFilter) ([]model.Product, error)
	UpdateFields(id uint, patch ProductPatch) error
	Delete(id uint) error
	DecrementStock(id uint, amount int) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"title":    product.Title,
		"category": product.Category,
		"stock":    product.Stock,
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"title": product.Title,
		})
		return err
	}
	return nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.First(&product, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find product by ID in database", err, map[string]interface{}{
				"product_id": id,
			})
		}
		return nil, err
	}
	return &product, nil
}

// FindByIDForUpdate loads a product under a row lock. Only meaningful
// when the repository is bound to an open transaction.
func (r *productRepository) FindByIDForUpdate(id uint) (*model.Product, error) {
	var product model.Product
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, id).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to lock product row", err, map[string]interface{}{
				"product_id": id,
			})
		}
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindWithFilter(filter ProductFilter) ([]model.Product, error) {
	logger.Debug("Finding products with filter", map[string]interface{}{
		"category":  filter.Category,
		"search":    filter.Search,
		"sort_by":   filter.SortBy,
		"direction": filter.Direction,
		"page":      filter.Page,
		"limit":     filter.Limit,
	})

	query := r.db.Model(&model.Product{})

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.PriceMin != nil {
		query = query.Where("price >= ?", *filter.PriceMin)
	}
	if filter.PriceMax != nil {
		query = query.Where("price <= ?", *filter.PriceMax)
	}
	if filter.Search != "" {
		like := fmt.Sprintf("%%%s%%", filter.Search)
		query = query.Where("title LIKE ? OR description LIKE ?", like, like)
	}

	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = "id"
	}
	direction := "ASC"
	if filter.Direction == SortDesc {
		direction = "DESC"
	}
	query = query.Order(column + " " + direction)

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	query = query.Limit(limit).Offset((page - 1) * limit)

	var products []model.Product
	if err := query.Find(&products).Error; err != nil {
		logger.Error("Failed to find products with filter", err, map[string]interface{}{
			"category": filter.Category,
			"search":   filter.Search,
		})
		return nil, err
	}

	logger.Debug("Products found with filter", map[string]interface{}{
		"count": len(products),
	})
	return products, nil
}

func (r *productRepository) UpdateFields(id uint, patch ProductPatch) error {
	updates := patch.updates()
	if len(updates) == 0 {
		return nil
	}

	logger.Debug("Updating product in database", map[string]interface{}{
		"product_id": id,
		"fields":     len(updates),
	})

	result := r.db.Model(&model.Product{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		logger.Error("Failed to update product in database", result.Error, map[string]interface{}{
			"product_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepository) Delete(id uint) error {
	logger.Debug("Deleting product from database", map[string]interface{}{
		"product_id": id,
	})

	result := r.db.Delete(&model.Product{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete product from database", result.Error, map[string]interface{}{
			"product_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DecrementStock reduces stock by amount, guarded by the stock level
// itself. The predicate re-checks sufficiency at write time, so a
// concurrent decrement can never drive stock negative regardless of the
// backend's isolation level.
func (r *productRepository) DecrementStock(id uint, amount int) error {
	result := r.db.Model(&model.Product{}).
		Where("id = ? AND stock >= ?", id, amount).
		Update("stock", gorm.Expr("stock - ?", amount))
	if result.Error != nil {
		logger.Error("Failed to decrement product stock", result.Error, map[string]interface{}{
			"product_id": id,
			"amount":     amount,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		logger.Warn("Stock decrement rejected", map[string]interface{}{
			"product_id": id,
			"amount":     amount,
		})
		return ErrInsufficientStock
	}
	return nil
}
