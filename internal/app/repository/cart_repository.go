package repository

import (
	"errors"

	"github.com/jchoi/storefront-backend/internal/app/model"
	"github.com/jchoi/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

// CartItemPatch carries the optional fields of a cart line update
type CartItemPatch struct {
	Quantity *int
	Variant  *model.Variant
}

// IsEmpty reports whether the patch carries no fields
func (p CartItemPatch) IsEmpty() bool {
	return p.Quantity == nil && p.Variant == nil
}

func (p CartItemPatch) updates() map[string]interface{} {
	updates := map[string]interface{}{}
	if p.Quantity != nil {
		updates["quantity"] = *p.Quantity
	}
	if p.Variant != nil {
		updates["variant"] = p.Variant.Canonical()
	}
	return updates
}

type CartRepository interface {
	Create(item *model.CartItem) error
	FindByID(id uint) (*model.CartItem, error)
	FindByUserID(userID uint) ([]model.CartItem, error)
	FindByUserProductVariant(userID, productID uint, variant model.Variant) (*model.CartItem, error)
	Update(item *model.CartItem) error
	UpdateFields(id uint, patch CartItemPatch) error
	Delete(id uint) error
	DeleteByUserID(userID uint) error
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) Create(item *model.CartItem) error {
	logger.Debug("Creating cart item in database", map[string]interface{}{
		"user_id":    item.UserID,
		"product_id": item.ProductID,
		"quantity":   item.Quantity,
	})

	if err := r.db.Create(item).Error; err != nil {
		logger.Error("Failed to create cart item in database", err, map[string]interface{}{
			"user_id":    item.UserID,
			"product_id": item.ProductID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) FindByID(id uint) (*model.CartItem, error) {
	var item model.CartItem
	if err := r.db.First(&item, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find cart item by ID in database", err, map[string]interface{}{
				"cart_item_id": id,
			})
		}
		return nil, err
	}
	return &item, nil
}

// FindByUserID returns the user's cart in insertion order with
// product rows preloaded.
func (r *cartRepository) FindByUserID(userID uint) ([]model.CartItem, error) {
	var items []model.CartItem
	err := r.db.Where("user_id = ?", userID).
		Order("id ASC").
		Preload("Product").
		Find(&items).Error
	if err != nil {
		logger.Error("Failed to find cart items by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return items, nil
}

// FindByUserProductVariant locates the cart line for a user, product and
// variant selection. Variants compare by canonical form, so key order in
// the caller's selection does not matter.
func (r *cartRepository) FindByUserProductVariant(userID, productID uint, variant model.Variant) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.Where("user_id = ? AND product_id = ? AND variant = ?",
		userID, productID, variant.Canonical()).
		First(&item).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find cart item by variant in database", err, map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
			})
		}
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) Update(item *model.CartItem) error {
	logger.Debug("Updating cart item in database", map[string]interface{}{
		"cart_item_id": item.ID,
		"quantity":     item.Quantity,
	})

	if err := r.db.Save(item).Error; err != nil {
		logger.Error("Failed to update cart item in database", err, map[string]interface{}{
			"cart_item_id": item.ID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) UpdateFields(id uint, patch CartItemPatch) error {
	updates := patch.updates()
	if len(updates) == 0 {
		return nil
	}

	result := r.db.Model(&model.CartItem{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		logger.Error("Failed to update cart item fields in database", result.Error, map[string]interface{}{
			"cart_item_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the cart line outright. Cart rows carry no soft-delete
// column, a removed line is gone.
func (r *cartRepository) Delete(id uint) error {
	result := r.db.Delete(&model.CartItem{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete cart item from database", result.Error, map[string]interface{}{
			"cart_item_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *cartRepository) DeleteByUserID(userID uint) error {
	logger.Debug("Clearing cart for user in database", map[string]interface{}{
		"user_id": userID,
	})

	if err := r.db.Where("user_id = ?", userID).Delete(&model.CartItem{}).Error; err != nil {
		logger.Error("Failed to clear cart for user in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}
	return nil
}
