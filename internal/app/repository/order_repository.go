package repository

import (
	"errors"

	"github.com/jchoi/storefront-backend/internal/app/model"
	"github.com/jchoi/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(order *model.Order) error
	FindByID(id uint) (*model.Order, error)
	FindByUserID(userID uint) ([]model.Order, error)
	UpdateStatus(id uint, status model.OrderStatus) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create inserts the order together with its items in one call. GORM
// cascades the OrderItems association, so the caller gets a fully
// persisted order or an error.
func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"user_id":    order.UserID,
		"total":      order.Total,
		"item_count": len(order.OrderItems),
	})

	if err := r.db.Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"user_id": order.UserID,
		})
		return err
	}

	logger.Debug("Order created in database", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  order.UserID,
	})
	return nil
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	var order model.Order
	err := r.db.Preload("OrderItems").
		Preload("OrderItems.Product").
		First(&order, id).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find order by ID in database", err, map[string]interface{}{
				"order_id": id,
			})
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByUserID(userID uint) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Preload("OrderItems").
		Preload("OrderItems.Product").
		Find(&orders).Error
	if err != nil {
		logger.Error("Failed to find orders by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) UpdateStatus(id uint, status model.OrderStatus) error {
	logger.Debug("Updating order status in database", map[string]interface{}{
		"order_id": id,
		"status":   status,
	})

	result := r.db.Model(&model.Order{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		logger.Error("Failed to update order status in database", result.Error, map[string]interface{}{
			"order_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
