package service

import (
	"errors"
	"fmt"
	"math"

	"github.com/jchoi/storefront-backend/internal/app/model"
	"github.com/jchoi/storefront-backend/internal/app/repository"
	"github.com/jchoi/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	// ErrEmptyCart is returned when placement is attempted against an
	// empty cart.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrOrderNotFound covers both a missing order and an order owned
	// by someone else. Callers cannot tell the two apart.
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidOrderStatus is returned for a status outside the
	// order lifecycle.
	ErrInvalidOrderStatus = errors.New("invalid order status")
)

// InsufficientStockError identifies the first cart line that could not
// be covered by stock. A product deleted between carting and placement
// reports the same way as one that ran out.
type InsufficientStockError struct {
	ProductID uint
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d", e.ProductID)
}

const (
	taxRate      = 0.10
	flatShipping = 5.0
)

// roundMoney rounds half away from zero to two decimals. Totals are
// accumulated unrounded and rounded once here, so a 25.00 subtotal
// yields exactly 2.50 tax and a 32.50 total.
func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

var validOrderStatuses = map[model.OrderStatus]bool{
	model.OrderStatusProcessing: true,
	model.OrderStatusShipped:    true,
	model.OrderStatusDelivered:  true,
	model.OrderStatusCancelled:  true,
}

type OrderService interface {
	PlaceOrder(userID uint) (*model.Order, error)
	GetUserOrders(userID uint) ([]model.Order, error)
	GetOrderByID(userID, orderID uint) (*model.Order, error)
	UpdateOrderStatus(orderID uint, status model.OrderStatus) (*model.Order, error)
}

type orderService struct {
	db        *gorm.DB
	orderRepo repository.OrderRepository
}

func NewOrderService(db *gorm.DB) OrderService {
	return &orderService{
		db:        db,
		orderRepo: repository.NewOrderRepository(db),
	}
}

// PlaceOrder converts the user's cart into an order inside a single
// transaction. Product rows are locked in cart order (insertion order,
// so lock acquisition is consistent across competing placements), stock
// is checked and decremented under the lock, and the cart is cleared
// only once everything held. Any failure rolls the whole thing back.
func (s *orderService) PlaceOrder(userID uint) (*model.Order, error) {
	logger.Info("Placing order", map[string]interface{}{
		"user_id": userID,
	})

	var order *model.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		cartRepo := repository.NewCartRepository(tx)
		productRepo := repository.NewProductRepository(tx)
		orderRepo := repository.NewOrderRepository(tx)

		cartItems, err := cartRepo.FindByUserID(userID)
		if err != nil {
			return err
		}
		if len(cartItems) == 0 {
			return ErrEmptyCart
		}

		var subtotal float64
		orderItems := make([]model.OrderItem, 0, len(cartItems))

		for _, item := range cartItems {
			product, err := productRepo.FindByIDForUpdate(item.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &InsufficientStockError{ProductID: item.ProductID}
				}
				return err
			}
			if product.Stock < item.Quantity {
				return &InsufficientStockError{ProductID: item.ProductID}
			}

			if err := productRepo.DecrementStock(item.ProductID, item.Quantity); err != nil {
				if errors.Is(err, repository.ErrInsufficientStock) {
					return &InsufficientStockError{ProductID: item.ProductID}
				}
				return err
			}

			subtotal += product.Price * float64(item.Quantity)
			orderItems = append(orderItems, model.OrderItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Variant:   item.Variant,
			})
		}

		tax := subtotal * taxRate
		discount := 0.0
		total := subtotal + tax + flatShipping - discount

		order = &model.Order{
			UserID:     userID,
			Subtotal:   roundMoney(subtotal),
			Tax:        roundMoney(tax),
			Shipping:   flatShipping,
			Discount:   discount,
			Total:      roundMoney(total),
			Status:     model.OrderStatusProcessing,
			OrderItems: orderItems,
		}
		if err := orderRepo.Create(order); err != nil {
			return err
		}

		return cartRepo.DeleteByUserID(userID)
	})
	if err != nil {
		var stockErr *InsufficientStockError
		if errors.Is(err, ErrEmptyCart) || errors.As(err, &stockErr) {
			logger.Warn("Order placement rejected", map[string]interface{}{
				"user_id": userID,
				"reason":  err.Error(),
			})
		} else {
			logger.Error("Order placement failed", err, map[string]interface{}{
				"user_id": userID,
			})
		}
		return nil, err
	}

	logger.Info("Order placed", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  userID,
		"total":    order.Total,
	})
	return order, nil
}

func (s *orderService) GetUserOrders(userID uint) ([]model.Order, error) {
	return s.orderRepo.FindByUserID(userID)
}

func (s *orderService) GetOrderByID(userID, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) UpdateOrderStatus(orderID uint, status model.OrderStatus) (*model.Order, error) {
	if !validOrderStatuses[status] {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrderStatus, status)
	}

	if err := s.orderRepo.UpdateStatus(orderID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	logger.Info("Order status updated", map[string]interface{}{
		"order_id": orderID,
		"status":   status,
	})
	return s.orderRepo.FindByID(orderID)
}
