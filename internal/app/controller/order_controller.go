package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jchoi/storefront-backend/internal/app/model"
	"github.com/jchoi/storefront-backend/internal/app/service"
	apperrors "github.com/jchoi/storefront-backend/internal/errors"
	"github.com/jchoi/storefront-backend/internal/middleware"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PlaceOrder handles POST /orders
func (ctrl *OrderController) PlaceOrder(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	order, err := ctrl.orderService.PlaceOrder(userID)
	if err != nil {
		var stockErr *service.InsufficientStockError
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			apperrors.BadRequest(c, apperrors.CartEmpty, "Cart is empty")
		case errors.As(err, &stockErr):
			apperrors.BadRequest(c, apperrors.OrderInsufficientStock, stockErr.Error())
		default:
			apperrors.HandleError(c, err, "order")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order_id": order.ID,
		"total":    order.Total,
		"status":   order.Status,
	})
}

// GetOrders handles GET /orders
func (ctrl *OrderController) GetOrders(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	orders, err := ctrl.orderService.GetUserOrders(userID)
	if err != nil {
		apperrors.HandleError(c, err, "order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetOrder handles GET /orders/:id
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	order, err := ctrl.orderService.GetOrderByID(userID, orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
			return
		}
		apperrors.HandleError(c, err, "order")
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// UpdateOrderStatus handles PUT /orders/:id/status (admin)
func (ctrl *OrderController) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	order, err := ctrl.orderService.UpdateOrderStatus(orderID, model.OrderStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOrderStatus):
			apperrors.BadRequest(c, apperrors.OrderInvalidStatus, "Unknown order status")
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
		default:
			apperrors.HandleError(c, err, "order")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}
