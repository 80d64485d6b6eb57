package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jchoi/storefront-backend/internal/app/model"
	"github.com/jchoi/storefront-backend/internal/app/repository"
	"github.com/jchoi/storefront-backend/internal/app/service"
	apperrors "github.com/jchoi/storefront-backend/internal/errors"
	"github.com/jchoi/storefront-backend/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{cartService: cartService}
}

type AddToCartRequest struct {
	ProductID uint          `json:"product_id" binding:"required"`
	Quantity  int           `json:"quantity" binding:"required,gt=0"`
	Variant   model.Variant `json:"variant"`
}

type UpdateCartRequest struct {
	Quantity *int           `json:"quantity" binding:"omitempty,gt=0"`
	Variant  *model.Variant `json:"variant"`
}

// GetCart handles GET /cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	summary, err := ctrl.cartService.GetUserCart(userID)
	if err != nil {
		apperrors.HandleError(c, err, "cart")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// AddToCart handles POST /cart
func (ctrl *CartController) AddToCart(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	item, err := ctrl.cartService.AddToCart(userID, req.ProductID, req.Quantity, req.Variant)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.BadRequest(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		apperrors.HandleError(c, err, "cart")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"item_id":  item.ID,
		"quantity": item.Quantity,
	})
}

// UpdateCartItem handles PUT /cart/:id
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	itemID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	patch := repository.CartItemPatch{
		Quantity: req.Quantity,
		Variant:  req.Variant,
	}

	item, err := ctrl.cartService.UpdateCartItem(userID, itemID, patch)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyUpdate):
			apperrors.BadRequest(c, apperrors.ValidationEmptyUpdate, "No fields to update")
		case errors.Is(err, service.ErrCartItemNotFound):
			apperrors.NotFound(c, apperrors.CartItemNotFound, "Cart item not found")
		default:
			apperrors.HandleError(c, err, "cart")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": item})
}

// RemoveFromCart handles DELETE /cart/:id
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	itemID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := ctrl.cartService.RemoveFromCart(userID, itemID); err != nil {
		if errors.Is(err, service.ErrCartItemNotFound) {
			apperrors.NotFound(c, apperrors.CartItemNotFound, "Cart item not found")
			return
		}
		apperrors.HandleError(c, err, "cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart item removed"})
}

// ClearCart handles DELETE /cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	if err := ctrl.cartService.ClearCart(userID); err != nil {
		apperrors.HandleError(c, err, "cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
