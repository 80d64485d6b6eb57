package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jchoi/storefront-backend/internal/app/model"
	"github.com/jchoi/storefront-backend/internal/app/repository"
	"github.com/jchoi/storefront-backend/internal/app/service"
	apperrors "github.com/jchoi/storefront-backend/internal/errors"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{productService: productService}
}

type CreateProductRequest struct {
	Title       string           `json:"title" binding:"required"`
	Description string           `json:"description"`
	Images      model.StringList `json:"images"`
	Price       float64          `json:"price" binding:"required,gt=0"`
	Stock       *int             `json:"stock" binding:"required,gte=0"`
	Category    string           `json:"category" binding:"required"`
	Variants    string           `json:"variants"`
}

type UpdateProductRequest struct {
	Title       *string           `json:"title"`
	Description *string           `json:"description"`
	Images      *model.StringList `json:"images"`
	Price       *float64          `json:"price" binding:"omitempty,gt=0"`
	Stock       *int              `json:"stock" binding:"omitempty,gte=0"`
	Category    *string           `json:"category"`
	Rating      *float64          `json:"rating" binding:"omitempty,gte=0,lte=5"`
	Variants    *string           `json:"variants"`
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid ID")
		return 0, false
	}
	return uint(id), true
}

// GetProducts handles GET /products
func (ctrl *ProductController) GetProducts(c *gin.Context) {
	sortBy, direction, err := repository.ParseSort(c.Query("sort_by"), c.Query("direction"))
	if err != nil {
		apperrors.BadRequest(c, apperrors.ProductInvalidSort, "Unsupported sort parameter")
		return
	}

	filter := repository.ProductFilter{
		Category:  c.Query("category"),
		Search:    c.Query("search"),
		SortBy:    sortBy,
		Direction: direction,
	}
	if v := c.Query("price_min"); v != "" {
		if min, err := strconv.ParseFloat(v, 64); err == nil {
			filter.PriceMin = &min
		}
	}
	if v := c.Query("price_max"); v != "" {
		if max, err := strconv.ParseFloat(v, 64); err == nil {
			filter.PriceMax = &max
		}
	}
	if v := c.Query("page"); v != "" {
		if page, err := strconv.Atoi(v); err == nil {
			filter.Page = page
		}
	}
	if v := c.Query("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil {
			filter.Limit = limit
		}
	}

	products, err := ctrl.productService.GetProducts(filter)
	if err != nil {
		apperrors.HandleError(c, err, "product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProduct handles GET /products/:id
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	product, err := ctrl.productService.GetProductByID(id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		apperrors.HandleError(c, err, "product")
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// CreateProduct handles POST /products (admin)
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	product := &model.Product{
		Title:       req.Title,
		Description: req.Description,
		Images:      req.Images,
		Price:       req.Price,
		Stock:       *req.Stock,
		Category:    req.Category,
		Variants:    req.Variants,
	}
	if err := ctrl.productService.CreateProduct(product); err != nil {
		apperrors.HandleError(c, err, "product")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// UpdateProduct handles PUT /products/:id (admin)
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	patch := repository.ProductPatch{
		Title:       req.Title,
		Description: req.Description,
		Images:      req.Images,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		Rating:      req.Rating,
		Variants:    req.Variants,
	}

	product, err := ctrl.productService.UpdateProduct(id, patch)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyUpdate):
			apperrors.BadRequest(c, apperrors.ValidationEmptyUpdate, "No fields to update")
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
		default:
			apperrors.HandleError(c, err, "product")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// DeleteProduct handles DELETE /products/:id (admin)
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := ctrl.productService.DeleteProduct(id); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		apperrors.HandleError(c, err, "product")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}
