package service

import (
	"errors"

	"github.com/jchoi/storefront-backend/internal/app/model"
	"github.com/jchoi/storefront-backend/internal/app/repository"
	"github.com/jchoi/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

// ErrProductNotFound is returned when a catalog lookup misses
var ErrProductNotFound = errors.New("product not found")

type ProductService interface {
	GetProducts(filter repository.ProductFilter) ([]model.Product, error)
	GetProductByID(id uint) (*model.Product, error)
	CreateProduct(product *model.Product) error
	UpdateProduct(id uint, patch repository.ProductPatch) (*model.Product, error)
	DeleteProduct(id uint) error
}

type productService struct {
	productRepo repository.ProductRepository
}

func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

func (s *productService) GetProducts(filter repository.ProductFilter) ([]model.Product, error) {
	return s.productRepo.FindWithFilter(filter)
}

func (s *productService) GetProductByID(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) CreateProduct(product *model.Product) error {
	if err := s.productRepo.Create(product); err != nil {
		return err
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"title":      product.Title,
	})
	return nil
}

func (s *productService) UpdateProduct(id uint, patch repository.ProductPatch) (*model.Product, error) {
	if patch.IsEmpty() {
		return nil, ErrEmptyUpdate
	}

	if err := s.productRepo.UpdateFields(id, patch); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	return s.productRepo.FindByID(id)
}

func (s *productService) DeleteProduct(id uint) error {
	if err := s.productRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	logger.Info("Product deleted", map[string]interface{}{
		"product_id": id,
	})
	return nil
}
