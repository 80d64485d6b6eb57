package service

import (
	"errors"

	"github.com/jchoi/storefront-backend/internal/app/model"
	"github.com/jchoi/storefront-backend/internal/app/repository"
	"github.com/jchoi/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	// ErrCartItemNotFound covers a missing line and a line owned by
	// someone else alike.
	ErrCartItemNotFound = errors.New("cart item not found")

	// ErrEmptyUpdate is returned when an update carries no fields
	ErrEmptyUpdate = errors.New("no fields to update")
)

// CartSummary is a user's cart with its running total. The total is
// informational; the authoritative figure is computed at placement.
type CartSummary struct {
	Items []model.CartItem `json:"cart_items"`
	Count int              `json:"count"`
	Total float64          `json:"total"`
}

type CartService interface {
	GetUserCart(userID uint) (*CartSummary, error)
	AddToCart(userID, productID uint, quantity int, variant model.Variant) (*model.CartItem, error)
	UpdateCartItem(userID, itemID uint, patch repository.CartItemPatch) (*model.CartItem, error)
	RemoveFromCart(userID, itemID uint) error
	ClearCart(userID uint) error
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

func (s *cartService) GetUserCart(userID uint) (*CartSummary, error) {
	items, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}

	var total float64
	for _, item := range items {
		total += item.Product.Price * float64(item.Quantity)
	}

	return &CartSummary{
		Items: items,
		Count: len(items),
		Total: roundMoney(total),
	}, nil
}

// AddToCart appends a line or, when the same product and variant are
// already carted, adds to that line's quantity. Stock is deliberately
// not checked here: the cart records intent, and availability is only
// enforced at placement.
func (s *cartService) AddToCart(userID, productID uint, quantity int, variant model.Variant) (*model.CartItem, error) {
	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	existing, err := s.cartRepo.FindByUserProductVariant(userID, productID, variant)
	if err == nil {
		existing.Quantity += quantity
		if err := s.cartRepo.Update(existing); err != nil {
			return nil, err
		}
		logger.Debug("Merged quantity into existing cart line", map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": existing.ID,
			"quantity":     existing.Quantity,
		})
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	item := &model.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		Variant:   variant,
	}
	if err := s.cartRepo.Create(item); err != nil {
		if isDuplicateKeyError(err) {
			// Lost the insert race to an identical line; the unique
			// index on (user, product, variant) caught it, merge instead
			return s.mergeIntoExisting(userID, productID, quantity, variant)
		}
		return nil, err
	}
	return item, nil
}

func (s *cartService) mergeIntoExisting(userID, productID uint, quantity int, variant model.Variant) (*model.CartItem, error) {
	existing, err := s.cartRepo.FindByUserProductVariant(userID, productID, variant)
	if err != nil {
		return nil, err
	}
	existing.Quantity += quantity
	if err := s.cartRepo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *cartService) UpdateCartItem(userID, itemID uint, patch repository.CartItemPatch) (*model.CartItem, error) {
	if patch.IsEmpty() {
		return nil, ErrEmptyUpdate
	}

	item, err := s.cartRepo.FindByID(itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	if item.UserID != userID {
		return nil, ErrCartItemNotFound
	}

	if err := s.cartRepo.UpdateFields(itemID, patch); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}

	return s.cartRepo.FindByID(itemID)
}

func (s *cartService) RemoveFromCart(userID, itemID uint) error {
	item, err := s.cartRepo.FindByID(itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCartItemNotFound
		}
		return err
	}
	if item.UserID != userID {
		return ErrCartItemNotFound
	}

	if err := s.cartRepo.Delete(itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCartItemNotFound
		}
		return err
	}
	return nil
}

func (s *cartService) ClearCart(userID uint) error {
	return s.cartRepo.DeleteByUserID(userID)
}
