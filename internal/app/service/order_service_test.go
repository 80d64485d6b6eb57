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

func setupOrderService(t *testing.T) (*gorm.DB, OrderService) {
	t.Helper()

	database, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(database) })

	return database, NewOrderService(database)
}

func createUser(t *testing.T, database *gorm.DB, email string) *model.User {
	t.Helper()

	user := &model.User{Name: "Test User", Email: email, PasswordHash: "x", Role: model.RoleUser}
	require.NoError(t, database.Create(user).Error)
	return user
}

func createProduct(t *testing.T, database *gorm.DB, title string, price float64, stock int) *model.Product {
	t.Helper()

	product := &model.Product{Title: title, Price: price, Stock: stock, Category: "test"}
	require.NoError(t, database.Create(product).Error)
	return product
}

func addCartLine(t *testing.T, database *gorm.DB, user *model.User, product *model.Product, qty int, variant model.Variant) {
	t.Helper()

	item := &model.CartItem{UserID: user.ID, ProductID: product.ID, Quantity: qty, Variant: variant}
	require.NoError(t, database.Create(item).Error)
}

func productStock(t *testing.T, database *gorm.DB, id uint) int {
	t.Helper()

	var product model.Product
	require.NoError(t, database.First(&product, id).Error)
	return product.Stock
}

func TestOrderService_PlaceOrder(t *testing.T) {
	database, svc := setupOrderService(t)

	user := createUser(t, database, "buyer@example.com")
	product := createProduct(t, database, "Mug", 12.50, 10)
	addCartLine(t, database, user, product, 2, model.Variant{"color": "white"})

	order, err := svc.PlaceOrder(user.ID)
	require.NoError(t, err)

	// Subtotal 25.00, 10% tax, flat 5.00 shipping
	assert.Equal(t, 25.00, order.Subtotal)
	assert.Equal(t, 2.50, order.Tax)
	assert.Equal(t, 5.00, order.Shipping)
	assert.Equal(t, 0.00, order.Discount)
	assert.Equal(t, 32.50, order.Total)
	assert.Equal(t, model.OrderStatusProcessing, order.Status)

	require.Len(t, order.OrderItems, 1)
	assert.Equal(t, product.ID, order.OrderItems[0].ProductID)
	assert.Equal(t, 2, order.OrderItems[0].Quantity)
	assert.True(t, order.OrderItems[0].Variant.Equal(model.Variant{"color": "white"}))

	assert.Equal(t, 8, productStock(t, database, product.ID))

	cart, err := repository.NewCartRepository(database).FindByUserID(user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart)
}

func TestOrderService_PlaceOrder_EmptyCart(t *testing.T) {
	database, svc := setupOrderService(t)
	user := createUser(t, database, "buyer@example.com")

	_, err := svc.PlaceOrder(user.ID)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestOrderService_PlaceOrder_InsufficientStock(t *testing.T) {
	database, svc := setupOrderService(t)

	user := createUser(t, database, "buyer@example.com")
	product := createProduct(t, database, "Rare Print", 100.00, 1)
	addCartLine(t, database, user, product, 2, nil)

	_, err := svc.PlaceOrder(user.ID)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, product.ID, stockErr.ProductID)

	// Nothing moved: stock intact, cart intact, no order rows
	assert.Equal(t, 1, productStock(t, database, product.ID))

	cart, err := repository.NewCartRepository(database).FindByUserID(user.ID)
	require.NoError(t, err)
	assert.Len(t, cart, 1)

	var orderCount int64
	database.Model(&model.Order{}).Count(&orderCount)
	assert.Equal(t, int64(0), orderCount)
}

func TestOrderService_PlaceOrder_PartialFailureRollsBack(t *testing.T) {
	database, svc := setupOrderService(t)

	user := createUser(t, database, "buyer@example.com")
	plenty := createProduct(t, database, "Notebook", 8.00, 50)
	scarce := createProduct(t, database, "Limited Pen", 40.00, 1)
	addCartLine(t, database, user, plenty, 3, nil)
	addCartLine(t, database, user, scarce, 2, nil)

	_, err := svc.PlaceOrder(user.ID)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, scarce.ID, stockErr.ProductID)

	// The first line's decrement must have been rolled back too
	assert.Equal(t, 50, productStock(t, database, plenty.ID))
	assert.Equal(t, 1, productStock(t, database, scarce.ID))

	var itemCount int64
	database.Model(&model.OrderItem{}).Count(&itemCount)
	assert.Equal(t, int64(0), itemCount)
}

func TestOrderService_PlaceOrder_ProductGone(t *testing.T) {
	database, svc := setupOrderService(t)

	user := createUser(t, database, "buyer@example.com")
	product := createProduct(t, database, "Discontinued", 15.00, 5)
	addCartLine(t, database, user, product, 1, nil)

	require.NoError(t, database.Delete(&model.Product{}, product.ID).Error)

	_, err := svc.PlaceOrder(user.ID)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, product.ID, stockErr.ProductID)
}

func TestOrderService_PlaceOrder_LastUnitContention(t *testing.T) {
	database, svc := setupOrderService(t)

	// An in-memory SQLite database exists per connection; capping the
	// pool at one keeps both placements on the same database and makes
	// their transactions run one after the other, like row locks would
	// on the production backend.
	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	alice := createUser(t, database, "alice@example.com")
	bob := createUser(t, database, "bob@example.com")
	product := createProduct(t, database, "One Left", 60.00, 1)
	addCartLine(t, database, alice, product, 1, nil)
	addCartLine(t, database, bob, product, 1, nil)

	results := make(chan error, 2)
	for _, userID := range []uint{alice.ID, bob.ID} {
		go func(id uint) {
			_, err := svc.PlaceOrder(id)
			results <- err
		}(userID)
	}

	var succeeded, rejected int
	for i := 0; i < 2; i++ {
		if err := <-results; err != nil {
			var stockErr *InsufficientStockError
			require.ErrorAs(t, err, &stockErr)
			assert.Equal(t, product.ID, stockErr.ProductID)
			rejected++
		} else {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)

	// Exactly one unit left the shelf
	assert.Equal(t, 0, productStock(t, database, product.ID))

	var orders []model.Order
	require.NoError(t, database.Find(&orders).Error)
	require.Len(t, orders, 1)
	assert.Equal(t, 71.00, orders[0].Total)
}

func TestOrderService_PlaceOrder_RoundsOnce(t *testing.T) {
	database, svc := setupOrderService(t)

	user := createUser(t, database, "buyer@example.com")
	product := createProduct(t, database, "Oddly Priced", 10.99, 10)
	addCartLine(t, database, user, product, 3, nil)

	order, err := svc.PlaceOrder(user.ID)
	require.NoError(t, err)

	// Subtotal 32.97, tax 3.297 -> 3.30, total 32.97+3.297+5 = 41.267 -> 41.27
	assert.Equal(t, 32.97, order.Subtotal)
	assert.Equal(t, 3.30, order.Tax)
	assert.Equal(t, 41.27, order.Total)
}

func TestOrderService_GetOrderByID(t *testing.T) {
	database, svc := setupOrderService(t)

	owner := createUser(t, database, "owner@example.com")
	stranger := createUser(t, database, "stranger@example.com")
	product := createProduct(t, database, "Mug", 12.50, 10)
	addCartLine(t, database, owner, product, 1, nil)

	placed, err := svc.PlaceOrder(owner.ID)
	require.NoError(t, err)

	found, err := svc.GetOrderByID(owner.ID, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, placed.ID, found.ID)

	t.Run("another user's order reads as missing", func(t *testing.T) {
		_, err := svc.GetOrderByID(stranger.ID, placed.ID)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("unknown order", func(t *testing.T) {
		_, err := svc.GetOrderByID(owner.ID, 9999)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestOrderService_GetUserOrders(t *testing.T) {
	database, svc := setupOrderService(t)

	alice := createUser(t, database, "alice@example.com")
	bob := createUser(t, database, "bob@example.com")
	product := createProduct(t, database, "Mug", 12.50, 10)

	addCartLine(t, database, alice, product, 1, nil)
	_, err := svc.PlaceOrder(alice.ID)
	require.NoError(t, err)

	addCartLine(t, database, alice, product, 2, nil)
	_, err = svc.PlaceOrder(alice.ID)
	require.NoError(t, err)

	orders, err := svc.GetUserOrders(alice.ID)
	require.NoError(t, err)
	assert.Len(t, orders, 2)

	empty, err := svc.GetUserOrders(bob.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestOrderService_UpdateOrderStatus(t *testing.T) {
	database, svc := setupOrderService(t)

	user := createUser(t, database, "buyer@example.com")
	product := createProduct(t, database, "Mug", 12.50, 10)
	addCartLine(t, database, user, product, 1, nil)

	placed, err := svc.PlaceOrder(user.ID)
	require.NoError(t, err)

	updated, err := svc.UpdateOrderStatus(placed.ID, model.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, updated.Status)

	t.Run("unknown status", func(t *testing.T) {
		_, err := svc.UpdateOrderStatus(placed.ID, "misplaced")
		assert.ErrorIs(t, err, ErrInvalidOrderStatus)
	})

	t.Run("unknown order", func(t *testing.T) {
		_, err := svc.UpdateOrderStatus(9999, model.OrderStatusShipped)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}
