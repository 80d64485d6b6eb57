package controller_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jchoi/storefront-backend/config"
	"github.com/jchoi/storefront-backend/internal/app/controller"
	"github.com/jchoi/storefront-backend/internal/app/model"
	"github.com/jchoi/storefront-backend/internal/app/repository"
	"github.com/jchoi/storefront-backend/internal/app/service"
	"github.com/jchoi/storefront-backend/internal/db"
	"github.com/jchoi/storefront-backend/internal/router"
	"github.com/jchoi/storefront-backend/pkg/util"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "controller-test-secret"

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{GinMode: gin.TestMode},
		JWT:    config.JWTConfig{Secret: testSecret, TokenExpiry: time.Hour},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"*"}},
	}
}

// setupTestServer wires the full stack against an in-memory database
func setupTestServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	database, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(database) })

	cfg := testConfig()

	userRepo := repository.NewUserRepository(database)
	productRepo := repository.NewProductRepository(database)
	cartRepo := repository.NewCartRepository(database)

	authService := service.NewAuthService(userRepo, &cfg.JWT)
	productService := service.NewProductService(productRepo)
	cartService := service.NewCartService(cartRepo, productRepo)
	orderService := service.NewOrderService(database)

	engine := router.Setup(cfg, router.Controllers{
		Auth:    controller.NewAuthController(authService),
		Product: controller.NewProductController(productService),
		Cart:    controller.NewCartController(cartService),
		Order:   controller.NewOrderController(orderService),
		Upload:  controller.NewUploadController(nil),
	})
	return engine, database
}

func createTestUser(t *testing.T, database *gorm.DB, email string, role model.UserRole) (*model.User, string) {
	t.Helper()

	hash, err := util.HashPassword("test-password")
	require.NoError(t, err)

	user := &model.User{Name: "Test User", Email: email, PasswordHash: hash, Role: role}
	require.NoError(t, database.Create(user).Error)

	token, err := util.GenerateToken(user.ID, user.Email, string(user.Role), testSecret, time.Hour)
	require.NoError(t, err)
	return user, token
}

func createTestProduct(t *testing.T, database *gorm.DB, title string, price float64, stock int) *model.Product {
	t.Helper()

	product := &model.Product{Title: title, Price: price, Stock: stock, Category: "test"}
	require.NoError(t, database.Create(product).Error)
	return product
}

func performRequest(t *testing.T, engine *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
