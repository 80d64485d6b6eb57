package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jchoi/storefront-backend/config"
	"github.com/jchoi/storefront-backend/internal/app/controller"
	"github.com/jchoi/storefront-backend/internal/middleware"
)

// Controllers bundles everything the route table needs
type Controllers struct {
	Auth    *controller.AuthController
	Product *controller.ProductController
	Cart    *controller.CartController
	Order   *controller.OrderController
	Upload  *controller.UploadController
}

// Setup builds the gin engine with middleware and the full route table
func Setup(cfg *config.Config, ctrls Controllers) *gin.Engine {
	gin.SetMode(cfg.Server.GinMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger())
	engine.Use(middleware.CORS(&cfg.CORS))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := middleware.AuthMiddleware(&cfg.JWT)
	adminOnly := middleware.RequireRole("admin")

	api := engine.Group("/api/v1")
	{
		users := api.Group("/users")
		{
			users.POST("/register", ctrls.Auth.Register)
			users.POST("/login", ctrls.Auth.Login)
			users.POST("/logout", auth, ctrls.Auth.Logout)
			users.GET("/profile", auth, ctrls.Auth.GetProfile)
			users.PUT("/profile", auth, ctrls.Auth.UpdateProfile)
		}

		products := api.Group("/products")
		{
			products.GET("", ctrls.Product.GetProducts)
			products.GET("/:id", ctrls.Product.GetProduct)
			products.POST("", auth, adminOnly, ctrls.Product.CreateProduct)
			products.PUT("/:id", auth, adminOnly, ctrls.Product.UpdateProduct)
			products.DELETE("/:id", auth, adminOnly, ctrls.Product.DeleteProduct)
		}

		cart := api.Group("/cart", auth)
		{
			cart.GET("", ctrls.Cart.GetCart)
			cart.POST("", ctrls.Cart.AddToCart)
			cart.PUT("/:id", ctrls.Cart.UpdateCartItem)
			cart.DELETE("/:id", ctrls.Cart.RemoveFromCart)
			cart.DELETE("", ctrls.Cart.ClearCart)
		}

		orders := api.Group("/orders", auth)
		{
			orders.POST("", ctrls.Order.PlaceOrder)
			orders.GET("", ctrls.Order.GetOrders)
			orders.GET("/:id", ctrls.Order.GetOrder)
			orders.PUT("/:id/status", adminOnly, ctrls.Order.UpdateOrderStatus)
		}

		upload := api.Group("/upload", auth, adminOnly)
		{
			upload.POST("/presigned-url", ctrls.Upload.GetPresignedURL)
		}
	}

	return engine
}
