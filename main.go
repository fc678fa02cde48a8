package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/handlers"
	"backend/internal/middleware"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureCartIndexes(db); err != nil {
		log.Printf("cart index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("order index warning: %v", err)
	}
	if err := database.EnsurePaymentIndexes(db); err != nil {
		log.Printf("payment index warning: %v", err)
	}
	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("user index warning: %v", err)
	}

	trackingGen := handlers.DefaultTrackingGenerator()

	r := gin.Default()

	r.POST("/auth/register", handlers.Register(db))
	r.POST("/auth/login", handlers.Login(db, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL))

	user := r.Group("/")
	user.Use(middleware.UserAuth(config.AppEnv.JWTSecret))
	{
		user.GET("/cart", handlers.GetCart(db))
		user.GET("/cart/count", handlers.GetCartCount(db))
		user.POST("/cart/add", handlers.AddToCart(db))
		user.DELETE("/cart/remove/:productId", handlers.RemoveFromCart(db))
		user.PUT("/cart/update", handlers.UpdateQuantity(db))

		user.POST("/order/checkout", handlers.Checkout(db))
	}

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(config.AppEnv.JWTSecret))
	{
		admin.GET("/dashboard/stats", handlers.GetDashboardStats(db))
		admin.GET("/orders", handlers.GetAllOrders(db))
		admin.GET("/orders/:id", handlers.GetOrderDetails(db))
		admin.PUT("/orders/:id/status", handlers.UpdateOrderStatus(db, trackingGen))

		admin.PUT("/products/:id/stock", handlers.UpdateProductStock(db))
		admin.PUT("/products/:id/price", handlers.UpdateProductPrice(db))
	}

	r.Run(":" + config.AppEnv.Port)
}
