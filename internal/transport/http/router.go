package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/daru-pasal/liquor_shop/internal/handlers"
	"github.com/daru-pasal/liquor_shop/internal/middleware/auth"
)

type Deps struct {
	AuthHandler    *handlers.AuthHandler
	ProductHandler *handlers.ProductHandler
	OrderHandler   *handlers.OrderHandler
	SearchHandler  *handlers.SearchHandler
	Tokens         *auth.TokenService
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", d.AuthHandler.Register)
	authGroup.POST("/login", d.AuthHandler.Login)
	authGroup.POST("/logout", d.AuthHandler.Logout)

	products := v1.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/categories", d.ProductHandler.GetCategories)
	products.GET("/category/:category", d.ProductHandler.GetProductsByCategory)
	products.GET("/:id", d.ProductHandler.GetProduct)

	v1.GET("/search", d.SearchHandler.Search)

	orders := v1.Group("/orders")
	orders.POST("", d.OrderHandler.CreateOrder, d.Tokens.OptionalAuth)
	orders.GET("/my", d.OrderHandler.MyOrders, d.Tokens.RequireLogin)
	orders.GET("/:id", d.OrderHandler.GetOrder, d.Tokens.RequireLogin)

	admin := v1.Group("/admin", d.Tokens.AdminOnly)
	admin.POST("/products", d.ProductHandler.CreateProduct)
	admin.PUT("/products/:id", d.ProductHandler.UpdateProduct)
	admin.DELETE("/products/:id", d.ProductHandler.DeleteProduct)
	admin.GET("/orders", d.OrderHandler.ListOrders)
	admin.GET("/orders/stats", d.OrderHandler.Statistics)
	admin.PUT("/orders/:id/status", d.OrderHandler.UpdateStatus)
}
