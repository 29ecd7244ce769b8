package router

import (
	"net/http"

	"retail-service/internal/handlers"
	"retail-service/internal/middleware"
	"retail-service/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthService interface {
	handlers.Authenticator
	middleware.TokenVerifier
	middleware.SessionResolver
}

type Deps struct {
	Auth        AuthService
	Catalog     handlers.Catalog
	Orders      service.OrderService
	Policy      service.Policy
	Cookie      handlers.CookieOptions
	CORSOrigins []string
}

func Router(d Deps, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: len(origins) > 0 && origins[0] != "*",
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandler := handlers.NewAuthHandler(d.Auth, log)
	productHandler := handlers.NewProductHandler(d.Catalog, d.Policy, log)
	orderHandler := handlers.NewOrderHandler(d.Orders, d.Policy, log)
	webHandler := handlers.NewWebHandler(d.Auth, d.Catalog, d.Orders, d.Policy, d.Cookie, log)

	api := r.Group("/api", middleware.Bearer(d.Auth, log))
	{
		api.POST("/auth/login", authHandler.Login)

		api.GET("/products", productHandler.List)
		api.GET("/products/article/:article", productHandler.GetByArticle)
		api.GET("/categories", productHandler.Categories)
		api.GET("/manufacturers", productHandler.Manufacturers)
		api.GET("/suppliers", productHandler.Suppliers)
		api.GET("/units", productHandler.Units)

		secured := api.Group("", middleware.AuthRequired())
		secured.POST("/products", productHandler.Create)
		secured.PUT("/products/:id", productHandler.Update)
		secured.DELETE("/products/:id", productHandler.Delete)

		secured.GET("/orders", orderHandler.ListAll)
		secured.GET("/orders/user/:login", orderHandler.ListForUser)
		secured.POST("/orders", orderHandler.Create)
		secured.PUT("/orders/:orderNumber", orderHandler.UpdateStatus)
		secured.GET("/order-statuses", orderHandler.Statuses)
	}

	web := r.Group("/web", middleware.Session(d.Auth, d.Cookie.Name, log))
	{
		web.POST("/login", webHandler.Login)
		web.POST("/logout", webHandler.Logout)
		web.GET("/products", webHandler.Products)
		web.GET("/manufacturers", productHandler.Manufacturers)

		secured := web.Group("", middleware.AuthRequired())
		secured.GET("/orders", webHandler.Orders)
		secured.POST("/products/:id/order", webHandler.QuickOrder)
	}

	return r
}
