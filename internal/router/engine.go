package router

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/outfitly/storefront-api/pkg/global"
	"github.com/outfitly/storefront-api/pkg/redis"
	"github.com/outfitly/storefront-api/pkg/store"
)

// Handler wires the HTTP surface to the stores. The cache and pinger are
// optional; a nil cache disables product caching and a nil pinger makes
// the health check trivially pass.
type Handler struct {
	stores    store.Stores
	cache     *redis.Cache
	jwtSecret []byte
	pinger    func(context.Context) error
	log       *slog.Logger
}

func NewHandler(stores store.Stores, cache *redis.Cache, jwtSecret string, pinger func(context.Context) error, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		stores:    stores,
		cache:     cache,
		jwtSecret: []byte(jwtSecret),
		pinger:    pinger,
		log:       log,
	}
}

func NewEngine() *gin.Engine {
	if os.Getenv("ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.Default()

	origins := strings.Split(global.GetEnvOrDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"), ",")
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "x-access-token"},
		ExposeHeaders:    []string{"Content-Length", "X-Total-Count", "X-Cache"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	return engine
}

// RegisterRoutes attaches every endpoint to the engine.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.HealthCheck)

	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}

	users := r.Group("/users")
	users.Use(h.AuthRequired())
	{
		users.GET("/me", h.Me)
	}

	products := r.Group("/products")
	{
		products.GET("", h.GetAllProducts)
		products.GET("/:id", h.GetProductByID)
	}

	r.GET("/categories", h.GetAllCategories)

	carts := r.Group("/carts")
	carts.Use(h.AuthRequired())
	{
		carts.POST("", h.CreateCart)
		carts.POST("/clear", h.ClearCart)
		carts.GET("/:userID", h.GetCart)
		carts.PUT("/:userID", h.ReplaceCart)
		carts.PATCH("/:userID", h.PatchCart)
	}

	orders := r.Group("/orders")
	orders.Use(h.AuthRequired())
	{
		orders.POST("", h.CreateOrder)
		orders.GET("/user/:userID", h.GetUserOrders)
		orders.GET("/:orderID", h.GetOrderByID)
	}
}
