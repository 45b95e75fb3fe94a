package main

import (
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pozor22/iiko/internal/handler"
	"github.com/pozor22/iiko/internal/middleware"
	"github.com/pozor22/iiko/internal/model"
	"github.com/pozor22/iiko/internal/notify"
	"github.com/pozor22/iiko/internal/service"
	"github.com/pozor22/iiko/pkg/config"
	"github.com/pozor22/iiko/pkg/database"
	"github.com/pozor22/iiko/pkg/jwtutil"
	"github.com/pozor22/iiko/pkg/logger"
	"github.com/pozor22/iiko/prometheus"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load("iiko")
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting restaurant management service...", cfg.LogConfig()...)

	// Initialize database
	db, err := database.InitDB(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	if err := database.MigrateModels(model.AllModels()...); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database migrations applied")

	// Notification broker is optional; without it events are logged and dropped
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		log.Info("Notification broker configured", zap.String("addr", cfg.Redis.Addr))
	}
	notifier := notify.New(redisClient, cfg.Redis.Queue, log)

	// Wire services and handlers
	jwt := jwtutil.NewJWTUtil(&cfg.JWT)
	svc := service.New(db, notifier, log)
	h := handler.New(svc, jwt)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	auth := e.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	auth.POST("/login-code", h.LoginWithCode)
	auth.POST("/refresh", h.RefreshToken)

	// API routes - all require authentication; reads are open to any
	// authenticated user, writes are gated by organization authorship
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware(jwt))

	users := api.Group("/users")
	users.GET("", h.ListUsers)
	users.GET("/profile", h.GetProfile)
	users.GET("/:id", h.GetUser)
	users.GET("/:id/memberships", h.GetUserMemberships)
	users.DELETE("/:id", h.DeleteUser)

	orgs := api.Group("/organizations")
	orgs.POST("", h.CreateOrganization)
	orgs.GET("", h.ListOrganizations)
	orgs.GET("/:id", h.GetOrganization)
	orgs.PATCH("/:id", h.UpdateOrganization)
	orgs.DELETE("/:id", h.DeleteOrganization)
	orgs.PATCH("/add-author", h.AddAuthor)
	orgs.DELETE("/:id/authors", h.RemoveAuthor)
	orgs.PATCH("/add-user", h.AddUserToOrganization)
	orgs.DELETE("/delete-user", h.RemoveUserFromOrganization)
	orgs.GET("/:id/members", h.ListOrganizationMembers)

	chains := api.Group("/chains")
	chains.POST("", h.CreateChain)
	chains.GET("", h.ListChains)
	chains.GET("/:id", h.GetChain)
	chains.PATCH("/:id", h.UpdateChain)
	chains.DELETE("/:id", h.DeleteChain)
	chains.PATCH("/add-user", h.AddUserToChain)
	chains.DELETE("/delete-user", h.RemoveUserFromChain)
	chains.GET("/:id/members", h.ListChainMembers)

	restaurants := api.Group("/restaurants")
	restaurants.POST("", h.CreateRestaurant)
	restaurants.GET("", h.ListRestaurants)
	restaurants.GET("/:id", h.GetRestaurant)
	restaurants.PATCH("/:id", h.UpdateRestaurant)
	restaurants.DELETE("/:id", h.DeleteRestaurant)
	restaurants.PATCH("/add-user", h.AddUserToRestaurant)
	restaurants.DELETE("/delete-user", h.RemoveUserFromRestaurant)
	restaurants.GET("/:id/members", h.ListRestaurantMembers)

	categories := api.Group("/categories")
	categories.POST("", h.CreateCategory)
	categories.GET("", h.ListCategories)
	categories.GET("/:id", h.GetCategory)
	categories.PATCH("/:id", h.UpdateCategory)
	categories.DELETE("/:id", h.DeleteCategory)
	categories.POST("/add-restaurant", h.AddRestaurantToCategory)
	categories.DELETE("/delete-restaurant", h.RemoveRestaurantFromCategory)

	kitchens := api.Group("/kitchens")
	kitchens.POST("", h.CreateKitchen)
	kitchens.GET("", h.ListKitchens)
	kitchens.GET("/:id", h.GetKitchen)
	kitchens.PATCH("/:id", h.UpdateKitchen)
	kitchens.DELETE("/:id", h.DeleteKitchen)
	kitchens.POST("/add-restaurant", h.AddRestaurantToKitchen)
	kitchens.DELETE("/delete-restaurant", h.RemoveRestaurantFromKitchen)

	products := api.Group("/products")
	products.POST("", h.CreateProduct)
	products.GET("", h.ListProducts)
	products.GET("/:id", h.GetProduct)
	products.PATCH("/:id", h.UpdateProduct)
	products.DELETE("/:id", h.DeleteProduct)
	products.POST("/:id/buy", h.BuyProduct)

	ingredients := api.Group("/ingredients")
	ingredients.POST("", h.CreateIngredient)
	ingredients.GET("", h.ListIngredients)
	ingredients.PATCH("/:id", h.UpdateIngredient)
	ingredients.DELETE("/:id", h.DeleteIngredient)

	recipes := api.Group("/recipes")
	recipes.POST("", h.CreateRecipe)
	recipes.GET("", h.ListRecipes)
	recipes.DELETE("/:id", h.DeleteRecipe)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
