package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/route-orders-api/config"
	"github.com/kendall-kelly/route-orders-api/controllers"
	"github.com/kendall-kelly/route-orders-api/logger"
	"github.com/kendall-kelly/route-orders-api/middleware"
	"github.com/kendall-kelly/route-orders-api/models"
	"github.com/kendall-kelly/route-orders-api/services"
	"go.uber.org/zap"
)

func main() {
	if err := logger.Init(os.Getenv("LOG_LEVEL")); err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}
	// .env files may set LOG_LEVEL
	if err := logger.Init(cfg.LogLevel); err != nil {
		log.Fatal("failed to configure logger", zap.Error(err))
	}
	log = logger.L()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info("starting route orders API", zap.String("env", cfg.GoEnv))

	if err := config.ConnectDatabase(); err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	db := config.GetDB()
	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}
	log.Info("database migration completed")

	var cache services.CacheStore
	if cfg.RedisURL != "" {
		redisCache, err := services.NewRedisCache(cfg.RedisURL)
		if err != nil {
			log.Fatal("invalid REDIS_URL", zap.Error(err))
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisCache.Ping(pingCtx); err != nil {
			log.Warn("redis unavailable, catalog cache disabled", zap.Error(err))
		} else {
			cache = redisCache
			defer redisCache.Close()
		}
		cancel()
	}
	services.InitCatalog(db, cache, cfg.CatalogCacheTTL)

	if cfg.S3Enabled() {
		s3Service, err := services.InitS3Service(context.Background(), cfg)
		if err != nil {
			log.Fatal("failed to initialize S3", zap.Error(err))
		}
		services.InitImageService(s3Service)
		log.Info("defect photo storage enabled", zap.String("bucket", cfg.AWSS3Bucket))
	} else {
		log.Warn("AWS_S3_BUCKET not set, defect photo upload disabled")
	}

	authMiddleware, err := middleware.EnsureValidToken(cfg)
	if err != nil {
		log.Fatal("failed to configure authentication", zap.Error(err))
	}

	router := setupRouter(cfg, authMiddleware)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

// setupRouter wires middleware and every API route. authMiddleware must
// authenticate the request and set the token subject.
func setupRouter(cfg *config.Config, authMiddleware gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)

		authed := v1.Group("", authMiddleware, middleware.LoadCurrentUser())

		authed.GET("/users/me", controllers.GetMyProfile)
		authed.GET("/products", controllers.ListProducts)

		orders := authed.Group("/orders")
		{
			orders.POST("/place", controllers.PlaceOrder)
			orders.GET("/check", controllers.CheckOrder)
			orders.POST("/check", controllers.CheckOrder)
			orders.GET("/order", controllers.GetOrder)
			orders.GET("/all", controllers.ListOrders)
			orders.POST("/toggleStatus", controllers.ToggleDelivered)
			orders.POST("/report", controllers.ReportDefect)
			orders.POST("/order_update", controllers.UpdateOrder)
			orders.DELETE("/delete_order_product/:orderProductId", controllers.DeleteOrderProduct)
			orders.POST("/cancel_order/:orderId", controllers.CancelOrder)
		}

		defects := authed.Group("/defects")
		{
			defects.GET("", controllers.ListMyDefects)
			defects.POST("/:reportId/image", controllers.UploadDefectImage)
		}

		admin := authed.Group("/admin", middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin))
		{
			admin.POST("/approveDefect", controllers.ApproveDefect)
			admin.POST("/update-order-status", controllers.UpdateOrderStatus)
			admin.POST("/update-delivery-status", controllers.UpdateDeliveryStatus)
			admin.POST("/loading-slip", controllers.MarkLoadingSlip)
			admin.GET("/orders", controllers.ListShiftOrders)
			admin.GET("/orders/:orderId", controllers.GetAnyOrder)
			admin.GET("/defects", controllers.ListOrderDefects)
		}
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Route Orders API is running",
	})
}

// databaseStatus checks database connectivity and reports which tables exist
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	tables := make([]string, 0)
	for _, model := range models.All() {
		if !db.Migrator().HasTable(model) {
			continue
		}
		if tabler, ok := model.(interface{ TableName() string }); ok {
			tables = append(tables, tabler.TableName())
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
