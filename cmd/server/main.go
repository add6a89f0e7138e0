package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	cartapp "github.com/storefront/backend/internal/application/cart"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	checkoutapp "github.com/storefront/backend/internal/application/checkout"
	couponapp "github.com/storefront/backend/internal/application/coupon"
	identityapp "github.com/storefront/backend/internal/application/identity"
	orderapp "github.com/storefront/backend/internal/application/order"
	storefrontapp "github.com/storefront/backend/internal/application/storefront"
	vendorapp "github.com/storefront/backend/internal/application/vendor"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shipping"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/storage"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync(log)

	log.Info("Starting storefront backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx := context.Background()

	// Telemetry providers degrade to no-ops when disabled.
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracingCfg := telemetry.DefaultDBTracingConfig()
		dbTracingCfg.Enabled = true
		dbTracingPlugin := telemetry.NewDBTracingPlugin(dbTracingCfg, log)
		if err := dbTracingPlugin.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:             cfg.Profiling.Enabled,
		ServerAddress:       cfg.Profiling.ServerAddress,
		ApplicationName:     cfg.Profiling.ApplicationName,
		ProfileCPU:          true,
		ProfileAllocObjects: true,
		ProfileAllocSpace:   true,
		ProfileInuseObjects: true,
		ProfileInuseSpace:   true,
		ProfileGoroutines:   true,
	}, log)
	if err != nil {
		log.Warn("Failed to start continuous profiler", zap.Error(err))
	}

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	vendorRepo := persistence.NewGormVendorRepository(db.DB)
	profileRepo := persistence.NewGormVendorProfileRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	sectionRepo := persistence.NewGormSectionRepository(db.DB)
	viewRepo := persistence.NewGormProductViewRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	couponRepo := persistence.NewGormCouponRepository(db.DB)

	// Auth infrastructure
	jwtService := auth.NewJWTService(cfg.JWT)
	var tokenBlacklist auth.TokenBlacklist
	redisBlacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis token blacklist unavailable, falling back to in-memory", zap.Error(err))
		tokenBlacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		tokenBlacklist = redisBlacklist
	}

	// Cart sessions live in Redis; outside production a Redis outage
	// falls back to the in-memory store so local development still works.
	cartFactory := cache.NewCartStoreFactory(cfg.Redis, cfg.Checkout.CartTTL,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	)
	cartStore, err := cartFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create cart store", zap.Error(err))
	}

	platformFee, err := decimal.NewFromString(cfg.Checkout.PlatformShippingFee)
	if err != nil {
		log.Fatal("Invalid platform shipping fee",
			zap.String("value", cfg.Checkout.PlatformShippingFee), zap.Error(err))
	}
	shippingResolver := shipping.NewResolver(profileRepo, platformFee)

	// Object storage for product and store images
	var objectStorage catalogapp.ObjectStorageService
	switch cfg.Storage.Provider {
	case "s3":
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage)
		if err != nil {
			log.Fatal("Failed to initialize S3 object storage", zap.Error(err))
		}
		objectStorage = s3Storage
	default:
		log.Warn("Using stub object storage, uploaded image URLs will not resolve")
		objectStorage = storage.NewStubObjectStorage()
	}

	// Application services
	authService := identityapp.NewAuthService(userRepo, jwtService, tokenBlacklist, log)
	userService := identityapp.NewUserService(userRepo, tokenBlacklist)
	vendorService := vendorapp.NewVendorService(vendorRepo, profileRepo, userRepo, log)
	productService := catalogapp.NewProductService(productRepo, categoryRepo)
	categoryService := catalogapp.NewCategoryService(categoryRepo)
	sectionService := catalogapp.NewSectionService(sectionRepo, productRepo)
	mediaService := catalogapp.NewMediaService(objectStorage)
	mediaCfg := catalogapp.DefaultMediaServiceConfig()
	mediaCfg.PublicBaseURL = cfg.Storage.PublicBaseURL
	mediaService.SetConfig(mediaCfg)
	cartService := cartapp.NewCartService(cartStore, productRepo)
	checkoutService := checkoutapp.NewCheckoutService(cartStore, productRepo, couponRepo, orderRepo, userRepo, shippingResolver, log)

	// Duplicate-submission guard for checkout, backed by the same Redis
	// instance as the cart store.
	var idempotencyStore checkoutapp.IdempotencyStore
	redisIdempotency, err := cache.NewRedisIdempotencyStore(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis idempotency store unavailable, falling back to in-memory", zap.Error(err))
		idempotencyStore = cache.NewInMemoryIdempotencyStore()
	} else {
		idempotencyStore = redisIdempotency
	}
	checkoutService.SetIdempotencyStore(idempotencyStore)
	orderService := orderapp.NewOrderService(orderRepo)
	couponService := couponapp.NewCouponService(couponRepo)
	storefrontService := storefrontapp.NewStorefrontService(vendorRepo, profileRepo, productRepo, categoryRepo, sectionRepo, viewRepo,
		storefrontapp.WithLogger(log),
		storefrontapp.WithLastViewedLimit(cfg.Checkout.LastViewedLimit),
	)

	var businessMetrics *telemetry.BusinessMetrics
	if meterProvider.IsEnabled() {
		bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:           meterProvider.Meter("storefront.business"),
			Logger:          log,
			CatalogProvider: &catalogMetricsAdapter{products: productRepo, orders: orderRepo},
		})
		if err != nil {
			log.Warn("Failed to initialize business metrics", zap.Error(err))
		} else {
			businessMetrics = bm
			checkoutService.SetBusinessMetrics(businessMetrics)
			businessMetrics.StartPeriodicCollection(ctx, 5*time.Minute)
		}
	}

	// HTTP handlers
	authHandler := handler.NewAuthHandler(authService, cartService)
	userHandler := handler.NewUserHandler(userService)
	vendorHandler := handler.NewVendorHandler(vendorService)
	productHandler := handler.NewProductHandler(productService, vendorService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	sectionHandler := handler.NewSectionHandler(sectionService, vendorService)
	mediaHandler := handler.NewMediaHandler(mediaService)
	cartHandler := handler.NewCartHandler(cartService)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService)
	orderHandler := handler.NewOrderHandler(orderService, vendorService)
	couponHandler := handler.NewCouponHandler(couponService)
	storefrontHandler := handler.NewStorefrontHandler(storefrontService)
	systemHandler := handler.NewSystemHandler()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Failed to set trusted proxies", zap.Error(err))
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
	}
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			MeterProvider: meterProvider,
			ServiceName:   cfg.Telemetry.ServiceName,
			Enabled:       true,
		}))
	}
	if profiler != nil && profiler.IsEnabled() {
		engine.Use(middleware.ProfilingWithConfig(middleware.ProfilingConfig{
			Enabled:   true,
			SkipPaths: []string{"/health"},
		}))
	}

	engine.GET("/health", healthHandler(db))

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.TokenBlacklist = tokenBlacklist
	jwtConfig.Logger = log
	// Cart, checkout and order tracking are guest-capable; they attach
	// identity through the optional middleware on their own groups.
	jwtConfig.SkipPathPrefixes = append(jwtConfig.SkipPathPrefixes,
		"/api/v1/cart",
		"/api/v1/checkout",
		"/api/v1/track",
		"/api/v1/system",
	)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Auth
	authGroup := router.NewDomainGroup("auth", "/auth")
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		authGroup.Use(middleware.RateLimit(authLimiter))
	}
	authGroup.POST("/register", authHandler.Register).
		POST("/login", authHandler.Login).
		POST("/refresh", authHandler.Refresh).
		POST("/logout", authHandler.Logout).
		POST("/logout-all", authHandler.LogoutAll).
		GET("/me", authHandler.GetProfile).
		PUT("/me", authHandler.UpdateProfile).
		PUT("/password", authHandler.ChangePassword)

	// Global storefront (all vendors)
	globalStorefront := router.NewDomainGroup("storefront", "/storefront")
	globalStorefront.Use(
		middleware.OptionalJWTAuthMiddleware(jwtService),
		middleware.GlobalScopeMiddleware(),
	)
	registerStorefrontRoutes(globalStorefront, storefrontHandler)

	// Per-vendor storefront
	vendorStorefront := router.NewDomainGroup("store", "/store/:vendor_slug")
	vendorStorefront.Use(
		middleware.OptionalJWTAuthMiddleware(jwtService),
		middleware.VendorScopeMiddleware(middleware.ScopeMiddlewareConfig{
			Resolver: storefrontService,
			Logger:   log,
		}),
	)
	vendorStorefront.GET("", storefrontHandler.GetStore)
	registerStorefrontRoutes(vendorStorefront, storefrontHandler)

	// Cart (guest or authenticated via X-Session-ID / JWT)
	cartGroup := router.NewDomainGroup("cart", "/cart")
	cartGroup.Use(middleware.OptionalJWTAuthMiddleware(jwtService))
	cartGroup.GET("", cartHandler.Get).
		POST("/items", cartHandler.AddItem).
		PUT("/items", cartHandler.SetQuantity).
		DELETE("/items", cartHandler.RemoveItem).
		DELETE("", cartHandler.Clear)

	// Checkout
	checkoutGroup := router.NewDomainGroup("checkout", "/checkout")
	checkoutGroup.Use(middleware.OptionalJWTAuthMiddleware(jwtService))
	checkoutGroup.POST("/quote", checkoutHandler.Quote).
		POST("/submit", checkoutHandler.Submit)

	// Public order tracking by order number
	trackGroup := router.NewDomainGroup("track", "/track")
	trackGroup.Use(middleware.OptionalJWTAuthMiddleware(jwtService))
	trackGroup.GET("/:order_number", orderHandler.TrackByNumber)

	// Customer order history
	ordersGroup := router.NewDomainGroup("orders", "/orders")
	ordersGroup.Use(middleware.RequireCustomer())
	ordersGroup.GET("", orderHandler.ListForCustomer).
		GET("/:id", orderHandler.GetForCustomer).
		POST("/:id/cancel", orderHandler.CancelForCustomer)

	// Vendor back office. Registration stays outside the role-guarded
	// subgroup so a customer can open a store.
	vendorGroup := router.NewDomainGroup("vendor", "/vendor")
	vendorGroup.POST("/register", vendorHandler.Register)

	vendorOffice := vendorGroup.Group("vendor-office", "")
	vendorOffice.Use(middleware.RequireVendor())
	vendorOffice.GET("/store", vendorHandler.GetOwnStore).
		PUT("/store", vendorHandler.UpdateOwnStore).
		GET("/profile", vendorHandler.GetOwnProfile).
		PUT("/profile", vendorHandler.UpdateOwnProfile).
		POST("/shipping/zones", vendorHandler.SetZoneRate).
		DELETE("/shipping/zones/:region", vendorHandler.RemoveZoneRate)
	vendorOffice.POST("/products", productHandler.Create).
		GET("/products", productHandler.List).
		GET("/products/:id", productHandler.GetByID).
		PUT("/products/:id", productHandler.Update).
		DELETE("/products/:id", productHandler.Delete).
		POST("/products/:id/activate", productHandler.Activate).
		POST("/products/:id/archive", productHandler.Archive)
	vendorOffice.POST("/sections", sectionHandler.Create).
		GET("/sections", sectionHandler.List).
		GET("/sections/:id", sectionHandler.GetByID).
		PUT("/sections/:id", sectionHandler.Update).
		DELETE("/sections/:id", sectionHandler.Delete)
	vendorOffice.POST("/media/uploads", mediaHandler.InitiateUpload).
		POST("/media/uploads/confirm", mediaHandler.ConfirmUpload).
		DELETE("/media", mediaHandler.DeleteImage)
	vendorOffice.GET("/orders", orderHandler.ListForVendor).
		GET("/orders/:id", orderHandler.GetForVendor)

	// Platform administration
	adminGroup := router.NewDomainGroup("admin", "/admin")
	adminGroup.Use(middleware.RequireAdmin())
	adminGroup.GET("/vendors", vendorHandler.List).
		GET("/vendors/:id", vendorHandler.GetByID).
		POST("/vendors/:id/suspend", vendorHandler.Suspend).
		POST("/vendors/:id/activate", vendorHandler.Activate)
	adminGroup.POST("/categories", categoryHandler.Create).
		GET("/categories", categoryHandler.List).
		GET("/categories/:id", categoryHandler.GetByID).
		PUT("/categories/:id", categoryHandler.Update).
		DELETE("/categories/:id", categoryHandler.Delete)
	adminGroup.GET("/products", productHandler.List).
		GET("/products/:id", productHandler.GetByID).
		PUT("/products/:id", productHandler.Update).
		DELETE("/products/:id", productHandler.Delete).
		POST("/products/:id/activate", productHandler.Activate).
		POST("/products/:id/archive", productHandler.Archive)
	adminGroup.POST("/sections", sectionHandler.Create).
		GET("/sections", sectionHandler.List).
		GET("/sections/:id", sectionHandler.GetByID).
		PUT("/sections/:id", sectionHandler.Update).
		DELETE("/sections/:id", sectionHandler.Delete)
	adminGroup.GET("/orders", orderHandler.List).
		GET("/orders/:id", orderHandler.GetByID).
		PUT("/orders/:id/status", orderHandler.UpdateStatus)
	adminGroup.POST("/coupons", couponHandler.Create).
		GET("/coupons", couponHandler.List).
		GET("/coupons/:id", couponHandler.GetByID).
		PUT("/coupons/:id", couponHandler.Update).
		DELETE("/coupons/:id", couponHandler.Delete).
		GET("/coupons/:id/redemptions", couponHandler.Redemptions)
	adminGroup.POST("/users", userHandler.Create).
		GET("/users", userHandler.List).
		GET("/users/:id", userHandler.GetByID).
		PUT("/users/:id/role", userHandler.ChangeRole).
		POST("/users/:id/block", userHandler.Block).
		POST("/users/:id/unblock", userHandler.Unblock)

	systemGroup := router.NewDomainGroup("system", "/system")
	systemGroup.GET("/info", systemHandler.GetSystemInfo).
		GET("/ping", systemHandler.Ping)

	r.Register(authGroup).
		Register(globalStorefront).
		Register(vendorStorefront).
		Register(cartGroup).
		Register(checkoutGroup).
		Register(trackGroup).
		Register(ordersGroup).
		Register(vendorGroup).
		Register(adminGroup).
		Register(systemGroup)
	r.Setup()

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if businessMetrics != nil {
		businessMetrics.Stop()
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Meter provider shutdown failed", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Tracer provider shutdown failed", zap.Error(err))
	}
	if profiler != nil {
		if err := profiler.Stop(); err != nil {
			log.Warn("Profiler stop failed", zap.Error(err))
		}
	}

	log.Info("Server exited")
}

// registerStorefrontRoutes registers the catalog browsing routes shared by the
// global storefront and per-vendor storefronts.
func registerStorefrontRoutes(g *router.DomainGroup, h *handler.StorefrontHandler) {
	g.GET("/landing", h.Landing).
		GET("/best-sellers", h.BestSellers).
		GET("/hot-deals", h.HotDeals).
		GET("/new-arrivals", h.NewArrivals).
		GET("/categories", h.Categories).
		GET("/categories/:category_id/products", h.ByCategory).
		GET("/search", h.Search).
		GET("/products/:product_id", h.ProductDetail).
		GET("/last-viewed", h.LastViewed)
}

// catalogMetricsAdapter feeds periodic business metrics from the repositories.
type catalogMetricsAdapter struct {
	products catalog.ProductRepository
	orders   order.OrderRepository
}

func (a *catalogMetricsAdapter) GetActiveProductCount(ctx context.Context) (int64, error) {
	return a.products.Count(ctx, shared.Filter{Filters: map[string]interface{}{"status": "ACTIVE"}})
}

func (a *catalogMetricsAdapter) GetPendingOrderCount(ctx context.Context) (int64, error) {
	return a.orders.Count(ctx, shared.Filter{Filters: map[string]interface{}{"status": "PENDING"}})
}

func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			logger.GetGinLogger(c).Error("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().UTC().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().UTC().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
