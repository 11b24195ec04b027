package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "hotelcore/docs"
	"hotelcore/internal/app"
	"hotelcore/internal/realtime"
	"hotelcore/internal/shared/config"
	"hotelcore/internal/shared/middleware"
	"hotelcore/internal/shared/utils/response"
	"hotelcore/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			fmt.Println("production environment: using container environment variables")
		} else {
			fmt.Println("no .env file found, using system environment variables")
		}
	}

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	a, err := app.Bootstrap(cfg)
	if err != nil {
		fmt.Println("bootstrap failed:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.Start(ctx); err != nil {
		a.Log.ErrorWithContext(ctx, "start background services failed", err, nil)
		os.Exit(1)
	}
	defer a.Close()

	router := setupRouter(cfg, a)

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		a.Log.Info(fmt.Sprintf("hotelcore running on %s (version=%s)", cfg.GetServerAddress(), Version))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Log.ErrorWithContext(ctx, "server failed", err, nil)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	a.Log.Info("shutting down hotelcore...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.Log.ErrorWithContext(shutdownCtx, "forced shutdown", err, nil)
	}

	a.Log.Info("hotelcore exited gracefully")
}

func setupRouter(cfg *config.Config, a *app.App) *gin.Engine {
	engine := gin.New()
	engine.Use(requestLoggerMiddleware(a), gin.Recovery())

	engine.Use(cors.New(cors.Config{
		AllowOriginFunc:  func(origin string) bool { return true },
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-RateLimit-*"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if cfg.RateLimit.Enabled {
		limiter := ratelimit.NewRateLimiter(a.DB.GetRedis(), &ratelimit.Config{
			Enabled:         cfg.RateLimit.Enabled,
			WindowDuration:  cfg.RateLimit.WindowDuration,
			DefaultRequests: cfg.RateLimit.DefaultRequests,
			PricingRequests: cfg.RateLimit.PricingRequests,
			LoyaltyRequests: cfg.RateLimit.LoyaltyRequests,
			BookingRequests: cfg.RateLimit.BookingRequests,
			AdminRequests:   cfg.RateLimit.AdminRequests,
			WhitelistedIPs:  cfg.RateLimit.WhitelistedIPs,
		})
		engine.Use(ratelimit.Middleware(limiter))
	}

	engine.GET("/health", healthHandler(a))
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	realtimeServer := realtime.NewServer(a.Hub, cfg, a.Loyalty, a.Log)
	engine.GET("/ws", realtimeServer.HandleUpgrade)

	base := engine.Group(cfg.GetAPIBasePath())
	operatorRoutes(base.Group("/operator"), a)

	return engine
}

func requestLoggerMiddleware(a *app.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		a.Log.LogHTTPRequest(c, time.Since(start))
	}
}

func healthHandler(a *app.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		dbOK := true
		if sqlDB, err := a.DB.PostgreSQL.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			dbOK = false
		}
		redisOK := a.DB.Redis.Ping(ctx).Err() == nil
		kafkaOK := a.Events.HealthCheck(ctx) == nil

		status := "ok"
		code := http.StatusOK
		if !dbOK || !redisOK || !kafkaOK {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		response.RespondJSON(c, status, code, "health check", map[string]interface{}{
			"postgres": dbOK,
			"redis":    redisOK,
			"kafka":    kafkaOK,
			"version":  Version,
		}, nil)
	}
}

// operatorRoutes wires the minimal CLI-equivalent hooks (§6): cache warm,
// cache flush by tag, force pricing recompute, loyalty expiry scan now.
// Each is admin-only and returns the same {ok, affected} shape the
// cmd/operator CLI prints.
func operatorRoutes(rg *gin.RouterGroup, a *app.App) {
	auth := middleware.JWTAuthWithConfig(a.Config)
	admin := middleware.RequireAdmin()

	rg.Use(auth, admin)

	rg.POST("/cache/warm", func(c *gin.Context) {
		hotelID, err := uuid.Parse(c.Query("hotelId"))
		if err != nil {
			response.RespondJSON(c, "error", http.StatusBadRequest, "hotelId is required", nil, nil)
			return
		}
		horizon := queryInt(c, "horizonDays", 14)
		result, err := a.WarmCache(c.Request.Context(), hotelID, horizon)
		respondHook(c, result, err)
	})

	rg.POST("/cache/flush", func(c *gin.Context) {
		tag := c.Query("tag")
		if tag == "" {
			response.RespondJSON(c, "error", http.StatusBadRequest, "tag is required", nil, nil)
			return
		}
		result, err := a.FlushCacheTag(c.Request.Context(), tag)
		respondHook(c, result, err)
	})

	rg.POST("/pricing/recompute", func(c *gin.Context) {
		hotelID, err := uuid.Parse(c.Query("hotelId"))
		if err != nil {
			response.RespondJSON(c, "error", http.StatusBadRequest, "hotelId is required", nil, nil)
			return
		}
		horizon := queryInt(c, "horizonDays", 14)
		result, err := a.RecomputePricing(c.Request.Context(), hotelID, horizon)
		respondHook(c, result, err)
	})

	rg.POST("/loyalty/expiry-scan", func(c *gin.Context) {
		result, err := a.RunLoyaltyExpiryScanNow(c.Request.Context())
		respondHook(c, result, err)
	})
}

func respondHook(c *gin.Context, result app.HookResult, err error) {
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "ok", result, nil)
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	var n int
	if _, err := fmt.Sscanf(raw, "%d", &n); err != nil || n <= 0 {
		return fallback
	}
	return n
}
