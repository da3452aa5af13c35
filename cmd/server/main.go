package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/carleetho/budgetpro/internal/config"
	"github.com/carleetho/budgetpro/internal/handler"
	"github.com/carleetho/budgetpro/internal/middleware"
	"github.com/carleetho/budgetpro/internal/repository"
	"github.com/carleetho/budgetpro/internal/service"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()
	zap.ReplaceGlobals(zapLogger)

	zapLogger.Info("Starting budgetpro service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	rdb := initRedis(cfg.Redis)

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, rdb, cfg)
	handlers := handler.NewHandlers(services)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())

	registerRoutes(router, handlers, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	v1 := r.Group("/api/v1")
	{
		// Autenticacion (sin sesion)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/register", h.Auth.Register)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// Interfaces con sesion
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.POST("/auth/logout", h.Auth.Logout)

			// Proyectos
			proyectos := authorized.Group("/proyectos")
			{
				proyectos.GET("", h.Proyecto.List)
				proyectos.POST("", h.Proyecto.Create)
				proyectos.GET("/:id", h.Proyecto.Get)
				proyectos.PUT("/:id", h.Proyecto.Update)
				proyectos.DELETE("/:id", h.Proyecto.Delete)

				// Reportes de produccion del proyecto
				proyectos.GET("/:id/reportes", h.Produccion.List)
				proyectos.POST("/:id/reportes", h.Produccion.Create)
			}

			// Presupuestos
			presupuestos := authorized.Group("/presupuestos")
			{
				presupuestos.GET("/:id/arbol", h.Presupuesto.GetArbol)
				presupuestos.POST("/:id/items", h.Presupuesto.CreateItem)
				presupuestos.PUT("/:id/items/:itemId", h.Presupuesto.UpdateItem)
				presupuestos.DELETE("/:id/items/:itemId", h.Presupuesto.DeleteItem)
				presupuestos.POST("/:id/aprobar", middleware.RequireRol("admin"), h.Presupuesto.Aprobar)
				presupuestos.GET("/:id/control-costos", h.Presupuesto.ControlCostos)
				presupuestos.GET("/:id/export", h.Presupuesto.Export)
				presupuestos.PUT("/:id/partidas/:partidaId/apu", h.APU.Save)
			}

			// APU por partida
			authorized.GET("/partidas/:id/apu", h.APU.Get)

			// Catalogo de recursos
			recursos := authorized.Group("/recursos")
			{
				recursos.GET("/search", h.Recurso.Search)
				recursos.POST("", h.Recurso.Create)
				recursos.GET("/:id", h.Recurso.Get)
				recursos.PUT("/:id", h.Recurso.Update)
			}

			// Reportes de produccion
			reportes := authorized.Group("/reportes")
			{
				reportes.GET("/:id", h.Produccion.Get)
				reportes.PUT("/:id", h.Produccion.Update)
				reportes.POST("/:id/aprobar", middleware.RequireRol("admin"), h.Produccion.Aprobar)
				reportes.POST("/:id/rechazar", middleware.RequireRol("admin"), h.Produccion.Rechazar)
			}
		}
	}
}
