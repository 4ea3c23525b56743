package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"device-manager/core/config"
	"device-manager/core/database"
	"device-manager/core/loader"
	"device-manager/core/logger"
	"device-manager/core/middleware/auth"
	"device-manager/core/middleware/rayid"
	"device-manager/core/scheduler"

	"device-manager/feature/catalog"
	"device-manager/feature/erpsync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "device-manager/docs/swagger"
)

// @title Device Manager API
// @version 1.0
// @description API for the device catalog and its synchronization with the Omie ERP.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the device manager server",
	Long:  `Starts the HTTP server, loads all enabled features and runs the sync scheduler.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// 3. Connect to Database (Optional, features depending on it stay disabled)
		var db *gorm.DB
		if conn, err := database.Connect(cfg.Database); err != nil {
			logg.Warn("Database connection failed", zap.Error(err))
		} else if err := prepareCatalog(conn); err != nil {
			logg.Fatal("Failed to prepare catalog", zap.Error(err))
		} else {
			db = conn
			logg.Info("Connected to database", zap.String("driver", cfg.Database.Driver))
		}

		// 4. Sync Service (requires ERP credentials and the database)
		var svc *erpsync.Service
		if db != nil {
			if svc, err = newSyncService(ctx, cfg, db, logg); err != nil {
				logg.Warn("ERP synchronization disabled", zap.Error(err))
				svc = nil
			}
		}

		// 5. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		mgr := loader.NewManager(logg)
		mgr.Register(catalog.NewFeature(db, logg.Named("catalog")))
		mgr.Register(erpsync.NewFeature(svc))

		// RayID first so every log line carries it
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			start := time.Now()
			err := c.Next()
			l.Info("Request",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
				zap.Int("status", c.Response().StatusCode()),
				zap.Duration("duration", time.Since(start)),
			)
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Swagger stays public
		app.Get("/swagger/*", swagger.HandlerDefault)

		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 6. Scheduler
		var sched *scheduler.Scheduler
		if svc != nil && cfg.Scheduler.Enabled() {
			sched = scheduler.New(cfg.Scheduler, func(ctx context.Context) error {
				return svc.Synchronize(ctx, nil, erpsync.TriggerScheduler).Result.Err()
			}, logg.Named("scheduler"))
			go func() {
				if err := sched.Start(ctx); err != nil && ctx.Err() == nil {
					logg.Error("Scheduler stopped", zap.Error(err))
				}
			}()
		}

		// 7. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(cfg.Server.Addr()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 8. Graceful Shutdown
		<-ctx.Done()
		logg.Info("Shutting down server...")
		if sched != nil {
			sched.Stop()
		}
		timeout := time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second
		if err := app.ShutdownWithTimeout(timeout); err != nil {
			logg.Error("Server shutdown failed", zap.Error(err))
		}
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
