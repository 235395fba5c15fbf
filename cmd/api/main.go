package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/anjiri1684/tutor_marketplace/configs"
	"github.com/anjiri1684/tutor_marketplace/database"
	"github.com/anjiri1684/tutor_marketplace/handlers"
	"github.com/anjiri1684/tutor_marketplace/jobs"
	"github.com/anjiri1684/tutor_marketplace/logger"
	"github.com/anjiri1684/tutor_marketplace/middleware"
	"github.com/anjiri1684/tutor_marketplace/notifications"
	"github.com/anjiri1684/tutor_marketplace/payments"
	"github.com/anjiri1684/tutor_marketplace/repository"
	"github.com/anjiri1684/tutor_marketplace/routes"
	"github.com/anjiri1684/tutor_marketplace/services"
	"github.com/anjiri1684/tutor_marketplace/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseURL, zlog)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}
	seeded, err := database.SeedAdmin(ctx, db, cfg.AdminEmail, cfg.AdminPassword, cfg.BcryptCost)
	if err != nil {
		return err
	}
	if seeded {
		zlog.Info("seeded admin user", zap.String("email", cfg.AdminEmail))
	}

	store := repository.NewStore(db)

	hub := websocket.NewHub(zlog)
	go hub.Run(ctx)

	var mailer notifications.Mailer
	if brevo := notifications.NewBrevoService(cfg.Email, zlog); brevo != nil {
		mailer = brevo
	} else {
		zlog.Warn("email delivery disabled: BREVO_API_KEY or EMAIL_SENDER not set")
	}
	dispatcher := notifications.NewDispatcher(mailer, hub, zlog)

	processor := payments.NewStripeService(cfg.Stripe, nil)
	ledger := services.NewLedger(store, processor, dispatcher, zlog, cfg.Payments.Currency)

	h := handlers.New(handlers.Deps{
		Store:      store,
		Auth:       services.NewAuthService(store, cfg.JWTSecret, cfg.JWTTTL, cfg.BcryptCost, zlog),
		Profiles:   services.NewProfileService(store),
		Ledger:     ledger,
		Dashboard:  services.NewDashboardService(store),
		Reconciler: services.NewReconciler(ledger, zlog),
		Processor:  processor,
		Hub:        hub,
		Log:        zlog,
	})

	c := cron.New()
	expiry := jobs.NewPaymentExpiryJob(ledger, cfg.Payments.PendingTTL, zlog)
	if err := jobs.Schedule(c, cfg.Payments.ExpirySchedule, expiry); err != nil {
		return err
	}
	c.Start()
	defer drain(c, dispatcher)

	app := fiber.New(fiber.Config{
		AppName:      "Tutor Marketplace",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: middleware.ErrorHandler(zlog),
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, Stripe-Signature",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		MaxAge:       86400,
	}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	routes.Setup(app, h, cfg.JWTSecret)

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("server listening", zap.String("port", cfg.Port))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zlog.Warn("http shutdown", zap.Error(err))
	}
	return nil
}

type waiter interface {
	Wait()
}

// drain stops the scheduler, lets running jobs finish, and only then waits
// for the notifications those jobs may have started.
func drain(c *cron.Cron, notifications waiter) {
	<-c.Stop().Done()
	notifications.Wait()
}
