package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/Windi-Fikriyansyah/freelance_be/internal/config"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/db"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/handlers"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/realtime"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/services/accounts"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/services/bids"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/services/notifications"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/services/projects"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/services/selection"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/store"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/telemetry"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTelEndpoint, cfg.OTelServiceName)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	gdb, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	if cfg.MigrationURL != "" {
		err = db.RunMigrations(cfg.MigrationURL, cfg.DBDSN)
	} else {
		err = db.AutoMigrate(gdb)
	}
	if err != nil {
		log.Fatal(err)
	}

	hub := realtime.NewHub()
	go hub.Run(ctx)

	var pub realtime.Publisher = hub
	if cfg.RedisAddr != "" {
		rdb := realtime.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal("redis not reachable: ", err)
		}
		broker := realtime.NewBroker(rdb, hub, cfg.RedisChannelPrefix)
		go func() {
			if err := broker.Run(ctx); err != nil {
				log.Printf("[realtime] broker stopped: %v", err)
			}
		}()
		pub = broker
		log.Println("Redis pub/sub fan-out enabled")
	} else {
		log.Println("REDIS_ADDR not set: live events stay on this instance")
	}

	st := store.New(gdb)
	dispatcher := notifications.NewDispatcher(st, pub)

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Length",
		AllowCredentials: true,
	}))

	handlers.Mount(app, cfg, handlers.Services{
		Accounts:      accounts.NewService(st),
		Projects:      projects.NewService(st),
		Bids:          bids.NewService(st, dispatcher, pub),
		Selection:     selection.NewService(st, dispatcher, pub),
		Notifications: dispatcher,
		Hub:           hub,
	})

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatal(err)
	}
}
