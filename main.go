package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"reward-calibration-engine/handlers"
	"reward-calibration-engine/middleware"
	"reward-calibration-engine/models"
	"reward-calibration-engine/services"
	"reward-calibration-engine/utils"
	"reward-calibration-engine/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024, // 1MB — claim bodies are small JSON
	})

	// 🔐 GLOBAL: Only Gateway requests allowed (health excepted)
	app.Use(middleware.GatewayAuthMiddleware())

	// Security headers on every response (nosniff, frame deny)
	app.Use(helmet.New(helmet.Config{
		XFrameOptions: "DENY",
	}))

	// Load allowed origins from environment variable
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, X-User-ID, X-Device-ID",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := utils.MustGetEnv("DATABASE_URL")

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.UserDailyState{},
		&models.ClaimRecord{},
		&models.DeviceFingerprintLink{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	limiter := services.NewRateLimiter()
	registry := services.NewGormDeviceRegistry(db)
	scorer := services.NewTrustScorer(registry)
	store := services.NewGormProfileStore(db)

	cfg := services.DefaultClaimConfig()
	cfg.RateLimit = utils.GetEnvInt("CLAIM_RATE_LIMIT", cfg.RateLimit)
	cfg.RateWindow = utils.GetEnvDuration("CLAIM_RATE_WINDOW", cfg.RateWindow)
	cfg.ClaimCooldown = utils.GetEnvDuration("CLAIM_COOLDOWN", cfg.ClaimCooldown)

	claimService := services.NewClaimService(store, scorer, limiter, cfg)
	claimService.StartRetentionScheduler()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper := workers.NewSweeper(limiter, registry)
	go workers.PollSweep(ctx, sweeper, 10*time.Minute)

	handlers.SetupClaimRoutes(app, claimService)

	port := utils.GetEnvDefault("PORT", "5300")
	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Reward calibration engine running on http://localhost:%s", port)
	log.Printf("✅ Claim limiter: %d per %s, cooldown %s", cfg.RateLimit, cfg.RateWindow, cfg.ClaimCooldown)
	log.Println("✅ Sweeper running (every 10m)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
