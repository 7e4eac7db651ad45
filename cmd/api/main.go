package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/hanbit-dev/authportal-backend/internal/auth"
	"github.com/hanbit-dev/authportal-backend/internal/config"
	"github.com/hanbit-dev/authportal-backend/internal/database"
	"github.com/hanbit-dev/authportal-backend/internal/handlers"
	"github.com/hanbit-dev/authportal-backend/internal/middleware"
	"github.com/hanbit-dev/authportal-backend/internal/otp"
	"github.com/hanbit-dev/authportal-backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	redisClient, err := services.InitRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}

	// Storage is optional: without credentials the browser routes are
	// simply not registered.
	storage, err := services.NewStorage(cfg)
	if err != nil {
		log.Printf("Storage initialization warning: %v", err)
	}

	directory := database.NewDirectory(db)
	challenges := database.NewChallengeStore(db)
	engine := otp.NewEngine(challenges, cfg.OTPTTL, cfg.OTPMaxAttempts)
	smsClient := services.NewSMSClient(cfg.SMSAPIURL, cfg.SMSSender)
	consumer := services.NewResetTokenConsumer(redisClient)

	sessions := auth.NewSessionManager(cfg.JWTSecret, cfg.SessionTTL, cfg.IsProduction())
	recovery := auth.NewRecoveryService(directory, engine, smsClient, cfg.SMSSender)
	reset := auth.NewResetService(directory, engine, smsClient, consumer, cfg.SMSSender, cfg.JWTSecret, cfg.ResetTokenTTL)

	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.BaseURL}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	r.Use(middleware.AccessGate(sessions, cfg.ReturnToTTL, cfg.IsProduction()))

	// Pages
	r.GET("/", handlers.HomePage())
	r.GET(middleware.LoginPath, handlers.LoginPage())
	r.GET(handlers.SignupPath, handlers.LoginPage())
	r.GET("/auth/continue", handlers.ContinuePage())
	r.GET(middleware.HomePath, handlers.DashboardPage())
	r.GET("/example/object_storage", handlers.StorageBrowserPage())

	// Identity recovery and password reset
	r.POST("/recovery/send", handlers.RecoverySend(recovery))
	r.POST("/recovery/verify", handlers.RecoveryVerify(recovery))
	r.POST("/reset/send", handlers.ResetSend(reset))
	r.POST("/reset/verify", handlers.ResetVerify(reset, cfg.ResetTokenTTL, cfg.IsProduction()))
	r.POST("/reset/update", handlers.ResetUpdate(reset, cfg.IsProduction()))

	// Credential auth
	api := r.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", handlers.Register(db))
			authRoutes.POST("/login", handlers.Login(db, sessions))
			authRoutes.POST("/logout", handlers.Logout(sessions))
		}

		if storage != nil {
			api.GET("/storage", handlers.ListStorageObjects(storage))
			api.POST("/storage", handlers.CreateUploadURL(storage))
			api.DELETE("/storage", handlers.DeleteStorageObject(storage))
		}
	}

	// OAuth
	r.GET("/auth/kakao/login", handlers.KakaoLogin(cfg))
	r.GET("/auth/kakao/callback", handlers.KakaoCallback(db, sessions, cfg))

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
