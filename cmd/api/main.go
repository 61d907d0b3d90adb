package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"verdict-api/internal/config"
	"verdict-api/internal/db"
	"verdict-api/internal/email"
	apihttp "verdict-api/internal/http"
	"verdict-api/internal/repository"
	"verdict-api/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	userRepo := repository.NewPgUserRepository(pool)
	pendingRepo := repository.NewPgPendingRegistrationRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	otpTTL := time.Duration(cfg.OTPTTLMinutes) * time.Minute
	var otpLimiter service.OTPRateLimiter
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			otpLimiter = service.NewRedisOTPRateLimiter(redisClient, otpTTL, cfg.OTPMaxSends)
		}
		cancel()
	}

	tokenSvc := service.NewTokenService(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)
	regSvc := service.NewRegistrationService(logger, userRepo, pendingRepo, emailSender, otpLimiter, cfg.BcryptCost, otpTTL)

	// Barrido periodico de registros pendientes vencidos.
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			ctxSweep, cancel := context.WithTimeout(ctx, 10*time.Second)
			if n, err := pendingRepo.DeleteExpired(ctxSweep); err != nil {
				logger.Warn("expired pending sweep failed", zap.Error(err))
			} else if n > 0 {
				logger.Info("expired pending registrations removed", zap.Int64("count", n))
			}
			cancel()
		}
	}()

	authHandler := apihttp.NewAuthHandler(logger, regSvc, tokenSvc)
	userHandler := apihttp.NewUserHandler(logger, regSvc, userRepo)
	router := apihttp.NewRouter(logger, authHandler, userHandler, tokenSvc, pool)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
