package main

import (
	"context"
	"log"
	"time"

	api "improtango-backend/cmd/api"
	contactdomain "improtango-backend/internal/contact/domain"
	contactRepo "improtango-backend/internal/contact/repository"
	contactUsecase "improtango-backend/internal/contact/usecase"
	newsletterdomain "improtango-backend/internal/newsletter/domain"
	newsletterRepo "improtango-backend/internal/newsletter/repository"
	newsletterUsecase "improtango-backend/internal/newsletter/usecase"
	"improtango-backend/internal/notification"
	ratelimitdomain "improtango-backend/internal/ratelimit/domain"
	ratelimitRepo "improtango-backend/internal/ratelimit/repository"
	ratelimitUsecase "improtango-backend/internal/ratelimit/usecase"
	"improtango-backend/pkg/config"
	"improtango-backend/pkg/database"
	"improtango-backend/pkg/mailer"
	"improtango-backend/pkg/resend"
	"improtango-backend/pkg/smtp"

	"github.com/redis/go-redis/v9"
)

func newRedis(cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("[WARN] Redis at %s unreachable: %v", cfg.RedisAddr, err)
		_ = rdb.Close()
		return nil
	}
	log.Printf("[Redis] Connected to %s", cfg.RedisAddr)
	return rdb
}

func newSender(cfg config.EmailConfig) mailer.Sender {
	if cfg.Transport == config.TransportSMTP {
		log.Printf("[Email] Using SMTP transport via %s:%d", cfg.SMTPHost, cfg.SMTPPort)
		return smtp.NewSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.Timeout)
	}
	log.Printf("[Email] Using Resend transport at %s", cfg.ResendBaseURL)
	return resend.NewClient(cfg.ResendAPIKey, cfg.ResendBaseURL, cfg.Timeout, resend.WithRateLimit(cfg.ResendRPS, 1))
}

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Close(db)

	// Auto-migrate database schemas
	if err := db.AutoMigrate(&newsletterdomain.Subscriber{}, &ratelimitdomain.RateLimit{}, &contactdomain.Submission{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	rdb := newRedis(cfg)
	if rdb != nil {
		defer rdb.Close()
	}

	// Rate limiter
	var limitRepo ratelimitRepo.RateLimitRepository
	if cfg.RateLimit.Backend == config.BackendRedis && rdb != nil {
		limitRepo = ratelimitRepo.NewRedisRateLimitRepository(rdb, "ratelimit")
		log.Printf("[RateLimit] Using redis backend")
	} else {
		if cfg.RateLimit.Backend == config.BackendRedis {
			log.Printf("[WARN] RATE_LIMIT_BACKEND=redis but redis is unavailable, falling back to database")
		}
		limitRepo = ratelimitRepo.NewGormRateLimitRepository(db)
	}

	limiterOpts := []ratelimitUsecase.Option{ratelimitUsecase.WithScope(cfg.RateLimit.Scope)}
	if cfg.RateLimit.StatsEnabled && rdb != nil {
		limiterOpts = append(limiterOpts, ratelimitUsecase.WithStats(ratelimitRepo.NewRedisStatsRecorder(rdb, "ratelimit:stats")))
	}
	limiter := ratelimitUsecase.NewLimiter(limitRepo, ratelimitdomain.Policy{
		Window: cfg.RateLimit.Window,
		Max:    cfg.RateLimit.Max,
	}, limiterOpts...)
	log.Printf("[RateLimit] %d request(s) per %s, scope %s", cfg.RateLimit.Max, cfg.RateLimit.Window, cfg.RateLimit.Scope)

	// Email
	notifier, err := notification.NewService(newSender(cfg.Email), cfg.Email)
	if err != nil {
		log.Fatal("Failed to load email templates:", err)
	}
	if missing := cfg.Email.MissingEmailSettings(); len(missing) > 0 {
		log.Printf("[WARN] Email settings missing: %v", missing)
	}

	// Initialize use cases (dependency injection)
	tx := database.NewTransactor(db)
	newsletterUc := newsletterUsecase.NewNewsletterUsecase(newsletterRepo.NewGormSubscriberRepository(db), tx, limiter, notifier)
	contactUc := contactUsecase.NewContactUsecase(contactRepo.NewGormSubmissionRepository(db), tx, limiter, notifier)

	handler := api.NewHandler(cfg, newsletterUc, contactUc, limiter)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
