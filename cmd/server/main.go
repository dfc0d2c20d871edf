package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"spellingbee/internal/audio"
	"spellingbee/internal/config"
	"spellingbee/internal/contest"
	"spellingbee/internal/database"
	"spellingbee/internal/handlers"
	"spellingbee/internal/mailer"
	"spellingbee/internal/reporting"
	"spellingbee/internal/repository"
	"spellingbee/internal/security"
	"spellingbee/internal/service"

	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg := config.Load()

	reporting.Setup(cfg.RollbarToken, cfg.Environment, version)
	defer reporting.Close()

	handlers.SetCurrentStep(handlers.StepDatabase)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()
	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)
	handlers.CompleteStep(handlers.StepDatabase)

	handlers.SetCurrentStep(handlers.StepMigrations)
	var migrations fs.FS = database.Migrations
	if cfg.MigrationsPath != "" {
		migrations = os.DirFS(cfg.MigrationsPath)
	}
	if err := db.RunMigrations(migrations); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed successfully")
	handlers.CompleteStep(handlers.StepMigrations)

	handlers.SetCurrentStep(handlers.StepServices)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	wordRepo := repository.NewWordRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	schoolRepo := repository.NewSchoolRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	contentRepo := repository.NewContentRepository(db)

	store, memoryStore := contestStore(cfg)

	m, err := mailer.New(context.Background(), mailer.Options{
		Provider:       cfg.EmailProvider,
		From:           cfg.EmailFrom,
		FromName:       "Spelling Bee",
		AWSRegion:      cfg.AWSRegion,
		SendGridAPIKey: cfg.SendGridAPIKey,
	})
	if err != nil {
		log.Fatalf("Failed to initialize mailer: %v", err)
	}

	var generator audio.Generator
	if cfg.TTSEnabled {
		generator = audio.NewTTSService(filepath.Join(cfg.StaticFilesPath, "audio"), "/static/audio/")
	}

	tokens := security.NewTokenIssuer(cfg.JWTSecret, cfg.TokenDuration)
	csrf := security.NewCSRF(cfg.CSRFSecret)
	limiter := security.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow)
	defer limiter.Stop()

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.SessionDuration)
	wordService := service.NewWordService(wordRepo, generator)
	studentService := service.NewStudentService(studentRepo, schoolRepo)
	schoolService := service.NewSchoolService(schoolRepo, m, tokens, cfg.OAuthRedirectBaseURL)
	contestService := service.NewContestService(store, studentRepo, wordRepo, sessionRepo)
	drillService := service.NewDrillService(studentRepo, wordRepo, statsRepo, inventoryRepo, tokens)
	leaderboardService := service.NewLeaderboardService(studentRepo)
	contentService := service.NewContentService(paymentRepo, contentRepo, schoolRepo)
	backupService := service.NewBackupService(db)

	oauthProviders := map[string]handlers.OAuthProvider{
		"google": {
			Label: "Google",
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				Scopes:       []string{"openid", "email", "profile"},
			},
			UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		},
		"facebook": {
			Label: "Facebook",
			Config: &oauth2.Config{
				ClientID:     cfg.FacebookClientID,
				ClientSecret: cfg.FacebookClientSecret,
				Endpoint:     facebook.Endpoint,
				Scopes:       []string{"email", "public_profile"},
			},
			UserInfoURL: "https://graph.facebook.com/me?fields=id,name,email",
		},
	}

	router := &handlers.Router{
		Middleware:      handlers.NewMiddleware(authService, drillService, schoolService, csrf, limiter),
		Auth:            handlers.NewAuthHandler(authService, csrf, oauthProviders, cfg.OAuthRedirectBaseURL),
		Words:           handlers.NewWordHandler(wordService),
		Students:        handlers.NewStudentHandler(studentService),
		Contests:        handlers.NewContestHandler(contestService),
		Schools:         handlers.NewSchoolHandler(schoolService, studentService, contentService),
		Leaderboard:     handlers.NewLeaderboardHandler(leaderboardService),
		Content:         handlers.NewContentHandler(contentService),
		Drill:           handlers.NewDrillHandler(drillService),
		Admin:           handlers.NewAdminHandler(authService, backupService, wordService, studentService, schoolService),
		DB:              db,
		StaticFilesPath: cfg.StaticFilesPath,
	}
	handlers.CompleteStep(handlers.StepServices)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	handlers.MarkReady()
	log.Println("Server ready")

	if generator != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			n, err := wordService.GenerateMissingAudio(ctx)
			if err != nil {
				log.Printf("Warning: Failed to generate missing audio files: %v", err)
			} else if n > 0 {
				log.Printf("Generated %d missing audio files", n)
			}
		}()
	}

	stop := make(chan struct{})
	go cleanupExpired(authService, memoryStore, stop)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	close(stop)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
}

// contestStore keeps live contests in Redis when REDIS_ADDR is set, else in memory.
// The memory store is also returned so its expired entries can be swept.
func contestStore(cfg *config.Config) (contest.Store, *contest.MemoryStore) {
	if cfg.RedisAddr == "" {
		log.Println("Live contests kept in memory (REDIS_ADDR not set)")
		s := contest.NewMemoryStore(cfg.ContestTTL)
		return s, s
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis at %s: %v", cfg.RedisAddr, err)
	}
	log.Printf("Live contests kept in Redis at %s", cfg.RedisAddr)
	return contest.NewRedisStore(rdb, cfg.ContestTTL), nil
}

// cleanupExpired periodically removes expired sessions and abandoned contests
func cleanupExpired(authService *service.AuthService, memoryStore *contest.MemoryStore, stop <-chan struct{}) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		if err := authService.CleanupExpiredSessions(); err != nil {
			log.Printf("Error cleaning up expired sessions: %v", err)
		} else {
			log.Println("Expired sessions cleaned up")
		}

		if memoryStore != nil {
			if n := memoryStore.CleanupExpired(); n > 0 {
				log.Printf("Dropped %d expired contests", n)
			}
		}
	}
}
