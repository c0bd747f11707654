package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"talentbridge/recruiting-api/internal/config"
	"talentbridge/recruiting-api/internal/handlers"
	"talentbridge/recruiting-api/internal/middleware"
	"talentbridge/recruiting-api/internal/models"
	"talentbridge/recruiting-api/internal/repositories"
	"talentbridge/recruiting-api/internal/security"
	"talentbridge/recruiting-api/internal/services"
)

func main() {
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Repositories
	transactor := repositories.NewTransactor(db)
	userRepo := repositories.NewUserRepository(db)
	companyRepo := repositories.NewCompanyRepository(db)
	docRepo := repositories.NewDocumentRepository(db)
	offerRepo := repositories.NewOfferRepository(db)
	applicationRepo := repositories.NewApplicationRepository(db)
	log.Println("✅ Repositories initialized successfully")

	clock := services.NewSystemClock()

	storageService := services.NewStorageService(cfg.Storage.UploadPath, cfg.Storage.MaxFileSize)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}
	pdfParser := services.NewPDFParserService()

	// Offer matching is optional
	var (
		indexer  services.OfferIndexer
		matching services.MatchingService
	)
	if cfg.MatchingEnabled() {
		indexer, matching, err = initMatching(ctx, cfg, docRepo, offerRepo, applicationRepo, clock)
		if err != nil {
			log.Printf("⚠️  Offer matching disabled: %v", err)
		} else {
			indexer.Start(ctx)
			log.Println("✅ Offer matching initialized successfully")
		}
	} else {
		log.Println("ℹ️  GEMINI_API_KEY not set, offer matching disabled")
	}

	var indexQueue services.IndexQueue
	if indexer != nil {
		indexQueue = indexer
	}

	limiter := initLimiter(ctx, cfg)

	tokens := security.NewJWTProvider(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	accountService := services.NewAccountService(transactor, userRepo, companyRepo, tokens, clock)
	companyService := services.NewCompanyService(companyRepo)
	offerService := services.NewOfferService(offerRepo, companyRepo, indexQueue, cfg.Policy)
	documentService := services.NewDocumentService(docRepo, storageService, pdfParser)
	applicationService := services.NewApplicationService(
		transactor,
		applicationRepo,
		docRepo,
		offerRepo,
		companyRepo,
		clock,
		cfg.Policy,
	)
	log.Println("✅ Services initialized successfully")

	router := &handlers.Router{
		Accounts:     handlers.NewAccountHandler(accountService),
		Companies:    handlers.NewCompanyHandler(companyService),
		Documents:    handlers.NewDocumentHandler(documentService, matching),
		Offers:       handlers.NewOfferHandler(offerService),
		Applications: handlers.NewApplicationHandler(applicationService),
		Auth: middleware.JWT(tokens, middleware.UserLoaderFunc(func(c *fiber.Ctx, id uint) (*models.User, error) {
			return accountService.GetUser(c.UserContext(), id)
		})),
		Limiter: limiter,
		Policy:  cfg.Policy,
	}
	log.Println("✅ Handlers initialized")

	app := handlers.NewApp(cfg.Storage.MaxFileSize)
	router.Register(app)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		if indexer != nil {
			indexer.Stop()
		}
		cancel()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func initMatching(
	ctx context.Context,
	cfg *config.Config,
	docRepo repositories.DocumentRepository,
	offerRepo repositories.OfferRepository,
	applicationRepo repositories.ApplicationRepository,
	clock services.Clock,
) (services.OfferIndexer, services.MatchingService, error) {
	embedder, err := services.NewGeminiEmbedder(ctx, cfg.Gemini.APIKey)
	if err != nil {
		return nil, nil, err
	}

	vectors, err := services.NewQdrantOfferStore(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection)
	if err != nil {
		return nil, nil, err
	}
	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := vectors.InitCollection(initCtx); err != nil {
		return nil, nil, err
	}

	indexer := services.NewOfferIndexer(offerRepo, embedder, vectors, clock, cfg.Worker.Concurrency, cfg.Worker.PollInterval)
	matching := services.NewMatchingService(
		docRepo,
		offerRepo,
		embedder,
		vectors,
		services.NewTextChunker(),
		services.NewCooldownTracker(applicationRepo, clock),
	)
	return indexer, matching, nil
}

// initLimiter prefers Redis so limits hold across instances.
func initLimiter(ctx context.Context, cfg *config.Config) middleware.Limiter {
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatalf("❌ Invalid REDIS_URL: %v", err)
		}
		client := redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			log.Printf("⚠️  Redis unreachable, rate limits fail open until it recovers: %v", err)
		} else {
			log.Println("✅ Redis rate limiter connected")
		}
		return middleware.NewRedisLimiter(client)
	}

	limiter := middleware.NewMemoryLimiter()
	limiter.StartJanitor(ctx, 10*time.Minute)
	log.Println("ℹ️  REDIS_URL not set, using in-memory rate limiter")
	return limiter
}
