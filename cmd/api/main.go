package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"alfredoptarigan/cv-screener/internal/app"
	"alfredoptarigan/cv-screener/internal/config"
	"alfredoptarigan/cv-screener/internal/handlers"
	"alfredoptarigan/cv-screener/internal/logger"
	"alfredoptarigan/cv-screener/internal/repositories"
	"alfredoptarigan/cv-screener/internal/services"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()
	zlog.Info("✅ Config loaded successfully")

	db, err := config.InitDatabase(cfg, zlog)
	if err != nil {
		zlog.Fatal("❌ Failed to initialize database", zap.Error(err))
	}

	uploadRepo := repositories.NewUploadRepository(db)
	screeningRepo := repositories.NewScreeningRepository(db)
	zlog.Info("✅ Repositories initialized successfully")

	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		zlog.Fatal("❌ Failed to create upload directory", zap.Error(err))
	}

	ctx := context.Background()

	embedder, err := app.NewModelBackend(ctx, cfg, cfg.Models.EmbeddingProvider)
	if err != nil {
		zlog.Fatal("❌ Failed to initialize embedding model", zap.Error(err))
	}
	zlog.Info("✅ Embedding model initialized", zap.String("provider", cfg.Models.EmbeddingProvider))

	// A generation backend that cannot be built leaves the generator unavailable; the server still starts.
	var llm services.TextGenerator
	if generationBackend, err := app.NewModelBackend(ctx, cfg, cfg.Models.GenerationProvider); err != nil {
		zlog.Error("❌ Failed to initialize generation model", zap.Error(err))
	} else {
		llm = generationBackend
		zlog.Info("🧠 Generation model configured",
			zap.String("provider", cfg.Models.GenerationProvider),
			zap.String("model", generationBackend.ModelName()),
		)
	}

	pingCtx, cancelPing := context.WithTimeout(ctx, app.PingTimeout)
	generator := services.NewFeedbackGenerator(pingCtx, llm, services.GeneratorConfig{
		MaxPromptTokens: cfg.Models.MaxPromptTokens,
		MaxNewTokens:    cfg.Models.MaxNewTokens,
	}, zlog)
	cancelPing()

	index, err := app.NewVectorIndex(cfg, cfg.Retrieval.IndexBackend, zlog)
	if err != nil {
		zlog.Fatal("❌ Failed to initialize similarity index", zap.Error(err))
	}

	corpus := services.NewRoleCorpus(cfg.Retrieval.JobDescriptionsPath)
	retriever := services.NewRetrieverService(
		embedder,
		index,
		services.NewRoleMapping(cfg.Retrieval.RolesPath),
		services.RetrieverConfig{
			Threshold:       cfg.Retrieval.SimilarityThreshold,
			DefaultRole:     cfg.Retrieval.DefaultRole,
			MaxReducedChars: cfg.Retrieval.MaxReducedChars,
		},
		zlog,
	)

	screeningService := services.NewScreeningService(
		screeningRepo,
		uploadRepo,
		storageService,
		services.NewTextExtractor(),
		retriever,
		corpus,
		generator,
		zlog,
	)
	zlog.Info("✅ Services initialized successfully")

	worker := services.NewRetentionWorker(uploadRepo, storageService, services.RetentionConfig{
		Retention:    cfg.Worker.UploadRetention,
		PollInterval: cfg.Worker.PollInterval,
		Concurrency:  cfg.Worker.Concurrency,
	}, zlog)
	worker.Start(ctx)

	fiberApp := fiber.New(fiber.Config{
		AppName:      "CV Screener API",
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BodyLimit:    cfg.MaxRequestBodySize(),
		ErrorHandler: handlers.ErrorHandler,
	})

	fiberApp.Use(recover.New())
	fiberApp.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	fiberApp.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	handlers.SetupRoutes(fiberApp, &handlers.Handlers{
		Screening: handlers.NewScreeningHandler(screeningService, zlog),
		Result:    handlers.NewResultHandler(screeningRepo),
		Catalog:   handlers.NewCatalogHandler(corpus, generator),
	})
	zlog.Info("✅ Handlers initialized")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zlog.Info("🛑 Shutting down server...")
		worker.Stop()
		if err := fiberApp.Shutdown(); err != nil {
			zlog.Error("❌ Server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zlog.Info("🚀 Server starting", zap.String("addr", addr))

	if err := fiberApp.Listen(addr); err != nil {
		zlog.Fatal("❌ Failed to start server", zap.Error(err))
	}
}
