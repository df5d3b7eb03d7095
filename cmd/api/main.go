package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/safesphere/backend/internal/analysis"
	"github.com/safesphere/backend/internal/api/handlers"
	"github.com/safesphere/backend/internal/cache/redis"
	"github.com/safesphere/backend/internal/escalation"
	"github.com/safesphere/backend/internal/evaluation"
	"github.com/safesphere/backend/internal/graph/neo4j"
	"github.com/safesphere/backend/internal/ingestion"
	"github.com/safesphere/backend/internal/llm"
	"github.com/safesphere/backend/internal/metrics"
	"github.com/safesphere/backend/internal/middleware/ratelimit"
	"github.com/safesphere/backend/internal/middleware/security"
	"github.com/safesphere/backend/internal/middleware/validation"
	"github.com/safesphere/backend/internal/rag"
	"github.com/safesphere/backend/internal/storage/sqlite"
	"github.com/safesphere/backend/internal/vector/milvus"
	"github.com/safesphere/backend/pkg/config"
	appLogger "github.com/safesphere/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting SafeSphere analysis API server")

	metrics.Init()

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	err = sqliteClient.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	// Redis, Milvus and Neo4j are all optional at startup. A missing
	// backing service degrades its feature, never the whole server.
	redisClient, err := redis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		appLogger.Warn("Redis unavailable, running without caches", zap.Error(err))
		redisClient = nil
	} else {
		defer redisClient.Close()

		err = redisClient.EnsureAnalysisVersion(context.Background(), analysis.ClassifierVersion)
		if err != nil {
			appLogger.Warn("Failed to reconcile analysis cache version", zap.Error(err))
		}
	}

	milvusClient, err := milvus.NewClient(
		cfg.Milvus.Endpoint,
		cfg.Milvus.APIKey,
		cfg.Milvus.CollectionName,
		cfg.Milvus.VectorDim,
	)
	if err != nil {
		appLogger.Warn("Milvus unavailable, chat will use the fallback corpus", zap.Error(err))
		milvusClient = nil
	} else {
		defer milvusClient.Close()
		err = milvusClient.CreateCollection(context.Background())
		if err != nil {
			appLogger.Warn("Failed to ensure Milvus collection", zap.Error(err))
		}
	}

	neo4jClient, err := neo4j.NewClient(
		cfg.Neo4j.URI,
		cfg.Neo4j.Username,
		cfg.Neo4j.Password,
		cfg.Neo4j.Database,
	)
	if err != nil {
		appLogger.Warn("Neo4j unavailable, case graph endpoints disabled", zap.Error(err))
		neo4jClient = nil
	} else {
		defer neo4jClient.Close(context.Background())
	}

	llmClient := llm.NewClient(
		cfg.LLM.APIKey,
		cfg.LLM.Model,
		cfg.LLM.EmbeddingModel,
		cfg.LLM.Temperature,
		cfg.LLM.MaxTokens,
		cfg.LLM.TimeoutSec,
	)

	analyzer := analysis.NewAnalyzer(llmClient)
	planner := escalation.NewPlanner(llmClient)
	calibration := evaluation.NewRecorder(sqliteClient)
	answerer := rag.NewAnswerer(llmClient, milvusClient, redisClient, cfg.RAG.TopK, cfg.RAG.SimilarityThreshold)
	processor := ingestion.NewProcessor(sqliteClient, milvusClient, llmClient)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-User-ID",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: 60,
		WindowDuration:       time.Minute,
		Logger:               appLogger.GetLogger(),
	})
	defer limiter.Stop()
	app.Use(limiter.Middleware())

	app.Use(validation.Middleware(validation.Config{
		Logger: appLogger.GetLogger(),
	}))

	analysisHandler := handlers.NewAnalysisHandler(analyzer, sqliteClient, redisClient, calibration)
	caseHandler := handlers.NewCaseHandler(analyzer, planner, neo4jClient)
	chatHandler := handlers.NewChatHandler(answerer, sqliteClient)
	wsHandler := handlers.NewWebSocketHandler(answerer, sqliteClient)
	knowledgeHandler := handlers.NewKnowledgeHandler(processor)

	api := app.Group("/api/v1")

	api.Post("/analysis", analysisHandler.HandleAnalyze)
	api.Post("/analysis/live", analysisHandler.HandleLiveAnalyze)
	api.Get("/analysis/history", analysisHandler.GetHistory)
	api.Post("/feedback", analysisHandler.HandleFeedback)

	api.Post("/cases/credibility", caseHandler.HandleCredibility)
	api.Post("/cases/comparison", caseHandler.HandleComparison)
	api.Post("/cases/escalation", caseHandler.HandleEscalation)
	api.Post("/cases/record", caseHandler.HandleRecordCase)
	api.Get("/cases/patterns/:accused_id", caseHandler.GetAccusationPattern)

	api.Post("/chat/ask", chatHandler.HandleAsk)

	api.Post("/knowledge/documents", knowledgeHandler.UploadDocument)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/chat", websocket.New(wsHandler.HandleConnection))

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":     "ready",
			"llm":        llmClient.Configured(),
			"cache":      redisClient != nil,
			"vector_db":  milvusClient != nil,
			"case_graph": neo4jClient != nil,
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
