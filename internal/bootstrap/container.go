package bootstrap

import (
	"context"
	"log"
	"time"

	"scoutgpt-be/internal/config"
	"scoutgpt-be/internal/controller"
	"scoutgpt-be/internal/pkg/logger"
	"scoutgpt-be/internal/repository/memory"
	"scoutgpt-be/internal/repository/unitofwork"
	"scoutgpt-be/internal/service"
	"scoutgpt-be/pkg/arcgis"
	"scoutgpt-be/pkg/embedding"
	"scoutgpt-be/pkg/events"
	"scoutgpt-be/pkg/llm"
	pktNats "scoutgpt-be/pkg/nats"
	"scoutgpt-be/pkg/rag/orchestrator"
	"scoutgpt-be/pkg/tools"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	DocumentController controller.IDocumentController
	ChatController     controller.IChatController
	MapController      controller.IMapController

	// Background services (exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Audit trail: every domain event lands in its own log file.
	if natsSub != nil {
		auditLogger := logger.NewIsolatedLogger("logs/events.log")
		err := natsSub.Subscribe("scoutgpt.>", "scoutgpt-audit", func(ctx context.Context, evt events.Event) error {
			auditLogger.Info("events", evt.EventType(), evt.Payload())
			return nil
		})
		if err != nil {
			log.Printf("[WARN] Failed to subscribe to domain events: %v", err)
		}
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v (ArcGIS cache disabled)", err)
		rdb = nil
	}

	// 3. Embedding provider
	var embeddingProvider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
			cfg.Ai.EmbeddingDim,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewOpenAIProvider(
			cfg.Ai.OpenAIAPIKey,
			cfg.Ai.EmbeddingModel,
			cfg.Ai.EmbeddingDim,
			30*time.Second,
		)
		log.Printf("[INFO] Using Embedding Provider: OPENAI (%s)", cfg.Ai.EmbeddingModel)
	}
	embeddingProvider = embedding.NewRetryingProvider(embeddingProvider, 0, 0)

	// 4. LLM provider
	claudeProvider, err := llm.NewClaudeProvider(cfg.Ai.AnthropicAPIKey, cfg.Ai.ClaudeModel, 0)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	llmProvider := llm.NewRetryingProvider(claudeProvider, 0, 0)
	log.Printf("[INFO] Using LLM Provider: %s", claudeProvider.Name())

	// 5. ArcGIS client with Redis-backed query cache
	arcgisClient := arcgis.NewClient(map[string]string{
		arcgis.LayerParcels: cfg.ArcGIS.ParcelLayerURL,
		arcgis.LayerZoning:  cfg.ArcGIS.ZoningLayerURL,
	}, 30*time.Second)
	cachedArcGIS := arcgis.NewCachedClient(
		arcgisClient,
		rdb,
		time.Duration(cfg.ArcGIS.CacheTTLSec)*time.Second,
		sysLogger,
	)

	// 6. Tool registry
	retrievalService, err := service.NewRetrievalService(uowFactory, embeddingProvider, cfg.Ai.MaxChunks)
	if err != nil {
		log.Fatalf("[FATAL] Failed to build retrieval service: %v", err)
	}
	registry, err := tools.NewRegistry(sysLogger,
		tools.NewSearchDocumentsTool(retrievalService, cfg.Ai.MaxChunks),
		tools.NewQueryArcGISTool(cachedArcGIS),
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to build tool registry: %v", err)
	}

	orch := orchestrator.New(llmProvider, registry, orchestrator.Options{
		MaxToolRounds: cfg.Ai.MaxToolRounds,
		MaxTokens:     cfg.Ai.MaxTokens,
		Temperature:   cfg.Ai.Temperature,
	}, sysLogger)

	// 7. Services
	publisherService := service.NewPublisherService(cfg.App.ReindexTopic, pubSub)
	documentService := service.NewDocumentService(
		uowFactory,
		embeddingProvider,
		publisherService,
		natsPub,
		cfg.Ai.ChunkSize,
		cfg.Ai.ChunkOverlap,
		sysLogger,
	)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.ReindexTopic,
		uowFactory,
		documentService,
	)

	lockRepo := memory.NewConversationLockRepository()
	chatService := service.NewChatService(
		uowFactory,
		orch,
		lockRepo,
		natsPub,
		sysLogger,
	)

	// 8. Controllers
	documentController := controller.NewDocumentController(documentService)
	chatController := controller.NewChatController(chatService)
	mapController := controller.NewMapController(cachedArcGIS)

	return &Container{
		DocumentController: documentController,
		ChatController:     chatController,
		MapController:      mapController,
		ConsumerService:    consumerService,
		Logger:             sysLogger,
	}
}
