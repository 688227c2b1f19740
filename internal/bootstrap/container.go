package bootstrap

import (
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"doc-chat-be/internal/config"
	"doc-chat-be/internal/controller"
	"doc-chat-be/internal/pkg/logger"
	"doc-chat-be/internal/repository/memory"
	"doc-chat-be/internal/scheduler"
	"doc-chat-be/internal/service"
	"doc-chat-be/pkg/embedding"
	"doc-chat-be/pkg/events"
	"doc-chat-be/pkg/ingest"
	"doc-chat-be/pkg/llm/factory"
)

type Container struct {
	// Controllers
	ChatController   controller.IChatController
	HealthController controller.IHealthController

	// Background Services (Exposed for main.go to run)
	ConsumerService   service.IConsumerService
	EvictionScheduler *scheduler.EvictionScheduler

	Logger logger.ILogger
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	appLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	publisher := events.NewPublisher(pubSub)

	// 2. Session Store
	sessionRepo := memory.NewSessionRepository()

	// 3. AI Capabilities
	var embeddingProvider embedding.EmbeddingProvider
	switch cfg.Ai.EmbeddingProvider {
	case "openai":
		embeddingProvider = embedding.NewOpenAIProvider(cfg.Ai.OpenAIAPIKey, cfg.Ai.EmbeddingModel)
	default:
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel)
	}
	embeddingProvider = embedding.NewCachedProvider(embeddingProvider)

	llmProvider, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, llmBaseURL(cfg), cfg.Ai.OpenAIAPIKey)
	if err != nil {
		log.Panicf("Unable to initialize LLM provider: %v", err)
	}

	// 4. Domain Services
	ingestor := ingest.NewIngestor(cfg.Ingest.ChunkSize, cfg.Ingest.Overlap)
	chatService := service.NewChatService(sessionRepo, ingestor, embeddingProvider, llmProvider, publisher, appLogger, cfg.Ingest.TopK)
	consumerService := service.NewConsumerService(pubSub, appLogger)

	// 5. Background Eviction
	evictionScheduler := scheduler.NewEvictionScheduler(
		sessionRepo,
		publisher,
		cfg.Session.IdleThreshold,
		cfg.Session.SweepInterval,
		appLogger,
	)

	return &Container{
		ChatController:    controller.NewChatController(chatService),
		HealthController:  controller.NewHealthController(sessionRepo, consumerService),
		ConsumerService:   consumerService,
		EvictionScheduler: evictionScheduler,
		Logger:            appLogger,
	}
}

func llmBaseURL(cfg *config.Config) string {
	if cfg.Ai.LLMProvider == "openai" {
		return cfg.Ai.OpenAIBaseURL
	}
	return cfg.Ai.OllamaBaseURL
}
