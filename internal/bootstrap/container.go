package bootstrap

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"edu-insight-be/internal/config"
	"edu-insight-be/internal/constant"
	"edu-insight-be/internal/controller"
	"edu-insight-be/internal/pkg/logger"
	"edu-insight-be/internal/pkg/mailer"
	"edu-insight-be/internal/repository/memory"
	"edu-insight-be/internal/repository/unitofwork"
	"edu-insight-be/internal/service"
	"edu-insight-be/pkg/database"
	"edu-insight-be/pkg/events"
	"edu-insight-be/pkg/llm/factory"
	"edu-insight-be/pkg/pipeline"

	pktNats "edu-insight-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController controller.IAuthController
	ChatController controller.IChatController

	// Background Services (Exposed for main.go to run)
	AuditService service.IAuditService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
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

	// Analytics tap. Every published event is mirrored into the system log
	// so usage can be inspected without a separate analytics service.
	if natsSub, subErr := pktNats.NewSubscriber(cfg.App.NatsURL); subErr != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", subErr)
	} else {
		if subErr := natsSub.Subscribe("events.>", "edu-insight-analytics", func(_ context.Context, event events.Event) error {
			sysLogger.Info("analytics", "event received", map[string]interface{}{
				"type":    event.EventType(),
				"payload": event.Payload(),
			})
			return nil
		}); subErr != nil {
			log.Printf("[WARN] Failed to subscribe to analytics events: %v", subErr)
		}
	}

	// 3. The question-answering pipeline
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		llmBaseURL(cfg),
		cfg.Ai.GroqAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	rowStore := database.NewRowStore(db)
	qa := pipeline.New(llmProvider, rowStore, newPipelineTraceLogger(cfg.Ai.PipelineLog))

	// In-memory conversation window cache
	windowRepo := memory.NewWindowRepository()

	// 4. Services
	authService := service.NewAuthService(uowFactory, emailService, natsPub)
	chatService := service.NewChatService(
		uowFactory,
		qa,
		windowRepo,
		pubSub,
		natsPub,
		sysLogger,
		cfg.Chat.MaxChatHistory,
	)
	auditService := service.NewAuditService(
		pubSub,
		constant.AccessDeniedTopicName,
		uowFactory,
	)

	// 5. Controllers
	return &Container{
		AuthController: controller.NewAuthController(authService),
		ChatController: controller.NewChatController(chatService),

		AuditService: auditService,
	}
}

func llmBaseURL(cfg *config.Config) string {
	if cfg.Ai.LLMProvider == "ollama" {
		return cfg.Ai.OllamaBaseURL
	}
	return cfg.Ai.GroqBaseURL
}

// newPipelineTraceLogger writes the per-stage pipeline trace to its own
// file so stage fallbacks stay inspectable without drowning the main log.
func newPipelineTraceLogger(path string) *log.Logger {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
		if f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644); err == nil {
			return log.New(f, "", log.LstdFlags)
		}
	}
	log.Printf("[WARN] Could not open pipeline trace log %s, using stdout", path)
	return log.New(os.Stdout, "[pipeline] ", log.LstdFlags)
}
