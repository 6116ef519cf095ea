package bootstrap

import (
	"finbot-be/internal/config"
	"finbot-be/internal/controller"
	"finbot-be/internal/pkg/logger"
	"finbot-be/internal/repository/memory"
	"finbot-be/internal/service"
	"finbot-be/pkg/gemini"
	"finbot-be/pkg/messaging"
	"finbot-be/pkg/notion"
	"finbot-be/pkg/quickchart"
	"finbot-be/pkg/rag/insight"
	"finbot-be/pkg/rag/intent"
	"finbot-be/pkg/rag/retrieval"
)

type Container struct {
	WebhookController controller.IWebhookController
	Logger            logger.ILogger
}

func NewContainer(cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	dispatcher, err := messaging.NewDispatcher(
		cfg.Line.ChannelSecret,
		cfg.Line.ChannelAccessToken,
		sysLogger,
	)
	if err != nil {
		return nil, err
	}

	// 2. External Clients
	notionClient := notion.NewClient(cfg.Notion.Token)
	geminiClient := gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Model)
	chartClient := quickchart.NewClient()

	// 3. Pipeline Components
	classifier := intent.NewClassifier(geminiClient, sysLogger)
	retriever := retrieval.NewRetriever(notionClient, cfg.Notion.Sources, sysLogger)
	generator := insight.NewGenerator(geminiClient, sysLogger)

	// Initialize In-Memory Session Storage
	sessionRepo := memory.NewPhotoSessionRepository()

	// 4. Services
	queryService := service.NewQueryService(classifier, retriever, generator, dispatcher, sysLogger)
	dietService := service.NewDietService(sessionRepo, geminiClient, notionClient, cfg, dispatcher, sysLogger)
	metricService := service.NewMetricService(notionClient, chartClient, dispatcher, cfg, sysLogger)

	// 5. Controllers
	return &Container{
		WebhookController: controller.NewWebhookController(
			dispatcher,
			queryService,
			dietService,
			metricService,
			sysLogger,
		),
		Logger: sysLogger,
	}, nil
}
