package controller

import (
	"context"
	"errors"
	"strings"

	"finbot-be/internal/constant"
	"finbot-be/internal/pkg/logger"
	"finbot-be/internal/pkg/serverutils"
	"finbot-be/internal/service"
	"finbot-be/pkg/messaging"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/google/uuid"
	"github.com/line/line-bot-sdk-go/v7/linebot"
)

type IWebhookController interface {
	RegisterRoutes(router fiber.Router)
	Callback(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type webhookController struct {
	dispatcher    *messaging.Dispatcher
	queryService  service.IQueryService
	dietService   service.IDietService
	metricService service.IMetricService
	logger        logger.ILogger
}

func NewWebhookController(
	dispatcher *messaging.Dispatcher,
	queryService service.IQueryService,
	dietService service.IDietService,
	metricService service.IMetricService,
	log logger.ILogger,
) IWebhookController {
	return &webhookController{
		dispatcher:    dispatcher,
		queryService:  queryService,
		dietService:   dietService,
		metricService: metricService,
		logger:        log,
	}
}

func (c *webhookController) RegisterRoutes(router fiber.Router) {
	router.Get("/", c.Health)
	router.Post("/callback", c.Callback)
}

func (c *webhookController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Finance Bot is Live!", struct{}{}))
}

// Callback is the LINE webhook entrypoint. The SDK needs a *http.Request
// for signature verification, hence the adaptor hop off fasthttp.
func (c *webhookController) Callback(ctx *fiber.Ctx) error {
	req, err := adaptor.ConvertRequest(ctx, false)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "cannot convert request")
	}

	events, err := c.dispatcher.ParseRequest(req)
	if err != nil {
		if errors.Is(err, linebot.ErrInvalidSignature) {
			c.logger.Warn("webhook", "invalid signature", map[string]interface{}{
				"ip": ctx.IP(),
			})
			return fiber.NewError(fiber.StatusBadRequest, "invalid signature")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "cannot parse webhook")
	}

	for _, event := range events {
		c.handleEvent(ctx.Context(), event)
	}

	return ctx.SendString("OK")
}

func (c *webhookController) handleEvent(ctx context.Context, event *linebot.Event) {
	if event.Type != linebot.EventTypeMessage || event.Source == nil {
		return
	}

	traceID := uuid.NewString()
	userID := event.Source.UserID

	switch message := event.Message.(type) {
	case *linebot.TextMessage:
		c.handleText(ctx, traceID, userID, event.ReplyToken, message.Text)
	case *linebot.ImageMessage:
		c.handleImage(ctx, traceID, userID, event.ReplyToken, message.ID)
	}
}

func (c *webhookController) handleText(ctx context.Context, traceID, userID, replyToken, text string) {
	trimmed := strings.TrimSpace(text)

	c.logger.Info("webhook", "text message received", map[string]interface{}{
		"trace_id": traceID,
		"user":     userID,
		"text":     trimmed,
	})

	var err error
	switch strings.ToUpper(trimmed) {
	case constant.CommandMortgage:
		err = c.metricService.HandleMortgage(ctx, replyToken)
	case constant.CommandBTC:
		err = c.metricService.HandleBTC(ctx, replyToken)
	case constant.CommandNetWorth:
		err = c.metricService.HandleNetWorth(ctx, replyToken)
	case constant.CommandForecast:
		err = c.metricService.HandleForecast(ctx, replyToken)
	case constant.CommandBudget:
		err = c.metricService.HandleBudget(ctx, replyToken)
	case constant.CommandDoneEaten:
		err = c.dietService.HandleDone(ctx, userID, replyToken)
	default:
		err = c.queryService.HandleQuery(ctx, replyToken, trimmed)
	}

	if err != nil {
		c.logger.Error("webhook", "text handler failed", map[string]interface{}{
			"trace_id": traceID,
			"user":     userID,
			"error":    err.Error(),
		})
	}
}

func (c *webhookController) handleImage(ctx context.Context, traceID, userID, replyToken, messageID string) {
	image, err := c.dispatcher.Content(messageID)
	if err != nil {
		c.logger.Error("webhook", "image download failed", map[string]interface{}{
			"trace_id": traceID,
			"user":     userID,
			"error":    err.Error(),
		})
		c.dispatcher.Reply(replyToken, messaging.TextMessage(constant.ReplySystemError))
		return
	}

	if err := c.dietService.HandlePhoto(ctx, userID, replyToken, image); err != nil {
		c.logger.Error("webhook", "photo handler failed", map[string]interface{}{
			"trace_id": traceID,
			"user":     userID,
			"error":    err.Error(),
		})
	}
}
