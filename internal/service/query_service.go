package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finbot-be/internal/constant"
	"finbot-be/internal/pkg/logger"
	"finbot-be/pkg/flexcard"
	"finbot-be/pkg/gemini"
	"finbot-be/pkg/messaging"
	"finbot-be/pkg/rag/insight"
	"finbot-be/pkg/rag/intent"
	"finbot-be/pkg/rag/retrieval"
)

// IQueryService runs the free-text pipeline: classify, retrieve,
// summarize, reply.
type IQueryService interface {
	HandleQuery(ctx context.Context, replyToken, queryText string) error
}

type queryService struct {
	classifier *intent.Classifier
	retriever  *retrieval.Retriever
	generator  *insight.Generator
	sender     messaging.Sender
	logger     logger.ILogger
	now        func() time.Time
}

func NewQueryService(
	classifier *intent.Classifier,
	retriever *retrieval.Retriever,
	generator *insight.Generator,
	sender messaging.Sender,
	log logger.ILogger,
) IQueryService {
	return &queryService{
		classifier: classifier,
		retriever:  retriever,
		generator:  generator,
		sender:     sender,
		logger:     log,
		now:        time.Now,
	}
}

// HandleQuery always answers the user with something, even on failure.
// The returned error is for the caller's log only; the user-facing
// fallback has already been sent by then.
func (s *queryService) HandleQuery(ctx context.Context, replyToken, queryText string) error {
	userIntent, err := s.classifier.Classify(ctx, queryText, s.now())
	if err != nil {
		s.logger.Error("query", "intent classification failed", map[string]interface{}{
			"query": queryText,
			"error": err.Error(),
		})
		s.sender.Reply(replyToken, messaging.TextMessage(errorReply(err)))
		return err
	}

	if userIntent.Domain == constant.DomainOther {
		return s.sender.Reply(replyToken, messaging.TextMessage(constant.ReplyGuidance))
	}

	records, err := s.retriever.Retrieve(ctx, userIntent.Domain, userIntent.DateRange)
	if err != nil {
		s.logger.Error("query", "retrieval failed", map[string]interface{}{
			"domain": string(userIntent.Domain),
			"error":  err.Error(),
		})
		s.sender.Reply(replyToken, messaging.TextMessage(constant.ReplySystemBusy))
		return err
	}
	if len(records) == 0 {
		return s.sender.Reply(replyToken, messaging.TextMessage(
			fmt.Sprintf(constant.ReplyNoData, userIntent.Domain)))
	}

	result, err := s.generator.Summarize(ctx, queryText, userIntent.Domain, records)
	if err != nil {
		details := map[string]interface{}{
			"query":  queryText,
			"domain": string(userIntent.Domain),
			"error":  err.Error(),
		}
		var parseErr *gemini.ParseError
		if errors.As(err, &parseErr) {
			details["raw"] = parseErr.Raw
		}
		s.logger.Error("query", "insight generation failed", details)
		s.sender.Reply(replyToken, messaging.TextMessage(errorReply(err)))
		return err
	}

	summaryMsg, err := messaging.FlexMessage(flexcard.Summary(userIntent.Domain, result.Card))
	if err != nil {
		s.logger.Error("query", "summary card render failed", map[string]interface{}{"error": err.Error()})
		s.sender.Reply(replyToken, messaging.TextMessage(constant.ReplySystemBusy))
		return err
	}
	analysisMsg, err := messaging.FlexMessage(flexcard.Analysis(userIntent.Domain, result.Analysis))
	if err != nil {
		s.logger.Error("query", "analysis card render failed", map[string]interface{}{"error": err.Error()})
		return s.sender.Reply(replyToken, summaryMsg)
	}

	s.logger.Info("query", "answered", map[string]interface{}{
		"domain":  string(userIntent.Domain),
		"sources": len(records),
	})
	return s.sender.Reply(replyToken, summaryMsg, analysisMsg)
}

// errorReply maps upstream failures to the user-facing text. Quota
// exhaustion gets its own message; everything else is a generic retry.
func errorReply(err error) string {
	if errors.Is(err, gemini.ErrQuotaExceeded) {
		return constant.ReplyQuotaExceeded
	}
	return constant.ReplySystemBusy
}
