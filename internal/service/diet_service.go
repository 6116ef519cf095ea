package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"finbot-be/internal/config"
	"finbot-be/internal/constant"
	"finbot-be/internal/dto"
	"finbot-be/internal/pkg/logger"
	"finbot-be/internal/repository/memory"
	"finbot-be/pkg/flexcard"
	"finbot-be/pkg/gemini"
	"finbot-be/pkg/messaging"
	"finbot-be/pkg/notion"
)

// IDietService owns the two-photo meal flow: a before-photo opens a
// session, the next photo (or "done eating") closes it and triggers the
// vision analysis.
type IDietService interface {
	HandlePhoto(ctx context.Context, userID, replyToken string, image []byte) error
	HandleDone(ctx context.Context, userID, replyToken string) error
}

type jsonCompleter interface {
	CompleteJSON(ctx context.Context, prompt string, opts ...gemini.Option) (json.RawMessage, error)
}

type dietStore interface {
	CreatePage(ctx context.Context, databaseID string, properties map[string]any, children []notion.Block) error
}

// Meal schedule in local (Taiwan) hours.
var taipei = time.FixedZone("Asia/Taipei", 8*60*60)

type dietService struct {
	sessions *memory.PhotoSessionRepository
	llm      jsonCompleter
	store    dietStore
	dietDBID string
	targets  flexcard.NutritionTargets
	sender   messaging.Sender
	logger   logger.ILogger
	now      func() time.Time
}

func NewDietService(
	sessions *memory.PhotoSessionRepository,
	llm jsonCompleter,
	store dietStore,
	cfg *config.Config,
	sender messaging.Sender,
	log logger.ILogger,
) IDietService {
	return &dietService{
		sessions: sessions,
		llm:      llm,
		store:    store,
		dietDBID: cfg.Notion.Sources["DIET_DB_ID"],
		targets: flexcard.NutritionTargets{
			Calories: cfg.Goals.DailyCalories,
			Protein:  cfg.Goals.DailyProtein,
			Carbs:    cfg.Goals.DailyCarbs,
			Fat:      cfg.Goals.DailyFat,
		},
		sender: sender,
		logger: log,
		now:    time.Now,
	}
}

// HandlePhoto is stateful: the first photo only opens a session, the
// second one runs the before/after comparison. The analysis reply goes
// out as a push because the reply token is spent on the progress text.
func (s *dietService) HandlePhoto(ctx context.Context, userID, replyToken string, image []byte) error {
	session, consumed := s.sessions.BeginOrConsume(userID, image)
	if !consumed {
		return s.sender.Reply(replyToken, messaging.TextMessage(constant.ReplyBeforePhotoSaved))
	}

	s.sender.Reply(replyToken, messaging.TextMessage(constant.ReplyAnalyzing))
	return s.analyze(ctx, userID, session.BeforeImage, image)
}

// HandleDone closes the session without an after-photo; the model is
// told to assume the meal was fully eaten.
func (s *dietService) HandleDone(ctx context.Context, userID, replyToken string) error {
	session, found := s.sessions.Consume(userID)
	if !found {
		return s.sender.Reply(replyToken, messaging.TextMessage(constant.ReplyNoPendingMeal))
	}

	s.sender.Reply(replyToken, messaging.TextMessage(constant.ReplyAnalyzing))
	return s.analyze(ctx, userID, session.BeforeImage, nil)
}

func (s *dietService) analyze(ctx context.Context, userID string, before, after []byte) error {
	opts := []gemini.Option{gemini.WithImage("image/jpeg", before)}
	if after != nil {
		opts = append(opts, gemini.WithImage("image/jpeg", after))
	}

	raw, err := s.llm.CompleteJSON(ctx, dietPrompt(after != nil), opts...)
	if err != nil {
		s.logger.Error("diet", "meal analysis failed", map[string]interface{}{
			"user":  userID,
			"error": err.Error(),
		})
		s.sender.Push(userID, messaging.TextMessage(dietErrorReply(err)))
		return err
	}

	var report dto.NutritionReport
	if err := json.Unmarshal(raw, &report); err != nil {
		s.logger.Error("diet", "report has unexpected shape", map[string]interface{}{
			"user":  userID,
			"raw":   string(raw),
			"error": err.Error(),
		})
		s.sender.Push(userID, messaging.TextMessage(constant.ReplyDietFailed))
		return err
	}
	if after == nil {
		report.Percentage = 1.0
	}

	s.recordMeal(ctx, userID, report)

	msg, err := messaging.FlexMessage(flexcard.Nutrition(report, s.targets))
	if err != nil {
		s.logger.Error("diet", "nutrition card render failed", map[string]interface{}{"error": err.Error()})
		s.sender.Push(userID, messaging.TextMessage(constant.ReplyDietFailed))
		return err
	}

	s.logger.Info("diet", "meal analyzed", map[string]interface{}{
		"user":     userID,
		"food":     report.FoodName,
		"calories": report.Calories,
	})
	return s.sender.Push(userID, msg)
}

// recordMeal writes the report to the diet ledger. A write failure is
// logged and swallowed; the user still gets their card.
func (s *dietService) recordMeal(ctx context.Context, userID string, report dto.NutritionReport) {
	if s.dietDBID == "" {
		return
	}

	localNow := s.now().In(taipei)
	properties := map[string]any{
		"餐點名稱": notion.TitleProperty(report.FoodName),
		"USER ID": notion.RichTextProperty(userID),
		"餐別":   notion.SelectProperty(mealTypeAt(localNow)),
		"用餐時間": notion.DateProperty(localNow.Format(time.RFC3339)),
		"狀態":   notion.StatusProperty("分析完成"),
	}
	children := []notion.Block{
		notion.CalloutBlock(fmt.Sprintf(
			"攝取比例 %.0f%%｜熱量 %d kcal｜蛋白質 %dg｜碳水 %dg｜脂肪 %dg",
			report.Percentage*100, report.Calories, report.Protein, report.Carbs, report.Fat,
		), "🍽"),
		notion.ParagraphBlock("💡 " + report.Advice),
	}

	if err := s.store.CreatePage(ctx, s.dietDBID, properties, children); err != nil {
		s.logger.Warn("diet", "meal record write failed", map[string]interface{}{
			"user":  userID,
			"error": err.Error(),
		})
	}
}

func dietPrompt(hasAfter bool) string {
	var sb strings.Builder

	sb.WriteString("你是專業營養師。")
	if hasAfter {
		sb.WriteString("第一張是餐前照片，第二張是餐後照片。\n")
		sb.WriteString("請比對兩張照片，估算使用者實際吃掉的比例與攝取量。\n")
	} else {
		sb.WriteString("這是餐前照片，使用者已表示全部吃完 (比例 1.0)。\n")
		sb.WriteString("請估算整份餐點的攝取量。\n")
	}
	sb.WriteString("\n回傳 JSON 物件：\n")
	sb.WriteString("{\n")
	sb.WriteString("  \"food_name\": \"餐點名稱\",\n")
	sb.WriteString("  \"percentage\": 0.8,\n")
	sb.WriteString("  \"calories\": 650,\n")
	sb.WriteString("  \"protein\": 30,\n")
	sb.WriteString("  \"carbs\": 75,\n")
	sb.WriteString("  \"fat\": 22,\n")
	sb.WriteString("  \"advice\": \"一句具體的營養建議 (30字內)\"\n")
	sb.WriteString("}\n")
	sb.WriteString("calories/protein/carbs/fat 為「實際吃掉」的量 (整數)。")

	return sb.String()
}

func dietErrorReply(err error) string {
	if errors.Is(err, gemini.ErrQuotaExceeded) {
		return constant.ReplyQuotaExceeded
	}
	return constant.ReplyDietFailed
}

// mealTypeAt buckets a local timestamp into the ledger's meal labels.
func mealTypeAt(t time.Time) string {
	switch hour := t.Hour(); {
	case hour >= 5 && hour < 11:
		return "早餐"
	case hour >= 11 && hour < 14:
		return "午餐"
	case hour >= 14 && hour < 17:
		return "點心"
	case hour >= 17 && hour < 22:
		return "晚餐"
	default:
		return "點心"
	}
}
