package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"finbot-be/internal/config"
	"finbot-be/internal/constant"
	"finbot-be/internal/pkg/logger"
	"finbot-be/internal/repository/memory"
	"finbot-be/pkg/gemini"
	"finbot-be/pkg/notion"

	"github.com/line/line-bot-sdk-go/v7/linebot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDietStore struct {
	databaseID string
	properties map[string]any
	children   []notion.Block
	err        error
	calls      int
}

func (f *fakeDietStore) CreatePage(ctx context.Context, databaseID string, properties map[string]any, children []notion.Block) error {
	f.calls++
	f.databaseID = databaseID
	f.properties = properties
	f.children = children
	return f.err
}

type countingLLM struct {
	fakeLLM
	imageParts []int
}

func (c *countingLLM) CompleteJSON(ctx context.Context, prompt string, opts ...gemini.Option) (json.RawMessage, error) {
	c.imageParts = append(c.imageParts, len(opts))
	return c.fakeLLM.CompleteJSON(ctx, prompt, opts...)
}

func dietConfig() *config.Config {
	return &config.Config{
		Notion: config.NotionConfig{
			Sources: map[string]string{"DIET_DB_ID": "diet-db"},
		},
		Goals: config.GoalConfig{
			DailyCalories: 2300, DailyProtein: 100, DailyCarbs: 280, DailyFat: 75,
		},
	}
}

const mealReport = `{"food_name": "雞腿便當", "percentage": 0.8, "calories": 650, "protein": 30, "carbs": 75, "fat": 22, "advice": "蔬菜偏少"}`

func newDietService(llm jsonCompleter, store dietStore, sender *fakeSender) IDietService {
	return NewDietService(
		memory.NewPhotoSessionRepository(),
		llm, store, dietConfig(), sender,
		logger.NewNopLogger(),
	)
}

func TestHandlePhotoFirstPhotoOnlyOpensSession(t *testing.T) {
	llm := &countingLLM{}
	sender := &fakeSender{}
	svc := newDietService(llm, &fakeDietStore{}, sender)

	err := svc.HandlePhoto(context.Background(), "user-1", "token-1", []byte("before"))

	require.NoError(t, err)
	require.Len(t, sender.replies, 1)
	assert.Equal(t, constant.ReplyBeforePhotoSaved, textOf(t, sender.replies[0]))
	assert.Empty(t, llm.imageParts, "no analysis on the first photo")
}

func TestHandlePhotoSecondPhotoRunsComparison(t *testing.T) {
	llm := &countingLLM{fakeLLM: fakeLLM{responses: []string{mealReport}}}
	store := &fakeDietStore{}
	sender := &fakeSender{}
	svc := newDietService(llm, store, sender)

	require.NoError(t, svc.HandlePhoto(context.Background(), "user-1", "token-1", []byte("before")))
	err := svc.HandlePhoto(context.Background(), "user-1", "token-2", []byte("after"))

	require.NoError(t, err)
	require.Len(t, llm.imageParts, 1)
	assert.Equal(t, 2, llm.imageParts[0], "both photos inlined")

	// Progress text on the reply token, the report card as a push.
	assert.Equal(t, constant.ReplyAnalyzing, textOf(t, sender.replies[len(sender.replies)-1]))
	assert.Equal(t, "user-1", sender.pushTo)
	require.Len(t, sender.pushes, 1)
	card, ok := sender.pushes[0].(*linebot.FlexMessage)
	require.True(t, ok)
	assert.Contains(t, card.AltText, "雞腿便當")

	// The meal landed in the ledger.
	assert.Equal(t, 1, store.calls)
	assert.Equal(t, "diet-db", store.databaseID)
	assert.Contains(t, store.properties, "餐點名稱")
	assert.Contains(t, store.properties, "USER ID")
	assert.Contains(t, store.properties, "餐別")
	require.Len(t, store.children, 2)
}

func TestHandleDoneWithoutSession(t *testing.T) {
	llm := &countingLLM{}
	sender := &fakeSender{}
	svc := newDietService(llm, &fakeDietStore{}, sender)

	err := svc.HandleDone(context.Background(), "user-1", "token-1")

	require.NoError(t, err)
	require.Len(t, sender.replies, 1)
	assert.Equal(t, constant.ReplyNoPendingMeal, textOf(t, sender.replies[0]))
	assert.Empty(t, llm.imageParts)
}

func TestHandleDoneAnalyzesSinglePhoto(t *testing.T) {
	llm := &countingLLM{fakeLLM: fakeLLM{responses: []string{mealReport}}}
	store := &fakeDietStore{}
	sender := &fakeSender{}
	svc := newDietService(llm, store, sender)

	require.NoError(t, svc.HandlePhoto(context.Background(), "user-1", "token-1", []byte("before")))
	err := svc.HandleDone(context.Background(), "user-1", "token-2")

	require.NoError(t, err)
	require.Len(t, llm.imageParts, 1)
	assert.Equal(t, 1, llm.imageParts[0], "only the before photo inlined")

	// Without an after-photo the meal counts as fully eaten, whatever
	// percentage the model guessed.
	require.Len(t, store.children, 2)
	callout := store.children[0]["callout"].(map[string]any)
	richText := callout["rich_text"].([]map[string]any)
	content := richText[0]["text"].(map[string]any)["content"].(string)
	assert.Contains(t, content, "100%")
}

func TestHandlePhotoQuotaExceeded(t *testing.T) {
	llm := &countingLLM{fakeLLM: fakeLLM{errs: []error{gemini.ErrQuotaExceeded}}}
	sender := &fakeSender{}
	svc := newDietService(llm, &fakeDietStore{}, sender)

	require.NoError(t, svc.HandlePhoto(context.Background(), "user-1", "token-1", []byte("before")))
	err := svc.HandlePhoto(context.Background(), "user-1", "token-2", []byte("after"))

	require.Error(t, err)
	require.Len(t, sender.pushes, 1)
	assert.Equal(t, constant.ReplyQuotaExceeded, textOf(t, sender.pushes[0]))
}

func TestHandlePhotoBadReportShape(t *testing.T) {
	llm := &countingLLM{fakeLLM: fakeLLM{responses: []string{`[1, 2, 3]`}}}
	store := &fakeDietStore{}
	sender := &fakeSender{}
	svc := newDietService(llm, store, sender)

	require.NoError(t, svc.HandlePhoto(context.Background(), "user-1", "token-1", []byte("before")))
	err := svc.HandlePhoto(context.Background(), "user-1", "token-2", []byte("after"))

	require.Error(t, err)
	require.Len(t, sender.pushes, 1)
	assert.Equal(t, constant.ReplyDietFailed, textOf(t, sender.pushes[0]))
	assert.Zero(t, store.calls)
}

func TestRecordMealFailureIsSwallowed(t *testing.T) {
	llm := &countingLLM{fakeLLM: fakeLLM{responses: []string{mealReport}}}
	store := &fakeDietStore{err: errors.New("notion down")}
	sender := &fakeSender{}
	svc := newDietService(llm, store, sender)

	require.NoError(t, svc.HandlePhoto(context.Background(), "user-1", "token-1", []byte("before")))
	err := svc.HandlePhoto(context.Background(), "user-1", "token-2", []byte("after"))

	require.NoError(t, err)
	require.Len(t, sender.pushes, 1)
	_, ok := sender.pushes[0].(*linebot.FlexMessage)
	assert.True(t, ok, "user still gets the card")
}

func TestMealTypeAt(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{6, "早餐"},
		{10, "早餐"},
		{12, "午餐"},
		{15, "點心"},
		{19, "晚餐"},
		{23, "點心"},
		{2, "點心"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			at := time.Date(2026, 8, 29, tt.hour, 30, 0, 0, taipei)
			assert.Equal(t, tt.want, mealTypeAt(at))
		})
	}
}
