package controller

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"finbot-be/internal/pkg/logger"
	"finbot-be/pkg/messaging"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testChannelSecret = "test-channel-secret"

type fakeQueryService struct {
	queries []string
}

func (f *fakeQueryService) HandleQuery(ctx context.Context, replyToken, queryText string) error {
	f.queries = append(f.queries, queryText)
	return nil
}

type fakeDietService struct {
	photos int
	dones  int
}

func (f *fakeDietService) HandlePhoto(ctx context.Context, userID, replyToken string, image []byte) error {
	f.photos++
	return nil
}

func (f *fakeDietService) HandleDone(ctx context.Context, userID, replyToken string) error {
	f.dones++
	return nil
}

type fakeMetricService struct {
	calls []string
}

func (f *fakeMetricService) HandleMortgage(ctx context.Context, replyToken string) error {
	f.calls = append(f.calls, "mortgage")
	return nil
}

func (f *fakeMetricService) HandleBTC(ctx context.Context, replyToken string) error {
	f.calls = append(f.calls, "btc")
	return nil
}

func (f *fakeMetricService) HandleNetWorth(ctx context.Context, replyToken string) error {
	f.calls = append(f.calls, "networth")
	return nil
}

func (f *fakeMetricService) HandleForecast(ctx context.Context, replyToken string) error {
	f.calls = append(f.calls, "forecast")
	return nil
}

func (f *fakeMetricService) HandleBudget(ctx context.Context, replyToken string) error {
	f.calls = append(f.calls, "budget")
	return nil
}

type controllerFixture struct {
	app    *fiber.App
	query  *fakeQueryService
	diet   *fakeDietService
	metric *fakeMetricService
}

func newFixture(t *testing.T) *controllerFixture {
	t.Helper()
	dispatcher, err := messaging.NewDispatcher(testChannelSecret, "test-token", logger.NewNopLogger())
	require.NoError(t, err)

	f := &controllerFixture{
		app:    fiber.New(),
		query:  &fakeQueryService{},
		diet:   &fakeDietService{},
		metric: &fakeMetricService{},
	}
	ctrl := NewWebhookController(dispatcher, f.query, f.diet, f.metric, logger.NewNopLogger())
	ctrl.RegisterRoutes(f.app)
	return f
}

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testChannelSecret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func textEventBody(text string) []byte {
	return []byte(fmt.Sprintf(`{"destination": "xxx", "events": [{
		"type": "message",
		"replyToken": "rt-1",
		"source": {"type": "user", "userId": "U1"},
		"message": {"type": "text", "id": "m1", "text": %q}
	}]}`, text))
}

func (f *controllerFixture) post(t *testing.T, body []byte, signature string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/callback", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Line-Signature", signature)
	res, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return res
}

func TestCallbackRejectsBadSignature(t *testing.T) {
	f := newFixture(t)
	body := textEventBody("房貸")

	res := f.post(t, body, "not-a-real-signature")

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Empty(t, f.metric.calls)
}

func TestCallbackRoutesKeywords(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"房貸", "mortgage"},
		{"BTC", "btc"},
		{"btc", "btc"},
		{"總資產", "networth"},
		{"資產預測", "forecast"},
		{"預算", "budget"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			f := newFixture(t)
			body := textEventBody(tt.text)

			res := f.post(t, body, sign(body))

			assert.Equal(t, http.StatusOK, res.StatusCode)
			assert.Equal(t, []string{tt.want}, f.metric.calls)
			assert.Empty(t, f.query.queries, "keyword must not reach the RAG pipeline")
		})
	}
}

func TestCallbackRoutesDoneEating(t *testing.T) {
	f := newFixture(t)
	body := textEventBody("吃完了")

	res := f.post(t, body, sign(body))

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, 1, f.diet.dones)
}

func TestCallbackFreeTextGoesToQueryPipeline(t *testing.T) {
	f := newFixture(t)
	body := textEventBody("  一月吃飯花多少  ")

	res := f.post(t, body, sign(body))

	assert.Equal(t, http.StatusOK, res.StatusCode)
	require.Len(t, f.query.queries, 1)
	assert.Equal(t, "一月吃飯花多少", f.query.queries[0], "whitespace trimmed")
	assert.Empty(t, f.metric.calls)
}

func TestCallbackIgnoresNonMessageEvents(t *testing.T) {
	f := newFixture(t)
	body := []byte(`{"destination": "xxx", "events": [{
		"type": "follow",
		"replyToken": "rt-1",
		"source": {"type": "user", "userId": "U1"}
	}]}`)

	res := f.post(t, body, sign(body))

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Empty(t, f.query.queries)
	assert.Empty(t, f.metric.calls)
	assert.Zero(t, f.diet.photos)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	res, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}
