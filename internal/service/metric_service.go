package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"finbot-be/internal/config"
	"finbot-be/internal/constant"
	"finbot-be/internal/pkg/logger"
	"finbot-be/pkg/flexcard"
	"finbot-be/pkg/forecast"
	"finbot-be/pkg/messaging"
	"finbot-be/pkg/notion"
	"finbot-be/pkg/quickchart"
)

const (
	netWorthWindowDays = 30
	forecastWindowDays = 90
	forecastHorizon    = 180
	forecastPaths      = 500
	forecastStepDays   = 6
)

// IMetricService answers the fixed keyword commands with prebuilt
// cards. No LLM involved; these read the ledgers directly.
type IMetricService interface {
	HandleMortgage(ctx context.Context, replyToken string) error
	HandleBTC(ctx context.Context, replyToken string) error
	HandleNetWorth(ctx context.Context, replyToken string) error
	HandleForecast(ctx context.Context, replyToken string) error
	HandleBudget(ctx context.Context, replyToken string) error
}

type metricStore interface {
	QueryDatabase(ctx context.Context, databaseID string, q notion.Query) ([]notion.Record, error)
}

type chartRenderer interface {
	CreateChart(ctx context.Context, cfg quickchart.Config) (string, error)
}

// assetClass is one slice of the net-worth snapshot rows.
type assetClass struct {
	field string
	label string
	color string
}

var assetClasses = []assetClass{
	{"Crypto", "加密貨幣", "#f2a900"},
	{"美股複委託", "美股", "#3b82f6"},
	{"台股證券戶", "台股", "#ef4444"},
	{"Gold", "黃金", "#ffd700"},
	{"活存", "活存", "#22c55e"},
}

type metricService struct {
	store   metricStore
	charts  chartRenderer
	sender  messaging.Sender
	sources map[string]string
	goals   config.GoalConfig
	logger  logger.ILogger
	now     func() time.Time
	rng     *rand.Rand
}

func NewMetricService(
	store metricStore,
	charts chartRenderer,
	sender messaging.Sender,
	cfg *config.Config,
	log logger.ILogger,
) IMetricService {
	return &metricService{
		store:   store,
		charts:  charts,
		sender:  sender,
		sources: cfg.Notion.Sources,
		goals:   cfg.Goals,
		logger:  log,
		now:     time.Now,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// HandleMortgage reads the single mortgage row; a missing or failing
// read degrades to "nothing repaid yet" rather than an error reply.
func (s *metricService) HandleMortgage(ctx context.Context, replyToken string) error {
	remaining := s.goals.MortgagePrincipal

	records, err := s.store.QueryDatabase(ctx, s.sources["DB_MORTGAGE"], notion.Query{PageSize: 1})
	if err != nil {
		s.logger.Warn("metric", "mortgage read failed", map[string]interface{}{"error": err.Error()})
	} else if len(records) > 0 {
		if v, ok := numberField(records[0], "剩餘本金"); ok {
			remaining = v
		}
	}

	return s.replyCard(replyToken, flexcard.MortgageProgress(remaining, s.goals.MortgagePrincipal))
}

func (s *metricService) HandleBTC(ctx context.Context, replyToken string) error {
	records, err := s.latestSnapshots(ctx, 1)
	if err != nil || len(records) == 0 {
		s.logger.Warn("metric", "btc snapshot read failed", map[string]interface{}{"error": errString(err)})
		return s.sender.Reply(replyToken, messaging.TextMessage(constant.ReplyMetricUnavailable))
	}

	holding, _ := numberField(records[0], "BTC持有量")
	return s.replyCard(replyToken, flexcard.BTCProgress(holding, s.goals.BTCGoal))
}

// HandleNetWorth charts the last month of snapshots as a stacked trend
// in thousands of TWD.
func (s *metricService) HandleNetWorth(ctx context.Context, replyToken string) error {
	records, err := s.latestSnapshots(ctx, netWorthWindowDays)
	if err != nil || len(records) == 0 {
		s.logger.Warn("metric", "net worth snapshots read failed", map[string]interface{}{"error": errString(err)})
		return s.sender.Reply(replyToken, messaging.TextMessage(constant.ReplyMetricUnavailable))
	}

	labels := make([]string, 0, len(records))
	for _, rec := range records {
		labels = append(labels, shortDate(rec))
	}

	datasets := make([]quickchart.Dataset, 0, len(assetClasses))
	currentTotal := 0.0
	for _, class := range assetClasses {
		series := make([]float64, 0, len(records))
		for _, rec := range records {
			v, _ := numberField(rec, class.field)
			series = append(series, v/1000)
		}
		currentTotal += series[len(series)-1] * 1000
		datasets = append(datasets, quickchart.Dataset{
			Label:           class.label,
			Data:            series,
			BorderColor:     class.color,
			BackgroundColor: class.color + "66",
			Fill:            true,
		})
	}

	chartURL := s.chartOrPlaceholder(ctx, quickchart.Config{
		Type: "line",
		Data: map[string]any{"labels": labels, "datasets": datasets},
	})

	card := flexcard.ChartCard(
		"ASSET ALLOCATION", "總資產堆疊趨勢 (k)", "總資產趨勢",
		chartURL, "目前總資產", flexcard.FormatMoney(currentTotal),
	)
	return s.replyCard(replyToken, card)
}

// HandleForecast resamples the recent total-asset history into
// percentile bands half a year out.
func (s *metricService) HandleForecast(ctx context.Context, replyToken string) error {
	records, err := s.latestSnapshots(ctx, forecastWindowDays)
	if err != nil || len(records) == 0 {
		s.logger.Warn("metric", "forecast snapshots read failed", map[string]interface{}{"error": errString(err)})
		return s.sender.Reply(replyToken, messaging.TextMessage(constant.ReplyMetricUnavailable))
	}

	totals := make([]float64, 0, len(records))
	for _, rec := range records {
		total := 0.0
		for _, class := range assetClasses {
			v, _ := numberField(rec, class.field)
			total += v
		}
		totals = append(totals, total)
	}

	proj := forecast.Simulate(totals, totals[len(totals)-1], forecastHorizon, forecastPaths, s.rng)
	if proj == nil {
		s.logger.Warn("metric", "not enough history to project", map[string]interface{}{
			"snapshots": len(records),
		})
		return s.sender.Reply(replyToken, messaging.TextMessage(constant.ReplyMetricUnavailable))
	}

	// Every path point would blow up the chart payload; sample the bands.
	var labels []string
	var p10, p50, p90 []float64
	for d := forecastStepDays - 1; d < forecastHorizon; d += forecastStepDays {
		labels = append(labels, fmt.Sprintf("+%dd", d+1))
		p10 = append(p10, proj.P10[d]/1000)
		p50 = append(p50, proj.P50[d]/1000)
		p90 = append(p90, proj.P90[d]/1000)
	}

	chartURL := s.chartOrPlaceholder(ctx, quickchart.Config{
		Type: "line",
		Data: map[string]any{
			"labels": labels,
			"datasets": []quickchart.Dataset{
				{Label: "樂觀 (P90)", Data: p90, BorderColor: "#22c55e"},
				{Label: "中位 (P50)", Data: p50, BorderColor: "#42a5f5"},
				{Label: "保守 (P10)", Data: p10, BorderColor: "#ef5350"},
			},
		},
	})

	median := proj.P50[forecastHorizon-1]
	card := flexcard.ChartCard(
		"MONTE CARLO", "資產半年預測 (k)", "資產預測",
		chartURL, "半年後中位數", flexcard.FormatMoney(median),
	)
	return s.replyCard(replyToken, card)
}

// HandleBudget compares the current month's spending against the
// per-category budget rows.
func (s *metricService) HandleBudget(ctx context.Context, replyToken string) error {
	budgets, err := s.store.QueryDatabase(ctx, s.sources["BUDGET_DB_ID"], notion.Query{PageSize: 100})
	if err != nil || len(budgets) == 0 {
		s.logger.Warn("metric", "budget read failed", map[string]interface{}{"error": errString(err)})
		return s.sender.Reply(replyToken, messaging.TextMessage(constant.ReplyMetricUnavailable))
	}

	localNow := s.now().In(taipei)
	monthStart := time.Date(localNow.Year(), localNow.Month(), 1, 0, 0, 0, 0, taipei)
	transactions, err := s.store.QueryDatabase(ctx, s.sources["TRANSACTIONS_DB_ID"], notion.Query{
		PageSize: 200,
		Filter: notion.DatePropertyFilter(constant.FinanceDateProperty,
			monthStart.Format("2006-01-02"), localNow.Format("2006-01-02")),
	})
	if err != nil {
		s.logger.Warn("metric", "transactions read failed", map[string]interface{}{"error": err.Error()})
		return s.sender.Reply(replyToken, messaging.TextMessage(constant.ReplyMetricUnavailable))
	}

	spentByCategory := make(map[string]float64)
	for _, rec := range transactions {
		category, ok := stringField(rec, "類別")
		if !ok {
			continue
		}
		amount, _ := numberField(rec, "金額")
		spentByCategory[category] += amount
	}

	rows := make([]flexcard.BudgetRow, 0, len(budgets))
	for _, rec := range budgets {
		category, ok := stringField(rec, "類別")
		if !ok {
			continue
		}
		budget, _ := numberField(rec, "金額")
		rows = append(rows, flexcard.BudgetRow{
			Category: category,
			Spent:    spentByCategory[category],
			Budget:   budget,
		})
	}

	return s.replyCard(replyToken, flexcard.Budget(localNow.Format("2006-01"), rows))
}

// latestSnapshots returns up to days snapshot rows in chronological
// order.
func (s *metricService) latestSnapshots(ctx context.Context, days int) ([]notion.Record, error) {
	records, err := s.store.QueryDatabase(ctx, s.sources["DB_SNAPSHOT"], notion.Query{
		PageSize: days,
		Sorts: []notion.Sort{
			{Property: constant.FinanceDateProperty, Direction: "descending"},
		},
	})
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

func (s *metricService) chartOrPlaceholder(ctx context.Context, cfg quickchart.Config) string {
	url, err := s.charts.CreateChart(ctx, cfg)
	if err != nil {
		s.logger.Warn("metric", "chart render failed", map[string]interface{}{"error": err.Error()})
		return quickchart.PlaceholderURL
	}
	return url
}

func (s *metricService) replyCard(replyToken string, card flexcard.Card) error {
	msg, err := messaging.FlexMessage(card)
	if err != nil {
		s.logger.Error("metric", "card render failed", map[string]interface{}{"error": err.Error()})
		return s.sender.Reply(replyToken, messaging.TextMessage(constant.ReplySystemError))
	}
	return s.sender.Reply(replyToken, msg)
}

func numberField(rec notion.Record, name string) (float64, bool) {
	v, ok := rec.Fields[name].(float64)
	return v, ok
}

func stringField(rec notion.Record, name string) (string, bool) {
	v, ok := rec.Fields[name].(string)
	return v, ok && v != ""
}

// shortDate renders a snapshot's 日期 as MM/DD for chart labels.
func shortDate(rec notion.Record) string {
	raw, ok := stringField(rec, constant.FinanceDateProperty)
	if !ok {
		return ""
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.Format("01/02")
	}
	return raw
}

func errString(err error) string {
	if err == nil {
		return "empty result"
	}
	return err.Error()
}
