package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"finbot-be/internal/constant"
	"finbot-be/internal/dto"
	"finbot-be/internal/pkg/logger"
	"finbot-be/pkg/gemini"
	"finbot-be/pkg/notion"
)

const (
	// maxContextBytes caps the serialized retrieval blob before it goes
	// into the prompt. A source can legitimately return hundreds of rows.
	maxContextBytes = 60000

	maxDetails  = 5
	maxAnalysis = 4
)

// JSONCompleter is the summarizer surface the generator needs.
type JSONCompleter interface {
	CompleteJSON(ctx context.Context, prompt string, opts ...gemini.Option) (json.RawMessage, error)
}

// Generator turns retrieved records plus the original question into a
// normalized Insight. All shape tolerance lives here, in one pass;
// downstream code never re-checks.
type Generator struct {
	llm    JSONCompleter
	logger logger.ILogger
}

func NewGenerator(llm JSONCompleter, log logger.ILogger) *Generator {
	return &Generator{llm: llm, logger: log}
}

// Summarize runs the second model call of the pipeline. No retry on
// failure; the error propagates as "insight unavailable".
func (g *Generator) Summarize(ctx context.Context, queryText string, domain constant.Domain, retrieval map[string][]notion.Record) (*dto.Insight, error) {
	contextBlob := serializeContext(retrieval)
	prompt := buildPrompt(queryText, domain, contextBlob)

	raw, err := g.llm.CompleteJSON(ctx, prompt, gemini.WithRelaxedSafety())
	if err != nil {
		return nil, err
	}

	var parsed struct {
		CardData         any `json:"card_data"`
		DetailedAnalysis any `json:"detailed_analysis"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("insight: unexpected shape: %w", err)
	}

	return &dto.Insight{
		Card:     normalizeCard(parsed.CardData),
		Analysis: normalizeAnalysis(parsed.DetailedAnalysis),
	}, nil
}

func serializeContext(retrieval map[string][]notion.Record) string {
	blob, err := json.MarshalIndent(retrieval, "", "  ")
	if err != nil {
		return "{}"
	}
	if len(blob) > maxContextBytes {
		return string(blob[:maxContextBytes]) + "...(略)"
	}
	return string(blob)
}

func buildPrompt(queryText string, domain constant.Domain, contextBlob string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("你是 AI 財務與生活助理。使用者問：\"%s\"\n", queryText))
	sb.WriteString(fmt.Sprintf("資料庫 (%s) 紀錄：\n%s\n\n", domain, contextBlob))
	sb.WriteString("請回傳 JSON 物件：\n")
	sb.WriteString("1. \"card_data\": UI 摘要\n")
	sb.WriteString("   - title: 標題 (精簡有力)\n")
	sb.WriteString("   - main_stat: 核心數據 (如 \"NT$52,597\")\n")
	sb.WriteString("   - details: list [{ \"label\": \"項目\", \"value\": \"數值\" }] (最多5項)\n\n")
	sb.WriteString("2. \"detailed_analysis\": 詳細回答 (3-4個重點)\n")
	sb.WriteString("   - list [{ \"title\": \"重點標題\", \"content\": \"重點內容(建議50字內)\" }]\n")
	sb.WriteString("   - 內容請具體分析數據，不要只列數字。")

	return sb.String()
}

// normalizeCard coerces whatever shape the model produced into a
// SummaryCard: a string where a list was expected becomes a one-entry
// list, missing optionals degrade to zero values.
func normalizeCard(v any) dto.SummaryCard {
	card := dto.SummaryCard{Title: "查詢結果", Details: []dto.DetailItem{}}

	obj, ok := v.(map[string]any)
	if !ok {
		return card
	}

	if title := asString(obj["title"]); title != "" {
		card.Title = title
	}
	card.MainStat = asString(obj["main_stat"])

	switch details := obj["details"].(type) {
	case []any:
		for _, item := range details {
			if len(card.Details) >= maxDetails {
				break
			}
			card.Details = append(card.Details, normalizeDetail(item))
		}
	case string:
		if details != "" {
			card.Details = append(card.Details, dto.DetailItem{Label: details})
		}
	}

	return card
}

func normalizeDetail(item any) dto.DetailItem {
	switch d := item.(type) {
	case map[string]any:
		label := asString(d["label"])
		if label == "" {
			label = "項目"
		}
		return dto.DetailItem{Label: label, Value: asString(d["value"])}
	default:
		return dto.DetailItem{Label: asString(d)}
	}
}

func normalizeAnalysis(v any) []dto.AnalysisPoint {
	switch a := v.(type) {
	case []any:
		points := make([]dto.AnalysisPoint, 0, maxAnalysis)
		for _, item := range a {
			if len(points) >= maxAnalysis {
				break
			}
			points = append(points, normalizePoint(item))
		}
		return points
	case string:
		return []dto.AnalysisPoint{{Title: "分析結果", Content: a}}
	default:
		return []dto.AnalysisPoint{{Title: "提示", Content: "無詳細分析資料"}}
	}
}

func normalizePoint(item any) dto.AnalysisPoint {
	switch p := item.(type) {
	case map[string]any:
		title := asString(p["title"])
		if title == "" {
			title = "重點"
		}
		return dto.AnalysisPoint{Title: title, Content: asString(p["content"])}
	default:
		return dto.AnalysisPoint{Title: "重點", Content: asString(p)}
	}
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", s)
	}
}
