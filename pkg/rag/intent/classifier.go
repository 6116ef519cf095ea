package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"finbot-be/internal/constant"
	"finbot-be/internal/dto"
	"finbot-be/internal/pkg/logger"
	"finbot-be/pkg/gemini"
)

// JSONCompleter is the summarizer surface the classifier needs.
type JSONCompleter interface {
	CompleteJSON(ctx context.Context, prompt string, opts ...gemini.Option) (json.RawMessage, error)
}

// Classifier maps a raw question to a domain and an optional date
// range. It does not retrieve anything; that is the retriever's job.
type Classifier struct {
	llm    JSONCompleter
	logger logger.ILogger
}

func NewClassifier(llm JSONCompleter, log logger.ILogger) *Classifier {
	return &Classifier{llm: llm, logger: log}
}

// Classify resolves the question against referenceDate so relative
// phrases ("last month") land on concrete days. A failed call
// propagates; the caller owns the user-facing fallback.
func (c *Classifier) Classify(ctx context.Context, rawText string, referenceDate time.Time) (*dto.Intent, error) {
	prompt := buildPrompt(rawText, referenceDate)

	raw, err := c.llm.CompleteJSON(ctx, prompt, gemini.WithRelaxedSafety())
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Domain     string        `json:"domain"`
		DateFilter dto.DateRange `json:"date_filter"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("intent: unexpected shape: %w", err)
	}

	intent := &dto.Intent{
		Domain:    constant.ParseDomain(strings.ToUpper(strings.TrimSpace(parsed.Domain))),
		DateRange: normalizeRange(parsed.DateFilter),
	}

	c.logger.Info("intent", "classified query", map[string]interface{}{
		"domain": string(intent.Domain),
		"start":  intent.DateRange.Start,
		"end":    intent.DateRange.End,
	})

	return intent, nil
}

func buildPrompt(rawText string, referenceDate time.Time) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("今天是 %s。使用者問：\"%s\"\n\n", referenceDate.Format("2006-01-02"), rawText))
	sb.WriteString("請做兩件事：\n")
	sb.WriteString("1. 判斷領域 (INVESTMENT, FINANCE, HEALTH, KNOWLEDGE, OTHER)。\n")
	sb.WriteString("2. 解析時間範圍 start 和 end (YYYY-MM-DD)。\n")
	sb.WriteString("   - 若無特定時間，留空字串 \"\"。\n")
	sb.WriteString("   - 如果是比較兩個月(如\"本月跟上個月\")，start 必須是較早的那個月份的第一天。\n\n")
	sb.WriteString("回傳 JSON:\n")
	sb.WriteString("{\n")
	sb.WriteString("  \"domain\": \"FINANCE\",\n")
	sb.WriteString("  \"date_filter\": { \"start\": \"2026-01-01\", \"end\": \"2026-02-11\" }\n")
	sb.WriteString("}")

	return sb.String()
}

// normalizeRange drops anything that does not parse as a date. A range
// without a valid start is the empty range: the retriever falls back to
// its default recency window.
func normalizeRange(r dto.DateRange) dto.DateRange {
	if !validDate(r.Start) {
		return dto.DateRange{}
	}
	if !validDate(r.End) {
		r.End = ""
	}
	return r
}

func validDate(s string) bool {
	if s == "" {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
