package notion

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseProperties(t *testing.T, raw string) map[string]propertyValue {
	t.Helper()
	var props map[string]propertyValue
	require.NoError(t, json.Unmarshal([]byte(raw), &props))
	return props
}

func TestFlattenPageCellTypes(t *testing.T) {
	props := parseProperties(t, `{
		"名稱":   {"type": "title", "title": [{"plain_text": "房貸"}]},
		"備註":   {"type": "rich_text", "rich_text": [{"plain_text": "note"}]},
		"剩餘本金": {"type": "number", "number": 4200000},
		"類別":   {"type": "select", "select": {"name": "餐飲"}},
		"狀態":   {"type": "status", "status": {"name": "分析完成"}},
		"日期":   {"type": "date", "date": {"start": "2026-08-01"}},
		"已結清":  {"type": "checkbox", "checkbox": false},
		"月繳":   {"type": "formula", "formula": {"type": "number", "number": 25000}},
		"標籤":   {"type": "formula", "formula": {"type": "string", "string": "fixed"}},
		"小計":   {"type": "rollup", "rollup": {"type": "number", "number": 300}}
	}`)

	record := flattenPage("page-1", props)

	assert.Equal(t, "page-1", record.ID)
	assert.Equal(t, map[string]any{
		"名稱":   "房貸",
		"備註":   "note",
		"剩餘本金": 4200000.0,
		"類別":   "餐飲",
		"狀態":   "分析完成",
		"日期":   "2026-08-01",
		"已結清":  false,
		"月繳":   25000.0,
		"標籤":   "fixed",
		"小計":   300.0,
	}, record.Fields)
}

func TestFlattenPageDropsEmptyCells(t *testing.T) {
	props := parseProperties(t, `{
		"空標題":  {"type": "title", "title": []},
		"空文字":  {"type": "rich_text", "rich_text": [{"plain_text": ""}]},
		"空數字":  {"type": "number", "number": null},
		"空選項":  {"type": "select", "select": null},
		"空日期":  {"type": "date", "date": null},
		"未知型別": {"type": "relation"},
		"有值":   {"type": "number", "number": 1}
	}`)

	record := flattenPage("page-2", props)

	assert.Equal(t, map[string]any{"有值": 1.0}, record.Fields)
}

func TestExtractRollupArraySumsNumbers(t *testing.T) {
	props := parseProperties(t, `{
		"合計": {"type": "rollup", "rollup": {"type": "array", "array": [
			{"type": "number", "number": 100},
			{"type": "number", "number": 250},
			{"type": "rich_text", "rich_text": [{"plain_text": "skip me"}]}
		]}}
	}`)

	record := flattenPage("page-3", props)

	assert.Equal(t, 350.0, record.Fields["合計"])
}

func TestExtractRollupArrayWithoutNumbersIsDropped(t *testing.T) {
	props := parseProperties(t, `{
		"合計": {"type": "rollup", "rollup": {"type": "array", "array": [
			{"type": "rich_text", "rich_text": [{"plain_text": "text only"}]}
		]}}
	}`)

	record := flattenPage("page-4", props)

	assert.Empty(t, record.Fields)
}

func TestRecordMarshalsFieldsOnly(t *testing.T) {
	record := Record{ID: "secret-page-id", Fields: map[string]any{"金額": 120.0}}

	blob, err := json.Marshal(record)

	require.NoError(t, err)
	assert.JSONEq(t, `{"金額": 120}`, string(blob))
	assert.NotContains(t, string(blob), "secret-page-id")
}
