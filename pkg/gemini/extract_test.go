package gemini

import (
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantOK  bool
	}{
		{
			name:   "bare object",
			raw:    `{"a":1}`,
			want:   `{"a":1}`,
			wantOK: true,
		},
		{
			name:   "markdown fenced",
			raw:    "Sure! ```json\n{\"a\":1}\n```",
			want:   `{"a":1}`,
			wantOK: true,
		},
		{
			name:   "prose around object",
			raw:    `Here is the result: {"domain": "FINANCE"} hope it helps`,
			want:   `{"domain": "FINANCE"}`,
			wantOK: true,
		},
		{
			name:   "nested objects",
			raw:    `{"card_data": {"title": "x", "details": [{"label": "a"}]}}`,
			want:   `{"card_data": {"title": "x", "details": [{"label": "a"}]}}`,
			wantOK: true,
		},
		{
			name:   "braces inside string literal",
			raw:    `{"title": "a {weird} label"}`,
			want:   `{"title": "a {weird} label"}`,
			wantOK: true,
		},
		{
			name:   "escaped quote inside string",
			raw:    `{"title": "he said \"hi\" {"}`,
			want:   `{"title": "he said \"hi\" {"}`,
			wantOK: true,
		},
		{
			name:   "array when no object",
			raw:    `answer: [1, 2, 3]`,
			want:   `[1, 2, 3]`,
			wantOK: true,
		},
		{
			name:   "object preferred over array",
			raw:    `[1, 2] then {"a": 1}`,
			want:   `{"a": 1}`,
			wantOK: true,
		},
		{
			name:   "unbalanced",
			raw:    `{"a": 1`,
			wantOK: false,
		},
		{
			name:   "no json at all",
			raw:    "I cannot answer that.",
			wantOK: false,
		},
		{
			name:   "empty input",
			raw:    "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSON(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("region = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractJSONIdempotent(t *testing.T) {
	first, ok := ExtractJSON("```json\n{\"a\": {\"b\": 2}}\n```")
	if !ok {
		t.Fatal("first extraction failed")
	}
	second, ok := ExtractJSON(first)
	if !ok {
		t.Fatal("second extraction failed")
	}
	if first != second {
		t.Errorf("not idempotent: %q != %q", first, second)
	}
}
