// Package flexcard shapes LINE Flex Message JSON for the bot's cards.
// Pure presentation: builders take normalized data and return raw
// container JSON ready for the messaging layer.
package flexcard

import (
	"encoding/json"
	"fmt"
)

// Card is one renderable Flex bubble plus its notification alt text.
type Card struct {
	AltText string
	JSON    []byte
}

const (
	bgDark      = "#1e1e1e"
	bgDarker    = "#121212"
	bgPanel     = "#2b2b2b"
	bgBar       = "#333333"
	fgMuted     = "#aaaaaa"
	fgSeparator = "#333333"
)

// FormatMoney renders "$1,234,567" style amounts; fmt has no grouping
// verb.
func FormatMoney(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%.0f", v)
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	if neg {
		return "-$" + string(out)
	}
	return "$" + string(out)
}

func render(m map[string]any) []byte {
	b, _ := json.Marshal(m)
	return b
}

func box(layout string, contents []map[string]any) map[string]any {
	return map[string]any{"type": "box", "layout": layout, "contents": contents}
}

func text(content string, attrs map[string]any) map[string]any {
	m := map[string]any{"type": "text", "text": content}
	for k, v := range attrs {
		m[k] = v
	}
	return m
}

func separator(margin string) map[string]any {
	return map[string]any{"type": "separator", "margin": margin, "color": fgSeparator}
}

// progressBar is the thin rounded bar used on every goal card.
func progressBar(percent float64, color string) map[string]any {
	if percent > 100 {
		percent = 100
	}
	if percent < 0 {
		percent = 0
	}
	return map[string]any{
		"type": "box", "layout": "vertical",
		"backgroundColor": bgBar, "height": "6px", "cornerRadius": "30px",
		"contents": []map[string]any{{
			"type": "box", "layout": "vertical",
			"width":           fmt.Sprintf("%.0f%%", percent),
			"backgroundColor": color, "height": "6px", "cornerRadius": "30px",
			"contents": []map[string]any{},
		}},
	}
}
