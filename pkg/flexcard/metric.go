package flexcard

import "fmt"

// MortgageProgress renders the remaining-principal progress card.
func MortgageProgress(remaining, principal float64) Card {
	percent := 0.0
	if principal > 0 {
		percent = (principal - remaining) / principal * 100
	}

	header := box("vertical", []map[string]any{
		text("MORTGAGE PROGRESS", map[string]any{"color": "#27ae60", "size": "xs", "weight": "bold"}),
		text("房貸還款進度", map[string]any{"weight": "bold", "size": "xl", "color": "#ffffff"}),
	})
	header["backgroundColor"] = bgDark
	header["paddingAll"] = "20px"

	progress := box("vertical", []map[string]any{
		box("baseline", []map[string]any{
			text("還款進度", map[string]any{"size": "xs", "color": fgMuted, "flex": 1}),
			text(fmt.Sprintf("%.2f%%", percent), map[string]any{"size": "xs", "color": "#27ae60", "weight": "bold", "align": "end"}),
		}),
		progressBar(percent, "#27ae60"),
	})
	progress["margin"] = "lg"
	progress["spacing"] = "sm"

	body := box("vertical", []map[string]any{
		box("horizontal", []map[string]any{
			text("剩餘本金", map[string]any{"size": "sm", "color": fgMuted, "flex": 1}),
			text(FormatMoney(remaining), map[string]any{"weight": "bold", "color": "#ef5350", "align": "end"}),
		}),
		separator("lg"),
		progress,
	})
	body["backgroundColor"] = bgDark
	body["paddingAll"] = "20px"

	bubble := map[string]any{"type": "bubble", "size": "giga", "header": header, "body": body}
	return Card{AltText: "房貸進度", JSON: render(bubble)}
}

// BTCProgress renders the accumulation card toward the BTC goal.
func BTCProgress(current, goal float64) Card {
	percent := 0.0
	if goal > 0 {
		percent = current / goal * 100
	}

	header := box("vertical", []map[string]any{
		text("BITCOIN ROAD TO 1", map[string]any{"color": "#F7931A", "size": "xs", "weight": "bold"}),
		text("比特幣累積計畫", map[string]any{"weight": "bold", "size": "xl", "color": "#ffffff"}),
	})
	header["backgroundColor"] = bgDark
	header["paddingAll"] = "20px"

	progress := box("vertical", []map[string]any{
		box("baseline", []map[string]any{
			text("目標進度", map[string]any{"size": "xs", "color": fgMuted, "flex": 1}),
			text(fmt.Sprintf("%.2f%%", percent), map[string]any{"size": "xs", "color": "#F7931A", "weight": "bold", "align": "end"}),
		}),
		progressBar(percent, "#F7931A"),
	})
	progress["margin"] = "lg"
	progress["spacing"] = "sm"

	body := box("vertical", []map[string]any{
		box("horizontal", []map[string]any{
			text("持有 (BTC)", map[string]any{"size": "sm", "color": fgMuted, "flex": 1}),
			text(fmt.Sprintf("%.8f", current), map[string]any{"weight": "bold", "color": "#ffffff", "align": "end", "size": "lg"}),
		}),
		separator("lg"),
		progress,
	})
	body["backgroundColor"] = bgDark
	body["paddingAll"] = "20px"

	bubble := map[string]any{"type": "bubble", "size": "giga", "header": header, "body": body}
	return Card{AltText: "BTC進度", JSON: render(bubble)}
}

// ChartCard renders a hero-image card around a hosted chart: the asset
// trend and the projection both use it.
func ChartCard(label, title, altText, chartURL, statLabel, statValue string) Card {
	header := box("vertical", []map[string]any{
		text(label, map[string]any{"color": "#42a5f5", "size": "xs", "weight": "bold"}),
		text(title, map[string]any{"weight": "bold", "size": "xl", "color": "#ffffff"}),
	})
	header["backgroundColor"] = bgDark
	header["paddingAll"] = "20px"

	body := box("vertical", []map[string]any{
		box("horizontal", []map[string]any{
			text(statLabel, map[string]any{"size": "sm", "color": fgMuted}),
			text(statValue, map[string]any{"size": "lg", "color": "#42a5f5", "weight": "bold", "align": "end"}),
		}),
	})
	body["backgroundColor"] = bgDark

	bubble := map[string]any{
		"type":   "bubble",
		"size":   "giga",
		"header": header,
		"hero": map[string]any{
			"type": "image", "url": chartURL, "size": "full",
			"aspectRatio": "20:13", "aspectMode": "cover",
			"action": map[string]any{"type": "uri", "uri": chartURL},
		},
		"body": body,
	}

	return Card{AltText: altText, JSON: render(bubble)}
}

// BudgetRow is one category's budget versus actual spending.
type BudgetRow struct {
	Category string
	Spent    float64
	Budget   float64
}

// Budget renders the per-category budget comparison card.
func Budget(monthLabel string, rows []BudgetRow) Card {
	contents := []map[string]any{}
	for _, row := range rows {
		pct := 0.0
		if row.Budget > 0 {
			pct = row.Spent / row.Budget * 100
		}
		barColor := "#27ae60"
		if pct > 100 {
			barColor = "#ef5350"
		} else if pct > 80 {
			barColor = "#ffa726"
		}

		section := box("vertical", []map[string]any{
			box("horizontal", []map[string]any{
				text(row.Category, map[string]any{"size": "sm", "color": fgMuted, "flex": 2, "wrap": true}),
				text(FormatMoney(row.Spent)+" / "+FormatMoney(row.Budget), map[string]any{
					"size": "sm", "color": "#ffffff", "align": "end", "flex": 4,
				}),
			}),
			progressBar(pct, barColor),
		})
		section["margin"] = "md"
		contents = append(contents, section)
	}

	header := box("vertical", []map[string]any{
		text("BUDGET TRACKER", map[string]any{"color": "#42a5f5", "size": "xs", "weight": "bold"}),
		text(fmt.Sprintf("%s 預算執行", monthLabel), map[string]any{"weight": "bold", "size": "xl", "color": "#ffffff"}),
	})
	header["backgroundColor"] = bgDark
	header["paddingAll"] = "20px"

	body := box("vertical", contents)
	body["backgroundColor"] = bgDark
	body["paddingAll"] = "20px"

	bubble := map[string]any{"type": "bubble", "size": "giga", "header": header, "body": body}
	return Card{AltText: "預算比較", JSON: render(bubble)}
}
