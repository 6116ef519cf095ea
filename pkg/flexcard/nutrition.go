package flexcard

import (
	"fmt"

	"finbot-be/internal/dto"
)

// NutritionTargets are the user's daily macro goals, used to scale the
// progress bars.
type NutritionTargets struct {
	Calories int
	Protein  int
	Carbs    int
	Fat      int
}

// Nutrition renders the meal analysis report card.
func Nutrition(report dto.NutritionReport, targets NutritionTargets) Card {
	calPct := percentOf(report.Calories, targets.Calories)
	calColor := "#27ae60"
	if calPct > 40 {
		calColor = "#ef5350"
	}

	body := box("vertical", []map[string]any{
		box("vertical", []map[string]any{
			text(fmt.Sprintf("%d kcal", report.Calories), map[string]any{
				"size": "4xl", "weight": "bold", "color": calColor, "align": "center",
			}),
			text(fmt.Sprintf("佔每日 %d%% (目標 %d)", calPct, targets.Calories), map[string]any{
				"size": "xxs", "color": fgMuted, "align": "center",
			}),
		}),
		separator("lg"),
		macroBar("蛋白質", report.Protein, targets.Protein, "#4fc3f7"),
		macroBar("碳水", report.Carbs, targets.Carbs, "#ffb74d"),
		macroBar("脂肪", report.Fat, targets.Fat, "#e57373"),
		separator("lg"),
		adviceBox(report.Advice),
	})
	body["backgroundColor"] = bgDark

	header := box("vertical", []map[string]any{
		text("NUTRITION REPORT", map[string]any{"color": "#FFD700", "size": "xs", "weight": "bold"}),
		text(report.FoodName, map[string]any{"weight": "bold", "size": "xl", "color": "#ffffff", "wrap": true}),
	})
	header["backgroundColor"] = bgDark

	bubble := map[string]any{
		"type":   "bubble",
		"size":   "mega",
		"header": header,
		"body":   body,
	}

	return Card{
		AltText: fmt.Sprintf("營養分析報告：%s", report.FoodName),
		JSON:    render(bubble),
	}
}

func macroBar(label string, value, target int, color string) map[string]any {
	pct := percentOf(value, target)
	bar := box("vertical", []map[string]any{
		box("horizontal", []map[string]any{
			text(label, map[string]any{"size": "xs", "color": fgMuted, "flex": 2}),
			text(fmt.Sprintf("%dg (%d%%)", value, pct), map[string]any{
				"size": "xs", "color": "#ffffff", "align": "end", "flex": 3,
			}),
		}),
		progressBar(float64(pct), color),
	})
	bar["margin"] = "md"
	return bar
}

func adviceBox(advice string) map[string]any {
	b := box("vertical", []map[string]any{
		text("💡 AI 營養師建議：", map[string]any{"size": "xs", "color": "#cccccc", "weight": "bold"}),
		text(advice, map[string]any{"size": "sm", "color": "#ffffff", "wrap": true, "margin": "sm"}),
	})
	b["margin"] = "lg"
	b["backgroundColor"] = bgBar
	b["cornerRadius"] = "md"
	b["paddingAll"] = "md"
	return b
}

func percentOf(value, target int) int {
	if target <= 0 {
		return 0
	}
	pct := value * 100 / target
	if pct > 100 {
		return 100
	}
	return pct
}
