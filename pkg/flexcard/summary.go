package flexcard

import (
	"fmt"

	"finbot-be/internal/constant"
	"finbot-be/internal/dto"
)

var domainColors = map[constant.Domain]string{
	constant.DomainInvestment: "#ef5350",
	constant.DomainFinance:    "#42a5f5",
	constant.DomainHealth:     "#66bb6a",
	constant.DomainKnowledge:  "#ffa726",
}

func domainColor(domain constant.Domain) string {
	if c, ok := domainColors[domain]; ok {
		return c
	}
	return "#999999"
}

// Summary renders the first card of a RAG reply: headline stat plus up
// to five label/value rows, themed by domain.
func Summary(domain constant.Domain, card dto.SummaryCard) Card {
	themeColor := domainColor(domain)

	detailBoxes := make([]map[string]any, 0, len(card.Details))
	for _, item := range card.Details {
		detailBoxes = append(detailBoxes, box("horizontal", []map[string]any{
			text(item.Label, map[string]any{"size": "sm", "color": fgMuted, "flex": 2, "wrap": true}),
			text(item.Value, map[string]any{"size": "sm", "color": "#ffffff", "align": "end", "flex": 4, "wrap": true}),
		}))
	}

	bodyContents := []map[string]any{}
	if card.MainStat != "" {
		bodyContents = append(bodyContents, text(card.MainStat, map[string]any{
			"size": "4xl", "weight": "bold", "color": themeColor,
			"align": "center", "margin": "md", "adjustMode": "shrink-to-fit",
		}))
	}
	bodyContents = append(bodyContents, separator("lg"))
	detailBox := box("vertical", detailBoxes)
	detailBox["margin"] = "lg"
	detailBox["spacing"] = "sm"
	bodyContents = append(bodyContents, detailBox)

	header := box("vertical", []map[string]any{
		text(fmt.Sprintf("%s INTELLIGENCE", domain), map[string]any{"color": "#ffffff", "weight": "bold", "size": "xxs"}),
		text(card.Title, map[string]any{"weight": "bold", "size": "xl", "color": "#ffffff", "wrap": true}),
	})
	header["backgroundColor"] = themeColor

	body := box("vertical", bodyContents)
	body["backgroundColor"] = bgDark

	bubble := map[string]any{
		"type":   "bubble",
		"size":   "mega",
		"header": header,
		"body":   body,
	}

	return Card{
		AltText: fmt.Sprintf("%s 查詢摘要", domain),
		JSON:    render(bubble),
	}
}

// Analysis renders the second card of a RAG reply: up to four titled
// analysis points.
func Analysis(domain constant.Domain, points []dto.AnalysisPoint) Card {
	contents := []map[string]any{
		text("AI 深度解析", map[string]any{"weight": "bold", "size": "md", "color": "#ffffff", "align": "center"}),
		separator("md"),
	}

	for _, point := range points {
		section := box("vertical", []map[string]any{
			text("📌 "+point.Title, map[string]any{"weight": "bold", "color": "#FFD700", "size": "sm", "wrap": true}),
			text(point.Content, map[string]any{"color": "#cccccc", "size": "sm", "wrap": true, "margin": "xs"}),
		})
		section["margin"] = "lg"
		contents = append(contents, section)
	}

	body := box("vertical", contents)
	body["backgroundColor"] = bgPanel

	bubble := map[string]any{
		"type": "bubble",
		"size": "mega",
		"body": body,
	}

	return Card{
		AltText: fmt.Sprintf("%s 詳細分析", domain),
		JSON:    render(bubble),
	}
}
