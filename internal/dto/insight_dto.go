package dto

// DetailItem is one label/value row on the summary card.
type DetailItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// SummaryCard is the UI summary half of an insight. Details are capped
// at 5 entries by the insight generator.
type SummaryCard struct {
	Title    string       `json:"title"`
	MainStat string       `json:"main_stat,omitempty"`
	Details  []DetailItem `json:"details"`
}

// AnalysisPoint is one titled paragraph of the analysis card. Capped at
// 4 entries by the insight generator.
type AnalysisPoint struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Insight is the structured result of one RAG query cycle. Built once,
// never mutated.
type Insight struct {
	Card     SummaryCard
	Analysis []AnalysisPoint
}
