package dto

import "finbot-be/internal/constant"

// DateRange bounds a query in YYYY-MM-DD strings. Zero values mean "no
// filter"; the retriever then uses its default recency window.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (r DateRange) IsZero() bool {
	return r.Start == "" && r.End == ""
}

// Intent is the classified form of one free-text question. Immutable
// after classification.
type Intent struct {
	Domain    constant.Domain
	DateRange DateRange
}
