package dto

// NutritionReport is the vision model's estimate of one meal. Written
// once to Notion, rendered once to a card, then discarded.
type NutritionReport struct {
	FoodName   string  `json:"food_name"`
	Percentage float64 `json:"percentage"` // consumed fraction, 0.0 - 1.0
	Calories   int     `json:"calories"`
	Protein    int     `json:"protein"`
	Carbs      int     `json:"carbs"`
	Fat        int     `json:"fat"`
	Advice     string  `json:"advice"`
}
