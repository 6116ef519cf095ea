package notion

// Query is the body of one database query call.
type Query struct {
	PageSize int
	Filter   map[string]any
	Sorts    []Sort
}

type Sort struct {
	Property  string `json:"property,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Direction string `json:"direction"`
}

// CreatedTimeDescending sorts newest rows first without needing a date
// property on the database.
var CreatedTimeDescending = Sort{Timestamp: "created_time", Direction: "descending"}

// DatePropertyFilter bounds a named date property inclusively. Empty
// bounds are omitted.
func DatePropertyFilter(property, onOrAfter, onOrBefore string) map[string]any {
	conditions := make([]map[string]any, 0, 2)
	if onOrAfter != "" {
		conditions = append(conditions, map[string]any{
			"property": property,
			"date":     map[string]any{"on_or_after": onOrAfter},
		})
	}
	if onOrBefore != "" {
		conditions = append(conditions, map[string]any{
			"property": property,
			"date":     map[string]any{"on_or_before": onOrBefore},
		})
	}
	if len(conditions) == 0 {
		return nil
	}
	return map[string]any{"and": conditions}
}

// CreatedTimeFilter bounds the record-creation timestamp inclusively,
// for databases without a canonical date property.
func CreatedTimeFilter(onOrAfter, onOrBefore string) map[string]any {
	bounds := make(map[string]any)
	if onOrAfter != "" {
		bounds["on_or_after"] = onOrAfter
	}
	if onOrBefore != "" {
		bounds["on_or_before"] = onOrBefore
	}
	if len(bounds) == 0 {
		return nil
	}
	return map[string]any{
		"timestamp":    "created_time",
		"created_time": bounds,
	}
}

// Block is one child block on a page write. The helpers below cover
// the shapes the bot actually produces.
type Block map[string]any

func CalloutBlock(text, emoji string) Block {
	return Block{
		"object": "block",
		"type":   "callout",
		"callout": map[string]any{
			"rich_text": []map[string]any{
				{"text": map[string]any{"content": text}},
			},
			"icon":  map[string]any{"emoji": emoji},
			"color": "gray_background",
		},
	}
}

func ParagraphBlock(text string) Block {
	return Block{
		"object": "block",
		"type":   "paragraph",
		"paragraph": map[string]any{
			"rich_text": []map[string]any{
				{"text": map[string]any{"content": text}},
			},
		},
	}
}

// Property write helpers for page creation.

func TitleProperty(content string) map[string]any {
	return map[string]any{
		"title": []map[string]any{
			{"text": map[string]any{"content": content}},
		},
	}
}

func RichTextProperty(content string) map[string]any {
	return map[string]any{
		"rich_text": []map[string]any{
			{"text": map[string]any{"content": content}},
		},
	}
}

func SelectProperty(name string) map[string]any {
	return map[string]any{"select": map[string]any{"name": name}}
}

func StatusProperty(name string) map[string]any {
	return map[string]any{"status": map[string]any{"name": name}}
}

func DateProperty(startISO string) map[string]any {
	return map[string]any{"date": map[string]any{"start": startISO}}
}
