package notion

import "encoding/json"

// Record is one flattened database row: property name to plain scalar.
// Null and empty-string values are never stored, so every record is
// sparse by construction.
type Record struct {
	ID     string
	Fields map[string]any
}

// MarshalJSON serializes only the fields. The page ID is transport
// detail and would just waste prompt tokens downstream.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Fields)
}

type richText struct {
	PlainText string `json:"plain_text"`
}

type selectValue struct {
	Name string `json:"name"`
}

type dateValue struct {
	Start string `json:"start"`
}

type formulaValue struct {
	Type   string   `json:"type"`
	Number *float64 `json:"number"`
	String *string  `json:"string"`
}

type rollupValue struct {
	Type   string          `json:"type"`
	Number *float64        `json:"number"`
	Array  []propertyValue `json:"array"`
}

// propertyValue is the closed set of typed cells this client reads.
// One container per type tag; exactly one side is populated.
type propertyValue struct {
	Type     string        `json:"type"`
	Title    []richText    `json:"title"`
	RichText []richText    `json:"rich_text"`
	Number   *float64      `json:"number"`
	Select   *selectValue  `json:"select"`
	Status   *selectValue  `json:"status"`
	Date     *dateValue    `json:"date"`
	Checkbox *bool         `json:"checkbox"`
	Formula  *formulaValue `json:"formula"`
	Rollup   *rollupValue  `json:"rollup"`
}

// extractValue unwraps one typed cell to a plain scalar. The second
// return is false when the cell is empty or of an unsupported type.
func extractValue(p propertyValue) (any, bool) {
	switch p.Type {
	case "title":
		if len(p.Title) == 0 {
			return nil, false
		}
		return nonEmpty(p.Title[0].PlainText)
	case "rich_text":
		if len(p.RichText) == 0 {
			return nil, false
		}
		return nonEmpty(p.RichText[0].PlainText)
	case "number":
		if p.Number == nil {
			return nil, false
		}
		return *p.Number, true
	case "select":
		if p.Select == nil {
			return nil, false
		}
		return nonEmpty(p.Select.Name)
	case "status":
		if p.Status == nil {
			return nil, false
		}
		return nonEmpty(p.Status.Name)
	case "date":
		if p.Date == nil {
			return nil, false
		}
		return nonEmpty(p.Date.Start)
	case "checkbox":
		if p.Checkbox == nil {
			return nil, false
		}
		return *p.Checkbox, true
	case "formula":
		return extractFormula(p.Formula)
	case "rollup":
		return extractRollup(p.Rollup)
	default:
		return nil, false
	}
}

func extractFormula(f *formulaValue) (any, bool) {
	if f == nil {
		return nil, false
	}
	switch f.Type {
	case "number":
		if f.Number == nil {
			return nil, false
		}
		return *f.Number, true
	case "string":
		if f.String == nil {
			return nil, false
		}
		return nonEmpty(*f.String)
	default:
		return nil, false
	}
}

// extractRollup returns the rollup number, or the sum of numeric
// elements for array rollups (the common "sum over relation" shape).
func extractRollup(r *rollupValue) (any, bool) {
	if r == nil {
		return nil, false
	}
	switch r.Type {
	case "number":
		if r.Number == nil {
			return nil, false
		}
		return *r.Number, true
	case "array":
		sum := 0.0
		found := false
		for _, item := range r.Array {
			if v, ok := extractValue(item); ok {
				if n, isNum := v.(float64); isNum {
					sum += n
					found = true
				}
			}
		}
		if !found {
			return nil, false
		}
		return sum, true
	default:
		return nil, false
	}
}

func nonEmpty(s string) (any, bool) {
	if s == "" {
		return nil, false
	}
	return s, true
}

// flattenPage converts one result page into a sparse Record.
func flattenPage(id string, properties map[string]propertyValue) Record {
	fields := make(map[string]any)
	for name, prop := range properties {
		if value, ok := extractValue(prop); ok {
			fields[name] = value
		}
	}
	return Record{ID: id, Fields: fields}
}
