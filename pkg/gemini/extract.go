package gemini

import "strings"

// ExtractJSON finds the first balanced top-level JSON object in raw, or
// the first balanced array if no object exists. Prose and code fences
// around the region are ignored. Braces inside string literals do not
// count toward nesting, so titles like "a {weird} label" survive.
func ExtractJSON(raw string) (string, bool) {
	if region, ok := scanBalanced(raw, '{', '}'); ok {
		return region, true
	}
	return scanBalanced(raw, '[', ']')
}

func scanBalanced(raw string, open, close byte) (string, bool) {
	start := strings.IndexByte(raw, open)
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return raw[start : i+1], true
			}
		}
	}

	return "", false
}
