package assemble

import "strings"

// JoinPages folds an ordered sequence of page texts into one coherent
// document, repairing the artificial breaks a page boundary introduces.
// Each page is trimmed and empty pages are dropped; the rule applied between
// the accumulated text and the next page depends on how the accumulated text
// ends:
//
//   - trailing "-": the word was split across the boundary — drop the hyphen
//     and concatenate with no space
//   - trailing "...": the sentence continues — single space
//   - trailing ".", "?" or "!": paragraph/section break — four newlines
//     (a deliberately large visual gap; downstream consumers rely on it)
//   - trailing ":" or ";": single space
//   - anything else (mid-sentence break): single space
//
// The rules form an ordered chain: the hyphen check runs before the
// terminator checks so degenerate input like "word.-" still de-hyphenates.
func JoinPages(pageTexts []string) string {
	var result string

	for _, page := range pageTexts {
		next := strings.TrimSpace(page)
		if next == "" {
			continue
		}
		if result == "" {
			result = next
			continue
		}
		result = joinBoundary(result, next)
	}

	return result
}

func joinBoundary(result, next string) string {
	switch {
	case strings.HasSuffix(result, "-"):
		return strings.TrimSuffix(result, "-") + next
	case strings.HasSuffix(result, "..."):
		return result + " " + next
	case strings.HasSuffix(result, ".") || strings.HasSuffix(result, "?") || strings.HasSuffix(result, "!"):
		return result + "\n\n\n\n" + next
	case strings.HasSuffix(result, ":") || strings.HasSuffix(result, ";"):
		return result + " " + next
	default:
		return result + " " + next
	}
}
