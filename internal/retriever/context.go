package retriever

import (
	"fmt"
	"strings"

	"github.com/voceria-ai/voceria/internal/domain"
)

const contentPreviewChars = 800

// AssembleContext concatenates result blocks in rank order, stopping before
// the budget is exceeded. A block is included whole or not at all; the
// budget is never split across a partial block.
func (r *Retriever) AssembleContext(results []domain.SearchResult, maxChars int) string {
	if len(results) == 0 {
		return ""
	}

	var parts []string
	current := 0

	for _, res := range results {
		preview := res.Content
		if len([]rune(preview)) > contentPreviewChars {
			preview = string([]rune(preview)[:contentPreviewChars]) + "..."
		}

		block := fmt.Sprintf("**%s** (relevancia: %.1f):\n%s\n", res.Filename, res.Score, preview)

		if current+len(block) > maxChars {
			break
		}
		parts = append(parts, block)
		current += len(block)
	}

	return strings.Join(parts, "\n")
}
