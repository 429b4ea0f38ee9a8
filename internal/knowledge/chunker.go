package knowledge

import "strings"

// SplitSentences splits source material into sentence chunks on periods.
// The input is trimmed as a whole and exactly-empty fragments are dropped;
// fragment-internal whitespace is kept, so rejoining the chunks with "."
// reconstructs the trimmed input minus the empty fragments.
//
// This is deliberately naive: the knowledge base holds short prose about
// the site and its author, where sentence granularity retrieves well.
func SplitSentences(content string) []string {
	parts := strings.Split(strings.TrimSpace(content), ".")
	chunks := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		chunks = append(chunks, p)
	}
	return chunks
}
