// Package prose tokenizes generated proposal text for display. The
// generator promises nothing about structure, so everything here is
// best-effort: blank-line-separated sections, ** ** header lines, and
// */- bullet lines. Unrecognized lines are plain paragraphs.
package prose

import (
	"strings"

	"proposaldesk-backend/internal/models"
)

// Tokenize splits raw generated text into display sections. Empty or
// whitespace-only input yields no sections.
func Tokenize(raw string) []models.ProposalSection {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	var sections []models.ProposalSection
	for _, block := range strings.Split(raw, "\n\n") {
		if strings.TrimSpace(block) == "" {
			continue
		}
		sections = append(sections, tokenizeBlock(block))
	}
	return sections
}

func tokenizeBlock(block string) models.ProposalSection {
	var sec models.ProposalSection
	for _, line := range strings.Split(block, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		switch {
		case isHeader(trimmed):
			header := strings.TrimSpace(strings.ReplaceAll(trimmed, "**", ""))
			if sec.Header == "" {
				sec.Header = header
			} else {
				// A second header inside one block is kept as a paragraph
				// rather than silently dropped.
				sec.Paragraphs = append(sec.Paragraphs, header)
			}
		case isBullet(trimmed):
			sec.Bullets = append(sec.Bullets, strings.TrimSpace(trimmed[1:]))
		default:
			sec.Paragraphs = append(sec.Paragraphs, trimmed)
		}
	}
	return sec
}

// isHeader matches **Title** lines the model tends to emit.
func isHeader(line string) bool {
	return strings.HasPrefix(line, "**") && strings.HasSuffix(line, "**") && len(line) > 4
}

// isBullet matches "* item" and "- item". A lone marker is not a bullet.
func isBullet(line string) bool {
	return (strings.HasPrefix(line, "*") || strings.HasPrefix(line, "-")) &&
		!strings.HasPrefix(line, "**") &&
		len(strings.TrimSpace(line[1:])) > 0
}
