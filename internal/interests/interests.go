package interests

import (
	"regexp"
	"strings"

	"TocDigest/internal/domain"
)

const maxKeywords = 200

var (
	keywordsHeading  = regexp.MustCompile(`(?im)^\s*#{1,6}\s+Keywords\s*$`)
	narrativeHeading = regexp.MustCompile(`(?im)^\s*#{1,6}\s+Narrative\s*$`)
	anyHeading       = regexp.MustCompile(`(?m)^\s*#{1,6}\s+\S`)
	keywordsLine     = regexp.MustCompile(`(?im)^\s*Keywords\s*:\s*(.+)$`)
	bulletPrefix     = regexp.MustCompile(`^[-*+]\s+`)
	listSeparators   = regexp.MustCompile(`[,;\n]+`)
)

// Parse builds the Interests seed from a Markdown-like document.
//
// Keywords come from the body of a "Keywords" heading (any level,
// case-insensitive), one per non-blank line with bullet markers stripped;
// with no such heading, a single "Keywords: a, b; c" line is the fallback.
// The narrative is the body of a "Narrative" heading when one exists,
// otherwise the whole document. The narrative is truncated to maxNarrative
// characters with a marker appended when cut.
func Parse(document string, maxNarrative int) domain.Interests {
	seed := domain.Interests{
		Keywords:  parseKeywords(document),
		Narrative: truncate(parseNarrative(document), maxNarrative),
	}
	return seed
}

func parseKeywords(document string) []string {
	var keywords []string

	if body, ok := sectionBody(document, keywordsHeading); ok {
		for _, line := range strings.Split(body, "\n") {
			line = strings.TrimSpace(line)
			line = bulletPrefix.ReplaceAllString(line, "")
			if line != "" {
				keywords = append(keywords, line)
			}
		}
	} else if m := keywordsLine.FindStringSubmatch(document); m != nil {
		for _, part := range listSeparators.Split(m[1], -1) {
			part = strings.TrimSpace(part)
			if part != "" {
				keywords = append(keywords, part)
			}
		}
	}

	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}
	return keywords
}

func parseNarrative(document string) string {
	if body, ok := sectionBody(document, narrativeHeading); ok {
		return strings.TrimSpace(body)
	}
	return document
}

// sectionBody returns the text between a heading matched by expr and the
// next heading of any level (or end of document).
func sectionBody(document string, expr *regexp.Regexp) (string, bool) {
	loc := expr.FindStringIndex(document)
	if loc == nil {
		return "", false
	}

	rest := document[loc[1]:]
	if next := anyHeading.FindStringIndex(rest); next != nil {
		rest = rest[:next[0]]
	}
	return rest, true
}

func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
