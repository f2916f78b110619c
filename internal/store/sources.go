package store

import (
	"fmt"
	"os"
	"strings"

	"TocDigest/internal/domain"
)

// LoadSources reads the feed list file. Blank lines and #-comments are
// skipped; a line is either a bare URL or "Display Name | URL".
func LoadSources(path string) ([]domain.Feed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feed list: %w", err)
	}
	return ParseSources(string(raw)), nil
}

// ParseSources parses feed list text into ordered feed references.
func ParseSources(text string) []domain.Feed {
	var feeds []domain.Feed
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if name, url, ok := strings.Cut(line, "|"); ok {
			feeds = append(feeds, domain.Feed{
				Name: strings.TrimSpace(name),
				URL:  strings.TrimSpace(url),
			})
			continue
		}

		feeds = append(feeds, domain.Feed{URL: line})
	}
	return feeds
}
