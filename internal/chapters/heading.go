package chapters

import (
	"regexp"
	"strings"
)

var (
	reSpaces = regexp.MustCompile(`\s+`)
	reNoise  = regexp.MustCompile(`(?i)read .* online for free`)
)

// A headingRule splits cleaned heading text; ok reports a match.
type headingRule func(text string) (label, title string, ok bool)

var headingRules = []headingRule{
	// "Chapter 12-Title", "Chapter 12.5 / Title", "Chapter 53 Part 2: Title"
	submatchRule(regexp.MustCompile(`(?i)^(?:chapter|ch\.?)\s+([\d.]+(?:\s+part\s+\d+)?)\s*(?::|/|[-–—])\s*(.*)$`)),
	// "Chapter Extra: Title", "Ch. IV - Title"
	submatchRule(regexp.MustCompile(`(?i)^(?:chapter|ch\.?)\s+(.+?)\s*(?::|\s[-–—]\s)\s*(.*)$`)),
	// "Chapter 12"
	submatchRule(regexp.MustCompile(`(?i)^(?:chapter|ch\.?)\s+(.+)$`)),
}

func submatchRule(re *regexp.Regexp) headingRule {
	return func(text string) (string, string, bool) {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return "", "", false
		}
		title := ""
		if len(m) > 2 {
			title = m[2]
		}

		return m[1], title, true
	}
}

// CleanText collapses runs of whitespace and trims.
func CleanText(s string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

// SplitHeading splits a chapter heading into label and title. When no
// rule matches, the whole cleaned text is the title and label is nil.
func SplitHeading(text string) (label, title *string) {
	cleaned := CleanText(text)
	if cleaned == "" {
		return nil, nil
	}

	for _, rule := range headingRules {
		if l, t, ok := rule(cleaned); ok {
			return nonEmpty(l), nonEmpty(t)
		}
	}

	return nil, &cleaned
}

// StripNoise removes site boilerplate like "Read X online for free".
// Fields that end up empty become nil.
func StripNoise(s *string) *string {
	if s == nil {
		return nil
	}

	return nonEmpty(reNoise.ReplaceAllString(*s, ""))
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	return &s
}
