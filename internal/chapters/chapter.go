package chapters

import (
	"regexp"
	"strings"
)

var (
	reSlugLabel  = regexp.MustCompile(`(?i)^chapter-(\d+(?:\.\d+)?)(?:-part-(\d+))?(?:[-/.].*)?$`)
	reSlugNumber = regexp.MustCompile(`(?i)chapter-([0-9]+(?:\.[0-9]+)?)`)
)

// LabelFromSlug turns "chapter-12" into "12" and "chapter-53-part-2" into
// "53 part 2". Any other slug is returned unchanged.
func LabelFromSlug(slug string) string {
	m := reSlugLabel.FindStringSubmatch(slug)
	if m == nil {
		return slug
	}
	if m[2] != "" {
		return m[1] + " part " + m[2]
	}

	return m[1]
}

// NumberFromSlug finds a "chapter-<n>" run anywhere in the slug.
func NumberFromSlug(slug string) (string, bool) {
	m := reSlugNumber.FindStringSubmatch(slug)
	if m == nil {
		return "", false
	}

	return m[1], true
}

// TrimExt drops a trailing ".html" or ".htm".
func TrimExt(slug string) string {
	lower := strings.ToLower(slug)
	for _, ext := range []string{".html", ".htm"} {
		if strings.HasSuffix(lower, ext) {
			return slug[:len(slug)-len(ext)]
		}
	}

	return slug
}
