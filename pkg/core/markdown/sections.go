package markdown

import (
	"regexp"
	"strings"
)

var (
	bulletMarkerPattern = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*`)
	separatorPattern    = regexp.MustCompile(`^[-=_*\s]+$`)
	headingPattern      = regexp.MustCompile(`^#{1,6}\s`)
	boldLabelPattern    = regexp.MustCompile(`^\*\*[^*]+\*\*:?\s*$`)
)

// sectionStart locates the first line index after a section label, trying
// a bolded label first and then a ##-style heading, per the two historical
// report conventions.
func sectionStart(lines []string, labels []string) int {
	for _, matcher := range []func(line, label string) bool{matchBoldLabel, matchHeading} {
		for i, line := range lines {
			trimmed := strings.TrimSpace(line)
			for _, label := range labels {
				if matcher(trimmed, label) {
					return i + 1
				}
			}
		}
	}
	return -1
}

func matchBoldLabel(line, label string) bool {
	if !strings.HasPrefix(line, "**") {
		return false
	}
	inner := strings.Trim(line, "*: ")
	return strings.EqualFold(inner, label)
}

func matchHeading(line, label string) bool {
	if !headingPattern.MatchString(line) {
		return false
	}
	inner := strings.TrimSpace(strings.TrimLeft(line, "# "))
	inner = strings.TrimRight(inner, ": ")
	return strings.EqualFold(inner, label)
}

// extractBulletSection returns the cleaned bullet items under the first
// matching section label. Table rows, separators and blank lines are
// excluded; leading bullet markers are stripped.
func extractBulletSection(text string, labels []string) []string {
	lines := strings.Split(text, "\n")
	start := sectionStart(lines, labels)
	if start < 0 {
		return nil
	}

	var items []string
	for _, line := range lines[start:] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			// blank lines separate bullets, they do not end the section
			continue
		}
		if headingPattern.MatchString(trimmed) || boldLabelPattern.MatchString(trimmed) {
			break // next section
		}
		if strings.HasPrefix(trimmed, "|") || separatorPattern.MatchString(trimmed) {
			continue
		}
		item := strings.TrimSpace(bulletMarkerPattern.ReplaceAllString(trimmed, ""))
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// extractRiskSection collects the lines of a "## Risks" style section,
// keeping only substantive lines (longer than 10 characters).
func extractRiskSection(text string, labels []string) []string {
	var risks []string
	for _, line := range extractBulletSection(text, labels) {
		if len(line) > 10 {
			risks = append(risks, line)
		}
	}
	return risks
}
