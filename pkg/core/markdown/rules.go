package markdown

import (
	"regexp"

	"portfolio_dashboard/pkg/core/saul"
)

// Three historical conventions for recording rule checks, tried in order.
// First match wins per rule id; later patterns only fill gaps.
//
//  1. pipe table with a bracketed status:   | R_001 | no debt | [PASS] |
//  2. pipe table with a status glyph:       | R_001 | ✅ PASS | ... |
//  3. inline bold:                          **R_001 - no debt: PASS**
var (
	ruleBracketTablePattern = regexp.MustCompile(
		`(?m)^\|\s*(R[_-]?\d+[A-Za-z]?)\s*\|[^\[\n]*\[\s*([A-Za-z][A-Za-z /_-]*?)\s*\]`)

	ruleGlyphTablePattern = regexp.MustCompile(
		`(?m)^\|\s*(R[_-]?\d+[A-Za-z]?)\s*\|\s*[^\x00-\x7F|]+\s*([A-Za-z][A-Za-z /_-]*?)\s*\|`)

	ruleInlineBoldPattern = regexp.MustCompile(
		`\*\*\s*(R[_-]?\d+[A-Za-z]?)\s*[-–—]\s*[^:*\n]*:\s*([A-Za-z][A-Za-z /_-]*?)\s*\*\*`)
)

var rulePatterns = []*regexp.Regexp{
	ruleBracketTablePattern,
	ruleGlyphTablePattern,
	ruleInlineBoldPattern,
}

// ExtractRuleStatuses pulls every recognizable rule check out of the
// document. Rule ids are canonicalized (R_0NN form); statuses outside the
// recognized token set are dropped.
func ExtractRuleStatuses(text string) map[string]string {
	rules := make(map[string]string)
	for _, pattern := range rulePatterns {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			id := saul.NormalizeRuleID(m[1])
			status := saul.NormalizeStatus(m[2])
			if id == "" || status == "" {
				continue
			}
			if _, seen := rules[id]; !seen {
				rules[id] = status
			}
		}
	}
	if len(rules) == 0 {
		return nil
	}
	return rules
}
