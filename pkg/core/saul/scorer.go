// Package saul classifies named rule-check results into four fixed tiers
// and computes a weighted conviction score. The breakdown is shown to end
// users as an auditable trail, so every intermediate is carried in the
// summary and the arithmetic is deterministic.
package saul

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Tier membership is an explicit list, not inferred from rule numbers.
var (
	tier1Rules = []string{"R_001", "R_001A", "R_003", "R_006"}                   // hard disqualifiers
	tier2Rules = []string{"R_002", "R_004", "R_005", "R_007", "R_008", "R_009"}  // weighted factors
	tier3Rules = []string{"R_010", "R_011", "R_012", "R_013", "R_014", "R_015", // strength signals
		"R_016", "R_017"}
	tier4Rules = []string{"R_018", "R_019", "R_020", "R_021", "R_022", "R_023", "R_024"} // warnings/context
)

var tierOf = buildTierIndex()

func buildTierIndex() map[string]int {
	idx := make(map[string]int)
	for _, id := range tier1Rules {
		idx[id] = 1
	}
	for _, id := range tier2Rules {
		idx[id] = 2
	}
	for _, id := range tier3Rules {
		idx[id] = 3
	}
	for _, id := range tier4Rules {
		idx[id] = 4
	}
	return idx
}

// Statuses a rule check can carry. Whitespace in source documents is
// normalized to underscores before comparison.
const (
	StatusPass             = "PASS"
	StatusFail             = "FAIL"
	StatusWarning          = "WARNING"
	StatusCaution          = "CAUTION"
	StatusNA               = "N/A"
	StatusUnclear          = "UNCLEAR"
	StatusInsufficientData = "INSUFFICIENT_DATA"
	StatusPartial          = "PARTIAL"
	StatusContext          = "CONTEXT"
)

var knownStatuses = map[string]bool{
	StatusPass:             true,
	StatusFail:             true,
	StatusWarning:          true,
	StatusCaution:          true,
	StatusNA:               true,
	StatusUnclear:          true,
	StatusInsufficientData: true,
	StatusPartial:          true,
	StatusContext:          true,
	"DISQUALIFIED":         true,
	"DISQ":                 true,
}

// RuleResult is one rule's id and status inside a tier partition.
type RuleResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Summary is the full scoring breakdown. Score is clamped to [0,100].
type Summary struct {
	Tier1 []RuleResult `json:"tier1"`
	Tier2 []RuleResult `json:"tier2"`
	Tier3 []RuleResult `json:"tier3"`
	Tier4 []RuleResult `json:"tier4"`

	Base    int `json:"base"`
	Bonus   int `json:"bonus"`
	Penalty int `json:"penalty"`
	Score   int `json:"score"`

	Tier2Applicable int `json:"tier2_applicable"`
	Tier2Passes     int `json:"tier2_passes"`
	Tier3Passes     int `json:"tier3_passes"`
	Tier4Warnings   int `json:"tier4_warnings"`

	Disqualified bool   `json:"disqualified"`
	Conviction   string `json:"conviction"` // High | Medium | Low
}

var ruleIDPattern = regexp.MustCompile(`(?i)^R[_-]?0*(\d+)([A-Za-z]?)$`)

// NormalizeRuleID canonicalizes identifiers like "r-2a" or "R_01" to the
// zero-padded form "R_002A"/"R_001". Returns "" for anything else.
func NormalizeRuleID(id string) string {
	m := ruleIDPattern.FindStringSubmatch(strings.TrimSpace(id))
	if m == nil {
		return ""
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return ""
	}
	out := "R_" + pad3(n)
	if m[2] != "" {
		out += strings.ToUpper(m[2])
	}
	return out
}

func pad3(n int) string {
	s := strconv.Itoa(n)
	for len(s) < 3 {
		s = "0" + s
	}
	return s
}

// NormalizeStatus uppercases, trims, and converts interior whitespace to
// underscores. Unrecognized tokens yield "".
func NormalizeStatus(status string) string {
	s := strings.ToUpper(strings.TrimSpace(status))
	s = strings.Join(strings.Fields(s), "_")
	if !knownStatuses[s] {
		return ""
	}
	return s
}

// ScoreRules computes the tiered base+bonus-penalty score over a rule map.
// Returns nil for a nil or empty map. Unrecognized rule ids are dropped.
// Idempotent: the same map always yields the same summary.
func ScoreRules(rules map[string]string) *Summary {
	if len(rules) == 0 {
		return nil
	}

	sum := &Summary{}
	for _, id := range tier1Rules {
		appendIfPresent(&sum.Tier1, rules, id)
	}
	for _, id := range tier2Rules {
		appendIfPresent(&sum.Tier2, rules, id)
	}
	for _, id := range tier3Rules {
		appendIfPresent(&sum.Tier3, rules, id)
	}
	for _, id := range tier4Rules {
		appendIfPresent(&sum.Tier4, rules, id)
	}

	// Base: Tier 1 gates everything.
	switch {
	case len(sum.Tier1) == 0:
		sum.Base = 0
	case anyStatus(sum.Tier1, StatusFail, "DISQUALIFIED", "DISQ"):
		sum.Base = 0
		sum.Disqualified = true
	case anyStatus(sum.Tier1, StatusCaution, StatusWarning):
		sum.Base = 50
	default:
		sum.Base = 70
	}

	// Tier 2 bonus: share of passes among applicable rules, weighted 25.
	notApplicable := countStatus(sum.Tier2, StatusNA, StatusInsufficientData, StatusUnclear)
	sum.Tier2Applicable = len(sum.Tier2) - notApplicable
	sum.Tier2Passes = countStatus(sum.Tier2, StatusPass)
	if sum.Tier2Applicable > 0 {
		sum.Bonus = roundHalfUp(25 * float64(sum.Tier2Passes) / float64(sum.Tier2Applicable))
	}

	// Tier 4 penalty: 2 points per warning, capped at 10.
	sum.Tier4Warnings = countStatus(sum.Tier4, StatusWarning, StatusCaution)
	sum.Penalty = 2 * sum.Tier4Warnings
	if sum.Penalty > 10 {
		sum.Penalty = 10
	}

	if sum.Disqualified {
		// A Tier 1 failure zeroes the score regardless of other tiers.
		sum.Score = 0
	} else {
		sum.Score = clamp(sum.Base+sum.Bonus-sum.Penalty, 0, 100)
	}

	sum.Tier3Passes = countStatus(sum.Tier3, StatusPass)
	switch {
	case sum.Tier3Passes >= 5 && sum.Tier4Warnings <= 1:
		sum.Conviction = "High"
	case sum.Tier3Passes >= 3 && sum.Tier4Warnings <= 3:
		sum.Conviction = "Medium"
	default:
		sum.Conviction = "Low"
	}

	return sum
}

func appendIfPresent(dst *[]RuleResult, rules map[string]string, id string) {
	if status, ok := rules[id]; ok {
		*dst = append(*dst, RuleResult{ID: id, Status: normalizeForScoring(status)})
	}
}

func normalizeForScoring(status string) string {
	s := strings.ToUpper(strings.TrimSpace(status))
	return strings.Join(strings.Fields(s), "_")
}

func anyStatus(results []RuleResult, statuses ...string) bool {
	for _, r := range results {
		for _, s := range statuses {
			if r.Status == s {
				return true
			}
		}
	}
	return false
}

func countStatus(results []RuleResult, statuses ...string) int {
	n := 0
	for _, r := range results {
		for _, s := range statuses {
			if r.Status == s {
				n++
				break
			}
		}
	}
	return n
}

// roundHalfUp rounds .5 away from zero, matching the displayed breakdown.
func roundHalfUp(f float64) int {
	return int(math.Round(f))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
