// Package markdown regex-extracts analysis fields from free-form research
// notes. Every field has a fixed priority-ordered pattern list covering
// the historical formatting conventions; extractors are independent pure
// functions over the text, so a field failing to match never affects the
// others.
package markdown

import (
	"math"
	"regexp"
	"strings"

	"portfolio_dashboard/pkg/core/coerce"
	"portfolio_dashboard/pkg/models"
)

// AnalysisRecord is the markdown-derived candidate for a company. It is
// merged into the JSON-normalized record with JSON taking precedence.
type AnalysisRecord struct {
	Ticker    string  `json:"ticker"`
	FetchDate *string `json:"fetch_date,omitempty"`

	Price        *float64 `json:"price,omitempty"`
	MarketCapMil *float64 `json:"market_cap_mil,omitempty"`

	Verdict         *string  `json:"verdict,omitempty"`
	ConvictionScore *float64 `json:"conviction_score,omitempty"`

	RevenueRecentMil *float64 `json:"revenue_recent_mil,omitempty"`
	RevenueYoyPct    *float64 `json:"revenue_yoy_pct,omitempty"`
	RevenueQoqPct    *float64 `json:"revenue_qoq_pct,omitempty"`
	GrossMarginPct   *float64 `json:"gross_margin_pct,omitempty"`
	NetMarginPct     *float64 `json:"net_margin_pct,omitempty"`
	EbitdaMarginPct  *float64 `json:"ebitda_margin_pct,omitempty"`

	OperatingLeverage *float64 `json:"operating_leverage,omitempty"`
	FreeCashFlowMil   *float64 `json:"free_cash_flow_mil,omitempty"`
	FcfMarginPct      *float64 `json:"fcf_margin_pct,omitempty"`
	DilutionPct       *float64 `json:"dilution_pct,omitempty"`

	TrailingPe   *float64 `json:"trailing_pe,omitempty"`
	RunRatePe    *float64 `json:"run_rate_pe,omitempty"`
	ForwardPe    *float64 `json:"forward_pe,omitempty"`
	NormalizedPe *float64 `json:"normalized_pe,omitempty"`
	PriceToSales *float64 `json:"price_to_sales,omitempty"`

	// Compression deltas derived at extraction time, 2-decimal rounded.
	TrailingToRunRate *float64 `json:"trailing_to_run_rate,omitempty"`
	RunRateToForward  *float64 `json:"run_rate_to_forward,omitempty"`

	// Unit economics
	CacDollars  *float64 `json:"cac_dollars,omitempty"`
	ArpuDollars *float64 `json:"arpu_dollars,omitempty"`
	CacToArpu   *float64 `json:"cac_to_arpu,omitempty"` // 1-decimal rounded

	Rules map[string]string `json:"rules,omitempty"`

	BullCase []string `json:"bull_case,omitempty"`
	BearCase []string `json:"bear_case,omitempty"`
	Risks    []string `json:"risks,omitempty"`

	QuarterlyHistory []models.QuarterEntry `json:"quarterly_history,omitempty"`
}

var validVerdicts = map[string]bool{
	"PASS":         true,
	"CAUTION":      true,
	"DISQUALIFIED": true,
	"FAIL":         true,
	"STRONG PASS":  true,
	"WATCH":        true,
}

// Per-field pattern lists. Index 0 is the current bolded convention,
// later entries cover the older plain "Label: value" style.
var (
	tickerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\*\*ticker\s*:?\s*\*\*\s*:?\s*\$?([A-Z]{1,6})\b`),
		regexp.MustCompile(`(?m)^[-*\s]*[Tt]icker\s*:\s*\$?([A-Z]{1,6})\b`),
		regexp.MustCompile(`(?m)^#\s{0,3}\$?([A-Z]{1,6})(?:\s*[-–—(:]|\s*$)`),
	}
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\*\*(?:fetch\s+|analysis\s+)?date\s*:?\s*\*\*\s*:?\s*(\d{4}-\d{2}-\d{2})`),
		regexp.MustCompile(`(?im)^[-*\s]*(?:fetch\s+|analysis\s+)?date\s*:\s*(\d{4}-\d{2}-\d{2})`),
	}
	pricePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\*\*(?:current\s+|share\s+)?price\s*:?\s*\*\*\s*:?\s*\$?([\d,]+(?:\.\d+)?)`),
		regexp.MustCompile(`(?im)^[-*\s]*(?:current\s+|share\s+)?price\s*:\s*\$?([\d,]+(?:\.\d+)?)`),
	}
	marketCapPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\*\*market\s*cap(?:italization)?\s*:?\s*\*\*\s*:?\s*\$?([\d,.]+\s*[BbMmKk]?)\b`),
		regexp.MustCompile(`(?im)^[-*\s]*market\s*cap(?:italization)?\s*:\s*\$?([\d,.]+\s*[BbMmKk]?)\b`),
	}
	verdictPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\*\*verdict\s*:?\s*\*\*\s*:?\s*\*{0,2}\s*([A-Za-z][A-Za-z ]*?[A-Za-z])\s*\*{0,2}\s*(?:$|\n)`),
		regexp.MustCompile(`(?im)^#{1,4}\s*verdict\s*[:\-]\s*(.+?)\s*$`),
		regexp.MustCompile(`(?im)^[-*\s]*verdict\s*:\s*(.+?)\s*$`),
	}
	convictionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\*\*conviction(?:\s*score)?\s*:?\s*\*\*\s*:?\s*([\d.]+)`),
		regexp.MustCompile(`(?im)^[-*\s]*conviction(?:\s*score)?\s*:\s*([\d.]+)`),
	}

	// Revenue with optional growth, one combined pattern per convention:
	// "**Revenue:** $310.4M (+62.5% YoY, +8.1% QoQ)"
	revenuePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\*\*revenue(?:\s*\(recent[^)]*\))?\s*:?\s*\*\*\s*:?\s*\$?([\d,.]+\s*[BbMmKk]?)\s*(?:\(\s*([+-]?[\d.]+)%\s*YoY\s*(?:,\s*([+-]?[\d.]+)%\s*QoQ\s*)?\))?`),
		regexp.MustCompile(`(?im)^[-*\s]*revenue(?:\s*\(recent[^)]*\))?\s*:\s*\$?([\d,.]+\s*[BbMmKk]?)\s*(?:\(\s*([+-]?[\d.]+)%\s*YoY\s*(?:,\s*([+-]?[\d.]+)%\s*QoQ\s*)?\))?`),
	}

	grossMarginPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)gross\s*margin[^:\n]*:\s*\*{0,2}\s*(-?[\d.]+)\s*%`),
	}
	netMarginPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)net\s*(?:income\s*)?margin[^:\n]*:\s*\*{0,2}\s*(-?[\d.]+)\s*%`),
	}
	ebitdaMarginPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)ebitda\s*margin[^:\n]*:\s*\*{0,2}\s*(-?[\d.]+)\s*%`),
	}
	operatingLeveragePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)operating\s*leverage[^:\n]*:\s*\*{0,2}\s*(-?[\d.]+)`),
	}
	fcfPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)free\s*cash\s*flow[^:\n]*:\s*\*{0,2}\s*(\(?-?\$?[\d,.]+\s*[BbMmKk]?\)?)`),
		regexp.MustCompile(`(?m)\bFCF\s*:\s*(\(?-?\$?[\d,.]+\s*[BbMmKk]?\)?)`),
	}
	fcfMarginPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)fcf\s*margin[^:\n]*:\s*\*{0,2}\s*(-?[\d.]+)\s*%`),
	}
	dilutionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:share\s*)?dilution[^:\n]*:\s*\*{0,2}\s*(-?[\d.]+)\s*%`),
	}

	trailingPePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)trailing\s*p/?e[^:\n]*:\s*\*{0,2}\s*([\d,.]+)`),
	}
	runRatePePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)run[\s-]?rate\s*p/?e[^:\n]*:\s*\*{0,2}\s*([\d,.]+)`),
	}
	forwardPePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)forward\s*p/?e[^:\n]*:\s*\*{0,2}\s*([\d,.]+)`),
	}
	normalizedPePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)normalized\s*p/?e[^:\n]*:\s*\*{0,2}\s*([\d,.]+)`),
	}
	priceToSalesPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)price[\s/-]*to[\s/-]*sales[^:\n]*:\s*\*{0,2}\s*([\d,.]+)`),
		regexp.MustCompile(`(?i)\bp/?s\s*ratio[^:\n]*:\s*\*{0,2}\s*([\d,.]+)`),
	}

	cacPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?m)\bCAC\b[^:\n]*:\s*\*{0,2}\s*\$?([\d,.]+)`),
	}
	arpuPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?m)\bARPU\b[^:\n]*:\s*\*{0,2}\s*\$?([\d,.]+)`),
	}

	// "- Q3 2025: $250M (+51% YoY, +9% QoQ)"
	quarterLinePattern = regexp.MustCompile(
		`(?im)^\s*[-*]\s*(Q[1-4]\s*(?:FY)?\s*'?\d{2,4})\s*:\s*\$?([\d,.]+)\s*([BbMmKk])?\s*(?:\(\s*([+-]?[\d.]+)%\s*YoY\s*(?:,\s*([+-]?[\d.]+)%\s*QoQ\s*)?\))?`)
)

var bullCaseLabels = []string{"Bull Case", "Key Strengths", "Bull Thesis"}
var bearCaseLabels = []string{"Bear Case", "Key Concerns", "Bear Thesis"}
var riskLabels = []string{"Risks", "Risks & Concerns", "Risks and Concerns"}

// ExtractAnalysis parses an analysis document. fallbackTicker (usually the
// directory name) is used when the text itself names no ticker. Returns
// nil for empty input.
func ExtractAnalysis(text string, fallbackTicker string) *AnalysisRecord {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	rec := &AnalysisRecord{
		Ticker: strings.ToUpper(strings.TrimSpace(fallbackTicker)),
	}
	if t := firstMatch(text, tickerPatterns); t != "" {
		rec.Ticker = strings.ToUpper(t)
	}
	rec.FetchDate = firstMatchPtr(text, datePatterns)
	rec.Price = firstNumber(text, pricePatterns)
	rec.MarketCapMil = firstMillions(text, marketCapPatterns)
	rec.Verdict = extractVerdict(text)
	rec.ConvictionScore = firstNumber(text, convictionPatterns)

	extractRevenue(text, rec)

	rec.GrossMarginPct = firstNumber(text, grossMarginPatterns)
	rec.NetMarginPct = firstNumber(text, netMarginPatterns)
	rec.EbitdaMarginPct = firstNumber(text, ebitdaMarginPatterns)
	rec.OperatingLeverage = firstNumber(text, operatingLeveragePatterns)
	rec.FreeCashFlowMil = firstMillions(text, fcfPatterns)
	rec.FcfMarginPct = firstNumber(text, fcfMarginPatterns)
	rec.DilutionPct = firstNumber(text, dilutionPatterns)

	rec.TrailingPe = firstNumber(text, trailingPePatterns)
	rec.RunRatePe = firstNumber(text, runRatePePatterns)
	rec.ForwardPe = firstNumber(text, forwardPePatterns)
	rec.NormalizedPe = firstNumber(text, normalizedPePatterns)
	rec.PriceToSales = firstNumber(text, priceToSalesPatterns)
	if rec.TrailingPe != nil && rec.RunRatePe != nil {
		rec.TrailingToRunRate = round2p(*rec.TrailingPe - *rec.RunRatePe)
	}
	if rec.RunRatePe != nil && rec.ForwardPe != nil {
		rec.RunRateToForward = round2p(*rec.RunRatePe - *rec.ForwardPe)
	}

	rec.CacDollars = firstNumber(text, cacPatterns)
	rec.ArpuDollars = firstNumber(text, arpuPatterns)
	if rec.CacDollars != nil && rec.ArpuDollars != nil && *rec.ArpuDollars != 0 {
		ratio := math.Round(*rec.CacDollars / *rec.ArpuDollars * 10) / 10
		rec.CacToArpu = &ratio
	}

	rec.Rules = ExtractRuleStatuses(text)
	rec.BullCase = extractBulletSection(text, bullCaseLabels)
	rec.BearCase = extractBulletSection(text, bearCaseLabels)
	rec.Risks = extractRiskSection(text, riskLabels)
	rec.QuarterlyHistory = extractQuarterHistory(text)

	return rec
}

func firstMatch(text string, patterns []*regexp.Regexp) string {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func firstMatchPtr(text string, patterns []*regexp.Regexp) *string {
	if s := firstMatch(text, patterns); s != "" {
		return &s
	}
	return nil
}

func firstNumber(text string, patterns []*regexp.Regexp) *float64 {
	if s := firstMatch(text, patterns); s != "" {
		return coerce.Number(s)
	}
	return nil
}

func firstMillions(text string, patterns []*regexp.Regexp) *float64 {
	if s := firstMatch(text, patterns); s != "" {
		return coerce.ToMillions(s)
	}
	return nil
}

func extractVerdict(text string) *string {
	raw := firstMatch(text, verdictPatterns)
	if raw == "" {
		return nil
	}
	v := strings.ToUpper(strings.TrimSpace(strings.Trim(raw, "*")))
	if !validVerdicts[v] {
		return nil
	}
	return &v
}

func extractRevenue(text string, rec *AnalysisRecord) {
	for _, p := range revenuePatterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		rec.RevenueRecentMil = coerce.ToMillions(m[1])
		if len(m) > 2 && m[2] != "" {
			rec.RevenueYoyPct = coerce.Number(m[2])
		}
		if len(m) > 3 && m[3] != "" {
			rec.RevenueQoqPct = coerce.Number(m[3])
		}
		return
	}
}

func extractQuarterHistory(text string) []models.QuarterEntry {
	matches := quarterLinePattern.FindAllStringSubmatch(text, -1)
	if matches == nil {
		return nil
	}
	var history []models.QuarterEntry
	for _, m := range matches {
		entry := models.QuarterEntry{
			Quarter: normalizeQuarterLabel(m[1]),
			// suffix-aware; unsuffixed raw-dollar values are corrected
			// by the millions heuristic
			RevenueMil: coerce.ToMillions(m[2] + m[3]),
		}
		if m[4] != "" {
			entry.RevenueYoyPct = coerce.Number(m[4])
		}
		if m[5] != "" {
			entry.RevenueQoqPct = coerce.Number(m[5])
		}
		if entry.RevenueMil != nil {
			history = append(history, entry)
		}
	}
	return history
}

func normalizeQuarterLabel(label string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(label)), " ")
}

func round2p(f float64) *float64 {
	r := math.Round(f*100) / 100
	return &r
}
