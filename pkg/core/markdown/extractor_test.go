package markdown

import (
	"math"
	"testing"
)

const sampleBolded = `# NVDA — Deep Dive

**Ticker:** NVDA
**Date:** 2025-11-14
**Price:** $80.00
**Market Cap:** $4.2B
**Verdict:** STRONG PASS
**Conviction Score:** 8.5

## Financials

**Revenue:** $310.4M (+62.5% YoY, +8.1% QoQ)
- Gross Margin: 71.0%
- Net Margin: 12.5%
- EBITDA Margin: 24.0%
- Operating Leverage: 1.8
- Free Cash Flow: $45.2M
- FCF Margin: 14.6%
- Dilution: 2.1%

## Valuation

- Trailing P/E: 45.20
- Run-Rate P/E: 26.78
- Forward P/E: 21.10
- Normalized P/E: 30.00
- Price-to-Sales: 13.5

## Unit Economics

- CAC: $120
- ARPU: $38

## Quarterly Revenue

- Q3 2025: $310.4M (+62.5% YoY, +8.1% QoQ)
- Q2 2025: $287.1M (+58.2% YoY, +6.4% QoQ)
- Q1 2025: $269.8M (+54.0% YoY, +3.1% QoQ)

**Bull Case**
- Category-leading growth with expanding margins
- Net revenue retention above 120%

**Bear Case**
- Valuation leaves no room for execution slips
- Competition from hyperscaler in-house silicon

## Risks & Concerns

- Customer concentration above 20% of revenue
- FX headwinds in international segments
- tbd
`

const samplePlain = `NVDA analysis

Ticker: NVDA
Date: 2025-11-14
Price: $80.00
Market Cap: 4200M

### Verdict: STRONG PASS

Revenue: $310.4M (+62.5% YoY)
`

func fEq(a, b float64) bool { return math.Abs(a-b) < 0.001 }

func TestExtractAnalysisEmpty(t *testing.T) {
	if got := ExtractAnalysis("", "NVDA"); got != nil {
		t.Errorf("expected nil for empty input, got %+v", got)
	}
	if got := ExtractAnalysis("   \n  ", "NVDA"); got != nil {
		t.Errorf("expected nil for whitespace input, got %+v", got)
	}
}

func TestExtractAnalysisBoldedConvention(t *testing.T) {
	rec := ExtractAnalysis(sampleBolded, "")
	if rec == nil {
		t.Fatal("nil record")
	}
	if rec.Ticker != "NVDA" {
		t.Errorf("ticker = %q", rec.Ticker)
	}
	if rec.FetchDate == nil || *rec.FetchDate != "2025-11-14" {
		t.Errorf("date = %v", rec.FetchDate)
	}
	if rec.Price == nil || !fEq(*rec.Price, 80) {
		t.Errorf("price = %v", rec.Price)
	}
	if rec.MarketCapMil == nil || !fEq(*rec.MarketCapMil, 4200) {
		t.Errorf("market cap = %v", rec.MarketCapMil)
	}
	if rec.Verdict == nil || *rec.Verdict != "STRONG PASS" {
		t.Errorf("verdict = %v", rec.Verdict)
	}
	if rec.ConvictionScore == nil || !fEq(*rec.ConvictionScore, 8.5) {
		t.Errorf("conviction = %v", rec.ConvictionScore)
	}
	if rec.RevenueRecentMil == nil || !fEq(*rec.RevenueRecentMil, 310.4) {
		t.Errorf("revenue = %v", rec.RevenueRecentMil)
	}
	if rec.RevenueYoyPct == nil || !fEq(*rec.RevenueYoyPct, 62.5) {
		t.Errorf("yoy = %v", rec.RevenueYoyPct)
	}
	if rec.RevenueQoqPct == nil || !fEq(*rec.RevenueQoqPct, 8.1) {
		t.Errorf("qoq = %v", rec.RevenueQoqPct)
	}
	if rec.GrossMarginPct == nil || !fEq(*rec.GrossMarginPct, 71) {
		t.Errorf("gross margin = %v", rec.GrossMarginPct)
	}
	if rec.NetMarginPct == nil || !fEq(*rec.NetMarginPct, 12.5) {
		t.Errorf("net margin = %v", rec.NetMarginPct)
	}
	if rec.OperatingLeverage == nil || !fEq(*rec.OperatingLeverage, 1.8) {
		t.Errorf("op leverage = %v", rec.OperatingLeverage)
	}
	if rec.FreeCashFlowMil == nil || !fEq(*rec.FreeCashFlowMil, 45.2) {
		t.Errorf("fcf = %v", rec.FreeCashFlowMil)
	}
	if rec.DilutionPct == nil || !fEq(*rec.DilutionPct, 2.1) {
		t.Errorf("dilution = %v", rec.DilutionPct)
	}
	if rec.TrailingPe == nil || !fEq(*rec.TrailingPe, 45.2) {
		t.Errorf("trailing pe = %v", rec.TrailingPe)
	}
	if rec.RunRatePe == nil || !fEq(*rec.RunRatePe, 26.78) {
		t.Errorf("run rate pe = %v", rec.RunRatePe)
	}
	// Compression deltas rounded to 2 decimals.
	if rec.TrailingToRunRate == nil || !fEq(*rec.TrailingToRunRate, 18.42) {
		t.Errorf("trailing->runrate = %v", rec.TrailingToRunRate)
	}
	if rec.RunRateToForward == nil || !fEq(*rec.RunRateToForward, 5.68) {
		t.Errorf("runrate->forward = %v", rec.RunRateToForward)
	}
	// CAC/ARPU ratio rounded to 1 decimal: 120/38 = 3.157 -> 3.2
	if rec.CacToArpu == nil || !fEq(*rec.CacToArpu, 3.2) {
		t.Errorf("cac/arpu = %v", rec.CacToArpu)
	}
	if len(rec.BullCase) != 2 {
		t.Errorf("bull case = %v", rec.BullCase)
	}
	if len(rec.BearCase) != 2 {
		t.Errorf("bear case = %v", rec.BearCase)
	}
	// "tbd" is under 10 characters and dropped from risks.
	if len(rec.Risks) != 2 {
		t.Errorf("risks = %v", rec.Risks)
	}
	if len(rec.QuarterlyHistory) != 3 {
		t.Fatalf("history = %v", rec.QuarterlyHistory)
	}
	if rec.QuarterlyHistory[0].Quarter != "Q3 2025" {
		t.Errorf("history[0] = %q", rec.QuarterlyHistory[0].Quarter)
	}
	if rec.QuarterlyHistory[1].RevenueMil == nil || !fEq(*rec.QuarterlyHistory[1].RevenueMil, 287.1) {
		t.Errorf("history[1] revenue = %v", rec.QuarterlyHistory[1].RevenueMil)
	}
}

func TestExtractAnalysisPlainConvention(t *testing.T) {
	rec := ExtractAnalysis(samplePlain, "")
	if rec == nil {
		t.Fatal("nil record")
	}
	if rec.Ticker != "NVDA" {
		t.Errorf("ticker = %q", rec.Ticker)
	}
	if rec.Price == nil || !fEq(*rec.Price, 80) {
		t.Errorf("price = %v", rec.Price)
	}
	if rec.MarketCapMil == nil || !fEq(*rec.MarketCapMil, 4200) {
		t.Errorf("market cap = %v", rec.MarketCapMil)
	}
	if rec.Verdict == nil || *rec.Verdict != "STRONG PASS" {
		t.Errorf("verdict = %v", rec.Verdict)
	}
	if rec.RevenueYoyPct == nil || !fEq(*rec.RevenueYoyPct, 62.5) {
		t.Errorf("yoy = %v", rec.RevenueYoyPct)
	}
	if rec.RevenueQoqPct != nil {
		t.Errorf("qoq should be nil without a QoQ clause, got %v", *rec.RevenueQoqPct)
	}
}

func TestExtractVerdictWhitelist(t *testing.T) {
	rec := ExtractAnalysis("**Verdict:** MAYBE\n", "T")
	if rec.Verdict != nil {
		t.Errorf("non-whitelisted verdict kept: %v", *rec.Verdict)
	}
	rec = ExtractAnalysis("**Verdict:** watch\n", "T")
	if rec.Verdict == nil || *rec.Verdict != "WATCH" {
		t.Errorf("verdict = %v, want WATCH", rec.Verdict)
	}
}

func TestExtractQuarterHistoryRawDollars(t *testing.T) {
	rec := ExtractAnalysis("- Q1 2024: $250000000 (+40% YoY)\n", "T")
	if len(rec.QuarterlyHistory) != 1 {
		t.Fatalf("history = %v", rec.QuarterlyHistory)
	}
	if got := rec.QuarterlyHistory[0].RevenueMil; got == nil || !fEq(*got, 250) {
		t.Errorf("raw-dollar quarter revenue = %v, want 250", got)
	}
}

func TestExtractQuarterHistorySuffixes(t *testing.T) {
	rec := ExtractAnalysis("- Q1 2024: $1.2B (+40% YoY)\n- Q4 2023: $950K\n", "T")
	if len(rec.QuarterlyHistory) != 2 {
		t.Fatalf("history = %v", rec.QuarterlyHistory)
	}
	if got := rec.QuarterlyHistory[0].RevenueMil; got == nil || !fEq(*got, 1200) {
		t.Errorf("B-suffix revenue = %v, want 1200", got)
	}
	if got := rec.QuarterlyHistory[1].RevenueMil; got == nil || !fEq(*got, 0.95) {
		t.Errorf("K-suffix revenue = %v, want 0.95", got)
	}
}

func TestBulletSectionSpansBlankLines(t *testing.T) {
	doc := `**Bull Case**
- category leadership with pricing power

- margin expansion still ahead of plan

**Bear Case**
- customer concentration risk
`
	rec := ExtractAnalysis(doc, "T")
	if len(rec.BullCase) != 2 {
		t.Errorf("bull case = %v, want both bullets across the gap", rec.BullCase)
	}
	if len(rec.BearCase) != 1 {
		t.Errorf("bear case = %v", rec.BearCase)
	}
}

func TestRuleExtractionThreeFormatsAgree(t *testing.T) {
	bracketTable := `
| Rule | Check | Status |
|------|-------|--------|
| R_001 | No outstanding debt | [PASS] |
`
	glyphTable := `
| Rule | Status | Notes |
|------|--------|-------|
| R-1 | ✅ PASS | clean balance sheet |
`
	inlineBold := `
**R_001 - no outstanding debt: PASS**
`
	for name, doc := range map[string]string{
		"bracket": bracketTable,
		"glyph":   glyphTable,
		"inline":  inlineBold,
	} {
		rules := ExtractRuleStatuses(doc)
		if rules == nil || rules["R_001"] != "PASS" {
			t.Errorf("[%s] rules = %v, want {R_001: PASS}", name, rules)
		}
		if len(rules) != 1 {
			t.Errorf("[%s] extra rules: %v", name, rules)
		}
	}
}

func TestRuleExtractionFirstMatchWins(t *testing.T) {
	doc := `
| R_001 | something | [PASS] |

**R_001 - same rule restated: FAIL**
**R_002 - only inline: CAUTION**
`
	rules := ExtractRuleStatuses(doc)
	if rules["R_001"] != "PASS" {
		t.Errorf("R_001 = %q, want PASS (table wins over inline)", rules["R_001"])
	}
	if rules["R_002"] != "CAUTION" {
		t.Errorf("R_002 = %q, want CAUTION (later pattern fills gap)", rules["R_002"])
	}
}

func TestRuleExtractionNormalizesStatuses(t *testing.T) {
	doc := "**R_003 - data check: insufficient data**\n**R_004 - unknown token: MAYBE**\n"
	rules := ExtractRuleStatuses(doc)
	if rules["R_003"] != "INSUFFICIENT_DATA" {
		t.Errorf("R_003 = %q", rules["R_003"])
	}
	if _, ok := rules["R_004"]; ok {
		t.Error("unrecognized status token should be dropped")
	}
}
