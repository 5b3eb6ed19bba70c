// Package normalize maps any of the known report JSON schema shapes into
// the unified CompanyRecord. Field resolution is path fallback: an ordered
// list of candidate JSONPaths per field, first non-null hit wins. Missing
// paths are never an error.
package normalize

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"

	"portfolio_dashboard/pkg/core/coerce"
	"portfolio_dashboard/pkg/core/saul"
	"portfolio_dashboard/pkg/models"
)

// Normalize builds a CompanyRecord from a parsed report document.
// fallbackTicker (usually the report directory name) is used when the
// document itself carries no ticker. Returns nil only for a nil document.
func Normalize(doc map[string]interface{}, fallbackTicker string) *models.CompanyRecord {
	if doc == nil {
		return nil
	}

	rec := &models.CompanyRecord{
		Ticker:    strings.ToUpper(strings.TrimSpace(fallbackTicker)),
		DebtLevel: models.DebtUnknown,
	}
	if t := lookupString(doc, "ticker"); t != nil && *t != "" {
		rec.Ticker = strings.ToUpper(strings.TrimSpace(*t))
	}

	rec.CompanyName = lookupString(doc, "companyName")
	rec.FetchDate = lookupString(doc, "fetchDate")

	rec.Price = lookupNumber(doc, "price")
	rec.MarketCapMil = extractMarketCap(doc)
	rec.TrailingPe = lookupNumber(doc, "trailingPe")
	rec.RunRatePe = lookupNumber(doc, "runRatePe")
	rec.ForwardPe = lookupNumber(doc, "forwardPe")
	rec.NormalizedPe = lookupNumber(doc, "normalizedPe")
	rec.PriceToSales = lookupNumber(doc, "priceToSales")
	if rec.Price != nil {
		rec.PriceSource = models.PriceSourceReport
	}

	rec.RevenueRecentMil = lookupMillions(doc, "revenueRecentMil")
	rec.RevenueRecentLabel = lookupString(doc, "revenueRecentLabel")
	rec.RevenueYoyPct = lookupNumber(doc, "revenueYoyPct")
	rec.RevenueQoqPct = lookupNumber(doc, "revenueQoqPct")

	rec.GrossMarginPct = lookupNumber(doc, "grossMarginPct")
	rec.NetIncomeMil = lookupMillions(doc, "netIncomeMil")
	rec.NetIncomeYoyPct = lookupNumber(doc, "netIncomeYoyPct")
	rec.EbitdaMil = lookupMillions(doc, "ebitdaMil")
	rec.EbitdaYoyPct = lookupNumber(doc, "ebitdaYoyPct")
	rec.EbitdaMarginPct = lookupNumber(doc, "ebitdaMarginPct")
	rec.EpsDiluted = lookupNumber(doc, "epsDiluted")
	rec.CurrentlyProfitable = lookupBool(doc, "currentlyProfitable")

	rec.OperatingCashFlowMil = lookupMillions(doc, "operatingCashFlowMil")
	rec.CapitalExpenditureMil = lookupMillions(doc, "capitalExpenditureMil")
	rec.FreeCashFlowMil = lookupMillions(doc, "freeCashFlowMil")
	rec.CapexToOcfRatio = lookupNumber(doc, "capexToOcfRatio")
	rec.CashPositionMil = lookupMillions(doc, "cashPositionMil")
	rec.DebtLevel = extractDebtLevel(doc, rec.CashPositionMil)

	rec.FiftyTwoWeekHigh = lookupNumber(doc, "fiftyTwoWeekHigh")
	rec.FiftyTwoWeekLow = lookupNumber(doc, "fiftyTwoWeekLow")

	rec.BusinessDescription = lookupString(doc, "businessDescription")
	rec.RevenueModel = lookupString(doc, "revenueModel")
	rec.Products = lookupStringList(doc, "products")
	rec.Competitors = lookupString(doc, "competitors")
	rec.CompetitiveMoat = lookupString(doc, "competitiveMoat")
	rec.TamEstimate = lookupString(doc, "tamEstimate")
	rec.Headquarters = lookupString(doc, "headquarters")
	rec.CeoName = lookupString(doc, "ceoName")
	rec.CeoTitle = lookupString(doc, "ceoTitle")
	rec.InsiderOwnershipPct = lookupNumber(doc, "insiderOwnershipPct")
	rec.RecentInsiderBuying = lookupBool(doc, "recentInsiderBuying")
	rec.RecentInsiderSelling = lookupBool(doc, "recentInsiderSelling")
	rec.PrimaryGrowthDrivers = lookupStringList(doc, "primaryGrowthDrivers")
	rec.LatestQuarterHighlights = lookupStringList(doc, "latestQuarterHighlights")
	rec.Guidance = lookupString(doc, "guidance")
	rec.RecentNews = lookupStringList(doc, "recentNews")
	rec.RedFlags = lookupStringList(doc, "redFlags")
	rec.RiskFactors = extractRiskFactors(doc)

	if v := lookupString(doc, "verdict"); v != nil {
		up := strings.ToUpper(strings.TrimSpace(*v))
		rec.Verdict = &up
	}
	rec.ConvictionScore = lookupNumber(doc, "convictionScore")
	rec.ConfidenceLevel = lookupString(doc, "confidenceLevel")
	rec.KeyStrengths = lookupStringList(doc, "keyStrengths")
	rec.KeyConcerns = lookupStringList(doc, "keyConcerns")
	rec.SaulRules = extractSaulRules(doc)

	rec.QuarterlyHistory = extractQuarterlyHistory(doc)

	return rec
}

// lookup resolves the named field's candidate paths against the document,
// returning the first non-nil hit. List and map values come back as-is.
func lookup(doc map[string]interface{}, field string) interface{} {
	for _, path := range fieldPaths[field] {
		val, err := jsonpath.Get(path, interface{}(doc))
		if err != nil {
			continue // missing nested path, try the next candidate
		}
		if val != nil {
			return val
		}
	}
	return nil
}

// scalar unwraps a single-element list. Some legacy reports store a
// scalar field as a one-element array.
func scalar(v interface{}) interface{} {
	if list, ok := v.([]interface{}); ok {
		if len(list) != 1 {
			return nil
		}
		return list[0]
	}
	return v
}

func lookupString(doc map[string]interface{}, field string) *string {
	v := scalar(lookup(doc, field))
	if v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprintf("%v", v)
	}
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "n/a") {
		return nil
	}
	return &s
}

func lookupNumber(doc map[string]interface{}, field string) *float64 {
	return coerce.Number(scalar(lookup(doc, field)))
}

func lookupMillions(doc map[string]interface{}, field string) *float64 {
	return coerce.ToMillions(scalar(lookup(doc, field)))
}

func lookupBool(doc map[string]interface{}, field string) *bool {
	v := scalar(lookup(doc, field))
	switch b := v.(type) {
	case bool:
		return &b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "yes", "y":
			t := true
			return &t
		case "false", "no", "n":
			f := false
			return &f
		}
	}
	return nil
}

func lookupStringList(doc map[string]interface{}, field string) []string {
	v := lookup(doc, field)
	switch list := v.(type) {
	case []interface{}:
		var out []string
		for _, item := range list {
			if s, ok := item.(string); ok {
				s = strings.TrimSpace(s)
				if s != "" {
					out = append(out, s)
				}
			}
		}
		return out
	case string:
		// Some legacy reports store a comma-separated string.
		var out []string
		for _, part := range strings.Split(list, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return nil
}

// extractMarketCap prefers a pre-computed millions value, then billions
// (x1000), then a raw field whose magnitude decides the unit, then string
// coercion.
func extractMarketCap(doc map[string]interface{}) *float64 {
	if v := coerce.Number(scalar(lookup(doc, "marketCapPreMillions"))); v != nil {
		return v
	}
	if v := coerce.Number(scalar(lookup(doc, "marketCapPreBillions"))); v != nil {
		mc := *v * 1000
		return &mc
	}
	raw := scalar(lookup(doc, "marketCapRaw"))
	if raw == nil {
		return nil
	}
	if f, ok := raw.(float64); ok {
		var mc float64
		if f > 1e9 {
			mc = f / 1e6 // raw dollars
		} else if f > 1e6 {
			mc = f // already millions
		} else {
			mc = f
		}
		return &mc
	}
	return coerce.Number(raw)
}

// extractDebtLevel prefers an explicit enum string, else infers from a
// debt/cash ratio.
func extractDebtLevel(doc map[string]interface{}, cashMil *float64) string {
	if s := lookupString(doc, "debtLevel"); s != nil {
		switch strings.ToLower(strings.TrimSpace(*s)) {
		case models.DebtNone, models.DebtLow, models.DebtModerate, models.DebtHigh:
			return strings.ToLower(strings.TrimSpace(*s))
		}
	}

	debt := lookupMillions(doc, "debtMil")
	if debt == nil || *debt == 0 {
		return models.DebtNone
	}
	if cashMil == nil || *cashMil <= 0 {
		return models.DebtHigh
	}
	ratio := *debt / *cashMil
	switch {
	case ratio < 0.3:
		return models.DebtLow
	case ratio < 1.0:
		return models.DebtModerate
	default:
		return models.DebtHigh
	}
}

func extractSaulRules(doc map[string]interface{}) map[string]string {
	raw, ok := lookup(doc, "saulRules").(map[string]interface{})
	if !ok || len(raw) == 0 {
		return nil
	}
	rules := make(map[string]string)
	for id, v := range raw {
		canonical := saul.NormalizeRuleID(id)
		if canonical == "" {
			continue
		}
		var status string
		switch sv := v.(type) {
		case string:
			status = sv
		case map[string]interface{}:
			if s, ok := sv["status"].(string); ok {
				status = s
			}
		}
		status = strings.Join(strings.Fields(strings.ToUpper(strings.TrimSpace(status))), "_")
		if status != "" {
			rules[canonical] = status
		}
	}
	if len(rules) == 0 {
		return nil
	}
	return rules
}

func extractRiskFactors(doc map[string]interface{}) []models.RiskFactor {
	raw, ok := lookup(doc, "riskFactors").([]interface{})
	if !ok {
		return nil
	}
	var out []models.RiskFactor
	for _, item := range raw {
		switch rf := item.(type) {
		case string:
			if s := strings.TrimSpace(rf); s != "" {
				out = append(out, models.RiskFactor{Description: s})
			}
		case map[string]interface{}:
			factor := models.RiskFactor{}
			if s, ok := rf["category"].(string); ok {
				factor.Category = strings.TrimSpace(s)
			}
			for _, key := range []string{"description", "risk", "text"} {
				if s, ok := rf[key].(string); ok && strings.TrimSpace(s) != "" {
					factor.Description = strings.TrimSpace(s)
					break
				}
			}
			if s, ok := rf["severity"].(string); ok {
				factor.Severity = strings.ToLower(strings.TrimSpace(s))
			}
			if factor.Description != "" {
				out = append(out, factor)
			}
		}
	}
	return out
}

// history entry key candidates, per schema family
var quarterKeys = []string{"quarter", "period", "fiscal_quarter", "label"}
var quarterEndKeys = []string{"quarter_end", "period_end", "end_date", "quarterEnd"}
var revenueKeys = []string{"revenue_millions", "revenue_mil", "revenue", "revenueMil"}
var revenueYoyKeys = []string{"revenue_yoy_pct", "yoy_pct", "yoy", "revenueYoY"}
var revenueQoqKeys = []string{"revenue_qoq_pct", "qoq_pct", "qoq", "revenueQoQ"}
var qEbitdaKeys = []string{"ebitda_millions", "ebitda_mil", "ebitda"}
var qEbitdaMarginKeys = []string{"ebitda_margin_pct", "ebitda_margin"}
var qGrossMarginKeys = []string{"gross_margin_pct", "gross_margin"}

func extractQuarterlyHistory(doc map[string]interface{}) []models.QuarterEntry {
	raw, ok := lookup(doc, "quarterlyHistory").([]interface{})
	if !ok {
		return nil
	}
	var history []models.QuarterEntry
	for _, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		entry := models.QuarterEntry{
			RevenueMil:      coerce.ToMillions(firstKey(m, revenueKeys)),
			RevenueYoyPct:   coerce.Number(firstKey(m, revenueYoyKeys)),
			RevenueQoqPct:   coerce.Number(firstKey(m, revenueQoqKeys)),
			EbitdaMil:       coerce.ToMillions(firstKey(m, qEbitdaKeys)),
			EbitdaMarginPct: coerce.Number(firstKey(m, qEbitdaMarginKeys)),
			GrossMarginPct:  coerce.Number(firstKey(m, qGrossMarginKeys)),
		}
		if s, ok := firstKey(m, quarterKeys).(string); ok {
			entry.Quarter = strings.TrimSpace(s)
		}
		if s, ok := firstKey(m, quarterEndKeys).(string); ok {
			entry.QuarterEnd = strings.TrimSpace(s)
		}
		if entry.Quarter == "" && entry.RevenueMil == nil {
			continue
		}
		history = append(history, entry)
	}
	sortNewestFirst(history)
	return history
}

func firstKey(m map[string]interface{}, keys []string) interface{} {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// sortNewestFirst orders history by quarter-end date descending when the
// entries carry dates; otherwise source order is trusted.
func sortNewestFirst(history []models.QuarterEntry) {
	dated := 0
	for _, q := range history {
		if _, err := time.Parse("2006-01-02", q.QuarterEnd); err == nil {
			dated++
		}
	}
	if dated < 2 || dated != len(history) {
		return
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].QuarterEnd > history[j].QuarterEnd
	})
}
