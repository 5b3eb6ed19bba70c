package merge

import (
	"strings"

	"portfolio_dashboard/pkg/core/markdown"
	"portfolio_dashboard/pkg/core/metrics"
	"portfolio_dashboard/pkg/core/saul"
	"portfolio_dashboard/pkg/models"
)

// =============================================================================
// MERGE / RECONCILIATION
// =============================================================================

// Reconcile combines a JSON-normalized record and a Markdown-extracted
// analysis into the unified entity. JSON fields are authoritative; a
// Markdown value is copied in only where the JSON field is absent,
// field by field, never wholesale. Returns nil when both inputs are
// nil.
func Reconcile(jsonRec *models.CompanyRecord, mdRec *markdown.AnalysisRecord) *models.CompanyRecord {
	if jsonRec == nil && mdRec == nil {
		return nil
	}

	var rec *models.CompanyRecord
	if jsonRec == nil {
		rec = recordFromMarkdown(mdRec)
	} else {
		rec = jsonRec.Clone()
		if mdRec != nil {
			fillGaps(rec, mdRec)
		}
	}

	// A price gap-filled from the Markdown source is still a report
	// price; only the overlay marks a price as live.
	if rec.Price != nil && rec.PriceSource == "" {
		rec.PriceSource = models.PriceSourceReport
	}

	synthesizeHistory(rec)
	annotateCalendarQuarters(rec)

	rec.SaulSummary = saul.ScoreRules(rec.SaulRules)
	rec.Calculated = metrics.Compute(rec)
	return rec
}

// recordFromMarkdown builds a minimal record when no JSON source
// existed. Fields the Markdown cannot supply stay at their zero value
// and the record is flagged so the rendering layer can label it.
func recordFromMarkdown(md *markdown.AnalysisRecord) *models.CompanyRecord {
	rec := &models.CompanyRecord{
		Ticker:       strings.ToUpper(md.Ticker),
		MarkdownOnly: true,
		DebtLevel:    models.DebtUnknown,
	}
	fillGaps(rec, md)
	return rec
}

// fillGaps copies Markdown values into record fields that are still
// empty. Only fields the unified entity carries participate; the
// analysis-only extras (CAC, ARPU, FCF margin) stay on the
// AnalysisRecord, which callers receive alongside the record.
func fillGaps(rec *models.CompanyRecord, md *markdown.AnalysisRecord) {
	fillString(&rec.FetchDate, md.FetchDate)
	fillFloat(&rec.Price, md.Price)
	fillFloat(&rec.MarketCapMil, md.MarketCapMil)
	fillString(&rec.Verdict, md.Verdict)
	fillFloat(&rec.ConvictionScore, md.ConvictionScore)

	fillFloat(&rec.RevenueRecentMil, md.RevenueRecentMil)
	fillFloat(&rec.RevenueYoyPct, md.RevenueYoyPct)
	fillFloat(&rec.RevenueQoqPct, md.RevenueQoqPct)
	fillFloat(&rec.GrossMarginPct, md.GrossMarginPct)
	fillFloat(&rec.EbitdaMarginPct, md.EbitdaMarginPct)
	fillFloat(&rec.FreeCashFlowMil, md.FreeCashFlowMil)

	fillFloat(&rec.TrailingPe, md.TrailingPe)
	fillFloat(&rec.RunRatePe, md.RunRatePe)
	fillFloat(&rec.ForwardPe, md.ForwardPe)
	fillFloat(&rec.NormalizedPe, md.NormalizedPe)
	fillFloat(&rec.PriceToSales, md.PriceToSales)
	fillFloat(&rec.TrailingToRunRatePe, md.TrailingToRunRate)
	fillFloat(&rec.RunRateToForwardPe, md.RunRateToForward)

	if len(rec.KeyStrengths) == 0 {
		rec.KeyStrengths = md.BullCase
	}
	if len(rec.KeyConcerns) == 0 {
		rec.KeyConcerns = md.BearCase
	}
	if len(rec.RiskFactors) == 0 {
		for _, r := range md.Risks {
			rec.RiskFactors = append(rec.RiskFactors, models.RiskFactor{Description: r})
		}
	}
	if len(rec.SaulRules) == 0 && len(md.Rules) > 0 {
		rec.SaulRules = md.Rules
	}
	if len(rec.QuarterlyHistory) == 0 && len(md.QuarterlyHistory) > 0 {
		rec.QuarterlyHistory = append([]models.QuarterEntry(nil), md.QuarterlyHistory...)
	}
}

// synthesizeHistory fabricates a single "Latest" history entry when
// neither source carried quarterly history but a current YoY figure
// exists, so downstream heatmaps always have at least one cell.
func synthesizeHistory(rec *models.CompanyRecord) {
	if len(rec.QuarterlyHistory) > 0 || rec.RevenueYoyPct == nil {
		return
	}
	label := "Latest"
	if rec.RevenueRecentLabel != nil && *rec.RevenueRecentLabel != "" {
		label = *rec.RevenueRecentLabel
	}
	rec.QuarterlyHistory = []models.QuarterEntry{{
		Quarter:       label,
		RevenueMil:    rec.RevenueRecentMil,
		RevenueYoyPct: rec.RevenueYoyPct,
		RevenueQoqPct: rec.RevenueQoqPct,
	}}
}

// annotateCalendarQuarters derives calendar-quarter labels for entries
// that have a quarter-end date but no label yet.
func annotateCalendarQuarters(rec *models.CompanyRecord) {
	for i := range rec.QuarterlyHistory {
		e := &rec.QuarterlyHistory[i]
		if e.CalendarQuarter == "" && e.QuarterEnd != "" {
			e.CalendarQuarter = CalendarQuarterFromEnd(e.QuarterEnd)
		}
	}
}

func fillFloat(dst **float64, src *float64) {
	if *dst == nil && src != nil {
		v := *src
		*dst = &v
	}
}

func fillString(dst **string, src *string) {
	if (*dst == nil || **dst == "") && src != nil && *src != "" {
		v := *src
		*dst = &v
	}
}
