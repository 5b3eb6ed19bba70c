// Package models defines the unified company record shared by the
// normalization, merge, and API layers.
package models

import "portfolio_dashboard/pkg/core/saul"

// PriceSource indicates where the current price of a record came from.
type PriceSource string

const (
	PriceSourceReport PriceSource = "report" // price as of the research report
	PriceSourceLive   PriceSource = "live"   // overlaid from the live feed
)

// Debt level classifications. "unknown" is the zero-information default.
const (
	DebtNone     = "none"
	DebtLow      = "low"
	DebtModerate = "moderate"
	DebtHigh     = "high"
	DebtUnknown  = "unknown"
)

// QuarterEntry is one row of a company's quarterly revenue history,
// ordered most-recent-first in CompanyRecord.QuarterlyHistory.
type QuarterEntry struct {
	Quarter         string   `json:"quarter"`                    // fiscal label as reported, e.g. "Q3 2025"
	CalendarQuarter string   `json:"calendar_quarter,omitempty"` // derived from QuarterEnd, never authoritative
	QuarterEnd      string   `json:"quarter_end,omitempty"`      // YYYY-MM-DD
	RevenueMil      *float64 `json:"revenue_mil,omitempty"`
	RevenueYoyPct   *float64 `json:"revenue_yoy_pct,omitempty"`
	RevenueQoqPct   *float64 `json:"revenue_qoq_pct,omitempty"`
	EbitdaMil       *float64 `json:"ebitda_mil,omitempty"`
	EbitdaMarginPct *float64 `json:"ebitda_margin_pct,omitempty"`
	GrossMarginPct  *float64 `json:"gross_margin_pct,omitempty"`
}

// RiskFactor is a single categorized risk from a research report.
type RiskFactor struct {
	Category    string `json:"category,omitempty"`
	Description string `json:"description"`
	Severity    string `json:"severity,omitempty"`
}

// Momentum captures sequential revenue acceleration/deceleration.
type Momentum struct {
	CurrentQoq float64 `json:"current_qoq"`
	PriorQoq   float64 `json:"prior_qoq"`
	Delta      float64 `json:"delta"`
	Trend      string  `json:"trend"` // "accelerating" | "stable" | "decelerating"
}

// PeCompression holds the deltas between the P/E variants.
// Positive delta means the multiple is compressing.
type PeCompression struct {
	TrailingToRunRate *float64 `json:"trailing_to_run_rate,omitempty"`
	RunRateToForward  *float64 `json:"run_rate_to_forward,omitempty"`
	TrailingToForward *float64 `json:"trailing_to_forward,omitempty"`
}

// Calculated holds the derived analytics. It is always a pure function
// of the rest of the record at the current price and is rebuilt in full
// whenever the price changes.
type Calculated struct {
	Momentum          *Momentum      `json:"momentum,omitempty"`
	Gav               *float64       `json:"gav,omitempty"`
	OperatingLeverage *float64       `json:"operating_leverage,omitempty"`
	DistanceFromHigh  *float64       `json:"distance_from_high,omitempty"`
	PeCompression     *PeCompression `json:"pe_compression,omitempty"`
}

// CompanyRecord is the unified entity produced by merging a JSON-normalized
// candidate and/or a Markdown-extracted candidate. All monetary "Mil" fields
// are millions of dollars; percentage fields are plain numbers (63.0 = 63%).
type CompanyRecord struct {
	// Identity
	Ticker      string  `json:"ticker"`
	CompanyName *string `json:"company_name,omitempty"`
	FetchDate   *string `json:"fetch_date,omitempty"`

	// Valuation
	Price        *float64    `json:"price,omitempty"`
	MarketCapMil *float64    `json:"market_cap_mil,omitempty"`
	TrailingPe   *float64    `json:"trailing_pe,omitempty"`
	RunRatePe    *float64    `json:"run_rate_pe,omitempty"`
	ForwardPe    *float64    `json:"forward_pe,omitempty"`
	NormalizedPe *float64    `json:"normalized_pe,omitempty"`
	PriceToSales *float64    `json:"price_to_sales,omitempty"`
	PriceSource  PriceSource `json:"price_source,omitempty"`

	// Pre-computed compression deltas, when the source supplies them.
	// The calculator passes these through instead of re-deriving.
	TrailingToRunRatePe *float64 `json:"trailing_to_run_rate_pe,omitempty"`
	RunRateToForwardPe  *float64 `json:"run_rate_to_forward_pe,omitempty"`

	// Growth
	RevenueRecentMil   *float64 `json:"revenue_recent_mil,omitempty"`
	RevenueRecentLabel *string  `json:"revenue_recent_label,omitempty"`
	RevenueYoyPct      *float64 `json:"revenue_yoy_pct,omitempty"`
	RevenueQoqPct      *float64 `json:"revenue_qoq_pct,omitempty"`

	// Profitability
	GrossMarginPct      *float64 `json:"gross_margin_pct,omitempty"`
	NetIncomeMil        *float64 `json:"net_income_mil,omitempty"`
	NetIncomeYoyPct     *float64 `json:"net_income_yoy_pct,omitempty"`
	EbitdaMil           *float64 `json:"ebitda_mil,omitempty"`
	EbitdaYoyPct        *float64 `json:"ebitda_yoy_pct,omitempty"`
	EbitdaMarginPct     *float64 `json:"ebitda_margin_pct,omitempty"`
	EpsDiluted          *float64 `json:"eps_diluted,omitempty"`
	CurrentlyProfitable *bool    `json:"currently_profitable,omitempty"` // nil = unknown

	// Cash / balance sheet
	OperatingCashFlowMil  *float64 `json:"operating_cash_flow_mil,omitempty"`
	CapitalExpenditureMil *float64 `json:"capital_expenditure_mil,omitempty"`
	FreeCashFlowMil       *float64 `json:"free_cash_flow_mil,omitempty"`
	CapexToOcfRatio       *float64 `json:"capex_to_ocf_ratio,omitempty"`
	CashPositionMil       *float64 `json:"cash_position_mil,omitempty"`
	DebtLevel             string   `json:"debt_level,omitempty"`

	// 52-week range
	FiftyTwoWeekHigh *float64 `json:"fifty_two_week_high,omitempty"`
	FiftyTwoWeekLow  *float64 `json:"fifty_two_week_low,omitempty"`

	// History, most-recent-first
	QuarterlyHistory []QuarterEntry `json:"quarterly_history,omitempty"`

	// Qualitative
	BusinessDescription     *string      `json:"business_description,omitempty"`
	RevenueModel            *string      `json:"revenue_model,omitempty"`
	Products                []string     `json:"products,omitempty"`
	Competitors             *string      `json:"competitors,omitempty"`
	CompetitiveMoat         *string      `json:"competitive_moat,omitempty"`
	TamEstimate             *string      `json:"tam_estimate,omitempty"`
	Headquarters            *string      `json:"headquarters,omitempty"`
	CeoName                 *string      `json:"ceo_name,omitempty"`
	CeoTitle                *string      `json:"ceo_title,omitempty"`
	InsiderOwnershipPct     *float64     `json:"insider_ownership_pct,omitempty"`
	RecentInsiderBuying     *bool        `json:"recent_insider_buying,omitempty"`
	RecentInsiderSelling    *bool        `json:"recent_insider_selling,omitempty"`
	PrimaryGrowthDrivers    []string     `json:"primary_growth_drivers,omitempty"`
	LatestQuarterHighlights []string     `json:"latest_quarter_highlights,omitempty"`
	Guidance                *string      `json:"guidance,omitempty"`
	RecentNews              []string     `json:"recent_news,omitempty"`
	RedFlags                []string     `json:"red_flags,omitempty"`
	RiskFactors             []RiskFactor `json:"risk_factors,omitempty"`

	// Evaluation
	Verdict         *string           `json:"verdict,omitempty"`
	ConvictionScore *float64          `json:"conviction_score,omitempty"`
	ConfidenceLevel *string           `json:"confidence_level,omitempty"`
	KeyStrengths    []string          `json:"key_strengths,omitempty"` // bull case
	KeyConcerns     []string          `json:"key_concerns,omitempty"`  // bear case
	SaulRules       map[string]string `json:"saul_rules,omitempty"`
	SaulSummary     *saul.Summary     `json:"saul_summary,omitempty"` // always recomputed from SaulRules

	// Derived analytics, never input
	Calculated *Calculated `json:"calculated,omitempty"`

	// Set when no JSON source existed and the record was synthesized
	// from Markdown alone.
	MarkdownOnly bool `json:"markdown_only,omitempty"`
}

// Clone returns a deep copy of the record. Overlay operations mutate the
// copy so that catalog snapshots stay immutable.
func (r *CompanyRecord) Clone() *CompanyRecord {
	if r == nil {
		return nil
	}
	out := *r

	out.Price = clonePtr(r.Price)
	out.MarketCapMil = clonePtr(r.MarketCapMil)
	out.TrailingPe = clonePtr(r.TrailingPe)
	out.RunRatePe = clonePtr(r.RunRatePe)
	out.ForwardPe = clonePtr(r.ForwardPe)
	out.NormalizedPe = clonePtr(r.NormalizedPe)
	out.PriceToSales = clonePtr(r.PriceToSales)
	out.TrailingToRunRatePe = clonePtr(r.TrailingToRunRatePe)
	out.RunRateToForwardPe = clonePtr(r.RunRateToForwardPe)
	out.RevenueRecentMil = clonePtr(r.RevenueRecentMil)
	out.RevenueYoyPct = clonePtr(r.RevenueYoyPct)
	out.RevenueQoqPct = clonePtr(r.RevenueQoqPct)
	out.GrossMarginPct = clonePtr(r.GrossMarginPct)
	out.NetIncomeMil = clonePtr(r.NetIncomeMil)
	out.NetIncomeYoyPct = clonePtr(r.NetIncomeYoyPct)
	out.EbitdaMil = clonePtr(r.EbitdaMil)
	out.EbitdaYoyPct = clonePtr(r.EbitdaYoyPct)
	out.EbitdaMarginPct = clonePtr(r.EbitdaMarginPct)
	out.EpsDiluted = clonePtr(r.EpsDiluted)
	out.CurrentlyProfitable = clonePtr(r.CurrentlyProfitable)
	out.OperatingCashFlowMil = clonePtr(r.OperatingCashFlowMil)
	out.CapitalExpenditureMil = clonePtr(r.CapitalExpenditureMil)
	out.FreeCashFlowMil = clonePtr(r.FreeCashFlowMil)
	out.CapexToOcfRatio = clonePtr(r.CapexToOcfRatio)
	out.CashPositionMil = clonePtr(r.CashPositionMil)
	out.FiftyTwoWeekHigh = clonePtr(r.FiftyTwoWeekHigh)
	out.FiftyTwoWeekLow = clonePtr(r.FiftyTwoWeekLow)
	out.CompanyName = clonePtr(r.CompanyName)
	out.FetchDate = clonePtr(r.FetchDate)
	out.RevenueRecentLabel = clonePtr(r.RevenueRecentLabel)
	out.BusinessDescription = clonePtr(r.BusinessDescription)
	out.RevenueModel = clonePtr(r.RevenueModel)
	out.Competitors = clonePtr(r.Competitors)
	out.CompetitiveMoat = clonePtr(r.CompetitiveMoat)
	out.TamEstimate = clonePtr(r.TamEstimate)
	out.Headquarters = clonePtr(r.Headquarters)
	out.CeoName = clonePtr(r.CeoName)
	out.CeoTitle = clonePtr(r.CeoTitle)
	out.InsiderOwnershipPct = clonePtr(r.InsiderOwnershipPct)
	out.RecentInsiderBuying = clonePtr(r.RecentInsiderBuying)
	out.RecentInsiderSelling = clonePtr(r.RecentInsiderSelling)
	out.Guidance = clonePtr(r.Guidance)
	out.Verdict = clonePtr(r.Verdict)
	out.ConvictionScore = clonePtr(r.ConvictionScore)
	out.ConfidenceLevel = clonePtr(r.ConfidenceLevel)

	if r.QuarterlyHistory != nil {
		out.QuarterlyHistory = make([]QuarterEntry, len(r.QuarterlyHistory))
		for i, q := range r.QuarterlyHistory {
			cp := q
			cp.RevenueMil = clonePtr(q.RevenueMil)
			cp.RevenueYoyPct = clonePtr(q.RevenueYoyPct)
			cp.RevenueQoqPct = clonePtr(q.RevenueQoqPct)
			cp.EbitdaMil = clonePtr(q.EbitdaMil)
			cp.EbitdaMarginPct = clonePtr(q.EbitdaMarginPct)
			cp.GrossMarginPct = clonePtr(q.GrossMarginPct)
			out.QuarterlyHistory[i] = cp
		}
	}
	out.Products = append([]string(nil), r.Products...)
	out.PrimaryGrowthDrivers = append([]string(nil), r.PrimaryGrowthDrivers...)
	out.LatestQuarterHighlights = append([]string(nil), r.LatestQuarterHighlights...)
	out.RecentNews = append([]string(nil), r.RecentNews...)
	out.RedFlags = append([]string(nil), r.RedFlags...)
	out.RiskFactors = append([]RiskFactor(nil), r.RiskFactors...)
	out.KeyStrengths = append([]string(nil), r.KeyStrengths...)
	out.KeyConcerns = append([]string(nil), r.KeyConcerns...)

	if r.SaulRules != nil {
		out.SaulRules = make(map[string]string, len(r.SaulRules))
		for k, v := range r.SaulRules {
			out.SaulRules[k] = v
		}
	}
	// SaulSummary and Calculated are recomputed by callers after any
	// mutation; a shallow reference is fine for a read-only copy but we
	// detach them anyway so the source record can never be touched.
	if r.SaulSummary != nil {
		s := *r.SaulSummary
		out.SaulSummary = &s
	}
	if r.Calculated != nil {
		c := *r.Calculated
		if r.Calculated.Momentum != nil {
			m := *r.Calculated.Momentum
			c.Momentum = &m
		}
		if r.Calculated.PeCompression != nil {
			p := *r.Calculated.PeCompression
			c.PeCompression = &p
		}
		c.Gav = clonePtr(r.Calculated.Gav)
		c.OperatingLeverage = clonePtr(r.Calculated.OperatingLeverage)
		c.DistanceFromHigh = clonePtr(r.Calculated.DistanceFromHigh)
		out.Calculated = &c
	}
	return &out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
