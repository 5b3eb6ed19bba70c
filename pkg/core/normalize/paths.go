package normalize

// Candidate JSONPath lists per target field, tried in order with the
// first non-null hit winning. The lists cover the five report schema
// families we have seen:
//
//  1. flat snake_case            {"price": ..., "market_cap_millions": ...}
//  2. sectioned                  {"company_overview": {...}, "valuation": {...},
//                                 "financials": {...}, "balance_sheet": {...},
//                                 "evaluation": {...}}
//  3. snapshot/metrics           {"snapshot": {...}, "metrics": {...}}
//  4. data-wrapped               {"data": { ...any of the above... }}
//  5. camelCase flat (legacy)    {"companyName": ..., "currentPrice": ...}
//
// Supporting a sixth family is a data change here, not a code change.
var fieldPaths = map[string][]string{
	"ticker": {
		"$.ticker", "$.symbol",
		"$.company_overview.ticker",
		"$.data.ticker",
	},
	"companyName": {
		"$.company_name", "$.name",
		"$.company_overview.company_name", "$.company_overview.name",
		"$.snapshot.company_name",
		"$.data.company_name",
		"$.companyName",
	},
	"fetchDate": {
		"$.fetch_date", "$.analysis_date", "$.date",
		"$.company_overview.fetch_date",
		"$.snapshot.as_of",
		"$.data.fetch_date",
		"$.fetchDate",
	},
	"price": {
		"$.price", "$.current_price",
		"$.valuation.price", "$.valuation.current_price",
		"$.snapshot.price",
		"$.data.price",
		"$.currentPrice",
	},
	"trailingPe": {
		"$.trailing_pe", "$.pe_trailing",
		"$.valuation.trailing_pe",
		"$.metrics.trailing_pe",
		"$.data.trailing_pe",
		"$.trailingPE",
	},
	"runRatePe": {
		"$.run_rate_pe", "$.pe_run_rate",
		"$.valuation.run_rate_pe",
		"$.metrics.run_rate_pe",
		"$.data.run_rate_pe",
		"$.runRatePE",
	},
	"forwardPe": {
		"$.forward_pe", "$.pe_forward",
		"$.valuation.forward_pe",
		"$.metrics.forward_pe",
		"$.data.forward_pe",
		"$.forwardPE",
	},
	"normalizedPe": {
		"$.normalized_pe",
		"$.valuation.normalized_pe",
		"$.metrics.normalized_pe",
		"$.data.normalized_pe",
		"$.normalizedPE",
	},
	"priceToSales": {
		"$.price_to_sales", "$.ps_ratio",
		"$.valuation.price_to_sales",
		"$.metrics.price_to_sales",
		"$.data.price_to_sales",
		"$.priceToSales",
	},
	"revenueRecentMil": {
		"$.revenue_recent_millions", "$.revenue_recent",
		"$.financials.revenue_recent_millions", "$.financials.recent_revenue",
		"$.metrics.revenue_recent",
		"$.data.revenue_recent_millions",
		"$.recentRevenue",
	},
	"revenueRecentLabel": {
		"$.revenue_recent_label", "$.revenue_recent_quarter",
		"$.financials.revenue_recent_label",
		"$.data.revenue_recent_label",
		"$.recentRevenueLabel",
	},
	"revenueYoyPct": {
		"$.revenue_yoy_pct", "$.revenue_growth_yoy",
		"$.financials.revenue_yoy_pct", "$.financials.revenue_growth_yoy",
		"$.metrics.revenue_yoy",
		"$.data.revenue_yoy_pct",
		"$.revenueYoY",
	},
	"revenueQoqPct": {
		"$.revenue_qoq_pct", "$.revenue_growth_qoq",
		"$.financials.revenue_qoq_pct",
		"$.metrics.revenue_qoq",
		"$.data.revenue_qoq_pct",
		"$.revenueQoQ",
	},
	"grossMarginPct": {
		"$.gross_margin_pct", "$.gross_margin",
		"$.financials.gross_margin_pct", "$.financials.gross_margin",
		"$.metrics.gross_margin",
		"$.data.gross_margin_pct",
		"$.grossMargin",
	},
	"netIncomeMil": {
		"$.net_income_millions", "$.net_income",
		"$.financials.net_income_millions", "$.financials.net_income",
		"$.data.net_income_millions",
		"$.netIncome",
	},
	"netIncomeYoyPct": {
		"$.net_income_yoy_pct",
		"$.financials.net_income_yoy_pct",
		"$.data.net_income_yoy_pct",
		"$.netIncomeYoY",
	},
	"ebitdaMil": {
		"$.ebitda_millions", "$.ebitda",
		"$.financials.ebitda_millions", "$.financials.ebitda",
		"$.data.ebitda_millions",
	},
	"ebitdaYoyPct": {
		"$.ebitda_yoy_pct",
		"$.financials.ebitda_yoy_pct",
		"$.data.ebitda_yoy_pct",
		"$.ebitdaYoY",
	},
	"ebitdaMarginPct": {
		"$.ebitda_margin_pct", "$.ebitda_margin",
		"$.financials.ebitda_margin_pct",
		"$.metrics.ebitda_margin",
		"$.data.ebitda_margin_pct",
		"$.ebitdaMargin",
	},
	"epsDiluted": {
		"$.eps_diluted", "$.diluted_eps",
		"$.financials.eps_diluted",
		"$.data.eps_diluted",
		"$.epsDiluted",
	},
	"currentlyProfitable": {
		"$.currently_profitable", "$.profitable",
		"$.financials.currently_profitable",
		"$.data.currently_profitable",
		"$.currentlyProfitable",
	},
	"operatingCashFlowMil": {
		"$.operating_cash_flow_millions", "$.operating_cash_flow",
		"$.financials.operating_cash_flow_millions", "$.cash_flow.operating",
		"$.data.operating_cash_flow_millions",
		"$.operatingCashFlow",
	},
	"capitalExpenditureMil": {
		"$.capital_expenditure_millions", "$.capex",
		"$.financials.capital_expenditure_millions", "$.cash_flow.capex",
		"$.data.capital_expenditure_millions",
		"$.capitalExpenditure",
	},
	"freeCashFlowMil": {
		"$.free_cash_flow_millions", "$.free_cash_flow", "$.fcf",
		"$.financials.free_cash_flow_millions", "$.cash_flow.free_cash_flow",
		"$.data.free_cash_flow_millions",
		"$.freeCashFlow",
	},
	"capexToOcfRatio": {
		"$.capex_to_ocf_ratio",
		"$.cash_flow.capex_to_ocf_ratio",
		"$.data.capex_to_ocf_ratio",
		"$.capexToOcf",
	},
	"cashPositionMil": {
		"$.cash_position_millions", "$.cash_position", "$.cash",
		"$.balance_sheet.cash_position_millions", "$.balance_sheet.cash",
		"$.data.cash_position_millions",
		"$.cashPosition",
	},
	"fiftyTwoWeekHigh": {
		"$.fifty_two_week_high", `$["52_week_high"]`,
		"$.valuation.fifty_two_week_high", "$.range.high",
		"$.data.fifty_two_week_high",
		"$.fiftyTwoWeekHigh",
	},
	"fiftyTwoWeekLow": {
		"$.fifty_two_week_low", `$["52_week_low"]`,
		"$.valuation.fifty_two_week_low", "$.range.low",
		"$.data.fifty_two_week_low",
		"$.fiftyTwoWeekLow",
	},
	"businessDescription": {
		"$.business_description", "$.description",
		"$.company_overview.business_description", "$.company_overview.description",
		"$.data.business_description",
		"$.businessDescription",
	},
	"revenueModel": {
		"$.revenue_model",
		"$.company_overview.revenue_model",
		"$.data.revenue_model",
		"$.revenueModel",
	},
	"competitors": {
		"$.competitors",
		"$.company_overview.competitors",
		"$.data.competitors",
	},
	"competitiveMoat": {
		"$.competitive_moat", "$.moat",
		"$.company_overview.competitive_moat",
		"$.data.competitive_moat",
		"$.competitiveMoat",
	},
	"tamEstimate": {
		"$.tam_estimate", "$.tam",
		"$.company_overview.tam_estimate",
		"$.data.tam_estimate",
		"$.tamEstimate",
	},
	"headquarters": {
		"$.headquarters", "$.hq",
		"$.company_overview.headquarters",
		"$.data.headquarters",
	},
	"ceoName": {
		"$.ceo_name", "$.ceo",
		"$.company_overview.ceo_name", "$.leadership.ceo_name",
		"$.data.ceo_name",
		"$.ceoName",
	},
	"ceoTitle": {
		"$.ceo_title",
		"$.company_overview.ceo_title", "$.leadership.ceo_title",
		"$.data.ceo_title",
		"$.ceoTitle",
	},
	"insiderOwnershipPct": {
		"$.insider_ownership_pct", "$.insider_ownership",
		"$.company_overview.insider_ownership_pct", "$.ownership.insider_pct",
		"$.data.insider_ownership_pct",
		"$.insiderOwnership",
	},
	"recentInsiderBuying": {
		"$.recent_insider_buying",
		"$.ownership.recent_insider_buying",
		"$.data.recent_insider_buying",
		"$.recentInsiderBuying",
	},
	"recentInsiderSelling": {
		"$.recent_insider_selling",
		"$.ownership.recent_insider_selling",
		"$.data.recent_insider_selling",
		"$.recentInsiderSelling",
	},
	"products": {
		"$.products", "$.product_lines",
		"$.company_overview.products",
		"$.data.products",
	},
	"primaryGrowthDrivers": {
		"$.primary_growth_drivers", "$.growth_drivers",
		"$.company_overview.primary_growth_drivers",
		"$.data.primary_growth_drivers",
		"$.growthDrivers",
	},
	"latestQuarterHighlights": {
		"$.latest_quarter_highlights", "$.quarter_highlights",
		"$.financials.latest_quarter_highlights",
		"$.data.latest_quarter_highlights",
		"$.quarterHighlights",
	},
	"guidance": {
		"$.guidance",
		"$.financials.guidance",
		"$.data.guidance",
	},
	"recentNews": {
		"$.recent_news", "$.news",
		"$.data.recent_news",
		"$.recentNews",
	},
	"redFlags": {
		"$.red_flags",
		"$.evaluation.red_flags",
		"$.data.red_flags",
		"$.redFlags",
	},
	"riskFactors": {
		"$.risk_factors", "$.risks",
		"$.evaluation.risk_factors",
		"$.data.risk_factors",
		"$.riskFactors",
	},
	"verdict": {
		"$.verdict",
		"$.evaluation.verdict",
		"$.data.verdict",
	},
	"convictionScore": {
		"$.conviction_score", "$.conviction",
		"$.evaluation.conviction_score",
		"$.data.conviction_score",
		"$.convictionScore",
	},
	"confidenceLevel": {
		"$.confidence_level", "$.confidence",
		"$.evaluation.confidence_level",
		"$.data.confidence_level",
		"$.confidenceLevel",
	},
	"keyStrengths": {
		"$.key_strengths", "$.bull_case",
		"$.evaluation.key_strengths", "$.evaluation.bull_case",
		"$.data.key_strengths",
		"$.keyStrengths",
	},
	"keyConcerns": {
		"$.key_concerns", "$.bear_case",
		"$.evaluation.key_concerns", "$.evaluation.bear_case",
		"$.data.key_concerns",
		"$.keyConcerns",
	},
	"saulRules": {
		"$.saul_rules", "$.rules",
		"$.evaluation.saul_rules",
		"$.data.saul_rules",
		"$.saulRules",
	},
	"debtLevel": {
		"$.debt_level",
		"$.balance_sheet.debt_level",
		"$.data.debt_level",
		"$.debtLevel",
	},
	"debtMil": {
		"$.total_debt_millions", "$.debt",
		"$.balance_sheet.total_debt_millions", "$.balance_sheet.debt",
		"$.data.total_debt_millions",
		"$.totalDebt",
	},
	"quarterlyHistory": {
		"$.quarterly_history", "$.quarters", "$.quarterly_data",
		"$.financials.quarterly_history",
		"$.data.quarterly_history",
		"$.quarterlyHistory",
	},
	// Market cap candidates, in descending trust order; see extractMarketCap.
	"marketCapPreMillions": {
		"$.market_cap_millions",
		"$.valuation.market_cap_millions",
		"$.data.market_cap_millions",
	},
	"marketCapPreBillions": {
		"$.market_cap_billions",
		"$.valuation.market_cap_billions",
		"$.data.market_cap_billions",
	},
	"marketCapRaw": {
		"$.market_cap", "$.marketCap",
		"$.valuation.market_cap",
		"$.snapshot.market_cap",
		"$.data.market_cap",
	},
}
