package metrics

import (
	"math"

	"portfolio_dashboard/pkg/models"
)

// =============================================================================
// DERIVED METRICS CALCULATOR
// =============================================================================

// Compute derives the analytics block from a record. Every metric is
// null-safe: a missing input yields a nil metric, never a panic. The
// result is a pure function of the record at its current price, so it
// must be recomputed whenever the price changes.
func Compute(rec *models.CompanyRecord) *models.Calculated {
	if rec == nil {
		return nil
	}
	return &models.Calculated{
		Momentum:          computeMomentum(rec.QuarterlyHistory),
		Gav:               computeGav(rec),
		OperatingLeverage: computeOperatingLeverage(rec),
		DistanceFromHigh:  computeDistanceFromHigh(rec.Price, rec.FiftyTwoWeekHigh),
		PeCompression:     computePeCompression(rec),
	}
}

// computeMomentum compares the current QoQ growth rate against the prior
// quarter's. Needs at least three history entries so the prior QoQ can be
// back-derived when the source never reported it.
func computeMomentum(history []models.QuarterEntry) *models.Momentum {
	if len(history) < 3 {
		return nil
	}

	currentQoq := qoqFor(history, 0)
	priorQoq := qoqFor(history, 1)
	if currentQoq == nil || priorQoq == nil {
		return nil
	}

	delta := math.Round((*currentQoq-*priorQoq)*100) / 100
	trend := "stable"
	if delta > 2 {
		trend = "accelerating"
	} else if delta < -2 {
		trend = "decelerating"
	}

	return &models.Momentum{
		CurrentQoq: *currentQoq,
		PriorQoq:   *priorQoq,
		Delta:      delta,
		Trend:      trend,
	}
}

// qoqFor returns history[i]'s QoQ growth, preferring the reported value
// and otherwise back-deriving it from consecutive revenue figures.
func qoqFor(history []models.QuarterEntry, i int) *float64 {
	if history[i].RevenueQoqPct != nil {
		return history[i].RevenueQoqPct
	}
	if i+1 >= len(history) {
		return nil
	}
	curr := history[i].RevenueMil
	prev := history[i+1].RevenueMil
	if curr == nil || prev == nil || *prev == 0 {
		return nil
	}
	qoq := (*curr - *prev) / *prev * 100
	return &qoq
}

// computeGav is the PEG-style ratio of the effective P/E to the revenue
// growth rate. Run-rate P/E is preferred since it reflects the current
// earnings pace.
func computeGav(rec *models.CompanyRecord) *float64 {
	pe := firstOf(rec.RunRatePe, rec.TrailingPe, rec.NormalizedPe)
	if pe == nil || rec.RevenueYoyPct == nil || *rec.RevenueYoyPct <= 0 {
		return nil
	}
	gav := math.Round(*pe / *rec.RevenueYoyPct * 100) / 100
	return &gav
}

// computeOperatingLeverage back-derives last year's EBITDA and revenue
// from the current values and their YoY growth, then takes the ratio of
// the absolute changes.
func computeOperatingLeverage(rec *models.CompanyRecord) *float64 {
	if rec.EbitdaMil == nil || rec.RevenueRecentMil == nil ||
		rec.EbitdaYoyPct == nil || rec.RevenueYoyPct == nil {
		return nil
	}
	if *rec.RevenueYoyPct == 0 || *rec.EbitdaYoyPct == -100 {
		return nil
	}

	priorEbitda := *rec.EbitdaMil / (1 + *rec.EbitdaYoyPct/100)
	priorRevenue := *rec.RevenueRecentMil / (1 + *rec.RevenueYoyPct/100)
	deltaRevenue := *rec.RevenueRecentMil - priorRevenue
	if deltaRevenue == 0 {
		return nil
	}

	lev := math.Round((*rec.EbitdaMil-priorEbitda)/deltaRevenue*100) / 100
	return &lev
}

// computeDistanceFromHigh is the signed percentage gap between the
// current price and the 52-week high, to 2 decimals.
func computeDistanceFromHigh(price, high *float64) *float64 {
	if price == nil || high == nil || *high == 0 {
		return nil
	}
	d := math.Round((*price-*high)/(*high)*10000) / 100
	return &d
}

// computePeCompression passes through pre-computed deltas when the
// source supplied them, otherwise derives them from the P/E variants.
// Positive delta means the multiple is compressing.
func computePeCompression(rec *models.CompanyRecord) *models.PeCompression {
	if rec.TrailingToRunRatePe != nil || rec.RunRateToForwardPe != nil {
		out := &models.PeCompression{
			TrailingToRunRate: clone(rec.TrailingToRunRatePe),
			RunRateToForward:  clone(rec.RunRateToForwardPe),
		}
		if out.TrailingToRunRate != nil && out.RunRateToForward != nil {
			sum := math.Round((*out.TrailingToRunRate+*out.RunRateToForward)*100) / 100
			out.TrailingToForward = &sum
		}
		return out
	}

	if rec.TrailingPe == nil && rec.RunRatePe == nil && rec.ForwardPe == nil {
		return nil
	}

	out := &models.PeCompression{}
	if rec.TrailingPe != nil && rec.RunRatePe != nil {
		out.TrailingToRunRate = round2(*rec.TrailingPe - *rec.RunRatePe)
	}
	if rec.RunRatePe != nil && rec.ForwardPe != nil {
		out.RunRateToForward = round2(*rec.RunRatePe - *rec.ForwardPe)
	}
	if rec.TrailingPe != nil && rec.ForwardPe != nil {
		out.TrailingToForward = round2(*rec.TrailingPe - *rec.ForwardPe)
	}
	return out
}

func firstOf(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func round2(f float64) *float64 {
	r := math.Round(f*100) / 100
	return &r
}

func clone(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
