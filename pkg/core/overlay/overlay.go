// Package overlay re-derives price-dependent fields when a fresher
// quote is available than the one in the research report.
package overlay

import (
	"math"

	"portfolio_dashboard/pkg/core/metrics"
	"portfolio_dashboard/pkg/models"
)

// OverlayPrice returns a copy of the record re-priced at livePrice.
// The input record is never mutated; catalog snapshots stay immutable.
//
// When the record has no usable report price the live quote is simply
// substituted. Otherwise market cap and price-to-sales scale linearly
// with the price ratio, while each P/E variant is recomputed through
// its implied EPS (eps = reportPrice / pe, then livePrice / eps).
// Scaling the ratio directly would assume earnings move with the
// price; holding EPS fixed is the correct re-derivation.
func OverlayPrice(rec *models.CompanyRecord, livePrice float64) *models.CompanyRecord {
	if rec == nil {
		return nil
	}
	out := rec.Clone()
	if livePrice <= 0 {
		return out
	}

	if out.Price == nil || *out.Price <= 0 {
		out.Price = &livePrice
		out.PriceSource = models.PriceSourceLive
		out.Calculated = metrics.Compute(out)
		return out
	}

	reportPrice := *out.Price
	ratio := livePrice / reportPrice

	out.Price = &livePrice
	out.PriceSource = models.PriceSourceLive
	out.MarketCapMil = scale(out.MarketCapMil, ratio)
	out.PriceToSales = scale(out.PriceToSales, ratio)

	out.TrailingPe = reprice(out.TrailingPe, reportPrice, livePrice)
	out.RunRatePe = reprice(out.RunRatePe, reportPrice, livePrice)
	out.ForwardPe = reprice(out.ForwardPe, reportPrice, livePrice)
	out.NormalizedPe = reprice(out.NormalizedPe, reportPrice, livePrice)

	// Any source-supplied compression deltas were computed at the
	// report price; drop them so the calculator re-derives from the
	// repriced P/E variants.
	out.TrailingToRunRatePe = nil
	out.RunRateToForwardPe = nil

	out.Calculated = metrics.Compute(out)
	return out
}

func scale(v *float64, ratio float64) *float64 {
	if v == nil {
		return nil
	}
	r := math.Round(*v*ratio*100) / 100
	return &r
}

func reprice(pe *float64, reportPrice, livePrice float64) *float64 {
	if pe == nil || *pe == 0 {
		return nil
	}
	eps := reportPrice / *pe
	if eps == 0 {
		return nil
	}
	r := math.Round(livePrice/eps*100) / 100
	return &r
}
