package overlay

import (
	"math"
	"reflect"
	"testing"

	"portfolio_dashboard/pkg/core/metrics"
	"portfolio_dashboard/pkg/models"
)

func fp(v float64) *float64 { return &v }

func baseRecord() *models.CompanyRecord {
	rec := &models.CompanyRecord{
		Ticker:           "ECOM",
		Price:            fp(80),
		MarketCapMil:     fp(4000),
		PriceToSales:     fp(10),
		TrailingPe:       fp(40),
		RunRatePe:        fp(32),
		ForwardPe:        fp(25),
		RevenueYoyPct:    fp(50),
		FiftyTwoWeekHigh: fp(100),
	}
	rec.Calculated = metrics.Compute(rec)
	return rec
}

func TestOverlayScalesLinearFields(t *testing.T) {
	rec := baseRecord()
	out := OverlayPrice(rec, 88) // ratio 1.1

	if *out.Price != 88 {
		t.Errorf("price = %v, want 88", *out.Price)
	}
	if out.PriceSource != models.PriceSourceLive {
		t.Errorf("priceSource = %q, want live", out.PriceSource)
	}
	if *out.MarketCapMil != 4400 {
		t.Errorf("marketCap = %v, want 4400", *out.MarketCapMil)
	}
	if *out.PriceToSales != 11 {
		t.Errorf("priceToSales = %v, want 11", *out.PriceToSales)
	}
}

func TestOverlayRepricesPeThroughEps(t *testing.T) {
	rec := baseRecord()
	out := OverlayPrice(rec, 88)

	// eps = 80/40 = 2, so trailing at 88 is 44.
	if *out.TrailingPe != 44 {
		t.Errorf("trailingPe = %v, want 44", *out.TrailingPe)
	}
	if *out.RunRatePe != 35.2 {
		t.Errorf("runRatePe = %v, want 35.2", *out.RunRatePe)
	}
	if *out.ForwardPe != 27.5 {
		t.Errorf("forwardPe = %v, want 27.5", *out.ForwardPe)
	}
}

func TestOverlayReplacesCalculated(t *testing.T) {
	rec := baseRecord()
	out := OverlayPrice(rec, 88)

	if out.Calculated == nil {
		t.Fatal("expected calculated block")
	}
	// distance from high at 88 vs 100
	if out.Calculated.DistanceFromHigh == nil || *out.Calculated.DistanceFromHigh != -12.00 {
		t.Errorf("distance = %v, want -12.00", out.Calculated.DistanceFromHigh)
	}
	// gav = 35.2 / 50
	if out.Calculated.Gav == nil || *out.Calculated.Gav != 0.70 {
		t.Errorf("gav = %v, want 0.70", out.Calculated.Gav)
	}
	// compression from repriced variants: 44-35.2, 35.2-27.5
	pc := out.Calculated.PeCompression
	if pc == nil || pc.TrailingToRunRate == nil || math.Abs(*pc.TrailingToRunRate-8.8) > 0.005 {
		t.Errorf("compression = %+v, want trailing->runRate 8.8", pc)
	}
}

func TestOverlayRoundTripAtReportPrice(t *testing.T) {
	rec := baseRecord()
	out := OverlayPrice(rec, *rec.Price)

	if !reflect.DeepEqual(out.Calculated, rec.Calculated) {
		t.Errorf("calculated drifted at ratio 1:\n got %+v\nwant %+v", out.Calculated, rec.Calculated)
	}
	if *out.TrailingPe != *rec.TrailingPe || *out.MarketCapMil != *rec.MarketCapMil {
		t.Error("valuation fields drifted at ratio 1")
	}
}

func TestOverlayDoesNotMutateInput(t *testing.T) {
	rec := baseRecord()
	priceBefore := *rec.Price
	capBefore := *rec.MarketCapMil

	OverlayPrice(rec, 200)

	if *rec.Price != priceBefore || *rec.MarketCapMil != capBefore {
		t.Fatal("input record was mutated")
	}
	if rec.PriceSource == models.PriceSourceLive {
		t.Fatal("input price source was changed")
	}
}

func TestOverlayWithoutReportPrice(t *testing.T) {
	rec := &models.CompanyRecord{
		Ticker:           "NEWC",
		MarketCapMil:     fp(500),
		FiftyTwoWeekHigh: fp(20),
	}
	out := OverlayPrice(rec, 15)

	if out.Price == nil || *out.Price != 15 {
		t.Fatalf("price = %v, want 15", out.Price)
	}
	if out.PriceSource != models.PriceSourceLive {
		t.Errorf("priceSource = %q, want live", out.PriceSource)
	}
	// No ratio available, so market cap is left as reported.
	if *out.MarketCapMil != 500 {
		t.Errorf("marketCap = %v, want 500 untouched", *out.MarketCapMil)
	}
	if out.Calculated == nil || out.Calculated.DistanceFromHigh == nil || *out.Calculated.DistanceFromHigh != -25.00 {
		t.Errorf("distance = %+v, want -25.00", out.Calculated)
	}
}

func TestOverlayIgnoresNonPositiveQuote(t *testing.T) {
	rec := baseRecord()
	out := OverlayPrice(rec, 0)

	if *out.Price != 80 || out.PriceSource == models.PriceSourceLive {
		t.Fatalf("zero quote must leave the record as reported, got %+v", out)
	}
}
