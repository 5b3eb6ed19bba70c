package metrics

import (
	"math"
	"testing"

	"portfolio_dashboard/pkg/models"
)

func fp(v float64) *float64 { return &v }

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.005
}

func TestComputeNilRecord(t *testing.T) {
	if got := Compute(nil); got != nil {
		t.Fatalf("expected nil for nil record, got %+v", got)
	}
}

func TestComputeEmptyRecord(t *testing.T) {
	calc := Compute(&models.CompanyRecord{Ticker: "EMPT"})
	if calc == nil {
		t.Fatal("expected a calculated block even for an empty record")
	}
	if calc.Momentum != nil || calc.Gav != nil || calc.OperatingLeverage != nil ||
		calc.DistanceFromHigh != nil || calc.PeCompression != nil {
		t.Fatalf("expected all-nil metrics for empty record, got %+v", calc)
	}
}

func TestMomentumFromReportedQoq(t *testing.T) {
	rec := &models.CompanyRecord{
		QuarterlyHistory: []models.QuarterEntry{
			{Quarter: "Q3 2025", RevenueQoqPct: fp(10)},
			{Quarter: "Q2 2025", RevenueQoqPct: fp(6)},
			{Quarter: "Q1 2025", RevenueQoqPct: fp(3)},
		},
	}
	m := Compute(rec).Momentum
	if m == nil {
		t.Fatal("expected momentum")
	}
	if m.CurrentQoq != 10 || m.PriorQoq != 6 {
		t.Errorf("qoq pair = (%v, %v), want (10, 6)", m.CurrentQoq, m.PriorQoq)
	}
	if m.Delta != 4 {
		t.Errorf("delta = %v, want 4", m.Delta)
	}
	if m.Trend != "accelerating" {
		t.Errorf("trend = %q, want accelerating", m.Trend)
	}
}

func TestMomentumBackDerivedQoq(t *testing.T) {
	// No reported QoQ anywhere: both legs derived from revenue.
	rec := &models.CompanyRecord{
		QuarterlyHistory: []models.QuarterEntry{
			{Quarter: "Q3 2025", RevenueMil: fp(110)},
			{Quarter: "Q2 2025", RevenueMil: fp(100)},
			{Quarter: "Q1 2025", RevenueMil: fp(96)},
		},
	}
	m := Compute(rec).Momentum
	if m == nil {
		t.Fatal("expected momentum")
	}
	if !almostEqual(m.CurrentQoq, 10) {
		t.Errorf("currentQoq = %v, want ~10", m.CurrentQoq)
	}
	if !almostEqual(m.PriorQoq, 4.17) {
		t.Errorf("priorQoq = %v, want ~4.17", m.PriorQoq)
	}
	if m.Trend != "accelerating" {
		t.Errorf("trend = %q, want accelerating", m.Trend)
	}
}

func TestMomentumStableAndDecelerating(t *testing.T) {
	stable := Compute(&models.CompanyRecord{
		QuarterlyHistory: []models.QuarterEntry{
			{RevenueQoqPct: fp(8)},
			{RevenueQoqPct: fp(7)},
			{RevenueQoqPct: fp(7)},
		},
	}).Momentum
	if stable == nil || stable.Trend != "stable" {
		t.Errorf("expected stable trend, got %+v", stable)
	}

	dec := Compute(&models.CompanyRecord{
		QuarterlyHistory: []models.QuarterEntry{
			{RevenueQoqPct: fp(2)},
			{RevenueQoqPct: fp(9)},
			{RevenueQoqPct: fp(9)},
		},
	}).Momentum
	if dec == nil || dec.Trend != "decelerating" {
		t.Errorf("expected decelerating trend, got %+v", dec)
	}
}

func TestMomentumNeedsThreeQuarters(t *testing.T) {
	rec := &models.CompanyRecord{
		QuarterlyHistory: []models.QuarterEntry{
			{RevenueQoqPct: fp(10)},
			{RevenueQoqPct: fp(6)},
		},
	}
	if m := Compute(rec).Momentum; m != nil {
		t.Errorf("expected nil momentum with 2 quarters, got %+v", m)
	}
}

func TestGav(t *testing.T) {
	rec := &models.CompanyRecord{
		RunRatePe:     fp(26.78),
		RevenueYoyPct: fp(71),
	}
	g := Compute(rec).Gav
	if g == nil || *g != 0.38 {
		t.Fatalf("gav = %v, want 0.38", g)
	}
}

func TestGavPeFallbackOrder(t *testing.T) {
	rec := &models.CompanyRecord{
		TrailingPe:    fp(50),
		NormalizedPe:  fp(30),
		RevenueYoyPct: fp(25),
	}
	g := Compute(rec).Gav
	if g == nil || *g != 2.0 {
		t.Fatalf("gav = %v, want 2.0 (trailing preferred over normalized)", g)
	}
}

func TestGavNilOnNonPositiveGrowth(t *testing.T) {
	for _, yoy := range []float64{0, -12.5} {
		rec := &models.CompanyRecord{RunRatePe: fp(20), RevenueYoyPct: fp(yoy)}
		if g := Compute(rec).Gav; g != nil {
			t.Errorf("yoy=%v: expected nil gav, got %v", yoy, *g)
		}
	}
}

func TestOperatingLeverage(t *testing.T) {
	rec := &models.CompanyRecord{
		EbitdaMil:        fp(100),
		RevenueRecentMil: fp(1000),
		EbitdaYoyPct:     fp(25),
		RevenueYoyPct:    fp(10),
	}
	lev := Compute(rec).OperatingLeverage
	if lev == nil {
		t.Fatal("expected operating leverage")
	}
	if !almostEqual(*lev, 0.22) {
		t.Errorf("leverage = %v, want ~0.22", *lev)
	}
}

func TestOperatingLeverageGuards(t *testing.T) {
	cases := []struct {
		name string
		rec  models.CompanyRecord
	}{
		{"missing ebitda", models.CompanyRecord{RevenueRecentMil: fp(1000), EbitdaYoyPct: fp(25), RevenueYoyPct: fp(10)}},
		{"zero revenue yoy", models.CompanyRecord{EbitdaMil: fp(100), RevenueRecentMil: fp(1000), EbitdaYoyPct: fp(25), RevenueYoyPct: fp(0)}},
		{"ebitda yoy -100", models.CompanyRecord{EbitdaMil: fp(100), RevenueRecentMil: fp(1000), EbitdaYoyPct: fp(-100), RevenueYoyPct: fp(10)}},
	}
	for _, tc := range cases {
		if lev := Compute(&tc.rec).OperatingLeverage; lev != nil {
			t.Errorf("%s: expected nil leverage, got %v", tc.name, *lev)
		}
	}
}

func TestDistanceFromHigh(t *testing.T) {
	rec := &models.CompanyRecord{Price: fp(80), FiftyTwoWeekHigh: fp(100)}
	d := Compute(rec).DistanceFromHigh
	if d == nil || *d != -20.00 {
		t.Fatalf("distance = %v, want -20.00", d)
	}

	above := Compute(&models.CompanyRecord{Price: fp(105.5), FiftyTwoWeekHigh: fp(100)}).DistanceFromHigh
	if above == nil || *above != 5.5 {
		t.Errorf("distance above high = %v, want 5.5", above)
	}
}

func TestPeCompressionComputed(t *testing.T) {
	rec := &models.CompanyRecord{
		TrailingPe: fp(45.2),
		RunRatePe:  fp(26.78),
		ForwardPe:  fp(21.1),
	}
	pc := Compute(rec).PeCompression
	if pc == nil {
		t.Fatal("expected compression block")
	}
	if pc.TrailingToRunRate == nil || *pc.TrailingToRunRate != 18.42 {
		t.Errorf("trailing->runRate = %v, want 18.42", pc.TrailingToRunRate)
	}
	if pc.RunRateToForward == nil || *pc.RunRateToForward != 5.68 {
		t.Errorf("runRate->forward = %v, want 5.68", pc.RunRateToForward)
	}
	if pc.TrailingToForward == nil || *pc.TrailingToForward != 24.1 {
		t.Errorf("trailing->forward = %v, want 24.1", pc.TrailingToForward)
	}
}

func TestPeCompressionPassthrough(t *testing.T) {
	rec := &models.CompanyRecord{
		// Pre-computed deltas win over the raw P/E variants.
		TrailingToRunRatePe: fp(12.0),
		RunRateToForwardPe:  fp(3.5),
		TrailingPe:          fp(99),
		RunRatePe:           fp(1),
	}
	pc := Compute(rec).PeCompression
	if pc == nil || pc.TrailingToRunRate == nil || *pc.TrailingToRunRate != 12.0 {
		t.Fatalf("expected passthrough 12.0, got %+v", pc)
	}
	if pc.RunRateToForward == nil || *pc.RunRateToForward != 3.5 {
		t.Errorf("runRate->forward = %v, want 3.5", pc.RunRateToForward)
	}
	if pc.TrailingToForward == nil || *pc.TrailingToForward != 15.5 {
		t.Errorf("trailing->forward = %v, want 15.5", pc.TrailingToForward)
	}
}

func TestPeCompressionNilWithoutInputs(t *testing.T) {
	if pc := Compute(&models.CompanyRecord{}).PeCompression; pc != nil {
		t.Fatalf("expected nil compression, got %+v", pc)
	}
}
