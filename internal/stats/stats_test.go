package stats

import (
	"math"
	"testing"

	"surveycore/pkg/domain"
)

func weightedRecord(outcome, weight domain.Value) domain.Record {
	return domain.Record{Fields: map[string]domain.Value{
		"y":                    outcome,
		domain.FieldWeightExam: weight,
	}}
}

func TestEstimateWeightedMean(t *testing.T) {
	records := []domain.Record{
		weightedRecord(domain.Some(1), domain.Some(3)),
		weightedRecord(domain.Some(0), domain.Some(1)),
		weightedRecord(domain.Some(1), domain.Some(0)),   // zero weight: ineligible, retained
		weightedRecord(domain.Missing(), domain.Some(5)), // missing outcome
		weightedRecord(domain.Some(1), domain.Missing()), // missing weight
	}
	res := EstimateField(records, "y")
	if res.N != 2 || res.Cases != 1 {
		t.Fatalf("n=%d cases=%d, want 2 and 1", res.N, res.Cases)
	}
	if !res.Prevalence.Valid || math.Abs(res.Prevalence.Float-0.75) > 1e-12 {
		t.Fatalf("prevalence = %+v, want 0.75", res.Prevalence)
	}
	wantSE := math.Sqrt(0.75 * 0.25 / 2)
	if math.Abs(res.SE.Float-wantSE) > 1e-12 {
		t.Fatalf("se = %v, want %v", res.SE.Float, wantSE)
	}
}

func TestEstimateEmptyInput(t *testing.T) {
	cases := [][]domain.Record{
		nil,
		{},
		{weightedRecord(domain.Missing(), domain.Some(2))},
		{weightedRecord(domain.Some(1), domain.Some(0))},
	}
	for i, records := range cases {
		res := EstimateField(records, "y")
		if !res.Undefined() {
			t.Fatalf("case %d: expected undefined result, got %+v", i, res)
		}
		if res.Prevalence.Valid || res.SE.Valid || res.CILow.Valid || res.CIHigh.Valid {
			t.Fatalf("case %d: numeric fields must be missing, got %+v", i, res)
		}
	}
}

func TestEstimateConfidenceIntervalClipped(t *testing.T) {
	// Extreme prevalences near 0 and 1 must keep the interval inside [0,1].
	allPositive := []domain.Record{
		weightedRecord(domain.Some(1), domain.Some(1)),
		weightedRecord(domain.Some(1), domain.Some(1)),
	}
	res := EstimateField(allPositive, "y")
	if res.CIHigh.Float > 1 || res.CILow.Float < 0 {
		t.Fatalf("interval escaped [0,1]: %+v", res)
	}

	mixed := []domain.Record{
		weightedRecord(domain.Some(1), domain.Some(100)),
		weightedRecord(domain.Some(0), domain.Some(1)),
	}
	res = EstimateField(mixed, "y")
	if res.CILow.Float < 0 || res.CIHigh.Float > 1 {
		t.Fatalf("interval escaped [0,1]: %+v", res)
	}
}

func TestEstimateCHDOutcome(t *testing.T) {
	records := []domain.Record{
		{Fields: map[string]domain.Value{domain.FieldWeightExam: domain.Some(2)}, Derived: domain.Derived{CHD: domain.Positive}},
		{Fields: map[string]domain.Value{domain.FieldWeightExam: domain.Some(2)}, Derived: domain.Derived{CHD: domain.Negative}},
		{Fields: map[string]domain.Value{domain.FieldWeightExam: domain.Some(2)}, Derived: domain.Derived{CHD: domain.Unknown}},
	}
	res := EstimateField(records, domain.FieldCHDComposite)
	if res.N != 2 || res.Cases != 1 {
		t.Fatalf("unknown composite must be excluded: n=%d cases=%d", res.N, res.Cases)
	}
	if !res.Prevalence.Equals(0.5) {
		t.Fatalf("prevalence = %+v", res.Prevalence)
	}
}

func TestAgeStandardizeAllBuckets(t *testing.T) {
	prev := map[domain.AgeBucket]float64{
		domain.Age20to29: 0.05,
		domain.Age30to39: 0.07,
		domain.Age40to49: 0.09,
		domain.Age50to59: 0.11,
		domain.Age60to69: 0.14,
		domain.Age70to79: 0.17,
		domain.Age80Plus: 0.20,
	}
	numerator := 0.0
	totalWeight := 0.0
	for bucket, p := range prev {
		numerator += p * domain.USStandard2000[bucket]
		totalWeight += domain.USStandard2000[bucket]
	}
	want := numerator / totalWeight
	got := AgeStandardize(prev)
	if !got.Valid || math.Abs(got.Float-want) > 1e-12 {
		t.Fatalf("standardized = %+v, want %v", got, want)
	}
}

func TestAgeStandardizeRenormalizesPartialCoverage(t *testing.T) {
	prev := map[domain.AgeBucket]float64{
		domain.Age20to29: 0.05,
		domain.Age30to39: 0.07,
		domain.Age40to49: 0.09,
		domain.Age50to59: 0.11,
		domain.Age60to69: 0.14,
		domain.Age70to79: 0.17,
		// 80+ suppressed for insufficient sample.
	}
	numerator := 0.0
	usedWeight := 0.0
	for bucket, p := range prev {
		numerator += p * domain.USStandard2000[bucket]
		usedWeight += domain.USStandard2000[bucket]
	}
	want := numerator / usedWeight
	got := AgeStandardize(prev)
	if !got.Valid || math.Abs(got.Float-want) > 1e-12 {
		t.Fatalf("partial standardized = %+v, want %v", got, want)
	}
	// Dropping the oldest, highest-prevalence bucket must pull the
	// standardized rate below the all-bucket mean of these inputs.
	if got.Float >= 0.20 || got.Float <= 0.05 {
		t.Fatalf("partial rate outside input range: %v", got.Float)
	}
}

func TestAgeStandardizeNoBuckets(t *testing.T) {
	if got := AgeStandardize(nil); got.Valid {
		t.Fatalf("no buckets must be undefined, got %+v", got)
	}
	if got := AgeStandardize(map[domain.AgeBucket]float64{"90+": 0.5}); got.Valid {
		t.Fatalf("unknown bucket labels carry no reference weight, got %+v", got)
	}
}
