// Package stats implements the survey-weighted prevalence estimator and the
// age-standardization of bucketed rates against the 2000 US standard
// population.
package stats

import (
	"math"

	"surveycore/pkg/domain"
)

// z95 is the normal critical value for a 95% confidence interval.
const z95 = 1.96

// Accessor extracts a possibly-missing numeric from a record.
type Accessor func(domain.Record) domain.Value

// OutcomeField returns an accessor for a named outcome (source or derived).
func OutcomeField(name string) Accessor {
	return func(r domain.Record) domain.Value { return r.Outcome(name) }
}

// WeightField returns the exam sampling-weight accessor.
func WeightField() Accessor {
	return func(r domain.Record) domain.Value { return r.Weight() }
}

// Estimate computes the weighted prevalence of outcome over the records with
// a non-missing outcome and a strictly positive weight.
//
// The point estimate is the weighted mean sum(outcome*w)/sum(w). The standard
// error is the binomial approximation sqrt(p(1-p)/n) over the unweighted
// valid count n; it ignores clustering and stratification entirely. That is
// a deliberate, documented simplification: design-based variance needs
// PSU/stratum replicate methods, and the schema carries those fields for a
// future estimator. The 95% interval is clipped to [0,1].
//
// An empty eligible set yields N=0 with every numeric field missing, never
// an error.
func Estimate(records []domain.Record, outcome, weight Accessor) domain.EstimationResult {
	var (
		weightedSum float64
		totalWeight float64
		n           int
		cases       int
	)
	for _, rec := range records {
		y := outcome(rec)
		w := weight(rec)
		if !y.Valid || !w.Valid || w.Float <= 0 {
			continue
		}
		weightedSum += y.Float * w.Float
		totalWeight += w.Float
		n++
		if y.Float != 0 {
			cases++
		}
	}
	if n == 0 || totalWeight <= 0 {
		return domain.EstimationResult{}
	}

	p := weightedSum / totalWeight
	se := math.Sqrt(p * (1 - p) / float64(n))
	return domain.EstimationResult{
		Prevalence: domain.Some(p),
		SE:         domain.Some(se),
		CILow:      domain.Some(math.Max(0, p-z95*se)),
		CIHigh:     domain.Some(math.Min(1, p+z95*se)),
		N:          n,
		Cases:      cases,
	}
}

// EstimateField is the name-based convenience form of Estimate using the
// exam weight.
func EstimateField(records []domain.Record, outcomeField string) domain.EstimationResult {
	return Estimate(records, OutcomeField(outcomeField), WeightField())
}
