package stats

import "surveycore/pkg/domain"

// AgeStandardize combines per-bucket prevalences into one rate standardized
// to the 2000 US population: the reference-weighted mean over the buckets
// present in the input. Buckets suppressed for insufficient sample are simply
// absent, not zero-filled; dividing by the weight actually used keeps a
// dataset missing its oldest bucket on the same [0,1] scale. With no
// qualifying buckets the rate is undefined.
func AgeStandardize(prevalenceByBucket map[domain.AgeBucket]float64) domain.Value {
	weightedSum := 0.0
	usedWeight := 0.0
	for bucket, weight := range domain.USStandard2000 {
		p, ok := prevalenceByBucket[bucket]
		if !ok {
			continue
		}
		weightedSum += p * weight
		usedWeight += weight
	}
	if usedWeight <= 0 {
		return domain.Missing()
	}
	return domain.Some(weightedSum / usedWeight)
}
