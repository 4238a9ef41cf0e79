// Package analyze orchestrates the estimator and age-standardization across
// eras and subgroup partitions, applying the minimum-sample suppression
// rules. The analyzer is stateless: each era's result depends only on that
// era's slice of the dataset.
package analyze

import (
	"sort"

	"surveycore/internal/stats"
	"surveycore/pkg/domain"
)

// Suppression thresholds. Cells below the minimum are omitted from output,
// never zero-filled.
const (
	// MinBucketN is the minimum valid records for an age bucket to
	// contribute to standardization.
	MinBucketN = 30
	// MinSubgroupN is the minimum valid records for a subgroup/era cell.
	MinSubgroupN = 50
)

// RiskFactors lists the derived fields reported among CHD cases, in output
// order.
var RiskFactors = []string{
	domain.FieldHypertension,
	domain.FieldDiabetes,
	domain.FieldHyperlipidemia,
	domain.FieldObesity,
	domain.FieldSmokingStatus,
}

// Run produces the full analysis over an enriched dataset: the per-era
// table, sex and race/ethnicity subgroup tables, and the risk-factor table.
func Run(ds domain.Dataset) domain.AnalysisResult {
	return domain.AnalysisResult{
		ByEra:       ByEra(ds),
		BySex:       BySubgroup(ds, domain.FieldSex, domain.SexLabels),
		ByRaceEth:   BySubgroup(ds, domain.FieldRaceEth, domain.RaceEthLabels),
		RiskFactors: RiskFactorsByEra(ds),
	}
}

// presentEras returns the dataset's eras in the fixed chronological order.
func presentEras(parts map[domain.Era]domain.Dataset) []domain.Era {
	var eras []domain.Era
	for _, era := range domain.EraOrder {
		if part, ok := parts[era]; ok && part.Len() > 0 {
			eras = append(eras, era)
		}
	}
	return eras
}

// ByEra computes the crude and age-standardized CHD prevalence per era.
func ByEra(ds domain.Dataset) []domain.EraResult {
	parts := ds.ByEra()
	var results []domain.EraResult
	for _, era := range presentEras(parts) {
		records := parts[era].Records
		crude := stats.EstimateField(records, domain.FieldCHDComposite)

		byBucket := make(map[domain.AgeBucket][]domain.Record)
		for _, rec := range records {
			if bucket, ok := domain.BucketForAge(rec.Field(domain.FieldAge)); ok {
				byBucket[bucket] = append(byBucket[bucket], rec)
			}
		}
		bucketPrev := make(map[domain.AgeBucket]float64)
		for bucket, bucketRecords := range byBucket {
			est := stats.EstimateField(bucketRecords, domain.FieldCHDComposite)
			if est.N >= MinBucketN && est.Prevalence.Valid {
				bucketPrev[bucket] = est.Prevalence.Float
			}
		}

		results = append(results, domain.EraResult{
			Era:              era,
			NTotal:           len(records),
			NCHD:             crude.Cases,
			CrudePrevalence:  crude.Prevalence,
			CrudeCILow:       crude.CILow,
			CrudeCIHigh:      crude.CIHigh,
			AgeStdPrevalence: stats.AgeStandardize(bucketPrev),
		})
	}
	return results
}

// BySubgroup computes per-era CHD prevalence for each labelled category of a
// demographic field. Cells with fewer than MinSubgroupN valid records are
// suppressed.
func BySubgroup(ds domain.Dataset, field string, labels map[float64]string) []domain.SubgroupResult {
	codes := make([]float64, 0, len(labels))
	for code := range labels {
		codes = append(codes, code)
	}
	sort.Float64s(codes)

	parts := ds.ByEra()
	var results []domain.SubgroupResult
	for _, era := range presentEras(parts) {
		eraRecords := parts[era].Records
		for _, code := range codes {
			var sub []domain.Record
			for _, rec := range eraRecords {
				if rec.Field(field).Equals(code) {
					sub = append(sub, rec)
				}
			}
			est := stats.EstimateField(sub, domain.FieldCHDComposite)
			if est.N < MinSubgroupN {
				continue
			}
			results = append(results, domain.SubgroupResult{
				Era:        era,
				Subgroup:   labels[code],
				NTotal:     len(sub),
				NCHD:       est.Cases,
				Prevalence: est.Prevalence,
				CILow:      est.CILow,
				CIHigh:     est.CIHigh,
			})
		}
	}
	return results
}

// RiskFactorsByEra computes risk-factor prevalence among CHD-positive
// records per era.
func RiskFactorsByEra(ds domain.Dataset) []domain.RiskFactorResult {
	parts := ds.ByEra()
	var results []domain.RiskFactorResult
	for _, era := range presentEras(parts) {
		var cases []domain.Record
		for _, rec := range parts[era].Records {
			if rec.Derived.CHD == domain.Positive {
				cases = append(cases, rec)
			}
		}
		row := domain.RiskFactorResult{
			Era:     era,
			NCHD:    len(cases),
			Factors: make(map[string]domain.RiskFactorCell, len(RiskFactors)),
		}
		for _, factor := range RiskFactors {
			est := stats.EstimateField(cases, factor)
			row.Factors[factor] = domain.RiskFactorCell{
				Prevalence: est.Prevalence,
				Cases:      est.Cases,
			}
		}
		results = append(results, row)
	}
	return results
}

// Exclusions filters a dataset to the analytic population: adults (age >= 20)
// with a known CHD composite and a positive exam weight. Counts after each
// step are returned for logging.
func Exclusions(ds domain.Dataset) (domain.Dataset, ExclusionCounts) {
	counts := ExclusionCounts{Initial: ds.Len()}
	adults := ds.Filter(func(r domain.Record) bool {
		return r.Field(domain.FieldAge).AtLeast(20)
	})
	counts.AfterAge = adults.Len()
	known := adults.Filter(func(r domain.Record) bool {
		return r.Derived.CHD != domain.Unknown
	})
	counts.AfterOutcome = known.Len()
	weighted := known.Filter(func(r domain.Record) bool {
		w := r.Weight()
		return w.Valid && w.Float > 0
	})
	counts.AfterWeight = weighted.Len()
	return weighted, counts
}

// ExclusionCounts records the analytic sample size after each exclusion.
type ExclusionCounts struct {
	Initial      int `json:"initial"`
	AfterAge     int `json:"after_age"`
	AfterOutcome int `json:"after_outcome"`
	AfterWeight  int `json:"after_weight"`
}
