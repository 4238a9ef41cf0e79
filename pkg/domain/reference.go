package domain

// AgeBucket labels one age-standardization stratum.
type AgeBucket string

// Standard adult age buckets, in ascending order.
const (
	Age20to29 AgeBucket = "20-29"
	Age30to39 AgeBucket = "30-39"
	Age40to49 AgeBucket = "40-49"
	Age50to59 AgeBucket = "50-59"
	Age60to69 AgeBucket = "60-69"
	Age70to79 AgeBucket = "70-79"
	Age80Plus AgeBucket = "80+"
)

// AgeBuckets lists every bucket in ascending order.
var AgeBuckets = []AgeBucket{
	Age20to29, Age30to39, Age40to49, Age50to59, Age60to69, Age70to79, Age80Plus,
}

// USStandard2000 holds the 2000 US standard population weights for the adult
// age buckets: each bucket's share of the total population, so the adult
// buckets sum to less than 1. Consumers divide by the weight sum they
// actually use. Immutable, process-wide configuration.
var USStandard2000 = map[AgeBucket]float64{
	Age20to29: 0.1318,
	Age30to39: 0.1342,
	Age40to49: 0.1354,
	Age50to59: 0.0933,
	Age60to69: 0.0640,
	Age70to79: 0.0463,
	Age80Plus: 0.0229,
}

// BucketForAge assigns an age to its bucket. Ages under 20 are outside the
// analytic population and return false.
func BucketForAge(age Value) (AgeBucket, bool) {
	if !age.Valid || age.Float < 20 {
		return "", false
	}
	switch {
	case age.Float < 30:
		return Age20to29, true
	case age.Float < 40:
		return Age30to39, true
	case age.Float < 50:
		return Age40to49, true
	case age.Float < 60:
		return Age50to59, true
	case age.Float < 70:
		return Age60to69, true
	case age.Float < 80:
		return Age70to79, true
	default:
		return Age80Plus, true
	}
}

// SexLabels maps the survey sex coding to subgroup labels.
var SexLabels = map[float64]string{
	1: "Male",
	2: "Female",
}

// RaceEthLabels maps the canonical race/ethnicity coding to subgroup labels.
// Legacy-era codes are recoded into this scheme by the crosswalk before
// records reach the analyzer.
var RaceEthLabels = map[float64]string{
	1: "Mexican American",
	2: "Other Hispanic",
	3: "Non-Hispanic White",
	4: "Non-Hispanic Black",
	5: "Other/Multi-racial",
}
