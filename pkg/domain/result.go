package domain

// EstimationResult carries one survey-weighted prevalence estimate. When the
// eligible sample is empty, N is zero and every numeric field is missing;
// estimation never fails outright.
type EstimationResult struct {
	// Prevalence is the weighted point estimate on [0,1].
	Prevalence Value `json:"prevalence"`
	// SE is the approximate standard error sqrt(p(1-p)/n). This ignores
	// clustering and stratification; PSU and stratum fields are carried in
	// the record schema for a future design-based estimator.
	SE Value `json:"se"`
	// CILow and CIHigh bound the 95% confidence interval, clipped to [0,1].
	CILow  Value `json:"ci_low"`
	CIHigh Value `json:"ci_high"`
	// N is the unweighted count of records with a non-missing outcome and a
	// positive weight.
	N int `json:"n"`
	// Cases is the unweighted count of positive outcomes, reported alongside
	// the weighted prevalence for transparency.
	Cases int `json:"n_cases"`
}

// Undefined reports whether the estimate carries no information.
func (r EstimationResult) Undefined() bool { return r.N == 0 }

// EraResult is one row of the per-era prevalence table.
type EraResult struct {
	Era              Era   `json:"era"`
	NTotal           int   `json:"n_total"`
	NCHD             int   `json:"n_chd"`
	CrudePrevalence  Value `json:"crude_prevalence"`
	CrudeCILow       Value `json:"crude_ci_low"`
	CrudeCIHigh      Value `json:"crude_ci_high"`
	AgeStdPrevalence Value `json:"age_std_prevalence"`
}

// SubgroupResult is one row of the per-subgroup prevalence table. Cells with
// fewer than the minimum valid records are suppressed, never zero-filled.
type SubgroupResult struct {
	Era        Era    `json:"era"`
	Subgroup   string `json:"subgroup"`
	NTotal     int    `json:"n_total"`
	NCHD       int    `json:"n_chd"`
	Prevalence Value  `json:"prevalence"`
	CILow      Value  `json:"ci_low"`
	CIHigh     Value  `json:"ci_high"`
}

// RiskFactorCell is a single risk factor's prevalence among CHD cases.
type RiskFactorCell struct {
	Prevalence Value `json:"prev"`
	Cases      int   `json:"n"`
}

// RiskFactorResult is one row of the per-era risk-factor table, keyed by
// risk-factor field name.
type RiskFactorResult struct {
	Era     Era                       `json:"era"`
	NCHD    int                       `json:"n_chd"`
	Factors map[string]RiskFactorCell `json:"factors"`
}

// AnalysisResult aggregates the three output tables.
type AnalysisResult struct {
	ByEra       []EraResult        `json:"by_era"`
	BySex       []SubgroupResult   `json:"by_sex"`
	ByRaceEth   []SubgroupResult   `json:"by_race_eth"`
	RiskFactors []RiskFactorResult `json:"risk_factors"`
}
