// Package derive computes the clinical composite variables over a harmonized
// dataset. Every derivation is a pure function of one record's canonical
// fields and tolerates absent inputs: when every contributing input is
// missing the output is missing, never an error.
package derive

import "surveycore/pkg/domain"

// Survey answer codes shared across questionnaires.
const (
	answerYes = 1
	answerNo  = 2
)

// Current-smoking answer codes.
const (
	smokeEveryDay = 1
	smokeSomeDays = 2
	smokeNotAtAll = 3
)

// Clinical thresholds.
const (
	friedewaldTGLimit = 400
	sbpThreshold      = 130
	dbpThreshold      = 80
	hba1cThreshold    = 6.5
	glucoseThreshold  = 126
	tcholThreshold    = 200
	ldlThreshold      = 130
	bmiThreshold      = 30
)

// Apply enriches every record in the dataset with its derived variables and
// returns the enriched dataset. Input records are not mutated.
func Apply(ds domain.Dataset) domain.Dataset {
	out := make([]domain.Record, len(ds.Records))
	for i, rec := range ds.Records {
		rec.Derived = Compute(rec)
		out[i] = rec
	}
	return domain.Dataset{Records: out}
}

// Compute derives all clinical composites for one record.
func Compute(rec domain.Record) domain.Derived {
	ldl := LDL(rec)
	return domain.Derived{
		CHD:            CHDComposite(rec),
		LDL:            ldl,
		Hypertension:   Hypertension(rec),
		Diabetes:       Diabetes(rec),
		Hyperlipidemia: Hyperlipidemia(rec, ldl),
		Obesity:        Obesity(rec),
		Smoking:        Smoking(rec),
	}
}

// CHDComposite classifies the record from its three yes/no heart-disease
// indicators. Positive when ANY indicator is an explicit yes; Negative only
// when ALL THREE are present and explicitly no; Unknown otherwise. A record
// with two missing indicators and one "no" is Unknown, not Negative.
func CHDComposite(rec domain.Record) domain.TriState {
	chd := rec.Field(domain.FieldCHD)
	angina := rec.Field(domain.FieldAngina)
	mi := rec.Field(domain.FieldMI)

	if chd.Equals(answerYes) || angina.Equals(answerYes) || mi.Equals(answerYes) {
		return domain.Positive
	}
	if chd.Equals(answerNo) && angina.Equals(answerNo) && mi.Equals(answerNo) {
		return domain.Negative
	}
	return domain.Unknown
}

// LDL estimates LDL cholesterol by the Friedewald equation
// TC - HDL - TG/5, in mg/dL. The equation is invalid at triglycerides
// >= 400, so the result is forced to missing there regardless of the
// arithmetic; that is an expected limitation, not an error.
func LDL(rec domain.Record) domain.Value {
	tc := rec.Field(domain.FieldTChol)
	hdl := rec.Field(domain.FieldHDL)
	tg := rec.Field(domain.FieldTrigly)
	if !tc.Valid || !hdl.Valid || !tg.Valid {
		return domain.Missing()
	}
	if tg.Float >= friedewaldTGLimit {
		return domain.Missing()
	}
	return domain.Some(tc.Float - hdl.Float - tg.Float/5)
}

// Hypertension is true when the mean of the available systolic readings is
// >= 130, the mean of the available diastolic readings is >= 80, or the
// subject reports antihypertensive medication. The reading count varies by
// era; the mean runs over whichever readings are present.
func Hypertension(rec domain.Record) domain.Value {
	meanSBP := domain.MeanValue(
		rec.Field(domain.FieldSBP1),
		rec.Field(domain.FieldSBP2),
		rec.Field(domain.FieldSBP3),
	)
	meanDBP := domain.MeanValue(
		rec.Field(domain.FieldDBP1),
		rec.Field(domain.FieldDBP2),
		rec.Field(domain.FieldDBP3),
	)
	bpMed := rec.Field(domain.FieldBPMed)

	if !meanSBP.Valid && !meanDBP.Valid && !bpMed.Valid {
		return domain.Missing()
	}
	if meanSBP.AtLeast(sbpThreshold) || meanDBP.AtLeast(dbpThreshold) || bpMed.Equals(answerYes) {
		return domain.Some(1)
	}
	return domain.Some(0)
}

// Diabetes is true on any of: HbA1c >= 6.5%, fasting glucose >= 126 mg/dL,
// insulin use, oral hypoglycemic medication, or a prior diagnosis. Missing
// sub-conditions count as not-satisfying, so one true condition decides the
// composite even when the rest are absent.
func Diabetes(rec domain.Record) domain.Value {
	hba1c := rec.Field(domain.FieldHbA1c)
	glucose := rec.Field(domain.FieldGlucose)
	insulin := rec.Field(domain.FieldInsulinUse)
	oral := rec.Field(domain.FieldOralDMMed)
	told := rec.Field(domain.FieldDiabetesTold)

	if !hba1c.Valid && !glucose.Valid && !insulin.Valid && !oral.Valid && !told.Valid {
		return domain.Missing()
	}
	if hba1c.AtLeast(hba1cThreshold) || glucose.AtLeast(glucoseThreshold) ||
		insulin.Equals(answerYes) || oral.Equals(answerYes) || told.Equals(answerYes) {
		return domain.Some(1)
	}
	return domain.Some(0)
}

// Hyperlipidemia is true when total cholesterol >= 200 or calculated LDL
// >= 130.
func Hyperlipidemia(rec domain.Record, ldl domain.Value) domain.Value {
	tc := rec.Field(domain.FieldTChol)
	if !tc.Valid && !ldl.Valid {
		return domain.Missing()
	}
	if tc.AtLeast(tcholThreshold) || ldl.AtLeast(ldlThreshold) {
		return domain.Some(1)
	}
	return domain.Some(0)
}

// Obesity is true when body-mass index >= 30.
func Obesity(rec domain.Record) domain.Value {
	bmi := rec.Field(domain.FieldBMI)
	if !bmi.Valid {
		return domain.Missing()
	}
	if bmi.Float >= bmiThreshold {
		return domain.Some(1)
	}
	return domain.Some(0)
}

// Smoking classifies the record from the lifetime 100-cigarette indicator
// and the current-smoking answer. Never is checked first so a lifetime "no"
// always wins regardless of the current answer; then Current requires an
// every-day or some-days answer and Former a not-at-all answer. Any other
// combination, in particular a missing lifetime indicator, is Unknown.
func Smoking(rec domain.Record) domain.SmokingStatus {
	lifetime := rec.Field(domain.FieldSmoke100)
	current := rec.Field(domain.FieldSmokeNow)

	switch {
	case lifetime.Equals(answerNo):
		return domain.SmokingNever
	case lifetime.Equals(answerYes) && (current.Equals(smokeEveryDay) || current.Equals(smokeSomeDays)):
		return domain.SmokingCurrent
	case lifetime.Equals(answerYes) && current.Equals(smokeNotAtAll):
		return domain.SmokingFormer
	default:
		return domain.SmokingUnknown
	}
}
