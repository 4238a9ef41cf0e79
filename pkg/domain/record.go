package domain

// Canonical field names every cycle's data is mapped into, regardless of the
// era-specific source naming. Downstream code addresses fields exclusively
// through these constants.
const (
	FieldID         = "id"
	FieldAge        = "age"
	FieldSex        = "sex"
	FieldRaceEth    = "race_eth"
	FieldEducation  = "education"
	FieldPIR        = "pir"
	FieldWeightExam = "weight_exam"
	FieldPSU        = "psu"
	FieldStratum    = "strata"

	// CHD composite source indicators (1=Yes, 2=No survey coding).
	FieldCHD    = "chd"
	FieldAngina = "angina"
	FieldMI     = "mi"

	// Blood pressure readings; the number of repeated readings varies by era.
	FieldSBP1  = "sbp1"
	FieldSBP2  = "sbp2"
	FieldSBP3  = "sbp3"
	FieldDBP1  = "dbp1"
	FieldDBP2  = "dbp2"
	FieldDBP3  = "dbp3"
	FieldBPMed = "bp_med"

	FieldDiabetesTold = "diabetes_told"
	FieldInsulinUse   = "insulin_use"
	FieldOralDMMed    = "oral_dm_med"

	FieldHbA1c   = "hba1c"
	FieldGlucose = "glucose"
	FieldTChol   = "tchol"
	FieldHDL     = "hdl"
	FieldTrigly  = "trigly"
	FieldBMI     = "bmi"

	FieldSmoke100 = "smoke_100"
	FieldSmokeNow = "smoke_now"
)

// Derived field names added by the derive package.
const (
	FieldCHDComposite   = "chd_composite"
	FieldLDLCalc        = "ldl_calc"
	FieldHypertension   = "hypertension"
	FieldDiabetes       = "diabetes"
	FieldHyperlipidemia = "hyperlipidemia"
	FieldObesity        = "obesity"
	FieldSmokingStatus  = "smoking_status"
)

// Derived holds the clinical composites computed from a record's canonical
// fields. CHD keeps its explicit tri-state; the remaining binaries are
// present 0/1 values that go missing only when every contributing input was
// missing.
type Derived struct {
	CHD            TriState      `json:"chd_composite"`
	LDL            Value         `json:"ldl_calc"`
	Hypertension   Value         `json:"hypertension"`
	Diabetes       Value         `json:"diabetes"`
	Hyperlipidemia Value         `json:"hyperlipidemia"`
	Obesity        Value         `json:"obesity"`
	Smoking        SmokingStatus `json:"smoking_status"`
}

// Record is one harmonized participant row. The subject identifier is unique
// within a cycle, not across cycles; era and cycle tags are never empty.
// Records are created by the harmonizer, enriched by the derive package, and
// read-only for the analyzer.
type Record struct {
	ID      string           `json:"id"`
	Cycle   string           `json:"cycle"`
	Era     Era              `json:"era"`
	Fields  map[string]Value `json:"fields"`
	Derived Derived          `json:"derived"`
}

// Field returns the named canonical field, missing when never populated for
// this record's era.
func (r Record) Field(name string) Value {
	return r.Fields[name]
}

// Outcome resolves an estimation outcome by name, covering both source and
// derived fields. The CHD composite maps Positive to 1, Negative to 0, and
// Unknown to missing.
func (r Record) Outcome(name string) Value {
	switch name {
	case FieldCHDComposite:
		return r.Derived.CHD.Value()
	case FieldLDLCalc:
		return r.Derived.LDL
	case FieldHypertension:
		return r.Derived.Hypertension
	case FieldDiabetes:
		return r.Derived.Diabetes
	case FieldHyperlipidemia:
		return r.Derived.Hyperlipidemia
	case FieldObesity:
		return r.Derived.Obesity
	case FieldSmokingStatus:
		if r.Derived.Smoking == SmokingUnknown {
			return Missing()
		}
		if r.Derived.Smoking == SmokingCurrent {
			return Some(1)
		}
		return Some(0)
	default:
		return r.Field(name)
	}
}

// Weight returns the record's exam sampling weight. Zero or missing marks
// the record ineligible for estimation; such records are retained for audit,
// never deleted.
func (r Record) Weight() Value { return r.Field(FieldWeightExam) }

// Dataset is an ordered collection of harmonized records, possibly spanning
// many cycles.
type Dataset struct {
	Records []Record `json:"records"`
}

// Len returns the record count.
func (d Dataset) Len() int { return len(d.Records) }

// Append concatenates other onto the dataset, skipping empty slices. The
// reduction is pure: inputs are not mutated.
func (d Dataset) Append(other Dataset) Dataset {
	if other.Len() == 0 {
		return d
	}
	merged := make([]Record, 0, d.Len()+other.Len())
	merged = append(merged, d.Records...)
	merged = append(merged, other.Records...)
	return Dataset{Records: merged}
}

// Filter returns the records satisfying keep, preserving order.
func (d Dataset) Filter(keep func(Record) bool) Dataset {
	out := make([]Record, 0, d.Len())
	for _, r := range d.Records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return Dataset{Records: out}
}

// ByEra partitions the dataset by era tag.
func (d Dataset) ByEra() map[Era]Dataset {
	parts := make(map[Era]Dataset)
	for _, r := range d.Records {
		part := parts[r.Era]
		part.Records = append(part.Records, r)
		parts[r.Era] = part
	}
	return parts
}
