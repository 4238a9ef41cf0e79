// Package crosswalk holds the immutable variable-harmonization tables that
// map canonical field names to era-specific source variables, including the
// categorical recodes needed where legacy codes differ from the canonical
// scheme. Lookups are pure and never fail: an absent entry means the
// variable does not exist in that era and must surface as missing downstream.
package crosswalk

import (
	"sort"

	"surveycore/pkg/domain"
)

// Source describes where one canonical variable comes from in a given era.
type Source struct {
	// Name is the era-specific variable name, e.g. RIDAGEYR or HSAGEIR.
	Name string
	// Recode, when non-nil, maps source category codes to canonical codes.
	// Renaming alone is not enough where the legacy survey used different
	// categorical codes for the same concept.
	Recode map[float64]float64
}

// legacyRaceRecode maps NHANES III race/ethnicity codes to the continuous
// scheme. Legacy: 1=NH White, 2=NH Black, 3=Mexican American, 4=Other.
// Canonical: 1=Mexican American, 2=Other Hispanic, 3=NH White, 4=NH Black,
// 5=Other. Verified against the survey documentation as far as the legacy
// file layout allows; see DESIGN.md for the caveat on unverified positions.
var legacyRaceRecode = map[float64]float64{1: 3, 2: 4, 3: 1, 4: 5}

// tables maps era type -> canonical name -> source. Two distinct canonical
// variables may legitimately share one physical source variable
// (duplicate-source aliasing); the registry imposes no uniqueness on source
// names, only on canonical names within an era type.
var tables = map[domain.EraType]map[string]Source{
	domain.EraTypeContinuous: {
		domain.FieldID:         {Name: "SEQN"},
		domain.FieldAge:        {Name: "RIDAGEYR"},
		domain.FieldSex:        {Name: "RIAGENDR"},
		domain.FieldRaceEth:    {Name: "RIDRETH1"},
		domain.FieldEducation:  {Name: "DMDEDUC2"},
		domain.FieldPIR:        {Name: "INDFMPIR"},
		domain.FieldWeightExam: {Name: "WTMEC2YR"},
		domain.FieldPSU:        {Name: "SDMVPSU"},
		domain.FieldStratum:    {Name: "SDMVSTRA"},

		domain.FieldCHD:    {Name: "MCQ160C"},
		domain.FieldAngina: {Name: "MCQ160D"},
		domain.FieldMI:     {Name: "MCQ160E"},

		domain.FieldSBP1:  {Name: "BPXSY1"},
		domain.FieldSBP2:  {Name: "BPXSY2"},
		domain.FieldSBP3:  {Name: "BPXSY3"},
		domain.FieldDBP1:  {Name: "BPXDI1"},
		domain.FieldDBP2:  {Name: "BPXDI2"},
		domain.FieldDBP3:  {Name: "BPXDI3"},
		domain.FieldBPMed: {Name: "BPQ040A"},

		domain.FieldDiabetesTold: {Name: "DIQ010"},
		domain.FieldInsulinUse:   {Name: "DIQ050"},
		domain.FieldOralDMMed:    {Name: "DIQ070"},

		domain.FieldHbA1c:   {Name: "LBXGH"},
		domain.FieldGlucose: {Name: "LBXGLU"},
		domain.FieldTChol:   {Name: "LBXTC"},
		domain.FieldHDL:     {Name: "LBDHDD"},
		domain.FieldTrigly:  {Name: "LBXTR"},
		domain.FieldBMI:     {Name: "BMXBMI"},

		domain.FieldSmoke100: {Name: "SMQ020"},
		domain.FieldSmokeNow: {Name: "SMQ040"},
	},
	domain.EraTypeLegacy: {
		domain.FieldID:         {Name: "SEQN"},
		domain.FieldAge:        {Name: "HSAGEIR"},
		domain.FieldSex:        {Name: "HSSEX"},
		domain.FieldRaceEth:    {Name: "DMARETHN", Recode: legacyRaceRecode},
		domain.FieldEducation:  {Name: "HFA8R"},
		domain.FieldPIR:        {Name: "DMPPIR"},
		domain.FieldWeightExam: {Name: "WTPFEX6"},
		domain.FieldPSU:        {Name: "SDPPSU6"},
		domain.FieldStratum:    {Name: "SDPSTRA6"},

		domain.FieldCHD:    {Name: "HAD1"},
		domain.FieldAngina: {Name: "HAD2"},
		domain.FieldMI:     {Name: "HAD3"},

		// Legacy exams recorded two BP readings, not three.
		domain.FieldSBP1: {Name: "PEPMNK1R"},
		domain.FieldSBP2: {Name: "PEPMNK2R"},
		domain.FieldDBP1: {Name: "PEPMNK1D"},
		domain.FieldDBP2: {Name: "PEPMNK2D"},

		domain.FieldHbA1c:   {Name: "GHP"},
		domain.FieldGlucose: {Name: "G1P"},
		domain.FieldTChol:   {Name: "TCP"},
		domain.FieldHDL:     {Name: "HDP"},
		domain.FieldTrigly:  {Name: "TGP"},
		domain.FieldBMI:     {Name: "BMPBMI"},

		domain.FieldSmoke100: {Name: "HAR1"},
		domain.FieldSmokeNow: {Name: "HAR3"},
	},
}

// Lookup returns the source for a canonical name under an era type. The
// second return is false when the variable does not exist in that era; the
// caller must propagate missingness, not an error.
func Lookup(eraType domain.EraType, canonical string) (Source, bool) {
	table, ok := tables[eraType]
	if !ok {
		return Source{}, false
	}
	src, ok := table[canonical]
	return src, ok
}

// canonicalFor returns the canonical name a source variable maps to under an
// era type, applying the inverse direction of the crosswalk. When several
// canonical names alias one source, the lexically smallest canonical name
// wins deterministically.
func canonicalFor(eraType domain.EraType, sourceName string) (string, bool) {
	names := aliasesFor(eraType, sourceName)
	if len(names) == 0 {
		return "", false
	}
	return names[0], true
}

// aliasesFor returns every canonical name sourced from sourceName under an
// era type, sorted lexically. Duplicate-source aliasing means the slice can
// hold more than one entry; the source column is still read only once.
func aliasesFor(eraType domain.EraType, sourceName string) []string {
	table, ok := tables[eraType]
	if !ok {
		return nil
	}
	var out []string
	for canonical, src := range table {
		if src.Name == sourceName {
			out = append(out, canonical)
		}
	}
	sort.Strings(out)
	return out
}

// Canonical lists every canonical name defined for the era type, sorted.
func Canonical(eraType domain.EraType) []string {
	table := tables[eraType]
	out := make([]string, 0, len(table))
	for name := range table {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
