package domain

// EraType distinguishes the two survey file generations that need different
// crosswalk tables: the uniform-layout continuous survey (1999 onward) and
// the legacy fixed-width wave (1988-1994).
type EraType string

// Supported era types.
const (
	// EraTypeContinuous covers every cycle from 1999-2000 onward.
	EraTypeContinuous EraType = "continuous"
	// EraTypeLegacy covers the NHANES III 1988-1994 wave.
	EraTypeLegacy EraType = "legacy"
)

// Era is a coarse time bucket grouping cycles that share instrumentation.
type Era string

// Fixed era labels, in chronological order.
const (
	Era1  Era = "Era1_1988-1994"
	Era2  Era = "Era2_1999-2006"
	Era3  Era = "Era3_2007-2014"
	Era4a Era = "Era4a_2015-2020"
	Era4b Era = "Era4b_2021-2023"
	// EraUnknown tags cycles absent from the era mapping; the pipeline keeps
	// running rather than failing on an unrecognized cycle identifier.
	EraUnknown Era = "Unknown"
)

// EraOrder lists eras in their fixed chronological order. The analyzer
// iterates eras in this order.
var EraOrder = []Era{Era1, Era2, Era3, Era4a, Era4b, EraUnknown}

// eraByCycle maps cycle identifiers to their era label.
var eraByCycle = map[string]Era{
	"1988-1994": Era1,
	"1999-2000": Era2,
	"2001-2002": Era2,
	"2003-2004": Era2,
	"2005-2006": Era2,
	"2007-2008": Era3,
	"2009-2010": Era3,
	"2011-2012": Era3,
	"2013-2014": Era3,
	"2015-2016": Era4a,
	"2017-2020": Era4a,
	"2021-2023": Era4b,
}

// EraForCycle returns the era label for a cycle identifier, or EraUnknown
// when the cycle is not in the mapping.
func EraForCycle(cycle string) Era {
	if era, ok := eraByCycle[cycle]; ok {
		return era
	}
	return EraUnknown
}

// Cycle identifies one discrete survey wave. Cycles are defined at
// configuration time and never mutated.
type Cycle struct {
	// ID is the year-range label, e.g. "2017-2020".
	ID string
	// Type selects the crosswalk table used to harmonize the cycle.
	Type EraType
}

// Era returns the fixed era label for the cycle.
func (c Cycle) Era() Era { return EraForCycle(c.ID) }

// ContinuousCycles lists every continuous survey wave in release order.
func ContinuousCycles() []Cycle {
	ids := []string{
		"1999-2000", "2001-2002", "2003-2004", "2005-2006",
		"2007-2008", "2009-2010", "2011-2012", "2013-2014",
		"2015-2016", "2017-2020", "2021-2023",
	}
	cycles := make([]Cycle, 0, len(ids))
	for _, id := range ids {
		cycles = append(cycles, Cycle{ID: id, Type: EraTypeContinuous})
	}
	return cycles
}

// LegacyCycle returns the NHANES III wave.
func LegacyCycle() Cycle { return Cycle{ID: "1988-1994", Type: EraTypeLegacy} }

// AllCycles lists the legacy wave followed by the continuous waves.
func AllCycles() []Cycle {
	return append([]Cycle{LegacyCycle()}, ContinuousCycles()...)
}
