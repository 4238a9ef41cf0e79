package harmonize

import (
	"errors"
	"strconv"

	"surveycore/internal/crosswalk"
	"surveycore/pkg/domain"
)

// DemographicsComponent anchors every cycle's join; all other components hang
// off it by subject identifier.
const DemographicsComponent = "DEMO"

// ComponentOrder lists the non-anchor components in their fixed join order.
// Order matters only for collision suffixing, which must be deterministic.
var ComponentOrder = []string{
	"MCQ", "BPQ", "DIQ", "SMQ", "BMX", "BPX",
	"GHB", "GLU", "TCHOL", "HDL", "TRIGLY",
}

// ErrNoDemographics marks the one hard local failure: a cycle whose
// demographic anchor table is absent or empty. The cycle is skipped at the
// pipeline level; the run continues with remaining cycles.
var ErrNoDemographics = errors.New("harmonize: demographic anchor table absent or empty")

// Harmonize joins a cycle's component tables onto its demographics anchor,
// applies the crosswalk for the cycle's era type, and tags every record with
// the cycle identifier and era label. Columns with no crosswalk entry are
// dropped, not errored. Returns ErrNoDemographics when the anchor is
// missing or empty; every other absence degrades to missing values.
func Harmonize(cycle domain.Cycle, components map[string]Table) (domain.Dataset, error) {
	anchor, ok := components[DemographicsComponent]
	if !ok || anchor.Empty() {
		return domain.Dataset{}, ErrNoDemographics
	}

	idSource, ok := crosswalk.Lookup(cycle.Type, domain.FieldID)
	if !ok {
		return domain.Dataset{}, ErrNoDemographics
	}
	key := idSource.Name
	if !anchor.hasColumn(key) {
		return domain.Dataset{}, ErrNoDemographics
	}

	merged := anchor
	for _, component := range ComponentOrder {
		table, ok := components[component]
		if !ok || table.Empty() {
			// Absent component: subjects simply carry missing values for
			// that component's fields.
			continue
		}
		merged = leftJoin(merged, table, key, component)
	}

	canonical := crosswalk.Canonical(cycle.Type)
	era := cycle.Era()
	records := make([]domain.Record, 0, len(merged.Rows))
	for _, row := range merged.Rows {
		rec := domain.Record{
			Cycle:  cycle.ID,
			Era:    era,
			Fields: make(map[string]domain.Value, len(canonical)),
		}
		for _, name := range canonical {
			src, ok := crosswalk.Lookup(cycle.Type, name)
			if !ok {
				continue
			}
			v, present := row[src.Name]
			if !present || !v.Valid {
				continue
			}
			if src.Recode != nil {
				recoded, known := src.Recode[v.Float]
				if !known {
					// Out-of-table category codes carry no canonical
					// meaning; propagate as missing.
					continue
				}
				v = domain.Some(recoded)
			}
			rec.Fields[name] = v
		}
		if id, ok := rec.Fields[domain.FieldID]; ok {
			rec.ID = strconv.FormatFloat(id.Float, 'f', -1, 64)
		}
		records = append(records, rec)
	}
	return domain.Dataset{Records: records}, nil
}
