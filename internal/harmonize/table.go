// Package harmonize turns raw per-cycle component tables into the canonical
// participant schema by joining them on the subject identifier and applying
// the crosswalk rename/recode tables.
package harmonize

import (
	"fmt"

	"surveycore/pkg/domain"
)

// Row is one raw table row, keyed by source variable name. Cells that could
// not be parsed as numbers arrive as missing values.
type Row map[string]domain.Value

// Table is a generic tabular component as produced by a Loader. Columns
// preserves source order so that join disambiguation is deterministic.
type Table struct {
	Columns []string
	Rows    []Row
}

// Empty reports whether the table carries no rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// hasColumn reports whether the table declares the named column.
func (t Table) hasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// leftJoin merges right into left keyed on key. Every left row survives;
// subjects absent from right yield missing values for right's columns. When
// a non-key column name collides with one already present on the left, the
// right column is suffixed with "_"+suffix instead of overwriting: both
// values may be needed later (e.g. two measurement rounds sharing a raw
// name across components).
func leftJoin(left, right Table, key, suffix string) Table {
	if right.Empty() || !right.hasColumn(key) {
		return left
	}

	index := make(map[float64]Row, len(right.Rows))
	for _, row := range right.Rows {
		k, ok := row[key]
		if !ok || !k.Valid {
			continue
		}
		if _, dup := index[k.Float]; !dup {
			index[k.Float] = row
		}
	}

	renamed := make(map[string]string, len(right.Columns))
	out := Table{Columns: append([]string(nil), left.Columns...)}
	for _, col := range right.Columns {
		if col == key {
			continue
		}
		name := col
		if left.hasColumn(col) {
			name = fmt.Sprintf("%s_%s", col, suffix)
		}
		renamed[col] = name
		out.Columns = append(out.Columns, name)
	}

	out.Rows = make([]Row, 0, len(left.Rows))
	for _, lrow := range left.Rows {
		merged := make(Row, len(lrow)+len(renamed))
		for col, v := range lrow {
			merged[col] = v
		}
		if k, ok := lrow[key]; ok && k.Valid {
			if rrow, hit := index[k.Float]; hit {
				for col, name := range renamed {
					if v, present := rrow[col]; present {
						merged[name] = v
					}
				}
			}
		}
		out.Rows = append(out.Rows, merged)
	}
	return out
}
