// Package loader reads raw per-cycle component tables out of the archive
// store. An absent source is an empty table, never an error: the harmonizer
// treats an empty result identically to a missing component.
package loader

import (
	"context"

	"surveycore/internal/harmonize"
	"surveycore/pkg/domain"
)

// Loader produces one component table for a cycle. Implementations own the
// on-disk format; the pipeline core only ever sees generic tables keyed by
// the subject identifier.
type Loader interface {
	Load(ctx context.Context, cycle domain.Cycle, component string) (harmonize.Table, error)
}

// components returns the component list for a cycle, anchor first.
func components() []string {
	return append([]string{harmonize.DemographicsComponent}, harmonize.ComponentOrder...)
}

// LoadCycle loads every component table for a cycle. Per-component load
// failures degrade to empty tables except for the demographics anchor,
// whose error is surfaced so the caller can skip the cycle.
func LoadCycle(ctx context.Context, l Loader, cycle domain.Cycle) (map[string]harmonize.Table, error) {
	tables := make(map[string]harmonize.Table)
	for _, component := range components() {
		table, err := l.Load(ctx, cycle, component)
		if err != nil {
			if component == harmonize.DemographicsComponent {
				return nil, err
			}
			continue
		}
		if !table.Empty() {
			tables[component] = table
		}
	}
	return tables, nil
}
