package loader

import (
	"context"

	"surveycore/internal/archive/core"
	"surveycore/internal/harmonize"
	"surveycore/pkg/domain"
)

// ByEraType routes loads to the format matching the cycle's era type:
// CSV exports for the continuous survey, the fixed-width adult file for the
// legacy wave.
type ByEraType struct {
	Continuous Loader
	Legacy     Loader
}

// New returns the standard loader over an archive store.
func New(store core.Store) *ByEraType {
	return &ByEraType{
		Continuous: NewCSV(store),
		Legacy:     NewFixedWidth(store),
	}
}

// Load dispatches on the cycle's era type. Unknown era types yield an empty
// table; the cycle then fails harmonization on its absent anchor and is
// skipped, which is the configured-gap behavior, not a crash.
func (l *ByEraType) Load(ctx context.Context, cycle domain.Cycle, component string) (harmonize.Table, error) {
	switch cycle.Type {
	case domain.EraTypeContinuous:
		return l.Continuous.Load(ctx, cycle, component)
	case domain.EraTypeLegacy:
		return l.Legacy.Load(ctx, cycle, component)
	default:
		return harmonize.Table{}, nil
	}
}
