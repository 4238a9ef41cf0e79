package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"surveycore/internal/archive/core"
	"surveycore/internal/harmonize"
	"surveycore/pkg/domain"
)

// CSV loads continuous-survey component tables exported as CSV from the
// archive store, keyed "<cycle>/<COMPONENT>.csv". The header row carries the
// source variable names; cells that do not parse as numbers (including the
// survey's textual missing markers) become missing values.
type CSV struct {
	Store core.Store
}

// NewCSV returns a CSV component loader over the archive store.
func NewCSV(store core.Store) *CSV { return &CSV{Store: store} }

// Load reads one component table. An absent archive object yields an empty
// table and no error.
func (l *CSV) Load(ctx context.Context, cycle domain.Cycle, component string) (harmonize.Table, error) {
	key := core.Key(cycle.ID, component, "csv")
	_, rc, err := l.Store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return harmonize.Table{}, nil
		}
		return harmonize.Table{}, fmt.Errorf("load %s: %w", key, err)
	}
	defer func() { _ = rc.Close() }()
	table, err := ParseCSV(rc)
	if err != nil {
		return harmonize.Table{}, fmt.Errorf("parse %s: %w", key, err)
	}
	return table, nil
}

// ParseCSV decodes a header-first CSV stream into a generic table.
func ParseCSV(r io.Reader) (harmonize.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return harmonize.Table{}, nil
		}
		return harmonize.Table{}, err
	}
	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(name)
	}

	table := harmonize.Table{Columns: columns}
	for {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return harmonize.Table{}, err
		}
		row := make(harmonize.Row, len(columns))
		for i, cell := range cells {
			if i >= len(columns) {
				break
			}
			if v, ok := parseCell(cell); ok {
				row[columns[i]] = v
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// parseCell converts one raw cell to a value; blanks and non-numeric markers
// are missing.
func parseCell(cell string) (domain.Value, bool) {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" || trimmed == "." {
		return domain.Value{}, false
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return domain.Value{}, false
	}
	return domain.Some(f), true
}
