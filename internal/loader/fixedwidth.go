package loader

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"

	"surveycore/internal/archive/core"
	"surveycore/internal/harmonize"
	"surveycore/pkg/domain"
)

// Column describes one variable's 1-indexed, inclusive position in a
// fixed-width record line.
type Column struct {
	Name  string
	Start int
	End   int
}

// NHANESIIIAdult is the column layout of the legacy adult data file. The
// survey-design and outcome positions follow the published SAS input
// statements; a few legacy positions remain unverified against the
// authoritative documentation (see DESIGN.md) and are carried as-is.
var NHANESIIIAdult = []Column{
	{Name: "SEQN", Start: 1, End: 5},
	{Name: "DMARETHN", Start: 12, End: 12},
	{Name: "HSSEX", Start: 15, End: 15},
	{Name: "HSAGEIR", Start: 18, End: 19},
	{Name: "DMPPIR", Start: 36, End: 41},
	{Name: "SDPPSU6", Start: 43, End: 43},
	{Name: "SDPSTRA6", Start: 44, End: 45},
	{Name: "WTPFEX6", Start: 61, End: 69},
	{Name: "HAD1", Start: 1561, End: 1561},
	{Name: "HAD2", Start: 1562, End: 1562},
	{Name: "HAD3", Start: 1563, End: 1563},
	{Name: "HAR1", Start: 1707, End: 1707},
	{Name: "HAR3", Start: 1712, End: 1712},
}

// FixedWidth loads the legacy wave from its fixed-width adult file. The
// whole wave ships as one physical file, so only the demographics anchor
// component resolves to data; every other component is empty and the
// harmonizer fills the gaps with missing values.
type FixedWidth struct {
	Store  core.Store
	Schema []Column

	// FileKey overrides the archive key; defaults to <cycle>/ADULT.dat.
	FileKey string
}

// NewFixedWidth returns a legacy fixed-width loader with the adult-file
// schema.
func NewFixedWidth(store core.Store) *FixedWidth {
	return &FixedWidth{Store: store, Schema: NHANESIIIAdult}
}

// Load reads the adult file for the demographics component. Gzip-compressed
// archives are detected by magic bytes and decompressed transparently.
func (l *FixedWidth) Load(ctx context.Context, cycle domain.Cycle, component string) (harmonize.Table, error) {
	if component != harmonize.DemographicsComponent {
		return harmonize.Table{}, nil
	}
	key := l.FileKey
	if key == "" {
		key = core.Key(cycle.ID, "ADULT", "dat")
	}
	_, rc, err := l.Store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return harmonize.Table{}, nil
		}
		return harmonize.Table{}, fmt.Errorf("load %s: %w", key, err)
	}
	defer func() { _ = rc.Close() }()
	table, err := ParseFixedWidth(rc, l.Schema)
	if err != nil {
		return harmonize.Table{}, fmt.Errorf("parse %s: %w", key, err)
	}
	return table, nil
}

var gzipMagic = []byte{0x1f, 0x8b}

// ParseFixedWidth scans a fixed-width file line by line, slicing each
// variable out of its column span. Spans past the end of a short line and
// blank or non-numeric spans are missing.
func ParseFixedWidth(r io.Reader, schema []Column) (harmonize.Table, error) {
	buffered := bufio.NewReaderSize(r, 1<<20)
	head, err := buffered.Peek(2)
	if err == nil && bytes.Equal(head, gzipMagic) {
		gz, err := gzip.NewReader(buffered)
		if err != nil {
			return harmonize.Table{}, err
		}
		defer func() { _ = gz.Close() }()
		return parseLines(gz, schema)
	}
	return parseLines(buffered, schema)
}

func parseLines(r io.Reader, schema []Column) (harmonize.Table, error) {
	table := harmonize.Table{Columns: make([]string, 0, len(schema))}
	for _, col := range schema {
		table.Columns = append(table.Columns, col.Name)
	}

	scanner := bufio.NewScanner(r)
	// Legacy adult records run past the default token size.
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		row := make(harmonize.Row, len(schema))
		for _, col := range schema {
			if col.Start < 1 || col.Start > len(line) {
				continue
			}
			end := col.End
			if end > len(line) {
				end = len(line)
			}
			if v, ok := parseCell(line[col.Start-1 : end]); ok {
				row[col.Name] = v
			}
		}
		table.Rows = append(table.Rows, row)
	}
	if err := scanner.Err(); err != nil {
		return harmonize.Table{}, err
	}
	return table, nil
}
