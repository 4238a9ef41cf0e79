// Package report renders analysis results as CSV tables. Suppressed or
// undefined quantities are written as empty cells so downstream tooling can
// distinguish "not estimable" from zero.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"surveycore/internal/analyze"
	"surveycore/pkg/domain"
)

// Output file names written by WriteAll.
const (
	FilePrevalenceByEra  = "prevalence_by_era.csv"
	FilePrevalenceBySex  = "prevalence_by_sex.csv"
	FilePrevalenceByRace = "prevalence_by_race_ethnicity.csv"
	FileRiskFactors      = "risk_factors_by_era.csv"
)

func formatValue(v domain.Value) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float, 'f', 6, 64)
}

// WriteByEra writes the per-era prevalence table.
func WriteByEra(w io.Writer, rows []domain.EraResult) error {
	cw := csv.NewWriter(w)
	header := []string{"era", "n_total", "n_chd", "crude_prevalence", "crude_ci_low", "crude_ci_high", "age_std_prevalence"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			string(row.Era),
			strconv.Itoa(row.NTotal),
			strconv.Itoa(row.NCHD),
			formatValue(row.CrudePrevalence),
			formatValue(row.CrudeCILow),
			formatValue(row.CrudeCIHigh),
			formatValue(row.AgeStdPrevalence),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteBySubgroup writes a subgroup prevalence table. Suppressed cells never
// reach this writer: the analyzer omits them entirely.
func WriteBySubgroup(w io.Writer, rows []domain.SubgroupResult) error {
	cw := csv.NewWriter(w)
	header := []string{"era", "subgroup", "n_total", "n_chd", "prevalence", "ci_low", "ci_high"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			string(row.Era),
			row.Subgroup,
			strconv.Itoa(row.NTotal),
			strconv.Itoa(row.NCHD),
			formatValue(row.Prevalence),
			formatValue(row.CILow),
			formatValue(row.CIHigh),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRiskFactors writes the per-era risk-factor table. Factor columns
// follow the analyzer's fixed output order.
func WriteRiskFactors(w io.Writer, rows []domain.RiskFactorResult) error {
	cw := csv.NewWriter(w)
	header := []string{"era", "n_chd"}
	for _, factor := range analyze.RiskFactors {
		header = append(header, factor+"_prev", factor+"_n")
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{string(row.Era), strconv.Itoa(row.NCHD)}
		for _, factor := range analyze.RiskFactors {
			cell := row.Factors[factor]
			record = append(record, formatValue(cell.Prevalence), strconv.Itoa(cell.Cases))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAll writes every result table into dir, creating it if needed.
func WriteAll(dir string, result domain.AnalysisResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	writers := []struct {
		name  string
		write func(io.Writer) error
	}{
		{FilePrevalenceByEra, func(w io.Writer) error { return WriteByEra(w, result.ByEra) }},
		{FilePrevalenceBySex, func(w io.Writer) error { return WriteBySubgroup(w, result.BySex) }},
		{FilePrevalenceByRace, func(w io.Writer) error { return WriteBySubgroup(w, result.ByRaceEth) }},
		{FileRiskFactors, func(w io.Writer) error { return WriteRiskFactors(w, result.RiskFactors) }},
	}
	for _, out := range writers {
		path := filepath.Join(dir, out.name)
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", out.name, err)
		}
		if err := out.write(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("write %s: %w", out.name, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", out.name, err)
		}
	}
	return nil
}
