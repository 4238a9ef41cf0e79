package core

import (
	"context"
	"errors"
	"testing"

	"surveycore/internal/harmonize"
	"surveycore/pkg/domain"
)

// tableLoader serves pre-built component tables keyed by cycle and component.
type tableLoader struct {
	tables map[string]map[string]harmonize.Table
	errs   map[string]error
}

func (l *tableLoader) Load(_ context.Context, cycle domain.Cycle, component string) (harmonize.Table, error) {
	if err, ok := l.errs[cycle.ID]; ok && component == harmonize.DemographicsComponent {
		return harmonize.Table{}, err
	}
	byComponent, ok := l.tables[cycle.ID]
	if !ok {
		return harmonize.Table{}, nil
	}
	return byComponent[component], nil
}

// demoTable builds a continuous-era demographics table for the given
// subjects, with fixed age, weight, and sex suitable for analysis.
func demoTable(t *testing.T, ids ...float64) harmonize.Table {
	t.Helper()
	table := harmonize.Table{Columns: []string{"SEQN", "RIDAGEYR", "RIAGENDR", "WTMEC2YR"}}
	for _, id := range ids {
		table.Rows = append(table.Rows, harmonize.Row{
			"SEQN":     domain.Some(id),
			"RIDAGEYR": domain.Some(45),
			"RIAGENDR": domain.Some(1),
			"WTMEC2YR": domain.Some(1000),
		})
	}
	return table
}

// mcqTable marks every given subject with an explicit CHD answer.
func mcqTable(t *testing.T, answer float64, ids ...float64) harmonize.Table {
	t.Helper()
	table := harmonize.Table{Columns: []string{"SEQN", "MCQ160C", "MCQ160D", "MCQ160E"}}
	for _, id := range ids {
		table.Rows = append(table.Rows, harmonize.Row{
			"SEQN":    domain.Some(id),
			"MCQ160C": domain.Some(answer),
			"MCQ160D": domain.Some(2),
			"MCQ160E": domain.Some(2),
		})
	}
	return table
}

func TestHarmonizeAllOrdersAndSkips(t *testing.T) {
	cycles := []domain.Cycle{
		{ID: "1999-2000", Type: domain.EraTypeContinuous},
		{ID: "2017-2020", Type: domain.EraTypeContinuous},
		{ID: "2021-2023", Type: domain.EraTypeContinuous},
	}
	l := &tableLoader{tables: map[string]map[string]harmonize.Table{
		"1999-2000": {harmonize.DemographicsComponent: demoTable(t, 1, 2)},
		// 2017-2020 has no demographics and must be skipped, not fatal.
		"2021-2023": {harmonize.DemographicsComponent: demoTable(t, 3)},
	}}

	svc := NewService(nil, WithParallelism(2))
	ds, err := svc.HarmonizeAll(context.Background(), cycles, l)
	if err != nil {
		t.Fatalf("HarmonizeAll: %v", err)
	}
	if ds.Len() != 3 {
		t.Fatalf("record count = %d, want 3", ds.Len())
	}
	// Cycle order is preserved regardless of goroutine completion order.
	wantCycles := []string{"1999-2000", "1999-2000", "2021-2023"}
	for i, rec := range ds.Records {
		if rec.Cycle != wantCycles[i] {
			t.Fatalf("record %d cycle = %q, want %q", i, rec.Cycle, wantCycles[i])
		}
	}
}

func TestHarmonizeAllSurfacesLoaderError(t *testing.T) {
	cycles := []domain.Cycle{{ID: "2015-2016", Type: domain.EraTypeContinuous}}
	boom := errors.New("archive unreachable")
	l := &tableLoader{errs: map[string]error{"2015-2016": boom}}

	svc := NewService(nil)
	if _, err := svc.HarmonizeAll(context.Background(), cycles, l); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
}

func TestRunPersistsDatasetAndResults(t *testing.T) {
	cycles := []domain.Cycle{{ID: "2013-2014", Type: domain.EraTypeContinuous}}
	ids := make([]float64, 60)
	for i := range ids {
		ids[i] = float64(i + 1)
	}
	l := &tableLoader{tables: map[string]map[string]harmonize.Table{
		"2013-2014": {
			harmonize.DemographicsComponent: demoTable(t, ids...),
			"MCQ":                           mcqTable(t, 2, ids...),
		},
	}}

	store := &recordingStore{}
	svc := NewService(store)
	result, err := svc.Run(context.Background(), cycles, l)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !store.savedDataset || !store.savedResults {
		t.Fatalf("persistence calls: dataset=%v results=%v", store.savedDataset, store.savedResults)
	}
	if len(result.ByEra) != 1 {
		t.Fatalf("eras = %d, want 1", len(result.ByEra))
	}
	era := result.ByEra[0]
	if era.Era != domain.Era3 {
		t.Fatalf("era = %s, want %s", era.Era, domain.Era3)
	}
	if era.NTotal != 60 || era.NCHD != 0 {
		t.Fatalf("n_total=%d n_chd=%d, want 60/0", era.NTotal, era.NCHD)
	}
	if !era.CrudePrevalence.Equals(0) {
		t.Fatalf("crude prevalence = %+v, want 0", era.CrudePrevalence)
	}
}

func TestAnalyzeAppliesExclusions(t *testing.T) {
	ds := domain.Dataset{Records: []domain.Record{
		{ID: "1", Cycle: "1999-2000", Era: domain.Era2, Fields: map[string]domain.Value{
			domain.FieldAge:        domain.Some(17),
			domain.FieldWeightExam: domain.Some(100),
		}, Derived: domain.Derived{CHD: domain.Negative}},
		{ID: "2", Cycle: "1999-2000", Era: domain.Era2, Fields: map[string]domain.Value{
			domain.FieldAge:        domain.Some(50),
			domain.FieldWeightExam: domain.Some(100),
		}, Derived: domain.Derived{CHD: domain.Positive}},
		{ID: "3", Cycle: "1999-2000", Era: domain.Era2, Fields: map[string]domain.Value{
			domain.FieldAge:        domain.Some(50),
			domain.FieldWeightExam: domain.Some(0),
		}, Derived: domain.Derived{CHD: domain.Negative}},
	}}

	svc := NewService(nil)
	_, counts := svc.Analyze(context.Background(), ds)
	if counts.Initial != 3 || counts.AfterAge != 2 || counts.AfterOutcome != 2 || counts.AfterWeight != 1 {
		t.Fatalf("exclusion counts = %+v", counts)
	}
}

// recordingStore tracks which persistence calls the pipeline makes.
type recordingStore struct {
	savedDataset bool
	savedResults bool
	dataset      domain.Dataset
	results      domain.AnalysisResult
}

func (s *recordingStore) SaveDataset(_ context.Context, ds domain.Dataset) error {
	s.savedDataset = true
	s.dataset = ds
	return nil
}

func (s *recordingStore) Dataset(context.Context) (domain.Dataset, bool, error) {
	return s.dataset, s.savedDataset, nil
}

func (s *recordingStore) SaveResults(_ context.Context, res domain.AnalysisResult) error {
	s.savedResults = true
	s.results = res
	return nil
}

func (s *recordingStore) Results(context.Context) (domain.AnalysisResult, bool, error) {
	return s.results, s.savedResults, nil
}

func (s *recordingStore) Close() error { return nil }
