package derive

import (
	"testing"

	"surveycore/pkg/domain"
)

func record(fields map[string]domain.Value) domain.Record {
	return domain.Record{ID: "1", Cycle: "2017-2020", Era: domain.Era4a, Fields: fields}
}

func yes() domain.Value { return domain.Some(1) }
func no() domain.Value  { return domain.Some(2) }

func TestCHDComposite(t *testing.T) {
	cases := []struct {
		name             string
		chd, angina, mi  domain.Value
		want             domain.TriState
	}{
		{"any yes is positive", yes(), no(), no(), domain.Positive},
		{"all no is negative", no(), no(), no(), domain.Negative},
		{"one missing blocks negative", domain.Missing(), no(), no(), domain.Unknown},
		{"all missing is unknown", domain.Missing(), domain.Missing(), domain.Missing(), domain.Unknown},
		{"yes wins over missing", domain.Missing(), domain.Missing(), yes(), domain.Positive},
		{"two missing one no is unknown", no(), domain.Missing(), domain.Missing(), domain.Unknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := record(map[string]domain.Value{
				domain.FieldCHD:    tc.chd,
				domain.FieldAngina: tc.angina,
				domain.FieldMI:     tc.mi,
			})
			if got := CHDComposite(rec); got != tc.want {
				t.Fatalf("CHDComposite = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestLDLFriedewald(t *testing.T) {
	rec := record(map[string]domain.Value{
		domain.FieldTChol:  domain.Some(220),
		domain.FieldHDL:    domain.Some(50),
		domain.FieldTrigly: domain.Some(150),
	})
	if got := LDL(rec); !got.Equals(140) {
		t.Fatalf("LDL = %+v, want 140", got)
	}

	for _, tg := range []float64{400, 450} {
		rec.Fields[domain.FieldTrigly] = domain.Some(tg)
		if got := LDL(rec); got.Valid {
			t.Fatalf("LDL at TG=%v must be missing, got %+v", tg, got)
		}
	}

	delete(rec.Fields, domain.FieldHDL)
	rec.Fields[domain.FieldTrigly] = domain.Some(150)
	if got := LDL(rec); got.Valid {
		t.Fatalf("LDL with missing HDL must be missing, got %+v", got)
	}
}

func TestHypertension(t *testing.T) {
	cases := []struct {
		name   string
		fields map[string]domain.Value
		want   domain.Value
	}{
		{
			"mean of available readings crosses threshold",
			map[string]domain.Value{
				domain.FieldSBP1: domain.Some(128),
				domain.FieldSBP2: domain.Some(134),
			},
			domain.Some(1), // mean 131
		},
		{
			"single reading eras work",
			map[string]domain.Value{domain.FieldDBP1: domain.Some(85)},
			domain.Some(1),
		},
		{
			"medication alone qualifies",
			map[string]domain.Value{
				domain.FieldSBP1:  domain.Some(110),
				domain.FieldDBP1:  domain.Some(70),
				domain.FieldBPMed: yes(),
			},
			domain.Some(1),
		},
		{
			"normal readings without medication",
			map[string]domain.Value{
				domain.FieldSBP1:  domain.Some(118),
				domain.FieldDBP1:  domain.Some(72),
				domain.FieldBPMed: no(),
			},
			domain.Some(0),
		},
		{
			"no inputs at all",
			map[string]domain.Value{},
			domain.Missing(),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Hypertension(record(tc.fields)); got != tc.want {
				t.Fatalf("Hypertension = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestDiabetes(t *testing.T) {
	cases := []struct {
		name   string
		fields map[string]domain.Value
		want   domain.Value
	}{
		{"hba1c threshold", map[string]domain.Value{domain.FieldHbA1c: domain.Some(6.5)}, domain.Some(1)},
		{"glucose threshold", map[string]domain.Value{domain.FieldGlucose: domain.Some(126)}, domain.Some(1)},
		{"insulin with rest missing", map[string]domain.Value{domain.FieldInsulinUse: yes()}, domain.Some(1)},
		{"diagnosis alone", map[string]domain.Value{domain.FieldDiabetesTold: yes()}, domain.Some(1)},
		{
			"no condition satisfied",
			map[string]domain.Value{domain.FieldHbA1c: domain.Some(5.4), domain.FieldDiabetesTold: no()},
			domain.Some(0),
		},
		{"all inputs missing", map[string]domain.Value{}, domain.Missing()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Diabetes(record(tc.fields)); got != tc.want {
				t.Fatalf("Diabetes = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestHyperlipidemiaAndObesity(t *testing.T) {
	rec := record(map[string]domain.Value{domain.FieldTChol: domain.Some(205)})
	if got := Hyperlipidemia(rec, domain.Missing()); !got.Equals(1) {
		t.Fatalf("tc 205 = %+v", got)
	}
	rec = record(map[string]domain.Value{domain.FieldTChol: domain.Some(180)})
	if got := Hyperlipidemia(rec, domain.Some(135)); !got.Equals(1) {
		t.Fatalf("ldl 135 = %+v", got)
	}
	if got := Hyperlipidemia(record(map[string]domain.Value{}), domain.Missing()); got.Valid {
		t.Fatalf("all missing = %+v", got)
	}

	if got := Obesity(record(map[string]domain.Value{domain.FieldBMI: domain.Some(30)})); !got.Equals(1) {
		t.Fatalf("bmi 30 = %+v", got)
	}
	if got := Obesity(record(map[string]domain.Value{domain.FieldBMI: domain.Some(24.5)})); !got.Equals(0) {
		t.Fatalf("bmi 24.5 = %+v", got)
	}
	if got := Obesity(record(map[string]domain.Value{})); got.Valid {
		t.Fatalf("missing bmi = %+v", got)
	}
}

func TestSmoking(t *testing.T) {
	cases := []struct {
		name              string
		lifetime, current domain.Value
		want              domain.SmokingStatus
	}{
		{"lifetime no always wins", no(), domain.Some(1), domain.SmokingNever},
		{"lifetime no with missing current", no(), domain.Missing(), domain.SmokingNever},
		{"every day is current", yes(), domain.Some(1), domain.SmokingCurrent},
		{"some days is current", yes(), domain.Some(2), domain.SmokingCurrent},
		{"not at all is former", yes(), domain.Some(3), domain.SmokingFormer},
		{"lifetime yes with missing current", yes(), domain.Missing(), domain.SmokingUnknown},
		{"missing lifetime regardless of current", domain.Missing(), domain.Some(1), domain.SmokingUnknown},
		{"missing everything", domain.Missing(), domain.Missing(), domain.SmokingUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := record(map[string]domain.Value{
				domain.FieldSmoke100: tc.lifetime,
				domain.FieldSmokeNow: tc.current,
			})
			if got := Smoking(rec); got != tc.want {
				t.Fatalf("Smoking = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	in := domain.Dataset{Records: []domain.Record{
		record(map[string]domain.Value{
			domain.FieldCHD:    yes(),
			domain.FieldAngina: no(),
			domain.FieldMI:     no(),
			domain.FieldBMI:    domain.Some(31),
		}),
	}}
	out := Apply(in)
	if in.Records[0].Derived.CHD != domain.Unknown {
		t.Fatalf("input record mutated: %+v", in.Records[0].Derived)
	}
	if out.Records[0].Derived.CHD != domain.Positive {
		t.Fatalf("derived CHD = %s", out.Records[0].Derived.CHD)
	}
	if !out.Records[0].Derived.Obesity.Equals(1) {
		t.Fatalf("derived obesity = %+v", out.Records[0].Derived.Obesity)
	}
}
