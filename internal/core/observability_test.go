package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestExpvarMetricsRecorderAggregates(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	ctx := context.Background()

	rec.Observe(ctx, "harmonize_all", true, 20*time.Millisecond)
	rec.Observe(ctx, "harmonize_all", true, 30*time.Millisecond)
	rec.Observe(ctx, "harmonize_all", false, 5*time.Millisecond)
	rec.Observe(ctx, "", true, time.Millisecond)

	snap := rec.Snapshot()
	if got := snap.Results["harmonize_all"]["success"]; got != 2 {
		t.Fatalf("success count = %d, want 2", got)
	}
	if got := snap.Results["harmonize_all"]["error"]; got != 1 {
		t.Fatalf("error count = %d, want 1", got)
	}
	if got := snap.DurationsMS["harmonize_all"]; got != 55 {
		t.Fatalf("duration total = %v, want 55", got)
	}
	if _, ok := snap.Results[""]; ok {
		t.Fatal("unnamed operation must be dropped")
	}
}

func TestJSONTracerRecordsSpans(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewJSONTracer(&buf)

	_, span := tracer.Start(context.Background(), "analyze")
	span.End(nil)
	_, span = tracer.Start(context.Background(), "run")
	span.End(errors.New("store down"))

	var entries []JSONTraceEntry
	dec := json.NewDecoder(&buf)
	for dec.More() {
		var entry JSONTraceEntry
		if err := dec.Decode(&entry); err != nil {
			t.Fatalf("decode span: %v", err)
		}
		entries = append(entries, entry)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Operation != "analyze" || entries[0].Status != "success" {
		t.Fatalf("first entry = %+v", entries[0])
	}
	if entries[1].Operation != "run" || entries[1].Status != "error" || entries[1].Error != "store down" {
		t.Fatalf("second entry = %+v", entries[1])
	}
	if entries[1].EndedAt.Before(entries[1].StartedAt) {
		t.Fatalf("span ended before it started: %+v", entries[1])
	}
}

func TestJSONTracerNilWriter(t *testing.T) {
	tracer := NewJSONTracer(nil)
	_, span := tracer.Start(context.Background(), "derive")
	span.End(nil)
}

func TestPrometheusRecorderExposesMetrics(t *testing.T) {
	rec := NewPrometheusMetricsRecorder()
	rec.Observe(context.Background(), "derive", true, 12*time.Millisecond)
	rec.Observe(context.Background(), "derive", false, 3*time.Millisecond)

	srv := httptest.NewServer(rec.Handler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	var body bytes.Buffer
	if _, err := body.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	text := body.String()
	if !strings.Contains(text, `surveycore_operation_results_total{operation="derive",status="success"} 1`) {
		t.Fatalf("missing success counter in scrape:\n%s", text)
	}
	if !strings.Contains(text, `surveycore_operation_duration_seconds_count{operation="derive"} 2`) {
		t.Fatalf("missing duration histogram in scrape:\n%s", text)
	}
}
