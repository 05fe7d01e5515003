package pipeline

import (
	"bytes"
	"context"
	"strings"
	"testing"

	gojson "github.com/goccy/go-json"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/ohrlando/stream-list/logger"
	"github.com/ohrlando/stream-list/observability"
)

type recorder struct {
	evals   []Evaluation
	reports []Report
}

func (r *recorder) Observe(_ context.Context, ev Evaluation) func(Report) {
	r.evals = append(r.evals, ev)
	return func(rep Report) { r.reports = append(r.reports, rep) }
}

func TestObserver_Reports(t *testing.T) {
	rec := &recorder{}
	p := New([]int{1, 2, 3, 4}, WithObserver(rec)).Where(func(v, _ int) bool { return v > 2 })

	if v, _ := p.First(); v != 3 {
		t.Fatalf("First() = %d, want 3", v)
	}
	p.Any(func(v int) bool { return v == 4 })

	if len(rec.reports) != 2 {
		t.Fatalf("got %d reports, want 2", len(rec.reports))
	}
	first, anyEv := rec.evals[0], rec.evals[1]
	if first.Terminal != TerminalFirst || first.Stages != 1 || first.Source != 4 {
		t.Errorf("first evaluation = %+v", first)
	}
	if anyEv.Terminal != TerminalAny || anyEv.Stages != 2 {
		t.Errorf("any evaluation = %+v", anyEv)
	}
	if first.ID == "" || first.ID == anyEv.ID {
		t.Errorf("expected distinct evaluation IDs, got %q and %q", first.ID, anyEv.ID)
	}
	if r := rec.reports[0]; r.Scanned != 3 || r.Emitted != 1 || r.ShortCircuited {
		t.Errorf("first report = %+v", r)
	}
	if r := rec.reports[1]; r.Scanned != 4 || !r.ShortCircuited {
		t.Errorf("any report = %+v", r)
	}
}

func TestObserver_PropagatesToBranchesAndProjections(t *testing.T) {
	rec := &recorder{}
	root := New([]int{1, 2}, WithObserver(rec))
	Project(root.Where(isEven), func(v, _ int) string { return "x" }).ToSlice()

	if len(rec.evals) != 1 {
		t.Fatalf("got %d evaluations, want 1", len(rec.evals))
	}
	if rec.evals[0].Source != -1 {
		t.Errorf("projected source size = %d, want -1", rec.evals[0].Source)
	}
	if rec.reports[0].Scanned != 1 {
		t.Errorf("scanned = %d, want 1", rec.reports[0].Scanned)
	}
}

func TestObserver_PanicReportedAndReraised(t *testing.T) {
	rec := &recorder{}
	p := New([]int{1, 2, 3}, WithObserver(rec)).Where(func(v, _ int) bool {
		if v == 2 {
			panic("bad element")
		}
		return true
	})

	func() {
		defer func() {
			if r := recover(); r != "bad element" {
				t.Errorf("recovered %v, want the original panic value", r)
			}
		}()
		p.ToSlice()
	}()

	if len(rec.reports) != 1 {
		t.Fatalf("got %d reports, want 1", len(rec.reports))
	}
	rep := rec.reports[0]
	if rep.Err == nil || !strings.Contains(rep.Err.Error(), "bad element") {
		t.Errorf("report error = %v", rep.Err)
	}
	if rep.Scanned != 2 {
		t.Errorf("scanned = %d, want 2", rep.Scanned)
	}
}

func TestWithTracing(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	p := New([]int{1, 2, 3}, WithTracing("pipeline"))
	p.Count()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name != "pipeline.count" {
		t.Errorf("span name = %q, want pipeline.count", span.Name)
	}
	attrs := map[string]int64{}
	for _, kv := range span.Attributes {
		if kv.Value.Type().String() == "INT64" {
			attrs[string(kv.Key)] = kv.Value.AsInt64()
		}
	}
	if attrs[observability.AttrScanned] != 3 || attrs[observability.AttrEmitted] != 3 {
		t.Errorf("span attributes = %v", span.Attributes)
	}
	if span.Status.Code == codes.Error {
		t.Error("expected span without error status")
	}
}

func TestWithMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	metrics, err := observability.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatal(err)
	}
	p := New([]int{1, 2, 3, 4}, WithMetrics(metrics)).Where(isEven)
	p.ToSlice()
	p.Last()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if data, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range data.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	if sums["pipeline.evaluation.total"] != 2 {
		t.Errorf("evaluation.total = %d, want 2", sums["pipeline.evaluation.total"])
	}
	if sums["pipeline.elements.scanned"] != 8 || sums["pipeline.elements.emitted"] != 4 {
		t.Errorf("sums = %v", sums)
	}
}

func TestWithMetrics_Nil(t *testing.T) {
	p := New([]int{1}, WithMetrics(nil), WithLogging(nil))
	if len(p.opts.observers) != 0 {
		t.Errorf("expected nil metrics and logger to be ignored, got %d observers", len(p.opts.observers))
	}
}

func TestWithLogging(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&logger.Config{Level: "debug", Format: logger.FormatJSON, Writer: &buf}, "streamlist")

	New([]string{"a", "b"}, WithLogging(log)).Count()

	var entry map[string]any
	if err := gojson.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("log line %q is not JSON: %v", buf.String(), err)
	}
	if entry["message"] != "pipeline evaluation completed" {
		t.Errorf("message = %v", entry["message"])
	}
	if entry[logger.FieldTerminal] != TerminalCount {
		t.Errorf("terminal = %v", entry[logger.FieldTerminal])
	}
	if entry[logger.FieldEmitted] != float64(2) {
		t.Errorf("emitted = %v", entry[logger.FieldEmitted])
	}
	if id, _ := entry[logger.FieldEvaluationID].(string); id == "" {
		t.Error("expected evaluation id field")
	}
}
