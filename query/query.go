package query

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/spf13/cast"

	"github.com/ohrlando/stream-list/logger"
	"github.com/ohrlando/stream-list/observability"
	"github.com/ohrlando/stream-list/pipeline"
	"github.com/ohrlando/stream-list/util"
	"github.com/ohrlando/stream-list/validation"
)

// Mode selects the terminal a query ends with.
type Mode string

// Query modes.
const (
	ModeList  Mode = "list"
	ModeFirst Mode = "first"
	ModeLast  Mode = "last"
	ModeAny   Mode = "any"
	ModeCount Mode = "count"
)

// ModeNames lists the accepted mode names.
var ModeNames = []string{string(ModeList), string(ModeFirst), string(ModeLast), string(ModeAny), string(ModeCount)}

var fieldPattern = regexp.MustCompile(`^[^=!<>~,]+$`)

// Query describes what to do with a record pipeline. Stages are applied in a
// fixed order: every Where condition, then Distinct, then Select. Match and
// the first and last modes see whole records; Select shapes what is returned.
type Query struct {
	Where []Condition
	// Select keeps only these fields. Empty keeps whole records.
	Select []string
	// Distinct keeps the first record for every value of this field.
	Distinct string
	Mode     Mode
	// Match is the predicate of first and any. Without it first returns the
	// first surviving record and any reports whether anything survives.
	Match *Condition
	// Limit caps the records returned in list mode. Zero means no limit.
	Limit int
}

// Validate checks the query before it is built.
func (q Query) Validate() error {
	v := validation.New()
	v.Required("mode", string(q.Mode)).OneOf("mode", string(q.Mode), ModeNames)
	for i, c := range q.Where {
		field := fmt.Sprintf("where[%d]", i)
		v.Required(field, c.Field).Pattern(field, c.Field, fieldPattern)
	}
	for i, f := range q.Select {
		field := fmt.Sprintf("select[%d]", i)
		v.Required(field, f).Pattern(field, f, fieldPattern)
	}
	v.Pattern("distinct", q.Distinct, fieldPattern)
	v.Min("limit", q.Limit, 0)
	v.Custom(q.Match == nil || q.Mode == ModeFirst || q.Mode == ModeAny,
		"match", "is only supported with mode first or any")
	v.Custom(q.Limit == 0 || q.Mode == ModeList,
		"limit", "is only supported with mode list")
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// Build chains the query stages onto p. p itself is not modified.
func (q Query) Build(p *pipeline.Pipeline[Record]) *pipeline.Pipeline[Record] {
	return q.project(q.filter(p))
}

// filter chains the Where and Distinct stages. Match and the single-record
// modes run here, on whole records.
func (q Query) filter(p *pipeline.Pipeline[Record]) *pipeline.Pipeline[Record] {
	for _, c := range q.Where {
		p = p.Where(func(r Record, _ int) bool { return c.Match(r) })
	}
	if q.Distinct != "" {
		p = pipeline.DistinctBy(p, distinctKey(q.Distinct))
	}
	return p
}

// project chains the Select stage.
func (q Query) project(p *pipeline.Pipeline[Record]) *pipeline.Pipeline[Record] {
	if len(q.Select) == 0 {
		return p
	}
	return p.Select(func(r Record, _ int) Record { return q.pick(r) })
}

func (q Query) pick(r Record) Record {
	if len(q.Select) == 0 {
		return r
	}
	return r.Pick(util.Unique(q.Select))
}

// valueKind separates values that render to the same text, so 1 and "1"
// land in different distinct groups.
type valueKind uint8

const (
	kindMissing valueKind = iota
	kindNull
	kindBool
	kindNumber
	kindString
	kindNested
)

type groupKey struct {
	kind  valueKind
	value string
}

// distinctKey groups records by the value of field. Numbers group by numeric
// value whatever their decoded type; nested values by their JSON form.
// Records missing the field form one group of their own.
func distinctKey(field string) func(Record) groupKey {
	return func(r Record) groupKey {
		v, ok := r.Get(field)
		if !ok {
			return groupKey{kind: kindMissing}
		}
		switch t := v.(type) {
		case nil:
			return groupKey{kind: kindNull}
		case bool:
			return groupKey{kind: kindBool, value: strconv.FormatBool(t)}
		case string:
			return groupKey{kind: kindString, value: t}
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
			return groupKey{kind: kindNumber, value: strconv.FormatFloat(cast.ToFloat64(t), 'g', -1, 64)}
		default:
			return groupKey{kind: kindNested, value: csvCell(v)}
		}
	}
}

// Result is the outcome of Run.
type Result struct {
	Mode Mode
	// Records holds the list result, or the single record found by first or last.
	Records []Record
	// Found is the answer of any, and whether first or last found a record.
	Found bool
	// Count is the number of records for list and count.
	Count int
}

// Value returns the result as it is encoded: records for list, a record or
// nil for first and last, a bool for any, an int for count.
func (r Result) Value() any {
	switch r.Mode {
	case ModeFirst, ModeLast:
		if len(r.Records) == 0 {
			return nil
		}
		return r.Records[0]
	case ModeAny:
		return r.Found
	case ModeCount:
		return r.Count
	default:
		return r.Records
	}
}

// Run validates q, builds it onto p and evaluates the terminal for q.Mode.
// Pipeline observers see ctx, so their spans nest under the query span.
func Run(ctx context.Context, p *pipeline.Pipeline[Record], q Query) (Result, error) {
	if err := q.Validate(); err != nil {
		return Result{}, err
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanQueryRun)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrQueryMode, string(q.Mode))
	observability.SetSpanAttribute(ctx, observability.AttrRecordsDecoded, p.Len())

	start := time.Now()
	filtered := q.filter(p.WithContext(ctx))
	stages := len(filtered.Stages())
	res := Result{Mode: q.Mode}

	switch q.Mode {
	case ModeList:
		built := q.project(filtered)
		stages = len(built.Stages())
		res.Records = collect(built, q.Limit)
		res.Count = len(res.Records)
		res.Found = res.Count > 0
	case ModeFirst:
		var (
			rec   Record
			found bool
		)
		if q.Match != nil {
			rec, found = filtered.FirstMatch(q.Match.Match)
		} else {
			rec, found = filtered.First()
		}
		res.setSingle(q.pick(rec), found)
	case ModeLast:
		rec, found := filtered.Last()
		res.setSingle(q.pick(rec), found)
	case ModeAny:
		if q.Match != nil {
			res.Found = filtered.Any(q.Match.Match)
		} else {
			res.Found = filtered.Any(nil)
		}
	case ModeCount:
		res.Count = filtered.Count()
		res.Found = res.Count > 0
	}

	fields := logger.DurationFields("query.run", time.Since(start))
	fields["mode"] = string(q.Mode)
	fields[logger.FieldStages] = stages
	fields["found"] = res.Found
	logger.Get("query").WithContext(ctx).Debug("query completed", fields)
	return res, nil
}

// setSingle stores the record found by first or last. rec is already
// projected.
func (r *Result) setSingle(rec Record, found bool) {
	r.Found = found
	r.Records = []Record{}
	if found {
		r.Records = append(r.Records, rec)
		r.Count = 1
	}
}

// collect reads at most limit records through the lazy view, stopping the
// scan once the limit is reached. A zero limit collects everything.
func collect(p *pipeline.Pipeline[Record], limit int) []Record {
	if limit == 0 {
		return p.ToSlice()
	}
	out := make([]Record, 0, limit)
	for rec := range p.Values() {
		out = append(out, rec)
		if len(out) == limit {
			break
		}
	}
	return out
}
