package docpipe

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudpeak/docpipe/internal/domain/constraint"
	"github.com/cloudpeak/docpipe/internal/domain/pointer"
	"github.com/cloudpeak/docpipe/internal/executor"
	"github.com/cloudpeak/docpipe/internal/grouping"
	"github.com/cloudpeak/docpipe/internal/logger"
	"github.com/cloudpeak/docpipe/internal/pipeline"
)

func newSet() *constraint.Set { return constraint.NewSet() }

// Query is a fluent builder over one class. Assembly never performs I/O
// and never fails; constraint errors surface when the query compiles,
// right before execution.
type Query struct {
	client    *Client
	className string
	set       *constraint.Set
	sorts     []pipeline.SortField
	skip      int
	limit     int
	extra     []pipeline.Stage
	direct    bool
	err       error
}

func (q *Query) where(field string, op constraint.Operator, value any) *Query {
	v, err := q.constraintValue(value)
	if err != nil && q.err == nil {
		q.err = err
	}
	q.set.Add(field, op, v)
	return q
}

// constraintValue converts public value types to their internal forms.
func (q *Query) constraintValue(v any) (any, error) {
	switch val := v.(type) {
	case Pointer:
		return pointer.New(val.ClassName, val.ObjectID)
	case []Pointer:
		out := make([]any, len(val))
		for i, p := range val {
			ref, err := pointer.New(p.ClassName, p.ObjectID)
			if err != nil {
				return nil, err
			}
			out[i] = ref
		}
		return out, nil
	default:
		return v, nil
	}
}

// EqualTo adds an equality constraint.
func (q *Query) EqualTo(field string, value any) *Query {
	return q.where(field, constraint.Eq, value)
}

// NotEqualTo adds an inequality constraint.
func (q *Query) NotEqualTo(field string, value any) *Query {
	return q.where(field, constraint.Ne, value)
}

// GreaterThan adds a strict lower bound.
func (q *Query) GreaterThan(field string, value any) *Query {
	return q.where(field, constraint.Gt, value)
}

// GreaterThanOrEqualTo adds an inclusive lower bound.
func (q *Query) GreaterThanOrEqualTo(field string, value any) *Query {
	return q.where(field, constraint.Gte, value)
}

// LessThan adds a strict upper bound.
func (q *Query) LessThan(field string, value any) *Query {
	return q.where(field, constraint.Lt, value)
}

// LessThanOrEqualTo adds an inclusive upper bound.
func (q *Query) LessThanOrEqualTo(field string, value any) *Query {
	return q.where(field, constraint.Lte, value)
}

// Exists constrains the field to be present.
func (q *Query) Exists(field string) *Query {
	return q.where(field, constraint.Exists, true)
}

// DoesNotExist constrains the field to be absent.
func (q *Query) DoesNotExist(field string) *Query {
	return q.where(field, constraint.Exists, false)
}

// ContainedIn matches any of the given values. An empty list matches
// nothing.
func (q *Query) ContainedIn(field string, values ...any) *Query {
	return q.where(field, constraint.In, values)
}

// NotContainedIn matches none of the given values.
func (q *Query) NotContainedIn(field string, values ...any) *Query {
	return q.where(field, constraint.Nin, values)
}

// ContainsAll matches arrays containing every given value.
func (q *Query) ContainsAll(field string, values ...any) *Query {
	return q.where(field, constraint.All, values)
}

// Contains matches strings containing the substring.
func (q *Query) Contains(field, substring string) *Query {
	return q.where(field, constraint.Contains, substring)
}

// StartsWith matches strings with the given prefix.
func (q *Query) StartsWith(field, prefix string) *Query {
	return q.where(field, constraint.StartsWith, prefix)
}

// Like matches strings equal to the pattern literal.
func (q *Query) Like(field, s string) *Query {
	return q.where(field, constraint.Like, s)
}

// Before constrains a date field to values strictly before t.
func (q *Query) Before(field string, t any) *Query {
	return q.where(field, constraint.Before, t)
}

// After constrains a date field to values strictly after t.
func (q *Query) After(field string, t any) *Query {
	return q.where(field, constraint.After, t)
}

// OnOrBefore constrains a date field to values at or before t.
func (q *Query) OnOrBefore(field string, t any) *Query {
	return q.where(field, constraint.OnOrBefore, t)
}

// OnOrAfter constrains a date field to values at or after t.
func (q *Query) OnOrAfter(field string, t any) *Query {
	return q.where(field, constraint.OnOrAfter, t)
}

// Between constrains a date field to the inclusive [from, to] range.
func (q *Query) Between(field string, from, to any) *Query {
	return q.where(field, constraint.Between, []any{from, to})
}

// Or adds a disjunction of sub-queries; the group as a whole is AND-ed
// with the rest of the query. Only the sub-queries' constraints
// participate; their ordering and pagination are ignored.
func (q *Query) Or(queries ...*Query) *Query {
	sets := make([]*constraint.Set, 0, len(queries))
	for _, sub := range queries {
		if sub.err != nil && q.err == nil {
			q.err = sub.err
		}
		sets = append(sets, sub.set)
	}
	q.set.Or(sets...)
	return q
}

// Ascending appends an ascending sort field; call order is tie-break
// order.
func (q *Query) Ascending(field string) *Query {
	q.sorts = append(q.sorts, pipeline.SortField{Field: field})
	return q
}

// Descending appends a descending sort field.
func (q *Query) Descending(field string) *Query {
	q.sorts = append(q.sorts, pipeline.SortField{Field: field, Descending: true})
	return q
}

// Skip sets the number of documents to skip.
func (q *Query) Skip(n int) *Query {
	q.skip = n
	return q
}

// Limit caps the number of returned documents.
func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

// Unwind appends an $unwind stage on the field after the compiled
// stages.
func (q *Query) Unwind(field string) *Query {
	q.extra = append(q.extra, pipeline.Unwind("$"+field))
	return q
}

// Project appends a $project stage after the compiled stages.
func (q *Query) Project(fields map[string]any) *Query {
	q.extra = append(q.extra, pipeline.Project(fields))
	return q
}

// AddFields appends an $addFields stage after the compiled stages.
func (q *Query) AddFields(fields map[string]any) *Query {
	q.extra = append(q.extra, pipeline.AddFields(fields))
	return q
}

// Direct requests the direct store for this query. General execution
// falls back to the remote API when no store is configured; the
// *Direct methods never fall back.
func (q *Query) Direct() *Query {
	q.direct = true
	return q
}

// compile produces the base stage sequence for this query.
func (q *Query) compile() ([]pipeline.Stage, error) {
	if q.err != nil {
		return nil, q.err
	}
	stages, err := pipeline.Compile(q.set, q.sorts, q.skip, q.limit)
	if err != nil {
		return nil, err
	}
	return append(stages, q.extra...), nil
}

// mode picks the execution mode for general entry points.
func (q *Query) mode() executor.Mode {
	if q.direct {
		if q.client.bridge.HasDirect() {
			return executor.ModeDirect
		}
		// Direct requested but unavailable: general queries fall
		// back to the remote executor.
		return executor.ModeAuto
	}
	return executor.ModeAuto
}

func (q *Query) run(ctx context.Context, op string, stages []pipeline.Stage, mode executor.Mode) ([]map[string]any, error) {
	start := time.Now()
	ctx = logger.ContextWithLogger(ctx, q.client.logger)
	results, err := q.client.bridge.Run(ctx, q.className, stages, mode)
	q.client.obs.observe(op, q.className, start, err)
	return results, err
}

// Results compiles and executes the query, returning the matching
// documents in wire form.
func (q *Query) Results(ctx context.Context) ([]Document, error) {
	stages, err := q.compile()
	if err != nil {
		return nil, err
	}
	return q.run(ctx, "results", stages, q.mode())
}

// Aggregate compiles and executes the query pipeline, returning raw
// aggregation output. It behaves like Results but keeps whatever shape
// the appended stages produce.
func (q *Query) Aggregate(ctx context.Context) ([]Document, error) {
	stages, err := q.compile()
	if err != nil {
		return nil, err
	}
	return q.run(ctx, "aggregate", stages, q.mode())
}

// AggregateDirect is Aggregate on the direct store only; it errors
// without any I/O when direct execution is not configured.
func (q *Query) AggregateDirect(ctx context.Context) ([]Document, error) {
	stages, err := q.compile()
	if err != nil {
		return nil, err
	}
	return q.run(ctx, "aggregate", stages, executor.ModeDirect)
}

// Count executes the query and returns the number of matching
// documents.
func (q *Query) Count(ctx context.Context) (int64, error) {
	return q.count(ctx, q.mode())
}

// CountDirect is Count on the direct store only; it errors without any
// I/O when direct execution is not configured.
func (q *Query) CountDirect(ctx context.Context) (int64, error) {
	return q.count(ctx, executor.ModeDirect)
}

func (q *Query) count(ctx context.Context, mode executor.Mode) (int64, error) {
	stages, err := q.compile()
	if err != nil {
		return 0, err
	}
	stages = append(stages, pipeline.Count("count"))
	raw, err := q.run(ctx, "count", stages, mode)
	if err != nil {
		return 0, err
	}
	if len(raw) == 0 {
		return 0, nil
	}
	return countValue(raw[0]["count"]), nil
}

// countValue coerces the JSON or BSON number a $count stage produced.
func countValue(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int32:
		return int64(n)
	case int:
		return int64(n)
	}
	return 0
}

// Distinct returns the number of distinct values of the field among
// matching documents. Zero matching documents count as zero.
func (q *Query) Distinct(ctx context.Context, field string) (int64, error) {
	return q.distinct(ctx, field, q.mode())
}

// DistinctDirect is Distinct on the direct store only; it errors
// without any I/O when direct execution is not configured.
func (q *Query) DistinctDirect(ctx context.Context, field string) (int64, error) {
	return q.distinct(ctx, field, executor.ModeDirect)
}

func (q *Query) distinct(ctx context.Context, field string, mode executor.Mode) (int64, error) {
	if field == "" {
		return 0, fmt.Errorf("distinct: %w", ErrEmptyField)
	}
	base, err := q.compile()
	if err != nil {
		return 0, err
	}
	raw, err := q.run(ctx, "distinct", grouping.DistinctStages(field, base), mode)
	if err != nil {
		return 0, err
	}
	return grouping.DecodeDistinctCount(raw), nil
}
