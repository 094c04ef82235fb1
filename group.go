package docpipe

import (
	"context"
	"encoding/json"

	"github.com/cloudpeak/docpipe/internal/executor"
	"github.com/cloudpeak/docpipe/internal/grouping"
	"github.com/cloudpeak/docpipe/internal/pipeline"
)

// GroupOption configures a group-by call.
type GroupOption interface {
	apply(*groupConfig)
}

type groupOptionFunc func(*groupConfig)

func (f groupOptionFunc) apply(c *groupConfig) { f(c) }

type groupConfig struct {
	flatten     bool
	withMembers bool
	sorts       []pipeline.SortField
	pointers    bool
	direct      bool
}

// GroupFlatten unwinds array-valued fields so each element becomes its
// own grouping key instead of the whole array.
func GroupFlatten() GroupOption {
	return groupOptionFunc(func(c *groupConfig) { c.flatten = true })
}

// GroupMembers retains each group's member documents in pipeline input
// order.
func GroupMembers() GroupOption {
	return groupOptionFunc(func(c *groupConfig) { c.withMembers = true })
}

// GroupSortedBy retains member documents ordered by the field;
// repeated options declare tie-break order.
func GroupSortedBy(field string, descending bool) GroupOption {
	return groupOptionFunc(func(c *groupConfig) {
		c.withMembers = true
		c.sorts = append(c.sorts, pipeline.SortField{Field: field, Descending: descending})
	})
}

// GroupPointers trims member documents to pointer references when the
// result is decoded. It implies member retention.
func GroupPointers() GroupOption {
	return groupOptionFunc(func(c *groupConfig) {
		c.pointers = true
		c.withMembers = true
	})
}

// GroupDirect runs this group-by on the direct store only; it errors
// with ErrDirectUnavailable, without any I/O, when direct execution is
// not configured.
func GroupDirect() GroupOption {
	return groupOptionFunc(func(c *groupConfig) { c.direct = true })
}

// Group is one decoded group of a group-by result.
type Group struct {
	Key     any
	Count   int64
	Members []Document
}

// GroupedResult is the decoded, queryable wrapper around group-by
// output. It is immutable; the derived views are computed once and
// cached, so it is freely shareable across goroutines.
type GroupedResult struct {
	inner *grouping.Result
}

// Len returns the number of groups.
func (r *GroupedResult) Len() int { return r.inner.Len() }

// Groups returns the groups in pipeline output order.
func (r *GroupedResult) Groups() []Group { return toGroups(r.inner.Groups()) }

// KeysAscending returns the groups sorted by key, ascending.
func (r *GroupedResult) KeysAscending() []Group { return toGroups(r.inner.KeysAscending()) }

// KeysDescending returns the groups sorted by key, descending.
func (r *GroupedResult) KeysDescending() []Group { return toGroups(r.inner.KeysDescending()) }

// CountsAscending returns the groups sorted by count, ascending.
func (r *GroupedResult) CountsAscending() []Group { return toGroups(r.inner.CountsAscending()) }

// CountsDescending returns the groups sorted by count, descending.
func (r *GroupedResult) CountsDescending() []Group { return toGroups(r.inner.CountsDescending()) }

// Get looks a group up by key. Numeric keys match regardless of the
// concrete number type the decoder produced.
func (r *GroupedResult) Get(key any) (Group, bool) {
	g, ok := r.inner.Get(key)
	if !ok {
		return Group{}, false
	}
	return Group{Key: g.Key, Count: g.Count, Members: g.Members}, true
}

// MarshalJSON writes the groups in pipeline output order.
func (r *GroupedResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.inner)
}

func toGroups(in []grouping.Group) []Group {
	out := make([]Group, len(in))
	for i, g := range in {
		out[i] = Group{Key: g.Key, Count: g.Count, Members: g.Members}
	}
	return out
}

// GroupBy groups matching documents by the field's value and returns
// per-key counts (and member lists when requested).
func (q *Query) GroupBy(ctx context.Context, field string, opts ...GroupOption) (*GroupedResult, error) {
	cfg := collectGroupOptions(opts)

	var (
		directive grouping.Directive
		err       error
	)
	if cfg.withMembers {
		directive, err = grouping.NewSortableGroup(field, cfg.flatten, cfg.sorts, cfg.pointers)
	} else {
		directive, err = grouping.NewGroup(field, cfg.flatten)
	}
	if err != nil {
		return nil, err
	}
	return q.groupBy(ctx, "group", directive, cfg.direct)
}

// GroupByDate groups matching documents by date components of the field
// down to the requested unit, in UTC.
func (q *Query) GroupByDate(ctx context.Context, field string, unit DateUnit, opts ...GroupOption) (*GroupedResult, error) {
	cfg := collectGroupOptions(opts)

	var (
		directive grouping.Directive
		err       error
	)
	if len(cfg.sorts) > 0 {
		directive, err = grouping.NewSortableDateGroup(field, grouping.Unit(unit), cfg.sorts, cfg.pointers)
	} else {
		directive, err = grouping.NewDateGroup(field, grouping.Unit(unit), cfg.pointers)
	}
	if err != nil {
		return nil, err
	}
	return q.groupBy(ctx, "group_date", directive, cfg.direct)
}

func (q *Query) groupBy(ctx context.Context, op string, directive grouping.Directive, direct bool) (*GroupedResult, error) {
	base, err := q.compile()
	if err != nil {
		return nil, err
	}

	mode := q.mode()
	if direct {
		// Direct-only: no configured store is a configuration error
		// raised by the bridge before any I/O, never a fallback.
		mode = executor.ModeDirect
	}

	raw, err := q.run(ctx, op, directive.Stages(base), mode)
	if err != nil {
		return nil, err
	}
	decoded, err := directive.Decode(q.className, raw)
	if err != nil {
		return nil, err
	}
	return &GroupedResult{inner: decoded}, nil
}

func collectGroupOptions(opts []GroupOption) groupConfig {
	var cfg groupConfig
	for _, o := range opts {
		o.apply(&cfg)
	}
	return cfg
}
