package grouping

import (
	"fmt"

	"github.com/cloudpeak/docpipe/internal/codec"
	"github.com/cloudpeak/docpipe/internal/domain"
	"github.com/cloudpeak/docpipe/internal/pipeline"
)

// Unit is the truncation unit for date grouping.
type Unit string

// Supported date units, coarsest to finest.
const (
	UnitYear  Unit = "year"
	UnitMonth Unit = "month"
	UnitDay   Unit = "day"
	UnitHour  Unit = "hour"
)

// IsValid reports whether u is a known unit.
func (u Unit) IsValid() bool {
	switch u {
	case UnitYear, UnitMonth, UnitDay, UnitHour:
		return true
	}
	return false
}

// dateComponents lists the key components for a unit, always nested from
// coarsest to finest.
var dateComponents = map[Unit][]struct{ key, op string }{
	UnitYear: {{"year", "$year"}},
	UnitMonth: {
		{"year", "$year"}, {"month", "$month"},
	},
	UnitDay: {
		{"year", "$year"}, {"month", "$month"}, {"day", "$dayOfMonth"},
	},
	UnitHour: {
		{"year", "$year"}, {"month", "$month"}, {"day", "$dayOfMonth"}, {"hour", "$hour"},
	},
}

// Directive describes one of the four group-by variants. Use the
// constructors; the zero Directive is invalid.
type Directive struct {
	field          string
	flatten        bool
	sorts          []pipeline.SortField
	withMembers    bool
	dateKey        bool
	unit           Unit
	returnPointers bool
}

// NewGroup creates a plain group-by directive. With flatten, each array
// element of the grouped field becomes its own document before grouping;
// without it the field's whole value is the key.
func NewGroup(field string, flatten bool) (Directive, error) {
	if field == "" {
		return Directive{}, fmt.Errorf("group: %w", domain.ErrEmptyField)
	}
	return Directive{field: field, flatten: flatten}, nil
}

// NewSortableGroup creates a group-by that retains per-group member
// lists, ordered by sorts (input order when sorts is empty).
// returnPointers trims members to references at decode time.
func NewSortableGroup(field string, flatten bool, sorts []pipeline.SortField, returnPointers bool) (Directive, error) {
	d, err := NewGroup(field, flatten)
	if err != nil {
		return Directive{}, err
	}
	d.withMembers = true
	d.sorts = sorts
	d.returnPointers = returnPointers
	return d, nil
}

// NewDateGroup creates a date-truncated group-by. Members are always
// accumulated; returnPointers trims them to references at decode time.
func NewDateGroup(field string, unit Unit, returnPointers bool) (Directive, error) {
	if field == "" {
		return Directive{}, fmt.Errorf("date group: %w", domain.ErrEmptyField)
	}
	if !unit.IsValid() {
		return Directive{}, fmt.Errorf("date group on %q: unknown unit %q", field, unit)
	}
	return Directive{
		field:          field,
		dateKey:        true,
		unit:           unit,
		withMembers:    true,
		returnPointers: returnPointers,
	}, nil
}

// NewSortableDateGroup combines date-truncated keys with sorted member
// lists.
func NewSortableDateGroup(field string, unit Unit, sorts []pipeline.SortField, returnPointers bool) (Directive, error) {
	d, err := NewDateGroup(field, unit, returnPointers)
	if err != nil {
		return Directive{}, err
	}
	d.sorts = sorts
	return d, nil
}

// Field returns the grouped field in wire form.
func (d Directive) Field() string {
	return codec.ToWireField(codec.ToInternalField(d.field))
}

// ReturnPointers reports whether members are trimmed to references.
func (d Directive) ReturnPointers() bool { return d.returnPointers }

// Stages extends a base pipeline with this directive's stages: an
// optional Unwind, an optional member-ordering Sort, then the Group.
func (d Directive) Stages(base []pipeline.Stage) []pipeline.Stage {
	field := d.Field()
	stages := append([]pipeline.Stage(nil), base...)

	if d.flatten {
		stages = append(stages, pipeline.Unwind("$"+field))
	}
	if len(d.sorts) > 0 {
		stages = append(stages, pipeline.Sort(d.sorts))
	}

	body := map[string]any{
		"_id":   d.keyExpr(field),
		"count": map[string]any{"$sum": 1},
	}
	if d.withMembers {
		body["members"] = map[string]any{"$push": "$$ROOT"}
	}
	return append(stages, pipeline.Group(body))
}

func (d Directive) keyExpr(field string) any {
	if !d.dateKey {
		return "$" + field
	}
	key := make(map[string]any, 4)
	for _, c := range dateComponents[d.unit] {
		key[c.key] = map[string]any{c.op: "$" + field}
	}
	return key
}
