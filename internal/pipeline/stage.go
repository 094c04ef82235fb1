package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Aggregation stage names as they appear on the wire.
const (
	OpMatch     = "$match"
	OpGroup     = "$group"
	OpSort      = "$sort"
	OpSkip      = "$skip"
	OpLimit     = "$limit"
	OpUnwind    = "$unwind"
	OpProject   = "$project"
	OpAddFields = "$addFields"
	OpCount     = "$count"
)

// SortField is one field/direction pair of an ordering spec.
type SortField struct {
	Field      string
	Descending bool
}

// Direction returns the wire sort direction, 1 or -1.
func (f SortField) Direction() int {
	if f.Descending {
		return -1
	}
	return 1
}

// Stage is one step of an aggregation pipeline. The zero Stage is
// invalid; use the constructors.
type Stage struct {
	name string
	body any
}

// Match creates a $match stage.
func Match(conditions map[string]any) Stage { return Stage{OpMatch, conditions} }

// Group creates a $group stage. The body must carry an _id key.
func Group(body map[string]any) Stage { return Stage{OpGroup, body} }

// Sort creates a $sort stage; pair order is preserved on the wire.
func Sort(fields []SortField) Stage { return Stage{OpSort, fields} }

// Skip creates a $skip stage.
func Skip(n int) Stage { return Stage{OpSkip, n} }

// Limit creates a $limit stage.
func Limit(n int) Stage { return Stage{OpLimit, n} }

// Unwind creates a $unwind stage on a "$field" path.
func Unwind(path string) Stage { return Stage{OpUnwind, path} }

// Project creates a $project stage.
func Project(fields map[string]any) Stage { return Stage{OpProject, fields} }

// AddFields creates an $addFields stage.
func AddFields(fields map[string]any) Stage { return Stage{OpAddFields, fields} }

// Count creates a $count stage writing into the named output field.
func Count(outputField string) Stage { return Stage{OpCount, outputField} }

// Name returns the wire stage name ($match, $group, ...).
func (s Stage) Name() string { return s.name }

// Body returns the stage body.
func (s Stage) Body() any { return s.body }

// SortFields returns the ordering pairs of a $sort stage, or nil.
func (s Stage) SortFields() []SortField {
	if f, ok := s.body.([]SortField); ok {
		return f
	}
	return nil
}

// MarshalJSON writes the stage as a single-key wire object. Sort bodies
// are written key by key so the caller's declared order survives.
func (s Stage) MarshalJSON() ([]byte, error) {
	if s.name == "" {
		return nil, fmt.Errorf("marshal zero pipeline stage")
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	name, err := json.Marshal(s.name)
	if err != nil {
		return nil, err
	}
	buf.Write(name)
	buf.WriteByte(':')

	if fields, ok := s.body.([]SortField); ok {
		buf.WriteByte('{')
		for i, f := range fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(f.Field)
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			fmt.Fprintf(&buf, ":%d", f.Direction())
		}
		buf.WriteByte('}')
	} else {
		body, err := json.Marshal(s.body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s body: %w", s.name, err)
		}
		buf.Write(body)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
