package constraint

import (
	"fmt"

	"github.com/cloudpeak/docpipe/internal/domain"
)

// Constraint is a single filter condition on one field.
type Constraint struct {
	field string
	op    Operator
	value any
}

// Field returns the constrained field name (external, camel-cased form).
func (c Constraint) Field() string { return c.field }

// Op returns the operator.
func (c Constraint) Op() Operator { return c.op }

// Value returns the raw, unconverted value.
func (c Constraint) Value() any { return c.value }

// Set is an ordered collection of constraints, implicitly AND-ed, plus
// optional OR-groups. Assembly is side-effect free: Add and Or always
// chain, and the only assembly-time check (non-empty field, known
// operator) is recorded and surfaced at compile time through Err.
type Set struct {
	constraints []Constraint
	orGroups    [][]*Set
	err         error
}

// NewSet creates an empty constraint set.
func NewSet() *Set { return &Set{} }

// Add appends a constraint. Value/operator mismatches are deliberately
// not checked here; they fail at conversion time.
func (s *Set) Add(field string, op Operator, value any) *Set {
	if s.err == nil {
		if field == "" {
			s.err = fmt.Errorf("add %s: %w", op, domain.ErrEmptyField)
			return s
		}
		if !op.IsValid() {
			s.err = fmt.Errorf("add %q on field %q: %w", op, field, domain.ErrUnknownOperator)
			return s
		}
	}
	s.constraints = append(s.constraints, Constraint{field: field, op: op, value: value})
	return s
}

// Or appends a disjunction of sub-sets. Each call forms one OR-group;
// the group as a whole is AND-ed with the rest of the set.
func (s *Set) Or(sets ...*Set) *Set {
	if len(sets) == 0 {
		return s
	}
	s.orGroups = append(s.orGroups, sets)
	return s
}

// Constraints returns the top-level constraints in insertion order.
func (s *Set) Constraints() []Constraint { return s.constraints }

// OrGroups returns the OR-groups in insertion order.
func (s *Set) OrGroups() [][]*Set { return s.orGroups }

// IsEmpty reports whether the set has no conditions at all.
func (s *Set) IsEmpty() bool {
	return len(s.constraints) == 0 && len(s.orGroups) == 0
}

// Err returns the first assembly error, if any, including errors
// recorded inside OR-group members.
func (s *Set) Err() error {
	if s.err != nil {
		return s.err
	}
	for _, group := range s.orGroups {
		for _, sub := range group {
			if err := sub.Err(); err != nil {
				return err
			}
		}
	}
	return nil
}
