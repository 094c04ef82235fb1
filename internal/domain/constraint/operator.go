package constraint

// Operator is a closed set of filter operators. New operators are added
// here and in the codec conversion tables, never injected at runtime.
type Operator string

// Supported operators.
const (
	Eq     Operator = "eq"
	Ne     Operator = "ne"
	Gt     Operator = "gt"
	Gte    Operator = "gte"
	Lt     Operator = "lt"
	Lte    Operator = "lte"
	Exists Operator = "exists"

	In  Operator = "in"
	Nin Operator = "nin"
	All Operator = "all"

	Contains   Operator = "contains"
	StartsWith Operator = "starts_with"
	Like       Operator = "like"

	Before     Operator = "before"
	After      Operator = "after"
	OnOrBefore Operator = "on_or_before"
	OnOrAfter  Operator = "on_or_after"
	Between    Operator = "between"
)

var operators = map[Operator]struct{}{
	Eq: {}, Ne: {}, Gt: {}, Gte: {}, Lt: {}, Lte: {}, Exists: {},
	In: {}, Nin: {}, All: {},
	Contains: {}, StartsWith: {}, Like: {},
	Before: {}, After: {}, OnOrBefore: {}, OnOrAfter: {}, Between: {},
}

// IsValid reports whether op is a known operator.
func (op Operator) IsValid() bool {
	_, ok := operators[op]
	return ok
}

// IsMembership reports whether op takes a sequence value.
func (op Operator) IsMembership() bool {
	return op == In || op == Nin || op == All
}

// IsDate reports whether op takes a date value.
func (op Operator) IsDate() bool {
	switch op {
	case Before, After, OnOrBefore, OnOrAfter, Between:
		return true
	}
	return false
}

// IsPattern reports whether op takes a string pattern value.
func (op Operator) IsPattern() bool {
	return op == Contains || op == StartsWith || op == Like
}

func (op Operator) String() string { return string(op) }
