package pipeline

import (
	"github.com/cloudpeak/docpipe/internal/codec"
	"github.com/cloudpeak/docpipe/internal/domain/constraint"
)

// Compile translates a constraint set plus ordering and pagination
// directives into an ordered stage sequence. Stage emission order is
// fixed (Match, Sort, Skip, Limit) no matter in which order the caller
// attached things; pagination semantics depend on it.
func Compile(set *constraint.Set, sorts []SortField, skip, limit int) ([]Stage, error) {
	var stages []Stage

	if set != nil {
		if err := set.Err(); err != nil {
			return nil, err
		}
	}
	if set != nil && !set.IsEmpty() {
		body, err := matchBody(set)
		if err != nil {
			return nil, err
		}
		stages = append(stages, Match(body))
	}
	if len(sorts) > 0 {
		stages = append(stages, Sort(sorts))
	}
	if skip > 0 {
		stages = append(stages, Skip(skip))
	}
	if limit > 0 {
		stages = append(stages, Limit(limit))
	}
	return stages, nil
}

// matchBody builds the conjunction of all top-level constraints plus one
// $or key per OR-group. Multiple OR-groups nest under $and so none of
// them overwrites another.
func matchBody(set *constraint.Set) (map[string]any, error) {
	body := make(map[string]any)
	for _, c := range set.Constraints() {
		field, frag, err := codec.Condition(c)
		if err != nil {
			return nil, err
		}
		merge(body, field, frag)
	}

	groups := set.OrGroups()
	var orBodies []any
	for _, group := range groups {
		branches := make([]any, 0, len(group))
		for _, sub := range group {
			subBody, err := matchBody(sub)
			if err != nil {
				return nil, err
			}
			branches = append(branches, subBody)
		}
		orBodies = append(orBodies, map[string]any{"$or": branches})
	}
	switch len(orBodies) {
	case 0:
	case 1:
		or := orBodies[0].(map[string]any)
		body["$or"] = or["$or"]
	default:
		body["$and"] = orBodies
	}
	return body, nil
}

// merge folds a condition fragment into the body. Two operator maps on
// the same field merge key-wise (gte+lte ranges); a bare equality value
// is folded in as $eq when it has to coexist with operators.
func merge(body map[string]any, field string, frag any) {
	existing, ok := body[field]
	if !ok {
		body[field] = frag
		return
	}
	existingMap, eOK := operatorMap(existing)
	fragMap, fOK := operatorMap(frag)
	if !eOK {
		existingMap = map[string]any{"$eq": existing}
	}
	if !fOK {
		fragMap = map[string]any{"$eq": frag}
	}
	for k, v := range fragMap {
		existingMap[k] = v
	}
	body[field] = existingMap
}

// operatorMap reports whether v is a map of $-operators (as opposed to a
// literal map value such as a tagged date or pointer).
func operatorMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return nil, false
	}
	for k := range m {
		if len(k) == 0 || k[0] != '$' {
			return nil, false
		}
	}
	return m, true
}
