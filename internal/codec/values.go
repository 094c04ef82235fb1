package codec

import (
	"fmt"
	"reflect"
	"regexp"
	"time"

	"github.com/cloudpeak/docpipe/internal/domain"
	"github.com/cloudpeak/docpipe/internal/domain/constraint"
	"github.com/cloudpeak/docpipe/internal/domain/pointer"
)

// WireValue normalizes a literal to its wire form: native times become
// tagged dates, references become tagged pointers, sequences convert
// element-wise and operator maps convert recursively with their sub-keys
// normalized to strings.
func WireValue(v any) (any, error) {
	switch val := v.(type) {
	case time.Time:
		return EncodeDate(val), nil
	case pointer.Ref:
		return EncodePointer(val), nil
	case map[string]any:
		return wireMap(val)
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, sub := range val {
			m[fmt.Sprint(k)] = sub
		}
		return wireMap(m)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			we, err := WireValue(e)
			if err != nil {
				return nil, err
			}
			out[i] = we
		}
		return out, nil
	default:
		return v, nil
	}
}

func wireMap(m map[string]any) (map[string]any, error) {
	// Tagged objects pass through untouched.
	if IsDateMap(m) || IsPointerMap(m) {
		return m, nil
	}
	out := make(map[string]any, len(m))
	for k, sub := range m {
		wv, err := WireValue(sub)
		if err != nil {
			return nil, err
		}
		out[k] = wv
	}
	return out, nil
}

// Condition converts one constraint into its wire field name and the
// condition fragment placed under that field in a $match body. A bare
// (non-map) fragment means equality.
func Condition(c constraint.Constraint) (string, any, error) {
	field := ToWireField(ToInternalField(c.Field()))
	frag, err := conditionFragment(c)
	if err != nil {
		return "", nil, err
	}
	return field, frag, nil
}

func conditionFragment(c constraint.Constraint) (any, error) {
	op, value := c.Op(), c.Value()
	switch op {
	case constraint.Eq:
		return WireValue(value)
	case constraint.Ne:
		return wrapped("$ne", value)
	case constraint.Gt:
		return wrapped("$gt", value)
	case constraint.Gte:
		return wrapped("$gte", value)
	case constraint.Lt:
		return wrapped("$lt", value)
	case constraint.Lte:
		return wrapped("$lte", value)

	case constraint.Exists:
		want := true
		if value != nil {
			b, ok := value.(bool)
			if !ok {
				return nil, domain.NewConversionError(c.Field(), op.String(), value,
					fmt.Errorf("exists takes a bool, got %T", value))
			}
			want = b
		}
		return map[string]any{"$exists": want}, nil

	case constraint.In, constraint.Nin, constraint.All:
		seq, err := toSequence(value)
		if err != nil {
			return nil, domain.NewConversionError(c.Field(), op.String(), value, err)
		}
		wv, err := WireValue(seq)
		if err != nil {
			return nil, domain.NewConversionError(c.Field(), op.String(), value, err)
		}
		key := map[constraint.Operator]string{
			constraint.In:  "$in",
			constraint.Nin: "$nin",
			constraint.All: "$all",
		}[op]
		return map[string]any{key: wv}, nil

	case constraint.Contains, constraint.StartsWith, constraint.Like:
		s, ok := value.(string)
		if !ok {
			return nil, domain.NewConversionError(c.Field(), op.String(), value,
				fmt.Errorf("pattern operator takes a string, got %T", value))
		}
		pattern := regexp.QuoteMeta(s)
		switch op {
		case constraint.StartsWith:
			pattern = "^" + pattern
		case constraint.Like:
			pattern = "^" + pattern + "$"
		}
		return map[string]any{"$regex": pattern}, nil

	case constraint.Before, constraint.After, constraint.OnOrBefore, constraint.OnOrAfter:
		t, err := DecodeDate(value)
		if err != nil {
			return nil, domain.NewConversionError(c.Field(), op.String(), value, err)
		}
		key := map[constraint.Operator]string{
			constraint.Before:     "$lt",
			constraint.After:      "$gt",
			constraint.OnOrBefore: "$lte",
			constraint.OnOrAfter:  "$gte",
		}[op]
		return map[string]any{key: EncodeDate(t)}, nil

	case constraint.Between:
		seq, err := toSequence(value)
		if err != nil {
			return nil, domain.NewConversionError(c.Field(), op.String(), value, err)
		}
		if len(seq) != 2 {
			return nil, domain.NewConversionError(c.Field(), op.String(), value,
				fmt.Errorf("between takes exactly two dates, got %d values", len(seq)))
		}
		from, err := DecodeDate(seq[0])
		if err != nil {
			return nil, domain.NewConversionError(c.Field(), op.String(), value, err)
		}
		to, err := DecodeDate(seq[1])
		if err != nil {
			return nil, domain.NewConversionError(c.Field(), op.String(), value, err)
		}
		return map[string]any{"$gte": EncodeDate(from), "$lte": EncodeDate(to)}, nil

	default:
		return nil, domain.NewConversionError(c.Field(), op.String(), value, domain.ErrUnknownOperator)
	}
}

func wrapped(key string, value any) (any, error) {
	wv, err := WireValue(value)
	if err != nil {
		return nil, err
	}
	return map[string]any{key: wv}, nil
}

// toSequence accepts any slice or array value; a membership operator
// given an empty sequence is legal (it matches nothing).
func toSequence(v any) ([]any, error) {
	if v == nil {
		return nil, fmt.Errorf("membership operator takes a sequence, got nil")
	}
	if s, ok := v.([]any); ok {
		return s, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("membership operator takes a sequence, got %T", v)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}
