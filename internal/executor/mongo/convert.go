package mongo

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodrv "go.mongodb.org/mongo-driver/mongo"

	"github.com/cloudpeak/docpipe/internal/codec"
	"github.com/cloudpeak/docpipe/internal/domain/pointer"
	"github.com/cloudpeak/docpipe/internal/pipeline"
)

// ToNative converts compiled wire-form stages into a storage pipeline:
// field names become storage names, tagged dates become native times,
// tagged pointers become compact reference strings.
func ToNative(stages []pipeline.Stage) (mongodrv.Pipeline, error) {
	pipe := make(mongodrv.Pipeline, 0, len(stages))
	for _, s := range stages {
		body, err := nativeStageBody(s)
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", s.Name(), err)
		}
		pipe = append(pipe, bson.D{{Key: s.Name(), Value: body}})
	}
	return pipe, nil
}

func nativeStageBody(s pipeline.Stage) (any, error) {
	switch s.Name() {
	case pipeline.OpMatch:
		m, ok := s.Body().(map[string]any)
		if !ok {
			return nil, fmt.Errorf("match body is %T", s.Body())
		}
		return nativeMatch(m)

	case pipeline.OpSort:
		fields := s.SortFields()
		d := make(bson.D, 0, len(fields))
		for _, f := range fields {
			d = append(d, bson.E{Key: internalFieldPath(f.Field), Value: f.Direction()})
		}
		return d, nil

	case pipeline.OpSkip, pipeline.OpLimit, pipeline.OpCount:
		return s.Body(), nil

	case pipeline.OpUnwind:
		path, ok := s.Body().(string)
		if !ok {
			return nil, fmt.Errorf("unwind path is %T", s.Body())
		}
		return nativeExpr(path)

	case pipeline.OpGroup:
		m, ok := s.Body().(map[string]any)
		if !ok {
			return nil, fmt.Errorf("group body is %T", s.Body())
		}
		// Group keys name output fields; only expressions convert.
		out := make(bson.M, len(m))
		for k, v := range m {
			nv, err := nativeExpr(v)
			if err != nil {
				return nil, err
			}
			out[k] = nv
		}
		return out, nil

	case pipeline.OpProject, pipeline.OpAddFields:
		m, ok := s.Body().(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s body is %T", s.Name(), s.Body())
		}
		out := make(bson.M, len(m))
		for k, v := range m {
			nv, err := nativeExpr(v)
			if err != nil {
				return nil, err
			}
			out[internalFieldPath(k)] = nv
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unsupported stage")
	}
}

// nativeMatch converts a $match body: keys are field names unless they
// are logical operators, values are condition fragments.
func nativeMatch(m map[string]any) (bson.M, error) {
	out := make(bson.M, len(m))
	for k, v := range m {
		switch k {
		case "$or", "$and", "$nor":
			branches, ok := v.([]any)
			if !ok {
				return nil, fmt.Errorf("%s holds %T, want a list", k, v)
			}
			converted := make([]any, len(branches))
			for i, b := range branches {
				bm, ok := b.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("%s branch %d is %T", k, i, b)
				}
				cb, err := nativeMatch(bm)
				if err != nil {
					return nil, err
				}
				converted[i] = cb
			}
			out[k] = converted
		default:
			nv, err := nativeCondition(v)
			if err != nil {
				return nil, err
			}
			out[internalFieldPath(k)] = nv
		}
	}
	return out, nil
}

// nativeCondition converts a condition fragment: tagged objects become
// native values, operator maps convert value-wise, sequences convert
// element-wise.
func nativeCondition(v any) (any, error) {
	switch val := v.(type) {
	case map[string]any:
		if codec.IsDateMap(val) {
			return codec.DecodeDate(val)
		}
		if codec.IsPointerMap(val) {
			ref, err := codec.DecodePointer(val)
			if err != nil {
				return nil, err
			}
			return ref.String(), nil
		}
		out := make(bson.M, len(val))
		for k, sub := range val {
			nv, err := nativeCondition(sub)
			if err != nil {
				return nil, err
			}
			out[k] = nv
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			nv, err := nativeCondition(e)
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	default:
		return v, nil
	}
}

// nativeExpr converts an aggregation expression: "$field" references are
// rewritten to storage names, "$$" variables and operator keys pass
// through, tagged objects become native values.
func nativeExpr(v any) (any, error) {
	switch val := v.(type) {
	case string:
		if strings.HasPrefix(val, "$$") {
			return val, nil
		}
		if strings.HasPrefix(val, "$") {
			return "$" + internalFieldPath(val[1:]), nil
		}
		return val, nil
	case map[string]any:
		if codec.IsDateMap(val) {
			return codec.DecodeDate(val)
		}
		if codec.IsPointerMap(val) {
			ref, err := codec.DecodePointer(val)
			if err != nil {
				return nil, err
			}
			return ref.String(), nil
		}
		out := make(bson.M, len(val))
		for k, sub := range val {
			nv, err := nativeExpr(sub)
			if err != nil {
				return nil, err
			}
			out[k] = nv
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			nv, err := nativeExpr(e)
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	default:
		return v, nil
	}
}

// internalFieldPath converts a possibly dotted field path segment-wise.
func internalFieldPath(path string) string {
	if !strings.Contains(path, ".") {
		return codec.ToInternalField(path)
	}
	parts := strings.Split(path, ".")
	for i, p := range parts {
		parts[i] = codec.ToInternalField(p)
	}
	return strings.Join(parts, ".")
}

// wireFieldPath is the inverse of internalFieldPath.
func wireFieldPath(path string) string {
	if !strings.Contains(path, ".") {
		return codec.ToWireField(path)
	}
	parts := strings.Split(path, ".")
	for i, p := range parts {
		parts[i] = codec.ToWireField(p)
	}
	return strings.Join(parts, ".")
}

// ToWireDocument converts one storage document back to wire form:
// storage names become camel-cased wire names, native times become
// tagged dates, compact reference strings re-materialize as full
// pointer objects. Identifier values (_id, group keys) stay as-is so
// that a group keyed on a pointer field keeps its compact string key.
func ToWireDocument(doc bson.M) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		idKey := k == codec.InternalObjectID || k == codec.WireObjectID
		out[wireFieldPath(k)] = wireValue(v, idKey)
	}
	return out
}

func wireValue(v any, idKey bool) any {
	switch val := v.(type) {
	case time.Time:
		return codec.EncodeDate(val)
	case primitive.DateTime:
		return codec.EncodeDate(val.Time())
	case primitive.ObjectID:
		return val.Hex()
	case bson.M:
		return ToWireDocument(val)
	case map[string]any:
		return ToWireDocument(val)
	case bson.D:
		m := make(bson.M, len(val))
		for _, e := range val {
			m[e.Key] = e.Value
		}
		return ToWireDocument(m)
	case bson.A:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = wireValue(e, false)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = wireValue(e, false)
		}
		return out
	case string:
		if !idKey && pointer.IsCompact(val) {
			if ref, err := pointer.Parse(val); err == nil {
				return codec.EncodePointer(ref)
			}
		}
		return val
	default:
		return v
	}
}
