package codec

import (
	"fmt"

	"github.com/cloudpeak/docpipe/internal/domain"
	"github.com/cloudpeak/docpipe/internal/domain/pointer"
)

const (
	pointerTag      = "__type"
	pointerType     = "Pointer"
	pointerClassKey = "className"
	pointerIDKey    = "objectId"
)

// EncodePointer converts a reference to the tagged wire object.
func EncodePointer(ref pointer.Ref) map[string]any {
	return map[string]any{
		pointerTag:      pointerType,
		pointerClassKey: ref.ClassName(),
		pointerIDKey:    ref.ObjectID(),
	}
}

// DecodePointer converts a tagged wire object to a reference.
func DecodePointer(m map[string]any) (pointer.Ref, error) {
	if !IsPointerMap(m) {
		return pointer.Ref{}, fmt.Errorf("%w: map is not a tagged pointer", domain.ErrBadPointer)
	}
	class, _ := m[pointerClassKey].(string)
	id, _ := m[pointerIDKey].(string)
	return pointer.New(class, id)
}

// IsPointerMap reports whether m is a tagged wire pointer object.
func IsPointerMap(m map[string]any) bool {
	t, _ := m[pointerTag].(string)
	return t == pointerType
}

// EncodePointers converts references element-wise, preserving order.
func EncodePointers(refs []pointer.Ref) []any {
	out := make([]any, len(refs))
	for i, r := range refs {
		out[i] = EncodePointer(r)
	}
	return out
}
