package pointer

import (
	"fmt"
	"strings"

	"github.com/cloudpeak/docpipe/internal/domain"
)

// Ref is an in-memory reference to a document in another class.
type Ref struct {
	className string
	objectID  string
}

// New validates and creates a Ref.
func New(className, objectID string) (Ref, error) {
	if className == "" {
		return Ref{}, fmt.Errorf("%w: class name is required", domain.ErrBadPointer)
	}
	if objectID == "" {
		return Ref{}, fmt.Errorf("%w: object id is required for class %q", domain.ErrBadPointer, className)
	}
	return Ref{className: className, objectID: objectID}, nil
}

// ClassName returns the referenced class.
func (r Ref) ClassName() string { return r.className }

// ObjectID returns the referenced object id.
func (r Ref) ObjectID() string { return r.objectID }

// IsZero reports whether the reference is empty.
func (r Ref) IsZero() bool { return r.className == "" && r.objectID == "" }

// String returns the compact storage reference, "<ClassName>$<objectId>".
func (r Ref) String() string {
	return r.className + "$" + r.objectID
}

// Parse decodes a compact storage reference. A leading underscore on the
// class name (system classes such as _User) is preserved.
func Parse(s string) (Ref, error) {
	class, id, ok := strings.Cut(s, "$")
	if !ok {
		return Ref{}, fmt.Errorf("%w: no separator in %q", domain.ErrBadPointer, s)
	}
	return New(class, id)
}

// IsCompact reports whether s looks like a compact storage reference.
// Class names are letters, digits and underscores, optionally starting
// with an underscore.
func IsCompact(s string) bool {
	class, id, ok := strings.Cut(s, "$")
	if !ok || class == "" || id == "" {
		return false
	}
	for i, r := range class {
		switch {
		case r == '_':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
