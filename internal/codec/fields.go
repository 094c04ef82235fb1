package codec

import "strings"

// Fixed mappings for the three special fields; everything else converts
// by the general casing rule.
const (
	WireObjectID  = "objectId"
	WireCreatedAt = "createdAt"
	WireUpdatedAt = "updatedAt"

	InternalObjectID  = "_id"
	InternalCreatedAt = "_created_at"
	InternalUpdatedAt = "_updated_at"
)

var wireToInternal = map[string]string{
	WireObjectID:  InternalObjectID,
	WireCreatedAt: InternalCreatedAt,
	WireUpdatedAt: InternalUpdatedAt,
}

var internalToWire = map[string]string{
	InternalObjectID:  WireObjectID,
	InternalCreatedAt: WireCreatedAt,
	InternalUpdatedAt: WireUpdatedAt,
}

// ToInternalField converts an external camel-cased field name to its
// storage name.
func ToInternalField(name string) string {
	if mapped, ok := wireToInternal[name]; ok {
		return mapped
	}
	return camelToSnake(name)
}

// ToWireField converts a storage field name to its external camel-cased
// name.
func ToWireField(name string) string {
	if mapped, ok := internalToWire[name]; ok {
		return mapped
	}
	return snakeToCamel(name)
}

func camelToSnake(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func snakeToCamel(s string) string {
	if !strings.Contains(s, "_") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	upper := false
	for i, r := range s {
		if r == '_' && i > 0 {
			upper = true
			continue
		}
		if upper && r >= 'a' && r <= 'z' {
			b.WriteRune(r - 'a' + 'A')
			upper = false
			continue
		}
		upper = false
		b.WriteRune(r)
	}
	return b.String()
}
