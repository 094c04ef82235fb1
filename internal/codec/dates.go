package codec

import (
	"fmt"
	"time"

	"github.com/cloudpeak/docpipe/internal/domain"
)

// ISOLayout is the millisecond-precision wire layout for tagged dates.
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

const (
	dateTag    = "__type"
	dateType   = "Date"
	dateISOKey = "iso"
)

// EncodeDate converts a native time to the tagged wire object.
func EncodeDate(t time.Time) map[string]any {
	return map[string]any{
		dateTag:    dateType,
		dateISOKey: t.UTC().Format(ISOLayout),
	}
}

// DecodeDate converts any accepted date input to a UTC time. The accepted
// shapes are closed and tried in a fixed order: native time, tagged wire
// object (string- or interface-keyed maps decode identically), calendar
// date string, ISO 8601 date-time string, integer epoch seconds.
// Anything else fails with domain.ErrBadDate.
func DecodeDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return d.UTC(), nil
	case map[string]any:
		return decodeTaggedDate(d)
	case map[any]any:
		m := make(map[string]any, len(d))
		for k, val := range d {
			key, ok := k.(string)
			if !ok {
				return time.Time{}, fmt.Errorf("%w: non-string key %v in tagged date", domain.ErrBadDate, k)
			}
			m[key] = val
		}
		return decodeTaggedDate(m)
	case string:
		return parseDateString(d)
	case int:
		return time.Unix(int64(d), 0).UTC(), nil
	case int32:
		return time.Unix(int64(d), 0).UTC(), nil
	case int64:
		return time.Unix(d, 0).UTC(), nil
	case float64:
		// JSON numbers decode as float64; treat as epoch seconds.
		sec := int64(d)
		nsec := int64((d - float64(sec)) * float64(time.Second))
		return time.Unix(sec, nsec).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %T", domain.ErrBadDate, v)
	}
}

// IsDateMap reports whether m is a tagged wire date object.
func IsDateMap(m map[string]any) bool {
	t, _ := m[dateTag].(string)
	return t == dateType
}

func decodeTaggedDate(m map[string]any) (time.Time, error) {
	if !IsDateMap(m) {
		return time.Time{}, fmt.Errorf("%w: map is not a tagged date", domain.ErrBadDate)
	}
	iso, ok := m[dateISOKey].(string)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: tagged date has no iso string", domain.ErrBadDate)
	}
	return parseDateString(iso)
}

// dateLayouts are tried in order. Layouts without an offset are read as
// UTC; offsets are normalized to UTC after parsing.
var dateLayouts = []string{
	ISOLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseDateString(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable date string %q", domain.ErrBadDate, s)
}
