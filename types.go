package docpipe

import (
	"time"

	"github.com/cloudpeak/docpipe/internal/codec"
	"github.com/cloudpeak/docpipe/internal/domain/pointer"
	"github.com/cloudpeak/docpipe/internal/grouping"
)

// Document is an untyped wire document.
type Document = map[string]any

// Pointer is a reference to a document in another class, usable as a
// constraint value.
type Pointer struct {
	ClassName string
	ObjectID  string
}

// DateUnit is the truncation unit for date grouping.
type DateUnit string

// Date units, coarsest to finest.
const (
	Year  DateUnit = DateUnit(grouping.UnitYear)
	Month DateUnit = DateUnit(grouping.UnitMonth)
	Day   DateUnit = DateUnit(grouping.UnitDay)
	Hour  DateUnit = DateUnit(grouping.UnitHour)
)

// ParseDate decodes any accepted date input (tagged wire object, ISO
// string, calendar date, epoch seconds, native time) to a UTC time.
func ParseDate(v any) (time.Time, error) {
	return codec.DecodeDate(v)
}

// ParsePointer decodes a compact reference string such as "Song$xWMyZ4".
func ParsePointer(s string) (Pointer, error) {
	ref, err := pointer.Parse(s)
	if err != nil {
		return Pointer{}, err
	}
	return Pointer{ClassName: ref.ClassName(), ObjectID: ref.ObjectID()}, nil
}
