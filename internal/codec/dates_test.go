package codec

import (
	"errors"
	"testing"
	"time"

	"github.com/cloudpeak/docpipe/internal/domain"
)

func TestEncodeDate(t *testing.T) {
	d := time.Date(2023, 9, 15, 9, 30, 0, 0, time.UTC)
	m := EncodeDate(d)
	if m["__type"] != "Date" {
		t.Errorf("__type = %v", m["__type"])
	}
	if m["iso"] != "2023-09-15T09:30:00.000Z" {
		t.Errorf("iso = %v", m["iso"])
	}
}

func TestDecodeDate_RoundTrip(t *testing.T) {
	d := time.Date(2023, 9, 15, 9, 30, 0, 0, time.UTC)
	got, err := DecodeDate(EncodeDate(d))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(d) {
		t.Errorf("round trip = %v, want %v", got, d)
	}
}

func TestDecodeDate_BothKeyForms(t *testing.T) {
	// Upstream producers may hand over either a string-keyed or an
	// interface-keyed tagged object; both must decode identically.
	stringKeyed := map[string]any{"__type": "Date", "iso": "2023-09-15T09:30:00.000Z"}
	ifaceKeyed := map[any]any{"__type": "Date", "iso": "2023-09-15T09:30:00.000Z"}

	a, err := DecodeDate(stringKeyed)
	if err != nil {
		t.Fatalf("string-keyed: %v", err)
	}
	b, err := DecodeDate(ifaceKeyed)
	if err != nil {
		t.Fatalf("interface-keyed: %v", err)
	}
	if !a.Equal(b) {
		t.Errorf("decoded to %v and %v", a, b)
	}
}

func TestDecodeDate_CalendarDate(t *testing.T) {
	got, err := DecodeDate("2023-09-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2023, 9, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want midnight UTC", got)
	}
}

func TestDecodeDate_OffsetNormalized(t *testing.T) {
	got, err := DecodeDate("2023-09-15T11:30:00+02:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2023, 9, 15, 9, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if got.Location() != time.UTC {
		t.Errorf("location = %v, want UTC", got.Location())
	}
}

func TestDecodeDate_NoOffset(t *testing.T) {
	got, err := DecodeDate("2023-09-15T09:30:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2023, 9, 15, 9, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v read as UTC", got, want)
	}
}

func TestDecodeDate_EpochSeconds(t *testing.T) {
	want := time.Date(2023, 9, 15, 9, 30, 0, 0, time.UTC)
	for _, v := range []any{int(1694770200), int64(1694770200), float64(1694770200)} {
		got, err := DecodeDate(v)
		if err != nil {
			t.Fatalf("%T: %v", v, err)
		}
		if !got.Equal(want) {
			t.Errorf("%T: got %v, want %v", v, got, want)
		}
	}
}

func TestDecodeDate_Rejects(t *testing.T) {
	inputs := []any{
		[]any{"2023-09-15"},
		map[string]any{"year": 2023},
		struct{}{},
		nil,
		"definitely not a date",
	}
	for _, v := range inputs {
		if _, err := DecodeDate(v); !errors.Is(err, domain.ErrBadDate) {
			t.Errorf("DecodeDate(%#v) err = %v, want ErrBadDate", v, err)
		}
	}
}
