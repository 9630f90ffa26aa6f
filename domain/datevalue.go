package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// FormattedDateLayout is the caller-facing date format used by the
// task screens.
const FormattedDateLayout = "02/01/2006"

// DateValue is a tagged variant for the task date field. The remote
// store historically held a mix of formatted strings, RFC3339
// timestamps and raw millisecond numbers; the variant keeps the
// original text while repositories resolve it to one canonical
// instant before it reaches the rest of the core.
type DateValue struct {
	formatted string
	instant   time.Time
	hasTime   bool
}

// NewFormattedDate builds a DateValue from a DD/MM/YYYY string.
func NewFormattedDate(value string) DateValue {
	return DateValue{formatted: value}
}

// NewInstantDate builds a DateValue from a concrete instant.
func NewInstantDate(t time.Time) DateValue {
	return DateValue{instant: t, hasTime: true}
}

// IsZero reports whether no date was supplied at all.
func (d DateValue) IsZero() bool {
	return d.formatted == "" && !d.hasTime
}

// Formatted returns the DD/MM/YYYY rendering.
func (d DateValue) Formatted() string {
	if d.formatted != "" {
		return d.formatted
	}
	if d.hasTime {
		return d.instant.Format(FormattedDateLayout)
	}
	return ""
}

// Instant returns the canonical instant and whether one could be
// resolved. Formatted text that does not parse yields false.
func (d DateValue) Instant() (time.Time, bool) {
	if d.hasTime {
		return d.instant, true
	}
	if d.formatted == "" {
		return time.Time{}, false
	}
	parsed, err := time.Parse(FormattedDateLayout, d.formatted)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// Canonical resolves the variant once: the returned value carries both
// the instant (when resolvable) and the original text.
func (d DateValue) Canonical() DateValue {
	if d.hasTime || d.formatted == "" {
		return d
	}
	if parsed, ok := d.Instant(); ok {
		return DateValue{formatted: d.formatted, instant: parsed, hasTime: true}
	}
	return d
}

func (d DateValue) String() string {
	return d.Formatted()
}

// MarshalJSON renders formatted dates as their original text and
// instant-only dates as RFC3339.
func (d DateValue) MarshalJSON() ([]byte, error) {
	if d.formatted != "" {
		return json.Marshal(d.formatted)
	}
	if d.hasTime {
		return json.Marshal(d.instant.Format(time.RFC3339))
	}
	return json.Marshal("")
}

// UnmarshalJSON accepts the three historical encodings: a DD/MM/YYYY
// string, an RFC3339 string, or a unix millisecond number.
func (d *DateValue) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		*d = FromRaw(asString)
		return nil
	}
	var asNumber float64
	if err := json.Unmarshal(data, &asNumber); err == nil {
		*d = NewInstantDate(time.UnixMilli(int64(asNumber)).UTC())
		return nil
	}
	return fmt.Errorf("unsupported date encoding: %s", string(data))
}

// FromRaw normalizes an untyped date field read back from the store.
func FromRaw(value any) DateValue {
	switch v := value.(type) {
	case string:
		if v == "" {
			return DateValue{}
		}
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			return NewInstantDate(parsed)
		}
		return NewFormattedDate(v).Canonical()
	case float64:
		return NewInstantDate(time.UnixMilli(int64(v)).UTC())
	case time.Time:
		return NewInstantDate(v)
	default:
		return DateValue{}
	}
}
