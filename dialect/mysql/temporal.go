package mysql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fluxforge/fluxforge/fferr"
	"github.com/fluxforge/fluxforge/value"
)

// decodeDate parses MySQL's "YYYY-MM-DD" text, including the zero-date
// sentinel "0000-00-00" which decodes to a DateValue with all-zero fields
// rather than failing here — the zero_date_to_null policy decision belongs
// to the replication pipeline's coercion stage (value.ZeroDate), not to
// introspection-time decoding.
func decodeDate(raw string) (value.Value, error) {
	y, m, d, err := splitDate(raw)
	if err != nil {
		return value.Value{}, fferr.Wrap(fferr.ErrIncompatibleValue, "mysql: parse date %q: %v", raw, err)
	}
	return value.Value{Kind: value.KindDate, Date: value.DateValue{Year: y, Month: m, Day: d}}, nil
}

func splitDate(raw string) (int, int, int, error) {
	parts := strings.SplitN(raw, "-", 3)
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("malformed date %q", raw)
	}
	y, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, err
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, err
	}
	d, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, 0, err
	}
	return y, m, d, nil
}

// decodeTimeOfDay parses MySQL's "HH:MM:SS[.ffffff]" TIME text.
func decodeTimeOfDay(raw string) (value.Value, error) {
	main, frac := splitFraction(raw)
	parts := strings.SplitN(main, ":", 3)
	if len(parts) != 3 {
		return value.Value{}, fferr.Wrap(fferr.ErrIncompatibleValue, "mysql: parse time %q", raw)
	}
	h, err1 := strconv.Atoi(parts[0])
	mnt, err2 := strconv.Atoi(parts[1])
	s, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return value.Value{}, fferr.Wrap(fferr.ErrIncompatibleValue, "mysql: parse time %q", raw)
	}
	return value.Value{Kind: value.KindTime, Time: value.TimeValue{Hour: h, Minute: mnt, Second: s, Nanos: frac}}, nil
}

// decodeDateTime parses MySQL's "YYYY-MM-DD HH:MM:SS[.ffffff]" text,
// including the zero-datetime sentinel, carrying declaredPrecision through
// for later truncation decisions (spec §4.1).
func decodeDateTime(raw string, declaredPrecision int) (value.Value, error) {
	datePart, timePart, ok := strings.Cut(raw, " ")
	if !ok {
		return value.Value{}, fferr.Wrap(fferr.ErrIncompatibleValue, "mysql: parse datetime %q", raw)
	}
	y, m, d, err := splitDate(datePart)
	if err != nil {
		return value.Value{}, fferr.Wrap(fferr.ErrIncompatibleValue, "mysql: parse datetime %q: %v", raw, err)
	}
	main, frac := splitFraction(timePart)
	parts := strings.SplitN(main, ":", 3)
	if len(parts) != 3 {
		return value.Value{}, fferr.Wrap(fferr.ErrIncompatibleValue, "mysql: parse datetime %q", raw)
	}
	h, err1 := strconv.Atoi(parts[0])
	mnt, err2 := strconv.Atoi(parts[1])
	s, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return value.Value{}, fferr.Wrap(fferr.ErrIncompatibleValue, "mysql: parse datetime %q", raw)
	}
	return value.Value{Kind: value.KindDateTime, DateTime: value.DateTimeValue{
		Year: y, Month: m, Day: d, Hour: h, Minute: mnt, Second: s, Nanos: frac, Precision: declaredPrecision,
	}}, nil
}

// splitFraction splits "HH:MM:SS.ffffff" into the whole-seconds part and
// its fractional-second component converted to nanoseconds.
func splitFraction(raw string) (string, int) {
	main, fracStr, ok := strings.Cut(raw, ".")
	if !ok {
		return main, 0
	}
	for len(fracStr) < 9 {
		fracStr += "0"
	}
	fracStr = fracStr[:9]
	n, err := strconv.Atoi(fracStr)
	if err != nil {
		return main, 0
	}
	return main, n
}
