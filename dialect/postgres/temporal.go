package postgres

import (
	"strconv"
	"strings"

	"github.com/fluxforge/fluxforge/fferr"
	"github.com/fluxforge/fluxforge/value"
)

// decodeDate parses PostgreSQL's "YYYY-MM-DD" DATE text.
func decodeDate(raw string) (value.Value, error) {
	y, m, d, err := splitDate(raw)
	if err != nil {
		return value.Value{}, fferr.Wrap(fferr.ErrIncompatibleValue, "postgres: parse date %q: %v", raw, err)
	}
	return value.Value{Kind: value.KindDate, Date: value.DateValue{Year: y, Month: m, Day: d}}, nil
}

func splitDate(raw string) (int, int, int, error) {
	parts := strings.SplitN(raw, "-", 3)
	if len(parts) != 3 {
		return 0, 0, 0, fferr.Wrap(fferr.ErrIncompatibleValue, "malformed date %q", raw)
	}
	y, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	d, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, fferr.Wrap(fferr.ErrIncompatibleValue, "malformed date %q", raw)
	}
	return y, m, d, nil
}

// decodeTimeOfDay parses PostgreSQL's "HH:MM:SS[.ffffff]" TIME text,
// ignoring any trailing zone offset (TIME WITH TIME ZONE, rarely used).
func decodeTimeOfDay(raw string) (value.Value, error) {
	raw = stripZoneOffset(raw)
	main, frac := splitFraction(raw)
	parts := strings.SplitN(main, ":", 3)
	if len(parts) != 3 {
		return value.Value{}, fferr.Wrap(fferr.ErrIncompatibleValue, "postgres: parse time %q", raw)
	}
	h, err1 := strconv.Atoi(parts[0])
	mnt, err2 := strconv.Atoi(parts[1])
	s, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return value.Value{}, fferr.Wrap(fferr.ErrIncompatibleValue, "postgres: parse time %q", raw)
	}
	return value.Value{Kind: value.KindTime, Time: value.TimeValue{Hour: h, Minute: mnt, Second: s, Nanos: frac}}, nil
}

// decodeTimestamp parses "YYYY-MM-DD HH:MM:SS[.ffffff][+TZ]" text for both
// TIMESTAMP and TIMESTAMPTZ; hasTZ controls whether a trailing offset is
// expected and carried into DateTimeValue.TZ.
func decodeTimestamp(raw string, declaredPrecision int, hasTZ bool) (value.Value, error) {
	tz := ""
	body := raw
	if hasTZ {
		body, tz = splitZoneOffsetKeep(raw)
	}

	datePart, timePart, ok := strings.Cut(body, " ")
	if !ok {
		return value.Value{}, fferr.Wrap(fferr.ErrIncompatibleValue, "postgres: parse timestamp %q", raw)
	}
	y, m, d, err := splitDate(datePart)
	if err != nil {
		return value.Value{}, fferr.Wrap(fferr.ErrIncompatibleValue, "postgres: parse timestamp %q: %v", raw, err)
	}
	main, frac := splitFraction(timePart)
	parts := strings.SplitN(main, ":", 3)
	if len(parts) != 3 {
		return value.Value{}, fferr.Wrap(fferr.ErrIncompatibleValue, "postgres: parse timestamp %q", raw)
	}
	h, err1 := strconv.Atoi(parts[0])
	mnt, err2 := strconv.Atoi(parts[1])
	s, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return value.Value{}, fferr.Wrap(fferr.ErrIncompatibleValue, "postgres: parse timestamp %q", raw)
	}
	return value.Value{Kind: value.KindDateTime, DateTime: value.DateTimeValue{
		Year: y, Month: m, Day: d, Hour: h, Minute: mnt, Second: s, Nanos: frac, Precision: declaredPrecision, TZ: tz,
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

// stripZoneOffset removes a trailing "+HH[:MM]"/"-HH[:MM]" zone suffix.
func stripZoneOffset(raw string) string {
	if i := strings.LastIndexAny(raw, "+-"); i >= 0 {
		return raw[:i]
	}
	return raw
}

func splitZoneOffsetKeep(raw string) (string, string) {
	for i := len(raw) - 1; i >= 0; i-- {
		switch raw[i] {
		case '+':
			return raw[:i], raw[i:]
		case '-':
			if i > 10 { // skip the date's own hyphens
				return raw[:i], raw[i:]
			}
		}
	}
	return raw, ""
}
