package value

import (
	"bytes"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
)

// Equivalent implements the cross-dialect value equivalence relation of
// spec §8. It is deliberately more permissive than Go's == on the struct:
// Decimal compares by numeric value, Json by structural equality, SetLabels
// as sets, temporal values after truncating to the coarser of the two
// declared precisions.
func Equivalent(a, b Value) bool {
	if a.Kind == KindNull || b.Kind == KindNull {
		return a.Kind == KindNull && b.Kind == KindNull
	}

	// Numeric promotion to a common widest type.
	if isNumeric(a.Kind) && isNumeric(b.Kind) {
		da, ok1 := asDecimal(a)
		db, ok2 := asDecimal(b)
		if ok1 && ok2 {
			return da.Equal(db)
		}
	}

	if a.Kind != b.Kind {
		// Mixed numeric kinds were handled above; anything else with
		// mismatched kinds, SetLabels vs Array included, is unequal.
		return false
	}

	switch a.Kind {
	case KindBool:
		return a.Bool == b.Bool
	case KindString:
		return a.Str == b.Str
	case KindBytes:
		return bytes.Equal(a.Bytes, b.Bytes)
	case KindJSON:
		ca, err1 := CanonicalJSON(a.JSONText)
		cb, err2 := CanonicalJSON(b.JSONText)
		return err1 == nil && err2 == nil && ca == cb
	case KindUUID:
		return a.UUID == b.UUID
	case KindInet:
		return canonicalInet(a.Inet) == canonicalInet(b.Inet)
	case KindEnumLabel:
		return a.EnumLabel == b.EnumLabel
	case KindSetLabels:
		return sameSet(a.SetLabels, b.SetLabels)
	case KindBit:
		return a.BitWidth == b.BitWidth && bytes.Equal(a.BitBytes, b.BitBytes)
	case KindDate:
		return a.Date == b.Date
	case KindTime:
		return truncTime(a.Time, b.Time)
	case KindDateTime:
		return truncDateTime(a.DateTime, b.DateTime)
	case KindArray:
		if len(a.Array) != len(b.Array) {
			return false
		}
		for i := range a.Array {
			if !Equivalent(a.Array[i], b.Array[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func isNumeric(k Kind) bool {
	switch k {
	case KindInt64, KindUInt64, KindFloat64, KindDecimal:
		return true
	default:
		return false
	}
}

func asDecimal(v Value) (decimal.Decimal, bool) {
	switch v.Kind {
	case KindInt64:
		return decimal.NewFromInt(v.Int64), true
	case KindUInt64:
		d, err := decimal.NewFromString(strconv.FormatUint(v.UInt64, 10))
		return d, err == nil
	case KindFloat64:
		return decimal.NewFromFloat(v.Float64), true
	case KindDecimal:
		d, err := decimal.NewFromString(v.DecimalText)
		return d, err == nil
	default:
		return decimal.Decimal{}, false
	}
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sa := append([]string(nil), a...)
	sb := append([]string(nil), b...)
	sort.Strings(sa)
	sort.Strings(sb)
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}

func truncTime(a, b TimeValue) bool {
	p := minInt(precisionOfNanos(a.Nanos), precisionOfNanos(b.Nanos))
	return a.Hour == b.Hour && a.Minute == b.Minute && a.Second == b.Second &&
		truncNanos(a.Nanos, p) == truncNanos(b.Nanos, p)
}

func truncDateTime(a, b DateTimeValue) bool {
	p := minInt(a.Precision, b.Precision)
	if p == 0 {
		p = minInt(precisionOfNanos(a.Nanos), precisionOfNanos(b.Nanos))
	}
	return a.Year == b.Year && a.Month == b.Month && a.Day == b.Day &&
		a.Hour == b.Hour && a.Minute == b.Minute && a.Second == b.Second &&
		truncNanos(a.Nanos, p) == truncNanos(b.Nanos, p)
}

func truncNanos(n, precision int) int {
	factor := 1
	for i := 0; i < 9-precision; i++ {
		factor *= 10
	}
	return (n / factor) * factor
}

func precisionOfNanos(n int) int {
	if n == 0 {
		return 0
	}
	return 9
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// canonicalInet strips trailing "/32" or "/128" host-route suffixes so that
// "10.0.0.1" and "10.0.0.1/32" compare equal, matching PostgreSQL's own
// INET display convention for host addresses.
func canonicalInet(s string) string {
	for _, suffix := range []string{"/32", "/128"} {
		if len(s) > len(suffix) && s[len(s)-len(suffix):] == suffix {
			return s[:len(s)-len(suffix)]
		}
	}
	return s
}
