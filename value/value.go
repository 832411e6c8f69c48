// Package value implements the dialect-neutral tagged Value union that
// every cell crosses the FluxForge engine as (spec §3, §4.1). Binary data
// is byte-exact; text is validated UTF-8. Conversions across dialects are
// explicit, separately-tested functions — nothing here performs an
// implicit dialect-specific coercion.
package value

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind tags which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt64
	KindUInt64
	KindFloat64
	KindDecimal
	KindString
	KindBytes
	KindDate
	KindTime
	KindDateTime
	KindJSON
	KindUUID
	KindInet
	KindArray
	KindBit
	KindEnumLabel
	KindSetLabels
)

// Value is the tagged union described in spec §3. Only the field(s)
// matching Kind are meaningful; zero values elsewhere are not part of the
// contract and must not be inspected.
type Value struct {
	Kind Kind

	Bool    bool
	Int64   int64
	UInt64  uint64
	Float64 float64

	// Decimal carries the exact source text and declared scale so that
	// rounding decisions are explicit at coercion time rather than lost to
	// float64 imprecision.
	DecimalText  string
	DecimalScale int

	Str   string
	Bytes []byte

	Date     DateValue
	Time     TimeValue
	DateTime DateTimeValue

	JSONText string

	UUID uuid.UUID

	Inet string

	ArrayElemKind Kind
	Array         []Value

	BitWidth int
	BitBytes []byte

	EnumLabel string
	SetLabels []string
}

// DateValue is a calendar date with no time-of-day component.
type DateValue struct {
	Year  int
	Month int
	Day   int
}

// TimeValue is a time-of-day with nanosecond precision.
type TimeValue struct {
	Hour   int
	Minute int
	Second int
	Nanos  int
}

// DateTimeValue is a full timestamp. Precision is the number of declared
// fractional-second digits (0..6) from the source column; TZ is the zone
// name when the source type carries one ("" otherwise).
type DateTimeValue struct {
	Year, Month, Day     int
	Hour, Minute, Second int
	Nanos                int
	Precision            int
	TZ                   string
}

func Null() Value                { return Value{Kind: KindNull} }
func Bool(b bool) Value          { return Value{Kind: KindBool, Bool: b} }
func Int64(i int64) Value        { return Value{Kind: KindInt64, Int64: i} }
func UInt64(u uint64) Value      { return Value{Kind: KindUInt64, UInt64: u} }
func Float64(f float64) Value    { return Value{Kind: KindFloat64, Float64: f} }
func String(s string) Value      { return Value{Kind: KindString, Str: s} }
func Bytes(b []byte) Value       { return Value{Kind: KindBytes, Bytes: append([]byte(nil), b...)} }
func JSON(text string) Value     { return Value{Kind: KindJSON, JSONText: text} }
func Inet(text string) Value     { return Value{Kind: KindInet, Inet: text} }
func EnumLabel(s string) Value   { return Value{Kind: KindEnumLabel, EnumLabel: s} }
func SetLabels(ls []string) Value {
	return Value{Kind: KindSetLabels, SetLabels: append([]string(nil), ls...)}
}

// Decimal parses text under a decimal.Decimal to validate it before
// storing the original text verbatim (spec: "numeric precision ... carried
// verbatim").
func Decimal(text string, scale int) (Value, error) {
	if _, err := decimal.NewFromString(text); err != nil {
		return Value{}, fmt.Errorf("value: invalid decimal %q: %w", text, err)
	}
	return Value{Kind: KindDecimal, DecimalText: text, DecimalScale: scale}, nil
}

func UUID(id uuid.UUID) Value { return Value{Kind: KindUUID, UUID: id} }

// UUIDFromBytes parses a 16-byte big-endian UUID, as recovered from
// PostgreSQL's binary `uuid` representation.
func UUIDFromBytes(b []byte) (Value, error) {
	id, err := uuid.FromBytes(b)
	if err != nil {
		return Value{}, fmt.Errorf("value: invalid uuid bytes: %w", err)
	}
	return UUID(id), nil
}

func Bit(width int, bits []byte) Value {
	return Value{Kind: KindBit, BitWidth: width, BitBytes: append([]byte(nil), bits...)}
}

func Array(elemKind Kind, elems []Value) Value {
	return Value{Kind: KindArray, ArrayElemKind: elemKind, Array: elems}
}

// IsNull reports whether v is the Null variant.
func (v Value) IsNull() bool { return v.Kind == KindNull }

func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "NULL"
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case KindInt64:
		return fmt.Sprintf("%d", v.Int64)
	case KindUInt64:
		return fmt.Sprintf("%d", v.UInt64)
	case KindFloat64:
		return fmt.Sprintf("%g", v.Float64)
	case KindDecimal:
		return v.DecimalText
	case KindString:
		return v.Str
	case KindBytes:
		return fmt.Sprintf("0x%x", v.Bytes)
	case KindJSON:
		return v.JSONText
	case KindUUID:
		return v.UUID.String()
	case KindInet:
		return v.Inet
	case KindEnumLabel:
		return v.EnumLabel
	case KindSetLabels:
		return fmt.Sprintf("%v", v.SetLabels)
	case KindBit:
		return fmt.Sprintf("bit(%d)=0x%x", v.BitWidth, v.BitBytes)
	case KindDate:
		return FormatDate(v.Date)
	case KindTime:
		return FormatTimeOfDay(v.Time)
	case KindDateTime:
		return FormatDateTime(v.DateTime)
	case KindArray:
		elems := make([]string, len(v.Array))
		for i, e := range v.Array {
			elems[i] = e.String()
		}
		return "{" + strings.Join(elems, ",") + "}"
	default:
		return fmt.Sprintf("%+v", v)
	}
}

// FormatDate renders a DateValue as SQL-literal text "YYYY-MM-DD", accepted
// by both dialects.
func FormatDate(d DateValue) string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// FormatTimeOfDay renders a TimeValue as "HH:MM:SS[.fraction]", trimming a
// zero fractional part entirely rather than padding it out.
func FormatTimeOfDay(t TimeValue) string {
	return fmt.Sprintf("%02d:%02d:%02d%s", t.Hour, t.Minute, t.Second, formatFractionalSeconds(t.Nanos))
}

// FormatDateTime renders a DateTimeValue as "YYYY-MM-DD HH:MM:SS[.fraction]
// [TZ]", the canonical text form both the MySQL and PostgreSQL wire
// protocols accept for DATETIME/TIMESTAMP[TZ] literals.
func FormatDateTime(dt DateTimeValue) string {
	out := fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d%s",
		dt.Year, dt.Month, dt.Day, dt.Hour, dt.Minute, dt.Second, formatFractionalSeconds(dt.Nanos))
	if dt.TZ != "" {
		out += " " + dt.TZ
	}
	return out
}

// formatFractionalSeconds renders nanoseconds as ".ffffff...", trimming
// trailing zeros, or "" when there is no fractional part at all.
func formatFractionalSeconds(nanos int) string {
	if nanos == 0 {
		return ""
	}
	frac := strings.TrimRight(fmt.Sprintf("%09d", nanos), "0")
	if frac == "" {
		return ""
	}
	return "." + frac
}
