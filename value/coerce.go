package value

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/fluxforge/fluxforge/fferr"
)

// Rules is the subset of typemap.Policy flags that affect value coercion
// directly (spec §4.1). It is duplicated here, rather than imported from
// typemap, to keep value dependency-free of the mapping engine; typemap
// constructs one from its own Policy before calling into this package.
type Rules struct {
	Tinyint1ToBool   bool
	ZeroDateToNull   bool
	BitOneToBoolean  bool
	EnumAsCheckText  bool // enum rendered as text/check rather than native
	SetAsCSVText     bool // set rendered as comma-joined text rather than text[]
}

// MySQLBit decodes a MySQL BIT(n) column's big-endian byte representation
// into a Value, applying the bit->boolean/bytea policy from spec §4.1.
func MySQLBit(width int, raw []byte, rules Rules) (Value, error) {
	if width == 1 {
		if rules.BitOneToBoolean {
			return Bool(len(raw) > 0 && raw[len(raw)-1]&1 == 1), nil
		}
		return Bit(1, raw), nil
	}
	if width > 1 && !rules.BitOneToBoolean {
		return Bit(width, raw), nil
	}
	return Value{}, fferr.Wrap(fferr.ErrIncompatibleValue, "bit(%d) has no target representation under current rules", width)
}

// MySQLTinyInt decodes a MySQL TINYINT(1) cell, honoring tinyint1_to_bool.
func MySQLTinyInt(v int64, displayIsOne bool, rules Rules) Value {
	if displayIsOne && rules.Tinyint1ToBool {
		return Bool(v != 0)
	}
	return Int64(v)
}

// ZeroDate detects MySQL's zero-date sentinels and applies zero_date_to_null.
func ZeroDate(raw string, rules Rules) (Value, bool, error) {
	if raw != "0000-00-00" && raw != "0000-00-00 00:00:00" {
		return Value{}, false, nil
	}
	if rules.ZeroDateToNull {
		return Null(), true, nil
	}
	return Value{}, true, fferr.Wrap(fferr.ErrIncompatibleValue, "zero-date %q has no PostgreSQL representation", raw)
}

// MySQLSet decodes MySQL's comma-joined SET('a','b') storage into SetLabels.
func MySQLSet(raw string) Value {
	if raw == "" {
		return SetLabels(nil)
	}
	return SetLabels(strings.Split(raw, ","))
}

// SetLabelsForTarget renders a SetLabels value for a target dialect lacking
// a native SET type, per the set_as rule.
func SetLabelsForTarget(v Value, rules Rules) Value {
	if rules.SetAsCSVText {
		return String(strings.Join(v.SetLabels, ","))
	}
	return Array(KindString, transformToStringValues(v.SetLabels))
}

func transformToStringValues(labels []string) []Value {
	out := make([]Value, len(labels))
	for i, l := range labels {
		out[i] = String(l)
	}
	return out
}

// WidenResult is what UnsignedWiden reports: the target signed Kind an
// unsigned MySQL integer of the given bit width promotes to under
// unsigned_int_to_bigint
// (spec §4.1: u8->i16, u16->i32, u32->i64, u64->NUMERIC(20,0)).
type WidenResult struct {
	Kind  Kind // KindInt64 or KindDecimal
	Scale int  // only meaningful for KindDecimal
}

func UnsignedWiden(sourceBits int) WidenResult {
	switch sourceBits {
	case 8, 16:
		return WidenResult{Kind: KindInt64}
	case 32:
		return WidenResult{Kind: KindInt64}
	case 64:
		return WidenResult{Kind: KindDecimal, Scale: 0}
	default:
		return WidenResult{Kind: KindInt64}
	}
}

// TruncateFractionalSeconds truncates (never rounds, per spec §4.1) a
// DateTimeValue's nanoseconds toward zero to the target dialect's declared
// precision.
func TruncateFractionalSeconds(dt DateTimeValue, targetPrecision int) DateTimeValue {
	if targetPrecision >= dt.Precision {
		return dt
	}
	factor := 1
	for i := 0; i < 9-targetPrecision; i++ {
		factor *= 10
	}
	dt.Nanos = (dt.Nanos / factor) * factor
	dt.Precision = targetPrecision
	return dt
}

// CanonicalJSON re-marshals JSON text with sorted object keys so that two
// structurally-equal JSON documents compare equal regardless of source key
// order (spec §8). It does not reject duplicate object keys: encoding/json
// silently keeps the last occurrence during decode, same as every other
// consumer of this package's JSON text, so "not allowed" in spec §8's
// equivalence relation is enforced only in the sense that source documents
// are assumed not to contain them, not by an explicit check here.
func CanonicalJSON(text string) (string, error) {
	var generic any
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return "", fmt.Errorf("value: invalid json: %w", err)
	}
	out, err := marshalSorted(generic)
	if err != nil {
		return "", err
	}
	return out, nil
}

func marshalSorted(v any) (string, error) {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			kb, _ := json.Marshal(k)
			b.Write(kb)
			b.WriteByte(':')
			vs, err := marshalSorted(t[k])
			if err != nil {
				return "", err
			}
			b.WriteString(vs)
		}
		b.WriteByte('}')
		return b.String(), nil
	case []any:
		var b strings.Builder
		b.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				b.WriteByte(',')
			}
			es, err := marshalSorted(e)
			if err != nil {
				return "", err
			}
			b.WriteString(es)
		}
		b.WriteByte(']')
		return b.String(), nil
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
