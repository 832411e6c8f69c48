// Package typemap implements the configurable, directional, compositional
// type-mapping engine of spec §4.3: on_read/on_write base-type rewrites and
// boolean rule flags, evaluated per dialect and memoized by
// (dialect, direction, base, params).
package typemap

import (
	"github.com/fluxforge/fluxforge/schema"
	"github.com/fluxforge/fluxforge/value"
)

// EnumAs selects how MySQL ENUM is rendered on a target lacking native
// enum support (spec §4.1/§4.3).
type EnumAs string

const (
	EnumAsNative EnumAs = "native"
	EnumAsCheck  EnumAs = "check"
	EnumAsText   EnumAs = "text"
)

// SetAs selects how MySQL SET is rendered on a target lacking native set
// support.
type SetAs string

const (
	SetAsTextArray SetAs = "text_array"
	SetAsCSVText   SetAs = "csv_text"
)

// Rules is the boolean/enum policy flag set recognized by spec §4.3's
// "{dialect}.rules.on_read / on_write" configuration sections.
type Rules struct {
	UnsignedIntToBigint   bool
	Tinyint1ToBool        bool
	ZeroDateToNull        bool
	BitOneToBoolean       bool
	EnumAs                EnumAs
	JSONToJSONB           bool
	SetAs                 SetAs
	FulltextToGin         bool
	PreserveAutoIncrement bool
	LowercaseIdentifiers  bool
}

// DialectPolicy groups the on_read/on_write type-token maps and rule sets
// for one dialect.
type DialectPolicy struct {
	TypesOnRead  map[string]string
	TypesOnWrite map[string]string
	RulesOnRead  Rules
	RulesOnWrite Rules
}

// Policy is the full configuration shape of spec §4.3/§6: one
// DialectPolicy per dialect, plus the --allow-lossy sentinel.
type Policy struct {
	MySQL      DialectPolicy
	Postgres   DialectPolicy
	AllowLossy bool
}

func (p Policy) forDialect(d schema.Dialect) DialectPolicy {
	if d == schema.DialectPostgres {
		return p.Postgres
	}
	return p.MySQL
}

// ValueRules assembles the value.Rules used for per-cell coercion: rules
// that trigger while reading the source (tinyint1_to_bool, zero_date_to_null)
// come from the source dialect's on_read rules; rules that shape how a value
// is rendered for the target (enum_as, set_as, bit->boolean) come from the
// target dialect's on_write rules.
func (p Policy) ValueRules(source, target schema.Dialect) value.Rules {
	src := p.forDialect(source).RulesOnRead
	tgt := p.forDialect(target).RulesOnWrite
	return value.Rules{
		Tinyint1ToBool:  src.Tinyint1ToBool,
		ZeroDateToNull:  src.ZeroDateToNull,
		BitOneToBoolean: tgt.BitOneToBoolean,
		EnumAsCheckText: tgt.EnumAs == EnumAsCheck || tgt.EnumAs == EnumAsText,
		SetAsCSVText:    tgt.SetAs == SetAsCSVText,
	}
}
