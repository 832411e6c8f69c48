// Package config parses the FluxForge TOML configuration file (spec §6)
// into a typemap.Policy, the way Pieczasz-smf's internal/parser/toml
// package decodes a TOML document into its own typed core.Database with
// BurntSushi/toml: a small top-level struct plus field-by-field
// conversion into the domain type, rather than decoding straight into
// the domain type itself.
package config

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/fluxforge/fluxforge/typemap"
)

// rulesFile mirrors spec §6's recognized rule flags for one
// {dialect}.rules.on_read or {dialect}.rules.on_write table.
type rulesFile struct {
	UnsignedIntToBigint   bool   `toml:"unsigned_int_to_bigint"`
	Tinyint1ToBool        bool   `toml:"tinyint1_to_bool"`
	ZeroDateToNull        bool   `toml:"zero_date_to_null"`
	BitOneToBoolean       bool   `toml:"bit_one_to_boolean"`
	EnumAs                string `toml:"enum_as"`
	JSONToJSONB           bool   `toml:"json_to_jsonb"`
	SetAs                 string `toml:"set_as"`
	FulltextToGin         bool   `toml:"fulltext_to_gin"`
	PreserveAutoIncrement bool   `toml:"preserve_auto_increment"`
	LowercaseIdentifiers  bool   `toml:"lowercase_identifiers"`
}

func (r rulesFile) toRules() typemap.Rules {
	return typemap.Rules{
		UnsignedIntToBigint:   r.UnsignedIntToBigint,
		Tinyint1ToBool:        r.Tinyint1ToBool,
		ZeroDateToNull:        r.ZeroDateToNull,
		BitOneToBoolean:       r.BitOneToBoolean,
		EnumAs:                enumAsOrDefault(r.EnumAs),
		JSONToJSONB:           r.JSONToJSONB,
		SetAs:                 setAsOrDefault(r.SetAs),
		FulltextToGin:         r.FulltextToGin,
		PreserveAutoIncrement: r.PreserveAutoIncrement,
		LowercaseIdentifiers:  r.LowercaseIdentifiers,
	}
}

func enumAsOrDefault(s string) typemap.EnumAs {
	switch typemap.EnumAs(s) {
	case typemap.EnumAsNative, typemap.EnumAsCheck, typemap.EnumAsText:
		return typemap.EnumAs(s)
	default:
		return typemap.EnumAsNative
	}
}

func setAsOrDefault(s string) typemap.SetAs {
	switch typemap.SetAs(s) {
	case typemap.SetAsTextArray, typemap.SetAsCSVText:
		return typemap.SetAs(s)
	default:
		return typemap.SetAsTextArray
	}
}

// dialectFile is one [{dialect}] section: types.on_read / types.on_write
// are flat token-to-token maps, rules.on_read / rules.on_write the rule
// flags.
type dialectFile struct {
	Types struct {
		OnRead  map[string]string `toml:"on_read"`
		OnWrite map[string]string `toml:"on_write"`
	} `toml:"types"`
	Rules struct {
		OnRead  rulesFile `toml:"on_read"`
		OnWrite rulesFile `toml:"on_write"`
	} `toml:"rules"`
}

func (d dialectFile) toDialectPolicy() typemap.DialectPolicy {
	return typemap.DialectPolicy{
		TypesOnRead:  d.Types.OnRead,
		TypesOnWrite: d.Types.OnWrite,
		RulesOnRead:  d.Rules.OnRead.toRules(),
		RulesOnWrite: d.Rules.OnWrite.toRules(),
	}
}

// file is the full recognized document shape. Only `mysql` and `postgres`
// are valid top-level keys; anything else is rejected by Parse via the
// decoder's metadata.Undecoded() report.
type file struct {
	MySQL    dialectFile `toml:"mysql"`
	Postgres dialectFile `toml:"postgres"`
}

// Parse decodes r into a typemap.Policy. AllowLossy is not part of the
// file — it is a CLI sentinel (--allow-lossy) merged in by the caller.
func Parse(r io.Reader) (typemap.Policy, error) {
	var f file
	meta, err := toml.NewDecoder(r).Decode(&f)
	if err != nil {
		return typemap.Policy{}, fmt.Errorf("config: decode: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return typemap.Policy{}, fmt.Errorf("config: unrecognized section or key %q", undecoded[0].String())
	}

	return typemap.Policy{
		MySQL:    f.MySQL.toDialectPolicy(),
		Postgres: f.Postgres.toDialectPolicy(),
	}, nil
}

// ParseFile opens path and parses it as a FluxForge configuration file.
func ParseFile(path string) (typemap.Policy, error) {
	r, err := os.Open(path)
	if err != nil {
		return typemap.Policy{}, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer r.Close()
	return Parse(r)
}
