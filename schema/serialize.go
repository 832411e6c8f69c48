package schema

import (
	"encoding/json"
)

// jsonSchema, jsonTable, etc. mirror Schema/Table with field names matching
// spec §3 exactly and lowercase-string enums, as required by spec §6's
// "Schema JSON file" contract. A separate wire shape (rather than json
// tags on the domain structs) keeps the canonical format stable even if
// internal field names change.
type jsonSchema struct {
	Dialect string      `json:"dialect"`
	Tables  []jsonTable `json:"tables"`
}

type jsonTable struct {
	Name        string        `json:"name"`
	Schema      string        `json:"schema,omitempty"`
	Columns     []jsonColumn  `json:"columns"`
	PrimaryKey  *jsonKey      `json:"primary_key,omitempty"`
	Keys        []jsonKey     `json:"keys"`
	Indices     []jsonIndex   `json:"indices"`
	EngineHint  string        `json:"engine_hint,omitempty"`
	CharsetHint string        `json:"charset_hint,omitempty"`
}

type jsonColumn struct {
	Name     string         `json:"name"`
	Type     jsonColumnType `json:"type"`
	Default  *jsonDefault   `json:"default,omitempty"`
	Comment  string         `json:"comment,omitempty"`
	OnUpdate *string        `json:"on_update,omitempty"`
}

type jsonColumnType struct {
	Base       string   `json:"base"`
	Length     *int     `json:"length,omitempty"`
	Precision  *int     `json:"precision,omitempty"`
	Scale      *int     `json:"scale,omitempty"`
	EnumValues []string `json:"enum_values,omitempty"`
	ArrayElem  *string  `json:"array_elem,omitempty"`
	Unsigned   bool     `json:"unsigned"`
	Nullable   bool     `json:"nullable"`
}

type jsonDefault struct {
	Literal    *string `json:"literal,omitempty"`
	Expression string  `json:"expression,omitempty"`
}

type jsonKey struct {
	Kind       string   `json:"kind"`
	Name       string   `json:"name,omitempty"`
	Columns    []string `json:"columns"`
	RefTable   string   `json:"ref_table,omitempty"`
	RefColumns []string `json:"ref_columns,omitempty"`
	OnDelete   string   `json:"on_delete,omitempty"`
	OnUpdate   string   `json:"on_update,omitempty"`
}

type jsonIndexColumn struct {
	Name      string  `json:"name"`
	PrefixLen *int    `json:"prefix_len,omitempty"`
	Order     string  `json:"order"`
}

type jsonIndex struct {
	Name    string            `json:"name"`
	Kind    string            `json:"kind"`
	Unique  bool              `json:"unique"`
	Columns []jsonIndexColumn `json:"columns"`
}

// Marshal produces the canonical textual IR serialization of spec §4.2:
// UTF-8, stable key ordering (tables/columns/keys/indices in their existing
// slice order, which callers are expected to have already produced
// deterministically from introspection or Sort), enums as lowercase
// strings.
func (s *Schema) Marshal() ([]byte, error) {
	js := jsonSchema{Dialect: s.Dialect.String()}
	for _, t := range s.Tables {
		js.Tables = append(js.Tables, toJSONTable(t))
	}
	return json.MarshalIndent(js, "", "  ")
}

// Unmarshal parses the canonical IR serialization back into a Schema. A
// round trip through Marshal/Unmarshal is required to be equal to the
// original (spec §8).
func Unmarshal(data []byte) (*Schema, error) {
	var js jsonSchema
	if err := json.Unmarshal(data, &js); err != nil {
		return nil, err
	}
	s := &Schema{Dialect: parseDialect(js.Dialect)}
	for _, jt := range js.Tables {
		s.Tables = append(s.Tables, fromJSONTable(jt))
	}
	return s, nil
}

func parseDialect(s string) Dialect {
	switch s {
	case "mysql":
		return DialectMySQL
	case "postgres":
		return DialectPostgres
	default:
		return DialectUnknown
	}
}

func toJSONTable(t Table) jsonTable {
	jt := jsonTable{
		Name:        t.Name,
		Schema:      t.SchemaName,
		EngineHint:  t.EngineHint,
		CharsetHint: t.CharsetHint,
	}
	for _, c := range t.Columns {
		jt.Columns = append(jt.Columns, toJSONColumn(c))
	}
	if t.PrimaryKey != nil {
		jk := toJSONKey(*t.PrimaryKey)
		jt.PrimaryKey = &jk
	}
	for _, k := range t.Keys {
		jt.Keys = append(jt.Keys, toJSONKey(k))
	}
	for _, idx := range t.Indices {
		jt.Indices = append(jt.Indices, toJSONIndex(idx))
	}
	return jt
}

func fromJSONTable(jt jsonTable) Table {
	t := Table{
		Name:        jt.Name,
		SchemaName:  jt.Schema,
		EngineHint:  jt.EngineHint,
		CharsetHint: jt.CharsetHint,
	}
	for _, jc := range jt.Columns {
		t.Columns = append(t.Columns, fromJSONColumn(jc))
	}
	if jt.PrimaryKey != nil {
		k := fromJSONKey(*jt.PrimaryKey)
		t.PrimaryKey = &k
	}
	for _, jk := range jt.Keys {
		t.Keys = append(t.Keys, fromJSONKey(jk))
	}
	for _, ji := range jt.Indices {
		t.Indices = append(t.Indices, fromJSONIndex(ji))
	}
	return t
}

func toJSONColumn(c Column) jsonColumn {
	jc := jsonColumn{Name: c.Name, Type: toJSONColumnType(c.Type), Comment: c.Comment, OnUpdate: c.OnUpdate}
	if c.Default != nil {
		jd := toJSONDefault(*c.Default)
		jc.Default = &jd
	}
	return jc
}

func fromJSONColumn(jc jsonColumn) Column {
	c := Column{Name: jc.Name, Type: fromJSONColumnType(jc.Type), Comment: jc.Comment, OnUpdate: jc.OnUpdate}
	if jc.Default != nil {
		d := fromJSONDefault(*jc.Default)
		c.Default = &d
	}
	return c
}

func toJSONColumnType(ct ColumnType) jsonColumnType {
	jct := jsonColumnType{
		Base:       string(ct.Base),
		Length:     ct.Params.Length,
		Precision:  ct.Params.Precision,
		Scale:      ct.Params.Scale,
		EnumValues: ct.Params.EnumValues,
		Unsigned:   ct.Unsigned,
		Nullable:   ct.Nullable,
	}
	if ct.Params.ArrayElem != nil {
		s := string(*ct.Params.ArrayElem)
		jct.ArrayElem = &s
	}
	return jct
}

func fromJSONColumnType(jct jsonColumnType) ColumnType {
	ct := ColumnType{
		Base: BaseType(jct.Base),
		Params: TypeParams{
			Length:     jct.Length,
			Precision:  jct.Precision,
			Scale:      jct.Scale,
			EnumValues: jct.EnumValues,
		},
		Unsigned: jct.Unsigned,
		Nullable: jct.Nullable,
	}
	if jct.ArrayElem != nil {
		bt := BaseType(*jct.ArrayElem)
		ct.Params.ArrayElem = &bt
	}
	return ct
}

func toJSONDefault(d Default) jsonDefault {
	return jsonDefault{Literal: d.Literal, Expression: d.Expression}
}

func fromJSONDefault(jd jsonDefault) Default {
	return Default{Literal: jd.Literal, Expression: jd.Expression}
}

func toJSONKey(k Key) jsonKey {
	return jsonKey{
		Kind: string(k.Kind), Name: k.Name, Columns: k.Columns,
		RefTable: k.RefTable, RefColumns: k.RefColumns,
		OnDelete: k.OnDelete, OnUpdate: k.OnUpdate,
	}
}

func fromJSONKey(jk jsonKey) Key {
	return Key{
		Kind: KeyKind(jk.Kind), Name: jk.Name, Columns: jk.Columns,
		RefTable: jk.RefTable, RefColumns: jk.RefColumns,
		OnDelete: jk.OnDelete, OnUpdate: jk.OnUpdate,
	}
}

func toJSONIndex(idx Index) jsonIndex {
	ji := jsonIndex{Name: idx.Name, Kind: string(idx.Kind), Unique: idx.Unique}
	for _, c := range idx.Columns {
		ji.Columns = append(ji.Columns, jsonIndexColumn{Name: c.Name, PrefixLen: c.PrefixLen, Order: string(c.Order)})
	}
	return ji
}

func fromJSONIndex(ji jsonIndex) Index {
	idx := Index{Name: ji.Name, Kind: IndexKind(ji.Kind), Unique: ji.Unique}
	for _, c := range ji.Columns {
		idx.Columns = append(idx.Columns, IndexColumn{Name: c.Name, PrefixLen: c.PrefixLen, Order: SortOrder(c.Order)})
	}
	return idx
}
