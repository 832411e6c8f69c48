// Package schema implements the dialect-neutral intermediate schema
// representation (spec §3, §4.2): plain data describing tables, columns,
// indices and keys, plus the invariants that must always hold and a
// canonical serialization used to persist an extracted schema to disk.
package schema

import "fmt"

// Dialect identifies which SQL engine a Schema or Driver speaks.
type Dialect int

const (
	DialectUnknown Dialect = iota
	DialectMySQL
	DialectPostgres
)

func (d Dialect) String() string {
	switch d {
	case DialectMySQL:
		return "mysql"
	case DialectPostgres:
		return "postgres"
	default:
		return "unknown"
	}
}

// BaseType enumerates the base column types recognized across both
// dialects (spec §3). TypeParams supplies the modifiers for a given base.
type BaseType string

const (
	BaseTinyInt    BaseType = "tinyint"
	BaseSmallInt   BaseType = "smallint"
	BaseMediumInt  BaseType = "mediumint"
	BaseInt        BaseType = "int"
	BaseBigInt     BaseType = "bigint"
	BaseDecimal    BaseType = "decimal"
	BaseFloat      BaseType = "float"
	BaseDouble     BaseType = "double"
	BaseChar       BaseType = "char"
	BaseVarchar    BaseType = "varchar"
	BaseText       BaseType = "text"
	BaseBinary     BaseType = "binary"
	BaseVarbinary  BaseType = "varbinary"
	BaseBlob       BaseType = "blob"
	BaseBytea      BaseType = "bytea"
	BaseDate       BaseType = "date"
	BaseTime       BaseType = "time"
	BaseDateTime   BaseType = "datetime"
	BaseTimestamp  BaseType = "timestamp"
	BaseTimestampTZ BaseType = "timestamptz"
	BaseJSON       BaseType = "json"
	BaseJSONB      BaseType = "jsonb"
	BaseUUID       BaseType = "uuid"
	BaseInet       BaseType = "inet"
	BaseEnum       BaseType = "enum"
	BaseSet        BaseType = "set"
	BaseBit        BaseType = "bit"
	BaseBoolean    BaseType = "boolean"
	BaseArray      BaseType = "array"
)

// TypeParams carries the modifiers of a ColumnType (spec §3).
type TypeParams struct {
	Length     *int
	Precision  *int
	Scale      *int
	EnumValues []string
	ArrayElem  *BaseType
}

// Default describes a column default: exactly one of Literal/Expression is
// set (never both).
type Default struct {
	Literal    *string
	Expression string
}

// ColumnType is the structured (never raw-string) type of a column.
type ColumnType struct {
	Base     BaseType
	Params   TypeParams
	Unsigned bool
	Nullable bool
	Default  *Default
}

// Column is one table column.
type Column struct {
	Name     string
	Type     ColumnType
	Default  *Default
	Comment  string
	OnUpdate *string
}

type IndexKind string

const (
	IndexBTree    IndexKind = "btree"
	IndexHash     IndexKind = "hash"
	IndexFullText IndexKind = "fulltext"
	IndexGin      IndexKind = "gin"
	IndexGist     IndexKind = "gist"
)

type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

type IndexColumn struct {
	Name      string
	PrefixLen *int
	Order     SortOrder
}

type Index struct {
	Name    string
	Kind    IndexKind
	Unique  bool
	Columns []IndexColumn
}

type KeyKind string

const (
	KeyPrimary KeyKind = "primary"
	KeyUnique  KeyKind = "unique"
	KeyForeign KeyKind = "foreign"
)

// Key is one of Primary(cols), Unique(name, cols), or
// Foreign(name, local cols, ref table, ref cols, on_delete, on_update).
// Foreign keys are carried only as metadata for dependency ordering (spec
// §4.5, §9) — the engine never emits FK DDL.
type Key struct {
	Kind       KeyKind
	Name       string
	Columns    []string
	RefTable   string
	RefColumns []string
	OnDelete   string
	OnUpdate   string
}

type Table struct {
	Name         string
	SchemaName   string
	Columns      []Column
	PrimaryKey   *Key
	Keys         []Key
	Indices      []Index
	EngineHint   string
	CharsetHint  string
}

type Schema struct {
	Dialect Dialect
	Tables  []Table
}

// Column looks up a column by name, returning nil if absent.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// ForeignKeys returns the table's Foreign-kind keys.
func (t *Table) ForeignKeys() []Key {
	var out []Key
	for _, k := range t.Keys {
		if k.Kind == KeyForeign {
			out = append(out, k)
		}
	}
	return out
}

// Table looks up a table by name, returning nil if absent.
func (s *Schema) Table(name string) *Table {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i]
		}
	}
	return nil
}

func (bt BaseType) IsInteger() bool {
	switch bt {
	case BaseTinyInt, BaseSmallInt, BaseMediumInt, BaseInt, BaseBigInt:
		return true
	default:
		return false
	}
}

func (ct ColumnType) validate() error {
	if ct.Unsigned && !ct.Base.IsInteger() {
		return fmt.Errorf("schema: unsigned is only valid on integer types, got %s", ct.Base)
	}
	if ct.Base == BaseDecimal && ct.Params.Precision != nil && ct.Params.Scale != nil {
		if *ct.Params.Scale > *ct.Params.Precision {
			return fmt.Errorf("schema: decimal scale %d exceeds precision %d", *ct.Params.Scale, *ct.Params.Precision)
		}
	}
	return nil
}
