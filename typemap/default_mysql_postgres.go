package typemap

import "github.com/fluxforge/fluxforge/schema"

// DefaultMySQLToPostgres returns the bundled mapping policy described in
// spec §6: the rule set a migration runs with when no config file overrides
// it. types.on_read/on_write are left empty since the defaults below are
// expressed structurally (they depend on Unsigned/Params, not just
// BaseType), not as flat token tables.
func DefaultMySQLToPostgres() Policy {
	return Policy{
		MySQL: DialectPolicy{
			RulesOnRead: Rules{
				UnsignedIntToBigint: true,
				Tinyint1ToBool:      false,
				ZeroDateToNull:      true,
			},
		},
		Postgres: DialectPolicy{
			RulesOnWrite: Rules{
				EnumAs:          EnumAsNative,
				SetAs:           SetAsTextArray,
				BitOneToBoolean: true,
				JSONToJSONB:     true,
			},
		},
	}
}

// defaultBaseMapping implements the structural MySQL<->PostgreSQL base-type
// table of spec §6 ("bit(1)->boolean, bit(n>1)->bytea, tinyint->smallint,
// mediumint->integer, double->double precision, datetime->timestamp,
// datetime_tz->timestamptz, blob->bytea, json->jsonb, enum->native enum,
// set->text[]"), applied when no types.on_write override matched. Only the
// mysql->postgres direction and its inverse are implemented; other
// (source, target) dialect pairs return ok=false.
func defaultBaseMapping(source, target schema.Dialect, ct schema.ColumnType) (schema.ColumnType, bool, bool, string) {
	if source == schema.DialectMySQL && target == schema.DialectPostgres {
		return mysqlToPostgres(ct)
	}
	if source == schema.DialectPostgres && target == schema.DialectMySQL {
		return postgresToMySQL(ct)
	}
	return schema.ColumnType{}, false, false, ""
}

func mysqlToPostgres(ct schema.ColumnType) (schema.ColumnType, bool, bool, string) {
	out := schema.ColumnType{Nullable: ct.Nullable}

	switch ct.Base {
	case schema.BaseTinyInt:
		if ct.Unsigned {
			out.Base = schema.BaseSmallInt
			return out, true, false, ""
		}
		out.Base = schema.BaseSmallInt
		return out, true, false, ""
	case schema.BaseSmallInt:
		if ct.Unsigned {
			out.Base = schema.BaseInt
			return out, true, false, ""
		}
		out.Base = schema.BaseSmallInt
		return out, true, false, ""
	case schema.BaseMediumInt:
		out.Base = schema.BaseInt
		return out, true, false, ""
	case schema.BaseInt:
		if ct.Unsigned {
			out.Base = schema.BaseBigInt
			return out, true, false, ""
		}
		out.Base = schema.BaseInt
		return out, true, false, ""
	case schema.BaseBigInt:
		if ct.Unsigned {
			out.Base = schema.BaseDecimal
			out.Params = schema.TypeParams{Precision: intp(20), Scale: intp(0)}
			return out, true, true, "unsigned bigint has no integer target wide enough; widened to numeric(20,0)"
		}
		out.Base = schema.BaseBigInt
		return out, true, false, ""
	case schema.BaseFloat:
		out.Base = schema.BaseFloat
		return out, true, false, ""
	case schema.BaseDouble:
		out.Base = schema.BaseDouble
		return out, true, false, ""
	case schema.BaseDecimal:
		out.Base = schema.BaseDecimal
		out.Params = ct.Params
		return out, true, false, ""
	case schema.BaseChar:
		out.Base = schema.BaseChar
		out.Params = schema.TypeParams{Length: ct.Params.Length}
		return out, true, false, ""
	case schema.BaseVarchar:
		out.Base = schema.BaseVarchar
		out.Params = schema.TypeParams{Length: ct.Params.Length}
		return out, true, false, ""
	case schema.BaseText:
		out.Base = schema.BaseText
		return out, true, false, ""
	case schema.BaseBinary, schema.BaseVarbinary, schema.BaseBlob:
		out.Base = schema.BaseBytea
		return out, true, false, ""
	case schema.BaseDate:
		out.Base = schema.BaseDate
		return out, true, false, ""
	case schema.BaseTime:
		out.Base = schema.BaseTime
		return out, true, false, ""
	case schema.BaseDateTime:
		out.Base = schema.BaseTimestamp
		out.Params = schema.TypeParams{Precision: ct.Params.Precision}
		return out, true, false, ""
	case schema.BaseTimestamp:
		out.Base = schema.BaseTimestampTZ
		out.Params = schema.TypeParams{Precision: ct.Params.Precision}
		return out, true, false, ""
	case schema.BaseJSON:
		out.Base = schema.BaseJSONB
		return out, true, false, ""
	case schema.BaseEnum:
		out.Base = schema.BaseEnum
		out.Params = schema.TypeParams{EnumValues: ct.Params.EnumValues}
		return out, true, false, ""
	case schema.BaseSet:
		elem := schema.BaseText
		out.Base = schema.BaseArray
		out.Params = schema.TypeParams{ArrayElem: &elem}
		return out, true, false, ""
	case schema.BaseBit:
		if ct.Params.Length != nil && *ct.Params.Length == 1 {
			out.Base = schema.BaseBoolean
			return out, true, false, ""
		}
		out.Base = schema.BaseBytea
		return out, true, true, "bit(n>1) has no native PostgreSQL bit-string equivalent in this policy; stored as bytea"
	case schema.BaseBoolean:
		out.Base = schema.BaseBoolean
		return out, true, false, ""
	default:
		return schema.ColumnType{}, false, false, ""
	}
}

func postgresToMySQL(ct schema.ColumnType) (schema.ColumnType, bool, bool, string) {
	out := schema.ColumnType{Nullable: ct.Nullable}

	switch ct.Base {
	case schema.BaseSmallInt:
		out.Base = schema.BaseSmallInt
		return out, true, false, ""
	case schema.BaseInt:
		out.Base = schema.BaseInt
		return out, true, false, ""
	case schema.BaseBigInt:
		out.Base = schema.BaseBigInt
		return out, true, false, ""
	case schema.BaseFloat:
		out.Base = schema.BaseFloat
		return out, true, false, ""
	case schema.BaseDouble:
		out.Base = schema.BaseDouble
		return out, true, false, ""
	case schema.BaseDecimal:
		out.Base = schema.BaseDecimal
		out.Params = ct.Params
		return out, true, false, ""
	case schema.BaseChar:
		out.Base = schema.BaseChar
		out.Params = schema.TypeParams{Length: ct.Params.Length}
		return out, true, false, ""
	case schema.BaseVarchar:
		out.Base = schema.BaseVarchar
		out.Params = schema.TypeParams{Length: ct.Params.Length}
		return out, true, false, ""
	case schema.BaseText:
		out.Base = schema.BaseText
		return out, true, false, ""
	case schema.BaseBytea:
		out.Base = schema.BaseBlob
		return out, true, false, ""
	case schema.BaseDate:
		out.Base = schema.BaseDate
		return out, true, false, ""
	case schema.BaseTime:
		out.Base = schema.BaseTime
		return out, true, false, ""
	case schema.BaseTimestamp:
		out.Base = schema.BaseDateTime
		out.Params = schema.TypeParams{Precision: ct.Params.Precision}
		return out, true, false, ""
	case schema.BaseTimestampTZ:
		out.Base = schema.BaseTimestamp
		out.Params = schema.TypeParams{Precision: ct.Params.Precision}
		return out, true, true, "timestamptz converted to UTC datetime; source session time zone is not preserved"
	case schema.BaseJSON, schema.BaseJSONB:
		out.Base = schema.BaseJSON
		return out, true, false, ""
	case schema.BaseEnum:
		out.Base = schema.BaseEnum
		out.Params = schema.TypeParams{EnumValues: ct.Params.EnumValues}
		return out, true, false, ""
	case schema.BaseArray:
		out.Base = schema.BaseSet
		return out, true, true, "postgres array collapsed to SET; only valid when every element is a short unique text label"
	case schema.BaseBoolean:
		out.Base = schema.BaseTinyInt
		out.Params = schema.TypeParams{Length: intp(1)}
		return out, true, false, ""
	case schema.BaseUUID:
		out.Base = schema.BaseChar
		out.Params = schema.TypeParams{Length: intp(36)}
		return out, true, true, "uuid has no native MySQL type in this policy; stored as char(36) text"
	case schema.BaseInet:
		out.Base = schema.BaseVarchar
		out.Params = schema.TypeParams{Length: intp(43)}
		return out, true, true, "inet has no native MySQL type in this policy; stored as varchar(43) text"
	default:
		return schema.ColumnType{}, false, false, ""
	}
}
