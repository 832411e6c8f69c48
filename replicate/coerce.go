package replicate

import (
	"strconv"

	"github.com/fluxforge/fluxforge/fferr"
	"github.com/fluxforge/fluxforge/schema"
	"github.com/fluxforge/fluxforge/value"
)

// CoerceRow applies the per-cell coercion pipeline of spec §4.1 to one
// source row, producing the values that go into the target Chunk.
// sourceCols and targetTypes are parallel to row: sourceCols carries the
// as-declared source column (needed for MySQL TINYINT(1) display-width
// detection), targetTypes the already type-mapped target ColumnType
// (needed for fractional-second truncation and unsigned-widening target
// representation).
func CoerceRow(sourceCols []schema.Column, targetTypes []schema.ColumnType, rules value.Rules, row []value.Value) ([]value.Value, error) {
	out := make([]value.Value, len(row))
	for i, v := range row {
		cv, err := coerceCell(sourceCols[i], targetTypes[i], rules, v)
		if err != nil {
			return nil, fferr.Wrap(fferr.ErrIncompatibleValue, "column %q: %v", sourceCols[i].Name, err)
		}
		out[i] = cv
	}
	return out, nil
}

func coerceCell(srcCol schema.Column, targetType schema.ColumnType, rules value.Rules, v value.Value) (value.Value, error) {
	if v.IsNull() {
		return v, nil
	}

	switch v.Kind {
	case value.KindInt64:
		if srcCol.Type.Base == schema.BaseTinyInt && !srcCol.Type.Unsigned {
			displayIsOne := srcCol.Type.Params.Length != nil && *srcCol.Type.Params.Length == 1
			return value.MySQLTinyInt(v.Int64, displayIsOne, rules), nil
		}
		return v, nil

	case value.KindUInt64:
		if targetType.Base == schema.BaseDecimal {
			return value.Decimal(strconv.FormatUint(v.UInt64, 10), 0)
		}
		return v, nil

	case value.KindDate:
		if v.Date.Year == 0 && v.Date.Month == 0 && v.Date.Day == 0 {
			nv, _, err := value.ZeroDate("0000-00-00", rules)
			if err != nil {
				return value.Value{}, err
			}
			return nv, nil
		}
		return v, nil

	case value.KindDateTime:
		if v.DateTime.Year == 0 && v.DateTime.Month == 0 && v.DateTime.Day == 0 {
			nv, _, err := value.ZeroDate("0000-00-00 00:00:00", rules)
			if err != nil {
				return value.Value{}, err
			}
			return nv, nil
		}
		dt := value.TruncateFractionalSeconds(v.DateTime, declaredPrecision(targetType))
		return value.Value{Kind: value.KindDateTime, DateTime: dt}, nil

	case value.KindBit:
		return value.MySQLBit(v.BitWidth, v.BitBytes, rules)

	case value.KindSetLabels:
		return value.SetLabelsForTarget(v, rules), nil

	case value.KindEnumLabel:
		if rules.EnumAsCheckText {
			return value.String(v.EnumLabel), nil
		}
		return v, nil

	case value.KindJSON:
		canon, err := value.CanonicalJSON(v.JSONText)
		if err != nil {
			return value.Value{}, err
		}
		return value.JSON(canon), nil

	default:
		return v, nil
	}
}

// declaredPrecision returns the target dialect's declared fractional-second
// digit count, defaulting to microsecond (6) precision when unspecified —
// PostgreSQL's timestamp default.
func declaredPrecision(ct schema.ColumnType) int {
	if ct.Params.Precision != nil {
		return *ct.Params.Precision
	}
	return 6
}
