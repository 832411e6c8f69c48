package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fluxforge/fluxforge/dialect"
	"github.com/fluxforge/fluxforge/fferr"
	"github.com/fluxforge/fluxforge/schema"
)

func intp(i int) *int { return &i }

func widgetsTable(cols ...schema.Column) schema.Table {
	return schema.Table{
		Name:       "widgets",
		Columns:    cols,
		PrimaryKey: &schema.Key{Kind: schema.KeyPrimary, Columns: []string{"id"}},
	}
}

func idColumn() schema.Column {
	return schema.Column{Name: "id", Type: schema.ColumnType{Base: schema.BaseBigInt}}
}

func TestComputeEmitsCreateForMissingTable(t *testing.T) {
	desired := &schema.Schema{Tables: []schema.Table{widgetsTable(idColumn())}}
	current := &schema.Schema{}

	plan, err := Compute(desired, current, Options{})
	assert.NoError(t, err)
	assert.Len(t, plan.CreateTables, 1)
	assert.Equal(t, "widgets", plan.CreateTables[0].Name)
	assert.Empty(t, plan.AlterTables)
}

func TestComputeAddsMissingColumn(t *testing.T) {
	desired := &schema.Schema{Tables: []schema.Table{widgetsTable(
		idColumn(),
		schema.Column{Name: "name", Type: schema.ColumnType{Base: schema.BaseVarchar, Params: schema.TypeParams{Length: intp(255)}}},
	)}}
	current := &schema.Schema{Tables: []schema.Table{widgetsTable(idColumn())}}

	plan, err := Compute(desired, current, Options{})
	assert.NoError(t, err)
	if assert.Len(t, plan.AlterTables, 1) {
		alters := plan.AlterTables[0].Alters
		if assert.Len(t, alters, 1) {
			assert.Equal(t, dialect.AddColumn, alters[0].Kind)
			assert.Equal(t, "name", alters[0].Column.Name)
		}
	}
}

func TestComputeOrdersAddColumnsBeforeDropIndices(t *testing.T) {
	desired := &schema.Schema{Tables: []schema.Table{widgetsTable(
		idColumn(),
		schema.Column{Name: "email", Type: schema.ColumnType{Base: schema.BaseVarchar, Params: schema.TypeParams{Length: intp(255)}}},
	)}}
	currentTable := widgetsTable(idColumn())
	currentTable.Indices = []schema.Index{{Name: "idx_gone", Columns: []schema.IndexColumn{{Name: "id"}}}}
	current := &schema.Schema{Tables: []schema.Table{currentTable}}

	plan, err := Compute(desired, current, Options{})
	assert.NoError(t, err)
	if assert.Len(t, plan.AlterTables, 1) {
		alters := plan.AlterTables[0].Alters
		if assert.Len(t, alters, 2) {
			assert.Equal(t, dialect.AddColumn, alters[0].Kind)
			assert.Equal(t, dialect.DropIndex, alters[1].Kind)
		}
	}
}

func TestComputeDetectsChangedTypeNullabilityAndDefault(t *testing.T) {
	lit := "0"
	desired := &schema.Schema{Tables: []schema.Table{widgetsTable(
		idColumn(),
		schema.Column{
			Name:    "score",
			Type:    schema.ColumnType{Base: schema.BaseBigInt, Nullable: false},
			Default: &schema.Default{Literal: &lit},
		},
	)}}
	current := &schema.Schema{Tables: []schema.Table{widgetsTable(
		idColumn(),
		schema.Column{Name: "score", Type: schema.ColumnType{Base: schema.BaseInt, Nullable: true}},
	)}}

	plan, err := Compute(desired, current, Options{})
	assert.NoError(t, err)
	if assert.Len(t, plan.AlterTables, 1) {
		kinds := []dialect.AlterKind{}
		for _, a := range plan.AlterTables[0].Alters {
			kinds = append(kinds, a.Kind)
		}
		assert.Contains(t, kinds, dialect.AlterColumnType)
		assert.Contains(t, kinds, dialect.AlterColumnNullability)
		assert.Contains(t, kinds, dialect.AlterColumnDefault)
	}
}

func TestComputeReportsUnknownTableWithoutDropping(t *testing.T) {
	desired := &schema.Schema{Tables: []schema.Table{widgetsTable(idColumn())}}
	current := &schema.Schema{Tables: []schema.Table{
		widgetsTable(idColumn()),
		{Name: "legacy_widgets", Columns: []schema.Column{idColumn()}},
	}}

	plan, err := Compute(desired, current, Options{})
	assert.NoError(t, err)
	assert.Equal(t, []string{"legacy_widgets"}, plan.UnknownTables)
	assert.Empty(t, plan.DropTables)
}

func TestComputeRejectsDropsWithoutForce(t *testing.T) {
	desired := &schema.Schema{Tables: []schema.Table{widgetsTable(idColumn())}}
	current := &schema.Schema{Tables: []schema.Table{
		widgetsTable(idColumn()),
		{Name: "legacy_widgets", Columns: []schema.Column{idColumn()}},
	}}

	_, err := Compute(desired, current, Options{DropUnknown: true})
	assert.ErrorIs(t, err, fferr.ErrDataLossProtection)
}

func TestComputeDropUnknownWithForceProducesDropSteps(t *testing.T) {
	desired := &schema.Schema{Tables: []schema.Table{widgetsTable(idColumn())}}
	current := &schema.Schema{Tables: []schema.Table{
		widgetsTable(idColumn()),
		{Name: "legacy_widgets", Columns: []schema.Column{idColumn()}},
	}}

	plan, err := Compute(desired, current, Options{DropUnknown: true, Force: true})
	assert.NoError(t, err)
	assert.Equal(t, []string{"legacy_widgets"}, plan.DropTables)
}

func TestComputeDropUnknownColumnWithForce(t *testing.T) {
	desired := &schema.Schema{Tables: []schema.Table{widgetsTable(idColumn())}}
	currentTable := widgetsTable(idColumn())
	currentTable.Columns = append(currentTable.Columns, schema.Column{Name: "legacy", Type: schema.ColumnType{Base: schema.BaseText}})
	current := &schema.Schema{Tables: []schema.Table{currentTable}}

	plan, err := Compute(desired, current, Options{DropUnknown: true, Force: true})
	assert.NoError(t, err)
	assert.Equal(t, []string{"legacy"}, plan.DropColumns["widgets"])
	if assert.Len(t, plan.AlterTables, 1) {
		last := plan.AlterTables[0].Alters[len(plan.AlterTables[0].Alters)-1]
		assert.Equal(t, dialect.DropColumn, last.Kind)
		assert.Equal(t, "legacy", last.Column.Name)
	}
}

func TestDiffIndicesRecreatesOnColumnChange(t *testing.T) {
	desiredTable := widgetsTable(idColumn())
	desiredTable.Indices = []schema.Index{{Name: "idx_a", Columns: []schema.IndexColumn{{Name: "id"}, {Name: "id"}}}}
	currentTable := widgetsTable(idColumn())
	currentTable.Indices = []schema.Index{{Name: "idx_a", Columns: []schema.IndexColumn{{Name: "id"}}}}

	drops, adds := diffIndices(desiredTable, currentTable)
	assert.Len(t, drops, 1)
	assert.Len(t, adds, 1)
	assert.Equal(t, "idx_a", drops[0].Index.Name)
	assert.Equal(t, "idx_a", adds[0].Index.Name)
}

func TestDiffIndicesTreatsUniqueKeysAsIndices(t *testing.T) {
	desiredTable := widgetsTable(idColumn())
	desiredTable.Keys = []schema.Key{{Kind: schema.KeyUnique, Name: "uniq_id", Columns: []string{"id"}}}
	currentTable := widgetsTable(idColumn())

	_, adds := diffIndices(desiredTable, currentTable)
	if assert.Len(t, adds, 1) {
		assert.Equal(t, "uniq_id", adds[0].Index.Name)
		assert.True(t, adds[0].Index.Unique)
	}
}
