package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxforge/fluxforge/typemap"
)

func TestParseDecodesTypesAndRules(t *testing.T) {
	doc := `
[mysql.types.on_read]
tinyint = "smallint"

[postgres.rules.on_write]
enum_as = "check"
fulltext_to_gin = true
`
	policy, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, "smallint", policy.MySQL.TypesOnRead["tinyint"])
	assert.Equal(t, typemap.EnumAsCheck, policy.Postgres.RulesOnWrite.EnumAs)
	assert.True(t, policy.Postgres.RulesOnWrite.FulltextToGin)
}

func TestParseDefaultsUnsetEnumAsToNative(t *testing.T) {
	policy, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, typemap.EnumAsNative, policy.MySQL.RulesOnWrite.EnumAs)
	assert.Equal(t, typemap.SetAsTextArray, policy.MySQL.RulesOnWrite.SetAs)
}

func TestParseRejectsUnknownTopLevelSection(t *testing.T) {
	doc := `
[sqlite]
types = {}
`
	_, err := Parse(strings.NewReader(doc))
	assert.Error(t, err)
}

func TestParseRejectsUnknownKeyWithinKnownSection(t *testing.T) {
	doc := `
[mysql.rules.on_read]
not_a_real_flag = true
`
	_, err := Parse(strings.NewReader(doc))
	assert.Error(t, err)
}
