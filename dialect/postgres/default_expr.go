package postgres

import (
	"strings"

	pgquery "github.com/pganalyze/pg_query_go/v2"
)

// canonicalizeDefault normalizes a DEFAULT expression recovered from
// pg_get_expr through pg_query_go's parser/deparser, so two semantically
// identical defaults written with different whitespace or casing ("now()"
// vs "NOW( )") compare equal in diff (spec §4.6). Expressions pg_query_go
// can't parse (rare: some internal nextval() forms reference catalog OIDs
// pg_query_go doesn't resolve) are kept as-is.
func canonicalizeDefault(expr string) string {
	wrapped := "SELECT " + expr
	tree, err := pgquery.Parse(wrapped)
	if err != nil {
		return expr
	}
	out, err := pgquery.Deparse(tree)
	if err != nil {
		return expr
	}
	return strings.TrimSuffix(strings.TrimPrefix(out, "SELECT "), ";")
}
