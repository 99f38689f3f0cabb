package ranking

import (
	"fmt"
	"strings"

	"github.com/Ramsey-B/fern/pkg/database"
)

// QueryConfig controls the SQL produced for a scope.
type QueryConfig struct {
	// TextSearchConfig is the Postgres regconfig used for to_tsvector and plainto_tsquery.
	TextSearchConfig string
	Thresholds       Thresholds
}

// BuildQuery scores every row of the scope with ts_rank over the weighted
// vector and with the sum of pg_trgm similarities, keeps rows passing either
// threshold, and orders them lexical first.
func BuildQuery(scope Scope, query string, cfg QueryConfig) (string, []any) {
	textConfig := cfg.TextSearchConfig
	if textConfig == "" {
		textConfig = "english"
	}

	inner := database.NewSelectBuilder()
	regconfig := inner.Var(textConfig) + "::regconfig"

	vectors := make([]string, 0, len(scope.Fields))
	similarities := make([]string, 0, len(scope.Fields))
	for _, f := range scope.Fields {
		vectors = append(vectors, fmt.Sprintf("setweight(to_tsvector(%s, COALESCE(%s::text, '')), '%s')", regconfig, f.Column, f.Weight))
		similarities = append(similarities, fmt.Sprintf("COALESCE(similarity(%s::text, %s), 0)", f.Column, inner.Var(query)))
	}

	lexical := fmt.Sprintf("ts_rank(%s, plainto_tsquery(%s, %s))", strings.Join(vectors, " || "), regconfig, inner.Var(query))
	fuzzy := strings.Join(similarities, " + ")

	inner.Select(
		fmt.Sprintf("%s::text AS entity_key", scope.Key),
		fmt.Sprintf("%s AS lexical_rank", lexical),
		fmt.Sprintf("(%s) AS fuzzy_score", fuzzy),
	)
	inner.From(scope.Table)
	for _, j := range scope.LeftJoins {
		inner.JoinWithOption(database.LeftJoin, j.Table, j.On)
	}

	var conds []string
	for _, alias := range scope.Live {
		conds = append(conds, inner.Live(alias))
	}
	for _, eq := range scope.Equals {
		conds = append(conds, inner.Equal(eq.Column, eq.Value))
	}
	if len(conds) > 0 {
		inner.Where(conds...)
	}

	outer := database.NewSelectBuilder()
	outer.Select("entity_key", "lexical_rank", "fuzzy_score")
	outer.From(outer.BuilderAs(inner.SelectBuilder, "scored"))
	outer.Where(outer.Or(
		outer.GTE("lexical_rank", cfg.Thresholds.MinLexical),
		outer.GTE("fuzzy_score", cfg.Thresholds.MinFuzzy),
	))
	outer.OrderBy("lexical_rank DESC", "fuzzy_score DESC", "entity_key")

	return outer.Build()
}
