package ranking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildQuery(t *testing.T) {
	cfg := QueryConfig{TextSearchConfig: "simple", Thresholds: DefaultThresholds()}

	t.Run("group scope weights every field and joins live items", func(t *testing.T) {
		sql, args := BuildQuery(GroupScope(), "hex bolt", cfg)

		assert.Contains(t, sql, "LEFT JOIN item_masters i ON i.mgrp_code = g.mgrp_code AND i.deleted_at IS NULL")
		assert.Contains(t, sql, "g.deleted_at IS NULL")
		assert.Contains(t, sql, "'A')")
		assert.Contains(t, sql, "'B')")
		assert.Contains(t, sql, "ts_rank(")
		assert.Contains(t, sql, "plainto_tsquery(")
		assert.Equal(t, 5, strings.Count(sql, "similarity("))
		assert.Contains(t, sql, "lexical_rank >= ")
		assert.Contains(t, sql, " OR ")
		assert.Contains(t, sql, "ORDER BY lexical_rank DESC, fuzzy_score DESC, entity_key")
		assert.NotContains(t, sql, "?")

		assert.Contains(t, args, "hex bolt")
		assert.Contains(t, args, "simple")
		assert.Contains(t, args, 0.1)
		assert.Contains(t, args, 0.2)
	})

	t.Run("item scopes filter by group and type", func(t *testing.T) {
		sql, args := BuildQuery(ItemsInGroupAndTypeScope("GRP001", "MAT1"), "bolt", cfg)

		assert.Contains(t, sql, "i.mgrp_code = ")
		assert.Contains(t, sql, "i.mat_type_code = ")
		assert.Equal(t, 2, strings.Count(sql, "similarity("))
		assert.NotContains(t, sql, "'C')")
		assert.Contains(t, args, "GRP001")
		assert.Contains(t, args, "MAT1")
	})

	t.Run("items in group add the material type at weight C", func(t *testing.T) {
		sql, _ := BuildQuery(ItemsInGroupScope("GRP001"), "bolt", cfg)
		assert.Contains(t, sql, "'C')")
		assert.Equal(t, 3, strings.Count(sql, "similarity("))
	})

	t.Run("defaults the text search config", func(t *testing.T) {
		_, args := BuildQuery(GroupScope(), "bolt", QueryConfig{Thresholds: DefaultThresholds()})
		assert.Contains(t, args, "english")
	})
}
