package ranking

import (
	"context"
	"errors"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	candidates []Candidate
	err        error
	queries    []string
}

func (f *fakeSource) Candidates(ctx context.Context, scope Scope, query string, thresholds Thresholds) ([]Candidate, error) {
	f.queries = append(f.queries, query)
	return f.candidates, f.err
}

func newRanker(source CandidateSource) *Ranker {
	return NewRanker(source, DefaultThresholds(), ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {}))
}

func TestCombine(t *testing.T) {
	th := DefaultThresholds()

	t.Run("lexical rank is the primary key even against a higher fuzzy score", func(t *testing.T) {
		hits := Combine([]Candidate{
			{Key: "fuzzy", Lexical: 0.0, Fuzzy: 1.8},
			{Key: "exact", Lexical: 0.6, Fuzzy: 0.3},
		}, th)

		require.Len(t, hits, 2)
		assert.Equal(t, []string{"exact", "fuzzy"}, Keys(hits))
	})

	t.Run("fuzzy score breaks lexical ties", func(t *testing.T) {
		hits := Combine([]Candidate{
			{Key: "a", Lexical: 0.2, Fuzzy: 0.3},
			{Key: "b", Lexical: 0.2, Fuzzy: 0.9},
		}, th)
		assert.Equal(t, []string{"b", "a"}, Keys(hits))
	})

	t.Run("rows below both thresholds are dropped", func(t *testing.T) {
		hits := Combine([]Candidate{
			{Key: "weak", Lexical: 0.05, Fuzzy: 0.15},
			{Key: "lexical", Lexical: 0.1, Fuzzy: 0},
			{Key: "fuzzy", Lexical: 0, Fuzzy: 0.2},
		}, th)
		assert.Equal(t, []string{"lexical", "fuzzy"}, Keys(hits))
	})

	t.Run("fan-out rows collapse to the best row per entity", func(t *testing.T) {
		hits := Combine([]Candidate{
			{Key: "G1", Lexical: 0.1, Fuzzy: 0.4},
			{Key: "G2", Lexical: 0.3, Fuzzy: 0.1},
			{Key: "G1", Lexical: 0.5, Fuzzy: 0.2},
			{Key: "G1", Lexical: 0.01, Fuzzy: 0.01},
		}, th)

		require.Len(t, hits, 2)
		assert.Equal(t, "G1", hits[0].Key)
		assert.Equal(t, 0.5, hits[0].LexicalRank)
		assert.Equal(t, 0.2, hits[0].FuzzyScore)
		assert.Equal(t, "G2", hits[1].Key)
	})

	t.Run("entities keep both scores", func(t *testing.T) {
		hits := Combine([]Candidate{{Key: "x", Lexical: 0.23456, Fuzzy: 0.05}}, th)
		require.Len(t, hits, 1)
		assert.Equal(t, 0.05, hits[0].FuzzyScore)
		assert.Equal(t, 23.45, hits[0].DisplayRank)
	})

	t.Run("no candidates", func(t *testing.T) {
		assert.Empty(t, Combine(nil, th))
	})
}

func TestTruncateRank(t *testing.T) {
	assert.Equal(t, 23.45, TruncateRank(0.23456))
	assert.Equal(t, 0.0, TruncateRank(0))
	assert.Equal(t, 100.0, TruncateRank(1))
	assert.Equal(t, 60.79, TruncateRank(0.607999))
}

func TestRanker_Rank(t *testing.T) {
	ctx := context.Background()

	t.Run("empty query never reaches the store", func(t *testing.T) {
		source := &fakeSource{}
		_, err := newRanker(source).Rank(ctx, GroupScope(), "   ")
		assert.ErrorIs(t, err, ErrEmptyQuery)
		assert.Empty(t, source.queries)
	})

	t.Run("trims the query and combines rows", func(t *testing.T) {
		source := &fakeSource{candidates: []Candidate{
			{Key: "a", Lexical: 0, Fuzzy: 0.5},
			{Key: "b", Lexical: 0.4, Fuzzy: 0.1},
		}}
		hits, err := newRanker(source).Rank(ctx, ItemsInGroupScope("G"), "  hex bolt ")
		require.NoError(t, err)

		assert.Equal(t, []string{"hex bolt"}, source.queries)
		assert.Equal(t, []string{"b", "a"}, Keys(hits))
	})

	t.Run("store errors are wrapped", func(t *testing.T) {
		source := &fakeSource{err: errors.New("boom")}
		_, err := newRanker(source).Rank(ctx, GroupScope(), "bolt")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to score groups candidates")
	})
}
