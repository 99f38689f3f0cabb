// Package ranking combines lexical relevance and trigram similarity into one
// ordered result list.
package ranking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

var ErrEmptyQuery = errors.New("search query is empty")

// Candidate is one scored row. Join fan-out can yield several rows per Key.
type Candidate struct {
	Key     string  `db:"entity_key"`
	Lexical float64 `db:"lexical_rank"`
	Fuzzy   float64 `db:"fuzzy_score"`
}

// Hit is one ranked entity.
type Hit struct {
	Key string
	// LexicalRank is the raw ts_rank relevance in [0, 1].
	LexicalRank float64
	// FuzzyScore is the summed similarity across fields.
	FuzzyScore float64
	// DisplayRank is LexicalRank * 100 truncated to two decimals.
	DisplayRank float64
}

type Thresholds struct {
	MinLexical float64
	MinFuzzy   float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{MinLexical: 0.1, MinFuzzy: 0.2}
}

// CandidateSource scores the rows of a scope against a query.
type CandidateSource interface {
	Candidates(ctx context.Context, scope Scope, query string, thresholds Thresholds) ([]Candidate, error)
}

type Ranker struct {
	source     CandidateSource
	thresholds Thresholds
	logger     ectologger.Logger
}

func NewRanker(source CandidateSource, thresholds Thresholds, logger ectologger.Logger) *Ranker {
	return &Ranker{
		source:     source,
		thresholds: thresholds,
		logger:     logger,
	}
}

// Rank runs the hybrid search for query over scope. An empty query is rejected
// before the store is touched.
func (r *Ranker) Rank(ctx context.Context, scope Scope, query string) ([]Hit, error) {
	ctx, span := tracing.StartSpan(ctx, "ranking.Ranker.Rank")
	defer span.End()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	start := time.Now()
	candidates, err := r.source.Candidates(ctx, scope, query, r.thresholds)
	metrics.SearchDuration.WithLabelValues(scope.Name).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(scope.Name, "error").Inc()
		r.logger.WithContext(ctx).WithError(err).Error("failed to score search candidates")
		return nil, fmt.Errorf("failed to score %s candidates: %w", scope.Name, err)
	}

	hits := Combine(candidates, r.thresholds)
	metrics.SearchRequestsTotal.WithLabelValues(scope.Name, "ok").Inc()
	metrics.SearchResults.WithLabelValues(scope.Name).Observe(float64(len(hits)))

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"scope":      scope.Name,
		"query":      query,
		"candidates": len(candidates),
		"hits":       len(hits),
	}).Debug("Ranked search candidates")

	return hits, nil
}

// Combine keeps candidates passing either threshold, orders them by lexical rank
// then fuzzy score (both descending) and collapses fan-out rows to the first,
// best, row of each entity.
func Combine(candidates []Candidate, thresholds Thresholds) []Hit {
	kept := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Lexical >= thresholds.MinLexical || c.Fuzzy >= thresholds.MinFuzzy {
			kept = append(kept, c)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Lexical != kept[j].Lexical {
			return kept[i].Lexical > kept[j].Lexical
		}
		return kept[i].Fuzzy > kept[j].Fuzzy
	})

	seen := make(map[string]struct{}, len(kept))
	hits := make([]Hit, 0, len(kept))
	for _, c := range kept {
		if _, ok := seen[c.Key]; ok {
			continue
		}
		seen[c.Key] = struct{}{}
		hits = append(hits, Hit{
			Key:         c.Key,
			LexicalRank: c.Lexical,
			FuzzyScore:  c.Fuzzy,
			DisplayRank: TruncateRank(c.Lexical),
		})
	}
	return hits
}

// TruncateRank scales a relevance to a percentage and truncates it to two
// decimals: 0.23456 displays as 23.45.
func TruncateRank(rank float64) float64 {
	return math.Floor(rank*100*100) / 100
}

// Keys returns the entity keys of hits in rank order.
func Keys(hits []Hit) []string {
	keys := make([]string, len(hits))
	for i, h := range hits {
		keys[i] = h.Key
	}
	return keys
}
