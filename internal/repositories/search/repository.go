package search

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/ranking"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Repository scores catalog rows against a search query in Postgres. It
// implements ranking.CandidateSource.
type Repository struct {
	db               database.DB
	logger           ectologger.Logger
	textSearchConfig string
}

// NewRepository creates a new search repository. textSearchConfig names the
// Postgres text search configuration, "english" when empty.
func NewRepository(db database.DB, logger ectologger.Logger, textSearchConfig string) *Repository {
	return &Repository{
		db:               db,
		logger:           logger,
		textSearchConfig: textSearchConfig,
	}
}

// Candidates returns one scored row per matching scope row
func (r *Repository) Candidates(ctx context.Context, scope ranking.Scope, query string, thresholds ranking.Thresholds) ([]ranking.Candidate, error) {
	ctx, span := tracing.StartSpan(ctx, "SearchRepository.Candidates")
	defer span.End()

	sql, args := ranking.BuildQuery(scope, query, ranking.QueryConfig{
		TextSearchConfig: r.textSearchConfig,
		Thresholds:       thresholds,
	})

	candidates := []ranking.Candidate{}
	if err := r.db.Conn(ctx).SelectContext(ctx, &candidates, sql, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"scope": scope.Name,
		}).Error("failed to score search candidates")
		return nil, fmt.Errorf("failed to score search candidates: %w", err)
	}

	return candidates, nil
}
