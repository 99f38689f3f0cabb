package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/Gobusters/ectolinq"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/ranking"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Ranker runs a hybrid search over a scope.
type Ranker interface {
	Rank(ctx context.Context, scope ranking.Scope, query string) ([]ranking.Hit, error)
}

type SearchService struct {
	ranker Ranker
	groups GroupStore
	items  ItemStore
	logger ectologger.Logger
}

func NewSearchService(ranker Ranker, groups GroupStore, items ItemStore, logger ectologger.Logger) *SearchService {
	return &SearchService{
		ranker: ranker,
		groups: groups,
		items:  items,
		logger: logger,
	}
}

// SearchGroups ranks material groups by their names, notes and item texts
func (s *SearchService) SearchGroups(ctx context.Context, query string) ([]models.GroupSearchResult, error) {
	ctx, span := tracing.StartSpan(ctx, "catalog.SearchService.SearchGroups")
	defer span.End()

	hits, err := s.ranker.Rank(ctx, ranking.GroupScope(), query)
	if err != nil {
		return nil, err
	}

	groups, err := s.groups.GetByCodes(ctx, ranking.Keys(hits))
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]models.Group, len(groups))
	for _, g := range groups {
		byCode[g.Code] = g
	}

	results := make([]models.GroupSearchResult, 0, len(hits))
	for _, hit := range hits {
		g, ok := byCode[hit.Key]
		if !ok {
			continue
		}
		results = append(results, models.GroupSearchResult{
			Group: g,
			Score: hit.FuzzyScore,
			Rank:  hit.DisplayRank,
		})
	}

	return results, nil
}

// SearchItemsInGroup lists the live items of a group, ranked when query is not blank
func (s *SearchService) SearchItemsInGroup(ctx context.Context, groupCode, query string) ([]models.ItemSearchResult, error) {
	ctx, span := tracing.StartSpan(ctx, "catalog.SearchService.SearchItemsInGroup")
	defer span.End()

	group, err := s.group(ctx, groupCode)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(query) == "" {
		items, err := s.items.ListByGroup(ctx, group.Code)
		if err != nil {
			return nil, err
		}
		return unranked(items, group.LongName), nil
	}

	return s.rankItems(ctx, ranking.ItemsInGroupScope(group.Code), query, group.LongName)
}

// SearchItemsInGroupAndType lists the live items of one material type within a
// group, ranked when query is not blank
func (s *SearchService) SearchItemsInGroupAndType(ctx context.Context, groupCode, matTypeCode, query string) ([]models.ItemSearchResult, error) {
	ctx, span := tracing.StartSpan(ctx, "catalog.SearchService.SearchItemsInGroupAndType")
	defer span.End()

	group, err := s.group(ctx, groupCode)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(query) == "" {
		items, err := s.items.ListByGroupAndType(ctx, group.Code, matTypeCode)
		if err != nil {
			return nil, err
		}
		return unranked(items, group.LongName), nil
	}

	return s.rankItems(ctx, ranking.ItemsInGroupAndTypeScope(group.Code, matTypeCode), query, group.LongName)
}

func (s *SearchService) rankItems(ctx context.Context, scope ranking.Scope, query, groupLongName string) ([]models.ItemSearchResult, error) {
	hits, err := s.ranker.Rank(ctx, scope, query)
	if err != nil {
		return nil, err
	}

	items, err := s.items.GetByIDs(ctx, ranking.Keys(hits))
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Item, len(items))
	for _, it := range items {
		byID[it.ID.String()] = it
	}

	results := make([]models.ItemSearchResult, 0, len(hits))
	for _, hit := range hits {
		it, ok := byID[hit.Key]
		if !ok {
			continue
		}
		score, rank := hit.FuzzyScore, hit.DisplayRank
		results = append(results, models.ItemSearchResult{
			Item:          it,
			GroupLongName: groupLongName,
			Score:         &score,
			Rank:          &rank,
		})
	}
	return results, nil
}

func unranked(items []models.Item, groupLongName string) []models.ItemSearchResult {
	return ectolinq.Map(items, func(it models.Item) models.ItemSearchResult {
		return models.ItemSearchResult{Item: it, GroupLongName: groupLongName}
	})
}

func (s *SearchService) ListSuperGroups(ctx context.Context) ([]models.SuperGroup, error) {
	ctx, span := tracing.StartSpan(ctx, "catalog.SearchService.ListSuperGroups")
	defer span.End()

	return s.groups.ListSuperGroups(ctx)
}

// ListGroups returns the groups of a super group. A super group without live
// groups is reported as not found.
func (s *SearchService) ListGroups(ctx context.Context, superGroupCode string) ([]models.GroupSummary, error) {
	ctx, span := tracing.StartSpan(ctx, "catalog.SearchService.ListGroups")
	defer span.End()

	groups, err := s.groups.ListBySuperGroup(ctx, superGroupCode)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSuperGroupNotFound, superGroupCode)
	}

	return ectolinq.Map(groups, func(g models.Group) models.GroupSummary { return g.Summary() }), nil
}

// ListMaterialTypes returns the material types with live items in a group
func (s *SearchService) ListMaterialTypes(ctx context.Context, groupCode string) ([]models.MaterialType, error) {
	ctx, span := tracing.StartSpan(ctx, "catalog.SearchService.ListMaterialTypes")
	defer span.End()

	group, err := s.group(ctx, groupCode)
	if err != nil {
		return nil, err
	}

	return s.groups.ListMaterialTypesByGroup(ctx, group.Code)
}

// ListItemsByMaterialType returns the items of a material type, optionally
// restricted to one group, with their group names
func (s *SearchService) ListItemsByMaterialType(ctx context.Context, matTypeCode, groupCode string) ([]models.ItemSAPSummary, error) {
	ctx, span := tracing.StartSpan(ctx, "catalog.SearchService.ListItemsByMaterialType")
	defer span.End()

	mt, err := s.groups.GetMaterialType(ctx, matTypeCode)
	if err != nil {
		return nil, err
	}
	if mt == nil {
		return nil, fmt.Errorf("%w: %s", ErrMaterialTypeNotFound, matTypeCode)
	}

	items, err := s.items.ListByMaterialType(ctx, matTypeCode, groupCode)
	if err != nil {
		return nil, err
	}

	codes := ectolinq.Map(items, func(it models.Item) string { return it.GroupCode })
	groups, err := s.groups.GetByCodes(ctx, distinct(codes))
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]models.Group, len(groups))
	for _, g := range groups {
		byCode[g.Code] = g
	}

	return ectolinq.Map(items, func(it models.Item) models.ItemSAPSummary {
		summary := it.SAPSummary()
		summary.MatTypeDesc = mt.Description
		if g, ok := byCode[it.GroupCode]; ok {
			summary.GroupShort = g.ShortName
			summary.GroupLong = g.LongName
		}
		return summary
	}), nil
}

// LookupGroup returns a group with its material types and items
func (s *SearchService) LookupGroup(ctx context.Context, groupCode string) (*models.GroupLookup, error) {
	ctx, span := tracing.StartSpan(ctx, "catalog.SearchService.LookupGroup")
	defer span.End()

	group, err := s.group(ctx, groupCode)
	if err != nil {
		return nil, err
	}

	types, err := s.groups.ListMaterialTypesByGroup(ctx, group.Code)
	if err != nil {
		return nil, err
	}

	items, err := s.items.ListByGroup(ctx, group.Code)
	if err != nil {
		return nil, err
	}

	return &models.GroupLookup{
		Group:     group.Summary(),
		Materials: types,
		Items:     ectolinq.Map(items, func(it models.Item) models.ItemSAPSummary { return it.SAPSummary() }),
	}, nil
}

// SAPIDsByGroup returns the SAP summaries of a group's items. A group without
// live items is reported as not found.
func (s *SearchService) SAPIDsByGroup(ctx context.Context, groupCode string) ([]models.ItemSAPSummary, error) {
	ctx, span := tracing.StartSpan(ctx, "catalog.SearchService.SAPIDsByGroup")
	defer span.End()

	items, err := s.items.ListByGroup(ctx, groupCode)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w for group %s", ErrNoItems, groupCode)
	}

	return ectolinq.Map(items, func(it models.Item) models.ItemSAPSummary {
		return models.ItemSAPSummary{LocalItemID: it.ID, SAPID: it.SAPItemID, ItemDesc: it.ItemDesc, Notes: it.Notes}
	}), nil
}

func (s *SearchService) group(ctx context.Context, code string) (*models.Group, error) {
	group, err := s.groups.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, fmt.Errorf("%w: %s", ErrGroupNotFound, code)
	}
	return group, nil
}

func distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
