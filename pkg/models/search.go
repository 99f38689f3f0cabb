package models

// GroupSearchResult is a group with its hybrid search scores.
type GroupSearchResult struct {
	Group
	// Score is the summed trigram similarity across searched fields.
	Score float64 `json:"score"`
	// Rank is the lexical rank scaled by 100 and truncated to two decimals.
	Rank float64 `json:"rank"`
}

// ItemSearchResult is an item with its hybrid search scores. Scores are absent
// when the listing was not filtered by a query.
type ItemSearchResult struct {
	Item
	GroupLongName string   `json:"mgrp_long_name"`
	Score         *float64 `json:"score,omitempty"`
	Rank          *float64 `json:"rank,omitempty"`
}

type SearchRequest struct {
	Query string `json:"query" validate:"required"`
}
