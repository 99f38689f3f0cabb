package models

import "time"

// SuperGroup is the top level of the catalog tree.
type SuperGroup struct {
	Code      string     `json:"super_code" db:"sgrp_code"`
	Name      string     `json:"super_name" db:"sgrp_name"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// Group is a material group: the root of an attribute schema and a search scope.
type Group struct {
	Code           string  `json:"mgrp_code" db:"mgrp_code"`
	SuperGroupCode *string `json:"sgrp_code,omitempty" db:"sgrp_code"`
	ShortName      string  `json:"mgrp_shortname" db:"mgrp_shortname"`
	LongName       string  `json:"mgrp_longname" db:"mgrp_longname"`
	Notes          string  `json:"notes" db:"notes"`
	IsService      bool    `json:"is_service" db:"is_service"`
	SearchType     string  `json:"search_type" db:"search_type"`
	// ClosedValues makes allowed-value lists binding for this group. When false a
	// value outside the list is accepted as a custom value.
	ClosedValues bool       `json:"closed_attribute_values" db:"closed_attribute_values"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

type MaterialType struct {
	Code        string     `json:"mat_type_code" db:"mat_type_code"`
	Description string     `json:"mat_type_desc" db:"mat_type_desc"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// GroupSummary is the group shape used by drill-down listings.
type GroupSummary struct {
	Code      string `json:"mgrp_code"`
	ShortName string `json:"mgrp_shortname"`
	LongName  string `json:"mgrp_longname"`
}

func (g Group) Summary() GroupSummary {
	return GroupSummary{Code: g.Code, ShortName: g.ShortName, LongName: g.LongName}
}

// GroupLookup is the direct lookup by group code: the group, the material types
// that have items in it, and its items.
type GroupLookup struct {
	Group     GroupSummary     `json:"group"`
	Materials []MaterialType   `json:"materials"`
	Items     []ItemSAPSummary `json:"items"`
}
