package ranking

// Weight is a Postgres text search weight label. A ranks highest.
type Weight string

const (
	WeightA Weight = "A"
	WeightB Weight = "B"
	WeightC Weight = "C"
)

// Field is a searched column and the weight of its lexemes.
type Field struct {
	Column string
	Weight Weight
}

type Join struct {
	Table string
	On    string
}

type Equal struct {
	Column string
	Value  any
}

// Scope is the set of rows a search runs over: one entity per Key, possibly
// fanned out over joined rows, scored over Fields.
type Scope struct {
	// Name labels metrics and logs.
	Name string
	// Table is the driving table with its alias.
	Table string
	// LeftJoins may fan out one entity over several rows.
	LeftJoins []Join
	// Key is the entity identity expression, selected as text.
	Key string
	// Live lists table aliases whose rows must not be soft deleted.
	Live   []string
	Equals []Equal
	Fields []Field
}

const (
	ScopeGroups           = "groups"
	ScopeItemsInGroup     = "items_in_group"
	ScopeItemsInGroupType = "items_in_group_type"
)

// GroupScope searches material groups over their own names and notes and over
// the descriptions of their live items.
func GroupScope() Scope {
	return Scope{
		Name:  ScopeGroups,
		Table: "mat_groups g",
		LeftJoins: []Join{
			{Table: "item_masters i", On: "i.mgrp_code = g.mgrp_code AND i.deleted_at IS NULL"},
		},
		Key:  "g.mgrp_code",
		Live: []string{"g"},
		Fields: []Field{
			{Column: "i.item_desc", Weight: WeightA},
			{Column: "i.search_text", Weight: WeightB},
			{Column: "g.notes", Weight: WeightA},
			{Column: "g.mgrp_shortname", Weight: WeightB},
			{Column: "g.mgrp_longname", Weight: WeightB},
		},
	}
}

// ItemsInGroupScope searches the items of one group.
func ItemsInGroupScope(groupCode string) Scope {
	return Scope{
		Name:   ScopeItemsInGroup,
		Table:  "item_masters i",
		Key:    "i.local_item_id",
		Live:   []string{"i"},
		Equals: []Equal{{Column: "i.mgrp_code", Value: groupCode}},
		Fields: []Field{
			{Column: "i.item_desc", Weight: WeightA},
			{Column: "i.search_text", Weight: WeightB},
			{Column: "i.mat_type_code", Weight: WeightC},
		},
	}
}

// ItemsInGroupAndTypeScope searches the items of one group and material type.
func ItemsInGroupAndTypeScope(groupCode, matTypeCode string) Scope {
	return Scope{
		Name:  ScopeItemsInGroupType,
		Table: "item_masters i",
		Key:   "i.local_item_id",
		Live:  []string{"i"},
		Equals: []Equal{
			{Column: "i.mgrp_code", Value: groupCode},
			{Column: "i.mat_type_code", Value: matTypeCode},
		},
		Fields: []Field{
			{Column: "i.item_desc", Weight: WeightA},
			{Column: "i.search_text", Weight: WeightB},
		},
	}
}
