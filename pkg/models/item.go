package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Item is a catalog item (item master record).
type Item struct {
	ID          uuid.UUID    `json:"local_item_id" db:"local_item_id"`
	SAPItemID   *string      `json:"sap_item_id" db:"sap_item_id"`
	GroupCode   string       `json:"mgrp_code" db:"mgrp_code"`
	MatTypeCode string       `json:"mat_type_code" db:"mat_type_code"`
	ShortName   string       `json:"short_name" db:"short_name"`
	LongName    string       `json:"long_name" db:"long_name"`
	ItemDesc    string       `json:"item_desc" db:"item_desc"`
	Notes       string       `json:"notes" db:"notes"`
	SearchText  string       `json:"search_text" db:"search_text"`
	Attributes  AttributeSet `json:"attributes" db:"attributes"`
	IsFinal     bool         `json:"is_final" db:"is_final"`
	CreatedBy   string       `json:"created_by" db:"created_by"`
	UpdatedBy   string       `json:"updated_by" db:"updated_by"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time   `json:"deleted_at,omitempty" db:"deleted_at"`
}

// ComposeLongName joins group code, group long name and the item's short name,
// skipping blank parts.
func ComposeLongName(groupCode, groupLongName, shortName string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{groupCode, groupLongName, shortName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// ItemRef identifies an existing item in a duplicate warning.
type ItemRef struct {
	ID         uuid.UUID      `json:"local_item_id"`
	SAPItemID  *string        `json:"sap_item_id"`
	ShortName  string         `json:"short_name"`
	Attributes map[string]any `json:"attributes"`
}

func (i Item) Ref() ItemRef {
	return ItemRef{ID: i.ID, SAPItemID: i.SAPItemID, ShortName: i.ShortName, Attributes: i.Attributes.Map()}
}

// ItemSAPSummary is the item shape of the SAP id and group lookup endpoints.
type ItemSAPSummary struct {
	LocalItemID uuid.UUID `json:"local_item_id"`
	SAPID       *string   `json:"sap_id"`
	ItemDesc    string    `json:"item_desc"`
	Notes       string    `json:"notes,omitempty"`
	GroupCode   string    `json:"mgrp_code,omitempty"`
	MatTypeCode string    `json:"mat_type_code,omitempty"`
	MatTypeDesc string    `json:"mat_type_desc,omitempty"`
	GroupShort  string    `json:"mgrp_shortname,omitempty"`
	GroupLong   string    `json:"mgrp_longname,omitempty"`
}

func (i Item) SAPSummary() ItemSAPSummary {
	return ItemSAPSummary{
		LocalItemID: i.ID,
		SAPID:       i.SAPItemID,
		ItemDesc:    i.ItemDesc,
		Notes:       i.Notes,
		GroupCode:   i.GroupCode,
		MatTypeCode: i.MatTypeCode,
	}
}

// ItemDetails is an item with its group, material type and the group's attribute definitions.
type ItemDetails struct {
	Item       ItemDetailBody            `json:"item"`
	Attributes []AttributeDefinitionView `json:"attributes"`
}

type ItemDetailBody struct {
	Item
	GroupShortName string `json:"mgrp_shortname"`
	GroupLongName  string `json:"mgrp_longname"`
	MatTypeDesc    string `json:"mat_type_desc"`
}

type CreateItemRequest struct {
	SAPItemID   *string      `json:"sap_item_id"`
	GroupCode   string       `json:"mgrp_code" validate:"required"`
	MatTypeCode string       `json:"mat_type_code" validate:"required"`
	ShortName   string       `json:"short_name" validate:"required"`
	ItemDesc    string       `json:"item_desc"`
	Notes       string       `json:"notes"`
	SearchText  string       `json:"search_text"`
	Attributes  AttributeSet `json:"attributes"`
	IsFinal     bool         `json:"is_final"`
	// Force creates the item even when duplicates were found.
	Force bool `json:"force"`
}

type UpdateItemRequest struct {
	SAPItemID   *string       `json:"sap_item_id,omitempty"`
	GroupCode   *string       `json:"mgrp_code,omitempty"`
	MatTypeCode *string       `json:"mat_type_code,omitempty"`
	ShortName   *string       `json:"short_name,omitempty"`
	ItemDesc    *string       `json:"item_desc,omitempty"`
	Notes       *string       `json:"notes,omitempty"`
	SearchText  *string       `json:"search_text,omitempty"`
	Attributes  *AttributeSet `json:"attributes,omitempty"`
	IsFinal     *bool         `json:"is_final,omitempty"`
	Force       bool          `json:"force"`
}

type ItemListResponse struct {
	Items      []Item `json:"items"`
	TotalCount int    `json:"total_count"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
}
