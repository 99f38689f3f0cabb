package importer

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Template describes the downloadable workbook for one import kind.
type Template struct {
	Filename string
	Sheet    string
	Headers  []string
	Width    float64
	Rows     [][]any
}

var templates = map[string]Template{
	KindDefinitions: {
		Filename: "MatgAttributeItem_template.xlsx",
		Sheet:    "MatgAttributeItem",
		Headers:  []string{"Mgrp Code", "Attribute Name", "Possible Values", "Uom", "Print Priority", "Validation"},
		Width:    30,
		Rows: [][]any{
			{"GRP001", "Color", "Red, Blue, Green, Yellow", "", "1", ""},
			{"GRP001", "Size", "Small, Medium, Large, XL", "", "2", ""},
			{"GRP002", "Weight", "1kg, 2kg, 5kg, 10kg", "kg", "1", ""},
		},
	},
	KindAttributes: {
		Filename: "ItemMaster_Attributes_template.xlsx",
		Sheet:    "Attribute Settings",
		Headers:  []string{"Sap Item Id", "Attribute Name", "Attribute Value", "Uom"},
		Width:    30,
		Rows: [][]any{
			{"12345", "Color", "Red", ""},
			{"12345", "Size", "Large", ""},
			{"12346", "Color", "Blue", ""},
			{"12346", "Weight", "10", "kg"},
		},
	},
	KindItems: {
		Filename: "ItemMaster_Base_Values_template.xlsx",
		Sheet:    "Item Base Values",
		Headers:  []string{"Sap Item Id", "Mat Type Code", "Mgrp Code", "Short Name", "Long Name", "Item Desc", "Notes", "Search Text"},
		Width:    25,
		Rows: [][]any{
			{"12345", "MAT1", "GRP001", "Sample Item 1", "Sample Long Name 1", "SAP Item Name 1", "", "sample search text 1"},
			{"12346", "MAT2", "GRP002", "Sample Item 2", "Sample Long Name 2", "SAP Item Name 2", "", "sample search text 2"},
		},
	},
}

// TemplateFor returns the template of an import kind.
func TemplateFor(kind string) (Template, bool) {
	t, ok := templates[kind]
	return t, ok
}

// Render writes the template as an xlsx workbook with a styled header row.
func (t Template) Render() ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(sheet, t.Sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	sheet = t.Sheet

	header := make([]any, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"366092"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF", Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(t.Headers))
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", style); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}
	if err := f.SetColWidth(sheet, "A", lastCol, t.Width); err != nil {
		return nil, fmt.Errorf("failed to size columns: %w", err)
	}

	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write sample row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
