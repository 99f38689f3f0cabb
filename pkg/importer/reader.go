package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrEmptyFile         = errors.New("File is empty")
	ErrUnsupportedFormat = errors.New("Only CSV or Excel allowed")
	ErrParseFailed       = errors.New("File parsing failed")
)

// Row is one data row of an upload keyed by folded header.
type Row struct {
	// Number is the 1-based position in the file, the header being row 1.
	Number int
	Values map[string]string
}

// Get returns the first non-blank value among keys, trimmed.
func (r Row) Get(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(r.Values[k]); v != "" {
			return v
		}
	}
	return ""
}

// Sheet is a parsed upload: folded headers and the non-empty rows below them.
type Sheet struct {
	Headers []string
	Rows    []Row
}

// HeaderKey folds a column header so "Sap Item Id", "SAP-ITEM-ID" and
// "sap_item_id" all match.
func HeaderKey(header string) string {
	key := strings.ToLower(strings.TrimSpace(header))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	return key
}

// ReadFile parses an xlsx or csv upload. For workbooks the sheet named
// preferredSheet (case-insensitive) is read when present, else the active sheet.
func ReadFile(filename string, data []byte, preferredSheet string) (*Sheet, error) {
	var (
		records [][]string
		err     error
	)

	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "xlsx", "xlsm":
		records, err = readWorkbook(data, preferredSheet)
	case "csv":
		records, err = readCSV(data)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	return buildSheet(records)
}

func readWorkbook(data []byte, preferredSheet string) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if preferredSheet != "" {
		for _, name := range f.GetSheetList() {
			if strings.EqualFold(strings.TrimSpace(name), preferredSheet) {
				sheet = name
				break
			}
		}
	}

	return f.GetRows(sheet)
}

func readCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var records [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func buildSheet(records [][]string) (*Sheet, error) {
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	// columns with a blank header are dropped
	headers := make([]string, len(records[0]))
	var kept []string
	for i, h := range records[0] {
		headers[i] = HeaderKey(h)
		if headers[i] != "" {
			kept = append(kept, headers[i])
		}
	}

	sheet := &Sheet{Headers: kept}
	for i, record := range records[1:] {
		values := make(map[string]string, len(kept))
		blank := true
		for col, cell := range record {
			if col >= len(headers) || headers[col] == "" {
				continue
			}
			cell = strings.TrimSpace(cell)
			values[headers[col]] = cell
			if cell != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		sheet.Rows = append(sheet.Rows, Row{Number: i + 2, Values: values})
	}

	if len(sheet.Rows) == 0 {
		return nil, ErrEmptyFile
	}
	return sheet, nil
}
