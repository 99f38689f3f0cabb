package importer

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Value kinds understood by ConvertValue.
const (
	KindInt      = "int"
	KindBool     = "bool"
	KindFloat    = "float"
	KindDate     = "date"
	KindDateTime = "datetime"
)

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ConvertValue turns a cell into the typed value of kind. A blank cell is nil.
// A cell that does not parse is returned unchanged as a string, except for bool
// where anything but 1, true or yes is false.
func ConvertValue(kind, raw string) any {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}

	switch kind {
	case KindInt:
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
		// spreadsheets hand integers back as "12345.0"
		if f, err := strconv.ParseFloat(value, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return int64(f)
		}
	case KindBool:
		switch strings.ToLower(value) {
		case "1", "true", "yes":
			return true
		}
		return false
	case KindFloat:
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	case KindDate:
		if t, err := time.Parse("2006-01-02", value); err == nil {
			return t
		}
	case KindDateTime:
		for _, layout := range dateTimeLayouts {
			if t, err := time.Parse(layout, value); err == nil {
				return t
			}
		}
	}

	return value
}

// intValue converts a cell to an int, reporting false when it is blank or not a number.
func intValue(raw string) (int64, bool) {
	n, ok := ConvertValue(KindInt, raw).(int64)
	return n, ok
}
