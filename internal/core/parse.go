package core

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxFileSize is the maximum allowed CSV file size (100MB).
var MaxFileSize int64 = 100 * 1024 * 1024

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseRecords maps raw CSV bytes into records of type T.
//
// With hasHeader, the first row is matched against the schema's field aliases
// and unrecognized columns are ignored. Without it, columns map positionally
// in field declaration order. Fully empty rows are skipped. Malformed cells
// never fail the parse; the schema's FromRow demotes them to absent values.
func ParseRecords[T any](data []byte, hasHeader bool, schema RecordSchema[T]) ([]T, error) {
	data = sanitizeUTF8(bytes.TrimPrefix(data, utf8BOM))

	rows, err := parseCSV(data)
	if err != nil {
		return nil, fmt.Errorf("parse CSV: %w", err)
	}

	var idx HeaderIndex
	if hasHeader {
		if len(rows) == 0 {
			return nil, nil
		}
		idx = BuildAliasIndex(rows[0], schema.Fields)
		rows = rows[1:]
	} else {
		idx = PositionalIndex(schema.Fields)
	}

	var records []T
	for _, row := range rows {
		if isEmptyRow(row) {
			continue
		}
		records = append(records, schema.FromRow(row, idx))
	}
	return records, nil
}

// BuildAliasIndex matches header cells against field aliases,
// case-insensitively. The first column matching a field wins; columns that
// match no field are ignored.
func BuildAliasIndex(header []string, fields []FieldSpec) HeaderIndex {
	idx := make(HeaderIndex, len(fields))
	for pos, h := range header {
		key := strings.ToLower(CleanCell(h))
		field, ok := fieldForAlias(key, fields)
		if !ok {
			continue
		}
		if _, taken := idx[field]; !taken {
			idx[field] = pos
		}
	}
	return idx
}

// PositionalIndex maps fields to columns in declaration order, for files
// without a header row.
func PositionalIndex(fields []FieldSpec) HeaderIndex {
	idx := make(HeaderIndex, len(fields))
	for i, f := range fields {
		idx[f.Name] = i
	}
	return idx
}

func fieldForAlias(key string, fields []FieldSpec) (string, bool) {
	for _, f := range fields {
		for _, alias := range f.Aliases {
			if key == alias {
				return f.Name, true
			}
		}
	}
	return "", false
}

func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}

func parseCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
