package decoder

import (
	"bytes"

	"github.com/xuri/excelize/v2"
)

// DecodeTabular reads an xlsx workbook and matches each mapping's alias list
// against the header row: first by case-preserving exact match, then by
// accent-folded/case-folded match, so spreadsheets with or without diacritics
// both resolve. An unmatched required column surfaces as a per-record issue;
// only an unreadable workbook is fatal.
func DecodeTabular(raw []byte, reg *Registry) (*Result, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, &StructuralDecodeError{Line: 0, Reason: "unreadable workbook: " + err.Error()}
	}
	defer f.Close()

	sheet := pickSheet(f, reg.Profile.SheetName)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &StructuralDecodeError{Line: 0, Reason: "unreadable sheet: " + err.Error()}
	}

	result := &Result{}
	if len(rows) == 0 {
		return result, nil
	}

	header := rows[0]
	// column index per mapping; computed mappings get one index per alias,
	// plain mappings the first alias that resolves. -1 = unmatched.
	columns := make([][]int, len(reg.mappings))
	for i := range reg.mappings {
		m := &reg.mappings[i]
		if m.isComputed() {
			idxs := make([]int, len(m.aliases))
			for j, alias := range m.aliases {
				idxs[j] = matchColumn(header, alias)
			}
			columns[i] = idxs
		} else {
			idx := -1
			for _, alias := range m.aliases {
				if idx = matchColumn(header, alias); idx >= 0 {
					break
				}
			}
			columns[i] = []int{idx}
		}
	}

	for rowNo, row := range rows[1:] {
		rec := NewRecord(rowNo + 2) // 1-based, header is row 1
		for i := range reg.mappings {
			m := &reg.mappings[i]
			parts := make([]string, len(columns[i]))
			for j, idx := range columns[i] {
				parts[j] = cellAt(row, idx)
			}
			value, ok := m.transform(parts)
			if !ok {
				value = ""
			}
			rec.Set(m.FieldName, value)
		}
		result.Records = append(result.Records, rec)
	}
	return result, nil
}

// pickSheet returns the configured target sheet when it exists, otherwise the
// workbook's first sheet.
func pickSheet(f *excelize.File, wanted string) string {
	sheets := f.GetSheetList()
	if wanted != "" {
		for _, s := range sheets {
			if s == wanted {
				return s
			}
		}
	}
	if len(sheets) > 0 {
		return sheets[0]
	}
	return "Sheet1"
}

// matchColumn resolves an alias against the header row, exact match first,
// normalized match second.
func matchColumn(header []string, alias string) int {
	for i, h := range header {
		if h == alias {
			return i
		}
	}
	want := NormalizeHeader(alias)
	for i, h := range header {
		if NormalizeHeader(h) == want {
			return i
		}
	}
	return -1
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
