package decoder

import (
	"bytes"

	"github.com/xuri/excelize/v2"
)

// DecodeVertical reads (key, value) rows where a designated marker key starts
// a new logical record. A marker key whose value is itself one of the known
// source keys is a stray header row dragged in by the tenant's export and is
// skipped, not treated as data.
//
// One-column rows: the sheet reader trims trailing empty cells, so a row
// holding only a key is indistinguishable from (key, "") and is accepted as
// an empty value. Only the reverse shape, a value with no key, is treated as
// structural corruption.
func DecodeVertical(raw []byte, reg *Registry) (*Result, error) {
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
	marker := NormalizeHeader(reg.Profile.MarkerKey)

	// raw cell values of the record being assembled: mapping index ->
	// alias index -> value
	var pending map[int]map[int]string
	var pendingLine int

	flush := func() {
		if pending == nil {
			return
		}
		rec := NewRecord(pendingLine)
		for i := range reg.mappings {
			m := &reg.mappings[i]
			parts := make([]string, len(m.aliases))
			for j := range m.aliases {
				parts[j] = pending[i][j]
			}
			if !m.isComputed() {
				// plain mappings: first alias that received a value
				value := ""
				for _, p := range parts {
					if p != "" {
						value = p
						break
					}
				}
				parts = []string{value}
			}
			value, ok := m.transform(parts)
			if !ok {
				value = ""
			}
			rec.Set(m.FieldName, value)
		}
		result.Records = append(result.Records, rec)
		pending = nil
	}

	for rowNo, row := range rows {
		lineNo := rowNo + 1
		if len(row) == 0 {
			continue
		}
		key := NormalizeHeader(row[0])
		value := ""
		if len(row) > 1 {
			value = row[1]
		}
		if key == "" {
			if value == "" {
				continue
			}
			return nil, &StructuralDecodeError{
				Line:   lineNo,
				Reason: "vertical row has a value but no key",
			}
		}

		if key == marker {
			if reg.sourceKeys[NormalizeHeader(value)] {
				// stray header row: the "value" is a source key name
				continue
			}
			flush()
			pending = make(map[int]map[int]string)
			pendingLine = lineNo
		}
		if pending == nil {
			// preamble rows before the first marker
			continue
		}

		for i := range reg.mappings {
			m := &reg.mappings[i]
			for j, alias := range m.aliases {
				if NormalizeHeader(alias) == key {
					if pending[i] == nil {
						pending[i] = make(map[int]string)
					}
					// first occurrence wins within a record
					if _, dup := pending[i][j]; !dup {
						pending[i][j] = value
					}
				}
			}
		}
	}
	flush()
	return result, nil
}
