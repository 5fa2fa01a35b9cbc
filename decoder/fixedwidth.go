package decoder

import (
	"fmt"
	"strings"
)

// DecodeFixedWidth splits raw bytes into physical lines on the profile's line
// terminator and slices each mapping's [offset, offset+length) out of the
// line. Short lines are right-padded to the declared record length, never
// rejected. A line carrying content past the declared length cannot be
// reconciled (the file is misaligned, usually a wrong terminator) and aborts
// the batch.
func DecodeFixedWidth(raw []byte, reg *Registry) (*Result, error) {
	text, fallback, err := decodeBytes(raw, reg.Profile.EncodingHint)
	if err != nil {
		return nil, &StructuralDecodeError{Line: 0, Reason: err.Error()}
	}

	result := &Result{EncodingFallback: fallback}
	recordLength := reg.Profile.RecordLength

	for lineNo, line := range splitLines(text, reg.Profile.LineTerminator) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if len(line) > recordLength {
			if strings.TrimSpace(line[recordLength:]) != "" {
				return nil, &StructuralDecodeError{
					Line:   lineNo + 1,
					Reason: fmt.Sprintf("line length %d exceeds declared record length %d", len(line), recordLength),
				}
			}
			line = line[:recordLength]
		}
		if len(line) < recordLength {
			line += strings.Repeat(" ", recordLength-len(line))
		}

		rec := NewRecord(lineNo + 1)
		for i := range reg.mappings {
			m := &reg.mappings[i]
			slice := line[m.Offset : m.Offset+m.Length]
			value, ok := m.transform([]string{slice})
			if !ok {
				value = ""
			}
			rec.Set(m.FieldName, value)
		}
		result.Records = append(result.Records, rec)
	}
	return result, nil
}

func splitLines(text, terminator string) []string {
	if terminator != "" {
		lines := strings.Split(text, terminator)
		// Tolerate a bare-LF file declared with CRLF.
		if terminator == "\r\n" && len(lines) == 1 && strings.Contains(text, "\n") {
			lines = strings.Split(text, "\n")
		}
		return lines
	}
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}
	return lines
}
