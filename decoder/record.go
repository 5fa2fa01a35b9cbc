package decoder

import "fmt"

// Record is one decoded logical record: an ordered field name -> value map.
// Order follows the profile's mapping order so re-encoding is stable.
type Record struct {
	LineNo int
	keys   []string
	values map[string]string
}

func NewRecord(lineNo int) *Record {
	return &Record{
		LineNo: lineNo,
		values: make(map[string]string),
	}
}

func (r *Record) Set(field, value string) {
	if _, ok := r.values[field]; !ok {
		r.keys = append(r.keys, field)
	}
	r.values[field] = value
}

func (r *Record) Get(field string) (string, bool) {
	v, ok := r.values[field]
	return v, ok
}

// Fields returns the field names in insertion order.
func (r *Record) Fields() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

func (r *Record) Len() int {
	return len(r.keys)
}

// StructuralDecodeError means the row shape is corrupt beyond reconciliation.
// It is fatal for the whole batch.
type StructuralDecodeError struct {
	Line   int
	Reason string
}

func (e *StructuralDecodeError) Error() string {
	return fmt.Sprintf("structural decode error at line %d: %s", e.Line, e.Reason)
}

// RecordIssue is a per-record semantic problem (missing required field,
// unparseable value). The record is skipped and logged; the batch continues.
type RecordIssue struct {
	Line   int
	Field  string
	Reason string
}

func (e *RecordIssue) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("record at line %d: field %q: %s", e.Line, e.Field, e.Reason)
	}
	return fmt.Sprintf("record at line %d: %s", e.Line, e.Reason)
}

// Result is the outcome of decoding one raw input.
type Result struct {
	Records []*Record
	// Issues are per-record problems; index is not aligned with Records,
	// each issue carries its own line number.
	Issues []*RecordIssue
	// EncodingFallback is true when the input was not valid UTF-8 and the
	// Windows-1252 fallback decoding was applied.
	EncodingFallback bool
}
