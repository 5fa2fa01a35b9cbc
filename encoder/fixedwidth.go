package encoder

import (
	"fmt"
	"strings"

	"bitbucket.org/sofidex/tracing_backend/models"
)

// MissingRequiredFieldError aborts encoding of one record: the encoder never
// emits a malformed line in place of a missing identifier.
type MissingRequiredFieldError struct {
	Field string
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("encode: missing required field %q", e.Field)
}

// ExportLengthViolationError is fatal: the external contract declares an
// exact total line length and a non-conforming line must never be emitted.
type ExportLengthViolationError struct {
	Want int
	Got  int
}

func (e *ExportLengthViolationError) Error() string {
	return fmt.Sprintf("encode: line length %d violates declared record length %d", e.Got, e.Want)
}

// Exporter renders case records into the partner's fixed-width wire format.
// Pure after construction; safe for concurrent use.
type Exporter struct {
	profile  *models.Profile
	mappings []exportMapping
}

type exportMapping struct {
	models.FieldMapping
	getter getterFunc
}

// NewExporter validates the export profile once: unknown field names and
// out-of-range slices are configuration errors, not per-record ones.
func NewExporter(profile *models.Profile) (*Exporter, error) {
	if profile.FormatKind != models.FormatKindFixedWidth {
		return nil, fmt.Errorf("export profile %q: format kind %q is not fixed-width", profile.Name, profile.FormatKind)
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	exp := &Exporter{profile: profile}
	for i := range profile.Mappings {
		m := profile.Mappings[i]
		getter, err := LookupGetter(m.FieldName)
		if err != nil {
			return nil, fmt.Errorf("export profile %q: %w", profile.Name, err)
		}
		exp.mappings = append(exp.mappings, exportMapping{FieldMapping: m, getter: getter})
	}
	return exp, nil
}

// Terminator returns the wire line terminator (CRLF unless configured).
func (e *Exporter) Terminator() string {
	if e.profile.LineTerminator != "" {
		return e.profile.LineTerminator
	}
	return "\r\n"
}

// Encode renders one record into an exact-length line plus the terminator.
// Text is left-justified and space-padded; values longer than their declared
// slot are truncated silently. Dates render as dd/mm/yyyy and amounts as
// zero-padded decimal-comma strings.
func (e *Exporter) Encode(record *models.CaseRecord) ([]byte, error) {
	line := []byte(strings.Repeat(" ", e.profile.RecordLength))

	for i := range e.mappings {
		m := &e.mappings[i]
		value := m.getter(record, m.Length)
		if value == "" && m.IsRequired() {
			return nil, &MissingRequiredFieldError{Field: m.FieldName}
		}
		b := []byte(value)
		if len(b) > m.Length {
			b = b[:m.Length]
		}
		copy(line[m.Offset:m.Offset+m.Length], b)
	}

	if len(line) != e.profile.RecordLength {
		return nil, &ExportLengthViolationError{Want: e.profile.RecordLength, Got: len(line)}
	}
	return append(line, []byte(e.Terminator())...), nil
}
