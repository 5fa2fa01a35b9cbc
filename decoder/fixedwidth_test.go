package decoder

import (
	"strings"
	"testing"

	"bitbucket.org/sofidex/tracing_backend/models"
	"bitbucket.org/sofidex/tracing_backend/utils"
)

// NOTE: These tests are DB-free; profiles are built in memory and compiled
// through NewRegistry exactly as the import workflow does.

func fixedWidthProfile(recordLength int, mappings ...models.FieldMapping) *models.Profile {
	return &models.Profile{
		TenantId:     "tenant-1",
		Name:         "partner fixed-width",
		FormatKind:   models.FormatKindFixedWidth,
		RecordLength: recordLength,
		Mappings:     mappings,
	}
}

func mustRegistry(t *testing.T, profile *models.Profile) *Registry {
	t.Helper()
	reg, err := NewRegistry(profile)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func TestDecodeFixedWidth_SlicesDeclaredOffsets(t *testing.T) {
	reg := mustRegistry(t, fixedWidthProfile(76,
		models.FieldMapping{FieldName: "case_number", Offset: 0, Length: 10, Transform: models.TransformTrim, Required: utils.NewTrue()},
		models.FieldMapping{FieldName: "surname", Offset: 10, Length: 20, Transform: models.TransformTrimUpper},
		models.FieldMapping{FieldName: "request_type", Offset: 73, Length: 3, Transform: models.TransformTrimUpper},
	))

	line := "0000123456" + "Martin" + strings.Repeat(" ", 57) + "ENQ"
	if len(line) != 76 {
		t.Fatalf("test line length = %d, want 76", len(line))
	}

	res, err := DecodeFixedWidth([]byte(line+"\r\n"), reg)
	if err != nil {
		t.Fatalf("DecodeFixedWidth: %v", err)
	}
	if len(res.Records) != 1 {
		t.Fatalf("records = %d, want 1", len(res.Records))
	}
	rec := res.Records[0]
	if v, _ := rec.Get("case_number"); v != "0000123456" {
		t.Fatalf("case_number = %q", v)
	}
	if v, _ := rec.Get("surname"); v != "MARTIN" {
		t.Fatalf("surname = %q", v)
	}
	if v, _ := rec.Get("request_type"); v != "ENQ" {
		t.Fatalf("request_type = %q", v)
	}
	if rec.LineNo != 1 {
		t.Fatalf("LineNo = %d, want 1", rec.LineNo)
	}
}

func TestDecodeFixedWidth_ShortLineIsPadded(t *testing.T) {
	reg := mustRegistry(t, fixedWidthProfile(76,
		models.FieldMapping{FieldName: "case_number", Offset: 0, Length: 10, Transform: models.TransformTrim},
		models.FieldMapping{FieldName: "request_type", Offset: 73, Length: 3, Transform: models.TransformTrimUpper},
	))

	// only the first slot present; everything after is implicit padding
	res, err := DecodeFixedWidth([]byte("0000123456\n"), reg)
	if err != nil {
		t.Fatalf("DecodeFixedWidth: %v", err)
	}
	if len(res.Records) != 1 {
		t.Fatalf("records = %d, want 1", len(res.Records))
	}
	if v, _ := res.Records[0].Get("request_type"); v != "" {
		t.Fatalf("request_type = %q, want empty", v)
	}
}

func TestDecodeFixedWidth_OverflowContentIsStructural(t *testing.T) {
	reg := mustRegistry(t, fixedWidthProfile(20,
		models.FieldMapping{FieldName: "case_number", Offset: 0, Length: 10, Transform: models.TransformTrim},
	))

	long := strings.Repeat("X", 25)
	_, err := DecodeFixedWidth([]byte(long), reg)
	if err == nil {
		t.Fatal("expected a structural decode error")
	}
	if _, ok := err.(*StructuralDecodeError); !ok {
		t.Fatalf("error type = %T, want *StructuralDecodeError", err)
	}

	// trailing spaces beyond the declared length are tolerated
	padded := strings.Repeat("X", 20) + "     "
	if _, err := DecodeFixedWidth([]byte(padded), reg); err != nil {
		t.Fatalf("trailing spaces rejected: %v", err)
	}
}

func TestDecodeFixedWidth_BlankLinesSkipped(t *testing.T) {
	reg := mustRegistry(t, fixedWidthProfile(20,
		models.FieldMapping{FieldName: "case_number", Offset: 0, Length: 10, Transform: models.TransformTrim},
	))

	data := "0000000001\n\n   \n0000000002\n"
	res, err := DecodeFixedWidth([]byte(data), reg)
	if err != nil {
		t.Fatalf("DecodeFixedWidth: %v", err)
	}
	if len(res.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(res.Records))
	}
	if res.Records[1].LineNo != 4 {
		t.Fatalf("second record LineNo = %d, want 4", res.Records[1].LineNo)
	}
}

func TestDecodeFixedWidth_ToleratesBareLFWhenCRLFDeclared(t *testing.T) {
	profile := fixedWidthProfile(20,
		models.FieldMapping{FieldName: "case_number", Offset: 0, Length: 10, Transform: models.TransformTrim},
	)
	profile.LineTerminator = "\r\n"
	reg := mustRegistry(t, profile)

	res, err := DecodeFixedWidth([]byte("0000000001\n0000000002\n"), reg)
	if err != nil {
		t.Fatalf("DecodeFixedWidth: %v", err)
	}
	if len(res.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(res.Records))
	}
}

func TestDecodeFixedWidth_Windows1252Fallback(t *testing.T) {
	reg := mustRegistry(t, fixedWidthProfile(20,
		models.FieldMapping{FieldName: "surname", Offset: 0, Length: 10, Transform: models.TransformTrimUpper},
	))

	// "Métayer" in Windows-1252: 0xE9 is not valid UTF-8
	raw := []byte{'M', 0xE9, 't', 'a', 'y', 'e', 'r'}
	res, err := DecodeFixedWidth(raw, reg)
	if err != nil {
		t.Fatalf("DecodeFixedWidth: %v", err)
	}
	if !res.EncodingFallback {
		t.Fatal("EncodingFallback not flagged")
	}
	if v, _ := res.Records[0].Get("surname"); v != "MÉTAYER" {
		t.Fatalf("surname = %q, want MÉTAYER", v)
	}
}
