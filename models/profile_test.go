package models

import "testing"

func validFixedWidthProfile() *Profile {
	return &Profile{
		TenantId:     "tenant-1",
		Name:         "partner fixed-width",
		FormatKind:   FormatKindFixedWidth,
		RecordLength: 80,
		Mappings: []FieldMapping{
			{FieldName: "case_number", Offset: 0, Length: 10, Transform: TransformTrim},
			{FieldName: "surname", Offset: 10, Length: 20, Transform: TransformTrimUpper},
		},
	}
}

func TestProfileValidate(t *testing.T) {
	if err := validFixedWidthProfile().Validate(); err != nil {
		t.Fatalf("valid profile rejected: %v", err)
	}
}

func TestProfileValidateRejectsBadFormatKind(t *testing.T) {
	p := validFixedWidthProfile()
	p.FormatKind = "Csv"
	if err := p.Validate(); err == nil {
		t.Fatal("invalid format kind accepted")
	}
}

func TestProfileValidateRejectsDuplicateFieldMapping(t *testing.T) {
	p := validFixedWidthProfile()
	p.Mappings = append(p.Mappings, FieldMapping{FieldName: "case_number", Offset: 30, Length: 10, Transform: TransformTrim})
	if err := p.Validate(); err == nil {
		t.Fatal("duplicate field mapping accepted")
	}
}

func TestProfileValidateRejectsZeroLengthSlice(t *testing.T) {
	p := validFixedWidthProfile()
	p.Mappings[0].Length = 0
	if err := p.Validate(); err == nil {
		t.Fatal("zero-length fixed-width mapping accepted")
	}
}

func TestProfileValidateRejectsSliceBeyondRecordLength(t *testing.T) {
	p := validFixedWidthProfile()
	p.Mappings[1].Offset = 75
	if err := p.Validate(); err == nil {
		t.Fatal("slice beyond record length accepted")
	}
}

func TestProfileValidateTabularNeedsAliases(t *testing.T) {
	p := &Profile{
		TenantId:   "tenant-1",
		Name:       "client tabular",
		FormatKind: FormatKindTabular,
		Mappings: []FieldMapping{
			{FieldName: "case_number", Transform: TransformTrim},
		},
	}
	if err := p.Validate(); err == nil {
		t.Fatal("tabular mapping without aliases accepted")
	}
	p.Mappings[0].ColumnAliases = "N° dossier|Dossier"
	if err := p.Validate(); err != nil {
		t.Fatalf("aliased tabular mapping rejected: %v", err)
	}
}

func TestProfileValidateVerticalNeedsMarkerKey(t *testing.T) {
	p := &Profile{
		TenantId:   "tenant-1",
		Name:       "client vertical",
		FormatKind: FormatKindVertical,
		Mappings: []FieldMapping{
			{FieldName: "case_number", ColumnAliases: "Dossier", Transform: TransformTrim},
		},
	}
	if err := p.Validate(); err == nil {
		t.Fatal("vertical profile without marker key accepted")
	}
	p.MarkerKey = "Dossier"
	if err := p.Validate(); err != nil {
		t.Fatalf("vertical profile rejected: %v", err)
	}
}

func TestFieldMappingAliases(t *testing.T) {
	m := FieldMapping{ColumnAliases: "N° dossier | Dossier ||"}
	got := m.Aliases()
	if len(got) != 2 || got[0] != "N° dossier" || got[1] != "Dossier" {
		t.Fatalf("Aliases = %v", got)
	}
	if (&FieldMapping{}).Aliases() != nil {
		t.Fatal("empty alias list should be nil")
	}
}

func TestKeywordRuleValidateCompilesRegex(t *testing.T) {
	isRegex := true
	rule := KeywordRule{ID: 1, Code: RequestCodeBank, Pattern: "rib|iban", IsRegex: &isRegex}
	if err := rule.Validate(); err != nil {
		t.Fatalf("valid rule rejected: %v", err)
	}
	rule.Pattern = "rib(("
	if err := rule.Validate(); err == nil {
		t.Fatal("broken regex accepted at configuration time")
	}
	rule.Pattern = ""
	if err := rule.Validate(); err == nil {
		t.Fatal("empty pattern accepted")
	}
	rule = KeywordRule{ID: 2, Code: "SALARY", Pattern: "x"}
	if err := rule.Validate(); err == nil {
		t.Fatal("invalid request code accepted")
	}
}

// Validate compiles a regex rule once; every later lookup reuses the cached
// regex instead of recompiling per record.
func TestKeywordRuleCompiledPatternIsCached(t *testing.T) {
	isRegex := true
	rule := KeywordRule{ID: 1, Code: RequestCodeBank, Pattern: "rib|iban", IsRegex: &isRegex}
	if err := rule.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	first, err := rule.CompiledPattern()
	if err != nil {
		t.Fatalf("CompiledPattern: %v", err)
	}
	second, err := rule.CompiledPattern()
	if err != nil {
		t.Fatalf("CompiledPattern: %v", err)
	}
	if first != second {
		t.Fatal("pattern recompiled between lookups")
	}
	if _, err := (&KeywordRule{ID: 2, Code: RequestCodeBank, Pattern: "x"}).CompiledPattern(); err == nil {
		t.Fatal("CompiledPattern accepted a non-regex rule")
	}
}
