package decoder

import (
	"context"
	"fmt"
	"strings"

	"bitbucket.org/sofidex/tracing_backend/models"
	"bitbucket.org/sofidex/tracing_backend/utils"
)

// compiledMapping is a FieldMapping with its transform and setter resolved.
// All lookups happen once, at profile-load time.
type compiledMapping struct {
	models.FieldMapping
	aliases   []string
	transform TransformFunc
	setter    setterFunc
}

// Registry is the immutable per-batch decode configuration: the profile, its
// mappings compiled against the closed transform and setter tables. Built
// once per batch and passed into decoder/binder calls; there is no
// process-wide cache.
type Registry struct {
	Profile  *models.Profile
	mappings []compiledMapping
	// sourceKeys holds the folded form of every known source key; vertical
	// decode uses it to recognize stray header rows.
	sourceKeys map[string]bool
}

// NewRegistry validates and compiles a profile. Unknown transform names,
// unknown field names and out-of-range fixed-width slices all fail here,
// turning silent data corruption into load-time configuration errors.
func NewRegistry(profile *models.Profile) (*Registry, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	reg := &Registry{
		Profile:    profile,
		mappings:   make([]compiledMapping, 0, len(profile.Mappings)),
		sourceKeys: make(map[string]bool),
	}
	for i := range profile.Mappings {
		m := profile.Mappings[i]
		transform, err := LookupTransform(m.Transform)
		if err != nil {
			return nil, fmt.Errorf("profile %q: field %q: %w", profile.Name, m.FieldName, err)
		}
		setter, err := LookupSetter(m.FieldName)
		if err != nil {
			return nil, fmt.Errorf("profile %q: %w", profile.Name, err)
		}
		if profile.FormatKind == models.FormatKindFixedWidth &&
			(m.Transform == models.TransformDateParts || m.Transform == models.TransformComposite) {
			return nil, fmt.Errorf("profile %q: field %q: transform %q needs multiple source keys, unavailable in fixed-width",
				profile.Name, m.FieldName, m.Transform)
		}
		aliases := m.Aliases()
		cm := compiledMapping{
			FieldMapping: m,
			aliases:      aliases,
			transform:    transform,
			setter:       setter,
		}
		reg.mappings = append(reg.mappings, cm)
		for _, a := range aliases {
			reg.sourceKeys[NormalizeHeader(a)] = true
		}
	}
	return reg, nil
}

// Resolve loads and compiles the tenant's active profile for the format kind.
func Resolve(ctx context.Context, tenantId string, formatKind models.FormatKind) (*Registry, error) {
	profile, err := models.ResolveProfile(ctx, tenantId, formatKind)
	if err != nil {
		return nil, err
	}
	return NewRegistry(profile)
}

// NormalizeHeader folds accents and case for alias matching, so spreadsheets
// with or without diacritics both resolve ("N° Prénom" vs "n° prenom").
func NormalizeHeader(s string) string {
	return strings.ToLower(utils.FoldAccents(strings.TrimSpace(s)))
}

// isComputed reports whether the mapping assembles several physical source
// keys (vertical/tabular "computed" pseudo-source convention).
func (m *compiledMapping) isComputed() bool {
	return m.SourceKey == models.SourceKeyComputed ||
		m.Transform == models.TransformDateParts ||
		m.Transform == models.TransformComposite
}

// Bind converts a decoded record into a typed CaseRecord through the
// compiled setter table. A nil issue means the record is usable.
//
// Required-field enforcement has one lenient exception: a contestation
// missing only its numeric case number is kept, since the contested numbers
// carry the linkage.
func (reg *Registry) Bind(rec *Record) (*models.CaseRecord, *RecordIssue) {
	isContestation := false
	if v, ok := rec.Get("request_type"); ok && models.RequestType(strings.TrimSpace(v)) == models.RequestTypeContestation {
		isContestation = true
	}

	out := &models.CaseRecord{
		ProfileId:    reg.Profile.ID,
		TenantId:     reg.Profile.TenantId,
		SourceLineNo: rec.LineNo,
		Status:       models.CaseStatusImported,
		RequestType:  models.RequestTypeEnquiry,
	}

	for i := range reg.mappings {
		m := &reg.mappings[i]
		value, _ := rec.Get(m.FieldName)
		if value == "" && m.DefaultValue != "" {
			value = m.DefaultValue
		}
		if value == "" && m.IsRequired() {
			if m.FieldName == "case_number" && isContestation {
				// lenient: see doc comment
				continue
			}
			return nil, &RecordIssue{
				Line:   rec.LineNo,
				Field:  m.FieldName,
				Reason: "missing required field",
			}
		}
		if err := m.setter(out, value); err != nil {
			return nil, &RecordIssue{
				Line:   rec.LineNo,
				Field:  m.FieldName,
				Reason: err.Error(),
			}
		}
	}
	if out.IsContestation == nil {
		out.IsContestation = utils.NewFalse()
	}
	return out, nil
}
