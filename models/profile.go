package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bitbucket.org/sofidex/tracing_backend/config"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var ErrProfileNotFound = errors.New("profile not found")

// Profile is the per-tenant import/export configuration. Read-only after
// creation; it drives both the decoder and the export encoder.
type Profile struct {
	ID           int        `gorm:"primary_key" json:"id"`
	TenantId     string     `gorm:"index;not null" json:"tenant_id" validate:"required"`
	Name         string     `gorm:"size:255;not null" json:"name" validate:"required"`
	FormatKind   FormatKind `gorm:"size:20;not null" json:"format_kind" validate:"required"`
	EncodingHint string     `gorm:"size:40" json:"encoding_hint"`
	// SheetName selects the tabular target sheet; empty falls back to the first sheet.
	SheetName string `gorm:"size:255" json:"sheet_name"`
	// MarkerKey is the vertical-format record-boundary key.
	MarkerKey string `gorm:"size:255" json:"marker_key"`
	// RecordLength is the declared minimum line length for fixed-width profiles.
	RecordLength   int            `gorm:"default:0" json:"record_length"`
	LineTerminator string         `gorm:"size:4;default:null" json:"line_terminator"`
	IsActive       *bool          `gorm:"not null;default:true" json:"is_active"`
	Mappings       []FieldMapping `gorm:"foreignKey:ProfileId" json:"mappings"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// FieldMapping binds one internal CaseRecord field to its source location.
// Fixed-width profiles use Offset/Length; tabular and vertical profiles use
// ColumnAliases (ordered, pipe-separated). Composite/DateParts mappings list
// their physical source keys in ColumnAliases with SourceKey set to the
// "computed" convention.
type FieldMapping struct {
	ID        int    `gorm:"primary_key" json:"id"`
	ProfileId int    `gorm:"index;not null" json:"profile_id"`
	FieldName string `gorm:"size:80;not null" json:"field_name" validate:"required"`
	Offset    int    `gorm:"default:0" json:"offset" validate:"gte=0"`
	Length    int    `gorm:"default:0" json:"length" validate:"gte=0"`
	// ColumnAliases is an ordered, pipe-separated alias list ("N° dossier|Dossier").
	ColumnAliases string        `gorm:"size:512" json:"column_aliases"`
	SourceKey     string        `gorm:"size:80" json:"source_key"`
	Transform     TransformKind `gorm:"size:20;not null" json:"transform" validate:"required"`
	Required      *bool         `gorm:"not null;default:false" json:"required"`
	DefaultValue  string        `gorm:"size:255" json:"default_value"`
	CreatedAt     time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

// SourceKeyComputed marks a mapping assembled from several physical keys
// (vertical "computed" pseudo-source convention).
const SourceKeyComputed = "computed"

func (m *FieldMapping) Aliases() []string {
	if strings.TrimSpace(m.ColumnAliases) == "" {
		return nil
	}
	parts := strings.Split(m.ColumnAliases, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (m *FieldMapping) IsRequired() bool {
	return m.Required != nil && *m.Required
}

var validate = validator.New()

// Validate checks structural profile invariants at configuration-load time.
// Transform names and field names are checked by the decoder registry, which
// owns the closed transform and setter tables.
func (p *Profile) Validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}
	if !p.FormatKind.Valid() {
		return fmt.Errorf("profile %q: invalid format kind %q", p.Name, p.FormatKind)
	}
	seen := make(map[string]bool, len(p.Mappings))
	for i := range p.Mappings {
		m := &p.Mappings[i]
		if err := validate.Struct(m); err != nil {
			return err
		}
		if seen[m.FieldName] {
			return fmt.Errorf("profile %q: duplicate field mapping %q", p.Name, m.FieldName)
		}
		seen[m.FieldName] = true

		switch p.FormatKind {
		case FormatKindFixedWidth:
			if m.Length <= 0 {
				return fmt.Errorf("profile %q: field %q: fixed-width mapping needs a positive length", p.Name, m.FieldName)
			}
			if m.Offset+m.Length > p.RecordLength {
				return fmt.Errorf("profile %q: field %q: slice [%d,%d) exceeds record length %d",
					p.Name, m.FieldName, m.Offset, m.Offset+m.Length, p.RecordLength)
			}
		case FormatKindTabular, FormatKindVertical:
			if len(m.Aliases()) == 0 {
				return fmt.Errorf("profile %q: field %q: mapping needs at least one column alias", p.Name, m.FieldName)
			}
		}
	}
	if p.FormatKind == FormatKindVertical && strings.TrimSpace(p.MarkerKey) == "" {
		return fmt.Errorf("profile %q: vertical profile needs a record-boundary marker key", p.Name)
	}
	return nil
}

// ResolveProfile returns the active profile of the tenant for the given
// format kind, mappings preloaded. ErrProfileNotFound when none matches.
func ResolveProfile(ctx context.Context, tenantId string, formatKind FormatKind) (*Profile, error) {
	db := config.GetDB()
	var profile Profile
	err := db.WithContext(ctx).Preload("Mappings").
		Where("tenant_id = ? AND format_kind = ? AND is_active = true", tenantId, formatKind).
		First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// GetProfile fetches a profile by id within the tenant scope.
func GetProfile(ctx context.Context, tenantId string, id int) (*Profile, error) {
	db := config.GetDB()
	var profile Profile
	err := db.WithContext(ctx).Preload("Mappings").
		Where("tenant_id = ? AND id = ?", tenantId, id).
		First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// CreateProfile validates and stores a new profile with its mappings.
func CreateProfile(ctx context.Context, profile *Profile) (*Profile, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}
