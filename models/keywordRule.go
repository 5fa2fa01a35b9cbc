package models

import (
	"context"
	"fmt"
	"regexp"

	"bitbucket.org/sofidex/tracing_backend/config"
	"bitbucket.org/sofidex/tracing_backend/utils"
	"time"
)

// KeywordRule detects one request code inside a tenant's free-text
// "requested items" field. Rules are applied in descending priority; once a
// code is detected it is not re-detected by a lower-priority rule.
type KeywordRule struct {
	ID        int         `gorm:"primary_key" json:"id"`
	TenantId  string      `gorm:"index;not null" json:"tenant_id"`
	Code      RequestCode `gorm:"size:10;not null" json:"code"`
	Pattern   string      `gorm:"size:255;not null" json:"pattern"`
	IsRegex   *bool       `gorm:"not null;default:false" json:"is_regex"`
	Priority  int         `gorm:"not null;default:0" json:"priority"`
	IsActive  *bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time   `gorm:"autoUpdateTime" json:"updated_at"`

	// compiled holds the regex built by CompiledPattern; Validate fills it
	// at load so no pattern is compiled while a batch is running.
	// compiledFrom remembers which pattern text it was built from.
	compiled     *regexp.Regexp
	compiledFrom string
}

func (r *KeywordRule) UsesRegex() bool {
	return r.IsRegex != nil && *r.IsRegex
}

// CompiledPattern returns the rule's case-insensitive regex, compiling it at
// most once. The pattern is accent-folded the same way the scanned text is,
// so a pattern written with diacritics still matches the folded text.
func (r *KeywordRule) CompiledPattern() (*regexp.Regexp, error) {
	if !r.UsesRegex() {
		return nil, fmt.Errorf("keyword rule %d: not a regex rule", r.ID)
	}
	if r.compiled == nil || r.compiledFrom != r.Pattern {
		re, err := regexp.Compile("(?i)" + utils.FoldAccents(r.Pattern))
		if err != nil {
			return nil, fmt.Errorf("keyword rule %d: %v", r.ID, err)
		}
		r.compiled = re
		r.compiledFrom = r.Pattern
	}
	return r.compiled, nil
}

// Validate compiles regex rules so a broken pattern fails at configuration
// time, not while a batch is running.
func (r *KeywordRule) Validate() error {
	if !r.Code.Valid() {
		return fmt.Errorf("keyword rule %d: invalid request code %q", r.ID, r.Code)
	}
	if r.Pattern == "" {
		return fmt.Errorf("keyword rule %d: empty pattern", r.ID)
	}
	if r.UsesRegex() {
		if _, err := r.CompiledPattern(); err != nil {
			return err
		}
	}
	return nil
}

// GetKeywordRules returns the tenant's active rules ordered by descending
// priority (then id, for a stable order between equal priorities).
func GetKeywordRules(ctx context.Context, tenantId string) ([]KeywordRule, error) {
	db := config.GetDB()
	var rules []KeywordRule
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = true", tenantId).
		Order("priority DESC, id ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	for i := range rules {
		if err := rules[i].Validate(); err != nil {
			return nil, err
		}
	}
	return rules, nil
}
