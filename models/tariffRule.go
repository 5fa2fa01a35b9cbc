package models

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"bitbucket.org/sofidex/tracing_backend/config"
	"bitbucket.org/sofidex/tracing_backend/utils"
	"github.com/shopspring/decimal"
)

// TariffRule prices a (tier letter, canonical sorted code set) combination
// for a tenant. A rule whose CodeSet holds a single code doubles as the
// per-code unit rule used by the fallback sum.
type TariffRule struct {
	ID         int    `gorm:"primary_key" json:"id"`
	TenantId   string `gorm:"uniqueIndex:idx_tenant_tier_set;not null" json:"tenant_id"`
	TierLetter string `gorm:"size:1;uniqueIndex:idx_tenant_tier_set;not null" json:"tier_letter"`
	// CodeSet is the canonical sorted, '+'-joined request-code set
	// ("ADDRESS+PHONE").
	CodeSet   string          `gorm:"size:60;uniqueIndex:idx_tenant_tier_set;not null" json:"code_set"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	IsActive  *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// CanonicalCodeSet renders a set of request codes as the sorted lookup key.
func CanonicalCodeSet(codes []RequestCode) string {
	if len(codes) == 0 {
		return ""
	}
	parts := make([]string, 0, len(codes))
	for _, c := range codes {
		parts = append(parts, string(c))
	}
	parts = utils.UniqueSlice(parts)
	sort.Strings(parts)
	return strings.Join(parts, "+")
}

const tariffCacheLifespan = time.Hour

func tariffCacheKey(tenantId string) string {
	return "tariffRules:" + tenantId
}

// GetTariffRules returns the tenant's active tariff rules, redis-cached.
func GetTariffRules(ctx context.Context, tenantId string) ([]TariffRule, error) {
	var rules []TariffRule

	key := tariffCacheKey(tenantId)
	exists, err := config.GetRedisObject(key, &rules)
	if err != nil {
		return nil, err
	}
	if exists {
		return rules, nil
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = true", tenantId).
		Order("tier_letter ASC, code_set ASC").
		Find(&rules).Error; err != nil {
		return nil, err
	}
	if err := config.SetRedisObject(key, &rules, tariffCacheLifespan); err != nil {
		return nil, err
	}
	return rules, nil
}

// CreateTariffRule stores a rule and drops the tenant's cache entry.
func CreateTariffRule(ctx context.Context, rule *TariffRule) (*TariffRule, error) {
	if rule.CodeSet == "" {
		return nil, fmt.Errorf("tariff rule: empty code set")
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(rule).Error; err != nil {
		return nil, err
	}
	if err := config.RemoveRedisKey(tariffCacheKey(rule.TenantId)); err != nil {
		return nil, err
	}
	return rule, nil
}
