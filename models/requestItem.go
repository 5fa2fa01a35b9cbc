package models

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// RequestItem is one information category a tenant asked to have found on a
// case, with the investigator's verdict. Unique per (case_id, code).
type RequestItem struct {
	ID        int           `gorm:"primary_key" json:"id"`
	TenantId  string        `gorm:"index;not null" json:"tenant_id"`
	CaseId    int           `gorm:"uniqueIndex:idx_case_code;not null" json:"case_id"`
	Code      RequestCode   `gorm:"size:10;uniqueIndex:idx_case_code;not null" json:"code"`
	Requested bool          `gorm:"not null;default:true" json:"requested"`
	Found     bool          `gorm:"not null;default:false" json:"found"`
	Status    RequestStatus `gorm:"size:3;not null;default:'NEG'" json:"status"`
	Memo      string        `gorm:"size:255" json:"memo"`
	CreatedAt time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

// ReplaceRequestItems swaps the full request-item set of a case. Items are
// recomputed wholesale on every result change, so replace beats row-wise diff.
func ReplaceRequestItems(ctx context.Context, tx *gorm.DB, caseId int, items []RequestItem) error {
	if err := tx.WithContext(ctx).Where("case_id = ?", caseId).Delete(&RequestItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(&items).Error
}

// GetRequestItems returns the request items of a case.
func GetRequestItems(ctx context.Context, tx *gorm.DB, caseId int) ([]RequestItem, error) {
	var items []RequestItem
	if err := tx.WithContext(ctx).Where("case_id = ?", caseId).Order("code ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
