package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/sofidex/tracing_backend/config"
	"gorm.io/gorm"
)

// ContestationLink ties a contestation case back to the original case it
// disputes. A case has at most one outgoing link; both cases belong to the
// same tenant.
type ContestationLink struct {
	ID             int       `gorm:"primary_key" json:"id"`
	TenantId       string    `gorm:"index;not null" json:"tenant_id"`
	CaseId         int       `gorm:"uniqueIndex;not null" json:"case_id"`
	OriginalCaseId int       `gorm:"index;not null" json:"original_case_id"`
	MotifCode      string    `gorm:"size:10" json:"motif_code"`
	MotifDetail    string    `gorm:"size:255" json:"motif_detail"`
	LinkedAt       time.Time `gorm:"not null" json:"linked_at"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UpsertContestationLink records the resolved link, replacing a previous one
// for the same contestation if re-resolution happened.
func UpsertContestationLink(ctx context.Context, tx *gorm.DB, link *ContestationLink) error {
	var existing ContestationLink
	err := tx.WithContext(ctx).Where("case_id = ?", link.CaseId).First(&existing).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.WithContext(ctx).Create(link).Error
	}
	return tx.WithContext(ctx).Model(&existing).Updates(map[string]interface{}{
		"original_case_id": link.OriginalCaseId,
		"motif_code":       link.MotifCode,
		"motif_detail":     link.MotifDetail,
		"linked_at":        link.LinkedAt,
	}).Error
}

// GetContestationLink returns the outgoing link of a case, or nil.
func GetContestationLink(ctx context.Context, tenantId string, caseId int) (*ContestationLink, error) {
	db := config.GetDB()
	var link ContestationLink
	err := db.WithContext(ctx).Where("tenant_id = ? AND case_id = ?", tenantId, caseId).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}
