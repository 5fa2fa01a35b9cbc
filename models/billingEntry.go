package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/sofidex/tracing_backend/config"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BillingEntry is the computed invoice for a case.
//
// Invariant: FinalAmount == AppliedAmount + PriorAmountReversal +
// ReinstatementAmount + Discount. A reversal entry is the negative mirror of a
// previously applied entry and sums to zero with it. Once Paid, the entry is
// frozen: recomputation is a logged no-op.
type BillingEntry struct {
	ID                  int             `gorm:"primary_key" json:"id"`
	TenantId            string          `gorm:"index;not null" json:"tenant_id"`
	CaseId              int             `gorm:"index;not null" json:"case_id"`
	AppliedAmount       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"applied_amount"`
	PriorAmountReversal decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"prior_amount_reversal"`
	ReinstatementAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"reinstatement_amount"`
	Discount            decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount"`
	FinalAmount         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"final_amount"`
	IsReversal          *bool           `gorm:"not null;default:false" json:"is_reversal"`
	ReversesEntryId     *int            `gorm:"default:null" json:"reverses_entry_id"`
	ReversalReason      string          `gorm:"size:255" json:"reversal_reason"`
	Paid                *bool           `gorm:"not null;default:false" json:"paid"`
	PaidAt              *time.Time      `json:"paid_at"`
	// Version supports optimistic concurrency on recomputation.
	Version   int       `gorm:"not null;default:0" json:"version"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (e *BillingEntry) IsPaid() bool {
	return e.Paid != nil && *e.Paid
}

// CheckConsistency verifies the component-sum invariant.
func (e *BillingEntry) CheckConsistency() error {
	sum := e.AppliedAmount.Add(e.PriorAmountReversal).Add(e.ReinstatementAmount).Add(e.Discount)
	if !sum.Equal(e.FinalAmount) {
		return errors.New("billing entry components do not sum to final amount")
	}
	return nil
}

// GetBillingEntry returns the case's primary (non-reversal) entry, or nil.
func GetBillingEntry(ctx context.Context, tx *gorm.DB, caseId int) (*BillingEntry, error) {
	var entry BillingEntry
	err := tx.WithContext(ctx).
		Where("case_id = ? AND is_reversal = false", caseId).
		Order("id ASC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// SaveBillingEntry writes an entry with an optimistic version check; a
// concurrent writer surfaces as ErrBillingConflict for retry.
var ErrBillingConflict = errors.New("billing entry modified concurrently")

func SaveBillingEntry(ctx context.Context, tx *gorm.DB, entry *BillingEntry) error {
	if err := entry.CheckConsistency(); err != nil {
		return err
	}
	if entry.ID == 0 {
		entry.Version = 1
		return tx.WithContext(ctx).Create(entry).Error
	}
	res := tx.WithContext(ctx).Model(&BillingEntry{}).
		Where("id = ? AND version = ?", entry.ID, entry.Version).
		Updates(map[string]interface{}{
			"applied_amount":        entry.AppliedAmount,
			"prior_amount_reversal": entry.PriorAmountReversal,
			"reinstatement_amount":  entry.ReinstatementAmount,
			"discount":              entry.Discount,
			"final_amount":          entry.FinalAmount,
			"version":               entry.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrBillingConflict
	}
	entry.Version++
	return nil
}

// MarkBillingEntryPaid freezes the entry. Serialized per case by the caller
// (utils.CaseLock) against concurrent contestation reversals.
func MarkBillingEntryPaid(ctx context.Context, tenantId string, entryId int) error {
	db := config.GetDB()
	now := time.Now().UTC()
	res := db.WithContext(ctx).Model(&BillingEntry{}).
		Where("tenant_id = ? AND id = ? AND paid = false", tenantId, entryId).
		Updates(map[string]interface{}{"paid": true, "paid_at": &now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.New("billing entry not found or already paid")
	}
	return nil
}
