package models

import (
	"context"
	"time"

	"bitbucket.org/sofidex/tracing_backend/config"
)

// ImportBatch is the end-of-batch report of one import job.
type ImportBatch struct {
	ID              string     `gorm:"primary_key;size:36" json:"id"`
	TenantId        string     `gorm:"index;not null" json:"tenant_id"`
	ProfileId       int        `gorm:"not null" json:"profile_id"`
	SourceFileName  string     `gorm:"size:255" json:"source_file_name"`
	CorrelationId   string     `gorm:"size:36" json:"correlation_id"`
	TotalRecords    int        `gorm:"default:0" json:"total_records"`
	ImportedRecords int        `gorm:"default:0" json:"imported_records"`
	SkippedRecords  int        `gorm:"default:0" json:"skipped_records"`
	UnresolvedLinks int        `gorm:"default:0" json:"unresolved_links"`
	ResumeOffset    int        `gorm:"default:0" json:"resume_offset"`
	StartedAt       time.Time  `gorm:"not null" json:"started_at"`
	FinishedAt      *time.Time `json:"finished_at"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func CreateImportBatch(ctx context.Context, batch *ImportBatch) error {
	db := config.GetDB()
	return db.WithContext(ctx).Create(batch).Error
}

func UpdateImportBatch(ctx context.Context, batch *ImportBatch) error {
	db := config.GetDB()
	return db.WithContext(ctx).Model(&ImportBatch{}).
		Where("id = ?", batch.ID).
		Updates(map[string]interface{}{
			"total_records":    batch.TotalRecords,
			"imported_records": batch.ImportedRecords,
			"skipped_records":  batch.SkippedRecords,
			"unresolved_links": batch.UnresolvedLinks,
			"resume_offset":    batch.ResumeOffset,
			"finished_at":      batch.FinishedAt,
		}).Error
}

func GetImportBatch(ctx context.Context, tenantId string, id string) (*ImportBatch, error) {
	db := config.GetDB()
	var batch ImportBatch
	if err := db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantId, id).
		First(&batch).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}
