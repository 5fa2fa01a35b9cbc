package workflow

import (
	"context"
	"testing"
	"time"

	"bitbucket.org/sofidex/tracing_backend/decoder"
	"bitbucket.org/sofidex/tracing_backend/models"
	"bitbucket.org/sofidex/tracing_backend/utils"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// newImportTestDB opens an in-memory database migrated with exactly the
// given entities, so persistence failures can be staged by leaving a table
// out.
func newImportTestDB(t *testing.T, entities ...interface{}) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	// a single connection keeps every session on the same in-memory database
	sqlDB.SetMaxOpenConns(1)
	if len(entities) > 0 {
		if err := db.AutoMigrate(entities...); err != nil {
			t.Fatalf("migrate: %v", err)
		}
	}
	return db
}

func importTestRegistry(t *testing.T) *decoder.Registry {
	t.Helper()
	profile := &models.Profile{
		TenantId:     "tenant-1",
		Name:         "partner fixed-width",
		FormatKind:   models.FormatKindFixedWidth,
		RecordLength: 10,
		Mappings: []models.FieldMapping{
			{FieldName: "case_number", Offset: 0, Length: 10, Transform: models.TransformTrim, Required: utils.NewTrue()},
		},
	}
	reg, err := decoder.NewRegistry(profile)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

// A record skipped after its case row was created must leave nothing behind:
// the half-written case would otherwise sit exportable with no request items
// or billing. Here the request-items table is missing, so the persistence
// step fails after the case insert, and the record's savepoint must roll the
// insert back while the surrounding batch transaction commits.
func TestImportOneRecordRollsBackSkippedRecord(t *testing.T) {
	db := newImportTestDB(t, &models.CaseRecord{})
	reg := importTestRegistry(t)

	rec := decoder.NewRecord(1)
	rec.Set("case_number", "0000123456")
	batch := &models.ImportBatch{ID: "batch-1", TenantId: "tenant-1", StartedAt: time.Now()}
	report := &ImportReport{Batch: batch}

	ctx := context.Background()
	err := db.Transaction(func(tx *gorm.DB) error {
		unresolved, issue, err := importOneRecord(ctx, tx, reg, rec, batch, keywordRules(), nil, report)
		if err != nil {
			t.Fatalf("importOneRecord: %v", err)
		}
		if issue == nil {
			t.Fatal("expected a record issue from the failed persistence step")
		}
		if unresolved {
			t.Fatal("rolled-back record reported an unresolved link")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("batch transaction: %v", err)
	}

	var count int64
	if err := db.Model(&models.CaseRecord{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("case rows after skip = %d, want 0", count)
	}
}

// The savepoint must be invisible for a clean record: it commits with the
// surrounding batch transaction.
func TestImportOneRecordPersistsCleanRecord(t *testing.T) {
	db := newImportTestDB(t, &models.CaseRecord{}, &models.RequestItem{})
	reg := importTestRegistry(t)

	rec := decoder.NewRecord(1)
	rec.Set("case_number", "0000123456")
	batch := &models.ImportBatch{ID: "batch-1", TenantId: "tenant-1", StartedAt: time.Now()}
	report := &ImportReport{Batch: batch}

	ctx := context.Background()
	err := db.Transaction(func(tx *gorm.DB) error {
		_, issue, err := importOneRecord(ctx, tx, reg, rec, batch, keywordRules(), nil, report)
		if err != nil {
			t.Fatalf("importOneRecord: %v", err)
		}
		if issue != nil {
			t.Fatalf("unexpected issue: %v", issue)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("batch transaction: %v", err)
	}

	var saved models.CaseRecord
	if err := db.Where("case_number = ?", "0000123456").First(&saved).Error; err != nil {
		t.Fatalf("reload case: %v", err)
	}
	if saved.ImportBatchId != "batch-1" {
		t.Fatalf("import_batch_id = %q, want batch-1", saved.ImportBatchId)
	}
}

func TestValidateResumeBatch(t *testing.T) {
	finished := time.Now()
	cases := []struct {
		name    string
		batch   models.ImportBatch
		file    string
		total   int
		wantErr bool
	}{
		{
			name:  "matching file resumes",
			batch: models.ImportBatch{ID: "b1", SourceFileName: "retour.txt", TotalRecords: 250},
			file:  "retour.txt", total: 250,
		},
		{
			name:    "record count mismatch",
			batch:   models.ImportBatch{ID: "b1", SourceFileName: "retour.txt", TotalRecords: 250},
			file:    "retour.txt", total: 240,
			wantErr: true,
		},
		{
			name:    "file name mismatch",
			batch:   models.ImportBatch{ID: "b1", SourceFileName: "retour.txt", TotalRecords: 250},
			file:    "autre.txt", total: 250,
			wantErr: true,
		},
		{
			name:    "finished batch cannot resume",
			batch:   models.ImportBatch{ID: "b1", SourceFileName: "retour.txt", TotalRecords: 250, FinishedAt: &finished},
			file:    "retour.txt", total: 250,
			wantErr: true,
		},
		{
			name:  "unknown stored file name only checks the count",
			batch: models.ImportBatch{ID: "b1", TotalRecords: 250},
			file:  "retour.txt", total: 250,
		},
	}
	for _, c := range cases {
		err := validateResumeBatch(&c.batch, c.file, c.total)
		if c.wantErr && err == nil {
			t.Fatalf("%s: expected an error", c.name)
		}
		if !c.wantErr && err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
	}
}
