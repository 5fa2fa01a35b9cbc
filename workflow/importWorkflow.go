package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/sofidex/tracing_backend/appctx"
	"bitbucket.org/sofidex/tracing_backend/config"
	"bitbucket.org/sofidex/tracing_backend/decoder"
	"bitbucket.org/sofidex/tracing_backend/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// importCommitSize bounds one transaction: large client files commit in
// slices so a mid-file crash resumes from the batch's resume offset instead
// of replaying everything.
const importCommitSize = 100

type ImportOptions struct {
	FileName   string
	FormatKind models.FormatKind
	// ResumeBatchId resumes a previously interrupted batch from its
	// recorded offset instead of opening a new one.
	ResumeBatchId string
}

// ImportReport is what the operator sees after one import run.
type ImportReport struct {
	Batch  *models.ImportBatch
	Issues []*decoder.RecordIssue
}

// ImportFile runs the whole ingestion pipeline for one client file: decode
// per the tenant's profile, bind records, resolve contestation linkage,
// extract requests, and settle billing. Only a structural decode failure
// aborts the run; everything else is a per-record issue in the report.
func ImportFile(ctx context.Context, tenantId string, raw []byte, opts ImportOptions) (*ImportReport, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	reg, err := decoder.Resolve(ctx, tenantId, opts.FormatKind)
	if err != nil {
		return nil, err
	}

	decoded, err := decoder.Decode(raw, reg)
	if err != nil {
		config.LogError(logger, "workflow", "ImportFile", "structural decode failure", opts.FileName, err)
		return nil, err
	}
	if decoded.EncodingFallback {
		config.LogWarn(logger, "workflow", "ImportFile", "input is not valid UTF-8", opts.FileName, "decoded as windows-1252")
	}

	var batch *models.ImportBatch
	if opts.ResumeBatchId != "" {
		batch, err = models.GetImportBatch(ctx, tenantId, opts.ResumeBatchId)
		if err != nil {
			return nil, err
		}
		if err := validateResumeBatch(batch, opts.FileName, len(decoded.Records)); err != nil {
			return nil, err
		}
	} else {
		correlationId, _ := appctx.GetString(ctx, appctx.ContextKeyCorrelationId)
		batch = &models.ImportBatch{
			ID:             uuid.NewString(),
			TenantId:       tenantId,
			ProfileId:      reg.Profile.ID,
			SourceFileName: opts.FileName,
			CorrelationId:  correlationId,
			TotalRecords:   len(decoded.Records),
			StartedAt:      time.Now(),
		}
		if err := models.CreateImportBatch(ctx, batch); err != nil {
			return nil, err
		}
	}
	ctx = appctx.Set(ctx, appctx.ContextKeyBatchId, batch.ID)

	keywordRules, err := models.GetKeywordRules(ctx, tenantId)
	if err != nil {
		return nil, err
	}
	tariffRules, err := models.GetTariffRules(ctx, tenantId)
	if err != nil {
		return nil, err
	}

	report := &ImportReport{Batch: batch}
	report.Issues = append(report.Issues, decoded.Issues...)

	records := decoded.Records
	for offset := batch.ResumeOffset; offset < len(records); offset += importCommitSize {
		end := offset + importCommitSize
		if end > len(records) {
			end = len(records)
		}

		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for _, rec := range records[offset:end] {
				unresolved, issue, err := importOneRecord(ctx, tx, reg, rec, batch, keywordRules, tariffRules, report)
				if err != nil {
					return err
				}
				if issue != nil {
					report.Issues = append(report.Issues, issue)
					batch.SkippedRecords++
					continue
				}
				if unresolved {
					batch.UnresolvedLinks++
				}
				batch.ImportedRecords++
			}
			return nil
		})
		if err != nil {
			// record progress so the batch is resumable before bailing out
			batch.ResumeOffset = offset
			_ = models.UpdateImportBatch(ctx, batch)
			return report, err
		}

		batch.ResumeOffset = end
		if err := models.UpdateImportBatch(ctx, batch); err != nil {
			return report, err
		}
	}

	now := time.Now()
	batch.FinishedAt = &now
	if err := models.UpdateImportBatch(ctx, batch); err != nil {
		return report, err
	}
	return report, nil
}

// validateResumeBatch guards a resume against a different file: the record
// count and file name of the re-decoded input must match what the batch was
// opened for, otherwise the stored offset points into the wrong file.
func validateResumeBatch(batch *models.ImportBatch, fileName string, totalRecords int) error {
	if batch.FinishedAt != nil {
		return fmt.Errorf("batch %s is already finished", batch.ID)
	}
	if batch.TotalRecords != totalRecords {
		return fmt.Errorf("batch %s was opened for %d records, this file decodes to %d",
			batch.ID, batch.TotalRecords, totalRecords)
	}
	if batch.SourceFileName != "" && fileName != "" && batch.SourceFileName != fileName {
		return fmt.Errorf("batch %s was opened for file %q, not %q",
			batch.ID, batch.SourceFileName, fileName)
	}
	return nil
}

// importOneRecord runs one record inside its own savepoint: a skipped record
// must leave no partial rows behind in the surrounding batch transaction, or
// a half-written case would sit exportable with no request items or billing.
func importOneRecord(ctx context.Context, tx *gorm.DB, reg *decoder.Registry, rec *decoder.Record, batch *models.ImportBatch, keywordRules []models.KeywordRule, tariffRules []models.TariffRule, report *ImportReport) (unresolved bool, issue *decoder.RecordIssue, err error) {
	txErr := tx.Transaction(func(recTx *gorm.DB) error {
		unresolved, issue = importRecord(ctx, recTx, reg, rec, batch.ID, keywordRules, tariffRules, report)
		if issue != nil {
			return issue
		}
		return nil
	})
	if txErr != nil {
		var ri *decoder.RecordIssue
		if errors.As(txErr, &ri) {
			return false, ri, nil
		}
		return false, nil, txErr
	}
	return unresolved, issue, nil
}

// importRecord persists one decoded record and runs its downstream steps.
// A non-nil issue means the record must be skipped (and its writes rolled
// back by the caller); errors that should not skip the record (unresolved
// linkage, unresolved tariff) are logged and reported instead.
func importRecord(ctx context.Context, tx *gorm.DB, reg *decoder.Registry, rec *decoder.Record, batchId string, keywordRules []models.KeywordRule, tariffRules []models.TariffRule, report *ImportReport) (bool, *decoder.RecordIssue) {
	logger := config.GetLogger()
	unresolved := false

	bound, issue := reg.Bind(rec)
	if issue != nil {
		return false, issue
	}
	bound.ImportBatchId = batchId

	if err := tx.WithContext(ctx).Create(bound).Error; err != nil {
		return false, &decoder.RecordIssue{Line: rec.LineNo, Reason: "persist failed: " + err.Error()}
	}

	if bound.IsContested() {
		original, score, err := ResolveOriginal(ctx, tx, bound)
		if err != nil {
			return false, &decoder.RecordIssue{Line: rec.LineNo, Reason: "linkage lookup failed: " + err.Error()}
		}
		if original == nil {
			// imported anyway; the operator resolves the link by hand
			unresolved = true
			config.LogWarn(logger, "workflow", "importRecord", "contestation original not found", bound.CaseNumber, "linkage unresolved")
		} else {
			bound.OriginalCaseId = &original.ID
			bound.LinkageScore = score
			link := &models.ContestationLink{
				TenantId:       bound.TenantId,
				CaseId:         bound.ID,
				OriginalCaseId: original.ID,
				MotifCode:      bound.MotifCode,
				MotifDetail:    bound.MotifDetail,
				LinkedAt:       time.Now(),
			}
			if err := models.UpsertContestationLink(ctx, tx, link); err != nil {
				return false, &decoder.RecordIssue{Line: rec.LineNo, Reason: "linkage persist failed: " + err.Error()}
			}
		}
	}

	items, globalPositive := BuildRequestItems(bound, keywordRules)
	if err := models.ReplaceRequestItems(ctx, tx, bound.ID, items); err != nil {
		return false, &decoder.RecordIssue{Line: rec.LineNo, Reason: "request items persist failed: " + err.Error()}
	}
	if bound.ResultCode != "" {
		bound.GlobalPositive = &globalPositive
	}

	if err := tx.WithContext(ctx).Save(bound).Error; err != nil {
		return false, &decoder.RecordIssue{Line: rec.LineNo, Reason: "persist failed: " + err.Error()}
	}

	// Billing only once a result has been recorded; freshly assigned cases
	// have nothing to settle yet.
	if bound.ResultCode == "" {
		return unresolved, nil
	}
	var billErr error
	if bound.IsContested() && bound.OriginalCaseId != nil {
		_, billErr = ApplyContestationBilling(ctx, tx, bound, items, tariffRules, time.Now())
	} else if !bound.IsContested() {
		_, billErr = ApplyStandardBilling(ctx, tx, bound, items, tariffRules)
	}
	if billErr != nil {
		if errors.Is(billErr, ErrTariffUnresolved) {
			// the record stays imported; billing needs an operator decision
			report.Issues = append(report.Issues, &decoder.RecordIssue{
				Line:   rec.LineNo,
				Reason: "tariff unresolved for tier " + bound.TierLetter,
			})
			config.LogWarn(logger, "workflow", "importRecord", "tariff unresolved", bound.CaseNumber, billErr.Error())
			return unresolved, nil
		}
		return false, &decoder.RecordIssue{Line: rec.LineNo, Reason: "billing failed: " + billErr.Error()}
	}
	return unresolved, nil
}
