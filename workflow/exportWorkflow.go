package workflow

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"bitbucket.org/sofidex/tracing_backend/config"
	"bitbucket.org/sofidex/tracing_backend/encoder"
	"bitbucket.org/sofidex/tracing_backend/models"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportReport is the outcome of one export run: the wire file bytes, an
// xlsx control report for the back office, and what was skipped.
type ExportReport struct {
	WireData      []byte
	ControlReport []byte
	ExportedCases int
	SkippedCases  int
}

// ExportRun encodes every exportable case of the tenant into the partner's
// fixed-width wire format. A case that cannot be encoded (missing required
// field) is skipped and left unexported; it never produces a malformed line.
func ExportRun(ctx context.Context, tenantId string) (*ExportReport, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	profile, err := models.ResolveProfile(ctx, tenantId, models.FormatKindFixedWidth)
	if err != nil {
		return nil, err
	}
	exp, err := encoder.NewExporter(profile)
	if err != nil {
		return nil, err
	}

	cases, err := models.FindExportableCases(ctx, tenantId)
	if err != nil {
		return nil, err
	}

	report := &ExportReport{}
	var wire bytes.Buffer
	var exported []models.CaseRecord
	now := time.Now()

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range cases {
			c := &cases[i]
			line, err := exp.Encode(c)
			if err != nil {
				report.SkippedCases++
				config.LogWarn(logger, "workflow", "ExportRun", "case not exportable", c.CaseNumber, err.Error())
				continue
			}
			wire.Write(line)
			if err := models.MarkCaseExported(ctx, tx, c.ID, now); err != nil {
				return err
			}
			exported = append(exported, *c)
			report.ExportedCases++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	report.WireData = wire.Bytes()
	report.ControlReport, err = buildControlReport(ctx, exported, now)
	if err != nil {
		return nil, err
	}
	return report, nil
}

var controlReportHeader = []interface{}{
	"Case number", "Request number", "Surname", "Given name",
	"Result", "Result date", "Invoice number", "Billed amount", "Exported at",
}

// buildControlReport renders the back-office xlsx companion of the wire file.
func buildControlReport(ctx context.Context, cases []models.CaseRecord, at time.Time) ([]byte, error) {
	db := config.GetDB()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetRow(sheet, "A1", &controlReportHeader); err != nil {
		return nil, err
	}

	for i := range cases {
		c := &cases[i]
		billed := ""
		entry, err := models.GetBillingEntry(ctx, db, c.ID)
		if err != nil {
			return nil, err
		}
		if entry != nil {
			billed = entry.FinalAmount.StringFixed(2)
		}
		resultDate := ""
		if c.ResultDate != nil {
			resultDate = c.ResultDate.Format("02/01/2006")
		}
		row := []interface{}{
			c.CaseNumber, c.RequestNumber, c.Surname, c.GivenName,
			string(c.ResultCode), resultDate, c.InvoiceNumber, billed,
			at.Format("02/01/2006 15:04"),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("control report: %w", err)
	}
	return buf.Bytes(), nil
}
