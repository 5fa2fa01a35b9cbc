package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/sofidex/tracing_backend/config"
	"bitbucket.org/sofidex/tracing_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CaseRecord is one investigation dossier submitted by a tenant: the debtor's
// identity and last known coordinates as supplied, plus the investigator's
// updated findings and the billing outcome. Created at import time, mutated by
// investigator responses and contestation resolution; frozen once paid except
// for explicitly modeled reversal events.
type CaseRecord struct {
	ID            int    `gorm:"primary_key" json:"id"`
	TenantId      string `gorm:"index;not null" json:"tenant_id"`
	ProfileId     int    `gorm:"index;not null" json:"profile_id"`
	ImportBatchId string `gorm:"size:36;index" json:"import_batch_id"`
	SourceLineNo  int    `gorm:"default:0" json:"source_line_no"`

	// Identifiers
	CaseNumber      string      `gorm:"size:20;index" json:"case_number"`
	RequestNumber   string      `gorm:"size:20;index" json:"request_number"`
	TenantReference string      `gorm:"size:40" json:"tenant_reference"`
	TierLetter      string      `gorm:"size:1" json:"tier_letter"`
	RequestType     RequestType `gorm:"size:3" json:"request_type"`

	// Contestation
	IsContestation         *bool  `gorm:"not null;default:false" json:"is_contestation"`
	ContestedCaseNumber    string `gorm:"size:20" json:"contested_case_number"`
	ContestedRequestNumber string `gorm:"size:20" json:"contested_request_number"`
	MotifCode              string `gorm:"size:10" json:"motif_code"`
	MotifDetail            string `gorm:"size:255" json:"motif_detail"`

	// Debtor identity
	Surname         string     `gorm:"size:80;index" json:"surname"`
	GivenName       string     `gorm:"size:80" json:"given_name"`
	MaidenName      string     `gorm:"size:80" json:"maiden_name"`
	Gender          string     `gorm:"size:1" json:"gender"`
	BirthDate       *time.Time `json:"birth_date"`
	BirthPlace      string     `gorm:"size:80" json:"birth_place"`
	BirthDepartment string     `gorm:"size:3" json:"birth_department"`
	Nationality     string     `gorm:"size:40" json:"nationality"`

	// Last known address (as supplied by the tenant)
	AddressLine1 string `gorm:"size:80" json:"address_line1"`
	AddressLine2 string `gorm:"size:80" json:"address_line2"`
	AddressLine3 string `gorm:"size:80" json:"address_line3"`
	AddressLine4 string `gorm:"size:80" json:"address_line4"`
	PostalCode   string `gorm:"size:10" json:"postal_code"`
	City         string `gorm:"size:80" json:"city"`
	Country      string `gorm:"size:40" json:"country"`

	// Previous address
	PrevAddressLine1 string `gorm:"size:80" json:"prev_address_line1"`
	PrevAddressLine2 string `gorm:"size:80" json:"prev_address_line2"`
	PrevPostalCode   string `gorm:"size:10" json:"prev_postal_code"`
	PrevCity         string `gorm:"size:80" json:"prev_city"`

	// Contact
	Phone  string `gorm:"size:20" json:"phone"`
	Mobile string `gorm:"size:20" json:"mobile"`
	Email  string `gorm:"size:120" json:"email"`

	// Employer (as supplied)
	EmployerName         string `gorm:"size:120" json:"employer_name"`
	EmployerAddressLine1 string `gorm:"size:80" json:"employer_address_line1"`
	EmployerAddressLine2 string `gorm:"size:80" json:"employer_address_line2"`
	EmployerPostalCode   string `gorm:"size:10" json:"employer_postal_code"`
	EmployerCity         string `gorm:"size:80" json:"employer_city"`
	EmployerPhone        string `gorm:"size:20" json:"employer_phone"`
	Profession           string `gorm:"size:80" json:"profession"`

	// Bank (as supplied)
	BankName         string `gorm:"size:120" json:"bank_name"`
	BankCode         string `gorm:"size:10" json:"bank_code"`
	BranchCode       string `gorm:"size:10" json:"branch_code"`
	AccountNumber    string `gorm:"size:34" json:"account_number"`
	BankAddressLine1 string `gorm:"size:80" json:"bank_address_line1"`
	BankPostalCode   string `gorm:"size:10" json:"bank_postal_code"`
	BankCity         string `gorm:"size:80" json:"bank_city"`

	// Debt amounts
	PrincipalAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"principal_amount"`
	InterestAmount  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"interest_amount"`
	FeesAmount      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"fees_amount"`
	TotalDue        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_due"`

	// Free text
	RequestedItems string `gorm:"type:text" json:"requested_items"`
	CommentText    string `gorm:"type:text" json:"comment_text"`
	MemoText       string `gorm:"type:text" json:"memo_text"`

	// Investigator findings
	FoundAddressLine1 string     `gorm:"size:80" json:"found_address_line1"`
	FoundAddressLine2 string     `gorm:"size:80" json:"found_address_line2"`
	FoundAddressLine3 string     `gorm:"size:80" json:"found_address_line3"`
	FoundPostalCode   string     `gorm:"size:10" json:"found_postal_code"`
	FoundCity         string     `gorm:"size:80" json:"found_city"`
	FoundPhone        string     `gorm:"size:20" json:"found_phone"`
	FoundEmployerName string     `gorm:"size:120" json:"found_employer_name"`
	FoundEmployerAdr1 string     `gorm:"size:80" json:"found_employer_adr1"`
	FoundEmployerAdr2 string     `gorm:"size:80" json:"found_employer_adr2"`
	FoundBankName     string     `gorm:"size:120" json:"found_bank_name"`
	FoundBankCode     string     `gorm:"size:10" json:"found_bank_code"`
	FoundBranchCode   string     `gorm:"size:10" json:"found_branch_code"`
	UpdatedBirthDate  *time.Time `json:"updated_birth_date"`
	UpdatedBirthPlace string     `gorm:"size:80" json:"updated_birth_place"`

	// Outcome
	ResultCode     ResultCode `gorm:"size:1;default:null" json:"result_code"`
	ResultDate     *time.Time `json:"result_date"`
	GlobalPositive *bool      `gorm:"default:null" json:"global_positive"`
	InvoiceNumber  string     `gorm:"size:20" json:"invoice_number"`

	// Linkage (set when a contestation is resolved to its original)
	OriginalCaseId *int `gorm:"index;default:null" json:"original_case_id"`
	LinkageScore   int  `gorm:"default:0" json:"linkage_score"`

	Status     CaseStatus `gorm:"size:12;not null;default:'Imported'" json:"status"`
	ExportedAt *time.Time `json:"exported_at"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *CaseRecord) IsContested() bool {
	return c.IsContestation != nil && *c.IsContestation
}

// GetCaseById fetches a case within the tenant scope.
func GetCaseById(ctx context.Context, tenantId string, id int) (*CaseRecord, error) {
	db := config.GetDB()
	var record CaseRecord
	err := db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantId, id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindCaseByCaseNumber returns the non-contestation case carrying the number,
// or nil when absent.
func FindCaseByCaseNumber(ctx context.Context, tx *gorm.DB, tenantId string, caseNumber string) (*CaseRecord, error) {
	if caseNumber == "" {
		return nil, nil
	}
	var record CaseRecord
	err := tx.WithContext(ctx).
		Where("tenant_id = ? AND case_number = ? AND is_contestation = false", tenantId, caseNumber).
		Order("id ASC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindCaseByRequestNumber returns the non-contestation case carrying the
// request number, or nil when absent.
func FindCaseByRequestNumber(ctx context.Context, tx *gorm.DB, tenantId string, requestNumber string) (*CaseRecord, error) {
	if requestNumber == "" {
		return nil, nil
	}
	var record CaseRecord
	err := tx.WithContext(ctx).
		Where("tenant_id = ? AND request_number = ? AND is_contestation = false", tenantId, requestNumber).
		Order("id ASC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindLinkageCandidates returns the tenant's non-contestation cases, the
// candidate pool for fuzzy contestation linkage. Kept as a full scan on
// purpose: scoring normalizes surnames in memory, so a SQL-side surname
// filter would silently change the matching semantics.
func FindLinkageCandidates(ctx context.Context, tx *gorm.DB, tenantId string) ([]CaseRecord, error) {
	var records []CaseRecord
	err := tx.WithContext(ctx).
		Where("tenant_id = ? AND is_contestation = false", tenantId).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// FindExportableCases returns the tenant's cases with a recorded result that
// have not yet been exported, oldest first so the wire file order is stable.
func FindExportableCases(ctx context.Context, tenantId string) ([]CaseRecord, error) {
	db := config.GetDB()
	var cases []CaseRecord
	if err := db.WithContext(ctx).
		Where("tenant_id = ? AND status = ? AND result_code <> ''", tenantId, CaseStatusImported).
		Order("id ASC").
		Find(&cases).Error; err != nil {
		return nil, err
	}
	return cases, nil
}

// MarkCaseExported stamps the case with the export time and flips its status.
func MarkCaseExported(ctx context.Context, tx *gorm.DB, caseId int, at time.Time) error {
	return tx.WithContext(ctx).Model(&CaseRecord{}).
		Where("id = ?", caseId).
		Updates(map[string]interface{}{
			"status":      CaseStatusExported,
			"exported_at": at,
		}).Error
}
