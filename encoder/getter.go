package encoder

import (
	"fmt"
	"strings"
	"time"

	"bitbucket.org/sofidex/tracing_backend/models"
	"github.com/shopspring/decimal"
)

// getterFunc renders one case field for the wire. The declared slot length is
// passed so numeric fields can zero-pad to their exact width.
type getterFunc func(c *models.CaseRecord, length int) string

const wireDateLayout = "02/01/2006"

func getString(read func(c *models.CaseRecord) string) getterFunc {
	return func(c *models.CaseRecord, _ int) string {
		return read(c)
	}
}

func getDate(read func(c *models.CaseRecord) *time.Time) getterFunc {
	return func(c *models.CaseRecord, _ int) string {
		t := read(c)
		if t == nil {
			return ""
		}
		return t.Format(wireDateLayout)
	}
}

func getAmount(read func(c *models.CaseRecord) decimal.Decimal) getterFunc {
	return func(c *models.CaseRecord, length int) string {
		return FormatAmount(read(c), length)
	}
}

// FormatAmount renders a decimal-comma numeric string zero-padded to the
// declared width: 123.4 in an 8-char slot is "00123,40".
func FormatAmount(d decimal.Decimal, width int) string {
	s := strings.Replace(d.StringFixed(2), ".", ",", 1)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	pad := width
	if neg {
		pad--
	}
	for len(s) < pad {
		s = "0" + s
	}
	if neg {
		s = "-" + s
	}
	return s
}

// getterTable mirrors the decoder's setter table for the fields present in
// the export contract.
var getterTable = map[string]getterFunc{
	"case_number":              getString(func(c *models.CaseRecord) string { return c.CaseNumber }),
	"request_number":           getString(func(c *models.CaseRecord) string { return c.RequestNumber }),
	"tenant_reference":         getString(func(c *models.CaseRecord) string { return c.TenantReference }),
	"tier_letter":              getString(func(c *models.CaseRecord) string { return c.TierLetter }),
	"request_type":             getString(func(c *models.CaseRecord) string { return string(c.RequestType) }),
	"contested_case_number":    getString(func(c *models.CaseRecord) string { return c.ContestedCaseNumber }),
	"contested_request_number": getString(func(c *models.CaseRecord) string { return c.ContestedRequestNumber }),
	"motif_code":               getString(func(c *models.CaseRecord) string { return c.MotifCode }),
	"motif_detail":             getString(func(c *models.CaseRecord) string { return c.MotifDetail }),

	"surname":          getString(func(c *models.CaseRecord) string { return c.Surname }),
	"given_name":       getString(func(c *models.CaseRecord) string { return c.GivenName }),
	"maiden_name":      getString(func(c *models.CaseRecord) string { return c.MaidenName }),
	"gender":           getString(func(c *models.CaseRecord) string { return c.Gender }),
	"birth_place":      getString(func(c *models.CaseRecord) string { return c.BirthPlace }),
	"birth_department": getString(func(c *models.CaseRecord) string { return c.BirthDepartment }),
	"nationality":      getString(func(c *models.CaseRecord) string { return c.Nationality }),

	"address_line1": getString(func(c *models.CaseRecord) string { return c.AddressLine1 }),
	"address_line2": getString(func(c *models.CaseRecord) string { return c.AddressLine2 }),
	"address_line3": getString(func(c *models.CaseRecord) string { return c.AddressLine3 }),
	"address_line4": getString(func(c *models.CaseRecord) string { return c.AddressLine4 }),
	"postal_code":   getString(func(c *models.CaseRecord) string { return c.PostalCode }),
	"city":          getString(func(c *models.CaseRecord) string { return c.City }),
	"country":       getString(func(c *models.CaseRecord) string { return c.Country }),

	"prev_address_line1": getString(func(c *models.CaseRecord) string { return c.PrevAddressLine1 }),
	"prev_address_line2": getString(func(c *models.CaseRecord) string { return c.PrevAddressLine2 }),
	"prev_postal_code":   getString(func(c *models.CaseRecord) string { return c.PrevPostalCode }),
	"prev_city":          getString(func(c *models.CaseRecord) string { return c.PrevCity }),

	"phone":  getString(func(c *models.CaseRecord) string { return c.Phone }),
	"mobile": getString(func(c *models.CaseRecord) string { return c.Mobile }),
	"email":  getString(func(c *models.CaseRecord) string { return c.Email }),

	"employer_name":          getString(func(c *models.CaseRecord) string { return c.EmployerName }),
	"employer_address_line1": getString(func(c *models.CaseRecord) string { return c.EmployerAddressLine1 }),
	"employer_address_line2": getString(func(c *models.CaseRecord) string { return c.EmployerAddressLine2 }),
	"employer_postal_code":   getString(func(c *models.CaseRecord) string { return c.EmployerPostalCode }),
	"employer_city":          getString(func(c *models.CaseRecord) string { return c.EmployerCity }),
	"employer_phone":         getString(func(c *models.CaseRecord) string { return c.EmployerPhone }),
	"profession":             getString(func(c *models.CaseRecord) string { return c.Profession }),

	"bank_name":          getString(func(c *models.CaseRecord) string { return c.BankName }),
	"bank_code":          getString(func(c *models.CaseRecord) string { return c.BankCode }),
	"branch_code":        getString(func(c *models.CaseRecord) string { return c.BranchCode }),
	"account_number":     getString(func(c *models.CaseRecord) string { return c.AccountNumber }),
	"bank_address_line1": getString(func(c *models.CaseRecord) string { return c.BankAddressLine1 }),
	"bank_postal_code":   getString(func(c *models.CaseRecord) string { return c.BankPostalCode }),
	"bank_city":          getString(func(c *models.CaseRecord) string { return c.BankCity }),

	"requested_items": getString(func(c *models.CaseRecord) string { return c.RequestedItems }),
	"comment_text":    getString(func(c *models.CaseRecord) string { return c.CommentText }),
	"memo_text":       getString(func(c *models.CaseRecord) string { return c.MemoText }),

	"found_address_line1": getString(func(c *models.CaseRecord) string { return c.FoundAddressLine1 }),
	"found_address_line2": getString(func(c *models.CaseRecord) string { return c.FoundAddressLine2 }),
	"found_address_line3": getString(func(c *models.CaseRecord) string { return c.FoundAddressLine3 }),
	"found_postal_code":   getString(func(c *models.CaseRecord) string { return c.FoundPostalCode }),
	"found_city":          getString(func(c *models.CaseRecord) string { return c.FoundCity }),
	"found_phone":         getString(func(c *models.CaseRecord) string { return c.FoundPhone }),
	"found_employer_name": getString(func(c *models.CaseRecord) string { return c.FoundEmployerName }),
	"found_employer_adr1": getString(func(c *models.CaseRecord) string { return c.FoundEmployerAdr1 }),
	"found_employer_adr2": getString(func(c *models.CaseRecord) string { return c.FoundEmployerAdr2 }),
	"found_bank_name":     getString(func(c *models.CaseRecord) string { return c.FoundBankName }),
	"found_bank_code":     getString(func(c *models.CaseRecord) string { return c.FoundBankCode }),
	"found_branch_code":   getString(func(c *models.CaseRecord) string { return c.FoundBranchCode }),
	"updated_birth_place": getString(func(c *models.CaseRecord) string { return c.UpdatedBirthPlace }),

	"result_code":    getString(func(c *models.CaseRecord) string { return string(c.ResultCode) }),
	"invoice_number": getString(func(c *models.CaseRecord) string { return c.InvoiceNumber }),

	"birth_date":         getDate(func(c *models.CaseRecord) *time.Time { return c.BirthDate }),
	"updated_birth_date": getDate(func(c *models.CaseRecord) *time.Time { return c.UpdatedBirthDate }),
	"result_date":        getDate(func(c *models.CaseRecord) *time.Time { return c.ResultDate }),

	"principal_amount": getAmount(func(c *models.CaseRecord) decimal.Decimal { return c.PrincipalAmount }),
	"interest_amount":  getAmount(func(c *models.CaseRecord) decimal.Decimal { return c.InterestAmount }),
	"fees_amount":      getAmount(func(c *models.CaseRecord) decimal.Decimal { return c.FeesAmount }),
	"total_due":        getAmount(func(c *models.CaseRecord) decimal.Decimal { return c.TotalDue }),
}

// LookupGetter resolves an export field name at configuration-load time.
func LookupGetter(fieldName string) (getterFunc, error) {
	fn, ok := getterTable[fieldName]
	if !ok {
		return nil, fmt.Errorf("unknown export field %q", fieldName)
	}
	return fn, nil
}
