package decoder

import (
	"fmt"
	"time"

	"bitbucket.org/sofidex/tracing_backend/models"
	"bitbucket.org/sofidex/tracing_backend/utils"
)

// setterFunc writes one normalized field value onto the typed case record.
type setterFunc func(c *models.CaseRecord, value string) error

const wireDateLayout = "02/01/2006"

func setString(assign func(c *models.CaseRecord, v string)) setterFunc {
	return func(c *models.CaseRecord, value string) error {
		assign(c, value)
		return nil
	}
}

func setDate(assign func(c *models.CaseRecord, v *time.Time)) setterFunc {
	return func(c *models.CaseRecord, value string) error {
		if value == "" {
			assign(c, nil)
			return nil
		}
		t, err := time.Parse(wireDateLayout, value)
		if err != nil {
			// Compact ddmmyyyy appears in some tenant files.
			t, err = time.Parse("02012006", value)
			if err != nil {
				return fmt.Errorf("invalid date %q (want dd/mm/yyyy)", value)
			}
		}
		assign(c, &t)
		return nil
	}
}

func setDecimal(assign func(c *models.CaseRecord, v string) error) setterFunc {
	return func(c *models.CaseRecord, value string) error {
		if value == "" {
			return nil
		}
		return assign(c, value)
	}
}

// setterTable is the closed field name -> setter registry. Field names are
// validated against it when a profile is loaded; an unknown name is a
// configuration error, not a per-record one.
var setterTable = map[string]setterFunc{
	"case_number":              setString(func(c *models.CaseRecord, v string) { c.CaseNumber = v }),
	"request_number":           setString(func(c *models.CaseRecord, v string) { c.RequestNumber = v }),
	"tenant_reference":         setString(func(c *models.CaseRecord, v string) { c.TenantReference = v }),
	"tier_letter":              setString(func(c *models.CaseRecord, v string) { c.TierLetter = v }),
	"contested_case_number":    setString(func(c *models.CaseRecord, v string) { c.ContestedCaseNumber = v }),
	"contested_request_number": setString(func(c *models.CaseRecord, v string) { c.ContestedRequestNumber = v }),
	"motif_code":               setString(func(c *models.CaseRecord, v string) { c.MotifCode = v }),
	"motif_detail":             setString(func(c *models.CaseRecord, v string) { c.MotifDetail = v }),

	"surname":          setString(func(c *models.CaseRecord, v string) { c.Surname = v }),
	"given_name":       setString(func(c *models.CaseRecord, v string) { c.GivenName = v }),
	"maiden_name":      setString(func(c *models.CaseRecord, v string) { c.MaidenName = v }),
	"gender":           setString(func(c *models.CaseRecord, v string) { c.Gender = v }),
	"birth_place":      setString(func(c *models.CaseRecord, v string) { c.BirthPlace = v }),
	"birth_department": setString(func(c *models.CaseRecord, v string) { c.BirthDepartment = v }),
	"nationality":      setString(func(c *models.CaseRecord, v string) { c.Nationality = v }),

	"address_line1": setString(func(c *models.CaseRecord, v string) { c.AddressLine1 = v }),
	"address_line2": setString(func(c *models.CaseRecord, v string) { c.AddressLine2 = v }),
	"address_line3": setString(func(c *models.CaseRecord, v string) { c.AddressLine3 = v }),
	"address_line4": setString(func(c *models.CaseRecord, v string) { c.AddressLine4 = v }),
	"postal_code":   setString(func(c *models.CaseRecord, v string) { c.PostalCode = v }),
	"city":          setString(func(c *models.CaseRecord, v string) { c.City = v }),
	"country":       setString(func(c *models.CaseRecord, v string) { c.Country = v }),

	"prev_address_line1": setString(func(c *models.CaseRecord, v string) { c.PrevAddressLine1 = v }),
	"prev_address_line2": setString(func(c *models.CaseRecord, v string) { c.PrevAddressLine2 = v }),
	"prev_postal_code":   setString(func(c *models.CaseRecord, v string) { c.PrevPostalCode = v }),
	"prev_city":          setString(func(c *models.CaseRecord, v string) { c.PrevCity = v }),

	"phone":  setString(func(c *models.CaseRecord, v string) { c.Phone = v }),
	"mobile": setString(func(c *models.CaseRecord, v string) { c.Mobile = v }),
	"email":  setString(func(c *models.CaseRecord, v string) { c.Email = v }),

	"employer_name":          setString(func(c *models.CaseRecord, v string) { c.EmployerName = v }),
	"employer_address_line1": setString(func(c *models.CaseRecord, v string) { c.EmployerAddressLine1 = v }),
	"employer_address_line2": setString(func(c *models.CaseRecord, v string) { c.EmployerAddressLine2 = v }),
	"employer_postal_code":   setString(func(c *models.CaseRecord, v string) { c.EmployerPostalCode = v }),
	"employer_city":          setString(func(c *models.CaseRecord, v string) { c.EmployerCity = v }),
	"employer_phone":         setString(func(c *models.CaseRecord, v string) { c.EmployerPhone = v }),
	"profession":             setString(func(c *models.CaseRecord, v string) { c.Profession = v }),

	"bank_name":          setString(func(c *models.CaseRecord, v string) { c.BankName = v }),
	"bank_code":          setString(func(c *models.CaseRecord, v string) { c.BankCode = v }),
	"branch_code":        setString(func(c *models.CaseRecord, v string) { c.BranchCode = v }),
	"account_number":     setString(func(c *models.CaseRecord, v string) { c.AccountNumber = v }),
	"bank_address_line1": setString(func(c *models.CaseRecord, v string) { c.BankAddressLine1 = v }),
	"bank_postal_code":   setString(func(c *models.CaseRecord, v string) { c.BankPostalCode = v }),
	"bank_city":          setString(func(c *models.CaseRecord, v string) { c.BankCity = v }),

	"requested_items": setString(func(c *models.CaseRecord, v string) { c.RequestedItems = v }),
	"comment_text":    setString(func(c *models.CaseRecord, v string) { c.CommentText = v }),
	"memo_text":       setString(func(c *models.CaseRecord, v string) { c.MemoText = v }),

	"found_address_line1": setString(func(c *models.CaseRecord, v string) { c.FoundAddressLine1 = v }),
	"found_address_line2": setString(func(c *models.CaseRecord, v string) { c.FoundAddressLine2 = v }),
	"found_address_line3": setString(func(c *models.CaseRecord, v string) { c.FoundAddressLine3 = v }),
	"found_postal_code":   setString(func(c *models.CaseRecord, v string) { c.FoundPostalCode = v }),
	"found_city":          setString(func(c *models.CaseRecord, v string) { c.FoundCity = v }),
	"found_phone":         setString(func(c *models.CaseRecord, v string) { c.FoundPhone = v }),
	"found_employer_name": setString(func(c *models.CaseRecord, v string) { c.FoundEmployerName = v }),
	"found_employer_adr1": setString(func(c *models.CaseRecord, v string) { c.FoundEmployerAdr1 = v }),
	"found_employer_adr2": setString(func(c *models.CaseRecord, v string) { c.FoundEmployerAdr2 = v }),
	"found_bank_name":     setString(func(c *models.CaseRecord, v string) { c.FoundBankName = v }),
	"found_bank_code":     setString(func(c *models.CaseRecord, v string) { c.FoundBankCode = v }),
	"found_branch_code":   setString(func(c *models.CaseRecord, v string) { c.FoundBranchCode = v }),
	"updated_birth_place": setString(func(c *models.CaseRecord, v string) { c.UpdatedBirthPlace = v }),

	"invoice_number": setString(func(c *models.CaseRecord, v string) { c.InvoiceNumber = v }),

	"birth_date":         setDate(func(c *models.CaseRecord, v *time.Time) { c.BirthDate = v }),
	"updated_birth_date": setDate(func(c *models.CaseRecord, v *time.Time) { c.UpdatedBirthDate = v }),
	"result_date":        setDate(func(c *models.CaseRecord, v *time.Time) { c.ResultDate = v }),

	"principal_amount": setDecimal(func(c *models.CaseRecord, v string) error {
		d, err := utils.ParseDecimal(v)
		if err != nil {
			return err
		}
		c.PrincipalAmount = d
		return nil
	}),
	"interest_amount": setDecimal(func(c *models.CaseRecord, v string) error {
		d, err := utils.ParseDecimal(v)
		if err != nil {
			return err
		}
		c.InterestAmount = d
		return nil
	}),
	"fees_amount": setDecimal(func(c *models.CaseRecord, v string) error {
		d, err := utils.ParseDecimal(v)
		if err != nil {
			return err
		}
		c.FeesAmount = d
		return nil
	}),
	"total_due": setDecimal(func(c *models.CaseRecord, v string) error {
		d, err := utils.ParseDecimal(v)
		if err != nil {
			return err
		}
		c.TotalDue = d
		return nil
	}),

	"request_type": func(c *models.CaseRecord, value string) error {
		switch models.RequestType(value) {
		case models.RequestTypeEnquiry:
			c.RequestType = models.RequestTypeEnquiry
			c.IsContestation = utils.NewFalse()
		case models.RequestTypeContestation:
			c.RequestType = models.RequestTypeContestation
			c.IsContestation = utils.NewTrue()
		case "":
			c.RequestType = models.RequestTypeEnquiry
			c.IsContestation = utils.NewFalse()
		default:
			return fmt.Errorf("invalid request type %q", value)
		}
		return nil
	},

	"result_code": func(c *models.CaseRecord, value string) error {
		switch models.ResultCode(value) {
		case models.ResultCodePositive, models.ResultCodeNegative, models.ResultCodeConfirmed:
			c.ResultCode = models.ResultCode(value)
		case "":
			// no result yet
		default:
			return fmt.Errorf("invalid result code %q", value)
		}
		return nil
	},
}

// LookupSetter resolves an internal field name at configuration-load time.
func LookupSetter(fieldName string) (setterFunc, error) {
	fn, ok := setterTable[fieldName]
	if !ok {
		return nil, fmt.Errorf("unknown case field %q", fieldName)
	}
	return fn, nil
}
