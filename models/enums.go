package models

import "errors"

// FormatKind selects the decode/encode variant a profile drives.
type FormatKind string

const (
	FormatKindFixedWidth FormatKind = "FixedWidth"
	FormatKindTabular    FormatKind = "Tabular"
	FormatKindVertical   FormatKind = "Vertical"
)

func (k FormatKind) Valid() bool {
	switch k {
	case FormatKindFixedWidth, FormatKindTabular, FormatKindVertical:
		return true
	}
	return false
}

// TransformKind is the closed set of per-field normalizations. Unknown names
// are rejected when the profile is loaded, never at per-record time.
type TransformKind string

const (
	TransformToString   TransformKind = "ToString"
	TransformTrim       TransformKind = "Trim"
	TransformTrimUpper  TransformKind = "TrimUpper"
	TransformTrimLower  TransformKind = "TrimLower"
	TransformPostalCode TransformKind = "PostalCode"
	TransformPhone      TransformKind = "Phone"
	TransformDateParts  TransformKind = "DateParts"
	TransformComposite  TransformKind = "Composite"
)

// RequestType distinguishes a first enquiry from a contestation of a closed case.
type RequestType string

const (
	RequestTypeEnquiry      RequestType = "ENQ"
	RequestTypeContestation RequestType = "CON"
)

// RequestCode is the closed set of information categories a tenant can ask for.
type RequestCode string

const (
	RequestCodeAddress  RequestCode = "ADDRESS"
	RequestCodePhone    RequestCode = "PHONE"
	RequestCodeEmployer RequestCode = "EMPLOYER"
	RequestCodeBank     RequestCode = "BANK"
	RequestCodeBirth    RequestCode = "BIRTH"
)

func (c RequestCode) Valid() bool {
	switch c {
	case RequestCodeAddress, RequestCodePhone, RequestCodeEmployer, RequestCodeBank, RequestCodeBirth:
		return true
	}
	return false
}

// AllRequestCodes in canonical sort order (alphabetical), the order used to
// build tariff code-set keys.
func AllRequestCodes() []RequestCode {
	return []RequestCode{
		RequestCodeAddress,
		RequestCodeBank,
		RequestCodeBirth,
		RequestCodeEmployer,
		RequestCodePhone,
	}
}

// RequestStatus is the per-request-item verdict.
type RequestStatus string

const (
	RequestStatusPositive RequestStatus = "POS"
	RequestStatusNegative RequestStatus = "NEG"
)

// ResultCode is the investigator's per-case outcome.
// 'P' positive (possibly reduced scope on a contestation), 'N' negative,
// 'H' contestation confirmed the original result.
type ResultCode string

const (
	ResultCodePositive  ResultCode = "P"
	ResultCodeNegative  ResultCode = "N"
	ResultCodeConfirmed ResultCode = "H"
)

// CaseStatus is the case lifecycle.
type CaseStatus string

const (
	CaseStatusImported CaseStatus = "Imported"
	CaseStatusClosed   CaseStatus = "Closed"
	CaseStatusExported CaseStatus = "Exported"
)

var ErrInvalidEnum = errors.New("invalid enum value")
