package workflow

import (
	"strings"

	"bitbucket.org/sofidex/tracing_backend/models"
	"bitbucket.org/sofidex/tracing_backend/utils"
)

// ExtractRequests tokenizes the free-text "requested items" field into the
// closed set of request codes. Rules are applied in descending priority
// (GetKeywordRules returns them pre-sorted); once a code is detected a
// lower-priority rule cannot re-detect it. Matching is accent- and
// case-insensitive.
func ExtractRequests(freeText string, rules []models.KeywordRule) []models.RequestCode {
	text := strings.ToLower(utils.FoldAccents(freeText))
	detected := make(map[models.RequestCode]bool)
	var codes []models.RequestCode

	for i := range rules {
		rule := &rules[i]
		if detected[rule.Code] {
			continue
		}
		matched := false
		if rule.UsesRegex() {
			// Rules coming out of GetKeywordRules are already validated, so
			// the compile happened at load and this only reads the cache.
			re, err := rule.CompiledPattern()
			if err != nil {
				continue
			}
			matched = re.MatchString(text)
		} else {
			matched = strings.Contains(text, strings.ToLower(utils.FoldAccents(rule.Pattern)))
		}
		if matched {
			detected[rule.Code] = true
			codes = append(codes, rule.Code)
		}
	}
	return codes
}

// ResolveFoundStatus decides whether the investigator's returned data
// satisfies one requested code, with a short memo of what was found.
func ResolveFoundStatus(code models.RequestCode, rec *models.CaseRecord) (bool, string) {
	switch code {
	case models.RequestCodeAddress:
		if rec.FoundAddressLine1 != "" || rec.FoundAddressLine2 != "" || rec.FoundAddressLine3 != "" {
			return true, firstNonEmpty(rec.FoundAddressLine1, rec.FoundAddressLine2, rec.FoundAddressLine3)
		}
		if rec.FoundPostalCode != "" && rec.FoundCity != "" {
			return true, rec.FoundPostalCode + " " + rec.FoundCity
		}
	case models.RequestCodePhone:
		if rec.FoundPhone != "" && rec.FoundPhone != "0" {
			memo := rec.FoundPhone
			if err := utils.ValidatePhoneNumber(rec.FoundPhone, utils.CountryCode); err != nil {
				memo += " (unverified)"
			}
			return true, memo
		}
	case models.RequestCodeEmployer:
		if rec.FoundEmployerName != "" || rec.FoundEmployerAdr1 != "" || rec.FoundEmployerAdr2 != "" {
			return true, firstNonEmpty(rec.FoundEmployerName, rec.FoundEmployerAdr1, rec.FoundEmployerAdr2)
		}
	case models.RequestCodeBank:
		if rec.FoundBankName != "" || rec.FoundBankCode != "" || rec.FoundBranchCode != "" {
			return true, firstNonEmpty(rec.FoundBankName, rec.FoundBankCode, rec.FoundBranchCode)
		}
	case models.RequestCodeBirth:
		if rec.UpdatedBirthDate != nil {
			return true, rec.UpdatedBirthDate.Format("02/01/2006")
		}
		if rec.UpdatedBirthPlace != "" {
			return true, rec.UpdatedBirthPlace
		}
	}
	return false, ""
}

// BuildRequestItems computes the full request-item set of a case from its
// free text and returned data. The global verdict is positive when at least
// one requested code is POS.
func BuildRequestItems(rec *models.CaseRecord, rules []models.KeywordRule) ([]models.RequestItem, bool) {
	codes := ExtractRequests(rec.RequestedItems, rules)
	items := make([]models.RequestItem, 0, len(codes))
	globalPositive := false

	for _, code := range codes {
		found, memo := ResolveFoundStatus(code, rec)
		status := models.RequestStatusNegative
		if found {
			status = models.RequestStatusPositive
			globalPositive = true
		}
		items = append(items, models.RequestItem{
			TenantId:  rec.TenantId,
			CaseId:    rec.ID,
			Code:      code,
			Requested: true,
			Found:     found,
			Status:    status,
			Memo:      memo,
		})
	}
	return items, globalPositive
}

// PositiveCodes filters the found codes out of a computed item set.
func PositiveCodes(items []models.RequestItem) []models.RequestCode {
	var codes []models.RequestCode
	for i := range items {
		if items[i].Requested && items[i].Found {
			codes = append(codes, items[i].Code)
		}
	}
	return codes
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
