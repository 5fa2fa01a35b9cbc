package decoder

import (
	"fmt"
	"strings"

	"bitbucket.org/sofidex/tracing_backend/models"
	"bitbucket.org/sofidex/tracing_backend/utils"
)

// TransformFunc normalizes the raw parts extracted for one mapping. Simple
// transforms read parts[0]; DateParts and Composite consume the whole slice.
// Pure and total: any input, including empty, yields a value and ok=true or
// ok=false, never a panic.
type TransformFunc func(parts []string) (string, bool)

var transformTable = map[models.TransformKind]TransformFunc{
	models.TransformToString:   transformToString,
	models.TransformTrim:       transformTrim,
	models.TransformTrimUpper:  transformTrimUpper,
	models.TransformTrimLower:  transformTrimLower,
	models.TransformPostalCode: transformPostalCode,
	models.TransformPhone:      transformPhone,
	models.TransformDateParts:  transformDateParts,
	models.TransformComposite:  transformComposite,
}

// LookupTransform resolves a transform kind at configuration-load time.
// Unknown names fail here, never during per-record processing.
func LookupTransform(kind models.TransformKind) (TransformFunc, error) {
	fn, ok := transformTable[kind]
	if !ok {
		return nil, fmt.Errorf("unknown transform %q", kind)
	}
	return fn, nil
}

func first(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

func transformToString(parts []string) (string, bool) {
	return first(parts), true
}

func transformTrim(parts []string) (string, bool) {
	return strings.TrimSpace(first(parts)), true
}

func transformTrimUpper(parts []string) (string, bool) {
	return strings.ToUpper(strings.TrimSpace(first(parts))), true
}

func transformTrimLower(parts []string) (string, bool) {
	return strings.ToLower(strings.TrimSpace(first(parts))), true
}

// transformPostalCode zero-pads to five digits ("7500" -> "07500"). A value
// without any digit yields not-ok.
func transformPostalCode(parts []string) (string, bool) {
	digits := utils.SanitizeDigits(first(parts))
	if digits == "" {
		return "", false
	}
	for len(digits) < 5 {
		digits = "0" + digits
	}
	return digits, true
}

// transformPhone keeps digits only ("01.42.68.53.00" -> "0142685300").
func transformPhone(parts []string) (string, bool) {
	digits := utils.SanitizeDigits(first(parts))
	if digits == "" {
		return "", false
	}
	return digits, true
}

// transformDateParts composes dd/mm/yyyy from a (day, month, year) triple.
// Two-digit parts are zero-padded; a missing part yields not-ok.
func transformDateParts(parts []string) (string, bool) {
	if len(parts) < 3 {
		return "", false
	}
	day := utils.SanitizeDigits(parts[0])
	month := utils.SanitizeDigits(parts[1])
	year := utils.SanitizeDigits(parts[2])
	if day == "" || month == "" || year == "" {
		return "", false
	}
	if len(day) == 1 {
		day = "0" + day
	}
	if len(month) == 1 {
		month = "0" + month
	}
	if len(year) == 2 {
		// Pivot: 2-digit years up to 30 are 20xx, the rest 19xx.
		if year <= "30" {
			year = "20" + year
		} else {
			year = "19" + year
		}
	}
	if len(day) != 2 || len(month) != 2 || len(year) != 4 {
		return "", false
	}
	return day + "/" + month + "/" + year, true
}

// transformComposite concatenates non-empty parts with single spaces.
func transformComposite(parts []string) (string, bool) {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return "", true
	}
	return strings.Join(kept, " "), true
}
