package decoder

import (
	"fmt"

	"bitbucket.org/sofidex/tracing_backend/models"
)

// Decode turns one raw client file into decoded records per the registry's
// format variant. Pure: identical bytes always yield identical records.
func Decode(raw []byte, reg *Registry) (*Result, error) {
	switch reg.Profile.FormatKind {
	case models.FormatKindFixedWidth:
		return DecodeFixedWidth(raw, reg)
	case models.FormatKindTabular:
		return DecodeTabular(raw, reg)
	case models.FormatKindVertical:
		return DecodeVertical(raw, reg)
	default:
		return nil, fmt.Errorf("unsupported format kind %q", reg.Profile.FormatKind)
	}
}
