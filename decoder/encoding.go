package decoder

import (
	"strings"
	"unicode/utf8"

	"bitbucket.org/sofidex/tracing_backend/config"
	"golang.org/x/text/encoding/charmap"
)

// decodeBytes turns raw file bytes into text, honoring the profile's encoding
// hint. Input that is not valid UTF-8 is re-decoded as Windows-1252 (the
// usual legacy encoding of partner files) and flagged, not rejected.
func decodeBytes(raw []byte, hint string) (text string, fallback bool, err error) {
	switch strings.ToLower(strings.TrimSpace(hint)) {
	case "windows-1252", "cp1252", "latin-1", "iso-8859-1":
		decoded, derr := charmap.Windows1252.NewDecoder().Bytes(raw)
		if derr != nil {
			return "", false, derr
		}
		return string(decoded), false, nil
	}
	if utf8.Valid(raw) {
		return string(raw), false, nil
	}
	if config.EncodingFallbackDisabled() {
		return "", false, &StructuralDecodeError{Line: 0, Reason: "input is not valid UTF-8"}
	}
	decoded, derr := charmap.Windows1252.NewDecoder().Bytes(raw)
	if derr != nil {
		return "", false, derr
	}
	return string(decoded), true, nil
}
