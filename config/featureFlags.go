package config

import (
	"os"
	"strings"
)

func envFlag(name string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// FuzzyLinkageDisabled turns off the identity-based fallback of contestation
// linkage, leaving only the explicit case/request number lookups. Useful when
// a tenant's files carry unreliable identity data.
//
// Set via env:
// - DISABLE_FUZZY_LINKAGE=true
func FuzzyLinkageDisabled() bool {
	return envFlag("DISABLE_FUZZY_LINKAGE")
}

// EncodingFallbackDisabled makes non-UTF-8 input a hard failure instead of
// retrying the file as Windows-1252.
//
// Set via env:
// - DISABLE_ENCODING_FALLBACK=true
func EncodingFallbackDisabled() bool {
	return envFlag("DISABLE_ENCODING_FALLBACK")
}
