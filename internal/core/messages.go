package core

import (
	"fmt"
	"strings"
)

// Supported display locales.
const (
	LocalePT = "pt-BR"
	LocaleEN = "en"
)

// DefaultLocale is the locale used when none is configured.
const DefaultLocale = LocalePT

var rejectionTemplates = map[string]string{
	LocalePT: "CSV inválido! Certifique-se de que está enviando um arquivo de %s.",
	LocaleEN: "Invalid CSV! Make sure you are uploading a %s file.",
}

var unknownKindMessages = map[string]string{
	LocalePT: "CSV inválido! Tipo de arquivo desconhecido.",
	LocaleEN: "Invalid CSV! Unknown file type.",
}

// RejectionMessage returns the default-locale message shown when a file is
// rejected for kind.
func RejectionMessage(kind Kind) string {
	return RejectionMessageIn(DefaultLocale, kind)
}

// RejectionMessageIn returns the rejection message for kind in locale.
// Unknown locales fall back to DefaultLocale; unknown kinds get a generic
// "unknown file type" message instead of an empty string.
func RejectionMessageIn(locale string, kind Kind) string {
	locale = CanonicalLocale(locale)

	spec, ok := Lookup(kind)
	if !ok {
		return unknownKindMessages[locale]
	}
	return fmt.Sprintf(rejectionTemplates[locale], spec.Label(locale))
}

// CanonicalLocale maps "pt", "pt_br", "EN-us" and friends onto a supported
// locale.
func CanonicalLocale(locale string) string {
	l := strings.ToLower(strings.TrimSpace(locale))
	switch {
	case strings.HasPrefix(l, "en"):
		return LocaleEN
	case strings.HasPrefix(l, "pt"):
		return LocalePT
	default:
		return DefaultLocale
	}
}
