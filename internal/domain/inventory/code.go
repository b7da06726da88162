package inventory

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeCode deja un código de lote u operación en forma canónica:
// sin espacios en los extremos, sin tildes y en mayúsculas ("  lote-año 1 " -> "LOTE-ANO 1").
// La unicidad de codigo_lote se evalúa sobre esta forma.
func NormalizeCode(code string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, strings.TrimSpace(code))
	if err != nil {
		plain = strings.TrimSpace(code)
	}
	return cases.Upper(language.Spanish).String(strings.Join(strings.Fields(plain), " "))
}
