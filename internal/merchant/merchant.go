// Package merchant canonicalizes raw merchant strings into the clean display
// names used for categorization and deduplication grouping. Card processors
// append storefront qualifiers and franchise-location city names to merchant
// names ("SUBWAY MOMENTUM", "AUTO MERCADO ESCAZU"); normalization strips
// that noise so the same merchant always groups under one name.
package merchant

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sebascrugu/finanzas-email-tracker/internal/textutils"
)

// defaultNoisePhrases are multi-word qualifiers removed before tokenization.
// Matched accent-insensitively against the folded uppercase name.
var defaultNoisePhrases = []string{
	"FREE ZO",
	"FREE ZONE",
	"SANTA ANA",
	"SAN JOSE",
	"SAN PEDRO",
	"TRES RIOS",
	"CIUDAD COLON",
}

// defaultNoiseTokens are single tokens removed from merchant names: mall and
// storefront qualifiers plus Costa Rican franchise-location city names.
var defaultNoiseTokens = []string{
	"SUPERCENTER",
	"MOMENTUM",
	"MULTIPLAZA",
	"LINCOLN",
	"OXIGENO",
	"AVENIDA",
	"PLAZA",
	"MALL",
	"CR",
	"CRC",
	"ESCAZU",
	"CURRIDABAT",
	"HEREDIA",
	"ALAJUELA",
	"CARTAGO",
	"GUADALUPE",
	"MORAVIA",
	"TIBAS",
	"PAVAS",
	"ZAPOTE",
	"DESAMPARADOS",
	"LIBERIA",
	"LINDORA",
	"SABANA",
}

// Normalizer holds the compiled noise tables. Built once, read-only
// thereafter, safe for concurrent use.
type Normalizer struct {
	phrases []string
	tokens  map[string]struct{}
	titler  cases.Caser
}

// New creates a Normalizer with the default noise tables plus any extra
// tokens supplied by configuration.
func New(extraTokens ...string) *Normalizer {
	n := &Normalizer{
		phrases: defaultNoisePhrases,
		tokens:  make(map[string]struct{}, len(defaultNoiseTokens)+len(extraTokens)),
		titler:  cases.Title(language.Spanish),
	}
	for _, t := range defaultNoiseTokens {
		n.tokens[textutils.FoldLower(t)] = struct{}{}
	}
	for _, t := range extraTokens {
		if t = strings.TrimSpace(t); t != "" {
			n.tokens[textutils.FoldLower(t)] = struct{}{}
		}
	}
	return n
}

// Normalize canonicalizes a raw merchant string. The result is never blank:
// when noise removal leaves nothing, the original trimmed string is
// title-cased instead. Applying Normalize twice yields the same result as
// applying it once (case-insensitively); normalization runs both at
// ingestion and at later re-categorization passes.
func (n *Normalizer) Normalize(raw string) string {
	cleaned := textutils.CollapseWhitespace(raw)
	if cleaned == "" {
		return ""
	}

	working := cleaned
	for _, phrase := range n.phrases {
		working = removePhrase(working, phrase)
	}

	var kept []string
	for _, token := range strings.Fields(working) {
		folded := textutils.FoldLower(token)
		if _, noisy := n.tokens[folded]; noisy {
			continue
		}
		if isStorefrontCode(token) {
			continue
		}
		kept = append(kept, token)
	}

	result := strings.Join(kept, " ")
	if strings.TrimSpace(result) == "" {
		result = cleaned
	}

	return n.titler.String(strings.ToLower(result))
}

// removePhrase deletes every accent-insensitive, case-insensitive occurrence
// of a multi-word phrase. Matching runs on a rune-indexed folding so the
// match position maps back onto the original even when accented runes sit
// before the phrase.
func removePhrase(s, phrase string) string {
	target := []rune(textutils.FoldLower(phrase))
	for {
		rs := []rune(s)
		idx := textutils.IndexRunes(textutils.FoldLowerRunes(rs), target)
		if idx < 0 {
			return s
		}
		s = textutils.CollapseWhitespace(string(rs[:idx]) + string(rs[idx+len(target):]))
	}
}

// isStorefrontCode reports whether a token is a store number ("#123", "0042")
// rather than part of the name.
func isStorefrontCode(token string) bool {
	token = strings.TrimPrefix(token, "#")
	if token == "" {
		return true
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
