package parser

import (
	"strings"

	"github.com/agext/levenshtein"
)

// maxMerchantRunes caps how much of a candidate string is considered.
// OCR sometimes merges the merchant line with neighbouring text; anything
// past this point is noise, not name.
const maxMerchantRunes = 25

// CorrectionLookup is the read side of the learned-correction store.
type CorrectionLookup interface {
	Lookup(raw string) (string, bool)
}

// Normalizer resolves raw OCR merchant strings to canonical brand names.
// It is pure given the current state of the correction store.
type Normalizer struct {
	corrections CorrectionLookup
	threshold   float64
}

func NewNormalizer(corrections CorrectionLookup, threshold float64) *Normalizer {
	if threshold <= 0 {
		threshold = DefaultFuzzyThreshold
	}
	return &Normalizer{corrections: corrections, threshold: threshold}
}

// Normalize applies, in priority order: the learned-correction store, the
// brand alias table, keyword rules, and finally fuzzy matching against the
// brand catalog. When nothing matches, the (truncated) input comes back
// unchanged.
func (n *Normalizer) Normalize(raw string) string {
	name := truncateRunes(raw, maxMerchantRunes)

	if n.corrections != nil {
		if corrected, ok := n.corrections.Lookup(name); ok {
			return corrected
		}
	}

	clean := strings.ToLower(strings.ReplaceAll(name, " ", ""))

	for _, rule := range brandAliases {
		if strings.Contains(clean, rule.key) {
			return rule.canonical
		}
	}

	// Keyword rules predate the alias table and run on the uncleaned form.
	switch {
	case strings.Contains(name, "마트"), strings.Contains(name, "emart"):
		return "이마트24"
	case strings.Contains(name, "star"), strings.Contains(name, "스벅"):
		return "스타벅스"
	case strings.Contains(name, "gs25"):
		return "GS25"
	case strings.Contains(name, "cu"):
		return "CU"
	}

	if brand, ok := n.closestBrand(clean); ok {
		return brand
	}

	return name
}

// closestBrand picks the catalog entry most similar to the cleaned
// candidate, accepting it only at or above the configured ratio.
func (n *Normalizer) closestBrand(clean string) (string, bool) {
	if clean == "" {
		return "", false
	}
	var (
		best      string
		bestRatio float64
	)
	for _, candidate := range brandCatalog {
		ratio := levenshtein.Similarity(clean, strings.ToLower(candidate), nil)
		if ratio > bestRatio {
			best, bestRatio = candidate, ratio
		}
	}
	if bestRatio < n.threshold {
		return "", false
	}
	return best, true
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
