package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type mapLookup map[string]string

func (m mapLookup) Lookup(raw string) (string, bool) {
	v, ok := m[raw]
	return v, ok
}

func TestNormalizeLearnedCorrectionWinsFirst(t *testing.T) {
	n := NewNormalizer(mapLookup{
		"스타박스":      "스타벅스",
		"STARDUCKS": "우리동네커피", // beats the alias table
	}, DefaultFuzzyThreshold)

	assert.Equal(t, "스타벅스", n.Normalize("스타박스"))
	assert.Equal(t, "우리동네커피", n.Normalize("STARDUCKS"))
}

func TestNormalizeAliasSubstring(t *testing.T) {
	n := NewNormalizer(nil, DefaultFuzzyThreshold)

	assert.Equal(t, "스타벅스", n.Normalize("STARDUCKS"))
	assert.Equal(t, "스타벅스", n.Normalize("Starbucks Coffee"))
	assert.Equal(t, "파리바게뜨", n.Normalize("PARIS BAGUETTE 역삼"))
	assert.Equal(t, "이마트24", n.Normalize("EMRT"))
}

func TestNormalizeKeywordRules(t *testing.T) {
	n := NewNormalizer(nil, DefaultFuzzyThreshold)

	assert.Equal(t, "이마트24", n.Normalize("동네마트"))
	assert.Equal(t, "스타벅스", n.Normalize("스벅 본점"))
	assert.Equal(t, "GS25", n.Normalize("gs25 강남역점"))
}

func TestNormalizeFuzzyCatalogMatch(t *testing.T) {
	n := NewNormalizer(nil, DefaultFuzzyThreshold)

	// One rune off a catalog entry.
	assert.Equal(t, "투썸플레이스", n.Normalize("투씀플레이스"))
	assert.Equal(t, "세븐일레븐", n.Normalize("세본일레븐"))
}

func TestNormalizeCanonicalNamesAreStable(t *testing.T) {
	n := NewNormalizer(nil, DefaultFuzzyThreshold)

	for _, brand := range []string{"스타벅스", "CU", "GS25", "코스트코", "투썸플레이스", "빽다방", "던킨"} {
		assert.Equal(t, brand, n.Normalize(brand))
	}
}

func TestNormalizeTruncatesLongInput(t *testing.T) {
	n := NewNormalizer(nil, DefaultFuzzyThreshold)

	long := strings.Repeat("xqzw", 10) // 40 runes, matches nothing
	got := n.Normalize(long)
	assert.Equal(t, long[:25], got)

	// A match past the truncation point is never seen.
	buried := strings.Repeat("xqzw", 7) + "starbucks" // label starts at rune 28
	assert.Equal(t, buried[:25], n.Normalize(buried))
}

func TestNormalizeNoMatchReturnsInput(t *testing.T) {
	n := NewNormalizer(nil, DefaultFuzzyThreshold)

	assert.Equal(t, "", n.Normalize(""))
	assert.Equal(t, "xqzw", n.Normalize("xqzw"))
}
