package parser

// aliasRule maps a known OCR rendering of a brand to its canonical name.
// Rules are scanned in order against the cleaned candidate string and the
// first substring hit wins, so more specific keys belong before looser ones.
type aliasRule struct {
	key       string
	canonical string
}

var brandAliases = []aliasRule{
	{"starbucks", "스타벅스"},
	{"starducks", "스타벅스"},
	{"paris", "파리바게뜨"},
	{"ediya", "이디야"},
	{"nonghyup", "농협"},
	{"emart", "이마트24"},
	{"emrt", "이마트24"},
}

// brandCatalog is the fuzzy-match candidate list. Entries are compared
// case-insensitively; the canonical casing is what gets returned.
var brandCatalog = []string{
	"스타벅스", "이마트24", "파리바게뜨", "이디야", "투썸플레이스", "빽다방", "할리스",
	"던킨", "버거킹", "맥도날드", "롯데리아", "KFC", "CU", "GS25", "세븐일레븐",
	"코스트코", "홈플러스", "롯데마트", "농협", "다이소", "올리브영", "ABC마트",
}

// DefaultCategory is assigned when the merchant has no category mapping.
const DefaultCategory = "기타"

// merchantCategories maps canonical merchant names to budget categories.
// Lookup is exact, on the normalized name only.
var merchantCategories = map[string]string{
	"스타벅스": "카페",
	"이디야":  "카페",
	"투썸":   "카페",
	"커피":   "카페",
	"농협":   "마트",
	"이마트":  "마트",
	"CU":    "편의점",
	"GS25":  "편의점",
	"세븐일레븐": "편의점",
	"코스트코": "마트",
}

// CategoryFor returns the budget category for a normalized merchant name.
func CategoryFor(merchant string) string {
	if c, ok := merchantCategories[merchant]; ok {
		return c
	}
	return DefaultCategory
}
