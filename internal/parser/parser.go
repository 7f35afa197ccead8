package parser

import (
	"regexp"
	"strings"
)

const (
	// DefaultFuzzyThreshold is the minimum similarity ratio for a fuzzy
	// brand match. Tuned against real receipt OCR output.
	DefaultFuzzyThreshold = 0.3

	// DefaultMaxPlausibleAmount rejects amount candidates that no single
	// receipt in this domain plausibly reaches.
	DefaultMaxPlausibleAmount = 2_000_000

	// UnconfirmedMerchant is the sentinel stored when normalization yields
	// an empty merchant name.
	UnconfirmedMerchant = "미확인"
)

// Config holds the tunable extraction constants.
type Config struct {
	FuzzyThreshold     float64
	MaxPlausibleAmount int64
}

// Fields is the structured record produced from one receipt.
type Fields struct {
	Merchant    string `json:"merchant"`
	TotalAmount *int64 `json:"total_amount,omitempty"`
	Date        string `json:"date,omitempty"`
	Category    string `json:"category"`
}

// merchantLabels are receipt labels whose trailing text names the merchant.
// Checked per line in this order; the first labeled line wins.
var merchantLabels = []string{"가맹점", "매장명"}

// Strips everything that is not a Hangul syllable, Latin letter, or digit.
var reNonName = regexp.MustCompile(`[^가-힣A-Za-z0-9]`)

// Parser turns OCR lines plus an optional ROI brand guess into Fields.
type Parser struct {
	norm *Normalizer
	cfg  Config
}

func New(corrections CorrectionLookup, cfg Config) *Parser {
	if cfg.FuzzyThreshold <= 0 {
		cfg.FuzzyThreshold = DefaultFuzzyThreshold
	}
	if cfg.MaxPlausibleAmount <= 0 {
		cfg.MaxPlausibleAmount = DefaultMaxPlausibleAmount
	}
	return &Parser{
		norm: NewNormalizer(corrections, cfg.FuzzyThreshold),
		cfg:  cfg,
	}
}

// Parse never fails: every field degrades independently to its absent or
// default value when the text gives nothing usable.
func (p *Parser) Parse(lines []string, roiBrand string) Fields {
	raw, labeled := labeledMerchant(lines)
	if !labeled {
		if strings.TrimSpace(roiBrand) != "" {
			raw = roiBrand
		} else {
			// Last resort: the whole text stripped to name characters.
			// Rarely resolves to a brand but keeps the flow deterministic.
			raw = reNonName.ReplaceAllString(strings.Join(lines, " "), "")
		}
	}

	merchant := p.norm.Normalize(raw)
	if merchant == "" {
		merchant = UnconfirmedMerchant
	}

	fields := Fields{
		Merchant: merchant,
		Category: CategoryFor(merchant),
	}
	if total, ok := ExtractTotal(lines, p.cfg.MaxPlausibleAmount); ok {
		fields.TotalAmount = &total
	}
	if date, ok := ExtractDate(lines); ok {
		fields.Date = date
	}
	return fields
}

// labeledMerchant scans for the first line carrying a merchant label and
// returns the trimmed text after the label. A labeled line wins outright,
// even when that text is empty.
func labeledMerchant(lines []string) (string, bool) {
	for _, line := range lines {
		for _, label := range merchantLabels {
			if i := strings.LastIndex(line, label); i >= 0 {
				return strings.TrimSpace(line[i+len(label):]), true
			}
		}
	}
	return "", false
}
