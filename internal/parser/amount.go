package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// Matches thousands-grouped amounts ("12,345") and bare runs of four or
// more digits. Shorter bare runs are skipped: they are usually quantities,
// unit prices, or fragments of something else.
var reAmount = regexp.MustCompile(`\d{1,3}(?:,\d{3})+|\d{4,}`)

// ExtractTotal scans the OCR lines for monetary figures and returns the
// largest one under the ceiling. Receipts list several figures (subtotal,
// tax, change); the biggest plausible one is assumed to be the grand total.
// Candidates at or above the ceiling are OCR noise and dropped.
func ExtractTotal(lines []string, ceiling int64) (int64, bool) {
	text := strings.Join(lines, " ")

	var (
		best  int64
		found bool
	)
	for _, match := range reAmount.FindAllString(text, -1) {
		n, err := strconv.ParseInt(strings.ReplaceAll(match, ",", ""), 10, 64)
		if err != nil || n >= ceiling {
			continue
		}
		if !found || n > best {
			best, found = n, true
		}
	}
	return best, found
}
