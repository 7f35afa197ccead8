package parser

import (
	"regexp"
	"strings"
)

var (
	// Four-digit year, then month and day joined by -, ., / or the Korean
	// 년/월 markers, optionally followed by a H:MM or H:MM:SS time.
	reDate = regexp.MustCompile(`\d{4}[-./년]\d{1,2}[-./월]\d{1,2}(?:\s+\d{1,2}:\d{2}(?::\d{2})?)?`)

	// 일 has no output separator: the day number ends the date part, so the
	// marker is dropped rather than replaced.
	dateSeparators = strings.NewReplacer(".", "-", "/", "-", "년", "-", "월", "-", "일", "")
)

// ExtractDate returns the first date-like substring across the OCR lines,
// with separators normalized to "-".
func ExtractDate(lines []string) (string, bool) {
	text := strings.Join(lines, " ")
	match := reDate.FindString(text)
	if match == "" {
		return "", false
	}
	return dateSeparators.Replace(match), true
}
