package scraper

import (
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var whitespace = regexp.MustCompile(`\s+`)

// CleanText collapses runs of whitespace and trims the result.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}

var monthsPT = map[string]time.Month{
	"janeiro": time.January, "fevereiro": time.February, "março": time.March,
	"abril": time.April, "maio": time.May, "junho": time.June,
	"julho": time.July, "agosto": time.August, "setembro": time.September,
	"outubro": time.October, "novembro": time.November, "dezembro": time.December,
}

// ParsePTDate parses the date formats the portals use: "10/02/2024" and
// "29 de agosto de 2024". Returns nil when the string cannot be parsed;
// the document is still produced without a publication date.
func ParsePTDate(dateStr string) *time.Time {
	if dateStr == "" {
		return nil
	}
	dateStr = strings.ToLower(strings.TrimSpace(dateStr))

	if t, err := time.Parse("02/01/2006", dateStr); err == nil {
		return &t
	}

	parts := strings.Split(dateStr, " de ")
	if len(parts) == 3 {
		day, dayErr := strconv.Atoi(strings.TrimSpace(parts[0]))
		month, ok := monthsPT[strings.TrimSpace(parts[1])]
		year, yearErr := strconv.Atoi(strings.TrimSpace(parts[2]))
		if dayErr == nil && yearErr == nil && ok {
			t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
			return &t
		}
	}

	log.Printf("scraper: could not parse date %q", dateStr)
	return nil
}
