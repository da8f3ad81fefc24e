package extractor

import (
	"regexp"
	"strings"

	"github.com/use-agent/serpscout/models"
)

var (
	// relevantPattern gates which containers are worth parsing: a rupee
	// amount or one of the listing unit keywords.
	relevantPattern = regexp.MustCompile(`(?i)(₹|\brs\.?\s?\d|\blakhs?\b|\blacs?\b|\bcr\b|\bcrores?\b|\bbhk\b|\bvillas?\b)`)

	// pricePattern matches a currency amount with an optional unit word,
	// e.g. "₹ 45,00,000", "Rs. 85 Lakh", "₹1.2 Cr".
	pricePattern = regexp.MustCompile(`(?i)(?:₹|\brs\.?)\s?\d[\d,]*(?:\.\d+)?(?:\s?(?:lakhs?|lacs?|crores?|cr|k)\b)?`)

	spaceRun = regexp.MustCompile(`\s+`)
)

// Candidate is the raw material pulled from one container element.
type Candidate struct {
	Text    string // container's visible text
	Heading string // text of the first nested h1-h6
	Link    string // resolved destination of the first nested anchor
}

// Relevant reports whether text looks like a listing.
func Relevant(text string) bool {
	return relevantPattern.MatchString(text)
}

// ParsePrice returns the first currency amount in text, or "".
func ParsePrice(text string) string {
	return strings.TrimRight(pricePattern.FindString(text), ", ")
}

// ParseCandidate turns a candidate into an item. It fails unless title,
// price and link are all non-empty.
func ParseCandidate(c Candidate) (models.ExtractedItem, bool) {
	item := models.ExtractedItem{
		Title: normalizeSpace(c.Heading),
		Price: ParsePrice(c.Text),
		Link:  strings.TrimSpace(c.Link),
	}
	if item.Title == "" || item.Price == "" || item.Link == "" {
		return models.ExtractedItem{}, false
	}
	return item, true
}

func normalizeSpace(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}
