package extractor

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/use-agent/serpscout/models"
	"golang.org/x/net/html"
)

var (
	containerSel = cascadia.MustCompile("div, section, article, li")
	anchorSel    = cascadia.MustCompile("a[href]")
	headingSel   = cascadia.MustCompile("h1, h2, h3, h4, h5, h6")
	noiseSel     = cascadia.MustCompile("script, style, noscript, template")
)

// ScanHTML parses one document snapshot and returns the qualifying items
// in document order, deduplicated by link. Relative links are resolved
// against pageURL.
func ScanHTML(rawHTML, pageURL string) ([]models.ExtractedItem, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}
	doc.FindMatcher(noiseSel).Remove()

	base, _ := url.Parse(pageURL)

	type hit struct {
		sel  *goquery.Selection
		item models.ExtractedItem
	}
	var hits []hit
	qualified := make(map[*html.Node]struct{})
	doc.FindMatcher(containerSel).Each(func(_ int, s *goquery.Selection) {
		text := s.Text()
		if !Relevant(text) {
			return
		}

		href, _ := s.FindMatcher(anchorSel).First().Attr("href")
		item, ok := ParseCandidate(Candidate{
			Text:    text,
			Heading: s.FindMatcher(headingSel).First().Text(),
			Link:    resolveLink(base, href),
		})
		if !ok {
			return
		}
		hits = append(hits, hit{sel: s, item: item})
		qualified[s.Get(0)] = struct{}{}
	})

	// A container wrapping another qualifying container is a page section,
	// not a card. Its first heading and anchor belong to the section.
	items := []models.ExtractedItem{}
	seen := make(map[string]struct{})
	for _, h := range hits {
		if wrapsQualified(h.sel, qualified) {
			continue
		}
		if _, dup := seen[h.item.Link]; dup {
			continue
		}
		seen[h.item.Link] = struct{}{}
		items = append(items, h.item)
	}

	return items, nil
}

func wrapsQualified(s *goquery.Selection, qualified map[*html.Node]struct{}) bool {
	found := false
	s.FindMatcher(containerSel).EachWithBreak(func(_ int, inner *goquery.Selection) bool {
		_, found = qualified[inner.Get(0)]
		return !found
	})
	return found
}

// resolveLink makes href absolute. Non-navigable schemes (javascript:,
// mailto:, tel:) and bare fragments resolve to "".
func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return ""
	}
	return ref.String()
}
