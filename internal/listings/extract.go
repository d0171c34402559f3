package listings

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Markup of the guest endpoints. These selectors break first when the site
// changes, so each field has its own extractor.
const (
	cardSelector    = "div.base-card"
	cardURNAttr     = "data-entity-urn"
	urnSep          = ":"
	urnIDSegment    = 3
	titleSelector   = "h2.top-card-layout__title"
	companySelector = "a.topcard__org-name-link"
	postedSelector  = "span.posted-time-ago__text"
	linkSelector    = "a.topcard__link"
	linkAttr        = "href"
)

// fieldExtractor returns nil when its element is absent or empty.
type fieldExtractor func(doc *goquery.Document) *string

var (
	extractTitle    = textOf(titleSelector)
	extractCompany  = textOf(companySelector)
	extractPostedAt = textOf(postedSelector)
	extractLink     = attrOf(linkSelector, linkAttr)
)

// parseJobIDs returns the job ids of all cards on a listing page in page
// order. Cards without a usable entity urn are skipped.
func parseJobIDs(page []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, err
	}

	var ids []string
	doc.Find("li").Each(func(_ int, li *goquery.Selection) {
		urn, ok := li.Find(cardSelector).First().Attr(cardURNAttr)
		if !ok {
			return
		}

		parts := strings.Split(urn, urnSep)
		if len(parts) <= urnIDSegment {
			return
		}

		if id := strings.TrimSpace(parts[urnIDSegment]); id != "" {
			ids = append(ids, id)
		}
	})
	return ids, nil
}

// parsePosting extracts the fields of a detail page independently.
func parsePosting(id string, page []byte) (*Posting, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, err
	}

	return &Posting{
		ID:       id,
		Title:    extractTitle(doc),
		Company:  extractCompany(doc),
		PostedAt: extractPostedAt(doc),
		Link:     extractLink(doc),
	}, nil
}

func textOf(selector string) fieldExtractor {
	return func(doc *goquery.Document) *string {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			return nil
		}
		return nonEmpty(cleanText(sel.Text()))
	}
}

func attrOf(selector, attr string) fieldExtractor {
	return func(doc *goquery.Document) *string {
		value, ok := doc.Find(selector).First().Attr(attr)
		if !ok {
			return nil
		}
		return nonEmpty(strings.TrimSpace(value))
	}
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
