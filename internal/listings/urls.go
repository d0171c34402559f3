package listings

import (
	"fmt"
	"strings"
)

const (
	DefaultListingURL = "https://www.linkedin.com/jobs-guest/jobs/api/seeMoreJobPostings/search"
	DefaultDetailURL  = "https://www.linkedin.com/jobs-guest/jobs/api/jobPosting/{id}"
	DefaultStart      = 50

	detailIDPlaceholder = "{id}"

	encodedPlus  = "%2B"
	encodedSpace = "%20"
)

// BuildURLs returns four search URLs for the same query. They differ only in
// how spaces of the title and location are encoded, in this order:
// (%2B, %2B), (%20, %20), (%20, %2B), (%2B, %20). Nothing but spaces is
// escaped. The site accepts different encodings for different fields, so
// all variants are fetched and the results are merged.
func BuildURLs(base, title, location string, start int) []string {
	if base == "" {
		base = DefaultListingURL
	}

	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}

	titlePlus := strings.ReplaceAll(title, " ", encodedPlus)
	titleSpace := strings.ReplaceAll(title, " ", encodedSpace)
	locationPlus := strings.ReplaceAll(location, " ", encodedPlus)
	locationSpace := strings.ReplaceAll(location, " ", encodedSpace)

	variants := [][2]string{
		{titlePlus, locationPlus},
		{titleSpace, locationSpace},
		{titleSpace, locationPlus},
		{titlePlus, locationSpace},
	}

	urls := make([]string, 0, len(variants))
	for _, v := range variants {
		urls = append(urls, fmt.Sprintf("%s%skeywords=%s&location=%s&start=%d", base, sep, v[0], v[1], start))
	}
	return urls
}

// DetailURL fills the {id} placeholder of template. Without a placeholder the
// id is appended as the last path segment.
func DetailURL(template, id string) string {
	if template == "" {
		template = DefaultDetailURL
	}

	if strings.Contains(template, detailIDPlaceholder) {
		return strings.ReplaceAll(template, detailIDPlaceholder, id)
	}
	return strings.TrimRight(template, "/") + "/" + id
}
