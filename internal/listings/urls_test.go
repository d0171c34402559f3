package listings

import (
	"reflect"
	"testing"
)

func TestBuildURLs(t *testing.T) {
	t.Parallel()

	got := BuildURLs("", "Data Scientist", "New York", DefaultStart)

	want := []string{
		DefaultListingURL + "?keywords=Data%2BScientist&location=New%2BYork&start=50",
		DefaultListingURL + "?keywords=Data%20Scientist&location=New%20York&start=50",
		DefaultListingURL + "?keywords=Data%20Scientist&location=New%2BYork&start=50",
		DefaultListingURL + "?keywords=Data%2BScientist&location=New%20York&start=50",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestBuildURLsOnlySpacesAreEncoded(t *testing.T) {
	t.Parallel()

	got := BuildURLs("https://example.com/search?sortBy=DD", "C++ Dev", "Berlin", 0)

	if len(got) != 4 {
		t.Fatalf("expected 4 urls, got %d", len(got))
	}
	if got[0] != "https://example.com/search?sortBy=DD&keywords=C++%2BDev&location=Berlin&start=0" {
		t.Fatalf("unexpected url: %s", got[0])
	}
	if got[1] != "https://example.com/search?sortBy=DD&keywords=C++%20Dev&location=Berlin&start=0" {
		t.Fatalf("unexpected url: %s", got[1])
	}
}

func TestDetailURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		template string
		want     string
	}{
		{template: "", want: "https://www.linkedin.com/jobs-guest/jobs/api/jobPosting/42"},
		{template: "http://localhost/jobs/{id}?lang=en", want: "http://localhost/jobs/42?lang=en"},
		{template: "http://localhost/jobs/", want: "http://localhost/jobs/42"},
	}

	for _, tt := range tests {
		if got := DetailURL(tt.template, "42"); got != tt.want {
			t.Fatalf("DetailURL(%q): expected %q, got %q", tt.template, tt.want, got)
		}
	}
}
