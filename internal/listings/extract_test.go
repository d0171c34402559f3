package listings

import (
	"reflect"
	"testing"
)

func TestParseJobIDs(t *testing.T) {
	t.Parallel()

	page := []byte(`<ul>
		<li><div class="base-card" data-entity-urn="urn:li:jobPosting:100"></div></li>
		<li><div class="base-card" data-entity-urn="urn:li:jobPosting"></div></li>
		<li><div class="base-card" data-entity-urn="urn:li:jobPosting: "></div></li>
		<li><div class="job-card" data-entity-urn="urn:li:jobPosting:200"></div></li>
		<li><div class="base-card" data-entity-urn="urn:li:jobPosting:100"></div></li>
		<li><div class="base-card" data-entity-urn="urn:li:jobPosting:300:extra"></div></li>
	</ul>`)

	ids, err := parseJobIDs(page)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// duplicates within a page are removed later, together with other pages
	want := []string{"100", "100", "300"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
}

func TestParsePostingMissingFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		page string
		want Posting
	}{
		{
			name: "empty page",
			page: "<html></html>",
			want: Posting{ID: "1"},
		},
		{
			name: "link without href",
			page: `<a class="topcard__link">view</a><a class="topcard__org-name-link">Acme</a>`,
			want: Posting{ID: "1", Company: strPtr("Acme")},
		},
		{
			name: "blank company",
			page: `<a class="topcard__org-name-link">   </a><span class="posted-time-ago__text">now</span>`,
			want: Posting{ID: "1", PostedAt: strPtr("now")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parsePosting("1", []byte(tt.page))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(*got, tt.want) {
				t.Fatalf("expected %s, got %s", &tt.want, got)
			}
		})
	}
}
