// Package hero defines the character record returned by the public
// characters search endpoint.
package hero

import (
	"strings"
	"time"
)

// Image variants understood by the image service.
const (
	PortraitSmall     = "portrait_small"
	PortraitMedium    = "portrait_medium"
	PortraitXLarge    = "portrait_xlarge"
	PortraitUncanny   = "portrait_uncanny"
	StandardMedium    = "standard_medium"
	StandardLarge     = "standard_large"
	StandardFantastic = "standard_fantastic"
	LandscapeLarge    = "landscape_large"
	LandscapeXLarge   = "landscape_xlarge"
	Detail            = "detail"
)

// Hero is one character in a search result page.
type Hero struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Modified    Timestamp `json:"modified"`
	Thumbnail   Thumbnail `json:"thumbnail"`
	ResourceURI string    `json:"resourceURI"`
	Comics      SubItems  `json:"comics"`
	Events      SubItems  `json:"events"`
	Series      SubItems  `json:"series"`
	Stories     SubItems  `json:"stories"`
	URLs        []Link    `json:"urls"`
}

// Thumbnail locates a character image.
type Thumbnail struct {
	Path      string `json:"path"`
	Extension string `json:"extension"`
}

// URL builds the image URL for variant. An empty variant returns the
// full-size image.
func (t Thumbnail) URL(variant string) string {
	if t.Path == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(t.Path)
	if variant != "" {
		b.WriteByte('/')
		b.WriteString(variant)
	}
	if t.Extension != "" {
		b.WriteByte('.')
		b.WriteString(t.Extension)
	}
	return b.String()
}

// SubItems is a partial list of resources related to a character.
type SubItems struct {
	Available     int       `json:"available"`
	Returned      int       `json:"returned"`
	CollectionURI string    `json:"collectionURI"`
	Items         []SubItem `json:"items"`
}

// SubItem references one related resource.
type SubItem struct {
	ResourceURI string `json:"resourceURI"`
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
}

// Link is a public web page for a character.
type Link struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// timestampLayout is the format the API uses for modification dates.
const timestampLayout = "2006-01-02T15:04:05-0700"

// Timestamp is a modification date. Dates the API cannot represent, such as
// "-0001-11-30T00:00:00-0500", decode as the zero time.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON parses the API's date layout.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(timestampLayout, s)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339, s)
	}
	if err != nil {
		t.Time = time.Time{}
		return nil //nolint:nilerr // unparseable dates are treated as unknown
	}
	t.Time = parsed
	return nil
}

// MarshalJSON renders the date in the API's layout.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + t.Format(timestampLayout) + `"`), nil
}
