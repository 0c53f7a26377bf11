package hero

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const spiderMan = `{
	"id": 1009610,
	"name": "Spider-Man",
	"description": "Bitten by a radioactive spider.",
	"modified": "2020-07-21T10:30:10-0400",
	"thumbnail": {"path": "http://i.annihil.us/u/prod/marvel/i/mg/3/50/526548a343e4b", "extension": "jpg"},
	"resourceURI": "http://gateway.marvel.com/v1/public/characters/1009610",
	"comics": {
		"available": 4000,
		"returned": 1,
		"collectionURI": "http://gateway.marvel.com/v1/public/characters/1009610/comics",
		"items": [{"resourceURI": "http://gateway.marvel.com/v1/public/comics/62304", "name": "Amazing Spider-Man (1999) #558"}]
	},
	"events": {"available": 0, "returned": 0, "collectionURI": "", "items": []},
	"series": {"available": 0, "returned": 0, "collectionURI": "", "items": []},
	"stories": {
		"available": 1,
		"returned": 1,
		"collectionURI": "http://gateway.marvel.com/v1/public/characters/1009610/stories",
		"items": [{"resourceURI": "http://gateway.marvel.com/v1/public/stories/483", "name": "Interior #483", "type": "interiorStory"}]
	},
	"urls": [{"type": "detail", "url": "http://marvel.com/characters/54/spider-man"}]
}`

func TestHero_Decode(t *testing.T) {
	var h Hero
	require.NoError(t, json.Unmarshal([]byte(spiderMan), &h))

	assert.Equal(t, 1009610, h.ID)
	assert.Equal(t, "Spider-Man", h.Name)
	assert.Equal(t, 4000, h.Comics.Available)
	require.Len(t, h.Comics.Items, 1)
	assert.Equal(t, "Amazing Spider-Man (1999) #558", h.Comics.Items[0].Name)
	assert.Equal(t, "interiorStory", h.Stories.Items[0].Type)
	assert.Equal(t, "jpg", h.Thumbnail.Extension)
	require.Len(t, h.URLs, 1)
	assert.Equal(t, "detail", h.URLs[0].Type)

	want := time.Date(2020, 7, 21, 14, 30, 10, 0, time.UTC)
	assert.True(t, h.Modified.Equal(want), "modified = %v", h.Modified)
}

func TestTimestamp_Unrepresentable(t *testing.T) {
	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`"-0001-11-30T00:00:00-0500"`), &ts))
	assert.True(t, ts.IsZero())

	require.NoError(t, json.Unmarshal([]byte(`""`), &ts))
	assert.True(t, ts.IsZero())
}

func TestTimestamp_RoundTrip(t *testing.T) {
	in := Timestamp{Time: time.Date(2014, 4, 29, 14, 18, 17, 0, time.FixedZone("", -4*3600))}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, `"2014-04-29T14:18:17-0400"`, string(data))

	var out Timestamp
	require.NoError(t, json.Unmarshal(data, &out))
	assert.True(t, in.Equal(out.Time))
}

func TestThumbnail_URL(t *testing.T) {
	thumb := Thumbnail{Path: "http://i.annihil.us/u/prod/marvel/i/mg/3/50/526548a343e4b", Extension: "jpg"}

	assert.Equal(t, "http://i.annihil.us/u/prod/marvel/i/mg/3/50/526548a343e4b/portrait_small.jpg", thumb.URL(PortraitSmall))
	assert.Equal(t, "http://i.annihil.us/u/prod/marvel/i/mg/3/50/526548a343e4b.jpg", thumb.URL(""))
	assert.Equal(t, "", Thumbnail{}.URL(Detail))
}
