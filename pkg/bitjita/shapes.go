package bitjita

import (
	"encoding/json"
	"fmt"
)

// FeedID accepts both the numeric and string-encoded id forms the
// upstream feeds have served.
type FeedID string

func (f *FeedID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FeedID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("feed id is neither string nor number: %s", string(data))
	}
	*f = FeedID(n.String())
	return nil
}

func (f FeedID) String() string {
	return string(f)
}

// RawFeedEntry is one record from the items or cargo feed. The upstream
// fields are sparse and have drifted over time, so everything optional
// is a pointer.
type RawFeedEntry struct {
	ID            FeedID      `json:"id"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	Tier          *int        `json:"tier"`
	Rarity        int         `json:"rarity"`
	RarityStr     string      `json:"rarityStr"`
	IconAssetName string      `json:"iconAssetName"`
	Category      string      `json:"category"`
	Tag           string      `json:"tag"`
	Value         *float64    `json:"value"`
	Volume        *int        `json:"volume"`
}

// shapeMatcher decodes one historical response envelope. Matchers are
// tried in order; the first one whose keys are present wins.
type shapeMatcher struct {
	name   string
	decode func(data []byte) ([]RawFeedEntry, bool)
}

func bareArray(data []byte) ([]RawFeedEntry, bool) {
	var entries []RawFeedEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func keyedArray(key string) func(data []byte) ([]RawFeedEntry, bool) {
	return func(data []byte) ([]RawFeedEntry, bool) {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil, false
		}
		raw, ok := envelope[key]
		if !ok {
			return nil, false
		}
		var entries []RawFeedEntry
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, false
		}
		return entries, true
	}
}

// feedShapes is the ordered list of envelopes the upstream API has used.
var feedShapes = []shapeMatcher{
	{name: "bare_array", decode: bareArray},
	{name: "items", decode: keyedArray("items")},
	{name: "cargos", decode: keyedArray("cargos")},
	{name: "cargo", decode: keyedArray("cargo")},
	{name: "data", decode: keyedArray("data")},
}

// DecodeFeed decodes a feed response body, probing each known envelope
// shape in order. It returns the entries and the name of the shape that
// matched.
func DecodeFeed(data []byte) ([]RawFeedEntry, string, error) {
	for _, shape := range feedShapes {
		if entries, ok := shape.decode(data); ok {
			return entries, shape.name, nil
		}
	}
	return nil, "", fmt.Errorf("feed response matched no known envelope shape")
}
