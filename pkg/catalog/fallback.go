package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/Ramsey-B/fern/pkg/bitjita"
)

// cargoFallbackData is a frozen snapshot of the cargo feed, bundled so a
// cargo-feed outage does not empty the catalog.
//
//go:embed cargo_fallback.json
var cargoFallbackData []byte

func fallbackCargo() ([]bitjita.RawFeedEntry, error) {
	var entries []bitjita.RawFeedEntry
	if err := json.Unmarshal(cargoFallbackData, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode bundled cargo dataset: %w", err)
	}
	return entries, nil
}
