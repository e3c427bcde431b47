// Package snapshot writes per-cycle JSON files so scraped data survives
// for offline inspection and replay.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/pkg/errors"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// LatestFileName is the overwritten pointer to the most recent snapshot
const LatestFileName = "latest-settlement-data.json"

// Writer persists sync cycle output as JSON files under a directory
type Writer struct {
	dir    string
	logger ectologger.Logger
}

// NewWriter creates a snapshot writer rooted at dir
func NewWriter(dir string, logger ectologger.Logger) *Writer {
	return &Writer{
		dir:    dir,
		logger: logger,
	}
}

// Snapshot is the combined per-cycle document
type Snapshot struct {
	SettlementID string                           `json:"settlement_id"`
	CapturedAt   time.Time                        `json:"captured_at"`
	Items        []models.InventoryItemRecord     `json:"items"`
	Members      []models.SettlementMemberRecord  `json:"members"`
	Skills       []models.SettlementSkillRecord   `json:"skills"`
}

// Write persists one cycle's records: a timestamped combined file, one
// file per record type, and an overwritten latest file.
func (w *Writer) Write(ctx context.Context, snap *Snapshot) error {
	ctx, span := tracing.StartSpan(ctx, "snapshot.Writer.Write")
	defer span.End()

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create snapshot directory")
	}

	stamp := snap.CapturedAt.UTC().Format("2006-01-02T15-04-05Z")

	files := map[string]any{
		fmt.Sprintf("settlement-data-%s.json", stamp): snap,
		fmt.Sprintf("items-%s.json", stamp):           snap.Items,
		fmt.Sprintf("members-%s.json", stamp):         snap.Members,
		fmt.Sprintf("skills-%s.json", stamp):          snap.Skills,
		LatestFileName:                                snap,
	}

	for name, payload := range files {
		if err := w.writeFile(name, payload); err != nil {
			return err
		}
	}

	w.logger.WithContext(ctx).WithFields(map[string]any{
		"settlement_id": snap.SettlementID,
		"item_count":    len(snap.Items),
		"member_count":  len(snap.Members),
		"skill_count":   len(snap.Skills),
	}).Debug("Wrote settlement snapshot")

	return nil
}

// ReadLatest loads the most recent snapshot, if one exists
func (w *Writer) ReadLatest() (*Snapshot, error) {
	data, err := os.ReadFile(filepath.Join(w.dir, LatestFileName))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read latest snapshot")
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrap(err, "failed to decode latest snapshot")
	}

	return &snap, nil
}

func (w *Writer) writeFile(name string, payload any) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode snapshot file")
	}

	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write snapshot file %s", name)
	}

	return nil
}
