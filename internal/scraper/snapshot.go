package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/chiquinho-ai/chiquinho/internal/core/objectstore"
	"github.com/chiquinho-ai/chiquinho/internal/models"
)

// Snapshot persists one source's harvest as an indented JSON array
// (<source>_output.json). Snapshots are audit/replay artifacts only; the
// pipeline never reads them back, and each source is written independently
// so one source's downstream failure cannot discard another's harvest.
func Snapshot(ctx context.Context, store objectstore.ObjectStore, source string, docs []models.Document) error {
	if len(docs) == 0 {
		return nil
	}

	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	key := fmt.Sprintf("%s_output.json", strings.ToLower(source))
	location, err := store.Put(ctx, key, data, "application/json")
	if err != nil {
		return fmt.Errorf("write snapshot %s: %w", key, err)
	}

	log.Printf("scraper: snapshot %s written (%d docs)", location, len(docs))
	return nil
}
