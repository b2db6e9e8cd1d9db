package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chiquinho-ai/chiquinho/internal/config"
	"github.com/chiquinho-ai/chiquinho/internal/core/objectstore"
	"github.com/chiquinho-ai/chiquinho/internal/models"
	"github.com/chiquinho-ai/chiquinho/internal/scraper"
	"github.com/chiquinho-ai/chiquinho/internal/scraper/deg"
	"github.com/chiquinho-ai/chiquinho/internal/scraper/saa"
	"github.com/chiquinho-ai/chiquinho/internal/scraper/sei"
)

// deliveryBatchSize bounds how many documents each POST to the ingest API
// carries, so a single oversized request can't take the whole harvest down.
const deliveryBatchSize = 50

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		<-c
		cancel()
	}()

	cfg := config.LoadConfig()

	var snapshots objectstore.ObjectStore
	if cfg.BucketName != "" {
		s3Store, err := objectstore.NewS3Store(ctx, cfg)
		if err != nil {
			log.Fatalf("s3 snapshot store: %v", err)
		}
		snapshots = s3Store
	} else {
		snapshots = objectstore.NewDiskStore(cfg.SnapshotDir)
	}

	collectors := []scraper.Collector{
		deg.New(cfg.ScrapeQuery, 1),
		saa.New(),
		sei.New(nil, ""),
	}

	docs := scraper.Run(ctx, collectors, 3, func(name string, sourceDocs []models.Document) {
		if err := scraper.Snapshot(ctx, snapshots, name, sourceDocs); err != nil {
			log.Printf("scraper: snapshot for %s failed: %v", name, err)
		}
	})
	if len(docs) == 0 {
		log.Println("scraper: no documents collected, nothing to deliver")
		return
	}

	log.Printf("scraper: collected %d documents, delivering to %s", len(docs), cfg.IngestURL)
	if err := deliver(ctx, cfg.IngestURL, docs); err != nil {
		log.Fatalf("scraper: delivery failed: %v", err)
	}
}

// deliver posts the harvest to the ingest API in batches. A failed batch is
// logged and skipped; ingestion is idempotent, so the next run re-covers it.
func deliver(ctx context.Context, ingestURL string, docs []models.Document) error {
	client := &http.Client{Timeout: 2 * time.Minute}

	delivered := 0
	failed := 0
	for start := 0; start < len(docs); start += deliveryBatchSize {
		end := start + deliveryBatchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[start:end]

		if err := postBatch(ctx, client, ingestURL, batch); err != nil {
			log.Printf("scraper: batch %d-%d failed: %v", start, end, err)
			failed += len(batch)
			continue
		}
		delivered += len(batch)
	}

	log.Printf("scraper: delivered %d documents (%d failed)", delivered, failed)
	if delivered == 0 {
		return fmt.Errorf("all %d documents failed to deliver", len(docs))
	}
	return nil
}

func postBatch(ctx context.Context, client *http.Client, ingestURL string, batch []models.Document) error {
	body, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ingestURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("ingest API returned %d: %s", resp.StatusCode, msg)
	}

	var summary models.IngestSummary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err == nil {
		log.Printf("scraper: batch ingested (%d chunks embedded, %d points written)",
			summary.ChunksEmbedded, summary.PointsWritten)
	}
	return nil
}
