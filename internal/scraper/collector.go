package scraper

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/chiquinho-ai/chiquinho/internal/models"
)

// Collector harvests one source portal into Document records. A collector
// either returns fully-formed documents or an error; it never emits
// partially-built records.
type Collector interface {
	Name() string
	Collect(ctx context.Context) ([]models.Document, error)
}

// Run executes all collectors concurrently with at most maxWorkers in
// flight and returns the union of the successful harvests once every
// collector has finished. A failing collector is logged under its name and
// contributes zero documents; the others are unaffected.
//
// onSource, when non-nil, fires once per successful source with that
// source's documents, so callers can persist each harvest independently of
// the others.
func Run(ctx context.Context, collectors []Collector, maxWorkers int, onSource func(name string, docs []models.Document)) []models.Document {
	if maxWorkers <= 0 {
		maxWorkers = 3
	}

	var (
		mu    sync.Mutex
		union []models.Document
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	for _, c := range collectors {
		g.Go(func() error {
			log.Printf("scraper: %s started", c.Name())
			docs, err := c.Collect(gctx)
			if err != nil {
				// Per-source failure isolation: absorb, log, move on.
				log.Printf("scraper: %s failed: %v", c.Name(), err)
				return nil
			}
			log.Printf("scraper: %s finished with %d documents", c.Name(), len(docs))

			if onSource != nil {
				onSource(c.Name(), docs)
			}

			mu.Lock()
			union = append(union, docs...)
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return union
}
