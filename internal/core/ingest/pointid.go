package ingest

import (
	"fmt"

	"github.com/google/uuid"
)

// PointID derives the vector-index point id from (url, chunk index) as a
// UUIDv5 over the URL namespace. The same pair always yields the same id,
// so re-ingesting unchanged content overwrites points in place instead of
// duplicating them. Chunk boundaries depend on MAX_CHARS; changing it
// produces a disjoint id space and calls for a recreate run.
func PointID(url string, chunkIndex int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%s#%d", url, chunkIndex))).String()
}
