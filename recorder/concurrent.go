package recorder

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultEnrichConcurrency bounds concurrent detail lookups.
const DefaultEnrichConcurrency = 10

// EnrichRecordings replaces each listed recording with its full detail
// record, fetching concurrently. A failed lookup leaves the original entry
// in place so one bad record does not sink the batch.
func (c *Client) EnrichRecordings(ctx context.Context, recordings []Recording) error {
	if len(recordings) == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(DefaultEnrichConcurrency)

	var mu sync.Mutex

	for i := range recordings {
		i := i
		g.Go(func() error {
			detail, err := c.GetRecordingByID(ctx, recordings[i].RecordingID)
			if err != nil {
				c.logger.Warn().
					Err(err).
					Str("recording_id", recordings[i].RecordingID).
					Msg("Failed to get recording details")
				return nil
			}

			mu.Lock()
			recordings[i] = detail
			mu.Unlock()
			return nil
		})
	}

	return g.Wait()
}
