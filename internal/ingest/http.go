package ingest

import (
	"context"
	"errors"

	"github.com/AngelCh415/metaads-dashboard/internal/utils"
)

// GetWithRetry fetches url, retrying transport errors, 5xx and 429 with
// exponential backoff. Other statuses fail at once.
func GetWithRetry(ctx context.Context, c HTTPClient, b utils.Backoff, url string, limit int64) ([]byte, error) {
	var body []byte
	err := b.Do(ctx, func(int) error {
		var err error
		body, err = fetch(ctx, c, url, limit)
		var se *StatusError
		if errors.As(err, &se) && !se.Retryable() {
			return utils.Permanent(err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}
