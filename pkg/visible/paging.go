package visible

import (
	"context"

	"go.uber.org/zap"
)

// drainPages walks a page-counter paginated endpoint until the server-
// reported total page count is reached. fetch receives the 1-based page
// number and returns that page's items plus the total page count (0 is
// treated as 1, matching an absent meta block).
//
// A failed page is logged and ends the walk; everything accumulated up to
// that point is returned. Read endpoints are warning-path only, so partial
// data beats an aborted run.
func drainPages[T any](ctx context.Context, what string, fetch func(page int) ([]T, int, error)) []T {
	var all []T
	for page := 1; ; page++ {
		if ctx.Err() != nil {
			break
		}
		items, totalPages, err := fetch(page)
		if err != nil {
			zap.L().Warn("visible: page fetch failed",
				zap.String("resource", what),
				zap.Int("page", page),
				zap.Error(err),
			)
			break
		}
		all = append(all, items...)

		if totalPages < 1 {
			totalPages = 1
		}
		if page >= totalPages {
			break
		}
	}
	return all
}

func warnFetch(_ context.Context, what string, err error) {
	zap.L().Warn("visible: fetch failed", zap.String("resource", what), zap.Error(err))
}
