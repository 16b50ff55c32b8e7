package service

import (
	"context"

	"github.com/threadly-dev/threadly/shared/logger"
)

// ViewInvalidator drops cached renderings of logical views.
type ViewInvalidator interface {
	Invalidate(ctx context.Context, paths ...string) error
}

// invalidateViews runs after a committed mutation, so a failure is only logged.
func invalidateViews(ctx context.Context, views ViewInvalidator, paths ...string) {
	seen := make(map[string]struct{}, len(paths))
	unique := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		unique = append(unique, p)
	}
	if len(unique) == 0 {
		return
	}
	if err := views.Invalidate(ctx, unique...); err != nil {
		logger.Log.Warn("view invalidation failed", "paths", unique, "error", err)
	}
}
