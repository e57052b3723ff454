package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// BatchInvalidate invalidates multiple patterns in batch
func BatchInvalidate(ctx context.Context, helper *CacheHelper, patterns []string) error {
	var lastErr error
	for _, pattern := range patterns {
		if err := helper.InvalidatePattern(ctx, pattern); err != nil {
			lastErr = err
			slog.ErrorContext(ctx, "Failed to invalidate pattern in batch",
				"error", err,
				"pattern", pattern)
		}
	}
	return lastErr
}

// InvalidateStudentCaches drops everything derived from a student's attempt
// history. Called after every recorded attempt, so it touches specific keys
// where possible and falls back to patterns only for the derived views.
func InvalidateStudentCaches(ctx context.Context, cm *CacheManager, studentID, skill string) {
	SafeDelete(ctx, cm.Mastery,
		fmt.Sprintf("student:%s:skill:%s", studentID, skill),
		fmt.Sprintf("student:%s:all", studentID))
	SafeInvalidatePattern(ctx, cm.Progress, fmt.Sprintf("student:%s:*", studentID))
	SafeInvalidatePattern(ctx, cm.Fast, fmt.Sprintf("review:%s:*", studentID))
}

// InvalidateMissionCache invalidates a student's mission for one plan date
func InvalidateMissionCache(ctx context.Context, cm *CacheManager, studentID, planDate string) {
	SafeDelete(ctx, cm.Mission,
		fmt.Sprintf("student:%s:date:%s", studentID, planDate))
	SafeInvalidatePattern(ctx, cm.Mission, fmt.Sprintf("student:%s:list:*", studentID))
}

// InvalidateCatalogCache drops the merged catalog after a refresh
func InvalidateCatalogCache(ctx context.Context, cm *CacheManager) {
	SafeDelete(ctx, cm.Catalog, "merged")
	SafeInvalidatePattern(ctx, cm.Catalog, "question:*")
	SafeInvalidatePattern(ctx, cm.Catalog, "skill:*")
}
