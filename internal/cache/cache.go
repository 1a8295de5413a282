// Package cache memoizes loaded datasets by archive content.
package cache

import (
	"context"

	"github.com/KaramelBytes/habitlens-cli/internal/dataset"
)

// Cache stores datasets keyed by source.Key of the archive bytes.
type Cache interface {
	Get(ctx context.Context, key string) (*dataset.Dataset, bool)
	Put(ctx context.Context, key string, ds *dataset.Dataset) error
}
