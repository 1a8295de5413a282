package cache

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/KaramelBytes/habitlens-cli/internal/dataset"
	"github.com/KaramelBytes/habitlens-cli/internal/source"
)

// Loader parses archives through a Cache so identical bytes load once.
type Loader struct {
	Cache  Cache
	Logger *slog.Logger
}

// Load returns the dataset for a, reporting whether it came from the cache.
// A nil Cache disables memoization.
func (l *Loader) Load(ctx context.Context, a *source.Archive) (*dataset.Dataset, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	key := a.Key()
	if l.Cache != nil {
		if ds, ok := l.Cache.Get(ctx, key); ok {
			l.logger().Debug("dataset cache hit", "archive", a.Name, "key", key[:12])
			return ds, true, nil
		}
	}
	ds, err := dataset.Load(bytes.NewReader(a.Data), int64(len(a.Data)))
	if err != nil {
		return nil, false, err
	}
	if l.Cache != nil {
		if err := l.Cache.Put(ctx, key, ds); err != nil {
			l.logger().Warn("dataset cache write failed", "error", err)
		}
	}
	l.logger().Info("dataset loaded", "archive", a.Name, "csv", ds.Name, "rows", ds.Len(), "columns", len(ds.Columns()))
	return ds, false, nil
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}
