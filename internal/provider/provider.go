package provider

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/internal/model"
)

// Source is one external feed of dashboard items. Name doubles as the
// key the fetched items are filed under.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]model.Item, error)
}

// FetchAll fans the sources out over a bounded worker pool and joins
// before returning. A source that errors contributes an empty list: a
// dead provider degrades its own section, never the whole dashboard.
func FetchAll(ctx context.Context, sources []Source, workers int, logger *zap.Logger) map[string][]model.Item {
	if workers < 1 {
		workers = 1
	}

	results := make([][]model.Item, len(sources))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, src := range sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			items, err := src.Fetch(ctx)
			if err != nil {
				logger.Warn("Source fetch failed, section degrades to empty",
					zap.String("source", src.Name()),
					zap.Error(err),
				)
				return
			}
			results[i] = items
		}(i, src)
	}
	wg.Wait()

	out := make(map[string][]model.Item, len(sources))
	for i, src := range sources {
		items := results[i]
		if items == nil {
			items = []model.Item{}
		}
		out[src.Name()] = items
	}
	return out
}
