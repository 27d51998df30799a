package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/relplace/pkg/cache"
	"github.com/matzehuels/relplace/pkg/design"
	"github.com/matzehuels/relplace/pkg/observability"
)

// LoadDesign reads and validates the design file at path. It also returns
// the content hash used for cache keys.
func LoadDesign(ctx context.Context, path string) (d *design.Design, hash string, err error) {
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, path)
	start := time.Now()
	defer func() {
		blocks := 0
		if d != nil {
			blocks = len(d.Blocks)
		}
		hooks.OnLoadComplete(ctx, path, blocks, time.Since(start), err)
	}()

	d, data, err := design.LoadBytes(path)
	if err != nil {
		return nil, "", err
	}
	return d, cache.Hash(data), nil
}
