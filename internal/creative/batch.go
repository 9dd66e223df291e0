package creative

import (
	"context"
	"sync"

	"scaler/internal/domain"
)

// BatchVariant is one requested creative within a batch. The prompt is shared
// across the batch; each variant contributes its own overlay and tuning.
type BatchVariant struct {
	Overlay domain.OverlayConfig
	Width   int
	Height  int
	Seed    *int
}

// CreativeBatch describes one batch generation run.
type CreativeBatch struct {
	Prompt         string
	NegativePrompt string
	Variants       []BatchVariant
}

// CreativeOutcome tags one batch item's settlement. Exactly one of Creative
// or Err is populated; the zero value means the item has not settled yet.
type CreativeOutcome struct {
	Creative *domain.AdCreative
	Err      string
}

// Settled reports whether the item reached a terminal result.
func (o CreativeOutcome) Settled() bool {
	return o.Creative != nil || o.Err != ""
}

// Failed reports whether the item settled with an error.
func (o CreativeOutcome) Failed() bool {
	return o.Err != ""
}

// BatchOptions tunes a batch run. OnProgress fires once per settled item with
// a monotonically increasing completed count; OnResult fires once per item as
// it settles, carrying the input-order index.
type BatchOptions struct {
	Concurrency int
	OnProgress  func(completed, total int)
	OnResult    func(index int, outcome CreativeOutcome)
}

const defaultCreativeConcurrency = 3

// GenerateBatch runs the pipeline for every variant with bounded parallelism.
// Variants are processed in contiguous chunks of the concurrency size; a new
// chunk starts only after every item of the previous chunk has settled, which
// caps peak in-flight provider requests. A single item's failure never aborts
// the batch: it settles as a failure-tagged outcome. The returned slice has
// one entry per variant, in input order.
func (c *Composer) GenerateBatch(ctx context.Context, batch CreativeBatch, opts BatchOptions) []CreativeOutcome {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = defaultCreativeConcurrency
	}

	total := len(batch.Variants)
	outcomes := make([]CreativeOutcome, total)

	var (
		mu        sync.Mutex
		completed int
	)
	settle := func(index int, outcome CreativeOutcome) {
		mu.Lock()
		outcomes[index] = outcome
		completed++
		done := completed
		mu.Unlock()
		if opts.OnResult != nil {
			opts.OnResult(index, outcome)
		}
		if opts.OnProgress != nil {
			opts.OnProgress(done, total)
		}
	}

	for chunkStart := 0; chunkStart < total; chunkStart += concurrency {
		chunkEnd := chunkStart + concurrency
		if chunkEnd > total {
			chunkEnd = total
		}

		var wg sync.WaitGroup
		for i := chunkStart; i < chunkEnd; i++ {
			wg.Add(1)
			go func(index int) {
				defer wg.Done()
				variant := batch.Variants[index]
				result, err := c.GenerateAdCreative(ctx, CreativeInput{
					Prompt:         batch.Prompt,
					NegativePrompt: batch.NegativePrompt,
					Width:          variant.Width,
					Height:         variant.Height,
					Seed:           variant.Seed,
					Overlay:        variant.Overlay,
				})
				if err != nil {
					settle(index, CreativeOutcome{Err: err.Error()})
					return
				}
				settle(index, CreativeOutcome{Creative: result})
			}(i)
		}
		wg.Wait()

		if ctx.Err() != nil {
			break
		}
	}

	return outcomes
}

// CompositeItem is one overlay request within a composite-only batch.
type CompositeItem struct {
	BaseImageURL string
	Overlay      domain.OverlayConfig
}

const defaultCompositeConcurrency = 5

// CompositeBatch applies overlays to already-generated base images with
// bounded parallelism. Failed items settle as failure-shaped results (status
// failed, error populated) instead of aborting the batch.
func (c *Composer) CompositeBatch(ctx context.Context, items []CompositeItem, concurrency int, onProgress func(completed, total int)) []domain.CompositeResult {
	if concurrency <= 0 {
		concurrency = defaultCompositeConcurrency
	}

	total := len(items)
	results := make([]domain.CompositeResult, total)

	var (
		mu        sync.Mutex
		completed int
	)
	settle := func(index int, result domain.CompositeResult) {
		mu.Lock()
		results[index] = result
		completed++
		done := completed
		mu.Unlock()
		if onProgress != nil {
			onProgress(done, total)
		}
	}

	for chunkStart := 0; chunkStart < total; chunkStart += concurrency {
		chunkEnd := chunkStart + concurrency
		if chunkEnd > total {
			chunkEnd = total
		}

		var wg sync.WaitGroup
		for i := chunkStart; i < chunkEnd; i++ {
			wg.Add(1)
			go func(index int) {
				defer wg.Done()
				item := items[index]
				result, err := c.overlay.Apply(ctx, item.BaseImageURL, item.Overlay)
				if err != nil {
					settle(index, domain.CompositeResult{
						Status:       domain.CompositeFailed,
						BaseImageURL: item.BaseImageURL,
						Overlay:      item.Overlay,
						Error:        err.Error(),
					})
					return
				}
				settle(index, *result)
			}(i)
		}
		wg.Wait()

		if ctx.Err() != nil {
			break
		}
	}

	return results
}
