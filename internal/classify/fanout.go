package classify

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/caassistant/autoledger/internal/logger"
	"github.com/caassistant/autoledger/internal/statement"
)

// Options bounds the classification fan-out.
type Options struct {
	// Concurrency is the maximum number of in-flight requests.
	Concurrency int

	// Timeout bounds each individual request.
	Timeout time.Duration
}

const (
	DefaultConcurrency = 4
	DefaultTimeout     = 15 * time.Second
)

func (o Options) withDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// ClassifyFlagged issues one suggestion request per flagged transaction,
// fanned out up to opts.Concurrency at a time, each bounded by
// opts.Timeout. The returned slice is aligned with flagged; every slot
// a request could not fill holds SuggestionUnavailable.
//
// This never returns an error: classification is best-effort. When ctx
// is done, outstanding requests are abandoned and their slots keep the
// sentinel, so a pipeline deadline still yields a complete result.
func ClassifyFlagged(ctx context.Context, suggester Suggester, flagged []statement.Flagged, opts Options) []string {
	results := make([]string, len(flagged))
	for i := range results {
		results[i] = SuggestionUnavailable
	}
	if suggester == nil || len(flagged) == 0 {
		return results
	}

	opts = opts.withDefaults()
	log := logger.FromContext(ctx)

	var g errgroup.Group
	g.SetLimit(opts.Concurrency)

	for i, f := range flagged {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			callCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
			defer cancel()

			suggestion, err := suggester.Suggest(callCtx, f.Narration)
			if err != nil {
				log.Warn().
					Err(err).
					Int("tx_index", f.TxIndex).
					Msg("Classification unavailable, using fallback")
				return nil
			}
			// Each slot is written by exactly one goroutine.
			results[i] = suggestion
			return nil
		})
	}

	// Workers only ever return nil; Wait is a join point.
	_ = g.Wait()

	return results
}
