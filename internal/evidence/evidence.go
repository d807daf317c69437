// Package evidence turns collected runs into RunEvidence: brand presence from
// the answer text and classified citations from the declared URLs plus any
// URLs written into the answer itself.
package evidence

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/brandlens/internal/citation"
	"github.com/dshills/brandlens/internal/mention"
	"github.com/dshills/brandlens/internal/schema"
	"github.com/dshills/brandlens/internal/urlextract"
)

// Build derives the evidence for one run. Declared citations are trimmed and
// de-duplicated; blank entries are dropped. The citation list holds the
// declared URLs first, then URLs found only in the answer text.
func Build(in schema.RunInput, brand string) schema.RunEvidence {
	declared := urlextract.Merge(in.Citations, nil)
	urls := urlextract.Merge(declared, urlextract.Extract(in.Answer))
	return schema.RunEvidence{
		RunID:             in.ID,
		Prompt:            in.Prompt,
		AnswerText:        in.Answer,
		DeclaredCitations: declared,
		Presence:          mention.Detect(in.Answer, brand, declared),
		Citations:         citation.ClassifyAll(urls, brand),
	}
}

// BuildAll builds evidence for every run in order. The result is never nil.
func BuildAll(runs []schema.RunInput, brand string) []schema.RunEvidence {
	out := make([]schema.RunEvidence, 0, len(runs))
	for _, r := range runs {
		out = append(out, Build(r, brand))
	}
	return out
}

// BuildAllConcurrent is BuildAll spread over up to workers goroutines. Output
// order matches runs. Only cancellation of ctx can make it fail.
func BuildAllConcurrent(ctx context.Context, runs []schema.RunInput, brand string, workers int) ([]schema.RunEvidence, error) {
	if workers < 2 || len(runs) < 2 {
		return BuildAll(runs, brand), ctx.Err()
	}
	out := make([]schema.RunEvidence, len(runs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range runs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = Build(runs[i], brand)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
