package llm

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dshills/brandlens/internal/audit"
	"github.com/dshills/brandlens/internal/prompts"
	"github.com/dshills/brandlens/internal/schema"
)

// Asker is the part of Client the Collector needs.
type Asker interface {
	Ask(ctx context.Context, prompt string) (*schema.Answer, error)
}

// Collector runs prompts against a model one at a time. Request pacing is the
// Client's job, since one prompt may cost two requests when a repair is needed.
type Collector struct {
	asker          Asker
	requireSources bool
}

// NewCollector returns a Collector over asker. With requireSources, answers
// that cite nothing are logged as warnings.
func NewCollector(asker Asker, requireSources bool) *Collector {
	return &Collector{asker: asker, requireSources: requireSources}
}

// Collect asks every prompt in order and returns one run per usable answer.
// Prompts whose answer stays invalid after repair are skipped with a warning.
// Any other failure stops collection; the runs gathered so far are returned
// with the error.
func (c *Collector) Collect(ctx context.Context, ps []prompts.Prompt) ([]schema.RunInput, error) {
	runs := make([]schema.RunInput, 0, len(ps))
	log := zap.L().With(zap.Int("prompts", len(ps)))

	for i, p := range ps {
		if err := ctx.Err(); err != nil {
			return runs, eris.Wrap(err, "llm: collect")
		}

		start := time.Now()
		ans, err := c.asker.Ask(ctx, p.Text)
		if errors.Is(err, ErrInvalidModelOutput) {
			log.Warn("llm: skipping prompt with invalid model output",
				zap.String("prompt_id", p.ID),
				zap.Int("index", i),
			)
			continue
		}
		if err != nil {
			return runs, eris.Wrapf(err, "llm: ask %s", p.ID)
		}

		if c.requireSources && len(ans.Citations) == 0 {
			log.Warn("llm: answer cites no sources", zap.String("prompt_id", p.ID))
		}

		runs = append(runs, schema.RunInput{
			ID:        audit.RunID(len(runs) + 1),
			Prompt:    p.Text,
			Answer:    ans.Text,
			Citations: ans.Citations,
		})
		log.Info("llm: collected answer",
			zap.String("prompt_id", p.ID),
			zap.Int("citations", len(ans.Citations)),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
	return runs, nil
}
