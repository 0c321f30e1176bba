package collage

import (
	"context"

	"golang.org/x/sync/errgroup"

	"pixshop/internal/domain"
	"pixshop/internal/imaging"
	"pixshop/internal/infra"
)

const noImagesMessage = "The AI failed to generate any images for the collage. This might be due to safety filters."

// Executor runs a single request, normally the fallback orchestrator.
type Executor interface {
	Run(ctx context.Context, req domain.Request) domain.Result
}

// Entry is one successful style.
type Entry struct {
	Style string
	Image imaging.Resource
}

// Outcome holds the successful entries in style order.
type Outcome struct {
	Entries []Entry
}

// Runner fans a source image out to many stylize requests.
type Runner struct {
	exec   Executor
	logger *infra.Logger
}

func NewRunner(exec Executor, logger *infra.Logger) *Runner {
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Runner{exec: exec, logger: logger}
}

// Run stylizes src once per style concurrently. Failed branches are logged and
// dropped; the call fails only when no branch produced an image.
func (r *Runner) Run(ctx context.Context, src imaging.Resource, styles []Style) (Outcome, error) {
	if len(styles) == 0 {
		styles = DefaultStyles()
	}
	slots := make([]*Entry, len(styles))

	// Branches never return an error so a failure cannot cancel siblings.
	var g errgroup.Group
	for i, style := range styles {
		g.Go(func() error {
			req, err := domain.NewStylize(src, style.Prompt)
			if err != nil {
				r.logger.Error().Err(err).Str("style", style.Name).Msg("collage: invalid style request")
				return nil
			}
			result := r.exec.Run(ctx, req)
			img, ok := result.Image()
			if !ok {
				r.logger.Error().
					Str("style", style.Name).
					Str("reason", result.Failure().Text()).
					Msg("collage: style generation failed")
				return nil
			}
			slots[i] = &Entry{Style: style.Name, Image: img.WithName(fileName(style.Name, img))}
			return nil
		})
	}
	_ = g.Wait()

	out := Outcome{Entries: make([]Entry, 0, len(styles))}
	for _, slot := range slots {
		if slot != nil {
			out.Entries = append(out.Entries, *slot)
		}
	}
	if len(out.Entries) == 0 {
		return Outcome{}, domain.NewFailure(domain.EmptyResponse, "", noImagesMessage, nil)
	}
	r.logger.Info().
		Int("requested", len(styles)).
		Int("generated", len(out.Entries)).
		Msg("collage: completed")
	return out, nil
}
