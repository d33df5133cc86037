// Package pipeline wires the analysis stages together: image inspection,
// prompt composition, remote inference, response validation and record
// assembly. One image in, one record or one terminal error out.
package pipeline

import (
	"context"

	"github.com/rs/zerolog"

	"bganalyzer/internal/analysis"
	"bganalyzer/internal/imagemeta"
	"bganalyzer/internal/parse"
	"bganalyzer/internal/prompt"
)

// Inference abstracts the remote multimodal service so tests can substitute
// a fake client.
type Inference interface {
	Analyze(ctx context.Context, asset *imagemeta.Asset, prompt string) (string, error)
}

// Pipeline holds no per-invocation state: each Run owns its asset, prompt
// and intermediate results exclusively, so invocations may run in parallel
// without coordination.
type Pipeline struct {
	composer *prompt.Composer
	client   Inference
	logger   zerolog.Logger
}

func New(client Inference, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		composer: prompt.NewComposer(),
		client:   client,
		logger:   logger,
	}
}

// Run analyzes one image. template may be empty, in which case the built-in
// instruction template is used. Format and template problems fail fast,
// before any remote call.
func (p *Pipeline) Run(ctx context.Context, data []byte, template string) (*analysis.Record, error) {
	asset, err := imagemeta.Load(data)
	if err != nil {
		return nil, err
	}
	p.logger.Debug().
		Str("format", string(asset.Meta.Format)).
		Int("width", asset.Meta.Width).
		Int("height", asset.Meta.Height).
		Msg("pipeline: image accepted")

	if template == "" {
		template = prompt.DefaultTemplate
	}
	instruction, err := p.composer.Compose(template, asset.Meta)
	if err != nil {
		return nil, err
	}

	raw, err := p.client.Analyze(ctx, asset, instruction)
	if err != nil {
		return nil, err
	}
	p.logger.Debug().Int("response_len", len(raw)).Msg("pipeline: inference complete")

	out, err := parse.ParseAndValidate(raw)
	if err != nil {
		return nil, err
	}
	return analysis.Assemble(asset.Meta, out.Category, out.Annotation), nil
}
