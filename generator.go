// Package receipts renders the archived submissions of form apps as tagged
// PDF receipts.
//
// A Request carries the form data, layouts, text resources and instance
// metadata of one submission; a Generator decodes it and draws the receipt:
//
//	gen, err := receipts.New(receipts.WithOrgNames(registry))
//	if err != nil {
//	    return err
//	}
//	err = gen.Generate(ctx, w, req)
//
// Missing or unmatched data never fails a receipt; the affected values are
// left empty. Malformed payloads fail before anything is drawn, and engine
// failures are reported as a *RenderError without partial output.
package receipts

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/lvillar/receipts/formdata"
	"github.com/lvillar/receipts/render"
	"github.com/lvillar/receipts/texts"
)

// A Generator renders receipts. It is safe for concurrent use.
type Generator struct {
	renderer *render.Renderer
	orgs     OrgNames
	log      *zap.Logger
}

// New returns a Generator configured by opts.
func New(opts ...Option) (*Generator, error) {
	cfg := &generatorConfig{
		render: render.Config{Compress: true},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.render.Logger = cfg.logger
	r, err := render.New(cfg.render)
	if err != nil {
		return nil, fmt.Errorf("receipts: %w", err)
	}
	return &Generator{renderer: r, orgs: cfg.orgs, log: cfg.logger}, nil
}

// Generate renders the receipt for req and writes the PDF to w.
func (g *Generator) Generate(ctx context.Context, w io.Writer, req *Request) error {
	start := time.Now()
	job, err := g.Job(req)
	if err != nil {
		return err
	}
	if err := g.renderer.Render(ctx, w, job); err != nil {
		g.log.Error("rendering receipt failed", zap.String("instance", job.Instance.ID), zap.Error(err))
		return newRenderError("Generate", err)
	}
	g.log.Info("rendered receipt",
		zap.String("instance", job.Instance.ID),
		zap.String("language", job.Language),
		zap.Int("layouts", job.Layouts.Len()),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// Job validates req and decodes it into a render job.
func (g *Generator) Job(req *Request) (*render.Job, error) {
	if req == nil || req.Instance == nil {
		return nil, ErrNoInstance
	}
	layouts := req.layouts()
	if layouts == nil {
		return nil, ErrNoLayout
	}

	var doc *formdata.Document
	if req.Data != "" {
		var err error
		if doc, err = formdata.ParseBase64(req.Data); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
		}
	}

	lang := req.language()
	orgName := req.Instance.Org
	if g.orgs != nil {
		orgName = g.orgs.FullName(req.Instance.Org, lang)
	}
	return &render.Job{
		Instance:  req.Instance,
		Party:     req.Party,
		UserParty: req.userParty(),
		Language:  lang,
		OrgName:   orgName,
		Texts:     texts.Prepare(req.TextResources, doc),
		Data:      doc,
		Layouts:   layouts,
		Settings:  req.LayoutSettings,
		Options:   req.OptionsDictionary,

		SingleLayout: req.FormLayouts.Len() == 0,
	}, nil
}
