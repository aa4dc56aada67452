// Package service assembles the receipt generator, event forwarder and
// organisation registry from the configuration.
package service

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/lvillar/receipts"
	"github.com/lvillar/receipts/eventlog"
	"github.com/lvillar/receipts/internal/config"
	"github.com/lvillar/receipts/orgs"
	"github.com/lvillar/receipts/render"
)

// Service holds the assembled components.
type Service struct {
	Generator *receipts.Generator
	Events    *eventlog.Forwarder
	// Orgs is nil when no organisation table is configured.
	Orgs *orgs.Registry

	log    *zap.Logger
	closer func() error
}

// New builds the components described by cfg.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*Service, error) {
	s := &Service{log: log, closer: func() error { return nil }}

	var loader orgs.Loader
	switch {
	case cfg.Orgs.File != "":
		loader = orgs.FileLoader{Path: cfg.Orgs.File}
	case cfg.Orgs.URL != "":
		loader = orgs.HTTPLoader{URL: cfg.Orgs.URL}
	}
	opts := []receipts.Option{
		receipts.WithLogger(log.Named("render")),
		receipts.WithCompression(cfg.Receipt.Compress),
		receipts.WithFormFields(cfg.Receipt.FormFields),
		receipts.WithCreator(cfg.Receipt.Creator),
	}
	if loader != nil {
		s.Orgs = orgs.NewRegistry(loader, orgs.WithLogger(log.Named("orgs")))
		opts = append(opts, receipts.WithOrgNames(s.Orgs))
	}
	if cfg.Receipt.Letterhead != "" {
		pdf, err := os.ReadFile(cfg.Receipt.Letterhead)
		if err != nil {
			return nil, fmt.Errorf("service: reading letterhead: %w", err)
		}
		opts = append(opts, receipts.WithLetterhead(pdf))
	}
	if cfg.Receipt.Barcode != "" {
		opts = append(opts, receipts.WithBarcode(render.BarcodeKind(cfg.Receipt.Barcode), cfg.Receipt.BarcodeBaseURL))
	}
	if cfg.Receipt.GoFonts {
		opts = append(opts, receipts.WithGoFonts())
	}
	gen, err := receipts.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	s.Generator = gen

	var sinks []eventlog.Sink
	if cfg.Events.Log {
		sinks = append(sinks, eventlog.ZapSink{Logger: log.Named("events")})
	}
	if cfg.Events.DSN != "" {
		db, err := eventlog.Open(ctx, cfg.Events.Driver, cfg.Events.DSN)
		if err != nil {
			return nil, fmt.Errorf("service: %w", err)
		}
		sinks = append(sinks, db)
		s.closer = db.Close
	}
	s.Events = eventlog.NewForwarder(sinks, eventlog.WithLogger(log.Named("events")))
	return s, nil
}

// RefreshOrgs loads the organisation table once. Failures are logged, and
// lookups fall back to short names until a later refresh succeeds.
func (s *Service) RefreshOrgs(ctx context.Context) {
	if s.Orgs == nil {
		return
	}
	if err := s.Orgs.Refresh(ctx); err != nil {
		s.log.Warn("organisation table unavailable", zap.Error(err))
	}
}

// Close releases the event database.
func (s *Service) Close() error {
	return s.closer()
}
