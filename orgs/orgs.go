// Package orgs keeps the table of organisation full names used in receipt
// headers. The table is loaded from an external source and refreshed in the
// background; lookups never block and fall back to the short name while no
// table is available.
package orgs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Org is one organisation entry.
type Org struct {
	Name     map[string]string `json:"name"`
	Logo     string            `json:"logo,omitempty"`
	OrgNr    string            `json:"orgnr,omitempty"`
	Homepage string            `json:"homepage,omitempty"`
}

// Table maps short names to organisations.
type Table map[string]Org

// FullName returns the name of the organisation short in lang, falling
// back to Norwegian bokmål and English.
func (t Table) FullName(short, lang string) (string, bool) {
	org, ok := t[strings.ToLower(short)]
	if !ok {
		return "", false
	}
	for _, l := range []string{lang, "nb", "en"} {
		if name := org.Name[l]; name != "" {
			return name, true
		}
	}
	return "", false
}

// Decode reads a table in the {"orgs": {...}} document format.
func Decode(r io.Reader) (Table, error) {
	var doc struct {
		Orgs Table `json:"orgs"`
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("orgs: decoding table: %w", err)
	}
	t := make(Table, len(doc.Orgs))
	for k, v := range doc.Orgs {
		t[strings.ToLower(k)] = v
	}
	return t, nil
}

// A Loader fetches the current table.
type Loader interface {
	Load(ctx context.Context) (Table, error)
}

// LoaderFunc adapts a function to a Loader.
type LoaderFunc func(ctx context.Context) (Table, error)

func (f LoaderFunc) Load(ctx context.Context) (Table, error) { return f(ctx) }

// Registry serves lookups from the last successfully loaded table. It is
// safe for concurrent use.
type Registry struct {
	loader Loader
	clock  clockwork.Clock
	log    *zap.Logger
	table  atomic.Pointer[Table]
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock sets the clock driving refreshes.
func WithClock(clock clockwork.Clock) Option {
	return func(r *Registry) { r.clock = clock }
}

// WithLogger sets the logger refresh failures are reported to.
func WithLogger(log *zap.Logger) Option {
	return func(r *Registry) { r.log = log }
}

// NewRegistry returns an empty registry loading from loader.
func NewRegistry(loader Loader, opts ...Option) *Registry {
	r := &Registry{
		loader: loader,
		clock:  clockwork.NewRealClock(),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Refresh loads the table and replaces the current one. On failure the
// previous table stays in use.
func (r *Registry) Refresh(ctx context.Context) error {
	t, err := r.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("orgs: refresh: %w", err)
	}
	r.table.Store(&t)
	r.log.Debug("organisation table refreshed", zap.Int("orgs", len(t)))
	return nil
}

// Run refreshes the table immediately and then every interval until ctx
// is done. Failed refreshes are logged and retried at the next tick.
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	if err := r.Refresh(ctx); err != nil {
		r.log.Warn("organisation table refresh failed", zap.Error(err))
	}
	ticker := r.clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			if err := r.Refresh(ctx); err != nil {
				r.log.Warn("organisation table refresh failed", zap.Error(err))
			}
		}
	}
}

// Loaded reports whether a table has been loaded.
func (r *Registry) Loaded() bool { return r.table.Load() != nil }

// FullName returns the full name of the organisation short in lang, or
// short itself when it is unknown or no table has been loaded.
func (r *Registry) FullName(short, lang string) string {
	if t := r.table.Load(); t != nil {
		if name, ok := t.FullName(short, lang); ok {
			return name
		}
	}
	return short
}
