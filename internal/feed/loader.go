// Package feed fetches and parses the external data a registry is built
// from: the IANA root zone database, the public suffix list, the TLD
// registration date resource and the ICANN gTLD registry.
package feed

import (
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/domainsuffixes/internal/logging"
	"github.com/domainsuffixes/internal/registry"
)

// Default feed locations.
const (
	DefaultRootZoneURL   = "https://www.iana.org/domains/root/db"
	DefaultSuffixListURL = "https://publicsuffix.org/list/public_suffix_list.dat"
	DefaultGTLDURL       = "https://www.icann.org/resources/registries/gtlds/v2/gtlds.json"
)

// Config names where each feed lives. RegDates and GTLD are optional.
// DelegationBase resolves relative delegation links and defaults to the
// IANA root zone database.
type Config struct {
	RootZone       string
	SuffixList     string
	RegDates       string
	GTLD           string
	DelegationBase string
}

// Loader assembles a registry.Feed from a Source.
type Loader struct {
	src Source
	cfg Config
}

// NewLoader returns a loader reading cfg's feeds through src.
func NewLoader(src Source, cfg Config) *Loader {
	return &Loader{src: src, cfg: cfg}
}

// Load fetches all feeds concurrently and parses them. The first failure
// cancels the remaining fetches.
func (l *Loader) Load(ctx context.Context) (*registry.Feed, error) {
	start := time.Now()

	var (
		tlds       []registry.TLDEntry
		lines      []string
		dates      map[string]time.Time
		enrichment []registry.Enrichment
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return l.read(ctx, l.cfg.RootZone, func(r io.Reader) (err error) {
			tlds, err = ParseRootZone(r, l.delegationBase())
			return err
		})
	})
	g.Go(func() error {
		return l.read(ctx, l.cfg.SuffixList, func(r io.Reader) (err error) {
			lines, err = ParseSuffixList(r)
			return err
		})
	})
	if l.cfg.RegDates != "" {
		g.Go(func() error {
			return l.read(ctx, l.cfg.RegDates, func(r io.Reader) (err error) {
				dates, err = ParseRegistrationDates(r)
				return err
			})
		})
	}
	if l.cfg.GTLD != "" {
		g.Go(func() error {
			return l.read(ctx, l.cfg.GTLD, func(r io.Reader) (err error) {
				enrichment, err = ParseGTLDRegistry(r)
				return err
			})
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	ApplyDates(tlds, dates)

	logging.Info("feeds loaded",
		logging.Count("tld", len(tlds)),
		logging.Count("suffix_line", len(lines)),
		logging.Count("enrichment", len(enrichment)),
		logging.Duration("load", time.Since(start)))

	return &registry.Feed{
		TLDs:        tlds,
		Manual:      []registry.TLDEntry{registry.TorTLD()},
		SuffixLines: lines,
		Enrichment:  enrichment,
	}, nil
}

func (l *Loader) delegationBase() string {
	if l.cfg.DelegationBase != "" {
		return l.cfg.DelegationBase
	}
	return DefaultRootZoneURL
}

func (l *Loader) read(ctx context.Context, name string, parse func(io.Reader) error) error {
	if name == "" {
		return fmt.Errorf("feed name not configured")
	}
	logging.Debug("fetching feed", logging.Source(name))

	rc, err := l.src.Open(ctx, name)
	if err != nil {
		return err
	}
	defer rc.Close()

	if err := parse(rc); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
