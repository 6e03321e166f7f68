package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/domainsuffixes/internal/config"
	"github.com/domainsuffixes/internal/domain"
	"github.com/domainsuffixes/internal/export"
	"github.com/domainsuffixes/internal/feed"
	"github.com/domainsuffixes/internal/logging"
	"github.com/domainsuffixes/internal/service"
	"github.com/domainsuffixes/internal/trie"
	"github.com/domainsuffixes/internal/version"
)

const usage = `Usage: suffixctl [-config file] <command> [flags] [args]

Commands:
  build         Fetch the feeds, build the registry and save a snapshot
  tld HOST...   Print the effective suffix of each host
  parse HOST... Print the full decomposition of each host as JSON
  tlds          List known top-level domains
  classify      Classify hosts from a file into CSV or a SQL table
  init-config   Write an example configuration file
  version       Show version information
`

func main() {
	configPath := flag.String("config", "", "Path to configuration file (defaults when empty)")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	cmd, args := flag.Arg(0), flag.Args()[1:]

	switch cmd {
	case "version":
		fmt.Printf("suffixctl %s\n", version.GetFullVersionInfo())
		return
	case "init-config":
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}
		if err := config.CreateExampleConfig(dir); err != nil {
			fatal(err)
		}
		fmt.Printf("Example configuration written to %s\n", dir)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fatal(fmt.Errorf("failed to load configuration: %w", err))
	}
	if err := logging.Initialize(&cfg.Logging); err != nil {
		fatal(fmt.Errorf("failed to initialize logging: %w", err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch cmd {
	case "build":
		err = runBuild(ctx, cfg)
	case "tld":
		err = withParser(ctx, cfg, func(p *domain.Parser) error { return runTLD(p, args) })
	case "parse":
		err = runParse(ctx, cfg, args)
	case "tlds":
		err = runTLDs(ctx, cfg, args)
	case "classify":
		err = runClassify(ctx, cfg, args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// openService opens the snapshot store and initialises the registry.
// The returned close function releases the store.
func openService(ctx context.Context, cfg *config.Config) (*service.Service, func(), error) {
	store, err := cfg.Snapshot.OpenStore()
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {
		if store != nil {
			store.Close()
		}
	}

	loader := feed.NewLoader(cfg.Feeds.Source(), cfg.Feeds.LoaderConfig())
	svc := service.New(loader, cfg.Snapshot.Manager(store), cfg.Refresh.ServiceConfig())
	if err := svc.Init(ctx); err != nil {
		closeStore()
		return nil, nil, err
	}
	return svc, closeStore, nil
}

func withParser(ctx context.Context, cfg *config.Config, fn func(*domain.Parser) error) error {
	svc, closeStore, err := openService(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	p, err := svc.Parser()
	if err != nil {
		return err
	}
	return fn(p)
}

func runBuild(ctx context.Context, cfg *config.Config) error {
	svc, closeStore, err := openService(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// Init may have served a snapshot; build always goes to the feeds.
	if svc.Status().FromSnapshot {
		if _, err := svc.Reload(ctx); err != nil {
			return err
		}
	}

	st := svc.Status()
	fmt.Printf("TLDs:             %d\n", st.Stats.TLDs)
	fmt.Printf("Public suffixes:  %d\n", st.Stats.PublicSuffixes)
	fmt.Printf("Private suffixes: %d\n", st.Stats.PrivateSuffixes)
	fmt.Printf("Built at:         %s\n", st.LoadedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func runTLD(p *domain.Parser, hosts []string) error {
	if len(hosts) == 0 {
		return fmt.Errorf("tld: at least one host is required")
	}
	for _, raw := range hosts {
		host, err := domain.NormalizeHost(raw)
		if err != nil {
			fmt.Printf("%s\t-\n", raw)
			continue
		}
		if tld, ok := p.GetTLD(host); ok {
			fmt.Printf("%s\t%s\n", raw, tld)
		} else {
			fmt.Printf("%s\t-\n", raw)
		}
	}
	return nil
}

// parseOutput is printed by the parse command.
type parseOutput struct {
	Input string `json:"input"`
	*domain.ParsedResult
	FQDN              string `json:"fqdn,omitempty"`
	RegistrableDomain string `json:"registrable_domain,omitempty"`
	PQDN              string `json:"pqdn,omitempty"`
	Found             bool   `json:"found"`
}

func runParse(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	skipIP := fs.Bool("skip-ip-check", false, "Treat IP literals as domain names")
	stripProto := fs.Bool("strip-protocol", false, "Strip a leading scheme:// prefix")
	raw := fs.Bool("raw", false, "Do not normalize hosts before parsing")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("parse: at least one host is required")
	}
	opts := domain.Options{SkipIPCheck: *skipIP, StripProtocol: *stripProto}

	return withParser(ctx, cfg, func(p *domain.Parser) error {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		for _, in := range fs.Args() {
			host := in
			if !*raw {
				if h, err := domain.NormalizeHost(in); err == nil {
					host = h
				}
			}
			out := parseOutput{Input: in}
			if res, ok := p.ParseWith(host, opts); ok {
				out.ParsedResult = res
				out.FQDN = res.FQDN()
				out.RegistrableDomain = res.RegistrableDomain()
				out.PQDN = res.PQDN()
				out.Found = true
			}
			if err := enc.Encode(out); err != nil {
				return err
			}
		}
		return nil
	})
}

func runTLDs(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tlds", flag.ExitOnError)
	typeFilter := fs.String("type", "", "Only list TLDs of this type (generic, country-code, sponsored, ...)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var want trie.TLDType
	if *typeFilter != "" {
		t, ok := trie.ParseTLDType(strings.ToLower(*typeFilter))
		if !ok {
			return fmt.Errorf("unknown TLD type %q", *typeFilter)
		}
		want = t
	}

	return withParser(ctx, cfg, func(p *domain.Parser) error {
		reg := p.Registry()
		for _, name := range p.AllTLDs() {
			rec, ok := reg.TLD(name)
			if !ok || (want != "" && rec.Type != want) {
				continue
			}
			fmt.Printf("%s\t%s\t%s\n", rec.Suffix, rec.Type, rec.Registry)
		}
		return nil
	})
}

func runClassify(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("classify", flag.ExitOnError)
	in := fs.String("in", "-", "Input file with one host per line, - for stdin")
	format := fs.String("format", export.FormatCSV, "Output format: csv or a SQL dialect ("+strings.Join(export.Dialects(), ", ")+")")
	out := fs.String("out", "", "CSV output path (- for stdout) or SQL DSN; SQL defaults to export.dsn from config")
	table := fs.String("table", "", "SQL table name; defaults to export.table from config")
	if err := fs.Parse(args); err != nil {
		return err
	}

	target, tbl := *out, *table
	if !strings.EqualFold(*format, export.FormatCSV) {
		if target == "" {
			target = cfg.Export.DSN
		}
		if tbl == "" {
			tbl = cfg.Export.Table
		}
	}

	var r io.Reader = os.Stdin
	if *in != "-" {
		f, err := os.Open(*in)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", *in, err)
		}
		defer f.Close()
		r = f
	}

	return withParser(ctx, cfg, func(p *domain.Parser) error {
		w, err := export.Open(ctx, *format, target, tbl)
		if err != nil {
			return err
		}
		sum, err := export.Classify(ctx, p, r, w)
		if cerr := w.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%d lines, %d matched (%d public, %d private), %d ip, %d unknown, %d skipped\n",
			sum.Lines, sum.Matched, sum.Public, sum.Private, sum.IP, sum.Unknown, sum.Skipped)
		return nil
	})
}
