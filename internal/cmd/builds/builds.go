// Package builds implements the builds CLI, which prints catalog lookups as
// aligned text.
package builds

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	entrypoint "github.com/louisbranch/buildbook/internal/platform/cmd"
	platformgrpc "github.com/louisbranch/buildbook/internal/platform/grpc"
	"github.com/louisbranch/buildbook/internal/platform/timeouts"
	"github.com/louisbranch/buildbook/internal/services/catalog/api/grpc/catalog"
	"github.com/louisbranch/buildbook/internal/services/catalog/dataset"
	"github.com/louisbranch/buildbook/internal/services/catalog/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"google.golang.org/grpc/status"
)

// ErrUsage reports a malformed command line.
var ErrUsage = errors.New("usage: builds [-dataset path | -addr host:port] categories | names <category> | shape <selector> <n> <m> | tier <selector> <tier> | stats")

// Config holds builds command configuration.
type Config struct {
	Dataset string        `env:"BUILDBOOK_CATALOG_DATASET"`
	Addr    string        `env:"BUILDBOOK_BUILDS_ADDR"`
	Timeout time.Duration `env:"BUILDBOOK_BUILDS_TIMEOUT" envDefault:"5s"`
	Args    []string
}

// ParseConfig parses environment and flags into Config. Positional arguments
// are kept in Args.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Dataset, "dataset", cfg.Dataset, "Optional build dataset YAML replacing the embedded one")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "Query a running catalog server instead of the local dataset")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Timeout for each catalog call")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	cfg.Args = fs.Args()
	return cfg, nil
}

// querier is the lookup surface shared by the local dataset and the remote
// catalog client.
type querier interface {
	ListCategories(ctx context.Context) ([]string, error)
	ListNames(ctx context.Context, category string) ([]string, error)
	LookupByShape(ctx context.Context, selector string, inputs, outputs domain.Count) ([]catalog.BuildView, error)
	LookupByTier(ctx context.Context, selector string, tier int) ([]catalog.BuildView, error)
	Stats(ctx context.Context) (catalog.StatsResponse, error)
}

// Run executes one builds subcommand and writes its output to out.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if len(cfg.Args) == 0 {
		return ErrUsage
	}
	if cfg.Dataset != "" && cfg.Addr != "" {
		return fmt.Errorf("%w: -dataset and -addr are exclusive", ErrUsage)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = timeouts.GRPCRequest
	}

	run := func(ctx context.Context) error {
		q, closeFn, err := openQuerier(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		callCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
		return runCommand(callCtx, q, cfg.Args, out)
	}
	if cfg.Addr == "" {
		return run(ctx)
	}
	// Remote lookups carry trace context to the catalog server.
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceBuilds, run)
}

func openQuerier(ctx context.Context, cfg Config) (querier, func(), error) {
	if cfg.Addr != "" {
		conn, err := platformgrpc.DialWithHealth(ctx, cfg.Addr, catalog.ServiceName, platformgrpc.DialOptions{Timeout: cfg.Timeout})
		if err != nil {
			return nil, nil, fmt.Errorf("connect to catalog: %w", err)
		}
		return catalog.NewClient(conn), func() { _ = conn.Close() }, nil
	}

	var (
		c   *domain.Catalog
		err error
	)
	if cfg.Dataset != "" {
		c, err = dataset.LoadFile(ctx, cfg.Dataset)
	} else {
		c, err = dataset.Load(ctx)
	}
	if err != nil {
		return nil, nil, err
	}
	return localQuerier{service: catalog.NewService(c)}, func() {}, nil
}

func runCommand(ctx context.Context, q querier, args []string, out io.Writer) error {
	switch args[0] {
	case "categories":
		if len(args) != 1 {
			return ErrUsage
		}
		categories, err := q.ListCategories(ctx)
		if err != nil {
			return describe(err)
		}
		for _, category := range categories {
			fmt.Fprintln(out, category)
		}
		return nil
	case "names":
		if len(args) != 2 {
			return ErrUsage
		}
		names, err := q.ListNames(ctx, args[1])
		if err != nil {
			return describe(err)
		}
		for _, name := range names {
			fmt.Fprintln(out, name)
		}
		return nil
	case "shape":
		if len(args) != 4 {
			return ErrUsage
		}
		inputs, err := domain.ParseCount(args[2])
		if err != nil {
			return fmt.Errorf("%w: inputs: %v", ErrUsage, err)
		}
		outputs, err := domain.ParseCount(args[3])
		if err != nil {
			return fmt.Errorf("%w: outputs: %v", ErrUsage, err)
		}
		builds, err := q.LookupByShape(ctx, args[1], inputs, outputs)
		if err != nil {
			return describe(err)
		}
		return writeBuilds(out, builds)
	case "tier":
		if len(args) != 3 {
			return ErrUsage
		}
		tier, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("%w: tier: %v", ErrUsage, err)
		}
		builds, err := q.LookupByTier(ctx, args[1], tier)
		if err != nil {
			return describe(err)
		}
		return writeBuilds(out, builds)
	case "stats":
		if len(args) != 1 {
			return ErrUsage
		}
		stats, err := q.Stats(ctx)
		if err != nil {
			return describe(err)
		}
		return writeStats(out, stats)
	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
}

// describe turns a catalog status into a plain message with suggestions.
func describe(err error) error {
	msg := err.Error()
	if st, ok := status.FromError(err); ok {
		msg = st.Message()
	}
	if suggestions := catalog.Suggestions(err); len(suggestions) > 0 {
		msg += " (did you mean " + strings.Join(suggestions, " or ") + "?)"
	}
	return errors.New(msg)
}

var printer = message.NewPrinter(language.English)

func formatPrice(view catalog.BuildView) string {
	if view.Free() {
		return "free"
	}
	return printer.Sprintf("%d", *view.Price)
}

func writeBuilds(out io.Writer, builds []catalog.BuildView) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSHAPE\tSIZE\tPRICE\tREQUIREMENTS\tBLUEPRINT")
	for _, build := range builds {
		shape := build.Inputs + ":" + build.Outputs
		if build.Tier != nil {
			shape = "tier " + strconv.Itoa(*build.Tier)
		}
		fmt.Fprintf(w, "%s\t%s\t%sx%s\t%s\t%s\t%s\n",
			build.Name, shape, build.Width, build.Height, formatPrice(build), formatRequirements(build.Requirements), build.BlueprintURL)
	}
	return w.Flush()
}

func formatRequirements(req catalog.RequirementsView) string {
	if !req.NonDefault {
		return "default"
	}
	return fmt.Sprintf("belts %d-%d, tunnel %d, arm tier %d", req.MinBeltSpeed, req.MaxBeltSpeed, req.TunnelLength, req.RoboticArmTier)
}

func writeStats(out io.Writer, stats catalog.StatsResponse) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	rows := []struct {
		label string
		value int
	}{
		{"builds", stats.Builds},
		{"balancers", stats.Balancers},
		{"splitters", stats.Splitters},
		{"factory splitters", stats.FactorySplitters},
		{"valves", stats.Valves},
		{"lab balancers", stats.LabBalancers},
		{"categories", stats.Categories},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\t\n", row.label, printer.Sprintf("%d", row.value))
	}
	return w.Flush()
}

// localQuerier answers through the query service without a network hop.
type localQuerier struct {
	service *catalog.Service
}

func (l localQuerier) ListCategories(ctx context.Context) ([]string, error) {
	resp, err := l.service.ListCategories(ctx, &catalog.ListCategoriesRequest{})
	if err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

func (l localQuerier) ListNames(ctx context.Context, category string) ([]string, error) {
	resp, err := l.service.ListNames(ctx, &catalog.ListNamesRequest{Category: category})
	if err != nil {
		return nil, err
	}
	return resp.Names, nil
}

func (l localQuerier) LookupByShape(ctx context.Context, selector string, inputs, outputs domain.Count) ([]catalog.BuildView, error) {
	resp, err := l.service.LookupByShape(ctx, &catalog.LookupByShapeRequest{
		Selector: selector,
		Inputs:   inputs.String(),
		Outputs:  outputs.String(),
	})
	if err != nil {
		return nil, err
	}
	return resp.Builds, nil
}

func (l localQuerier) LookupByTier(ctx context.Context, selector string, tier int) ([]catalog.BuildView, error) {
	resp, err := l.service.LookupByTier(ctx, &catalog.LookupByTierRequest{Selector: selector, Tier: &tier})
	if err != nil {
		return nil, err
	}
	return resp.Builds, nil
}

func (l localQuerier) Stats(ctx context.Context) (catalog.StatsResponse, error) {
	resp, err := l.service.Stats(ctx, &catalog.StatsRequest{})
	if err != nil {
		return catalog.StatsResponse{}, err
	}
	return *resp, nil
}
