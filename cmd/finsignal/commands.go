package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"FinSignal/internal/di"
	"FinSignal/internal/domain/models"
	"FinSignal/internal/domain/repository"
	domsvc "FinSignal/internal/domain/service"
	"FinSignal/internal/services/marketdata"
	"FinSignal/internal/usecase"
	"FinSignal/pkg/cache"
	pkgch "FinSignal/pkg/clickhouse"
	"FinSignal/pkg/config"
	applogger "FinSignal/pkg/logger"
	"FinSignal/pkg/util"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

// deps holds what the commands share. Kafka is never started from the CLI.
type deps struct {
	cfg      *config.Config
	log      *applogger.Logger
	norm     domsvc.SymbolNormalizer
	cache    cache.Service
	ch       *pkgch.Client
	store    repository.BarStore
	analysis *usecase.AnalysisUseCase
}

func newDeps(cmd *cli.Command) (*deps, error) {
	cfg, err := config.LoadWithEnv(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	l, err := applogger.New(&applogger.Config{Level: cmd.String("log-level"), Format: "console", Output: "stderr"})
	if err != nil {
		return nil, err
	}

	d := &deps{cfg: cfg, log: l, norm: di.ProvideSymbolNormalizer(cfg)}
	if d.cache, err = di.ProvideCache(cfg); err != nil {
		return nil, err
	}
	if d.ch, err = di.ProvideClickHouseClient(cfg); err != nil {
		d.Close()
		return nil, err
	}
	d.store = di.ProvideBarStore(d.ch, cfg, l)

	provider, err := di.ProvideMarketData(cfg, d.store, d.cache, nil, l)
	if err != nil {
		d.Close()
		return nil, err
	}
	d.analysis = di.ProvideAnalysisUseCase(cfg, d.norm, provider, di.ProvideEngine(cfg, l),
		di.ProvideAnalysisStore(d.ch, l), nil, nil, l)
	return d, nil
}

func (d *deps) Close() {
	if d.ch != nil {
		_ = d.ch.Close()
	}
	if d.cache != nil {
		_ = d.cache.Close()
	}
}

func symbolsFlag() *cli.StringSliceFlag {
	return &cli.StringSliceFlag{
		Name:    "symbols",
		Aliases: []string{"s"},
		Usage:   "Symbols to process; defaults to the configured known list",
	}
}

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Run a technical analysis for one symbol and print it as JSON",
		ArgsUsage: "SYMBOL",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "period-days", Aliases: []string{"p"}, Usage: "Display window in calendar days", Value: 90},
			&cli.BoolFlag{Name: "summary", Usage: "Print only the signal summary"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("analyze needs exactly one SYMBOL argument")
			}
			d, err := newDeps(cmd)
			if err != nil {
				return err
			}
			defer d.Close()

			a, err := d.analysis.Analyze(ctx, cmd.Args().First(), int(cmd.Int("period-days")))
			if err != nil {
				return err
			}
			if cmd.Bool("summary") {
				return printSummary(os.Stdout, []*models.Analysis{a}, nil)
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(a)
		},
	}
}

func scanCommand() *cli.Command {
	return &cli.Command{
		Name:  "scan",
		Usage: "Analyze several symbols and print a signal table",
		Flags: []cli.Flag{
			symbolsFlag(),
			&cli.IntFlag{Name: "period-days", Aliases: []string{"p"}, Usage: "Display window in calendar days", Value: 90},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			d, err := newDeps(cmd)
			if err != nil {
				return err
			}
			defer d.Close()

			syms := selectSymbols(cmd.StringSlice("symbols"), d.norm)
			bar := progressbar.NewOptions(len(syms),
				progressbar.OptionSetDescription("scanning"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionClearOnFinish(),
			)

			var results []*models.Analysis
			failures := map[string]error{}
			for _, sym := range syms {
				a, err := d.analysis.Analyze(ctx, sym, int(cmd.Int("period-days")))
				if err != nil {
					failures[sym] = err
				} else {
					results = append(results, a)
				}
				_ = bar.Add(1)
			}
			_ = bar.Finish()
			return printSummary(os.Stdout, results, failures)
		},
	}
}

func backfillCommand() *cli.Command {
	return &cli.Command{
		Name:  "backfill",
		Usage: "Copy daily bars from the remote provider into ClickHouse",
		Flags: []cli.Flag{
			symbolsFlag(),
			&cli.IntFlag{Name: "days", Aliases: []string{"d"}, Usage: "Calendar days to copy", Value: 365},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			d, err := newDeps(cmd)
			if err != nil {
				return err
			}
			defer d.Close()

			if d.store == nil {
				return fmt.Errorf("backfill needs clickhouse.enabled")
			}
			if d.cfg.MarketData.Provider == marketdata.ProviderClickHouse {
				return fmt.Errorf("backfill needs a remote market_data.provider, got %q", d.cfg.MarketData.Provider)
			}
			d.cfg.MarketData.StoreFetched = false
			remote, err := marketdata.New(d.cfg, nil, cache.NopCache{}, nil, d.log)
			if err != nil {
				return err
			}
			return backfill(ctx, remote, d.store, d.norm, selectSymbols(cmd.StringSlice("symbols"), d.norm), int(cmd.Int("days")), os.Stderr)
		},
	}
}

// backfill fetches every symbol over the last days and saves the bars.
// Failures are reported per symbol and do not stop the run.
func backfill(
	ctx context.Context,
	remote repository.MarketDataProvider,
	store repository.BarStore,
	norm domsvc.SymbolNormalizer,
	syms []string,
	days int,
	out io.Writer,
) error {
	start, end := util.TradingWindow(time.Now(), days)
	bar := progressbar.NewOptions(len(syms),
		progressbar.OptionSetDescription("backfill"),
		progressbar.OptionSetWriter(out),
	)

	var failed []string
	total := 0
	for _, raw := range syms {
		symbol, err := norm.Normalize(raw)
		if err == nil {
			var series models.Series
			if series, err = remote.Fetch(ctx, symbol, start, end); err == nil {
				if err = store.SaveBars(ctx, symbol, series); err == nil {
					total += len(series)
				}
			}
		}
		if err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", raw, err))
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	fmt.Fprintf(out, "\nsaved %d bars for %d symbols\n", total, len(syms)-len(failed))
	if len(failed) > 0 {
		return fmt.Errorf("backfill failed for %d symbols:\n%s", len(failed), strings.Join(failed, "\n"))
	}
	return nil
}

func selectSymbols(flag []string, norm domsvc.SymbolNormalizer) []string {
	var out []string
	for _, s := range flag {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	if len(out) == 0 {
		return norm.Known()
	}
	return out
}

func printSummary(w io.Writer, results []*models.Analysis, failures map[string]error) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tPRICE\tSIGNAL\tSTRENGTH\tBUY\tSELL\tNEUTRAL")
	for _, a := range results {
		s := a.Signals
		fmt.Fprintf(tw, "%s\t%.2f\t%s\t%.2f\t%d\t%d\t%d\n", a.Symbol, a.CurrentPrice, s.Overall, s.Strength, s.Buy, s.Sell, s.Neutral)
	}
	failed := make([]string, 0, len(failures))
	for sym := range failures {
		failed = append(failed, sym)
	}
	sort.Strings(failed)
	for _, sym := range failed {
		fmt.Fprintf(tw, "%s\t-\tERROR\t-\t-\t-\t-\t%v\n", strings.ToUpper(sym), failures[sym])
	}
	return tw.Flush()
}
