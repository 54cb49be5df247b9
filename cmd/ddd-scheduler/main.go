package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/amterp/color"

	"github.com/NguyenTanUET/maxsattrainscheduling/ddd"
	"github.com/NguyenTanUET/maxsattrainscheduling/internal/heuristic"
	"github.com/NguyenTanUET/maxsattrainscheduling/internal/logging"
	"github.com/NguyenTanUET/maxsattrainscheduling/internal/problem"
	"github.com/NguyenTanUET/maxsattrainscheduling/internal/satsolver/gini"
)

var (
	hicyanf  = color.New(color.FgHiCyan).SprintfFunc()
	hiblackf = color.New(color.FgHiBlack).SprintfFunc()
)

type config struct {
	problemPath  string
	cfg          ddd.Config
	useHeuristic bool
	statsJSON    bool
}

// choiceFlag registers a flag named name whose value is one of choices, defaulting to dflt.
// Mirrors the teacher's own choiceFlag helper from cmd/gomoddepgraph.
func choiceFlag[T any](p *T, name string, choices map[string]T, dflt string, usage string) {
	cstr := strings.Join(slices.Sorted(maps.Keys(choices)), ", ")
	var ok bool
	if *p, ok = choices[dflt]; !ok {
		panic(fmt.Errorf("invalid default for %v option: %v", dflt, name))
	}
	usage += fmt.Sprintf(" (one of: %v; default: %v)", cstr, dflt)
	flag.Func(name, usage, func(arg string) error {
		if arg == "" {
			arg = dflt
		}
		v, ok := choices[arg]
		if !ok {
			return fmt.Errorf("expected one of: %v", cstr)
		}
		*p = v
		return nil
	})
}

var slogLevel = func() *slog.LevelVar {
	lvl := &slog.LevelVar{}
	lvl.Set(logging.LevelInfo)
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(h))
	return lvl
}()

func parseFlags() *config {
	cfg := &config{cfg: ddd.DefaultConfig()}

	bumpLogLevel := func(lower bool) {
		slogLevel.Set(logging.BumpLevel(slogLevel.Level(), lower))
	}
	setLogLevel := func(arg string) error {
		lvl, err := logging.StringToLevel(arg)
		if err != nil {
			return err
		}
		slogLevel.Set(lvl)
		return nil
	}
	flag.BoolFunc("v", "Increase log verbosity.", func(arg string) error {
		switch arg {
		case "", "true":
			bumpLogLevel(true)
		default:
			return setLogLevel(arg)
		}
		return nil
	})
	flag.BoolFunc("q", "Decrease log verbosity.", func(arg string) error {
		switch arg {
		case "", "true":
			bumpLogLevel(false)
		default:
			return setLogLevel(arg)
		}
		return nil
	})

	colorChoices := map[string]bool{"auto": color.NoColor, "never": true, "always": false}
	choiceFlag(&color.NoColor, "color", colorChoices, "auto", "Output colors according to `mode`.")

	choiceFlag(&cfg.cfg.BoundMode, "bound-mode", map[string]ddd.BoundMode{
		"add-clauses": ddd.AddClauses,
		"assumptions": ddd.Assumptions,
	}, "add-clauses", "Enforce the cost budget using `mode`.")
	choiceFlag(&cfg.cfg.PrecEncoding, "prec-encoding", map[string]ddd.PrecEncoding{
		"plain": ddd.Plain,
		"scl":   ddd.Scl,
	}, "plain", "Encode travel-time precedence using `mode`.")
	choiceFlag(&cfg.cfg.SearchMode, "search-mode", map[string]ddd.SearchMode{
		"ub-search": ddd.UbSearch,
		"invalid":   ddd.Invalid,
	}, "ub-search", "Drive the outer optimization search using `mode`.")

	flag.DurationVar(&cfg.cfg.Timeout, "timeout", cfg.cfg.Timeout, "Wall-clock budget for the solve.")
	flag.BoolVar(&cfg.useHeuristic, "heuristic", false,
		"Run a concurrent greedy heuristic worker, or the subprocess named by DDD_HEURISTIC_CMD if set.")
	flag.BoolVar(&cfg.statsJSON, "stats", false, "Print solve statistics as JSON to stderr.")

	help := func(string) error {
		flag.CommandLine.SetOutput(os.Stdout)
		flag.Usage()
		os.Exit(0)
		return nil
	}
	flag.BoolFunc("h", "Print usage information and exit.", help)
	flag.BoolFunc("help", "Print usage information and exit.", help)

	flag.Parse()
	cfg.problemPath = flag.Arg(0)
	if cfg.problemPath == "" {
		log.Fatal("exactly one problem JSON file is required")
	}
	return cfg
}

func loadProblem(path string) (*problem.Problem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", path, err)
	}
	defer f.Close()
	p, err := problem.Load(f)
	if err != nil {
		return nil, err
	}
	p.DelayCost = problem.LinearDelayCost
	p.Cost = problem.LinearAggregateCost
	return p, nil
}

func run(ctx context.Context, cfg *config) error {
	p, err := loadProblem(cfg.problemPath)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "loaded problem", "trains", len(p.Trains), "visits", p.NumVisits(),
		"conflicts", len(p.Conflicts))

	var opts []ddd.Option

	if cfg.useHeuristic {
		w, err := heuristic.NewExternalFromEnv(ctx, ".", func(key string) (string, bool) { return os.LookupEnv(key) })
		if err != nil {
			return fmt.Errorf("failed to start external heuristic: %w", err)
		}
		if w == nil {
			slog.InfoContext(ctx, "DDD_HEURISTIC_CMD unset; using the built-in greedy heuristic")
			opts = append(opts, ddd.WithHeuristic(heuristic.NewGreedy(ctx, p)))
		} else {
			slog.InfoContext(ctx, "using external heuristic subprocess")
			opts = append(opts, ddd.WithHeuristic(w))
		}
	}

	if cfg.statsJSON {
		stats := map[string]any{}
		opts = append(opts, ddd.WithStatsSink(func(key string, value any) {
			stats[key] = fmt.Sprintf("%v", value)
		}))
		defer func() {
			if len(stats) == 0 {
				return
			}
			enc := json.NewEncoder(os.Stderr)
			enc.SetIndent("", "  ")
			_ = enc.Encode(stats)
		}()
	}

	opts = append(opts, ddd.WithDebugSink(func(ev ddd.Event) {
		slog.DebugContext(ctx, "driver iteration", "iteration", ev.Iteration, "actions", len(ev.Actions))
	}))

	solver := gini.New()
	start := time.Now()
	sched, err := ddd.Solve(ctx, p, solver, cfg.cfg, opts...)
	elapsed := time.Since(start)
	if err != nil {
		return fmt.Errorf("solve failed after %s: %w", elapsed, err)
	}

	cost := p.AggregateCost(sched, cfg.cfg.CostType)
	fmt.Fprintf(os.Stderr, "%s %s %s\n", hicyanf("solved"), hiblackf("in %s,", elapsed), hicyanf("cost=%d", cost))
	return json.NewEncoder(os.Stdout).Encode(sched)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	cfg := parseFlags()
	if err := run(ctx, cfg); err != nil {
		slog.ErrorContext(ctx, "failed", "error", err)
		os.Exit(1)
	}
}
