// Command benchstab reads a list of protein mutations, validates and
// resolves them against the sequence databases, submits them to the
// selected stability predictors and writes the consolidated DDG results.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/loschmidt/BenchStab/pkg/config"
	"github.com/loschmidt/BenchStab/pkg/dataset"
	"github.com/loschmidt/BenchStab/pkg/predictor"
	"github.com/loschmidt/BenchStab/pkg/predictor/web"
	"github.com/loschmidt/BenchStab/pkg/preprocess"
	"github.com/loschmidt/BenchStab/pkg/resultstore"
	"github.com/loschmidt/BenchStab/pkg/scheduler"
	"github.com/loschmidt/BenchStab/pkg/sequence"
)

func main() {
	var (
		inputPath  = flag.String("input", "", "mutation list file (default: stdin)")
		configPath = flag.String("config", "", "YAML configuration file")
		include    = flag.String("include", "", "comma-separated predictors to run (overrides config)")
		exclude    = flag.String("exclude", "", "comma-separated predictors to skip (overrides config)")
		permissive = flag.Bool("permissive", false, "drop invalid rows instead of aborting")
		skipHeader = flag.Bool("skip-header", false, "ignore the first input line")
		dryRun     = flag.Bool("dry-run", false, "validate and show the plan without submitting")
		outFolder  = flag.String("outfolder", "", "output directory (overrides config)")
		noStruct   = flag.Bool("no-structural", false, "skip structure-based predictors")
		noSequence = flag.Bool("no-sequence", false, "skip sequence-based predictors")
	)
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer logger.Sync()
	log := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("loading configuration: %v", err)
		}
	}
	if *permissive {
		cfg.Permissive = true
	}
	if *skipHeader {
		cfg.SkipHeader = true
	}
	if *include != "" {
		cfg.Include = strings.Split(*include, ",")
	}
	if *exclude != "" {
		cfg.Exclude = strings.Split(*exclude, ",")
	}
	if *outFolder != "" {
		cfg.OutFolder = *outFolder
	}

	lines, err := readLines(*inputPath)
	if err != nil {
		log.Fatalf("reading input: %v", err)
	}

	resolver := sequence.NewResolver(
		&sequence.UniProtSource{BaseURL: sequence.DefaultUniProtURL},
		&sequence.RCSBSource{BaseURL: sequence.DefaultRCSBURL},
		log,
	)
	var pipeOpts []preprocess.Option
	if cfg.Permissive {
		pipeOpts = append(pipeOpts, preprocess.Permissive())
	}
	if cfg.SkipHeader {
		pipeOpts = append(pipeOpts, preprocess.SkipHeader())
	}
	pipe := preprocess.New(resolver, log, pipeOpts...)

	ds, err := pipe.Process(ctx, lines)
	if err != nil {
		var verr *preprocess.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintln(os.Stderr, "input validation failed:")
			for _, d := range verr.Diagnostics {
				fmt.Fprintf(os.Stderr, "  %s\n", d)
			}
			os.Exit(1)
		}
		log.Fatalf("preprocessing: %v", err)
	}
	for _, d := range ds.Diagnostics(dataset.Info) {
		log.Infow("diagnostic", "detail", d.String())
	}
	logSummary(log, ds)

	registry := predictor.NewRegistry()
	client := predictor.NewClient(30 * time.Second)
	if err := registry.Register(web.NewDDGun(client, "")); err != nil {
		log.Fatalf("registering predictors: %v", err)
	}
	selected, err := registry.Select(predictor.SelectionOptions{
		Include:       cfg.Include,
		Exclude:       cfg.Exclude,
		AllowStruct:   !*noStruct,
		AllowSequence: !*noSequence,
	})
	if err != nil {
		log.Fatalf("selecting predictors: %v", err)
	}

	if err := os.MkdirAll(cfg.OutFolder, 0o755); err != nil {
		log.Fatalf("creating output directory: %v", err)
	}
	if err := writeCSV(filepath.Join(cfg.OutFolder, "preprocessed.csv"), ds.WritePreprocessedCSV); err != nil {
		log.Fatalf("writing preprocessed records: %v", err)
	}

	if *dryRun {
		names := predictorNames(selected)
		log.Infow("dry run",
			"records", len(ds.Records),
			"predictors", names,
			"submissions", len(ds.Records)*len(selected))
		return
	}

	opts := cfg.SchedulerOptions()

	var store *resultstore.Store
	if cfg.Database != "" {
		store, err = resultstore.New(cfg.Database)
		if err != nil {
			log.Fatalf("opening result database: %v", err)
		}
		defer store.Close()
		names := strings.Join(predictorNames(selected), ",")
		if err := store.CreateRun(ds.RunID, len(ds.Records), names); err != nil {
			log.Fatalf("recording run: %v", err)
		}
		opts.Snapshot = func(table *dataset.ResultTable) {
			if err := store.SaveSnapshot(ds.RunID, table); err != nil {
				log.Warnw("failed to save result snapshot", "error", err)
			}
		}
	}

	engine := scheduler.New(selected, opts, log)
	table, err := engine.Run(ctx, ds)
	if err != nil {
		log.Fatalf("running predictions: %v", err)
	}

	if store != nil {
		if err := store.SaveSnapshot(ds.RunID, table); err != nil {
			log.Warnw("failed to save final snapshot", "error", err)
		}
		if err := store.FinishRun(ds.RunID); err != nil {
			log.Warnw("failed to close run", "error", err)
		}
	}

	resultsPath := filepath.Join(cfg.OutFolder, "results.csv")
	if err := writeCSV(resultsPath, table.WriteCSV); err != nil {
		log.Fatalf("writing results: %v", err)
	}

	byStatus := make(map[string]int)
	for _, row := range table.Rows {
		byStatus[row.Status]++
	}
	log.Infow("run complete", "run_id", ds.RunID, "results", resultsPath, "statuses", byStatus)
}

func readLines(path string) ([]string, error) {
	var in *os.File
	if path == "" {
		in = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close()
		in = f
	}
	var lines []string
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return lines, nil
}

func writeCSV(path string, render func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func predictorNames(ps []predictor.Predictor) []string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name()
	}
	return names
}

func logSummary(log *zap.SugaredLogger, ds *dataset.Dataset) {
	sum := dataset.Summarize(ds)
	log.Infow("dataset summary",
		"mutations", sum.Mutations,
		"identifiers", sum.Identifiers,
		"avg_mutations_per_identifier", sum.AvgMutationsPerID,
		"by_charge", sum.ByCharge,
		"by_chemical", sum.ByChemical,
		"by_polarity", sum.ByPolarity,
		"dropped", len(ds.Dropped))
}
