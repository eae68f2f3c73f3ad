package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"sentiment-service/internal/adapters/secondary/filesystem"
	"sentiment-service/internal/adapters/secondary/postgres"
	"sentiment-service/internal/adapters/secondary/spreadsheet"
	"sentiment-service/internal/config"
	"sentiment-service/internal/core/domain"
	output "sentiment-service/internal/core/ports/output"
	"sentiment-service/internal/core/services"
	"sentiment-service/internal/logger"
	"sentiment-service/internal/ml"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const defaultOutput = "hasil_perbandingan.xlsx"

func newFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("compare", pflag.ContinueOnError)
	flags.String("dataset", "", "fresh labeled dataset (.xlsx or .csv)")
	flags.StringSlice("models", ml.Kinds(), "bundle names to evaluate")
	flags.String("artifact-root", "", "artifact root directory (overrides ARTIFACT_ROOT)")
	flags.String("output", defaultOutput, "spreadsheet receiving the dataset plus one prediction column per model; empty to skip")
	flags.String("text-column", spreadsheet.DefaultTextColumn, "column holding the cleaned comment")
	flags.String("label-column", spreadsheet.DefaultLabelColumn, "column holding the label")
	flags.Bool("record", false, "store the run in the comparison history database")
	flags.String("log-level", "", "log level (overrides LOGGER_LEVEL)")
	return flags
}

func bind(flags *pflag.FlagSet) (*viper.Viper, error) {
	v, err := config.NewViper()
	if err != nil {
		return nil, err
	}
	v.SetDefault("LOGGER_FORMAT", "text")
	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}
	if flags.Changed("artifact-root") {
		v.Set("ARTIFACT_ROOT", v.GetString("artifact-root"))
	}
	if flags.Changed("log-level") {
		v.Set("LOGGER_LEVEL", v.GetString("log-level"))
	}
	return v, nil
}

func main() {
	flags := newFlagSet()
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	v, err := bind(flags)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	cfg, err := config.FromViper(v)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logCloser := logger.Init(cfg.Logger)
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, v, cfg); err != nil {
		log.WithError(err).Error("comparison failed")
		logCloser.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, v *viper.Viper, cfg *config.Config) error {
	dataset := v.GetString("dataset")
	if dataset == "" {
		return errors.New("--dataset is required")
	}
	record := v.GetBool("record")

	var repo output.ComparisonRepository
	if record {
		if !cfg.Database.Enabled {
			return fmt.Errorf("--record: %w (set DATABASE_ENABLED=true)", domain.ErrComparisonsDisabled)
		}
		pool, err := postgres.Connect(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			return err
		}
		repo = postgres.NewComparisonRepository(pool)
	}

	svc := services.NewComparisonService(
		filesystem.NewArtifactStore(cfg.Artifacts.Root),
		spreadsheet.NewDatasetReader(),
		spreadsheet.NewPredictionWriter(),
		repo,
	)

	result, err := svc.Compare(ctx, services.CompareRequest{
		DatasetPath: dataset,
		Models:      v.GetStringSlice("models"),
		TextColumn:  v.GetString("text-column"),
		LabelColumn: v.GetString("label-column"),
		OutputPath:  v.GetString("output"),
		Record:      record,
	})
	if result != nil {
		printRun(result)
	}
	if err != nil {
		return err
	}

	if out := v.GetString("output"); out != "" {
		fmt.Printf("\nPredictions written to %s\n", out)
	}
	if record {
		fmt.Printf("Recorded as comparison %s\n", result.ID)
	}
	return nil
}

func printRun(run *domain.ComparisonRun) {
	fmt.Printf("Dataset: %s (%d samples)\n\n", run.Dataset, run.Samples)

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tMODEL\tSTATUS\tACCURACY")
	for i, r := range run.Results {
		accuracy := "-"
		if r.Status == domain.ResultStatusOK {
			accuracy = fmt.Sprintf("%.2f%%", r.Accuracy*100)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, r.ModelName, r.Status, accuracy)
	}
	tw.Flush()

	for _, r := range run.Results {
		if r.Status != domain.ResultStatusOK {
			continue
		}
		fmt.Printf("\n== %s ==\n%s\n", r.ModelName, r.Report)
	}
	if best := run.Best(); best != nil {
		fmt.Printf("\nBest model: %s (%.2f%%)\n", best.ModelName, best.Accuracy*100)
	}
}
