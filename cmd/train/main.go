package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"sentiment-service/internal/adapters/secondary/filesystem"
	"sentiment-service/internal/adapters/secondary/spreadsheet"
	"sentiment-service/internal/config"
	"sentiment-service/internal/core/services"
	"sentiment-service/internal/logger"
	"sentiment-service/internal/ml"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func newFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("train", pflag.ContinueOnError)
	flags.String("dataset", "", "labeled dataset (.xlsx or .csv)")
	flags.String("algorithm", ml.KindNaiveBayes, "one of naive-bayes, svm, decision-tree, knn")
	flags.String("model-name", "", "bundle name under <artifact-root>/model (defaults to the algorithm)")
	flags.String("artifact-root", "", "artifact root directory (overrides ARTIFACT_ROOT)")
	flags.Int("max-features", ml.DefaultMaxFeatures, "vocabulary size of the TF-IDF vectorizer")
	flags.Float64("test-size", services.DefaultTestSize, "share of each label held out for evaluation")
	flags.Int64("seed", services.DefaultSeed, "seed for the split and for seeded classifiers")
	flags.String("text-column", spreadsheet.DefaultTextColumn, "column holding the cleaned comment")
	flags.String("label-column", spreadsheet.DefaultLabelColumn, "column holding the label")
	flags.String("stop-words", "", "remove stop words for this language code (e.g. id, en)")
	flags.String("stem", "", "apply the Snowball stemmer for this language (e.g. english)")
	flags.String("try", "", "classify this comment with the trained model")
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
		log.WithError(err).Error("training failed")
		logCloser.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, v *viper.Viper, cfg *config.Config) error {
	dataset := v.GetString("dataset")
	if dataset == "" {
		return errors.New("--dataset is required")
	}

	store := filesystem.NewArtifactStore(cfg.Artifacts.Root)
	svc := services.NewTrainingService(spreadsheet.NewDatasetReader(), store)

	result, err := svc.Train(ctx, services.TrainRequest{
		DatasetPath: dataset,
		Algorithm:   v.GetString("algorithm"),
		ModelName:   v.GetString("model-name"),
		MaxFeatures: v.GetInt("max-features"),
		TestSize:    v.GetFloat64("test-size"),
		Seed:        v.GetInt64("seed"),
		TextColumn:  v.GetString("text-column"),
		LabelColumn: v.GetString("label-column"),
		Tokenizer: ml.TokenizerOptions{
			Lowercase:         true,
			StopWordsLanguage: v.GetString("stop-words"),
			StemLanguage:      v.GetString("stem"),
		},
	})
	if err != nil {
		return err
	}

	fmt.Printf("Model:      %s (%s)\n", result.Bundle.ModelName, result.Algorithm)
	fmt.Printf("Samples:    %d train / %d test\n", result.TrainSamples, result.TestSamples)
	fmt.Printf("Features:   %d\n", result.Features)
	fmt.Printf("Accuracy:   %.2f%%\n", result.Report.Accuracy*100)
	fmt.Printf("Model file: %s\n", result.Bundle.ModelPath)
	fmt.Printf("Vectorizer: %s\n\n", result.Bundle.VectorizerPath)
	fmt.Println(result.Report.String())

	if comment := v.GetString("try"); comment != "" {
		label, confidence, err := result.Try(comment)
		if err != nil {
			return fmt.Errorf("try %q: %w", comment, err)
		}
		fmt.Printf("\n%q -> %s (confidence %.2f)\n", comment, label, confidence)
	}
	return nil
}
