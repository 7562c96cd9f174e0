package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/metrics"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/training"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the career classifier from a labeled CSV and save the pipeline",
	Run: func(cmd *cobra.Command, _ []string) {
		train(cmd)
	},
}

func init() {
	rootCmd.AddCommand(trainCmd)

	trainCmd.Flags().String("data", "", "training CSV (default train_data.csv)")
	trainCmd.Flags().String("target", "", "target column name (default target)")
	trainCmd.Flags().Int("trees", 0, "number of trees (default 200)")
	trainCmd.Flags().Bool("strict", false, "drop rows whose supplied total/average disagree with the subject scores")
	trainCmd.Flags().StringSlice("skip-step", nil, "cleaning step to skip (out_of_range, derived_mismatch); repeatable")
	trainCmd.Flags().Bool("if-missing", false, "only train when the model artifact does not exist")

	viper.BindPFlag("training.data", trainCmd.Flags().Lookup("data"))
	viper.BindPFlag("training.target_column", trainCmd.Flags().Lookup("target"))
	viper.BindPFlag("training.forest.trees", trainCmd.Flags().Lookup("trees"))
	viper.BindPFlag("training.strict", trainCmd.Flags().Lookup("strict"))
	viper.BindPFlag("training.skip_steps", trainCmd.Flags().Lookup("skip-step"))
}

func train(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log, cfg := setup()

	store, err := newStore(ctx, cfg)
	if err != nil {
		log.Fatal("preparing artifact storage", zap.Error(err))
	}

	repo, err := openRegistry(ctx, cfg, log)
	if err != nil {
		log.Warn("training registry unavailable, the run will not be recorded", zap.Error(err))
	}

	trainer := newTrainer(cfg, store, log, metrics.New(nil), repo)
	location := cfg.Model.Location

	var report *training.Report
	if ifMissing, _ := cmd.Flags().GetBool("if-missing"); ifMissing {
		report, err = training.EnsureModel(ctx, store, location, trainer)
		if err == nil && report == nil {
			log.Info("model already exists, skipping training", zap.String("artifact", location))
			return
		}
	} else {
		report, err = trainer.Run(ctx, location)
	}

	if err != nil {
		if training.IsMissingData(err) {
			log.Fatal("training data not found", zap.Error(err), zap.String("hint", "pass --data or set training.data"))
		}
		log.Fatal("training failed", zap.Error(err))
	}

	fmt.Fprint(cmd.OutOrStdout(), report.String())
}
