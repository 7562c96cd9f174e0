package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/api"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/artifact"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/registry"
)

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Inspect model artifacts and past training runs",
}

var modelInfoCmd = &cobra.Command{
	Use:   "info [location]",
	Short: "Summarize a model artifact",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		modelInfo(cmd, args)
	},
}

var modelRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded training runs",
	Run: func(cmd *cobra.Command, _ []string) {
		modelRuns(cmd)
	},
}

func init() {
	rootCmd.AddCommand(modelCmd)
	modelCmd.AddCommand(modelInfoCmd, modelRunsCmd)

	modelRunsCmd.Flags().IntP("limit", "l", 10, "number of runs to list")
	modelRunsCmd.Flags().Bool("latest", false, "only show the most recent run")
}

func modelInfo(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	log, cfg := setup()

	location := cfg.Model.Location
	if len(args) == 1 {
		location = args[0]
	}

	store, err := newStore(ctx, cfg)
	if err != nil {
		log.Fatal("preparing artifact storage", zap.Error(err))
	}
	data, err := store.Get(ctx, location)
	if err != nil {
		log.Fatal("reading the artifact", zap.String("artifact", location), zap.Error(err))
	}

	summary, err := artifact.Inspect(data)
	if err != nil {
		log.Fatal("inspecting the artifact", zap.String("artifact", location), zap.Error(err))
	}
	printSummary(cmd.OutOrStdout(), location, summary)
}

func printSummary(out io.Writer, location string, s *artifact.Summary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Location:\t%s\n", location)
	fmt.Fprintf(w, "Format:\t%s v%d\n", s.Format, s.Version)
	fmt.Fprintf(w, "Model ID:\t%s\n", s.ID)
	if !s.TrainedAt.IsZero() {
		fmt.Fprintf(w, "Trained at:\t%s\n", s.TrainedAt.Format(time.RFC3339))
	}
	fmt.Fprintf(w, "Trees:\t%d\n", s.Trees)
	fmt.Fprintf(w, "Rows:\t%d train / %d test\n", s.TrainRows, s.TestRows)
	if s.Accuracy != nil {
		fmt.Fprintf(w, "Accuracy:\t%s\n", api.Percent(*s.Accuracy))
	}
	fmt.Fprintf(w, "Labels:\t%s\n", strings.Join(s.Labels, ", "))
	fmt.Fprintf(w, "Features:\t%s\n", strings.Join(s.Features, ", "))
	if s.Valid {
		fmt.Fprintf(w, "Status:\tloadable\n")
	} else {
		fmt.Fprintf(w, "Status:\tbroken (%s)\n", s.Problem)
	}
	w.Flush()
}

func modelRuns(cmd *cobra.Command) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	log, cfg := setup()

	repo, err := openRegistry(ctx, cfg, log)
	if err != nil {
		log.Fatal("opening the training registry", zap.Error(err))
	}
	if repo == nil {
		log.Fatal("training registry is not configured", zap.String("hint", "set registry.dsn or ASPIRATIONS_REGISTRY_DSN"))
	}

	var runs []registry.TrainingRun
	if latest, _ := cmd.Flags().GetBool("latest"); latest {
		run, err := repo.Latest(ctx)
		switch {
		case errors.Is(err, registry.ErrNoRuns):
		case err != nil:
			log.Fatal("finding the latest training run", zap.Error(err))
		default:
			runs = append(runs, *run)
		}
	} else {
		limit, _ := cmd.Flags().GetInt("limit")
		if runs, err = repo.List(ctx, limit); err != nil {
			log.Fatal("listing training runs", zap.Error(err))
		}
	}
	printRuns(cmd.OutOrStdout(), runs)
}

func printRuns(out io.Writer, runs []registry.TrainingRun) {
	if len(runs) == 0 {
		fmt.Fprintln(out, "No training runs recorded")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tSTATUS\tMODEL\tROWS\tACCURACY\tMACRO F1\tDURATION")
	for _, r := range runs {
		model := r.ModelID
		if model == "" {
			model = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			r.StartedAt.Format(time.RFC3339),
			r.Status,
			model,
			r.Rows,
			api.Percent(r.Accuracy),
			api.Percent(r.MacroF1),
			r.Duration().Round(time.Millisecond),
		)
	}
	w.Flush()
}
