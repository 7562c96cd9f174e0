package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/logger"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/metrics"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/predictor"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/training"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/web"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the predictor pages and the JSON API",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("address", "a", "", "listen address (default :8080)")
	serveCmd.Flags().Bool("ensure-model", false, "train a model before serving when the artifact is missing")

	viper.BindPFlag("server.address", serveCmd.Flags().Lookup("address"))
}

func serve(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, cfg := setup()
	log.Info("starting the aspirations server", zap.String("version", version))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	store, err := newStore(ctx, cfg)
	if err != nil {
		log.Fatal("preparing artifact storage", zap.Error(err))
	}

	location := cfg.Model.Location
	modelLog := logger.WithModelFields(log, "", location)

	if ensure, _ := cmd.Flags().GetBool("ensure-model"); ensure {
		repo, err := openRegistry(ctx, cfg, log)
		if err != nil {
			log.Warn("training registry unavailable, runs will not be recorded", zap.Error(err))
		}
		report, err := training.EnsureModel(ctx, store, location, newTrainer(cfg, store, log, m, repo))
		switch {
		case err != nil:
			modelLog.Warn("could not ensure a model", zap.Error(err))
		case report != nil:
			modelLog.Info("trained a missing model",
				zap.String(logger.FieldModelID, report.ModelID),
				zap.Float64("accuracy", report.Evaluation.Accuracy),
			)
		}
	}

	holder := predictor.NewHolder()
	if err := holder.Load(ctx, store, location); err != nil {
		m.SetModel("")
		modelLog.Warn("model unavailable, predictions are blocked", zap.Error(err))
	} else {
		p, _ := holder.Get()
		m.SetModel(p.ID())
		logger.WithModelFields(log, p.ID(), location).Info("model loaded", zap.Strings("labels", p.Labels()))
	}

	srv, err := web.New(web.Deps{
		Holder:   holder,
		Logger:   log,
		Metrics:  m,
		Gatherer: reg,
		Advisor:  newAdvisor(ctx, cfg, log),
	}, web.Options{
		Env:          cfg.Server.Env,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		RateLimit:    cfg.Server.RateLimit,
		RateWindow:   cfg.Server.RateWindow,
		DefaultTheme: cfg.Server.DefaultTheme,
		ChartTopN:    cfg.Server.ChartTopN,
	})
	if err != nil {
		log.Fatal("creating the server", zap.Error(err))
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("shutting down the server", zap.Error(err))
		}
	}()

	if err := srv.Listen(cfg.Server.Address); err != nil {
		log.Fatal("serving", zap.Error(err))
	}
	log.Info("server stopped")
}
