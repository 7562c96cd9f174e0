package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/advisor"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/artifact"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/config"
	applog "github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/logger"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/metrics"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/registry"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/training"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/web"
)

// newStore routes s3:// locations to a bucket client when the model lives in S3.
func newStore(ctx context.Context, cfg *config.Config) (*artifact.Router, error) {
	if !cfg.UsesS3() {
		return artifact.NewRouter(nil), nil
	}

	client, err := artifact.NewS3Client(ctx, cfg.S3)
	if err != nil {
		return nil, fmt.Errorf("creating s3 client: %w", err)
	}
	return artifact.NewRouter(artifact.NewS3Store(client)), nil
}

// openRegistry returns nil when no DSN is configured.
func openRegistry(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*registry.Repository, error) {
	dsn, err := cfg.RegistryDSN()
	if err != nil {
		return nil, err
	}
	if dsn == "" {
		logger.Debug("training registry disabled", zap.String("hint", "set registry.dsn or ASPIRATIONS_REGISTRY_DSN"))
		return nil, nil
	}

	db, err := registry.Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("opening registry: %w", err)
	}
	repo := registry.NewRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrating registry: %w", err)
	}
	return repo, nil
}

func newTrainer(cfg *config.Config, store artifact.Store, logger *zap.Logger, m *metrics.Metrics, repo *registry.Repository) *training.Trainer {
	opts := []training.Option{
		training.WithLogger(logger.Named("training")),
		training.WithMetrics(m),
	}
	if repo != nil {
		opts = append(opts, training.WithRecorder(repo))
	}
	return training.NewTrainer(cfg.Training, store, opts...)
}

// newAdvisor returns a nil interface when the advisor is disabled or cannot start.
func newAdvisor(ctx context.Context, cfg *config.Config, logger *zap.Logger) web.Advisor {
	if !cfg.Advisor.Enabled {
		return nil
	}

	apiKey, err := cfg.AdvisorAPIKey()
	if err != nil {
		logger.Warn("skipping advisor", zap.Error(err), zap.String("hint", "set advisor.api_key_file or GEMINI_API_KEY"))
		return nil
	}

	generator, err := advisor.NewGenerator(ctx, apiKey, cfg.Advisor.Model)
	if err != nil {
		logger.Warn("skipping advisor", zap.Error(err))
		return nil
	}

	advisorLogger := logger.Named("advisor").With(
		zap.String(applog.FieldProvider, "gemini"),
		zap.String("model", generator.Model()),
		zap.Int("max_retries", cfg.Advisor.MaxRetries),
	)
	return advisor.New(generator, advisorLogger, cfg.Advisor.Config)
}
