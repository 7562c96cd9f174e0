// Package web serves the predictor pages and the JSON API.
package web

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/advisor"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/api"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/metrics"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/predictor"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/profile"
)

const (
	envProduction    = "production"
	defaultBarCount  = 10
	defaultRateLimit = 60
	appName          = "aspirations"
)

// Advisor explains a ranking. It is optional.
type Advisor interface {
	Advise(ctx context.Context, sp profile.StudentProfile, top []predictor.Prediction) (*advisor.Advice, error)
}

// Options tune the server.
type Options struct {
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	RateLimit    int
	RateWindow   time.Duration
	DefaultTheme string
	ChartTopN    int
}

// Deps are the collaborators of the server. Holder is required.
type Deps struct {
	Holder   *predictor.Holder
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Advisor  Advisor
}

type Server struct {
	app     *fiber.App
	views   views
	holder  *predictor.Holder
	logger  *zap.Logger
	metrics *metrics.Metrics
	advisor Advisor
	opts    Options
}

// New wires the middlewares and routes.
func New(deps Deps, opts Options) (*Server, error) {
	if deps.Holder == nil {
		return nil, errors.New("predictor holder is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if opts.ChartTopN <= 0 {
		opts.ChartTopN = defaultBarCount
	}
	if opts.RateLimit == 0 {
		opts.RateLimit = defaultRateLimit
	}

	v, err := parseViews()
	if err != nil {
		return nil, err
	}

	s := &Server{
		views:   v,
		holder:  deps.Holder,
		logger:  deps.Logger,
		metrics: deps.Metrics,
		advisor: deps.Advisor,
		opts:    opts,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               appName,
		ReadTimeout:           opts.ReadTimeout,
		WriteTimeout:          opts.WriteTimeout,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	s.app.Use(fiberlogger.New(fiberlogger.Config{
		Output: zap.NewStdLog(deps.Logger.Named("http")).Writer(),
		Format: "${status} ${method} ${path} ${latency}\n",
	}))
	s.app.Use(recover.New(recover.Config{
		EnableStackTrace: !s.production(),
	}))
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	s.app.Use(helmet.New())
	s.app.Use(healthcheck.New(healthcheck.Config{
		ReadinessProbe: func(*fiber.Ctx) bool { return s.holder.Ready() },
	}))

	s.routes(deps.Gatherer)
	return s, nil
}

func (s *Server) routes(gatherer prometheus.Gatherer) {
	limit := rateLimiter(s.opts.RateLimit, s.opts.RateWindow)

	s.app.Get("/", s.landing)
	s.app.Get("/predictor", s.predictorForm)
	s.app.Post("/predictor", limit, s.predictorSubmit)

	s.app.Post(api.PredictionsPath, limit, s.apiPredict)
	s.app.Get(api.ModelPath, s.apiModel)

	if gatherer != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
}

// App exposes the fiber application, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.logger.Info("starting http server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) production() bool {
	return strings.EqualFold(s.opts.Env, envProduction)
}

func isAPI(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/api/")
}
