package web

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/api"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/apperrors"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/logger"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/predictor"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/profile"
)

const (
	channelWeb = "web"
	channelAPI = "api"

	titleLanding   = "Career Aspirations Predictor"
	titlePredictor = "Predictor - Career Aspirations Predictor"
)

func (s *Server) landing(c *fiber.Ctx) error {
	return s.views.render(c, fiber.StatusOK, viewLanding, newPage(c, titleLanding, s.opts.DefaultTheme))
}

func (s *Server) predictorForm(c *fiber.Ctx) error {
	pg := newPage(c, titlePredictor, s.opts.DefaultTheme)
	if _, err := s.holder.Get(); err != nil {
		return s.unavailable(c, pg, err)
	}
	return s.renderForm(c, fiber.StatusOK, pg, profile.Default(), nil, nil)
}

func (s *Server) predictorSubmit(c *fiber.Ctx) error {
	pg := newPage(c, titlePredictor, s.opts.DefaultTheme)
	if _, err := s.holder.Get(); err != nil {
		return s.unavailable(c, pg, err)
	}

	sp, err := profile.DecodeForm(formValues(c))
	if err != nil {
		return s.renderForm(c, fiber.StatusBadRequest, pg, profile.Default(), map[string]string{"form": err.Error()}, nil)
	}

	pred, err := s.predict(c.UserContext(), channelWeb, sp, s.advisor != nil)
	switch {
	case errors.Is(err, apperrors.ErrModelUnavailable):
		return s.unavailable(c, pg, err)
	case errors.Is(err, apperrors.ErrInputOutOfRange):
		return s.renderForm(c, fiber.StatusUnprocessableEntity, pg, sp, fieldErrors(err), nil)
	case err != nil:
		return err
	}

	return s.renderForm(c, fiber.StatusOK, pg, sp, nil, newResultView(pred, pg.Theme, s.opts.ChartTopN))
}

func (s *Server) renderForm(c *fiber.Ctx, status int, pg page, sp profile.StudentProfile, errs map[string]string, result *resultView) error {
	return s.views.render(c, status, viewPredictor, predictorPage{
		page:     pg,
		Profile:  sp,
		Subjects: subjectInputs(sp),
		Errors:   errs,
		Result:   result,
	})
}

func (s *Server) unavailable(c *fiber.Ctx, pg page, err error) error {
	data := unavailablePage{page: pg}
	if !s.production() {
		if appErr, ok := apperrors.As(err); ok {
			data.Reason = appErr.Details
		}
	}
	return s.views.render(c, fiber.StatusServiceUnavailable, viewUnavailable, data)
}

func (s *Server) apiPredict(c *fiber.Ctx) error {
	var body map[string]any
	if err := json.Unmarshal(c.Body(), &body); err != nil || body == nil {
		return fiber.NewError(fiber.StatusBadRequest, "request body must be a JSON object")
	}

	sp, err := profile.Decode(body)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	withAdvice := s.advisor != nil && c.QueryBool("advice", false)
	pred, err := s.predict(c.UserContext(), channelAPI, sp, withAdvice)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(api.Success[*api.Prediction]{
		Success: true,
		Message: "prediction created",
		Data:    pred,
	})
}

func (s *Server) apiModel(c *fiber.Ctx) error {
	p, err := s.holder.Get()
	if err != nil {
		return err
	}
	return c.JSON(api.Success[api.Model]{
		Success: true,
		Message: "model loaded",
		Data:    p.Info(),
	})
}

// predict scores sp and optionally attaches advice. Advisor failures never
// fail the prediction.
func (s *Server) predict(ctx context.Context, channel string, sp profile.StudentProfile, withAdvice bool) (*api.Prediction, error) {
	started := time.Now()

	p, err := s.holder.Get()
	if err != nil {
		s.metrics.ObservePrediction(channel, started, err)
		return nil, err
	}

	res, vec, err := p.PredictProfile(sp)
	s.metrics.ObservePrediction(channel, started, err)
	if err != nil {
		return nil, err
	}

	out := &api.Prediction{
		ID:       uuid.NewString(),
		ModelID:  res.ModelID,
		Careers:  api.Careers(res.Ranked()),
		Features: vec.Named(),
	}

	log := logger.WithPredictionFields(s.logger, out.ID, channel, res.ModelID)
	log.Debug("prediction served",
		zap.String("best", res.Best().Label),
		zap.Duration("took", time.Since(started)),
	)

	if withAdvice {
		s.advise(ctx, log, sp, res, out)
	}
	return out, nil
}

func (s *Server) advise(ctx context.Context, log *zap.Logger, sp profile.StudentProfile, res predictor.Result, out *api.Prediction) {
	advice, err := s.advisor.Advise(ctx, sp, res.Top(topCards))
	s.metrics.ObserveAdvisor(err)
	if err != nil {
		log.Warn("advisor unavailable, serving prediction without notes", zap.Error(err))
		return
	}
	out.Advice = advice
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	status := apperrors.HTTPStatus(err)
	body := api.Failure{Message: "internal server error"}

	var fe *fiber.Error
	if appErr, ok := apperrors.As(err); ok {
		body.Message = appErr.Message
		body.Code = string(appErr.Code)
		body.Details = appErr.Details
		body.Fields = appErr.Fields
	} else if errors.As(err, &fe) {
		status = fe.Code
		body.Message = fe.Message
	}

	if status >= fiber.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}
	if !s.production() {
		body.DevMessage = err.Error()
	}

	if !isAPI(c) {
		return c.Status(status).SendString(body.Message)
	}
	return c.Status(status).JSON(body)
}

func formValues(c *fiber.Ctx) map[string][]string {
	values := make(map[string][]string)
	c.Request().PostArgs().VisitAll(func(key, value []byte) {
		k := string(key)
		values[k] = append(values[k], string(value))
	})
	return values
}

func fieldErrors(err error) map[string]string {
	out := make(map[string]string)
	if appErr, ok := apperrors.As(err); ok {
		for _, f := range appErr.Fields {
			out[f.Field] = f.Message
		}
	}
	return out
}
