package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/gofiber/fiber/v2"

	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/api"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/profile"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	viewLanding     = "landing.html"
	viewPredictor   = "predictor.html"
	viewUnavailable = "unavailable.html"

	topCards = 5
)

var funcs = template.FuncMap{
	"num": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"add": func(a, b int) int { return a + b },
}

type views map[string]*template.Template

func parseViews() (views, error) {
	base, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	out := make(views)
	for _, name := range []string{viewLanding, viewPredictor, viewUnavailable} {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout: %w", err)
		}
		if _, err := clone.ParseFS(templateFS, "templates/"+name); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		out[name] = clone
	}
	return out, nil
}

func (v views) render(c *fiber.Ctx, status int, name string, data any) error {
	tmpl, ok := v[name]
	if !ok {
		return fmt.Errorf("unknown view %q", name)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).Send(buf.Bytes())
}

// page carries what the layout needs.
type page struct {
	Title  string
	Path   string
	Theme  Theme
	Themes []Theme
}

func newPage(c *fiber.Ctx, title, fallbackTheme string) page {
	return page{
		Title:  title,
		Path:   c.Path(),
		Theme:  resolveTheme(c, fallbackTheme),
		Themes: Themes,
	}
}

type unavailablePage struct {
	page
	Reason string
}

type predictorPage struct {
	page
	Profile  profile.StudentProfile
	Subjects []subjectInput
	Errors   map[string]string
	Result   *resultView
}

type subjectInput struct {
	Key   string
	Label string
	Value int
}

func subjectInputs(sp profile.StudentProfile) []subjectInput {
	scores := sp.Scores()
	out := make([]subjectInput, len(profile.Subjects))
	for i, s := range profile.Subjects {
		out[i] = subjectInput{Key: s.Key, Label: s.Label, Value: scores[i]}
	}
	return out
}

type resultView struct {
	Prediction *api.Prediction
	Cards      []api.Career
	Bars       BarChart
	Donut      Donut
	Radar      *Radar
}

func newResultView(p *api.Prediction, theme Theme, barCount int) *resultView {
	cards := p.Top(topCards)
	return &resultView{
		Prediction: p,
		Cards:      cards,
		Bars:       newBarChart(p.Top(barCount), theme),
		Donut:      newDonut(cards),
		Radar:      newRadar(p.Top(radarAxes)),
	}
}
