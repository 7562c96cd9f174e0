package web

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/api"
)

const (
	barHeight     = 28.0
	barGap        = 8.0
	barLabelWidth = 180.0
	barAreaWidth  = 420.0

	donutRadius = 70.0
	donutStroke = 34.0

	radarRadius = 120.0
	radarAxes   = 6
)

// palette is used for donut slices.
var palette = []string{"#667eea", "#43cea2", "#ff7e5f", "#f7b733", "#764ba2", "#185a9d"}

// Bar is one horizontal bar.
type Bar struct {
	Label   string
	Percent string
	Y       float64
	Width   float64
	Color   string
}

// BarChart draws probabilities as horizontal bars scaled to the largest value.
type BarChart struct {
	Width      float64
	Height     float64
	LabelWidth float64
	Bars       []Bar
}

func newBarChart(careers []api.Career, theme Theme) BarChart {
	chart := BarChart{
		Width:      barLabelWidth + barAreaWidth + 80,
		Height:     float64(len(careers))*(barHeight+barGap) + barGap,
		LabelWidth: barLabelWidth,
	}
	peak := maxProbability(careers)
	for i, c := range careers {
		ratio := 0.0
		if peak > 0 {
			ratio = c.Probability / peak
		}
		chart.Bars = append(chart.Bars, Bar{
			Label:   c.Label,
			Percent: c.Percent,
			Y:       barGap + float64(i)*(barHeight+barGap),
			Width:   ratio * barAreaWidth,
			Color:   mixColor(theme.Bar, theme.Accent2, ratio),
		})
	}
	return chart
}

// Slice is one donut segment drawn as a dashed circle stroke.
type Slice struct {
	Label  string
	Share  string
	Color  string
	Dash   float64
	Gap    float64
	Offset float64
}

// Donut shows how the top careers split their combined probability.
type Donut struct {
	Size   float64
	Center float64
	Radius float64
	Stroke float64
	Slices []Slice
}

func newDonut(careers []api.Career) Donut {
	d := Donut{
		Size:   2*donutRadius + donutStroke + 4,
		Radius: donutRadius,
		Stroke: donutStroke,
	}
	d.Center = d.Size / 2

	total := 0.0
	for _, c := range careers {
		total += c.Probability
	}
	if total <= 0 {
		return d
	}

	circumference := 2 * math.Pi * donutRadius
	offset := 0.0
	for i, c := range careers {
		share := c.Probability / total
		dash := share * circumference
		d.Slices = append(d.Slices, Slice{
			Label:  c.Label,
			Share:  api.Percent(share),
			Color:  palette[i%len(palette)],
			Dash:   dash,
			Gap:    circumference - dash,
			Offset: -offset,
		})
		offset += dash
	}
	return d
}

// Axis is one spoke of the radar chart.
type Axis struct {
	Label  string
	X, Y   float64
	LabelX float64
	LabelY float64
	Anchor string
}

// Radar plots the top careers on equal-angle spokes scaled to the largest probability.
type Radar struct {
	Size   float64
	Center float64
	Axes   []Axis
	Rings  []string
	Shape  string
}

// newRadar returns nil when fewer than three careers are available.
func newRadar(careers []api.Career) *Radar {
	if len(careers) > radarAxes {
		careers = careers[:radarAxes]
	}
	n := len(careers)
	if n < 3 {
		return nil
	}

	r := &Radar{Size: 2*radarRadius + 220}
	r.Center = r.Size / 2
	peak := maxProbability(careers)

	for _, level := range []float64{0.25, 0.5, 0.75, 1} {
		points := make([]string, n)
		for i := range n {
			x, y := r.point(i, n, level*radarRadius)
			points[i] = formatPoint(x, y)
		}
		r.Rings = append(r.Rings, strings.Join(points, " "))
	}

	shape := make([]string, n)
	for i, c := range careers {
		ratio := 0.0
		if peak > 0 {
			ratio = c.Probability / peak
		}
		x, y := r.point(i, n, radarRadius)
		lx, ly := r.point(i, n, radarRadius+18)
		sx, sy := r.point(i, n, ratio*radarRadius)
		shape[i] = formatPoint(sx, sy)

		anchor := "middle"
		switch {
		case lx < r.Center-1:
			anchor = "end"
		case lx > r.Center+1:
			anchor = "start"
		}
		r.Axes = append(r.Axes, Axis{Label: c.Label, X: x, Y: y, LabelX: lx, LabelY: ly, Anchor: anchor})
	}
	r.Shape = strings.Join(shape, " ")
	return r
}

// point returns spoke i of n at distance from the center. Spoke 0 points up.
func (r *Radar) point(i, n int, distance float64) (float64, float64) {
	angle := -math.Pi/2 + 2*math.Pi*float64(i)/float64(n)
	return r.Center + distance*math.Cos(angle), r.Center + distance*math.Sin(angle)
}

func formatPoint(x, y float64) string {
	return fmt.Sprintf("%.2f,%.2f", x, y)
}

func maxProbability(careers []api.Career) float64 {
	peak := 0.0
	for _, c := range careers {
		peak = math.Max(peak, c.Probability)
	}
	return peak
}

// mixColor blends two #rrggbb colors; t=0 gives from, t=1 gives to.
func mixColor(from, to string, t float64) string {
	a, okA := parseHex(from)
	b, okB := parseHex(to)
	if !okA || !okB {
		return from
	}
	t = math.Min(math.Max(t, 0), 1)
	var out [3]int
	for i := range out {
		out[i] = int(math.Round(float64(a[i]) + (float64(b[i])-float64(a[i]))*t))
	}
	return fmt.Sprintf("#%02x%02x%02x", out[0], out[1], out[2])
}

func parseHex(s string) ([3]int, bool) {
	var rgb [3]int
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return rgb, false
	}
	for i := range rgb {
		v, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			return rgb, false
		}
		rgb[i] = int(v)
	}
	return rgb, true
}
