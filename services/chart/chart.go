package chartsvc

import (
	"io"
	"math"
	"strconv"

	"github.com/pkg/errors"
	"github.com/wcharczuk/go-chart/v2"

	"github.com/trezcool/facultypref/core/selection"
)

const (
	barWidth   = 48
	barSpacing = 24
	minWidth   = 480
	height     = 360
	maxTicks   = 10
)

var errNoValues = errors.New("nothing to draw")

// SVGRenderer draws charts as SVG documents.
type SVGRenderer struct{}

var _ selection.ChartRenderer = (*SVGRenderer)(nil)

func NewSVGRenderer() *SVGRenderer {
	return &SVGRenderer{}
}

// RenderBarChart draws one bar per faculty member, in the given order.
func (r SVGRenderer) RenderBarChart(w io.Writer, title string, counts []selection.FacultyCount) error {
	if len(counts) == 0 {
		return errNoValues
	}

	maxCount := 0
	bars := make([]chart.Value, 0, len(counts))
	for _, fc := range counts {
		bars = append(bars, chart.Value{Label: fc.Faculty, Value: float64(fc.Count)})
		if fc.Count > maxCount {
			maxCount = fc.Count
		}
	}

	return errors.Wrap(renderBars(w, title, bars, maxCount), "rendering bar chart")
}

func renderBars(w io.Writer, title string, bars []chart.Value, maxCount int) error {
	if maxCount == 0 {
		maxCount = 1
	}

	width := len(bars)*(barWidth+barSpacing) + 2*barSpacing + 80
	if width < minWidth {
		width = minWidth
	}

	graph := chart.BarChart{
		Title:      title,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: float64(maxCount)},
			Ticks: countTicks(maxCount),
		},
		Bars: bars,
	}
	return graph.Render(chart.SVG, w)
}

// RenderGroupedBarChart draws the counts of every subject side by side, one bar per (subject, faculty).
// A faculty member keeps the same colour across subjects.
func (r SVGRenderer) RenderGroupedBarChart(w io.Writer, title string, report selection.Report) error {
	colors := make(map[string]int)
	maxCount := 0
	var bars []chart.Value
	for _, subject := range report.Subjects() {
		for _, fc := range report[subject] {
			i, ok := colors[fc.Faculty]
			if !ok {
				i = len(colors)
				colors[fc.Faculty] = i
			}
			bars = append(bars, chart.Value{
				Label: subject + " " + fc.Faculty,
				Value: float64(fc.Count),
				Style: chart.Style{FillColor: chart.GetDefaultColor(i), StrokeColor: chart.GetDefaultColor(i)},
			})
			if fc.Count > maxCount {
				maxCount = fc.Count
			}
		}
	}
	if len(bars) == 0 {
		return errNoValues
	}
	return errors.Wrap(renderBars(w, title, bars, maxCount), "rendering grouped bar chart")
}

// RenderPieChart draws the share of each faculty member, e.g. the overall workload.
func (r SVGRenderer) RenderPieChart(w io.Writer, title string, counts []selection.FacultyCount) error {
	values := make([]chart.Value, 0, len(counts))
	for _, fc := range counts {
		if fc.Count > 0 {
			values = append(values, chart.Value{Label: fc.Faculty + " (" + strconv.Itoa(fc.Count) + ")", Value: float64(fc.Count)})
		}
	}
	if len(values) == 0 {
		return errNoValues
	}

	graph := chart.PieChart{
		Title:  title,
		Width:  height + 160,
		Height: height + 160,
		Values: values,
	}
	return errors.Wrap(graph.Render(chart.SVG, w), "rendering pie chart")
}

// countTicks returns whole number ticks from 0 to max, at most maxTicks+1 of them.
func countTicks(max int) []chart.Tick {
	step := int(math.Ceil(float64(max) / maxTicks))
	if step < 1 {
		step = 1
	}
	ticks := make([]chart.Tick, 0, maxTicks+1)
	for v := 0; v <= max; v += step {
		ticks = append(ticks, chart.Tick{Value: float64(v), Label: strconv.Itoa(v)})
	}
	if last := ticks[len(ticks)-1].Value; last < float64(max) {
		ticks = append(ticks, chart.Tick{Value: float64(max), Label: strconv.Itoa(max)})
	}
	return ticks
}
