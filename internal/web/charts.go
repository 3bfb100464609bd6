package web

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cityweather/cityweather/internal/weather"
)

// Chart colours.
const (
	colorAvg       = "#ff7300"
	colorMin       = "#8884d8"
	colorMax       = "#82ca9d"
	colorValue     = "#0088FE"
	colorRemaining = "#E0E0E0"
)

// Tick is an axis label at a pixel position.
type Tick struct {
	Pos   float64
	Label string
}

// Point is a plotted value in pixel space.
type Point struct {
	X, Y float64
}

// Series is one line of a LineChart. Segments are SVG path data; a missing
// value breaks the line into separate segments.
type Series struct {
	Name     string
	Color    string
	Segments []string
	Points   []Point
	LegendX  float64
}

// LineChart is a multi-series line chart laid out in pixel space.
type LineChart struct {
	Width, Height            float64
	Left, Top, Right, Bottom float64
	LegendY                  float64
	XTicks                   []Tick
	YTicks                   []Tick
	Series                   []Series
}

const (
	lineWidth        = 600.0
	lineHeight       = 320.0
	lineMarginLeft   = 50.0
	lineMarginRight  = 20.0
	lineMarginTop    = 20.0
	lineMarginBottom = 70.0
	yTickCount       = 5
)

// NewTemperatureChart plots average, minimum and maximum temperature per day.
// It returns nil when there are no days.
func NewTemperatureChart(days []weather.DailySummary) *LineChart {
	if len(days) == 0 {
		return nil
	}

	type seriesDef struct {
		name  string
		color string
		value func(weather.DailySummary) string
	}
	defs := []seriesDef{
		{"Avg Temp (°F)", colorAvg, func(d weather.DailySummary) string { return d.AvgTemp }},
		{"Min Temp (°F)", colorMin, func(d weather.DailySummary) string { return d.MinTemp }},
		{"Max Temp (°F)", colorMax, func(d weather.DailySummary) string { return d.MaxTemp }},
	}

	values := make([][]*float64, len(defs))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, def := range defs {
		values[i] = make([]*float64, len(days))
		for j, day := range days {
			v, ok := parseLeadingNumber(def.value(day))
			if !ok {
				continue
			}
			values[i][j] = &v
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	lo, hi = niceRange(lo, hi)

	c := &LineChart{
		Width:   lineWidth,
		Height:  lineHeight,
		Left:    lineMarginLeft,
		Top:     lineMarginTop,
		Right:   lineWidth - lineMarginRight,
		Bottom:  lineHeight - lineMarginBottom,
		LegendY: lineHeight - 12,
	}

	xAt := func(i int) float64 {
		if len(days) == 1 {
			return (c.Left + c.Right) / 2
		}
		return c.Left + float64(i)*(c.Right-c.Left)/float64(len(days)-1)
	}
	yAt := func(v float64) float64 {
		return c.Bottom - (v-lo)/(hi-lo)*(c.Bottom-c.Top)
	}

	for i, day := range days {
		c.XTicks = append(c.XTicks, Tick{Pos: xAt(i), Label: day.Date})
	}
	for i := 0; i < yTickCount; i++ {
		v := lo + float64(i)*(hi-lo)/float64(yTickCount-1)
		c.YTicks = append(c.YTicks, Tick{Pos: yAt(v), Label: strconv.FormatFloat(v, 'f', -1, 64)})
	}

	legendStep := (c.Right - c.Left) / float64(len(defs))
	for i, def := range defs {
		s := Series{Name: def.name, Color: def.color, LegendX: c.Left + float64(i)*legendStep}

		var path strings.Builder
		for j, v := range values[i] {
			if v == nil {
				if path.Len() > 0 {
					s.Segments = append(s.Segments, path.String())
					path.Reset()
				}
				continue
			}
			p := Point{X: xAt(j), Y: yAt(*v)}
			s.Points = append(s.Points, p)

			cmd := "L"
			if path.Len() == 0 {
				cmd = "M"
			} else {
				path.WriteByte(' ')
			}
			fmt.Fprintf(&path, "%s%.2f %.2f", cmd, p.X, p.Y)
		}
		if path.Len() > 0 {
			s.Segments = append(s.Segments, path.String())
		}
		c.Series = append(c.Series, s)
	}

	return c
}

// niceRange widens [lo, hi] to multiples of 5 with a non-zero span. With no
// values at all it returns [0, 5].
func niceRange(lo, hi float64) (float64, float64) {
	if math.IsInf(lo, 1) || math.IsInf(hi, -1) {
		return 0, 5
	}
	lo = math.Floor(lo/5) * 5
	hi = math.Ceil(hi/5) * 5
	if hi <= lo {
		hi = lo + 5
	}
	return lo, hi
}

// Slice is one wedge of a PieChart. Full marks a wedge covering the whole
// circle, which is drawn as a circle instead of a path.
type Slice struct {
	Name  string
	Color string
	Value float64
	Path  string
	Full  bool
}

// PieChart shows a percentage against its remainder.
type PieChart struct {
	Title  string
	Size   float64
	CX, CY float64
	R      float64
	Slices []Slice

	// Empty is set when the percentage could not be read.
	Empty bool
}

const pieSize = 200.0

// NewProportionChart builds a pie of percent (e.g. "65%") against the rest of
// 100. Values outside [0, 100] are clamped; an unreadable value gives an
// empty chart.
func NewProportionChart(title, valueName, restName, percent string) *PieChart {
	c := &PieChart{
		Title: title,
		Size:  pieSize,
		CX:    pieSize / 2,
		CY:    pieSize / 2,
		R:     pieSize/2 - 10,
	}

	v, ok := parseLeadingNumber(percent)
	if !ok {
		c.Empty = true
		return c
	}
	v = math.Max(0, math.Min(100, v))

	start := 0.0
	for _, s := range []Slice{
		{Name: valueName, Color: colorValue, Value: v},
		{Name: restName, Color: colorRemaining, Value: 100 - v},
	} {
		switch {
		case s.Value <= 0:
			continue
		case s.Value >= 100:
			s.Full = true
		default:
			s.Path = wedgePath(c.CX, c.CY, c.R, start, s.Value)
		}
		start += s.Value
		c.Slices = append(c.Slices, s)
	}

	return c
}

// wedgePath returns SVG path data for a wedge starting at startPct percent of
// the circle and spanning pct percent, clockwise from 12 o'clock.
func wedgePath(cx, cy, r, startPct, pct float64) string {
	a0 := startPct/100*2*math.Pi - math.Pi/2
	a1 := (startPct+pct)/100*2*math.Pi - math.Pi/2

	largeArc := 0
	if pct > 50 {
		largeArc = 1
	}

	return fmt.Sprintf("M%.2f %.2f L%.2f %.2f A%.2f %.2f 0 %d 1 %.2f %.2f Z",
		cx, cy,
		cx+r*math.Cos(a0), cy+r*math.Sin(a0),
		r, r, largeArc,
		cx+r*math.Cos(a1), cy+r*math.Sin(a1),
	)
}

// parseLeadingNumber reads the decimal number at the start of s, ignoring
// leading spaces and any trailing unit ("72.5°F", "40%"). It reports false
// when s does not start with a number.
func parseLeadingNumber(s string) (float64, bool) {
	s = strings.TrimLeft(s, " \t\n")

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
		digits++
	}
	if end < len(s) && s[end] == '.' {
		end++
		for end < len(s) && s[end] >= '0' && s[end] <= '9' {
			end++
			digits++
		}
	}
	if digits == 0 {
		return 0, false
	}

	v, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
