// internal/metrics/chart.go
package metrics

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
)

// ChartSeries is one box of a comparison chart.
type ChartSeries struct {
	Label  []string
	Scores []float64
}

// Chart is a set of score distributions drawn side by side.
type Chart struct {
	Title  []string
	YLabel string
	Series []ChartSeries
}

const (
	chartHeight  = 480
	plotTop      = 40
	plotBottom   = 360
	plotLeft     = 70
	slotWidth    = 150
	boxHalfWidth = 35
)

type point struct{ X, Y float64 }

type boxView struct {
	Center      float64
	Left, Right float64
	Q1, Q3      float64
	Median      float64
	WhiskerLow  float64
	WhiskerHigh float64
	NotchPoints string
	Fliers      []point
	Label       []string
}

type tickView struct {
	Y     float64
	Label string
}

type chartView struct {
	Title      string
	TitleLines []string
	YLabel     string
	Width      int
	Height     int
	PlotLeft   float64
	PlotRight  float64
	PlotTop    float64
	PlotBottom float64
	Ticks      []tickView
	Boxes      []boxView
}

// RenderChartHTML renders the chart as a standalone HTML page with inline SVG.
func RenderChartHTML(chart Chart) (string, error) {
	view := layoutChart(chart)
	var buf bytes.Buffer
	if err := chartTemplate.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func valueRange(boxes []BoxStats) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, b := range boxes {
		if b.N == 0 {
			continue
		}
		lo = math.Min(lo, math.Min(b.WhiskerLow, b.NotchLow))
		hi = math.Max(hi, math.Max(b.WhiskerHigh, b.NotchHigh))
		for _, f := range b.Fliers {
			lo = math.Min(lo, f)
			hi = math.Max(hi, f)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 1
	}
	if hi-lo < 1e-9 {
		lo -= 0.05
		hi += 0.05
	}
	pad := (hi - lo) * 0.05
	return lo - pad, hi + pad
}

func layoutChart(chart Chart) chartView {
	stats := make([]BoxStats, len(chart.Series))
	for i, s := range chart.Series {
		stats[i] = ComputeBox(s.Scores)
	}
	lo, hi := valueRange(stats)

	width := plotLeft + slotWidth*max(len(chart.Series), 1) + 30
	view := chartView{
		TitleLines: chart.Title,
		YLabel:     chart.YLabel,
		Width:      width,
		Height:     chartHeight,
		PlotLeft:   plotLeft,
		PlotRight:  float64(width - 30),
		PlotTop:    plotTop,
		PlotBottom: plotBottom,
	}
	if len(chart.Title) > 0 {
		view.Title = chart.Title[0]
	}

	y := func(v float64) float64 {
		return plotBottom - (v-lo)/(hi-lo)*(plotBottom-plotTop)
	}

	for i := 0; i <= 5; i++ {
		v := lo + (hi-lo)*float64(i)/5
		view.Ticks = append(view.Ticks, tickView{Y: y(v), Label: fmt.Sprintf("%.2f", v)})
	}

	for i, s := range chart.Series {
		b := stats[i]
		center := float64(plotLeft + slotWidth*i + slotWidth/2)
		left, right := center-boxHalfWidth, center+boxHalfWidth
		bv := boxView{
			Center:      center,
			Left:        left,
			Right:       right,
			Q1:          y(b.Q1),
			Q3:          y(b.Q3),
			Median:      y(b.Median),
			WhiskerLow:  y(b.WhiskerLow),
			WhiskerHigh: y(b.WhiskerHigh),
			Label:       s.Label,
		}
		inset := boxHalfWidth / 2.0
		bv.NotchPoints = fmt.Sprintf("%.1f,%.1f %.1f,%.1f %.1f,%.1f %.1f,%.1f %.1f,%.1f %.1f,%.1f %.1f,%.1f %.1f,%.1f %.1f,%.1f %.1f,%.1f",
			left, y(b.Q1),
			left, y(b.NotchLow),
			left+inset, y(b.Median),
			left, y(b.NotchHigh),
			left, y(b.Q3),
			right, y(b.Q3),
			right, y(b.NotchHigh),
			right-inset, y(b.Median),
			right, y(b.NotchLow),
			right, y(b.Q1),
		)
		for _, f := range b.Fliers {
			bv.Fliers = append(bv.Fliers, point{X: center, Y: y(f)})
		}
		view.Boxes = append(view.Boxes, bv)
	}
	return view
}

var chartTemplate = template.Must(template.New("compare-chart").Funcs(template.FuncMap{
	"px": func(v float64) string { return fmt.Sprintf("%.1f", v) },
	"add": func(a float64, b int) float64 { return a + float64(b) },
	"lineY": func(i int) int { return plotBottom + 24 + 16*i },
	"half": func(a, b float64) float64 { return (a + b) / 2 },
}).Parse(chartTemplateHTML))

const chartTemplateHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>{{ .Title }}</title>
  <style>
    body { font-family: sans-serif; background: #F1F5F9; color: #0F172A; }
    .card { background: #FFFFFF; border: 1px solid #E2E8F0; display: inline-block; padding: 12px; }
    h1 { font-size: 1.1rem; margin: 0 0 8px 0; }
    h2 { font-size: 0.9rem; font-weight: normal; margin: 0 0 8px 0; color: #64748B; }
    svg text { font-size: 11px; fill: #0F172A; }
  </style>
</head>
<body>
  <div class="card">
    {{- range $i, $line := .TitleLines }}
    {{- if eq $i 0 }}
    <h1>{{ $line }}</h1>
    {{- else }}
    <h2>{{ $line }}</h2>
    {{- end }}
    {{- end }}
    <svg xmlns="http://www.w3.org/2000/svg" width="{{ .Width }}" height="{{ .Height }}">
      {{- range .Ticks }}
      <line x1="{{ px $.PlotLeft }}" x2="{{ px $.PlotRight }}" y1="{{ px .Y }}" y2="{{ px .Y }}" stroke="#E2E8F0"/>
      <text x="{{ px (add $.PlotLeft -6) }}" y="{{ px (add .Y 4) }}" text-anchor="end">{{ .Label }}</text>
      {{- end }}
      <line x1="{{ px .PlotLeft }}" x2="{{ px .PlotLeft }}" y1="{{ px .PlotTop }}" y2="{{ px .PlotBottom }}" stroke="#334155"/>
      <text transform="translate(16 {{ px (half .PlotTop .PlotBottom) }}) rotate(-90)" text-anchor="middle">{{ .YLabel }}</text>
      {{- range .Boxes }}
      <line x1="{{ px .Center }}" x2="{{ px .Center }}" y1="{{ px .WhiskerLow }}" y2="{{ px .Q1 }}" stroke="black"/>
      <line x1="{{ px .Center }}" x2="{{ px .Center }}" y1="{{ px .Q3 }}" y2="{{ px .WhiskerHigh }}" stroke="black"/>
      <line x1="{{ px (add .Center -12) }}" x2="{{ px (add .Center 12) }}" y1="{{ px .WhiskerLow }}" y2="{{ px .WhiskerLow }}" stroke="black"/>
      <line x1="{{ px (add .Center -12) }}" x2="{{ px (add .Center 12) }}" y1="{{ px .WhiskerHigh }}" y2="{{ px .WhiskerHigh }}" stroke="black"/>
      <polygon points="{{ .NotchPoints }}" fill="#E24A33" fill-opacity="0.75" stroke="black"/>
      <line x1="{{ px (add .Left 17) }}" x2="{{ px (add .Right -17) }}" y1="{{ px .Median }}" y2="{{ px .Median }}" stroke="black" stroke-width="2"/>
      {{- $center := .Center }}
      {{- range .Fliers }}
      <circle cx="{{ px .X }}" cy="{{ px .Y }}" r="3" fill="none" stroke="black"/>
      {{- end }}
      {{- range $i, $line := .Label }}
      <text x="{{ px $center }}" y="{{ lineY $i }}" text-anchor="middle">{{ $line }}</text>
      {{- end }}
      {{- end }}
    </svg>
  </div>
</body>
</html>
`
