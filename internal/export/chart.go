package export

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// ChartBar is one bar of a chart.
type ChartBar struct {
	Label string
	Value float64
}

var (
	chartBackground = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	chartAxis       = color.NRGBA{R: 90, G: 90, B: 90, A: 255}
	chartGrid       = color.NRGBA{R: 225, G: 230, B: 235, A: 255}
	chartBar        = color.NRGBA{R: 30, G: 120, B: 190, A: 255}
	chartBarMax     = color.NRGBA{R: 15, G: 80, B: 140, A: 255}
)

const (
	chartPadding  = 24
	chartGridRows = 4
)

// RenderBarChart draws a PNG bar chart scaled to the largest value.
// Negative values are drawn as empty bars.
func RenderBarChart(bars []ChartBar, width, height int) ([]byte, error) {
	if len(bars) == 0 {
		return nil, ErrNothingToExport
	}
	if width <= 2*chartPadding || height <= 2*chartPadding {
		return nil, errors.New("export: chart too small")
	}

	canvas := imaging.New(width, height, chartBackground)
	plotW := width - 2*chartPadding
	plotH := height - 2*chartPadding
	originX := chartPadding
	originY := height - chartPadding

	for i := 1; i <= chartGridRows; i++ {
		y := originY - plotH*i/chartGridRows
		canvas = imaging.Paste(canvas, imaging.New(plotW, 1, chartGrid), image.Pt(originX, y))
	}

	maxValue, maxIndex := 0.0, -1
	for i, bar := range bars {
		if bar.Value > maxValue {
			maxValue, maxIndex = bar.Value, i
		}
	}

	slot := float64(plotW) / float64(len(bars))
	barW := int(math.Max(1, math.Floor(slot*0.7)))
	for i, bar := range bars {
		if maxValue <= 0 || bar.Value <= 0 {
			continue
		}
		h := int(math.Round(float64(plotH) * bar.Value / maxValue))
		if h < 1 {
			h = 1
		}
		fill := chartBar
		if i == maxIndex {
			fill = chartBarMax
		}
		x := originX + int(math.Round(slot*float64(i)+(slot-float64(barW))/2))
		canvas = imaging.Paste(canvas, imaging.New(barW, h, fill), image.Pt(x, originY-h))
	}

	canvas = imaging.Paste(canvas, imaging.New(plotW, 2, chartAxis), image.Pt(originX, originY))
	canvas = imaging.Paste(canvas, imaging.New(2, plotH, chartAxis), image.Pt(originX-2, originY-plotH))

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
