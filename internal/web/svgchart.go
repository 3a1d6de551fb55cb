package web

import (
	"math"
	"strconv"
	"strings"
	"time"

	"dca-dashboard/internal/portfolio"
	"dca-dashboard/internal/types"
)

const (
	chartWidth   = 800
	chartHeight  = 280
	chartPadLeft = 90
	chartPadTop  = 16
	chartPadEnd  = 16
	chartPadBot  = 32
	xTickCount   = 6
	yTickCount   = 5
)

type lineSpec struct {
	Name  string
	Class string
	Value func(types.ChartPoint) types.Float
}

var (
	investedLine = lineSpec{Name: "Total Invested", Class: "line-invested", Value: func(p types.ChartPoint) types.Float { return p.TotalInvested }}
	marketLine   = lineSpec{Name: "Market Value", Class: "line-market", Value: func(p types.ChartPoint) types.Float { return p.TotalMarketValue }}
	plLine       = lineSpec{Name: "Unrealized P/L", Class: "line-pl", Value: func(p types.ChartPoint) types.Float { return p.TotalUnrealizedPl }}
)

type svgLine struct {
	Name   string
	Class  string
	Points string
}

type svgTick struct {
	Pos   float64
	Label string
}

// svgChart is a pre-laid-out line chart for the chart template.
type svgChart struct {
	Title  string
	Width  int
	Height int
	Left   int
	Top    int
	Right  int
	Bottom int
	Lines  []svgLine
	XTicks []svgTick
	YTicks []svgTick
	Empty  bool
}

// buildChart scales pts into the plot area. Non-finite values are skipped.
func buildChart(title string, pts []types.ChartPoint, tr types.TimeRange, currency string, specs ...lineSpec) svgChart {
	c := svgChart{
		Title:  title,
		Width:  chartWidth,
		Height: chartHeight,
		Left:   chartPadLeft,
		Top:    chartPadTop,
		Right:  chartWidth - chartPadEnd,
		Bottom: chartHeight - chartPadBot,
	}
	if len(pts) == 0 {
		c.Empty = true
		return c
	}

	minX, maxX := pts[0].Timestamp, pts[len(pts)-1].Timestamp
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range pts {
		for _, s := range specs {
			v := s.Value(p)
			if !v.Finite() {
				continue
			}
			minY = math.Min(minY, float64(v))
			maxY = math.Max(maxY, float64(v))
		}
	}
	if math.IsInf(minY, 0) {
		c.Empty = true
		return c
	}
	if minY == maxY {
		minY, maxY = minY-1, maxY+1
	}

	plotW := float64(c.Right - c.Left)
	plotH := float64(c.Bottom - c.Top)
	x := func(ts int64) float64 {
		if maxX == minX {
			return float64(c.Left) + plotW/2
		}
		return float64(c.Left) + plotW*float64(ts-minX)/float64(maxX-minX)
	}
	y := func(v float64) float64 {
		return float64(c.Bottom) - plotH*(v-minY)/(maxY-minY)
	}

	for _, s := range specs {
		var b strings.Builder
		for _, p := range pts {
			v := s.Value(p)
			if !v.Finite() {
				continue
			}
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strconv.FormatFloat(x(p.Timestamp), 'f', 1, 64))
			b.WriteByte(',')
			b.WriteString(strconv.FormatFloat(y(float64(v)), 'f', 1, 64))
		}
		c.Lines = append(c.Lines, svgLine{Name: s.Name, Class: s.Class, Points: b.String()})
	}

	layout := portfolio.AxisLayout(tr)
	for i := 0; i < xTickCount; i++ {
		ts := minX
		if xTickCount > 1 {
			ts = minX + (maxX-minX)*int64(i)/int64(xTickCount-1)
		}
		c.XTicks = append(c.XTicks, svgTick{
			Pos:   x(ts),
			Label: time.UnixMilli(ts).UTC().Format(layout),
		})
		if maxX == minX {
			break
		}
	}
	for i := 0; i < yTickCount; i++ {
		v := minY + (maxY-minY)*float64(i)/float64(yTickCount-1)
		c.YTicks = append(c.YTicks, svgTick{
			Pos:   y(v),
			Label: portfolio.FormatCurrency(v, currency),
		})
	}
	return c
}
