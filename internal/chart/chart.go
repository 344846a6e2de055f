// Package chart renders candle series into go-echarts pages: a kline
// panel with a moving-average overlay, a coarser secondary panel and
// volume bars. Display-time gap policy lives here: the aggregator
// never fabricates prices, the renderer decides how holes look.
package chart

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/jonghae5/stock-cli/internal/market"
	"github.com/jonghae5/stock-cli/internal/timeframe"
)

const (
	colorBackground    = "#060c1b"
	colorTextPrimary   = "#eceff4"
	colorTextSecondary = "#9ca3af"
	colorBull          = "#34d399"
	colorBear          = "#f87171"
	colorOverlay       = "#fbbf24"
	colorVolume        = "#a78bfa"

	defaultWidthPx  = 1400
	klineHeightPx   = 560
	panelHeightPx   = 300
	volumeHeightPx  = 220
)

// Input carries everything one graph invocation renders.
type Input struct {
	Symbol    string
	Spec      timeframe.Spec
	Primary   market.Candles
	Secondary market.Candles
	Overlay   []float64 // SMA of primary closes, NaN in the warmup region
	SMAWindow int
	WidthPx   int
	HeightPx  int // main kline panel only; secondary and volume are fixed
}

// TotalHeight is the pixel height of the stacked panels, which the
// PNG screenshot viewport needs to match.
func (in Input) TotalHeight() int {
	h := in.klineHeight() + volumeHeightPx
	if len(in.Secondary) > 0 {
		h += panelHeightPx
	}
	return h
}

func (in Input) width() int {
	if in.WidthPx > 0 {
		return in.WidthPx
	}
	return defaultWidthPx
}

func (in Input) klineHeight() int {
	if in.HeightPx > 0 {
		return in.HeightPx
	}
	return klineHeightPx
}

// BuildPage assembles the chart page without touching the filesystem.
func BuildPage(in Input) (*components.Page, error) {
	if strings.TrimSpace(in.Symbol) == "" {
		return nil, fmt.Errorf("symbol required for chart")
	}
	if len(in.Primary) == 0 {
		return nil, fmt.Errorf("no candles to render for %s", in.Symbol)
	}
	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)

	xAxis := buildXAxis(in.Primary)
	kline := buildKline(in, xAxis)
	if line := buildOverlayLine(in, xAxis); line != nil {
		kline.Overlap(line)
	}
	page.AddCharts(kline)

	if len(in.Secondary) > 0 {
		page.AddCharts(buildSecondaryPanel(in))
	}
	page.AddCharts(buildVolumePanel(in, xAxis))
	return page, nil
}

func buildKline(in Input, xAxis []string) *charts.Kline {
	minPrice, maxPrice := priceBounds(in.Primary)
	padding := (maxPrice - minPrice) * 0.05
	if padding <= 0 {
		padding = math.Max(1, math.Abs(maxPrice)*0.01)
	}

	kline := charts.NewKLine()
	kline.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:           types.ThemeWesteros,
			Width:           fmt.Sprintf("%dpx", in.width()),
			Height:          fmt.Sprintf("%dpx", in.klineHeight()),
			BackgroundColor: colorBackground,
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), TextStyle: &opts.TextStyle{Color: colorTextPrimary}}),
		charts.WithTitleOpts(opts.Title{
			Title:         fmt.Sprintf("%s %d%s", strings.ToUpper(in.Symbol), in.Spec.N, in.Spec.Unit),
			Subtitle:      subtitle(in),
			Left:          "left",
			Top:           "10",
			TitleStyle:    &opts.TextStyle{Color: colorTextPrimary, FontSize: 18},
			SubtitleStyle: &opts.TextStyle{Color: colorTextSecondary},
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", XAxisIndex: []int{0}}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
			SplitLine: &opts.SplitLine{Show: opts.Bool(false)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Scale:     opts.Bool(true),
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
			Min:       round(minPrice-padding, 4),
			Max:       round(maxPrice+padding, 4),
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: colorTextSecondary, Opacity: opts.Float(0.2)}},
		}),
	)
	kline.SetSeriesOptions(
		charts.WithItemStyleOpts(opts.ItemStyle{
			Color:        colorBull,
			Color0:       colorBear,
			BorderColor:  colorBull,
			BorderColor0: colorBear,
		}),
	)
	kline.SetXAxis(xAxis)
	kline.AddSeries("Price", buildKlineSeries(in.Primary))
	return kline
}

func subtitle(in Input) string {
	first, last := in.Primary.Span()
	s := fmt.Sprintf("%d candles, %s – %s",
		len(in.Primary),
		market.Candle{OpenTime: first}.TimeString(),
		market.Candle{OpenTime: last}.TimeString())
	if gaps := in.Primary.Gaps(); gaps > 0 {
		s += fmt.Sprintf(" (%d gap buckets)", gaps)
	}
	return s
}

func buildXAxis(candles market.Candles) []string {
	x := make([]string, len(candles))
	for i, c := range candles {
		x[i] = c.OpenTimeUTC().Format("01-02 15:04")
	}
	return x
}

// buildKlineSeries applies the display gap policy: gap buckets after
// the first trade carry the previous close forward as a flat candle,
// leading gaps stay empty.
func buildKlineSeries(candles market.Candles) []opts.KlineData {
	data := make([]opts.KlineData, 0, len(candles))
	prevClose := math.NaN()
	for _, c := range candles {
		if c.IsGap() {
			if math.IsNaN(prevClose) {
				data = append(data, opts.KlineData{Value: nil})
				continue
			}
			data = append(data, opts.KlineData{Value: [4]float64{prevClose, prevClose, prevClose, prevClose}})
			continue
		}
		data = append(data, opts.KlineData{Value: [4]float64{c.Open, c.Close, c.Low, c.High}})
		prevClose = c.Close
	}
	return data
}

func buildOverlayLine(in Input, xAxis []string) *charts.Line {
	if len(in.Overlay) == 0 {
		return nil
	}
	line := charts.NewLine()
	line.SetSeriesOptions(
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
	)
	data := make([]opts.LineData, len(in.Overlay))
	for i, v := range in.Overlay {
		if math.IsNaN(v) {
			data[i] = opts.LineData{Value: nil}
			continue
		}
		data[i] = opts.LineData{Value: v}
	}
	window := in.SMAWindow
	if window > len(in.Primary) {
		window = len(in.Primary)
	}
	line.SetXAxis(xAxis)
	line.AddSeries(fmt.Sprintf("SMA(%d)", window), data,
		charts.WithLineStyleOpts(opts.LineStyle{Color: colorOverlay, Width: 2}))
	return line
}

func buildSecondaryPanel(in Input) *charts.Kline {
	coarseMinutes := in.Spec.Minutes() * in.Spec.CoarseFactor()
	kline := charts.NewKLine()
	kline.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:           types.ThemeWesteros,
			Width:           fmt.Sprintf("%dpx", in.width()),
			Height:          fmt.Sprintf("%dpx", panelHeightPx),
			BackgroundColor: colorBackground,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:      fmt.Sprintf("Secondary %dm × %d", coarseMinutes, len(in.Secondary)),
			Left:       "left",
			TitleStyle: &opts.TextStyle{Color: colorTextPrimary},
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Scale:     opts.Bool(true),
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
		}),
	)
	kline.SetSeriesOptions(
		charts.WithItemStyleOpts(opts.ItemStyle{
			Color:        colorBull,
			Color0:       colorBear,
			BorderColor:  colorBull,
			BorderColor0: colorBear,
		}),
	)
	kline.SetXAxis(buildXAxis(in.Secondary))
	kline.AddSeries("Secondary", buildKlineSeries(in.Secondary))
	return kline
}

func buildVolumePanel(in Input, xAxis []string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:           types.ThemeWesteros,
			Width:           fmt.Sprintf("%dpx", in.width()),
			Height:          fmt.Sprintf("%dpx", volumeHeightPx),
			BackgroundColor: colorBackground,
		}),
		charts.WithTitleOpts(opts.Title{Title: "Volume", Left: "left", TitleStyle: &opts.TextStyle{Color: colorTextPrimary}}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{AxisLabel: &opts.AxisLabel{Show: opts.Bool(false)}}),
		charts.WithYAxisOpts(opts.YAxis{
			AxisLabel: &opts.AxisLabel{Show: opts.Bool(true), Color: colorTextSecondary},
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: colorTextSecondary, Opacity: opts.Float(0.15)}},
		}),
	)
	vols := make([]opts.BarData, len(in.Primary))
	for i, c := range in.Primary {
		if c.IsGap() {
			vols[i] = opts.BarData{Value: nil}
			continue
		}
		color := colorBear
		if c.Close >= c.Open {
			color = colorBull
		}
		vols[i] = opts.BarData{
			Value:     c.Volume,
			ItemStyle: &opts.ItemStyle{Color: color, Opacity: opts.Float(0.6)},
		}
	}
	bar.SetXAxis(xAxis)
	bar.AddSeries("Volume", vols)
	return bar
}

func priceBounds(candles market.Candles) (min, max float64) {
	min = math.MaxFloat64
	max = -math.MaxFloat64
	for _, c := range candles {
		if c.IsGap() {
			continue
		}
		if c.Low < min {
			min = c.Low
		}
		if c.High > max {
			max = c.High
		}
	}
	if min == math.MaxFloat64 {
		return 0, 0
	}
	return min, max
}

func round(v float64, places int) float64 {
	scale := math.Pow10(places)
	return math.Round(v*scale) / scale
}
