package charts

import (
	"fmt"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/training.report/internal/summary"
	"github.com/banshee-data/training.report/internal/trials"
)

func lineGlobals(c *charts.Line, title, subtitle, yName string) {
	c.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1100px", Height: "450px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName}),
	)
}

func dates(rows []summary.DailySummary) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Date
	}
	return out
}

// lineData maps one summary field to chart points, holding the slot of a
// day where the field is absent so dates stay aligned across series.
func lineData(rows []summary.DailySummary, value func(summary.DailySummary) *float64) []opts.LineData {
	out := make([]opts.LineData, len(rows))
	for i, r := range rows {
		if v := value(r); v != nil {
			out[i] = opts.LineData{Value: *v}
		} else {
			out[i] = opts.LineData{Value: nil}
		}
	}
	return out
}

// TrialsChart plots completed trials per day together with the trial rate.
func TrialsChart(animalID string, rows []summary.DailySummary) *charts.Line {
	line := charts.NewLine()
	lineGlobals(line, "Trials", animalID, "count / per hr")

	counts := make([]opts.LineData, len(rows))
	for i, r := range rows {
		counts[i] = opts.LineData{Value: r.DoneTrials}
	}

	line.SetXAxis(dates(rows)).
		AddSeries("n_done_trials", counts).
		AddSeries("trial_rate", lineData(rows, func(r summary.DailySummary) *float64 { return r.TrialRate }))
	return line
}

// MassChart plots daily body mass.
func MassChart(animalID string, rows []summary.DailySummary) *charts.Line {
	line := charts.NewLine()
	lineGlobals(line, "Mass", animalID, "g")

	data := make([]opts.LineData, len(rows))
	for i, r := range rows {
		data[i] = opts.LineData{Value: r.MassG}
	}
	line.SetXAxis(dates(rows)).
		AddSeries("mass", data, charts.WithItemStyleOpts(opts.ItemStyle{Color: colorMass}))
	return line
}

// WaterChart plots pub and rig volumes as stacked bars with the daily
// volume target overlaid as a line.
func WaterChart(animalID string, rows []summary.DailySummary) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Water", Width: "1100px", Height: "450px"}),
		charts.WithTitleOpts(opts.Title{Title: "Water", Subtitle: animalID}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "mL"}),
	)

	pub := make([]opts.BarData, len(rows))
	rig := make([]opts.BarData, len(rows))
	target := make([]opts.LineData, len(rows))
	for i, r := range rows {
		pub[i] = opts.BarData{Value: r.PubVolume}
		rig[i] = opts.BarData{Value: r.RigVolume}
		target[i] = opts.LineData{Value: r.VolumeTarget}
	}

	bar.SetXAxis(dates(rows)).
		AddSeries("pub_volume", pub, charts.WithItemStyleOpts(opts.ItemStyle{Color: colorPub})).
		AddSeries("rig_volume", rig, charts.WithItemStyleOpts(opts.ItemStyle{Color: colorRig})).
		SetSeriesOptions(charts.WithBarChartOpts(opts.BarChart{Stack: "water"}))

	targetLine := charts.NewLine()
	targetLine.SetXAxis(dates(rows)).
		AddSeries("volume_target", target, charts.WithItemStyleOpts(opts.ItemStyle{Color: colorTarget}))
	bar.Overlap(targetLine)
	return bar
}

// PerformanceChart plots hit and violation rates over time.
func PerformanceChart(animalID string, rows []summary.DailySummary) *charts.Line {
	line := charts.NewLine()
	lineGlobals(line, "Performance", animalID, "fraction")

	line.SetXAxis(dates(rows)).
		AddSeries("hit_rate",
			lineData(rows, func(r summary.DailySummary) *float64 { return r.HitRate }),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: colorHits})).
		AddSeries("viol_rate",
			lineData(rows, func(r summary.DailySummary) *float64 { return r.ViolationRate }),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: colorViolation}))
	return line
}

// SideBiasChart plots the daily side bias; negative is a left bias.
func SideBiasChart(animalID string, rows []summary.DailySummary) *charts.Line {
	line := charts.NewLine()
	lineGlobals(line, "Side Bias", animalID, "right - left")

	line.SetXAxis(dates(rows)).
		AddSeries("side_bias",
			lineData(rows, func(r summary.DailySummary) *float64 { return r.SideBias }),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: colorSideBias}))
	return line
}

// PairPerformance is the mean hit rate per sound pair per date, the pivot
// behind the pair-performance chart.
type PairPerformance struct {
	Dates []string
	Pairs []string
	// Mean[pair][date] is absent when the pair was not run that date.
	Mean map[string]map[string]float64
}

// PivotPairPerformance aggregates cleaned trials into mean hits per
// (date, sound pair).
func PivotPairPerformance(rows []trials.Trial) *PairPerformance {
	type acc struct {
		sum float64
		n   int
	}
	cells := make(map[string]map[string]*acc)
	dateSet := make(map[string]bool)

	for _, t := range rows {
		dateSet[t.Date] = true
		if cells[t.SoundPair] == nil {
			cells[t.SoundPair] = make(map[string]*acc)
		}
		a := cells[t.SoundPair][t.Date]
		if a == nil {
			a = &acc{}
			cells[t.SoundPair][t.Date] = a
		}
		a.sum += float64(t.Hit)
		a.n++
	}

	pp := &PairPerformance{Mean: make(map[string]map[string]float64)}
	for d := range dateSet {
		pp.Dates = append(pp.Dates, d)
	}
	sort.Strings(pp.Dates)
	for pair, byDate := range cells {
		pp.Pairs = append(pp.Pairs, pair)
		pp.Mean[pair] = make(map[string]float64)
		for d, a := range byDate {
			pp.Mean[pair][d] = a.sum / float64(a.n)
		}
	}
	sort.Strings(pp.Pairs)
	return pp
}

// PairPerformanceChart plots hit rate over time for each sound pair in its
// fixed color.
func PairPerformanceChart(animalID string, rows []trials.Trial) *charts.Line {
	pp := PivotPairPerformance(rows)

	line := charts.NewLine()
	lineGlobals(line, "Pair Performance", animalID, "fraction correct")

	line.SetXAxis(pp.Dates)
	for _, pair := range pp.Pairs {
		data := make([]opts.LineData, len(pp.Dates))
		for i, d := range pp.Dates {
			if v, ok := pp.Mean[pair][d]; ok {
				data[i] = opts.LineData{Value: v}
			} else {
				data[i] = opts.LineData{Value: nil}
			}
		}
		line.AddSeries(pair, data, charts.WithItemStyleOpts(opts.ItemStyle{Color: PairColor(pair)}))
	}
	return line
}

// StimulusPairsChart plots the (sa, sb) pairs currently in use.
func StimulusPairsChart(animalID string, rows []trials.Trial) *charts.Scatter {
	seen := make(map[string][2]float64)
	for _, t := range rows {
		seen[t.SoundPair] = [2]float64{t.SAkHz, t.SBkHz}
	}
	pairs := make([]string, 0, len(seen))
	for p := range seen {
		pairs = append(pairs, p)
	}
	sort.Strings(pairs)

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Stimulus Pairs", Width: "600px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Stimulus Pairs", Subtitle: fmt.Sprintf("%s pairs=%d", animalID, len(pairs))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Sa (kHz)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Sb (kHz)"}),
	)
	for _, p := range pairs {
		xy := seen[p]
		scatter.AddSeries(p,
			[]opts.ScatterData{{Value: []interface{}{xy[0], xy[1]}}},
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 14}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: PairColor(p)}))
	}
	return scatter
}
