package charts

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/training.report/internal/security"
	"github.com/banshee-data/training.report/internal/summary"
)

// SaveSummaryPlots renders one PNG per figure for an animal's summary rows
// and returns the file paths written. Days where a field is absent are
// skipped rather than drawn as zero.
func SaveSummaryPlots(outputDir, animalID string, rows []summary.DailySummary) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	figures := []struct {
		name  string
		build func() (*plot.Plot, error)
	}{
		{"trials", func() (*plot.Plot, error) { return trialsPlot(animalID, rows) }},
		{"mass", func() (*plot.Plot, error) { return massPlot(animalID, rows) }},
		{"performance", func() (*plot.Plot, error) { return performancePlot(animalID, rows) }},
		{"side_bias", func() (*plot.Plot, error) { return sideBiasPlot(animalID, rows) }},
	}

	var files []string
	for _, fig := range figures {
		p, err := fig.build()
		if err != nil {
			return files, fmt.Errorf("%s plot: %w", fig.name, err)
		}
		file := filepath.Join(outputDir, fmt.Sprintf("%s_%s.png", security.SanitizeFilename(animalID), fig.name))
		if err := p.Save(10*vg.Inch, 3*vg.Inch, file); err != nil {
			return files, fmt.Errorf("save %s plot: %w", fig.name, err)
		}
		files = append(files, file)
	}
	return files, nil
}

func trialsPlot(animalID string, rows []summary.DailySummary) (*plot.Plot, error) {
	p := newDatePlot(fmt.Sprintf("%s - Trials", animalID), "count / per hr")

	counts := make(plotter.XYs, 0, len(rows))
	rates := make(plotter.XYs, 0, len(rows))
	for _, r := range rows {
		x, err := dateX(r.Date)
		if err != nil {
			return nil, err
		}
		counts = append(counts, plotter.XY{X: x, Y: float64(r.DoneTrials)})
		if r.TrialRate != nil {
			rates = append(rates, plotter.XY{X: x, Y: *r.TrialRate})
		}
	}

	if err := addLine(p, "n_done_trials", counts, hexColor(colorPub)); err != nil {
		return nil, err
	}
	if err := addLine(p, "trial_rate", rates, hexColor(colorViolation)); err != nil {
		return nil, err
	}
	return p, nil
}

func massPlot(animalID string, rows []summary.DailySummary) (*plot.Plot, error) {
	p := newDatePlot(fmt.Sprintf("%s - Mass", animalID), "g")

	pts := make(plotter.XYs, 0, len(rows))
	for _, r := range rows {
		x, err := dateX(r.Date)
		if err != nil {
			return nil, err
		}
		pts = append(pts, plotter.XY{X: x, Y: r.MassG})
	}
	if err := addLine(p, "mass", pts, hexColor(colorMass)); err != nil {
		return nil, err
	}
	return p, nil
}

func performancePlot(animalID string, rows []summary.DailySummary) (*plot.Plot, error) {
	p := newDatePlot(fmt.Sprintf("%s - Performance", animalID), "fraction")
	p.Y.Min, p.Y.Max = 0, 1

	hits := make(plotter.XYs, 0, len(rows))
	viols := make(plotter.XYs, 0, len(rows))
	for _, r := range rows {
		x, err := dateX(r.Date)
		if err != nil {
			return nil, err
		}
		if r.HitRate != nil {
			hits = append(hits, plotter.XY{X: x, Y: *r.HitRate})
		}
		if r.ViolationRate != nil {
			viols = append(viols, plotter.XY{X: x, Y: *r.ViolationRate})
		}
	}
	if err := addLine(p, "hit_rate", hits, hexColor(colorHits)); err != nil {
		return nil, err
	}
	if err := addLine(p, "viol_rate", viols, hexColor(colorViolation)); err != nil {
		return nil, err
	}
	return p, nil
}

func sideBiasPlot(animalID string, rows []summary.DailySummary) (*plot.Plot, error) {
	p := newDatePlot(fmt.Sprintf("%s - Side Bias", animalID), "right - left")

	pts := make(plotter.XYs, 0, len(rows))
	for _, r := range rows {
		x, err := dateX(r.Date)
		if err != nil {
			return nil, err
		}
		if r.SideBias != nil {
			pts = append(pts, plotter.XY{X: x, Y: *r.SideBias})
		}
	}
	if err := addLine(p, "side_bias", pts, hexColor(colorSideBias)); err != nil {
		return nil, err
	}

	// zero line marks no bias
	zero := plotter.NewFunction(func(x float64) float64 { return 0 })
	zero.Color = color.Gray{Y: 80}
	zero.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(zero)
	return p, nil
}

func newDatePlot(title, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Date"
	p.Y.Label.Text = yLabel
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p
}

func addLine(p *plot.Plot, name string, pts plotter.XYs, c color.Color) error {
	if len(pts) == 0 {
		return nil
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = c
	line.Width = vg.Points(1)
	p.Add(line)
	p.Legend.Add(name, line)
	return nil
}

func dateX(date string) (float64, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, fmt.Errorf("bad date %q: %w", date, err)
	}
	return float64(t.Unix()), nil
}

func hexColor(hex string) color.Color {
	var r, g, b uint8
	fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b)
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
