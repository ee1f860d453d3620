package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/banshee-data/training.report/internal/charts"
	"github.com/banshee-data/training.report/internal/summary"
	"github.com/banshee-data/training.report/internal/trials"
)

type renderable interface {
	Render(w io.Writer) error
}

type summaryChart func(animalID string, rows []summary.DailySummary) renderable

type trialChart func(animalID string, rows []trials.Trial) renderable

func chartTrials(animalID string, rows []summary.DailySummary) renderable {
	return charts.TrialsChart(animalID, rows)
}

func chartMass(animalID string, rows []summary.DailySummary) renderable {
	return charts.MassChart(animalID, rows)
}

func chartWater(animalID string, rows []summary.DailySummary) renderable {
	return charts.WaterChart(animalID, rows)
}

func chartPerformance(animalID string, rows []summary.DailySummary) renderable {
	return charts.PerformanceChart(animalID, rows)
}

func chartSideBias(animalID string, rows []summary.DailySummary) renderable {
	return charts.SideBiasChart(animalID, rows)
}

func chartPairs(animalID string, rows []trials.Trial) renderable {
	return charts.StimulusPairsChart(animalID, rows)
}

func chartPairPerformance(animalID string, rows []trials.Trial) renderable {
	return charts.PairPerformanceChart(animalID, rows)
}

// requestAnimal resolves the animal query param, defaulting to the study's
// first configured animal.
func (s *Server) requestAnimal(r *http.Request) (string, error) {
	if animal := r.URL.Query().Get("animal"); animal != "" {
		return animal, nil
	}
	if len(s.cfg.AnimalIDs) > 0 {
		return s.cfg.AnimalIDs[0], nil
	}
	return "", fmt.Errorf("no animal requested and none configured")
}

func (s *Server) chartHandler(build summaryChart) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		animal, err := s.requestAnimal(r)
		if err != nil {
			s.writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		_, window, err := s.requestWindow(r)
		if err != nil {
			s.writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}

		rows, err := s.cache.Load(s.cfg.AnimalIDs, window.Min, window.Max)
		if err != nil {
			s.writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}

		var animalRows []summary.DailySummary
		for _, row := range rows {
			if row.AnimalID == animal {
				animalRows = append(animalRows, row)
			}
		}
		if len(animalRows) == 0 {
			s.writeJSONError(w, http.StatusNotFound, fmt.Sprintf("no summaries for %s in %s..%s", animal, window.Min, window.Max))
			return
		}

		s.renderChart(w, build(animal, animalRows))
	}
}

func (s *Server) trialChartHandler(build trialChart) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		animal, err := s.requestAnimal(r)
		if err != nil {
			s.writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		_, window, err := s.requestWindow(r)
		if err != nil {
			s.writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}

		rows, err := s.fetcher.FetchTrainingData([]string{animal}, window.Min, window.Max)
		if err != nil {
			s.writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if len(rows) == 0 {
			s.writeJSONError(w, http.StatusNotFound, fmt.Sprintf("no trials for %s in %s..%s", animal, window.Min, window.Max))
			return
		}

		s.renderChart(w, build(animal, rows))
	}
}

func (s *Server) renderChart(w http.ResponseWriter, chart renderable) {
	var buf bytes.Buffer
	if err := chart.Render(&buf); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
