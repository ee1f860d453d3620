package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/banshee-data/training.report/internal/charts"
	"github.com/banshee-data/training.report/internal/db"
	"github.com/banshee-data/training.report/internal/monitoring"
	"github.com/banshee-data/training.report/internal/security"
	"github.com/banshee-data/training.report/internal/summary"
)

func (s *Server) listReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	reports, err := s.db.RecentReports(50)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if reports == nil {
		reports = []db.Report{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reports)
}

// downloadReport serves a previously generated artifact. The file parameter
// must resolve inside the configured output directory.
func (s *Server) downloadReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	file := r.URL.Query().Get("file")
	if file == "" {
		s.writeJSONError(w, http.StatusBadRequest, "file parameter is required")
		return
	}

	if err := security.ValidatePathWithinDirectory(file, s.cfg.GetOutputDir()); err != nil {
		s.writeJSONError(w, http.StatusForbidden, "file is outside the output directory")
		return
	}
	if _, err := os.Stat(file); err != nil {
		s.writeJSONError(w, http.StatusNotFound, "no such report file")
		return
	}

	http.ServeFile(w, r, file)
}

// generateReport materializes one export run: the summary CSV plus the PNG
// figure set per animal, each recorded in the reports table under a shared
// run id.
func (s *Server) generateReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	animals, window, err := s.requestWindow(r)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := s.cache.Load(animals, window.Min, window.Max)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	runID := uuid.NewString()
	runDir := filepath.Join(s.cfg.GetOutputDir(), "reports", runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	created, err := s.writeReportArtifacts(runID, runDir, window, animals, rows)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	monitoring.Logf("report run %s wrote %d artifacts to %s", runID, len(created), runDir)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"run_id": runID, "reports": created})
}

func (s *Server) writeReportArtifacts(runID, runDir string, window summary.DateWindow, animals []string, rows []summary.DailySummary) ([]db.Report, error) {
	var created []db.Report

	record := func(kind, path string) error {
		rep := &db.Report{
			RunID:     runID,
			StartDate: window.Min,
			EndDate:   window.Max,
			Kind:      kind,
			Filepath:  path,
			Filename:  filepath.Base(path),
		}
		if err := s.db.CreateReport(rep); err != nil {
			return err
		}
		created = append(created, *rep)
		return nil
	}

	csvPath := filepath.Join(runDir, "daily_summaries.csv")
	f, err := os.Create(csvPath)
	if err != nil {
		return nil, err
	}
	if err := summary.WriteSummaries(f, rows); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	if err := record("daily_summary", csvPath); err != nil {
		return nil, err
	}

	for _, animal := range animals {
		var animalRows []summary.DailySummary
		for _, row := range rows {
			if row.AnimalID == animal {
				animalRows = append(animalRows, row)
			}
		}
		if len(animalRows) == 0 {
			continue
		}
		files, err := charts.SaveSummaryPlots(runDir, animal, animalRows)
		if err != nil {
			return nil, fmt.Errorf("plots for %s: %w", animal, err)
		}
		for _, file := range files {
			if err := record("charts", file); err != nil {
				return nil, err
			}
		}
	}

	return created, nil
}
