// Package api serves the reconciled summary table, cleaned trial exports
// and training charts over HTTP.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/banshee-data/training.report/internal/config"
	"github.com/banshee-data/training.report/internal/db"
	"github.com/banshee-data/training.report/internal/summary"
	"github.com/banshee-data/training.report/internal/timeutil"
	"github.com/banshee-data/training.report/internal/trials"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

type Server struct {
	db      *db.DB
	cfg     *config.StudyConfig
	cache   *summary.Cache
	fetcher *trials.Fetcher
	clock   timeutil.Clock
}

func NewServer(database *db.DB, cfg *config.StudyConfig, clock timeutil.Clock) *Server {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	builder := summary.NewBuilder(database, cfg)
	return &Server{
		db:      database,
		cfg:     cfg,
		cache:   summary.NewCache(cfg.GetOutputDir(), builder, clock),
		fetcher: trials.NewFetcher(database),
		clock:   clock,
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/summaries", s.listSummaries)
	mux.HandleFunc("/summaries.csv", s.exportSummariesCSV)
	mux.HandleFunc("/trials.csv", s.exportTrialsCSV)
	mux.HandleFunc("/config", s.showConfig)
	mux.HandleFunc("/reports", s.listReports)
	mux.HandleFunc("/reports/generate", s.generateReport)
	mux.HandleFunc("/reports/download", s.downloadReport)
	mux.HandleFunc("/charts/trials", s.chartHandler(chartTrials))
	mux.HandleFunc("/charts/mass", s.chartHandler(chartMass))
	mux.HandleFunc("/charts/water", s.chartHandler(chartWater))
	mux.HandleFunc("/charts/performance", s.chartHandler(chartPerformance))
	mux.HandleFunc("/charts/side-bias", s.chartHandler(chartSideBias))
	mux.HandleFunc("/charts/pairs", s.trialChartHandler(chartPairs))
	mux.HandleFunc("/charts/pair-performance", s.trialChartHandler(chartPairPerformance))
	return mux
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// requestWindow resolves the animals and date window from query params,
// defaulting to the configured study.
func (s *Server) requestWindow(r *http.Request) ([]string, summary.DateWindow, error) {
	animals := s.cfg.AnimalIDs
	if q := r.URL.Query().Get("animals"); q != "" {
		animals = strings.Split(q, ",")
		for i := range animals {
			animals[i] = strings.TrimSpace(animals[i])
		}
	}

	dateMin := r.URL.Query().Get("date_min")
	if dateMin == "" {
		dateMin = s.cfg.GetDateMin()
	}
	dateMax := r.URL.Query().Get("date_max")

	window, err := summary.NewDateWindow(dateMin, dateMax, s.clock)
	if err != nil {
		return nil, summary.DateWindow{}, err
	}
	return animals, window, nil
}

func (s *Server) listSummaries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
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

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rows)
}

func (s *Server) exportSummariesCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
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

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="daily_summaries.csv"`)
	if err := summary.WriteSummaries(w, rows); err != nil {
		log.Printf("failed to stream summaries CSV: %v", err)
	}
}

func (s *Server) exportTrialsCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	animals, window, err := s.requestWindow(r)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := s.fetcher.FetchTrainingData(animals, window.Min, window.Max)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="trials.csv"`)
	if err := trials.WriteTrials(w, rows); err != nil {
		log.Printf("failed to stream trials CSV: %v", err)
	}
}

func (s *Server) showConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.cfg)
}
