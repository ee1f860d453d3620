package db

import (
	"compress/gzip"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/tailscale/tailsql/server/tailsql"
	_ "modernc.org/sqlite"
	"tailscale.com/tsweb"
)

// ErrNotFound is returned by fetch-one style queries when no row matches the
// key. Callers decide whether that is recoverable (rig volume, prior-day
// mass) or fatal (mass with the lookback exhausted).
var ErrNotFound = errors.New("not found")

type DB struct {
	*sql.DB
}

// OpenDB opens a connection without initialising the schema. Use it when
// migrations manage the schema.
func OpenDB(path string) (*DB, error) {
	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return &DB{sqldb}, nil
}

// NewDB opens a connection and ensures the baseline schema exists.
func NewDB(path string) (*DB, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			sessid             INTEGER PRIMARY KEY,
			ratname            TEXT NOT NULL,
			sessiondate        TEXT NOT NULL,
			hostname           TEXT,
			starttime          TEXT,
			endtime            TEXT,
			n_done_trials      INTEGER NOT NULL DEFAULT 0,
			total_correct      DOUBLE,
			percent_violations DOUBLE,
			right_correct      DOUBLE,
			left_correct       DOUBLE,
			protocol_data      TEXT,
			timestamp          TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_rat_date ON sessions(ratname, sessiondate);
		CREATE TABLE IF NOT EXISTS mass (
			ratname           TEXT NOT NULL,
			date              TEXT NOT NULL,
			mass              DOUBLE NOT NULL,
			tech              TEXT,
			timestamp         TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_mass_rat_date ON mass(ratname, date);
		CREATE TABLE IF NOT EXISTS water (
			rat               TEXT NOT NULL,
			date              TEXT NOT NULL,
			percent_target    DOUBLE,
			volume            DOUBLE,
			timestamp         TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_water_rat_date ON water(rat, date);
		CREATE TABLE IF NOT EXISTS rigwater (
			ratname           TEXT NOT NULL,
			dateval           TEXT NOT NULL,
			totalvol          DOUBLE NOT NULL,
			timestamp         TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_rigwater_rat_date ON rigwater(ratname, dateval);
		CREATE TABLE IF NOT EXISTS reports (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id            TEXT NOT NULL,
			start_date        TEXT NOT NULL,
			end_date          TEXT NOT NULL,
			kind              TEXT NOT NULL,
			filepath          TEXT NOT NULL,
			filename          TEXT NOT NULL,
			created_at        TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return nil, err
	}

	return db, nil
}

// Session is one row of the sessions table: a single physical training
// session. An animal can train in more than one session per day, so
// (ratname, sessiondate) is not unique.
type Session struct {
	SessID       int64
	AnimalID     string
	Date         string // YYYY-MM-DD
	RigID        string
	StartTime    string // HH:MM:SS
	EndTime      string // HH:MM:SS
	DoneTrials   int
	TotalCorrect *float64 // fraction [0,1]
	ViolationFrc *float64 // fraction [0,1]
	RightCorrect *float64
	LeftCorrect  *float64
	ProtocolData []byte // JSON blob of per-trial parallel arrays, may be nil
}

// MassEntry is one row of the mass table.
type MassEntry struct {
	AnimalID string
	Date     string
	MassG    float64
	Tech     string
}

// RecordSession inserts a session row. The protocol blob may be nil.
func (db *DB) RecordSession(s *Session) error {
	res, err := db.Exec(
		`INSERT INTO sessions (
			ratname, sessiondate, hostname, starttime, endtime, n_done_trials,
			total_correct, percent_violations, right_correct, left_correct, protocol_data
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.AnimalID, s.Date, s.RigID, s.StartTime, s.EndTime, s.DoneTrials,
		s.TotalCorrect, s.ViolationFrc, s.RightCorrect, s.LeftCorrect, s.ProtocolData,
	)
	if err != nil {
		return fmt.Errorf("failed to record session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get session id: %w", err)
	}
	s.SessID = id
	return nil
}

// RecordMass inserts a mass row.
func (db *DB) RecordMass(animalID, date string, massG float64, tech string) error {
	_, err := db.Exec(
		`INSERT INTO mass (ratname, date, mass, tech) VALUES (?, ?, ?, ?)`,
		animalID, date, massG, tech,
	)
	if err != nil {
		return fmt.Errorf("failed to record mass: %w", err)
	}
	return nil
}

// RecordWater inserts a pub water row.
func (db *DB) RecordWater(animalID, date string, percentTarget, volumeML float64) error {
	_, err := db.Exec(
		`INSERT INTO water (rat, date, percent_target, volume) VALUES (?, ?, ?, ?)`,
		animalID, date, percentTarget, volumeML,
	)
	if err != nil {
		return fmt.Errorf("failed to record water: %w", err)
	}
	return nil
}

// RecordRigWater inserts a rig water row.
func (db *DB) RecordRigWater(animalID, date string, totalVolML float64) error {
	_, err := db.Exec(
		`INSERT INTO rigwater (ratname, dateval, totalvol) VALUES (?, ?, ?)`,
		animalID, date, totalVolML,
	)
	if err != nil {
		return fmt.Errorf("failed to record rig water: %w", err)
	}
	return nil
}

// SessionDates returns the distinct dates with at least one session for the
// animal inside the window, in ascending order.
func (db *DB) SessionDates(animalID, dateMin, dateMax string) ([]string, error) {
	rows, err := db.Query(
		`SELECT DISTINCT sessiondate FROM sessions
		 WHERE ratname = ? AND sessiondate >= ? AND sessiondate <= ?
		 ORDER BY sessiondate`,
		animalID, dateMin, dateMax,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query session dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan session date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// SessionsForDay returns the animal's sessions on one date. Sessions with
// fewer than two completed trials are degenerate and excluded, matching the
// filter the reconciliation pipeline expects. Rows are returned in insertion
// order; no chronological re-sort is applied.
func (db *DB) SessionsForDay(animalID, date string) ([]Session, error) {
	rows, err := db.Query(
		`SELECT sessid, ratname, sessiondate, hostname, starttime, endtime,
		        n_done_trials, total_correct, percent_violations, right_correct, left_correct
		 FROM sessions
		 WHERE ratname = ? AND sessiondate = ? AND n_done_trials > 1`,
		animalID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()
	return scanSessions(rows, false)
}

// SessionsWithProtocol returns every session for the animal inside the
// window carrying its protocol blob, excluding degenerate (<2 trial)
// sessions that break the per-trial array handling downstream.
func (db *DB) SessionsWithProtocol(animalID, dateMin, dateMax string) ([]Session, error) {
	rows, err := db.Query(
		`SELECT sessid, ratname, sessiondate, hostname, starttime, endtime,
		        n_done_trials, total_correct, percent_violations, right_correct, left_correct,
		        protocol_data
		 FROM sessions
		 WHERE ratname = ? AND sessiondate >= ? AND sessiondate <= ? AND n_done_trials > 1
		 ORDER BY sessiondate, sessid`,
		animalID, dateMin, dateMax,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions with protocol: %w", err)
	}
	defer rows.Close()
	return scanSessions(rows, true)
}

func scanSessions(rows *sql.Rows, withProtocol bool) ([]Session, error) {
	var sessions []Session
	for rows.Next() {
		var s Session
		var rig, start, end sql.NullString
		dest := []any{
			&s.SessID, &s.AnimalID, &s.Date, &rig, &start, &end,
			&s.DoneTrials, &s.TotalCorrect, &s.ViolationFrc, &s.RightCorrect, &s.LeftCorrect,
		}
		if withProtocol {
			dest = append(dest, &s.ProtocolData)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		s.RigID = rig.String
		s.StartTime = start.String
		s.EndTime = end.String
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// MassFor fetches the single mass entry for (animal, date). Returns
// ErrNotFound when no row matches; if the table holds duplicates for the key
// the first is returned.
func (db *DB) MassFor(animalID, date string) (*MassEntry, error) {
	var m MassEntry
	var tech sql.NullString
	err := db.QueryRow(
		`SELECT ratname, date, mass, tech FROM mass WHERE ratname = ? AND date = ? LIMIT 1`,
		animalID, date,
	).Scan(&m.AnimalID, &m.Date, &m.MassG, &tech)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("mass for %s on %s: %w", animalID, date, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch mass: %w", err)
	}
	m.Tech = tech.String
	return &m, nil
}

// RestrictionTargets returns every percent_target row for (animal, date).
// Zero, one, or several rows are all legitimate outcomes; the resolver owns
// the disambiguation policy.
func (db *DB) RestrictionTargets(animalID, date string) ([]float64, error) {
	return db.queryFloats(
		`SELECT percent_target FROM water WHERE rat = ? AND date = ? AND percent_target IS NOT NULL`,
		animalID, date,
	)
}

// PubVolumes returns every pub volume row for (animal, date).
func (db *DB) PubVolumes(animalID, date string) ([]float64, error) {
	return db.queryFloats(
		`SELECT volume FROM water WHERE rat = ? AND date = ? AND volume IS NOT NULL`,
		animalID, date,
	)
}

// RigVolume fetches the single rig water total for (animal, date). Returns
// ErrNotFound when rig water was not tracked that day.
func (db *DB) RigVolume(animalID, date string) (float64, error) {
	var vol float64
	err := db.QueryRow(
		`SELECT totalvol FROM rigwater WHERE ratname = ? AND dateval = ? LIMIT 1`,
		animalID, date,
	).Scan(&vol)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("rig volume for %s on %s: %w", animalID, date, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to fetch rig volume: %w", err)
	}
	return vol, nil
}

func (db *DB) queryFloats(query string, args ...any) ([]float64, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var vals []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan value: %w", err)
		}
		vals = append(vals, v)
	}
	return vals, rows.Err()
}

// AttachAdminRoutes mounts the debug mux: a tailSQL browser over the
// training database and an on-demand gzip backup download.
func (db *DB) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)
	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		log.Fatalf("failed to create tailsql server: %v", err)
	}
	tsql.SetDB("sqlite://training_data.db", db.DB, &tailsql.DBOptions{
		Label: "Training DB",
	})

	debug.Handle("tailsql/", "SQL live debugging", tsql.NewMux())

	debug.Handle("backup", "Create and download a backup of the database now", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		unixTime := time.Now().Unix()
		backupPath := fmt.Sprintf("backup-%d.db", unixTime)
		if _, err := db.Exec("VACUUM INTO ?", backupPath); err != nil {
			http.Error(w, fmt.Sprintf("Failed to create backup: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.gz", backupPath))
		w.Header().Set("Content-Type", "application/octet-stream")

		backupFile, err := os.Open(backupPath)
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to open backup file: %v", err), http.StatusInternalServerError)
			return
		}
		defer func() {
			backupFile.Close()
			if err := os.Remove(backupPath); err != nil {
				log.Printf("Failed to remove backup file: %v", err)
			}
		}()

		gzipWriter := gzip.NewWriter(w)
		defer gzipWriter.Close()
		if _, err := io.Copy(gzipWriter, backupFile); err != nil {
			log.Printf("Failed to stream backup: %v", err)
		}
	}))
}
