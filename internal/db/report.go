package db

import (
	"database/sql"
	"fmt"
	"time"
)

// Report represents one exported artifact run (summary CSV, trial CSV, or
// chart PNG set) so past exports can be listed and re-downloaded.
type Report struct {
	ID        int       `json:"id"`
	RunID     string    `json:"run_id"`     // UUID assigned per export run
	StartDate string    `json:"start_date"` // YYYY-MM-DD
	EndDate   string    `json:"end_date"`   // YYYY-MM-DD
	Kind      string    `json:"kind"`       // daily_summary, trials, or charts
	Filepath  string    `json:"filepath"`   // relative to the export directory
	Filename  string    `json:"filename"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateReport creates a new report record in the database.
func (db *DB) CreateReport(report *Report) error {
	result, err := db.Exec(
		`INSERT INTO reports (run_id, start_date, end_date, kind, filepath, filename)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		report.RunID,
		report.StartDate,
		report.EndDate,
		report.Kind,
		report.Filepath,
		report.Filename,
	)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}

	report.ID = int(id)
	return nil
}

// GetReport retrieves a report by ID.
func (db *DB) GetReport(id int) (*Report, error) {
	var report Report
	err := db.QueryRow(
		`SELECT id, run_id, start_date, end_date, kind, filepath, filename, created_at
		 FROM reports WHERE id = ?`,
		id,
	).Scan(
		&report.ID,
		&report.RunID,
		&report.StartDate,
		&report.EndDate,
		&report.Kind,
		&report.Filepath,
		&report.Filename,
		&report.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("report %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	return &report, nil
}

// RecentReports retrieves the most recent N reports.
func (db *DB) RecentReports(limit int) ([]Report, error) {
	rows, err := db.Query(
		`SELECT id, run_id, start_date, end_date, kind, filepath, filename, created_at
		 FROM reports ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var reports []Report
	for rows.Next() {
		var report Report
		err := rows.Scan(
			&report.ID,
			&report.RunID,
			&report.StartDate,
			&report.EndDate,
			&report.Kind,
			&report.Filepath,
			&report.Filename,
			&report.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, report)
	}

	return reports, rows.Err()
}

// DeleteReport deletes a report record by ID.
func (db *DB) DeleteReport(id int) error {
	result, err := db.Exec(`DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("report %d: %w", id, ErrNotFound)
	}

	return nil
}
