package summary

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// summaryColumns is the fixed CSV column order. The cache reader depends on
// this order, so new columns go at the end.
var summaryColumns = []string{
	"animal_id", "date", "rigid", "n_done_trials", "n_sessions",
	"start_time", "train_dur", "trial_rate", "hit_rate", "viol_rate",
	"side_bias", "mass", "mass_source", "tech", "percent_target",
	"pub_volume", "rig_volume", "volume_target", "water_diff",
}

// WriteSummaries writes rows as CSV with a header. Nil pointer fields are
// written as empty cells so they survive a read round trip as nil.
func WriteSummaries(w io.Writer, rows []DailySummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(summaryColumns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.AnimalID,
			r.Date,
			r.RigID,
			strconv.Itoa(r.DoneTrials),
			strconv.Itoa(r.SessionCount),
			stringCell(r.StartTime),
			floatCell(r.TrainDur),
			floatCell(r.TrialRate),
			floatCell(r.HitRate),
			floatCell(r.ViolationRate),
			floatCell(r.SideBias),
			formatFloat(r.MassG),
			string(r.MassSource),
			r.Tech,
			formatFloat(r.PercentTarget),
			formatFloat(r.PubVolume),
			formatFloat(r.RigVolume),
			formatFloat(r.VolumeTarget),
			formatFloat(r.WaterDeficit),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing row %s %s: %w", r.AnimalID, r.Date, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadSummaries parses CSV previously produced by WriteSummaries. The header
// row is checked for column count only, so files written by older builds
// with the same leading columns still load.
func ReadSummaries(r io.Reader) ([]DailySummary, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(summaryColumns)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if header[0] != summaryColumns[0] {
		return nil, fmt.Errorf("unexpected first column %q", header[0])
	}

	var rows []DailySummary
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading line %d: %w", line, err)
		}
		row, err := parseSummaryRecord(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseSummaryRecord(record []string) (DailySummary, error) {
	var row DailySummary
	var err error

	row.AnimalID = record[0]
	row.Date = record[1]
	row.RigID = record[2]
	if row.DoneTrials, err = strconv.Atoi(record[3]); err != nil {
		return row, fmt.Errorf("n_done_trials: %w", err)
	}
	if row.SessionCount, err = strconv.Atoi(record[4]); err != nil {
		return row, fmt.Errorf("n_sessions: %w", err)
	}
	row.StartTime = parseStringCell(record[5])
	if row.TrainDur, err = parseFloatCell(record[6]); err != nil {
		return row, fmt.Errorf("train_dur: %w", err)
	}
	if row.TrialRate, err = parseFloatCell(record[7]); err != nil {
		return row, fmt.Errorf("trial_rate: %w", err)
	}
	if row.HitRate, err = parseFloatCell(record[8]); err != nil {
		return row, fmt.Errorf("hit_rate: %w", err)
	}
	if row.ViolationRate, err = parseFloatCell(record[9]); err != nil {
		return row, fmt.Errorf("viol_rate: %w", err)
	}
	if row.SideBias, err = parseFloatCell(record[10]); err != nil {
		return row, fmt.Errorf("side_bias: %w", err)
	}
	if row.MassG, err = strconv.ParseFloat(record[11], 64); err != nil {
		return row, fmt.Errorf("mass: %w", err)
	}
	row.MassSource = ValueSource(record[12])
	row.Tech = record[13]
	if row.PercentTarget, err = strconv.ParseFloat(record[14], 64); err != nil {
		return row, fmt.Errorf("percent_target: %w", err)
	}
	if row.PubVolume, err = strconv.ParseFloat(record[15], 64); err != nil {
		return row, fmt.Errorf("pub_volume: %w", err)
	}
	if row.RigVolume, err = strconv.ParseFloat(record[16], 64); err != nil {
		return row, fmt.Errorf("rig_volume: %w", err)
	}
	if row.VolumeTarget, err = strconv.ParseFloat(record[17], 64); err != nil {
		return row, fmt.Errorf("volume_target: %w", err)
	}
	if row.WaterDeficit, err = strconv.ParseFloat(record[18], 64); err != nil {
		return row, fmt.Errorf("water_diff: %w", err)
	}
	return row, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func floatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func stringCell(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func parseFloatCell(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseStringCell(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
