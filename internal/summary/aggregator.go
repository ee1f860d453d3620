package summary

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/training.report/internal/db"
	"github.com/banshee-data/training.report/internal/units"
)

// DailySessionStats is the session half of a DailySummary: N same-day
// sessions collapsed into one aggregate. Nil pointer fields mean the
// quantity is undefined for the day (no sessions, or zero duration).
type DailySessionStats struct {
	RigID         string
	DoneTrials    int
	SessionCount  int
	StartTime     *string
	TrainDur      *float64
	TrialRate     *float64
	HitRate       *float64
	ViolationRate *float64
	SideBias      *float64
}

// AggregateSessions collapses the day's session records into one aggregate.
// Zero sessions is not an error: count fields stay 0 and the rest nil, so a
// day with only a mass entry still gets a row. Sessions are taken in source
// order; the rig id is the last record's, with no chronological re-sort.
func AggregateSessions(sessions []db.Session, durationUnits string) (*DailySessionStats, error) {
	stats := &DailySessionStats{}
	if len(sessions) == 0 {
		return stats, nil
	}

	stats.SessionCount = len(sessions)
	stats.RigID = sessions[len(sessions)-1].RigID

	var totalDur time.Duration
	var earliest *string
	for _, s := range sessions {
		stats.DoneTrials += s.DoneTrials

		dur, err := sessionDuration(s)
		if err != nil {
			return nil, err
		}
		totalDur += dur

		if s.StartTime != "" && (earliest == nil || s.StartTime < *earliest) {
			st := s.StartTime
			earliest = &st
		}
	}
	stats.StartTime = earliest

	trainDur := units.ConvertDuration(totalDur, durationUnits)
	stats.TrainDur = &trainDur

	// Trial rate stays in trials/hour whatever the display units
	hours := units.ConvertDuration(totalDur, units.Hours)
	if hours > 0 {
		rate := round2(float64(stats.DoneTrials) / hours)
		stats.TrialRate = &rate
	}

	stats.HitRate = weightedMean(sessions, func(s db.Session) *float64 { return s.TotalCorrect })
	stats.ViolationRate = weightedMean(sessions, func(s db.Session) *float64 { return s.ViolationFrc })
	stats.SideBias = weightedMean(sessions, func(s db.Session) *float64 {
		if s.RightCorrect == nil || s.LeftCorrect == nil {
			return nil
		}
		bias := *s.RightCorrect - *s.LeftCorrect
		return &bias
	})

	return stats, nil
}

// sessionDuration is the wall time of one session. End must not precede
// start; sessions are assumed not to span midnight.
func sessionDuration(s db.Session) (time.Duration, error) {
	if s.StartTime == "" || s.EndTime == "" {
		return 0, nil
	}
	start, err := time.Parse("15:04:05", s.StartTime)
	if err != nil {
		return 0, fmt.Errorf("session %d: bad start time %q: %w", s.SessID, s.StartTime, err)
	}
	end, err := time.Parse("15:04:05", s.EndTime)
	if err != nil {
		return 0, fmt.Errorf("session %d: bad end time %q: %w", s.SessID, s.EndTime, err)
	}
	dur := end.Sub(start)
	if dur < 0 {
		return 0, fmt.Errorf("session %d: end time %s precedes start time %s", s.SessID, s.EndTime, s.StartTime)
	}
	return dur, nil
}

// weightedMean computes the trial-count-weighted average of a per-session
// value across sessions where it is present. Returns nil when no session
// carries the value or the weights sum to zero.
func weightedMean(sessions []db.Session, value func(db.Session) *float64) *float64 {
	var vals, weights []float64
	for _, s := range sessions {
		v := value(s)
		if v == nil {
			continue
		}
		vals = append(vals, *v)
		weights = append(weights, float64(s.DoneTrials))
	}
	if len(vals) == 0 {
		return nil
	}
	var weightSum float64
	for _, w := range weights {
		weightSum += w
	}
	if weightSum == 0 {
		return nil
	}
	mean := stat.Mean(vals, weights)
	return &mean
}
