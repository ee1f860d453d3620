package summary

import (
	"math"
	"testing"

	"github.com/banshee-data/training.report/internal/db"
	"github.com/banshee-data/training.report/internal/units"
)

func TestAggregateSessionsEmpty(t *testing.T) {
	stats, err := AggregateSessions(nil, units.Hours)
	if err != nil {
		t.Fatalf("AggregateSessions: %v", err)
	}
	if stats.DoneTrials != 0 || stats.SessionCount != 0 {
		t.Errorf("counts = %d/%d, want 0/0", stats.DoneTrials, stats.SessionCount)
	}
	if stats.StartTime != nil || stats.TrainDur != nil || stats.TrialRate != nil ||
		stats.HitRate != nil || stats.ViolationRate != nil || stats.SideBias != nil {
		t.Error("expected all optional fields nil for a day with no sessions")
	}
}

func TestAggregateSessionsWeightedRates(t *testing.T) {
	sessions := []db.Session{
		{SessID: 1, RigID: "Rig12", StartTime: "09:00:00", EndTime: "11:30:00",
			DoneTrials: 50, TotalCorrect: ptrF(0.8), ViolationFrc: ptrF(0.1),
			RightCorrect: ptrF(30), LeftCorrect: ptrF(20)},
		{SessID: 2, RigID: "Rig14", StartTime: "13:00:00", EndTime: "15:30:00",
			DoneTrials: 100, TotalCorrect: ptrF(0.6), ViolationFrc: ptrF(0.2),
			RightCorrect: ptrF(30), LeftCorrect: ptrF(30)},
	}

	stats, err := AggregateSessions(sessions, units.Hours)
	if err != nil {
		t.Fatalf("AggregateSessions: %v", err)
	}

	if stats.DoneTrials != 150 || stats.SessionCount != 2 {
		t.Errorf("counts = %d/%d, want 150/2", stats.DoneTrials, stats.SessionCount)
	}
	if stats.RigID != "Rig14" {
		t.Errorf("RigID = %q, want last session's Rig14", stats.RigID)
	}
	if stats.StartTime == nil || *stats.StartTime != "09:00:00" {
		t.Errorf("StartTime = %v, want earliest 09:00:00", stats.StartTime)
	}
	if stats.TrainDur == nil || *stats.TrainDur != 5.0 {
		t.Errorf("TrainDur = %v, want 5.0", stats.TrainDur)
	}
	if stats.TrialRate == nil || *stats.TrialRate != 30.0 {
		t.Errorf("TrialRate = %v, want 30.0", stats.TrialRate)
	}

	// (50*0.8 + 100*0.6) / 150
	if stats.HitRate == nil || math.Abs(*stats.HitRate-0.6667) > 0.0001 {
		t.Errorf("HitRate = %v, want ~0.6667", stats.HitRate)
	}
	// (50*0.1 + 100*0.2) / 150
	if stats.ViolationRate == nil || math.Abs(*stats.ViolationRate-0.1667) > 0.0001 {
		t.Errorf("ViolationRate = %v, want ~0.1667", stats.ViolationRate)
	}
	// (50*(30-20) + 100*(30-30)) / 150
	if stats.SideBias == nil || math.Abs(*stats.SideBias-3.3333) > 0.0001 {
		t.Errorf("SideBias = %v, want ~3.3333", stats.SideBias)
	}
}

func TestAggregateSessionsTrialRate(t *testing.T) {
	sessions := []db.Session{
		{SessID: 1, StartTime: "09:00:00", EndTime: "14:00:00", DoneTrials: 300},
	}
	stats, err := AggregateSessions(sessions, units.Hours)
	if err != nil {
		t.Fatalf("AggregateSessions: %v", err)
	}
	if stats.TrialRate == nil || *stats.TrialRate != 60.0 {
		t.Errorf("TrialRate = %v, want 60.0", stats.TrialRate)
	}
}

func TestAggregateSessionsZeroDuration(t *testing.T) {
	sessions := []db.Session{
		{SessID: 1, StartTime: "09:00:00", EndTime: "09:00:00", DoneTrials: 5},
	}
	stats, err := AggregateSessions(sessions, units.Hours)
	if err != nil {
		t.Fatalf("AggregateSessions: %v", err)
	}
	if stats.TrialRate != nil {
		t.Errorf("TrialRate = %v, want nil for zero duration", *stats.TrialRate)
	}
	if stats.TrainDur == nil || *stats.TrainDur != 0 {
		t.Errorf("TrainDur = %v, want 0", stats.TrainDur)
	}
}

func TestAggregateSessionsEndBeforeStart(t *testing.T) {
	sessions := []db.Session{
		{SessID: 7, StartTime: "14:00:00", EndTime: "09:00:00", DoneTrials: 10},
	}
	if _, err := AggregateSessions(sessions, units.Hours); err == nil {
		t.Fatal("expected error for end time before start time")
	}
}

func TestAggregateSessionsSkipsMissingPerformance(t *testing.T) {
	sessions := []db.Session{
		{SessID: 1, StartTime: "09:00:00", EndTime: "10:00:00", DoneTrials: 40, TotalCorrect: ptrF(0.5)},
		{SessID: 2, StartTime: "11:00:00", EndTime: "12:00:00", DoneTrials: 60},
	}
	stats, err := AggregateSessions(sessions, units.Hours)
	if err != nil {
		t.Fatalf("AggregateSessions: %v", err)
	}
	// Only session 1 carries a hit rate, so no weighting with session 2.
	if stats.HitRate == nil || *stats.HitRate != 0.5 {
		t.Errorf("HitRate = %v, want 0.5", stats.HitRate)
	}
	if stats.SideBias != nil {
		t.Errorf("SideBias = %v, want nil when no session has side counts", *stats.SideBias)
	}
}

func TestAggregateSessionsMinuteUnits(t *testing.T) {
	sessions := []db.Session{
		{SessID: 1, StartTime: "09:00:00", EndTime: "10:30:00", DoneTrials: 90},
	}
	stats, err := AggregateSessions(sessions, units.Minutes)
	if err != nil {
		t.Fatalf("AggregateSessions: %v", err)
	}
	if stats.TrainDur == nil || *stats.TrainDur != 90.0 {
		t.Errorf("TrainDur = %v, want 90 minutes", stats.TrainDur)
	}
	// Rate stays per hour regardless of display units.
	if stats.TrialRate == nil || *stats.TrialRate != 60.0 {
		t.Errorf("TrialRate = %v, want 60.0", stats.TrialRate)
	}
}
