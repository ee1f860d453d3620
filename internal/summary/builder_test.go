package summary

import (
	"testing"

	"github.com/banshee-data/training.report/internal/db"
)

func seedAnimalDay(src *fakeSource, animalID, date string) {
	src.sessions[key(animalID, date)] = []db.Session{
		{SessID: 1, RigID: "Rig12", StartTime: "09:00:00", EndTime: "11:00:00",
			DoneTrials: 120, TotalCorrect: ptrF(0.7)},
	}
	src.mass[key(animalID, date)] = db.MassEntry{MassG: 250, Tech: "kt12"}
	src.restriction[key(animalID, date)] = []float64{4.0}
	src.pub[key(animalID, date)] = []float64{8.5}
	src.rig[key(animalID, date)] = 1.5
}

func TestBuildDay(t *testing.T) {
	src := newFakeSource()
	seedAnimalDay(src, "R610", "2023-05-01")

	b := NewBuilder(src, testStudyConfig())
	row, err := b.BuildDay("R610", "2023-05-01")
	if err != nil {
		t.Fatalf("BuildDay: %v", err)
	}

	if row.DoneTrials != 120 || row.SessionCount != 1 || row.RigID != "Rig12" {
		t.Errorf("session half = %d trials, %d sessions, rig %q", row.DoneTrials, row.SessionCount, row.RigID)
	}
	if row.MassG != 250 || row.MassSource != SourceMeasured || row.Tech != "kt12" {
		t.Errorf("mass half = %v %v %q", row.MassG, row.MassSource, row.Tech)
	}
	if row.VolumeTarget != 10 {
		t.Errorf("VolumeTarget = %v, want 10 (4%% of 250g)", row.VolumeTarget)
	}
	if row.WaterDeficit != 0 {
		t.Errorf("WaterDeficit = %v, want 0 (8.5 + 1.5 - 10)", row.WaterDeficit)
	}
}

func TestBuildDayMassOnly(t *testing.T) {
	src := newFakeSource()
	src.mass[key("R610", "2023-05-01")] = db.MassEntry{MassG: 80, Tech: "kt12"}

	b := NewBuilder(src, testStudyConfig())
	row, err := b.BuildDay("R610", "2023-05-01")
	if err != nil {
		t.Fatalf("BuildDay: %v", err)
	}
	if row.SessionCount != 0 || row.DoneTrials != 0 {
		t.Errorf("counts = %d/%d, want zero", row.SessionCount, row.DoneTrials)
	}
	if row.StartTime != nil || row.TrainDur != nil || row.TrialRate != nil || row.HitRate != nil {
		t.Error("expected nil session fields for a mass-only day")
	}
	if row.MassG != 80 {
		t.Errorf("MassG = %v, want 80", row.MassG)
	}
	// Unset restriction on a small animal resolves to the 4% branch.
	if row.VolumeTarget != 3.2 {
		t.Errorf("VolumeTarget = %v, want 3.2", row.VolumeTarget)
	}
}

func TestBuildRangeSortsAndSkips(t *testing.T) {
	src := newFakeSource()
	seedAnimalDay(src, "R611", "2023-05-02")
	seedAnimalDay(src, "R610", "2023-05-02")
	seedAnimalDay(src, "R610", "2023-05-01")

	// Session with no mass anywhere in the lookback: row skipped, not fatal.
	src.sessions[key("R611", "2023-05-04")] = []db.Session{
		{SessID: 9, RigID: "Rig12", StartTime: "09:00:00", EndTime: "10:00:00", DoneTrials: 50},
	}

	b := NewBuilder(src, testStudyConfig())
	rows, err := b.BuildRange([]string{"R611", "R610"}, "2023-05-01", "2023-05-31")
	if err != nil {
		t.Fatalf("BuildRange: %v", err)
	}

	want := []struct{ animal, date string }{
		{"R610", "2023-05-01"},
		{"R610", "2023-05-02"},
		{"R611", "2023-05-02"},
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(rows), len(want))
	}
	for i, w := range want {
		if rows[i].AnimalID != w.animal || rows[i].Date != w.date {
			t.Errorf("row %d = (%s, %s), want (%s, %s)", i, rows[i].AnimalID, rows[i].Date, w.animal, w.date)
		}
	}
}

func TestBuildRangeInvertedWindow(t *testing.T) {
	b := NewBuilder(newFakeSource(), testStudyConfig())
	if _, err := b.BuildRange([]string{"R610"}, "2023-05-31", "2023-05-01"); err == nil {
		t.Fatal("expected error for inverted date range")
	}
}
