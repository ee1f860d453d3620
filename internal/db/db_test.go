package db

import (
	"errors"
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestRecordAndFetchSessions(t *testing.T) {
	database := newTestDB(t)

	hit := 0.8
	s1 := &Session{
		AnimalID:     "R610",
		Date:         "2023-06-01",
		RigID:        "Rig12",
		StartTime:    "09:00:00",
		EndTime:      "11:00:00",
		DoneTrials:   150,
		TotalCorrect: &hit,
	}
	if err := database.RecordSession(s1); err != nil {
		t.Fatalf("RecordSession failed: %v", err)
	}
	if s1.SessID == 0 {
		t.Error("expected assigned session id")
	}

	// degenerate session, must be excluded from SessionsForDay
	s2 := &Session{AnimalID: "R610", Date: "2023-06-01", RigID: "Rig13", DoneTrials: 1}
	if err := database.RecordSession(s2); err != nil {
		t.Fatalf("RecordSession failed: %v", err)
	}

	sessions, err := database.SessionsForDay("R610", "2023-06-01")
	if err != nil {
		t.Fatalf("SessionsForDay failed: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions, want 1 (degenerate excluded)", len(sessions))
	}
	got := sessions[0]
	if got.RigID != "Rig12" || got.DoneTrials != 150 || got.StartTime != "09:00:00" {
		t.Errorf("unexpected session row: %+v", got)
	}
	if got.TotalCorrect == nil || *got.TotalCorrect != 0.8 {
		t.Errorf("TotalCorrect = %v, want 0.8", got.TotalCorrect)
	}

	dates, err := database.SessionDates("R610", "2000-01-01", "2030-01-01")
	if err != nil {
		t.Fatalf("SessionDates failed: %v", err)
	}
	if len(dates) != 1 || dates[0] != "2023-06-01" {
		t.Errorf("SessionDates = %v, want [2023-06-01]", dates)
	}
}

func TestSessionsWithProtocol(t *testing.T) {
	database := newTestDB(t)

	blob := []byte(`{"sa": [12000, 3000], "sb": [12000, 12000], "result": [1, 3], "hits": [1, 0], "sides": "lr"}`)
	s := &Session{AnimalID: "R611", Date: "2023-06-02", DoneTrials: 2, ProtocolData: blob}
	if err := database.RecordSession(s); err != nil {
		t.Fatalf("RecordSession failed: %v", err)
	}

	sessions, err := database.SessionsWithProtocol("R611", "2023-06-01", "2023-06-30")
	if err != nil {
		t.Fatalf("SessionsWithProtocol failed: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(sessions))
	}
	if string(sessions[0].ProtocolData) != string(blob) {
		t.Errorf("protocol blob mismatch: %s", sessions[0].ProtocolData)
	}
}

func TestMassFor(t *testing.T) {
	database := newTestDB(t)

	if err := database.RecordMass("R610", "2023-06-01", 212.5, "jb"); err != nil {
		t.Fatalf("RecordMass failed: %v", err)
	}

	m, err := database.MassFor("R610", "2023-06-01")
	if err != nil {
		t.Fatalf("MassFor failed: %v", err)
	}
	if m.MassG != 212.5 || m.Tech != "jb" {
		t.Errorf("unexpected mass entry: %+v", m)
	}

	_, err = database.MassFor("R610", "2023-06-02")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRestrictionTargetsAndPubVolumes(t *testing.T) {
	database := newTestDB(t)

	// the upstream defect: a spurious zero row next to the real entry
	if err := database.RecordWater("R610", "2023-06-01", 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := database.RecordWater("R610", "2023-06-01", 4.5, 6.2); err != nil {
		t.Fatal(err)
	}

	targets, err := database.RestrictionTargets("R610", "2023-06-01")
	if err != nil {
		t.Fatalf("RestrictionTargets failed: %v", err)
	}
	if len(targets) != 2 {
		t.Fatalf("got %d targets, want 2", len(targets))
	}

	vols, err := database.PubVolumes("R610", "2023-06-01")
	if err != nil {
		t.Fatalf("PubVolumes failed: %v", err)
	}
	if len(vols) != 2 {
		t.Fatalf("got %d volumes, want 2", len(vols))
	}

	// absent key returns zero rows, not an error
	targets, err = database.RestrictionTargets("R610", "2023-06-02")
	if err != nil {
		t.Fatalf("RestrictionTargets failed: %v", err)
	}
	if len(targets) != 0 {
		t.Errorf("got %d targets for absent key, want 0", len(targets))
	}
}

func TestRigVolume(t *testing.T) {
	database := newTestDB(t)

	if err := database.RecordRigWater("R610", "2023-06-01", 3.4); err != nil {
		t.Fatal(err)
	}

	vol, err := database.RigVolume("R610", "2023-06-01")
	if err != nil {
		t.Fatalf("RigVolume failed: %v", err)
	}
	if vol != 3.4 {
		t.Errorf("RigVolume = %f, want 3.4", vol)
	}

	_, err = database.RigVolume("R610", "2023-06-02")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
