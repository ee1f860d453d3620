package trials

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/banshee-data/training.report/internal/db"
)

type fakeSessionSource struct {
	sessions map[string][]db.Session
}

func (f *fakeSessionSource) SessionsWithProtocol(animalID, dateMin, dateMax string) ([]db.Session, error) {
	var out []db.Session
	for _, s := range f.sessions[animalID] {
		if s.Date >= dateMin && s.Date <= dateMax {
			out = append(out, s)
		}
	}
	return out, nil
}

func sessionWithBlob(t *testing.T, sessID int64, animalID, date string, raw *RawProtocol) db.Session {
	t.Helper()
	blob, err := json.Marshal(raw)
	if err != nil {
		t.Fatalf("marshaling protocol: %v", err)
	}
	return db.Session{
		SessID:       sessID,
		AnimalID:     animalID,
		Date:         date,
		DoneTrials:   len(raw.SA),
		ProtocolData: blob,
	}
}

func TestFetchTrainingData(t *testing.T) {
	src := &fakeSessionSource{sessions: map[string][]db.Session{
		"R610": {
			sessionWithBlob(t, 1, "R610", "2023-05-01", wellFormedDMS(3)),
			sessionWithBlob(t, 2, "R610", "2023-05-02", wellFormedDMS(2)),
		},
		"R611": {
			sessionWithBlob(t, 3, "R611", "2023-05-01", wellFormedDMS(4)),
		},
	}}

	f := NewFetcher(src)
	trials, err := f.FetchTrainingData([]string{"R610", "R611"}, "2023-05-01", "2023-05-31")
	if err != nil {
		t.Fatalf("FetchTrainingData: %v", err)
	}
	if len(trials) != 9 {
		t.Fatalf("got %d trials, want 9", len(trials))
	}
	if trials[0].AnimalID != "R610" || trials[8].AnimalID != "R611" {
		t.Errorf("animal ordering broken: first %s, last %s", trials[0].AnimalID, trials[8].AnimalID)
	}
}

func TestFetchTrainingDataSkipsCorruptSession(t *testing.T) {
	bad := wellFormedDMS(5)
	bad.Hits = repeat(1, 2)

	src := &fakeSessionSource{sessions: map[string][]db.Session{
		"R610": {
			sessionWithBlob(t, 1, "R610", "2023-05-01", wellFormedDMS(3)),
			sessionWithBlob(t, 2, "R610", "2023-05-02", bad),
		},
	}}

	f := NewFetcher(src)
	trials, err := f.FetchTrainingData([]string{"R610"}, "2023-05-01", "2023-05-31")
	if err != nil {
		t.Fatalf("FetchTrainingData: %v", err)
	}
	if len(trials) != 3 {
		t.Fatalf("got %d trials, want 3 from the surviving session", len(trials))
	}
}

func TestFetchTrainingDataWindowFilter(t *testing.T) {
	src := &fakeSessionSource{sessions: map[string][]db.Session{
		"R610": {
			sessionWithBlob(t, 1, "R610", "2023-04-30", wellFormedDMS(2)),
			sessionWithBlob(t, 2, "R610", "2023-05-01", wellFormedDMS(2)),
		},
	}}

	f := NewFetcher(src)
	trials, err := f.FetchTrainingData([]string{"R610"}, "2023-05-01", "2023-05-31")
	if err != nil {
		t.Fatalf("FetchTrainingData: %v", err)
	}
	for _, tr := range trials {
		if tr.Date < "2023-05-01" {
			t.Errorf("trial from %s leaked outside the window", tr.Date)
		}
	}
}

func TestWriteTrials(t *testing.T) {
	trials, err := CleanSession("R610", "2023-05-01", 42, wellFormedDMS(2))
	if err != nil {
		t.Fatalf("CleanSession: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteTrials(&buf, trials); err != nil {
		t.Fatalf("WriteTrials: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 rows", len(lines))
	}
	if !strings.HasPrefix(lines[0], "trial,animal_id,date,sess_id") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.Contains(lines[1], `"12.0, 12.0"`) {
		t.Errorf("row %q missing quoted sound pair", lines[1])
	}
	if !strings.Contains(lines[1], "true") {
		t.Errorf("row %q missing is_match", lines[1])
	}
}
