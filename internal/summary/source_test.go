package summary

import (
	"fmt"
	"sort"
	"strings"

	"github.com/banshee-data/training.report/internal/config"
	"github.com/banshee-data/training.report/internal/db"
)

// fakeSource is an in-memory QuerySource keyed by "animal|date".
type fakeSource struct {
	sessions    map[string][]db.Session
	mass        map[string]db.MassEntry
	restriction map[string][]float64
	pub         map[string][]float64
	rig         map[string]float64

	sessionDateCalls int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		sessions:    make(map[string][]db.Session),
		mass:        make(map[string]db.MassEntry),
		restriction: make(map[string][]float64),
		pub:         make(map[string][]float64),
		rig:         make(map[string]float64),
	}
}

func key(animalID, date string) string { return animalID + "|" + date }

func (f *fakeSource) SessionDates(animalID, dateMin, dateMax string) ([]string, error) {
	f.sessionDateCalls++
	var dates []string
	for k := range f.sessions {
		parts := strings.SplitN(k, "|", 2)
		if parts[0] == animalID && parts[1] >= dateMin && parts[1] <= dateMax {
			dates = append(dates, parts[1])
		}
	}
	sort.Strings(dates)
	return dates, nil
}

func (f *fakeSource) SessionsForDay(animalID, date string) ([]db.Session, error) {
	return f.sessions[key(animalID, date)], nil
}

func (f *fakeSource) MassFor(animalID, date string) (*db.MassEntry, error) {
	entry, ok := f.mass[key(animalID, date)]
	if !ok {
		return nil, fmt.Errorf("mass for %s on %s: %w", animalID, date, db.ErrNotFound)
	}
	return &entry, nil
}

func (f *fakeSource) RestrictionTargets(animalID, date string) ([]float64, error) {
	return f.restriction[key(animalID, date)], nil
}

func (f *fakeSource) PubVolumes(animalID, date string) ([]float64, error) {
	return f.pub[key(animalID, date)], nil
}

func (f *fakeSource) RigVolume(animalID, date string) (float64, error) {
	vol, ok := f.rig[key(animalID, date)]
	if !ok {
		return 0, fmt.Errorf("rig volume for %s on %s: %w", animalID, date, db.ErrNotFound)
	}
	return vol, nil
}

func testStudyConfig() *config.StudyConfig {
	return config.EmptyStudyConfig()
}

func ptrF(v float64) *float64 { return &v }
