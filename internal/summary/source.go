// Package summary reconciles per-session training records, body-mass logs
// and water logs into one well-typed row per animal-day.
package summary

import (
	"github.com/banshee-data/training.report/internal/db"
)

// QuerySource is the fetch contract the reconciliation pipeline needs from
// the training database. *db.DB satisfies it; tests substitute an in-memory
// fake. Fetch-one style methods report a missing key by wrapping
// db.ErrNotFound; fetch-many methods report it as zero rows.
type QuerySource interface {
	// SessionDates returns the distinct dates with sessions for the animal
	// inside the window, ascending.
	SessionDates(animalID, dateMin, dateMax string) ([]string, error)

	// SessionsForDay returns the animal's non-degenerate sessions on one
	// date, in whatever order the source keeps them. No chronological
	// ordering is guaranteed.
	SessionsForDay(animalID, date string) ([]db.Session, error)

	// MassFor returns the single mass entry for (animal, date).
	MassFor(animalID, date string) (*db.MassEntry, error)

	// RestrictionTargets returns every restriction percent row for
	// (animal, date). The table is known to sometimes hold a spurious
	// zero-valued duplicate next to the real entry.
	RestrictionTargets(animalID, date string) ([]float64, error)

	// PubVolumes returns every pub volume row for (animal, date).
	PubVolumes(animalID, date string) ([]float64, error)

	// RigVolume returns the rig water total for (animal, date).
	RigVolume(animalID, date string) (float64, error)
}
